// Package loader - Configuration Types
//
// LOCATION: internal/loader/types.go
//
// Defines the YAML configuration structure for guardiand.
//
// ARCHITECTURE:
//
//   ┌─────────────────────────────────────────────────────────────────────┐
//   │                         config.yaml                                 │
//   ├─────────────────────────────────────────────────────────────────────┤
//   │                                                                     │
//   │  listen:      HTTP API bind address                                 │
//   │  tls:         Certificate paths                                     │
//   │  rate_limit:  Per-client API throttling                             │
//   │  websocket:   Live dashboard push                                   │
//   │  shutdown:    Drain behavior                                        │
//   │  logging:     Level and format                                      │
//   │                                                                     │
//   │  sweep:       Periodic catalog evaluation                           │
//   │  catalog:     Inventory file path and reload watching               │
//   │  engine:      Scoring, tiering, compression, arbitrage knobs        │
//   │               (see internal/engine/config)                          │
//   │                                                                     │
//   │  ┌─────────────────────┐    ┌─────────────────────────────────┐    │
//   │  │     metastore:      │    │          archive:               │    │
//   │  │     (DuckDB)        │    │        (Parquet)                │    │
//   │  ├─────────────────────┤    ├─────────────────────────────────┤    │
//   │  │ • Alerts            │    │ • Tiering plan snapshots        │    │
//   │  │ • Run history       │    │ • One file per evaluated        │    │
//   │  │                     │    │   snapshot                      │    │
//   │  │ Access: OLTP        │    │ • Age and size based pruning    │    │
//   │  │ (many small txns)   │    │                                 │    │
//   │  └─────────────────────┘    └─────────────────────────────────┘    │
//   │                                                                     │
//   └─────────────────────────────────────────────────────────────────────┘

package loader

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/guardiandrive/guardiand/config"
	engineconfig "github.com/guardiandrive/guardiand/internal/engine/config"
)

// =============================================================================
// Root Configuration
// =============================================================================

// Config is the root configuration structure for guardiand.
type Config struct {
	// -------------------------------------------------------------------------
	// Runtime Settings (server process configuration)
	// -------------------------------------------------------------------------

	// Listen is the HTTP API listen address.
	// Format: "host:port" or ":port"
	// Default: "0.0.0.0:9318"
	Listen string `yaml:"listen"`

	// TLS configures transport layer security.
	TLS TLSConfig `yaml:"tls"`

	// RateLimit configures per-client API throttling.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// WebSocket configures the live dashboard push channel.
	WebSocket WebSocketConfig `yaml:"websocket"`

	// Shutdown configures graceful shutdown behavior.
	Shutdown ShutdownConfig `yaml:"shutdown"`

	// Logging configures log level and output format.
	Logging LoggingConfig `yaml:"logging"`

	// -------------------------------------------------------------------------
	// Evaluation
	// -------------------------------------------------------------------------

	// Sweep configures the periodic catalog evaluation.
	Sweep SweepConfig `yaml:"sweep"`

	// Catalog configures the inventory file and reload watching.
	Catalog CatalogConfig `yaml:"catalog"`

	// Engine holds the decision engine tuning: health scoring weights,
	// tier thresholds, compression profiles, arbitrage tolerances.
	// Every field has a working default; override selectively.
	Engine *engineconfig.Config `yaml:"engine"`

	// -------------------------------------------------------------------------
	// Storage Systems
	// -------------------------------------------------------------------------

	// Metastore is the alert and run-history database (DuckDB).
	//
	// Stores: raised alerts, acknowledgments, sweep run records.
	// Access pattern: OLTP (many small transactions, low latency).
	Metastore MetastoreConfig `yaml:"metastore"`

	// Archive is the tiering plan snapshot store (Parquet).
	//
	// Stores: one columnar file per evaluated snapshot, for offline
	// analysis of how recommendations drift as the corpus ages.
	// Access pattern: bulk writes, external analytics readers.
	Archive ArchiveConfig `yaml:"archive"`
}

// =============================================================================
// Server Configuration
// =============================================================================

// TLSConfig configures transport layer security.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	// Leave empty to serve plain HTTP (not recommended for production).
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// RateLimitConfig configures per-client request throttling.
type RateLimitConfig struct {
	// PerSecond is the sustained request rate allowed per client IP.
	// Default: 10
	PerSecond float64 `yaml:"per_second"`

	// Burst is the token bucket capacity per client IP.
	// Default: 20
	Burst int `yaml:"burst"`
}

// WebSocketConfig configures the dashboard push channel.
type WebSocketConfig struct {
	// SendBufferSize is the per-client outbound message queue capacity.
	// A client that falls this far behind is disconnected.
	// Range: 8-1024, Default: 64
	SendBufferSize int `yaml:"send_buffer_size"`

	// WriteTimeout is the max time to write one message to a client.
	// Default: 10s
	WriteTimeout Duration `yaml:"write_timeout"`

	// PingInterval is how often keepalive pings are sent.
	// Default: 30s
	PingInterval Duration `yaml:"ping_interval"`
}

// ShutdownConfig configures graceful shutdown.
type ShutdownConfig struct {
	// DrainTimeoutSec is how long to wait for in-flight requests.
	// Range: 5-300, Default: 30
	DrainTimeoutSec int `yaml:"drain_timeout_sec"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is the minimum level to emit: debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is the output encoding: json or text.
	// Default: json
	Format string `yaml:"format"`
}

// =============================================================================
// Evaluation Configuration
// =============================================================================

// SweepConfig configures the periodic evaluation loop.
type SweepConfig struct {
	// Interval is how often the daemon re-evaluates the catalog.
	// Evaluation is skipped when the catalog fingerprint is unchanged,
	// so a short interval is cheap on a quiet inventory.
	// Default: 5m
	Interval Duration `yaml:"interval"`

	// Jitter is a random delay in [0, jitter) added to each interval
	// so multiple daemons sharing a pricing endpoint spread out.
	// Must be shorter than the interval. Default: 30s
	Jitter Duration `yaml:"jitter"`
}

// CatalogConfig configures inventory loading.
type CatalogConfig struct {
	// Path is the catalog YAML file.
	// Default: "catalog.yaml"
	Path string `yaml:"path"`

	// Watch enables reload on catalog file changes.
	// Default: true
	Watch bool `yaml:"watch"`

	// WatchInterval is the modification poll interval.
	// Default: 5s
	WatchInterval Duration `yaml:"watch_interval"`
}

// =============================================================================
// Metastore Configuration (DuckDB - Alerts/Run History)
// =============================================================================

// MetastoreConfig configures the metadata database.
//
// The metastore holds operational state that must survive restarts:
//   - Raised alerts and their acknowledgments
//   - Sweep run records (when, what snapshot, what came out)
//
// Technology: DuckDB (embedded OLTP database)
// Access pattern: Many small reads/writes, low latency
type MetastoreConfig struct {
	// Path is the database file path.
	// Special value ":memory:" for in-memory (testing only).
	// Default: "guardiand.db"
	Path string `yaml:"path"`

	// RunHistoryLimit is how many sweep runs to retain.
	// Older runs are pruned after each insert. 0 disables pruning.
	// Default: 500
	RunHistoryLimit int `yaml:"run_history_limit"`

	// AlertRetention is how long resolved alerts stay queryable.
	// Acknowledged and superseded alerts older than this are pruned
	// after each sweep. 0 disables alert pruning.
	// Default: 720h (30 days)
	AlertRetention Duration `yaml:"alert_retention"`

	// -------------------------------------------------------------------------
	// Connection Pool
	// -------------------------------------------------------------------------

	// MaxOpenConns is the max open database connections.
	// Default: 25
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the max idle connections in the pool.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// ConnMaxLifetime is the max lifetime of a connection.
	// Default: 5m
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`

	// QueryTimeout is the default query timeout.
	// Default: 30s
	QueryTimeout Duration `yaml:"query_timeout"`
}

// =============================================================================
// Archive Configuration (Parquet - Plan Snapshots)
// =============================================================================

// ArchiveConfig configures the plan snapshot archive.
//
// Each sweep over a new catalog fingerprint writes one Parquet file
// holding the full recommendation set. External tools (DuckDB, Spark,
// pandas) read these directly for drift analysis.
type ArchiveConfig struct {
	// Enabled enables snapshot archiving.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Dir is the archive directory.
	// Default: "/var/lib/guardiand/archive"
	Dir string `yaml:"dir"`

	// Compression configures the Parquet column codec.
	Compression CompressionConfig `yaml:"compression"`

	// Retention is the max age of archived snapshots.
	// Older files are pruned after each write. 0 disables age pruning.
	// Default: 2160h (90 days)
	Retention Duration `yaml:"retention"`

	// MaxTotalSize caps the archive directory size. When exceeded,
	// oldest files are pruned first. 0 disables size pruning.
	// Default: 4GB
	MaxTotalSize ByteSize `yaml:"max_total_size"`
}

// CompressionConfig configures Parquet compression.
type CompressionConfig struct {
	// Algorithm is the compression algorithm.
	//   snappy - Fast compression/decompression, moderate ratio
	//   zstd   - Best ratio, good speed (recommended)
	//   lz4    - Fastest, lowest ratio
	//   gzip   - Widely readable, slower
	//   none   - No compression
	// Default: zstd
	Algorithm string `yaml:"algorithm"`

	// Level is the compression level (for zstd: 1-22).
	// Default: 3
	Level int `yaml:"level"`
}

// =============================================================================
// Defaults
// =============================================================================

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen: config.DefaultListenAddress,

		RateLimit: RateLimitConfig{
			PerSecond: config.DefaultRateLimitPerSecond,
			Burst:     config.DefaultRateLimitBurst,
		},

		WebSocket: WebSocketConfig{
			SendBufferSize: config.DefaultWSSendBufferSize,
			WriteTimeout:   Duration(config.DefaultWSWriteTimeout),
			PingInterval:   Duration(config.DefaultWSPingInterval),
		},

		Shutdown: ShutdownConfig{
			DrainTimeoutSec: config.DefaultDrainTimeoutSec,
		},

		Logging: LoggingConfig{
			Level:  config.DefaultLogLevel,
			Format: config.DefaultLogFormat,
		},

		Sweep: SweepConfig{
			Interval: Duration(config.DefaultSweepInterval),
			Jitter:   Duration(config.DefaultSweepJitter),
		},

		Catalog: CatalogConfig{
			Path:          config.DefaultCatalogPath,
			Watch:         true,
			WatchInterval: Duration(config.DefaultCatalogWatchInterval),
		},

		Engine: engineconfig.DefaultConfig(),

		Metastore: MetastoreConfig{
			Path:            config.DefaultMetastorePath,
			RunHistoryLimit: config.DefaultRunHistoryLimit,
			AlertRetention:  Duration(config.DefaultAlertRetention),
			MaxOpenConns:    config.DefaultMetastoreMaxOpenConns,
			MaxIdleConns:    config.DefaultMetastoreMaxIdleConns,
			ConnMaxLifetime: Duration(config.DefaultMetastoreConnMaxLifetime),
			QueryTimeout:    Duration(config.DefaultMetastoreQueryTimeout),
		},

		Archive: ArchiveConfig{
			Enabled: true,
			Dir:     config.DefaultArchiveDir,
			Compression: CompressionConfig{
				Algorithm: config.DefaultArchiveCompression,
				Level:     config.DefaultArchiveCompressionLevel,
			},
			Retention:    Duration(config.DefaultArchiveRetention),
			MaxTotalSize: ByteSize(config.DefaultArchiveMaxTotalSize),
		},
	}
}

// =============================================================================
// Custom Types
// =============================================================================

// Duration is a time.Duration that can be unmarshaled from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		// Try as int (seconds)
		var i int
		if err := unmarshal(&i); err != nil {
			return err
		}
		*d = Duration(time.Duration(i) * time.Second)
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// ByteSize is a size in bytes that can be unmarshaled from YAML.
// Supports: "100MB", "1GB", "500KB", or plain bytes.
type ByteSize int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		// Try as int64
		var i int64
		if err := unmarshal(&i); err != nil {
			return err
		}
		*b = ByteSize(i)
		return nil
	}
	size, err := parseByteSize(s)
	if err != nil {
		return err
	}
	*b = ByteSize(size)
	return nil
}

// byteUnits is ordered longest suffix first so "MB" never matches as "B".
var byteUnits = []struct {
	suffix     string
	multiplier int64
}{
	{"TB", 1024 * 1024 * 1024 * 1024},
	{"GB", 1024 * 1024 * 1024},
	{"MB", 1024 * 1024},
	{"KB", 1024},
	{"B", 1},
}

// parseByteSize parses a size string like "100MB" or "1GB".
func parseByteSize(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	s = strings.ToUpper(strings.TrimSpace(s))

	for _, unit := range byteUnits {
		if strings.HasSuffix(s, unit.suffix) {
			numStr := strings.TrimSpace(strings.TrimSuffix(s, unit.suffix))
			n, err := strconv.ParseInt(numStr, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("parse byte size %q: %w", s, err)
			}
			return n * unit.multiplier, nil
		}
	}

	// Try as plain number
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse byte size %q: %w", s, err)
	}
	return n, nil
}

// Bytes returns the size in bytes.
func (b ByteSize) Bytes() int64 {
	return int64(b)
}
