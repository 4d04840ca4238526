// Package config provides configuration defaults and utilities
// for the guardiand application.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via config.yaml or environment variables.
package config

import "time"

// =============================================================================
// Network Defaults
// =============================================================================

const (
	// DefaultListenAddress is the default HTTP API listen address.
	// Override via config: listen
	DefaultListenAddress = "0.0.0.0:9318"
)

// =============================================================================
// Rate Limiting Defaults
// =============================================================================

const (
	// DefaultRateLimitPerSecond is the sustained API request rate per client IP.
	// Requests above the rate draw from the burst bucket; once that is
	// empty the client receives 429 until tokens refill.
	// Override via config: rate_limit.per_second
	DefaultRateLimitPerSecond = 10

	// DefaultRateLimitBurst is the token bucket capacity per client IP.
	// Override via config: rate_limit.burst
	DefaultRateLimitBurst = 20
)

// =============================================================================
// WebSocket Defaults
// =============================================================================

const (
	// DefaultWSSendBufferSize is the capacity of the per-client send channel.
	// A client that falls this far behind is disconnected rather than
	// allowed to stall the broadcaster.
	// Range: 8-1024
	// Override via config: websocket.send_buffer_size
	DefaultWSSendBufferSize = 64

	// DefaultWSWriteTimeout is the max time to write one message to a client.
	// Override via config: websocket.write_timeout
	DefaultWSWriteTimeout = 10 * time.Second

	// DefaultWSPingInterval is how often keepalive pings are sent.
	// Must be shorter than the read deadline derived from it.
	// Override via config: websocket.ping_interval
	DefaultWSPingInterval = 30 * time.Second
)

// =============================================================================
// Shutdown Defaults
// =============================================================================

const (
	// DefaultDrainTimeoutSec is how long to wait for in-flight requests during shutdown.
	// This follows the Kubernetes convention (terminationGracePeriodSeconds = 30s).
	// After this timeout, remaining connections are closed.
	// Override via config: shutdown.drain_timeout_sec
	DefaultDrainTimeoutSec = 30
)

// =============================================================================
// Logging Defaults
// =============================================================================

const (
	// DefaultLogLevel is the minimum level to emit.
	// One of: debug, info, warn, error.
	// Override via config: logging.level
	DefaultLogLevel = "info"

	// DefaultLogFormat is the log output encoding.
	// One of: json, text.
	// Override via config: logging.format
	DefaultLogFormat = "json"
)

// =============================================================================
// Sweep Defaults
// =============================================================================

const (
	// DefaultSweepInterval is how often the daemon re-evaluates the catalog.
	// Unchanged catalog fingerprints are served from cache, so frequent
	// sweeps over a quiet inventory cost one hash comparison.
	// Override via config: sweep.interval
	DefaultSweepInterval = 5 * time.Minute

	// DefaultSweepJitter is the random delay added to each sweep interval.
	// Spreads load when several daemons share a pricing endpoint.
	// Override via config: sweep.jitter
	DefaultSweepJitter = 30 * time.Second
)

// =============================================================================
// Catalog Defaults
// =============================================================================

const (
	// DefaultCatalogPath is the inventory file loaded at startup.
	// Override via config: catalog.path
	DefaultCatalogPath = "catalog.yaml"

	// DefaultCatalogWatchInterval is the catalog modification poll interval.
	// Override via config: catalog.watch_interval
	DefaultCatalogWatchInterval = 5 * time.Second
)

// =============================================================================
// Metastore Defaults
// =============================================================================

const (
	// DefaultMetastorePath is the alert and run-history database file.
	// Override via config: metastore.path
	DefaultMetastorePath = "guardiand.db"

	// DefaultRunHistoryLimit is how many sweep runs are retained.
	// Older runs are pruned after each insert.
	// Override via config: metastore.run_history_limit
	DefaultRunHistoryLimit = 500

	// DefaultMetastoreMaxOpenConns is the max open database connections.
	// Override via config: metastore.max_open_conns
	DefaultMetastoreMaxOpenConns = 25

	// DefaultMetastoreMaxIdleConns is the max idle connections in the pool.
	// Override via config: metastore.max_idle_conns
	DefaultMetastoreMaxIdleConns = 5

	// DefaultMetastoreConnMaxLifetime is the max lifetime of a connection.
	// Override via config: metastore.conn_max_lifetime
	DefaultMetastoreConnMaxLifetime = 5 * time.Minute

	// DefaultMetastoreQueryTimeout is the default query timeout.
	// Override via config: metastore.query_timeout
	DefaultMetastoreQueryTimeout = 30 * time.Second

	// DefaultAlertRetention is how long resolved alerts stay queryable.
	// Acknowledged and superseded alerts older than this are pruned after
	// each sweep; active alerts are never pruned.
	// Override via config: metastore.alert_retention
	DefaultAlertRetention = 30 * 24 * time.Hour
)

// =============================================================================
// Archive Defaults
// =============================================================================

const (
	// DefaultArchiveDir is the Parquet snapshot directory.
	// Override via config: archive.dir
	DefaultArchiveDir = "/var/lib/guardiand/archive"

	// DefaultArchiveCompression is the Parquet column codec.
	// One of: snappy, zstd, lz4, gzip, none.
	// Override via config: archive.compression.algorithm
	DefaultArchiveCompression = "zstd"

	// DefaultArchiveCompressionLevel is the codec level (zstd: 1-22).
	// Override via config: archive.compression.level
	DefaultArchiveCompressionLevel = 3

	// DefaultArchiveRetention is the max age of archived snapshots.
	// Override via config: archive.retention
	DefaultArchiveRetention = 90 * 24 * time.Hour

	// DefaultArchiveMaxTotalSize caps the archive directory size.
	// Oldest files are pruned first once the cap is exceeded.
	// Override via config: archive.max_total_size
	DefaultArchiveMaxTotalSize = 4 * 1024 * 1024 * 1024
)
