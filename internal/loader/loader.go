// Package loader handles daemon configuration loading, validation, and conversion.
//
// LOCATION: internal/loader/loader.go
//
// This package is responsible for:
//   - Loading the YAML daemon configuration
//   - Expanding environment variables
//   - Validating settings before the daemon starts
//   - Converting between YAML and internal representations
//
// Inventory data (drives, files, pricing) is not configuration; it loads
// through internal/catalog.

package loader

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/guardiandrive/guardiand/internal/archive"
	"github.com/guardiandrive/guardiand/internal/errors"
	"github.com/guardiandrive/guardiand/internal/server"
	"github.com/guardiandrive/guardiand/internal/store"
)

// =============================================================================
// Load
// =============================================================================

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	// Start with defaults
	cfg := DefaultConfig()

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// =============================================================================
// Validate
// =============================================================================

// Validate validates the configuration.
func Validate(cfg *Config) error {
	errs := errors.NewValidationErrors()

	// Server validation
	if cfg.Listen == "" {
		errs.AddField("listen", "cannot be empty")
	}
	if (cfg.TLS.CertFile == "") != (cfg.TLS.KeyFile == "") {
		errs.AddField("tls", "cert_file and key_file must be set together")
	}

	if cfg.RateLimit.PerSecond <= 0 {
		errs.AddField("rate_limit.per_second", "must be positive")
	}
	if cfg.RateLimit.Burst <= 0 {
		errs.AddField("rate_limit.burst", "must be positive")
	}

	if cfg.WebSocket.SendBufferSize <= 0 {
		errs.AddField("websocket.send_buffer_size", "must be positive")
	}
	if cfg.WebSocket.WriteTimeout.Duration() <= 0 {
		errs.AddField("websocket.write_timeout", "must be positive")
	}
	if cfg.WebSocket.PingInterval.Duration() <= 0 {
		errs.AddField("websocket.ping_interval", "must be positive")
	}

	if cfg.Shutdown.DrainTimeoutSec <= 0 {
		errs.AddField("shutdown.drain_timeout_sec", "must be positive")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs.AddField("logging.level", fmt.Sprintf("unknown level %q", cfg.Logging.Level))
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs.AddField("logging.format", fmt.Sprintf("unknown format %q", cfg.Logging.Format))
	}

	// Sweep validation
	if cfg.Sweep.Interval.Duration() <= 0 {
		errs.AddField("sweep.interval", "must be positive")
	}
	if cfg.Sweep.Jitter.Duration() < 0 {
		errs.AddField("sweep.jitter", "cannot be negative")
	} else if cfg.Sweep.Interval.Duration() > 0 && cfg.Sweep.Jitter.Duration() >= cfg.Sweep.Interval.Duration() {
		errs.AddField("sweep.jitter", "must be shorter than sweep.interval")
	}

	// Catalog validation
	if cfg.Catalog.Path == "" {
		errs.AddField("catalog.path", "cannot be empty")
	}
	if cfg.Catalog.Watch && cfg.Catalog.WatchInterval.Duration() <= 0 {
		errs.AddField("catalog.watch_interval", "must be positive when watch is enabled")
	}

	// Engine validation (the engine config checks its own sections)
	if cfg.Engine == nil {
		errs.AddField("engine", "cannot be empty")
	} else if err := cfg.Engine.Validate(); err != nil {
		errs.AddField("engine", err.Error())
	}

	// Metastore validation
	if cfg.Metastore.Path == "" {
		errs.AddField("metastore.path", "cannot be empty")
	}
	if cfg.Metastore.RunHistoryLimit < 0 {
		errs.AddField("metastore.run_history_limit", "cannot be negative")
	}
	if cfg.Metastore.AlertRetention.Duration() < 0 {
		errs.AddField("metastore.alert_retention", "cannot be negative")
	}
	if cfg.Metastore.MaxOpenConns <= 0 {
		errs.AddField("metastore.max_open_conns", "must be positive")
	}
	if cfg.Metastore.MaxIdleConns < 0 {
		errs.AddField("metastore.max_idle_conns", "cannot be negative")
	} else if cfg.Metastore.MaxIdleConns > cfg.Metastore.MaxOpenConns {
		errs.AddField("metastore.max_idle_conns", "cannot exceed max_open_conns")
	}

	// Archive validation (if enabled)
	if cfg.Archive.Enabled {
		if cfg.Archive.Dir == "" {
			errs.AddField("archive.dir", "cannot be empty when enabled")
		}
		switch cfg.Archive.Compression.Algorithm {
		case "snappy", "zstd", "lz4", "gzip", "none":
		default:
			errs.AddField("archive.compression.algorithm", fmt.Sprintf("unknown algorithm %q", cfg.Archive.Compression.Algorithm))
		}
		if cfg.Archive.Retention.Duration() < 0 {
			errs.AddField("archive.retention", "cannot be negative")
		}
		if cfg.Archive.MaxTotalSize.Bytes() < 0 {
			errs.AddField("archive.max_total_size", "cannot be negative")
		}
	}

	return errs.Err()
}

// =============================================================================
// Conversion: Config → Store Config (Metastore)
// =============================================================================

// ToMetastoreConfig converts the metastore configuration to the internal store config.
func ToMetastoreConfig(cfg MetastoreConfig) store.Config {
	return store.Config{
		DSN:             cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime.Duration(),
		QueryTimeout:    cfg.QueryTimeout.Duration(),
		RunHistoryLimit: cfg.RunHistoryLimit,
	}
}

// =============================================================================
// Conversion: Config → Archive Config
// =============================================================================

// ToArchiveConfig converts the archive configuration to the internal archive config.
// Returns nil when archiving is disabled.
func ToArchiveConfig(cfg ArchiveConfig) *archive.Config {
	if !cfg.Enabled {
		return nil
	}

	return &archive.Config{
		Dir:          cfg.Dir,
		Algorithm:    cfg.Compression.Algorithm,
		Level:        cfg.Compression.Level,
		Retention:    cfg.Retention.Duration(),
		MaxTotalSize: cfg.MaxTotalSize.Bytes(),
	}
}

// =============================================================================
// Conversion: Config → Server Config
// =============================================================================

// ToServerConfig converts the runtime settings to the internal server config.
// The caller wires in the engine, store, archive, and catalog provider.
func ToServerConfig(cfg *Config) *server.Config {
	return &server.Config{
		Listen:         cfg.Listen,
		TLSCertFile:    cfg.TLS.CertFile,
		TLSKeyFile:     cfg.TLS.KeyFile,
		RatePerSecond:  cfg.RateLimit.PerSecond,
		RateBurst:      cfg.RateLimit.Burst,
		WSSendBuffer:   cfg.WebSocket.SendBufferSize,
		WSWriteTimeout: cfg.WebSocket.WriteTimeout.Duration(),
		WSPingInterval: cfg.WebSocket.PingInterval.Duration(),
		DrainTimeout:   time.Duration(cfg.Shutdown.DrainTimeoutSec) * time.Second,
	}
}

// =============================================================================
// Conversion: Logging
// =============================================================================

// SlogLevel maps the configured level to a slog level.
// Unknown strings fall back to info; Validate rejects them first.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// JSONFormat returns true when logs are JSON encoded.
func (l LoggingConfig) JSONFormat() bool {
	return l.Format == "json"
}
