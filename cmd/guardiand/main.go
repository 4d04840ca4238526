// guardiand is the storage orchestration daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guardiandrive/guardiand/internal/alerts"
	"github.com/guardiandrive/guardiand/internal/archive"
	"github.com/guardiandrive/guardiand/internal/catalog"
	"github.com/guardiandrive/guardiand/internal/engine"
	"github.com/guardiandrive/guardiand/internal/loader"
	"github.com/guardiandrive/guardiand/internal/logging"
	"github.com/guardiandrive/guardiand/internal/server"
	"github.com/guardiandrive/guardiand/internal/store"
)

// Version is set at build time via ldflags
var Version = "dev"

// sweepTimeout bounds one evaluation cycle including persistence.
const sweepTimeout = 2 * time.Minute

func main() {
	// CLI flags
	cfgPath := flag.String("config", "config.yaml", "config file path")
	listen := flag.String("listen", "", "listen address (overrides config)")
	noTLS := flag.Bool("no-tls", false, "disable TLS")
	tlsCert := flag.String("tls-cert", "", "TLS certificate file")
	tlsKey := flag.String("tls-key", "", "TLS key file")
	dbPath := flag.String("db", "", "metastore database path (overrides config)")
	catalogPath := flag.String("catalog", "", "catalog file path (overrides config)")
	noWatch := flag.Bool("no-watch", false, "disable catalog file watching")
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	log.Printf("guardiand %s starting...", Version)

	// Load config
	cfg, err := loader.Load(*cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("No config file found, using defaults")
			cfg = loader.DefaultConfig()
		} else {
			log.Fatalf("Load config: %v", err)
		}
	}

	// CLI overrides
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *noTLS {
		cfg.TLS.CertFile = ""
		cfg.TLS.KeyFile = ""
	}
	if *tlsCert != "" {
		cfg.TLS.CertFile = *tlsCert
	}
	if *tlsKey != "" {
		cfg.TLS.KeyFile = *tlsKey
	}
	if *dbPath != "" {
		cfg.Metastore.Path = *dbPath
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}
	if *noWatch {
		cfg.Catalog.Watch = false
	}

	// Validate
	if err := loader.Validate(cfg); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Structured logging from here on
	logging.Init(cfg.Logging.SlogLevel(), cfg.Logging.JSONFormat())
	logger := logging.Component("main")

	// =========================================================================
	// Initialize Metastore (DuckDB - alerts, run history)
	// =========================================================================

	logger.Info("initializing metastore", "path", cfg.Metastore.Path)

	st, err := store.New(loader.ToMetastoreConfig(cfg.Metastore))
	if err != nil {
		logger.Error("create metastore", "error", err)
		os.Exit(1)
	}

	// =========================================================================
	// Initialize Archive (Parquet - plan snapshots)
	// =========================================================================

	var arc *archive.Archive
	if acfg := loader.ToArchiveConfig(cfg.Archive); acfg != nil {
		arc, err = archive.New(*acfg)
		if err != nil {
			logger.Error("create archive", "error", err)
			os.Exit(1)
		}
		logger.Info("archive enabled",
			"dir", acfg.Dir,
			"compression", acfg.Algorithm,
			"retention", acfg.Retention)
	} else {
		logger.Info("archive disabled")
	}

	// =========================================================================
	// Initialize Alerts and Engine
	// =========================================================================

	manager := alerts.NewManager()
	if persisted, err := st.ListAlerts(context.Background()); err != nil {
		logger.Warn("load persisted alerts", "error", err)
	} else if len(persisted) > 0 {
		manager.Seed(persisted)
		logger.Info("restored alerts from metastore", "count", len(persisted))
	}

	svc, err := engine.NewService(cfg.Engine, engine.WithAlertManager(manager))
	if err != nil {
		logger.Error("create engine", "error", err)
		os.Exit(1)
	}

	// =========================================================================
	// Load Catalog
	// =========================================================================

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Error("load catalog", "path", cfg.Catalog.Path, "error", err)
		os.Exit(1)
	}
	hash := svc.SetInputs(cat.Inputs())
	logger.Info("catalog loaded",
		"path", cfg.Catalog.Path,
		"drives", len(cat.Drives),
		"files", len(cat.Files),
		"hash", fmt.Sprintf("%016x", hash))

	var current atomic.Pointer[catalog.Catalog]
	current.Store(cat)

	// =========================================================================
	// Create Server
	// =========================================================================

	gin.SetMode(gin.ReleaseMode)

	srvCfg := loader.ToServerConfig(cfg)
	srvCfg.Engine = svc
	srvCfg.Store = st
	srvCfg.Archive = arc
	srvCfg.Catalog = func() *catalog.Catalog { return current.Load() }
	srv := server.New(srvCfg)

	// =========================================================================
	// Sweep Loop and Catalog Watcher
	// =========================================================================

	d := &daemon{
		log:            logger,
		engine:         svc,
		alerts:         manager,
		store:          st,
		archive:        arc,
		server:         srv,
		alertRetention: cfg.Metastore.AlertRetention.Duration(),
	}

	stop := make(chan struct{})
	kick := make(chan struct{}, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.sweepLoop(stop, kick, cfg.Sweep.Interval.Duration(), cfg.Sweep.Jitter.Duration())
	}()

	var watcher *catalog.Watcher
	if cfg.Catalog.Watch {
		watcher = catalog.NewWatcher(cfg.Catalog.Path, cfg.Catalog.WatchInterval.Duration(), func(c *catalog.Catalog, err error) {
			if err != nil {
				logger.Warn("catalog reload", "error", err)
				return
			}
			current.Store(c)
			h := svc.SetInputs(c.Inputs())
			logger.Info("catalog reloaded",
				"drives", len(c.Drives),
				"files", len(c.Files),
				"hash", fmt.Sprintf("%016x", h))
			// Sweep now instead of waiting out the interval
			select {
			case kick <- struct{}{}:
			default:
			}
		})
		watcher.Start()
	}

	// =========================================================================
	// Signal Handling and Graceful Shutdown
	// =========================================================================

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sig
		logger.Info("shutting down", "signal", s.String())

		// Stop sources of new work first
		if watcher != nil {
			watcher.Stop()
		}
		close(stop)

		// Drain in-flight requests; Run returns when this completes
		if err := srv.Shutdown(); err != nil {
			logger.Warn("server shutdown", "error", err)
		}
	}()

	// =========================================================================
	// Run
	// =========================================================================

	logger.Info("guardiand ready",
		"version", Version,
		"listen", cfg.Listen,
		"sweep_interval", cfg.Sweep.Interval.Duration(),
		"watch", cfg.Catalog.Watch)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	wg.Wait()
	if err := st.Close(); err != nil {
		logger.Warn("close metastore", "error", err)
	}
	logger.Info("shutdown complete")
}

// daemon ties the long-running pieces together for the sweep loop.
type daemon struct {
	log            *slog.Logger
	engine         *engine.Service
	alerts         *alerts.Manager
	store          *store.Store
	archive        *archive.Archive
	server         *server.Server
	alertRetention time.Duration
}

// sweepLoop evaluates once at startup, then again on every interval
// expiry or kick until stop closes.
func (d *daemon) sweepLoop(stop, kick <-chan struct{}, interval, jitter time.Duration) {
	d.sweep()

	for {
		timer := time.NewTimer(nextDelay(interval, jitter))
		select {
		case <-stop:
			timer.Stop()
			return
		case <-kick:
			timer.Stop()
			d.sweep()
		case <-timer.C:
			d.sweep()
		}
	}
}

// nextDelay spreads daemons sharing a pricing endpoint across the
// interval.
func nextDelay(interval, jitter time.Duration) time.Duration {
	if jitter <= 0 {
		return interval
	}
	return interval + time.Duration(rand.Int63n(int64(jitter)))
}

// sweep runs one evaluation cycle. Cycles are skipped while the input
// snapshot matches the last recorded run. After a sweep the run record
// and refreshed alert set land in the metastore and websocket
// subscribers get the new summary.
func (d *daemon) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	// Recording a run for an unchanged snapshot would only duplicate
	// history; the engine serves cached results either way.
	last, err := d.store.LastRun(ctx)
	if err != nil {
		d.log.Warn("read last run", "error", err)
	}
	if last != nil && last.SnapshotHash == d.engine.SnapshotHash() {
		d.log.Debug("snapshot unchanged, skipping sweep",
			"hash", fmt.Sprintf("%016x", last.SnapshotHash))
		return
	}

	rep, err := d.engine.Sweep(ctx)
	if err != nil {
		d.log.Error("sweep failed", "error", err)
		return
	}

	if err := d.store.SaveAlerts(ctx, d.alerts.List()); err != nil {
		d.log.Warn("persist alerts", "error", err)
	}
	if d.alertRetention > 0 {
		cutoff := time.Now().UTC().Add(-d.alertRetention)
		if pruned, err := d.store.PruneAlerts(ctx, cutoff); err != nil {
			d.log.Warn("prune alerts", "error", err)
		} else if pruned > 0 {
			d.log.Info("pruned resolved alerts", "count", pruned)
		}
	}

	run := &store.Run{
		SnapshotHash:    rep.SnapshotHash,
		StartedAt:       rep.StartedAt,
		Duration:        rep.Duration,
		Drives:          rep.Drives,
		Files:           rep.Files,
		Recommendations: rep.Recommendations,
		Failures:        rep.Failures,
		AlertsRaised:    len(rep.RaisedAlerts),
	}
	if err := d.store.CreateRun(ctx, run); err != nil {
		d.log.Warn("record run", "error", err)
	}

	if d.archive != nil {
		d.archiveSnapshot(ctx, run.ID)
	}

	if sum, err := d.engine.GetSummary(ctx); err == nil {
		d.server.Publish("summary", sum)
	}
	for _, a := range rep.RaisedAlerts {
		d.server.Publish("alert", a)
	}

	d.log.Info("sweep complete",
		"hash", fmt.Sprintf("%016x", rep.SnapshotHash),
		"drives", rep.Drives,
		"files", rep.Files,
		"recommendations", rep.Recommendations,
		"failures", rep.Failures,
		"alerts_raised", len(rep.RaisedAlerts),
		"duration", rep.Duration)
}

// archiveSnapshot writes the current plan as a Parquet file and prunes
// expired snapshots.
func (d *daemon) archiveSnapshot(ctx context.Context, runID string) {
	plan, err := d.engine.GetTieringPlan(ctx)
	if err != nil {
		d.log.Warn("plan for archive", "error", err)
		return
	}
	path, err := d.archive.WriteSnapshot(runID, &plan)
	if err != nil {
		d.log.Warn("archive snapshot", "error", err)
		return
	}
	d.log.Debug("archived plan snapshot", "path", path)

	result := d.archive.Prune()
	for _, err := range result.Errors {
		d.log.Warn("archive prune", "error", err)
	}
	if result.FilesDeleted > 0 {
		d.log.Info("pruned archive snapshots",
			"deleted", result.FilesDeleted,
			"bytes_freed", result.BytesFreed)
	}
}
