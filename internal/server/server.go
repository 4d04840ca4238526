// Package server exposes the decision engine over HTTP: dashboard and
// analysis endpoints, alert acknowledgement, run history, and a
// websocket feed that pushes sweep results as they complete.
package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/guardiandrive/guardiand/config"
	"github.com/guardiandrive/guardiand/internal/archive"
	"github.com/guardiandrive/guardiand/internal/catalog"
	"github.com/guardiandrive/guardiand/internal/engine"
	"github.com/guardiandrive/guardiand/internal/logging"
	"github.com/guardiandrive/guardiand/internal/store"
)

var log = logging.Component("server")

// CatalogProvider returns the most recently loaded catalog, or nil
// when none is available yet.
type CatalogProvider func() *catalog.Catalog

// Config holds server configuration.
type Config struct {
	// Engine is the decision engine (required).
	Engine *engine.Service

	// Store persists alerts and run history (optional; run endpoints
	// degrade without it).
	Store *store.Store

	// Archive holds tiering plan snapshots (optional).
	Archive *archive.Archive

	// Catalog supplies the raw inventory for the file listing
	// endpoint (optional).
	Catalog CatalogProvider

	// Listen is the address to listen on (e.g., "0.0.0.0:9318").
	Listen string

	// TLS configuration (optional).
	TLSCertFile string
	TLSKeyFile  string

	// Rate limiting per client IP.
	RatePerSecond float64
	RateBurst     int

	// Websocket settings.
	WSSendBuffer   int
	WSWriteTimeout time.Duration
	WSPingInterval time.Duration

	// DrainTimeout bounds graceful shutdown.
	DrainTimeout time.Duration
}

// Server is the HTTP front end over the engine and its stores.
type Server struct {
	cfg     *Config
	engine  *engine.Service
	store   *store.Store
	archive *archive.Archive
	catalog CatalogProvider

	hub     *Hub
	limiter *RateLimiter
	http    *http.Server
}

// New creates a new server. Run must be called to start serving.
func New(cfg *Config) *Server {
	// Apply defaults
	listen := cfg.Listen
	if listen == "" {
		listen = config.DefaultListenAddress
	}
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = config.DefaultRateLimitPerSecond
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = config.DefaultRateLimitBurst
	}

	s := &Server{
		cfg:     cfg,
		engine:  cfg.Engine,
		store:   cfg.Store,
		archive: cfg.Archive,
		catalog: cfg.Catalog,
		hub:     NewHub(cfg.WSSendBuffer, cfg.WSWriteTimeout, cfg.WSPingInterval),
		limiter: NewRateLimiter(rate.Limit(rps), burst),
	}

	s.http = &http.Server{
		Addr:           listen,
		Handler:        s.routes(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		s.http.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	return s
}

// Run starts the websocket hub and serves until Shutdown. It returns
// nil on graceful shutdown.
func (s *Server) Run() error {
	go s.hub.Run()

	var err error
	if s.cfg.TLSCertFile != "" && s.cfg.TLSKeyFile != "" {
		log.Info("listening with TLS", "address", s.http.Addr)
		err = s.http.ListenAndServeTLS(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
	} else {
		log.Info("listening without TLS", "address", s.http.Addr)
		err = s.http.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully: no new connections, hub
// drained, in-flight requests given DrainTimeout to finish.
func (s *Server) Shutdown() error {
	log.Info("shutting down")
	s.limiter.Stop()
	s.hub.Stop()

	drain := s.cfg.DrainTimeout
	if drain <= 0 {
		drain = time.Duration(config.DefaultDrainTimeoutSec) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

// wsEvent is the envelope for websocket pushes.
type wsEvent struct {
	Type string      `json:"type"`
	Time time.Time   `json:"time"`
	Data interface{} `json:"data"`
}

// Publish broadcasts an event to all connected websocket clients.
func (s *Server) Publish(eventType string, data interface{}) {
	payload, err := json.Marshal(wsEvent{
		Type: eventType,
		Time: time.Now().UTC(),
		Data: data,
	})
	if err != nil {
		log.Warn("marshal websocket event", "type", eventType, "error", err)
		return
	}
	s.hub.Broadcast(payload)
}
