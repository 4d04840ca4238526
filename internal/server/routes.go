package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// routes builds the router with middleware and all endpoints
// registered.
func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(s.limiter.Middleware())

	router.GET("/healthz", s.handleHealthz)

	api := router.Group("/api")
	{
		api.GET("/dashboard", s.handleDashboard)

		api.GET("/drives", s.handleDrives)
		api.GET("/drives/:id/health", s.handleDriveHealth)

		api.GET("/files", s.handleFiles)

		api.GET("/tiering/analysis", s.handleTieringAnalysis)
		api.GET("/tiering/strategies", s.handleTieringStrategies)

		api.GET("/compression/analysis", s.handleCompressionAnalysis)

		api.GET("/cloud/comparison", s.handleCloudComparison)

		api.GET("/alerts", s.handleAlerts)
		api.POST("/alerts/:id/acknowledge", s.handleAcknowledgeAlert)

		api.GET("/runs", s.handleRuns)

		api.GET("/export/lifecycle", s.handleExportLifecycle)

		api.GET("/archive/status", s.handleArchiveStatus)

		api.GET("/ws", s.hub.Handle())
	}

	return router
}

// requestLogger logs one line per request after it completes.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}

// handleHealthz reports liveness. With a store attached it also checks
// database reachability and reports degraded on failure.
func (s *Server) handleHealthz(c *gin.Context) {
	if s.store != nil {
		if err := s.store.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
