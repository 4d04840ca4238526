package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guardiandrive/guardiand/internal/errors"
	"github.com/guardiandrive/guardiand/internal/model"
)

// respondError maps an error to its HTTP status and emits a JSON error
// body.
func respondError(c *gin.Context, err error) {
	c.JSON(errors.HTTPStatus(err), gin.H{"error": err.Error()})
}

// =============================================================================
// Dashboard and Drives
// =============================================================================

func (s *Server) handleDashboard(c *gin.Context) {
	summary, err := s.engine.GetSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleDrives(c *gin.Context) {
	summary, err := s.engine.GetSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"drives": summary.DriveHealth,
		"count":  len(summary.DriveHealth),
	})
}

func (s *Server) handleDriveHealth(c *gin.Context) {
	health, err := s.engine.GetDriveHealth(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, health)
}

// =============================================================================
// Files
// =============================================================================

// handleFiles lists the raw file inventory, optionally filtered by
// current tier.
func (s *Server) handleFiles(c *gin.Context) {
	if s.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog not loaded"})
		return
	}
	cat := s.catalog()
	if cat == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog not loaded"})
		return
	}

	files := cat.Files
	if raw := c.Query("tier"); raw != "" {
		tier, err := model.ParseTier(raw)
		if err != nil {
			respondError(c, errors.NewValidation("tier", err.Error()))
			return
		}
		filtered := make([]model.FileRecord, 0, len(files))
		for _, f := range files {
			if f.CurrentTier == tier {
				filtered = append(filtered, f)
			}
		}
		files = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"files": files,
		"count": len(files),
	})
}

// =============================================================================
// Tiering, Compression, Cloud
// =============================================================================

func (s *Server) handleTieringAnalysis(c *gin.Context) {
	plan, err := s.engine.GetTieringPlan(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (s *Server) handleTieringStrategies(c *gin.Context) {
	plan, err := s.engine.GetTieringPlan(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"strategies": plan.Strategies,
		"count":      len(plan.Strategies),
	})
}

func (s *Server) handleCompressionAnalysis(c *gin.Context) {
	recs, err := s.engine.GetCompressionPlan(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recommendations": recs,
		"count":           len(recs),
	})
}

// handleCloudComparison ranks cloud destinations. The max_retrieval
// query bounds acceptable retrieval latency; absent means any.
func (s *Server) handleCloudComparison(c *gin.Context) {
	maxRetrieval := model.RetrievalDays
	if raw := c.Query("max_retrieval"); raw != "" {
		parsed, err := model.ParseRetrievalTime(raw)
		if err != nil {
			respondError(c, errors.NewValidation("max_retrieval", err.Error()))
			return
		}
		maxRetrieval = parsed
	}

	options, err := s.engine.GetCloudOptions(c.Request.Context(), maxRetrieval)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"options": options,
		"count":   len(options),
	})
}

// =============================================================================
// Alerts and Runs
// =============================================================================

func (s *Server) handleAlerts(c *gin.Context) {
	activeOnly := false
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, errors.NewValidation("active", err.Error()))
			return
		}
		activeOnly = parsed
	}

	alerts := s.engine.Alerts()
	if activeOnly {
		filtered := make([]model.Alert, 0, len(alerts))
		for _, a := range alerts {
			if a.Active() {
				filtered = append(filtered, a)
			}
		}
		alerts = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// handleAcknowledgeAlert acknowledges in the engine first, then
// mirrors the flag into the store. A store row that does not exist yet
// is not an error: the next sweep save will carry the flag.
func (s *Server) handleAcknowledgeAlert(c *gin.Context) {
	id := c.Param("id")
	alert, err := s.engine.AcknowledgeAlert(id)
	if err != nil {
		respondError(c, err)
		return
	}

	if s.store != nil {
		if err := s.store.MarkAcknowledged(c.Request.Context(), id); err != nil && !errors.IsNotFound(err) {
			log.Warn("persist acknowledgement", "alert_id", id, "error", err)
		}
	}

	c.JSON(http.StatusOK, alert)
}

func (s *Server) handleRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history not available"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(c, errors.NewValidation("limit", "must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	runs, err := s.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

// =============================================================================
// Export and Archive
// =============================================================================

// handleExportLifecycle emits the ARCHIVE-transition rules as an S3
// bucket lifecycle configuration.
func (s *Server) handleExportLifecycle(c *gin.Context) {
	lifecycle, err := s.engine.Lifecycle()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lifecycle)
}

func (s *Server) handleArchiveStatus(c *gin.Context) {
	if s.archive == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}

	usage, err := s.archive.GetDiskUsage()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enabled": true,
		"usage":   usage,
		"stats":   s.archive.Stats(),
	})
}
