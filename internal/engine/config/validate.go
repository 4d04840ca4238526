package config

import (
	"fmt"
	"math"

	"github.com/guardiandrive/guardiand/internal/errors"
)

// weightTolerance absorbs float drift when checking weight sums.
const weightTolerance = 1e-6

// Validate checks the configuration for errors. Any failure is a
// configuration error: errors.IsConfiguration reports true for it.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Health.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("health: %w", err))
	}

	if err := c.Classify.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("classify: %w", err))
	}

	if err := c.Tiering.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tiering: %w", err))
	}

	if err := c.Compression.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("compression: %w", err))
	}

	if err := c.Arbitrage.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("arbitrage: %w", err))
	}

	if err := c.Executor.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("executor: %w", err))
	}

	if err := c.Percentile.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("percentile: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", errors.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// Validate checks the health scorer configuration.
func (c *HealthConfig) Validate() error {
	var errs []error

	w := c.Weights
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"reallocated", w.Reallocated},
		{"pending", w.Pending},
		{"udma_crc", w.UDMACRC},
		{"temperature", w.Temperature},
		{"read_errors", w.ReadErrors},
		{"seek_errors", w.SeekErrors},
		{"power_on_hours", w.PowerOnHours},
		{"spin_retries", w.SpinRetries},
	} {
		if f.value < 0 {
			errs = append(errs, fmt.Errorf("weights.%s must be non-negative", f.name))
		}
	}

	if sum := w.Sum(); math.Abs(sum-100) > weightTolerance {
		errs = append(errs, fmt.Errorf("weights sum to %g, want 100: %w", sum, errors.ErrWeightSum))
	}

	ce := c.Ceilings
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"reallocated", ce.Reallocated},
		{"pending", ce.Pending},
		{"udma_crc", ce.UDMACRC},
		{"temperature_excess_c", ce.TemperatureExcessC},
		{"read_errors", ce.ReadErrors},
		{"seek_errors", ce.SeekErrors},
		{"power_on_hours", ce.PowerOnHours},
		{"spin_retries", ce.SpinRetries},
	} {
		if f.value <= 0 {
			errs = append(errs, fmt.Errorf("ceilings.%s must be positive", f.name))
		}
	}

	if c.SafeTemperatureC <= 0 || c.SafeTemperatureC >= 100 {
		errs = append(errs, errors.New("safe_temperature_c must be between 0 and 100"))
	}

	r := c.Risk
	if r.Low <= 0 || r.Low >= 100 {
		errs = append(errs, errors.New("risk.low must be between 0 and 100"))
	}
	if r.Medium <= 0 || r.Medium >= 100 {
		errs = append(errs, errors.New("risk.medium must be between 0 and 100"))
	}
	if r.High <= 0 || r.High >= 100 {
		errs = append(errs, errors.New("risk.high must be between 0 and 100"))
	}
	if r.High >= r.Medium || r.Medium >= r.Low {
		errs = append(errs, fmt.Errorf("risk boundaries %g/%g/%g must satisfy high < medium < low: %w",
			r.High, r.Medium, r.Low, errors.ErrThresholdOrder))
	}

	if c.FailureWindow.MinDays < 1 {
		errs = append(errs, errors.New("failure_window.min_days must be at least 1"))
	}
	if c.FailureWindow.MaxDays <= c.FailureWindow.MinDays {
		errs = append(errs, fmt.Errorf("failure_window.max_days must exceed min_days: %w", errors.ErrThresholdOrder))
	}

	if c.Confidence.Base < 0 || c.Confidence.Base > 1 {
		errs = append(errs, errors.New("confidence.base must be between 0 and 1"))
	}
	if c.Confidence.PerFactor < 0 {
		errs = append(errs, errors.New("confidence.per_factor must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the classifier configuration.
func (c *ClassifyConfig) Validate() error {
	var errs []error

	if c.HalfLifeDays <= 0 {
		errs = append(errs, errors.New("half_life_days must be positive"))
	}
	if c.RateCapPerDay <= 0 {
		errs = append(errs, errors.New("rate_cap_per_day must be positive"))
	}
	if c.SizeCeilingGB <= 0 {
		errs = append(errs, errors.New("size_ceiling_gb must be positive"))
	}

	w := c.Weights
	if w.Recency < 0 || w.Frequency < 0 || w.Size < 0 {
		errs = append(errs, errors.New("weights must be non-negative"))
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightTolerance {
		errs = append(errs, fmt.Errorf("weights sum to %g, want 1: %w", sum, errors.ErrWeightSum))
	}

	cu := c.Cutoffs
	if cu.Hot <= 0 || cu.Hot >= 1 {
		errs = append(errs, errors.New("cutoffs.hot must be between 0 and 1"))
	}
	if cu.Warm <= 0 || cu.Warm >= 1 {
		errs = append(errs, errors.New("cutoffs.warm must be between 0 and 1"))
	}
	if cu.Cold <= 0 || cu.Cold >= 1 {
		errs = append(errs, errors.New("cutoffs.cold must be between 0 and 1"))
	}
	if cu.Cold >= cu.Warm || cu.Warm >= cu.Hot {
		errs = append(errs, fmt.Errorf("cutoffs %g/%g/%g must satisfy cold < warm < hot: %w",
			cu.Cold, cu.Warm, cu.Hot, errors.ErrThresholdOrder))
	}

	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1 {
		errs = append(errs, errors.New("confidence_floor must be between 0 and 1"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the tiering configuration.
func (c *TieringConfig) Validate() error {
	var errs []error

	if !c.Provider.Valid() {
		errs = append(errs, fmt.Errorf("provider %d is not a known provider", c.Provider))
	}

	f := c.Freshness
	if f.FreshDays < 1 {
		errs = append(errs, errors.New("freshness.fresh_days must be at least 1"))
	}
	if f.StaleDays <= f.FreshDays {
		errs = append(errs, fmt.Errorf("freshness.stale_days must exceed fresh_days: %w", errors.ErrThresholdOrder))
	}
	if f.Floor <= 0 || f.Floor > 1 {
		errs = append(errs, errors.New("freshness.floor must be between 0 and 1"))
	}

	validTolerances := map[string]bool{
		"conservative": true,
		"balanced":     true,
		"aggressive":   true,
		"":             true, // Empty defaults to balanced
	}
	if !validTolerances[c.RiskTolerance] {
		errs = append(errs, fmt.Errorf("risk_tolerance must be one of: conservative, balanced, aggressive"))
	}

	// The three canonical profiles are required; only their parameters
	// are tunable.
	canonical := []string{"Conservative", "Balanced", "Aggressive"}
	if len(c.Strategies) != len(canonical) {
		errs = append(errs, fmt.Errorf("exactly %d strategy profiles are required (Conservative, Balanced, Aggressive), got %d", len(canonical), len(c.Strategies)))
	} else {
		for i, want := range canonical {
			if c.Strategies[i].Name != want {
				errs = append(errs, fmt.Errorf("strategies[%d]: name must be %q, got %q", i, want, c.Strategies[i].Name))
			}
		}
	}
	for i, s := range c.Strategies {
		if s.CostMultiplier <= 0 {
			errs = append(errs, fmt.Errorf("strategies[%d] %s: cost_multiplier must be positive", i, s.Name))
		}
		if s.RiskReduction < 0 || s.RiskReduction >= 1 {
			errs = append(errs, fmt.Errorf("strategies[%d] %s: risk_reduction must be in [0,1)", i, s.Name))
		}
		if s.LatencyPenalty < 0 || s.LatencyPenalty > 1 {
			errs = append(errs, fmt.Errorf("strategies[%d] %s: latency_penalty must be between 0 and 1", i, s.Name))
		}
		if s.ReplicationFactor < 1 {
			errs = append(errs, fmt.Errorf("strategies[%d] %s: replication_factor must be at least 1", i, s.Name))
		}
		if !s.CloudTier.Valid() {
			errs = append(errs, fmt.Errorf("strategies[%d] %s: cloud_tier %d is not a known tier", i, s.Name, int(s.CloudTier)))
		}
	}

	a := c.AgeThresholds
	if a.IntelligentTieringDays < 1 {
		errs = append(errs, errors.New("age_thresholds.intelligent_tiering_days must be at least 1"))
	}
	if a.GlacierIRDays <= a.IntelligentTieringDays || a.DeepArchiveDays <= a.GlacierIRDays {
		errs = append(errs, fmt.Errorf("age_thresholds %d/%d/%d must be strictly increasing: %w",
			a.IntelligentTieringDays, a.GlacierIRDays, a.DeepArchiveDays, errors.ErrThresholdOrder))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the compression advisor configuration.
func (c *CompressionConfig) Validate() error {
	var errs []error

	if c.MinSizeBytes < 0 {
		errs = append(errs, errors.New("min_size_bytes must be non-negative"))
	}
	if c.MinROI <= 0 {
		errs = append(errs, errors.New("min_roi must be positive"))
	}
	if c.MaxDuration <= 0 {
		errs = append(errs, errors.New("max_duration must be positive"))
	}
	if c.StorageCostPerGBMonth <= 0 {
		errs = append(errs, errors.New("storage_cost_per_gb_month must be positive"))
	}
	if c.ComputeCostPerHour <= 0 {
		errs = append(errs, errors.New("compute_cost_per_hour must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the arbitrage configuration.
func (c *ArbitrageConfig) Validate() error {
	if !c.MaxRetrieval.Valid() {
		return fmt.Errorf("max_retrieval %d is not a known retrieval time", c.MaxRetrieval)
	}
	return nil
}

// Validate checks the executor configuration.
func (c *ExecutorConfig) Validate() error {
	if c.Workers < 0 {
		return errors.New("workers must be non-negative")
	}
	return nil
}

// Validate checks the percentile configuration.
func (c *PercentileConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Accuracy <= 0 || c.Accuracy > 1 {
		return errors.New("accuracy must be between 0 and 1")
	}
	return nil
}
