package model

import "time"

// =============================================================================
// Tiering
// =============================================================================

// TieringRecommendation proposes moving one file to a different tier.
// One exists per file per planning run; runs recompute, never accumulate.
type TieringRecommendation struct {
	FileID string `json:"file_id"`
	Path   string `json:"path"`

	CurrentTier     Tier `json:"current_tier"`
	RecommendedTier Tier `json:"recommended_tier"`

	// RecommendedCloud is the cheapest storage class serving the
	// recommended tier, when a price sheet offers one.
	RecommendedCloud *CloudTarget `json:"recommended_cloud,omitempty"`

	// EstimatedSavings is USD per month. Negative means the move adds
	// cost (a warranted promotion to a warmer tier).
	EstimatedSavings float64 `json:"estimated_savings"`

	Urgency Urgency `json:"migration_urgency"`

	// Reason is operator-facing text embedding the access-rate
	// descriptor and savings direction.
	Reason string `json:"reason"`

	// Confidence is classifier confidence times cost-table freshness.
	Confidence float64 `json:"confidence"`
}

// PlanSummary tallies the emitted recommendation set. The per-transition
// counts are exact tallies and sum consistently with Total.
type PlanSummary struct {
	Total              int `json:"total_recommendations"`
	HotToWarm          int `json:"hot_to_warm"`
	WarmToCold         int `json:"warm_to_cold"`
	ColdToArchive      int `json:"cold_to_archive"`
	Promotions         int `json:"promotions"`
	MultiStep          int `json:"multi_step"`
	CriticalMigrations int `json:"critical_migrations"`

	// TotalMonthlySavings sums estimated savings across the set.
	TotalMonthlySavings float64 `json:"total_monthly_savings"`
}

// Failure reports one entity rejected by validation during a batch run.
// Batches report failures alongside computed results, never drop them.
type Failure struct {
	EntityID string `json:"entity_id"`
	Reason   string `json:"reason"`
}

// TieringPlanResult is one planning run's full output.
type TieringPlanResult struct {
	// Recommendations are stable-sorted by FileID.
	Recommendations []TieringRecommendation `json:"recommendations"`

	Summary PlanSummary `json:"summary"`

	// Strategies holds exactly the three canonical fleet options.
	Strategies []StrategyOption `json:"strategies"`

	// Failures lists per-entity validation rejections.
	Failures []Failure `json:"failures,omitempty"`

	PlannedAt time.Time `json:"planned_at"`
}

// =============================================================================
// Strategy Options
// =============================================================================

// StrategyOption is a whole-fleet policy computed over the corpus,
// not an aggregation of per-file recommendations.
type StrategyOption struct {
	// Name is one of "Conservative", "Balanced", "Aggressive".
	Name string `json:"name"`

	MonthlyCost float64 `json:"monthly_cost"`

	// RiskReduction is the percentage of failure exposure removed.
	RiskReduction float64 `json:"risk_reduction"`

	// ReplicationFactor is the number of copies kept, at least 1.
	ReplicationFactor int `json:"replication_factor"`

	CloudTier        Tier   `json:"cloud_tier"`
	CompressionLevel string `json:"compression_level"`

	// Score is the scalarized cost/risk/latency/preference objective.
	Score float64 `json:"score"`

	// Recommended marks the strategy with the best score.
	Recommended bool `json:"recommended"`
}

// =============================================================================
// Compression
// =============================================================================

// AlgorithmProfile describes one candidate compression algorithm.
// Profiles are supplied as configuration, not discovered.
type AlgorithmProfile struct {
	// Name identifies the algorithm and level (e.g., "zstd-19").
	Name string `json:"name" yaml:"name" validate:"required"`

	// RatioByExtension maps extension to expected size reduction in
	// [0,1) (0.70 means the output is 30% of the input).
	RatioByExtension map[string]float64 `json:"ratio_by_extension,omitempty" yaml:"ratio_by_extension"`

	// DefaultRatio applies to extensions missing from the table.
	DefaultRatio float64 `json:"default_ratio" yaml:"default_ratio" validate:"gte=0,lt=1"`

	// ThroughputMBps is the expected compression speed.
	ThroughputMBps float64 `json:"throughput_mbps" yaml:"throughput_mbps" validate:"gt=0"`

	// SpeedFactor scales the CPU cost proxy; slower algorithms burn
	// more compute per byte.
	SpeedFactor float64 `json:"speed_factor" yaml:"speed_factor" validate:"gt=0"`
}

// Ratio returns the expected reduction for an extension.
func (p *AlgorithmProfile) Ratio(ext string) float64 {
	if r, ok := p.RatioByExtension[ext]; ok {
		return r
	}
	return p.DefaultRatio
}

// CompressionRecommendation is the advisor's verdict for one file.
type CompressionRecommendation struct {
	FileID string `json:"file_id"`
	Path   string `json:"path"`

	CurrentSize    int64 `json:"current_size"`
	CompressedSize int64 `json:"compressed_size"`

	// CompressionRatio is 1 - compressed/current.
	CompressionRatio float64 `json:"compression_ratio"`

	Algorithm string `json:"algorithm"`

	MonthlySavings  float64       `json:"monthly_savings"`
	CompressionTime time.Duration `json:"compression_time"`

	// ROIScore is monthly savings over the one-time CPU cost proxy.
	ROIScore float64 `json:"roi_score"`

	Recommend bool   `json:"recommend"`
	Reason    string `json:"reason,omitempty"`
}
