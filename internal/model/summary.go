package model

import "time"

// StorageSummary totals the fleet's capacity and corpus.
type StorageSummary struct {
	TotalCapacityBytes int64   `json:"total_capacity_bytes"`
	TotalUsedBytes     int64   `json:"total_used_bytes"`
	UtilizationPercent float64 `json:"utilization_percent"`
	TotalFiles         int     `json:"total_files"`
	TotalFileBytes     int64   `json:"total_file_bytes"`
	DriveCount         int     `json:"drive_count"`
}

// HealthSummary aggregates drive health across the fleet.
type HealthSummary struct {
	AverageScore float64 `json:"average_score"`

	// Score distribution percentiles over the fleet.
	P50Score float64 `json:"p50_score"`
	P90Score float64 `json:"p90_score"`
	P99Score float64 `json:"p99_score"`

	// DrivesByRisk counts drives per risk level, keyed by the level's
	// canonical string.
	DrivesByRisk map[string]int `json:"drives_by_risk"`

	HealthyDrives int `json:"healthy_drives"`
}

// TierBucket is one tier's share of the corpus.
type TierBucket struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}

// CostProjection compares current spend against the optimized plan.
type CostProjection struct {
	CurrentMonthlyCost   float64 `json:"current_monthly_cost"`
	OptimizedMonthlyCost float64 `json:"optimized_monthly_cost"`
	ProjectedSavings     float64 `json:"projected_savings"`
}

// DashboardSummary is the facade's aggregate view, built by read-only
// composition of engine outputs. JSON-serializable, no cycles.
type DashboardSummary struct {
	Storage StorageSummary `json:"storage"`
	Health  HealthSummary  `json:"health"`

	// TierDistribution is keyed by the tier's canonical string.
	TierDistribution map[string]TierBucket `json:"tier_distribution"`

	Cost   CostProjection `json:"cost"`
	Alerts AlertSummary   `json:"alerts"`

	// DriveHealth lists per-drive results, stable-sorted by drive id.
	DriveHealth []DriveHealth `json:"drive_health"`

	// Failures lists entities rejected during the sweep.
	Failures []Failure `json:"failures,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}
