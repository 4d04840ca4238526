package model

import "time"

// HealthFactor is one SMART indicator's contribution to the score penalty.
type HealthFactor struct {
	// Name identifies the indicator (e.g., "reallocated_sectors").
	Name string `json:"name"`

	// Impact is the score penalty this factor contributed, in points.
	Impact float64 `json:"impact"`

	// Raw is the indicator's raw telemetry value.
	Raw float64 `json:"raw"`
}

// DriveHealth is the scorer's verdict for one telemetry snapshot.
// Recomputed on every new snapshot, never mutated in place.
type DriveHealth struct {
	DriveID string `json:"drive_id"`

	// HealthScore is 100 minus the weighted SMART penalties, in [0,100].
	HealthScore float64 `json:"health_score"`

	// RiskLevel is the step-function category of HealthScore.
	RiskLevel RiskLevel `json:"risk_level"`

	// PredictedFailureDays is nil at or above the HIGH/CRITICAL score
	// boundary; otherwise bounded to [5,45].
	PredictedFailureDays *int `json:"predicted_failure_days"`

	// Confidence grows with the number of distinct non-zero factors.
	Confidence float64 `json:"confidence"`

	// TopFactors lists indicators by descending contribution.
	TopFactors []HealthFactor `json:"top_factors"`

	// Recommendations are operator-facing actions keyed off the
	// dominant factors.
	Recommendations []string `json:"recommendations"`

	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Healthy returns true when the drive carries no elevated risk.
func (h *DriveHealth) Healthy() bool {
	return h.RiskLevel == RiskLow
}

// DominantFactor returns the name of the highest-impact factor, or "".
func (h *DriveHealth) DominantFactor() string {
	if len(h.TopFactors) == 0 {
		return ""
	}
	return h.TopFactors[0].Name
}
