package model

import "time"

// Alert is raised when a drive or migration threshold is crossed.
//
// Acknowledgment is the only permitted mutation. Alerts are never
// silently deleted: a newer alert for the same condition marks the prior
// one superseded.
type Alert struct {
	ID      string `json:"id"`
	DriveID string `json:"drive_id"`

	Severity Severity `json:"severity"`

	// ConditionKey identifies what fired (e.g., "health_critical").
	// A new alert with the same drive and condition supersedes this one.
	ConditionKey string `json:"condition_key"`

	Message           string `json:"message"`
	RecommendedAction string `json:"recommended_action"`

	CreatedAt    time.Time `json:"created_at"`
	Acknowledged bool      `json:"acknowledged"`

	// SupersededBy holds the replacing alert's ID, empty while current.
	SupersededBy string `json:"superseded_by,omitempty"`
}

// Active returns true while the alert is neither acknowledged nor
// superseded.
func (a *Alert) Active() bool {
	return !a.Acknowledged && a.SupersededBy == ""
}

// AlertSummary tallies the current alert set for the dashboard.
type AlertSummary struct {
	Total          int `json:"total"`
	Unacknowledged int `json:"unacknowledged"`
	Critical       int `json:"critical"`
	High           int `json:"high"`
}
