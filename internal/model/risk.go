package model

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// Risk Level
// =============================================================================

// RiskLevel categorizes a drive's failure risk from its health score.
type RiskLevel int

const (
	// RiskLow indicates a healthy drive.
	RiskLow RiskLevel = iota

	// RiskMedium indicates early wear indicators.
	RiskMedium

	// RiskHigh indicates degradation that warrants a replacement plan.
	RiskHigh

	// RiskCritical indicates imminent failure risk.
	RiskCritical
)

// String returns the canonical string representation of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	case RiskCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("unknown(%d)", r)
	}
}

// Valid returns true if the risk level is one of the defined values.
func (r RiskLevel) Valid() bool {
	return r >= RiskLow && r <= RiskCritical
}

// AtLeast returns true if this risk is at or above the given level.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r >= other
}

// MarshalJSON implements json.Marshaler.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRiskLevel parses a string into a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch s {
	case "LOW", "low":
		return RiskLow, nil
	case "MEDIUM", "medium":
		return RiskMedium, nil
	case "HIGH", "high":
		return RiskHigh, nil
	case "CRITICAL", "critical":
		return RiskCritical, nil
	default:
		return RiskLow, fmt.Errorf("unknown risk level: %s", s)
	}
}

// AllRiskLevels returns all risk levels ordered lowest to highest.
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}
}

// =============================================================================
// Migration Urgency
// =============================================================================

// Urgency describes how soon a recommended migration should happen.
type Urgency int

const (
	// UrgencyImmediate means migrate now, typically because the owning
	// drive is at critical failure risk.
	UrgencyImmediate Urgency = iota

	// UrgencySevenDays means migrate within a week.
	UrgencySevenDays

	// UrgencyThirtyDays means migrate within the month.
	UrgencyThirtyDays
)

// String returns the canonical string representation of the urgency.
func (u Urgency) String() string {
	switch u {
	case UrgencyImmediate:
		return "IMMEDIATE"
	case UrgencySevenDays:
		return "7_DAYS"
	case UrgencyThirtyDays:
		return "30_DAYS"
	default:
		return fmt.Sprintf("unknown(%d)", u)
	}
}

// Valid returns true if the urgency is one of the defined values.
func (u Urgency) Valid() bool {
	return u >= UrgencyImmediate && u <= UrgencyThirtyDays
}

// MoreUrgent returns the more urgent of the two values.
func (u Urgency) MoreUrgent(other Urgency) Urgency {
	if other < u {
		return other
	}
	return u
}

// MarshalJSON implements json.Marshaler.
func (u Urgency) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *Urgency) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseUrgency(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ParseUrgency parses a string into an Urgency.
func ParseUrgency(s string) (Urgency, error) {
	switch s {
	case "IMMEDIATE", "immediate":
		return UrgencyImmediate, nil
	case "7_DAYS", "7_days":
		return UrgencySevenDays, nil
	case "30_DAYS", "30_days":
		return UrgencyThirtyDays, nil
	default:
		return UrgencyThirtyDays, fmt.Errorf("unknown urgency: %s", s)
	}
}

// =============================================================================
// Alert Severity
// =============================================================================

// Severity ranks an alert's importance.
type Severity int

const (
	// SeverityCritical requires immediate operator attention.
	SeverityCritical Severity = iota

	// SeverityHigh should be handled within the day.
	SeverityHigh

	// SeverityMedium is informational but actionable.
	SeverityMedium

	// SeverityLow is advisory.
	SeverityLow
)

// String returns the canonical string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Valid returns true if the severity is one of the defined values.
func (s Severity) Valid() bool {
	return s >= SeverityCritical && s <= SeverityLow
}

// MarshalJSON implements json.Marshaler.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSeverity(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a string into a Severity.
func ParseSeverity(str string) (Severity, error) {
	switch str {
	case "critical", "CRITICAL":
		return SeverityCritical, nil
	case "high", "HIGH":
		return SeverityHigh, nil
	case "medium", "MEDIUM":
		return SeverityMedium, nil
	case "low", "LOW":
		return SeverityLow, nil
	default:
		return SeverityLow, fmt.Errorf("unknown severity: %s", str)
	}
}

// AllSeverities returns all severities ordered most to least severe.
func AllSeverities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}
