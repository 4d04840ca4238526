// Package health scores drive failure risk from SMART telemetry.
//
// Scoring is a pure function of one telemetry snapshot and the
// configured weights: the same input always produces the same verdict.
package health

import (
	"fmt"
	"sort"

	"github.com/guardiandrive/guardiand/internal/engine/config"
	"github.com/guardiandrive/guardiand/internal/errors"
	"github.com/guardiandrive/guardiand/internal/model"
	"github.com/guardiandrive/guardiand/internal/validation"
)

// Scorer evaluates drive health from SMART telemetry.
type Scorer struct {
	cfg config.HealthConfig
}

// New creates a scorer. The configuration is validated up front so a
// misconfigured scorer can never produce partial results.
func New(cfg config.HealthConfig) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: health: %w", errors.ErrConfiguration, err)
	}
	return &Scorer{cfg: cfg}, nil
}

// factor is one SMART indicator prepared for scoring.
type factor struct {
	name    string
	raw     float64
	weight  float64
	ceiling float64
}

// Score computes the health verdict for one drive. Malformed telemetry
// returns a validation error and no partial result.
func (s *Scorer) Score(t model.DriveTelemetry) (model.DriveHealth, error) {
	if err := validation.Telemetry(t); err != nil {
		return model.DriveHealth{}, err
	}

	tempExcess := t.TemperatureC - s.cfg.SafeTemperatureC
	if tempExcess < 0 {
		tempExcess = 0
	}

	w, ce := s.cfg.Weights, s.cfg.Ceilings
	factors := []factor{
		{"reallocated_sectors", float64(t.ReallocatedSectors), w.Reallocated, ce.Reallocated},
		{"pending_sectors", float64(t.PendingSectors), w.Pending, ce.Pending},
		{"udma_crc_errors", float64(t.UDMACRCErrors), w.UDMACRC, ce.UDMACRC},
		{"temperature", tempExcess, w.Temperature, ce.TemperatureExcessC},
		{"read_error_rate", t.ReadErrorRate, w.ReadErrors, ce.ReadErrors},
		{"seek_error_rate", t.SeekErrorRate, w.SeekErrors, ce.SeekErrors},
		{"power_on_hours", float64(t.PowerOnHours), w.PowerOnHours, ce.PowerOnHours},
		{"spin_retries", float64(t.SpinRetries), w.SpinRetries, ce.SpinRetries},
	}

	score := 100.0
	contributing := 0
	var top []model.HealthFactor

	for _, f := range factors {
		if f.raw <= 0 || f.weight <= 0 {
			continue
		}
		norm := f.raw / f.ceiling
		if norm > 1 {
			norm = 1
		}
		impact := norm * f.weight
		score -= impact
		contributing++
		top = append(top, model.HealthFactor{Name: f.name, Impact: impact, Raw: f.raw})
	}

	if score < 0 {
		score = 0
	}

	// Descending impact, name breaks ties so output order is stable.
	sort.Slice(top, func(i, j int) bool {
		if top[i].Impact != top[j].Impact {
			return top[i].Impact > top[j].Impact
		}
		return top[i].Name < top[j].Name
	})

	risk := s.riskLevel(score)

	health := model.DriveHealth{
		DriveID:         t.DriveID,
		HealthScore:     score,
		RiskLevel:       risk,
		Confidence:      s.confidence(contributing),
		TopFactors:      top,
		Recommendations: s.recommend(top, risk),
		EvaluatedAt:     t.CollectedAt,
	}

	if days, ok := s.predictFailureDays(score); ok {
		health.PredictedFailureDays = &days
	}

	return health, nil
}

// riskLevel maps a score onto the configured boundaries. Boundaries are
// inclusive: a score exactly at a boundary takes the better level.
func (s *Scorer) riskLevel(score float64) model.RiskLevel {
	r := s.cfg.Risk
	switch {
	case score >= r.Low:
		return model.RiskLow
	case score >= r.Medium:
		return model.RiskMedium
	case score >= r.High:
		return model.RiskHigh
	default:
		return model.RiskCritical
	}
}

// predictFailureDays estimates days to failure for drives below the
// HIGH boundary. Score 0 maps to the window minimum, a score just under
// the boundary to the window maximum.
func (s *Scorer) predictFailureDays(score float64) (int, bool) {
	boundary := s.cfg.Risk.High
	if score >= boundary {
		return 0, false
	}

	fw := s.cfg.FailureWindow
	span := float64(fw.MaxDays - fw.MinDays)
	days := float64(fw.MinDays) + (score/boundary)*span
	return int(days), true
}

// confidence grows with the number of distinct non-zero factors.
func (s *Scorer) confidence(contributing int) float64 {
	c := s.cfg.Confidence.Base + float64(contributing)*s.cfg.Confidence.PerFactor
	if c > 1 {
		c = 1
	}
	return c
}

// recommend emits operator actions keyed off the dominant factors.
func (s *Scorer) recommend(top []model.HealthFactor, risk model.RiskLevel) []string {
	var recs []string

	if risk == model.RiskCritical {
		recs = append(recs, "Migrate data off this drive immediately")
	}

	seen := make(map[string]bool, len(top))
	for _, f := range top {
		seen[f.Name] = true
	}

	if seen["reallocated_sectors"] || seen["pending_sectors"] {
		recs = append(recs, "Back up this drive and schedule a replacement window")
	}
	if seen["udma_crc_errors"] {
		recs = append(recs, "Reseat or replace the drive data cable")
	}
	if seen["temperature"] {
		recs = append(recs, "Check enclosure airflow and cooling")
	}
	if seen["read_error_rate"] || seen["seek_error_rate"] {
		recs = append(recs, "Run an extended surface scan")
	}
	if len(top) > 0 && top[0].Name == "power_on_hours" {
		recs = append(recs, "Drive has high wear; plan a proactive replacement")
	}

	return recs
}
