// Package compress decides whether compressing a file pays for itself.
//
// Planning never touches file contents: outcomes are estimated from
// per-algorithm ratio tables keyed by extension, or from a measured
// Compressibility when the catalog carries one. Probe measures real
// compressibility from a content sample for callers that have one.
package compress

import (
	"fmt"
	"time"

	"github.com/guardiandrive/guardiand/internal/engine/config"
	"github.com/guardiandrive/guardiand/internal/errors"
	"github.com/guardiandrive/guardiand/internal/model"
)

const (
	// maxRatio caps any estimate so compressed output never rounds to
	// zero bytes.
	maxRatio = 0.99

	// lowRatio is the reduction below which content is reported as
	// already compressed.
	lowRatio = 0.20
)

// Advisor prices compression candidates: recurring storage savings
// against a one-time CPU cost. Advisors are immutable and safe for
// concurrent use.
type Advisor struct {
	cfg config.CompressionConfig
}

// New returns an Advisor for the given economics configuration.
func New(cfg config.CompressionConfig) (*Advisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: compress: %w", errors.ErrConfiguration, err)
	}
	return &Advisor{cfg: cfg}, nil
}

// estimate is one algorithm's projected outcome for one file.
type estimate struct {
	name       string
	ratio      float64
	compressed int64
	duration   time.Duration
	savings    float64
	cpuCost    float64
	roi        float64
}

// Advise evaluates every profile against the file and returns the
// best-paying candidate. Files under the size floor get a zero
// recommendation with Recommend false and no error. CompressedSize
// never exceeds CurrentSize.
func (a *Advisor) Advise(f model.FileRecord, profiles []model.AlgorithmProfile) (model.CompressionRecommendation, error) {
	if len(profiles) == 0 {
		return model.CompressionRecommendation{}, errors.NewConfiguration("algorithm_profiles", "at least one profile is required")
	}
	for i := range profiles {
		if err := checkProfile(&profiles[i]); err != nil {
			return model.CompressionRecommendation{}, err
		}
	}

	if f.FileID == "" {
		return model.CompressionRecommendation{}, errors.NewMissingField("file_id")
	}
	if f.SizeBytes <= 0 {
		return model.CompressionRecommendation{}, errors.NewInvalidValue("size_bytes", f.SizeBytes, "must be positive")
	}
	if f.Compressibility < 0 || f.Compressibility > 1 {
		return model.CompressionRecommendation{}, errors.NewInvalidValue("compressibility", f.Compressibility, "must be within [0,1]")
	}

	rec := model.CompressionRecommendation{
		FileID:      f.FileID,
		Path:        f.Path,
		CurrentSize: f.SizeBytes,
	}

	if f.SizeBytes < a.cfg.MinSizeBytes {
		rec.Reason = "below the minimum size floor"
		return rec, nil
	}

	ext := f.Ext()
	best := estimate{roi: -1}
	for i := range profiles {
		e := a.estimate(&profiles[i], &f, ext)
		if e.roi > best.roi || (e.roi == best.roi && e.duration < best.duration) {
			best = e
		}
	}

	rec.CompressedSize = best.compressed
	rec.CompressionRatio = best.ratio
	rec.Algorithm = best.name
	rec.MonthlySavings = best.savings
	rec.CompressionTime = best.duration
	rec.ROIScore = best.roi
	rec.Recommend = best.roi >= a.cfg.MinROI && best.duration <= a.cfg.MaxDuration
	rec.Reason = a.reason(rec.Recommend, best)
	return rec, nil
}

// estimate projects one profile's outcome. A non-zero measured
// Compressibility overrides the extension table for every profile.
func (a *Advisor) estimate(p *model.AlgorithmProfile, f *model.FileRecord, ext string) estimate {
	ratio := p.Ratio(ext)
	if f.Compressibility > 0 {
		ratio = f.Compressibility
	}
	ratio = clampRatio(ratio)

	compressed := int64(float64(f.SizeBytes) * (1 - ratio))
	savedGB := float64(f.SizeBytes-compressed) / float64(model.GiB)
	savings := savedGB * a.cfg.StorageCostPerGBMonth

	seconds := float64(f.SizeBytes) / (p.ThroughputMBps * 1e6)
	cpu := (seconds / 3600) * a.cfg.ComputeCostPerHour * p.SpeedFactor

	roi := 0.0
	if cpu > 0 {
		roi = savings / cpu
	}

	return estimate{
		name:       p.Name,
		ratio:      ratio,
		compressed: compressed,
		duration:   time.Duration(seconds * float64(time.Second)),
		savings:    savings,
		cpuCost:    cpu,
		roi:        roi,
	}
}

func (a *Advisor) reason(recommend bool, e estimate) string {
	if recommend {
		return fmt.Sprintf("High compressibility (%.0f%%) with ROI %.1fx", e.ratio*100, e.roi)
	}
	switch {
	case e.ratio < lowRatio:
		return "Already compressed or low compressibility"
	case e.duration > a.cfg.MaxDuration:
		return fmt.Sprintf("compression would run %s, over the %s limit",
			e.duration.Round(time.Second), a.cfg.MaxDuration)
	default:
		return fmt.Sprintf("ROI %.1fx is below the %.1fx payback threshold", e.roi, a.cfg.MinROI)
	}
}

func checkProfile(p *model.AlgorithmProfile) error {
	switch {
	case p.Name == "":
		return errors.NewConfiguration("algorithm_profiles", "profile name is required")
	case p.ThroughputMBps <= 0:
		return errors.NewConfiguration("algorithm_profiles", p.Name+": throughput must be positive")
	case p.SpeedFactor <= 0:
		return errors.NewConfiguration("algorithm_profiles", p.Name+": speed factor must be positive")
	case p.DefaultRatio < 0 || p.DefaultRatio >= 1:
		return errors.NewConfiguration("algorithm_profiles", p.Name+": default ratio must be within [0,1)")
	}
	return nil
}

func clampRatio(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > maxRatio {
		return maxRatio
	}
	return r
}
