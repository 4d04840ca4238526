// Package classify assigns files to access tiers from recency,
// frequency and size signals.
package classify

import (
	"fmt"
	"math"
	"time"

	"github.com/guardiandrive/guardiand/internal/engine/config"
	"github.com/guardiandrive/guardiand/internal/errors"
	"github.com/guardiandrive/guardiand/internal/model"
	"github.com/guardiandrive/guardiand/internal/validation"
)

// Classifier maps files onto access tiers. Classification is total:
// every valid file lands in exactly one tier.
type Classifier struct {
	cfg config.ClassifyConfig
}

// New creates a classifier. Cutoff ordering is enforced here so later
// calls never have to re-check it.
func New(cfg config.ClassifyConfig) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: classify: %w", errors.ErrConfiguration, err)
	}
	return &Classifier{cfg: cfg}, nil
}

// Classify scores one file against the reference time and assigns its
// tier. Malformed records return a validation error.
func (c *Classifier) Classify(f model.FileRecord, now time.Time) (model.Classification, error) {
	if err := validation.File(f, now); err != nil {
		return model.Classification{}, err
	}

	recency := math.Exp(-f.DaysSinceAccess(now) / c.cfg.HalfLifeDays)

	accessPerDay := float64(f.AccessCount) / f.AgeDays(now)
	frequency := accessPerDay / c.cfg.RateCapPerDay
	if frequency > 1 {
		frequency = 1
	}

	sizeNorm := f.SizeGB() / c.cfg.SizeCeilingGB
	if sizeNorm > 1 {
		sizeNorm = 1
	}

	w := c.cfg.Weights
	score := w.Recency*recency + w.Frequency*frequency + w.Size*(1-sizeNorm)

	return model.Classification{
		FileID:         f.FileID,
		Tier:           c.tierFor(score),
		TierScore:      score,
		RecencyScore:   recency,
		FrequencyScore: frequency,
		AccessPerDay:   accessPerDay,
		Confidence:     c.confidence(score),
	}, nil
}

// tierFor applies the cutoffs. Comparisons are strict: a score exactly
// on a boundary takes the colder tier.
func (c *Classifier) tierFor(score float64) model.Tier {
	cu := c.cfg.Cutoffs
	switch {
	case score > cu.Hot:
		return model.TierHot
	case score > cu.Warm:
		return model.TierWarm
	case score > cu.Cold:
		return model.TierCold
	default:
		return model.TierArchive
	}
}

// confidence reports how far the score sits from the nearest cutoff,
// normalized to the widest band between boundaries. A score exactly on
// a cutoff reports the floor.
func (c *Classifier) confidence(score float64) float64 {
	cu := c.cfg.Cutoffs

	nearest := math.Abs(score - cu.Hot)
	for _, b := range []float64{cu.Warm, cu.Cold} {
		if d := math.Abs(score - b); d < nearest {
			nearest = d
		}
	}

	widest := cu.Cold
	for _, width := range []float64{cu.Warm - cu.Cold, cu.Hot - cu.Warm, 1 - cu.Hot} {
		if width > widest {
			widest = width
		}
	}

	conf := c.cfg.ConfidenceFloor + nearest/widest
	if conf > 1 {
		conf = 1
	}
	return conf
}
