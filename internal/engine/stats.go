package engine

import (
	"math"

	"github.com/DataDog/sketches-go/ddsketch"

	"github.com/guardiandrive/guardiand/internal/engine/config"
)

// distribution maintains running statistics over one sweep's values,
// with DDSketch percentiles when enabled. One distribution lives for
// one sweep; sweeps build fresh ones rather than resetting.
type distribution struct {
	count int64
	sum   float64
	min   float64
	max   float64

	// sketch is nil when percentiles are disabled or construction
	// failed; quantile falls back to the mean.
	sketch *ddsketch.DDSketch
}

func newDistribution(cfg config.PercentileConfig) *distribution {
	d := &distribution{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
	if cfg.Enabled {
		sketch, err := ddsketch.NewDefaultDDSketch(cfg.Accuracy)
		if err == nil {
			d.sketch = sketch
		}
	}
	return d
}

func (d *distribution) add(v float64) {
	d.count++
	d.sum += v
	if v < d.min {
		d.min = v
	}
	if v > d.max {
		d.max = v
	}
	if d.sketch != nil {
		d.sketch.Add(v)
	}
}

func (d *distribution) mean() float64 {
	if d.count == 0 {
		return 0
	}
	return d.sum / float64(d.count)
}

// quantile returns the value at q within the sketch's relative accuracy.
// Without a sketch or data it degrades to the mean so the summary stays
// populated.
func (d *distribution) quantile(q float64) float64 {
	if d.sketch == nil || d.count == 0 {
		return d.mean()
	}
	v, err := d.sketch.GetValueAtQuantile(q)
	if err != nil {
		return d.mean()
	}
	return v
}
