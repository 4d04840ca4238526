package tiering

import "github.com/guardiandrive/guardiand/internal/model"

// neutralPreference stands in for the operator-preference objective
// until a real feedback signal exists.
const neutralPreference = 0.5

// scalarWeights blend the four strategy objectives. Each set sums to 1.
type scalarWeights struct {
	Cost       float64
	Risk       float64
	Latency    float64
	Preference float64
}

// toleranceWeights maps a risk tolerance to its scalarization weights.
// Conservative shifts weight from cost toward risk reduction and
// latency; aggressive shifts it toward cost. An unset tolerance scores
// as balanced.
func toleranceWeights(tolerance string) scalarWeights {
	switch tolerance {
	case "conservative":
		return scalarWeights{Cost: 0.30, Risk: 0.40, Latency: 0.20, Preference: 0.10}
	case "aggressive":
		return scalarWeights{Cost: 0.55, Risk: 0.20, Latency: 0.15, Preference: 0.10}
	default:
		return scalarWeights{Cost: 0.40, Risk: 0.35, Latency: 0.15, Preference: 0.10}
	}
}

// strategies scores every configured fleet profile over the corpus.
// Monthly cost is the blended per-GB spend scaled by the profile's
// multiplier and replication factor; the cost objective normalizes
// against the most expensive profile so scores stay comparable across
// corpus sizes. Higher scores are better and the best profile is
// flagged Recommended.
func (p *Planner) strategies(corpusGB, blendedPerGB float64) []model.StrategyOption {
	w := toleranceWeights(p.cfg.RiskTolerance)
	profiles := p.cfg.Strategies

	monthly := make([]float64, len(profiles))
	maxMonthly := 0.0
	for i, sp := range profiles {
		monthly[i] = corpusGB * blendedPerGB * sp.CostMultiplier * float64(sp.ReplicationFactor)
		if monthly[i] > maxMonthly {
			maxMonthly = monthly[i]
		}
	}

	options := make([]model.StrategyOption, len(profiles))
	bestIdx := 0
	bestScore := -1.0
	for i, sp := range profiles {
		costNorm := 0.0
		if maxMonthly > 0 {
			costNorm = monthly[i] / maxMonthly
		}
		score := w.Cost*(1-costNorm) +
			w.Risk*sp.RiskReduction +
			w.Latency*(1-sp.LatencyPenalty) +
			w.Preference*neutralPreference

		options[i] = model.StrategyOption{
			Name:              sp.Name,
			MonthlyCost:       monthly[i],
			RiskReduction:     sp.RiskReduction * 100,
			ReplicationFactor: sp.ReplicationFactor,
			CloudTier:         sp.CloudTier,
			CompressionLevel:  sp.CompressionLevel,
			Score:             score,
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if len(options) > 0 {
		options[bestIdx].Recommended = true
	}
	return options
}
