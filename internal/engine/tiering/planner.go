// Package tiering plans file placement across storage tiers. A planning
// run classifies every file in the corpus, emits a migration
// recommendation wherever the recommended tier differs from the current
// one, and scores three fleet-level strategy options over the whole
// corpus. Runs are pure: pricing, drive health and the clock are inputs,
// and the same snapshot always produces the same plan.
package tiering

import (
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guardiandrive/guardiand/internal/engine/classify"
	"github.com/guardiandrive/guardiand/internal/engine/config"
	"github.com/guardiandrive/guardiand/internal/errors"
	"github.com/guardiandrive/guardiand/internal/model"
)

// Planner turns a corpus snapshot into a tiering plan.
type Planner struct {
	cfg  config.TieringConfig
	exec config.ExecutorConfig
	cls  *classify.Classifier
}

// New creates a planner from validated configuration.
func New(cfg config.TieringConfig, exec config.ExecutorConfig, cls *classify.Classifier) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: tiering: %w", errors.ErrConfiguration, err)
	}
	if err := exec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: tiering: %w", errors.ErrConfiguration, err)
	}
	if cls == nil {
		return nil, errors.NewConfiguration("tiering", "a classifier is required")
	}
	return &Planner{cfg: cfg, exec: exec, cls: cls}, nil
}

// outcome is one file's evaluation result. Exactly one field is set,
// or neither when the file already sits on its recommended tier.
type outcome struct {
	rec     *model.TieringRecommendation
	failure *model.Failure
}

// Plan evaluates every file against the cost table and emits the full
// run output. Files that fail validation become per-entity failures;
// a missing price for a tier the corpus occupies aborts the run.
// Health is keyed by drive ID and escalates urgency for files on
// drives at critical risk.
func (p *Planner) Plan(files []model.FileRecord, health map[string]model.DriveHealth, costs *model.CostTable, sheets []model.CloudPriceSheet, now time.Time) (model.TieringPlanResult, error) {
	if costs == nil || costs.Len() == 0 {
		return model.TieringPlanResult{}, errors.NewConfiguration("cost_table", "no prices loaded")
	}

	outcomes := make([]outcome, len(files))

	g := new(errgroup.Group)
	g.SetLimit(p.workers())
	for i := range files {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = outcome{failure: &model.Failure{
						EntityID: files[i].FileID,
						Reason:   fmt.Sprintf("panic during evaluation: %v", r),
					}}
				}
			}()
			rec, failure, err := p.evaluate(files[i], health, costs, sheets, now)
			if err != nil {
				return err
			}
			outcomes[i] = outcome{rec: rec, failure: failure}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.TieringPlanResult{}, err
	}

	result := model.TieringPlanResult{PlannedAt: now}
	corpusGB := 0.0
	tierGB := make(map[model.Tier]float64)
	for i := range files {
		o := outcomes[i]
		if o.failure != nil {
			result.Failures = append(result.Failures, *o.failure)
			continue
		}
		gb := files[i].SizeGB()
		corpusGB += gb
		tierGB[files[i].CurrentTier] += gb
		if o.rec != nil {
			result.Recommendations = append(result.Recommendations, *o.rec)
		}
	}

	sort.SliceStable(result.Recommendations, func(a, b int) bool {
		return result.Recommendations[a].FileID < result.Recommendations[b].FileID
	})
	result.Summary = summarize(result.Recommendations)

	blended, err := blendedCost(p.cfg.Provider, tierGB, corpusGB, costs)
	if err != nil {
		return model.TieringPlanResult{}, err
	}
	result.Strategies = p.strategies(corpusGB, blended)

	return result, nil
}

// evaluate classifies one file and builds its recommendation. A nil
// recommendation with a nil failure means the file is already placed
// correctly. The returned error is reserved for run-fatal conditions.
func (p *Planner) evaluate(f model.FileRecord, health map[string]model.DriveHealth, costs *model.CostTable, sheets []model.CloudPriceSheet, now time.Time) (*model.TieringRecommendation, *model.Failure, error) {
	cls, err := p.cls.Classify(f, now)
	if err != nil {
		if errors.IsValidation(err) {
			return nil, &model.Failure{EntityID: f.FileID, Reason: err.Error()}, nil
		}
		return nil, nil, err
	}
	if cls.Tier == f.CurrentTier {
		return nil, nil, nil
	}

	currentPrice, err := costs.Price(p.cfg.Provider, f.CurrentTier)
	if err != nil {
		return nil, nil, err
	}
	recommendedPrice, err := costs.Price(p.cfg.Provider, cls.Tier)
	if err != nil {
		return nil, nil, err
	}
	savings := (currentPrice - recommendedPrice) * f.SizeGB()

	urgency := model.UrgencyThirtyDays
	delta := f.CurrentTier.Delta(cls.Tier)
	if delta >= 2 || delta <= -2 || f.CurrentTier == model.TierHot {
		urgency = model.UrgencySevenDays
	}
	if h, ok := health[f.DriveID]; ok && h.RiskLevel == model.RiskCritical {
		urgency = model.UrgencyImmediate
	}

	return &model.TieringRecommendation{
		FileID:           f.FileID,
		Path:             f.Path,
		CurrentTier:      f.CurrentTier,
		RecommendedTier:  cls.Tier,
		RecommendedCloud: cheapestTarget(sheets, cls.Tier),
		EstimatedSavings: savings,
		Urgency:          urgency,
		Reason:           reasonFor(cls, savings),
		Confidence:       cls.Confidence * p.freshness(costs.AsOf, now),
	}, nil, nil
}

// freshness discounts confidence as the cost table ages. Tables within
// FreshDays carry full weight; the discount decays linearly to Floor at
// StaleDays and never drops below it.
func (p *Planner) freshness(asOf, now time.Time) float64 {
	ageDays := now.Sub(asOf).Hours() / 24
	fresh := float64(p.cfg.Freshness.FreshDays)
	stale := float64(p.cfg.Freshness.StaleDays)
	floor := p.cfg.Freshness.Floor
	if ageDays <= fresh {
		return 1
	}
	if ageDays >= stale {
		return floor
	}
	return 1 - (ageDays-fresh)/(stale-fresh)*(1-floor)
}

func (p *Planner) workers() int {
	if p.exec.Workers > 0 {
		return p.exec.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// cheapestTarget scans every sheet for the cheapest storage class
// serving the tier. Ties keep the earlier sheet. Returns nil when no
// sheet offers the tier.
func cheapestTarget(sheets []model.CloudPriceSheet, t model.Tier) *model.CloudTarget {
	var best model.PriceEntry
	var provider model.Provider
	found := false
	for i := range sheets {
		e, ok := sheets[i].CheapestFor(t)
		if !ok {
			continue
		}
		if !found || e.PricePerGBMonth < best.PricePerGBMonth {
			best = e
			provider = sheets[i].Provider
			found = true
		}
	}
	if !found {
		return nil
	}
	return &model.CloudTarget{Provider: provider, TierName: best.TierName}
}

func reasonFor(cls model.Classification, savings float64) string {
	switch {
	case savings > 0:
		return fmt.Sprintf("Access rate %.2f/day suits %s; saves $%.2f/month", cls.AccessPerDay, cls.Tier, savings)
	case savings < 0:
		return fmt.Sprintf("Access rate %.2f/day warrants %s; costs $%.2f/month more", cls.AccessPerDay, cls.Tier, -savings)
	default:
		return fmt.Sprintf("Access rate %.2f/day suits %s at no cost change", cls.AccessPerDay, cls.Tier)
	}
}

// summarize tallies the sorted recommendation set. Each recommendation
// lands in exactly one movement bucket, so the per-transition counts
// plus promotions and multi-step moves account for every entry.
func summarize(recs []model.TieringRecommendation) model.PlanSummary {
	s := model.PlanSummary{Total: len(recs)}
	for _, r := range recs {
		delta := r.CurrentTier.Delta(r.RecommendedTier)
		switch {
		case delta < 0:
			s.Promotions++
		case delta >= 2:
			s.MultiStep++
		case r.CurrentTier == model.TierHot:
			s.HotToWarm++
		case r.CurrentTier == model.TierWarm:
			s.WarmToCold++
		default:
			s.ColdToArchive++
		}
		if r.Urgency == model.UrgencyImmediate {
			s.CriticalMigrations++
		}
		s.TotalMonthlySavings += r.EstimatedSavings
	}
	return s
}

// blendedCost is the corpus-weighted average price per GB across the
// tiers the corpus currently occupies. Tiers are visited in fixed
// warmest-to-coldest order so the float sum is reproducible.
func blendedCost(provider model.Provider, tierGB map[model.Tier]float64, corpusGB float64, costs *model.CostTable) (float64, error) {
	if corpusGB <= 0 {
		return 0, nil
	}
	total := 0.0
	for _, t := range model.AllTiers() {
		gb := tierGB[t]
		if gb == 0 {
			continue
		}
		price, err := costs.Price(provider, t)
		if err != nil {
			return 0, err
		}
		total += gb * price
	}
	return total / corpusGB, nil
}
