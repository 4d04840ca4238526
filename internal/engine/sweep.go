package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guardiandrive/guardiand/internal/errors"
	"github.com/guardiandrive/guardiand/internal/model"
)

// sweepResult is one full evaluation of a snapshot. It is immutable
// once published; getters copy what they hand out by value.
type sweepResult struct {
	hash uint64
	in   Inputs

	summary     model.DashboardSummary
	plan        model.TieringPlanResult
	compression []model.CompressionRecommendation
	healthByID  map[string]model.DriveHealth

	// corpusGB and spend cover the files the plan evaluated, so the
	// cloud comparison prices the same corpus the plan did.
	corpusGB float64
	spend    model.CurrentSpend

	raised    []model.Alert
	startedAt time.Time
	duration  time.Duration
}

// runSweep evaluates one snapshot end to end. Component errors that
// name a single entity become Failure records; everything else aborts
// the sweep.
func (s *Service) runSweep(ctx context.Context, in Inputs, hash uint64) (*sweepResult, error) {
	started := s.clock()
	now := started

	healthResults, driveFailures, err := s.scoreDrives(ctx, in.Drives)
	if err != nil {
		return nil, err
	}
	healthByID := make(map[string]model.DriveHealth, len(healthResults))
	for i := range healthResults {
		healthByID[healthResults[i].DriveID] = healthResults[i]
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plan, err := s.planner.Plan(in.Files, healthByID, in.Costs, in.Sheets, now)
	if err != nil {
		return nil, err
	}

	compression, err := s.adviseFiles(ctx, in.Files, in.Profiles)
	if err != nil {
		return nil, err
	}

	raised := s.raiseHealthAlerts(healthResults, now)

	summary, corpusGB, err := s.composeSummary(&in, healthResults, driveFailures, &plan, now)
	if err != nil {
		return nil, err
	}

	return &sweepResult{
		hash:        hash,
		in:          in,
		summary:     summary,
		plan:        plan,
		compression: compression,
		healthByID:  healthByID,
		corpusGB:    corpusGB,
		spend: model.CurrentSpend{
			MonthlyCost: summary.Cost.CurrentMonthlyCost,
			Provider:    s.cfg.Tiering.Provider,
		},
		raised:    raised,
		startedAt: started,
		duration:  s.clock().Sub(started),
	}, nil
}

func (s *Service) workers() int {
	if s.cfg.Executor.Workers > 0 {
		return s.cfg.Executor.Workers
	}
	return runtime.GOMAXPROCS(0)
}

type driveOutcome struct {
	health  *model.DriveHealth
	failure *model.Failure
}

// scoreDrives fans telemetry out across the worker pool. Results come
// back sorted by drive id; failures keep input order.
func (s *Service) scoreDrives(ctx context.Context, drives []model.DriveTelemetry) ([]model.DriveHealth, []model.Failure, error) {
	outcomes := make([]driveOutcome, len(drives))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i := range drives {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = driveOutcome{failure: &model.Failure{
						EntityID: drives[i].DriveID,
						Reason:   fmt.Sprintf("panic during evaluation: %v", r),
					}}
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			h, err := s.scorer.Score(drives[i])
			if err != nil {
				if errors.IsValidation(err) {
					outcomes[i] = driveOutcome{failure: &model.Failure{
						EntityID: drives[i].DriveID,
						Reason:   err.Error(),
					}}
					return nil
				}
				return err
			}
			outcomes[i] = driveOutcome{health: &h}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	results := make([]model.DriveHealth, 0, len(drives))
	var failures []model.Failure
	for i := range outcomes {
		switch {
		case outcomes[i].health != nil:
			results = append(results, *outcomes[i].health)
		case outcomes[i].failure != nil:
			failures = append(failures, *outcomes[i].failure)
		}
	}
	sort.Slice(results, func(a, b int) bool { return results[a].DriveID < results[b].DriveID })
	return results, failures, nil
}

// adviseFiles estimates compression for every file, sorted by file id.
// Records the advisor rejects fail the same field checks the planner
// already reported through the plan's failure list, so they are
// dropped here rather than double counted.
func (s *Service) adviseFiles(ctx context.Context, files []model.FileRecord, profiles []model.AlgorithmProfile) ([]model.CompressionRecommendation, error) {
	recs := make([]*model.CompressionRecommendation, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i := range files {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("file %s: panic during estimation: %v", files[i].FileID, r)
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := s.advisor.Advise(files[i], profiles)
			if err != nil {
				if errors.IsValidation(err) {
					return nil
				}
				return err
			}
			recs[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.CompressionRecommendation, 0, len(files))
	for _, r := range recs {
		if r != nil {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].FileID < out[b].FileID })
	return out, nil
}

// raiseHealthAlerts turns HIGH and CRITICAL drives into alerts and
// returns the ones the manager actually raised. Repeat sweeps over an
// unchanged drive dedupe inside the manager.
func (s *Service) raiseHealthAlerts(results []model.DriveHealth, now time.Time) []model.Alert {
	var raised []model.Alert
	for i := range results {
		h := &results[i]

		var sev model.Severity
		switch h.RiskLevel {
		case model.RiskCritical:
			sev = model.SeverityCritical
		case model.RiskHigh:
			sev = model.SeverityHigh
		default:
			continue
		}

		action := "schedule drive replacement"
		if len(h.Recommendations) > 0 {
			action = h.Recommendations[0]
		}
		msg := fmt.Sprintf("drive %s health score %.0f (%s risk)", h.DriveID, h.HealthScore, h.RiskLevel)
		if a, ok := s.alerts.Raise(h.DriveID, sev, "drive_health", msg, action, now); ok {
			raised = append(raised, a)
		}
	}
	return raised
}

// composeSummary assembles the dashboard view from the sweep phases.
// The cost projection prices only the files the plan evaluated, so the
// savings figure subtracts from a matching base.
func (s *Service) composeSummary(in *Inputs, healthResults []model.DriveHealth, driveFailures []model.Failure, plan *model.TieringPlanResult, now time.Time) (model.DashboardSummary, float64, error) {
	var sum model.DashboardSummary

	var capacity, used int64
	for i := range in.Drives {
		capacity += in.Drives[i].CapacityBytes
		used += in.Drives[i].UsedBytes
	}
	var fileBytes int64
	for i := range in.Files {
		fileBytes += in.Files[i].SizeBytes
	}
	sum.Storage = model.StorageSummary{
		TotalCapacityBytes: capacity,
		TotalUsedBytes:     used,
		TotalFiles:         len(in.Files),
		TotalFileBytes:     fileBytes,
		DriveCount:         len(in.Drives),
	}
	if capacity > 0 {
		sum.Storage.UtilizationPercent = float64(used) / float64(capacity) * 100
	}

	dist := newDistribution(s.cfg.Percentile)
	byRisk := make(map[string]int, len(model.AllRiskLevels()))
	for _, r := range model.AllRiskLevels() {
		byRisk[r.String()] = 0
	}
	healthy := 0
	for i := range healthResults {
		dist.add(healthResults[i].HealthScore)
		byRisk[healthResults[i].RiskLevel.String()]++
		if healthResults[i].Healthy() {
			healthy++
		}
	}
	sum.Health = model.HealthSummary{
		AverageScore:  dist.mean(),
		P50Score:      dist.quantile(0.50),
		P90Score:      dist.quantile(0.90),
		P99Score:      dist.quantile(0.99),
		DrivesByRisk:  byRisk,
		HealthyDrives: healthy,
	}

	tiers := make(map[string]model.TierBucket, len(model.AllTiers()))
	for _, t := range model.AllTiers() {
		tiers[t.String()] = model.TierBucket{}
	}
	for i := range in.Files {
		key := in.Files[i].CurrentTier.String()
		b := tiers[key]
		b.Files++
		b.Bytes += in.Files[i].SizeBytes
		tiers[key] = b
	}
	sum.TierDistribution = tiers

	failed := make(map[string]struct{}, len(plan.Failures))
	for i := range plan.Failures {
		failed[plan.Failures[i].EntityID] = struct{}{}
	}
	var current, corpusGB float64
	for i := range in.Files {
		if _, ok := failed[in.Files[i].FileID]; ok {
			continue
		}
		price, err := in.Costs.Price(s.cfg.Tiering.Provider, in.Files[i].CurrentTier)
		if err != nil {
			return model.DashboardSummary{}, 0, err
		}
		gb := in.Files[i].SizeGB()
		current += gb * price
		corpusGB += gb
	}
	sum.Cost = model.CostProjection{
		CurrentMonthlyCost:   current,
		OptimizedMonthlyCost: current - plan.Summary.TotalMonthlySavings,
		ProjectedSavings:     plan.Summary.TotalMonthlySavings,
	}

	sum.Alerts = s.alerts.Summary()
	sum.DriveHealth = healthResults
	sum.Failures = append(append([]model.Failure{}, driveFailures...), plan.Failures...)
	sum.GeneratedAt = now

	return sum, corpusGB, nil
}
