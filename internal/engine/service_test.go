package engine

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guardiandrive/guardiand/internal/engine/config"
	"github.com/guardiandrive/guardiand/internal/errors"
	"github.com/guardiandrive/guardiand/internal/model"
)

var engineNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(nil, WithClock(func() time.Time { return engineNow }))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return s
}

func healthyDrive(id string) model.DriveTelemetry {
	return model.DriveTelemetry{
		DriveID:       id,
		CapacityBytes: 4 * model.TiB,
		UsedBytes:     1 * model.TiB,
		TemperatureC:  35,
		CollectedAt:   engineNow,
	}
}

// failingDrive saturates every factor, which lands the score at the
// floor and the risk at CRITICAL.
func failingDrive(id string) model.DriveTelemetry {
	tel := healthyDrive(id)
	tel.ReallocatedSectors = 500
	tel.PendingSectors = 200
	tel.UDMACRCErrors = 50
	tel.TemperatureC = 90
	tel.PowerOnHours = 90000
	return tel
}

// sweepFile pins the classification through the access recipe, the same
// way the planner tests do.
func sweepFile(id string, tier model.Tier, lastAccessDays, createdDays int, accessCount, sizeBytes int64) model.FileRecord {
	return model.FileRecord{
		FileID:       id,
		Path:         "/data/" + id + ".bin",
		DriveID:      "drv-a",
		SizeBytes:    sizeBytes,
		AccessCount:  accessCount,
		LastAccessed: engineNow.AddDate(0, 0, -lastAccessDays),
		CreatedAt:    engineNow.AddDate(0, 0, -createdDays),
		ModifiedAt:   engineNow.AddDate(0, 0, -lastAccessDays),
		CurrentTier:  tier,
	}
}

// testInputs holds one healthy drive and two files: f-cold reclassifies
// HOT to COLD, f-hot stays put.
func testInputs() Inputs {
	return Inputs{
		Drives: []model.DriveTelemetry{healthyDrive("drv-a")},
		Files: []model.FileRecord{
			sweepFile("f-cold", model.TierHot, 30, 60, 30, 2*model.GiB),
			sweepFile("f-hot", model.TierHot, 0, 20, 200, 100*model.MiB),
		},
		Costs:    config.DefaultCostTable(engineNow),
		Sheets:   config.DefaultPriceSheets(engineNow),
		Profiles: config.DefaultAlgorithmProfiles(),
	}
}

func TestGetSummaryComposition(t *testing.T) {
	s := newTestService(t)
	s.SetInputs(testInputs())

	sum, err := s.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if sum.Storage.DriveCount != 1 || sum.Storage.TotalFiles != 2 {
		t.Errorf("expected 1 drive and 2 files, got %d and %d", sum.Storage.DriveCount, sum.Storage.TotalFiles)
	}
	if sum.Storage.TotalCapacityBytes != 4*model.TiB {
		t.Errorf("expected 4TiB capacity, got %d", sum.Storage.TotalCapacityBytes)
	}
	if math.Abs(sum.Storage.UtilizationPercent-25) > 1e-9 {
		t.Errorf("expected 25%% utilization, got %g", sum.Storage.UtilizationPercent)
	}
	if sum.Storage.TotalFileBytes != 2*model.GiB+100*model.MiB {
		t.Errorf("unexpected file bytes: %d", sum.Storage.TotalFileBytes)
	}

	if sum.Health.AverageScore != 100 {
		t.Errorf("expected average score 100, got %g", sum.Health.AverageScore)
	}
	if sum.Health.P50Score < 99 || sum.Health.P50Score > 101 {
		t.Errorf("expected p50 near 100, got %g", sum.Health.P50Score)
	}
	if sum.Health.HealthyDrives != 1 {
		t.Errorf("expected 1 healthy drive, got %d", sum.Health.HealthyDrives)
	}
	if len(sum.Health.DrivesByRisk) != 4 {
		t.Errorf("expected all four risk buckets, got %v", sum.Health.DrivesByRisk)
	}
	if sum.Health.DrivesByRisk["LOW"] != 1 || sum.Health.DrivesByRisk["CRITICAL"] != 0 {
		t.Errorf("unexpected risk buckets: %v", sum.Health.DrivesByRisk)
	}

	if len(sum.TierDistribution) != 4 {
		t.Errorf("expected all four tier buckets, got %v", sum.TierDistribution)
	}
	hot := sum.TierDistribution["HOT"]
	if hot.Files != 2 || hot.Bytes != 2*model.GiB+100*model.MiB {
		t.Errorf("unexpected HOT bucket: %+v", hot)
	}
	if cold := sum.TierDistribution["COLD"]; cold.Files != 0 {
		t.Errorf("expected empty COLD bucket, got %+v", cold)
	}

	corpusGB := 2 + 100.0/1024
	wantCurrent := corpusGB * 0.023
	wantSavings := (0.023 - 0.004) * 2
	if math.Abs(sum.Cost.CurrentMonthlyCost-wantCurrent) > 1e-9 {
		t.Errorf("expected current cost %g, got %g", wantCurrent, sum.Cost.CurrentMonthlyCost)
	}
	if math.Abs(sum.Cost.ProjectedSavings-wantSavings) > 1e-9 {
		t.Errorf("expected savings %g, got %g", wantSavings, sum.Cost.ProjectedSavings)
	}
	if math.Abs(sum.Cost.OptimizedMonthlyCost-(wantCurrent-wantSavings)) > 1e-9 {
		t.Errorf("unexpected optimized cost %g", sum.Cost.OptimizedMonthlyCost)
	}

	if len(sum.DriveHealth) != 1 || sum.DriveHealth[0].DriveID != "drv-a" {
		t.Errorf("unexpected drive health: %+v", sum.DriveHealth)
	}
	if len(sum.Failures) != 0 {
		t.Errorf("expected no failures, got %v", sum.Failures)
	}
	if sum.Alerts.Total != 0 {
		t.Errorf("expected no alerts, got %+v", sum.Alerts)
	}
	if !sum.GeneratedAt.Equal(engineNow) {
		t.Errorf("expected generated at %v, got %v", engineNow, sum.GeneratedAt)
	}
}

func TestGetSummaryCachesUnchangedSnapshot(t *testing.T) {
	var clockCalls atomic.Int32
	s, err := NewService(nil, WithClock(func() time.Time {
		clockCalls.Add(1)
		return engineNow
	}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	s.SetInputs(testInputs())

	first, err := s.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("first summary: %v", err)
	}
	afterFirst := clockCalls.Load()

	second, err := s.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("second summary: %v", err)
	}
	if got := clockCalls.Load(); got != afterFirst {
		t.Errorf("expected no recompute, clock moved from %d to %d calls", afterFirst, got)
	}
	if !first.GeneratedAt.Equal(second.GeneratedAt) {
		t.Errorf("expected identical generation time, got %v and %v", first.GeneratedAt, second.GeneratedAt)
	}
}

func TestSetInputsInvalidatesCache(t *testing.T) {
	s := newTestService(t)

	in := testInputs()
	h1 := s.SetInputs(in)
	if h1 != in.Fingerprint() {
		t.Error("expected SetInputs to return the snapshot fingerprint")
	}
	if s.SnapshotHash() != h1 {
		t.Error("expected SnapshotHash to track the live snapshot")
	}

	sum1, err := s.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum1.Storage.TotalFiles != 2 {
		t.Fatalf("expected 2 files, got %d", sum1.Storage.TotalFiles)
	}

	smaller := testInputs()
	smaller.Files = smaller.Files[:1]
	h2 := s.SetInputs(smaller)
	if h2 == h1 {
		t.Error("expected a different fingerprint for changed inputs")
	}

	sum2, err := s.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("summary after change: %v", err)
	}
	if sum2.Storage.TotalFiles != 1 {
		t.Errorf("expected the new snapshot to be evaluated, got %d files", sum2.Storage.TotalFiles)
	}

	if h3 := s.SetInputs(testInputs()); h3 != h1 {
		t.Error("expected identical inputs to reproduce the fingerprint")
	}
}

func TestSweepReport(t *testing.T) {
	s := newTestService(t)

	in := testInputs()
	bad := healthyDrive("drv-bad")
	bad.UsedBytes = bad.CapacityBytes + 1
	in.Drives = append(in.Drives, failingDrive("drv-c"), bad)
	s.SetInputs(in)

	rep, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if rep.SnapshotHash != s.SnapshotHash() {
		t.Error("expected the report to carry the snapshot fingerprint")
	}
	if rep.Drives != 3 || rep.Files != 2 {
		t.Errorf("expected 3 drives and 2 files, got %d and %d", rep.Drives, rep.Files)
	}
	if rep.Recommendations != 1 {
		t.Errorf("expected 1 recommendation, got %d", rep.Recommendations)
	}
	if rep.Failures != 1 {
		t.Errorf("expected 1 failure, got %d", rep.Failures)
	}
	if !rep.StartedAt.Equal(engineNow) {
		t.Errorf("expected start %v, got %v", engineNow, rep.StartedAt)
	}
	if len(rep.RaisedAlerts) != 1 {
		t.Fatalf("expected 1 raised alert, got %d", len(rep.RaisedAlerts))
	}
	if rep.RaisedAlerts[0].DriveID != "drv-c" || rep.RaisedAlerts[0].Severity != model.SeverityCritical {
		t.Errorf("unexpected alert: %+v", rep.RaisedAlerts[0])
	}

	rep2, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if rep2.SnapshotHash != rep.SnapshotHash {
		t.Error("expected repeat sweeps over one snapshot to share a hash")
	}
	if got := len(s.Alerts()); got != 1 {
		t.Errorf("expected the repeat sweep to raise nothing, have %d alerts", got)
	}
}

func TestAlertAcknowledgeFlow(t *testing.T) {
	s := newTestService(t)

	in := testInputs()
	in.Drives = append(in.Drives, failingDrive("drv-c"))
	s.SetInputs(in)

	sum, err := s.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Alerts.Total != 1 || sum.Alerts.Unacknowledged != 1 || sum.Alerts.Critical != 1 {
		t.Fatalf("unexpected alert tallies: %+v", sum.Alerts)
	}

	alerts := s.Alerts()
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	ack, err := s.AcknowledgeAlert(alerts[0].ID)
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if !ack.Acknowledged {
		t.Error("expected the alert to be acknowledged")
	}

	after, err := s.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("summary after ack: %v", err)
	}
	if after.Alerts.Unacknowledged != 0 {
		t.Errorf("expected the acknowledgment to show without a resweep, got %+v", after.Alerts)
	}
	if !after.GeneratedAt.Equal(sum.GeneratedAt) {
		t.Error("expected the cached sweep to be reused")
	}

	if _, err := s.AcknowledgeAlert("no-such-alert"); !errors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestGetDriveHealth(t *testing.T) {
	s := newTestService(t)
	s.SetInputs(testInputs())

	h, err := s.GetDriveHealth(context.Background(), "drv-a")
	if err != nil {
		t.Fatalf("drive health: %v", err)
	}
	if h.HealthScore != 100 {
		t.Errorf("expected score 100, got %g", h.HealthScore)
	}

	if _, err := s.GetDriveHealth(context.Background(), "drv-missing"); !errors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestGetTieringPlanAndCompression(t *testing.T) {
	s := newTestService(t)
	s.SetInputs(testInputs())

	plan, err := s.GetTieringPlan(context.Background())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(plan.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(plan.Recommendations))
	}
	rec := plan.Recommendations[0]
	if rec.FileID != "f-cold" || rec.CurrentTier != model.TierHot || rec.RecommendedTier != model.TierCold {
		t.Errorf("unexpected recommendation: %+v", rec)
	}
	if len(plan.Strategies) != 3 {
		t.Errorf("expected 3 strategies, got %d", len(plan.Strategies))
	}

	comp, err := s.GetCompressionPlan(context.Background())
	if err != nil {
		t.Fatalf("compression: %v", err)
	}
	if len(comp) != 2 {
		t.Fatalf("expected 2 verdicts, got %d", len(comp))
	}
	if comp[0].FileID != "f-cold" || comp[1].FileID != "f-hot" {
		t.Errorf("expected file id order, got %s then %s", comp[0].FileID, comp[1].FileID)
	}
}

func TestGetCloudOptions(t *testing.T) {
	s := newTestService(t)
	s.SetInputs(testInputs())

	opts, err := s.GetCloudOptions(context.Background(), model.RetrievalDays)
	if err != nil {
		t.Fatalf("cloud options: %v", err)
	}
	if len(opts) == 0 {
		t.Fatal("expected options")
	}

	corpusGB := 2 + 100.0/1024
	recommended := 0
	for i, o := range opts {
		if i > 0 && opts[i-1].TotalCost > o.TotalCost {
			t.Errorf("expected ascending cost, got %g before %g", opts[i-1].TotalCost, o.TotalCost)
		}
		if math.Abs(o.TotalCost-corpusGB*o.MonthlyCostPerGB) > 1e-9 {
			t.Errorf("option %s/%s not priced on the plan corpus", o.Provider, o.TierName)
		}
		if o.Recommended {
			recommended++
			if !o.RetrievalTime.Within(model.RetrievalDays) {
				t.Errorf("recommended option %s/%s exceeds the tolerance", o.Provider, o.TierName)
			}
		}
	}
	if recommended != 1 {
		t.Errorf("expected exactly one recommended option, got %d", recommended)
	}
}

func TestSweepFailsWithoutPricing(t *testing.T) {
	s := newTestService(t)

	in := testInputs()
	in.Costs = nil
	s.SetInputs(in)

	if _, err := s.GetSummary(context.Background()); !errors.IsConfiguration(err) {
		t.Errorf("expected a configuration error, got %v", err)
	}
	if _, err := s.Sweep(context.Background()); !errors.IsConfiguration(err) {
		t.Errorf("expected the sweep to fail the same way, got %v", err)
	}
}

func TestInvalidDriveBecomesFailure(t *testing.T) {
	s := newTestService(t)

	in := testInputs()
	bad := healthyDrive("drv-bad")
	bad.UsedBytes = bad.CapacityBytes + 1
	in.Drives = append(in.Drives, bad)
	s.SetInputs(in)

	sum, err := s.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(sum.Failures) != 1 || sum.Failures[0].EntityID != "drv-bad" {
		t.Fatalf("expected one failure for drv-bad, got %v", sum.Failures)
	}
	if len(sum.DriveHealth) != 1 {
		t.Errorf("expected the healthy drive to still be scored, got %d", len(sum.DriveHealth))
	}
}

func TestConcurrentGettersShareOneSweep(t *testing.T) {
	var clockCalls atomic.Int32
	s, err := NewService(nil, WithClock(func() time.Time {
		clockCalls.Add(1)
		return engineNow
	}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	s.SetInputs(testInputs())

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.GetSummary(context.Background())
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("getter %d: %v", i, err)
		}
	}
	// runSweep reads the clock twice, once for the start and once for
	// the duration. More calls mean a duplicate evaluation.
	if got := clockCalls.Load(); got != 2 {
		t.Errorf("expected one shared sweep (2 clock reads), got %d", got)
	}
}
