// Package store - Persistence Tests
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/guardiandrive/guardiand/internal/model"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := DefaultConfig()
	cfg.DSN = ":memory:"

	store, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return store
}

func testAlert(id string, created time.Time) model.Alert {
	return model.Alert{
		ID:                id,
		DriveID:           "drv-a",
		Severity:          model.SeverityHigh,
		ConditionKey:      "drive_health",
		Message:           "health score crossed the high risk threshold",
		RecommendedAction: "schedule replacement",
		CreatedAt:         created,
	}
}

// =============================================================================
// Alert Tests
// =============================================================================

func TestSaveAndListAlerts(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	alerts := []model.Alert{
		testAlert("al-1", base),
		testAlert("al-2", base.Add(time.Minute)),
		testAlert("al-3", base.Add(2*time.Minute)),
	}
	if err := store.SaveAlerts(context.Background(), alerts); err != nil {
		t.Fatalf("SaveAlerts failed: %v", err)
	}

	got, err := store.ListAlerts(context.Background())
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(got))
	}
	if got[0].ID != "al-3" || got[1].ID != "al-2" || got[2].ID != "al-1" {
		t.Errorf("expected newest first, got %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}

	first := got[0]
	if first.DriveID != "drv-a" {
		t.Errorf("expected drive drv-a, got %s", first.DriveID)
	}
	if first.Severity != model.SeverityHigh {
		t.Errorf("expected severity high, got %v", first.Severity)
	}
	if first.ConditionKey != "drive_health" {
		t.Errorf("expected condition drive_health, got %s", first.ConditionKey)
	}
	if !first.CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("expected created_at %v, got %v", base.Add(2*time.Minute), first.CreatedAt)
	}
	if first.Acknowledged {
		t.Error("expected unacknowledged alert")
	}
	if first.SupersededBy != "" {
		t.Errorf("expected empty superseded_by, got %q", first.SupersededBy)
	}
}

func TestSaveAlertsEmpty(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	if err := store.SaveAlerts(context.Background(), nil); err != nil {
		t.Errorf("expected nil error for empty slice, got %v", err)
	}
}

func TestSaveAlertsReplacesExisting(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	alert := testAlert("al-1", base)
	if err := store.SaveAlerts(context.Background(), []model.Alert{alert}); err != nil {
		t.Fatalf("SaveAlerts failed: %v", err)
	}

	alert.Acknowledged = true
	alert.SupersededBy = "al-2"
	if err := store.SaveAlerts(context.Background(), []model.Alert{alert}); err != nil {
		t.Fatalf("SaveAlerts update failed: %v", err)
	}

	got, err := store.GetAlert(context.Background(), "al-1")
	if err != nil {
		t.Fatalf("GetAlert failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected alert, got nil")
	}
	if !got.Acknowledged {
		t.Error("expected acknowledged after replace")
	}
	if got.SupersededBy != "al-2" {
		t.Errorf("expected superseded_by al-2, got %q", got.SupersededBy)
	}

	all, err := store.ListAlerts(context.Background())
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 alert after replace, got %d", len(all))
	}
}

func TestGetAlertNotFound(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	got, err := store.GetAlert(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetAlert failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing alert, got %+v", got)
	}
}

func TestMarkAcknowledged(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := store.SaveAlerts(context.Background(), []model.Alert{testAlert("al-1", base)}); err != nil {
		t.Fatalf("SaveAlerts failed: %v", err)
	}

	if err := store.MarkAcknowledged(context.Background(), "al-1"); err != nil {
		t.Fatalf("MarkAcknowledged failed: %v", err)
	}

	got, err := store.GetAlert(context.Background(), "al-1")
	if err != nil {
		t.Fatalf("GetAlert failed: %v", err)
	}
	if !got.Acknowledged {
		t.Error("expected acknowledged alert")
	}
}

func TestMarkAcknowledgedNotFound(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	err := store.MarkAcknowledged(context.Background(), "missing")
	if !errors.Is(err, ErrAlertNotFound) {
		t.Errorf("expected ErrAlertNotFound, got %v", err)
	}
}

func TestPruneAlerts(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	old := base.Add(-48 * time.Hour)

	oldAcked := testAlert("old-acked", old)
	oldAcked.Acknowledged = true
	oldSuperseded := testAlert("old-superseded", old)
	oldSuperseded.SupersededBy = "al-new"
	oldActive := testAlert("old-active", old)
	recentAcked := testAlert("recent-acked", base.Add(-time.Hour))
	recentAcked.Acknowledged = true

	alerts := []model.Alert{oldAcked, oldSuperseded, oldActive, recentAcked}
	if err := store.SaveAlerts(context.Background(), alerts); err != nil {
		t.Fatalf("SaveAlerts failed: %v", err)
	}

	pruned, err := store.PruneAlerts(context.Background(), base.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneAlerts failed: %v", err)
	}
	if pruned != 2 {
		t.Errorf("expected 2 pruned alerts, got %d", pruned)
	}

	remaining, err := store.ListAlerts(context.Background())
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	ids := make(map[string]bool)
	for _, a := range remaining {
		ids[a.ID] = true
	}
	if !ids["old-active"] {
		t.Error("active alert must survive pruning")
	}
	if !ids["recent-acked"] {
		t.Error("recent alert must survive pruning")
	}
	if ids["old-acked"] || ids["old-superseded"] {
		t.Error("resolved alerts past the cutoff should be pruned")
	}
}

// =============================================================================
// Run History Tests
// =============================================================================

func TestCreateRunDefaults(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	run := &Run{SnapshotHash: 42}
	if err := store.CreateRun(context.Background(), run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if run.ID == "" {
		t.Error("expected generated run ID")
	}
	if run.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
}

func TestRunRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	run := &Run{
		ID:              "run-1",
		SnapshotHash:    0xdeadbeefcafebabe,
		StartedAt:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Duration:        1500 * time.Millisecond,
		Drives:          4,
		Files:           120,
		Recommendations: 17,
		Failures:        1,
		AlertsRaised:    2,
	}
	if err := store.CreateRun(context.Background(), run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	got, err := store.LastRun(context.Background())
	if err != nil {
		t.Fatalf("LastRun failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected run, got nil")
	}
	if got.ID != "run-1" {
		t.Errorf("expected run-1, got %s", got.ID)
	}
	if got.SnapshotHash != 0xdeadbeefcafebabe {
		t.Errorf("expected hash %x, got %x", uint64(0xdeadbeefcafebabe), got.SnapshotHash)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("expected started_at %v, got %v", run.StartedAt, got.StartedAt)
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("expected duration 1.5s, got %v", got.Duration)
	}
	if got.Drives != 4 || got.Files != 120 || got.Recommendations != 17 {
		t.Errorf("unexpected counters: %+v", got)
	}
	if got.Failures != 1 || got.AlertsRaised != 2 {
		t.Errorf("unexpected failure counters: %+v", got)
	}
}

func TestLastRunEmpty(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	got, err := store.LastRun(context.Background())
	if err != nil {
		t.Fatalf("LastRun failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for empty history, got %+v", got)
	}
}

func TestListRunsLimit(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := &Run{
			ID:           fmt.Sprintf("run-%d", i+1),
			SnapshotHash: uint64(i + 1),
			StartedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.CreateRun(context.Background(), run); err != nil {
			t.Fatalf("CreateRun failed: %v", err)
		}
	}

	got, err := store.ListRuns(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	if got[0].ID != "run-5" || got[1].ID != "run-4" {
		t.Errorf("expected newest first, got %s, %s", got[0].ID, got[1].ID)
	}

	all, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("expected all 5 runs, got %d", len(all))
	}
}

func TestRunHistoryPruning(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DSN = ":memory:"
	cfg.RunHistoryLimit = 3

	store, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := &Run{
			ID:           fmt.Sprintf("run-%d", i+1),
			SnapshotHash: uint64(i + 1),
			StartedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.CreateRun(context.Background(), run); err != nil {
			t.Fatalf("CreateRun failed: %v", err)
		}
	}

	got, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected history limited to 3 runs, got %d", len(got))
	}
	if got[0].ID != "run-5" || got[2].ID != "run-3" {
		t.Errorf("expected runs 5..3 retained, got %s..%s", got[0].ID, got[2].ID)
	}
}

// =============================================================================
// Transaction Tests
// =============================================================================

func TestTransactionRollback(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	err := store.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO runs (id, snapshot_hash) VALUES ('tx-1', 'ff')`)
		if err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected boom error, got %v", err)
	}

	runs, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected rollback to discard insert, got %d runs", len(runs))
	}
}

func TestTransactionContext_CancelBeforeCommit(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())

	err := store.TransactionContext(ctx, func(tx *sql.Tx) error {
		cancel()
		return nil
	})
	if err == nil {
		t.Fatal("expected context error, got nil")
	}
	if !errors.Is(err, context.Canceled) && !strings.Contains(err.Error(), "context cancelled") {
		t.Errorf("expected cancellation error, got %v", err)
	}
}

func TestSaveAlerts_Timeout(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	err := store.SaveAlerts(ctx, []model.Alert{testAlert("al-1", base)})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestCreateRun_Cancellation(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.CreateRun(ctx, &Run{ID: "run-1", SnapshotHash: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected Canceled, got %v", err)
	}
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func TestHealth(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	if err := store.Health(context.Background()); err != nil {
		t.Errorf("expected healthy store, got %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close should be nil, got %v", err)
	}
}
