package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/guardiandrive/guardiand/internal/model"
)

func testArchive(t *testing.T, cfg Config) *Archive {
	t.Helper()

	if cfg.Dir == "" {
		cfg.Dir = t.TempDir()
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = "zstd"
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func testPlan(plannedAt time.Time) *model.TieringPlanResult {
	return &model.TieringPlanResult{
		Recommendations: []model.TieringRecommendation{
			{
				FileID:          "f-1",
				Path:            "/mnt/pool0/archive/backup.tar",
				CurrentTier:     model.TierWarm,
				RecommendedTier: model.TierArchive,
				RecommendedCloud: &model.CloudTarget{
					Provider: model.ProviderAWS,
					TierName: "deep-archive",
				},
				EstimatedSavings: 12.5,
				Urgency:          model.UrgencyThirtyDays,
				Reason:           "rarely accessed, cheaper in the archive tier",
				Confidence:       0.9,
			},
			{
				FileID:           "f-2",
				Path:             "/mnt/pool0/cache/index.bin",
				CurrentTier:      model.TierCold,
				RecommendedTier:  model.TierHot,
				EstimatedSavings: -3.2,
				Urgency:          model.UrgencyImmediate,
				Reason:           "hot access pattern on a cold tier",
				Confidence:       0.75,
			},
		},
		PlannedAt: plannedAt,
	}
}

// =============================================================================
// Snapshot Tests
// =============================================================================

func TestWriteAndReadSnapshot(t *testing.T) {
	a := testArchive(t, Config{})

	plannedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	path, err := a.WriteSnapshot("run-1", testPlan(plannedAt))
	if err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		t.Fatalf("snapshot file should exist: %v", err)
	}
	if stat.Size() == 0 {
		t.Error("snapshot file should not be empty")
	}
	if filepath.Base(path) != "plan-20260801T120000-run-1.parquet" {
		t.Errorf("unexpected snapshot name %s", filepath.Base(path))
	}

	recs, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}

	first := recs[0]
	if first.FileID != "f-1" {
		t.Errorf("expected f-1, got %s", first.FileID)
	}
	if first.CurrentTier != model.TierWarm || first.RecommendedTier != model.TierArchive {
		t.Errorf("unexpected tiers: %v -> %v", first.CurrentTier, first.RecommendedTier)
	}
	if first.RecommendedCloud == nil {
		t.Fatal("expected cloud target")
	}
	if first.RecommendedCloud.Provider != model.ProviderAWS {
		t.Errorf("expected aws, got %v", first.RecommendedCloud.Provider)
	}
	if first.RecommendedCloud.TierName != "deep-archive" {
		t.Errorf("expected deep-archive, got %s", first.RecommendedCloud.TierName)
	}
	if first.EstimatedSavings != 12.5 {
		t.Errorf("expected savings 12.5, got %v", first.EstimatedSavings)
	}
	if first.Urgency != model.UrgencyThirtyDays {
		t.Errorf("expected 30 day urgency, got %v", first.Urgency)
	}
	if first.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %v", first.Confidence)
	}

	second := recs[1]
	if second.RecommendedCloud != nil {
		t.Errorf("expected no cloud target, got %+v", second.RecommendedCloud)
	}
	if second.EstimatedSavings != -3.2 {
		t.Errorf("expected savings -3.2, got %v", second.EstimatedSavings)
	}
	if second.Urgency != model.UrgencyImmediate {
		t.Errorf("expected immediate urgency, got %v", second.Urgency)
	}
}

func TestWriteSnapshotEmptyPlan(t *testing.T) {
	a := testArchive(t, Config{})

	plannedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	plan := &model.TieringPlanResult{PlannedAt: plannedAt}

	path, err := a.WriteSnapshot("run-1", plan)
	if err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	r, err := NewSnapshotReader(path)
	if err != nil {
		t.Fatalf("NewSnapshotReader: %v", err)
	}
	defer r.Close()

	if r.NumRows() != 0 {
		t.Errorf("expected 0 rows, got %d", r.NumRows())
	}
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestSnapshotCompressionAlgorithms(t *testing.T) {
	plannedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for _, algorithm := range []string{"snappy", "zstd", "lz4", "gzip", "none"} {
		t.Run(algorithm, func(t *testing.T) {
			a := testArchive(t, Config{Algorithm: algorithm, Level: 3})

			path, err := a.WriteSnapshot("run-1", testPlan(plannedAt))
			if err != nil {
				t.Fatalf("WriteSnapshot: %v", err)
			}
			recs, err := ReadSnapshot(path)
			if err != nil {
				t.Fatalf("ReadSnapshot: %v", err)
			}
			if len(recs) != 2 {
				t.Errorf("expected 2 recommendations, got %d", len(recs))
			}
		})
	}
}

func TestParseSnapshotTime(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected time.Time
		hasError bool
	}{
		{
			name:     "valid snapshot name",
			filename: "plan-20260801T120000-run-1.parquet",
			expected: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "uuid run id",
			filename: "plan-20250115T093000-6ba7b810-9dad-11d1-80b4-00c04fd430c8.parquet",
			expected: time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:     "missing prefix",
			filename: "20260801T120000-run-1.parquet",
			hasError: true,
		},
		{
			name:     "garbage timestamp",
			filename: "plan-notatime-run-1.parquet",
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseSnapshotTime(tt.filename)

			if tt.hasError {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if !result.Equal(tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// =============================================================================
// Pruning Tests
// =============================================================================

func TestPruneByAge(t *testing.T) {
	dir := t.TempDir()
	a := testArchive(t, Config{Dir: dir, Retention: 24 * time.Hour})

	files := []string{
		"plan-20200101T000000-old1.parquet",
		"plan-20200102T000000-old2.parquet",
		"plan-" + time.Now().UTC().Format(snapshotTimeLayout) + "-new.parquet",
		"random.parquet",
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("test"), 0644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("test"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	result := a.Prune()

	if result.FilesDeleted != 2 {
		t.Errorf("expected 2 files deleted, got %d", result.FilesDeleted)
	}
	if result.FilesSkipped != 1 {
		t.Errorf("expected 1 file skipped, got %d", result.FilesSkipped)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}

	remaining, _ := os.ReadDir(dir)
	if len(remaining) != 3 {
		t.Errorf("expected 3 entries remaining, got %d", len(remaining))
	}
	for _, name := range []string{files[0], files[1]} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be deleted", name)
		}
	}
}

func TestPruneBySize(t *testing.T) {
	dir := t.TempDir()
	a := testArchive(t, Config{Dir: dir, MaxTotalSize: 40})

	// 20 bytes each, oldest first by name
	files := []string{
		"plan-20260801T000000-a.parquet",
		"plan-20260801T010000-b.parquet",
		"plan-20260801T020000-c.parquet",
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("12345678901234567890"), 0644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}

	result := a.Prune()

	if result.FilesDeleted != 1 {
		t.Errorf("expected 1 file deleted, got %d", result.FilesDeleted)
	}
	if result.BytesFreed != 20 {
		t.Errorf("expected 20 bytes freed, got %d", result.BytesFreed)
	}

	if _, err := os.Stat(filepath.Join(dir, files[0])); !os.IsNotExist(err) {
		t.Error("expected oldest file to be deleted")
	}
	for _, name := range files[1:] {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to survive: %v", name, err)
		}
	}
}

func TestPruneDisabled(t *testing.T) {
	dir := t.TempDir()
	a := testArchive(t, Config{Dir: dir})

	old := filepath.Join(dir, "plan-20200101T000000-old.parquet")
	if err := os.WriteFile(old, []byte("test"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	result := a.Prune()

	if result.FilesDeleted != 0 {
		t.Errorf("expected nothing deleted without retention or cap, got %d", result.FilesDeleted)
	}
	if _, err := os.Stat(old); err != nil {
		t.Errorf("expected file to survive: %v", err)
	}
}

func TestDryRun(t *testing.T) {
	dir := t.TempDir()
	a := testArchive(t, Config{Dir: dir, Retention: 24 * time.Hour})

	old := filepath.Join(dir, "plan-20200101T000000-old.parquet")
	if err := os.WriteFile(old, []byte("test"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	result := a.DryRun()

	if result.FilesDeleted != 1 {
		t.Errorf("expected 1 file would be deleted, got %d", result.FilesDeleted)
	}
	if _, err := os.Stat(old); os.IsNotExist(err) {
		t.Error("file should still exist after dry run")
	}
	if a.Stats().FilesPruned != 0 {
		t.Error("dry run should not change stats")
	}
}

// =============================================================================
// Archive Tests
// =============================================================================

func TestStats(t *testing.T) {
	dir := t.TempDir()
	a := testArchive(t, Config{Dir: dir, Retention: 24 * time.Hour})

	path, err := a.WriteSnapshot("run-1", testPlan(time.Now().UTC()))
	if err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	stats := a.Stats()
	if stats.SnapshotsWritten != 1 {
		t.Errorf("expected 1 snapshot written, got %d", stats.SnapshotsWritten)
	}
	if stats.RowsWritten != 2 {
		t.Errorf("expected 2 rows written, got %d", stats.RowsWritten)
	}

	old := filepath.Join(dir, "plan-20200101T000000-old.parquet")
	if err := os.WriteFile(old, []byte("test"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	a.Prune()

	stats = a.Stats()
	if stats.FilesPruned != 1 {
		t.Errorf("expected 1 file pruned, got %d", stats.FilesPruned)
	}
	if stats.LastPruneTime.IsZero() {
		t.Error("last prune time should be set")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected fresh snapshot to survive: %v", err)
	}
}

func TestGetDiskUsage(t *testing.T) {
	dir := t.TempDir()
	a := testArchive(t, Config{Dir: dir})

	for _, name := range []string{"plan-20260801T000000-a.parquet", "plan-20260801T010000-b.parquet"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("test data content"), 0644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}

	usage, err := a.GetDiskUsage()
	if err != nil {
		t.Fatalf("GetDiskUsage: %v", err)
	}
	if usage.FileCount != 2 {
		t.Errorf("expected 2 files, got %d", usage.FileCount)
	}
	if usage.TotalSize != 34 {
		t.Errorf("expected 34 bytes, got %d", usage.TotalSize)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{Dir: t.TempDir(), Algorithm: "brotli"}); err == nil {
		t.Error("expected error for unknown algorithm")
	}
	if _, err := New(Config{Dir: t.TempDir(), Algorithm: "gzip", Level: 12}); err == nil {
		t.Error("expected error for out-of-range gzip level")
	}
	if _, err := New(Config{Algorithm: "zstd"}); err == nil {
		t.Error("expected error for missing directory")
	}
}
