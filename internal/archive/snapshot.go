package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/guardiandrive/guardiand/internal/model"
)

// snapshotTimeLayout names files so lexical order is chronological.
const snapshotTimeLayout = "20060102T150405"

// RecommendationRow is one tiering recommendation in Parquet format.
type RecommendationRow struct {
	RunID            string  `parquet:"run_id"`
	PlannedAtMs      int64   `parquet:"planned_at_ms"`
	FileID           string  `parquet:"file_id"`
	Path             string  `parquet:"path"`
	CurrentTier      string  `parquet:"current_tier"`
	RecommendedTier  string  `parquet:"recommended_tier"`
	CloudProvider    string  `parquet:"cloud_provider,optional"`
	CloudTierName    string  `parquet:"cloud_tier_name,optional"`
	EstimatedSavings float64 `parquet:"estimated_savings"`
	Urgency          string  `parquet:"urgency"`
	Confidence       float64 `parquet:"confidence"`
	Reason           string  `parquet:"reason,optional"`
}

// RecommendationToRow converts a TieringRecommendation to a row.
func RecommendationToRow(runID string, plannedAt time.Time, rec *model.TieringRecommendation) RecommendationRow {
	row := RecommendationRow{
		RunID:            runID,
		PlannedAtMs:      plannedAt.UnixMilli(),
		FileID:           rec.FileID,
		Path:             rec.Path,
		CurrentTier:      rec.CurrentTier.String(),
		RecommendedTier:  rec.RecommendedTier.String(),
		EstimatedSavings: rec.EstimatedSavings,
		Urgency:          rec.Urgency.String(),
		Confidence:       rec.Confidence,
		Reason:           rec.Reason,
	}
	if rec.RecommendedCloud != nil {
		row.CloudProvider = rec.RecommendedCloud.Provider.String()
		row.CloudTierName = rec.RecommendedCloud.TierName
	}
	return row
}

// RowToRecommendation converts a row back to a TieringRecommendation.
func RowToRecommendation(r *RecommendationRow) (model.TieringRecommendation, error) {
	current, err := model.ParseTier(r.CurrentTier)
	if err != nil {
		return model.TieringRecommendation{}, fmt.Errorf("row %s: %w", r.FileID, err)
	}
	recommended, err := model.ParseTier(r.RecommendedTier)
	if err != nil {
		return model.TieringRecommendation{}, fmt.Errorf("row %s: %w", r.FileID, err)
	}
	urgency, err := model.ParseUrgency(r.Urgency)
	if err != nil {
		return model.TieringRecommendation{}, fmt.Errorf("row %s: %w", r.FileID, err)
	}

	rec := model.TieringRecommendation{
		FileID:           r.FileID,
		Path:             r.Path,
		CurrentTier:      current,
		RecommendedTier:  recommended,
		EstimatedSavings: r.EstimatedSavings,
		Urgency:          urgency,
		Confidence:       r.Confidence,
		Reason:           r.Reason,
	}
	if r.CloudProvider != "" {
		provider, err := model.ParseProvider(r.CloudProvider)
		if err != nil {
			return model.TieringRecommendation{}, fmt.Errorf("row %s: %w", r.FileID, err)
		}
		rec.RecommendedCloud = &model.CloudTarget{
			Provider: provider,
			TierName: r.CloudTierName,
		}
	}
	return rec, nil
}

// WriteSnapshot archives one planning run's recommendations and
// returns the file path. A run with no recommendations still writes a
// file, so the chronology records that the run happened.
func (a *Archive) WriteSnapshot(runID string, plan *model.TieringPlanResult) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	codec, err := codecFor(a.cfg.Algorithm, a.cfg.Level)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("plan-%s-%s.parquet",
		plan.PlannedAt.UTC().Format(snapshotTimeLayout), runID)
	path := filepath.Join(a.cfg.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}

	writer := parquet.NewGenericWriter[RecommendationRow](f, parquet.Compression(codec))

	rows := make([]RecommendationRow, len(plan.Recommendations))
	for i := range plan.Recommendations {
		rows[i] = RecommendationToRow(runID, plan.PlannedAt, &plan.Recommendations[i])
	}

	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("write rows: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("close writer: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close snapshot: %w", err)
	}

	a.stats.SnapshotsWritten++
	a.stats.RowsWritten += int64(len(rows))

	return path, nil
}

// SnapshotReader reads rows from an archived snapshot.
type SnapshotReader struct {
	file   *os.File
	reader *parquet.GenericReader[RecommendationRow]
	path   string
}

// NewSnapshotReader opens an archived snapshot file.
func NewSnapshotReader(path string) (*SnapshotReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}

	reader := parquet.NewGenericReader[RecommendationRow](f)

	return &SnapshotReader{
		file:   f,
		reader: reader,
		path:   path,
	}, nil
}

// ReadAll reads all rows from the snapshot.
func (r *SnapshotReader) ReadAll() ([]RecommendationRow, error) {
	numRows := r.reader.NumRows()
	if numRows == 0 {
		return nil, nil
	}

	rows := make([]RecommendationRow, numRows)
	n, err := r.reader.Read(rows)
	if err != nil {
		return nil, err
	}
	return rows[:n], nil
}

// NumRows returns the total number of rows in the snapshot.
func (r *SnapshotReader) NumRows() int64 {
	return r.reader.NumRows()
}

// Close closes the reader.
func (r *SnapshotReader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// Path returns the file path.
func (r *SnapshotReader) Path() string {
	return r.path
}

// ReadSnapshot reads a snapshot file back into recommendations.
func ReadSnapshot(path string) ([]model.TieringRecommendation, error) {
	r, err := NewSnapshotReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	recs := make([]model.TieringRecommendation, 0, len(rows))
	for i := range rows {
		rec, err := RowToRecommendation(&rows[i])
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// parseSnapshotTime extracts the plan time from a snapshot filename.
func parseSnapshotTime(name string) (time.Time, error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	rest, ok := strings.CutPrefix(base, "plan-")
	if !ok {
		return time.Time{}, fmt.Errorf("not a plan snapshot: %s", name)
	}
	stamp, _, _ := strings.Cut(rest, "-")
	return time.Parse(snapshotTimeLayout, stamp)
}
