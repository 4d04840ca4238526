package model

import (
	"strings"
	"time"
)

// FileRecord describes one file in the managed corpus.
// Size and timestamps are authoritative inputs; CurrentTier is owned by
// the access classifier and overwritten by an applied migration.
type FileRecord struct {
	// Identity
	FileID string `json:"file_id" yaml:"file_id" validate:"required"`
	Path   string `json:"path" yaml:"path" validate:"required"`

	// Ownership: the drive this file lives on, linking file urgency to
	// drive health.
	DriveID string `json:"drive_id,omitempty" yaml:"drive_id"`

	// Content
	SizeBytes int64  `json:"size_bytes" yaml:"size_bytes" validate:"gt=0"`
	Extension string `json:"extension,omitempty" yaml:"extension"`

	// Access history
	AccessCount  int64     `json:"access_count" yaml:"access_count" validate:"gte=0"`
	LastAccessed time.Time `json:"last_accessed" yaml:"last_accessed"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	ModifiedAt   time.Time `json:"modified_at" yaml:"modified_at"`

	// Compressibility estimate in [0,1]. Zero means unknown; the advisor
	// falls back to its extension table.
	Compressibility float64 `json:"compressibility,omitempty" yaml:"compressibility" validate:"gte=0,lte=1"`

	// Placement
	CurrentTier Tier `json:"current_tier" yaml:"current_tier"`
}

// Ext returns the normalized extension without the leading dot.
// Falls back to the path suffix when Extension is unset.
func (f *FileRecord) Ext() string {
	ext := f.Extension
	if ext == "" {
		if i := strings.LastIndex(f.Path, "."); i >= 0 && i < len(f.Path)-1 {
			ext = f.Path[i+1:]
		}
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// SizeGB returns the file size in gigabytes.
func (f *FileRecord) SizeGB() float64 {
	return float64(f.SizeBytes) / float64(GiB)
}

// AgeDays returns days since creation, at least 1 so that access-rate
// math never divides by zero.
func (f *FileRecord) AgeDays(now time.Time) float64 {
	days := now.Sub(f.CreatedAt).Hours() / 24
	if days < 1 {
		return 1
	}
	return days
}

// DaysSinceAccess returns days since the file was last read.
func (f *FileRecord) DaysSinceAccess(now time.Time) float64 {
	d := now.Sub(f.LastAccessed).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

// Classification is the classifier's verdict for one file.
type Classification struct {
	FileID string `json:"file_id"`

	// Tier is the recommended access tier.
	Tier Tier `json:"tier"`

	// TierScore is the combined score the cutoffs were applied to.
	TierScore float64 `json:"tier_score"`

	// Component scores, each in [0,1].
	RecencyScore   float64 `json:"recency_score"`
	FrequencyScore float64 `json:"frequency_score"`

	// AccessPerDay is the raw access rate used in reasoning text.
	AccessPerDay float64 `json:"access_per_day"`

	// Confidence reflects distance from the nearest tier boundary.
	Confidence float64 `json:"confidence"`
}
