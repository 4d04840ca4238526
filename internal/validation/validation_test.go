package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/guardiandrive/guardiand/internal/errors"
	"github.com/guardiandrive/guardiand/internal/model"
)

func validTelemetry() model.DriveTelemetry {
	return model.DriveTelemetry{
		DriveID:       "drive-01",
		Model:         "WD4003FZEX",
		CapacityBytes: 4 * model.TiB,
		UsedBytes:     1 * model.TiB,
		TemperatureC:  35,
		PowerOnHours:  12000,
		CollectedAt:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func validFile(now time.Time) model.FileRecord {
	return model.FileRecord{
		FileID:       "reports-2026.csv",
		Path:         "/data/reports/reports-2026.csv",
		DriveID:      "drive-01",
		SizeBytes:    500 * model.MiB,
		Extension:    "csv",
		AccessCount:  42,
		CreatedAt:    now.AddDate(0, -6, 0),
		LastAccessed: now.AddDate(0, 0, -14),
		CurrentTier:  model.TierHot,
	}
}

func TestTelemetryValid(t *testing.T) {
	if err := Telemetry(validTelemetry()); err != nil {
		t.Errorf("valid telemetry should pass: %v", err)
	}
}

func TestTelemetryMissingDriveID(t *testing.T) {
	tel := validTelemetry()
	tel.DriveID = ""

	err := Telemetry(tel)
	if err == nil {
		t.Fatal("expected error for missing drive_id")
	}
	if !errors.Is(err, errors.ErrMissingField) {
		t.Errorf("expected missing field error, got %v", err)
	}
	if !errors.IsValidation(err) {
		t.Errorf("expected validation category, got %v", err)
	}
}

func TestTelemetryNegativeCounter(t *testing.T) {
	tel := validTelemetry()
	tel.ReallocatedSectors = -1

	err := Telemetry(tel)
	if err == nil {
		t.Fatal("expected error for negative counter")
	}
	if !errors.Is(err, errors.ErrNegativeCounter) {
		t.Errorf("expected negative counter error, got %v", err)
	}
}

func TestTelemetryUsedExceedsCapacity(t *testing.T) {
	tel := validTelemetry()
	tel.UsedBytes = tel.CapacityBytes + 1

	err := Telemetry(tel)
	if err == nil {
		t.Fatal("expected error when used exceeds capacity")
	}
	if !errors.Is(err, errors.ErrUsedExceedsCapacity) {
		t.Errorf("expected used-exceeds-capacity error, got %v", err)
	}
}

func TestTelemetryZeroCapacity(t *testing.T) {
	tel := validTelemetry()
	tel.CapacityBytes = 0
	tel.UsedBytes = 0

	if err := Telemetry(tel); err == nil {
		t.Error("expected error for zero capacity")
	}
}

func TestTelemetryCollectsAllErrors(t *testing.T) {
	tel := validTelemetry()
	tel.DriveID = ""
	tel.PendingSectors = -5
	tel.TemperatureC = 300

	err := Telemetry(tel)
	if err == nil {
		t.Fatal("expected errors")
	}

	var verrs *errors.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs.Errors) < 3 {
		t.Errorf("expected at least 3 collected errors, got %d: %v", len(verrs.Errors), err)
	}
}

func TestFileValid(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if err := File(validFile(now), now); err != nil {
		t.Errorf("valid file should pass: %v", err)
	}
}

func TestFileFutureAccess(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	f := validFile(now)
	f.LastAccessed = now.Add(24 * time.Hour)

	err := File(f, now)
	if err == nil {
		t.Fatal("expected error for future last_accessed")
	}
	if !errors.Is(err, errors.ErrTimestampInFuture) {
		t.Errorf("expected future timestamp error, got %v", err)
	}
}

func TestFileZeroSize(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	f := validFile(now)
	f.SizeBytes = 0

	if err := File(f, now); err == nil {
		t.Error("expected error for zero size")
	}
}

func TestFileNegativeAccessCount(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	f := validFile(now)
	f.AccessCount = -1

	if err := File(f, now); err == nil {
		t.Error("expected error for negative access count")
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "drive-01", false},
		{"underscores", "nas_bay_3", false},
		{"alphanumeric", "sda1", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"leading dot", ".hidden", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"control char", "a\x00b", true},
		{"space", "drive 01", true},
		{"too long", strings.Repeat("a", 256), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDriveID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDriveID(%q): expected error=%v, got %v", tt.id, tt.wantErr, err)
			}
		})
	}
}

func TestFileIDAllowsDots(t *testing.T) {
	if err := ValidateFileID("reports-2026.csv"); err != nil {
		t.Errorf("file ids should allow dots: %v", err)
	}
	if err := ValidateDriveID("reports-2026.csv"); err == nil {
		t.Error("drive ids should not allow dots")
	}
}

func TestEscapeLikePattern(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"100%", "100\\%"},
		{"under_score", "under\\_score"},
		{"back\\slash", "back\\\\slash"},
		{"[set]", "\\[set\\]"},
	}

	for _, tt := range tests {
		result := EscapeLikePattern(tt.input)
		if result != tt.expected {
			t.Errorf("EscapeLikePattern(%q): expected %q, got %q", tt.input, tt.expected, result)
		}
	}
}

func TestSafeLikePrefix(t *testing.T) {
	result := SafeLikePrefix("/data/reports")
	if result != "/data/reports%" {
		t.Errorf("expected '/data/reports%%', got %q", result)
	}
}

func TestSafeLikeContains(t *testing.T) {
	result := SafeLikeContains("50%_off")
	if result != "%50\\%\\_off%" {
		t.Errorf("expected escaped contains pattern, got %q", result)
	}
}
