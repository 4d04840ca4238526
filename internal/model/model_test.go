package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/guardiandrive/guardiand/internal/errors"
)

func TestTierString(t *testing.T) {
	tests := []struct {
		tier     Tier
		expected string
	}{
		{TierHot, "HOT"},
		{TierWarm, "WARM"},
		{TierCold, "COLD"},
		{TierArchive, "ARCHIVE"},
	}

	for _, tt := range tests {
		if tt.tier.String() != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, tt.tier.String())
		}
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		input    string
		expected Tier
		hasError bool
	}{
		{"HOT", TierHot, false},
		{"hot", TierHot, false},
		{"WARM", TierWarm, false},
		{"COLD", TierCold, false},
		{"archive", TierArchive, false},
		{"glacial", TierHot, true},
	}

	for _, tt := range tests {
		result, err := ParseTier(tt.input)
		if tt.hasError && err == nil {
			t.Errorf("expected error for input %s", tt.input)
		}
		if !tt.hasError && err != nil {
			t.Errorf("unexpected error for input %s: %v", tt.input, err)
		}
		if !tt.hasError && result != tt.expected {
			t.Errorf("input %s: expected %s, got %s", tt.input, tt.expected, result)
		}
	}
}

func TestTierColderWarmer(t *testing.T) {
	tests := []struct {
		tier   Tier
		colder Tier
		warmer Tier
	}{
		{TierHot, TierWarm, TierHot},
		{TierWarm, TierCold, TierHot},
		{TierCold, TierArchive, TierWarm},
		{TierArchive, TierArchive, TierCold},
	}

	for _, tt := range tests {
		if tt.tier.Colder() != tt.colder {
			t.Errorf("tier %s: expected colder %s, got %s", tt.tier, tt.colder, tt.tier.Colder())
		}
		if tt.tier.Warmer() != tt.warmer {
			t.Errorf("tier %s: expected warmer %s, got %s", tt.tier, tt.warmer, tt.tier.Warmer())
		}
	}
}

func TestTierDelta(t *testing.T) {
	if d := TierHot.Delta(TierCold); d != 2 {
		t.Errorf("expected delta 2, got %d", d)
	}
	if d := TierArchive.Delta(TierWarm); d != -2 {
		t.Errorf("expected delta -2, got %d", d)
	}
	if d := TierWarm.Delta(TierWarm); d != 0 {
		t.Errorf("expected delta 0, got %d", d)
	}
}

func TestTierJSONRoundTrip(t *testing.T) {
	for _, tier := range AllTiers() {
		data, err := json.Marshal(tier)
		if err != nil {
			t.Fatalf("marshal %s: %v", tier, err)
		}

		var back Tier
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != tier {
			t.Errorf("expected %s, got %s", tier, back)
		}
	}
}

func TestRiskLevelOrdering(t *testing.T) {
	if !RiskCritical.AtLeast(RiskHigh) {
		t.Error("expected CRITICAL to be at least HIGH")
	}
	if RiskLow.AtLeast(RiskMedium) {
		t.Error("expected LOW to be below MEDIUM")
	}

	levels := AllRiskLevels()
	for i := 1; i < len(levels); i++ {
		if levels[i] <= levels[i-1] {
			t.Errorf("risk levels not strictly increasing at index %d", i)
		}
	}
}

func TestUrgencyMoreUrgent(t *testing.T) {
	tests := []struct {
		a, b, expected Urgency
	}{
		{UrgencyImmediate, UrgencyThirtyDays, UrgencyImmediate},
		{UrgencyThirtyDays, UrgencySevenDays, UrgencySevenDays},
		{UrgencySevenDays, UrgencySevenDays, UrgencySevenDays},
	}

	for _, tt := range tests {
		if got := tt.a.MoreUrgent(tt.b); got != tt.expected {
			t.Errorf("%s vs %s: expected %s, got %s", tt.a, tt.b, tt.expected, got)
		}
	}
}

func TestUrgencyString(t *testing.T) {
	tests := []struct {
		urgency  Urgency
		expected string
	}{
		{UrgencyImmediate, "IMMEDIATE"},
		{UrgencySevenDays, "7_DAYS"},
		{UrgencyThirtyDays, "30_DAYS"},
	}

	for _, tt := range tests {
		if tt.urgency.String() != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, tt.urgency.String())
		}
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SeverityCritical, "critical"},
		{SeverityHigh, "high"},
		{SeverityMedium, "medium"},
		{SeverityLow, "low"},
	}

	for _, tt := range tests {
		if tt.severity.String() != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, tt.severity.String())
		}
	}
}

func TestRetrievalTimeWithin(t *testing.T) {
	if !RetrievalInstant.Within(RetrievalHours) {
		t.Error("expected Instant within 3-5 hours")
	}
	if RetrievalDays.Within(RetrievalHours) {
		t.Error("expected 12-48 hours to exceed 3-5 hours")
	}
	if !RetrievalHours.Within(RetrievalHours) {
		t.Error("expected equal retrieval to be within tolerance")
	}
}

func TestDriveTelemetryUtilization(t *testing.T) {
	tel := DriveTelemetry{
		CapacityBytes: 1000 * GiB,
		UsedBytes:     250 * GiB,
	}

	if got := tel.UtilizationPercent(); got != 25.0 {
		t.Errorf("expected 25.0, got %v", got)
	}

	empty := DriveTelemetry{}
	if got := empty.UtilizationPercent(); got != 0 {
		t.Errorf("expected 0 for zero capacity, got %v", got)
	}
}

func TestFileRecordExt(t *testing.T) {
	tests := []struct {
		record   FileRecord
		expected string
	}{
		{FileRecord{Extension: "LOG"}, "log"},
		{FileRecord{Extension: ".csv"}, "csv"},
		{FileRecord{Path: "/data/export.tar.gz"}, "gz"},
		{FileRecord{Path: "/data/noext"}, ""},
	}

	for _, tt := range tests {
		if got := tt.record.Ext(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}

func TestFileRecordAgeDays(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	f := FileRecord{CreatedAt: now.Add(-10 * 24 * time.Hour)}
	if got := f.AgeDays(now); got != 10 {
		t.Errorf("expected 10, got %v", got)
	}

	// Freshly created files report at least one day so rate math never
	// divides by zero.
	young := FileRecord{CreatedAt: now.Add(-time.Hour)}
	if got := young.AgeDays(now); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
}

func TestCostTableLookup(t *testing.T) {
	table := NewCostTable(time.Now())
	table.Set(ProviderLocal, TierHot, 0.023)
	table.Set(ProviderLocal, TierArchive, 0.00099)

	price, err := table.Price(ProviderLocal, TierHot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 0.023 {
		t.Errorf("expected 0.023, got %v", price)
	}

	_, err = table.Price(ProviderAWS, TierHot)
	if err == nil {
		t.Fatal("expected error for missing entry")
	}
	if !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestCloudPriceSheetCheapestFor(t *testing.T) {
	sheet := CloudPriceSheet{
		Provider: ProviderAWS,
		Entries: []PriceEntry{
			{TierName: "standard", ServesTier: TierHot, PricePerGBMonth: 0.023},
			{TierName: "glacier-instant", ServesTier: TierCold, PricePerGBMonth: 0.004},
			{TierName: "glacier-flexible", ServesTier: TierCold, PricePerGBMonth: 0.0036},
		},
	}

	entry, ok := sheet.CheapestFor(TierCold)
	if !ok {
		t.Fatal("expected a cold entry")
	}
	if entry.TierName != "glacier-flexible" {
		t.Errorf("expected glacier-flexible, got %s", entry.TierName)
	}

	if _, ok := sheet.CheapestFor(TierArchive); ok {
		t.Error("expected no archive entry")
	}
}

func TestAlertActive(t *testing.T) {
	a := Alert{ID: "a1"}
	if !a.Active() {
		t.Error("expected new alert active")
	}

	a.Acknowledged = true
	if a.Active() {
		t.Error("expected acknowledged alert inactive")
	}

	b := Alert{ID: "a2", SupersededBy: "a3"}
	if b.Active() {
		t.Error("expected superseded alert inactive")
	}
}

func TestDriveHealthDominantFactor(t *testing.T) {
	h := DriveHealth{
		TopFactors: []HealthFactor{
			{Name: "reallocated_sectors", Impact: 20},
			{Name: "temperature", Impact: 5},
		},
	}

	if got := h.DominantFactor(); got != "reallocated_sectors" {
		t.Errorf("expected reallocated_sectors, got %s", got)
	}

	empty := DriveHealth{}
	if got := empty.DominantFactor(); got != "" {
		t.Errorf("expected empty, got %s", got)
	}
}
