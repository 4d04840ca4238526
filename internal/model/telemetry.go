package model

import "time"

// DriveTelemetry is an immutable SMART-style snapshot for one drive.
// A new snapshot supersedes the prior one for the same DriveID.
//
// Counters are cumulative raw values as reported by the drive. Rates are
// normalized percentages in [0,100]. The engine never mutates a snapshot.
type DriveTelemetry struct {
	// Identity
	DriveID      string `json:"drive_id" yaml:"drive_id" validate:"required"`
	Model        string `json:"model,omitempty" yaml:"model"`
	SerialNumber string `json:"serial_number,omitempty" yaml:"serial_number"`

	// Capacity
	CapacityBytes int64 `json:"capacity_bytes" yaml:"capacity_bytes" validate:"gt=0"`
	UsedBytes     int64 `json:"used_bytes" yaml:"used_bytes" validate:"gte=0,ltefield=CapacityBytes"`

	// Operating conditions
	TemperatureC float64 `json:"temperature_c" yaml:"temperature_c" validate:"gte=-40,lte=120"`
	PowerOnHours int64   `json:"power_on_hours" yaml:"power_on_hours" validate:"gte=0"`

	// SMART counters
	ReallocatedSectors int64   `json:"reallocated_sectors" yaml:"reallocated_sectors" validate:"gte=0"`
	PendingSectors     int64   `json:"pending_sectors" yaml:"pending_sectors" validate:"gte=0"`
	UDMACRCErrors      int64   `json:"udma_crc_errors" yaml:"udma_crc_errors" validate:"gte=0"`
	SpinRetries        int64   `json:"spin_retries" yaml:"spin_retries" validate:"gte=0"`
	ReadErrorRate      float64 `json:"read_error_rate" yaml:"read_error_rate" validate:"gte=0,lte=100"`
	SeekErrorRate      float64 `json:"seek_error_rate" yaml:"seek_error_rate" validate:"gte=0,lte=100"`

	// Collection metadata
	CollectedAt time.Time `json:"collected_at" yaml:"collected_at"`
}

// UtilizationPercent returns used capacity as a percentage.
// Returns 0 for a zero-capacity snapshot rather than dividing by zero.
func (t *DriveTelemetry) UtilizationPercent() float64 {
	if t.CapacityBytes <= 0 {
		return 0
	}
	return float64(t.UsedBytes) / float64(t.CapacityBytes) * 100
}

// CapacityGB returns the capacity in gigabytes.
func (t *DriveTelemetry) CapacityGB() float64 {
	return float64(t.CapacityBytes) / float64(GiB)
}

// UsedGB returns the used bytes in gigabytes.
func (t *DriveTelemetry) UsedGB() float64 {
	return float64(t.UsedBytes) / float64(GiB)
}

// Byte size units.
const (
	KiB int64 = 1 << 10
	MiB int64 = 1 << 20
	GiB int64 = 1 << 30
	TiB int64 = 1 << 40
)
