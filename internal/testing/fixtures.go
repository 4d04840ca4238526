package testing

import (
	"time"

	"github.com/guardiandrive/guardiand/internal/model"
)

// Telemetry returns a healthy drive snapshot: 4TiB at 25% utilization,
// cool, with clean SMART counters. Scores 100 and LOW risk under the
// default health config.
func Telemetry(id string, now time.Time) model.DriveTelemetry {
	return model.DriveTelemetry{
		DriveID:       id,
		Model:         "GD-4000",
		SerialNumber:  "SN-" + id,
		CapacityBytes: 4 * model.TiB,
		UsedBytes:     1 * model.TiB,
		TemperatureC:  35,
		CollectedAt:   now,
	}
}

// FailingTelemetry saturates every health factor, landing the score at
// the floor and the risk at CRITICAL under the default health config.
func FailingTelemetry(id string, now time.Time) model.DriveTelemetry {
	tel := Telemetry(id, now)
	tel.ReallocatedSectors = 500
	tel.PendingSectors = 200
	tel.UDMACRCErrors = 50
	tel.TemperatureC = 90
	tel.PowerOnHours = 90000
	return tel
}

// File returns a file record whose access recipe pins its
// classification: last access and creation expressed in days before
// now, plus the raw access count and size.
func File(id, driveID string, tier model.Tier, lastAccessDays, createdDays int, accessCount, sizeBytes int64, now time.Time) model.FileRecord {
	return model.FileRecord{
		FileID:       id,
		Path:         "/data/" + id + ".bin",
		DriveID:      driveID,
		SizeBytes:    sizeBytes,
		AccessCount:  accessCount,
		LastAccessed: now.AddDate(0, 0, -lastAccessDays),
		CreatedAt:    now.AddDate(0, 0, -createdDays),
		ModifiedAt:   now.AddDate(0, 0, -lastAccessDays),
		CurrentTier:  tier,
	}
}
