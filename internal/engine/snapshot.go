package engine

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
	"sort"
	"time"

	"github.com/guardiandrive/guardiand/internal/model"
)

// Inputs is one complete evaluation snapshot. The engine computes from
// whatever the snapshot holds and never reaches outside it.
type Inputs struct {
	Drives   []model.DriveTelemetry
	Files    []model.FileRecord
	Costs    *model.CostTable
	Sheets   []model.CloudPriceSheet
	Profiles []model.AlgorithmProfile
}

// =============================================================================
// Hash Builder
// =============================================================================

// HashBuilder accumulates an FNV-64a content hash. The hash is
// deterministic: the same sequence of writes always produces the same
// value, and order matters.
type HashBuilder struct {
	h hash.Hash64
}

// NewHashBuilder creates an empty hash builder.
func NewHashBuilder() *HashBuilder {
	return &HashBuilder{h: fnv.New64a()}
}

// String adds a string value to the hash.
func (b *HashBuilder) String(s string) *HashBuilder {
	b.h.Write([]byte(s))
	b.h.Write([]byte{0}) // Separator to avoid collisions
	return b
}

// Int adds an integer to the hash.
func (b *HashBuilder) Int(i int) *HashBuilder {
	return b.Uint64(uint64(i))
}

// Int64 adds an int64 to the hash.
func (b *HashBuilder) Int64(i int64) *HashBuilder {
	return b.Uint64(uint64(i))
}

// Uint64 adds a uint64 to the hash.
func (b *HashBuilder) Uint64(i uint64) *HashBuilder {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, i)
	b.h.Write(buf)
	return b
}

// Float64 adds a float64 to the hash by its IEEE bits.
func (b *HashBuilder) Float64(f float64) *HashBuilder {
	return b.Uint64(math.Float64bits(f))
}

// Bool adds a boolean to the hash.
func (b *HashBuilder) Bool(v bool) *HashBuilder {
	if v {
		b.h.Write([]byte{1})
	} else {
		b.h.Write([]byte{0})
	}
	return b
}

// Time adds a timestamp to the hash at nanosecond precision.
func (b *HashBuilder) Time(t time.Time) *HashBuilder {
	if t.IsZero() {
		return b.Bool(false)
	}
	return b.Bool(true).Int64(t.UnixNano())
}

// Build returns the final hash value.
func (b *HashBuilder) Build() uint64 {
	return b.h.Sum64()
}

// =============================================================================
// Snapshot Fingerprint
// =============================================================================

// Fingerprint hashes the canonical snapshot set. Drive and file
// collections hash in sorted-by-id order, so permutations of the same
// snapshot share a fingerprint; everything semantically meaningful to
// the engine participates.
func (in *Inputs) Fingerprint() uint64 {
	b := NewHashBuilder()

	drives := make([]model.DriveTelemetry, len(in.Drives))
	copy(drives, in.Drives)
	sort.Slice(drives, func(i, j int) bool { return drives[i].DriveID < drives[j].DriveID })
	b.Int(len(drives))
	for i := range drives {
		hashDrive(b, &drives[i])
	}

	files := make([]model.FileRecord, len(in.Files))
	copy(files, in.Files)
	sort.Slice(files, func(i, j int) bool { return files[i].FileID < files[j].FileID })
	b.Int(len(files))
	for i := range files {
		hashFile(b, &files[i])
	}

	hashCosts(b, in.Costs)

	sheets := make([]model.CloudPriceSheet, len(in.Sheets))
	copy(sheets, in.Sheets)
	sort.Slice(sheets, func(i, j int) bool { return sheets[i].Provider < sheets[j].Provider })
	b.Int(len(sheets))
	for i := range sheets {
		hashSheet(b, &sheets[i])
	}

	b.Int(len(in.Profiles))
	for i := range in.Profiles {
		hashProfile(b, &in.Profiles[i])
	}

	return b.Build()
}

func hashDrive(b *HashBuilder, d *model.DriveTelemetry) {
	b.String(d.DriveID).
		String(d.Model).
		String(d.SerialNumber).
		Int64(d.CapacityBytes).
		Int64(d.UsedBytes).
		Float64(d.TemperatureC).
		Int64(d.PowerOnHours).
		Int64(d.ReallocatedSectors).
		Int64(d.PendingSectors).
		Int64(d.UDMACRCErrors).
		Int64(d.SpinRetries).
		Float64(d.ReadErrorRate).
		Float64(d.SeekErrorRate).
		Time(d.CollectedAt)
}

func hashFile(b *HashBuilder, f *model.FileRecord) {
	b.String(f.FileID).
		String(f.Path).
		String(f.DriveID).
		Int64(f.SizeBytes).
		String(f.Extension).
		Int64(f.AccessCount).
		Time(f.LastAccessed).
		Time(f.CreatedAt).
		Time(f.ModifiedAt).
		Float64(f.Compressibility).
		Int(int(f.CurrentTier))
}

func hashCosts(b *HashBuilder, c *model.CostTable) {
	if c == nil {
		b.Bool(false)
		return
	}
	b.Bool(true).Time(c.AsOf)

	keys := make([]model.PriceKey, 0, len(c.Prices))
	for k := range c.Prices {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Provider != keys[j].Provider {
			return keys[i].Provider < keys[j].Provider
		}
		return keys[i].Tier < keys[j].Tier
	})
	b.Int(len(keys))
	for _, k := range keys {
		b.Int(int(k.Provider)).Int(int(k.Tier)).Float64(c.Prices[k])
	}
}

func hashSheet(b *HashBuilder, s *model.CloudPriceSheet) {
	b.Int(int(s.Provider)).Time(s.AsOf).Int(len(s.Entries))
	for _, e := range s.Entries {
		b.String(e.TierName).
			Int(int(e.ServesTier)).
			Float64(e.PricePerGBMonth).
			Int(int(e.RetrievalTime)).
			Int(e.MinimumDays)
	}
}

func hashProfile(b *HashBuilder, p *model.AlgorithmProfile) {
	b.String(p.Name).
		Float64(p.DefaultRatio).
		Float64(p.ThroughputMBps).
		Float64(p.SpeedFactor)

	exts := make([]string, 0, len(p.RatioByExtension))
	for ext := range p.RatioByExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	b.Int(len(exts))
	for _, ext := range exts {
		b.String(ext).Float64(p.RatioByExtension[ext])
	}
}
