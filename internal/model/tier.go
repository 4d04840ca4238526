package model

import (
	"encoding/json"
	"fmt"
)

// Tier represents a storage-access class reflecting expected access
// frequency and recency.
type Tier int

const (
	// TierHot holds actively used data on fast storage.
	TierHot Tier = iota

	// TierWarm holds occasionally accessed data.
	TierWarm

	// TierCold holds rarely accessed data on cheap storage.
	TierCold

	// TierArchive holds dormant data on the cheapest storage class.
	TierArchive
)

// String returns the canonical string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierHot:
		return "HOT"
	case TierWarm:
		return "WARM"
	case TierCold:
		return "COLD"
	case TierArchive:
		return "ARCHIVE"
	default:
		return fmt.Sprintf("unknown(%d)", t)
	}
}

// Valid returns true if the tier is one of the defined values.
func (t Tier) Valid() bool {
	return t >= TierHot && t <= TierArchive
}

// Colder returns the next colder tier.
// Returns the same tier if it is already the coldest.
func (t Tier) Colder() Tier {
	if t >= TierArchive {
		return TierArchive
	}
	return t + 1
}

// Warmer returns the next warmer tier.
// Returns the same tier if it is already the warmest.
func (t Tier) Warmer() Tier {
	if t <= TierHot {
		return TierHot
	}
	return t - 1
}

// IsColdest returns true if this is the coldest tier.
func (t Tier) IsColdest() bool {
	return t == TierArchive
}

// IsWarmest returns true if this is the warmest tier.
func (t Tier) IsWarmest() bool {
	return t == TierHot
}

// Delta returns the signed distance from t to other.
// Positive values mean other is colder than t.
func (t Tier) Delta(other Tier) int {
	return int(other) - int(t)
}

// MarshalJSON implements json.Marshaler.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler so tiers can appear in
// catalog and config files.
func (t *Tier) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTier parses a string into a Tier. Matching is case-insensitive.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "HOT", "hot", "Hot":
		return TierHot, nil
	case "WARM", "warm", "Warm":
		return TierWarm, nil
	case "COLD", "cold", "Cold":
		return TierCold, nil
	case "ARCHIVE", "archive", "Archive":
		return TierArchive, nil
	default:
		return TierHot, fmt.Errorf("unknown tier: %s", s)
	}
}

// AllTiers returns all tiers ordered warmest to coldest.
func AllTiers() []Tier {
	return []Tier{TierHot, TierWarm, TierCold, TierArchive}
}
