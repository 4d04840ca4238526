package model

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// Cloud Provider
// =============================================================================

// Provider identifies a storage provider, local or cloud.
type Provider int

const (
	// ProviderLocal is on-premises storage.
	ProviderLocal Provider = iota

	// ProviderAWS is Amazon S3 and its storage classes.
	ProviderAWS

	// ProviderAzure is Azure Blob Storage.
	ProviderAzure

	// ProviderGCP is Google Cloud Storage.
	ProviderGCP
)

// String returns the canonical string representation of the provider.
func (p Provider) String() string {
	switch p {
	case ProviderLocal:
		return "local"
	case ProviderAWS:
		return "aws"
	case ProviderAzure:
		return "azure"
	case ProviderGCP:
		return "gcp"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// Valid returns true if the provider is one of the defined values.
func (p Provider) Valid() bool {
	return p >= ProviderLocal && p <= ProviderGCP
}

// MarshalJSON implements json.Marshaler.
func (p Provider) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Provider) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseProvider(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Provider) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseProvider(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseProvider parses a string into a Provider.
func ParseProvider(s string) (Provider, error) {
	switch s {
	case "local", "LOCAL":
		return ProviderLocal, nil
	case "aws", "AWS":
		return ProviderAWS, nil
	case "azure", "AZURE":
		return ProviderAzure, nil
	case "gcp", "GCP":
		return ProviderGCP, nil
	default:
		return ProviderLocal, fmt.Errorf("unknown provider: %s", s)
	}
}

// AllProviders returns all providers.
func AllProviders() []Provider {
	return []Provider{ProviderLocal, ProviderAWS, ProviderAzure, ProviderGCP}
}

// =============================================================================
// Retrieval Time
// =============================================================================

// RetrievalTime orders storage classes by how long a read takes.
// Larger values are slower.
type RetrievalTime int

const (
	// RetrievalInstant reads complete in milliseconds.
	RetrievalInstant RetrievalTime = iota

	// RetrievalMinutes reads complete within minutes.
	RetrievalMinutes

	// RetrievalHours reads complete in a few hours.
	RetrievalHours

	// RetrievalHalfDay reads complete in roughly twelve hours.
	RetrievalHalfDay

	// RetrievalDays reads may take one to two days.
	RetrievalDays
)

// String returns the human-readable retrieval descriptor.
func (r RetrievalTime) String() string {
	switch r {
	case RetrievalInstant:
		return "Instant"
	case RetrievalMinutes:
		return "Minutes"
	case RetrievalHours:
		return "3-5 hours"
	case RetrievalHalfDay:
		return "12 hours"
	case RetrievalDays:
		return "12-48 hours"
	default:
		return fmt.Sprintf("unknown(%d)", r)
	}
}

// Valid returns true if the retrieval time is one of the defined values.
func (r RetrievalTime) Valid() bool {
	return r >= RetrievalInstant && r <= RetrievalDays
}

// Within returns true if this retrieval time is no slower than the limit.
func (r RetrievalTime) Within(limit RetrievalTime) bool {
	return r <= limit
}

// MarshalJSON implements json.Marshaler.
func (r RetrievalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RetrievalTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRetrievalTime(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *RetrievalTime) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseRetrievalTime(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRetrievalTime parses a descriptor or keyword into a RetrievalTime.
func ParseRetrievalTime(s string) (RetrievalTime, error) {
	switch s {
	case "Instant", "instant":
		return RetrievalInstant, nil
	case "Minutes", "minutes":
		return RetrievalMinutes, nil
	case "3-5 hours", "hours":
		return RetrievalHours, nil
	case "12 hours", "half-day", "halfday":
		return RetrievalHalfDay, nil
	case "12-48 hours", "days":
		return RetrievalDays, nil
	default:
		return RetrievalInstant, fmt.Errorf("unknown retrieval time: %s", s)
	}
}
