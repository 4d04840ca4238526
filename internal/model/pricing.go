package model

import (
	"time"

	"github.com/guardiandrive/guardiand/internal/errors"
)

// =============================================================================
// Cost Table
// =============================================================================

// PriceKey addresses one price in a CostTable.
type PriceKey struct {
	Provider Provider `json:"provider" yaml:"provider"`
	Tier     Tier     `json:"tier" yaml:"tier"`
}

// CostTable holds access-tier prices per provider in USD per GB-month.
// Pricing is a pure external input; a missing entry is a configuration
// error, never a guessed value.
type CostTable struct {
	Prices map[PriceKey]float64 `json:"-" yaml:"-"`

	// AsOf is when this pricing was resolved. Stale tables lower
	// recommendation confidence.
	AsOf time.Time `json:"as_of" yaml:"as_of"`
}

// NewCostTable creates an empty cost table stamped with asOf.
func NewCostTable(asOf time.Time) *CostTable {
	return &CostTable{
		Prices: make(map[PriceKey]float64),
		AsOf:   asOf,
	}
}

// Set stores the price for a provider/tier pair.
func (c *CostTable) Set(p Provider, t Tier, pricePerGBMonth float64) {
	c.Prices[PriceKey{Provider: p, Tier: t}] = pricePerGBMonth
}

// Price returns the USD per GB-month for a provider/tier pair.
// A missing entry is a configuration error fatal to the run needing it.
func (c *CostTable) Price(p Provider, t Tier) (float64, error) {
	price, ok := c.Prices[PriceKey{Provider: p, Tier: t}]
	if !ok {
		return 0, errors.NewMissingPrice(p.String(), t.String())
	}
	return price, nil
}

// Has returns true if the table holds a price for the pair.
func (c *CostTable) Has(p Provider, t Tier) bool {
	_, ok := c.Prices[PriceKey{Provider: p, Tier: t}]
	return ok
}

// Len returns the number of price entries.
func (c *CostTable) Len() int {
	return len(c.Prices)
}

// =============================================================================
// Cloud Price Sheets
// =============================================================================

// PriceEntry is one storage class offered by a provider.
type PriceEntry struct {
	// TierName is the provider's class name (e.g., "glacier-deep").
	TierName string `json:"tier_name" yaml:"tier_name" validate:"required"`

	// ServesTier is the access tier this class is suited for.
	ServesTier Tier `json:"serves_tier" yaml:"serves_tier"`

	// PricePerGBMonth is the storage price in USD.
	PricePerGBMonth float64 `json:"price_per_gb_month" yaml:"price_per_gb_month" validate:"gte=0"`

	// RetrievalTime is how long reads from this class take.
	RetrievalTime RetrievalTime `json:"retrieval_time" yaml:"retrieval_time"`

	// MinimumDays is the provider's minimum billable storage duration.
	MinimumDays int `json:"minimum_days,omitempty" yaml:"minimum_days" validate:"gte=0"`
}

// CloudPriceSheet is one provider's storage-class catalog.
type CloudPriceSheet struct {
	Provider Provider     `json:"provider" yaml:"provider"`
	Entries  []PriceEntry `json:"entries" yaml:"entries" validate:"dive"`

	// AsOf is when this sheet was resolved.
	AsOf time.Time `json:"as_of" yaml:"as_of"`
}

// CheapestFor returns the cheapest entry serving the given access tier.
// The second return is false when no entry serves the tier.
func (s *CloudPriceSheet) CheapestFor(t Tier) (PriceEntry, bool) {
	var best PriceEntry
	found := false
	for _, e := range s.Entries {
		if e.ServesTier != t {
			continue
		}
		if !found || e.PricePerGBMonth < best.PricePerGBMonth {
			best = e
			found = true
		}
	}
	return best, found
}

// CurrentSpend describes what the corpus costs today.
type CurrentSpend struct {
	// MonthlyCost is the corpus' current total USD per month.
	MonthlyCost float64 `json:"monthly_cost" yaml:"monthly_cost" validate:"gte=0"`

	// Provider is where the corpus currently lives.
	Provider Provider `json:"provider" yaml:"provider"`
}

// =============================================================================
// Cloud Option
// =============================================================================

// CloudTarget names a provider plus one of its storage classes.
type CloudTarget struct {
	Provider Provider `json:"provider"`
	TierName string   `json:"tier_name"`
}

// CloudOption is one provider/class evaluated against the corpus.
type CloudOption struct {
	Provider Provider `json:"provider"`
	TierName string   `json:"tier_name"`

	MonthlyCostPerGB float64       `json:"monthly_cost_per_gb"`
	RetrievalTime    RetrievalTime `json:"retrieval_time"`

	// TotalCost is corpus size times the per-GB price.
	TotalCost float64 `json:"total_cost"`

	// SavingsPercent is relative to current spend, floored at 0. A more
	// expensive option shows 0 with the difference visible in TotalCost.
	SavingsPercent float64 `json:"savings_percent"`

	// Recommended marks the cheapest option within the caller's
	// retrieval tolerance.
	Recommended bool `json:"recommended"`
}
