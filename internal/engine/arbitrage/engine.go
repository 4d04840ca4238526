// Package arbitrage compares cloud storage offers against the corpus'
// current spend and derives lifecycle policies from the tiering age
// boundaries. It never talks to a provider; price sheets are inputs and
// the lifecycle output is a document, not an API call.
package arbitrage

import (
	"fmt"
	"sort"

	"github.com/guardiandrive/guardiand/internal/engine/config"
	"github.com/guardiandrive/guardiand/internal/errors"
	"github.com/guardiandrive/guardiand/internal/model"
)

// Engine ranks provider storage classes by what the corpus would cost
// there. Engines are immutable and safe for concurrent use.
type Engine struct {
	cfg config.ArbitrageConfig
}

// New returns an Engine with the given configuration.
func New(cfg config.ArbitrageConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: arbitrage: %w", errors.ErrConfiguration, err)
	}
	return &Engine{cfg: cfg}, nil
}

// MaxRetrieval returns the configured default retrieval tolerance.
func (e *Engine) MaxRetrieval() model.RetrievalTime {
	return e.cfg.MaxRetrieval
}

// Compare prices the corpus on every storage class of every sheet and
// returns options sorted cheapest first. The cheapest option within the
// retrieval tolerance is flagged Recommended; when none qualifies no
// option carries the flag. Savings are relative to current spend and
// floored at zero so a more expensive option never reads as a gain.
func (e *Engine) Compare(corpusGB float64, current model.CurrentSpend, sheets []model.CloudPriceSheet, maxRetrieval model.RetrievalTime) ([]model.CloudOption, error) {
	if corpusGB < 0 {
		return nil, errors.NewInvalidValue("corpus_gb", corpusGB, "must not be negative")
	}
	if current.MonthlyCost < 0 {
		return nil, errors.NewInvalidValue("monthly_cost", current.MonthlyCost, "must not be negative")
	}
	if !maxRetrieval.Valid() {
		return nil, errors.NewInvalidValue("max_retrieval", maxRetrieval, "unknown retrieval time")
	}

	var options []model.CloudOption
	for _, sheet := range sheets {
		for _, entry := range sheet.Entries {
			total := corpusGB * entry.PricePerGBMonth

			// An empty corpus costs nothing anywhere; reporting the
			// full current spend as "savings" would be noise.
			savings := 0.0
			if corpusGB > 0 {
				savings = savingsPercent(current.MonthlyCost, total)
			}

			options = append(options, model.CloudOption{
				Provider:         sheet.Provider,
				TierName:         entry.TierName,
				MonthlyCostPerGB: entry.PricePerGBMonth,
				RetrievalTime:    entry.RetrievalTime,
				TotalCost:        total,
				SavingsPercent:   savings,
			})
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].TotalCost != options[j].TotalCost {
			return options[i].TotalCost < options[j].TotalCost
		}
		if options[i].Provider != options[j].Provider {
			return options[i].Provider < options[j].Provider
		}
		return options[i].TierName < options[j].TierName
	})

	for i := range options {
		if options[i].RetrievalTime.Within(maxRetrieval) {
			options[i].Recommended = true
			break
		}
	}

	return options, nil
}

func savingsPercent(current, total float64) float64 {
	if current <= 0 {
		return 0
	}
	pct := (current - total) / current * 100
	if pct < 0 {
		return 0
	}
	return pct
}
