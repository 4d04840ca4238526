package config

import (
	"time"

	"github.com/guardiandrive/guardiand/internal/model"
)

// DefaultStrategyProfiles returns the three built-in fleet strategies.
// Latency penalties and the cost/risk spread line up so that no single
// strategy dominates under every scoring weight set.
func DefaultStrategyProfiles() []StrategyProfile {
	return []StrategyProfile{
		{
			Name:              "Conservative",
			Description:       "Maximum protection with triple replication on hot storage",
			CostMultiplier:    1.50,
			RiskReduction:     0.90,
			LatencyPenalty:    0.3,
			ReplicationFactor: 3,
			CloudTier:         model.TierHot,
			CompressionLevel:  "gzip-9",
		},
		{
			Name:              "Balanced",
			Description:       "Cost and protection balanced across warm storage",
			CostMultiplier:    1.00,
			RiskReduction:     0.70,
			LatencyPenalty:    0.6,
			ReplicationFactor: 2,
			CloudTier:         model.TierWarm,
			CompressionLevel:  "zstd-11",
		},
		{
			Name:              "Aggressive",
			Description:       "Minimum cost with single-copy cold storage",
			CostMultiplier:    0.55,
			RiskReduction:     0.45,
			LatencyPenalty:    0.9,
			ReplicationFactor: 1,
			CloudTier:         model.TierCold,
			CompressionLevel:  "zstd-19",
		},
	}
}

// DefaultExtensionRatios maps file extensions to expected compression
// ratios. A ratio of 0.75 means the file shrinks to a quarter of its
// size. Already-compressed formats sit near zero.
func DefaultExtensionRatios() map[string]float64 {
	return map[string]float64{
		"log":     0.80,
		"xml":     0.78,
		"txt":     0.75,
		"csv":     0.72,
		"json":    0.70,
		"sql":     0.68,
		"html":    0.65,
		"yaml":    0.60,
		"parquet": 0.55,
		"pcap":    0.45,
		"pdf":     0.40,
		"docx":    0.35,
		"xlsx":    0.30,
		"pptx":    0.25,
		"pst":     0.20,
		"pbix":    0.20,
		"pkl":     0.15,
		"bin":     0.10,
		"fig":     0.10,
		"exe":     0.08,
		"apk":     0.08,
		"tar":     0.05,
		"png":     0.03,
		"jpg":     0.02,
		"jpeg":    0.02,
		"mp4":     0.02,
		"zip":     0.01,
		"gz":      0.01,
	}
}

// DefaultAlgorithmProfiles returns the built-in compression algorithm
// profiles. Throughput sets how long a run takes; the speed factor
// scales CPU cost for algorithms that burn more per wall-clock hour.
func DefaultAlgorithmProfiles() []model.AlgorithmProfile {
	return []model.AlgorithmProfile{
		{
			Name:             "zstd-19",
			RatioByExtension: DefaultExtensionRatios(),
			DefaultRatio:     0.15,
			ThroughputMBps:   12,
			SpeedFactor:      2.0,
		},
		{
			Name:             "zstd-11",
			RatioByExtension: DefaultExtensionRatios(),
			DefaultRatio:     0.15,
			ThroughputMBps:   60,
			SpeedFactor:      1.0,
		},
		{
			Name:             "gzip-9",
			RatioByExtension: DefaultExtensionRatios(),
			DefaultRatio:     0.15,
			ThroughputMBps:   25,
			SpeedFactor:      1.2,
		},
	}
}

// DefaultCostTable returns per-tier storage prices in USD per GB-month
// for each provider. The local rows follow AWS list prices since
// on-premises accounting rarely has real per-tier numbers.
func DefaultCostTable(asOf time.Time) *model.CostTable {
	t := model.NewCostTable(asOf)

	t.Set(model.ProviderLocal, model.TierHot, 0.023)
	t.Set(model.ProviderLocal, model.TierWarm, 0.0125)
	t.Set(model.ProviderLocal, model.TierCold, 0.004)
	t.Set(model.ProviderLocal, model.TierArchive, 0.00099)

	t.Set(model.ProviderAWS, model.TierHot, 0.023)
	t.Set(model.ProviderAWS, model.TierWarm, 0.0125)
	t.Set(model.ProviderAWS, model.TierCold, 0.004)
	t.Set(model.ProviderAWS, model.TierArchive, 0.00099)

	t.Set(model.ProviderAzure, model.TierHot, 0.018)
	t.Set(model.ProviderAzure, model.TierWarm, 0.01)
	t.Set(model.ProviderAzure, model.TierCold, 0.002)
	t.Set(model.ProviderAzure, model.TierArchive, 0.002)

	t.Set(model.ProviderGCP, model.TierHot, 0.02)
	t.Set(model.ProviderGCP, model.TierWarm, 0.01)
	t.Set(model.ProviderGCP, model.TierCold, 0.004)
	t.Set(model.ProviderGCP, model.TierArchive, 0.0012)

	return t
}

// DefaultPriceSheets returns the storage class catalogs for the three
// public cloud providers. Azure has no class between its cool and
// archive tiers, so archive serves both COLD and ARCHIVE placements.
func DefaultPriceSheets(asOf time.Time) []model.CloudPriceSheet {
	return []model.CloudPriceSheet{
		{
			Provider: model.ProviderAWS,
			AsOf:     asOf,
			Entries: []model.PriceEntry{
				{TierName: "standard", ServesTier: model.TierHot, PricePerGBMonth: 0.023, RetrievalTime: model.RetrievalInstant, MinimumDays: 0},
				{TierName: "intelligent-tiering", ServesTier: model.TierWarm, PricePerGBMonth: 0.0125, RetrievalTime: model.RetrievalInstant, MinimumDays: 30},
				{TierName: "glacier-instant", ServesTier: model.TierCold, PricePerGBMonth: 0.004, RetrievalTime: model.RetrievalHours, MinimumDays: 90},
				{TierName: "glacier-deep", ServesTier: model.TierArchive, PricePerGBMonth: 0.00099, RetrievalTime: model.RetrievalDays, MinimumDays: 180},
			},
		},
		{
			Provider: model.ProviderAzure,
			AsOf:     asOf,
			Entries: []model.PriceEntry{
				{TierName: "hot", ServesTier: model.TierHot, PricePerGBMonth: 0.018, RetrievalTime: model.RetrievalInstant, MinimumDays: 0},
				{TierName: "cool", ServesTier: model.TierWarm, PricePerGBMonth: 0.01, RetrievalTime: model.RetrievalInstant, MinimumDays: 30},
				{TierName: "archive", ServesTier: model.TierCold, PricePerGBMonth: 0.002, RetrievalTime: model.RetrievalHalfDay, MinimumDays: 180},
				{TierName: "archive", ServesTier: model.TierArchive, PricePerGBMonth: 0.002, RetrievalTime: model.RetrievalHalfDay, MinimumDays: 180},
			},
		},
		{
			Provider: model.ProviderGCP,
			AsOf:     asOf,
			Entries: []model.PriceEntry{
				{TierName: "standard", ServesTier: model.TierHot, PricePerGBMonth: 0.02, RetrievalTime: model.RetrievalInstant, MinimumDays: 0},
				{TierName: "nearline", ServesTier: model.TierWarm, PricePerGBMonth: 0.01, RetrievalTime: model.RetrievalInstant, MinimumDays: 30},
				{TierName: "coldline", ServesTier: model.TierCold, PricePerGBMonth: 0.004, RetrievalTime: model.RetrievalInstant, MinimumDays: 90},
				{TierName: "archive", ServesTier: model.TierArchive, PricePerGBMonth: 0.0012, RetrievalTime: model.RetrievalInstant, MinimumDays: 365},
			},
		},
	}
}
