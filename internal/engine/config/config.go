package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/guardiandrive/guardiand/internal/model"
)

// Config is the complete tuning configuration for the decision engine.
// Zero values are not usable; start from DefaultConfig and override.
type Config struct {
	// Health configures the drive health scorer.
	Health HealthConfig `yaml:"health"`

	// Classify configures the access pattern classifier.
	Classify ClassifyConfig `yaml:"classify"`

	// Tiering configures the tiering planner and fleet strategies.
	Tiering TieringConfig `yaml:"tiering"`

	// Compression configures the compression advisor.
	Compression CompressionConfig `yaml:"compression"`

	// Arbitrage configures the cloud cost comparison.
	Arbitrage ArbitrageConfig `yaml:"arbitrage"`

	// Executor configures the planning worker pool.
	Executor ExecutorConfig `yaml:"executor"`

	// Percentile configures DDSketch percentile calculation.
	Percentile PercentileConfig `yaml:"percentile"`
}

// HealthConfig configures the drive health scorer.
type HealthConfig struct {
	// Weights assigns penalty points to each SMART indicator.
	// Points are deducted from 100 as a factor saturates.
	Weights HealthWeights `yaml:"weights"`

	// Ceilings define the raw value at which each factor saturates.
	Ceilings HealthCeilings `yaml:"ceilings"`

	// SafeTemperatureC is the temperature where the penalty begins.
	SafeTemperatureC float64 `yaml:"safe_temperature_c"`

	// Risk maps score boundaries to risk levels.
	Risk RiskSteps `yaml:"risk"`

	// FailureWindow bounds the predicted-failure estimate in days.
	FailureWindow FailureWindow `yaml:"failure_window"`

	// Confidence configures the scoring confidence estimate.
	Confidence ConfidenceConfig `yaml:"confidence"`
}

// HealthWeights assigns penalty points per SMART indicator.
// The weights must sum to 100.
type HealthWeights struct {
	Reallocated  float64 `yaml:"reallocated"`
	Pending      float64 `yaml:"pending"`
	UDMACRC      float64 `yaml:"udma_crc"`
	Temperature  float64 `yaml:"temperature"`
	ReadErrors   float64 `yaml:"read_errors"`
	SeekErrors   float64 `yaml:"seek_errors"`
	PowerOnHours float64 `yaml:"power_on_hours"`
	SpinRetries  float64 `yaml:"spin_retries"`
}

// Sum returns the total of all weights.
func (w HealthWeights) Sum() float64 {
	return w.Reallocated + w.Pending + w.UDMACRC + w.Temperature +
		w.ReadErrors + w.SeekErrors + w.PowerOnHours + w.SpinRetries
}

// HealthCeilings define the raw value at which each factor reaches its
// full penalty. Raw values are divided by the ceiling and capped at 1.
type HealthCeilings struct {
	// Reallocated sector count at full penalty.
	Reallocated float64 `yaml:"reallocated"`

	// Pending sector count at full penalty.
	Pending float64 `yaml:"pending"`

	// UDMACRC error count at full penalty.
	UDMACRC float64 `yaml:"udma_crc"`

	// TemperatureExcessC degrees above safe at full penalty.
	TemperatureExcessC float64 `yaml:"temperature_excess_c"`

	// ReadErrors rate at full penalty.
	ReadErrors float64 `yaml:"read_errors"`

	// SeekErrors rate at full penalty.
	SeekErrors float64 `yaml:"seek_errors"`

	// PowerOnHours at full penalty.
	PowerOnHours float64 `yaml:"power_on_hours"`

	// SpinRetries count at full penalty.
	SpinRetries float64 `yaml:"spin_retries"`
}

// RiskSteps maps health score boundaries to risk levels. A score at or
// above Low is LOW risk, at or above Medium is MEDIUM, at or above High
// is HIGH, and anything below High is CRITICAL.
type RiskSteps struct {
	Low    float64 `yaml:"low"`
	Medium float64 `yaml:"medium"`
	High   float64 `yaml:"high"`
}

// FailureWindow bounds predicted days-to-failure for drives scoring
// below the HIGH boundary.
type FailureWindow struct {
	// MinDays is predicted at score 0.
	MinDays int `yaml:"min_days"`

	// MaxDays is predicted just under the HIGH boundary.
	MaxDays int `yaml:"max_days"`
}

// ConfidenceConfig configures the scoring confidence estimate.
type ConfidenceConfig struct {
	// Base confidence with no contributing factors.
	Base float64 `yaml:"base"`

	// PerFactor is added for each distinct non-zero factor.
	PerFactor float64 `yaml:"per_factor"`
}

// ClassifyConfig configures the access pattern classifier.
type ClassifyConfig struct {
	// HalfLifeDays controls the exponential recency decay.
	HalfLifeDays float64 `yaml:"half_life_days"`

	// RateCapPerDay is the access rate that saturates the frequency score.
	RateCapPerDay float64 `yaml:"rate_cap_per_day"`

	// SizeCeilingGB is the file size that saturates the size score.
	SizeCeilingGB float64 `yaml:"size_ceiling_gb"`

	// Weights blend recency, frequency and size into the tier score.
	Weights ClassifyWeights `yaml:"weights"`

	// Cutoffs partition the tier score into tiers.
	Cutoffs TierCutoffs `yaml:"cutoffs"`

	// ConfidenceFloor is the minimum reported confidence.
	ConfidenceFloor float64 `yaml:"confidence_floor"`
}

// ClassifyWeights blend the classifier features. Must sum to 1.
type ClassifyWeights struct {
	Recency   float64 `yaml:"recency"`
	Frequency float64 `yaml:"frequency"`
	Size      float64 `yaml:"size"`
}

// Sum returns the total of all weights.
func (w ClassifyWeights) Sum() float64 {
	return w.Recency + w.Frequency + w.Size
}

// TierCutoffs partition the [0,1] tier score. A score above Hot maps to
// HOT, above Warm to WARM, above Cold to COLD, anything else to ARCHIVE.
type TierCutoffs struct {
	Hot  float64 `yaml:"hot"`
	Warm float64 `yaml:"warm"`
	Cold float64 `yaml:"cold"`
}

// TieringConfig configures the tiering planner and fleet strategies.
type TieringConfig struct {
	// Provider selects the cost table rows used for savings estimates.
	Provider model.Provider `yaml:"provider"`

	// Freshness discounts plan confidence as the cost table ages.
	Freshness FreshnessConfig `yaml:"freshness"`

	// RiskTolerance adjusts strategy scoring weights:
	// conservative, balanced or aggressive.
	RiskTolerance string `yaml:"risk_tolerance"`

	// Strategies are the fleet-level strategy profiles to evaluate.
	Strategies []StrategyProfile `yaml:"strategies"`

	// AgeThresholds drive the default lifecycle transition rules.
	AgeThresholds AgeThresholds `yaml:"age_thresholds"`
}

// FreshnessConfig discounts plan confidence as pricing data ages.
type FreshnessConfig struct {
	// FreshDays is the age below which no discount applies.
	FreshDays int `yaml:"fresh_days"`

	// StaleDays is the age at which the discount bottoms out.
	StaleDays int `yaml:"stale_days"`

	// Floor is the minimum freshness multiplier.
	Floor float64 `yaml:"floor"`
}

// StrategyProfile describes one fleet-level tiering strategy.
type StrategyProfile struct {
	// Name identifies the strategy.
	Name string `yaml:"name"`

	// Description is shown alongside the strategy.
	Description string `yaml:"description"`

	// CostMultiplier scales the corpus storage cost.
	CostMultiplier float64 `yaml:"cost_multiplier"`

	// RiskReduction is the fraction of data-loss risk removed (0-1).
	RiskReduction float64 `yaml:"risk_reduction"`

	// LatencyPenalty is the normalized access latency cost (0-1).
	LatencyPenalty float64 `yaml:"latency_penalty"`

	// ReplicationFactor is the number of copies kept.
	ReplicationFactor int `yaml:"replication_factor"`

	// CloudTier is the access tier the strategy lands data on.
	CloudTier model.Tier `yaml:"cloud_tier"`

	// CompressionLevel is the compression profile applied.
	CompressionLevel string `yaml:"compression_level"`
}

// AgeThresholds drive the default lifecycle transition rules. Values
// are days since last access and must be strictly increasing.
type AgeThresholds struct {
	IntelligentTieringDays int `yaml:"intelligent_tiering_days"`
	GlacierIRDays          int `yaml:"glacier_ir_days"`
	DeepArchiveDays        int `yaml:"deep_archive_days"`
}

// CompressionConfig configures the compression advisor.
type CompressionConfig struct {
	// MinSizeBytes is the floor below which files are skipped.
	MinSizeBytes int64 `yaml:"min_size_bytes"`

	// MinROI is the return ratio required to recommend compression.
	MinROI float64 `yaml:"min_roi"`

	// MaxDuration is the longest acceptable compression run.
	MaxDuration time.Duration `yaml:"max_duration"`

	// StorageCostPerGBMonth prices recovered space.
	StorageCostPerGBMonth float64 `yaml:"storage_cost_per_gb_month"`

	// ComputeCostPerHour prices compression CPU time.
	ComputeCostPerHour float64 `yaml:"compute_cost_per_hour"`
}

// ArbitrageConfig configures the cloud cost comparison.
type ArbitrageConfig struct {
	// MaxRetrieval is the slowest retrieval time acceptable for the
	// recommended option.
	MaxRetrieval model.RetrievalTime `yaml:"max_retrieval"`
}

// ExecutorConfig configures the planning worker pool.
type ExecutorConfig struct {
	// Workers is the number of parallel evaluation workers.
	// Zero selects GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// PercentileConfig configures DDSketch percentile calculation.
type PercentileConfig struct {
	// Enabled enables percentile calculation.
	Enabled bool `yaml:"enabled"`

	// Accuracy is the relative accuracy (0.01 = 1% error).
	Accuracy float64 `yaml:"accuracy"`
}

// Load loads engine configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a configuration with sensible defaults.
// Every value can be overridden from YAML; the defaults validate cleanly.
func DefaultConfig() *Config {
	return &Config{
		Health: HealthConfig{
			Weights: HealthWeights{
				Reallocated:  35,
				Pending:      25,
				UDMACRC:      10,
				Temperature:  10,
				ReadErrors:   10,
				SeekErrors:   5,
				PowerOnHours: 5,
				SpinRetries:  0,
			},
			Ceilings: HealthCeilings{
				Reallocated:        25,
				Pending:            20,
				UDMACRC:            5,
				TemperatureExcessC: 25,
				ReadErrors:         300,
				SeekErrors:         300,
				PowerOnHours:       30000,
				SpinRetries:        10,
			},
			SafeTemperatureC: 45,
			Risk: RiskSteps{
				Low:    80,
				Medium: 60,
				High:   40,
			},
			FailureWindow: FailureWindow{
				MinDays: 5,
				MaxDays: 45,
			},
			Confidence: ConfidenceConfig{
				Base:      0.5,
				PerFactor: 0.1,
			},
		},
		Classify: ClassifyConfig{
			HalfLifeDays:  30,
			RateCapPerDay: 10,
			SizeCeilingGB: 10,
			Weights: ClassifyWeights{
				Recency:   0.45,
				Frequency: 0.40,
				Size:      0.15,
			},
			Cutoffs: TierCutoffs{
				Hot:  0.70,
				Warm: 0.40,
				Cold: 0.15,
			},
			ConfidenceFloor: 0.5,
		},
		Tiering: TieringConfig{
			Provider: model.ProviderLocal,
			Freshness: FreshnessConfig{
				FreshDays: 7,
				StaleDays: 60,
				Floor:     0.5,
			},
			RiskTolerance: "balanced",
			Strategies:    DefaultStrategyProfiles(),
			AgeThresholds: AgeThresholds{
				IntelligentTieringDays: 30,
				GlacierIRDays:          90,
				DeepArchiveDays:        365,
			},
		},
		Compression: CompressionConfig{
			MinSizeBytes:          10 * 1024 * 1024, // 10MB
			MinROI:                1.5,
			MaxDuration:           30 * time.Minute,
			StorageCostPerGBMonth: 0.023,
			ComputeCostPerHour:    2.0,
		},
		Arbitrage: ArbitrageConfig{
			MaxRetrieval: model.RetrievalDays,
		},
		Executor: ExecutorConfig{
			Workers: 0, // GOMAXPROCS
		},
		Percentile: PercentileConfig{
			Enabled:  true,
			Accuracy: 0.01,
		},
	}
}
