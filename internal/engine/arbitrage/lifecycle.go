package arbitrage

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/guardiandrive/guardiand/internal/engine/config"
	"github.com/guardiandrive/guardiand/internal/errors"
)

// lifecycleRuleID names the single managed rule in exported policies.
const lifecycleRuleID = "guardiand-age-tiering"

// coldnessRank orders S3 storage classes from warm to cold. Lifecycle
// rules must move strictly down this ranking as age grows.
var coldnessRank = map[s3types.TransitionStorageClass]int{
	s3types.TransitionStorageClassStandardIa:         1,
	s3types.TransitionStorageClassIntelligentTiering: 2,
	s3types.TransitionStorageClassOnezoneIa:          3,
	s3types.TransitionStorageClassGlacierIr:          4,
	s3types.TransitionStorageClassGlacier:            5,
	s3types.TransitionStorageClassDeepArchive:        6,
}

// LifecycleRule moves data to a storage class once it reaches an age.
type LifecycleRule struct {
	AgeDays      int32                          `json:"age_days"`
	StorageClass s3types.TransitionStorageClass `json:"storage_class"`
}

// DefaultRules derives transition rules from the tiering age thresholds.
func DefaultRules(ages config.AgeThresholds) []LifecycleRule {
	return []LifecycleRule{
		{AgeDays: int32(ages.IntelligentTieringDays), StorageClass: s3types.TransitionStorageClassIntelligentTiering},
		{AgeDays: int32(ages.GlacierIRDays), StorageClass: s3types.TransitionStorageClassGlacierIr},
		{AgeDays: int32(ages.DeepArchiveDays), StorageClass: s3types.TransitionStorageClassDeepArchive},
	}
}

// Lifecycle builds an S3 lifecycle configuration from ordered rules.
// Both age and storage-class coldness must strictly increase; a colder
// class at a younger age than a warmer one is a construction error.
// The result is a document for export, no API call is made.
func (e *Engine) Lifecycle(rules []LifecycleRule) (s3types.BucketLifecycleConfiguration, error) {
	if len(rules) == 0 {
		return s3types.BucketLifecycleConfiguration{}, errors.NewConfiguration("lifecycle_rules", "at least one rule is required")
	}

	prevRank := 0
	prevAge := int32(0)
	for i, r := range rules {
		rank, ok := coldnessRank[r.StorageClass]
		if !ok {
			return s3types.BucketLifecycleConfiguration{}, errors.NewConfiguration("lifecycle_rules", fmt.Sprintf("rule %d: unknown storage class %q", i, r.StorageClass))
		}
		if r.AgeDays <= 0 {
			return s3types.BucketLifecycleConfiguration{}, errors.NewConfiguration("lifecycle_rules", fmt.Sprintf("rule %d: age must be positive, got %d", i, r.AgeDays))
		}
		if r.AgeDays <= prevAge || rank <= prevRank {
			return s3types.BucketLifecycleConfiguration{}, fmt.Errorf("rule %d (%s at %dd): %w", i, r.StorageClass, r.AgeDays, errors.ErrLifecycleOrder)
		}
		prevRank = rank
		prevAge = r.AgeDays
	}

	transitions := make([]s3types.Transition, len(rules))
	for i, r := range rules {
		transitions[i] = s3types.Transition{
			Days:         aws.Int32(r.AgeDays),
			StorageClass: r.StorageClass,
		}
	}

	return s3types.BucketLifecycleConfiguration{
		Rules: []s3types.LifecycleRule{
			{
				ID:          aws.String(lifecycleRuleID),
				Status:      s3types.ExpirationStatusEnabled,
				Filter:      &s3types.LifecycleRuleFilter{Prefix: aws.String("")},
				Transitions: transitions,
			},
		},
	}, nil
}
