// Package engine aggregates the decision components behind one facade.
//
// Service owns the component engines, the current input snapshot, and a
// fingerprint-keyed result cache: identical snapshots never recompute,
// and concurrent requests for the same snapshot share one evaluation
// through singleflight. All computation is pure over the snapshot; the
// caller layer owns I/O and the wall clock enters only through the
// injected time source.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/singleflight"

	"github.com/guardiandrive/guardiand/internal/alerts"
	"github.com/guardiandrive/guardiand/internal/engine/arbitrage"
	"github.com/guardiandrive/guardiand/internal/engine/classify"
	"github.com/guardiandrive/guardiand/internal/engine/compress"
	"github.com/guardiandrive/guardiand/internal/engine/config"
	"github.com/guardiandrive/guardiand/internal/engine/health"
	"github.com/guardiandrive/guardiand/internal/engine/tiering"
	"github.com/guardiandrive/guardiand/internal/errors"
	"github.com/guardiandrive/guardiand/internal/model"
)

// Service is the orchestration facade and the only component the caller
// layer touches.
type Service struct {
	cfg config.Config

	scorer  *health.Scorer
	planner *tiering.Planner
	advisor *compress.Advisor
	arb     *arbitrage.Engine
	alerts  *alerts.Manager

	clock func() time.Time

	mu   sync.RWMutex
	in   Inputs
	hash uint64
	last *sweepResult

	flight singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source. Tests pin it; the daemon leaves
// the default.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithAlertManager shares an externally constructed alert manager, so
// the daemon can seed persisted alerts before the first sweep.
func WithAlertManager(m *alerts.Manager) Option {
	return func(s *Service) { s.alerts = m }
}

// NewService builds the facade and every component engine from one
// configuration. A nil config means defaults.
func NewService(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scorer, err := health.New(cfg.Health)
	if err != nil {
		return nil, err
	}
	cls, err := classify.New(cfg.Classify)
	if err != nil {
		return nil, err
	}
	planner, err := tiering.New(cfg.Tiering, cfg.Executor, cls)
	if err != nil {
		return nil, err
	}
	advisor, err := compress.New(cfg.Compression)
	if err != nil {
		return nil, err
	}
	arb, err := arbitrage.New(cfg.Arbitrage)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:     *cfg,
		scorer:  scorer,
		planner: planner,
		advisor: advisor,
		arb:     arb,
		alerts:  alerts.NewManager(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SetInputs replaces the snapshot atomically and returns its
// fingerprint. The previous cached result stays until a reader needs
// the new snapshot; the fingerprint mismatch then forces one recompute.
func (s *Service) SetInputs(in Inputs) uint64 {
	h := in.Fingerprint()
	s.mu.Lock()
	s.in = in
	s.hash = h
	s.mu.Unlock()
	return h
}

// SnapshotHash returns the current snapshot's fingerprint.
func (s *Service) SnapshotHash() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hash
}

// GetSummary returns the dashboard summary for the current snapshot.
// Alert tallies are read through the live manager so acknowledgments
// show up without a recompute.
func (s *Service) GetSummary(ctx context.Context) (model.DashboardSummary, error) {
	res, err := s.current(ctx)
	if err != nil {
		return model.DashboardSummary{}, err
	}
	summary := res.summary
	summary.Alerts = s.alerts.Summary()
	return summary, nil
}

// GetTieringPlan returns the full planning result for the current
// snapshot.
func (s *Service) GetTieringPlan(ctx context.Context) (model.TieringPlanResult, error) {
	res, err := s.current(ctx)
	if err != nil {
		return model.TieringPlanResult{}, err
	}
	return res.plan, nil
}

// GetCompressionPlan returns per-file compression verdicts for the
// current snapshot, sorted by file id.
func (s *Service) GetCompressionPlan(ctx context.Context) ([]model.CompressionRecommendation, error) {
	res, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return res.compression, nil
}

// GetCloudOptions compares providers for the current corpus under the
// caller's retrieval tolerance. The corpus size and current spend come
// from the same sweep the other getters expose.
func (s *Service) GetCloudOptions(ctx context.Context, maxRetrieval model.RetrievalTime) ([]model.CloudOption, error) {
	res, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return s.arb.Compare(res.corpusGB, res.spend, res.in.Sheets, maxRetrieval)
}

// GetDriveHealth returns one drive's health from the current sweep.
func (s *Service) GetDriveHealth(ctx context.Context, driveID string) (model.DriveHealth, error) {
	res, err := s.current(ctx)
	if err != nil {
		return model.DriveHealth{}, err
	}
	h, ok := res.healthByID[driveID]
	if !ok {
		return model.DriveHealth{}, fmt.Errorf("drive %s: %w", driveID, errors.ErrDriveNotFound)
	}
	return h, nil
}

// Lifecycle renders the age-tiering lifecycle document from the
// configured thresholds.
func (s *Service) Lifecycle() (s3types.BucketLifecycleConfiguration, error) {
	return s.arb.Lifecycle(arbitrage.DefaultRules(s.cfg.Tiering.AgeThresholds))
}

// AcknowledgeAlert marks an alert acknowledged. Unknown ids report
// not-found; repeats are no-ops.
func (s *Service) AcknowledgeAlert(id string) (model.Alert, error) {
	return s.alerts.Acknowledge(id)
}

// Alerts returns the full alert history, newest first.
func (s *Service) Alerts() []model.Alert {
	return s.alerts.List()
}

// Sweep evaluates the current snapshot (or reuses the cached result
// when the fingerprint is unchanged) and reports run metadata for
// history persistence. Two reports with the same SnapshotHash describe
// the same evaluation.
func (s *Service) Sweep(ctx context.Context) (RunReport, error) {
	res, err := s.current(ctx)
	if err != nil {
		return RunReport{}, err
	}
	return RunReport{
		SnapshotHash:    res.hash,
		StartedAt:       res.startedAt,
		Duration:        res.duration,
		Drives:          len(res.in.Drives),
		Files:           len(res.in.Files),
		Recommendations: res.plan.Summary.Total,
		Failures:        len(res.summary.Failures),
		RaisedAlerts:    res.raised,
	}, nil
}

// RunReport describes one completed sweep.
type RunReport struct {
	SnapshotHash    uint64        `json:"snapshot_hash"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
	Drives          int           `json:"drives"`
	Files           int           `json:"files"`
	Recommendations int           `json:"recommendations"`
	Failures        int           `json:"failures"`

	// RaisedAlerts lists alerts newly raised by this sweep.
	RaisedAlerts []model.Alert `json:"raised_alerts,omitempty"`
}

// current returns the sweep result for the live snapshot, recomputing
// through singleflight only when the fingerprint changed.
func (s *Service) current(ctx context.Context) (*sweepResult, error) {
	s.mu.RLock()
	in, hash, last := s.in, s.hash, s.last
	s.mu.RUnlock()

	if last != nil && last.hash == hash {
		return last, nil
	}

	v, err, _ := s.flight.Do(strconv.FormatUint(hash, 16), func() (interface{}, error) {
		// Recheck after winning the flight: a caller that lost an
		// earlier race may arrive here with the result already
		// published.
		s.mu.RLock()
		cached := s.last
		s.mu.RUnlock()
		if cached != nil && cached.hash == hash {
			return cached, nil
		}

		res, err := s.runSweep(ctx, in, hash)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.hash == hash {
			s.last = res
		}
		s.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*sweepResult), nil
}
