// Package alerts tracks raised alerts through their lifecycle. An alert
// is never deleted: a newer alert for the same drive and condition
// supersedes it, and acknowledgment is the only mutation callers can
// apply.
package alerts

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guardiandrive/guardiand/internal/errors"
	"github.com/guardiandrive/guardiand/internal/model"
)

// conditionKey identifies one alertable condition on one drive.
type conditionKey struct {
	driveID   string
	condition string
}

// Manager holds the alert set. Safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	alerts map[string]*model.Alert

	// current maps each condition to its governing alert id.
	current map[conditionKey]string
}

// NewManager creates an empty alert manager.
func NewManager() *Manager {
	return &Manager{
		alerts:  make(map[string]*model.Alert),
		current: make(map[conditionKey]string),
	}
}

// Raise records the described alert. When the condition's governing
// alert is still active at the same severity, no new alert is created
// and the existing one is returned; otherwise the prior alert is marked
// superseded and a fresh one takes over. The second return reports
// whether a new alert was stored.
func (m *Manager) Raise(driveID string, severity model.Severity, condition, message, action string, now time.Time) (model.Alert, bool) {
	key := conditionKey{driveID: driveID, condition: condition}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prevID, ok := m.current[key]; ok {
		prev := m.alerts[prevID]
		if prev.Active() && prev.Severity == severity {
			return *prev, false
		}
	}

	a := &model.Alert{
		ID:                uuid.NewString(),
		DriveID:           driveID,
		Severity:          severity,
		ConditionKey:      condition,
		Message:           message,
		RecommendedAction: action,
		CreatedAt:         now,
	}
	if prevID, ok := m.current[key]; ok {
		if prev := m.alerts[prevID]; prev.SupersededBy == "" {
			prev.SupersededBy = a.ID
		}
	}
	m.alerts[a.ID] = a
	m.current[key] = a.ID
	return *a, true
}

// Acknowledge marks an alert acknowledged. Acknowledging twice is a
// no-op, not an error.
func (m *Manager) Acknowledge(id string) (model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.alerts[id]
	if !ok {
		return model.Alert{}, fmt.Errorf("alert %s: %w", id, errors.ErrAlertNotFound)
	}
	a.Acknowledged = true
	return *a, nil
}

// Get returns one alert by id.
func (m *Manager) Get(id string) (model.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.alerts[id]
	if !ok {
		return model.Alert{}, fmt.Errorf("alert %s: %w", id, errors.ErrAlertNotFound)
	}
	return *a, nil
}

// List returns every alert, newest first, ties broken by id.
func (m *Manager) List() []model.Alert {
	m.mu.RLock()
	out := make([]model.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		out = append(out, *a)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Active returns the alerts that are neither acknowledged nor
// superseded, newest first.
func (m *Manager) Active() []model.Alert {
	all := m.List()
	out := all[:0]
	for _, a := range all {
		if a.Active() {
			out = append(out, a)
		}
	}
	return out
}

// Summary tallies the current alert set: superseded alerts are history
// and do not count, and the severity counts cover only alerts still
// needing attention.
func (m *Manager) Summary() model.AlertSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s model.AlertSummary
	for _, a := range m.alerts {
		if a.SupersededBy != "" {
			continue
		}
		s.Total++
		if a.Acknowledged {
			continue
		}
		s.Unacknowledged++
		switch a.Severity {
		case model.SeverityCritical:
			s.Critical++
		case model.SeverityHigh:
			s.High++
		}
	}
	return s
}

// Seed loads persisted alerts, replacing the current set. The governing
// alert per condition is the newest non-superseded one.
func (m *Manager) Seed(alerts []model.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.alerts = make(map[string]*model.Alert, len(alerts))
	m.current = make(map[conditionKey]string)
	for i := range alerts {
		a := alerts[i]
		m.alerts[a.ID] = &a
		if a.SupersededBy != "" {
			continue
		}
		key := conditionKey{driveID: a.DriveID, condition: a.ConditionKey}
		if curID, ok := m.current[key]; !ok || a.CreatedAt.After(m.alerts[curID].CreatedAt) {
			m.current[key] = a.ID
		}
	}
}
