// Package health aggregates component health checks behind /healthz and
// /readyz endpoints on the admin mux.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status is the reported state of one component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is one component's health at a point in time.
type CheckResult struct {
	Component string        `json:"component"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	Critical  bool          `json:"critical"`
}

// Checker probes one component.
type Checker interface {
	Name() string
	IsCritical() bool
	Check(ctx context.Context) CheckResult
}

// CheckerFunc adapts a plain ping function into a Checker.
type CheckerFunc struct {
	ComponentName string
	Critical      bool
	Probe         func(ctx context.Context) error
}

func (c CheckerFunc) Name() string     { return c.ComponentName }
func (c CheckerFunc) IsCritical() bool { return c.Critical }

func (c CheckerFunc) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{Component: c.ComponentName, Critical: c.Critical, Status: StatusHealthy}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Probe(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	result.Duration = time.Since(start)
	return result
}

// Manager runs registered checkers on demand.
type Manager struct {
	mu       sync.RWMutex
	checkers []Checker
	logger   *zap.Logger
}

// NewManager builds an empty Manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Register adds a checker.
func (m *Manager) Register(c Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, c)
}

// CheckAll probes every registered component. ok is false when any
// critical component is unhealthy.
func (m *Manager) CheckAll(ctx context.Context) (results []CheckResult, ok bool) {
	m.mu.RLock()
	checkers := make([]Checker, len(m.checkers))
	copy(checkers, m.checkers)
	m.mu.RUnlock()

	ok = true
	for _, c := range checkers {
		r := c.Check(ctx)
		if r.Status != StatusHealthy && r.Critical {
			ok = false
			m.logger.Warn("Health check failed",
				zap.String("component", r.Component),
				zap.String("error", r.Error),
			)
		}
		results = append(results, r)
	}
	return results, ok
}

// RegisterRoutes mounts /healthz (liveness, always 200) and /readyz
// (readiness, 503 when a critical dependency is down) on mux.
func (m *Manager) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		results, ok := m.CheckAll(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"ready":  ok,
			"checks": results,
		})
	})
}
