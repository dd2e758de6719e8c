// Package handlers implements the HTTP handlers for the nimbusview server:
// the HTML browse page, the JSON API, health probes, and version info.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/3leaps/nimbusview/internal/errors"
)

// Health check result statuses.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusTimeout   = "timeout"
	statusUnhealthy = "unhealthy"
)

// checkTimeout bounds a single health check.
const checkTimeout = 2 * time.Second

// ErrDegraded marks a check result as degraded rather than unhealthy.
// A degraded component still serves; the pending listing snapshot is the
// canonical case. Checkers return it (or a wrap of it) to avoid failing
// the whole probe.
var ErrDegraded = errors.New("degraded")

// HealthChecker reports the health of one component. A nil return means
// healthy; ErrDegraded means degraded; any other error means unhealthy.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// HealthCheckerFunc adapts a function to the HealthChecker interface.
type HealthCheckerFunc func(ctx context.Context) error

// CheckHealth calls f.
func (f HealthCheckerFunc) CheckHealth(ctx context.Context) error {
	return f(ctx)
}

// HealthResponse is the JSON body of a passing health probe.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthManager runs registered checkers and aggregates their results.
type HealthManager struct {
	version string

	mu          sync.RWMutex
	checkers    map[string]HealthChecker
	startupGate func() error
}

// NewHealthManager creates a manager with no registered checkers.
func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		version:  version,
		checkers: make(map[string]HealthChecker),
	}
}

// RegisterChecker adds a named component check. Re-registering a name
// replaces the previous checker.
func (m *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers[name] = checker
}

// SetStartupGate installs the function consulted by the startup probe.
// A nil gate (the default) reports started.
func (m *HealthManager) SetStartupGate(gate func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupGate = gate
}

// runChecks executes every registered checker and maps each to a result
// status.
func (m *HealthManager) runChecks(ctx context.Context) map[string]string {
	m.mu.RLock()
	checkers := make(map[string]HealthChecker, len(m.checkers))
	for name, c := range m.checkers {
		checkers[name] = c
	}
	m.mu.RUnlock()

	results := make(map[string]string, len(checkers))
	for name, checker := range checkers {
		results[name] = runCheck(ctx, checker)
	}
	return results
}

func runCheck(ctx context.Context, checker HealthChecker) string {
	cctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- checker.CheckHealth(cctx) }()

	select {
	case err := <-done:
		switch {
		case err == nil:
			return statusHealthy
		case errors.Is(err, ErrDegraded):
			return statusDegraded
		case errors.Is(err, context.DeadlineExceeded):
			return statusTimeout
		default:
			return statusUnhealthy
		}
	case <-cctx.Done():
		return statusTimeout
	}
}

// determineOverallStatus aggregates check results. Any unhealthy check
// fails the probe; timeouts and degraded checks downgrade it without
// failing, since the server still serves in those states.
func (m *HealthManager) determineOverallStatus(results map[string]string) string {
	overall := statusHealthy
	for _, status := range results {
		switch status {
		case statusUnhealthy:
			return statusUnhealthy
		case statusTimeout, statusDegraded:
			overall = statusDegraded
		}
	}
	return overall
}

// HealthHandler serves the aggregate health probe.
func (m *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	results := m.runChecks(r.Context())
	overall := m.determineOverallStatus(results)

	if overall == statusUnhealthy {
		err := apperrors.NewServiceUnavailableError("one or more health checks failed").
			WithDetails(map[string]any{"checks": results})
		respondWithError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  overall,
		Version: m.version,
		Checks:  results,
	})
}

// LivenessHandler reports process liveness. It never runs checkers: a
// responding process is alive.
func (m *HealthManager) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "alive", Version: m.version})
}

// ReadinessHandler reports whether the server should receive traffic.
// Degraded components (a snapshot still loading, a timed-out check) do
// not withhold traffic; the view renders its loading or empty state.
func (m *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	results := m.runChecks(r.Context())
	overall := m.determineOverallStatus(results)

	if overall == statusUnhealthy {
		err := apperrors.NewServiceUnavailableError("service is not ready").
			WithDetails(map[string]any{"checks": results})
		respondWithError(w, r, err)
		return
	}

	status := "ready"
	if overall != statusHealthy {
		status = overall
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  status,
		Version: m.version,
		Checks:  results,
	})
}

// StartupHandler reports whether startup completed.
func (m *HealthManager) StartupHandler(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	gate := m.startupGate
	m.mu.RUnlock()

	if gate != nil {
		if err := gate(); err != nil {
			appErr := apperrors.NewServiceUnavailableError("startup incomplete").
				WithDetails(map[string]any{"reason": err.Error()})
			respondWithError(w, r, appErr)
			return
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "started", Version: m.version})
}

// globalHealthManager backs the package-level handlers registered on the
// router.
var globalHealthManager *HealthManager

// InitHealthManager creates and installs the global health manager.
func InitHealthManager(version string) *HealthManager {
	globalHealthManager = NewHealthManager(version)
	return globalHealthManager
}

// GetHealthManager returns the global health manager, or nil before
// InitHealthManager.
func GetHealthManager() *HealthManager {
	return globalHealthManager
}

// HealthHandler serves /health through the global manager.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	m := GetHealthManager()
	if m == nil {
		respondWithError(w, r, apperrors.NewServiceUnavailableError("health system not initialized"))
		return
	}
	m.HealthHandler(w, r)
}

// LivenessHandler serves /health/live through the global manager.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	m := GetHealthManager()
	if m == nil {
		respondWithError(w, r, apperrors.NewServiceUnavailableError("health system not initialized"))
		return
	}
	m.LivenessHandler(w, r)
}

// ReadinessHandler serves /health/ready through the global manager.
func ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	m := GetHealthManager()
	if m == nil {
		respondWithError(w, r, apperrors.NewServiceUnavailableError("health system not initialized"))
		return
	}
	m.ReadinessHandler(w, r)
}

// StartupHandler serves /health/startup through the global manager.
func StartupHandler(w http.ResponseWriter, r *http.Request) {
	m := GetHealthManager()
	if m == nil {
		respondWithError(w, r, apperrors.NewServiceUnavailableError("health system not initialized"))
		return
	}
	m.StartupHandler(w, r)
}
