package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "github.com/printforge/slicerd/internal/errors"
)

// Checker probes one dependency's health.
type Checker interface {
	CheckHealth(ctx context.Context) error
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) CheckHealth(ctx context.Context) error { return f(ctx) }

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthManager aggregates registered health checkers.
//
// A failing critical checker makes the whole service unhealthy (503). A
// failing soft checker only degrades status: the service still answers,
// it just cannot do everything (a missing engine binary, say, blocks
// slicing but not profile management).
type HealthManager struct {
	version  string
	critical map[string]Checker
	soft     map[string]Checker
}

// NewHealthManager returns an empty manager reporting the given version.
func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		version:  version,
		critical: make(map[string]Checker),
		soft:     make(map[string]Checker),
	}
}

// RegisterChecker adds a critical checker.
func (m *HealthManager) RegisterChecker(name string, c Checker) {
	m.critical[name] = c
}

// RegisterSoftChecker adds a degrading, non-fatal checker.
func (m *HealthManager) RegisterSoftChecker(name string, c Checker) {
	m.soft[name] = c
}

// HealthHandler serves the aggregate health report.
func (m *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks := make(map[string]string, len(m.critical)+len(m.soft))

	unhealthy := false
	for name, c := range m.critical {
		if err := c.CheckHealth(ctx); err != nil {
			checks[name] = err.Error()
			unhealthy = true
		} else {
			checks[name] = "healthy"
		}
	}

	degraded := false
	for name, c := range m.soft {
		if err := c.CheckHealth(ctx); err != nil {
			checks[name] = err.Error()
			degraded = true
		} else {
			checks[name] = "healthy"
		}
	}

	if unhealthy {
		details := make(map[string]any, len(checks))
		for name, status := range checks {
			details[name] = status
		}
		apperrors.WriteError(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
			"one or more health checks failed", details)
		return
	}

	status := "ok"
	if degraded {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  status,
		Version: m.version,
		Checks:  checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
