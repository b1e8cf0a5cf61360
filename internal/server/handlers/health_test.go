package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/printforge/slicerd/internal/errors"
)

func healthRequest(t *testing.T, m *HealthManager) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	m.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	return rec
}

func TestHealthHandler_AllHealthy(t *testing.T) {
	m := NewHealthManager("1.2.3")
	m.RegisterChecker("store", CheckerFunc(func(ctx context.Context) error { return nil }))
	m.RegisterSoftChecker("engine", CheckerFunc(func(ctx context.Context) error { return nil }))

	rec := healthRequest(t, m)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, "healthy", resp.Checks["store"])
	assert.Equal(t, "healthy", resp.Checks["engine"])
}

func TestHealthHandler_SoftFailureDegrades(t *testing.T) {
	m := NewHealthManager("dev")
	m.RegisterChecker("store", CheckerFunc(func(ctx context.Context) error { return nil }))
	m.RegisterSoftChecker("engine", CheckerFunc(func(ctx context.Context) error {
		return errors.New("engine binary not found")
	}))

	rec := healthRequest(t, m)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "engine binary not found", resp.Checks["engine"])
}

func TestHealthHandler_CriticalFailureIsUnavailable(t *testing.T) {
	m := NewHealthManager("dev")
	m.RegisterChecker("store", CheckerFunc(func(ctx context.Context) error {
		return errors.New("profiles dir not writable")
	}))

	rec := healthRequest(t, m)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp apperrors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)
	assert.Equal(t, "profiles dir not writable", resp.Error.Details["store"])
}

func TestHealthHandler_NoCheckersIsOK(t *testing.T) {
	rec := healthRequest(t, NewHealthManager("dev"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}
