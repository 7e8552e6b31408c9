package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giuliam-97/Stress-Test/internal/services"
	"github.com/giuliam-97/Stress-Test/internal/shared/testutil"
	"github.com/giuliam-97/Stress-Test/pkg/contracts"
)

type fixedCounter int

func (c fixedCounter) Count() int { return int(c) }

func TestHealthHandler_HealthCheck(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewHealthHandler(services.NewHealthService("1.0.0", "2024-02-01", fixedCounter(2), logger), logger)

	rec := httptest.NewRecorder()
	handler.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.0.0", body["version"])

	workbooks := body["services"].(map[string]interface{})["workbooks"].(map[string]interface{})
	assert.Equal(t, "ready", workbooks["status"])
	assert.Equal(t, "2 workbooks loaded", workbooks["message"])
}

func TestHealthHandler_Version(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewHealthHandler(services.NewHealthService("1.0.0", "2024-02-01", nil, logger), logger)

	rec := httptest.NewRecorder()
	handler.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, "2024-02-01", body["build_time"])
	assert.Equal(t, contracts.APIVersion, body["api_version"])
	assert.Contains(t, body, "git_commit")
}
