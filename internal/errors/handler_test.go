package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(includeStack bool) *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), includeStack)
}

func TestHandleError_NilError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/forecast", nil)

	newTestHandler(false).HandleError(rec, req, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandleError_APIError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/forecast", nil)

	newTestHandler(false).HandleError(rec, req, ErrNoPipelineRun)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, TypeNotFound, problem["type"])
	assert.Equal(t, "NO_PIPELINE_RUN", problem["error_code"])
	assert.Equal(t, "/api/forecast", problem["instance"])
}

func TestHandleError_GenericError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/pipeline/run", nil)

	newTestHandler(false).HandleError(rec, req, fmt.Errorf("disk full"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, TypeInternal, problem["type"])
	// Internal errors must not leak their message to clients.
	assert.NotContains(t, rec.Body.String(), "disk full")
}

func TestHandleError_ContextCancelled(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/revenue", nil)

	newTestHandler(false).HandleError(rec, req, context.DeadlineExceeded)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestHandleError_WrappedAPIError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/anomalies", nil)

	wrapped := fmt.Errorf("detect stage: %w", ErrPipelineFailed)
	newTestHandler(false).HandleError(rec, req, wrapped)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "PIPELINE_FAILED", problem["error_code"])
}

func TestHandleError_IncludesStack(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/forecast", nil)

	newTestHandler(true).HandleError(rec, req, ErrInternalServer)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Contains(t, problem, "stack")
}
