package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewNotFoundError("listing not found")
		assert.Equal(t, "NOT_FOUND: listing not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := WrapInternal(context.Background(), cause, "fetch failed")
		assert.Equal(t, "INTERNAL_ERROR: fetch failed: connection refused", err.Error())
		assert.ErrorIs(t, err, cause)
	})
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"bad request", NewBadRequestError("bad"), CodeBadRequest, http.StatusBadRequest},
		{"not found", NewNotFoundError("missing"), CodeNotFound, http.StatusNotFound},
		{"method not allowed", NewMethodNotAllowedError("nope"), CodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{"service unavailable", NewServiceUnavailableError("down"), CodeServiceUnavailable, http.StatusServiceUnavailable},
		{"external service", NewExternalServiceError("upstream"), CodeExternalService, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
		})
	}
}

func TestRespondWithError_AppError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	err := NewNotFoundError("no such path").WithDetails(map[string]any{"path": "data/"})
	RespondWithError(rec, req, err)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, CodeNotFound, resp.Error.Code)
	assert.Equal(t, "no such path", resp.Error.Message)
	assert.Equal(t, "data/", resp.Error.Details["path"])
}

func TestRespondWithError_UnknownErrorHidden(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, errors.New("secret database password wrong"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, CodeInternal, resp.Error.Code)
	assert.Equal(t, "internal server error", resp.Error.Message)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestRespondWithError_RequestIDFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(WithRequestID(req.Context(), "req-456"))
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, NewBadRequestError("bad include pattern"))

	var resp HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "req-456", resp.Error.RequestID)
}

func TestRequestIDContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "abc")
		assert.Equal(t, "abc", RequestIDFromContext(ctx))
	})

	t.Run("missing returns empty", func(t *testing.T) {
		assert.Equal(t, "", RequestIDFromContext(context.Background()))
	})
}

func TestWrapInternal_CarriesRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-789")
	appErr := WrapInternal(ctx, errors.New("boom"), "unexpected failure")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	RespondWithError(rec, req, appErr)

	var resp HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "req-789", resp.Error.RequestID)
}
