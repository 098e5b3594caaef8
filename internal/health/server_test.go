package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	h := NewHandler(Config{ServiceName: "flat-stake", Version: "1.0.0", Commit: "abc123"})

	rec := get(t, newRouter(h), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "flat-stake", body.Service)
	assert.Equal(t, "1.0.0", body.Version)
	assert.NotEmpty(t, body.Timestamp)
}

func TestLiveEndpoint(t *testing.T) {
	rec := get(t, newRouter(NewHandler(Config{ServiceName: "flat-stake"})), "/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestReadyEndpoint(t *testing.T) {
	failing := false
	h := NewHandler(Config{
		ServiceName: "flat-stake",
		Checks: []Checker{CheckFunc{CheckName: "allocator", Fn: func(ctx context.Context) error {
			if failing {
				return errors.New("allocator self-check failed")
			}
			return nil
		}}},
	})
	router := newRouter(h)

	rec := get(t, router, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h.SetReady(true)
	rec = get(t, router, "/ready")
	require.Equal(t, http.StatusOK, rec.Code)

	var body ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Checks["allocator"])

	failing = true
	rec = get(t, router, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Contains(t, body.Checks["allocator"], "self-check failed")
}
