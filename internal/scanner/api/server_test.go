package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemscan/gemscan-backend/pkg/logging"
	"github.com/gemscan/gemscan-backend/pkg/metrics"
	"github.com/gemscan/gemscan-backend/pkg/reliability"
)

func newTestServer(t *testing.T) (*Server, *reliability.Invoker) {
	t.Helper()

	registry := reliability.NewRegistry(logging.NoopLogger{})
	invoker := reliability.NewInvoker(registry, logging.NoopLogger{})
	collector := metrics.NewCollector("scanner", metrics.WithProcessMetrics(false))

	return NewServer(invoker, logging.NoopLogger{}, collector.Handler()), invoker
}

func seedSource(t *testing.T, invoker *reliability.Invoker, source string, fail bool) {
	t.Helper()
	_, _ = invoker.Invoke(context.Background(), source, "key", func() (any, error) {
		if fail {
			return nil, assert.AnError
		}
		return "value", nil
	})
}

func TestGetStatus(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetSourcesHealth(t *testing.T) {
	server, invoker := newTestServer(t)
	seedSource(t, invoker, "coingecko", false)
	seedSource(t, invoker, "binance", true)

	req := httptest.NewRequest("GET", "/api/health/sources", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload map[string]reliability.SourceHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload, 2)
	assert.Equal(t, "HEALTHY", string(payload["coingecko"].SLA.Status))
	assert.Equal(t, 1, payload["binance"].SLA.ConsecutiveFailures)
}

func TestGetSourceHealth(t *testing.T) {
	server, invoker := newTestServer(t)
	seedSource(t, invoker, "coingecko", false)

	t.Run("known source", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/health/sources/coingecko", nil)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var payload reliability.SourceHealth
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "CLOSED", string(payload.BreakerState))
	})

	t.Run("unknown source", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/health/sources/nonexistent", nil)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "unknown source")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/health/sources", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
