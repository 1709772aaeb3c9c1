package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Exposition(t *testing.T) {
	m := NewMetrics()

	m.ObserveNormalize(SourceComputed, 128, 2*time.Millisecond)
	m.ObserveNormalize(SourceCache, 128, 0)
	m.ObserveNormalize(SourceCache, 64, 0)
	m.CacheError("set")
	m.ObserveRequest("/normalize", http.StatusOK, 5*time.Millisecond)

	body := scrape(t, m)

	assert.Contains(t, body, `demark_normalize_total{source="computed"} 1`)
	assert.Contains(t, body, `demark_normalize_total{source="cache"} 2`)
	assert.Contains(t, body, `demark_normalize_duration_seconds_count 1`)
	assert.Contains(t, body, `demark_input_bytes_count 3`)
	assert.Contains(t, body, `demark_cache_errors_total{op="set"} 1`)
	assert.Contains(t, body, `demark_http_requests_total{code="200",route="/normalize"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestMetrics_Independent(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.CacheError("get")

	assert.Contains(t, scrape(t, a), `demark_cache_errors_total{op="get"} 1`)
	assert.NotContains(t, scrape(t, b), `demark_cache_errors_total{op="get"}`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveNormalize(SourceComputed, 1, time.Millisecond)
		m.CacheError("get")
		m.ObserveRequest("/health", http.StatusOK, time.Millisecond)
	})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
