package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	return m, reg
}

func TestMetrics_Hooks(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMetrics(t)

	m.OnBuildComplete(ctx, "notebooks", 4, time.Millisecond, nil)
	m.OnBuildComplete(ctx, "jobs", 0, time.Millisecond, errors.New("cycle"))
	m.OnLayoutComplete(ctx, 2, time.Millisecond, nil)
	m.OnProject(ctx, "e1", time.Microsecond)
	m.OnCacheHit(ctx, "http")
	m.OnCacheMiss(ctx, "http")
	m.OnCacheMiss(ctx, "layout")
	m.OnCacheSet(ctx, "layout", 512)
	m.OnResponse(ctx, "GET", "repos:8080", "/api", 200, time.Millisecond)
	m.OnError(ctx, "GET", "repos:8080", "/api", errors.New("refused"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.builds.WithLabelValues("notebooks", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.builds.WithLabelValues("jobs", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.layouts.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.projections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("http", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("layout", "miss")))
	assert.Equal(t, 512.0, testutil.ToFloat64(m.cacheBytes.WithLabelValues("layout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstream.WithLabelValues("GET", "repos:8080", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamErrors.WithLabelValues("GET", "repos:8080")))
}

func TestMetrics_Gateway(t *testing.T) {
	m, reg := newTestMetrics(t)
	m.ObserveRequest("GET", "/api/v1/executions/{id}", 200, 5*time.Millisecond)
	m.ObserveRequest("GET", "/api/v1/executions/{id}", 404, time.Millisecond)
	m.SocketOpened()
	m.SocketOpened()
	m.SocketClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/executions/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sockets))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "blueprint_http_requests_total"), body)
	assert.True(t, strings.Contains(body, "blueprint_http_websockets 1"), body)
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_SatisfiesHooks(t *testing.T) {
	m, _ := newTestMetrics(t)
	var (
		_ PipelineHooks = m
		_ CacheHooks    = m
		_ HTTPHooks     = m
	)
	SetPipelineHooks(m)
	defer Reset()
	assert.Same(t, m, Pipeline())
}
