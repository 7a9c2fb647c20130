package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blueprint"

// Metrics implements every hook interface on Prometheus collectors and
// carries the gateway's own request metrics.
type Metrics struct {
	builds        *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	graphNodes    prometheus.Histogram
	layouts       *prometheus.CounterVec
	layoutTime    prometheus.Histogram
	crossings     prometheus.Histogram
	projections   prometheus.Counter
	projectTime   prometheus.Histogram

	cacheLookups *prometheus.CounterVec
	cacheBytes   *prometheus.CounterVec

	upstream         *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	sockets         prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "graph", Name: "builds_total",
			Help: "Dependency graph builds by source and result.",
		}, []string{"source", "result"}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "graph", Name: "build_duration_seconds",
			Help: "Time spent building dependency graphs.", Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"source"}),
		graphNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "graph", Name: "nodes",
			Help: "Node count of built graphs.", Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "layout", Name: "computations_total",
			Help: "Layout computations by result.",
		}, []string{"result"}),
		layoutTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "layout", Name: "duration_seconds",
			Help: "Time spent computing layouts.", Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		crossings: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "layout", Name: "crossings",
			Help: "Edge crossings left after ordering.", Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		projections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "projection", Name: "total",
			Help: "Execution snapshots projected onto a graph.",
		}),
		projectTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "projection", Name: "duration_seconds",
			Help: "Time spent projecting execution snapshots.", Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "lookups_total",
			Help: "Cache lookups by key type and result.",
		}, []string{"type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "written_bytes_total",
			Help: "Bytes written to the cache by key type.",
		}, []string{"type"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "upstream", Name: "requests_total",
			Help: "Requests to the repository and execution services.",
		}, []string{"method", "host", "code"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "upstream", Name: "request_duration_seconds",
			Help: "Latency of upstream requests.", Buckets: prometheus.DefBuckets,
		}, []string{"method", "host"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "upstream", Name: "errors_total",
			Help: "Upstream requests that failed before a response.",
		}, []string{"method", "host"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Gateway requests by route and status.",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "Gateway request latency.", Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sockets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "websockets",
			Help: "Open execution websockets.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.builds, m.buildDuration, m.graphNodes, m.layouts, m.layoutTime, m.crossings,
		m.projections, m.projectTime, m.cacheLookups, m.cacheBytes,
		m.upstream, m.upstreamDuration, m.upstreamErrors,
		m.requests, m.requestDuration, m.sockets,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the metrics gathered by g in the Prometheus text format.
// A nil g uses prometheus.DefaultGatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveRequest records one gateway request. route is the route pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// SocketOpened and SocketClosed track open websockets.
func (m *Metrics) SocketOpened() { m.sockets.Inc() }
func (m *Metrics) SocketClosed() { m.sockets.Dec() }

func (m *Metrics) OnBuildStart(context.Context, string) {}

func (m *Metrics) OnBuildComplete(_ context.Context, source string, nodes int, d time.Duration, err error) {
	m.builds.WithLabelValues(source, result(err)).Inc()
	m.buildDuration.WithLabelValues(source).Observe(d.Seconds())
	if err == nil {
		m.graphNodes.Observe(float64(nodes))
	}
}

func (m *Metrics) OnLayoutStart(context.Context, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, crossings int, d time.Duration, err error) {
	m.layouts.WithLabelValues(result(err)).Inc()
	m.layoutTime.Observe(d.Seconds())
	if err == nil {
		m.crossings.Observe(float64(crossings))
	}
}

func (m *Metrics) OnProject(_ context.Context, _ string, d time.Duration) {
	m.projections.Inc()
	m.projectTime.Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	m.upstream.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	m.upstreamDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, host, _ string, _ error) {
	m.upstreamErrors.WithLabelValues(method, host).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
