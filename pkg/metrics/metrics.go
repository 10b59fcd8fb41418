// Package metrics exports pipeline, cache and HTTP metrics to Prometheus.
//
// A [Registry] owns its own prometheus.Registry (never the global one) and
// implements the observability hook interfaces, so main wires it with:
//
//	m := metrics.NewRegistry()
//	observability.SetPipelineHooks(m)
//	observability.SetCacheHooks(m)
//
// The CLI dumps the registry with [Registry.WriteToTextfile] for the node
// exporter textfile collector; the HTTP server serves [Registry.Handler].
package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/netvis/pkg/observability"
)

// Registry holds all metrics for the application.
type Registry struct {
	// Pipeline Metrics
	LoadsTotal     *prometheus.CounterVec
	LoadDuration   prometheus.Histogram
	NodesLoaded    prometheus.Histogram
	WarningsTotal  *prometheus.CounterVec
	LayoutsTotal   *prometheus.CounterVec
	LayoutDuration prometheus.Histogram
	OrphansTotal   prometheus.Counter
	RendersTotal   *prometheus.CounterVec
	RenderDuration prometheus.Histogram

	// Cache Metrics
	CacheOpsTotal   *prometheus.CounterVec
	CacheWriteBytes *prometheus.HistogramVec

	// HTTP Metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
	BuildInfo    *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initPipelineMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initPipelineMetrics() {
	f := promauto.With(r.registry)

	r.LoadsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netvis_loads_total",
			Help: "Total number of save loads",
		},
		[]string{"format", "status"},
	)
	r.LoadDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netvis_load_duration_seconds",
			Help:    "Duration of save loads in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)
	r.NodesLoaded = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netvis_nodes_loaded",
			Help:    "Number of nodes per loaded save",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	r.WarningsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netvis_warnings_total",
			Help: "Total number of load and layout warnings",
		},
		[]string{"kind"},
	)
	r.LayoutsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netvis_layouts_total",
			Help: "Total number of computed layouts",
		},
		[]string{"status"},
	)
	r.LayoutDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netvis_layout_duration_seconds",
			Help:    "Duration of hierarchy resolution and placement in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)
	r.OrphansTotal = f.NewCounter(
		prometheus.CounterOpts{
			Name: "netvis_orphans_total",
			Help: "Total number of nodes unreachable from every root",
		},
	)
	r.RendersTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netvis_renders_total",
			Help: "Total number of rendered outputs",
		},
		[]string{"format", "status"},
	)
	r.RenderDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netvis_render_duration_seconds",
			Help:    "Duration of render stages in seconds",
			Buckets: []float64{.001, .01, .05, .1, .5, 1, 5},
		},
	)
}

func (r *Registry) initCacheMetrics() {
	f := promauto.With(r.registry)

	r.CacheOpsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netvis_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"key_type", "result"}, // hit, miss, set
	)
	r.CacheWriteBytes = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netvis_cache_write_bytes",
			Help:    "Size of cache writes in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"key_type"},
	)
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)

	r.HTTPRequests = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netvis_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netvis_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	r.HTTPInFlight = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "netvis_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	r.BuildInfo = f.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netvis_build_info",
			Help: "Build information, value is always 1",
		},
		[]string{"version", "commit"},
	)
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// WriteToTextfile writes the current metric values to path, atomically,
// in the format read by the node exporter textfile collector.
func (r *Registry) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// SetBuildInfo records the running version.
func (r *Registry) SetBuildInfo(version, commit string) {
	r.BuildInfo.WithLabelValues(version, commit).Set(1)
}

// RecordHTTPRequest records a served HTTP request.
func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	r.HTTPRequests.WithLabelValues(method, route, status).Inc()
	r.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// =============================================================================
// observability.PipelineHooks
// =============================================================================

func (r *Registry) OnLoadStart(context.Context, int) {}

func (r *Registry) OnLoadComplete(_ context.Context, format string, nodeCount, _ int, duration time.Duration, err error) {
	if format == "" {
		format = "unknown"
	}
	r.LoadsTotal.WithLabelValues(format, status(err)).Inc()
	r.LoadDuration.Observe(duration.Seconds())
	if err == nil {
		r.NodesLoaded.Observe(float64(nodeCount))
	}
}

func (r *Registry) OnLayoutStart(context.Context, int) {}

func (r *Registry) OnLayoutComplete(_ context.Context, _, orphans int, duration time.Duration, err error) {
	r.LayoutsTotal.WithLabelValues(status(err)).Inc()
	r.LayoutDuration.Observe(duration.Seconds())
	r.OrphansTotal.Add(float64(orphans))
}

func (r *Registry) OnRenderStart(context.Context, []string) {}

func (r *Registry) OnRenderComplete(_ context.Context, formats []string, duration time.Duration, err error) {
	for _, f := range formats {
		r.RendersTotal.WithLabelValues(strings.ToLower(f), status(err)).Inc()
	}
	r.RenderDuration.Observe(duration.Seconds())
}

func (r *Registry) OnWarning(_ context.Context, kind string) {
	r.WarningsTotal.WithLabelValues(kind).Inc()
}

// =============================================================================
// observability.CacheHooks
// =============================================================================

func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheOpsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheOpsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheOpsTotal.WithLabelValues(keyType, "set").Inc()
	r.CacheWriteBytes.WithLabelValues(keyType).Observe(float64(size))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

var (
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
)
