package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures metric registration.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "graft").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures metric registration.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "graft",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is the set of collectors graft records into.
type Metrics struct {
	renderCycles      *prometheus.CounterVec
	renderDuration    *prometheus.HistogramVec
	patchOps          *prometheus.CounterVec
	droppedNodes      *prometheus.CounterVec
	hydrationPasses   *prometheus.CounterVec
	hydrationDuration prometheus.Histogram
	diagnostics       *prometheus.CounterVec
	storeOps          *prometheus.CounterVec
	liveConnections   prometheus.Gauge
	liveFrames        *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewMetrics registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}

	return &Metrics{
		renderCycles: counter("render_cycles_total",
			"Host render cycles by component tag and result", "tag", "result"),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Duration of one host render cycle in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"tag"}),

		patchOps: counter("patch_ops_total",
			"Applied reconciliation operations by kind", "op"),

		droppedNodes: counter("slot_dropped_nodes_total",
			"Light nodes with no matching insertion point", "tag"),

		hydrationPasses: counter("hydration_passes_total",
			"Hydration passes by result", "result"),

		hydrationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "hydration_duration_seconds",
			Help:        "Duration of one hydration pass in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		diagnostics: counter("diagnostics_total",
			"Diagnostics reported by error code", "code"),

		storeOps: counter("store_operations_total",
			"Page store operations by backend, operation and result", "backend", "op", "result"),

		liveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_connections",
			Help:        "Number of open live preview connections",
			ConstLabels: config.ConstLabels,
		}),

		liveFrames: counter("live_frames_total",
			"Live preview frames by direction", "direction"),

		httpRequests: counter("http_requests_total",
			"HTTP requests by route and status class", "route", "status"),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveRender records one host render cycle.
func (m *Metrics) ObserveRender(tag string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.renderCycles.WithLabelValues(tag, result(err)).Inc()
	m.renderDuration.WithLabelValues(tag).Observe(d.Seconds())
}

// AddOps records applied operations keyed by op name.
func (m *Metrics) AddOps(byKind map[string]int) {
	if m == nil {
		return
	}
	for op, n := range byKind {
		m.patchOps.WithLabelValues(op).Add(float64(n))
	}
}

// AddDropped records light nodes that found no insertion point.
func (m *Metrics) AddDropped(tag string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.droppedNodes.WithLabelValues(tag).Add(float64(n))
}

// ObserveHydration records one hydration pass.
func (m *Metrics) ObserveHydration(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.hydrationPasses.WithLabelValues(result(err)).Inc()
	m.hydrationDuration.Observe(d.Seconds())
}

// AddDiagnostic records a diagnostic by code.
func (m *Metrics) AddDiagnostic(code string) {
	if m == nil {
		return
	}
	m.diagnostics.WithLabelValues(code).Inc()
}

// ObserveStore records one page store operation.
func (m *Metrics) ObserveStore(backend, op string, err error) {
	if m == nil {
		return
	}
	m.storeOps.WithLabelValues(backend, op, result(err)).Inc()
}

// LiveOpened records a new live preview connection.
func (m *Metrics) LiveOpened() {
	if m == nil {
		return
	}
	m.liveConnections.Inc()
}

// LiveClosed records a closed live preview connection.
func (m *Metrics) LiveClosed() {
	if m == nil {
		return
	}
	m.liveConnections.Dec()
}

// AddLiveFrame records a frame received ("in") or sent ("out").
func (m *Metrics) AddLiveFrame(direction string) {
	if m == nil {
		return
	}
	m.liveFrames.WithLabelValues(direction).Inc()
}

// ObserveHTTP records one HTTP request.
func (m *Metrics) ObserveHTTP(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, statusClass(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
