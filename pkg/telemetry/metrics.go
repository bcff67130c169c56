package telemetry

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Load results used as metric label values.
const (
	ResultValid    = "valid"
	ResultRejected = "rejected"
)

// Metrics provides Prometheus metrics for configuration loads. A nil
// *Metrics, or one built with metrics disabled, records nothing.
type Metrics struct {
	config MetricsConfig

	loadsTotal      *prometheus.CounterVec
	loadDuration    *prometheus.HistogramVec
	violationsTotal *prometheus.CounterVec
	reloadsTotal    *prometheus.CounterVec
	lastLoadSuccess prometheus.Gauge

	registry *prometheus.Registry

	mu     sync.Mutex
	server *http.Server
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loads_total",
				Help:      "Total number of configuration loads",
			},
			[]string{"source", "result"},
		),
		loadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_duration_seconds",
				Help:      "Duration of configuration loads in seconds",
				Buckets:   buckets,
			},
			[]string{"source"},
		),
		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "violations_total",
				Help:      "Total number of violations reported, by kind",
			},
			[]string{"kind"},
		),
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reloads_total",
				Help:      "Total number of configuration reloads triggered by file changes",
			},
			[]string{"result"},
		),
		lastLoadSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_load_success",
				Help:      "Whether the most recent load succeeded (1) or failed (0)",
			},
		),
	}

	collectors := []prometheus.Collector{
		m.loadsTotal,
		m.loadDuration,
		m.violationsTotal,
		m.reloadsTotal,
		m.lastLoadSuccess,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) enabled() bool {
	return m != nil && m.registry != nil
}

// RecordLoad records one load attempt from source ("directory", "file", "string").
func (m *Metrics) RecordLoad(source, result string, duration time.Duration) {
	if !m.enabled() {
		return
	}
	m.loadsTotal.WithLabelValues(source, result).Inc()
	m.loadDuration.WithLabelValues(source).Observe(duration.Seconds())
	if result == ResultValid {
		m.lastLoadSuccess.Set(1)
	} else {
		m.lastLoadSuccess.Set(0)
	}
}

// RecordViolations adds count violations of the given kind.
func (m *Metrics) RecordViolations(kind string, count int) {
	if !m.enabled() || count <= 0 {
		return
	}
	m.violationsTotal.WithLabelValues(kind).Add(float64(count))
}

// RecordReload records a watcher-triggered reload.
func (m *Metrics) RecordReload(result string) {
	if !m.enabled() {
		return
	}
	m.reloadsTotal.WithLabelValues(result).Inc()
}

// Registry returns the underlying registry, or nil when disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if !m.enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server exposing metrics in the
// background. Serve errors are logged to logger.
func (m *Metrics) StartMetricsServer(logger *Logger) error {
	if !m.enabled() {
		return nil
	}

	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	m.mu.Lock()
	m.server = server
	m.mu.Unlock()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server stopped")
		}
	}()

	return nil
}

// Shutdown stops the metrics server if one was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	server := m.server
	m.server = nil
	m.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}
