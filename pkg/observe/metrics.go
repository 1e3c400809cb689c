package observe

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/fluxion/pkg/fluxion"
)

// MetricsConfig configures the Prometheus metrics collector.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "fluxion").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush duration in seconds.
	// Flushes are usually far below a millisecond, so the defaults run
	// from one microsecond to one second.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics collector.
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

// WithBuckets sets the flush duration histogram buckets.
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

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "fluxion",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 1e-1, 1},
		Registry:    prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for fluxion runtimes.
type metrics struct {
	flushesTotal         prometheus.Counter
	flushDuration        prometheus.Histogram
	flushPasses          prometheus.Histogram
	updateRunsTotal      prometheus.Counter
	effectRunsTotal      prometheus.Counter
	transitionsCommitted prometheus.Counter
	computationsCreated  *prometheus.CounterVec
}

// globalMetrics is the singleton metrics instance.
// Created on the first call to Prometheus().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

// initMetrics initializes the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		flushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of completed flushes",
			ConstLabels: config.ConstLabels,
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Flush duration from first mark to quiescence in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		flushPasses: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_passes",
			Help:        "Effect passes needed per flush to stabilize",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 4, 8, 16, 32},
		}),

		updateRunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "update_runs_total",
			Help:        "Total memo and computed executions",
			ConstLabels: config.ConstLabels,
		}),

		effectRunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total effect executions",
			ConstLabels: config.ConstLabels,
		}),

		transitionsCommitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "transitions_committed_total",
			Help:        "Total transitions committed",
			ConstLabels: config.ConstLabels,
		}),

		computationsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "computations_created_total",
			Help:        "Total computations created by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
	}
}

// Prometheus attaches a Prometheus collector to the runtime's hooks.
//
// Metrics collected:
//   - fluxion_flushes_total: Counter of completed flushes
//   - fluxion_flush_duration_seconds: Histogram of flush duration
//   - fluxion_flush_passes: Histogram of effect passes per flush
//   - fluxion_update_runs_total: Counter of memo and computed executions
//   - fluxion_effect_runs_total: Counter of effect executions
//   - fluxion_transitions_committed_total: Counter of committed transitions
//   - fluxion_computations_created_total: Counter of computations by kind
//
// The metric set is created once; later calls reuse it, so several
// runtimes can feed the same series.
//
// Example:
//
//	rt := fluxion.New()
//	observe.Prometheus(rt, observe.WithNamespace("myapp"))
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(rt *fluxion.Runtime, opts ...MetricsOption) {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Initialize metrics once
	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	rt.AddHooks(fluxion.Hooks{
		ComputationCreated: func(ev fluxion.ComputationEvent) {
			m.computationsCreated.WithLabelValues(ev.Kind).Inc()
		},
		FlushCompleted: func(ev fluxion.FlushEvent) {
			m.flushesTotal.Inc()
			m.flushDuration.Observe(ev.Duration.Seconds())
			m.flushPasses.Observe(float64(ev.Passes))
			m.updateRunsTotal.Add(float64(ev.UpdateRuns))
			m.effectRunsTotal.Add(float64(ev.EffectRuns))
			if ev.TransitionCommitted {
				m.transitionsCommitted.Inc()
			}
		},
	})
}

// Collector exposes the metric series for use in custom registrations,
// so fluxion metrics can be read alongside other application metrics.
type Collector struct {
	flushesTotal         prometheus.Counter
	flushDuration        prometheus.Histogram
	flushPasses          prometheus.Histogram
	updateRunsTotal      prometheus.Counter
	effectRunsTotal      prometheus.Counter
	transitionsCommitted prometheus.Counter
	computationsCreated  *prometheus.CounterVec
}

// GetMetrics returns the current metric series, or nil before the first
// Prometheus() call.
func GetMetrics() *Collector {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	if globalMetrics == nil {
		return nil
	}
	return &Collector{
		flushesTotal:         globalMetrics.flushesTotal,
		flushDuration:        globalMetrics.flushDuration,
		flushPasses:          globalMetrics.flushPasses,
		updateRunsTotal:      globalMetrics.updateRunsTotal,
		effectRunsTotal:      globalMetrics.effectRunsTotal,
		transitionsCommitted: globalMetrics.transitionsCommitted,
		computationsCreated:  globalMetrics.computationsCreated,
	}
}
