package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/ripple/pkg/reactive"
)

// MetricsConfig configures the Prometheus instrumentation.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "ripple").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for reaction duration.
	// Default: fine-grained buckets from 1µs to 1s.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus instrumentation.
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

// WithBuckets sets the reaction duration histogram buckets.
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

// reactionBuckets suit in-process reactions, which mostly finish in
// microseconds.
var reactionBuckets = []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 1e-2, 0.1, 1}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "ripple",
		Buckets:   reactionBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a reactive.Instrumentation that records Prometheus metrics.
type Metrics struct {
	reactionsTotal    *prometheus.CounterVec
	reactionDuration  prometheus.Histogram
	computedTotal     *prometheus.CounterVec
	propagationsTotal *prometheus.CounterVec
	propagationFanout *prometheus.CounterVec
	batchFlushes      prometheus.Counter
	batchReactions    prometheus.Histogram
	unobservedTotal   prometheus.Counter

	now func() time.Time
}

var _ reactive.Instrumentation = (*Metrics)(nil)

// Prometheus creates an instrumentation that registers its collectors with
// the configured registry.
//
// Metrics collected:
//   - ripple_reactions_total: Counter of reaction runs by status (ok, error)
//   - ripple_reaction_duration_seconds: Histogram of reaction run duration
//   - ripple_computed_evaluations_total: Counter of computed evaluations by
//     result (changed, unchanged, error)
//   - ripple_propagations_total: Counter of propagation walks by kind
//   - ripple_propagation_observers_total: Counter of observers visited by kind
//   - ripple_batch_flushes_total: Counter of transaction flushes
//   - ripple_batch_reactions: Histogram of reactions run per flush
//   - ripple_unobserved_total: Counter of observables torn down
//
// Registering twice against the same registry panics, as with promauto.
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if len(config.Buckets) == 0 {
		config.Buckets = reactionBuckets
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		reactionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reactions_total",
			Help:        "Total number of reaction runs",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		reactionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reaction_duration_seconds",
			Help:        "Reaction run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		computedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "computed_evaluations_total",
			Help:        "Total number of tracked computed value evaluations",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		propagationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "propagations_total",
			Help:        "Total number of staleness propagation walks",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		propagationFanout: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "propagation_observers_total",
			Help:        "Total number of observers visited by propagation walks",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		batchFlushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_flushes_total",
			Help:        "Total number of outermost transactions that ran reactions or tore down observables",
			ConstLabels: config.ConstLabels,
		}),

		batchReactions: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_reactions",
			Help:        "Reactions run per transaction flush",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 10),
		}),

		unobservedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "unobserved_total",
			Help:        "Total number of observables that lost their last observer",
			ConstLabels: config.ConstLabels,
		}),

		now: time.Now,
	}
}

// StartReaction implements reactive.Instrumentation.
func (m *Metrics) StartReaction(string) func(error) {
	start := m.now()
	return func(err error) {
		m.reactionDuration.Observe(m.now().Sub(start).Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.reactionsTotal.WithLabelValues(status).Inc()
	}
}

// ComputedEvaluated implements reactive.Instrumentation.
func (m *Metrics) ComputedEvaluated(_ string, changed bool, err error) {
	result := "unchanged"
	switch {
	case err != nil:
		result = "error"
	case changed:
		result = "changed"
	}
	m.computedTotal.WithLabelValues(result).Inc()
}

// BatchFlushed implements reactive.Instrumentation.
func (m *Metrics) BatchFlushed(reactions, unobserved int) {
	m.batchFlushes.Inc()
	m.batchReactions.Observe(float64(reactions))
	m.unobservedTotal.Add(float64(unobserved))
}

// Propagated implements reactive.Instrumentation.
func (m *Metrics) Propagated(kind reactive.PropagationKind, observers int) {
	label := kind.String()
	m.propagationsTotal.WithLabelValues(label).Inc()
	m.propagationFanout.WithLabelValues(label).Add(float64(observers))
}
