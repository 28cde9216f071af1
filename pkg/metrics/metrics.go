// Package metrics exposes Prometheus instrumentation for the auth
// hydration subsystem: hydration outcomes and latency, broadcast fan-out,
// subscriber failures, wait timeouts, and the live island count.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures metric registration.
type Config struct {
	// Namespace is the metrics namespace (default: "authsync").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for hydration duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option configures metric registration.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the hydration duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "authsync",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the instruments for one registry of islands.
type Metrics struct {
	// HydrationsTotal counts completed hydration attempts by strategy
	// and outcome ("ok" or "error").
	HydrationsTotal *prometheus.CounterVec

	// HydrationDuration observes resolver round-trip time by strategy.
	HydrationDuration *prometheus.HistogramVec

	// BroadcastsTotal counts state propagations by scope
	// ("local", "island", "tab").
	BroadcastsTotal *prometheus.CounterVec

	// SubscriberPanicsTotal counts subscriber callbacks that panicked
	// during notification.
	SubscriberPanicsTotal prometheus.Counter

	// WaitTimeoutsTotal counts bounded waits that hit their deadline.
	WaitTimeoutsTotal prometheus.Counter

	// ActiveIslands tracks live island records.
	ActiveIslands prometheus.Gauge
}

// New registers a fresh set of instruments. Tests should pass
// WithRegistry(prometheus.NewRegistry()) to avoid duplicate registration
// on the default registerer.
func New(opts ...Option) *Metrics {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)
	return &Metrics{
		HydrationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "hydrations_total",
			Help:        "Completed hydration attempts by strategy and outcome",
			ConstLabels: cfg.ConstLabels,
		}, []string{"strategy", "outcome"}),

		HydrationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "hydration_duration_seconds",
			Help:        "Resolver round-trip time in seconds",
			Buckets:     cfg.Buckets,
			ConstLabels: cfg.ConstLabels,
		}, []string{"strategy"}),

		BroadcastsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "broadcasts_total",
			Help:        "State propagations by scope",
			ConstLabels: cfg.ConstLabels,
		}, []string{"scope"}),

		SubscriberPanicsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "subscriber_panics_total",
			Help:        "Subscriber callbacks that panicked during notify",
			ConstLabels: cfg.ConstLabels,
		}),

		WaitTimeoutsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "wait_timeouts_total",
			Help:        "Bounded payload waits that hit their deadline",
			ConstLabels: cfg.ConstLabels,
		}),

		ActiveIslands: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "active_islands",
			Help:        "Live island records in the registry",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// Default returns the process-wide instruments registered on the default
// Prometheus registerer. Created on first use.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}
