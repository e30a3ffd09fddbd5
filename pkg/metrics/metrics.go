// Package metrics exports runtime activity as Prometheus counters.
//
// A Collector implements reactive.Observer; install it with
// reactive.WithObserver:
//
//	c := metrics.New(metrics.WithRegistry(reg))
//	rt := reactive.NewRuntime(reactive.WithObserver(c))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/loom/pkg/reactive"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "loom").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
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

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "loom",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector counts runtime events.
type Collector struct {
	scopesDisposed     prometheus.Counter
	cleanupsRun        prometheus.Counter
	jobs               *prometheus.CounterVec
	notificationErrors prometheus.Counter
	reconcileNodes     *prometheus.CounterVec
	componentsCreated  *prometheus.CounterVec
	dispatchDropped    prometheus.Counter
}

// New creates a Collector and registers its metrics. Registering twice
// against the same registry panics, as with any Prometheus collector.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}

	return &Collector{
		scopesDisposed:     counter("scopes_disposed_total", "Total number of lifecycle scopes disposed"),
		cleanupsRun:        counter("cleanups_run_total", "Total number of cleanup functions run"),
		jobs:               counterVec("jobs_total", "Total number of derivation and binding re-runs", "kind"),
		notificationErrors: counter("notification_errors_total", "Total number of failed derivations, bindings and dispatched callbacks"),
		reconcileNodes:     counterVec("reconcile_nodes_total", "Total number of entries created, moved or removed by rendering combinators", "kind", "op"),
		componentsCreated:  counterVec("components_created_total", "Total number of component instances created", "name"),
		dispatchDropped:    counter("dispatch_dropped_total", "Total number of dispatched callbacks dropped because the queue was full"),
	}
}

// ScopeDisposed implements reactive.Observer.
func (c *Collector) ScopeDisposed(cleanups int) {
	c.scopesDisposed.Inc()
	c.cleanupsRun.Add(float64(cleanups))
}

// JobRan implements reactive.Observer.
func (c *Collector) JobRan(kind string) {
	c.jobs.WithLabelValues(kind).Inc()
}

// NotificationFailed implements reactive.Observer.
func (c *Collector) NotificationFailed(error) {
	c.notificationErrors.Inc()
}

// Reconciled implements reactive.Observer.
func (c *Collector) Reconciled(kind string, created, moved, removed int) {
	if created > 0 {
		c.reconcileNodes.WithLabelValues(kind, "created").Add(float64(created))
	}
	if moved > 0 {
		c.reconcileNodes.WithLabelValues(kind, "moved").Add(float64(moved))
	}
	if removed > 0 {
		c.reconcileNodes.WithLabelValues(kind, "removed").Add(float64(removed))
	}
}

// ComponentCreated implements reactive.Observer.
func (c *Collector) ComponentCreated(name string) {
	c.componentsCreated.WithLabelValues(name).Inc()
}

// DispatchDropped implements reactive.Observer.
func (c *Collector) DispatchDropped() {
	c.dispatchDropped.Inc()
}

var _ reactive.Observer = (*Collector)(nil)
