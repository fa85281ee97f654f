// Package metrics exposes Prometheus collectors for update scheduling.
//
// A nil *Metrics is valid and records nothing, so roots built without
// metrics pay only a nil check.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// DefaultNamespace is used when New is given an empty namespace.
const DefaultNamespace = "drift"

const subsystem = "scheduler"

// Metrics groups the scheduler collectors. Every series is labelled by root.
type Metrics struct {
	renders       *prometheus.CounterVec
	skipped       *prometheus.CounterVec
	syncUpdates   *prometheus.CounterVec
	deferred      *prometheus.CounterVec
	ignoredForced *prometheus.CounterVec
	drainPasses   *prometheus.HistogramVec
}

// New creates the collectors under namespace. They are not registered.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Metrics{
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "renders_total",
			Help:      "Completed component render cycles.",
		}, []string{"root"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "skipped_total",
			Help:      "Updates applied without rendering because ShouldComponentUpdate returned false.",
		}, []string{"root"}),
		syncUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sync_updates_total",
			Help:      "Updates processed immediately instead of being deferred to a batch.",
		}, []string{"root"}),
		deferred: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "deferred_total",
			Help:      "Updaters registered with the update queue during a batch.",
		}, []string{"root"}),
		ignoredForced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ignored_force_updates_total",
			Help:      "ForceUpdate calls dropped because a render was in flight or the component was unmounted.",
		}, []string{"root"}),
		drainPasses: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "drain_passes",
			Help:      "Take-and-drain passes needed to empty the update queue in one batch.",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
		}, []string{"root"}),
	}
}

// Collectors returns every collector for custom registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.renders, m.skipped, m.syncUpdates, m.deferred, m.ignoredForced, m.drainPasses,
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) Rendered(root string) {
	if m != nil {
		m.renders.WithLabelValues(root).Inc()
	}
}

func (m *Metrics) Skipped(root string) {
	if m != nil {
		m.skipped.WithLabelValues(root).Inc()
	}
}

func (m *Metrics) UpdatedSync(root string) {
	if m != nil {
		m.syncUpdates.WithLabelValues(root).Inc()
	}
}

func (m *Metrics) Deferred(root string) {
	if m != nil {
		m.deferred.WithLabelValues(root).Inc()
	}
}

func (m *Metrics) IgnoredForceUpdate(root string) {
	if m != nil {
		m.ignoredForced.WithLabelValues(root).Inc()
	}
}

// Drained records how many passes one BatchUpdate call took.
func (m *Metrics) Drained(root string, passes int) {
	if m != nil {
		m.drainPasses.WithLabelValues(root).Observe(float64(passes))
	}
}
