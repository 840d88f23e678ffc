package storage

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
)

// AdapterMetrics holds Prometheus counters shared by instrumented adapters.
// Every series is labelled with the adapter name.
type AdapterMetrics struct {
	reads  *prometheus.CounterVec
	misses *prometheus.CounterVec
	writes *prometheus.CounterVec
	errors *prometheus.CounterVec
}

// NewAdapterMetrics creates adapter counters and registers them with reg.
func NewAdapterMetrics(reg prometheus.Registerer, namespace string) (*AdapterMetrics, error) {
	m := &AdapterMetrics{
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "reads_total",
			Help:      "Adapter reads",
		}, []string{"adapter"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "misses_total",
			Help:      "Adapter reads that found nothing stored",
		}, []string{"adapter"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "writes_total",
			Help:      "Adapter writes",
		}, []string{"adapter"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Adapter failures by operation",
		}, []string{"adapter", "op"}),
	}

	for _, c := range []prometheus.Collector{m.reads, m.misses, m.writes, m.errors} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("storage: register metrics: %w", err)
		}
	}
	return m, nil
}

// Reads returns the read counter of the named adapter.
func (m *AdapterMetrics) Reads(adapter string) prometheus.Counter {
	return m.reads.WithLabelValues(adapter)
}

// Misses returns the miss counter of the named adapter.
func (m *AdapterMetrics) Misses(adapter string) prometheus.Counter {
	return m.misses.WithLabelValues(adapter)
}

// Writes returns the write counter of the named adapter.
func (m *AdapterMetrics) Writes(adapter string) prometheus.Counter {
	return m.writes.WithLabelValues(adapter)
}

// Errors returns the failure counter of the named adapter and operation.
func (m *AdapterMetrics) Errors(adapter, op string) prometheus.Counter {
	return m.errors.WithLabelValues(adapter, op)
}

// Instrumented counts the traffic flowing through an adapter.
type Instrumented struct {
	inner   Adapter
	name    string
	metrics *AdapterMetrics
}

// Instrument wraps inner so its reads and writes are counted under name.
func Instrument(inner Adapter, name string, m *AdapterMetrics) *Instrumented {
	return &Instrumented{inner: inner, name: name, metrics: m}
}

// Unwrap returns the wrapped adapter.
func (i *Instrumented) Unwrap() Adapter {
	return i.inner
}

// GetItem reads through the inner adapter.
func (i *Instrumented) GetItem(key string) (string, bool, error) {
	i.metrics.reads.WithLabelValues(i.name).Inc()
	v, ok, err := i.inner.GetItem(key)
	switch {
	case err != nil:
		i.metrics.errors.WithLabelValues(i.name, "get").Inc()
	case !ok:
		i.metrics.misses.WithLabelValues(i.name).Inc()
	}
	return v, ok, err
}

// SetItem writes through the inner adapter.
func (i *Instrumented) SetItem(key, value string) error {
	i.metrics.writes.WithLabelValues(i.name).Inc()
	err := i.inner.SetItem(key, value)
	if err != nil {
		i.metrics.errors.WithLabelValues(i.name, "set").Inc()
	}
	return err
}

// RemoveItem deletes key from the inner adapter.
func (i *Instrumented) RemoveItem(key string) error {
	err := Remove(i.inner, key)
	if err != nil {
		i.metrics.errors.WithLabelValues(i.name, "remove").Inc()
	}
	return err
}

// Keys lists keys of the inner adapter.
func (i *Instrumented) Keys(prefix string) ([]string, error) {
	return Keys(i.inner, prefix)
}

// Close closes the inner adapter when it is an io.Closer.
func (i *Instrumented) Close() error {
	if c, ok := i.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
