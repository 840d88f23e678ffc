package metric

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/atomstore/pkg/atom"
	"github.com/yndnr/atomstore/pkg/storage"
)

// Namespace prefixes every atomstore metric.
const Namespace = "atomstore"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Atoms is shared by every atom the process creates.
	Atoms *atom.Metrics

	// Adapters counts traffic through instrumented storage adapters.
	Adapters *storage.AdapterMetrics

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with runtime collectors and every
// application metric registered.
func NewRegistry() (*Registry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	atoms, err := atom.NewMetrics(reg, Namespace)
	if err != nil {
		return nil, err
	}
	adapters, err := storage.NewAdapterMetrics(reg, Namespace)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		registry: reg,
		Atoms:    atoms,
		Adapters: adapters,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	if err := reg.Register(r.RequestsTotal); err != nil {
		return nil, fmt.Errorf("metric: register requests: %w", err)
	}
	if err := reg.Register(r.RequestDuration); err != nil {
		return nil, fmt.Errorf("metric: register duration: %w", err)
	}

	return r, nil
}

// Registerer returns the underlying registry for components that register
// their own collectors, such as the Badger adapter.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer returns the underlying registry for reading metric values.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveRequest records one served HTTP request.
func (r *Registry) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	r.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry: r.registry,
	})
}
