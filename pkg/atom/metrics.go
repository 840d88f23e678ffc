package atom

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts atom operations by key. A nil *Metrics records nothing,
// so atoms can be built without metrics.
type Metrics struct {
	gets          *prometheus.CounterVec
	sets          *prometheus.CounterVec
	seeds         *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	notifications *prometheus.CounterVec
	errors        *prometheus.CounterVec
}

// NewMetrics creates the atom counters and registers them with reg.
// One Metrics value is shared by every atom of a process.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "atom",
			Name:      name,
			Help:      help,
		}, append([]string{"key"}, labels...))
	}

	m := &Metrics{
		gets:          counter("gets_total", "Successful atom reads"),
		sets:          counter("sets_total", "Values written by atoms"),
		seeds:         counter("seeds_total", "Empty slots seeded with the initial value"),
		rejections:    counter("rejections_total", "Sets aborted by middleware"),
		notifications: counter("notifications_total", "Subscriber callbacks invoked"),
		errors:        counter("errors_total", "Failed atom operations", "op"),
	}

	for _, c := range []prometheus.Collector{m.gets, m.sets, m.seeds, m.rejections, m.notifications, m.errors} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("atom: register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) got(key string) {
	if m == nil {
		return
	}
	m.gets.WithLabelValues(key).Inc()
}

func (m *Metrics) set(key string) {
	if m == nil {
		return
	}
	m.sets.WithLabelValues(key).Inc()
}

func (m *Metrics) seeded(key string) {
	if m == nil {
		return
	}
	m.seeds.WithLabelValues(key).Inc()
}

func (m *Metrics) rejected(key string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(key).Inc()
}

func (m *Metrics) notified(key string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.notifications.WithLabelValues(key).Add(float64(n))
}

func (m *Metrics) failed(key string, op Operation) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(key, string(op)).Inc()
}
