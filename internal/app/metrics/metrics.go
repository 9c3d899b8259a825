package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clientadmin"

// Metrics instruments the entity containers and the backend client.
type Metrics struct {
	actions  *prometheus.CounterVec
	items    *prometheus.GaugeVec
	requests *prometheus.HistogramVec
}

// New registers the collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "container_actions_total",
			Help:      "Entity container actions by entity, action and result.",
		}, []string{"entity", "action", "result"}),
		items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "container_items",
			Help:      "Records currently held by each entity container.",
		}, []string{"entity"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of calls to the remote backend.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "outcome"}),
	}
	reg.MustRegister(m.actions, m.items, m.requests)
	return m
}

func (m *Metrics) ObserveAction(entity, action string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.actions.WithLabelValues(entity, action, result).Inc()
}

func (m *Metrics) SetItems(entity string, n int) {
	m.items.WithLabelValues(entity).Set(float64(n))
}

func (m *Metrics) ObserveRequest(method, path, outcome string, elapsed time.Duration) {
	m.requests.WithLabelValues(method, path, outcome).Observe(elapsed.Seconds())
}
