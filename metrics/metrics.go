package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "travel_admin"

// Metrics holds the service counters on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	authEvents    *prometheus.CounterVec
	notifications *prometheus.CounterVec
	uploads       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Account workflow outcomes by event.",
		}, []string{"event", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification emails by kind and delivery outcome.",
		}, []string{"kind", "outcome"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Image uploads by storage backend and outcome.",
		}, []string{"backend", "outcome"}),
	}
	m.registry.MustRegister(
		m.authEvents,
		m.notifications,
		m.uploads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) AuthEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.authEvents.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) Notification(kind string, err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, outcome(err)).Inc()
}

func (m *Metrics) Upload(backend string, err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(backend, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
