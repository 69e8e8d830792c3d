// Package metrics exposes Prometheus counters for the auth flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collectors on a private registry so tests can
// build isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	logins        *prometheus.CounterVec
	registrations prometheus.Counter
	tokensIssued  prometheus.Counter
	resetsIssued  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aura",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aura",
			Subsystem: "auth",
			Name:      "registrations_total",
			Help:      "Accounts created through the register flow.",
		}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aura",
			Subsystem: "auth",
			Name:      "token_pairs_issued_total",
			Help:      "Access/refresh pairs issued, including refreshes.",
		}),
		resetsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aura",
			Subsystem: "auth",
			Name:      "password_resets_requested_total",
			Help:      "Password reset emails requested.",
		}),
	}

	m.registry.MustRegister(
		m.logins,
		m.registrations,
		m.tokensIssued,
		m.resetsIssued,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Login methods reported on the logins counter.
const (
	MethodPassword = "password"
	MethodGoogle   = "google"
	MethodRefresh  = "refresh"
)

func (m *Metrics) LoginSucceeded(method string) {
	m.logins.WithLabelValues(method, "success").Inc()
	m.tokensIssued.Inc()
}

func (m *Metrics) LoginFailed(method string) {
	m.logins.WithLabelValues(method, "failure").Inc()
}

func (m *Metrics) RegistrationCompleted() {
	m.registrations.Inc()
	m.tokensIssued.Inc()
}

func (m *Metrics) ResetRequested() {
	m.resetsIssued.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
