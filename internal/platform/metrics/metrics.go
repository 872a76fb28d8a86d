package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vatelanka/waste-admin-api/internal/domain"
)

const namespace = "waste_admin"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	Onboardings          *prometheus.CounterVec
	NotificationFailures *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	IdempotencyPurged    prometheus.Counter
}

// New creates a registry with Go/process collectors and registers the application metrics on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Onboardings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "onboardings_total",
			Help:      "Onboarding attempts by entity kind and outcome (created, rejected, failed).",
		}, []string{"kind", "outcome"}),
		NotificationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Credential notifications that could not be delivered.",
		}, []string{"kind"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		IdempotencyPurged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotency_records_purged_total",
			Help:      "Expired idempotency records removed.",
		}),
	}
}

func (m *Metrics) ObserveOnboarding(kind domain.Kind, outcome string) {
	m.Onboardings.WithLabelValues(string(kind), outcome).Inc()
}

func (m *Metrics) NotificationFailed(kind domain.Kind) {
	m.NotificationFailures.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
