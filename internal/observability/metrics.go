package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "queue"

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec

	ticketsCreated   prometheus.Counter
	ticketsCalled    prometheus.Counter
	ticketsCompleted *prometheus.CounterVec
	ticketsExpired   prometheus.Counter
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests labeled by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Error responses labeled by error code",
		}, []string{"method", "route", "code"}),
		ticketsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_created_total",
			Help:      "Tickets issued",
		}),
		ticketsCalled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_called_total",
			Help:      "Tickets called to a counter",
		}),
		ticketsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_completed_total",
			Help:      "Tickets leaving service, labeled by outcome",
		}, []string{"outcome"}),
		ticketsExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_expired_total",
			Help:      "Pending tickets expired by the scheduler",
		}),
	}
}

// RecordRequest counts one request and observes its latency.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, route, code).Inc()
}

func (m *Metrics) TicketCreated() {
	if m == nil {
		return
	}
	m.ticketsCreated.Inc()
}

func (m *Metrics) TicketCalled() {
	if m == nil {
		return
	}
	m.ticketsCalled.Inc()
}

// TicketFinished counts a ticket leaving service; outcome is its final status.
func (m *Metrics) TicketFinished(outcome string) {
	if m == nil {
		return
	}
	m.ticketsCompleted.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TicketsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ticketsExpired.Add(float64(n))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
