// Package metrics exposes Prometheus collectors for the HTTP surface, the
// lead lifecycle and notification delivery.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/neomorfeo/nettap/internal/adapter/notify"
	"github.com/neomorfeo/nettap/internal/domain"
)

const namespace = "nettap"

// Metrics holds every collector the service reports.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	leadEvents          *prometheus.CounterVec
	deliveries          *prometheus.CounterVec
}

// New creates collectors on a fresh registry, together with the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		leadEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_events_total",
			Help:      "Lead lifecycle events by kind and resulting status",
		}, []string{"event", "status"}),
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_deliveries_total",
			Help:      "Notification delivery attempts by channel, event kind and result",
		}, []string{"channel", "kind", "result"}),
	}
}

// Registry returns the underlying registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency, labelled by the matched
// chi route pattern rather than the raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordDelivery implements notify.DeliveryRecorder.
func (m *Metrics) RecordDelivery(channel string, kind notify.Kind, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.deliveries.WithLabelValues(channel, string(kind), result).Inc()
}

var _ notify.DeliveryRecorder = (*Metrics)(nil)

// Notifier counts lifecycle events before passing them on.
type Notifier struct {
	next    domain.LeadNotifier
	metrics *Metrics
}

var _ domain.LeadNotifier = (*Notifier)(nil)

// WrapNotifier decorates next with lifecycle counters.
func (m *Metrics) WrapNotifier(next domain.LeadNotifier) *Notifier {
	return &Notifier{next: next, metrics: m}
}

func (n *Notifier) LeadCreated(ctx context.Context, lead domain.Lead) error {
	n.metrics.leadEvents.WithLabelValues("created", string(lead.Status)).Inc()
	return n.next.LeadCreated(ctx, lead)
}

func (n *Notifier) LeadAssigned(ctx context.Context, lead domain.Lead, ispName string) error {
	n.metrics.leadEvents.WithLabelValues("assigned", string(lead.Status)).Inc()
	return n.next.LeadAssigned(ctx, lead, ispName)
}

func (n *Notifier) StatusUpdated(ctx context.Context, lead domain.Lead, from, to domain.Status) error {
	n.metrics.leadEvents.WithLabelValues("status_updated", string(to)).Inc()
	return n.next.StatusUpdated(ctx, lead, from, to)
}
