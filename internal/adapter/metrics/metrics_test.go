package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/neomorfeo/nettap/internal/adapter/notify"
	"github.com/neomorfeo/nettap/internal/domain"
)

type countingNotifier struct{ calls int }

func (c *countingNotifier) LeadCreated(context.Context, domain.Lead) error { c.calls++; return nil }

func (c *countingNotifier) LeadAssigned(context.Context, domain.Lead, string) error {
	c.calls++
	return nil
}

func (c *countingNotifier) StatusUpdated(context.Context, domain.Lead, domain.Status, domain.Status) error {
	c.calls++
	return errors.New("queue unavailable")
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/tariffs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tariffs/"+id, nil))
	}

	got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/tariffs/{id}", "404"))
	if got != 2 {
		t.Fatalf("expected 2 requests on route pattern, got %v", got)
	}
}

func TestRecordDelivery(t *testing.T) {
	m := New()

	m.RecordDelivery(notify.ChannelSMS, notify.KindCreated, nil)
	m.RecordDelivery(notify.ChannelSMS, notify.KindCreated, errors.New("boom"))
	m.RecordDelivery(notify.ChannelSMS, notify.KindCreated, nil)

	if got := testutil.ToFloat64(m.deliveries.WithLabelValues("sms", "lead_created", "success")); got != 2 {
		t.Errorf("success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.deliveries.WithLabelValues("sms", "lead_created", "failure")); got != 1 {
		t.Errorf("failure = %v, want 1", got)
	}
}

func TestNotifier_CountsAndForwards(t *testing.T) {
	m := New()
	next := &countingNotifier{}
	n := m.WrapNotifier(next)
	lead := domain.Lead{ID: "lead-1", Status: domain.StatusNew}

	_ = n.LeadCreated(context.Background(), lead)
	err := n.StatusUpdated(context.Background(), lead, domain.StatusNew, domain.StatusContacted)

	if err == nil {
		t.Error("expected the wrapped error to be returned")
	}
	if next.calls != 2 {
		t.Errorf("forwarded %d calls, want 2", next.calls)
	}
	if got := testutil.ToFloat64(m.leadEvents.WithLabelValues("status_updated", "contacted")); got != 1 {
		t.Errorf("status_updated counter = %v, want 1", got)
	}
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.RecordDelivery(notify.ChannelEmail, notify.KindAssigned, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `nettap_notification_deliveries_total{channel="email",kind="lead_assigned",result="success"} 1`) {
		t.Errorf("exposition missing delivery counter:\n%s", rec.Body.String())
	}
}
