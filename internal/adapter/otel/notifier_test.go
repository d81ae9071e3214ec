package otel_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"

	adapter "github.com/neomorfeo/nettap/internal/adapter/otel"
	"github.com/neomorfeo/nettap/internal/domain"
)

// --- Mock notifier ---

type mockNotifier struct {
	calls []string
	err   error
}

func (m *mockNotifier) LeadCreated(_ context.Context, lead domain.Lead) error {
	m.calls = append(m.calls, "created:"+lead.ID)
	return m.err
}

func (m *mockNotifier) LeadAssigned(_ context.Context, lead domain.Lead, ispName string) error {
	m.calls = append(m.calls, "assigned:"+lead.ID+":"+ispName)
	return m.err
}

func (m *mockNotifier) StatusUpdated(_ context.Context, lead domain.Lead, from, to domain.Status) error {
	m.calls = append(m.calls, "status:"+lead.ID+":"+string(from)+">"+string(to))
	return m.err
}

// --- Tests ---

func TestTracingNotifier_RecordsSpans(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := &mockNotifier{}
	n := adapter.NewTracingNotifier(inner)
	ctx := context.Background()
	lead := newLead("lead-1")

	if err := n.LeadCreated(ctx, lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.LeadAssigned(ctx, lead, "AzerTelecom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.StatusUpdated(ctx, lead, domain.StatusAssignedToISP, domain.StatusInProgress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 3 {
		t.Fatalf("got %d spans, want 3", len(spans))
	}
	wantNames := []string{"LeadNotifier.LeadCreated", "LeadNotifier.LeadAssigned", "LeadNotifier.StatusUpdated"}
	for i, want := range wantNames {
		if spans[i].Name != want {
			t.Errorf("span[%d] name = %q, want %q", i, spans[i].Name, want)
		}
	}

	if v, ok := attr(spans[1], "isp.name"); !ok || v.AsString() != "AzerTelecom" {
		t.Errorf("isp.name = %v, want AzerTelecom", v.AsString())
	}
	if v, ok := attr(spans[2], "lead.status.to"); !ok || v.AsString() != "in_progress" {
		t.Errorf("lead.status.to = %v, want in_progress", v.AsString())
	}

	if len(inner.calls) != 3 {
		t.Fatalf("expected 3 forwarded calls, got %d", len(inner.calls))
	}
}

func TestTracingNotifier_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	n := adapter.NewTracingNotifier(&mockNotifier{err: errors.New("queue unavailable")})

	if err := n.LeadCreated(context.Background(), newLead("lead-1")); err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
}
