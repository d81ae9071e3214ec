package otel_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/neomorfeo/nettap/internal/adapter/memory"
	adapter "github.com/neomorfeo/nettap/internal/adapter/otel"
	"github.com/neomorfeo/nettap/internal/domain"
	"github.com/neomorfeo/nettap/internal/seed"
	"github.com/neomorfeo/nettap/internal/storage/storagetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	return memory.NewSeeded(storagetest.SeedData(t))
}

func attr(span tracetest.SpanStub, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func newLead(id string) domain.Lead {
	lead := domain.NewLead(id, domain.SourceDirect, domain.TariffSnapshot{TariffID: "tariff-1", TariffName: "Fiber"})
	lead.FullName = "Test Customer"
	lead.Phone = "+994501234567"
	lead.CityID = seed.CityBaku
	lead.DistrictID = seed.DistrictNasimi
	return lead
}

func TestTracingLeadRepository_Create_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	repo := adapter.NewTracingLeadRepository(seededStore(t).Leads())

	if err := repo.Create(context.Background(), newLead("lead-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "LeadRepository.Create" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	if v, ok := attr(spans[0], "lead.id"); !ok || v.AsString() != "lead-1" {
		t.Errorf("lead.id attribute = %v", v.AsString())
	}
}

func TestTracingLeadRepository_VersionConflict_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	repo := adapter.NewTracingLeadRepository(seededStore(t).Leads())
	ctx := context.Background()

	if err := repo.Create(ctx, newLead("lead-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	exporter.Reset()

	_, err := repo.UpdateStatus(ctx, "lead-1", 99, domain.StatusContacted, "")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", spans[0].Status.Code)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected the error to be recorded as a span event")
	}
	if v, _ := attr(spans[0], "lead.status"); v.AsString() != "contacted" {
		t.Errorf("lead.status attribute = %q", v.AsString())
	}
}

func TestTracingLeadRepository_FindAll_RecordsCounts(t *testing.T) {
	exporter := setupTestTracer(t)
	repo := adapter.NewTracingLeadRepository(seededStore(t).Leads())
	ctx := context.Background()

	for _, id := range []string{"lead-1", "lead-2", "lead-3"} {
		if err := repo.Create(ctx, newLead(id)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	exporter.Reset()

	if _, err := repo.FindAll(ctx, 2, 0); err != nil {
		t.Fatalf("FindAll: %v", err)
	}

	span := exporter.GetSpans()[0]
	if v, _ := attr(span, "result.count"); v.AsInt64() != 2 {
		t.Errorf("result.count = %d, want 2", v.AsInt64())
	}
	if v, _ := attr(span, "result.total"); v.AsInt64() != 3 {
		t.Errorf("result.total = %d, want 3", v.AsInt64())
	}
}

func TestTracingTariffRepository_FindByFilter(t *testing.T) {
	exporter := setupTestTracer(t)
	repo := adapter.NewTracingTariffRepository(seededStore(t).Tariffs())

	tariffs, err := repo.FindByFilter(context.Background(), domain.SearchCriteria{CityID: seed.CityBaku}, domain.SortOptions{})
	if err != nil {
		t.Fatalf("FindByFilter: %v", err)
	}

	span := exporter.GetSpans()[0]
	if span.Name != "TariffRepository.FindByFilter" {
		t.Errorf("span name = %q", span.Name)
	}
	if v, _ := attr(span, "result.count"); v.AsInt64() != int64(len(tariffs)) {
		t.Errorf("result.count = %d, want %d", v.AsInt64(), len(tariffs))
	}
}

func TestTracingTariffRepository_NotFound(t *testing.T) {
	exporter := setupTestTracer(t)
	repo := adapter.NewTracingTariffRepository(seededStore(t).Tariffs())

	if _, err := repo.FindByID(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if got := exporter.GetSpans()[0].Status.Code; got != codes.Error {
		t.Errorf("status = %v, want Error", got)
	}
}
