package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/nettap/internal/domain"
)

const tracerName = "github.com/neomorfeo/nettap/internal/adapter/otel"

// endSpan records err on span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TracingLeadRepository wraps a domain.LeadRepository with OpenTelemetry
// tracing. Each method creates a span with lead attributes and records errors.
type TracingLeadRepository struct {
	next   domain.LeadRepository
	tracer trace.Tracer
}

var _ domain.LeadRepository = (*TracingLeadRepository)(nil)

// NewTracingLeadRepository creates a tracing decorator around next.
func NewTracingLeadRepository(next domain.LeadRepository) *TracingLeadRepository {
	return &TracingLeadRepository{next: next, tracer: otel.Tracer(tracerName)}
}

func (r *TracingLeadRepository) FindByID(ctx context.Context, id string) (domain.Lead, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.FindByID",
		trace.WithAttributes(attribute.String("lead.id", id)),
	)
	lead, err := r.next.FindByID(ctx, id)
	endSpan(span, err)
	return lead, err
}

func (r *TracingLeadRepository) FindAll(ctx context.Context, limit, offset int) (domain.LeadPage, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.FindAll",
		trace.WithAttributes(
			attribute.Int("page.limit", limit),
			attribute.Int("page.offset", offset),
		),
	)
	page, err := r.next.FindAll(ctx, limit, offset)
	if err == nil {
		span.SetAttributes(
			attribute.Int("result.count", len(page.Leads)),
			attribute.Int("result.total", page.Total),
		)
	}
	endSpan(span, err)
	return page, err
}

func (r *TracingLeadRepository) FindByStatus(ctx context.Context, status domain.Status) ([]domain.Lead, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.FindByStatus",
		trace.WithAttributes(attribute.String("lead.status", string(status))),
	)
	leads, err := r.next.FindByStatus(ctx, status)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(leads)))
	}
	endSpan(span, err)
	return leads, err
}

func (r *TracingLeadRepository) FindByAssignedISP(ctx context.Context, ispID string) ([]domain.Lead, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.FindByAssignedISP",
		trace.WithAttributes(attribute.String("isp.id", ispID)),
	)
	leads, err := r.next.FindByAssignedISP(ctx, ispID)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(leads)))
	}
	endSpan(span, err)
	return leads, err
}

func (r *TracingLeadRepository) Create(ctx context.Context, lead domain.Lead) error {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.Create",
		trace.WithAttributes(
			attribute.String("lead.id", lead.ID),
			attribute.String("tariff.id", lead.Tariff.TariffID),
		),
	)
	err := r.next.Create(ctx, lead)
	endSpan(span, err)
	return err
}

func (r *TracingLeadRepository) Update(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.Update",
		trace.WithAttributes(
			attribute.String("lead.id", lead.ID),
			attribute.Int("lead.version", lead.Version),
		),
	)
	updated, err := r.next.Update(ctx, lead)
	endSpan(span, err)
	return updated, err
}

func (r *TracingLeadRepository) UpdateStatus(ctx context.Context, id string, version int, status domain.Status, notes string) (domain.Lead, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.UpdateStatus",
		trace.WithAttributes(
			attribute.String("lead.id", id),
			attribute.Int("lead.version", version),
			attribute.String("lead.status", string(status)),
		),
	)
	lead, err := r.next.UpdateStatus(ctx, id, version, status, notes)
	endSpan(span, err)
	return lead, err
}

func (r *TracingLeadRepository) AssignToISP(ctx context.Context, id string, version int, ispID string) (domain.Lead, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.AssignToISP",
		trace.WithAttributes(
			attribute.String("lead.id", id),
			attribute.Int("lead.version", version),
			attribute.String("isp.id", ispID),
		),
	)
	lead, err := r.next.AssignToISP(ctx, id, version, ispID)
	endSpan(span, err)
	return lead, err
}

// TracingTariffRepository wraps a domain.TariffRepository with tracing.
type TracingTariffRepository struct {
	next   domain.TariffRepository
	tracer trace.Tracer
}

var _ domain.TariffRepository = (*TracingTariffRepository)(nil)

// NewTracingTariffRepository creates a tracing decorator around next.
func NewTracingTariffRepository(next domain.TariffRepository) *TracingTariffRepository {
	return &TracingTariffRepository{next: next, tracer: otel.Tracer(tracerName)}
}

func (r *TracingTariffRepository) FindByID(ctx context.Context, id string) (domain.Tariff, error) {
	ctx, span := r.tracer.Start(ctx, "TariffRepository.FindByID",
		trace.WithAttributes(attribute.String("tariff.id", id)),
	)
	t, err := r.next.FindByID(ctx, id)
	endSpan(span, err)
	return t, err
}

func (r *TracingTariffRepository) FindByFilter(ctx context.Context, criteria domain.SearchCriteria, sort domain.SortOptions) ([]domain.Tariff, error) {
	ctx, span := r.tracer.Start(ctx, "TariffRepository.FindByFilter",
		trace.WithAttributes(
			attribute.String("search.city_id", criteria.CityID),
			attribute.StringSlice("search.district_ids", criteria.DistrictIDs),
			attribute.String("search.sort_by", string(sort.By)),
		),
	)
	tariffs, err := r.next.FindByFilter(ctx, criteria, sort)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(tariffs)))
	}
	endSpan(span, err)
	return tariffs, err
}

func (r *TracingTariffRepository) FindByISPID(ctx context.Context, ispID string) ([]domain.Tariff, error) {
	ctx, span := r.tracer.Start(ctx, "TariffRepository.FindByISPID",
		trace.WithAttributes(attribute.String("isp.id", ispID)),
	)
	tariffs, err := r.next.FindByISPID(ctx, ispID)
	endSpan(span, err)
	return tariffs, err
}

func (r *TracingTariffRepository) Create(ctx context.Context, t domain.Tariff) error {
	ctx, span := r.tracer.Start(ctx, "TariffRepository.Create",
		trace.WithAttributes(
			attribute.String("tariff.id", t.ID),
			attribute.String("isp.id", t.ISPID),
		),
	)
	err := r.next.Create(ctx, t)
	endSpan(span, err)
	return err
}

func (r *TracingTariffRepository) Update(ctx context.Context, t domain.Tariff) error {
	ctx, span := r.tracer.Start(ctx, "TariffRepository.Update",
		trace.WithAttributes(
			attribute.String("tariff.id", t.ID),
			attribute.Bool("tariff.active", t.IsActive),
		),
	)
	err := r.next.Update(ctx, t)
	endSpan(span, err)
	return err
}
