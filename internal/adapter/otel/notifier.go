package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/nettap/internal/domain"
)

// TracingNotifier wraps a domain.LeadNotifier with OpenTelemetry tracing.
type TracingNotifier struct {
	next   domain.LeadNotifier
	tracer trace.Tracer
}

var _ domain.LeadNotifier = (*TracingNotifier)(nil)

// NewTracingNotifier creates a tracing decorator around next.
func NewTracingNotifier(next domain.LeadNotifier) *TracingNotifier {
	return &TracingNotifier{next: next, tracer: otel.Tracer(tracerName)}
}

func (n *TracingNotifier) LeadCreated(ctx context.Context, lead domain.Lead) error {
	ctx, span := n.tracer.Start(ctx, "LeadNotifier.LeadCreated",
		trace.WithAttributes(attribute.String("lead.id", lead.ID)),
	)
	err := n.next.LeadCreated(ctx, lead)
	endSpan(span, err)
	return err
}

func (n *TracingNotifier) LeadAssigned(ctx context.Context, lead domain.Lead, ispName string) error {
	ctx, span := n.tracer.Start(ctx, "LeadNotifier.LeadAssigned",
		trace.WithAttributes(
			attribute.String("lead.id", lead.ID),
			attribute.String("isp.name", ispName),
		),
	)
	err := n.next.LeadAssigned(ctx, lead, ispName)
	endSpan(span, err)
	return err
}

func (n *TracingNotifier) StatusUpdated(ctx context.Context, lead domain.Lead, from, to domain.Status) error {
	ctx, span := n.tracer.Start(ctx, "LeadNotifier.StatusUpdated",
		trace.WithAttributes(
			attribute.String("lead.id", lead.ID),
			attribute.String("lead.status.from", string(from)),
			attribute.String("lead.status.to", string(to)),
		),
	)
	err := n.next.StatusUpdated(ctx, lead, from, to)
	endSpan(span, err)
	return err
}
