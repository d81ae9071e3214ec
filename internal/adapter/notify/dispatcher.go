package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Delivery channels reported to a DeliveryRecorder.
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// DeliveryRecorder observes every delivery attempt.
type DeliveryRecorder interface {
	RecordDelivery(channel string, kind Kind, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordDelivery(string, Kind, error) {}

// Dispatcher renders events and hands them to the providers.
type Dispatcher struct {
	sms      SMSProvider
	email    EmailProvider
	recorder DeliveryRecorder
	logger   *slog.Logger
}

// NewDispatcher wires providers together. recorder may be nil.
func NewDispatcher(sms SMSProvider, email EmailProvider, recorder DeliveryRecorder, logger *slog.Logger) *Dispatcher {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sms: sms, email: email, recorder: recorder, logger: logger}
}

// Dispatch sends the SMS for e and, when the lead left an address, the
// email. Both are attempted; the joined error lets the queue retry.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) error {
	msg, ok := Render(e)
	if !ok {
		d.logger.DebugContext(ctx, "no notification for event", "kind", e.Kind, "lead_id", e.LeadID, "to", e.To)
		return nil
	}

	var errs []error

	err := d.sms.SendSMS(ctx, SMS{To: e.Phone, Body: msg.SMS})
	d.recorder.RecordDelivery(ChannelSMS, e.Kind, err)
	if err != nil {
		errs = append(errs, fmt.Errorf("sms via %s: %w", d.sms.Name(), err))
	}

	if e.Email != "" {
		err := d.email.SendEmail(ctx, Email{To: e.Email, ToName: e.FullName, Subject: msg.EmailSubject, Body: msg.EmailBody})
		d.recorder.RecordDelivery(ChannelEmail, e.Kind, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("email via %s: %w", d.email.Name(), err))
		}
	}

	if e.Kind == KindAssigned {
		d.logger.InfoContext(ctx, "isp notified of assigned lead",
			"lead_id", e.LeadID,
			"isp_name", e.ISPName,
			"customer_phone", e.Phone,
		)
	}

	return errors.Join(errs...)
}
