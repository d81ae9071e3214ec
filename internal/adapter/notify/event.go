// Package notify renders lead lifecycle messages and delivers them over SMS
// and email.
package notify

import "github.com/neomorfeo/nettap/internal/domain"

// Kind identifies which lifecycle event a notification describes.
type Kind string

const (
	KindCreated       Kind = "lead_created"
	KindAssigned      Kind = "lead_assigned"
	KindStatusUpdated Kind = "status_updated"
)

// Event is a self-contained description of a lead lifecycle change. It is
// serialised into the job queue, so it carries everything the message
// templates need and never requires a repository lookup.
type Event struct {
	Kind         Kind          `json:"kind"`
	LeadID       string        `json:"leadId"`
	FullName     string        `json:"fullName"`
	Phone        string        `json:"phone"`
	Email        string        `json:"email,omitempty"`
	TariffName   string        `json:"tariffName"`
	TariffISP    string        `json:"tariffIsp"`
	SpeedMbps    int           `json:"speedMbps"`
	PriceMonthly float64       `json:"priceMonthly"`
	ISPName      string        `json:"ispName,omitempty"`
	From         domain.Status `json:"from,omitempty"`
	To           domain.Status `json:"to,omitempty"`
}

func fromLead(kind Kind, lead domain.Lead) Event {
	return Event{
		Kind:         kind,
		LeadID:       lead.ID,
		FullName:     lead.FullName,
		Phone:        lead.Phone,
		Email:        lead.Email,
		TariffName:   lead.Tariff.TariffName,
		TariffISP:    lead.Tariff.ISPName,
		SpeedMbps:    lead.Tariff.SpeedMbps,
		PriceMonthly: lead.Tariff.PriceMonthly,
	}
}

// LeadCreated builds the event sent when a customer submits a lead.
func LeadCreated(lead domain.Lead) Event {
	return fromLead(KindCreated, lead)
}

// LeadAssigned builds the event sent when a lead is handed to an ISP.
func LeadAssigned(lead domain.Lead, ispName string) Event {
	e := fromLead(KindAssigned, lead)
	e.ISPName = ispName
	return e
}

// StatusUpdated builds the event sent when a lead changes status.
func StatusUpdated(lead domain.Lead, from, to domain.Status) Event {
	e := fromLead(KindStatusUpdated, lead)
	e.From = from
	e.To = to
	return e
}
