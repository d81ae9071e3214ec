package notify

import (
	"fmt"

	"github.com/neomorfeo/nettap/internal/domain"
)

const signature = " - NetTap"

// Message is the rendered content for one event.
type Message struct {
	SMS          string
	EmailSubject string
	EmailBody    string
}

// Render produces the customer-facing texts for e. ok is false when the
// event warrants no notification.
func Render(e Event) (msg Message, ok bool) {
	switch e.Kind {
	case KindCreated:
		return Message{
			SMS: fmt.Sprintf("Thank you for your interest! We received your request for %s (%s). We'll contact you soon.%s",
				e.TariffName, e.TariffISP, signature),
			EmailSubject: "Your Internet Tariff Request - NetTap",
			EmailBody: fmt.Sprintf("Dear %s,\n\nThank you for using NetTap!\n\nWe have received your request for:\n"+
				"- Tariff: %s\n- Provider: %s\n- Speed: %d Mbps\n- Price: %.2f AZN/month\n\n"+
				"Our team will contact you shortly to finalize the details.\n\nBest regards,\nNetTap Team",
				e.FullName, e.TariffName, e.TariffISP, e.SpeedMbps, e.PriceMonthly),
		}, true
	case KindAssigned:
		sms := fmt.Sprintf("Your internet request has been assigned to %s. They will contact you shortly.%s", e.ISPName, signature)
		return Message{
			SMS:          sms,
			EmailSubject: "Your request was assigned to " + e.ISPName + " - NetTap",
			EmailBody:    fmt.Sprintf("Dear %s,\n\n%s\n\nBest regards,\nNetTap Team", e.FullName, sms),
		}, true
	case KindStatusUpdated:
		text := statusText(e)
		if text == "" {
			return Message{}, false
		}
		return Message{
			SMS:          text + signature,
			EmailSubject: "Update on your internet request - NetTap",
			EmailBody:    fmt.Sprintf("Dear %s,\n\n%s\n\nBest regards,\nNetTap Team", e.FullName, text),
		}, true
	}
	return Message{}, false
}

func statusText(e Event) string {
	switch e.To {
	case domain.StatusContacted:
		return "We have contacted you regarding your internet request."
	case domain.StatusQualified:
		return fmt.Sprintf("Good news! You qualify for %s. We'll proceed with installation.", e.TariffName)
	case domain.StatusInProgress:
		return "Your internet installation is in progress. You'll be connected soon!"
	case domain.StatusConverted:
		return fmt.Sprintf("Congratulations! Your internet service is now active. Welcome to %s!", e.TariffISP)
	case domain.StatusRejected:
		return "Unfortunately, we couldn't process your request at this time. Please contact us for alternatives."
	case domain.StatusCancelled:
		return "Your internet request has been cancelled. Feel free to submit a new request anytime."
	}
	return ""
}
