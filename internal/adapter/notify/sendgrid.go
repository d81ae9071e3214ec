package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendPath = "/v3/mail/send"

// SendGridProvider delivers email through the SendGrid v3 API.
type SendGridProvider struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendGridProvider returns a provider authenticated with apiKey.
func NewSendGridProvider(apiKey, from, fromName string) *SendGridProvider {
	return &SendGridProvider{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

// WithHost points the provider at a different API host, e.g. a test server.
func (p *SendGridProvider) WithHost(host string) *SendGridProvider {
	p.client.BaseURL = host + sendPath
	return p
}

func (p *SendGridProvider) Name() string { return "sendgrid" }

func (p *SendGridProvider) SendEmail(ctx context.Context, msg Email) error {
	if msg.To == "" {
		return fmt.Errorf("%w: empty email address", ErrInvalidRecipient)
	}
	message := mail.NewSingleEmail(
		mail.NewEmail(p.fromName, p.from),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Body,
		"",
	)
	resp, err := p.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sending email via sendgrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
