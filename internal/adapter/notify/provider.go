package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
)

// ErrInvalidRecipient is returned when a destination address is malformed.
var ErrInvalidRecipient = errors.New("invalid recipient")

var e164 = regexp.MustCompile(`^\+\d{10,15}$`)

// SMS is an outgoing text message.
type SMS struct {
	To   string
	Body string
}

// Email is an outgoing plain-text email.
type Email struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// SMSProvider delivers text messages.
type SMSProvider interface {
	Name() string
	SendSMS(ctx context.Context, msg SMS) error
}

// EmailProvider delivers email.
type EmailProvider interface {
	Name() string
	SendEmail(ctx context.Context, msg Email) error
}

// LogSMSProvider writes messages to the log instead of a gateway.
type LogSMSProvider struct {
	logger *slog.Logger
	sender string
}

// NewLogSMSProvider returns a provider that logs through logger.
func NewLogSMSProvider(logger *slog.Logger, sender string) *LogSMSProvider {
	if sender == "" {
		sender = "NetTap"
	}
	return &LogSMSProvider{logger: logger, sender: sender}
}

func (p *LogSMSProvider) Name() string { return "log-sms" }

// SendSMS rejects numbers that are not in E.164 form.
func (p *LogSMSProvider) SendSMS(ctx context.Context, msg SMS) error {
	if !e164.MatchString(msg.To) {
		return fmt.Errorf("%w: phone %q is not in E.164 format", ErrInvalidRecipient, msg.To)
	}
	p.logger.InfoContext(ctx, "sms sent",
		"provider", p.Name(),
		"to", msg.To,
		"from", p.sender,
		"message", preview(msg.Body, 50),
	)
	return nil
}

// LogEmailProvider writes emails to the log instead of sending them.
type LogEmailProvider struct {
	logger *slog.Logger
	from   string
}

// NewLogEmailProvider returns a provider that logs through logger.
func NewLogEmailProvider(logger *slog.Logger, from string) *LogEmailProvider {
	return &LogEmailProvider{logger: logger, from: from}
}

func (p *LogEmailProvider) Name() string { return "log-email" }

func (p *LogEmailProvider) SendEmail(ctx context.Context, msg Email) error {
	if msg.To == "" {
		return fmt.Errorf("%w: empty email address", ErrInvalidRecipient)
	}
	p.logger.InfoContext(ctx, "email sent",
		"provider", p.Name(),
		"to", msg.To,
		"from", p.from,
		"subject", msg.Subject,
	)
	return nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
