package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/nettap/internal/adapter/notify"
	"github.com/neomorfeo/nettap/internal/domain"
)

var _ domain.LeadNotifier = (*Notifier)(nil)

// maxDispatchAttempts bounds retries for a failing delivery.
const maxDispatchAttempts = 5

// DispatchArgs carries a lead event through the queue. The event is a
// snapshot taken when the lead changed, so the worker never reads the store.
type DispatchArgs struct {
	notify.Event
}

// Kind returns the job type used by River's routing.
func (DispatchArgs) Kind() string { return "notification.dispatch" }

// InsertOpts routes dispatch jobs to the notifications queue and caps
// their attempts.
func (DispatchArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{Queue: QueueNotifications, MaxAttempts: maxDispatchAttempts}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Notifier implements domain.LeadNotifier by enqueuing dispatch jobs.
type Notifier struct {
	client *Client
}

// NewNotifier creates a notifier backed by the given River client.
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) LeadCreated(ctx context.Context, lead domain.Lead) error {
	return n.enqueue(ctx, notify.LeadCreated(lead))
}

func (n *Notifier) LeadAssigned(ctx context.Context, lead domain.Lead, ispName string) error {
	return n.enqueue(ctx, notify.LeadAssigned(lead, ispName))
}

func (n *Notifier) StatusUpdated(ctx context.Context, lead domain.Lead, from, to domain.Status) error {
	return n.enqueue(ctx, notify.StatusUpdated(lead, from, to))
}

func (n *Notifier) enqueue(ctx context.Context, event notify.Event) error {
	if _, err := n.client.Insert(ctx, DispatchArgs{Event: event}, nil); err != nil {
		return fmt.Errorf("enqueuing %s notification: %w", event.Kind, err)
	}
	return nil
}
