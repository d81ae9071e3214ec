package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/nettap/internal/adapter/notify"
)

// Dispatcher delivers a rendered lead event.
type Dispatcher interface {
	Dispatch(ctx context.Context, event notify.Event) error
}

// NotificationWorker delivers queued lead events. A returned error makes
// River retry the job until its attempts run out.
type NotificationWorker struct {
	river.WorkerDefaults[DispatchArgs]
	dispatcher Dispatcher
}

// Work delivers a single notification.
func (w *NotificationWorker) Work(ctx context.Context, job *river.Job[DispatchArgs]) error {
	if err := w.dispatcher.Dispatch(ctx, job.Args.Event); err != nil {
		slog.WarnContext(ctx, "notification delivery failed",
			"kind", job.Args.Event.Kind,
			"lead_id", job.Args.LeadID,
			"job_id", job.ID,
			"attempt", job.Attempt,
			"error", err,
		)
		return err
	}
	slog.DebugContext(ctx, "notification delivered",
		"kind", job.Args.Event.Kind,
		"lead_id", job.Args.LeadID,
		"job_id", job.ID,
	)
	return nil
}
