package river

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"
)

// QueueNotifications holds every lead notification job.
const QueueNotifications = "notifications"

const (
	notificationWorkers = 2
	dispatchTimeout     = 30 * time.Second
)

// Setup migrates River's tables in db and returns a client that works the
// notifications queue. The caller starts and stops the client.
func Setup(ctx context.Context, db *sql.DB, dispatcher Dispatcher) (*Client, error) {
	driver := riversqlite.New(db)

	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return nil, fmt.Errorf("creating river migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return nil, fmt.Errorf("running river migrations: %w", err)
	}
	if len(res.Versions) > 0 {
		slog.InfoContext(ctx, "queue schema migrated", "versions", len(res.Versions))
	}

	workers := river.NewWorkers()
	if err := river.AddWorkerSafely(workers, &NotificationWorker{dispatcher: dispatcher}); err != nil {
		return nil, fmt.Errorf("registering notification worker: %w", err)
	}

	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueNotifications: {MaxWorkers: notificationWorkers},
		},
		Workers:    workers,
		JobTimeout: dispatchTimeout,
		Logger:     slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, nil
}
