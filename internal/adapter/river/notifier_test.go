package river_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	goriver "github.com/riverqueue/river"

	_ "modernc.org/sqlite"

	"github.com/neomorfeo/nettap/internal/adapter/notify"
	riveradapter "github.com/neomorfeo/nettap/internal/adapter/river"
	"github.com/neomorfeo/nettap/internal/domain"
)

type fakeDispatcher struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, e notify.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func (f *fakeDispatcher) received() []notify.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Event(nil), f.events...)
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := t.TempDir() + "/river_test.db"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		t.Fatalf("setting WAL: %v", err)
	}

	return db
}

func startClient(t *testing.T, dispatcher riveradapter.Dispatcher, kinds ...goriver.EventKind) (*riveradapter.Client, <-chan *goriver.Event) {
	t.Helper()
	ctx := context.Background()

	client, err := riveradapter.Setup(ctx, setupTestDB(t), dispatcher)
	if err != nil {
		t.Fatalf("river setup: %v", err)
	}

	// Subscribe before starting so no event is missed.
	events, cancel := client.Subscribe(kinds...)
	t.Cleanup(cancel)

	if err := client.Start(ctx); err != nil {
		t.Fatalf("river start: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			t.Errorf("river stop: %v", err)
		}
	})

	return client, events
}

func waitEvent(t *testing.T, events <-chan *goriver.Event) *goriver.Event {
	t.Helper()
	select {
	case event := <-events:
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job event")
		return nil
	}
}

func testLead() domain.Lead {
	lead := domain.NewLead("lead-42", domain.SourceDirect, domain.TariffSnapshot{
		TariffID:   "tariff-1",
		TariffName: "Fiber Premium",
		ISPName:    "CityNet",
	})
	lead.FullName = "Test Customer"
	lead.Phone = "+994501234567"
	return lead
}

func TestNotifier_LeadCreated_DispatchesEvent(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	client, events := startClient(t, dispatcher, goriver.EventKindJobCompleted)

	if err := riveradapter.NewNotifier(client).LeadCreated(context.Background(), testLead()); err != nil {
		t.Fatalf("LeadCreated: %v", err)
	}

	event := waitEvent(t, events)
	if event.Job.Kind != "notification.dispatch" {
		t.Errorf("job kind = %q, want %q", event.Job.Kind, "notification.dispatch")
	}
	got := dispatcher.received()
	if len(got) != 1 {
		t.Fatalf("dispatched %d events, want 1", len(got))
	}
	if got[0].Kind != notify.KindCreated || got[0].LeadID != "lead-42" || got[0].TariffName != "Fiber Premium" {
		t.Errorf("event = %+v", got[0])
	}
}

func TestNotifier_StatusUpdated_PreservesTransition(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	client, events := startClient(t, dispatcher, goriver.EventKindJobCompleted)

	lead := testLead()
	lead.Status = domain.StatusContacted
	if err := riveradapter.NewNotifier(client).StatusUpdated(context.Background(), lead, domain.StatusNew, domain.StatusContacted); err != nil {
		t.Fatalf("StatusUpdated: %v", err)
	}

	event := waitEvent(t, events)
	var args map[string]any
	if err := json.Unmarshal(event.Job.EncodedArgs, &args); err != nil {
		t.Fatalf("decoding args: %v", err)
	}
	for key, want := range map[string]string{"kind": "status_updated", "from": "new", "to": "contacted", "phone": "+994501234567"} {
		if args[key] != want {
			t.Errorf("args[%q] = %v, want %q", key, args[key], want)
		}
	}
}

func TestNotifier_FailedDeliveryIsRetryable(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("gateway down")}
	client, events := startClient(t, dispatcher, goriver.EventKindJobFailed)

	if err := riveradapter.NewNotifier(client).LeadAssigned(context.Background(), testLead(), "CityNet"); err != nil {
		t.Fatalf("LeadAssigned: %v", err)
	}

	event := waitEvent(t, events)
	if event.Job.MaxAttempts != 5 {
		t.Errorf("max attempts = %d, want 5", event.Job.MaxAttempts)
	}
	if event.Job.Attempt != 1 {
		t.Errorf("attempt = %d, want 1", event.Job.Attempt)
	}
	if len(event.Job.Errors) == 0 {
		t.Error("expected the delivery error to be recorded on the job")
	}
}
