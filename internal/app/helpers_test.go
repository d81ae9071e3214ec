package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/neomorfeo/nettap/internal/adapter/fsm"
	"github.com/neomorfeo/nettap/internal/adapter/memory"
	"github.com/neomorfeo/nettap/internal/app"
	"github.com/neomorfeo/nettap/internal/domain"
	"github.com/neomorfeo/nettap/internal/seed"
	"github.com/neomorfeo/nettap/internal/storage/storagetest"
)

// --- Mocks ---

type notification struct {
	kind    string
	lead    domain.Lead
	ispName string
	from    domain.Status
	to      domain.Status
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
	err    error
}

func (n *recordingNotifier) record(e notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) LeadCreated(_ context.Context, lead domain.Lead) error {
	return n.record(notification{kind: "created", lead: lead})
}

func (n *recordingNotifier) LeadAssigned(_ context.Context, lead domain.Lead, ispName string) error {
	return n.record(notification{kind: "assigned", lead: lead, ispName: ispName})
}

func (n *recordingNotifier) StatusUpdated(_ context.Context, lead domain.Lead, from, to domain.Status) error {
	return n.record(notification{kind: "status", lead: lead, from: from, to: to})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.events...)
}

// --- Fixture ---

type fixture struct {
	store    *memory.Store
	catalog  *app.CatalogService
	leads    *app.LeadService
	admin    *app.AdminService
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, storagetest.SeedData(t))
}

func newFixtureWith(t *testing.T, data seed.Data) *fixture {
	t.Helper()

	store := memory.NewSeeded(data)
	catalog := app.NewCatalogService(store.Cities(), store.Districts(), store.ISPs(), store.Tariffs())
	notifier := &recordingNotifier{}
	leads := app.NewLeadService(app.LeadDeps{
		Leads:     store.Leads(),
		Cities:    store.Cities(),
		Districts: store.Districts(),
		ISPs:      store.ISPs(),
		Catalog:   catalog,
		Validator: fsm.New(),
		Notifier:  notifier,
	})
	admin := app.NewAdminService(store.ISPs(), store.Tariffs(), store.Districts(), store.Users(), storagetest.PlainHasher{})

	return &fixture{store: store, catalog: catalog, leads: leads, admin: admin, notifier: notifier}
}

func validLeadInput() app.CreateLeadInput {
	return app.CreateLeadInput{
		FullName:   "Jane",
		Phone:      "+994501234567",
		CityID:     seed.CityBaku,
		DistrictID: seed.DistrictNasimi,
		TariffID:   seed.TariffFiberPremium,
	}
}

func (f *fixture) mustCreateLead(t *testing.T) domain.Lead {
	t.Helper()
	lead, err := f.leads.Create(context.Background(), validLeadInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return lead
}

func assertKind(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}
