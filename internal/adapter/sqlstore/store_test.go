package sqlstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/neomorfeo/nettap/internal/adapter/sqlstore"
	"github.com/neomorfeo/nettap/internal/seed"
	"github.com/neomorfeo/nettap/internal/storage/storagetest"
)

// newTestStore creates a migrated SQLite store in a temp directory.
func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.Open(sqlstore.DialectSQLite, filepath.Join(t.TempDir(), "nettap.db"))
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T, data seed.Data) storagetest.Repos {
		store := newTestStore(t)
		if err := store.Seed(context.Background(), data); err != nil {
			t.Fatalf("seeding: %v", err)
		}
		return storagetest.Repos{
			Cities:    store.Cities(),
			Districts: store.Districts(),
			ISPs:      store.ISPs(),
			Tariffs:   store.Tariffs(),
			Leads:     store.Leads(),
			Users:     store.Users(),
		}
	})
}

func TestSeed_IsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	data := storagetest.SeedData(t)

	if err := store.Seed(ctx, data); err != nil {
		t.Fatalf("first seed: %v", err)
	}

	isp, err := store.ISPs().FindByID(ctx, seed.ISPNaxtel)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	isp.PriorityScore = 1
	if err := store.ISPs().Update(ctx, isp); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := store.Seed(ctx, data); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	got, err := store.ISPs().FindByID(ctx, seed.ISPNaxtel)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.PriorityScore != 1 {
		t.Errorf("PriorityScore = %d, reseeding must not overwrite edits", got.PriorityScore)
	}

	tariff, err := store.Tariffs().FindByID(ctx, seed.TariffMobile)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(tariff.AvailableDistrictIDs) != 6 {
		t.Errorf("got %d districts, want 6", len(tariff.AvailableDistrictIDs))
	}
}

func TestReopen_KeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nettap.db")
	ctx := context.Background()

	store, err := sqlstore.Open(sqlstore.DialectSQLite, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Seed(ctx, storagetest.SeedData(t)); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	store.Close()

	reopened, err := sqlstore.Open(sqlstore.DialectSQLite, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if err := reopened.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	cities, err := reopened.Cities().FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(cities) != 3 {
		t.Errorf("got %d cities after reopen, want 3", len(cities))
	}
}

func TestNew_RejectsUnknownDialect(t *testing.T) {
	store := newTestStore(t)
	if _, err := sqlstore.New(store.DB(), "mysql"); err == nil {
		t.Error("expected error for unsupported dialect")
	}
}
