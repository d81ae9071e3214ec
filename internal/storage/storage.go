// Package storage selects and opens the configured persistence backend.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neomorfeo/nettap/internal/adapter/memory"
	"github.com/neomorfeo/nettap/internal/adapter/otel"
	"github.com/neomorfeo/nettap/internal/adapter/sheets"
	"github.com/neomorfeo/nettap/internal/adapter/sqlstore"
	"github.com/neomorfeo/nettap/internal/config"
	"github.com/neomorfeo/nettap/internal/domain"
	"github.com/neomorfeo/nettap/internal/seed"
)

// Store is an opened backend. Lead and tariff repositories are traced.
type Store struct {
	Type string

	Cities    domain.CityRepository
	Districts domain.DistrictRepository
	ISPs      domain.ISPRepository
	Tariffs   domain.TariffRepository
	Leads     domain.LeadRepository
	Users     domain.UserRepository

	ping  func(context.Context) error
	close func() error
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close releases the backend.
func (s *Store) Close() error { return s.close() }

// backend is what every adapter store exposes.
type backend interface {
	Ping(context.Context) error
	Close() error
}

// Open connects to the backend named by cfg.DatabaseType and seeds the
// reference data. The memory backend is always seeded; the others only
// when cfg.SeedData is set. Seeding never overwrites existing rows.
func Open(ctx context.Context, cfg config.Config, hasher domain.PasswordHasher) (*Store, error) {
	data, err := seed.Default(hasher)
	if err != nil {
		return nil, fmt.Errorf("building seed data: %w", err)
	}

	var store *Store
	switch cfg.DatabaseType {
	case config.DatabaseMemory:
		store = fromMemory(memory.NewSeeded(data))

	case config.DatabaseSQLite, config.DatabasePostgres:
		store, err = openSQL(ctx, cfg, data)

	case config.DatabaseSheets:
		store, err = openSheets(ctx, cfg, data)

	default:
		return nil, fmt.Errorf("unknown database type %q", cfg.DatabaseType)
	}
	if err != nil {
		return nil, err
	}

	store.Type = cfg.DatabaseType
	store.Leads = otel.NewTracingLeadRepository(store.Leads)
	store.Tariffs = otel.NewTracingTariffRepository(store.Tariffs)

	slog.InfoContext(ctx, "storage ready", "type", store.Type, "seeded", cfg.SeedData || cfg.DatabaseType == config.DatabaseMemory)
	return store, nil
}

func fromMemory(m *memory.Store) *Store {
	s := &Store{
		Cities:    m.Cities(),
		Districts: m.Districts(),
		ISPs:      m.ISPs(),
		Tariffs:   m.Tariffs(),
		Leads:     m.Leads(),
		Users:     m.Users(),
	}
	s.bind(m)
	return s
}

func openSQL(ctx context.Context, cfg config.Config, data seed.Data) (*Store, error) {
	dialect, dsn := sqlstore.DialectSQLite, cfg.DatabasePath
	if cfg.DatabaseType == config.DatabasePostgres {
		dialect, dsn = sqlstore.DialectPostgres, cfg.DatabaseURL
	}

	db, err := otel.OpenDB(dialect.Driver(), dsn)
	if err != nil {
		return nil, err
	}
	if dialect == sqlstore.DialectSQLite {
		if err := sqlstore.PrepareSQLite(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	sq, err := sqlstore.New(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	if cfg.SeedData {
		if err := sq.Seed(ctx, data); err != nil {
			sq.Close()
			return nil, fmt.Errorf("seeding %s: %w", dialect, err)
		}
	}

	s := &Store{
		Cities:    sq.Cities(),
		Districts: sq.Districts(),
		ISPs:      sq.ISPs(),
		Tariffs:   sq.Tariffs(),
		Leads:     sq.Leads(),
		Users:     sq.Users(),
	}
	s.bind(sq)
	return s, nil
}

func openSheets(ctx context.Context, cfg config.Config, data seed.Data) (*Store, error) {
	sh, err := sheets.Open(cfg.SheetsWorkbookPath)
	if err != nil {
		return nil, err
	}
	if cfg.SeedData {
		if err := sh.Seed(ctx, data); err != nil {
			return nil, fmt.Errorf("seeding workbook: %w", err)
		}
	}

	s := &Store{
		Cities:    sh.Cities(),
		Districts: sh.Districts(),
		ISPs:      sh.ISPs(),
		Tariffs:   sh.Tariffs(),
		Leads:     sh.Leads(),
		Users:     sh.Users(),
	}
	s.bind(sh)
	return s, nil
}

func (s *Store) bind(b backend) {
	s.ping = b.Ping
	s.close = b.Close
}
