// Package sqlstore implements the repositories on SQLite or PostgreSQL.
// Queries are written with ? placeholders and rebound for PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/neomorfeo/nettap/internal/seed"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Dialect selects SQL flavour and driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Driver is the database/sql driver name for the dialect.
func (d Dialect) Driver() string { return string(d) }

// Store owns the database handle shared by every repository.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open opens a database, runs migrations, and returns a ready store.
func Open(dialect Dialect, dsn string) (*Store, error) {
	db, err := sql.Open(dialect.Driver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dialect == DialectSQLite {
		if err := PrepareSQLite(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	s, err := New(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// PrepareSQLite applies the connection settings SQLite needs: one
// connection, WAL journaling and enforced foreign keys.
func PrepareSQLite(db *sql.DB) error {
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	return nil
}

// New wraps an existing connection and runs migrations. Use this when the
// *sql.DB has been pre-configured, for example with otelsql instrumentation.
func New(db *sql.DB, dialect Dialect) (*Store, error) {
	switch dialect {
	case DialectSQLite, DialectPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	if err := runMigrations(db, dialect); err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: dialect}, nil
}

func runMigrations(db *sql.DB, dialect Dialect) error {
	goose.SetBaseFS(migrations)

	gooseDialect := "sqlite3"
	if dialect == DialectPostgres {
		gooseDialect = "postgres"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// DB returns the underlying connection.
func (s *Store) DB() *sql.DB { return s.db }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Cities() *CityRepository         { return &CityRepository{s: s} }
func (s *Store) Districts() *DistrictRepository { return &DistrictRepository{s: s} }
func (s *Store) ISPs() *ISPRepository           { return &ISPRepository{s: s} }
func (s *Store) Tariffs() *TariffRepository     { return &TariffRepository{s: s} }
func (s *Store) Leads() *LeadRepository         { return &LeadRepository{s: s, now: utcNow} }
func (s *Store) Users() *UserRepository         { return &UserRepository{s: s} }

func utcNow() time.Time { return time.Now().UTC() }

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// Seed inserts the reference data, leaving rows that already exist alone.
func (s *Store) Seed(ctx context.Context, data seed.Data) error {
	const insertIgnore = " ON CONFLICT DO NOTHING"

	for _, c := range data.Cities {
		if _, err := s.exec(ctx, insertCity+insertIgnore, cityArgs(c)...); err != nil {
			return fmt.Errorf("seeding city %s: %w", c.ID, err)
		}
	}
	for _, d := range data.Districts {
		if _, err := s.exec(ctx, insertDistrict+insertIgnore, districtArgs(d)...); err != nil {
			return fmt.Errorf("seeding district %s: %w", d.ID, err)
		}
	}
	for _, isp := range data.ISPs {
		if _, err := s.exec(ctx, insertISP+insertIgnore, ispArgs(isp)...); err != nil {
			return fmt.Errorf("seeding isp %s: %w", isp.ID, err)
		}
	}
	for _, t := range data.Tariffs {
		res, err := s.exec(ctx, insertTariff+insertIgnore, tariffArgs(t)...)
		if err != nil {
			return fmt.Errorf("seeding tariff %s: %w", t.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		for _, d := range t.AvailableDistrictIDs {
			if _, err := s.exec(ctx, insertTariffDistrict+insertIgnore, t.ID, d); err != nil {
				return fmt.Errorf("seeding tariff %s districts: %w", t.ID, err)
			}
		}
	}
	for _, u := range data.Users {
		if _, err := s.exec(ctx, insertUser+insertIgnore, userArgs(u)...); err != nil {
			return fmt.Errorf("seeding user %s: %w", u.ID, err)
		}
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// timeFormat is fixed-width so text comparison orders chronologically.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// boolInt stores booleans as 0/1 so one schema serves both dialects.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// isUniqueViolation checks for a UNIQUE constraint violation on either backend.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
