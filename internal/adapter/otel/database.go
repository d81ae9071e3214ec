package otel

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// OpenDB opens driverName ("sqlite" or "postgres") with OpenTelemetry
// instrumentation: every statement is traced and pool stats are exported as
// metrics. Pragmas and pool sizing are left to the caller.
func OpenDB(driverName, dataSourceName string) (*sql.DB, error) {
	system, err := dbSystem(driverName)
	if err != nil {
		return nil, err
	}

	db, err := otelsql.Open(driverName, dataSourceName, otelsql.WithAttributes(system))
	if err != nil {
		return nil, fmt.Errorf("opening instrumented database: %w", err)
	}

	if _, err := otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(system)); err != nil {
		db.Close()
		return nil, fmt.Errorf("registering db stats metrics: %w", err)
	}

	return db, nil
}

func dbSystem(driverName string) (attribute.KeyValue, error) {
	switch driverName {
	case "sqlite":
		return semconv.DBSystemSqlite, nil
	case "postgres":
		return semconv.DBSystemPostgreSQL, nil
	}
	return attribute.KeyValue{}, fmt.Errorf("unsupported database driver %q", driverName)
}
