package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// DatabaseHealth reports the storage backend.
type DatabaseHealth struct {
	Type   string `json:"type"`
	Status string `json:"status" enum:"connected,disconnected"`
}

// ConfigHealth reports configuration problems found at start-up.
type ConfigHealth struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status      string         `json:"status" enum:"healthy,degraded"`
	Timestamp   time.Time      `json:"timestamp"`
	Version     string         `json:"version"`
	Environment string         `json:"environment"`
	Database    DatabaseHealth `json:"database"`
	Config      ConfigHealth   `json:"config"`
}

type healthOutput struct {
	Status int
	Body   Envelope[HealthResponse]
}

const pingTimeout = 2 * time.Second

func registerHealth(api huma.API, info HealthInfo) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Service health",
		Description: "Returns 503 when the database is unreachable or the configuration is invalid.",
		Tags:        []string{"Health"},
	}, func(ctx context.Context, _ *struct{}) (*healthOutput, error) {
		db := DatabaseHealth{Type: info.DatabaseType, Status: "connected"}
		if info.Database != nil {
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := info.Database.Ping(pctx)
			cancel()
			if err != nil {
				db.Status = "disconnected"
			}
		}

		errs := info.ConfigErrors
		if errs == nil {
			errs = []string{}
		}
		resp := HealthResponse{
			Status:      "healthy",
			Timestamp:   time.Now().UTC(),
			Version:     info.Version,
			Environment: info.Environment,
			Database:    db,
			Config:      ConfigHealth{Valid: len(errs) == 0, Errors: errs},
		}

		status := http.StatusOK
		if db.Status != "connected" || !resp.Config.Valid {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		return &healthOutput{
			Status: status,
			Body:   Envelope[HealthResponse]{Success: status == http.StatusOK, Data: resp},
		}, nil
	})
}
