// Package http exposes the application services as a JSON API.
package http

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/nettap/internal/app"
)

// Pinger checks a backend dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthInfo is what the health endpoint reports besides liveness.
type HealthInfo struct {
	Version      string
	Environment  string
	DatabaseType string
	Database     Pinger
	// ConfigErrors are the problems found when the configuration was loaded.
	ConfigErrors []string
}

// Deps are the services the API is built on.
type Deps struct {
	Catalog *app.CatalogService
	Leads   *app.LeadService
	Auth    *app.AuthService
	Admin   *app.AdminService
	Health  HealthInfo

	// LeadLimiter guards lead submission, LoginLimiter guards login.
	// Nil disables the limit.
	LeadLimiter  *RateLimiter
	LoginLimiter *RateLimiter
}

// Register adds every API route to api.
func Register(api huma.API, d Deps) {
	installErrorModel()

	registerHealth(api, d.Health)
	registerCatalog(api, d.Catalog)
	registerLeads(api, d)
	registerAuth(api, d.Auth, d.LoginLimiter)
	registerAdmin(api, d.Admin, d.Auth)
}

// limited prepends the rate limiter when one is configured.
func limited(api huma.API, rl *RateLimiter, mws ...func(huma.Context, func(huma.Context))) huma.Middlewares {
	if rl == nil {
		return mws
	}
	return append(huma.Middlewares{rl.Middleware(api)}, mws...)
}

var bearerAuth = []map[string][]string{{"bearer": {}}}
