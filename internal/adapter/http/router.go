package http

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/nettap/internal/adapter/metrics"
)

// RouterConfig holds the transport settings of the API.
type RouterConfig struct {
	ServiceName string
	Version     string
	// CORSOrigin is a comma-separated origin list; "*" allows any.
	CORSOrigin string
	// TrustProxy rewrites the client address from forwarding headers. Rate
	// limits key on that address, so leave it off unless a proxy sets them.
	TrustProxy bool
	// Metrics, when set, instruments requests and serves GET /metrics.
	Metrics *metrics.Metrics
}

// NewRouter builds the HTTP handler: middleware stack, API routes and docs.
func NewRouter(cfg RouterConfig, deps Deps) http.Handler {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "nettap"
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	if cfg.TrustProxy {
		router.Use(middleware.RealIP)
	}
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware(cfg.ServiceName, otelchi.WithChiRoutes(router)))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware)
	}
	router.Use(cors.Handler(corsOptions(cfg.CORSOrigin)))

	if cfg.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	humaCfg := huma.DefaultConfig("NetTap API", cfg.Version)
	humaCfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
	}
	api := humachi.New(router, humaCfg)
	Register(api, deps)

	return router
}

func corsOptions(origins string) cors.Options {
	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	return cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Accept"},
		ExposedHeaders: []string{"Retry-After", "X-Request-Id"},
		MaxAge:         300,
	}
}
