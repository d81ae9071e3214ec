package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neomorfeo/nettap/internal/adapter/auth"
	"github.com/neomorfeo/nettap/internal/adapter/fsm"
	"github.com/neomorfeo/nettap/internal/adapter/memory"
	"github.com/neomorfeo/nettap/internal/adapter/metrics"
	"github.com/neomorfeo/nettap/internal/adapter/notify"
	"github.com/neomorfeo/nettap/internal/adapter/otel"
	"github.com/neomorfeo/nettap/internal/adapter/redis"
	"github.com/neomorfeo/nettap/internal/adapter/river"
	"github.com/neomorfeo/nettap/internal/adapter/sqlstore"
	"github.com/neomorfeo/nettap/internal/app"
	"github.com/neomorfeo/nettap/internal/config"
	"github.com/neomorfeo/nettap/internal/domain"
	"github.com/neomorfeo/nettap/internal/storage"

	handler "github.com/neomorfeo/nettap/internal/adapter/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)

	problems := cfg.Validate()
	for _, p := range problems {
		slog.Warn("configuration problem", "problem", p)
	}

	ctx := context.Background()

	// --- Observability ---
	otelCfg := otel.ConfigFromEnv()
	otelCfg.ServiceVersion = cfg.Version
	providers, err := otel.Setup(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()
	m := metrics.New()

	// --- Adapters (out) ---
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	store, err := storage.Open(ctx, cfg, hasher)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer store.Close()

	issuer, err := auth.NewJWTIssuer(auth.JWTConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.JWTAccessTTL,
		RefreshTTL:    cfg.JWTRefreshTTL,
		Issuer:        "nettap",
	})
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	revocations, closeRevocations, err := openRevocations(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer closeRevocations()

	dispatcher := notify.NewDispatcher(
		notify.NewLogSMSProvider(logger, cfg.EmailFromName),
		emailProvider(logger, cfg),
		m,
		logger,
	)

	queueDB, err := otel.OpenDB("sqlite", cfg.QueueDatabasePath)
	if err != nil {
		return fmt.Errorf("queue database: %w", err)
	}
	defer queueDB.Close()
	riverClient, err := startQueue(ctx, queueDB, dispatcher)
	if err != nil {
		return err
	}

	notifier := otel.NewTracingNotifier(m.WrapNotifier(river.NewNotifier(riverClient)))

	// --- Application ---
	catalog := app.NewCatalogService(store.Cities, store.Districts, store.ISPs, store.Tariffs)
	leads := app.NewLeadService(app.LeadDeps{
		Leads:       store.Leads,
		Cities:      store.Cities,
		Districts:   store.Districts,
		ISPs:        store.ISPs,
		Catalog:     catalog,
		Validator:   fsm.New(),
		Notifier:    notifier,
		PhoneRegion: cfg.PhoneDefaultRegion,
	})
	authSvc := app.NewAuthService(store.Users, hasher, issuer, revocations)
	admin := app.NewAdminService(store.ISPs, store.Tariffs, store.Districts, store.Users, hasher)

	// --- Adapters (in) ---
	router := handler.NewRouter(handler.RouterConfig{
		ServiceName: otelCfg.ServiceName,
		Version:     cfg.Version,
		CORSOrigin:  cfg.CORSOrigin,
		TrustProxy:  cfg.TrustProxy,
		Metrics:     m,
	}, handler.Deps{
		Catalog: catalog,
		Leads:   leads,
		Auth:    authSvc,
		Admin:   admin,
		Health: handler.HealthInfo{
			Version:      cfg.Version,
			Environment:  cfg.Environment,
			DatabaseType: store.Type,
			Database:     store,
			ConfigErrors: problems,
		},
		LeadLimiter:  handler.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		LoginLimiter: handler.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("nettap listening", "port", cfg.Port, "docs", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-done:
	case err := <-serverErr:
		_ = riverClient.Stop(ctx)
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
	if err := riverClient.Stop(shutdownCtx); err != nil {
		slog.Error("queue shutdown", "error", err)
	}

	slog.Info("stopped")
	return nil
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// openRevocations uses Redis when configured so that revoked refresh
// tokens are shared between instances.
func openRevocations(ctx context.Context, url string) (domain.TokenRevocations, func(), error) {
	if url == "" {
		return memory.NewTokenRevocations(), func() {}, nil
	}
	client, err := redis.Connect(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	return redis.NewTokenRevocations(client), func() { _ = client.Close() }, nil
}

func emailProvider(logger *slog.Logger, cfg config.Config) notify.EmailProvider {
	if cfg.SendGridAPIKey == "" {
		return notify.NewLogEmailProvider(logger, cfg.EmailFrom)
	}
	return notify.NewSendGridProvider(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName)
}

// startQueue prepares the job database and starts the notification workers.
func startQueue(ctx context.Context, db *sql.DB, dispatcher river.Dispatcher) (*river.Client, error) {
	if err := sqlstore.PrepareSQLite(db); err != nil {
		return nil, fmt.Errorf("queue database: %w", err)
	}
	client, err := river.Setup(ctx, db, dispatcher)
	if err != nil {
		return nil, fmt.Errorf("queue: %w", err)
	}
	if err := client.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting queue: %w", err)
	}
	return client, nil
}
