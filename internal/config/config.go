// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret signs tokens when JWT_SECRET is unset. Production
// configurations using it are reported invalid.
const DefaultJWTSecret = "nettap-development-secret-change-me"

// Database backends.
const (
	DatabaseMemory   = "memory"
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseSheets   = "sheets"
)

// Config is every setting the process reads at start-up.
type Config struct {
	Port        string
	Environment string
	Version     string

	DatabaseType       string
	DatabasePath       string
	DatabaseURL        string
	SheetsWorkbookPath string
	QueueDatabasePath  string
	SeedData           bool

	JWTSecret        string
	JWTRefreshSecret string
	JWTAccessTTL     time.Duration
	JWTRefreshTTL    time.Duration
	BcryptCost       int

	RedisURL string

	SendGridAPIKey     string
	EmailFrom          string
	EmailFromName      string
	SMSProvider        string
	PhoneDefaultRegion string

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigin     string
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool

	LogLevel  slog.Level
	LogFormat string
}

// Load reads a .env file when present and then the environment. It fails
// only on values that cannot be parsed; use Validate for semantic checks.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	p := &parser{}
	jwtSecret := envOrDefault("JWT_SECRET", DefaultJWTSecret)
	cfg := Config{
		Port:        envOrDefault("PORT", "8080"),
		Environment: envOrDefault("ENVIRONMENT", "development"),
		Version:     envOrDefault("APP_VERSION", "0.1.0"),

		DatabaseType:       strings.ToLower(envOrDefault("DATABASE_TYPE", DatabaseMemory)),
		DatabasePath:       envOrDefault("DATABASE_PATH", "nettap.db"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SheetsWorkbookPath: envOrDefault("SHEETS_WORKBOOK_PATH", "nettap.xlsx"),
		QueueDatabasePath:  envOrDefault("QUEUE_DATABASE_PATH", "nettap-queue.db"),
		SeedData:           p.bool("SEED_DATA", true),

		JWTSecret: jwtSecret,
		// A distinct default keeps refresh tokens unusable as access tokens.
		JWTRefreshSecret: envOrDefault("JWT_REFRESH_SECRET", jwtSecret+":refresh"),
		JWTAccessTTL:     p.duration("JWT_ACCESS_TTL", 15*time.Minute),
		JWTRefreshTTL:    p.duration("JWT_REFRESH_TTL", 7*24*time.Hour),
		BcryptCost:       p.int("BCRYPT_COST", 10),

		RedisURL: os.Getenv("REDIS_URL"),

		SendGridAPIKey:     os.Getenv("SENDGRID_API_KEY"),
		EmailFrom:          envOrDefault("EMAIL_FROM", "noreply@nettap.az"),
		EmailFromName:      envOrDefault("EMAIL_FROM_NAME", "NetTap"),
		SMSProvider:        strings.ToLower(envOrDefault("SMS_PROVIDER", "log")),
		PhoneDefaultRegion: strings.ToUpper(envOrDefault("PHONE_DEFAULT_REGION", "AZ")),

		RateLimitRPS:   p.float("RATE_LIMIT_RPS", 1),
		RateLimitBurst: p.int("RATE_LIMIT_BURST", 5),
		CORSOrigin:     envOrDefault("CORS_ORIGIN", "*"),
		TrustProxy:     p.bool("TRUST_PROXY", false),

		LogLevel:  p.level("LOG_LEVEL", slog.LevelInfo),
		LogFormat: strings.ToLower(envOrDefault("LOG_FORMAT", "json")),
	}
	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProduction reports whether the process runs in production.
func (c Config) IsProduction() bool { return c.Environment == "production" }

// Validate lists configuration problems. An empty result means valid.
func (c Config) Validate() []string {
	var problems []string
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		problems = append(problems, "JWT_SECRET must be set in production")
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		problems = append(problems, "JWT_REFRESH_SECRET must differ from JWT_SECRET")
	}
	switch c.DatabaseType {
	case DatabaseMemory:
	case DatabaseSQLite:
		if c.DatabasePath == "" {
			problems = append(problems, "DATABASE_PATH is required for sqlite")
		}
	case DatabasePostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for postgres")
		}
	case DatabaseSheets:
		if c.SheetsWorkbookPath == "" {
			problems = append(problems, "SHEETS_WORKBOOK_PATH is required for sheets")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown DATABASE_TYPE %q (use memory, sqlite, postgres or sheets)", c.DatabaseType))
	}
	if c.SMSProvider != "log" {
		problems = append(problems, fmt.Sprintf("unknown SMS_PROVIDER %q (use log)", c.SMSProvider))
	}
	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		problems = append(problems, "JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		problems = append(problems, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		problems = append(problems, fmt.Sprintf("unknown LOG_FORMAT %q (use json or text)", c.LogFormat))
	}
	return problems
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parser collects every malformed value instead of stopping at the first.
type parser struct {
	errs []error
}

func (p *parser) fail(key, raw string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: %w", key, raw, err))
}

func (p *parser) bool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) int(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) level(key string, fallback slog.Level) slog.Level {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return lvl
}
