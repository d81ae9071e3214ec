package config

import (
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

var keys = []string{
	"PORT", "ENVIRONMENT", "APP_VERSION", "DATABASE_TYPE", "DATABASE_PATH", "DATABASE_URL",
	"SHEETS_WORKBOOK_PATH", "QUEUE_DATABASE_PATH", "SEED_DATA", "JWT_SECRET", "JWT_REFRESH_SECRET",
	"JWT_ACCESS_TTL", "JWT_REFRESH_TTL", "BCRYPT_COST", "REDIS_URL", "SENDGRID_API_KEY", "EMAIL_FROM",
	"EMAIL_FROM_NAME", "SMS_PROVIDER", "PHONE_DEFAULT_REGION", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"CORS_ORIGIN", "TRUST_PROXY", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every key and runs in an empty directory so no .env is read.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Environment != "development" || cfg.Version != "0.1.0" {
		t.Errorf("server settings = %q %q %q", cfg.Port, cfg.Environment, cfg.Version)
	}
	if cfg.DatabaseType != DatabaseMemory || !cfg.SeedData {
		t.Errorf("database = %q seed=%v", cfg.DatabaseType, cfg.SeedData)
	}
	if cfg.JWTAccessTTL != 15*time.Minute || cfg.JWTRefreshTTL != 168*time.Hour {
		t.Errorf("ttl = %v / %v", cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	}
	if cfg.JWTRefreshSecret == cfg.JWTSecret {
		t.Error("refresh secret should be derived, not equal to the access secret")
	}
	if cfg.RateLimitRPS != 1 || cfg.RateLimitBurst != 5 {
		t.Errorf("rate limit = %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.TrustProxy {
		t.Error("forwarding headers must not be trusted by default")
	}
	if cfg.PhoneDefaultRegion != "AZ" || cfg.LogLevel != slog.LevelInfo {
		t.Errorf("region = %q level = %v", cfg.PhoneDefaultRegion, cfg.LogLevel)
	}
	if problems := cfg.Validate(); len(problems) != 0 {
		t.Errorf("default config should be valid, got %v", problems)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_TYPE", "SQLite")
	t.Setenv("SEED_DATA", "false")
	t.Setenv("JWT_ACCESS_TTL", "30m")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PHONE_DEFAULT_REGION", "tr")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseType != DatabaseSQLite || cfg.SeedData {
		t.Errorf("database = %q seed=%v", cfg.DatabaseType, cfg.SeedData)
	}
	if cfg.JWTAccessTTL != 30*time.Minute || cfg.BcryptCost != 12 || cfg.RateLimitRPS != 2.5 {
		t.Errorf("parsed = %v %d %v", cfg.JWTAccessTTL, cfg.BcryptCost, cfg.RateLimitRPS)
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.PhoneDefaultRegion != "TR" {
		t.Errorf("level = %v region = %q", cfg.LogLevel, cfg.PhoneDefaultRegion)
	}
	if !cfg.TrustProxy {
		t.Error("TRUST_PROXY=true should be honoured")
	}
}

func TestLoad_ReportsEveryMalformedValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEED_DATA", "maybe")
	t.Setenv("JWT_REFRESH_TTL", "a week")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, key := range []string{"SEED_DATA", "JWT_REFRESH_TTL"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is set, even to "".
	os.Unsetenv("APP_VERSION")
	if err := writeFile(".env", "APP_VERSION=9.9.9\n"); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != "9.9.9" {
		t.Errorf("Version = %q, want value from .env", cfg.Version)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Environment:      "development",
			DatabaseType:     DatabaseMemory,
			JWTSecret:        "a",
			JWTRefreshSecret: "b",
			JWTAccessTTL:     time.Minute,
			JWTRefreshTTL:    time.Hour,
			SMSProvider:      "log",
			RateLimitRPS:     1,
			RateLimitBurst:   1,
			LogFormat:        "json",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"production default secret", func(c *Config) { c.Environment = "production"; c.JWTSecret = DefaultJWTSecret }, "JWT_SECRET"},
		{"equal secrets", func(c *Config) { c.JWTRefreshSecret = c.JWTSecret }, "JWT_REFRESH_SECRET"},
		{"postgres without url", func(c *Config) { c.DatabaseType = DatabasePostgres }, "DATABASE_URL"},
		{"sheets without path", func(c *Config) { c.DatabaseType = DatabaseSheets }, "SHEETS_WORKBOOK_PATH"},
		{"unknown backend", func(c *Config) { c.DatabaseType = "mongo" }, "DATABASE_TYPE"},
		{"unknown sms provider", func(c *Config) { c.SMSProvider = "twilio" }, "SMS_PROVIDER"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			problems := cfg.Validate()
			if len(problems) != 1 || !strings.Contains(problems[0], tt.want) {
				t.Errorf("problems = %v, want one mentioning %s", problems, tt.want)
			}
		})
	}

	if problems := base().Validate(); len(problems) != 0 {
		t.Errorf("base config problems = %v", problems)
	}
}

func writeFile(name, content string) error {
	return os.WriteFile(name, []byte(content), 0o600)
}
