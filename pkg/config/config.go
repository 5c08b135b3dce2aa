package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable outside prod.
const DefaultJWTSecret = "dev-secret-change-me"

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	Auth AuthConfig

	Workflow WorkflowConfig

	Redis RedisConfig

	AMQP AMQPConfig

	// AllowedOrigins is the CORS allowlist for the dashboard front end.
	AllowedOrigins []string

	Telemetry TelemetryConfig
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

type WorkflowConfig struct {
	// CancellationReasonMinLength is 1 for the plain dialog and 10 for the strict one.
	CancellationReasonMinLength int
	SubmissionLockTTL           time.Duration
}

type RedisConfig struct {
	// Addr empty means submissions are guarded in process memory.
	Addr     string
	Password string
	DB       int
}

type TelemetryConfig struct {
	ServiceName string
	// OTLPEndpoint empty disables trace export.
	OTLPEndpoint string
	OTLPInsecure bool
}

type AMQPConfig struct {
	// URL empty disables status event publishing.
	URL         string
	StatusQueue string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "servicecenter"),
			User:     env("DB_USER", "servicecenter"),
			Password: env("DB_PASSWORD", "servicecenter"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret:  env("JWT_SECRET", DefaultJWTSecret),
			TokenTTL:   time.Duration(envInt("JWT_TTL_MINUTES", 12*60)) * time.Minute,
			BcryptCost: envInt("BCRYPT_COST", 12),
		},
		Workflow: WorkflowConfig{
			CancellationReasonMinLength: envInt("CANCELLATION_REASON_MIN_LENGTH", 1),
			SubmissionLockTTL:           time.Duration(envInt("SUBMISSION_LOCK_TTL_SECONDS", 30)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		AMQP: AMQPConfig{
			URL:         os.Getenv("AMQP_URL"),
			StatusQueue: env("AMQP_STATUS_QUEUE", "ticket.status_changed"),
		},
		AllowedOrigins: envList("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),
		Telemetry: TelemetryConfig{
			ServiceName:  env("OTEL_SERVICE_NAME", "servicecenter-api"),
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			OTLPInsecure: os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
		},
	}
}

func (c Config) IsProd() bool {
	return c.AppEnv == "prod"
}

// Validate reports settings that must not reach a production deploy.
func (c Config) Validate() error {
	if !c.IsProd() {
		return nil
	}
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	if secret == "" || secret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be set to a non-default value when APP_ENV=prod")
	}
	return nil
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
