package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("CANCELLATION_REASON_MIN_LENGTH", "")
	t.Setenv("JWT_TTL_MINUTES", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, 1, cfg.Workflow.CancellationReasonMinLength)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:4173"}, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9090")
	t.Setenv("CANCELLATION_REASON_MIN_LENGTH", "10")
	t.Setenv("SUBMISSION_LOCK_TTL_SECONDS", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("APP_ENV", "prod")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 10, cfg.Workflow.CancellationReasonMinLength)
	assert.Equal(t, 5*time.Second, cfg.Workflow.SubmissionLockTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsProd())
}

func TestEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("BCRYPT_COST", "abc")
	assert.Equal(t, 12, envInt("BCRYPT_COST", 12))
}

func TestValidate_ProdNeedsRealSecret(t *testing.T) {
	cases := []struct {
		env    string
		secret string
		ok     bool
	}{
		{"dev", DefaultJWTSecret, true},
		{"dev", "", true},
		{"prod", DefaultJWTSecret, false},
		{"prod", "", false},
		{"prod", "   ", false},
		{"prod", "a-long-random-secret", true},
	}
	for _, c := range cases {
		cfg := Config{AppEnv: c.env, Auth: AuthConfig{JWTSecret: c.secret}}
		err := cfg.Validate()
		if c.ok {
			assert.NoError(t, err, "env=%s secret=%q", c.env, c.secret)
		} else {
			assert.Error(t, err, "env=%s secret=%q", c.env, c.secret)
		}
	}
}

func TestLoad_ProdWithoutSecretFailsValidation(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()

	assert.Equal(t, DefaultJWTSecret, cfg.Auth.JWTSecret)
	assert.Error(t, cfg.Validate())
}
