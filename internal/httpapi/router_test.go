package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicecenter/internal/auth"
	"servicecenter/pkg/config"
)

func testConfig() config.Config {
	return config.Config{
		Auth:           config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, BcryptCost: 4},
		Workflow:       config.WorkflowConfig{CancellationReasonMinLength: 1},
		AllowedOrigins: []string{"http://localhost:5173"},
	}
}

type accounts map[string]auth.Principal

func (a accounts) ActivePrincipal(ctx context.Context, id string) (auth.Principal, error) {
	p, ok := a[id]
	if !ok {
		return auth.Principal{}, auth.ErrUnknownAccount
	}
	return p, nil
}

const staffID = "5f1d2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5b"

func TestRouter_Healthz(t *testing.T) {
	h := NewRouter(Dependencies{Cfg: testConfig()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouter_V1RequiresBearerToken(t *testing.T) {
	h := NewRouter(Dependencies{Cfg: testConfig()})

	for _, path := range []string{"/v1/tickets", "/v1/statuses", "/v1/auth/me"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouter_StatusesWithToken(t *testing.T) {
	cfg := testConfig()
	h := NewRouter(Dependencies{Cfg: cfg, Accounts: accounts{
		staffID: {StaffID: staffID, Role: auth.RoleTechnician},
	}})
	token, _, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Issue(auth.Principal{
		StaffID: staffID, Role: auth.RoleTechnician,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/statuses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Waiting for Customer Approval")
}

func TestRouter_StaffNeedsManager(t *testing.T) {
	cfg := testConfig()
	h := NewRouter(Dependencies{Cfg: cfg, Accounts: accounts{
		staffID: {StaffID: staffID, Role: auth.RoleReceptionist},
	}})
	// The token still claims manager; the stored role wins.
	token, _, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Issue(auth.Principal{
		StaffID: staffID, Role: auth.RoleManager,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/staff", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_DeletedAccountTokenRefused(t *testing.T) {
	cfg := testConfig()
	h := NewRouter(Dependencies{Cfg: cfg, Accounts: accounts{}})
	token, _, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Issue(auth.Principal{
		StaffID: staffID, Role: auth.RoleAdmin,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/statuses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
