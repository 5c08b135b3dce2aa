package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"servicecenter/internal/auth"
)

type verifierFunc func(string) (auth.Principal, error)

func (f verifierFunc) Verify(token string) (auth.Principal, error) { return f(token) }

type accountsFunc func(ctx context.Context, staffID string) (auth.Principal, error)

func (f accountsFunc) ActivePrincipal(ctx context.Context, staffID string) (auth.Principal, error) {
	return f(ctx, staffID)
}

var liveAccounts = accountsFunc(func(ctx context.Context, id string) (auth.Principal, error) {
	return auth.Principal{StaffID: id, Role: auth.RoleManager}, nil
})

func TestBearerAuth(t *testing.T) {
	v := verifierFunc(func(tok string) (auth.Principal, error) {
		if tok == "good" {
			return auth.Principal{StaffID: "s-1", Role: auth.RoleManager}, nil
		}
		return auth.Principal{}, errors.New("bad")
	})

	var seen auth.Principal
	h := BearerAuth(v, liveAccounts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer", http.StatusUnauthorized},
		{"Basic good", http.StatusUnauthorized},
		{"Bearer bad", http.StatusUnauthorized},
		{"bearer good", http.StatusNoContent},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if c.header != "" {
			req.Header.Set("Authorization", c.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, c.want, rec.Code, "header=%q", c.header)
	}
	assert.Equal(t, "s-1", seen.StaffID)
}

func TestBearerAuth_UsesStoredAccount(t *testing.T) {
	v := verifierFunc(func(tok string) (auth.Principal, error) {
		return auth.Principal{StaffID: tok, Role: auth.RoleAdmin}, nil
	})
	accounts := accountsFunc(func(ctx context.Context, id string) (auth.Principal, error) {
		switch id {
		case "disabled":
			return auth.Principal{}, auth.ErrAccountDisabled
		case "deleted":
			return auth.Principal{}, auth.ErrUnknownAccount
		case "broken":
			return auth.Principal{}, errors.New("db down")
		}
		return auth.Principal{StaffID: id, Role: auth.RoleTechnician, BranchID: "b-2"}, nil
	})

	var seen auth.Principal
	h := BearerAuth(v, accounts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := map[string]int{
		"disabled": http.StatusForbidden,
		"deleted":  http.StatusUnauthorized,
		"broken":   http.StatusInternalServerError,
		"demoted":  http.StatusNoContent,
	}
	for token, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "token=%s", token)
	}

	// The role claimed in the token is replaced by the stored one.
	assert.Equal(t, auth.Principal{StaffID: "demoted", Role: auth.RoleTechnician, BranchID: "b-2"}, seen)
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(auth.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = req.WithContext(WithPrincipal(req.Context(), auth.Principal{StaffID: "s", Role: auth.RoleTechnician}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = req.WithContext(WithPrincipal(req.Context(), auth.Principal{StaffID: "s", Role: auth.RoleAdmin}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	h := CORSMiddleware(CORSOptions{AllowedOrigins: []string{"http://localhost:5173"}})(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodOptions, "/v1/tickets", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/v1/tickets", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
