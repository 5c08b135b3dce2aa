// Package session exposes login and the current-user lookup the dashboard
// uses to bootstrap its auth state and role-based navigation.
package session

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"servicecenter/internal/api"
	"servicecenter/internal/auth"
	"servicecenter/internal/staff"
)

type StaffFinder interface {
	FindByEmail(ctx context.Context, email string) (*staff.Staff, error)
	Get(ctx context.Context, id string) (*staff.Staff, error)
}

type TokenIssuer interface {
	Issue(p auth.Principal) (string, time.Time, error)
}

type Handlers struct {
	Staff  StaffFinder
	Tokens TokenIssuer
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Staff     *staff.Staff `json:"staff"`
}

func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "email and password are required")
		return
	}

	s, err := h.Staff.FindByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, staff.ErrNotFound) {
		log.Printf("login lookup failed err=%v", err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if s == nil || !auth.VerifyPassword(s.PasswordHash, req.Password) {
		api.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
		return
	}
	if !s.Active {
		api.WriteError(w, http.StatusForbidden, "ACCOUNT_DISABLED", "account is disabled")
		return
	}

	token, exp, err := h.Tokens.Issue(s.Principal())
	if err != nil {
		log.Printf("token issue failed staff=%s err=%v", s.ID, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	log.Printf("login staff=%s role=%s", s.ID, s.Role)

	api.WriteJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: exp, Staff: s})
}

// Me returns the caller's staff record. BearerAuth has already refused
// tokens of deleted or disabled accounts; the checks here cover the race
// between that lookup and this one.
func (h Handlers) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := api.PrincipalFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	s, err := h.Staff.Get(r.Context(), p.StaffID)
	if err != nil {
		if errors.Is(err, staff.ErrNotFound) {
			api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "account no longer exists")
			return
		}
		log.Printf("me lookup failed staff=%s err=%v", p.StaffID, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if !s.Active {
		api.WriteError(w, http.StatusForbidden, "ACCOUNT_DISABLED", "account is disabled")
		return
	}
	api.WriteJSON(w, http.StatusOK, s)
}
