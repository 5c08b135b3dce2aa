package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"servicecenter/internal/auth"
)

type TokenVerifier interface {
	Verify(token string) (auth.Principal, error)
}

// AccountLookup returns the current principal for a staff id, or
// auth.ErrUnknownAccount / auth.ErrAccountDisabled.
type AccountLookup interface {
	ActivePrincipal(ctx context.Context, staffID string) (auth.Principal, error)
}

// BearerAuth validates `Authorization: Bearer <JWT>`, then re-reads the
// account so role, branch and active flag come from storage rather than
// from the token.
func BearerAuth(v TokenVerifier, accounts AccountLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}
			claimed, err := v.Verify(token)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}
			p, err := accounts.ActivePrincipal(r.Context(), claimed.StaffID)
			switch {
			case errors.Is(err, auth.ErrUnknownAccount):
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "account no longer exists")
				return
			case errors.Is(err, auth.ErrAccountDisabled):
				WriteError(w, http.StatusForbidden, "ACCOUNT_DISABLED", "account is disabled")
				return
			case err != nil:
				log.Printf("account lookup failed staff=%s err=%v", claimed.StaffID, err)
				WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole aborts with 403 unless the principal holds one of roles.
// It must run after BearerAuth.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
				return
			}
			if !p.Is(roles...) {
				WriteError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
