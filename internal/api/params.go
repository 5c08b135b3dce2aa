package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// IDParam reads a UUID path parameter. On failure it writes a 400 and
// returns false.
func IDParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing "+name)
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid "+name)
		return "", false
	}
	return id.String(), true
}

// ValidUUID reports whether s parses as a UUID. Empty strings are invalid.
func ValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
