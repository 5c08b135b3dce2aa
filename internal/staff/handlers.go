package staff

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"servicecenter/internal/api"
	"servicecenter/internal/auth"
)

type Store interface {
	List(ctx context.Context, f Filter) ([]Staff, error)
	Get(ctx context.Context, id string) (*Staff, error)
	Create(ctx context.Context, in Input, passwordHash string) (*Staff, error)
	Update(ctx context.Context, id string, in Input, passwordHash string) (*Staff, error)
	Delete(ctx context.Context, id string) error
}

type Handlers struct {
	Staff      Store
	BcryptCost int
}

// List supports ?role= and ?branchId= so assignment pickers can ask for the
// technicians of one branch.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	var f Filter
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := auth.ParseRole(raw)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid role")
			return
		}
		f.Role = role
	}
	if raw := r.URL.Query().Get("branchId"); raw != "" {
		if !api.ValidUUID(raw) {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid branchId")
			return
		}
		f.BranchID = raw
	}

	items, err := h.Staff.List(r.Context(), f)
	if err != nil {
		writeStoreError(w, "list", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(w, r, "id")
	if !ok {
		return
	}
	s, err := h.Staff.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, "get", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, s)
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r, true)
	if !ok {
		return
	}
	hash, err := auth.HashPassword(in.Password, h.BcryptCost)
	if err != nil {
		writeStoreError(w, "hash", err)
		return
	}
	s, err := h.Staff.Create(r.Context(), in, hash)
	if err != nil {
		writeStoreError(w, "create", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, s)
}

func (h Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(w, r, "id")
	if !ok {
		return
	}
	in, ok := h.decodeInput(w, r, false)
	if !ok {
		return
	}
	p, _ := api.PrincipalFromContext(r.Context())
	if p.StaffID == id && !in.IsActive() {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "cannot deactivate yourself")
		return
	}
	if !h.authorizeTarget(w, r, p, id) {
		return
	}

	hash := ""
	if in.Password != "" {
		var err error
		if hash, err = auth.HashPassword(in.Password, h.BcryptCost); err != nil {
			writeStoreError(w, "hash", err)
			return
		}
	}
	s, err := h.Staff.Update(r.Context(), id, in, hash)
	if err != nil {
		writeStoreError(w, "update", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, s)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(w, r, "id")
	if !ok {
		return
	}
	p, _ := api.PrincipalFromContext(r.Context())
	if p.StaffID == id {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "cannot delete yourself")
		return
	}
	if !h.authorizeTarget(w, r, p, id) {
		return
	}
	if err := h.Staff.Delete(r.Context(), id); err != nil {
		writeStoreError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authorizeTarget loads the account being changed. Managers may only touch
// non-admin staff of their own branch.
func (h Handlers) authorizeTarget(w http.ResponseWriter, r *http.Request, p auth.Principal, id string) bool {
	target, err := h.Staff.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, "get", err)
		return false
	}
	if p.Is(auth.RoleAdmin) {
		return true
	}
	if target.Role == auth.RoleAdmin || p.BranchID == "" || target.BranchID != p.BranchID {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "managers can only change staff of their own branch")
		return false
	}
	return true
}

func (h Handlers) decodeInput(w http.ResponseWriter, r *http.Request, creating bool) (Input, bool) {
	var in Input
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return Input{}, false
	}

	// Managers run their own branch; only admins hand out the admin role.
	p, _ := api.PrincipalFromContext(r.Context())
	if !p.Is(auth.RoleAdmin) {
		if strings.EqualFold(strings.TrimSpace(in.Role), string(auth.RoleAdmin)) {
			api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "only admins can grant the admin role")
			return Input{}, false
		}
		switch branch := strings.TrimSpace(in.BranchID); {
		case p.BranchID == "":
			api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "you are not assigned to a branch")
			return Input{}, false
		case branch == "":
			in.BranchID = p.BranchID
		case branch != p.BranchID:
			api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "managers can only staff their own branch")
			return Input{}, false
		}
	}

	in, err := in.Normalize(creating)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return Input{}, false
	}
	if in.BranchID != "" && !api.ValidUUID(in.BranchID) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid branchId")
		return Input{}, false
	}
	return in, true
}

func writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "staff not found")
	case errors.Is(err, ErrEmailTaken):
		api.WriteError(w, http.StatusConflict, "EMAIL_TAKEN", "email already registered")
	default:
		log.Printf("staff %s failed err=%v", op, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
