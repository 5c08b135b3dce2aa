package branch

import (
	"context"
	"errors"
	"log"
	"net/http"

	"servicecenter/internal/api"
)

type Store interface {
	List(ctx context.Context) ([]Branch, error)
	Get(ctx context.Context, id string) (*Branch, error)
	Create(ctx context.Context, in Input) (*Branch, error)
	Update(ctx context.Context, id string, in Input) (*Branch, error)
	Delete(ctx context.Context, id string) error
}

type Handlers struct {
	Branches Store
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Branches.List(r.Context())
	if err != nil {
		log.Printf("branch list failed err=%v", err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(w, r, "id")
	if !ok {
		return
	}
	b, err := h.Branches.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, "get", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	b, err := h.Branches.Create(r.Context(), in)
	if err != nil {
		writeStoreError(w, "create", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, b)
}

func (h Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(w, r, "id")
	if !ok {
		return
	}
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	b, err := h.Branches.Update(r.Context(), id, in)
	if err != nil {
		writeStoreError(w, "update", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.Branches.Delete(r.Context(), id); err != nil {
		writeStoreError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var in Input
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return Input{}, false
	}
	in, err := in.Normalize()
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return Input{}, false
	}
	return in, true
}

func writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "branch not found")
	case errors.Is(err, ErrInUse):
		api.WriteError(w, http.StatusConflict, "BRANCH_IN_USE", "branch still has tickets")
	default:
		log.Printf("branch %s failed err=%v", op, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
