package customer

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"servicecenter/internal/api"
)

type Store interface {
	List(ctx context.Context, query string, limit int) ([]Customer, error)
	Get(ctx context.Context, id string) (*Customer, error)
	Create(ctx context.Context, in Input) (*Customer, error)
	Update(ctx context.Context, id string, in Input) (*Customer, error)
	Delete(ctx context.Context, id string) error
}

type Handlers struct {
	Customers Store
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.Customers.List(r.Context(), r.URL.Query().Get("q"), limit)
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
	c, err := h.Customers.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, "get", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, c)
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	c, err := h.Customers.Create(r.Context(), in)
	if err != nil {
		writeStoreError(w, "create", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, c)
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
	c, err := h.Customers.Update(r.Context(), id, in)
	if err != nil {
		writeStoreError(w, "update", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, c)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.Customers.Delete(r.Context(), id); err != nil {
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
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "customer not found")
	case errors.Is(err, ErrHasTickets):
		api.WriteError(w, http.StatusConflict, "CUSTOMER_HAS_TICKETS", "customer has service tickets")
	default:
		log.Printf("customer %s failed err=%v", op, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
