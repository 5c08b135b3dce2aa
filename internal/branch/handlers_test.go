package branch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	created []Input
	deleted map[string]error
}

func (f *fakeStore) List(ctx context.Context) ([]Branch, error) {
	return []Branch{{ID: "b1", Name: "Downtown"}}, nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (*Branch, error) {
	return nil, ErrNotFound
}

func (f *fakeStore) Create(ctx context.Context, in Input) (*Branch, error) {
	f.created = append(f.created, in)
	return &Branch{ID: "b2", Name: in.Name, Email: in.Email}, nil
}

func (f *fakeStore) Update(ctx context.Context, id string, in Input) (*Branch, error) {
	return &Branch{ID: id, Name: in.Name}, nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	return f.deleted[id]
}

func router(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Get("/branches", h.List)
	r.Post("/branches", h.Create)
	r.Get("/branches/{id}", h.Get)
	r.Delete("/branches/{id}", h.Delete)
	return r
}

const branchID = "7b0c5a7e-3d1b-4ad6-9a3b-3f0f5c1e2a10"

func TestCreate_NormalizesAndValidates(t *testing.T) {
	store := &fakeStore{}
	h := router(Handlers{Branches: store})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/branches", strings.NewReader(`{"name":"  Uptown ","email":"Front@Shop.Example"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.created, 1)
	assert.Equal(t, "Uptown", store.created[0].Name)
	assert.Equal(t, "front@shop.example", store.created[0].Email)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/branches", strings.NewReader(`{"name":"   "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/branches", strings.NewReader(`{"name":"x","colour":"red"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGet_InvalidAndMissing(t *testing.T) {
	h := router(Handlers{Branches: &fakeStore{}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/branches/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/branches/"+branchID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete_InUse(t *testing.T) {
	h := router(Handlers{Branches: &fakeStore{deleted: map[string]error{branchID: ErrInUse}}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/branches/"+branchID, nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "BRANCH_IN_USE")
}
