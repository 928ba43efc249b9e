package inventory

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(repo *mockRepository) *chi.Mux {
	handler := NewHandler(slog.Default(), NewService(repo, nil))
	router := chi.NewRouter()
	handler.MountRoutes(router)
	return router
}

func TestAdjustEndpointAdd(t *testing.T) {
	repo := newMockRepository()
	repo.seed("7f9a2b3c-4d5e-4f6a-8b7c-9d0e1f2a3b4c", 10, 0)
	router := newTestRouter(repo)

	body, _ := json.Marshal(AdjustInventoryRequest{Operation: "add", Quantity: 5, Vendor: "Acme Metals"})
	req := httptest.NewRequest(http.MethodPut, "/inventory/7f9a2b3c-4d5e-4f6a-8b7c-9d0e1f2a3b4c", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var inv Inventory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	assert.Equal(t, 15.0, inv.OnHand)
}

func TestAdjustEndpointMalformedID(t *testing.T) {
	repo := newMockRepository()
	repo.seed("7f9a2b3c-4d5e-4f6a-8b7c-9d0e1f2a3b4c", 10, 0)
	router := newTestRouter(repo)

	// A non-UUID path id never reaches the database.
	body, _ := json.Marshal(AdjustInventoryRequest{Operation: "add", Quantity: 5})
	req := httptest.NewRequest(http.MethodPut, "/inventory/abc", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	inv, err := repo.Get(req.Context(), "7f9a2b3c-4d5e-4f6a-8b7c-9d0e1f2a3b4c")
	require.NoError(t, err)
	assert.Equal(t, 10.0, inv.OnHand)
}

func TestAdjustEndpointUnknownMaterial(t *testing.T) {
	router := newTestRouter(newMockRepository())

	body, _ := json.Marshal(AdjustInventoryRequest{Operation: "remove", Quantity: 1})
	req := httptest.NewRequest(http.MethodPut, "/inventory/7f9a2b3c-4d5e-4f6a-8b7c-9d0e1f2a3b4c", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
