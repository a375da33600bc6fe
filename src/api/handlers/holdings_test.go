package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"ledger/src/api/handlers"
	"ledger/src/models"
	"ledger/src/repositories"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(store repositories.LedgerRepository) *chi.Mux {
	h := handlers.NewHandlerWithStore(store, 5)
	router := chi.NewRouter()
	router.Get("/api/accounts/{accountID}/holdings", h.GetHoldingsByAccount)
	router.Route("/api/holdings/{id}", func(r chi.Router) {
		r.Get("/transactions", h.GetHoldingTransactions)
		r.Post("/adjustments", h.CreateAdjustment)
		r.Post("/verify", h.VerifyHolding)
	})
	return router
}

func seedHolding(t *testing.T, store repositories.LedgerRepository, quantity string) *models.Holding {
	t.Helper()
	ctx := context.Background()

	h := handlers.NewHandlerWithStore(store, 5)
	results := h.Reconciler.ApplySync(ctx, "acc-1", "binance", []models.Balance{
		{Asset: "ETH", Quantity: quantity},
	})
	require.Equal(t, 1, len(results))

	holding, err := store.GetOrCreateHolding(ctx, "acc-1", "ETH")
	require.NoError(t, err)
	return holding
}

func TestGetHoldingsByAccount(t *testing.T) {
	store := repositories.NewMemoryLedgerRepository()
	seedHolding(t, store, "1.5")
	router := newTestRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/accounts/acc-1/holdings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var holdings []models.Holding
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &holdings))
	require.Len(t, holdings, 1)
	assert.Equal(t, "ETH", holdings[0].AssetSymbol)
	assert.Equal(t, "1.5", holdings[0].Quantity.String())
}

func TestGetHoldingTransactions(t *testing.T) {
	store := repositories.NewMemoryLedgerRepository()
	holding := seedHolding(t, store, "1.5")
	router := newTestRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET",
		"/api/holdings/"+strconv.FormatInt(holding.ID, 10)+"/transactions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []models.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "1.5", entries[0].QuantityChange.String())

	t.Run("unknown holding answers 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/holdings/9999/transactions", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateAdjustment(t *testing.T) {
	store := repositories.NewMemoryLedgerRepository()
	holding := seedHolding(t, store, "1.2")
	router := newTestRouter(store)
	path := "/api/holdings/" + strconv.FormatInt(holding.ID, 10) + "/adjustments"

	t.Run("withdrawal magnitude is negated", func(t *testing.T) {
		body := `{"transaction_type":"withdrawal","quantity_change":"0.2","source":"ops"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", path, strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, rec.Code)

		var entry models.Transaction
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
		assert.Equal(t, "-0.2", entry.QuantityChange.String())
		assert.Equal(t, "1", entry.QuantityAfter.String())
	})

	t.Run("overdraw answers 422 and leaves state unchanged", func(t *testing.T) {
		body := `{"transaction_type":"withdrawal","quantity_change":"2.0","source":"ops"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", path, strings.NewReader(body)))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		current, err := store.GetHoldingByID(context.Background(), holding.ID)
		require.NoError(t, err)
		assert.Equal(t, "1", current.Quantity.String())
	})

	t.Run("malformed quantity answers 422", func(t *testing.T) {
		body := `{"transaction_type":"deposit","quantity_change":"abc","source":"ops"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", path, strings.NewReader(body)))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestVerifyHolding(t *testing.T) {
	store := repositories.NewMemoryLedgerRepository()
	holding := seedHolding(t, store, "1.5")
	router := newTestRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST",
		"/api/holdings/"+strconv.FormatInt(holding.ID, 10)+"/verify", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
