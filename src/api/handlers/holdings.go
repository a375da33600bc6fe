package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"ledger/src/models"
	"ledger/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetHoldingsByAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	accountID := chi.URLParam(r, "accountID")
	if accountID == "" {
		h.HandleErrors(w, utils.BadRequest("missing accountID URL parameter"))
		return
	}

	holdings, err := h.Ledger.ListHoldingsByAccount(ctx, accountID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, holdings, 200)
}

// GetHoldingTransactions returns the full ledger for a holding in replay
// order, for audit and reporting consumers.
func (h *Handler) GetHoldingTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	holdingID, err := holdingIDParam(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	if _, err := h.Ledger.GetHoldingByID(ctx, holdingID); err != nil {
		h.HandleErrors(w, err)
		return
	}

	transactions, err := h.Ledger.ListTransactionsByHolding(ctx, holdingID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, transactions, 200)
}

type adjustmentRequest struct {
	TransactionType models.TransactionType `json:"transaction_type"`
	QuantityChange  string                 `json:"quantity_change"`
	Source          string                 `json:"source"`
	Metadata        json.RawMessage        `json:"metadata,omitempty"`
}

// CreateAdjustment appends a deposit, withdrawal or manual adjustment.
// Withdrawals may be posted as positive magnitudes; the handler negates them
// so the service always receives the signed change.
func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	holdingID, err := holdingIDParam(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	var req adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}

	change, err := models.ParseQuantity(req.QuantityChange)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	if req.TransactionType == models.TransactionTypeWithdrawal && !change.IsNegative() {
		change = change.Neg()
	}

	entry, err := h.Reconciler.ApplyAdjustment(ctx, holdingID, req.TransactionType, change, req.Source, req.Metadata)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, entry, http.StatusCreated)
}

// VerifyHolding replays the ledger for a holding. A clean fold answers 200;
// drift answers 409 with the offending transaction ids.
func (h *Handler) VerifyHolding(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	holdingID, err := holdingIDParam(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	if err := h.Verifier.Verify(ctx, holdingID); err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, map[string]string{"status": "ok"}, 200)
}

func holdingIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, utils.BadRequest("invalid holding id")
	}
	return id, nil
}
