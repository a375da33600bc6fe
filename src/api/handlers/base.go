package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"ledger/src/config"
	"ledger/src/database"
	"ledger/src/models"
	"ledger/src/repositories"
	"ledger/src/services"
	"ledger/src/utils"
)

type Handler struct {
	Ledger     repositories.LedgerRepository
	Reconciler services.ReconcilerServiceI
	Verifier   services.VerifierServiceI
}

func NewHandler(cfg *config.Config) (*Handler, error) {
	db, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}
	return NewHandlerWithStore(repositories.NewLedgerRepository(db), cfg.Sync.MaxRetries), nil
}

// NewHandlerWithStore wires the handler over any LedgerRepository; tests use
// the in-memory one.
func NewHandlerWithStore(store repositories.LedgerRepository, maxRetries uint64) *Handler {
	return &Handler{
		Ledger:     store,
		Reconciler: services.NewReconcilerService(store, maxRetries),
		Verifier:   services.NewVerifierService(store),
	}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

// HandleErrors maps domain errors onto HTTP responses. Drift reports keep
// their offending transaction ids so operators can locate the break.
func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var (
		httpErr     *utils.HTTPError
		parseErr    *models.ParseError
		negativeErr *services.NegativeBalanceError
		driftErr    *services.IntegrityDriftError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		h.respond(w, nil, map[string]string{"error": "Request timed out"}, http.StatusGatewayTimeout)
	case errors.As(err, &driftErr):
		h.respond(w, nil, map[string]interface{}{
			"error":           driftErr.Error(),
			"holding_id":      driftErr.HoldingID,
			"transaction_ids": driftErr.TransactionIDs,
		}, http.StatusConflict)
	case errors.As(err, &parseErr), errors.As(err, &negativeErr):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusUnprocessableEntity)
	case errors.Is(err, repositories.ErrHoldingNotFound):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusNotFound)
	case errors.Is(err, repositories.ErrVersionConflict):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusConflict)
	case errors.As(err, &httpErr):
		h.respond(w, nil, map[string]string{"error": httpErr.Message}, httpErr.Code)
	case err != nil:
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
	default:
		h.respond(w, nil, map[string]string{"error": "Unhandled error"}, http.StatusInternalServerError)
	}
}
