package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ledger/src/utils"

	"github.com/go-chi/chi/v5"
)

// TriggerAccountSync runs one reconciliation pass for the account across all
// configured connectors and returns the per-source, per-asset outcomes.
func (h *Handler) TriggerAccountSync(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	accountID := chi.URLParam(r, "accountID")
	if accountID == "" {
		h.HandleErrors(w, utils.BadRequest("missing accountID URL parameter"))
		return
	}

	reports := h.Controller.TriggerSync(ctx, accountID)
	h.respond(w, r, reports, 200)
}

// GetSyncHistory lists the recorded sync dates for an account and source.
// start/end are RFC 3339 query parameters; they default to the last 30 days.
func (h *Handler) GetSyncHistory(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	source := r.URL.Query().Get("source")
	if accountID == "" || source == "" {
		h.HandleErrors(w, utils.BadRequest("accountID and source are required"))
		return
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)
	var err error
	if raw := r.URL.Query().Get("start"); raw != "" {
		if start, err = time.Parse(time.RFC3339, raw); err != nil {
			h.HandleErrors(w, utils.BadRequest("invalid start date, expected RFC 3339"))
			return
		}
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		if end, err = time.Parse(time.RFC3339, raw); err != nil {
			h.HandleErrors(w, utils.BadRequest("invalid end date, expected RFC 3339"))
			return
		}
	}

	dates, err := h.Controller.SyncHistory(r.Context(), accountID, source, start, end)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, map[string]interface{}{"account_id": accountID, "source": source, "dates": dates}, 200)
}

// PruneSyncLogs deletes the account's sync log rows in the given range. Both
// bounds are required so a typo cannot wipe the whole history.
func (h *Handler) PruneSyncLogs(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	startRaw := r.URL.Query().Get("start")
	endRaw := r.URL.Query().Get("end")
	if accountID == "" || startRaw == "" || endRaw == "" {
		h.HandleErrors(w, utils.BadRequest("accountID, start and end are required"))
		return
	}

	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid start date, expected RFC 3339"))
		return
	}
	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid end date, expected RFC 3339"))
		return
	}

	if err := h.Controller.PruneSyncLogs(r.Context(), accountID, start, end); err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, map[string]string{"status": "pruned"}, 200)
}

type scheduleRequest struct {
	AccountID string `json:"account_id"`
	Cron      string `json:"cron"`
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}
	if req.AccountID == "" || req.Cron == "" {
		h.HandleErrors(w, utils.BadRequest("account_id and cron are required"))
		return
	}

	if err := h.Controller.ScheduleAccountSync(req.AccountID, req.Cron); err != nil {
		h.HandleErrors(w, utils.BadRequest(err.Error()))
		return
	}
	h.respond(w, r, map[string]string{"status": "scheduled"}, http.StatusCreated)
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	if !h.Controller.CancelAccountSync(accountID) {
		h.HandleErrors(w, utils.NotFound("no schedule for account "+accountID))
		return
	}
	h.respond(w, r, map[string]string{"status": "cancelled"}, 200)
}
