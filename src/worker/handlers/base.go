package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"ledger/src/clients/connector"
	"ledger/src/config"
	"ledger/src/database"
	"ledger/src/repositories"
	"ledger/src/services"
	"ledger/src/utils"
	redis_utils "ledger/src/utils/redis"
	"ledger/src/worker/controllers"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	Controller *controllers.Controller
}

func NewHandler(cfg *config.Config, logger *logrus.Logger) (*Handler, error) {
	db, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	store := repositories.NewLedgerRepository(db)
	reconciler := services.NewReconcilerService(store, cfg.Sync.MaxRetries)
	syncLogs := repositories.NewSyncLogRepository(db)

	connectors := make([]connector.Client, 0, len(cfg.Connectors))
	for _, c := range cfg.Connectors {
		connectors = append(connectors, connector.NewRESTConnector(c))
	}

	var locker services.SyncLocker
	if cfg.Databases.Redis.Host != "" {
		redisHandler, err := redis_utils.NewRedisHandler(cfg)
		if err != nil {
			return nil, err
		}
		locker = redisHandler
	}

	syncService := services.NewSyncService(reconciler, syncLogs, connectors, locker,
		cfg.Sync.LockTTL, cfg.Sync.FreshnessWindow)
	controller := controllers.NewController(syncService, logger)
	if err := controller.ScheduleConfigured(cfg.Sync.Accounts, cfg.Sync.Schedule); err != nil {
		return nil, err
	}
	return &Handler{Controller: controller}, nil
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

func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var httpErr *utils.HTTPError
	if errors.Is(err, context.DeadlineExceeded) {
		h.respond(w, nil, map[string]string{"error": "Request timed out"}, http.StatusGatewayTimeout)
	} else if errors.As(err, &httpErr) {
		h.respond(w, nil, map[string]string{"error": httpErr.Message}, httpErr.Code)
	} else if err != nil {
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
	} else {
		h.respond(w, nil, map[string]string{"error": "Unhandled error"}, http.StatusInternalServerError)
	}
}
