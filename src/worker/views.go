package worker

import (
	"net/http"
	"time"

	"ledger/src/config"
	"ledger/src/worker/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
}

func NewServer(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	handler, err := handlers.NewHandler(cfg, logger)
	if err != nil {
		return nil, err
	}
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handler,
	}
	server.InitRoutes()
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api", func(r chi.Router) {
		r.Post("/sync/{accountID}", s.Handler.TriggerAccountSync)
		r.Get("/sync/{accountID}/history", s.Handler.GetSyncHistory)
		r.Delete("/sync/{accountID}/logs", s.Handler.PruneSyncLogs)
		r.Post("/schedules", s.Handler.CreateSchedule)
		r.Delete("/schedules/{accountID}", s.Handler.DeleteSchedule)
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		Handler:      server,
	}
}
