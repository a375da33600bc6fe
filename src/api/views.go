package api

import (
	"net/http"
	"time"

	"ledger/src/api/handlers"
	"ledger/src/config"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
}

func NewServer(cfg *config.Config) (*Server, error) {
	handler, err := handlers.NewHandler(cfg)
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
		r.Get("/accounts/{accountID}/holdings", s.Handler.GetHoldingsByAccount)
		r.Route("/holdings/{id}", func(r chi.Router) {
			r.Get("/transactions", s.Handler.GetHoldingTransactions)
			r.Post("/adjustments", s.Handler.CreateAdjustment)
			r.Post("/verify", s.Handler.VerifyHolding)
		})
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
}
