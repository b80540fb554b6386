package http

import (
	"context"
	"log"
	"net/http"
	"sync"

	"prattle/internal/api"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type APIServer struct {
	server *http.Server
	wg     sync.WaitGroup
}

// NewRouter builds the UI-facing JSON API. The browser frontend runs on a
// separate dev origin, so CORS is part of the contract.
func NewRouter(handlers *api.API, corsOrigin string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{corsOrigin},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", handlers.StateHandler)
		r.Delete("/state", handlers.ClearStateHandler)
		r.Put("/current", handlers.SetCurrentHandler)
		r.Get("/conversations", handlers.ConversationsHandler)
		r.Route("/conversations/{id}", func(r chi.Router) {
			r.Get("/messages", handlers.MessagesHandler)
			r.Post("/messages", handlers.SendMessageHandler)
			r.Post("/messages/{messageID}/retry", handlers.RetryMessageHandler)
			r.Post("/reactions", handlers.AddReactionHandler)
		})
	})

	return r
}

func NewAPIServer(handlers *api.API, addr, corsOrigin string) *APIServer {
	if addr == "" {
		addr = ":8080"
	}

	return &APIServer{
		server: &http.Server{
			Addr:    addr,
			Handler: NewRouter(handlers, corsOrigin),
		},
	}
}

func (s *APIServer) Start() error {
	log.Printf("Server started on %s", s.server.Addr)
	s.wg.Add(1)
	defer s.wg.Done()

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *APIServer) Shutdown(ctx context.Context) error {
	defer s.wg.Wait()
	return s.server.Shutdown(ctx)
}
