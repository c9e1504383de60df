package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.SetHeader("Content-Type", "application/json"))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", s.handleListPreferences)         // GET /api/v1/preferences
			r.Get("/{key}", s.handleGetPreference)      // GET /api/v1/preferences/{key}
			r.Put("/{key}", s.handleSetPreference)      // PUT /api/v1/preferences/{key}
			r.Delete("/{key}", s.handleClearPreference) // DELETE /api/v1/preferences/{key}
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if !s.registry.Initialized() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"uninitialized"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
