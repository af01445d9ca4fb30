package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Handle("/static/*", http.FileServer(http.FS(embeddedFiles)))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	// Quality pages
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/apps", s.handleApps)
	s.router.Post("/apps/discover", s.handleDiscover)
	s.router.Get("/apps/{id}", s.handleApp)
	s.router.Post("/apps/{id}/scan", s.handleScan)

	// Examples pages
	s.router.Get("/examples", s.handleExamples)
	s.router.Get("/examples/export.xlsx", s.handleExport)
	s.router.Get("/examples/{id}", s.handleExample)

	// HTMX filter gestures, each answering with the board fragment
	s.router.Route("/examples/filters", func(r chi.Router) {
		r.Post("/slider", s.handleSlider)
		r.Post("/mode", s.handleToggleMode)
		r.Post("/move", s.handleMove)
		r.Post("/remove", s.handleRemoveFilter)
		r.Post("/clear", s.handleClearFilters)
		r.Post("/search", s.handleSearch)
		r.Post("/sort", s.handleSort)
		r.Post("/modal", s.handleModal)
		r.Post("/toggle", s.handleToggleFilterBar)
		r.Post("/save", s.handleSaveConfiguration)
		r.Post("/reset", s.handleResetConfiguration)
	})

	// JSON API
	s.router.Handle("/api/*", s.api)
}

// HTMX helpers
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
