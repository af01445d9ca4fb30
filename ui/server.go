package ui

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"goldendash/app"
	"goldendash/domain/columns"
	"goldendash/ports"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// Deps are the services the web layer talks to
type Deps struct {
	Examples     *app.ExampleService
	Scans        *app.ScanService
	Registry     *columns.Registry
	StateStorage ports.StateStorage

	APIToken    string
	AppsDir     string
	ScanTimeout time.Duration
	GinMode     string
}

// Server serves the dashboard pages through chi and the JSON API through gin
type Server struct {
	router    *chi.Mux
	api       *gin.Engine
	templates *template.Template
	deps      Deps
	boards    *boardRegistry
	log       zerolog.Logger

	// scans started from the dashboard outlive their request
	scanCtx context.Context
	stop    context.CancelFunc
}

// NewServer creates the web server
func NewServer(deps Deps, log zerolog.Logger) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if deps.ScanTimeout <= 0 {
		deps.ScanTimeout = 10 * time.Minute
	}

	scanCtx, stop := context.WithCancel(context.Background())
	s := &Server{
		router:    chi.NewRouter(),
		templates: templates,
		deps:      deps,
		boards:    newBoardRegistry(time.Hour),
		log:       log.With().Str("component", "ui").Logger(),
		scanCtx:   scanCtx,
		stop:      stop,
	}
	s.api = s.newAPI()

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("starting goldendash server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.stop()
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	s.stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
