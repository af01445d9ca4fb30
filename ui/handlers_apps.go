package ui

import (
	"context"
	"net/http"
	"strconv"

	"goldendash/app"
	"goldendash/domain/quality"
	"goldendash/internal/errors"

	"github.com/go-chi/chi/v5"
)

type dashboardPage struct {
	Title     string
	Active    string
	Dashboard app.QualityDashboard
	Stats     app.Statistics
}

type appPage struct {
	Title     string
	Active    string
	App       *quality.App
	Summaries []quality.Summary
	Scans     []quality.Scan
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dashboard, err := s.deps.Scans.Dashboard(ctx)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	stats, err := s.deps.Examples.Statistics(ctx)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.renderTemplate(w, "dashboard.html", http.StatusOK, dashboardPage{
		Title:     "Dashboard",
		Active:    "dashboard",
		Dashboard: dashboard,
		Stats:     stats,
	})
}

func (s *Server) handleApps(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.deps.Scans.Dashboard(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderTemplate(w, "apps.html", http.StatusOK, dashboardPage{
		Title:     "Apps",
		Active:    "apps",
		Dashboard: dashboard,
	})
}

func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	id, err := appID(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	a, summaries, scans, err := s.deps.Scans.App(r.Context(), id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderTemplate(w, "app.html", http.StatusOK, appPage{
		Title:     a.Name,
		Active:    "apps",
		App:       a,
		Summaries: summaries,
		Scans:     scans,
	})
}

// handleScan starts a scan in the background and sends the browser back to the app page
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	id, err := appID(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if _, err := s.deps.Scans.GetApp(r.Context(), id); err != nil {
		s.renderError(w, r, err)
		return
	}

	go s.runScan(id)

	target := "/apps/" + strconv.FormatInt(id, 10)
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusAccepted)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) runScan(id int64) {
	ctx, cancel := context.WithTimeout(s.scanCtx, s.deps.ScanTimeout)
	defer cancel()

	if _, err := s.deps.Scans.ScanApp(ctx, id); err != nil {
		s.log.Error().Err(err).Int64("app_id", id).Msg("background scan failed")
	}
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	apps, err := s.deps.Scans.Discover(r.Context(), s.deps.AppsDir)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.log.Info().Int("apps", len(apps)).Str("dir", s.deps.AppsDir).Msg("apps discovered")

	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/apps")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/apps", http.StatusSeeOther)
}

func appID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.InvalidInput("app id must be numeric")
	}
	return id, nil
}
