package app

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"goldendash/domain/quality"
	"goldendash/internal/errors"
	"goldendash/ports"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// AppOverview is one row of the quality dashboard
type AppOverview struct {
	App         quality.App
	Summaries   []quality.Summary
	TotalIssues int
	Severe      int
}

// QualityDashboard aggregates every monitored app
type QualityDashboard struct {
	Apps     []AppOverview
	Healthy  int
	Warning  int
	Critical int
	Pending  int
	Issues   int
	LastScan *time.Time
}

// ScanService runs the analysis tools against monitored apps and stores their findings
type ScanService struct {
	repo        ports.QualityRepository
	scanners    []ports.Scanner
	concurrency int
	now         func() time.Time
	log         zerolog.Logger
}

// NewScanService creates a scan service; concurrency bounds the scanners running at once per app
func NewScanService(repo ports.QualityRepository, scanners []ports.Scanner, concurrency int, log zerolog.Logger) *ScanService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ScanService{
		repo:        repo,
		scanners:    scanners,
		concurrency: concurrency,
		now:         time.Now,
		log:         log.With().Str("component", "ScanService").Logger(),
	}
}

// ScanApp runs every scanner against the app. A failing scanner is logged and leaves its previous
// findings in place; the app status is derived from all stored findings afterwards.
func (s *ScanService) ScanApp(ctx context.Context, id int64) (*quality.App, error) {
	app, err := s.repo.GetApp(ctx, id)
	if err != nil {
		return nil, err
	}
	log := s.log.With().Str("app", app.Name).Logger()
	log.Info().Int("scanners", len(s.scanners)).Msg("scan started")

	var (
		mu     sync.Mutex
		failed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, scanner := range s.scanners {
		scanner := scanner
		g.Go(func() error {
			start := s.now()
			findings, err := scanner.Scan(gctx, *app)
			if err != nil {
				log.Warn().Err(err).Str("scan_type", scanner.Type()).Msg("scanner failed")
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			for i := range findings {
				findings[i].AppID = app.ID
				findings[i].ScanType = scanner.Type()
			}
			summary := quality.Summarize(app.ID, scanner.Type(), findings, start)
			if err := s.repo.ReplaceScans(gctx, app.ID, scanner.Type(), findings, summary); err != nil {
				return errors.Wrapf(err, "failed to store %s findings", scanner.Type())
			}
			log.Debug().Str("scan_type", scanner.Type()).Int("issues", summary.TotalIssues).
				Dur("elapsed", s.now().Sub(start)).Msg("scanner finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scans, err := s.repo.ListScans(ctx, app.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load findings")
	}
	var severe, medium int
	for _, sc := range scans {
		switch {
		case sc.IsSevere():
			severe++
		case sc.Severity == quality.SeverityMedium:
			medium++
		}
	}

	status := quality.DetermineAppStatus(severe, medium)
	scannedAt := s.now()
	if err := s.repo.UpdateAppStatus(ctx, app.ID, status, scannedAt); err != nil {
		return nil, errors.Wrap(err, "failed to update app status")
	}
	app.Status = status
	app.LastScannedAt = &scannedAt

	log.Info().Str("status", status).Int("severe", severe).Int("medium", medium).Int("failed_scanners", failed).Msg("scan finished")
	return app, nil
}

// Discover registers every Rails application directly under dir
func (s *ScanService) Discover(ctx context.Context, dir string) ([]quality.App, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "failed to read apps directory %s", dir))
	}

	var found []quality.App
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(path, "config", "application.rb")); err != nil {
			continue
		}
		app, err := s.repo.UpsertApp(ctx, entry.Name(), path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to register %s", entry.Name())
		}
		found = append(found, *app)
	}
	s.log.Info().Str("dir", dir).Int("apps", len(found)).Msg("apps discovered")
	return found, nil
}

// GetApp returns one monitored app
func (s *ScanService) GetApp(ctx context.Context, id int64) (*quality.App, error) {
	return s.repo.GetApp(ctx, id)
}

// App returns one app with its summaries and findings
func (s *ScanService) App(ctx context.Context, id int64) (*quality.App, []quality.Summary, []quality.Scan, error) {
	app, err := s.repo.GetApp(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	summaries, err := s.repo.ListSummaries(ctx, id)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to load summaries")
	}
	scans, err := s.repo.ListScans(ctx, id)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to load findings")
	}
	return app, summaries, scans, nil
}

// Dashboard counts apps per status and issues per app, worst apps first
func (s *ScanService) Dashboard(ctx context.Context) (QualityDashboard, error) {
	apps, err := s.repo.ListApps(ctx)
	if err != nil {
		return QualityDashboard{}, errors.Wrap(err, "failed to load apps")
	}

	var dash QualityDashboard
	for _, app := range apps {
		summaries, err := s.repo.ListSummaries(ctx, app.ID)
		if err != nil {
			return QualityDashboard{}, errors.Wrapf(err, "failed to load summaries of %s", app.Name)
		}
		row := AppOverview{App: app, Summaries: summaries}
		for _, sum := range summaries {
			row.TotalIssues += sum.TotalIssues
			row.Severe += sum.HighSeverity
		}
		dash.Apps = append(dash.Apps, row)
		dash.Issues += row.TotalIssues

		switch app.Status {
		case quality.StatusHealthy:
			dash.Healthy++
		case quality.StatusWarning:
			dash.Warning++
		case quality.StatusCritical:
			dash.Critical++
		default:
			dash.Pending++
		}
		if app.LastScannedAt != nil && (dash.LastScan == nil || app.LastScannedAt.After(*dash.LastScan)) {
			dash.LastScan = app.LastScannedAt
		}
	}

	sort.SliceStable(dash.Apps, func(i, j int) bool {
		if dash.Apps[i].Severe != dash.Apps[j].Severe {
			return dash.Apps[i].Severe > dash.Apps[j].Severe
		}
		return dash.Apps[i].TotalIssues > dash.Apps[j].TotalIssues
	})
	return dash, nil
}
