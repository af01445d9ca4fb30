package ports

import (
	"context"
	"time"

	"goldendash/domain/quality"
)

// QualityRepository stores monitored apps and their scan results
type QualityRepository interface {
	ListApps(ctx context.Context) ([]quality.App, error)
	GetApp(ctx context.Context, id int64) (*quality.App, error)

	// UpsertApp registers an app by name, updating its path when it already exists
	UpsertApp(ctx context.Context, name, path string) (*quality.App, error)

	// UpdateAppStatus records the derived health and the scan time
	UpdateAppStatus(ctx context.Context, id int64, status string, scannedAt time.Time) error

	// ReplaceScans swaps the findings and summary of one scan type for an app
	ReplaceScans(ctx context.Context, appID int64, scanType string, scans []quality.Scan, summary quality.Summary) error

	ListScans(ctx context.Context, appID int64) ([]quality.Scan, error)
	ListSummaries(ctx context.Context, appID int64) ([]quality.Summary, error)
}
