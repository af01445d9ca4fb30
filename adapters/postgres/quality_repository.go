package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"goldendash/domain/quality"
	"goldendash/internal/errors"
	"goldendash/ports"

	"github.com/jmoiron/sqlx"
)

// qualityRepository implements ports.QualityRepository
type qualityRepository struct {
	db *sqlx.DB
}

// NewQualityRepository creates a new quality repository
func NewQualityRepository(db *sqlx.DB) ports.QualityRepository {
	return &qualityRepository{db: db}
}

func (r *qualityRepository) ListApps(ctx context.Context) ([]quality.App, error) {
	var apps []quality.App
	err := r.db.SelectContext(ctx, &apps, `
		SELECT id, name, path, status, last_scanned_at, created_at
		FROM apps ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	return apps, nil
}

func (r *qualityRepository) GetApp(ctx context.Context, id int64) (*quality.App, error) {
	var app quality.App
	err := r.db.GetContext(ctx, &app, `
		SELECT id, name, path, status, last_scanned_at, created_at
		FROM apps WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("app")
		}
		return nil, fmt.Errorf("failed to get app: %w", err)
	}
	return &app, nil
}

func (r *qualityRepository) UpsertApp(ctx context.Context, name, path string) (*quality.App, error) {
	var app quality.App
	err := r.db.GetContext(ctx, &app, `
		INSERT INTO apps (name, path, status, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (name) DO UPDATE SET path = EXCLUDED.path
		RETURNING id, name, path, status, last_scanned_at, created_at`,
		name, path, quality.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert app %q: %w", name, err)
	}
	return &app, nil
}

func (r *qualityRepository) UpdateAppStatus(ctx context.Context, id int64, status string, scannedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE apps SET status = $2, last_scanned_at = $3 WHERE id = $1`, id, status, scannedAt)
	if err != nil {
		return fmt.Errorf("failed to update app status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NotFound("app")
	}
	return nil
}

// ReplaceScans deletes the previous findings of the scan type and writes the new ones with the summary
func (r *qualityRepository) ReplaceScans(ctx context.Context, appID int64, scanType string, scans []quality.Scan, summary quality.Summary) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM quality_scans WHERE app_id = $1 AND scan_type = $2`, appID, scanType); err != nil {
		return fmt.Errorf("failed to clear %s scans: %w", scanType, err)
	}

	for _, s := range scans {
		s.AppID = appID
		s.ScanType = scanType
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO quality_scans (app_id, scan_type, severity, message, file_path, line_number, scanned_at)
			VALUES (:app_id, :scan_type, :severity, :message, :file_path, :line_number, :scanned_at)`, s); err != nil {
			return fmt.Errorf("failed to insert %s scan: %w", scanType, err)
		}
	}

	summary.AppID = appID
	summary.ScanType = scanType
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO metric_summaries (app_id, scan_type, total_issues, high_severity, medium_severity, low_severity, scanned_at)
		VALUES (:app_id, :scan_type, :total_issues, :high_severity, :medium_severity, :low_severity, :scanned_at)
		ON CONFLICT (app_id, scan_type) DO UPDATE SET
			total_issues = EXCLUDED.total_issues,
			high_severity = EXCLUDED.high_severity,
			medium_severity = EXCLUDED.medium_severity,
			low_severity = EXCLUDED.low_severity,
			scanned_at = EXCLUDED.scanned_at`, summary); err != nil {
		return fmt.Errorf("failed to save %s summary: %w", scanType, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s scans: %w", scanType, err)
	}
	return nil
}

func (r *qualityRepository) ListScans(ctx context.Context, appID int64) ([]quality.Scan, error) {
	var scans []quality.Scan
	err := r.db.SelectContext(ctx, &scans, `
		SELECT id, app_id, scan_type, severity, message, file_path, line_number, scanned_at
		FROM quality_scans WHERE app_id = $1
		ORDER BY scan_type, id`, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	return scans, nil
}

func (r *qualityRepository) ListSummaries(ctx context.Context, appID int64) ([]quality.Summary, error) {
	var summaries []quality.Summary
	err := r.db.SelectContext(ctx, &summaries, `
		SELECT app_id, scan_type, total_issues, high_severity, medium_severity, low_severity, scanned_at
		FROM metric_summaries WHERE app_id = $1
		ORDER BY scan_type`, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return summaries, nil
}
