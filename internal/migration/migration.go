package migration

import (
	"context"

	"goldendash/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	steps := []struct {
		name string
		run  func(context.Context, *sqlx.DB) error
	}{
		{"examples table", r.createExamplesTable},
		{"apps table", r.createAppsTable},
		{"quality_scans table", r.createQualityScansTable},
		{"metric_summaries table", r.createMetricSummariesTable},
		{"ui_state_cache table", r.createUIStateCacheTable},
		{"indexes", r.createIndexes},
	}

	for _, step := range steps {
		if err := step.run(ctx, db); err != nil {
			return errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "failed to create %s", step.name))
		}
	}
	return nil
}

func (r *MigrationRunner) createExamplesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS examples (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			category VARCHAR(50),
			status VARCHAR(50) NOT NULL,
			description TEXT,
			priority INTEGER,
			score DOUBLE PRECISION,
			complexity INTEGER,
			speed INTEGER,
			quality INTEGER,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createAppsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS apps (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			path TEXT NOT NULL,
			status VARCHAR(50) NOT NULL DEFAULT 'pending',
			last_scanned_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createQualityScansTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS quality_scans (
			id BIGSERIAL PRIMARY KEY,
			app_id BIGINT NOT NULL REFERENCES apps(id) ON DELETE CASCADE,
			scan_type VARCHAR(50) NOT NULL,
			severity VARCHAR(20) NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			file_path TEXT NOT NULL DEFAULT '',
			line_number INTEGER,
			scanned_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createMetricSummariesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS metric_summaries (
			app_id BIGINT NOT NULL REFERENCES apps(id) ON DELETE CASCADE,
			scan_type VARCHAR(50) NOT NULL,
			total_issues INTEGER NOT NULL DEFAULT 0,
			high_severity INTEGER NOT NULL DEFAULT 0,
			medium_severity INTEGER NOT NULL DEFAULT 0,
			low_severity INTEGER NOT NULL DEFAULT 0,
			scanned_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (app_id, scan_type)
		)
	`)
	return err
}

func (r *MigrationRunner) createUIStateCacheTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ui_state_cache (
			session_id UUID NOT NULL,
			state_key VARCHAR(100) NOT NULL,
			ui_state JSONB NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			last_updated TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (session_id, state_key)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_examples_status ON examples(status)`,
		`CREATE INDEX IF NOT EXISTS idx_examples_category ON examples(category)`,
		`CREATE INDEX IF NOT EXISTS idx_examples_created_at ON examples(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_quality_scans_app_type ON quality_scans(app_id, scan_type)`,
		`CREATE INDEX IF NOT EXISTS idx_ui_state_cache_last_updated ON ui_state_cache(last_updated)`,
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
