package container

import (
	"context"
	"time"

	"goldendash/adapters/excel"
	"goldendash/adapters/memory"
	"goldendash/adapters/postgres"
	"goldendash/adapters/scanners"
	"goldendash/app"
	"goldendash/domain/columns"
	"goldendash/internal/config"
	"goldendash/internal/errors"
	"goldendash/ports"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Log    zerolog.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	ExampleRepo  ports.ExampleRepository
	QualityRepo  ports.QualityRepository
	StateStorage ports.StateStorage
	UIStateRepo  *postgres.UIStateRepository

	// Services
	Registry       *columns.Registry
	ExampleService *app.ExampleService
	ScanService    *app.ScanService
}

// New creates a new dependency injection container
func New(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}

	return &Container{
		Config:   cfg,
		Log:      log,
		Registry: columns.Default(),
	}, nil
}

// InitWithDatabase wires the PostgreSQL repositories
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return errors.ConfigInvalid("database connection cannot be nil")
	}

	c.DB = db
	if err := db.Ping(); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "database connection test failed"))
	}

	c.ExampleRepo = postgres.NewExampleRepository(db)
	c.QualityRepo = postgres.NewQualityRepository(db)
	c.UIStateRepo = postgres.NewUIStateRepository(db)
	c.StateStorage = c.UIStateRepo

	if err := c.initServices(); err != nil {
		return errors.Wrap(err, "failed to initialize services")
	}
	c.Log.Info().Msg("container initialized with database")
	return nil
}

// InitInMemory wires the in-memory repositories; nothing survives a restart
func (c *Container) InitInMemory() error {
	c.ExampleRepo = memory.NewExampleRepository()
	c.QualityRepo = memory.NewQualityRepository()
	c.StateStorage = memory.NewStateStorage()

	if err := c.initServices(); err != nil {
		return errors.Wrap(err, "failed to initialize services")
	}
	c.Log.Warn().Msg("container initialized in memory, data will not persist")
	return nil
}

func (c *Container) initServices() error {
	var err error
	c.ExampleService, err = app.NewExampleService(c.ExampleRepo, c.Registry, c.Config.Cache.LeaderboardTTL, c.Log)
	if err != nil {
		return err
	}

	runner := scanners.ExecRunner{}
	c.ScanService = app.NewScanService(c.QualityRepo, []ports.Scanner{
		scanners.NewBrakeman(runner, c.Config.Scan.TmpDir),
		scanners.NewRubocop(runner, c.Config.Scan.TmpDir),
	}, c.Config.Scan.Concurrency, c.Log)
	return nil
}

// SeedExamples upserts the examples of an Excel or CSV file
func (c *Container) SeedExamples(ctx context.Context, path string) error {
	examples, err := excel.NewDataReader(path, c.Log).ReadExamples()
	if err != nil {
		return errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "failed to read %s", path))
	}

	result, err := c.ExampleService.BulkUpsert(ctx, examples)
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		first := result.Errors[0]
		return errors.Newf(errors.CodeValidationError, "row %d (%s): %v", first.Index+1, first.Name, first.Errors)
	}
	c.Log.Info().Int("created", len(result.Created)).Int("updated", len(result.Updated)).Str("file", path).Msg("examples seeded")
	return nil
}

// CleanupUIStates drops filter states untouched for maxAge; a no-op without a database
func (c *Container) CleanupUIStates(ctx context.Context, maxAge time.Duration) {
	if c.UIStateRepo == nil {
		return
	}
	n, err := c.UIStateRepo.CleanupOldUIStates(ctx, maxAge)
	if err != nil {
		c.Log.Warn().Err(err).Msg("ui state cleanup failed")
		return
	}
	c.Log.Info().Int64("removed", n).Msg("stale ui states removed")
}

// Shutdown releases the database connection
func (c *Container) Shutdown(_ context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
