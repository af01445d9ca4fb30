package main

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goldendash/internal/config"
	"goldendash/internal/container"
	"goldendash/internal/errors"
	"goldendash/internal/logger"
	"goldendash/internal/migration"
	"goldendash/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// uiStateMaxAge is how long an untouched filter configuration is kept
const uiStateMaxAge = 90 * 24 * time.Hour

// initDatabase connects to PostgreSQL and brings the schema up to date
func initDatabase(ctx context.Context, appConfig *config.Config, log zerolog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to connect to database"))
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	log.Info().Str("schema", migrator.Version()).Msg("database ready")
	return db, nil
}

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Options{Level: appConfig.Log.Level, Pretty: appConfig.Log.Pretty})
	if envErr != nil {
		log.Debug().Msg("no .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.With(ctx, log)

	appContainer, err := container.New(appConfig, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create application container")
	}
	defer appContainer.Shutdown(context.Background())

	if appConfig.Database.URL != "" {
		db, err := initDatabase(ctx, appConfig, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize database")
		}
		if err := appContainer.InitWithDatabase(db); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize container")
		}
		appContainer.CleanupUIStates(ctx, uiStateMaxAge)
	} else if err := appContainer.InitInMemory(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize container")
	}

	if appConfig.Data.ExcelFile != "" {
		if err := appContainer.SeedExamples(ctx, appConfig.Data.ExcelFile); err != nil {
			log.Fatal().Err(err).Str("file", appConfig.Data.ExcelFile).Msg("failed to seed examples")
		}
	}

	server, err := ui.NewServer(ui.Deps{
		Examples:     appContainer.ExampleService,
		Scans:        appContainer.ScanService,
		Registry:     appContainer.Registry,
		StateStorage: appContainer.StateStorage,
		APIToken:     appConfig.API.Token,
		AppsDir:      appConfig.Scan.AppsDir,
		ScanTimeout:  appConfig.Scan.Timeout,
		GinMode:      appConfig.Server.GinMode,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Info().Str("port", appConfig.Profiling.Port).Msg("pprof server starting")
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Error().Err(err).Msg("pprof server failed")
			}
		}()
	}

	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server stopped")
	}
}
