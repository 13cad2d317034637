package main

import (
	"context"
	"fmt"
	"io"

	"github.com/bhajan-portal/internal/config"
	"github.com/bhajan-portal/internal/database"
	"github.com/bhajan-portal/internal/repository"
	"github.com/bhajan-portal/internal/service"
	"github.com/bhajan-portal/pkg/logger"
	"github.com/rs/zerolog"
)

// app bundles everything a command needs once config, logging and the
// database are up
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	db       *database.DB
	services *service.Services
	logFile  io.Closer
}

// bootstrap loads configuration, opens the log file and database, and brings
// the schema up to date
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log, logFile, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Dir:    cfg.Log.Dir,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	report, err := db.RunMigrations(ctx)
	if err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if len(report.Warnings) > 0 {
		log.Warn().Strs("warnings", report.Warnings).Msg("Database started with migration warnings")
	}

	repos := repository.New(db.DB)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		services: service.NewServices(repos, db, log),
		logFile:  logFile,
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Error().Err(err).Msg("Failed to close database")
	}
	a.logFile.Close()
}
