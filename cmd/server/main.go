// Package main is the entry point for the target service HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/sebasr/target-manager/internal/config"
	"github.com/sebasr/target-manager/internal/database"
	"github.com/sebasr/target-manager/internal/factory"
	"github.com/sebasr/target-manager/internal/handlers"
	"github.com/sebasr/target-manager/internal/logging"
	"github.com/sebasr/target-manager/internal/repository"
	"github.com/sebasr/target-manager/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	deps := &server.Dependencies{Config: cfg, Logger: logger}

	if cfg.Database.Driver == config.DriverMemory {
		seed := factory.New(cfg.Mock.Seed).Targets(cfg.Mock.SeedCount)
		deps.TargetRepo = repository.NewMemoryTargetRepository(seed...)
		logger.WithField("targets", len(seed)).Info("using in-memory target store")
	} else {
		db, err := database.New(&cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.WithError(err).Error("error closing database")
			}
		}()

		if err := db.Migrate(context.Background()); err != nil {
			return err
		}

		deps.TargetRepo = repository.NewSQLTargetRepository(db)
		deps.HealthCheck = handlers.HealthChecker(db.HealthCheck)
		logger.WithField("driver", cfg.Database.Driver).Info("successfully connected to database")
	}

	router, err := server.New(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
