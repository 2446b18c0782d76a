package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dhima/mysql-crud/internal/database"
	"github.com/dhima/mysql-crud/internal/logging"
	"github.com/dhima/mysql-crud/internal/records"
	"github.com/dhima/mysql-crud/internal/scheduler"
	"github.com/dhima/mysql-crud/pkg/config"
	"github.com/dhima/mysql-crud/platform/events"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	cfg := config.FromEnv()

	logger, err := logging.New(logging.Options{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		File:        cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	jobs, err := scheduler.LoadJobs(cfg.PurgeJobsFile)
	if err != nil {
		logger.Fatal("failed to load purge jobs", zap.String("file", cfg.PurgeJobsFile), zap.Error(err))
	}
	if len(jobs) == 0 {
		logger.Warn("no purge jobs configured", zap.String("file", cfg.PurgeJobsFile))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.New(database.ConfigFromApp(cfg), logger)
	if err := db.Connect(ctx); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err), zap.Stringer("database", db.Config()))
	}
	defer func() { _, _ = db.Disconnect() }()

	publisher := events.NewSink(cfg.Brokers(), cfg.KafkaTopic, logging.Zap(logger))
	defer func() { _ = publisher.Close() }()

	service := records.NewService(db, publisher, logger, cfg.AllowedTables)

	engine, err := scheduler.NewEngine(service, jobs, logging.Zap(logger))
	if err != nil {
		logger.Fatal("failed to schedule purge jobs", zap.Error(err))
	}

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler stopped", zap.Error(err))
		os.Exit(1)
	}
}
