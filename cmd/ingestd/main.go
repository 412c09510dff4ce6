package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gazette_fetcher/internal/config"
	"gazette_fetcher/internal/publisher"
	"gazette_fetcher/internal/scheduler"
	"gazette_fetcher/internal/service"
	"gazette_fetcher/internal/source/shab"
	"gazette_fetcher/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	backfillDays := flag.Int("backfill", 0, "run a one-shot historical backfill for N days and exit")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		QueueName:  cfg.RabbitMQ.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	publicationStore := postgres.NewPublicationStore(db)
	auctionStore := postgres.NewAuctionStore(db)
	txManager := postgres.NewTransactionManager(db)

	client := shab.New(shab.Config{
		BaseURL:     cfg.API.BaseURL,
		PageSize:    cfg.API.PageSize,
		Timeout:     cfg.API.Timeout,
		MaxAttempts: cfg.API.Retry.MaxAttempts,
		RetryDelay:  cfg.API.Retry.Delay,
		ChunkDays:   cfg.API.ChunkDays,
		ChunkDelay:  cfg.API.ChunkDelay,
	}, logger)

	processor := service.NewProcessor(
		client,
		publicationStore,
		auctionStore,
		txManager,
		rabbitMQ,
		logger,
		cfg.Ingest,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if *backfillDays > 0 {
		logger.Info("starting historical backfill", "days", *backfillDays)

		result, err := processor.ProcessHistoricalPublications(ctx, *backfillDays)
		if err != nil {
			logger.Error("backfill failed", "error", err)
			os.Exit(1)
		}
		logger.Info("backfill completed",
			"processed", result.Processed,
			"created", result.Created,
			"skipped", result.Skipped,
			"errors", result.Errors,
		)
		return
	}

	sched := scheduler.NewScheduler(processor, cfg.Ingest.Interval, logger)

	logger.Info("starting gazette ingestd",
		"source", client.Name(),
		"interval", cfg.Ingest.Interval,
	)

	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
