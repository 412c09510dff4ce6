package scheduler

import (
	"context"
	"log/slog"
	"time"

	"gazette_fetcher/internal/domain"
)

// Ingestor defines the processing operations a scheduled run invokes.
type Ingestor interface {
	ProcessDailyPublications(ctx context.Context) (*domain.ProcessingResult, error)
	CleanupFailedProcessing(ctx context.Context) (int, error)
}

type Scheduler struct {
	ingestor Ingestor
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(ingestor Ingestor, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		ingestor: ingestor,
		interval: interval,
		logger:   logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runIngest(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runIngest(ctx)
		}
	}
}

func (s *Scheduler) runIngest(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	result, err := s.ingestor.ProcessDailyPublications(runCtx)
	if err != nil {
		s.logger.Error("daily ingest failed", "error", err)
	} else {
		s.logger.Info("daily ingest completed",
			"processed", result.Processed,
			"created", result.Created,
			"skipped", result.Skipped,
			"errors", result.Errors,
		)
	}

	deleted, err := s.ingestor.CleanupFailedProcessing(runCtx)
	if err != nil {
		s.logger.Error("cleanup failed", "error", err)
	} else if deleted > 0 {
		s.logger.Info("cleaned up stale publications", "deleted", deleted)
	}
}
