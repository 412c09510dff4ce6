package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"gazette_fetcher/internal/config"
	"gazette_fetcher/internal/domain"
)

// Processor ingests batches of fetched publications: deduplicates by
// publication ID, persists each one transactionally and reports per-item
// outcomes without letting one bad publication abort the batch.
type Processor struct {
	source       Source
	publications PublicationStore
	auctions     AuctionStore
	txManager    TransactionManager
	publisher    Publisher
	logger       *slog.Logger
	config       config.IngestConfig
}

func NewProcessor(
	source Source,
	publications PublicationStore,
	auctions AuctionStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.IngestConfig,
) *Processor {
	return &Processor{
		source:       source,
		publications: publications,
		auctions:     auctions,
		txManager:    txManager,
		publisher:    publisher,
		logger:       logger,
		config:       cfg,
	}
}

// ProcessDailyPublications fetches and processes today's publications.
// A fetch failure aborts the run; nothing was obtained to process.
func (p *Processor) ProcessDailyPublications(ctx context.Context) (*domain.ProcessingResult, error) {
	pubs, err := p.source.FetchDailyPublications(ctx)
	if err != nil {
		return nil, &ProcessingError{Op: "fetch daily publications", Err: err}
	}
	return p.ProcessPublications(ctx, pubs)
}

// ProcessHistoricalPublications fetches and processes the last daysBack
// days.
func (p *Processor) ProcessHistoricalPublications(ctx context.Context, daysBack int) (*domain.ProcessingResult, error) {
	pubs, err := p.source.FetchHistoricalPublications(ctx, daysBack)
	if err != nil {
		return nil, &ProcessingError{Op: "fetch historical publications", Err: err}
	}
	return p.ProcessPublications(ctx, pubs)
}

// ProcessPublications runs a batch, one publication at a time. Sequential
// on purpose: each publication is its own transaction and concurrent
// writers on the same rows buy nothing here. Details preserve input order.
func (p *Processor) ProcessPublications(ctx context.Context, pubs []domain.PublicationData) (*domain.ProcessingResult, error) {
	result := &domain.ProcessingResult{}

	p.logger.Info("processing publications", "count", len(pubs))

	for i := range pubs {
		pub := &pubs[i]
		result.Processed++

		exists, err := p.publications.Exists(ctx, pub.ID)
		if err != nil {
			result.Errors++
			result.Details = append(result.Details, domain.ItemDetail{
				PublicationID: pub.ID,
				Status:        domain.ItemError,
				Message:       fmt.Sprintf("existence check: %v", err),
			})
			continue
		}
		if exists {
			result.Skipped++
			result.Details = append(result.Details, domain.ItemDetail{
				PublicationID: pub.ID,
				Status:        domain.ItemSkipped,
			})
			continue
		}

		auctionCount, err := p.processSinglePublication(ctx, pub)
		if err != nil {
			// Two concurrent runs can both pass the existence check;
			// the unique constraint decides, and losing the race is a
			// skip, not a failure.
			if errors.Is(err, domain.ErrAlreadyExists) {
				result.Skipped++
				result.Details = append(result.Details, domain.ItemDetail{
					PublicationID: pub.ID,
					Status:        domain.ItemSkipped,
				})
				continue
			}

			p.logger.Error("failed to process publication",
				"publication_id", pub.ID,
				"error", err,
			)
			result.Errors++
			result.Details = append(result.Details, domain.ItemDetail{
				PublicationID: pub.ID,
				Status:        domain.ItemError,
				Message:       err.Error(),
			})
			continue
		}

		result.Created++
		result.Details = append(result.Details, domain.ItemDetail{
			PublicationID: pub.ID,
			Status:        domain.ItemCreated,
		})

		p.publish(ctx, pub, auctionCount)
	}

	p.logger.Info("batch completed",
		"processed", result.Processed,
		"created", result.Created,
		"skipped", result.Skipped,
		"errors", result.Errors,
	)

	return result, nil
}

// processSinglePublication persists one publication and everything parsed
// out of it inside a single transaction. Any failure rolls the whole unit
// back, so no partially ingested publication is ever observable.
func (p *Processor) processSinglePublication(ctx context.Context, data *domain.PublicationData) (int, error) {
	auctionCount := 0

	err := p.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		pub := &domain.Publication{
			ID:               data.ID,
			PublicationDate:  data.PublicationDate,
			XMLContent:       data.XMLContent,
			Canton:           data.Canton,
			Rubric:           data.Rubric,
			SubRubric:        data.SubRubric,
			Language:         data.Language,
			ProcessingStatus: domain.StatusProcessing,
		}
		if err := p.publications.Create(txCtx, pub); err != nil {
			return err
		}

		parsed, err := p.source.ParsePublicationXML(data.XMLContent)
		if err != nil {
			return fmt.Errorf("parse publication xml: %w", err)
		}

		for _, pa := range parsed.Auctions {
			auctionDate, ok := ParseAuctionDate(pa.Date)
			if !ok {
				// Never block ingestion on an unparseable date.
				auctionDate = time.Now()
			} else {
				auctionDate = mergeTime(auctionDate, pa.Time)
			}

			location := pa.Location
			if location == "" {
				location = "Unknown"
			}

			auctionID, err := p.auctions.Create(txCtx, &domain.Auction{
				PublicationID:   pub.ID,
				AuctionDate:     auctionDate,
				AuctionLocation: location,
				Status:          domain.AuctionStatusPublished,
			})
			if err != nil {
				return fmt.Errorf("create auction: %w", err)
			}
			auctionCount++

			for _, obj := range pa.Objects {
				if _, err := p.auctions.CreateObject(txCtx, &domain.AuctionObject{
					AuctionID:   auctionID,
					RawText:     obj.Text,
					ObjectOrder: obj.Order,
				}); err != nil {
					return fmt.Errorf("create auction object: %w", err)
				}
			}
		}

		return p.publications.MarkCompleted(txCtx, pub.ID, time.Now())
	})
	if err != nil {
		return 0, err
	}

	return auctionCount, nil
}

// publish hands the ingested publication to the downstream enrichment
// queue. Best effort: the publication is already durable, so a broker
// hiccup is logged and does not alter the batch result.
func (p *Processor) publish(ctx context.Context, data *domain.PublicationData, auctionCount int) {
	if p.publisher == nil {
		return
	}

	pub := &domain.Publication{
		ID:               data.ID,
		PublicationDate:  data.PublicationDate,
		Canton:           data.Canton,
		Rubric:           data.Rubric,
		SubRubric:        data.SubRubric,
		Language:         data.Language,
		ProcessingStatus: domain.StatusCompleted,
	}
	if err := p.publisher.Publish(ctx, pub, auctionCount); err != nil {
		p.logger.Warn("failed to publish ingest event",
			"publication_id", data.ID,
			"error", err,
		)
	}
}

// GetProcessingStats reads aggregate counts. The counts are independent
// queries run concurrently; stats are advisory so no snapshot isolation is
// needed across them.
func (p *Processor) GetProcessingStats(ctx context.Context) (*domain.ProcessingStats, error) {
	stats := &domain.ProcessingStats{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := p.publications.Count(gctx)
		stats.TotalPublications = n
		return err
	})
	g.Go(func() error {
		n, err := p.publications.CountByStatus(gctx, domain.StatusCompleted)
		stats.CompletedPublications = n
		return err
	})
	g.Go(func() error {
		n, err := p.publications.CountByStatus(gctx, domain.StatusPending, domain.StatusProcessing)
		stats.PendingPublications = n
		return err
	})
	g.Go(func() error {
		n, err := p.auctions.Count(gctx)
		stats.TotalAuctions = n
		return err
	})
	g.Go(func() error {
		n, err := p.auctions.CountObjects(gctx)
		stats.TotalAuctionObjects = n
		return err
	})
	g.Go(func() error {
		t, err := p.publications.LastProcessedAt(gctx)
		stats.LastProcessed = t
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collect stats: %w", err)
	}

	return stats, nil
}

// CleanupFailedProcessing deletes publications stuck in processing status
// beyond the staleness threshold. The transaction design should make these
// impossible, but an infrastructure-level interruption between create and
// completion can still strand rows; this sweep is the recovery path.
// Deletes cascade to auctions and objects.
func (p *Processor) CleanupFailedProcessing(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-p.config.StaleAfter)

	stale, err := p.publications.FindStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find stale publications: %w", err)
	}

	deleted := 0
	for i := range stale {
		if err := p.publications.Delete(ctx, stale[i].ID); err != nil {
			p.logger.Error("failed to delete stale publication",
				"publication_id", stale[i].ID,
				"error", err,
			)
			continue
		}
		deleted++
		p.logger.Info("deleted stale publication",
			"publication_id", stale[i].ID,
			"created_at", stale[i].CreatedAt,
		)
	}

	return deleted, nil
}
