package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"gazette_fetcher/internal/domain"
)

type Source interface {
	FetchDailyPublications(ctx context.Context) ([]domain.PublicationData, error)
	FetchHistoricalPublications(ctx context.Context, daysBack int) ([]domain.PublicationData, error)
	ParsePublicationXML(xmlContent string) (*domain.ParsedPublication, error)
}

type PublicationStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, pub *domain.Publication) error
	MarkCompleted(ctx context.Context, id string, completedAt time.Time) error
	FindStale(ctx context.Context, olderThan time.Time) ([]domain.Publication, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, statuses ...domain.ProcessingStatus) (int64, error)
	LastProcessedAt(ctx context.Context) (*time.Time, error)
}

type AuctionStore interface {
	Create(ctx context.Context, auction *domain.Auction) (int64, error)
	CreateObject(ctx context.Context, object *domain.AuctionObject) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountObjects(ctx context.Context) (int64, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, pub *domain.Publication, auctionCount int) error
	Close() error
}
