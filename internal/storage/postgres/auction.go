package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"gazette_fetcher/internal/domain"
)

type AuctionStore struct {
	db *sqlx.DB
}

func NewAuctionStore(db *sqlx.DB) *AuctionStore {
	return &AuctionStore{db: db}
}

func (s *AuctionStore) Create(ctx context.Context, auction *domain.Auction) (int64, error) {
	query := `
		INSERT INTO auctions (
			publication_id, auction_date, auction_location, status
		) VALUES (
			$1, $2, $3, $4
		)
		RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &id, query,
		auction.PublicationID,
		auction.AuctionDate,
		auction.AuctionLocation,
		auction.Status,
	)
	if err != nil {
		return 0, err
	}

	auction.ID = id
	return id, nil
}

func (s *AuctionStore) CreateObject(ctx context.Context, object *domain.AuctionObject) (int64, error) {
	query := `
		INSERT INTO auction_objects (
			auction_id, raw_text, object_order
		) VALUES (
			$1, $2, $3
		)
		RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &id, query,
		object.AuctionID,
		object.RawText,
		object.ObjectOrder,
	)
	if err != nil {
		return 0, err
	}

	object.ID = id
	return id, nil
}

func (s *AuctionStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM auctions")
	return count, err
}

func (s *AuctionStore) CountObjects(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM auction_objects")
	return count, err
}
