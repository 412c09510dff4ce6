package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gazette_fetcher/internal/domain"
)

// psql builds queries with Postgres placeholders for the dynamic
// status/threshold filters.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PublicationStore struct {
	db *sqlx.DB
}

func NewPublicationStore(db *sqlx.DB) *PublicationStore {
	return &PublicationStore{db: db}
}

func (s *PublicationStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &exists,
		"SELECT EXISTS (SELECT 1 FROM publications WHERE id = $1)", id)
	return exists, err
}

func (s *PublicationStore) Create(ctx context.Context, pub *domain.Publication) error {
	query := `
		INSERT INTO publications (
			id, publication_date, xml_content, canton, rubric, sub_rubric,
			language, processing_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING created_at`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &pub.CreatedAt, query,
		pub.ID,
		pub.PublicationDate,
		pub.XMLContent,
		pub.Canton,
		pub.Rubric,
		pub.SubRubric,
		pub.Language,
		pub.ProcessingStatus,
	)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (s *PublicationStore) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE publications
		 SET processing_status = $1, processed_at = $2
		 WHERE id = $3`,
		domain.StatusCompleted, completedAt, id,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PublicationStore) FindStale(ctx context.Context, olderThan time.Time) ([]domain.Publication, error) {
	query, args, err := psql.
		Select("id", "publication_date", "canton", "rubric", "sub_rubric",
			"language", "processing_status", "created_at", "processed_at").
		From("publications").
		Where(sq.Eq{"processing_status": domain.StatusProcessing}).
		Where(sq.Lt{"created_at": olderThan}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []domain.Publication
	for rows.Next() {
		var pub domain.Publication
		if err := rows.Scan(
			&pub.ID,
			&pub.PublicationDate,
			&pub.Canton,
			&pub.Rubric,
			&pub.SubRubric,
			&pub.Language,
			&pub.ProcessingStatus,
			&pub.CreatedAt,
			&pub.ProcessedAt,
		); err != nil {
			return nil, err
		}
		stale = append(stale, pub)
	}

	return stale, rows.Err()
}

// Delete removes a publication; auctions and objects go with it via the
// schema's cascades.
func (s *PublicationStore) Delete(ctx context.Context, id string) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		"DELETE FROM publications WHERE id = $1", id)
	return err
}

func (s *PublicationStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM publications")
	return count, err
}

func (s *PublicationStore) CountByStatus(ctx context.Context, statuses ...domain.ProcessingStatus) (int64, error) {
	query, args, err := psql.
		Select("COUNT(*)").
		From("publications").
		Where(sq.Eq{"processing_status": statuses}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	err = s.db.GetContext(ctx, &count, query, args...)
	return count, err
}

func (s *PublicationStore) LastProcessedAt(ctx context.Context) (*time.Time, error) {
	var last sql.NullTime
	err := s.db.GetContext(ctx, &last,
		"SELECT MAX(processed_at) FROM publications")
	if err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
