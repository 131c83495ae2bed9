package repository

import (
	"context"
	"errors"
	"fmt"

	"ski-portal/internal/data/entity"
	"ski-portal/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReviewRepository interface {
	// Upsert inserts the review or, when the user already reviewed the
	// resort, overwrites rating and comment. It reports whether a new row
	// was inserted and fills ID/CreatedAt from the stored row.
	Upsert(ctx context.Context, review *entity.Review) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	FindByResortID(ctx context.Context, resortID uuid.UUID, limit, offset int) ([]*entity.ReviewDetail, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.ReviewDetail, error)
	FindByUserAndResort(ctx context.Context, userID, resortID uuid.UUID) (*entity.Review, error)
	FindRecent(ctx context.Context, limit int) ([]*entity.ReviewDetail, error)
	CountByResortID(ctx context.Context, resortID uuid.UUID) (int64, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	ResortIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Business queries
	GetResortReviewStats(ctx context.Context, resortID uuid.UUID) (*entity.RatingStats, error)
	FindAllFacts(ctx context.Context) ([]entity.ReviewFact, error)
}

// reviewRepository keeps reviews by soft-deleted users in the table but
// leaves them out of every listing and aggregate.
type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

const reviewDetailSelect = `
	SELECT rv.id, rv.user_id, rv.resort_id, rv.rating, rv.comment, rv.created_at, rv.updated_at,
	       u.username, u.email, rs.name
	FROM reviews rv
	JOIN users u ON u.id = rv.user_id
	JOIN resorts rs ON rs.id = rv.resort_id
`

func (r *reviewRepository) Upsert(ctx context.Context, review *entity.Review) (bool, error) {
	query := `
		INSERT INTO reviews (id, user_id, resort_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, resort_id) DO UPDATE
		SET rating = EXCLUDED.rating,
		    comment = EXCLUDED.comment,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.QueryRow(ctx, query,
		review.ID,
		review.UserID,
		review.ResortID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
		review.UpdatedAt,
	).Scan(&review.ID, &review.CreatedAt, &inserted)
	if err != nil {
		r.log.Error("Failed to upsert review",
			zap.Error(err),
			zap.String("user_id", review.UserID.String()),
			zap.String("resort_id", review.ResortID.String()),
		)
		return false, fmt.Errorf("upsert review for resort %s by user %s: %w",
			review.ResortID.String(), review.UserID.String(), err)
	}

	return inserted, nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	query := `
		SELECT id, user_id, resort_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE id = $1
	`

	var review entity.Review
	err := r.db.QueryRow(ctx, query, id).Scan(
		&review.ID,
		&review.UserID,
		&review.ResortID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by ID",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return nil, fmt.Errorf("find review by ID %s: %w", id.String(), err)
	}

	return &review, nil
}

func (r *reviewRepository) queryDetails(ctx context.Context, query string, args ...any) ([]*entity.ReviewDetail, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*entity.ReviewDetail
	for rows.Next() {
		var d entity.ReviewDetail
		err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.ResortID,
			&d.Rating,
			&d.Comment,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.Username,
			&d.Email,
			&d.ResortName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, &d)
	}

	return reviews, rows.Err()
}

func (r *reviewRepository) FindByResortID(ctx context.Context, resortID uuid.UUID, limit, offset int) ([]*entity.ReviewDetail, error) {
	query := reviewDetailSelect + `
		WHERE rv.resort_id = $1 AND u.deleted_at IS NULL
		ORDER BY rv.updated_at DESC
		LIMIT $2 OFFSET $3
	`

	reviews, err := r.queryDetails(ctx, query, resortID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reviews by resort ID",
			zap.Error(err),
			zap.String("resort_id", resortID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find reviews by resort ID %s: %w", resortID.String(), err)
	}

	return reviews, nil
}

func (r *reviewRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.ReviewDetail, error) {
	query := reviewDetailSelect + `
		WHERE rv.user_id = $1 AND rs.deleted_at IS NULL
		ORDER BY rv.updated_at DESC
		LIMIT $2 OFFSET $3
	`

	reviews, err := r.queryDetails(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reviews by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find reviews by user ID %s: %w", userID.String(), err)
	}

	return reviews, nil
}

func (r *reviewRepository) FindRecent(ctx context.Context, limit int) ([]*entity.ReviewDetail, error) {
	query := reviewDetailSelect + `
		WHERE rs.deleted_at IS NULL AND u.deleted_at IS NULL
		ORDER BY rv.updated_at DESC
		LIMIT $1
	`

	reviews, err := r.queryDetails(ctx, query, limit)
	if err != nil {
		r.log.Error("Failed to find recent reviews", zap.Error(err), zap.Int("limit", limit))
		return nil, fmt.Errorf("find recent reviews: %w", err)
	}

	return reviews, nil
}

func (r *reviewRepository) FindByUserAndResort(ctx context.Context, userID, resortID uuid.UUID) (*entity.Review, error) {
	query := `
		SELECT id, user_id, resort_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE user_id = $1 AND resort_id = $2
	`

	var review entity.Review
	err := r.db.QueryRow(ctx, query, userID, resortID).Scan(
		&review.ID,
		&review.UserID,
		&review.ResortID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by user and resort",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("resort_id", resortID.String()),
		)
		return nil, fmt.Errorf("find review by user %s and resort %s: %w",
			userID.String(), resortID.String(), err)
	}

	return &review, nil
}

func (r *reviewRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *reviewRepository) CountByResortID(ctx context.Context, resortID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.resort_id = $1 AND u.deleted_at IS NULL
	`
	count, err := r.count(ctx, query, resortID)
	if err != nil {
		r.log.Error("Failed to count reviews by resort ID",
			zap.Error(err),
			zap.String("resort_id", resortID.String()),
		)
		return 0, fmt.Errorf("count reviews by resort ID %s: %w", resortID.String(), err)
	}
	return count, nil
}

func (r *reviewRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM reviews rv
		JOIN resorts rs ON rs.id = rv.resort_id
		WHERE rv.user_id = $1 AND rs.deleted_at IS NULL
	`
	count, err := r.count(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to count reviews by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count reviews by user ID %s: %w", userID.String(), err)
	}
	return count, nil
}

func (r *reviewRepository) CountAll(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE u.deleted_at IS NULL
	`
	count, err := r.count(ctx, query)
	if err != nil {
		r.log.Error("Failed to count reviews", zap.Error(err))
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

// ResortIDsByUser lists the resorts a user has reviewed, so their aggregates
// can be refreshed when the user goes away.
func (r *reviewRepository) ResortIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT resort_id FROM reviews WHERE user_id = $1`, userID)
	if err != nil {
		r.log.Error("Failed to list reviewed resorts",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("list resorts reviewed by user %s: %w", userID.String(), err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect reviewed resort IDs: %w", err)
	}
	return ids, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete review",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return fmt.Errorf("delete review %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s not found", id.String())
	}

	r.log.Info("Review deleted", zap.String("review_id", id.String()))
	return nil
}

// GetResortReviewStats averages only reviews that carry a rating; comment-only
// reviews still count towards ReviewCount.
func (r *reviewRepository) GetResortReviewStats(ctx context.Context, resortID uuid.UUID) (*entity.RatingStats, error) {
	query := `
		SELECT rv.rating, COUNT(*)
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.resort_id = $1 AND u.deleted_at IS NULL
		GROUP BY rv.rating
	`

	rows, err := r.db.Query(ctx, query, resortID)
	if err != nil {
		r.log.Error("Failed to get resort review stats",
			zap.Error(err),
			zap.String("resort_id", resortID.String()),
		)
		return nil, fmt.Errorf("get resort review stats for %s: %w", resortID.String(), err)
	}
	defer rows.Close()

	var stats entity.RatingStats
	var sum int64
	for rows.Next() {
		var rating *int
		var count int64
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("scan review stats row: %w", err)
		}

		stats.ReviewCount += count
		if rating == nil || *rating < 1 || *rating > 5 {
			continue
		}
		stats.Distribution[*rating] += count
		stats.RatingCount += count
		sum += int64(*rating) * count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review stats rows: %w", err)
	}

	if stats.RatingCount > 0 {
		stats.AverageRating = float64(sum) / float64(stats.RatingCount)
	}

	return &stats, nil
}

func (r *reviewRepository) FindAllFacts(ctx context.Context) ([]entity.ReviewFact, error) {
	query := `
		SELECT rv.id, rv.resort_id, rs.name, rs.state, rv.rating, rv.created_at
		FROM reviews rv
		JOIN resorts rs ON rs.id = rv.resort_id
		JOIN users u ON u.id = rv.user_id
		WHERE rs.deleted_at IS NULL AND u.deleted_at IS NULL
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to load review facts", zap.Error(err))
		return nil, fmt.Errorf("load review facts: %w", err)
	}
	defer rows.Close()

	var facts []entity.ReviewFact
	for rows.Next() {
		var f entity.ReviewFact
		if err := rows.Scan(&f.ReviewID, &f.ResortID, &f.ResortName, &f.ResortState, &f.Rating, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review fact: %w", err)
		}
		facts = append(facts, f)
	}

	return facts, rows.Err()
}
