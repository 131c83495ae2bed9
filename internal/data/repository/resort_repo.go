package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ski-portal/internal/data/entity"
	"ski-portal/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ResortRepository interface {
	Create(ctx context.Context, resort *entity.Resort) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Resort, error)
	FindAll(ctx context.Context, filter entity.ResortFilter, limit, offset int) ([]*entity.Resort, error)
	Count(ctx context.Context, filter entity.ResortFilter) (int64, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	ListStates(ctx context.Context) ([]string, error)
	Update(ctx context.Context, resort *entity.Resort) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateRating(ctx context.Context, id uuid.UUID, avgRating float64, reviewCount int64) error
}

type resortRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewResortRepository(db database.PgxIface, log *zap.Logger) ResortRepository {
	return &resortRepository{
		db:  db,
		log: log.With(zap.String("repository", "resort")),
	}
}

const resortColumns = `id, name, state, city, address, phone, website, latitude, longitude,
	base_elevation, summit_elevation, trail_count, lift_count, description,
	average_rating, review_count, created_at, updated_at, deleted_at`

func scanResort(row pgx.Row) (*entity.Resort, error) {
	var resort entity.Resort
	err := row.Scan(
		&resort.ID,
		&resort.Name,
		&resort.State,
		&resort.City,
		&resort.Address,
		&resort.Phone,
		&resort.Website,
		&resort.Latitude,
		&resort.Longitude,
		&resort.BaseElevation,
		&resort.SummitElevation,
		&resort.TrailCount,
		&resort.LiftCount,
		&resort.Description,
		&resort.AverageRating,
		&resort.ReviewCount,
		&resort.CreatedAt,
		&resort.UpdatedAt,
		&resort.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &resort, nil
}

// likeEscaper makes user input match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereFilter appends the filter conditions and returns the next placeholder
// position.
func whereFilter(b *strings.Builder, args *[]any, filter entity.ResortFilter) int {
	argCount := len(*args) + 1

	if search := strings.TrimSpace(filter.Search); search != "" {
		fmt.Fprintf(b, ` AND (name ILIKE $%d ESCAPE '\' OR city ILIKE $%d ESCAPE '\')`, argCount, argCount)
		*args = append(*args, "%"+likeEscaper.Replace(search)+"%")
		argCount++
	}

	if state := strings.TrimSpace(filter.State); state != "" {
		fmt.Fprintf(b, " AND state = $%d", argCount)
		*args = append(*args, state)
		argCount++
	}

	return argCount
}

func orderBy(sort entity.ResortSort) string {
	switch sort {
	case entity.ResortSortRating:
		return " ORDER BY average_rating DESC, review_count DESC, name"
	case entity.ResortSortReviews:
		return " ORDER BY review_count DESC, name"
	default:
		return " ORDER BY name"
	}
}

func (r *resortRepository) Create(ctx context.Context, resort *entity.Resort) error {
	query := `
		INSERT INTO resorts (id, name, state, city, address, phone, website, latitude, longitude,
		                     base_elevation, summit_elevation, trail_count, lift_count, description,
		                     average_rating, review_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.Exec(ctx, query,
		resort.ID,
		resort.Name,
		resort.State,
		resort.City,
		resort.Address,
		resort.Phone,
		resort.Website,
		resort.Latitude,
		resort.Longitude,
		resort.BaseElevation,
		resort.SummitElevation,
		resort.TrailCount,
		resort.LiftCount,
		resort.Description,
		resort.AverageRating,
		resort.ReviewCount,
		resort.CreatedAt,
		resort.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create resort",
			zap.Error(err),
			zap.String("name", resort.Name),
		)
		return fmt.Errorf("create resort %s: %w", resort.Name, err)
	}

	return nil
}

func (r *resortRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Resort, error) {
	query := `SELECT ` + resortColumns + ` FROM resorts WHERE id = $1 AND deleted_at IS NULL`

	resort, err := scanResort(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find resort by ID",
			zap.Error(err),
			zap.String("resort_id", id.String()),
		)
		return nil, fmt.Errorf("find resort by ID %s: %w", id.String(), err)
	}

	return resort, nil
}

func (r *resortRepository) FindAll(ctx context.Context, filter entity.ResortFilter, limit, offset int) ([]*entity.Resort, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + resortColumns + ` FROM resorts WHERE deleted_at IS NULL`)

	args := []any{}
	argCount := whereFilter(&queryBuilder, &args, filter)

	queryBuilder.WriteString(orderBy(filter.Sort))
	fmt.Fprintf(&queryBuilder, " LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to find all resorts",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
			zap.String("search", filter.Search),
			zap.String("state", filter.State),
		)
		return nil, fmt.Errorf("find all resorts limit %d offset %d: %w", limit, offset, err)
	}
	defer rows.Close()

	var resorts []*entity.Resort
	for rows.Next() {
		resort, err := scanResort(rows)
		if err != nil {
			r.log.Error("Failed to scan resort row", zap.Error(err))
			return nil, fmt.Errorf("scan resort row: %w", err)
		}
		resorts = append(resorts, resort)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resort rows: %w", err)
	}

	return resorts, nil
}

func (r *resortRepository) Count(ctx context.Context, filter entity.ResortFilter) (int64, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT COUNT(*) FROM resorts WHERE deleted_at IS NULL`)

	args := []any{}
	whereFilter(&queryBuilder, &args, filter)

	var count int64
	if err := r.db.QueryRow(ctx, queryBuilder.String(), args...).Scan(&count); err != nil {
		r.log.Error("Failed to count resorts", zap.Error(err))
		return 0, fmt.Errorf("count resorts: %w", err)
	}

	return count, nil
}

func (r *resortRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM resorts WHERE deleted_at IS NULL`)
	if err != nil {
		r.log.Error("Failed to list resort IDs", zap.Error(err))
		return nil, fmt.Errorf("list resort IDs: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect resort IDs: %w", err)
	}
	return ids, nil
}

func (r *resortRepository) ListStates(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT state FROM resorts WHERE deleted_at IS NULL ORDER BY state`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list resort states", zap.Error(err))
		return nil, fmt.Errorf("list resort states: %w", err)
	}

	states, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect resort states: %w", err)
	}
	return states, nil
}

func (r *resortRepository) Update(ctx context.Context, resort *entity.Resort) error {
	query := `
		UPDATE resorts
		SET name = $2, state = $3, city = $4, address = $5, phone = $6, website = $7,
		    latitude = $8, longitude = $9, base_elevation = $10, summit_elevation = $11,
		    trail_count = $12, lift_count = $13, description = $14, updated_at = $15
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		resort.ID,
		resort.Name,
		resort.State,
		resort.City,
		resort.Address,
		resort.Phone,
		resort.Website,
		resort.Latitude,
		resort.Longitude,
		resort.BaseElevation,
		resort.SummitElevation,
		resort.TrailCount,
		resort.LiftCount,
		resort.Description,
		resort.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update resort",
			zap.Error(err),
			zap.String("resort_id", resort.ID.String()),
		)
		return fmt.Errorf("update resort %s: %w", resort.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("resort %s not found", resort.ID.String())
	}

	return nil
}

func (r *resortRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE resorts SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete resort",
			zap.Error(err),
			zap.String("resort_id", id.String()),
		)
		return fmt.Errorf("delete resort %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("resort %s not found", id.String())
	}

	r.log.Info("Resort deleted", zap.String("resort_id", id.String()))
	return nil
}

func (r *resortRepository) UpdateRating(ctx context.Context, id uuid.UUID, avgRating float64, reviewCount int64) error {
	query := `
		UPDATE resorts
		SET average_rating = $2, review_count = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id, avgRating, reviewCount)
	if err != nil {
		r.log.Error("Failed to update resort rating",
			zap.Error(err),
			zap.String("resort_id", id.String()),
			zap.Float64("new_rating", avgRating),
		)
		return fmt.Errorf("update rating for resort %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("resort %s not found", id.String())
	}

	return nil
}
