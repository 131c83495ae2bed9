package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ski-portal/internal/data/entity"
	"ski-portal/internal/data/repository"
	"ski-portal/internal/dto/request"
	"ski-portal/internal/dto/response"
	"ski-portal/internal/gravatar"
	"ski-portal/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	// Public endpoints
	GetResortReviews(ctx context.Context, resortID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	GetResortReviewStats(ctx context.Context, resortID string) (*response.ResortReviewStats, error)

	// Authenticated endpoints
	UpsertReview(ctx context.Context, userID, resortID string, req *request.UpsertReviewRequest) (*response.ReviewUpsertResponse, error)
	GetUserReviews(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	GetUserReviewForResort(ctx context.Context, userID, resortID string) (*response.ReviewResponse, error)
	DeleteReview(ctx context.Context, reviewID, userID string, isAdmin bool) error

	// ResyncRatings recomputes the stored aggregate of every resort and
	// reports how many were refreshed.
	ResyncRatings(ctx context.Context) (int, error)
}

type reviewService struct {
	repo    *repository.Repository
	avatars *gravatar.Generator
	log     *zap.Logger
}

func NewReviewService(repo *repository.Repository, avatars *gravatar.Generator, log *zap.Logger) ReviewService {
	return &reviewService{
		repo:    repo,
		avatars: avatars,
		log:     log.With(zap.String("service", "review")),
	}
}

func (s *reviewService) UpsertReview(ctx context.Context, userID, resortID string, req *request.UpsertReviewRequest) (*response.ReviewUpsertResponse, error) {
	req.Normalize()
	if req.IsEmpty() {
		return nil, fmt.Errorf("validation failed: a rating or a comment is required")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Upsert review validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	resort, err := s.findResort(ctx, resortID)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("find review author: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}

	now := time.Now()
	review := &entity.Review{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:   userUUID,
		ResortID: resort.ID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}

	created, err := s.repo.Review.Upsert(ctx, review)
	if err != nil {
		s.log.Error("Failed to save review",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("resort_id", resortID),
		)
		return nil, fmt.Errorf("save review: %w", err)
	}

	if err := s.recalculateResortRating(ctx, resort.ID); err != nil {
		s.log.Warn("Failed to update resort rating",
			zap.Error(err),
			zap.String("resort_id", resortID),
		)
	}

	s.log.Info("Review saved",
		zap.String("review_id", review.ID.String()),
		zap.String("user_id", userID),
		zap.String("resort_id", resortID),
		zap.Bool("created", created),
	)

	return &response.ReviewUpsertResponse{
		Review:  response.ReviewToResponse(review, user.Username, resort.Name, s.avatars.URL(user.Email)),
		Created: created,
	}, nil
}

func (s *reviewService) GetResortReviews(ctx context.Context, resortID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	resort, err := s.findResort(ctx, resortID)
	if err != nil {
		return nil, err
	}

	if req.Page < 1 {
		req.Page = 1
	}
	req.PerPage = req.Limit()

	reviews, err := s.repo.Review.FindByResortID(ctx, resort.ID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get resort reviews",
			zap.Error(err),
			zap.String("resort_id", resortID),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get resort reviews: %w", err)
	}

	total, err := s.repo.Review.CountByResortID(ctx, resort.ID)
	if err != nil {
		s.log.Error("Failed to count resort reviews", zap.Error(err))
		return nil, fmt.Errorf("count resort reviews: %w", err)
	}

	return response.NewPaginatedResponse(s.toResponses(reviews), req.Page, req.PerPage, total), nil
}

func (s *reviewService) GetUserReviews(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	if req.Page < 1 {
		req.Page = 1
	}
	req.PerPage = req.Limit()

	reviews, err := s.repo.Review.FindByUserID(ctx, userUUID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user reviews",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get user reviews: %w", err)
	}

	total, err := s.repo.Review.CountByUserID(ctx, userUUID)
	if err != nil {
		s.log.Error("Failed to count user reviews", zap.Error(err))
		return nil, fmt.Errorf("count user reviews: %w", err)
	}

	return response.NewPaginatedResponse(s.toResponses(reviews), req.Page, req.PerPage, total), nil
}

func (s *reviewService) GetUserReviewForResort(ctx context.Context, userID, resortID string) (*response.ReviewResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}
	resortUUID, err := uuid.Parse(resortID)
	if err != nil {
		return nil, fmt.Errorf("invalid resort ID format %s: %w", resortID, err)
	}

	review, err := s.repo.Review.FindByUserAndResort(ctx, userUUID, resortUUID)
	if err != nil {
		return nil, fmt.Errorf("find own review: %w", err)
	}
	if review == nil {
		return nil, nil
	}

	resp := response.ReviewToResponse(review, "", "", "")
	return &resp, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, reviewID, userID string, isAdmin bool) error {
	reviewUUID, err := uuid.Parse(reviewID)
	if err != nil {
		return fmt.Errorf("invalid review ID format %s: %w", reviewID, err)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	review, err := s.repo.Review.FindByID(ctx, reviewUUID)
	if err != nil {
		return fmt.Errorf("find review: %w", err)
	}
	if review == nil {
		return fmt.Errorf("review %s not found", reviewID)
	}

	if review.UserID != userUUID && !isAdmin {
		return fmt.Errorf("forbidden: review belongs to another user")
	}

	if err := s.repo.Review.Delete(ctx, reviewUUID); err != nil {
		s.log.Error("Failed to delete review",
			zap.Error(err),
			zap.String("review_id", reviewID),
		)
		return fmt.Errorf("delete review: %w", err)
	}

	if err := s.recalculateResortRating(ctx, review.ResortID); err != nil {
		s.log.Warn("Failed to update resort rating",
			zap.Error(err),
			zap.String("resort_id", review.ResortID.String()),
		)
	}

	s.log.Info("Review deleted",
		zap.String("review_id", reviewID),
		zap.String("user_id", userID),
		zap.Bool("by_admin", review.UserID != userUUID),
	)

	return nil
}

func (s *reviewService) GetResortReviewStats(ctx context.Context, resortID string) (*response.ResortReviewStats, error) {
	resort, err := s.findResort(ctx, resortID)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.Review.GetResortReviewStats(ctx, resort.ID)
	if err != nil {
		s.log.Error("Failed to get resort review stats",
			zap.Error(err),
			zap.String("resort_id", resortID),
		)
		return nil, fmt.Errorf("get resort review stats: %w", err)
	}

	resp := response.StatsToResponse(stats)
	return &resp, nil
}

func (s *reviewService) ResyncRatings(ctx context.Context) (int, error) {
	ids, err := s.repo.Resort.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list resorts for resync: %w", err)
	}

	var errs []error
	updated := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.recalculateResortRating(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("resort %s: %w", id, err))
			continue
		}
		updated++
	}

	s.log.Info("Resort ratings resynced",
		zap.Int("resorts", len(ids)),
		zap.Int("updated", updated),
		zap.Int("failed", len(errs)),
	)

	return updated, errors.Join(errs...)
}

// ==================== HELPER METHODS ====================

// recalculateResortRating refreshes the denormalized aggregate on the resort.
// Comment-only reviews count toward review_count but not the average.
func (s *reviewService) recalculateResortRating(ctx context.Context, resortID uuid.UUID) error {
	stats, err := refreshResortRating(ctx, s.repo, resortID)
	if err != nil {
		return err
	}

	s.log.Debug("Resort rating updated",
		zap.String("resort_id", resortID.String()),
		zap.Float64("average_rating", stats.AverageRating),
		zap.Int64("review_count", stats.ReviewCount),
	)

	return nil
}

func refreshResortRating(ctx context.Context, repo *repository.Repository, resortID uuid.UUID) (*entity.RatingStats, error) {
	stats, err := repo.Review.GetResortReviewStats(ctx, resortID)
	if err != nil {
		return nil, fmt.Errorf("get rating stats: %w", err)
	}

	if err := repo.Resort.UpdateRating(ctx, resortID, stats.AverageRating, stats.ReviewCount); err != nil {
		return nil, fmt.Errorf("update resort rating: %w", err)
	}

	return stats, nil
}

func (s *reviewService) findResort(ctx context.Context, resortID string) (*entity.Resort, error) {
	resortUUID, err := uuid.Parse(resortID)
	if err != nil {
		return nil, fmt.Errorf("invalid resort ID format %s: %w", resortID, err)
	}

	resort, err := s.repo.Resort.FindByID(ctx, resortUUID)
	if err != nil {
		return nil, fmt.Errorf("find resort: %w", err)
	}
	if resort == nil {
		return nil, fmt.Errorf("resort %s not found", resortID)
	}

	return resort, nil
}

func (s *reviewService) toResponses(reviews []*entity.ReviewDetail) []response.ReviewResponse {
	out := make([]response.ReviewResponse, len(reviews))
	for i, review := range reviews {
		out[i] = response.ReviewDetailToResponse(review, s.avatars)
	}
	return out
}
