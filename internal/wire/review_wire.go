package wire

import (
	"ski-portal/internal/adaptor"
	"ski-portal/pkg/middleware"
	"ski-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReview(
	r chi.Router,
	reviewHandler *adaptor.ReviewHandler,
	sessions middleware.SessionResolver,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/resorts/{id}/reviews - paginated reviews with author
	r.Get("/resorts/{id}/reviews", reviewHandler.GetResortReviews)

	// GET /api/resorts/{id}/review-stats - average and star distribution
	r.Get("/resorts/{id}/review-stats", reviewHandler.GetResortReviewStats)

	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(sessions, config.Session.CookieName, log))

		// PUT /api/resorts/{id}/review - create or replace own review
		r.Put("/resorts/{id}/review", reviewHandler.UpsertReview)

		// GET /api/resorts/{id}/review - own review of the resort
		r.Get("/resorts/{id}/review", reviewHandler.GetOwnReview)

		// GET /api/user/reviews - caller's reviews
		r.Get("/user/reviews", reviewHandler.GetUserReviews)

		// DELETE /api/reviews/{id} - owner or admin
		r.Delete("/reviews/{id}", reviewHandler.DeleteReview)
	})
}
