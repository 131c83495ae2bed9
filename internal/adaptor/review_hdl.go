package adaptor

import (
	"encoding/json"
	"net/http"

	"ski-portal/internal/dto/request"
	"ski-portal/internal/usecase"
	"ski-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	service usecase.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(service usecase.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log.With(zap.String("handler", "review")),
	}
}

// UpsertReview handles PUT /api/resorts/{id}/review (protected)
func (h *ReviewHandler) UpsertReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpsertReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.UpsertReview(r.Context(), userID.String(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "upsert review")
		return
	}

	if result.Created {
		utils.ResponseCreated(w, "Review created", result)
		return
	}
	utils.ResponseSuccess(w, "Review updated", result)
}

// GetResortReviews handles GET /api/resorts/{id}/reviews (public)
func (h *ReviewHandler) GetResortReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.GetResortReviews(r.Context(), chi.URLParam(r, "id"), paginationFromQuery(r, 10))
	if err != nil {
		h.handleServiceError(w, err, "get resort reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}

// GetOwnReview handles GET /api/resorts/{id}/review (protected)
func (h *ReviewHandler) GetOwnReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	review, err := h.service.GetUserReviewForResort(r.Context(), userID.String(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get own review")
		return
	}
	if review == nil {
		utils.ResponseNotFound(w, "You have not reviewed this resort")
		return
	}

	utils.ResponseSuccess(w, "success", review)
}

// GetUserReviews handles GET /api/user/reviews (protected)
func (h *ReviewHandler) GetUserReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	reviews, err := h.service.GetUserReviews(r.Context(), userID.String(), paginationFromQuery(r, 10))
	if err != nil {
		h.handleServiceError(w, err, "get user reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}

// DeleteReview handles DELETE /api/reviews/{id} (owner or admin)
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	err := h.service.DeleteReview(r.Context(), chi.URLParam(r, "id"), userID.String(), utils.IsAdminFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err, "delete review")
		return
	}

	utils.ResponseSuccess(w, "Review deleted", nil)
}

// GetResortReviewStats handles GET /api/resorts/{id}/review-stats (public)
func (h *ReviewHandler) GetResortReviewStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetResortReviewStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get resort review stats")
		return
	}

	utils.ResponseSuccess(w, "success", stats)
}

func (h *ReviewHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	respondServiceError(h.log, w, err, operation)
}
