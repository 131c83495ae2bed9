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

type ResortHandler struct {
	service usecase.ResortService
	log     *zap.Logger
}

func NewResortHandler(service usecase.ResortService, log *zap.Logger) *ResortHandler {
	return &ResortHandler{
		service: service,
		log:     log.With(zap.String("handler", "resort")),
	}
}

// ListResorts handles GET /api/resorts?search=&state=&sort=&page=&per_page=
func (h *ResortHandler) ListResorts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.ResortListRequest{
		PaginatedRequest: *paginationFromQuery(r, 20),
		Search:           query.Get("search"),
		State:            query.Get("state"),
		Sort:             query.Get("sort"),
	}

	resorts, err := h.service.ListResorts(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "list resorts")
		return
	}

	utils.ResponseSuccess(w, "success", resorts)
}

// GetResort handles GET /api/resorts/{id}
func (h *ResortHandler) GetResort(w http.ResponseWriter, r *http.Request) {
	resort, err := h.service.GetResort(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get resort")
		return
	}

	utils.ResponseSuccess(w, "success", resort)
}

// ListStates handles GET /api/states
func (h *ResortHandler) ListStates(w http.ResponseWriter, r *http.Request) {
	states, err := h.service.ListStates(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list states")
		return
	}

	utils.ResponseSuccess(w, "success", states)
}

// CreateResort handles POST /api/admin/resorts (admin)
func (h *ResortHandler) CreateResort(w http.ResponseWriter, r *http.Request) {
	var req request.ResortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	resort, err := h.service.CreateResort(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create resort")
		return
	}

	utils.ResponseCreated(w, "Resort created", resort)
}

// UpdateResort handles PUT /api/admin/resorts/{id} (admin)
func (h *ResortHandler) UpdateResort(w http.ResponseWriter, r *http.Request) {
	var req request.ResortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	resort, err := h.service.UpdateResort(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "update resort")
		return
	}

	utils.ResponseSuccess(w, "Resort updated", resort)
}

// DeleteResort handles DELETE /api/admin/resorts/{id} (admin)
func (h *ResortHandler) DeleteResort(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteResort(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err, "delete resort")
		return
	}

	utils.ResponseSuccess(w, "Resort deleted", nil)
}

func (h *ResortHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	respondServiceError(h.log, w, err, operation)
}
