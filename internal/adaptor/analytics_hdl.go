package adaptor

import (
	"net/http"

	"ski-portal/internal/usecase"
	"ski-portal/pkg/utils"

	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	service usecase.AnalyticsService
	log     *zap.Logger
}

func NewAnalyticsHandler(service usecase.AnalyticsService, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		log:     log.With(zap.String("handler", "analytics")),
	}
}

// Dashboard handles GET /api/admin/analytics (admin)
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		respondServiceError(h.log, w, err, "load dashboard")
		return
	}

	utils.ResponseSuccess(w, "success", dashboard)
}
