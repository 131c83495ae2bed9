package adaptor

import (
	"net/http"

	"ski-portal/internal/usecase"
	"ski-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type WeatherHandler struct {
	service usecase.WeatherService
	log     *zap.Logger
}

func NewWeatherHandler(service usecase.WeatherService, log *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		service: service,
		log:     log.With(zap.String("handler", "weather")),
	}
}

// GetResortWeather handles GET /api/resorts/{id}/weather
func (h *WeatherHandler) GetResortWeather(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GetResortWeather(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(h.log, w, err, "get resort weather")
		return
	}

	utils.ResponseSuccess(w, "success", report)
}
