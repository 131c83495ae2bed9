package wire

import (
	"ski-portal/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireWeather(r chi.Router, weatherHandler *adaptor.WeatherHandler) {
	// GET /api/resorts/{id}/weather - current conditions and forecast (public)
	r.Get("/resorts/{id}/weather", weatherHandler.GetResortWeather)
}
