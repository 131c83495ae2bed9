package wire

import (
	"ski-portal/internal/adaptor"
	"ski-portal/pkg/middleware"
	"ski-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireResort(
	r chi.Router,
	resortHandler *adaptor.ResortHandler,
	sessions middleware.SessionResolver,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/resorts", resortHandler.ListResorts)
	r.Get("/resorts/{id}", resortHandler.GetResort)
	r.Get("/states", resortHandler.ListStates)

	// ==================== ADMIN ROUTES ====================
	r.With(
		middleware.AuthSession(sessions, config.Session.CookieName, log),
		middleware.Admin(log),
	).Route("/admin/resorts", func(r chi.Router) {
		r.Post("/", resortHandler.CreateResort)
		r.Put("/{id}", resortHandler.UpdateResort)
		r.Delete("/{id}", resortHandler.DeleteResort)
	})
}
