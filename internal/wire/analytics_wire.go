package wire

import (
	"ski-portal/internal/adaptor"
	"ski-portal/pkg/middleware"
	"ski-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAnalytics(
	r chi.Router,
	analyticsHandler *adaptor.AnalyticsHandler,
	sessions middleware.SessionResolver,
	config *utils.Config,
	log *zap.Logger,
) {
	r.With(
		middleware.AuthSession(sessions, config.Session.CookieName, log),
		middleware.Admin(log),
	).Get("/admin/analytics", analyticsHandler.Dashboard)
}
