package wire

import (
	"ski-portal/internal/adaptor"
	"ski-portal/pkg/middleware"
	"ski-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	sessions middleware.SessionResolver,
	config *utils.Config,
	log *zap.Logger,
) {
	// POST /api/register, /api/login - public
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	// POST /api/logout - needs the session being ended
	r.With(middleware.AuthSession(sessions, config.Session.CookieName, log)).Post("/logout", authHandler.Logout)
}
