package wire

import (
	"ski-portal/internal/adaptor"
	"ski-portal/pkg/middleware"
	"ski-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser configures profile and admin user management routes
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	sessions middleware.SessionResolver,
	config *utils.Config,
	log *zap.Logger,
) {
	r.With(middleware.AuthSession(sessions, config.Session.CookieName, log)).Get("/user/profile", userHandler.GetProfile)

	r.With(
		middleware.AuthSession(sessions, config.Session.CookieName, log),
		middleware.Admin(log),
	).Route("/admin/users", func(r chi.Router) {
		r.Get("/", userHandler.GetAllUsers)        // GET /api/admin/users?page=1&per_page=20
		r.Put("/{id}/admin", userHandler.SetAdmin) // PUT /api/admin/users/{id}/admin {"is_admin": true}
		r.Delete("/{id}", userHandler.DeleteUser)  // DELETE /api/admin/users/{id}
	})
}
