package wire

import (
	"net/http"

	"ski-portal/internal/adaptor"
	"ski-portal/pkg/middleware"
	"ski-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const loginPath = "/login"

// wirePages mounts the HTML pages. Every page knows who is signed in;
// signed-in and admin pages redirect to the login form instead of
// answering with JSON.
func wirePages(
	r chi.Router,
	pageHandler *adaptor.PageHandler,
	sessions middleware.SessionResolver,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(sessions, config.Session.CookieName, log))

		r.NotFound(pageHandler.NotFound)

		// ==================== PUBLIC PAGES ====================
		r.Get("/", pageHandler.Home)
		r.Get("/resorts/{id}", pageHandler.ResortDetail)
		r.Get("/login", pageHandler.LoginForm)
		r.Post("/login", pageHandler.Login)
		r.Get("/signup", pageHandler.SignupForm)
		r.Post("/signup", pageHandler.Signup)
		r.Post("/logout", pageHandler.Logout)

		// ==================== SIGNED-IN PAGES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePageAuth(loginPath))

			r.Get("/profile", pageHandler.Profile)
			r.Post("/resorts/{id}/review", pageHandler.SubmitReview)
			r.Post("/resorts/{id}/review/delete", pageHandler.DeleteReview)
		})

		// ==================== ADMIN PAGES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePageAdmin(loginPath, http.HandlerFunc(pageHandler.Forbidden), log))

			r.Get("/admin", pageHandler.AdminDashboard)
			r.Get("/admin/resorts/new", pageHandler.NewResortForm)
			r.Post("/admin/resorts", pageHandler.CreateResort)
			r.Post("/admin/resorts/{id}/delete", pageHandler.DeleteResort)
			r.Get("/admin/users", pageHandler.AdminUsers)
			r.Post("/admin/users/{id}/admin", pageHandler.ToggleAdmin)
			r.Post("/admin/jobs/{id}/run", pageHandler.RunJob)
		})
	})
}
