package wire

import (
	"ski-portal/internal/adaptor"
	"ski-portal/pkg/middleware"
	"ski-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireJob(
	r chi.Router,
	jobHandler *adaptor.JobHandler,
	sessions middleware.SessionResolver,
	config *utils.Config,
	log *zap.Logger,
) {
	r.With(
		middleware.AuthSession(sessions, config.Session.CookieName, log),
		middleware.Admin(log),
	).Route("/admin/jobs", func(r chi.Router) {
		r.Get("/", jobHandler.ListJobs)        // GET /api/admin/jobs
		r.Post("/{id}/run", jobHandler.RunJob) // POST /api/admin/jobs/{id}/run
	})
}
