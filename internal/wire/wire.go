package wire

import (
	"fmt"
	"net/http"

	"ski-portal/internal/adaptor"
	"ski-portal/internal/data/repository"
	"ski-portal/internal/usecase"
	"ski-portal/internal/web"
	"ski-portal/pkg/middleware"
	"ski-portal/pkg/utils"
	"ski-portal/pkg/weather"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the wired router plus the services background jobs need.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers, and routes. jobs may be nil when the
// scheduler is disabled.
func Wiring(repo *repository.Repository, config *utils.Config, forecasts weather.Client, jobs adaptor.JobBoard, logger *zap.Logger) (*App, error) {
	renderer, err := web.NewRenderer(config.App.Name, logger)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	service := usecase.NewService(repo, config, forecasts, logger)
	handler := adaptor.NewHandler(service, renderer, jobs, config, logger)

	router := setupRouter(handler, service.Auth, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}, nil
}

func setupRouter(
	handler *adaptor.Handler,
	sessions middleware.SessionResolver,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.CORS())

		wireAuth(api, handler.Auth, sessions, config, logger)
		wireUser(api, handler.User, sessions, config, logger)
		wireResort(api, handler.Resort, sessions, config, logger)
		wireReview(api, handler.Review, sessions, config, logger)
		wireWeather(api, handler.Weather)
		wireAnalytics(api, handler.Analytics, sessions, config, logger)
		wireJob(api, handler.Job, sessions, config, logger)

		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			utils.ResponseNotFound(w, "Endpoint not found")
		})
	})

	wirePages(r, handler.Page, sessions, config, logger)

	r.Handle("/static/*", web.Static())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
