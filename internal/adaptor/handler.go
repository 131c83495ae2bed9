package adaptor

import (
	"net"
	"net/http"
	"strings"

	"ski-portal/internal/dto/request"
	"ski-portal/internal/usecase"
	"ski-portal/internal/web"
	"ski-portal/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Resort    *ResortHandler
	Review    *ReviewHandler
	Analytics *AnalyticsHandler
	Weather   *WeatherHandler
	Job       *JobHandler
	Page      *PageHandler
}

func NewHandler(service *usecase.Service, renderer *web.Renderer, jobs JobBoard, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(service.Auth, config.Session, log),
		User:      NewUserHandler(service.User, log),
		Resort:    NewResortHandler(service.Resort, log),
		Review:    NewReviewHandler(service.Review, log),
		Analytics: NewAnalyticsHandler(service.Analytics, log),
		Weather:   NewWeatherHandler(service.Weather, log),
		Job:       NewJobHandler(jobs, log),
		Page:      NewPageHandler(service, renderer, jobs, config.Session, log),
	}
}

// errorStatus maps a service error onto an HTTP status by its message.
func errorStatus(err error) int {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "unavailable"):
		return http.StatusBadGateway
	case strings.Contains(errMsg, "not found"):
		return http.StatusNotFound
	case strings.Contains(errMsg, "validation failed"):
		return http.StatusBadRequest
	case strings.Contains(errMsg, "invalid credentials"), strings.Contains(errMsg, "unauthorized"):
		return http.StatusUnauthorized
	case strings.Contains(errMsg, "invalid"):
		return http.StatusBadRequest
	case strings.Contains(errMsg, "forbidden"):
		return http.StatusForbidden
	case strings.Contains(errMsg, "already"):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes the JSON error envelope for err. Internal
// failures are logged at error level and their message is not leaked.
func respondServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	log.Warn(operation+" failed",
		zap.Error(err),
		zap.String("operation", operation),
		zap.Int("status", status))

	message := err.Error()
	switch status {
	case http.StatusBadGateway:
		utils.ResponseBadGateway(w, "Weather service unavailable")
	case http.StatusNotFound:
		utils.ResponseNotFound(w, message)
	case http.StatusUnauthorized:
		utils.ResponseUnauthorized(w, message)
	case http.StatusForbidden:
		utils.ResponseForbidden(w, message)
	case http.StatusConflict:
		utils.ResponseConflict(w, message)
	default:
		utils.ResponseBadRequest(w, message, nil)
	}
}

func paginationFromQuery(r *http.Request, defaultPerPage int) *request.PaginatedRequest {
	query := r.URL.Query()
	return &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), defaultPerPage),
	}
}

func sessionMeta(r *http.Request) request.SessionMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return request.SessionMeta{
		UserAgent: r.UserAgent(),
		IPAddress: ip,
	}
}
