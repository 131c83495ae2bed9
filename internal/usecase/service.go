package usecase

import (
	"ski-portal/internal/data/repository"
	"ski-portal/internal/gravatar"
	"ski-portal/pkg/utils"
	"ski-portal/pkg/weather"

	"go.uber.org/zap"
)

type Service struct {
	Auth      AuthService
	User      UserService
	Resort    ResortService
	Review    ReviewService
	Analytics AnalyticsService
	Weather   WeatherService
}

func NewService(repo *repository.Repository, config *utils.Config, forecasts weather.Client, log *zap.Logger) *Service {
	avatars := gravatar.New(config.Gravatar)

	return &Service{
		Auth:      NewAuthService(repo, config.Session, log),
		User:      NewUserService(repo, avatars, log),
		Resort:    NewResortService(repo, log),
		Review:    NewReviewService(repo, avatars, log),
		Analytics: NewAnalyticsService(repo, config.Analytics, avatars, log),
		Weather:   NewWeatherService(repo.Resort, forecasts, config.Weather, log),
	}
}
