package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ski-portal/internal/data/repository"
	"ski-portal/internal/dto/response"
	"ski-portal/pkg/utils"
	"ski-portal/pkg/weather"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type WeatherService interface {
	GetResortWeather(ctx context.Context, resortID string) (*response.WeatherResponse, error)

	// ConditionsForResorts fetches current conditions for several resorts
	// concurrently. Resorts whose lookup fails are left out of the result.
	ConditionsForResorts(ctx context.Context, resorts []response.ResortResponse) map[string]response.CurrentWeather
}

type weatherService struct {
	resorts repository.ResortRepository
	client  weather.Client
	config  utils.WeatherConfig
	cache   *cache.Cache
	group   singleflight.Group
	log     *zap.Logger
}

func NewWeatherService(resorts repository.ResortRepository, client weather.Client, config utils.WeatherConfig, log *zap.Logger) WeatherService {
	if config.CacheTTL <= 0 {
		config.CacheTTL = 15 * time.Minute
	}
	if config.ForecastDays <= 0 {
		config.ForecastDays = 5
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}

	return &weatherService{
		resorts: resorts,
		client:  client,
		config:  config,
		cache:   cache.New(config.CacheTTL, 2*config.CacheTTL),
		log:     log.With(zap.String("service", "weather")),
	}
}

func (s *weatherService) GetResortWeather(ctx context.Context, resortID string) (*response.WeatherResponse, error) {
	id, err := uuid.Parse(resortID)
	if err != nil {
		return nil, fmt.Errorf("invalid resort ID format %s", resortID)
	}

	if cached, ok := s.fromCache(id); ok {
		return cached, nil
	}

	resort, err := s.resorts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find resort: %w", err)
	}
	if resort == nil {
		return nil, fmt.Errorf("resort %s not found", resortID)
	}

	return s.fetch(ctx, resort.ID, resort.Name, resort.Latitude, resort.Longitude)
}

func (s *weatherService) ConditionsForResorts(ctx context.Context, resorts []response.ResortResponse) map[string]response.CurrentWeather {
	var (
		mu  sync.Mutex
		out = make(map[string]response.CurrentWeather, len(resorts))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrency)

	for _, resort := range resorts {
		g.Go(func() error {
			id, err := uuid.Parse(resort.ID)
			if err != nil {
				return nil
			}

			report, ok := s.fromCache(id)
			if !ok {
				report, err = s.fetch(gctx, id, resort.Name, resort.Latitude, resort.Longitude)
				if err != nil {
					s.log.Warn("Skipping resort weather",
						zap.Error(err),
						zap.String("resort_id", resort.ID),
					)
					return nil
				}
			}

			mu.Lock()
			out[resort.ID] = report.Current
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// ==================== HELPER METHODS ====================

func (s *weatherService) fromCache(id uuid.UUID) (*response.WeatherResponse, bool) {
	data, found := s.cache.Get(id.String())
	if !found {
		return nil, false
	}
	report, ok := data.(*response.WeatherResponse)
	if !ok {
		return nil, false
	}

	cp := *report
	cp.Cached = true
	return &cp, true
}

// fetch calls the provider once per resort even when several requests miss
// the cache at the same time. The shared call is detached from the caller's
// cancellation so one disconnecting client does not fail the others; the
// client timeout still bounds it.
func (s *weatherService) fetch(ctx context.Context, id uuid.UUID, name string, lat, lon float64) (*response.WeatherResponse, error) {
	key := id.String()
	shared := context.WithoutCancel(ctx)

	ch := s.group.DoChan(key, func() (any, error) {
		forecast, err := s.client.Forecast(shared, lat, lon, s.config.ForecastDays)
		if err != nil {
			return nil, err
		}

		report := toWeatherResponse(id, name, forecast)
		s.cache.Set(key, report, cache.DefaultExpiration)
		s.log.Debug("Weather cached", zap.String("resort_id", key))
		return report, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("weather lookup for resort %s: %w", key, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			s.log.Warn("Weather provider failed", zap.Error(res.Err), zap.String("resort_id", key))
			return nil, fmt.Errorf("weather unavailable for resort %s: %w", key, res.Err)
		}
		cp := *res.Val.(*response.WeatherResponse)
		return &cp, nil
	}
}

func toWeatherResponse(id uuid.UUID, name string, forecast *weather.Forecast) *response.WeatherResponse {
	resp := &response.WeatherResponse{
		ResortID:   id.String(),
		ResortName: name,
		Current: response.CurrentWeather{
			Time:         forecast.Current.Time,
			TemperatureF: forecast.Current.TemperatureF,
			ApparentF:    forecast.Current.ApparentF,
			WindSpeedMph: forecast.Current.WindSpeedMph,
			WindGustMph:  forecast.Current.WindGustMph,
			SnowfallIn:   forecast.Current.SnowfallIn,
			WeatherCode:  forecast.Current.Code,
			Description:  weather.Describe(forecast.Current.Code),
		},
		Daily:     make([]response.DailyForecast, len(forecast.Daily)),
		FetchedAt: time.Now(),
	}

	for i, day := range forecast.Daily {
		resp.Daily[i] = response.DailyForecast{
			Date:        day.Date,
			HighF:       day.HighF,
			LowF:        day.LowF,
			SnowfallIn:  day.SnowfallIn,
			WeatherCode: day.Code,
			Description: weather.Describe(day.Code),
		}
	}

	return resp
}
