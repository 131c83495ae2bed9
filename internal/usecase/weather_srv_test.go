package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ski-portal/internal/data/repository/mock"
	"ski-portal/internal/dto/response"
	"ski-portal/pkg/utils"
	"ski-portal/pkg/weather"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeForecasts struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration

	mu   sync.Mutex
	fail map[float64]error
}

func (f *fakeForecasts) Forecast(ctx context.Context, lat, lon float64, days int) (*weather.Forecast, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	err := f.fail[lat]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	daily := make([]weather.Day, days)
	for i := range daily {
		daily[i] = weather.Day{Date: time.Now().AddDate(0, 0, i), HighF: 30, LowF: 10, SnowfallIn: 2, Code: 73}
	}
	return &weather.Forecast{
		Latitude:  lat,
		Longitude: lon,
		Current:   weather.Conditions{TemperatureF: lat, Code: 71},
		Daily:     daily,
	}, nil
}

func newWeatherForTest(store *mock.Store, client weather.Client, concurrency int) WeatherService {
	return NewWeatherService(store.Repository().Resort, client, utils.WeatherConfig{
		ForecastDays:   3,
		CacheTTL:       time.Minute,
		MaxConcurrency: concurrency,
	}, zap.NewNop())
}

func TestGetResortWeatherCaches(t *testing.T) {
	store := mock.New()
	resort := store.AddResort("Mammoth", "California", 37.63, -119.03)
	client := &fakeForecasts{}
	service := newWeatherForTest(store, client, 2)

	first, err := service.GetResortWeather(context.Background(), resort.ID.String())
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "Mammoth", first.ResortName)
	assert.Equal(t, "Slight snowfall", first.Current.Description)
	require.Len(t, first.Daily, 3)
	assert.Equal(t, "Moderate snowfall", first.Daily[0].Description)
	assert.InDelta(t, 6.0, first.SnowTotal(), 0.001)

	second, err := service.GetResortWeather(context.Background(), resort.ID.String())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, int32(1), client.calls.Load())
	assert.False(t, first.Cached, "cached copies do not alias earlier results")
}

func TestGetResortWeatherErrors(t *testing.T) {
	store := mock.New()
	resort := store.AddResort("Mammoth", "California", 37.63, -119.03)
	client := &fakeForecasts{fail: map[float64]error{37.63: errors.New("upstream 503")}}
	service := newWeatherForTest(store, client, 2)

	_, err := service.GetResortWeather(context.Background(), "bogus")
	assert.ErrorContains(t, err, "invalid resort ID")

	_, err = service.GetResortWeather(context.Background(), "6f1c1c1e-8d0e-4a8e-9a43-9f0f0f0f0f0f")
	assert.ErrorContains(t, err, "not found")

	_, err = service.GetResortWeather(context.Background(), resort.ID.String())
	assert.ErrorContains(t, err, "unavailable")
	assert.ErrorContains(t, err, "upstream 503")
}

func TestConditionsForResortsBoundedFanOut(t *testing.T) {
	store := mock.New()
	client := &fakeForecasts{
		delay: 20 * time.Millisecond,
		fail:  map[float64]error{45: errors.New("boom")},
	}
	service := newWeatherForTest(store, client, 2)

	var resorts []response.ResortResponse
	for i := range 6 {
		r := store.AddResort("Resort", "Montana", float64(40+i), -110)
		resorts = append(resorts, response.ResortToResponse(r))
	}

	conditions := service.ConditionsForResorts(context.Background(), resorts)

	assert.Len(t, conditions, 5, "failed lookups are skipped")
	assert.InDelta(t, 42.0, conditions[resorts[2].ID].TemperatureF, 0.001)
	assert.NotContains(t, conditions, resorts[5].ID)
	assert.LessOrEqual(t, client.peak.Load(), int32(2))

	client.calls.Store(0)
	again := service.ConditionsForResorts(context.Background(), resorts[:5])
	assert.Len(t, again, 5)
	assert.Zero(t, client.calls.Load(), "second pass is served from cache")
}

func TestSharedFetchSurvivesFirstCallerCancel(t *testing.T) {
	store := mock.New()
	resort := store.AddResort("Mammoth", "California", 37.63, -119.03)
	client := &fakeForecasts{delay: 200 * time.Millisecond}
	service := newWeatherForTest(store, client, 2)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := service.GetResortWeather(ctx, resort.ID.String())
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return client.inFlight.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		report *response.WeatherResponse
		err    error
	}
	second := make(chan result, 1)
	go func() {
		report, err := service.GetResortWeather(context.Background(), resort.ID.String())
		second <- result{report, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-firstErr, context.Canceled)

	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "Mammoth", got.report.ResortName)
	assert.Equal(t, int32(1), client.calls.Load())
}
