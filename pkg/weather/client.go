// Package weather is a small client for the Open-Meteo forecast API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

var currentFields = []string{
	"temperature_2m",
	"apparent_temperature",
	"wind_speed_10m",
	"wind_gusts_10m",
	"snowfall",
	"weather_code",
}

var dailyFields = []string{
	"weather_code",
	"temperature_2m_max",
	"temperature_2m_min",
	"snowfall_sum",
}

type Client interface {
	Forecast(ctx context.Context, lat, lon float64, days int) (*Forecast, error)
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Conditions is a point-in-time observation in imperial units.
type Conditions struct {
	Time         time.Time
	TemperatureF float64
	ApparentF    float64
	WindSpeedMph float64
	WindGustMph  float64
	SnowfallIn   float64
	Code         int
}

type Day struct {
	Date       time.Time
	HighF      float64
	LowF       float64
	SnowfallIn float64
	Code       int
}

type Forecast struct {
	Latitude  float64
	Longitude float64
	Timezone  string
	Current   Conditions
	Daily     []Day
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// apiResponse mirrors the subset of the Open-Meteo payload we request.
type apiResponse struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Timezone         string  `json:"timezone"`
	UTCOffsetSeconds int     `json:"utc_offset_seconds"`
	Current          struct {
		Time                string  `json:"time"`
		Temperature         float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		WindSpeed           float64 `json:"wind_speed_10m"`
		WindGusts           float64 `json:"wind_gusts_10m"`
		Snowfall            float64 `json:"snowfall"`
		WeatherCode         int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time           []string  `json:"time"`
		WeatherCode    []int     `json:"weather_code"`
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
		SnowfallSum    []float64 `json:"snowfall_sum"`
	} `json:"daily"`
}

type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

func (c *HTTPClient) Forecast(ctx context.Context, lat, lon float64, days int) (*Forecast, error) {
	if days < 1 || days > 16 {
		return nil, fmt.Errorf("invalid forecast days %d: must be between 1 and 16", days)
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	params.Set("current", strings.Join(currentFields, ","))
	params.Set("daily", strings.Join(dailyFields, ","))
	params.Set("temperature_unit", "fahrenheit")
	params.Set("wind_speed_unit", "mph")
	params.Set("precipitation_unit", "inch")
	params.Set("timezone", "auto")
	params.Set("forecast_days", strconv.Itoa(days))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Reason != "" {
			return nil, fmt.Errorf("weather provider returned %d: %s", resp.StatusCode, apiErr.Reason)
		}
		return nil, fmt.Errorf("weather provider returned %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	return payload.toForecast()
}

func (p *apiResponse) toForecast() (*Forecast, error) {
	loc := time.FixedZone(p.Timezone, p.UTCOffsetSeconds)

	forecast := &Forecast{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Timezone:  p.Timezone,
		Current: Conditions{
			TemperatureF: p.Current.Temperature,
			ApparentF:    p.Current.ApparentTemperature,
			WindSpeedMph: p.Current.WindSpeed,
			WindGustMph:  p.Current.WindGusts,
			SnowfallIn:   p.Current.Snowfall,
			Code:         p.Current.WeatherCode,
		},
	}

	if p.Current.Time != "" {
		t, err := time.ParseInLocation("2006-01-02T15:04", p.Current.Time, loc)
		if err != nil {
			return nil, fmt.Errorf("parse current time %q: %w", p.Current.Time, err)
		}
		forecast.Current.Time = t
	}

	d := p.Daily
	n := len(d.Time)
	if len(d.WeatherCode) != n || len(d.TemperatureMax) != n || len(d.TemperatureMin) != n || len(d.SnowfallSum) != n {
		return nil, fmt.Errorf("invalid daily forecast: mismatched series lengths")
	}

	forecast.Daily = make([]Day, 0, n)
	for i := range n {
		date, err := time.ParseInLocation("2006-01-02", d.Time[i], loc)
		if err != nil {
			return nil, fmt.Errorf("parse forecast date %q: %w", d.Time[i], err)
		}
		forecast.Daily = append(forecast.Daily, Day{
			Date:       date,
			HighF:      d.TemperatureMax[i],
			LowF:       d.TemperatureMin[i],
			SnowfallIn: d.SnowfallSum[i],
			Code:       d.WeatherCode[i],
		})
	}

	return forecast, nil
}
