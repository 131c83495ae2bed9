package utils

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Weather   WeatherConfig
	Gravatar  GravatarConfig
	Scheduler SchedulerConfig
	Analytics AnalyticsConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
	BaseURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

type SessionConfig struct {
	CookieName   string
	CookieSecure bool
	ExpiryHours  int
}

// TTL returns the lifetime of a freshly issued session.
func (s SessionConfig) TTL() time.Duration {
	if s.ExpiryHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.ExpiryHours) * time.Hour
}

type WeatherConfig struct {
	BaseURL        string
	ForecastDays   int
	CacheTTL       time.Duration
	RequestTimeout time.Duration
	MaxConcurrency int
}

type GravatarConfig struct {
	Enabled      bool
	DefaultImage string
	Rating       string
	Size         int
}

type SchedulerConfig struct {
	Enabled        bool
	SessionCleanup string
	RatingResync   string
}

// AnalyticsConfig sizes the admin dashboard lists.
type AnalyticsConfig struct {
	TopResorts       int
	TopResortMinimum int
	RecentReviews    int
}

func LoadConfig() (*Config, error) {
	return LoadConfigFile(".env")
}

// LoadConfigFile reads the given env file (if present) and overlays the
// process environment on top of it.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "Ski Portal")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("SESSION_COOKIE_NAME", "ski_session")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SESSION_EXPIRY_HOURS", 24*7)
	v.SetDefault("WEATHER_BASE_URL", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("WEATHER_FORECAST_DAYS", 5)
	v.SetDefault("WEATHER_CACHE_TTL", "15m")
	v.SetDefault("WEATHER_REQUEST_TIMEOUT", "10s")
	v.SetDefault("WEATHER_MAX_CONCURRENCY", 4)
	v.SetDefault("GRAVATAR_ENABLED", true)
	v.SetDefault("GRAVATAR_DEFAULT_IMAGE", "identicon")
	v.SetDefault("GRAVATAR_RATING", "g")
	v.SetDefault("GRAVATAR_SIZE", 64)
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SCHEDULER_SESSION_CLEANUP", "0 * * * *")
	v.SetDefault("SCHEDULER_RATING_RESYNC", "30 3 * * *")
	v.SetDefault("ANALYTICS_TOP_RESORTS", 10)
	v.SetDefault("ANALYTICS_TOP_MIN_REVIEWS", 3)
	v.SetDefault("ANALYTICS_RECENT_REVIEWS", 10)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("PORT"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
			BaseURL: v.GetString("BASE_URL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Session: SessionConfig{
			CookieName:   v.GetString("SESSION_COOKIE_NAME"),
			CookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
			ExpiryHours:  v.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Weather: WeatherConfig{
			BaseURL:        v.GetString("WEATHER_BASE_URL"),
			ForecastDays:   v.GetInt("WEATHER_FORECAST_DAYS"),
			CacheTTL:       v.GetDuration("WEATHER_CACHE_TTL"),
			RequestTimeout: v.GetDuration("WEATHER_REQUEST_TIMEOUT"),
			MaxConcurrency: v.GetInt("WEATHER_MAX_CONCURRENCY"),
		},
		Gravatar: GravatarConfig{
			Enabled:      v.GetBool("GRAVATAR_ENABLED"),
			DefaultImage: v.GetString("GRAVATAR_DEFAULT_IMAGE"),
			Rating:       v.GetString("GRAVATAR_RATING"),
			Size:         v.GetInt("GRAVATAR_SIZE"),
		},
		Scheduler: SchedulerConfig{
			Enabled:        v.GetBool("SCHEDULER_ENABLED"),
			SessionCleanup: v.GetString("SCHEDULER_SESSION_CLEANUP"),
			RatingResync:   v.GetString("SCHEDULER_RATING_RESYNC"),
		},
		Analytics: AnalyticsConfig{
			TopResorts:       v.GetInt("ANALYTICS_TOP_RESORTS"),
			TopResortMinimum: v.GetInt("ANALYTICS_TOP_MIN_REVIEWS"),
			RecentReviews:    v.GetInt("ANALYTICS_RECENT_REVIEWS"),
		},
	}

	return config, nil
}
