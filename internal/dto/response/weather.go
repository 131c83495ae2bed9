package response

import "time"

type CurrentWeather struct {
	Time         time.Time `json:"time"`
	TemperatureF float64   `json:"temperature_f"`
	ApparentF    float64   `json:"apparent_temperature_f"`
	WindSpeedMph float64   `json:"wind_speed_mph"`
	WindGustMph  float64   `json:"wind_gust_mph"`
	SnowfallIn   float64   `json:"snowfall_in"`
	WeatherCode  int       `json:"weather_code"`
	Description  string    `json:"description"`
}

type DailyForecast struct {
	Date        time.Time `json:"date"`
	HighF       float64   `json:"high_f"`
	LowF        float64   `json:"low_f"`
	SnowfallIn  float64   `json:"snowfall_in"`
	WeatherCode int       `json:"weather_code"`
	Description string    `json:"description"`
}

type WeatherResponse struct {
	ResortID   string          `json:"resort_id"`
	ResortName string          `json:"resort_name"`
	Current    CurrentWeather  `json:"current"`
	Daily      []DailyForecast `json:"daily"`
	FetchedAt  time.Time       `json:"fetched_at"`
	Cached     bool            `json:"cached"`
}

// SnowTotal sums forecast snowfall over all returned days.
func (w WeatherResponse) SnowTotal() float64 {
	var total float64
	for _, d := range w.Daily {
		total += d.SnowfallIn
	}
	return total
}
