package models

import (
	"fmt"
	"time"
)

// CurrentWeather is a single observation for a coordinate. Temperatures
// are in degrees Celsius, precipitation in millimeters.
type CurrentWeather struct {
	Temperature   float64   `json:"temperature" example:"21.5"`
	Precipitation float64   `json:"precipitation" example:"0.4"`
	ObservedAt    time.Time `json:"observed_at"`
}

// DayForecast is one day of a daily forecast.
type DayForecast struct {
	Date          time.Time `json:"date" example:"2026-05-10"`
	TempMin       float64   `json:"temp_min" example:"4.2"`
	TempMax       float64   `json:"temp_max" example:"18.9"`
	Precipitation float64   `json:"precipitation" example:"12.7"`
}

// WeatherSnapshot bundles the cached view of a coordinate's weather.
// It only ever lives in the cache, never in storage.
type WeatherSnapshot struct {
	Latitude  float64         `json:"lat" example:"40.7128"`
	Longitude float64         `json:"lon" example:"-74.006"`
	Current   *CurrentWeather `json:"current,omitempty"`
	Forecast  []DayForecast   `json:"forecast,omitempty"`
}

func (s *WeatherSnapshot) RequestParams() string {
	return fmt.Sprintf("lat: %.4f lon: %.4f days: %d", s.Latitude, s.Longitude, len(s.Forecast))
}

// ForecastForDate returns the forecast entry whose date matches the
// given day, or nil if the forecast does not cover it.
func ForecastForDate(forecast []DayForecast, date time.Time) *DayForecast {
	y, m, d := date.Date()
	for i := range forecast {
		fy, fm, fd := forecast[i].Date.Date()
		if fy == y && fm == m && fd == d {
			return &forecast[i]
		}
	}
	return nil
}
