// Package rules derives care decisions from weather snapshots. All
// functions are pure and all thresholds fixed, the same inputs always
// produce the same answer.
package rules

import (
	"fmt"
	"time"

	"plantcare-api/internal/models"
)

// Thresholds, metric. HeavyRainThresholdMM is 0.5 in.
const (
	FrostThresholdC      = 0.0
	HeatwaveThresholdC   = 35.0
	HeavyRainThresholdMM = 12.7
)

// HasFrostRisk reports whether any forecast day's minimum temperature
// reaches the frost threshold.
func HasFrostRisk(forecast []models.DayForecast) bool {
	_, ok := FrostRiskDate(forecast)
	return ok
}

// FrostRiskDate returns the earliest forecast date at frost risk.
func FrostRiskDate(forecast []models.DayForecast) (time.Time, bool) {
	var earliest time.Time
	found := false
	for i := range forecast {
		if forecast[i].TempMin > FrostThresholdC {
			continue
		}
		if !found || forecast[i].Date.Before(earliest) {
			earliest = forecast[i].Date
			found = true
		}
	}
	return earliest, found
}

// HasHeatwave reports whether any forecast day's maximum temperature
// reaches the heatwave threshold.
func HasHeatwave(forecast []models.DayForecast) bool {
	for i := range forecast {
		if forecast[i].TempMax >= HeatwaveThresholdC {
			return true
		}
	}
	return false
}

// ShouldSkipWatering decides whether a watering task is pointless
// given the weather: true when either the current observation or
// today's forecast carries at least the heavy-rain threshold of
// precipitation. The returned string is the skip reason, empty when
// no skip applies.
func ShouldSkipWatering(current *models.CurrentWeather, today *models.DayForecast) (bool, string) {
	if current != nil && current.Precipitation >= HeavyRainThresholdMM {
		return true, fmt.Sprintf("heavy rain observed: %.1f mm", current.Precipitation)
	}
	if today != nil && today.Precipitation >= HeavyRainThresholdMM {
		return true, fmt.Sprintf("heavy rain expected today: %.1f mm forecast", today.Precipitation)
	}
	return false, ""
}
