package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"plantcare-api/internal/models"
	"plantcare-api/pkg/logger"
)

const OpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoRepository talks to the keyless Open-Meteo forecast API.
type OpenMeteoRepository struct {
	baseURL    string
	httpClient HTTPClient
	l          *logger.Logger
}

func NewOpenMeteoRepository(baseURL string, l *logger.Logger, httpClient HTTPClient) *OpenMeteoRepository {
	if baseURL == "" {
		baseURL = OpenMeteoBaseURL
	}
	return &OpenMeteoRepository{
		baseURL:    baseURL,
		httpClient: httpClient,
		l:          l,
	}
}

func (o *OpenMeteoRepository) Name() string {
	return "open-meteo"
}

type openMeteoDaily struct {
	Time             []string  `json:"time"`
	Temperature2mMax []float64 `json:"temperature_2m_max"`
	Temperature2mMin []float64 `json:"temperature_2m_min"`
	PrecipitationSum []float64 `json:"precipitation_sum"`
}

type openMeteoCurrent struct {
	Time          string  `json:"time"`
	Temperature2m float64 `json:"temperature_2m"`
	Precipitation float64 `json:"precipitation"`
}

func (o *OpenMeteoRepository) FetchCurrent(ctx context.Context, lat, lon float64) (*models.CurrentWeather, error) {
	url := fmt.Sprintf("%s?latitude=%f&longitude=%f&current=temperature_2m,precipitation&timezone=auto",
		o.baseURL, lat, lon)

	o.l.Info("making openmeteo current weather request", map[string]any{
		"lat": lat,
		"lon": lon,
	})

	body, err := o.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var response struct {
		Current openMeteoCurrent `json:"current"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	observedAt, err := time.Parse("2006-01-02T15:04", response.Current.Time)
	if err != nil {
		observedAt = time.Now().UTC()
	}

	return &models.CurrentWeather{
		Temperature:   response.Current.Temperature2m,
		Precipitation: response.Current.Precipitation,
		ObservedAt:    observedAt,
	}, nil
}

func (o *OpenMeteoRepository) FetchForecast(ctx context.Context, lat, lon float64, days int) ([]models.DayForecast, error) {
	url := fmt.Sprintf("%s?latitude=%f&longitude=%f&daily=temperature_2m_max,temperature_2m_min,precipitation_sum&forecast_days=%d&timezone=auto",
		o.baseURL, lat, lon, days)

	o.l.Info("making openmeteo forecast request", map[string]any{
		"lat":  lat,
		"lon":  lon,
		"days": days,
	})

	body, err := o.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var response struct {
		Daily openMeteoDaily `json:"daily"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	o.l.Info("parsed openmeteo response", map[string]any{
		"days": len(response.Daily.Time),
	})

	if len(response.Daily.Time) == 0 {
		return nil, fmt.Errorf("no forecast data available")
	}

	return dailyForecastOpenMeteo(response.Daily)
}

func (o *OpenMeteoRepository) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	o.l.Info("received openmeteo API response", map[string]any{
		"status":     resp.StatusCode,
		"statusText": resp.Status,
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error (status %d): %s", resp.StatusCode, resp.Status)
	}

	return body, nil
}

func dailyForecastOpenMeteo(daily openMeteoDaily) ([]models.DayForecast, error) {
	var forecastDays []models.DayForecast

	// Trim to the shortest series to avoid index out of bounds.
	minLength := min(len(daily.Time), len(daily.Temperature2mMax), len(daily.Temperature2mMin))

	for i := 0; i < minLength; i++ {
		date, err := time.Parse("2006-01-02", daily.Time[i])
		if err != nil {
			return nil, fmt.Errorf("failed to parse date %s: %w", daily.Time[i], err)
		}

		day := models.DayForecast{
			Date:    date,
			TempMax: daily.Temperature2mMax[i],
			TempMin: daily.Temperature2mMin[i],
		}
		if i < len(daily.PrecipitationSum) {
			day.Precipitation = daily.PrecipitationSum[i]
		}

		forecastDays = append(forecastDays, day)
	}

	return forecastDays, nil
}
