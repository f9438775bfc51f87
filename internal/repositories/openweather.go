package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"plantcare-api/internal/models"
	"plantcare-api/pkg/logger"
)

const OpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherRepository talks to the OpenWeatherMap API. The forecast
// endpoint returns 3-hourly entries which get grouped into per-day
// min/max/precipitation.
type OpenWeatherRepository struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
	l          *logger.Logger
}

func NewOpenWeatherRepository(baseURL, apiKey string, l *logger.Logger, httpClient HTTPClient) (*OpenWeatherRepository, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if baseURL == "" {
		baseURL = OpenWeatherBaseURL
	}

	return &OpenWeatherRepository{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		l:          l,
	}, nil
}

func (w *OpenWeatherRepository) Name() string {
	return "openweather"
}

type openWeatherCurrentResponse struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
}

type openWeatherForecastResponse struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			TempMin float64 `json:"temp_min"`
			TempMax float64 `json:"temp_max"`
		} `json:"main"`
		Rain struct {
			ThreeHours float64 `json:"3h"`
		} `json:"rain"`
	} `json:"list"`
}

func (w *OpenWeatherRepository) FetchCurrent(ctx context.Context, lat, lon float64) (*models.CurrentWeather, error) {
	url := fmt.Sprintf("%s/weather?lat=%f&lon=%f&units=metric&appid=%s", w.baseURL, lat, lon, w.apiKey)

	w.l.Info("making openweather current weather request", map[string]any{
		"lat": lat,
		"lon": lon,
	})

	body, err := w.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var response openWeatherCurrentResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return &models.CurrentWeather{
		Temperature:   response.Main.Temp,
		Precipitation: response.Rain.OneHour,
		ObservedAt:    time.Unix(response.Dt, 0).UTC(),
	}, nil
}

func (w *OpenWeatherRepository) FetchForecast(ctx context.Context, lat, lon float64, days int) ([]models.DayForecast, error) {
	url := fmt.Sprintf("%s/forecast?lat=%f&lon=%f&units=metric&appid=%s", w.baseURL, lat, lon, w.apiKey)

	w.l.Info("making openweather forecast request", map[string]any{
		"lat":  lat,
		"lon":  lon,
		"days": days,
	})

	body, err := w.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var response openWeatherForecastResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	w.l.Info("parsed openweather response", map[string]any{
		"items": len(response.List),
	})

	if len(response.List) == 0 {
		return nil, fmt.Errorf("no forecast data available")
	}

	dailyForecast, err := dailyForecastOpenWeather(response)
	if err != nil {
		return nil, fmt.Errorf("failed to process daily forecast: %w", err)
	}

	if days > 0 && days < len(dailyForecast) {
		dailyForecast = dailyForecast[:days]
	}

	return dailyForecast, nil
}

func (w *OpenWeatherRepository) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	w.l.Info("received openweather API response", map[string]any{
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

// dailyForecastOpenWeather groups the 3-hourly list by calendar day:
// min of mins, max of maxes, sum of rain volumes.
func dailyForecastOpenWeather(response openWeatherForecastResponse) ([]models.DayForecast, error) {
	var daily []models.DayForecast

	for _, item := range response.List {
		date, err := parseDate(item.DtTxt)
		if err != nil {
			return daily, fmt.Errorf("failed to parse date from dt_txt %s: %w", item.DtTxt, err)
		}

		index := -1
		for i := range daily {
			if daily[i].Date.Equal(date) {
				index = i
				break
			}
		}

		if index == -1 {
			daily = append(daily, models.DayForecast{
				Date:          date,
				TempMin:       item.Main.TempMin,
				TempMax:       item.Main.TempMax,
				Precipitation: item.Rain.ThreeHours,
			})
			continue
		}

		if item.Main.TempMin < daily[index].TempMin {
			daily[index].TempMin = item.Main.TempMin
		}
		if item.Main.TempMax > daily[index].TempMax {
			daily[index].TempMax = item.Main.TempMax
		}
		daily[index].Precipitation += item.Rain.ThreeHours
	}

	return daily, nil
}

func parseDate(dateStr string) (time.Time, error) {
	if len(dateStr) < 10 {
		return time.Time{}, fmt.Errorf("invalid date string: %s", dateStr)
	}

	t, err := time.Parse("2006-01-02", dateStr[:10])
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %s: %w", dateStr, err)
	}

	return t, nil
}
