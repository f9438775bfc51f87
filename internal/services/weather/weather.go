package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"plantcare-api/internal/models"
	"plantcare-api/internal/repositories"
	"plantcare-api/pkg/logger"
)

// Providers are always asked for a full week so one cache entry can
// serve any smaller window.
const fetchForecastDays = 7

var ErrUnavailable = errors.New("weather unavailable")

// Service serves weather snapshots out of a TTL cache, falling back to
// the configured providers in order on a miss. Every failure path
// degrades to ErrUnavailable, callers fall back to plain scheduling.
type Service struct {
	repos       []repositories.WeatherRepository
	cache       *cache.Cache
	currentTTL  time.Duration
	forecastTTL time.Duration
	l           *logger.Logger
}

func NewService(repos []repositories.WeatherRepository, c *cache.Cache, currentTTL, forecastTTL time.Duration, l *logger.Logger) *Service {
	return &Service{
		repos:       repos,
		cache:       c,
		currentTTL:  currentTTL,
		forecastTTL: forecastTTL,
		l:           l,
	}
}

func currentKey(lat, lon float64) string {
	return fmt.Sprintf("weather:current:%.2f:%.2f", lat, lon)
}

func forecastKey(lat, lon float64) string {
	return fmt.Sprintf("weather:forecast:%.2f:%.2f", lat, lon)
}

// Current returns the current weather for a coordinate, cached for the
// configured current-weather TTL.
func (s *Service) Current(ctx context.Context, lat, lon float64) (*models.CurrentWeather, error) {
	key := currentKey(lat, lon)
	if cached, found := s.cache.Get(key); found {
		if current, ok := cached.(*models.CurrentWeather); ok {
			s.l.Debug("current weather cache hit", map[string]any{"key": key})
			return current, nil
		}
	}

	for _, repo := range s.repos {
		current, err := repo.FetchCurrent(ctx, lat, lon)
		if err != nil {
			s.l.Warning("failed to fetch current weather", map[string]any{
				"repo": repo.Name(),
				"err":  err,
			})
			continue
		}

		s.cache.Set(key, current, s.currentTTL)
		s.l.Info("fetched current weather", map[string]any{
			"repo": repo.Name(),
			"lat":  lat,
			"lon":  lon,
		})
		return current, nil
	}

	return nil, errors.Wrapf(ErrUnavailable, "current weather for %.2f:%.2f", lat, lon)
}

// Forecast returns up to days of daily forecast for a coordinate,
// cached for the configured forecast TTL.
func (s *Service) Forecast(ctx context.Context, lat, lon float64, days int) ([]models.DayForecast, error) {
	if days <= 0 || days > fetchForecastDays {
		days = fetchForecastDays
	}

	key := forecastKey(lat, lon)
	if cached, found := s.cache.Get(key); found {
		if forecast, ok := cached.([]models.DayForecast); ok {
			s.l.Debug("forecast cache hit", map[string]any{"key": key})
			return clampDays(forecast, days), nil
		}
	}

	for _, repo := range s.repos {
		forecast, err := repo.FetchForecast(ctx, lat, lon, fetchForecastDays)
		if err != nil {
			s.l.Warning("failed to fetch forecast", map[string]any{
				"repo": repo.Name(),
				"err":  err,
			})
			continue
		}

		s.cache.Set(key, forecast, s.forecastTTL)
		s.l.Info("fetched forecast", map[string]any{
			"repo": repo.Name(),
			"lat":  lat,
			"lon":  lon,
			"days": len(forecast),
		})
		return clampDays(forecast, days), nil
	}

	return nil, errors.Wrapf(ErrUnavailable, "forecast for %.2f:%.2f", lat, lon)
}

// Snapshot bundles current and forecast for a coordinate. Current and
// forecast fail independently; the snapshot errors only when both are
// unavailable.
func (s *Service) Snapshot(ctx context.Context, lat, lon float64, days int) (*models.WeatherSnapshot, error) {
	snapshot := &models.WeatherSnapshot{Latitude: lat, Longitude: lon}

	current, currentErr := s.Current(ctx, lat, lon)
	if currentErr == nil {
		snapshot.Current = current
	}

	forecast, forecastErr := s.Forecast(ctx, lat, lon, days)
	if forecastErr == nil {
		snapshot.Forecast = forecast
	}

	if currentErr != nil && forecastErr != nil {
		return nil, errors.Wrapf(ErrUnavailable, "snapshot for %.2f:%.2f", lat, lon)
	}

	return snapshot, nil
}

func clampDays(forecast []models.DayForecast, days int) []models.DayForecast {
	if days < len(forecast) {
		return forecast[:days]
	}
	return forecast
}
