package repositories

import (
	"context"
	"net/http"

	"plantcare-api/config"
	"plantcare-api/internal/models"
	"plantcare-api/pkg/logger"
)

// HTTPClient is the seam the providers issue requests through.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WeatherRepository is a single third-party weather provider. Both
// calls are single-attempt: no retries, the configured client timeout
// is the only cancellation beyond ctx.
type WeatherRepository interface {
	Name() string
	FetchCurrent(ctx context.Context, lat, lon float64) (*models.CurrentWeather, error)
	FetchForecast(ctx context.Context, lat, lon float64, days int) ([]models.DayForecast, error)
}

// InitWeatherRepositories builds the configured providers in the order
// they appear in the config; the weather service treats that order as
// failover priority.
func InitWeatherRepositories(cfg *config.Config, l *logger.Logger) []WeatherRepository {
	var repos []WeatherRepository
	for i := range cfg.WeatherAPIs {
		api := &cfg.WeatherAPIs[i]
		client := &http.Client{Timeout: api.Timeout()}

		switch api.Name {
		case "open-meteo":
			repos = append(repos, NewOpenMeteoRepository(api.BaseURL, l, client))
		case "openweather":
			repo, err := NewOpenWeatherRepository(api.BaseURL, api.APIKey, l, client)
			if err != nil {
				l.Warning("skipping openweather provider", map[string]any{"err": err})
				continue
			}
			repos = append(repos, repo)
			// Add more cases here to extend the app with new providers.
		}
	}

	return repos
}
