package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

// Fallbacks for values left unset in both YAML and environment.
const (
	defaultHTTPTimeout    = 10 * time.Second
	defaultCurrentTTL     = 30 * time.Minute
	defaultForecastTTL    = 60 * time.Minute
	defaultSweepInterval  = 24 * time.Hour
	defaultNotifyInterval = 5 * time.Minute
)

type Config struct {
	AppName      string `envconfig:"APP_NAME" default:"plantcare-api"`
	AppVersion   string `envconfig:"APP_VERSION" default:"1.0.0"`
	Port         string `envconfig:"PORT" default:"8080"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"plantcare.db"`
	SentryDSN    string `envconfig:"SENTRY_DSN"`

	WeatherAPIs []WeatherAPIConfig `yaml:"weather_apis"`
	Cache       CacheConfig        `yaml:"cache"`
	Sweep       SweepConfig        `yaml:"sweep"`
	Notify      NotifyConfig       `yaml:"notify"`
}

type WeatherAPIConfig struct {
	Name           string `yaml:"name"`
	BaseURL        string `yaml:"base_url,omitempty"`
	APIKey         string `yaml:"api_key,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

func (w *WeatherAPIConfig) Timeout() time.Duration {
	if w.TimeoutSeconds <= 0 {
		return defaultHTTPTimeout
	}
	return time.Duration(w.TimeoutSeconds) * time.Second
}

type CacheConfig struct {
	CurrentTTLMinutes  int `yaml:"current_ttl_minutes,omitempty" envconfig:"CACHE_CURRENT_TTL_MINUTES"`
	ForecastTTLMinutes int `yaml:"forecast_ttl_minutes,omitempty" envconfig:"CACHE_FORECAST_TTL_MINUTES"`
}

func (c *CacheConfig) CurrentTTL() time.Duration {
	if c.CurrentTTLMinutes <= 0 {
		return defaultCurrentTTL
	}
	return time.Duration(c.CurrentTTLMinutes) * time.Minute
}

func (c *CacheConfig) ForecastTTL() time.Duration {
	if c.ForecastTTLMinutes <= 0 {
		return defaultForecastTTL
	}
	return time.Duration(c.ForecastTTLMinutes) * time.Minute
}

type SweepConfig struct {
	IntervalHours int `yaml:"interval_hours,omitempty" envconfig:"SWEEP_INTERVAL_HOURS"`
}

func (s *SweepConfig) Interval() time.Duration {
	if s.IntervalHours <= 0 {
		return defaultSweepInterval
	}
	return time.Duration(s.IntervalHours) * time.Hour
}

type NotifyConfig struct {
	IntervalMinutes int      `yaml:"interval_minutes,omitempty" envconfig:"NOTIFY_INTERVAL_MINUTES"`
	URLs            []string `yaml:"urls"`
}

func (n *NotifyConfig) Interval() time.Duration {
	if n.IntervalMinutes <= 0 {
		return defaultNotifyInterval
	}
	return time.Duration(n.IntervalMinutes) * time.Minute
}

// Load reads the YAML config at path (a missing file is not an error,
// defaults apply) and then overrides with environment variables.
func Load(path string) (*Config, error) {
	var cnf Config

	if yamlData, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(yamlData, &cnf); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", &cnf); err != nil {
		return nil, fmt.Errorf("error environment variable parsing: %w", err)
	}

	return &cnf, nil
}

func NewConfig() *Config {
	cnf, err := Load(DefaultPath)
	if err != nil {
		panic(err)
	}
	return cnf
}

// GetWeatherAPIByName returns the provider config with the given name.
func (c *Config) GetWeatherAPIByName(name string) (*WeatherAPIConfig, bool) {
	for i := range c.WeatherAPIs {
		if c.WeatherAPIs[i].Name == name {
			return &c.WeatherAPIs[i], true
		}
	}
	return nil, false
}
