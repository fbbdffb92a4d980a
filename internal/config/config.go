package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/i474232898/weather-forecasting/internal/series"
)

type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Port     string `envconfig:"PORT" default:"8080"`

	// Upstream fetches.
	HTTPTimeout        time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
	FetchMaxAttempts   int           `envconfig:"FETCH_MAX_ATTEMPTS" default:"3"`
	FetchBackoffFactor float64       `envconfig:"FETCH_BACKOFF_FACTOR" default:"1.5"`
	UserAgent          string        `envconfig:"HTTP_USER_AGENT" default:"weather-forecasting/1.0"`

	PredictionCacheTTL time.Duration `envconfig:"PREDICTION_CACHE_TTL" default:"5m"`

	// Periodic retraining. No cities means nothing is scheduled.
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"30m"`
	RefreshCities   []string      `envconfig:"REFRESH_CITIES"`
	RefreshTargets  []string      `envconfig:"REFRESH_TARGETS" default:"temperature_2m,relative_humidity_2m,pressure_msl,precipitation,wind_speed_10m"`

	PreferredCountry     string `envconfig:"GEOCODER_PREFERRED_COUNTRY" default:"Colombia"`
	GeocoderLanguage     string `envconfig:"GEOCODER_LANGUAGE" default:"es"`
	GoogleGeocoderAPIKey string `envconfig:"GOOGLE_GEOCODER_API_KEY"`
}

// Load reads configuration from the environment, after applying a .env file
// if one exists.
func Load() (*AppConfig, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	cfg.RefreshCities = trimAll(cfg.RefreshCities)
	cfg.RefreshTargets = trimAll(cfg.RefreshTargets)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}
	if c.FetchMaxAttempts < 1 {
		errs = append(errs, errors.New("FETCH_MAX_ATTEMPTS must be at least 1"))
	}
	if c.FetchBackoffFactor <= 0 {
		errs = append(errs, errors.New("FETCH_BACKOFF_FACTOR must be positive"))
	}
	if c.PredictionCacheTTL <= 0 {
		errs = append(errs, errors.New("PREDICTION_CACHE_TTL must be positive"))
	}
	if len(c.RefreshCities) > 0 && c.RefreshInterval < time.Minute {
		errs = append(errs, errors.New("REFRESH_INTERVAL must be at least 1m"))
	}
	for _, t := range c.RefreshTargets {
		if _, ok := series.ParseTarget(t); !ok {
			errs = append(errs, fmt.Errorf("REFRESH_TARGETS: unknown variable %q", t))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Targets returns the refresh targets as typed values. Call after Validate.
func (c *AppConfig) Targets() []series.Target {
	out := make([]series.Target, 0, len(c.RefreshTargets))
	for _, t := range c.RefreshTargets {
		if target, ok := series.ParseTarget(t); ok {
			out = append(out, target)
		}
	}
	return out
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
