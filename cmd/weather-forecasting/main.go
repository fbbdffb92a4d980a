package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-forecasting/internal/api/http"
	"github.com/i474232898/weather-forecasting/internal/config"
	"github.com/i474232898/weather-forecasting/internal/forecast"
	"github.com/i474232898/weather-forecasting/internal/logger"
	"github.com/i474232898/weather-forecasting/internal/metrics"
	"github.com/i474232898/weather-forecasting/internal/scheduler"
	"github.com/i474232898/weather-forecasting/internal/store"
	"github.com/i474232898/weather-forecasting/internal/weather"
	"github.com/i474232898/weather-forecasting/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	metrics.Init()

	// Shared fetcher for outbound provider calls (backoff + circuit breaker).
	fetcher := providers.NewFetcher(providers.HTTPClientConfig{
		Client:    &http.Client{},
		Timeout:   cfg.HTTPTimeout,
		Backoff:   providers.BackoffConfig{MaxAttempts: cfg.FetchMaxAttempts, Factor: cfg.FetchBackoffFactor},
		UserAgent: cfg.UserAgent,
	}, lg.Named("fetch"))

	var (
		geo     weather.Geocoder
		reverse weather.ReverseGeocoder
	)
	if cfg.GoogleGeocoderAPIKey != "" {
		google := providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey)
		geo, reverse = google, google
		lg.Info("using google geocoder")
	} else {
		geo = providers.NewOpenMeteoGeocoder(fetcher, cfg.GeocoderLanguage)
		reverse = providers.NewNominatimReverseGeocoder(fetcher, cfg.UserAgent)
	}

	source := providers.NewOpenMeteoProvider(fetcher, lg.Named("open-meteo"))
	lg.Infow("hourly source configured", "provider", source.Name())

	service := weather.NewService(weather.Deps{
		Source:           source,
		Predictions:      store.NewPredictionCache(cfg.PredictionCacheTTL),
		Forecaster:       forecast.DefaultForecaster(lg.Named("forecast")),
		Geocoder:         geo,
		Reverse:          reverse,
		Places:           store.NewGeoCache(),
		PreferredCountry: cfg.PreferredCountry,
		Logger:           lg.Named("service"),
	})

	// Scheduler that periodically retrains configured cities.
	sched := scheduler.New(cfg.RefreshCities, cfg.Targets(), cfg.RefreshInterval, service, lg.Named("scheduler"))
	if err := sched.Start(); err != nil {
		lg.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-forecasting",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// a cold forecast can spend several backoff rounds upstream
		WriteTimeout: 90 * time.Second,
		ErrorHandler: httpapi.ErrorHandler,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-forecasting",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	httpapi.RegisterRoutes(app, service)

	go func() {
		lg.Infow("listening", "port", cfg.Port, "env", cfg.Env)
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Errorw("fiber server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Errorw("error during shutdown", "error", err)
	}
}
