package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CacheLookups counts prediction cache reads.
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_forecast_cache_total",
			Help: "Prediction cache lookups",
		},
		[]string{"result"}, // hit|miss|expired
	)

	FetchAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_fetch_attempts_total",
			Help: "Upstream fetch attempts",
		},
		[]string{"outcome"}, // success|error
	)

	ForecastDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_forecast_duration_seconds",
			Help:    "Time spent fetching, training and scoring a forecast",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"target"},
	)

	ForecastFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_forecast_fallback_total",
			Help: "Forecasts scored on the tail of the frame because no future rows existed",
		},
		[]string{"target"},
	)
)

var registerOnce sync.Once

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(CacheLookups)
		prometheus.MustRegister(FetchAttempts)
		prometheus.MustRegister(ForecastDuration)
		prometheus.MustRegister(ForecastFallbacks)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordFetchAttempt counts one upstream attempt.
func RecordFetchAttempt(err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	FetchAttempts.WithLabelValues(outcome).Inc()
}

// RecordForecast observes a completed forecast run.
func RecordForecast(target string, duration time.Duration, fallback bool) {
	ForecastDuration.WithLabelValues(target).Observe(duration.Seconds())
	if fallback {
		ForecastFallbacks.WithLabelValues(target).Inc()
	}
}
