package weather

import (
	"fmt"

	"github.com/i474232898/weather-forecasting/internal/forecast"
	"github.com/i474232898/weather-forecasting/internal/series"
)

// Place is a resolved geographic point with a display name.
type Place struct {
	Name    string  `json:"city"`
	Country string  `json:"country,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Query identifies what to forecast. Either City or both Lat and Lon must be set.
type Query struct {
	City    string
	Lat     *float64
	Lon     *float64
	Target  string
	Retrain bool
}

// Prediction is the forecast for a place, as returned to API callers.
type Prediction struct {
	City   string        `json:"city"`
	Target series.Target `json:"target"`
	Lat    float64       `json:"lat"`
	Lon    float64       `json:"lon"`
	Cached bool          `json:"cached"`
	forecast.Result
}

func coordinateLabel(lat, lon float64) string {
	return fmt.Sprintf("Lat: %.2f, Lon: %.2f", lat, lon)
}
