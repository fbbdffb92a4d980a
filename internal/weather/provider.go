package weather

import (
	"context"
	"time"

	"github.com/i474232898/weather-forecasting/internal/forecast"
	"github.com/i474232898/weather-forecasting/internal/series"
)

// HourlySource supplies the observed and forecast hourly series around now
// for a point (e.g. Open-Meteo archive + forecast).
type HourlySource interface {
	FetchHourly(ctx context.Context, lat, lon float64, now time.Time) (*series.Frame, error)
}

// Geocoder resolves a place name into candidate places.
type Geocoder interface {
	Search(ctx context.Context, name string) ([]Place, error)
}

// ReverseGeocoder names the place at a coordinate. An empty name means unknown.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// PredictionCache memoizes forecast results per rounded location and target.
type PredictionCache interface {
	Get(lat, lon float64, target series.Target) (forecast.Result, bool)
	Put(lat, lon float64, target series.Target, result forecast.Result)
}

// PlaceCache remembers resolved places by normalized name.
type PlaceCache interface {
	Get(name string) (Place, bool)
	Put(name string, place Place)
}
