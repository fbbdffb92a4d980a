package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/weather-forecasting/internal/common"
	"github.com/i474232898/weather-forecasting/internal/forecast"
	"github.com/i474232898/weather-forecasting/internal/metrics"
	"github.com/i474232898/weather-forecasting/internal/series"
)

// Deps bundles the collaborators of a Service. Geocoder, Reverse and Places
// are optional; without them only coordinate queries can be served and
// coordinates are labelled numerically.
type Deps struct {
	Source      HourlySource
	Predictions PredictionCache
	Forecaster  *forecast.Forecaster

	Geocoder         Geocoder
	Reverse          ReverseGeocoder
	Places           PlaceCache
	PreferredCountry string

	Logger *zap.SugaredLogger
	Now    func() time.Time
}

// Service resolves places, fetches hourly data and runs the forecasting
// pipeline, memoizing results per location and target.
type Service struct {
	source      HourlySource
	predictions PredictionCache
	forecaster  *forecast.Forecaster

	geocoder         Geocoder
	reverse          ReverseGeocoder
	places           PlaceCache
	preferredCountry string

	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewService creates a new Service.
func NewService(d Deps) *Service {
	s := &Service{
		source:           d.Source,
		predictions:      d.Predictions,
		forecaster:       d.Forecaster,
		geocoder:         d.Geocoder,
		reverse:          d.Reverse,
		places:           d.Places,
		preferredCountry: d.PreferredCountry,
		logger:           d.Logger,
		now:              d.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.forecaster == nil {
		s.forecaster = forecast.DefaultForecaster(s.logger)
	}
	return s
}

// Predict resolves the query's location and returns its forecast.
func (s *Service) Predict(ctx context.Context, q Query) (Prediction, error) {
	target, ok := series.ParseTarget(q.Target)
	if !ok {
		return Prediction{}, &forecast.InvalidTargetError{Target: q.Target}
	}

	var (
		place Place
		err   error
	)
	switch {
	case strings.TrimSpace(q.City) != "":
		place, err = s.ResolveCity(ctx, q.City)
		if err != nil {
			return Prediction{}, err
		}
	case q.Lat != nil && q.Lon != nil:
		lat, lon := correctSwapped(*q.Lat, *q.Lon)
		if math.Abs(lat) > 90 || math.Abs(lon) > 180 {
			return Prediction{}, fmt.Errorf("%w: lat=%g, lon=%g", ErrInvalidCoordinates, *q.Lat, *q.Lon)
		}
		place = s.ResolveCoordinates(ctx, lat, lon)
	default:
		return Prediction{}, ErrMissingLocation
	}

	res, cached, err := s.Forecast(ctx, place.Lat, place.Lon, target, q.Retrain)
	if err != nil {
		return Prediction{}, err
	}

	return Prediction{
		City:   place.Name,
		Target: target,
		Lat:    place.Lat,
		Lon:    place.Lon,
		Cached: cached,
		Result: res,
	}, nil
}

// Forecast returns the forecast for a point and target. Unless retrain is
// set, a fresh cached result is returned without fetching or training. The
// reported bool is true for cache hits.
func (s *Service) Forecast(ctx context.Context, lat, lon float64, target series.Target, retrain bool) (forecast.Result, bool, error) {
	if !retrain && s.predictions != nil {
		if res, ok := s.predictions.Get(lat, lon, target); ok {
			s.logger.Debugw("prediction cache hit", "lat", lat, "lon", lon, "target", target)
			return res, true, nil
		}
	}

	runID := uuid.NewString()
	started := time.Now()
	now := s.now()
	log := s.logger.With("run_id", runID, "target", target, "lat", lat, "lon", lon)

	frame, err := s.source.FetchHourly(ctx, lat, lon, now)
	if errors.Is(err, ErrNoData) {
		log.Warnw("upstream returned no hourly rows")
		return forecast.EmptyResult(), false, nil
	}
	if err != nil {
		log.Warnw("hourly fetch failed", "error", err)
		return forecast.Result{}, false, fmt.Errorf("fetch hourly data: %w", err)
	}
	log.Debugw("hourly data fetched", "rows", frame.Len())

	res, err := s.forecaster.Forecast(ctx, frame, target, now)
	if err != nil {
		return forecast.Result{}, false, err
	}
	metrics.RecordForecast(string(target), time.Since(started), res.Fallback)

	if res.Empty() {
		log.Warnw("no usable rows for forecast", "rows", frame.Len())
		return res, false, nil
	}

	if res.Fallback {
		log.Infow("no rows at or after now; scored on the most recent rows instead")
	}
	if s.predictions != nil {
		s.predictions.Put(lat, lon, target, res)
	}
	log.Infow("forecast computed", "predictions", len(res.Predictions), "retrain", retrain)
	return res, false, nil
}

// ResolveCity turns a city name into a place, preferring a match in the
// configured country. Resolutions are cached by normalized name.
func (s *Service) ResolveCity(ctx context.Context, city string) (Place, error) {
	name := common.NormalizeName(city)
	if name == "" {
		return Place{}, ErrMissingLocation
	}
	if s.places != nil {
		if p, ok := s.places.Get(name); ok {
			return p, nil
		}
	}
	if s.geocoder == nil {
		return Place{}, fmt.Errorf("resolve %q: no geocoder configured", name)
	}

	candidates, err := s.geocoder.Search(ctx, name)
	if err != nil {
		return Place{}, fmt.Errorf("resolve %q: %w", name, err)
	}
	if len(candidates) == 0 {
		return Place{}, fmt.Errorf("%w: %q", ErrPlaceNotFound, city)
	}

	place := candidates[0]
	for _, c := range candidates {
		if s.preferredCountry != "" && strings.EqualFold(c.Country, s.preferredCountry) {
			place = c
			break
		}
	}

	if s.places != nil {
		s.places.Put(name, place)
	}
	s.logger.Infow("resolved city", "query", city, "city", place.Name, "lat", place.Lat, "lon", place.Lon)
	return place, nil
}

// ResolveCoordinates corrects swapped coordinates and names the point by
// reverse geocoding. Lookup failures only affect the label.
func (s *Service) ResolveCoordinates(ctx context.Context, lat, lon float64) Place {
	lat, lon = correctSwapped(lat, lon)

	place := Place{Name: coordinateLabel(lat, lon), Lat: lat, Lon: lon}
	if s.reverse == nil {
		return place
	}

	name, err := s.reverse.Reverse(ctx, lat, lon)
	if err != nil {
		s.logger.Warnw("reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
		return place
	}
	if name != "" {
		place.Name = name
	}
	return place
}

// correctSwapped swaps a pair that only makes sense with lat and lon exchanged.
func correctSwapped(lat, lon float64) (float64, float64) {
	if math.Abs(lat) > 90 && math.Abs(lon) < 90 {
		return lon, lat
	}
	return lat, lon
}
