package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-forecasting/internal/forecast"
	"github.com/i474232898/weather-forecasting/internal/series"
	"github.com/i474232898/weather-forecasting/internal/weather"
	"github.com/i474232898/weather-forecasting/internal/weather/providers"
)

type stubPredictor struct {
	last weather.Query
	err  error
}

func (s *stubPredictor) Predict(_ context.Context, q weather.Query) (weather.Prediction, error) {
	s.last = q
	if s.err != nil {
		return weather.Prediction{}, s.err
	}
	res := forecast.EmptyResult()
	res.Predictions = []float64{18.2}
	res.Actual = []float64{18}
	res.Timestamps = []string{"2025-06-10 06:00:00"}
	return weather.Prediction{
		City:   "Bogotá",
		Target: series.Target(q.Target),
		Lat:    4.61,
		Lon:    -74.08,
		Cached: !q.Retrain,
		Result: res,
	}, nil
}

func newTestApp(p Predictor) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, p)
	return app
}

func doGet(t *testing.T, app *fiber.App, url string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body
}

func TestPredictRoute(t *testing.T) {
	p := &stubPredictor{}
	app := newTestApp(p)

	code, body := doGet(t, app, "/api/v1/predict?city=Bogot%C3%A1&target=pressure_msl")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "Bogotá", p.last.City)
	assert.Equal(t, "pressure_msl", p.last.Target)
	assert.False(t, p.last.Retrain)

	assert.Equal(t, "Bogotá", body["city"])
	assert.Equal(t, true, body["cached"])
	assert.Equal(t, []any{18.2}, body["predictions"])
	assert.Equal(t, []any{"2025-06-10 06:00:00"}, body["timestamps"])
	assert.Contains(t, body, "observed_past")
}

func TestPredictRouteDefaultsTarget(t *testing.T) {
	p := &stubPredictor{}
	app := newTestApp(p)

	code, _ := doGet(t, app, "/api/v1/predict?lat=4.61&lon=-74.08")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "temperature_2m", p.last.Target)
	require.NotNil(t, p.last.Lat)
	assert.Equal(t, 4.61, *p.last.Lat)
}

func TestUpdateRouteRetrains(t *testing.T) {
	p := &stubPredictor{}
	app := newTestApp(p)

	code, body := doGet(t, app, "/api/v1/update?city=Cali&target=precipitation")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, p.last.Retrain)
	assert.Equal(t, false, body["cached"])
}

type unreachableSource struct{ t *testing.T }

func (s unreachableSource) FetchHourly(context.Context, float64, float64, time.Time) (*series.Frame, error) {
	s.t.Error("bad input must be rejected before any upstream call")
	return nil, errors.New("unexpected fetch")
}

func TestPredictRouteBadInput(t *testing.T) {
	svc := weather.NewService(weather.Deps{Source: unreachableSource{t: t}})
	app := newTestApp(svc)

	for _, url := range []string{
		"/api/v1/predict?lat=north&lon=1",
		"/api/v1/predict?lat=1&lon=500",
		"/api/v1/predict?lat=100&lon=100",
		"/api/v1/predict?lat=-120&lon=95",
		"/api/v1/predict?lat=1&target=snow_depth&lon=2",
		"/api/v1/predict?lat=1",
	} {
		code, body := doGet(t, app, url)
		assert.Equal(t, http.StatusBadRequest, code, url)
		assert.Equal(t, true, body["error"])
	}
}

func TestPredictRouteErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     int
		upstream any
	}{
		{"invalid target", &forecast.InvalidTargetError{Target: "snow"}, http.StatusBadRequest, nil},
		{"missing location", weather.ErrMissingLocation, http.StatusBadRequest, nil},
		{"off the globe", fmt.Errorf("%w: lat=100, lon=100", weather.ErrInvalidCoordinates), http.StatusBadRequest, nil},
		{"place not found", fmt.Errorf("%w: %q", weather.ErrPlaceNotFound, "Atlantis"), http.StatusNotFound, nil},
		{"upstream status", fmt.Errorf("fetch hourly data: %w", &providers.FetchError{URL: "u", StatusCode: 503, Attempts: 3, Err: errors.New("down")}), http.StatusBadGateway, float64(503)},
		{"upstream transport", &providers.FetchError{URL: "u", Attempts: 3, Err: errors.New("refused")}, http.StatusBadGateway, nil},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&stubPredictor{err: tt.err})

			code, body := doGet(t, app, "/api/v1/predict?city=X")
			assert.Equal(t, tt.code, code)
			assert.Equal(t, true, body["error"])
			assert.Equal(t, tt.upstream, body["upstream_status"])
		})
	}
}
