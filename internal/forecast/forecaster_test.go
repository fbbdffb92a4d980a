package forecast

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/weather-forecasting/internal/series"
)

func TestForecastRisingTemperature(t *testing.T) {
	f := hourlyFrame(t, 12, series.Temperature, func(i int) float64 { return 10 + float64(i) })
	fc := DefaultForecaster(zap.NewNop().Sugar())

	res, err := fc.Forecast(context.Background(), f, series.Temperature, at(6))
	require.NoError(t, err)

	assert.False(t, res.Fallback)
	assert.Len(t, res.Predictions, 6)
	assert.Equal(t, []float64{16, 17, 18, 19, 20, 21}, res.Actual)
	assert.Equal(t, "2025-06-10 06:00:00", res.Timestamps[0])
	assert.Equal(t, []float64{13, 14, 15}, res.ObservedPast)
	assert.Equal(t, []string{"2025-06-10 03:00:00", "2025-06-10 04:00:00", "2025-06-10 05:00:00"}, res.ObservedTimestamps)
	require.NotNil(t, res.MAE)
	assert.False(t, math.IsNaN(*res.MAE))
	assert.Nil(t, res.RainMetrics)
}

func TestForecastIsIdempotent(t *testing.T) {
	f := hourlyFrame(t, 60, series.Humidity, func(i int) float64 {
		return 70 + 10*math.Sin(float64(i)/4)
	})
	fc := DefaultForecaster(zap.NewNop().Sugar())

	first, err := fc.Forecast(context.Background(), f, series.Humidity, at(40))
	require.NoError(t, err)
	second, err := fc.Forecast(context.Background(), f, series.Humidity, at(40))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestForecastPrecipitationRainMetrics(t *testing.T) {
	f := hourlyFrame(t, 72, series.Precipitation, func(i int) float64 {
		if i%6 < 2 {
			return 1.2
		}
		return 0
	})
	fc := DefaultForecaster(zap.NewNop().Sugar())

	res, err := fc.Forecast(context.Background(), f, series.Precipitation, at(48))
	require.NoError(t, err)

	require.NotNil(t, res.RainMetrics)
	assert.Equal(t, RainThreshold, res.RainMetrics.Threshold)
	assert.Len(t, res.Predictions, HorizonRows)
	for _, p := range res.Predictions {
		assert.True(t, p == 0 || p >= RainThreshold, "prediction %v should be floored", p)
	}
	for _, s := range []float64{res.RainMetrics.Precision, res.RainMetrics.Recall, res.RainMetrics.F1} {
		assert.True(t, s >= 0 && s <= 1)
	}
	require.NotNil(t, res.MAE)
}

func TestForecastFallbackWhenHorizonIsPast(t *testing.T) {
	f := hourlyFrame(t, 40, series.Temperature, func(i int) float64 { return float64(i % 24) })
	fc := DefaultForecaster(zap.NewNop().Sugar())

	res, err := fc.Forecast(context.Background(), f, series.Temperature, at(500))
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Len(t, res.Predictions, HorizonRows)
	assert.NotNil(t, res.MAE)
}

func TestForecastEmptyWhenNotEnoughRows(t *testing.T) {
	fc := DefaultForecaster(zap.NewNop().Sugar())

	short := hourlyFrame(t, 3, series.Temperature, func(i int) float64 { return float64(i) })
	res, err := fc.Forecast(context.Background(), short, series.Temperature, at(1))
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Nil(t, res.MAE)

	// every augmented row is in the future, so there is nothing to train on
	allFuture := hourlyFrame(t, 10, series.Temperature, func(i int) float64 { return float64(i) })
	res, err = fc.Forecast(context.Background(), allFuture, series.Temperature, at(0))
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Nil(t, res.MAE)
	assert.NotNil(t, res.Predictions)
}

func TestForecastInvalidTarget(t *testing.T) {
	f := hourlyFrame(t, 12, series.Temperature, func(i int) float64 { return float64(i) })
	fc := DefaultForecaster(nil)

	_, err := fc.Forecast(context.Background(), f, series.Target("snow_depth"), at(6))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTarget))

	var ite *InvalidTargetError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, "snow_depth", ite.Target)
}

type constantModel struct{ v float64 }

func (m *constantModel) Fit([][]float64, []float64) error { return nil }

func (m *constantModel) Predict(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = m.v
	}
	return out, nil
}

func TestForecastBlendsWithUnweightedAverage(t *testing.T) {
	f := hourlyFrame(t, 12, series.Temperature, func(i int) float64 { return float64(i) })
	fc := NewForecaster(nil,
		func() Regressor { return &constantModel{v: 2} },
		func() Regressor { return &constantModel{v: 6} },
	)

	res, err := fc.Forecast(context.Background(), f, series.Temperature, at(6))
	require.NoError(t, err)
	for _, p := range res.Predictions {
		assert.Equal(t, 4.0, p)
	}
}

func TestForecastPrecipitationFloorAfterClassification(t *testing.T) {
	f := hourlyFrame(t, 12, series.Precipitation, func(i int) float64 { return 0 })
	// log1p space: expm1(0.03) ~ 0.0305, below the threshold
	fc := NewForecaster(nil, func() Regressor { return &constantModel{v: 0.03} })

	res, err := fc.Forecast(context.Background(), f, series.Precipitation, at(6))
	require.NoError(t, err)
	require.NotNil(t, res.RainMetrics)
	assert.Zero(t, res.RainMetrics.Precision)
	for _, p := range res.Predictions {
		assert.Zero(t, p)
	}
}
