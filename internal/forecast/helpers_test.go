package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-forecasting/internal/series"
)

var base = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func at(h int) time.Time {
	return base.Add(time.Duration(h) * time.Hour)
}

// hourlyFrame builds n hourly rows with every field populated; target values
// come from fn and the other fields are simple deterministic series.
func hourlyFrame(t *testing.T, n int, target series.Target, fn func(i int) float64) *series.Frame {
	t.Helper()

	times := make([]time.Time, n)
	values := make(map[string][]float64, len(series.Fields))
	cols := make([]string, 0, len(series.Fields))
	for _, f := range series.Fields {
		cols = append(cols, string(f))
		values[string(f)] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		times[i] = at(i)
		values[string(series.Temperature)][i] = 20
		values[string(series.Humidity)][i] = 70
		values[string(series.Pressure)][i] = 1013
		values[string(series.Precipitation)][i] = 0
		values[string(series.WindSpeed)][i] = 5
		values[string(target)][i] = fn(i)
	}

	f, err := series.NewFrame(times, cols, values)
	require.NoError(t, err)
	return f
}
