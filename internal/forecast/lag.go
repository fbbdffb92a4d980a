package forecast

import (
	"fmt"
	"math"
	"slices"

	"github.com/i474232898/weather-forecasting/internal/series"
)

var defaultLags = []int{1, 2, 3}

var targetLags = map[series.Target][]int{
	series.Humidity:  {1, 2, 3, 6},
	series.Pressure:  {1, 2, 3, 6},
	series.WindSpeed: {1, 2},
}

// Lags returns the lag offsets, in hours, used for target.
func Lags(target series.Target) []int {
	if l, ok := targetLags[target]; ok {
		return slices.Clone(l)
	}
	return slices.Clone(defaultLags)
}

// LagColumn is the name of the column holding target shifted by k rows.
func LagColumn(target series.Target, k int) string {
	return fmt.Sprintf("%s_lag%d", target, k)
}

// Augment returns a copy of f with one lag column per offset in Lags(target).
// Rows with any undefined value are dropped, so the first max(lag) rows never
// survive. The result may be empty; f is left untouched.
func Augment(f *series.Frame, target series.Target) (*series.Frame, error) {
	y, ok := f.Column(string(target))
	if !ok {
		return nil, &InvalidTargetError{Target: string(target)}
	}

	out := f
	for _, k := range Lags(target) {
		shifted := make([]float64, len(y))
		for i := range shifted {
			if i < k {
				shifted[i] = math.NaN()
				continue
			}
			shifted[i] = y[i-k]
		}

		var err error
		out, err = out.WithColumn(LagColumn(target, k), shifted)
		if err != nil {
			return nil, err
		}
	}
	return out.DropIncomplete(), nil
}
