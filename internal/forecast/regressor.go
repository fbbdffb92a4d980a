package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("regressor is not fitted")
	// ErrNoSamples is returned by Fit when there is nothing to learn from.
	ErrNoSamples = errors.New("no training samples")
)

// Regressor is a single estimator in the blend. Rows of x are samples,
// columns are features.
type Regressor interface {
	Fit(x [][]float64, y []float64) error
	Predict(x [][]float64) ([]float64, error)
}

// ModelFactory builds a fresh, unfitted Regressor.
type ModelFactory func() Regressor

func checkTrainingSet(x [][]float64, y []float64) (int, error) {
	if len(x) == 0 {
		return 0, ErrNoSamples
	}
	if len(x) != len(y) {
		return 0, fmt.Errorf("%d samples but %d labels", len(x), len(y))
	}
	p := len(x[0])
	for i, row := range x {
		if len(row) != p {
			return 0, fmt.Errorf("sample %d has %d features, want %d", i, len(row), p)
		}
	}
	return p, nil
}

// standardizer centers and scales each feature to zero mean and unit
// population variance. Constant features keep a scale of 1.
type standardizer struct {
	mean  []float64
	scale []float64
}

func fitStandardizer(x [][]float64) standardizer {
	p := len(x[0])
	s := standardizer{mean: make([]float64, p), scale: make([]float64, p)}
	col := make([]float64, len(x))
	for j := 0; j < p; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		s.mean[j] = mean
		s.scale[j] = math.Sqrt(variance)
		if s.scale[j] < 1e-12 {
			s.scale[j] = 1
		}
	}
	return s
}

func (s standardizer) transform(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))
	for i, row := range x {
		if len(row) != len(s.mean) {
			return nil, fmt.Errorf("sample %d has %d features, want %d", i, len(row), len(s.mean))
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.mean[j]) / s.scale[j]
		}
		out[i] = scaled
	}
	return out, nil
}

// Standardized wraps a Regressor so it is trained and queried on
// standardized features. The scaling is fit on the training set only.
func Standardized(inner Regressor) Regressor {
	return &standardized{inner: inner}
}

type standardized struct {
	inner  Regressor
	scaler *standardizer
}

func (s *standardized) Fit(x [][]float64, y []float64) error {
	if _, err := checkTrainingSet(x, y); err != nil {
		return err
	}
	sc := fitStandardizer(x)
	xs, err := sc.transform(x)
	if err != nil {
		return err
	}
	if err := s.inner.Fit(xs, y); err != nil {
		return err
	}
	s.scaler = &sc
	return nil
}

func (s *standardized) Predict(x [][]float64) ([]float64, error) {
	if s.scaler == nil {
		return nil, ErrNotFitted
	}
	xs, err := s.scaler.transform(x)
	if err != nil {
		return nil, err
	}
	return s.inner.Predict(xs)
}
