package forecast

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const rankTolerance = 1e-10

// LinearRegression is an ordinary least squares model with an intercept.
// Rank-deficient designs get the minimum-norm solution.
type LinearRegression struct {
	Coefficients []float64
	Intercept    float64
	fitted       bool
}

// NewLinearRegression returns an unfitted ordinary least squares model.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

func (m *LinearRegression) Fit(x [][]float64, y []float64) error {
	p, err := checkTrainingSet(x, y)
	if err != nil {
		return err
	}
	n := len(x)

	means := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		means[j] = stat.Mean(col, nil)
	}
	yMean := stat.Mean(y, nil)

	coef := make([]float64, p)
	if p > 0 {
		design := mat.NewDense(n, p, nil)
		for i := range x {
			for j := 0; j < p; j++ {
				design.Set(i, j, x[i][j]-means[j])
			}
		}
		centered := make([]float64, n)
		for i, v := range y {
			centered[i] = v - yMean
		}

		var svd mat.SVD
		if !svd.Factorize(design, mat.SVDThin) {
			return errors.New("linear regression: SVD factorization failed")
		}
		if rank := svd.Rank(rankTolerance); rank > 0 {
			w := mat.NewVecDense(p, nil)
			svd.SolveVecTo(w, mat.NewVecDense(n, centered), rank)
			for j := range coef {
				coef[j] = w.AtVec(j)
			}
		}
	}

	intercept := yMean
	for j, c := range coef {
		intercept -= c * means[j]
	}

	m.Coefficients = coef
	m.Intercept = intercept
	m.fitted = true
	return nil
}

func (m *LinearRegression) Predict(x [][]float64) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != len(m.Coefficients) {
			return nil, fmt.Errorf("sample %d has %d features, want %d", i, len(row), len(m.Coefficients))
		}
		v := m.Intercept
		for j, c := range m.Coefficients {
			v += c * row[j]
		}
		out[i] = v
	}
	return out, nil
}
