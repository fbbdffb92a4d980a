package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-forecasting/internal/series"
)

// Forecaster trains every member model on the past segment and averages
// their predictions over the future segment.
type Forecaster struct {
	Models []ModelFactory
	logger *zap.SugaredLogger
}

// NewForecaster builds a forecaster blending the given models.
func NewForecaster(logger *zap.SugaredLogger, models ...ModelFactory) *Forecaster {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Forecaster{Models: models, logger: logger}
}

// DefaultForecaster blends a standardized linear regression with a seeded
// random forest.
func DefaultForecaster(logger *zap.SugaredLogger) *Forecaster {
	return NewForecaster(logger,
		func() Regressor { return Standardized(NewLinearRegression()) },
		func() Regressor { return NewRandomForest(DefaultTrees, DefaultSeed) },
	)
}

// Forecast augments f with lag features, splits it around now and scores a
// blended prediction of target over the evaluation segment. An empty result
// with a nil error means there was not enough data.
func (fc *Forecaster) Forecast(ctx context.Context, f *series.Frame, target series.Target, now time.Time) (Result, error) {
	if len(fc.Models) == 0 {
		return Result{}, fmt.Errorf("forecaster has no models")
	}
	if !f.HasColumn(string(target)) {
		return Result{}, &InvalidTargetError{Target: string(target)}
	}

	aug, err := Augment(f, target)
	if err != nil {
		return Result{}, err
	}
	if aug.Empty() {
		fc.logger.Warnw("no data left after lagging", "target", target, "rows", f.Len())
		return EmptyResult(), nil
	}

	features := featureColumns(aug, target)
	split := SplitHorizon(aug, now)

	res := EmptyResult()
	res.Fallback = split.Fallback
	res.ObservedPast, _ = split.Observed.Column(string(target))
	res.ObservedTimestamps = split.Observed.FormattedTimes()

	if split.Past.Empty() || split.Future.Empty() {
		fc.logger.Warnw("not enough rows to train and score",
			"target", target,
			"past", split.Past.Len(),
			"future", split.Future.Len(),
		)
		return res, nil
	}

	xTrain := matrix(split.Past, features)
	yTrain, _ := split.Past.Column(string(target))
	xFuture := matrix(split.Future, features)
	yFuture, _ := split.Future.Column(string(target))

	logTransform := target == series.Precipitation
	labels := yTrain
	if logTransform {
		labels = make([]float64, len(yTrain))
		for i, v := range yTrain {
			labels[i] = math.Log1p(math.Max(v, 0))
		}
	}

	blended, err := fc.fitPredict(ctx, xTrain, labels, xFuture)
	if err != nil {
		return Result{}, fmt.Errorf("forecast %s: %w", target, err)
	}

	if logTransform {
		for i, v := range blended {
			blended[i] = math.Max(math.Expm1(v), 0)
		}

		metrics := ScoreRain(yFuture, blended, RainThreshold)
		res.RainMetrics = &metrics

		for i, v := range blended {
			if v < RainThreshold {
				blended[i] = 0
			}
		}
	}

	res.Predictions = blended
	res.Actual = yFuture
	res.Timestamps = split.Future.FormattedTimes()
	res.MAE = MeanAbsoluteError(yFuture, blended)

	if res.MAE != nil {
		fc.logger.Infow("future MAE", "target", target, "mae", *res.MAE, "fallback", res.Fallback)
	}
	return res, nil
}

// fitPredict trains each model independently and returns the unweighted
// average of their predictions.
func (fc *Forecaster) fitPredict(ctx context.Context, xTrain [][]float64, y []float64, xFuture [][]float64) ([]float64, error) {
	preds := make([][]float64, len(fc.Models))

	g, ctx := errgroup.WithContext(ctx)
	for i, build := range fc.Models {
		i, build := i, build
		g.Go(func() error {
			m := build()
			if err := m.Fit(xTrain, y); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := m.Predict(xFuture)
			if err != nil {
				return err
			}
			preds[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]float64, len(xFuture))
	for _, p := range preds {
		for i, v := range p {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(preds))
	}
	return out, nil
}

// featureColumns is every column but the target, in frame order.
func featureColumns(f *series.Frame, target series.Target) []string {
	var cols []string
	for _, c := range f.Columns() {
		if c != string(target) {
			cols = append(cols, c)
		}
	}
	return cols
}

func matrix(f *series.Frame, cols []string) [][]float64 {
	x := make([][]float64, f.Len())
	for i := range x {
		row := make([]float64, len(cols))
		for j, c := range cols {
			row[j] = f.Value(c, i)
		}
		x[i] = row
	}
	return x
}
