package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRainPerfectClassification(t *testing.T) {
	actual := []float64{0.0, 0.1, 0.0, 0.2}
	predicted := []float64{0.02, 0.08, 0.0, 0.3}

	assert.Equal(t, []bool{false, true, false, true}, RainLabels(actual, RainThreshold))
	assert.Equal(t, []bool{false, true, false, true}, RainLabels(predicted, RainThreshold))

	m := ScoreRain(actual, predicted, RainThreshold)
	assert.Equal(t, RainThreshold, m.Threshold)
	assert.Equal(t, 1.0, m.Precision)
	assert.Equal(t, 1.0, m.Recall)
	assert.Equal(t, 1.0, m.F1)
}

func TestScoreRainZeroDivision(t *testing.T) {
	m := ScoreRain([]float64{0, 0, 0}, []float64{0, 0.01, 0}, RainThreshold)
	assert.Zero(t, m.Precision)
	assert.Zero(t, m.Recall)
	assert.Zero(t, m.F1)
}

func TestScoreRainMixed(t *testing.T) {
	// tp=1 fp=1 fn=1
	m := ScoreRain([]float64{1, 1, 0}, []float64{1, 0, 1}, RainThreshold)
	assert.InDelta(t, 0.5, m.Precision, 1e-12)
	assert.InDelta(t, 0.5, m.Recall, 1e-12)
	assert.InDelta(t, 0.5, m.F1, 1e-12)
}

func TestMeanAbsoluteError(t *testing.T) {
	assert.Nil(t, MeanAbsoluteError(nil, nil))

	mae := MeanAbsoluteError([]float64{1, 2, 3}, []float64{2, 2, 1})
	require.NotNil(t, mae)
	assert.InDelta(t, 1.0, *mae, 1e-12)
}
