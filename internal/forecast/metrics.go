package forecast

import "math"

// RainThreshold is the precipitation amount, in mm, above which an hour counts as rainy.
const RainThreshold = 0.05

// MeanAbsoluteError returns nil when there is nothing to compare.
func MeanAbsoluteError(actual, predicted []float64) *float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return nil
	}
	var sum float64
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	mae := sum / float64(len(actual))
	return &mae
}

// RainLabels marks values strictly above threshold as rain.
func RainLabels(values []float64, threshold float64) []bool {
	labels := make([]bool, len(values))
	for i, v := range values {
		labels[i] = v > threshold
	}
	return labels
}

// ScoreRain computes precision, recall and F1 of predicted rain labels.
// A zero denominator yields 0 for that score.
func ScoreRain(actual, predicted []float64, threshold float64) RainMetrics {
	truth := RainLabels(actual, threshold)
	guess := RainLabels(predicted, threshold)

	var tp, fp, fn float64
	for i := range truth {
		switch {
		case truth[i] && guess[i]:
			tp++
		case !truth[i] && guess[i]:
			fp++
		case truth[i] && !guess[i]:
			fn++
		}
	}

	return RainMetrics{
		Threshold: threshold,
		Precision: ratio(tp, tp+fp),
		Recall:    ratio(tp, tp+fn),
		F1:        ratio(2*tp, 2*tp+fp+fn),
	}
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
