package forecast

import "slices"

// RainMetrics scores the rain/no-rain classification derived from
// precipitation predictions.
type RainMetrics struct {
	Threshold float64 `json:"threshold"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Result is the outcome of a single forecast run.
type Result struct {
	Predictions        []float64    `json:"predictions"`
	Actual             []float64    `json:"actual"`
	Timestamps         []string     `json:"timestamps"`
	MAE                *float64     `json:"mae"`
	RainMetrics        *RainMetrics `json:"rain_metrics"`
	ObservedPast       []float64    `json:"observed_past"`
	ObservedTimestamps []string     `json:"observed_timestamps"`
	Fallback           bool         `json:"fallback"`
}

// EmptyResult is returned when no usable rows remain for training or scoring.
func EmptyResult() Result {
	return Result{
		Predictions:        []float64{},
		Actual:             []float64{},
		Timestamps:         []string{},
		ObservedPast:       []float64{},
		ObservedTimestamps: []string{},
	}
}

// Clone returns a deep copy, so callers can modify it without affecting r.
func (r Result) Clone() Result {
	out := r
	out.Predictions = slices.Clone(r.Predictions)
	out.Actual = slices.Clone(r.Actual)
	out.Timestamps = slices.Clone(r.Timestamps)
	out.ObservedPast = slices.Clone(r.ObservedPast)
	out.ObservedTimestamps = slices.Clone(r.ObservedTimestamps)
	if r.MAE != nil {
		mae := *r.MAE
		out.MAE = &mae
	}
	if r.RainMetrics != nil {
		rm := *r.RainMetrics
		out.RainMetrics = &rm
	}
	return out
}

// Empty reports whether the result carries no predictions.
func (r Result) Empty() bool {
	return len(r.Predictions) == 0
}
