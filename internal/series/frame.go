package series

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"time"
)

// Target names a numeric hourly weather field that can be forecast.
type Target string

const (
	Temperature   Target = "temperature_2m"
	Humidity      Target = "relative_humidity_2m"
	Pressure      Target = "pressure_msl"
	Precipitation Target = "precipitation"
	WindSpeed     Target = "wind_speed_10m"
)

// Fields lists the hourly fields requested from the provider, in column order.
var Fields = []Target{Temperature, Humidity, Pressure, Precipitation, WindSpeed}

// TimestampLayout is how frame timestamps are rendered for callers.
const TimestampLayout = "2006-01-02 15:04:05"

// ParseTarget returns the Target for name if it is one of the known fields.
func ParseTarget(name string) (Target, bool) {
	for _, f := range Fields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// Frame is an immutable, time-ordered table of hourly records.
// Timestamps are UTC and strictly increasing. Missing values are NaN.
type Frame struct {
	times   []time.Time
	columns []string
	values  map[string][]float64
}

// NewFrame builds a frame from parallel slices. Rows are deduplicated by
// timestamp (first occurrence wins) and then sorted ascending.
func NewFrame(times []time.Time, columns []string, values map[string][]float64) (*Frame, error) {
	for _, c := range columns {
		v, ok := values[c]
		if !ok {
			return nil, fmt.Errorf("column %q has no values", c)
		}
		if len(v) != len(times) {
			return nil, fmt.Errorf("column %q has %d values, want %d", c, len(v), len(times))
		}
	}

	seen := make(map[int64]struct{}, len(times))
	rows := make([]int, 0, len(times))
	for i, t := range times {
		key := t.UTC().UnixNano()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, i)
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return times[rows[a]].Before(times[rows[b]])
	})

	f := &Frame{
		times:   make([]time.Time, len(rows)),
		columns: append([]string(nil), columns...),
		values:  make(map[string][]float64, len(columns)),
	}
	for j, i := range rows {
		f.times[j] = times[i].UTC()
	}
	for _, c := range columns {
		src := values[c]
		dst := make([]float64, len(rows))
		for j, i := range rows {
			dst[j] = src[i]
		}
		f.values[c] = dst
	}
	return f, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.times)
}

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool { return f.Len() == 0 }

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return slices.Clone(f.columns)
}

// HasColumn reports whether name is a column of f.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.values[name]
	return ok
}

// Times returns a copy of the row timestamps.
func (f *Frame) Times() []time.Time {
	return slices.Clone(f.times)
}

// Time returns the timestamp of row i.
func (f *Frame) Time(i int) time.Time { return f.times[i] }

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]float64, bool) {
	v, ok := f.values[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// Value returns the value of column name at row i.
func (f *Frame) Value(name string, i int) float64 {
	return f.values[name][i]
}

// FormattedTimes renders the row timestamps with TimestampLayout.
func (f *Frame) FormattedTimes() []string {
	out := make([]string, len(f.times))
	for i, t := range f.times {
		out[i] = t.Format(TimestampLayout)
	}
	return out
}

// WithColumn returns a new frame with an extra (or replaced) column.
func (f *Frame) WithColumn(name string, vals []float64) (*Frame, error) {
	if len(vals) != len(f.times) {
		return nil, fmt.Errorf("column %q has %d values, want %d", name, len(vals), len(f.times))
	}
	out := &Frame{
		times:   f.times,
		columns: f.Columns(),
		values:  make(map[string][]float64, len(f.values)+1),
	}
	for k, v := range f.values {
		out.values[k] = v
	}
	if _, exists := f.values[name]; !exists {
		out.columns = append(out.columns, name)
	}
	out.values[name] = slices.Clone(vals)
	return out, nil
}

// Select returns a new frame holding the given rows, in the given order.
func (f *Frame) Select(rows []int) *Frame {
	out := &Frame{
		times:   make([]time.Time, len(rows)),
		columns: f.Columns(),
		values:  make(map[string][]float64, len(f.columns)),
	}
	for j, i := range rows {
		out.times[j] = f.times[i]
	}
	for _, c := range f.columns {
		src := f.values[c]
		dst := make([]float64, len(rows))
		for j, i := range rows {
			dst[j] = src[i]
		}
		out.values[c] = dst
	}
	return out
}

// Slice returns rows [from, to).
func (f *Frame) Slice(from, to int) *Frame {
	rows := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		rows = append(rows, i)
	}
	return f.Select(rows)
}

// Head returns at most the first n rows.
func (f *Frame) Head(n int) *Frame {
	return f.Slice(0, min(n, f.Len()))
}

// Tail returns at most the last n rows.
func (f *Frame) Tail(n int) *Frame {
	return f.Slice(max(0, f.Len()-n), f.Len())
}

// DropIncomplete returns a frame without rows that hold a NaN in any column.
func (f *Frame) DropIncomplete() *Frame {
	rows := make([]int, 0, f.Len())
	for i := range f.times {
		complete := true
		for _, c := range f.columns {
			if math.IsNaN(f.values[c][i]) {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, i)
		}
	}
	return f.Select(rows)
}
