package forecast

import (
	"time"

	"github.com/i474232898/weather-forecasting/internal/series"
)

// HorizonRows caps the evaluation segment and the observed tail.
const HorizonRows = 24

// Split partitions an augmented frame around a reference instant.
type Split struct {
	// Past holds training rows.
	Past *series.Frame
	// Future holds evaluation rows.
	Future *series.Frame
	// Observed is the last HorizonRows rows strictly before now.
	Observed *series.Frame
	// Fallback is set when no row was at or after now and Future was
	// taken from the tail of the whole frame instead.
	Fallback bool
}

// SplitHorizon partitions f into rows before now and rows at or after now.
// now is compared in UTC and must be captured once by the caller.
func SplitHorizon(f *series.Frame, now time.Time) Split {
	now = now.UTC()

	var pastRows, futureRows []int
	for i := 0; i < f.Len(); i++ {
		if f.Time(i).Before(now) {
			pastRows = append(pastRows, i)
		} else {
			futureRows = append(futureRows, i)
		}
	}

	past := f.Select(pastRows)
	s := Split{
		Past:     past,
		Future:   f.Select(futureRows).Head(HorizonRows),
		Observed: past.Tail(HorizonRows),
	}

	if s.Future.Empty() {
		s.Future = f.Tail(HorizonRows)
		s.Past = f.Head(f.Len() - s.Future.Len())
		s.Fallback = true
	}
	return s
}
