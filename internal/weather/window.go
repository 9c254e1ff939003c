package weather

import (
	"fmt"
	"time"
)

const (
	// roundUpAfterMinute is the minute past which "now" snaps to the next hour.
	roundUpAfterMinute = 30

	nowWindowHours        = 5
	roundedNowWindowHours = 6
)

// ExtractRange returns the window [start, end) of series. It performs no time
// computation.
func ExtractRange(series HourlySeries, start, end int) (Window, error) {
	if start < 0 || end > series.Len() || start > end {
		return Window{}, fmt.Errorf("%w: [%d, %d) of %d entries", ErrIndexOutOfRange, start, end, series.Len())
	}

	return Window{
		Start:                    start,
		End:                      end,
		Times:                    series.Times[start:end:end],
		WeatherCodes:             series.WeatherCodes[start:end:end],
		Temperatures:             series.Temperatures[start:end:end],
		PrecipitationProbability: series.PrecipitationProbability[start:end:end],
	}, nil
}

// AlignToNow returns the next few forecast hours starting at ref.
//
// Past the half hour the window starts at the next full hour and spans six
// entries; otherwise it starts at the current hour and spans five. Windows
// that would run past the end of the series are clipped.
func AlignToNow(series HourlySeries, ref time.Time) (Window, error) {
	start, length := roundReference(ref.In(series.location()))

	idx := series.indexOf(start)
	if idx < 0 {
		return Window{}, fmt.Errorf("%w: %s", ErrTimeNotFound, start.Format(TimeLayout))
	}

	end := idx + length
	if end > series.Len() {
		end = series.Len()
	}
	return ExtractRange(series, idx, end)
}

// roundReference snaps ref to a forecast boundary and picks the window length.
func roundReference(ref time.Time) (time.Time, int) {
	hour := time.Date(ref.Year(), ref.Month(), ref.Day(), ref.Hour(), 0, 0, 0, ref.Location())
	if ref.Minute() > roundUpAfterMinute {
		return hour.Add(time.Hour), roundedNowWindowHours
	}
	return hour, nowWindowHours
}

func (s HourlySeries) indexOf(t time.Time) int {
	for i, ts := range s.Times {
		if ts.Equal(t) {
			return i
		}
	}
	return -1
}
