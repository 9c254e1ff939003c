package weather

import (
	"fmt"
	"time"
)

// TimeLayout is the minute-resolution local timestamp format used by Open-Meteo.
const TimeLayout = "2006-01-02T15:04"

// Coordinates identify the place a forecast is requested for.
type Coordinates struct {
	Longitude float64 `json:"longitude" validate:"longitude"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// HourlySeries is an hourly forecast stored as four parallel sequences.
// All sequences share the same length and index alignment, and Times holds
// exactly one entry per hour.
type HourlySeries struct {
	Times                    []time.Time `json:"time"`
	WeatherCodes             []int       `json:"weathercode"`
	Temperatures             []float64   `json:"temperature_2m"`
	PrecipitationProbability []int       `json:"precipitation_probability"`

	// Location is the zone Times are expressed in. Nil means UTC.
	Location *time.Location `json:"-"`
}

// Len returns the number of hourly entries.
func (s HourlySeries) Len() int {
	return len(s.Times)
}

func (s HourlySeries) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// Validate checks the parallel-array and one-entry-per-hour invariants and
// the value domains: WMO weather codes and probabilities in [0,100].
func (s HourlySeries) Validate() error {
	n := len(s.Times)
	if len(s.WeatherCodes) != n || len(s.Temperatures) != n || len(s.PrecipitationProbability) != n {
		return fmt.Errorf("series length mismatch: time=%d weathercode=%d temperature_2m=%d precipitation_probability=%d",
			n, len(s.WeatherCodes), len(s.Temperatures), len(s.PrecipitationProbability))
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			if d := s.Times[i].Sub(s.Times[i-1]); d != time.Hour {
				return fmt.Errorf("series gap at index %d: %s after %s",
					i, s.Times[i].Format(TimeLayout), s.Times[i-1].Format(TimeLayout))
			}
		}
		if !KnownCode(s.WeatherCodes[i]) {
			return fmt.Errorf("unknown weathercode %d at index %d", s.WeatherCodes[i], i)
		}
		if pp := s.PrecipitationProbability[i]; pp < 0 || pp > 100 {
			return fmt.Errorf("precipitation_probability %d out of range at index %d", pp, i)
		}
	}
	return nil
}

// Window is the half-open slice [Start, End) of an HourlySeries.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`

	Times                    []time.Time `json:"time"`
	WeatherCodes             []int       `json:"weathercode"`
	Temperatures             []float64   `json:"temperature_2m"`
	PrecipitationProbability []int       `json:"precipitation_probability"`
}

// Len returns the number of hours covered by the window.
func (w Window) Len() int {
	return w.End - w.Start
}

// Reason explains why EvaluateNow answered without looking at the forecast.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonMidnight Reason = "too early (midnight)"
	ReasonPreDawn  Reason = "too early (pre-dawn)"
	ReasonTooLate  Reason = "too late, try tomorrow"
)

// Decision is a laundry verdict together with the window it was computed over.
type Decision struct {
	CanLaba bool   `json:"canLaba"`
	Score   int    `json:"score"`
	Window  Window `json:"window"`
}

// NowResult is the answer to "can I laba right now".
type NowResult struct {
	Reference time.Time `json:"reference"`
	Window    *Window   `json:"window,omitempty"`
	CanLaba   bool      `json:"canLaba"`
	Score     int       `json:"score"`
	Reason    Reason    `json:"reason,omitempty"`
}

// TodayResult is the answer to "can I laba today".
type TodayResult struct {
	Date    time.Time `json:"date"`
	Morning Decision  `json:"morning"`
	Noon    Decision  `json:"noon"`
	CanLaba bool      `json:"canLaba"`
}
