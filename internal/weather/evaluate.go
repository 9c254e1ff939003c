package weather

import (
	"fmt"
	"time"
)

const (
	// maxDryCode is the highest WMO code that does not disqualify a window.
	// Codes 0-3 run from clear sky to overcast.
	maxDryCode = 4

	// maxScore caps the summed weather codes of an acceptable window. Five
	// overcast hours score exactly 15.
	maxScore = 15

	dayStartHour = 6
	cutoffHour   = 15
)

var (
	morningRange = [2]int{6, 11}
	noonRange    = [2]int{11, 15}
)

// Score sums the window's weather codes in order. The scan stops right after
// the first code above maxDryCode, which is still counted. The window is safe
// when no such code was seen and the score stays within maxScore.
func Score(w Window) (int, bool) {
	score := 0
	decision := true

	for _, code := range w.WeatherCodes {
		score += code
		if code > maxDryCode {
			decision = false
			break
		}
	}

	if score > maxScore {
		decision = false
	}
	return score, decision
}

// Evaluate reports whether laundry put out during w would dry.
func Evaluate(w Window) bool {
	_, ok := Score(w)
	return ok
}

// EvaluateNow answers "can I laba now" for ref. Outside 06:00-15:00 it answers
// no without looking at the forecast.
func EvaluateNow(series HourlySeries, ref time.Time) (NowResult, error) {
	ref = ref.In(series.location())
	res := NowResult{Reference: ref}

	switch hour := ref.Hour(); {
	case hour == 0:
		res.Reason = ReasonMidnight
		return res, nil
	case hour < dayStartHour:
		res.Reason = ReasonPreDawn
		return res, nil
	case hour >= cutoffHour:
		res.Reason = ReasonTooLate
		return res, nil
	}

	w, err := AlignToNow(series, ref)
	if err != nil {
		return NowResult{}, err
	}
	res.Window = &w
	res.Score, res.CanLaba = Score(w)
	return res, nil
}

// EvaluateToday checks the fixed morning (06:00-11:00) and noon (11:00-15:00)
// windows. The series must start at local midnight of today.
func EvaluateToday(series HourlySeries, today time.Time) (TodayResult, error) {
	loc := series.location()
	today = today.In(loc)
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)

	if series.Len() == 0 || !series.Times[0].Equal(midnight) {
		first := "empty series"
		if series.Len() > 0 {
			first = series.Times[0].Format(TimeLayout)
		}
		return TodayResult{}, fmt.Errorf("%w: want %s, got %s", ErrSeriesMisaligned, midnight.Format(TimeLayout), first)
	}

	morning, err := decide(series, morningRange)
	if err != nil {
		return TodayResult{}, err
	}
	noon, err := decide(series, noonRange)
	if err != nil {
		return TodayResult{}, err
	}

	return TodayResult{
		Date:    midnight,
		Morning: morning,
		Noon:    noon,
		CanLaba: morning.CanLaba || noon.CanLaba,
	}, nil
}

func decide(series HourlySeries, r [2]int) (Decision, error) {
	w, err := ExtractRange(series, r[0], r[1])
	if err != nil {
		return Decision{}, err
	}
	score, ok := Score(w)
	return Decision{CanLaba: ok, Score: score, Window: w}, nil
}
