package weather

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateScenarios(t *testing.T) {
	tests := []struct {
		name      string
		codes     []int
		wantScore int
		want      bool
	}{
		{name: "empty window", codes: nil, wantScore: 0, want: true},
		{name: "clear to overcast", codes: []int{0, 1, 2, 3}, wantScore: 6, want: true},
		{name: "five overcast hours hit the cap exactly", codes: []int{3, 3, 3, 3, 3}, wantScore: 15, want: true},
		{name: "six overcast hours exceed the cap", codes: []int{3, 3, 3, 3, 3, 3}, wantScore: 18, want: false},
		{name: "code five disqualifies", codes: []int{0, 1, 5}, wantScore: 6, want: false},
		{name: "code four is still dry", codes: []int{4, 4, 4}, wantScore: 12, want: true},
		{name: "rain stops the scan", codes: []int{1, 61, 95, 3}, wantScore: 62, want: false},
		{name: "rain first", codes: []int{80, 0, 0}, wantScore: 80, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ok := Score(windowOf(tt.codes...))
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.want, Evaluate(windowOf(tt.codes...)))
		})
	}
}

func TestEvaluateDryCodesFollowSumCap(t *testing.T) {
	// Every combination of three hours from codes 0-3, padded up to six hours
	// with the same pattern.
	for a := 0; a <= 3; a++ {
		for b := 0; b <= 3; b++ {
			for c := 0; c <= 3; c++ {
				codes := []int{a, b, c, a, b, c}
				sum := 2 * (a + b + c)
				assert.Equal(t, sum <= 15, Evaluate(windowOf(codes...)), "codes %v", codes)
			}
		}
	}
}

func TestEvaluateAnyWetCodeIsFalse(t *testing.T) {
	for code := range wmoDescriptions {
		if code <= 4 {
			continue
		}
		assert.False(t, Evaluate(windowOf(0, 0, code, 0)), "code %d", code)
	}
}

func TestEvaluateNowGating(t *testing.T) {
	series := dayOf(2026, time.October, 17, 0)

	tests := []struct {
		hour   int
		reason Reason
	}{
		{hour: 0, reason: ReasonMidnight},
		{hour: 1, reason: ReasonPreDawn},
		{hour: 5, reason: ReasonPreDawn},
		{hour: 15, reason: ReasonTooLate},
		{hour: 23, reason: ReasonTooLate},
	}

	for _, tt := range tests {
		ref := time.Date(2026, time.October, 17, tt.hour, 10, 0, 0, manila)
		res, err := EvaluateNow(series, ref)
		require.NoError(t, err)
		assert.Equal(t, tt.reason, res.Reason, "hour %d", tt.hour)
		assert.False(t, res.CanLaba)
		assert.Nil(t, res.Window)
	}
}

func TestEvaluateNowMidnightIgnoresSeries(t *testing.T) {
	ref := time.Date(2026, time.October, 17, 0, 5, 0, 0, manila)

	res, err := EvaluateNow(HourlySeries{Location: manila}, ref)
	require.NoError(t, err)
	assert.Equal(t, ReasonMidnight, res.Reason)
	assert.False(t, res.CanLaba)
}

func TestEvaluateNowDelegatesDuringDay(t *testing.T) {
	codes := make([]int, 48)
	codes[10], codes[11], codes[12] = 1, 1, 1
	series := seriesFrom(time.Date(2026, time.October, 17, 0, 0, 0, 0, manila), codes...)

	res, err := EvaluateNow(series, time.Date(2026, time.October, 17, 10, 0, 0, 0, manila))
	require.NoError(t, err)
	require.NotNil(t, res.Window)
	assert.Equal(t, ReasonNone, res.Reason)
	assert.Equal(t, 10, res.Window.Start)
	assert.Equal(t, 15, res.Window.End)
	assert.Equal(t, 3, res.Score)
	assert.True(t, res.CanLaba)

	codes[13] = 63
	series = seriesFrom(time.Date(2026, time.October, 17, 0, 0, 0, 0, manila), codes...)
	res, err = EvaluateNow(series, time.Date(2026, time.October, 17, 10, 0, 0, 0, manila))
	require.NoError(t, err)
	assert.False(t, res.CanLaba)
}

func TestEvaluateNowConvertsReferenceToSeriesZone(t *testing.T) {
	series := dayOf(2026, time.October, 17, 0)

	// 02:20 UTC is 10:20 in UTC+8.
	res, err := EvaluateNow(series, time.Date(2026, time.October, 17, 2, 20, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, res.Window)
	assert.Equal(t, 10, res.Window.Start)
	assert.Equal(t, 10, res.Reference.Hour())
}

func TestEvaluateNowTimeNotFound(t *testing.T) {
	series := seriesFrom(time.Date(2026, time.October, 18, 0, 0, 0, 0, manila), make([]int, 24)...)

	_, err := EvaluateNow(series, time.Date(2026, time.October, 17, 9, 0, 0, 0, manila))
	assert.True(t, errors.Is(err, ErrTimeNotFound))
}

func TestEvaluateTodayWindows(t *testing.T) {
	series := dayOf(2026, time.October, 17, 0)

	// The reference time of day does not move the windows.
	for _, hour := range []int{0, 7, 14, 22} {
		res, err := EvaluateToday(series, time.Date(2026, time.October, 17, hour, 45, 0, 0, manila))
		require.NoError(t, err)

		assert.Equal(t, 6, res.Morning.Window.Start)
		assert.Equal(t, 11, res.Morning.Window.End)
		assert.Equal(t, 11, res.Noon.Window.Start)
		assert.Equal(t, 15, res.Noon.Window.End)
		assert.Equal(t, 6, res.Morning.Window.Times[0].Hour())
		assert.Equal(t, 11, res.Noon.Window.Times[0].Hour())
		assert.True(t, res.CanLaba)
	}
}

func TestEvaluateTodayEitherWindowSuffices(t *testing.T) {
	start := time.Date(2026, time.October, 17, 0, 0, 0, 0, manila)
	codes := make([]int, 48)

	// Rainy morning, dry noon.
	codes[8] = 61
	res, err := EvaluateToday(seriesFrom(start, codes...), start)
	require.NoError(t, err)
	assert.False(t, res.Morning.CanLaba)
	assert.True(t, res.Noon.CanLaba)
	assert.True(t, res.CanLaba)

	// Rainy morning and noon.
	codes[12] = 95
	res, err = EvaluateToday(seriesFrom(start, codes...), start)
	require.NoError(t, err)
	assert.False(t, res.Morning.CanLaba)
	assert.False(t, res.Noon.CanLaba)
	assert.False(t, res.CanLaba)
}

func TestEvaluateTodayRequiresMidnightStart(t *testing.T) {
	series := seriesFrom(time.Date(2026, time.October, 17, 1, 0, 0, 0, manila), make([]int, 48)...)

	_, err := EvaluateToday(series, time.Date(2026, time.October, 17, 9, 0, 0, 0, manila))
	assert.True(t, errors.Is(err, ErrSeriesMisaligned))

	// Yesterday's series is misaligned for today as well.
	series = dayOf(2026, time.October, 16, 0)
	_, err = EvaluateToday(series, time.Date(2026, time.October, 17, 9, 0, 0, 0, manila))
	assert.True(t, errors.Is(err, ErrSeriesMisaligned))

	_, err = EvaluateToday(HourlySeries{}, time.Now())
	assert.True(t, errors.Is(err, ErrSeriesMisaligned))
}

func TestEvaluateTodayShortSeries(t *testing.T) {
	series := seriesFrom(time.Date(2026, time.October, 17, 0, 0, 0, 0, manila), make([]int, 12)...)

	_, err := EvaluateToday(series, time.Date(2026, time.October, 17, 9, 0, 0, 0, manila))
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}
