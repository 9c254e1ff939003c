package weather

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRange(t *testing.T) {
	series := seriesFrom(time.Date(2026, time.October, 17, 0, 0, 0, 0, manila), 0, 1, 2, 3, 45, 61, 0, 1)

	for _, r := range [][2]int{{0, 0}, {0, 8}, {2, 5}, {7, 8}, {8, 8}} {
		w, err := ExtractRange(series, r[0], r[1])
		require.NoError(t, err)

		n := r[1] - r[0]
		assert.Equal(t, n, w.Len())
		assert.Len(t, w.Times, n)
		assert.Len(t, w.WeatherCodes, n)
		assert.Len(t, w.Temperatures, n)
		assert.Len(t, w.PrecipitationProbability, n)
		for i := 0; i < n; i++ {
			assert.True(t, series.Times[r[0]+i].Equal(w.Times[i]))
			assert.Equal(t, series.WeatherCodes[r[0]+i], w.WeatherCodes[i])
			assert.Equal(t, series.Temperatures[r[0]+i], w.Temperatures[i])
			assert.Equal(t, series.PrecipitationProbability[r[0]+i], w.PrecipitationProbability[i])
		}
	}
}

func TestExtractRangeOutOfBounds(t *testing.T) {
	series := seriesFrom(time.Date(2026, time.October, 17, 0, 0, 0, 0, manila), 0, 1, 2)

	for _, r := range [][2]int{{-1, 2}, {0, 4}, {2, 1}} {
		_, err := ExtractRange(series, r[0], r[1])
		assert.True(t, errors.Is(err, ErrIndexOutOfRange), "range %v", r)
	}
}

func TestExtractRangeDoesNotAliasAppends(t *testing.T) {
	series := seriesFrom(time.Date(2026, time.October, 17, 0, 0, 0, 0, manila), 0, 1, 2, 3)

	w, err := ExtractRange(series, 0, 2)
	require.NoError(t, err)
	w.WeatherCodes = append(w.WeatherCodes, 99)
	assert.Equal(t, 2, series.WeatherCodes[2])
}

func TestAlignToNow(t *testing.T) {
	series := dayOf(2026, time.October, 17, 0)

	tests := []struct {
		name      string
		ref       time.Time
		wantStart int
		wantLen   int
	}{
		{name: "minute 10 keeps the current hour", ref: time.Date(2026, time.October, 17, 9, 10, 0, 0, manila), wantStart: 9, wantLen: 5},
		{name: "minute 30 keeps the current hour", ref: time.Date(2026, time.October, 17, 9, 30, 59, 0, manila), wantStart: 9, wantLen: 5},
		{name: "minute 31 rounds up", ref: time.Date(2026, time.October, 17, 9, 31, 0, 0, manila), wantStart: 10, wantLen: 6},
		{name: "minute 45 rounds up", ref: time.Date(2026, time.October, 17, 9, 45, 12, 0, manila), wantStart: 10, wantLen: 6},
		{name: "rounding crosses midnight", ref: time.Date(2026, time.October, 17, 23, 45, 0, 0, manila), wantStart: 24, wantLen: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := AlignToNow(series, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, w.Start)
			assert.Equal(t, tt.wantLen, w.Len())
			assert.Len(t, w.WeatherCodes, tt.wantLen)
		})
	}
}

func TestAlignToNowClipsAtSeriesEnd(t *testing.T) {
	series := seriesFrom(time.Date(2026, time.October, 17, 0, 0, 0, 0, manila), make([]int, 12)...)

	w, err := AlignToNow(series, time.Date(2026, time.October, 17, 9, 45, 0, 0, manila))
	require.NoError(t, err)
	assert.Equal(t, 10, w.Start)
	assert.Equal(t, 12, w.End)
	assert.Len(t, w.Times, 2)
}

func TestAlignToNowTimeNotFound(t *testing.T) {
	series := seriesFrom(time.Date(2026, time.October, 17, 0, 0, 0, 0, manila), make([]int, 12)...)

	_, err := AlignToNow(series, time.Date(2026, time.October, 17, 11, 45, 0, 0, manila))
	assert.True(t, errors.Is(err, ErrTimeNotFound))

	_, err = AlignToNow(series, time.Date(2026, time.October, 16, 9, 0, 0, 0, manila))
	assert.True(t, errors.Is(err, ErrTimeNotFound))
}

func TestValidate(t *testing.T) {
	series := seriesFrom(time.Date(2026, time.October, 17, 0, 0, 0, 0, manila), 0, 1, 2)
	require.NoError(t, series.Validate())

	short := series
	short.Temperatures = short.Temperatures[:2]
	assert.Error(t, short.Validate())

	gap := seriesFrom(time.Date(2026, time.October, 17, 0, 0, 0, 0, manila), 0, 1, 2)
	gap.Times[2] = gap.Times[2].Add(time.Hour)
	assert.Error(t, gap.Validate())

	badCode := seriesFrom(time.Date(2026, time.October, 17, 0, 0, 0, 0, manila), 0, 4, 2)
	assert.ErrorContains(t, badCode.Validate(), "unknown weathercode 4 at index 1")

	badProbability := seriesFrom(time.Date(2026, time.October, 17, 0, 0, 0, 0, manila), 0, 1, 2)
	badProbability.PrecipitationProbability[2] = 101
	assert.ErrorContains(t, badProbability.Validate(), "precipitation_probability 101")
}
