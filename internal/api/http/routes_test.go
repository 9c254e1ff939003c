package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/canilaba/internal/store"
	"github.com/i474232898/canilaba/internal/users"
	"github.com/i474232898/canilaba/internal/weather"
)

var manila = time.FixedZone("PST", 8*3600)

type stubForecaster struct {
	coords weather.Coordinates
	ref    time.Time
	err    error
}

func (s *stubForecaster) Now(_ context.Context, coords weather.Coordinates, ref time.Time) (weather.NowResult, error) {
	s.coords, s.ref = coords, ref
	if s.err != nil {
		return weather.NowResult{}, s.err
	}
	return weather.NowResult{Reference: ref, CanLaba: true, Score: 6}, nil
}

func (s *stubForecaster) Today(_ context.Context, coords weather.Coordinates, today time.Time) (weather.TodayResult, error) {
	s.coords, s.ref = coords, today
	if s.err != nil {
		return weather.TodayResult{}, s.err
	}
	return weather.TodayResult{Date: today, CanLaba: false}, nil
}

func newTestApp(t *testing.T) (*fiber.App, *stubForecaster, *store.MemoryStore) {
	t.Helper()
	app := fiber.New()
	fc := &stubForecaster{}
	st := store.NewMemoryStore()
	RegisterRoutes(app, Deps{
		Forecaster: fc,
		Users:      st,
		Location:   manila,
		Now:        func() time.Time { return time.Date(2026, 10, 17, 1, 30, 0, 0, time.UTC) },
	})
	return app, fc, st
}

func do(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestLaundryNow(t *testing.T) {
	app, fc, _ := newTestApp(t)

	resp := do(t, app, http.MethodGet, "/api/v1/laundry/now?lat=14.5786&lon=121.1222", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got weather.NowResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.True(t, got.CanLaba)
	assert.Equal(t, 6, got.Score)
	assert.Equal(t, weather.Coordinates{Longitude: 121.1222, Latitude: 14.5786}, fc.coords)
	assert.Equal(t, 9, fc.ref.Hour(), "reference is taken in the configured zone")
}

func TestLaundryTodayWithReferenceTime(t *testing.T) {
	app, fc, _ := newTestApp(t)

	resp := do(t, app, http.MethodGet, "/api/v1/laundry/today?lat=14.5&lon=121&at=2026-10-18T07:00:00%2B08:00", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 18, fc.ref.Day())
}

func TestLaundryQueryValidation(t *testing.T) {
	app, _, _ := newTestApp(t)

	for _, target := range []string{
		"/api/v1/laundry/now",
		"/api/v1/laundry/now?lat=14.5",
		"/api/v1/laundry/now?lat=abc&lon=121",
		"/api/v1/laundry/today?lat=95&lon=121",
		"/api/v1/laundry/today?lat=14&lon=190",
		"/api/v1/laundry/today?lat=14&lon=121&at=yesterday",
	} {
		resp := do(t, app, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestLaundryErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{weather.ErrTimeNotFound, http.StatusConflict},
		{fmt.Errorf("today: %w", weather.ErrSeriesMisaligned), http.StatusConflict},
		{fmt.Errorf("%w: openmeteo: 500", weather.ErrSourceUnavailable), http.StatusBadGateway},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		app, fc, _ := newTestApp(t)
		fc.err = tc.err

		resp := do(t, app, http.MethodGet, "/api/v1/laundry/today?lat=14.5&lon=121", "")
		assert.Equal(t, tc.want, resp.StatusCode, tc.err.Error())
	}
}

func TestUserEndpoints(t *testing.T) {
	app, _, st := newTestApp(t)

	resp := do(t, app, http.MethodGet, "/api/v1/users/7", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, app, http.MethodPut, "/api/v1/users/7/days", `{"days":["monday","Fri"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var u users.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&u))
	assert.Equal(t, users.NewWeekdaySet(time.Monday, time.Friday), u.LaundryDays)

	resp = do(t, app, http.MethodPut, "/api/v1/users/7/location", `{"latitude":14.6,"longitude":120.98}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	coords, err := st.GetCoordinates(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.Equal(t, 120.98, coords.Longitude)

	resp = do(t, app, http.MethodGet, "/api/v1/users/7", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, http.MethodDelete, "/api/v1/users/7", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, app, http.MethodDelete, "/api/v1/users/7", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserEndpointsValidation(t *testing.T) {
	app, _, _ := newTestApp(t)

	cases := []struct {
		method, target, body string
	}{
		{http.MethodGet, "/api/v1/users/abc", ""},
		{http.MethodPut, "/api/v1/users/7/days", `{"days":["someday"]}`},
		{http.MethodPut, "/api/v1/users/7/days", `{}`},
		{http.MethodPut, "/api/v1/users/7/location", `{"latitude":14.6}`},
		{http.MethodPut, "/api/v1/users/7/location", `{"latitude":-91,"longitude":120}`},
	}
	for _, tc := range cases {
		resp := do(t, app, tc.method, tc.target, tc.body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tc.target+" "+tc.body)
	}
}

func TestParseTime(t *testing.T) {
	ts, err := parseTime("1792195200")
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1792195200, 0).UTC(), ts)

	_, err = parseTime("2026-10-17")
	assert.Error(t, err)
}
