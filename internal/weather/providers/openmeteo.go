package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/canilaba/internal/weather"
)

const (
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

	hourlyFields = "temperature_2m,precipitation_probability,weathercode"
	forecastDays = 3
)

// OpenMeteoConfig configures the Open-Meteo source.
type OpenMeteoConfig struct {
	ForecastURL  string
	GeocodingURL string
	// Timezone is passed through to Open-Meteo; "auto" resolves it from the
	// coordinates.
	Timezone string
}

// OpenMeteoProvider implements weather.Source and weather.Geocoder for Open-Meteo.
type OpenMeteoProvider struct {
	name         string
	forecastURL  string
	geocodingURL string
	timezone     string
	client       *http.Client
	circuit      *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, cfg OpenMeteoConfig) *OpenMeteoProvider {
	p := &OpenMeteoProvider{
		name:         "openmeteo",
		forecastURL:  cfg.ForecastURL,
		geocodingURL: cfg.GeocodingURL,
		timezone:     cfg.Timezone,
		client:       client,
		circuit:      newCircuitBreaker("openmeteo"),
	}
	if p.forecastURL == "" {
		p.forecastURL = DefaultForecastURL
	}
	if p.geocodingURL == "" {
		p.geocodingURL = DefaultGeocodingURL
	}
	if p.timezone == "" {
		p.timezone = "auto"
	}
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type hourlyPayload struct {
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`
	Timezone         string `json:"timezone"`
	TimezoneAbbr     string `json:"timezone_abbreviation"`
	Hourly           *struct {
		Time                     *[]string   `json:"time"`
		WeatherCode              *[]*int     `json:"weathercode"`
		Temperature              *[]*float64 `json:"temperature_2m"`
		PrecipitationProbability *[]*int     `json:"precipitation_probability"`
	} `json:"hourly"`
}

// Fetch returns the hourly series for the next few days starting at local
// midnight of the current day.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, coords weather.Coordinates) (weather.HourlySeries, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	values.Set("hourly", hourlyFields)
	values.Set("forecast_days", strconv.Itoa(forecastDays))
	values.Set("timezone", p.timezone)

	var payload hourlyPayload
	if err := getJSON(ctx, p.client, p.circuit, p.forecastURL+"?"+values.Encode(), &payload); err != nil {
		return weather.HourlySeries{}, fmt.Errorf("%w: %s: %v", weather.ErrSourceUnavailable, p.name, err)
	}

	series, err := payload.toSeries()
	if err != nil {
		return weather.HourlySeries{}, fmt.Errorf("%w: %s: %v", weather.ErrSourceUnavailable, p.name, err)
	}
	return series, nil
}

func (pl hourlyPayload) toSeries() (weather.HourlySeries, error) {
	h := pl.Hourly
	switch {
	case h == nil:
		return weather.HourlySeries{}, fmt.Errorf("missing hourly object")
	case h.Time == nil:
		return weather.HourlySeries{}, fmt.Errorf("missing hourly.time")
	case h.WeatherCode == nil:
		return weather.HourlySeries{}, fmt.Errorf("missing hourly.weathercode")
	case h.Temperature == nil:
		return weather.HourlySeries{}, fmt.Errorf("missing hourly.temperature_2m")
	case h.PrecipitationProbability == nil:
		return weather.HourlySeries{}, fmt.Errorf("missing hourly.precipitation_probability")
	}

	codes, err := nonNull("weathercode", *h.WeatherCode)
	if err != nil {
		return weather.HourlySeries{}, err
	}
	temps, err := nonNull("temperature_2m", *h.Temperature)
	if err != nil {
		return weather.HourlySeries{}, err
	}
	probs, err := nonNull("precipitation_probability", *h.PrecipitationProbability)
	if err != nil {
		return weather.HourlySeries{}, err
	}

	loc := pl.location()
	times := make([]time.Time, len(*h.Time))
	for i, raw := range *h.Time {
		ts, err := time.ParseInLocation(weather.TimeLayout, raw, loc)
		if err != nil {
			return weather.HourlySeries{}, fmt.Errorf("hourly.time[%d]: %w", i, err)
		}
		times[i] = ts
	}

	series := weather.HourlySeries{
		Times:                    times,
		WeatherCodes:             codes,
		Temperatures:             temps,
		PrecipitationProbability: probs,
		Location:                 loc,
	}
	if err := series.Validate(); err != nil {
		return weather.HourlySeries{}, err
	}
	return series, nil
}

// nonNull dereferences an hourly array. Open-Meteo sends null for hours it
// has no value for.
func nonNull[T int | float64](field string, in []*T) ([]T, error) {
	out := make([]T, len(in))
	for i, v := range in {
		if v == nil {
			return nil, fmt.Errorf("hourly.%s[%d] is null", field, i)
		}
		out[i] = *v
	}
	return out, nil
}

// location returns the zone the response timestamps are written in. Open-Meteo
// applies a single utc_offset_seconds to the whole response, so the hourly
// timestamps stay one hour apart across daylight saving changes.
func (pl hourlyPayload) location() *time.Location {
	name := pl.TimezoneAbbr
	if name == "" {
		name = pl.Timezone
	}
	if name == "" {
		name = fmt.Sprintf("UTC%+d", pl.UTCOffsetSeconds/3600)
	}
	return time.FixedZone(name, pl.UTCOffsetSeconds)
}
// Geocode resolves a place name using the Open-Meteo geocoding API.
func (p *OpenMeteoProvider) Geocode(ctx context.Context, name string) (weather.Place, error) {
	values := url.Values{}
	values.Set("name", name)
	values.Set("count", "1")
	values.Set("language", "en")
	values.Set("format", "json")

	var payload struct {
		Results []weather.Place `json:"results"`
	}
	if err := getJSON(ctx, p.client, p.circuit, p.geocodingURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Place{}, fmt.Errorf("%w: %s geocoding: %v", weather.ErrSourceUnavailable, p.name, err)
	}

	if len(payload.Results) == 0 {
		return weather.Place{}, fmt.Errorf("%w: %s", weather.ErrPlaceNotFound, name)
	}
	return payload.Results[0], nil
}
