package weather

import "errors"

var (
	// ErrSourceUnavailable is returned when the upstream forecast call fails or
	// its payload is missing required fields.
	ErrSourceUnavailable = errors.New("forecast source unavailable")

	// ErrTimeNotFound is returned when the rounded reference instant has no
	// exact match in the series.
	ErrTimeNotFound = errors.New("reference time not found in forecast")

	// ErrIndexOutOfRange signals a window request outside the series bounds.
	ErrIndexOutOfRange = errors.New("forecast index out of range")

	// ErrSeriesMisaligned is returned when the series does not start at local
	// midnight of the requested day.
	ErrSeriesMisaligned = errors.New("forecast does not start at local midnight")

	// ErrPlaceNotFound is returned by geocoding lookups with no result.
	ErrPlaceNotFound = errors.New("place not found")
)
