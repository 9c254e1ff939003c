package weather

import (
	"context"
)

// Source abstracts an hourly forecast provider (e.g. Open-Meteo).
type Source interface {
	Name() string
	Fetch(ctx context.Context, coords Coordinates) (HourlySeries, error)
}

// Place is a geocoded location.
type Place struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Coordinates returns the place's coordinates.
func (p Place) Coordinates() Coordinates {
	return Coordinates{Longitude: p.Longitude, Latitude: p.Latitude}
}

// Geocoder resolves a free-text place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (Place, error)
}
