package weather

import "errors"

var (
	// ErrPlaceNotFound is returned when a city name cannot be resolved.
	ErrPlaceNotFound = errors.New("place not found")
	// ErrMissingLocation is returned when a query has neither a city nor coordinates.
	ErrMissingLocation = errors.New("a city or both latitude and longitude are required")
	// ErrInvalidCoordinates is returned when a point is off the globe even
	// after correcting swapped latitude and longitude.
	ErrInvalidCoordinates = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
	// ErrNoData is returned by an HourlySource that has no rows for a point.
	ErrNoData = errors.New("no archive or forecast data available")
)
