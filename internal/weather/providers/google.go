package providers

import (
	"context"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-forecasting/internal/weather"
)

// the geocoder package keys requests off a package-level variable
var googleKeyMu sync.Mutex

// GoogleGeocoder resolves names and coordinates with the Google Geocoding
// API. It is only used when an API key is configured.
type GoogleGeocoder struct {
	apiKey string
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey}
}

func (g *GoogleGeocoder) Search(ctx context.Context, name string) ([]weather.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	googleKeyMu.Lock()
	geocoder.ApiKey = g.apiKey
	loc, err := geocoder.Geocoding(geocoder.Address{City: name})
	googleKeyMu.Unlock()
	if err != nil {
		return nil, err
	}

	return []weather.Place{{Name: name, Lat: loc.Latitude, Lon: loc.Longitude}}, nil
}

func (g *GoogleGeocoder) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	googleKeyMu.Lock()
	geocoder.ApiKey = g.apiKey
	addresses, err := geocoder.GeocodingReverse(geocoder.Location{Latitude: lat, Longitude: lon})
	googleKeyMu.Unlock()
	if err != nil {
		return "", err
	}

	for _, a := range addresses {
		if a.City != "" {
			return a.City, nil
		}
	}
	return "", nil
}
