package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-forecasting/internal/weather"
)

// API Docs: https://open-meteo.com/en/docs/geocoding-api
const (
	openMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	// API Docs: https://nominatim.org/release-docs/develop/api/Reverse/
	nominatimReverseURL = "https://nominatim.openstreetmap.org/reverse"

	geocodingCandidates = 5
)

// OpenMeteoGeocoder resolves place names with the Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	baseURL  string
	language string
	fetcher  JSONFetcher
}

func NewOpenMeteoGeocoder(fetcher JSONFetcher, language string) *OpenMeteoGeocoder {
	return &OpenMeteoGeocoder{
		baseURL:  openMeteoGeocodingURL,
		language: language,
		fetcher:  fetcher,
	}
}

// WithBaseURL points the geocoder at another search endpoint.
func (g *OpenMeteoGeocoder) WithBaseURL(u string) *OpenMeteoGeocoder {
	g.baseURL = u
	return g
}

// Search returns up to five candidates, best match first.
func (g *OpenMeteoGeocoder) Search(ctx context.Context, name string) ([]weather.Place, error) {
	values := url.Values{}
	values.Set("name", name)
	values.Set("count", strconv.Itoa(geocodingCandidates))
	if g.language != "" {
		values.Set("language", g.language)
	}

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Country   string  `json:"country"`
		} `json:"results"`
	}
	if err := g.fetcher.FetchJSON(ctx, fmt.Sprintf("%s?%s", g.baseURL, values.Encode()), &payload); err != nil {
		return nil, err
	}

	places := make([]weather.Place, 0, len(payload.Results))
	for _, r := range payload.Results {
		places = append(places, weather.Place{
			Name:    r.Name,
			Country: r.Country,
			Lat:     r.Latitude,
			Lon:     r.Longitude,
		})
	}
	return places, nil
}

// NominatimReverseGeocoder names coordinates with OpenStreetMap Nominatim.
// Nominatim requires an identifying User-Agent.
type NominatimReverseGeocoder struct {
	baseURL   string
	userAgent string
	fetcher   JSONFetcher
}

func NewNominatimReverseGeocoder(fetcher JSONFetcher, userAgent string) *NominatimReverseGeocoder {
	return &NominatimReverseGeocoder{
		baseURL:   nominatimReverseURL,
		userAgent: userAgent,
		fetcher:   fetcher,
	}
}

// WithBaseURL points the geocoder at another reverse endpoint.
func (g *NominatimReverseGeocoder) WithBaseURL(u string) *NominatimReverseGeocoder {
	g.baseURL = u
	return g
}

// Reverse returns the most specific settlement name for the point, or ""
// if the address has none.
func (g *NominatimReverseGeocoder) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	values := url.Values{}
	values.Set("format", "jsonv2")
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))

	var payload struct {
		Address struct {
			City         string `json:"city"`
			Town         string `json:"town"`
			Village      string `json:"village"`
			Municipality string `json:"municipality"`
			County       string `json:"county"`
		} `json:"address"`
	}

	var opts []FetchOption
	if g.userAgent != "" {
		opts = append(opts, WithHeaders(map[string]string{"User-Agent": g.userAgent}))
	}
	if err := g.fetcher.FetchJSON(ctx, fmt.Sprintf("%s?%s", g.baseURL, values.Encode()), &payload, opts...); err != nil {
		return "", err
	}

	a := payload.Address
	for _, name := range []string{a.City, a.Town, a.Village, a.Municipality, a.County} {
		if name != "" {
			return name, nil
		}
	}
	return "", nil
}
