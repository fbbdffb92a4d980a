package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMeteoGeocoderSearch(t *testing.T) {
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, `{"results": [
			{"name": "Medellín", "latitude": 6.25, "longitude": -75.56, "country": "Colombia"},
			{"name": "Medellín", "latitude": 40.0, "longitude": -4.0, "country": "España"}
		]}`)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(HTTPClientConfig{})
	g := NewOpenMeteoGeocoder(f, "es").WithBaseURL(srv.URL)

	places, err := g.Search(context.Background(), "Medellin")
	require.NoError(t, err)

	assert.Equal(t, "Medellin", query["name"][0])
	assert.Equal(t, "5", query["count"][0])
	assert.Equal(t, "es", query["language"][0])
	require.Len(t, places, 2)
	assert.Equal(t, "Colombia", places[0].Country)
	assert.Equal(t, -75.56, places[0].Lon)
}

func TestOpenMeteoGeocoderNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"generationtime_ms": 0.5}`)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(HTTPClientConfig{})
	places, err := NewOpenMeteoGeocoder(f, "").WithBaseURL(srv.URL).Search(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestNominatimReverse(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{"city", `{"city": "Cali", "county": "Valle"}`, "Cali"},
		{"town", `{"town": "Guatapé", "county": "Antioquia"}`, "Guatapé"},
		{"county only", `{"county": "Amazonas"}`, "Amazonas"},
		{"nothing", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ua, format string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ua = r.Header.Get("User-Agent")
				format = r.URL.Query().Get("format")
				fmt.Fprintf(w, `{"address": %s}`, tt.address)
			}))
			defer srv.Close()

			f, _ := newTestFetcher(HTTPClientConfig{})
			g := NewNominatimReverseGeocoder(f, "weather-forecasting-test").WithBaseURL(srv.URL)

			got, err := g.Reverse(context.Background(), 3.45, -76.53)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "weather-forecasting-test", ua)
			assert.Equal(t, "jsonv2", format)
		})
	}
}
