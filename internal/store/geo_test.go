package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/i474232898/weather-forecasting/internal/weather"
)

func TestGeoCache(t *testing.T) {
	c := NewGeoCache()

	_, ok := c.Get("Bogota")
	assert.False(t, ok)

	want := weather.Place{Name: "Bogotá", Country: "Colombia", Lat: 4.61, Lon: -74.08}
	c.Put("Bogota", want)

	got, ok := c.Get("Bogota")
	assert.True(t, ok)
	assert.Equal(t, want, got)

	c.Clear()
	_, ok = c.Get("Bogota")
	assert.False(t, ok)
}
