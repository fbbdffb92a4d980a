package store

import (
	"sync"

	"github.com/i474232898/weather-forecasting/internal/weather"
)

// GeoCache remembers resolved places by normalized name for the life of the
// process.
type GeoCache struct {
	mu   sync.RWMutex
	data map[string]weather.Place
}

func NewGeoCache() *GeoCache {
	return &GeoCache{data: make(map[string]weather.Place)}
}

func (c *GeoCache) Get(name string) (weather.Place, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.data[name]
	return p, ok
}

func (c *GeoCache) Put(name string, place weather.Place) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[name] = place
}

// Clear drops every entry.
func (c *GeoCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]weather.Place)
}
