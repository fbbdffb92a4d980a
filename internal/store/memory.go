package store

import (
	"sync"
	"time"

	"github.com/i474232898/weather-forecasting/internal/common"
	"github.com/i474232898/weather-forecasting/internal/forecast"
	"github.com/i474232898/weather-forecasting/internal/metrics"
	"github.com/i474232898/weather-forecasting/internal/series"
)

// DefaultTTL is how long a cached forecast stays valid.
const DefaultTTL = 300 * time.Second

// coordinateDecimals coalesces near-duplicate coordinates from geocoding noise.
const coordinateDecimals = 4

type predictionKey struct {
	lat    float64
	lon    float64
	target series.Target
}

type predictionEntry struct {
	result  forecast.Result
	expires time.Time
}

// PredictionCache is a concurrency-safe, time-bounded memo of forecast
// results keyed by rounded coordinates and target. Expired entries are only
// removed when read.
type PredictionCache struct {
	mu sync.RWMutex

	data map[predictionKey]predictionEntry
	ttl  time.Duration
	now  func() time.Time
}

// NewPredictionCache creates a cache whose entries live for ttl.
// A non-positive ttl falls back to DefaultTTL.
func NewPredictionCache(ttl time.Duration) *PredictionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PredictionCache{
		data: make(map[predictionKey]predictionEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (c *PredictionCache) WithClock(now func() time.Time) *PredictionCache {
	c.now = now
	return c
}

func newPredictionKey(lat, lon float64, target series.Target) predictionKey {
	return predictionKey{
		lat:    common.Round(lat, coordinateDecimals),
		lon:    common.Round(lon, coordinateDecimals),
		target: target,
	}
}

// Get returns a copy of the cached result for the location and target if it
// has not expired. A stale entry is evicted.
func (c *PredictionCache) Get(lat, lon float64, target series.Target) (forecast.Result, bool) {
	key := newPredictionKey(lat, lon, target)

	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return forecast.Result{}, false
	}

	if !c.now().Before(entry.expires) {
		c.mu.Lock()
		// another caller may have refreshed the entry meanwhile
		if current, still := c.data[key]; still && !c.now().Before(current.expires) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		metrics.CacheLookups.WithLabelValues("expired").Inc()
		return forecast.Result{}, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return entry.result.Clone(), true
}

// Put stores or overwrites the result with a fresh expiry.
func (c *PredictionCache) Put(lat, lon float64, target series.Target, result forecast.Result) {
	key := newPredictionKey(lat, lon, target)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = predictionEntry{result: result.Clone(), expires: c.now().Add(c.ttl)}
}

// Len reports the number of stored entries, expired ones included.
func (c *PredictionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear drops every entry.
func (c *PredictionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[predictionKey]predictionEntry)
}
