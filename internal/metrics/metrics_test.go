package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFetchAttempt(t *testing.T) {
	success := testutil.ToFloat64(FetchAttempts.WithLabelValues("success"))
	failed := testutil.ToFloat64(FetchAttempts.WithLabelValues("error"))

	RecordFetchAttempt(nil)
	RecordFetchAttempt(errors.New("timeout"))
	RecordFetchAttempt(errors.New("502"))

	assert.Equal(t, success+1, testutil.ToFloat64(FetchAttempts.WithLabelValues("success")))
	assert.Equal(t, failed+2, testutil.ToFloat64(FetchAttempts.WithLabelValues("error")))
}

func TestRecordForecastCountsFallbacks(t *testing.T) {
	before := testutil.ToFloat64(ForecastFallbacks.WithLabelValues("precipitation"))

	RecordForecast("precipitation", 120*time.Millisecond, false)
	RecordForecast("precipitation", 80*time.Millisecond, true)

	assert.Equal(t, before+1, testutil.ToFloat64(ForecastFallbacks.WithLabelValues("precipitation")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	Init()
	Init()
	CacheLookups.WithLabelValues("hit").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "weather_forecast_cache_total")
}
