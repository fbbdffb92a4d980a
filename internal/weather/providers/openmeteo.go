package providers

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-forecasting/internal/series"
	"github.com/i474232898/weather-forecasting/internal/weather"
)

// API Docs: https://open-meteo.com/en/docs and https://open-meteo.com/en/docs/historical-weather-api
const (
	openMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"
	openMeteoArchiveURL  = "https://archive-api.open-meteo.com/v1/archive"

	archiveWindow = 24 * time.Hour
)

// ErrNoData is returned when neither the archive nor the forecast window has rows.
var ErrNoData = weather.ErrNoData

// OpenMeteoProvider fetches the trailing archive window and the forward
// forecast window for a point and joins them into one hourly frame.
type OpenMeteoProvider struct {
	name        string
	forecastURL string
	archiveURL  string
	fetcher     JSONFetcher
	logger      *zap.SugaredLogger
}

func NewOpenMeteoProvider(fetcher JSONFetcher, logger *zap.SugaredLogger) *OpenMeteoProvider {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &OpenMeteoProvider{
		name:        "openmeteo",
		forecastURL: openMeteoForecastURL,
		archiveURL:  openMeteoArchiveURL,
		fetcher:     fetcher,
		logger:      logger,
	}
}

// WithBaseURLs points the provider at other forecast and archive endpoints.
func (p *OpenMeteoProvider) WithBaseURLs(forecastURL, archiveURL string) *OpenMeteoProvider {
	p.forecastURL = forecastURL
	p.archiveURL = archiveURL
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type hourlyPayload struct {
	Hourly hourlyBlock `json:"hourly"`
}

// hourlyBlock mirrors Open-Meteo's column-oriented hourly section. Values
// are pointers because the API reports missing hours as null.
type hourlyBlock struct {
	Time          []string   `json:"time"`
	Temperature   []*float64 `json:"temperature_2m"`
	Humidity      []*float64 `json:"relative_humidity_2m"`
	Pressure      []*float64 `json:"pressure_msl"`
	Precipitation []*float64 `json:"precipitation"`
	WindSpeed     []*float64 `json:"wind_speed_10m"`
}

func (h hourlyBlock) column(t series.Target) []*float64 {
	switch t {
	case series.Temperature:
		return h.Temperature
	case series.Humidity:
		return h.Humidity
	case series.Pressure:
		return h.Pressure
	case series.Precipitation:
		return h.Precipitation
	case series.WindSpeed:
		return h.WindSpeed
	default:
		return nil
	}
}

func hourlyFields() string {
	names := make([]string, len(series.Fields))
	for i, f := range series.Fields {
		names[i] = string(f)
	}
	return strings.Join(names, ",")
}

func (p *OpenMeteoProvider) buildURL(base string, lat, lon float64, extra url.Values) string {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("hourly", hourlyFields())
	values.Set("timezone", "UTC")
	for k, v := range extra {
		values[k] = v
	}
	return fmt.Sprintf("%s?%s", base, values.Encode())
}

// FetchHourly returns the archive window from (now-24h)'s date through now's
// date followed by the forecast window, deduplicated by timestamp with the
// archive row winning.
func (p *OpenMeteoProvider) FetchHourly(ctx context.Context, lat, lon float64, now time.Time) (*series.Frame, error) {
	now = now.UTC()

	archive := url.Values{}
	archive.Set("start_date", now.Add(-archiveWindow).Format("2006-01-02"))
	archive.Set("end_date", now.Format("2006-01-02"))

	var past hourlyPayload
	if err := p.fetcher.FetchJSON(ctx, p.buildURL(p.archiveURL, lat, lon, archive), &past); err != nil {
		return nil, fmt.Errorf("%s archive: %w", p.name, err)
	}

	var ahead hourlyPayload
	if err := p.fetcher.FetchJSON(ctx, p.buildURL(p.forecastURL, lat, lon, nil), &ahead); err != nil {
		return nil, fmt.Errorf("%s forecast: %w", p.name, err)
	}

	times, values, err := concatHourly(past.Hourly, ahead.Hourly)
	if err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return nil, ErrNoData
	}

	cols := make([]string, len(series.Fields))
	for i, f := range series.Fields {
		cols[i] = string(f)
	}
	frame, err := series.NewFrame(times, cols, values)
	if err != nil {
		return nil, err
	}

	p.logger.Debugw("open-meteo hourly series",
		"archive_rows", len(past.Hourly.Time),
		"forecast_rows", len(ahead.Hourly.Time),
		"rows", frame.Len(),
	)
	return frame, nil
}

func concatHourly(blocks ...hourlyBlock) ([]time.Time, map[string][]float64, error) {
	var times []time.Time
	values := make(map[string][]float64, len(series.Fields))

	for _, b := range blocks {
		for i, raw := range b.Time {
			ts, err := parseHourlyTime(raw)
			if err != nil {
				return nil, nil, err
			}
			times = append(times, ts)

			for _, f := range series.Fields {
				col := b.column(f)
				v := math.NaN()
				if i < len(col) && col[i] != nil {
					v = *col[i]
				}
				values[string(f)] = append(values[string(f)], v)
			}
		}
	}
	return times, values, nil
}

// parseHourlyTime accepts Open-Meteo's "2006-01-02T15:04" as UTC, or RFC 3339.
func parseHourlyTime(s string) (time.Time, error) {
	if ts, err := time.ParseInLocation("2006-01-02T15:04", s, time.UTC); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hourly timestamp %q", s)
	}
	return ts.UTC(), nil
}
