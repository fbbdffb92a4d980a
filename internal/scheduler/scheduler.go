package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-forecasting/internal/forecast"
	"github.com/i474232898/weather-forecasting/internal/series"
	"github.com/i474232898/weather-forecasting/internal/weather"
)

// Refresher is the part of weather.Service the scheduler drives.
type Refresher interface {
	ResolveCity(ctx context.Context, city string) (weather.Place, error)
	Forecast(ctx context.Context, lat, lon float64, target series.Target, retrain bool) (forecast.Result, bool, error)
}

// Scheduler periodically retrains forecasts for configured cities so that
// requests for them are served from a warm cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	cities    []string
	targets   []series.Target
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.SugaredLogger
}

// New creates a new Scheduler.
func New(cities []string, targets []series.Target, interval time.Duration, service Refresher, logger *zap.SugaredLogger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		cities:    cities,
		targets:   targets,
		interval:  interval,
		timeout:   2 * time.Minute,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 || len(s.targets) == 0 {
		s.logger.Info("scheduler: no cities configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce retrains every configured city and target. Cities are refreshed
// concurrently; targets for one city run in sequence to spare the upstream.
func (s *Scheduler) RunOnce() {
	s.logger.Infow("scheduler: running refresh job", "cities", len(s.cities), "targets", len(s.targets))

	var wg sync.WaitGroup
	for _, city := range s.cities {
		city := city
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			s.refreshCity(ctx, city)
		}()
	}
	wg.Wait()
	s.logger.Info("scheduler: completed refresh job")
}

func (s *Scheduler) refreshCity(ctx context.Context, city string) {
	place, err := s.service.ResolveCity(ctx, city)
	if err != nil {
		s.logger.Warnw("scheduler: resolve failed", "city", city, "error", err)
		return
	}

	for _, target := range s.targets {
		if _, _, err := s.service.Forecast(ctx, place.Lat, place.Lon, target, true); err != nil {
			s.logger.Warnw("scheduler: refresh failed", "city", city, "target", target, "error", err)
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
