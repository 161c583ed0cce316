package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-forecast/internal/weather"
)

const fetchTimeout = 30 * time.Second

// Fetcher runs a fetch cycle for a location.
type Fetcher interface {
	Fetch(ctx context.Context, loc weather.Location) (weather.Report, error)
}

// Scheduler periodically refreshes the configured locations. The first run
// happens immediately on Start.
type Scheduler struct {
	scheduler *gocron.Scheduler
	fetcher   Fetcher
	locations []weather.Location
	interval  time.Duration
	log       zerolog.Logger
}

// New creates a new Scheduler.
func New(locations []weather.Location, interval time.Duration, fetcher Fetcher, log zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		fetcher:   fetcher,
		locations: locations,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.log.Info().Msg("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval < time.Minute {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every configured location concurrently and waits for all
// cycles to finish.
func (s *Scheduler) RunOnce() {
	s.log.Debug().Int("locations", len(s.locations)).Msg("scheduler: running weather fetch job")

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		wg.Add(1)
		go func(loc weather.Location) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			defer cancel()

			if _, err := s.fetcher.Fetch(ctx, loc); err != nil {
				if errors.Is(err, weather.ErrSuperseded) {
					return
				}
				s.log.Warn().Err(err).Str("location", loc.Key()).Msg("scheduler: fetch failed")
			}
		}(loc)
	}
	wg.Wait()

	s.log.Debug().Msg("scheduler: completed weather fetch job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
