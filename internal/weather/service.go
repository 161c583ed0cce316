package weather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Service orchestrates fetch cycles against a provider and publishes the
// latest displayed result per location.
type Service struct {
	store    Store
	provider Provider
	recorder CycleRecorder
	metrics  Metrics
	log      zerolog.Logger
	cycles   *cycleTracker
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the fetch cycle history recorder.
func WithRecorder(r CycleRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// NewService creates a new Service.
func NewService(store Store, provider Provider, opts ...Option) *Service {
	s := &Service{
		store:    store,
		provider: provider,
		recorder: nopRecorder{},
		metrics:  nopMetrics{},
		log:      zerolog.Nop(),
		cycles:   newCycleTracker(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProviderName returns the name of the configured provider.
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// Fetch runs one fetch cycle for loc: it queries current conditions and the
// forecast, aggregates the forecast into daily summaries and stores the
// outcome as the latest result for loc.
//
// A cycle started for the same location while this one is in flight cancels
// this one; Fetch then returns ErrSuperseded and leaves the store untouched.
func (s *Service) Fetch(ctx context.Context, loc Location) (Report, error) {
	if s.provider == nil {
		return Report{}, ErrNoProvider
	}

	key := loc.Key()
	providerName := s.provider.Name()
	started := s.now().UTC()

	cycleCtx, id := s.cycles.begin(ctx, key)
	logger := s.log.With().Str("cycle", id).Str("location", key).Str("provider", providerName).Logger()
	logger.Debug().Msg("fetch cycle started")

	var report Report
	current, forecast, err := s.query(cycleCtx, loc)
	if err == nil {
		currentDate := DateIn(current.Timestamp, forecast.Zone)
		report = Report{
			CycleID:   id,
			Location:  loc,
			Provider:  providerName,
			FetchedAt: s.now().UTC(),
			Current:   current,
			Daily:     AggregateDaily(forecast.Samples, currentDate),
		}
	}

	committed := s.cycles.commit(key, id, func() {
		if err != nil {
			s.store.SaveFailure(loc, Failure{CycleID: id, Message: err.Error(), At: s.now().UTC()})
			return
		}
		s.store.SaveReport(loc, report)
	})

	rec := CycleRecord{
		ID:         id,
		Location:   loc,
		Provider:   providerName,
		StartedAt:  started,
		FinishedAt: s.now().UTC(),
	}

	switch {
	case !committed:
		rec.Status = CycleSuperseded
		err = ErrSuperseded
		logger.Debug().Msg("fetch cycle superseded by a newer one")
	case err != nil:
		rec.Status = CycleFailed
		logger.Error().Err(err).AnErr("cause", unwrapCause(err)).Msg("fetch cycle failed")
	default:
		rec.Status = CycleOK
		rec.Report = &report
		logger.Info().Int("days", len(report.Daily)).Msg("fetch cycle completed")
	}
	if err != nil {
		rec.Error = err.Error()
	}

	s.metrics.ObserveCycle(providerName, rec.Status, rec.FinishedAt.Sub(started), len(report.Daily))
	if recErr := s.recorder.RecordCycle(context.WithoutCancel(ctx), rec); recErr != nil {
		logger.Warn().Err(recErr).Msg("failed to record fetch cycle")
	}

	if err != nil {
		return Report{}, err
	}
	return report, nil
}

// query runs the current-conditions and forecast queries concurrently. The
// first failure cancels the other query and is the one reported.
func (s *Service) query(ctx context.Context, loc Location) (CurrentConditions, Forecast, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		current  CurrentConditions
		forecast Forecast
	)

	fail := func(stage FetchStage, err error) {
		once.Do(func() {
			firstErr = &FetchError{Stage: stage, Err: err}
			cancel()
		})
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		c, err := s.provider.Current(ctx, loc)
		if err != nil {
			fail(StageCurrent, err)
			return
		}
		current = c
	}()
	go func() {
		defer wg.Done()
		f, err := s.provider.Forecast(ctx, loc)
		if err != nil {
			fail(StageForecast, err)
			return
		}
		forecast = f
	}()
	wg.Wait()

	if firstErr != nil {
		return CurrentConditions{}, Forecast{}, firstErr
	}
	return current, forecast, nil
}

// ForecastDays runs a fetch cycle and returns the first days daily summaries.
func (s *Service) ForecastDays(ctx context.Context, loc Location, days int) (Report, error) {
	if days < 1 || days > MaxForecastDays {
		return Report{}, fmt.Errorf("days must be between 1 and %d", MaxForecastDays)
	}

	report, err := s.Fetch(ctx, loc)
	if err != nil {
		return Report{}, err
	}
	if len(report.Daily) > days {
		report.Daily = report.Daily[:days]
	}
	return report, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (Report, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]Report, error) {
	return s.store.GetRange(loc, from, to)
}

// InFlight returns the number of fetch cycles currently running.
func (s *Service) InFlight() int {
	return s.cycles.inFlight()
}

func unwrapCause(err error) error {
	if fe, ok := err.(*FetchError); ok {
		return fe.Err
	}
	return nil
}
