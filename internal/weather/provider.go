package weather

import (
	"context"
	"time"
)

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
// Current and Forecast are independent queries and may be called concurrently.
type Provider interface {
	Name() string
	Current(ctx context.Context, loc Location) (CurrentConditions, error)
	Forecast(ctx context.Context, loc Location) (Forecast, error)
}

// Failure is the outcome stored for a fetch cycle that did not complete.
type Failure struct {
	CycleID string    `json:"cycleId"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
// It holds the latest displayed result per location.
type Store interface {
	SaveReport(loc Location, report Report)
	SaveFailure(loc Location, failure Failure)
	GetLatest(loc Location) (Report, error)
	GetRange(loc Location, from, to time.Time) ([]Report, error)
}

// CycleStatus is the terminal state of a fetch cycle.
type CycleStatus string

const (
	CycleOK         CycleStatus = "ok"
	CycleFailed     CycleStatus = "failed"
	CycleSuperseded CycleStatus = "superseded"
)

// CycleRecord describes one finished fetch cycle.
type CycleRecord struct {
	ID         string
	Location   Location
	Provider   string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     CycleStatus
	Error      string
	Report     *Report // nil unless Status is CycleOK
}

// CycleRecorder persists fetch cycle history.
type CycleRecorder interface {
	RecordCycle(ctx context.Context, rec CycleRecord) error
}

// Metrics receives fetch cycle observations.
type Metrics interface {
	ObserveCycle(provider string, status CycleStatus, elapsed time.Duration, days int)
}

type nopRecorder struct{}

func (nopRecorder) RecordCycle(context.Context, CycleRecord) error { return nil }

type nopMetrics struct{}

func (nopMetrics) ObserveCycle(string, CycleStatus, time.Duration, int) {}
