package weather

import "errors"

var (
	// ErrNetworkFailure marks a fetch cycle that failed because a provider query failed.
	ErrNetworkFailure = errors.New("network failure")

	// ErrSuperseded is returned when a newer cycle for the same location replaced this one.
	ErrSuperseded = errors.New("fetch cycle superseded")

	// ErrNoProvider is returned when the service has no provider configured.
	ErrNoProvider = errors.New("no weather provider configured")
)

// FetchStage names the query of a fetch cycle that failed.
type FetchStage string

const (
	StageCurrent  FetchStage = "current"
	StageForecast FetchStage = "forecast"
)

// FetchError is the single user-facing error of a failed fetch cycle.
type FetchError struct {
	Stage FetchStage
	Err   error
}

func (e *FetchError) Error() string {
	switch e.Stage {
	case StageCurrent:
		return "failed to fetch current weather"
	case StageForecast:
		return "failed to fetch forecast"
	default:
		return "failed to fetch weather data"
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports every FetchError as a network failure.
func (e *FetchError) Is(target error) bool {
	return target == ErrNetworkFailure
}
