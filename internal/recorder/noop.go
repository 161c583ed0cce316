package recorder

import (
	"context"

	"github.com/i474232898/weather-forecast/internal/weather"
)

// NoopRecorder is used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(context.Context, weather.CycleRecord) error { return nil }
func (n *NoopRecorder) ListCycles(context.Context, int) ([]CycleRow, error)    { return nil, nil }
func (n *NoopRecorder) Close() error                                           { return nil }
