package recorder

import (
	"context"
	"time"

	"github.com/i474232898/weather-forecast/internal/weather"
)

// CycleRow is one recorded fetch cycle as read back from storage.
type CycleRow struct {
	ID           string                 `json:"id"`
	LocationKey  string                 `json:"location"`
	Provider     string                 `json:"provider"`
	StartedAt    time.Time              `json:"startedAt"`
	FinishedAt   time.Time              `json:"finishedAt"`
	Status       weather.CycleStatus    `json:"status"`
	Error        string                 `json:"error,omitempty"`
	CurrentTempC *float64               `json:"currentTempC,omitempty"`
	Daily        []weather.DailySummary `json:"daily,omitempty"`
}

// Recorder persists fetch cycle history for later inspection.
type Recorder interface {
	weather.CycleRecorder
	ListCycles(ctx context.Context, limit int) ([]CycleRow, error)
	Close() error
}
