package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/i474232898/weather-forecast/internal/weather"
)

func TestSQLiteRecordAndList(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cycles.db")

	r, err := NewSQLiteRecorder(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRecorder failed: %v", err)
	}
	defer func() { _ = r.Close() }()

	ctx := context.Background()
	loc := weather.Location{City: "Guarulhos", Country: "BR"}
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	report := &weather.Report{
		CycleID: "c1",
		Current: weather.CurrentConditions{TemperatureC: 22.5},
		Daily: []weather.DailySummary{
			{Date: "2024-05-02", MaxTemperature: 25, MinTemperature: 15},
		},
	}

	records := []weather.CycleRecord{
		{ID: "c1", Location: loc, Provider: "stub", StartedAt: start, FinishedAt: start.Add(time.Second), Status: weather.CycleOK, Report: report},
		{ID: "c2", Location: loc, Provider: "stub", StartedAt: start.Add(time.Minute), FinishedAt: start.Add(time.Minute + time.Second), Status: weather.CycleFailed, Error: "failed to fetch forecast"},
	}
	for _, rec := range records {
		if err := r.RecordCycle(ctx, rec); err != nil {
			t.Fatalf("RecordCycle(%s) failed: %v", rec.ID, err)
		}
	}

	rows, err := r.ListCycles(ctx, 10)
	if err != nil {
		t.Fatalf("ListCycles failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	// Newest first.
	failed, ok := rows[0], rows[1]
	if failed.ID != "c2" || failed.Status != weather.CycleFailed || failed.Error != "failed to fetch forecast" {
		t.Fatalf("unexpected failed row %+v", failed)
	}
	if failed.CurrentTempC != nil || failed.Daily != nil {
		t.Fatalf("failed row should carry no data: %+v", failed)
	}

	if ok.ID != "c1" || ok.Status != weather.CycleOK || ok.LocationKey != loc.Key() {
		t.Fatalf("unexpected ok row %+v", ok)
	}
	if ok.CurrentTempC == nil || *ok.CurrentTempC != 22.5 {
		t.Fatalf("unexpected current temperature %v", ok.CurrentTempC)
	}
	if len(ok.Daily) != 1 || ok.Daily[0].Date != "2024-05-02" || ok.Daily[0].MaxTemperature != 25 {
		t.Fatalf("unexpected daily summaries %+v", ok.Daily)
	}
	if !ok.StartedAt.Equal(start) {
		t.Fatalf("expected started_at %v, got %v", start, ok.StartedAt)
	}
}

func TestNoopRecorder(t *testing.T) {
	r := NewNoopRecorder()
	if err := r.RecordCycle(context.Background(), weather.CycleRecord{ID: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, err := r.ListCycles(context.Background(), 5)
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected no rows, got %v (%v)", rows, err)
	}
}
