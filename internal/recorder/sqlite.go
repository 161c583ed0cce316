package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/weather-forecast/internal/weather"
)

// SQLiteRecorder persists fetch cycles to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetch_cycles (
			id             TEXT PRIMARY KEY,
			location_key   TEXT NOT NULL,
			provider       TEXT NOT NULL,
			started_at     INTEGER NOT NULL,
			finished_at    INTEGER NOT NULL,
			status         TEXT NOT NULL,
			error          TEXT,
			current_temp_c REAL,
			daily_json     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_cycles_started ON fetch_cycles(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_cycles_location ON fetch_cycles(location_key)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// RecordCycle inserts one finished fetch cycle.
func (r *SQLiteRecorder) RecordCycle(ctx context.Context, rec weather.CycleRecord) error {
	var (
		currentTemp sql.NullFloat64
		dailyJSON   sql.NullString
		errText     sql.NullString
	)
	if rec.Report != nil {
		currentTemp = sql.NullFloat64{Float64: rec.Report.Current.TemperatureC, Valid: true}
		b, err := json.Marshal(rec.Report.Daily)
		if err != nil {
			return fmt.Errorf("marshal daily summaries: %w", err)
		}
		dailyJSON = sql.NullString{String: string(b), Valid: true}
	}
	if rec.Error != "" {
		errText = sql.NullString{String: rec.Error, Valid: true}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fetch_cycles
			(id, location_key, provider, started_at, finished_at, status, error, current_temp_c, daily_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Location.Key(),
		rec.Provider,
		rec.StartedAt.UnixMilli(),
		rec.FinishedAt.UnixMilli(),
		string(rec.Status),
		errText,
		currentTemp,
		dailyJSON,
	)
	if err != nil {
		return fmt.Errorf("insert fetch cycle: %w", err)
	}
	return nil
}

// ListCycles returns up to limit cycles, newest first.
func (r *SQLiteRecorder) ListCycles(ctx context.Context, limit int) ([]CycleRow, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, location_key, provider, started_at, finished_at, status, error, current_temp_c, daily_json
		FROM fetch_cycles
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query fetch cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleRow
	for rows.Next() {
		var (
			row         CycleRow
			started     int64
			finished    int64
			status      string
			errText     sql.NullString
			currentTemp sql.NullFloat64
			dailyJSON   sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.LocationKey, &row.Provider, &started, &finished, &status, &errText, &currentTemp, &dailyJSON); err != nil {
			return nil, fmt.Errorf("scan fetch cycle: %w", err)
		}

		row.StartedAt = time.UnixMilli(started).UTC()
		row.FinishedAt = time.UnixMilli(finished).UTC()
		row.Status = weather.CycleStatus(status)
		row.Error = errText.String
		if currentTemp.Valid {
			t := currentTemp.Float64
			row.CurrentTempC = &t
		}
		if dailyJSON.Valid {
			if err := json.Unmarshal([]byte(dailyJSON.String), &row.Daily); err != nil {
				return nil, fmt.Errorf("decode daily summaries: %w", err)
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
