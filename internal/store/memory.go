package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/i474232898/weather-forecast/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no weather data for location")

	// ErrFetchFailed is returned by GetLatest when the most recent fetch cycle
	// for a location failed. Older reports are not served in that case.
	ErrFetchFailed = errors.New("latest weather fetch failed")
)

// ReportHistory holds a time-ordered list of reports for a location and the
// failure of the latest cycle, if it failed.
type ReportHistory struct {
	Reports []weather.Report
	Failure *weather.Failure
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: history
	data map[string]*ReportHistory

	// retention configuration
	maxHistory int           // max number of reports per location
	maxAge     time.Duration // optional max age for reports

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*ReportHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

func (s *MemoryStore) history(key string) *ReportHistory {
	h, ok := s.data[key]
	if !ok {
		h = &ReportHistory{}
		s.data[key] = h
	}
	return h
}

// SaveReport appends a new report for a location, clears any recorded
// failure and enforces retention.
func (s *MemoryStore) SaveReport(loc weather.Location, report weather.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.history(loc.Key())
	history.Failure = nil
	history.Reports = append(history.Reports, report)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Reports) > s.maxHistory {
		over := len(history.Reports) - s.maxHistory
		history.Reports = history.Reports[over:]
	}

	// Enforce retention by age. The newest report is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Reports)-1; i++ {
			if !history.Reports[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			history.Reports = history.Reports[i:]
		}
	}
}

// SaveFailure marks the latest cycle for a location as failed.
func (s *MemoryStore) SaveFailure(loc weather.Location, failure weather.Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := failure
	s.history(loc.Key()).Failure = &f
}

// GetLatest returns the most recent report for a location. If the latest
// cycle failed it returns an error wrapping ErrFetchFailed instead.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[loc.Key()]
	if !ok {
		return weather.Report{}, ErrNotFound
	}
	if history.Failure != nil {
		return weather.Report{}, fmt.Errorf("%w: %s", ErrFetchFailed, history.Failure.Message)
	}
	if len(history.Reports) == 0 {
		return weather.Report{}, ErrNotFound
	}
	return history.Reports[len(history.Reports)-1], nil
}

// GetRange returns all reports for a location fetched between from and to (inclusive).
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[loc.Key()]
	if !ok || len(history.Reports) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Report
	for _, r := range history.Reports {
		if !r.FetchedAt.Before(from) && !r.FetchedAt.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
