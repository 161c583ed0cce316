package weather

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// cycleTracker keeps the in-flight fetch cycle per location. Starting a new
// cycle cancels the previous one, and only the current cycle may commit.
type cycleTracker struct {
	mu     sync.Mutex
	active map[string]activeCycle
}

type activeCycle struct {
	id     string
	cancel context.CancelFunc
}

func newCycleTracker() *cycleTracker {
	return &cycleTracker{active: make(map[string]activeCycle)}
}

// begin registers a new cycle for key and returns its context and ID.
func (t *cycleTracker) begin(ctx context.Context, key string) (context.Context, string) {
	ctx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()

	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.active[key]; ok {
		prev.cancel()
	}
	t.active[key] = activeCycle{id: id, cancel: cancel}
	return ctx, id
}

// commit runs fn and releases the cycle if id is still the current cycle for
// key. fn runs under the tracker lock so a newer cycle cannot commit in between.
func (t *cycleTracker) commit(key, id string, fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.active[key]
	if !ok || cur.id != id {
		return false
	}
	fn()
	delete(t.active, key)
	cur.cancel()
	return true
}

// inFlight returns the number of cycles currently running.
func (t *cycleTracker) inFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}
