// Package activity tracks recent transaction arrivals per user over a
// trailing time window. It backs the rapid-transaction rule.
package activity

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	txID      string
	arrivedAt time.Time
}

// Window is a per-user sliding-window cache of recent arrivals.
//
// Entries are timestamped with processing wall-clock time, not the
// transaction's own event time, so replayed or lagging messages count as
// current activity. Correctness depends only on the filter performed inside
// Record; the background sweep merely bounds memory for idle users.
type Window struct {
	span time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string][]entry
	hits    uint64
	misses  uint64
}

// New creates a Window covering the trailing span.
func New(span time.Duration) *Window {
	return &Window{
		span:    span,
		now:     time.Now,
		entries: make(map[string][]entry),
	}
}

// Span returns the trailing window duration.
func (w *Window) Span() time.Duration { return w.span }

// Record registers a transaction arrival for userID and returns the number of
// entries inside the trailing window, the new arrival included. Read, filter,
// append and store happen under one lock so interleaved evaluations for the
// same user cannot lose updates.
func (w *Window) Record(userID, txID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	existing, ok := w.entries[userID]
	if ok {
		w.hits++
	} else {
		w.misses++
	}

	fresh := make([]entry, 0, len(existing)+1)
	for _, e := range existing {
		if now.Sub(e.arrivedAt) < w.span {
			fresh = append(fresh, e)
		}
	}
	fresh = append(fresh, entry{txID: txID, arrivedAt: now})
	w.entries[userID] = fresh
	return len(fresh)
}

// Hits returns the number of lookups that found an existing key.
func (w *Window) Hits() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hits
}

// Misses returns the number of lookups that found no key.
func (w *Window) Misses() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.misses
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup.
func (w *Window) HitRatio() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	total := w.hits + w.misses
	if total == 0 {
		return 0
	}
	return float64(w.hits) / float64(total)
}

// ClearAll drops every tracked user and resets both counters.
func (w *Window) ClearAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = make(map[string][]entry)
	w.hits = 0
	w.misses = 0
}

// Sweep purges users whose most recent arrival has aged out of the window and
// returns how many were removed.
func (w *Window) Sweep() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	purged := 0
	for userID, es := range w.entries {
		if len(es) == 0 || now.Sub(es[len(es)-1].arrivedAt) >= w.span {
			delete(w.entries, userID)
			purged++
		}
	}
	return purged
}

// Users returns the number of tracked users, swept or not.
func (w *Window) Users() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Run sweeps periodically until ctx is cancelled.
func (w *Window) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
