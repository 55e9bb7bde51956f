package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move processing time forward deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWindow(span time.Duration) (*Window, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	w := New(span)
	w.now = clock.now
	return w, clock
}

func TestRecordGrowsWithinWindow(t *testing.T) {
	w, clock := newTestWindow(10 * time.Second)

	require.Equal(t, 1, w.Record("u-1", "tx-1"))
	clock.advance(5 * time.Second)
	require.Equal(t, 2, w.Record("u-1", "tx-2"))
	clock.advance(2 * time.Second)
	require.Equal(t, 3, w.Record("u-1", "tx-3"))
}

func TestRecordExpiresOldEntries(t *testing.T) {
	w, clock := newTestWindow(10 * time.Second)

	w.Record("u-1", "tx-1")
	clock.advance(11 * time.Second)
	require.Equal(t, 1, w.Record("u-1", "tx-2"), "entry older than the window must be filtered out")
	clock.advance(10 * time.Second)
	require.Equal(t, 1, w.Record("u-1", "tx-3"), "entry exactly window-old is expired")
}

func TestRecordIsPerUser(t *testing.T) {
	w, _ := newTestWindow(10 * time.Second)

	require.Equal(t, 1, w.Record("u-1", "tx-1"))
	require.Equal(t, 1, w.Record("u-2", "tx-2"))
	require.Equal(t, 2, w.Record("u-1", "tx-3"))
}

func TestHitMissCounters(t *testing.T) {
	w, clock := newTestWindow(10 * time.Second)

	require.Equal(t, float64(0), w.HitRatio(), "ratio is 0 before any lookup")

	w.Record("u-1", "tx-1") // miss
	require.EqualValues(t, 0, w.Hits())
	require.EqualValues(t, 1, w.Misses())

	w.Record("u-1", "tx-2") // hit: key existed
	w.Record("u-1", "tx-3") // hit
	require.EqualValues(t, 2, w.Hits())
	require.InDelta(t, 2.0/3.0, w.HitRatio(), 1e-9)

	// A key whose entries all expired still counts as a hit while unswept.
	clock.advance(time.Minute)
	w.Record("u-1", "tx-4")
	require.EqualValues(t, 3, w.Hits())
}

func TestClearAll(t *testing.T) {
	w, _ := newTestWindow(10 * time.Second)

	w.Record("u-1", "tx-1")
	w.Record("u-1", "tx-2")
	w.ClearAll()

	require.Equal(t, 0, w.Users())
	require.EqualValues(t, 0, w.Hits())
	require.EqualValues(t, 0, w.Misses())
	require.Equal(t, float64(0), w.HitRatio())
	require.Equal(t, 1, w.Record("u-1", "tx-3"), "cleared user starts a fresh window")
}

func TestSweepPurgesIdleUsers(t *testing.T) {
	w, clock := newTestWindow(10 * time.Second)

	w.Record("u-idle", "tx-1")
	clock.advance(8 * time.Second)
	w.Record("u-active", "tx-2")
	clock.advance(3 * time.Second) // u-idle now 11s stale, u-active 3s

	require.Equal(t, 1, w.Sweep())
	require.Equal(t, 1, w.Users())

	// Sweeping does not disturb counters or fresh entries.
	require.Equal(t, 2, w.Record("u-active", "tx-3"))
}

func TestSweepDoesNotAffectCorrectness(t *testing.T) {
	// Without any sweep, filter-on-read alone keeps the rule correct.
	w, clock := newTestWindow(10 * time.Second)

	w.Record("u-1", "tx-1")
	clock.advance(20 * time.Second)
	require.Equal(t, 1, w.Record("u-1", "tx-2"))
}
