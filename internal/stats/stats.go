// Package stats computes on-demand aggregates over the fraud store and the
// activity window. Nothing is cached; every snapshot is recomputed.
package stats

import (
	"github.com/Sukanya-2000/fraud-detection-logger/internal/activity"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/store"
)

// Stats is a point-in-time aggregate of detection activity.
type Stats struct {
	TotalFraudulentTransactions int            `json:"totalFraudulentTransactions"`
	RuleBreakdown               map[string]int `json:"ruleBreakdown"`
	CacheHitRatio               float64        `json:"cacheHitRatio"`
}

// Aggregator reads the store and window; it never mutates them.
type Aggregator struct {
	store  store.Store
	window *activity.Window
}

// NewAggregator creates an Aggregator over the given store and window.
func NewAggregator(s store.Store, w *activity.Window) *Aggregator {
	return &Aggregator{store: s, window: w}
}

// Snapshot recomputes the current stats. A record with violations under
// several rules increments each of those rules' counters.
func (a *Aggregator) Snapshot() (Stats, error) {
	records, err := a.store.GetAll()
	if err != nil {
		return Stats{}, err
	}

	breakdown := make(map[string]int)
	for _, rec := range records {
		seen := make(map[string]bool, len(rec.Violations))
		for _, v := range rec.Violations {
			name := string(v.Rule)
			if !seen[name] {
				seen[name] = true
				breakdown[name]++
			}
		}
	}

	return Stats{
		TotalFraudulentTransactions: len(records),
		RuleBreakdown:               breakdown,
		CacheHitRatio:               a.window.HitRatio(),
	}, nil
}
