// Package engine wires the per-message pipeline: decode, validate, evaluate,
// store. One call to Process is one synchronous processing attempt.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sukanya-2000/fraud-detection-logger/internal/event"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/metrics"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/rules"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/store"
)

// Pipeline runs raw payloads through decode → evaluate → store. It holds no
// mutable state of its own; all shared state lives in the evaluator's window
// and the store, each guarded internally.
type Pipeline struct {
	evaluator *rules.Evaluator
	store     store.Store
	logger    *slog.Logger
}

// New creates a Pipeline.
func New(evaluator *rules.Evaluator, s store.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{evaluator: evaluator, store: s, logger: logger}
}

// Process makes exactly one attempt at a raw message. It returns the created
// fraud record when the transaction is flagged, nil when it is clean.
//
// Returned errors are either permanent (*event.MalformedError or
// *event.ValidationError, see Permanent) or transient; the caller decides
// whether to drop or retry.
func (p *Pipeline) Process(ctx context.Context, raw []byte) (*store.FraudRecord, error) {
	start := time.Now()

	tx, err := event.Decode(raw, start)
	if err != nil {
		return nil, err
	}

	violations := p.evaluator.Evaluate(tx)
	for _, v := range violations {
		metrics.ViolationsDetected.WithLabelValues(string(v.Rule)).Inc()
	}

	var flagged *store.FraudRecord
	if len(violations) > 0 {
		rec, err := p.store.Append(ctx, tx, violations)
		if err != nil {
			return nil, fmt.Errorf("append fraud record: %w", err)
		}
		flagged = &rec
		metrics.TransactionsFlagged.Inc()
		p.logger.Warn("transaction flagged",
			"record_id", rec.ID,
			"transaction_id", tx.ID,
			"user_id", tx.UserID,
			"violations", len(violations),
		)
	}

	metrics.MessagesProcessed.Inc()
	metrics.ProcessingDuration.Observe(float64(time.Since(start).Milliseconds()))
	return flagged, nil
}

// Permanent reports whether err can never succeed on retry. Callers must
// classify with this, not by matching message text.
func Permanent(err error) bool {
	var malformed *event.MalformedError
	var validation *event.ValidationError
	return errors.As(err, &malformed) || errors.As(err, &validation)
}
