package rules

import (
	"fmt"
	"sync/atomic"

	"github.com/Sukanya-2000/fraud-detection-logger/internal/activity"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/event"
)

// Evaluator applies the rule set to validated transactions. Thresholds are
// swappable at runtime (config hot-reload) without pausing evaluation.
type Evaluator struct {
	window     *activity.Window
	thresholds atomic.Pointer[Thresholds]
}

// NewEvaluator creates an Evaluator backed by the given activity window.
func NewEvaluator(window *activity.Window, t Thresholds) *Evaluator {
	e := &Evaluator{window: window}
	e.thresholds.Store(&t)
	return e
}

// SwapThresholds atomically replaces the rule parameters.
func (e *Evaluator) SwapThresholds(t Thresholds) {
	e.thresholds.Store(&t)
}

// Thresholds returns the parameters currently in effect.
func (e *Evaluator) Thresholds() Thresholds {
	return *e.thresholds.Load()
}

// Evaluate runs every rule against tx, in fixed order, with no
// short-circuiting. The activity window is updated for every transaction,
// clean or not. An empty result means the transaction is clean.
func (e *Evaluator) Evaluate(tx event.Transaction) []Violation {
	t := e.thresholds.Load()
	var violations []Violation

	if tx.Amount.GreaterThan(t.HighAmount) && tx.Location != t.DomesticLocation {
		violations = append(violations, Violation{
			Rule: HighAmountNonUSA,
			Description: fmt.Sprintf("amount %s exceeds %s outside %s (location: %s)",
				tx.Amount, t.HighAmount, t.DomesticLocation, tx.Location),
			Severity: SeverityHigh,
		})
	}

	if tx.Amount.Mod(t.RoundDivisor).IsZero() {
		violations = append(violations, Violation{
			Rule:        RoundAmount,
			Description: fmt.Sprintf("amount %s is an exact multiple of %s", tx.Amount, t.RoundDivisor),
			Severity:    SeverityMedium,
		})
	}

	if size := e.window.Record(tx.UserID, tx.ID); size > 1 {
		violations = append(violations, Violation{
			Rule:             RapidTransactions,
			Description:      fmt.Sprintf("%d transactions from user %s within %s", size, tx.UserID, e.window.Span()),
			Severity:         SeverityHigh,
			TransactionCount: size,
		})
	}

	return violations
}
