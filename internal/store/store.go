// Package store holds flagged transactions for the lifetime of the process.
package store

import (
	"context"
	"time"

	"github.com/Sukanya-2000/fraud-detection-logger/internal/event"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/rules"
)

// FraudRecord is a transaction plus its non-empty violation list. Records are
// created once and never mutated or removed.
type FraudRecord struct {
	ID          string            `json:"id"`
	Transaction event.Transaction `json:"transaction"`
	Violations  []rules.Violation `json:"violations"`
	FlaggedAt   time.Time         `json:"flaggedAt"`
}

// Store is an append-only collection of fraud records. Duplicate transaction
// ids (at-least-once redelivery) produce duplicate records; the store never
// deduplicates.
type Store interface {
	Append(ctx context.Context, tx event.Transaction, violations []rules.Violation) (FraudRecord, error)
	GetAll() ([]FraudRecord, error)
	GetByUser(userID string) ([]FraudRecord, error)
	GetByRule(rule rules.Name) ([]FraudRecord, error)
	Size() int
}
