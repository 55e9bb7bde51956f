package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sukanya-2000/fraud-detection-logger/internal/event"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/rules"
)

// MemoryStore is the in-memory Store implementation. A single mutex guards
// the record slice; readers get copies so callers cannot mutate internal
// state. All queries are linear scans in insertion order.
type MemoryStore struct {
	mu      sync.Mutex
	records []FraudRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make([]FraudRecord, 0)}
}

// Append records a flagged transaction, assigning a record id and flag time.
func (s *MemoryStore) Append(ctx context.Context, tx event.Transaction, violations []rules.Violation) (FraudRecord, error) {
	rec := FraudRecord{
		ID:          uuid.New().String(),
		Transaction: tx,
		Violations:  violations,
		FlaggedAt:   time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return rec, nil
}

// GetAll returns every record in insertion order.
func (s *MemoryStore) GetAll() ([]FraudRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]FraudRecord, len(s.records))
	copy(copied, s.records)
	return copied, nil
}

// GetByUser returns records whose transaction belongs to userID.
func (s *MemoryStore) GetByUser(userID string) ([]FraudRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]FraudRecord, 0)
	for _, rec := range s.records {
		if rec.Transaction.UserID == userID {
			result = append(result, rec)
		}
	}
	return result, nil
}

// GetByRule returns records where any violation matches rule.
func (s *MemoryStore) GetByRule(rule rules.Name) ([]FraudRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]FraudRecord, 0)
	for _, rec := range s.records {
		for _, v := range rec.Violations {
			if v.Rule == rule {
				result = append(result, rec)
				break
			}
		}
	}
	return result, nil
}

// Size returns the number of stored records.
func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

var _ Store = (*MemoryStore)(nil)
