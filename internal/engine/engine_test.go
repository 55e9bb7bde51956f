package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sukanya-2000/fraud-detection-logger/internal/activity"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/event"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/rules"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPipeline(s store.Store) *Pipeline {
	evaluator := rules.NewEvaluator(activity.New(10*time.Second), rules.DefaultThresholds())
	return New(evaluator, s, discardLogger())
}

func TestProcessFlagsViolator(t *testing.T) {
	s := store.NewMemoryStore()
	p := newPipeline(s)

	raw := []byte(`{"transactionId":"t1","userId":"u1","amount":6500,"location":"Nigeria","timestamp":"2024-01-15T10:30:00Z"}`)
	rec, err := p.Process(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "t1", rec.Transaction.ID)
	require.Len(t, rec.Violations, 1)
	require.Equal(t, rules.HighAmountNonUSA, rec.Violations[0].Rule)
	require.Equal(t, 1, s.Size())
}

func TestProcessCleanTransaction(t *testing.T) {
	s := store.NewMemoryStore()
	p := newPipeline(s)

	raw := []byte(`{"transactionId":"t1","userId":"u1","amount":1234,"location":"USA","timestamp":"2024-01-15T10:30:00Z"}`)
	rec, err := p.Process(context.Background(), raw)
	require.NoError(t, err)
	require.Nil(t, rec)
	require.Equal(t, 0, s.Size(), "clean transactions never reach the store")
}

func TestProcessMalformedIsPermanent(t *testing.T) {
	p := newPipeline(store.NewMemoryStore())

	_, err := p.Process(context.Background(), []byte(`{{{`))
	require.Error(t, err)
	require.True(t, Permanent(err))

	var malformed *event.MalformedError
	require.ErrorAs(t, err, &malformed)
}

func TestProcessInvalidIsPermanent(t *testing.T) {
	p := newPipeline(store.NewMemoryStore())

	raw := []byte(`{"transactionId":"t1","userId":"u1","amount":-5,"location":"USA","timestamp":"2024-01-15T10:30:00Z"}`)
	_, err := p.Process(context.Background(), raw)
	require.True(t, Permanent(err))
}

// failingStore simulates a broken downstream dependency.
type failingStore struct {
	store.Store
}

func (f *failingStore) Append(ctx context.Context, tx event.Transaction, violations []rules.Violation) (store.FraudRecord, error) {
	return store.FraudRecord{}, errors.New("store unavailable")
}

func TestProcessStoreFailureIsTransient(t *testing.T) {
	p := newPipeline(&failingStore{Store: store.NewMemoryStore()})

	raw := []byte(`{"transactionId":"t1","userId":"u1","amount":6500,"location":"Nigeria","timestamp":"2024-01-15T10:30:00Z"}`)
	_, err := p.Process(context.Background(), raw)
	require.Error(t, err)
	require.False(t, Permanent(err), "infrastructure failures are retryable")
}

func TestRetriedMessageMatchesImmediateSuccess(t *testing.T) {
	// First attempt fails at the store; the reattempt of the same payload
	// must produce the same record an immediate success would have.
	good := store.NewMemoryStore()
	evaluator := rules.NewEvaluator(activity.New(10*time.Second), rules.DefaultThresholds())

	flaky := &flakyStore{inner: good, failures: 1}
	p := New(evaluator, flaky, discardLogger())

	raw := []byte(`{"transactionId":"t1","userId":"u1","amount":6500,"location":"Nigeria","timestamp":"2024-01-15T10:30:00Z"}`)

	_, err := p.Process(context.Background(), raw)
	require.Error(t, err)
	require.False(t, Permanent(err))

	rec, err := p.Process(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, 1, good.Size())
}

type flakyStore struct {
	inner    store.Store
	failures int
}

func (f *flakyStore) Append(ctx context.Context, tx event.Transaction, violations []rules.Violation) (store.FraudRecord, error) {
	if f.failures > 0 {
		f.failures--
		return store.FraudRecord{}, errors.New("store unavailable")
	}
	return f.inner.Append(ctx, tx, violations)
}

func (f *flakyStore) GetAll() ([]store.FraudRecord, error)                { return f.inner.GetAll() }
func (f *flakyStore) GetByUser(u string) ([]store.FraudRecord, error)     { return f.inner.GetByUser(u) }
func (f *flakyStore) GetByRule(r rules.Name) ([]store.FraudRecord, error) { return f.inner.GetByRule(r) }
func (f *flakyStore) Size() int                                           { return f.inner.Size() }
