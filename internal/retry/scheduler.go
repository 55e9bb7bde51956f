// Package retry reschedules transient processing failures with exponential
// backoff, off the main ingest path.
package retry

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Sukanya-2000/fraud-detection-logger/internal/metrics"
)

// Policy holds the backoff parameters.
type Policy struct {
	// BaseDelay is the delay before the first retry; each subsequent retry
	// doubles it.
	BaseDelay time.Duration
	// MaxAttempts is the number of retry attempts before a message is
	// dropped as exhausted.
	MaxAttempts int
}

// DefaultPolicy returns the standard backoff parameters.
func DefaultPolicy() Policy {
	return Policy{BaseDelay: time.Second, MaxAttempts: 3}
}

// ProcessFunc makes one processing attempt at a raw payload.
type ProcessFunc func(ctx context.Context, raw []byte) error

// Scheduler runs each retry on its own timer so pending retries never block
// consumption of new messages. Timers fire best-effort: once Shutdown is
// called, an already-armed timer no-ops instead of reprocessing.
type Scheduler struct {
	ctx       context.Context
	policy    Policy
	process   ProcessFunc
	permanent func(error) bool
	logger    *slog.Logger

	pending atomic.Int64
	down    atomic.Bool
}

// New creates a Scheduler. permanent classifies errors that must not be
// retried; everything else is treated as transient.
func New(ctx context.Context, policy Policy, process ProcessFunc, permanent func(error) bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		ctx:       ctx,
		policy:    policy,
		process:   process,
		permanent: permanent,
		logger:    logger,
	}
}

// Schedule queues the first retry for a message whose initial attempt failed
// transiently. It returns immediately; the attempt runs on its own timer.
func (s *Scheduler) Schedule(raw []byte) {
	s.scheduleAttempt(raw, 0)
}

// Pending returns the number of retries currently waiting on their timer.
func (s *Scheduler) Pending() int64 {
	return s.pending.Load()
}

// Shutdown stops future timer fires. Already-armed timers are not drained;
// they check the flag and no-op.
func (s *Scheduler) Shutdown() {
	s.down.Store(true)
}

func (s *Scheduler) scheduleAttempt(raw []byte, attempt int) {
	if s.down.Load() {
		return
	}
	delay := s.policy.BaseDelay << attempt

	s.pending.Add(1)
	metrics.RetryPending.Set(float64(s.pending.Load()))
	metrics.RetriesScheduled.Inc()
	s.logger.Info("retry scheduled", "attempt", attempt, "delay", delay)

	time.AfterFunc(delay, func() { s.fire(raw, attempt) })
}

func (s *Scheduler) fire(raw []byte, attempt int) {
	defer func() {
		s.pending.Add(-1)
		metrics.RetryPending.Set(float64(s.pending.Load()))
	}()

	if s.down.Load() {
		return
	}

	err := s.process(s.ctx, raw)
	if err == nil {
		s.logger.Info("retry succeeded", "attempt", attempt)
		return
	}
	if s.permanent(err) {
		s.logger.Error("retry hit permanent failure, dropping", "attempt", attempt, "err", err)
		return
	}

	next := attempt + 1
	if next >= s.policy.MaxAttempts {
		metrics.MessagesDropped.WithLabelValues(metrics.ReasonRetryExhausted).Inc()
		s.logger.Error("retries exhausted, dropping message", "attempts", s.policy.MaxAttempts, "err", err)
		return
	}
	s.scheduleAttempt(raw, next)
}
