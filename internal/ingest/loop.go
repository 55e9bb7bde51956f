// Package ingest drives delivery from the message source into the pipeline.
package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/Sukanya-2000/fraud-detection-logger/internal/event"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/metrics"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/store"
)

// Message is one unit of delivery from the source.
type Message struct {
	Value     []byte
	Partition int
	Offset    int64
}

// Source is an ordered, at-least-once message source with manual commits.
// Fetch blocks until a message is available or ctx is cancelled.
type Source interface {
	Fetch(ctx context.Context) (Message, error)
	Commit(ctx context.Context, m Message) error
	Close() error
}

// Processor makes one synchronous processing attempt at a raw payload,
// returning the fraud record when the transaction was flagged.
type Processor interface {
	Process(ctx context.Context, raw []byte) (*store.FraudRecord, error)
}

// Rescheduler accepts messages whose attempt failed transiently.
type Rescheduler interface {
	Schedule(raw []byte)
}

// Permanent classifies errors the loop must drop instead of retry.
type Permanent func(error) bool

// Loop pulls messages one at a time, makes a single processing attempt per
// delivery, and commits progress per message. Failures never stop the loop:
// permanent ones are dropped with a log, transient ones are handed to the
// rescheduler and the loop moves on.
type Loop struct {
	source    Source
	processor Processor
	retry     Rescheduler
	permanent Permanent
	logger    *slog.Logger

	// fetchRetryDelay throttles the loop when the source itself errors.
	fetchRetryDelay time.Duration
}

// NewLoop creates a Loop.
func NewLoop(source Source, processor Processor, retry Rescheduler, permanent Permanent, logger *slog.Logger) *Loop {
	return &Loop{
		source:          source,
		processor:       processor,
		retry:           retry,
		permanent:       permanent,
		logger:          logger,
		fetchRetryDelay: time.Second,
	}
}

// Run consumes until ctx is cancelled or the source reports EOF. It always
// returns nil on cooperative shutdown.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, err := l.source.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				return nil
			}
			l.logger.Error("fetch failed", "err", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(l.fetchRetryDelay):
			}
			continue
		}
		metrics.MessagesConsumed.Inc()

		l.handle(ctx, msg)

		// Offsets are cumulative per partition; committing even a failed
		// message keeps earlier successes durable and hands ownership of
		// the failure to the retry scheduler.
		if err := l.source.Commit(ctx, msg); err != nil {
			l.logger.Error("commit failed", "partition", msg.Partition, "offset", msg.Offset, "err", err)
		}
	}
}

func (l *Loop) handle(ctx context.Context, msg Message) {
	_, err := l.processor.Process(ctx, msg.Value)
	if err == nil {
		return
	}

	if l.permanent(err) {
		metrics.MessagesDropped.WithLabelValues(dropReason(err)).Inc()
		l.logger.Error("dropping permanently failed message",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"err", err,
		)
		return
	}

	l.logger.Warn("transient failure, delegating to retry",
		"partition", msg.Partition,
		"offset", msg.Offset,
		"err", err,
	)
	l.retry.Schedule(msg.Value)
}

func dropReason(err error) string {
	var validation *event.ValidationError
	if errors.As(err, &validation) {
		return metrics.ReasonValidation
	}
	return metrics.ReasonMalformed
}
