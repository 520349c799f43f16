// Package worker relays audit events from the outbox to Kafka.
package worker

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	audit "summit/pkg/platform/audit"
	"summit/pkg/platform/circuit"

	"github.com/google/uuid"
)

const (
	defaultInterval     = 2 * time.Second
	defaultOpenInterval = 10 * time.Second
	defaultBatchSize    = 100
	defaultMaxAttempts  = 5
)

// Sink publishes a single audit record. The Kafka producer satisfies this
// through a topic-bound adapter.
type Sink interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Worker polls the outbox and ships unpublished rows to the sink. Rows
// that keep failing are dead-lettered after maxAttempts so one poison
// record cannot wedge the relay. A circuit breaker slows polling while
// the sink is unhealthy; API writes are never blocked either way because
// they only touch the outbox table.
type Worker struct {
	outbox       audit.Outbox
	sink         Sink
	logger       *slog.Logger
	breaker      *circuit.Breaker
	metrics      *Metrics
	interval     time.Duration
	openInterval time.Duration
	batchSize    int
	maxAttempts  int
}

type Option func(w *Worker)

// WithInterval sets the poll interval for the healthy path.
func WithInterval(interval time.Duration) Option {
	return func(w *Worker) { w.interval = interval }
}

// WithOpenInterval sets the poll interval used while the breaker is open.
func WithOpenInterval(interval time.Duration) Option {
	return func(w *Worker) { w.openInterval = interval }
}

func WithBatchSize(size int) Option {
	return func(w *Worker) { w.batchSize = size }
}

func WithMaxAttempts(attempts int) Option {
	return func(w *Worker) { w.maxAttempts = attempts }
}

func WithMetrics(metrics *Metrics) Option {
	return func(w *Worker) { w.metrics = metrics }
}

func NewWorker(outbox audit.Outbox, sink Sink, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{
		outbox:       outbox,
		sink:         sink,
		logger:       logger,
		breaker:      circuit.New("audit-relay"),
		interval:     defaultInterval,
		openInterval: defaultOpenInterval,
		batchSize:    defaultBatchSize,
		maxAttempts:  defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	timer := time.NewTimer(w.nextInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			w.RelayOnce(ctx)
			timer.Reset(w.nextInterval())
		}
	}
}

// RelayOnce performs a single fetch-publish-mark cycle. Exported so tests
// and manual tooling can drive the relay without the timer loop.
func (w *Worker) RelayOnce(ctx context.Context) {
	limit := w.batchSize
	if w.breaker.IsOpen() {
		// Probe with a single row while unhealthy.
		limit = 1
	}

	records, err := w.outbox.FetchUnpublished(ctx, limit)
	if err != nil {
		w.logger.ErrorContext(ctx, "fetch audit outbox", "error", err)
		return
	}
	if len(records) == 0 {
		return
	}

	var published []uuid.UUID
	for _, record := range records {
		if err := w.sink.Publish(ctx, record.Key, record.Payload); err != nil {
			w.recordFailure(ctx, record, err)
			// Stop the batch; remaining rows keep their attempt budget
			// for the next cycle.
			break
		}
		published = append(published, record.ID)
		if _, change := w.breaker.RecordSuccess(); change.Closed {
			w.logger.InfoContext(ctx, "audit relay recovered, circuit closed")
			if w.metrics != nil {
				w.metrics.SetCircuitBreakerState(false)
			}
		}
		if w.metrics != nil {
			w.metrics.IncPublished()
		}
	}

	if err := w.outbox.MarkPublished(ctx, published); err != nil {
		w.logger.ErrorContext(ctx, "mark audit outbox published", "error", err)
	}
}

func (w *Worker) recordFailure(ctx context.Context, record audit.OutboxRecord, publishErr error) {
	dead := record.Attempts+1 >= w.maxAttempts
	if err := w.outbox.MarkFailed(ctx, record.ID, dead); err != nil {
		w.logger.ErrorContext(ctx, "mark audit outbox failed", "event_id", record.ID, "error", err)
	}

	if w.metrics != nil {
		w.metrics.IncPublishFailures()
	}
	if dead {
		w.logger.ErrorContext(ctx, "audit event dead-lettered",
			"event_id", record.ID,
			"attempts", record.Attempts+1,
			"error", publishErr,
		)
		if w.metrics != nil {
			w.metrics.IncDeadLettered()
		}
	} else {
		w.logger.WarnContext(ctx, "publish audit event",
			"event_id", record.ID,
			"attempts", record.Attempts+1,
			"error", publishErr,
		)
	}

	if _, change := w.breaker.RecordFailure(); change.Opened {
		w.logger.WarnContext(ctx, "audit relay unhealthy, circuit opened")
		if w.metrics != nil {
			w.metrics.SetCircuitBreakerState(true)
		}
	}
}

// nextInterval applies jitter so multiple deployments do not poll in
// lockstep, and backs off while the breaker is open.
func (w *Worker) nextInterval() time.Duration {
	interval := w.interval
	if w.breaker.IsOpen() {
		interval = w.openInterval
	}
	jitter := time.Duration(rand.Int63n(int64(interval)/2 + 1)) //nolint:gosec // jitter doesn't need crypto rand
	return interval*3/4 + jitter
}
