package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	id "summit/pkg/domain"
)

const (
	// reviewPushDelay gives admins a head start before the delegate is
	// nudged that their registration is still pending.
	reviewPushDelay     = 5 * time.Minute
	reviewPushMaxRetry  = 3
	reviewPushRetention = 24 * time.Hour
)

// Enqueuer schedules tasks. Safe for concurrent use.
type Enqueuer struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewEnqueuer builds an Enqueuer on the given Redis URL. Returns nil if the
// URL is empty (jobs disabled); callers skip scheduling.
func NewEnqueuer(redisURL string, logger *slog.Logger) (*Enqueuer, error) {
	if redisURL == "" {
		return nil, nil
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL for jobs: %w", err)
	}
	return &Enqueuer{client: asynq.NewClient(opt), logger: logger}, nil
}

// EnqueueReviewPush schedules the delayed review push for a delegate.
func (e *Enqueuer) EnqueueReviewPush(ctx context.Context, delegateID id.DelegateID) error {
	task, err := NewReviewPushTask(delegateID)
	if err != nil {
		return err
	}

	info, err := e.client.EnqueueContext(ctx, task,
		asynq.ProcessIn(reviewPushDelay),
		asynq.MaxRetry(reviewPushMaxRetry),
		asynq.Retention(reviewPushRetention),
	)
	if err != nil {
		return fmt.Errorf("enqueue review push: %w", err)
	}

	e.logger.DebugContext(ctx, "review push scheduled",
		"task_id", info.ID,
		"delegate_id", delegateID.String(),
		"process_at", info.NextProcessAt,
	)
	return nil
}

// Close releases the underlying Redis connections.
func (e *Enqueuer) Close() error {
	return e.client.Close()
}
