package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"summit/internal/delegate/models"
	id "summit/pkg/domain"
	"summit/pkg/platform/sentinel"
)

//go:generate mockgen -source=worker.go -destination=mocks/mocks.go -package=mocks DelegateSource,Notifier

// DelegateSource loads the current delegate state. The handler re-checks
// status at execution time so delayed tasks never act on stale snapshots.
type DelegateSource interface {
	FindByID(ctx context.Context, delegateID id.DelegateID) (*models.Delegate, error)
}

// Notifier sends the review reminder push.
type Notifier interface {
	ReviewReminder(ctx context.Context, delegate *models.Delegate)
}

// ReviewPushHandler executes TypeReviewPush tasks.
type ReviewPushHandler struct {
	delegates DelegateSource
	notifier  Notifier
	logger    *slog.Logger
}

func NewReviewPushHandler(delegates DelegateSource, notifier Notifier, logger *slog.Logger) *ReviewPushHandler {
	return &ReviewPushHandler{delegates: delegates, notifier: notifier, logger: logger}
}

// ProcessTask sends the "registration under review" push if the delegate is
// still pending and has registered devices. Malformed payloads skip retry;
// a missing delegate means the registration was deleted in the meantime,
// which is not an error.
func (h *ReviewPushHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload ReviewPushPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal review push payload: %v: %w", err, asynq.SkipRetry)
	}
	delegateID, err := id.ParseDelegateID(payload.DelegateID)
	if err != nil {
		return fmt.Errorf("invalid delegate id %q: %v: %w", payload.DelegateID, err, asynq.SkipRetry)
	}

	delegate, err := h.delegates.FindByID(ctx, delegateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load delegate %s: %w", delegateID, err)
	}

	if delegate.Status != models.StatusPending || len(delegate.PushTokens) == 0 {
		return nil
	}

	h.notifier.ReviewReminder(ctx, delegate)
	return nil
}

// Worker runs the asynq server processing background tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewWorker builds a Worker on the given Redis URL. Returns nil if the URL
// is empty (jobs disabled).
func NewWorker(redisURL string, concurrency int, handler *ReviewPushHandler, logger *slog.Logger) (*Worker, error) {
	if redisURL == "" {
		return nil, nil
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL for jobs: %w", err)
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Logger:      asynqLogger{logger: logger},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.ErrorContext(ctx, "background task failed",
				"type", task.Type(),
				"error", err,
			)
		}),
	})

	mux := asynq.NewServeMux()
	mux.Handle(TypeReviewPush, handler)

	return &Worker{server: server, mux: mux}, nil
}

// Run starts task processing and blocks until the context is cancelled,
// then drains in-flight tasks.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start job worker: %w", err)
	}
	<-ctx.Done()
	w.server.Shutdown()
	return ctx.Err()
}

// asynqLogger adapts slog to asynq's logger interface. Fatal maps to Error;
// process lifetime stays under the composition root's control.
type asynqLogger struct {
	logger *slog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.logger.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.logger.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.logger.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.logger.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.logger.Error(fmt.Sprint(args...)) }
