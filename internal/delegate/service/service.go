// Package service implements delegate registration, lifecycle transitions,
// credentials, and the query layer on top of pluggable stores.
package service

import (
	"context"
	"errors"
	"log/slog"

	"summit/internal/blob"
	delegatemetrics "summit/internal/delegate/metrics"
	"summit/internal/delegate/models"
	eventmodels "summit/internal/event/models"
	id "summit/pkg/domain"
	dErrors "summit/pkg/domain-errors"
	"summit/pkg/platform/audit"
	"summit/pkg/platform/sentinel"
	"summit/pkg/platform/tx"
	"summit/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks DelegateStore,EventCatalog,Notifier,BadgeRenderer,JobEnqueuer,TokenIssuer,StatsCache

// DelegateStore is the persistence contract. Execute runs the validate and
// mutate callbacks under the store's lock (mutex in memory, FOR UPDATE in
// Postgres) so lifecycle preconditions cannot race.
type DelegateStore interface {
	Create(ctx context.Context, d *models.Delegate) error
	FindByID(ctx context.Context, delegateID id.DelegateID) (*models.Delegate, error)
	FindByEmail(ctx context.Context, email string) (*models.Delegate, error)
	FindByEmailAndYear(ctx context.Context, email string, eventYear int) (*models.Delegate, error)
	Update(ctx context.Context, d *models.Delegate) error
	Execute(ctx context.Context, delegateID id.DelegateID, validate func(*models.Delegate) error, mutate func(*models.Delegate)) (*models.Delegate, error)
	Delete(ctx context.Context, delegateID id.DelegateID) error
	List(ctx context.Context, filter *models.Filter) ([]*models.Delegate, int, error)
	Statistics(ctx context.Context, eventID id.EventID) (*models.Statistics, error)
}

// EventCatalog resolves the event a registration targets.
type EventCatalog interface {
	GetByYear(ctx context.Context, year int) (*eventmodels.Event, error)
}

// Notifier delivers best-effort side effects. Methods return nothing;
// delivery failure never fails the operation that triggered it.
type Notifier interface {
	RegistrationReceived(ctx context.Context, delegate *models.Delegate)
	DelegateApproved(ctx context.Context, delegate *models.Delegate, badgePNG []byte)
	DelegateRejected(ctx context.Context, delegate *models.Delegate)
	DelegateCheckedIn(ctx context.Context, delegate *models.Delegate)
	PasswordResetPIN(ctx context.Context, delegate *models.Delegate, pin string)
}

// BadgeRenderer produces the badge PNG attached to approval emails and
// served from the badge endpoint.
type BadgeRenderer interface {
	Render(ctx context.Context, delegate *models.Delegate) ([]byte, error)
}

// JobEnqueuer schedules delayed background work.
type JobEnqueuer interface {
	EnqueueReviewPush(ctx context.Context, delegateID id.DelegateID) error
}

// TokenIssuer signs access tokens for approved delegates.
type TokenIssuer interface {
	Issue(delegateID id.DelegateID, email string) (string, error)
}

// StatsCache is a read-through cache for statistics. Get returns the raw
// cached document and whether it was present; misses and errors both report
// absent, so the cache can never become a correctness dependency.
type StatsCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// Service orchestrates delegate operations.
type Service struct {
	delegates DelegateStore
	events    EventCatalog
	tokens    TokenIssuer
	tx        tx.Runner

	audit      audit.Store
	notifier   Notifier
	badges     BadgeRenderer
	jobs       JobEnqueuer
	uploads    blob.Storage
	statsCache StatsCache

	logger  *slog.Logger
	metrics *delegatemetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *delegatemetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTx sets the transaction runner joining delegate and audit writes.
// Without one, operations run non-transactionally (memory stores).
func WithTx(runner tx.Runner) Option {
	return func(s *Service) { s.tx = runner }
}

func WithAuditStore(store audit.Store) Option {
	return func(s *Service) { s.audit = store }
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

func WithBadgeRenderer(renderer BadgeRenderer) Option {
	return func(s *Service) { s.badges = renderer }
}

func WithJobs(jobs JobEnqueuer) Option {
	return func(s *Service) { s.jobs = jobs }
}

// WithUploads wires blob storage for registration file parts.
func WithUploads(storage blob.Storage) Option {
	return func(s *Service) { s.uploads = storage }
}

func WithStatsCache(cache StatsCache) Option {
	return func(s *Service) { s.statsCache = cache }
}

// New constructs a Service. The store, catalog, and token issuer are
// required; everything else is optional and degrades to a no-op.
func New(delegates DelegateStore, events EventCatalog, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		delegates: delegates,
		events:    events,
		tokens:    tokens,
		tx:        tx.NewPassthroughRunner(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wrapStoreErr translates store sentinels into API-facing coded errors.
// Domain errors raised by validate callbacks pass through untouched.
func wrapStoreErr(err error) error {
	var dErr *dErrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &dErr):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "delegate not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "email already registered for this event year")
	case errors.Is(err, sentinel.ErrVersionConflict):
		return dErrors.New(dErrors.CodeConflict, "delegate was modified concurrently, retry with current data")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "delegate store operation failed")
	}
}

// appendAudit writes an event to the outbox. Inside RunInTx the append
// shares the surrounding transaction; the returned error aborts it so state
// changes and their audit trail commit together.
func (s *Service) appendAudit(ctx context.Context, event audit.Event) error {
	if s.audit == nil {
		return nil
	}
	if err := s.audit.Append(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

// recordAudit is appendAudit for operations that do not mutate delegate
// state (login, reset requests). Append failure is logged, not propagated:
// a full outbox must not lock delegates out.
func (s *Service) recordAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Append(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "record audit event",
			"kind", string(event.Kind),
			"delegate_id", event.DelegateID.String(),
			"error", err,
		)
	}
}

// requireDelegateID rejects nil ids before they reach the store.
func requireDelegateID(delegateID id.DelegateID) error {
	if delegateID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "delegate id is required")
	}
	return nil
}

// actor resolves who performs a staff operation for the audit trail.
func actor(ctx context.Context) string {
	if requestcontext.IsAdmin(ctx) {
		return "admin"
	}
	if delegateID := requestcontext.DelegateID(ctx); !delegateID.IsNil() {
		return delegateID.String()
	}
	return "system"
}
