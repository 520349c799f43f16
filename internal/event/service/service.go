// Package service implements the event catalog: the editions of the summit
// that delegates register against.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"summit/internal/event/models"
	id "summit/pkg/domain"
	dErrors "summit/pkg/domain-errors"
	"summit/pkg/platform/sentinel"
	"summit/pkg/requestcontext"
)

// Store is the persistence contract. Execute runs the validate and mutate
// callbacks under the store's lock so catalog preconditions cannot race.
type Store interface {
	Create(ctx context.Context, e *models.Event) error
	FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error)
	FindByYear(ctx context.Context, year int) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Execute(ctx context.Context, eventID id.EventID, validate func(*models.Event) error, mutate func(*models.Event)) (*models.Event, error)
}

// Service orchestrates catalog operations. It also serves as the event
// lookup for delegate registration, which resolves events by year.
type Service struct {
	events Store
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(events Store, opts ...Option) *Service {
	s := &Service{
		events: events,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries the fields for a new catalog entry. The handler has
// already validated shape; the model enforces schedule and year invariants.
type CreateInput struct {
	Year     int
	Name     string
	Theme    string
	Venue    string
	StartsAt time.Time
	EndsAt   time.Time
	Capacity int
}

// Create adds an active event to the catalog. Year uniqueness is enforced
// by the store and surfaces as a Conflict.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Event, error) {
	now := requestcontext.Now(ctx)

	e, err := models.NewEvent(id.NewEventID(), input.Year, input.Name, input.StartsAt, input.EndsAt, now)
	if err != nil {
		return nil, err
	}
	e.Theme = input.Theme
	e.Venue = input.Venue
	e.Capacity = input.Capacity

	if err := s.events.Create(ctx, e); err != nil {
		return nil, wrapStoreErr(err)
	}

	s.logger.InfoContext(ctx, "event created",
		"event_id", e.ID.String(),
		"year", e.Year,
	)
	return e, nil
}

// List returns the catalog, newest year first.
func (s *Service) List(ctx context.Context) ([]*models.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return events, nil
}

func (s *Service) Get(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	if eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "event id is required")
	}
	e, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return e, nil
}

// GetByYear resolves the edition a registration targets. Absence reports
// NotFound; registration turns that into its own error message.
func (s *Service) GetByYear(ctx context.Context, year int) (*models.Event, error) {
	e, err := s.events.FindByYear(ctx, year)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return e, nil
}

// Deactivate closes an event for registration. Delegates already registered
// are unaffected; the catalog entry stays listed for historical queries.
func (s *Service) Deactivate(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	if eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "event id is required")
	}
	now := requestcontext.Now(ctx)

	e, err := s.events.Execute(ctx, eventID,
		func(e *models.Event) error { return e.CanDeactivate() },
		func(e *models.Event) { e.ApplyDeactivation(now) },
	)
	if err != nil {
		return nil, conflictFromInvariant(wrapStoreErr(err))
	}

	s.logger.InfoContext(ctx, "event deactivated",
		"event_id", e.ID.String(),
		"year", e.Year,
	)
	return e, nil
}

// conflictFromInvariant remaps the deactivation precondition to Conflict: a
// second deactivation means the event is already in that state.
func conflictFromInvariant(err error) error {
	var dErr *dErrors.Error
	if errors.As(err, &dErr) && dErr.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeConflict, dErr.Message)
	}
	return err
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
		return dErrors.New(dErrors.CodeNotFound, "event not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "an event already exists for this year")
	case errors.Is(err, sentinel.ErrVersionConflict):
		return dErrors.New(dErrors.CodeConflict, "event was modified concurrently, retry with current data")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "event store operation failed")
	}
}
