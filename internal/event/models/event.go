// Package models holds the event catalog aggregate.
package models

import (
	"strings"
	"time"

	id "summit/pkg/domain"
	dErrors "summit/pkg/domain-errors"
)

// Event is one edition of the summit. Delegates register against an event
// year; the event record carries the venue and schedule shown on badges and
// in notifications.
//
// Invariants:
//   - Year is unique across events
//   - StartsAt precedes EndsAt
//   - Registration is only accepted while Active
type Event struct {
	ID    id.EventID `json:"id"`
	Year  int        `json:"year"`
	Name  string     `json:"name"`
	Theme string     `json:"theme,omitempty"`
	Venue string     `json:"venue,omitempty"`

	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`

	// Capacity caps attendance for venue planning. Zero means unbounded;
	// registration does not enforce it.
	Capacity int  `json:"capacity,omitempty"`
	Active   bool `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEvent constructs an active event and validates its invariants.
func NewEvent(eventID id.EventID, year int, name string, startsAt, endsAt time.Time, now time.Time) (*Event, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event name cannot be empty")
	}
	if year < 2000 || year > 2200 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event year out of range")
	}
	if startsAt.IsZero() || endsAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event schedule cannot be empty")
	}
	if !startsAt.Before(endsAt) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event must start before it ends")
	}

	return &Event{
		ID:        eventID,
		Year:      year,
		Name:      name,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanDeactivate checks the deactivation precondition: event must be active.
// Use with ApplyDeactivation in Execute callbacks so the check and the
// mutation run under the same lock.
func (e *Event) CanDeactivate() error {
	if !e.Active {
		return dErrors.New(dErrors.CodeInvariantViolation, "event is already inactive")
	}
	return nil
}

// ApplyDeactivation closes the event to new registrations.
func (e *Event) ApplyDeactivation(now time.Time) {
	e.Active = false
	e.UpdatedAt = now
}

// Clone returns a copy so stores can hand out snapshots that callers may
// mutate freely.
func (e *Event) Clone() *Event {
	clone := *e
	return &clone
}
