package handler

import (
	"strings"
	"time"

	"summit/internal/event/service"
	dErrors "summit/pkg/domain-errors"
)

const maxFieldLength = 200

// CreateEventRequest is the body for POST /events. Year bounds mirror the
// catalog invariant so bad input fails here as a validation error.
type CreateEventRequest struct {
	Year     int       `json:"year"`
	Name     string    `json:"name"`
	Theme    string    `json:"theme"`
	Venue    string    `json:"venue"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Capacity int       `json:"capacity"`

	// Populated by Validate.
	input service.CreateInput
}

// Validate checks required fields and assembles the typed service input.
func (r *CreateEventRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Theme = strings.TrimSpace(r.Theme)
	r.Venue = strings.TrimSpace(r.Venue)

	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	for _, field := range []struct{ name, value string }{
		{"name", r.Name},
		{"theme", r.Theme},
		{"venue", r.Venue},
	} {
		if len(field.value) > maxFieldLength {
			return dErrors.Newf(dErrors.CodeValidation, "%s exceeds max length", field.name)
		}
	}

	if r.Year < 2000 || r.Year > 2200 {
		return dErrors.New(dErrors.CodeValidation, "year must be between 2000 and 2200")
	}
	if r.StartsAt.IsZero() || r.EndsAt.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "starts_at and ends_at are required")
	}
	if !r.StartsAt.Before(r.EndsAt) {
		return dErrors.New(dErrors.CodeValidation, "starts_at must be before ends_at")
	}
	if r.Capacity < 0 {
		return dErrors.New(dErrors.CodeValidation, "capacity must not be negative")
	}

	r.input = service.CreateInput{
		Year:     r.Year,
		Name:     r.Name,
		Theme:    r.Theme,
		Venue:    r.Venue,
		StartsAt: r.StartsAt,
		EndsAt:   r.EndsAt,
		Capacity: r.Capacity,
	}
	return nil
}

// Input returns the service input assembled by Validate.
func (r *CreateEventRequest) Input() service.CreateInput {
	return r.input
}
