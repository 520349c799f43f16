package handler

import (
	"time"

	"summit/internal/event/models"
)

// EventResponse is the wire shape of a catalog entry.
type EventResponse struct {
	ID       string `json:"id"`
	Year     int    `json:"year"`
	Name     string `json:"name"`
	Theme    string `json:"theme,omitempty"`
	Venue    string `json:"venue,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
	Active   bool   `json:"active"`

	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromEvent converts a catalog entry to its response form.
func FromEvent(e *models.Event) *EventResponse {
	return &EventResponse{
		ID:        e.ID.String(),
		Year:      e.Year,
		Name:      e.Name,
		Theme:     e.Theme,
		Venue:     e.Venue,
		Capacity:  e.Capacity,
		Active:    e.Active,
		StartsAt:  e.StartsAt,
		EndsAt:    e.EndsAt,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// FromEvents converts a catalog listing. The empty catalog serializes as []
// rather than null.
func FromEvents(events []*models.Event) []*EventResponse {
	out := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, FromEvent(e))
	}
	return out
}
