// Package domain holds the typed identifiers shared across features.
//
// IDs are distinct types over uuid.UUID so a DelegateID can never be passed
// where an EventID is expected. Parse functions enforce the trust-boundary
// invariant: IDs must be valid, non-empty, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "summit/pkg/domain-errors"
)

// DelegateID identifies a registered delegate.
type DelegateID uuid.UUID

// EventID identifies an event in the catalog.
type EventID uuid.UUID

// NewDelegateID generates a fresh random delegate ID.
func NewDelegateID() DelegateID { return DelegateID(uuid.New()) }

// NewEventID generates a fresh random event ID.
func NewEventID() EventID { return EventID(uuid.New()) }

func (id DelegateID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string    { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero UUID.
func (id DelegateID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the ID as its canonical UUID string, so JSON and
// text encodings never see the raw byte array.
func (id DelegateID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

// UnmarshalText parses the ID from its canonical UUID string.
func (id *DelegateID) UnmarshalText(text []byte) error {
	u, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*id = DelegateID(u)
	return nil
}

func (id EventID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

func (id *EventID) UnmarshalText(text []byte) error {
	u, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*id = EventID(u)
	return nil
}

// ParseDelegateID parses and validates a delegate ID from its string form.
func ParseDelegateID(s string) (DelegateID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return DelegateID{}, err
	}
	return DelegateID(u), nil
}

// ParseEventID parses and validates an event ID from its string form.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return EventID{}, err
	}
	return EventID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
