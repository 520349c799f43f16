package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	id "summit/pkg/domain"

	"github.com/google/uuid"
)

// Kind names the delegate action an audit event records. Kinds are part of
// the external contract on the audit topic; renaming one is a breaking
// change for downstream consumers.
type Kind string

const (
	// Lifecycle events
	KindDelegateRegistered Kind = "delegate.registered"
	KindDelegateApproved   Kind = "delegate.approved"
	KindDelegateRejected   Kind = "delegate.rejected"
	KindDelegateCheckedIn  Kind = "delegate.checked_in"

	// Credential events
	KindDelegateLogin         Kind = "delegate.login"
	KindDelegatePasswordReset Kind = "delegate.password_reset"
)

// Outcome values recorded on an event. Most events are only emitted on
// success; login and reset also record failures for security review.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Event is emitted from domain logic to capture key delegate actions. Keep
// it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID         uuid.UUID
	Kind       Kind
	DelegateID id.DelegateID
	// Actor tracks who performed the action when different from the
	// delegate, e.g. the staff member approving a registration. This is a
	// string to support various actor identification schemes.
	Actor      string
	Outcome    string
	Reason     string
	Metadata   map[string]string
	OccurredAt time.Time
}

// Store appends events to the transactional outbox. When the context
// carries a database transaction the append shares it, so the event is
// committed atomically with the state change that produced it.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByDelegate(ctx context.Context, delegateID id.DelegateID) ([]Event, error)
}

// OutboxRecord is a stored event with relay bookkeeping. Payload is the
// encoded document exactly as it will be published.
type OutboxRecord struct {
	ID       uuid.UUID
	Key      string
	Payload  []byte
	Attempts int
}

// Outbox is the relay-facing view of stored events.
type Outbox interface {
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
	MarkFailed(ctx context.Context, eventID uuid.UUID, dead bool) error
}

// Payload is the JSON document published to the audit topic. Field names
// are the external contract; downstream consumers deserialize by name.
type Payload struct {
	ID         string            `json:"id"`
	Kind       string            `json:"kind"`
	DelegateID string            `json:"delegate_id,omitempty"`
	Actor      string            `json:"actor,omitempty"`
	Outcome    string            `json:"outcome,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt string            `json:"occurred_at"`
}

// EncodePayload renders an event into the published document. Events are
// encoded once at append time so every store ships identical bytes.
func EncodePayload(event Event) ([]byte, error) {
	payload := Payload{
		ID:         event.ID.String(),
		Kind:       string(event.Kind),
		Actor:      event.Actor,
		Outcome:    event.Outcome,
		Reason:     event.Reason,
		Metadata:   event.Metadata,
		OccurredAt: event.OccurredAt.Format(time.RFC3339Nano),
	}
	if !event.DelegateID.IsNil() {
		payload.DelegateID = event.DelegateID.String()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal audit payload: %w", err)
	}
	return data, nil
}

// PartitionKey returns the Kafka key for an event. Events for the same
// delegate land on the same partition so consumers see them in order.
func PartitionKey(event Event) string {
	if !event.DelegateID.IsNil() {
		return event.DelegateID.String()
	}
	return event.ID.String()
}
