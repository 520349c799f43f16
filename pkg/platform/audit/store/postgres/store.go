package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	id "summit/pkg/domain"
	audit "summit/pkg/platform/audit"
	txcontext "summit/pkg/platform/tx"

	"github.com/google/uuid"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the audit_outbox table and published to Kafka by
// the relay worker. Kafka is the source of truth for audit events.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append writes an audit event to the outbox table for Kafka publishing.
// When the context carries a transaction the insert joins it, so the event
// commits atomically with the state change that produced it.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	payload, err := audit.EncodePayload(event)
	if err != nil {
		return err
	}

	var delegateID *uuid.UUID
	if !event.DelegateID.IsNil() {
		did := uuid.UUID(event.DelegateID)
		delegateID = &did
	}

	query := `
		INSERT INTO audit_outbox (id, delegate_id, kind, key, payload, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		event.ID,
		delegateID,
		string(event.Kind),
		audit.PartitionKey(event),
		payload,
		event.OccurredAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListByDelegate returns events recorded for a delegate, oldest first.
// Rows are decoded from the stored payload so the result matches what
// downstream consumers see on the topic.
func (s *Store) ListByDelegate(ctx context.Context, delegateID id.DelegateID) ([]audit.Event, error) {
	query := `
		SELECT payload
		FROM audit_outbox
		WHERE delegate_id = $1
		ORDER BY occurred_at
	`

	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(delegateID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event, err := decodeEvent(raw)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// FetchUnpublished returns up to limit rows awaiting relay, oldest first.
// Dead rows are excluded. The relay runs as a single instance so no row
// locking is needed here.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxRecord, error) {
	query := `
		SELECT id, key, payload, attempts
		FROM audit_outbox
		WHERE published_at IS NULL AND NOT dead
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var records []audit.OutboxRecord
	for rows.Next() {
		var r audit.OutboxRecord
		if err := rows.Scan(&r.ID, &r.Key, &r.Payload, &r.Attempts); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return records, nil
}

// MarkPublished stamps rows as relayed.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	idStrings := make([]string, len(ids))
	for i, eventID := range ids {
		idStrings[i] = eventID.String()
	}

	query := `UPDATE audit_outbox SET published_at = $2 WHERE id = ANY($1::uuid[])`
	_, err := s.db.ExecContext(ctx, query, idStrings, time.Now())
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// MarkFailed records a failed relay attempt. Rows marked dead are excluded
// from future fetches and kept for inspection.
func (s *Store) MarkFailed(ctx context.Context, eventID uuid.UUID, dead bool) error {
	query := `UPDATE audit_outbox SET attempts = attempts + 1, dead = $2 WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, eventID, dead)
	if err != nil {
		return fmt.Errorf("mark outbox failed: %w", err)
	}
	return nil
}

func decodeEvent(raw []byte) (audit.Event, error) {
	var payload audit.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return audit.Event{}, fmt.Errorf("unmarshal audit payload: %w", err)
	}

	event := audit.Event{
		Kind:     audit.Kind(payload.Kind),
		Actor:    payload.Actor,
		Outcome:  payload.Outcome,
		Reason:   payload.Reason,
		Metadata: payload.Metadata,
	}
	if eventID, err := uuid.Parse(payload.ID); err == nil {
		event.ID = eventID
	}
	if payload.DelegateID != "" {
		delegateID, err := id.ParseDelegateID(payload.DelegateID)
		if err != nil {
			return audit.Event{}, fmt.Errorf("parse delegate id in payload: %w", err)
		}
		event.DelegateID = delegateID
	}
	if payload.OccurredAt != "" {
		occurredAt, err := time.Parse(time.RFC3339Nano, payload.OccurredAt)
		if err != nil {
			return audit.Event{}, fmt.Errorf("parse occurred_at in payload: %w", err)
		}
		event.OccurredAt = occurredAt
	}
	return event, nil
}
