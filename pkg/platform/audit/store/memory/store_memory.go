package memory

import (
	"context"
	"sync"

	id "summit/pkg/domain"
	audit "summit/pkg/platform/audit"

	"github.com/google/uuid"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	events  map[id.DelegateID][]audit.Event
	records []*record
}

// record wraps an outbox row with relay bookkeeping.
type record struct {
	audit.OutboxRecord
	published bool
	dead      bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.DelegateID][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.DelegateID][]audit.Event)
	s.records = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	payload, err := audit.EncodePayload(event)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.DelegateID] = append(s.events[event.DelegateID], event)
	s.records = append(s.records, &record{
		OutboxRecord: audit.OutboxRecord{
			ID:      event.ID,
			Key:     audit.PartitionKey(event),
			Payload: payload,
		},
	})
	return nil
}

func (s *InMemoryStore) ListByDelegate(_ context.Context, delegateID id.DelegateID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[delegateID]...), nil
}

// FetchUnpublished returns up to limit rows awaiting relay, oldest first.
func (s *InMemoryStore) FetchUnpublished(_ context.Context, limit int) ([]audit.OutboxRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.OutboxRecord
	for _, r := range s.records {
		if r.published || r.dead {
			continue
		}
		out = append(out, r.OutboxRecord)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		for _, eventID := range ids {
			if r.ID == eventID {
				r.published = true
			}
		}
	}
	return nil
}

func (s *InMemoryStore) MarkFailed(_ context.Context, eventID uuid.UUID, dead bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.ID == eventID {
			r.Attempts++
			r.dead = dead
		}
	}
	return nil
}

// Dead reports whether a row has been dead-lettered. Test helper.
func (s *InMemoryStore) Dead(eventID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.ID == eventID {
			return r.dead
		}
	}
	return false
}
