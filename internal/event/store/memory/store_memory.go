package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"summit/internal/event/models"
	id "summit/pkg/domain"
	"summit/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the requested event does not exist
// - Return sentinel.ErrAlreadyUsed when the year is taken
// - Return nil for successful operations

// Store keeps events in memory for tests and development. Mutations go
// through a single mutex so Execute's validate-then-mutate is atomic.
type Store struct {
	mu     sync.RWMutex
	events map[id.EventID]*models.Event
}

func NewStore() *Store {
	return &Store{events: make(map[id.EventID]*models.Event)}
}

// Create inserts an event, enforcing year uniqueness.
func (s *Store) Create(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.events {
		if existing.Year == e.Year {
			return fmt.Errorf("event year %d already exists: %w", e.Year, sentinel.ErrAlreadyUsed)
		}
	}
	s.events[e.ID] = e.Clone()
	return nil
}

func (s *Store) FindByID(_ context.Context, eventID id.EventID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[eventID]
	if !ok {
		return nil, fmt.Errorf("event not found: %w", sentinel.ErrNotFound)
	}
	return e.Clone(), nil
}

func (s *Store) FindByYear(_ context.Context, year int) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.events {
		if e.Year == year {
			return e.Clone(), nil
		}
	}
	return nil, fmt.Errorf("event not found: %w", sentinel.ErrNotFound)
}

// List returns all events, newest year first.
func (s *Store) List(_ context.Context) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*models.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e.Clone())
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Year > events[j].Year
	})
	return events, nil
}

// Execute atomically validates and mutates an event under the store lock.
func (s *Store) Execute(_ context.Context, eventID id.EventID, validate func(*models.Event) error, mutate func(*models.Event)) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return nil, fmt.Errorf("event not found: %w", sentinel.ErrNotFound)
	}
	if err := validate(e); err != nil {
		return nil, err
	}
	mutate(e)
	return e.Clone(), nil
}
