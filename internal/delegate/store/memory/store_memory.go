package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"summit/internal/delegate/models"
	id "summit/pkg/domain"
	"summit/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the requested delegate does not exist
// - Return sentinel.ErrAlreadyUsed when (email, event year) is taken
// - Return sentinel.ErrVersionConflict when an optimistic update loses a race
// - Return nil for successful operations

// Store keeps delegates in memory for tests and development. Mutations go
// through a single mutex, which is what makes Execute's validate-then-mutate
// atomic without a database.
type Store struct {
	mu        sync.RWMutex
	delegates map[id.DelegateID]*models.Delegate
}

func NewStore() *Store {
	return &Store{delegates: make(map[id.DelegateID]*models.Delegate)}
}

// Create inserts a delegate, enforcing (email, event year) uniqueness.
func (s *Store) Create(_ context.Context, d *models.Delegate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := models.NormalizeEmail(d.Email)
	for _, existing := range s.delegates {
		if existing.Email == email && existing.EventYear == d.EventYear {
			return fmt.Errorf("email already registered for event year %d: %w", d.EventYear, sentinel.ErrAlreadyUsed)
		}
	}
	if d.Version == 0 {
		d.Version = 1
	}
	s.delegates[d.ID] = d.Clone()
	return nil
}

func (s *Store) FindByID(_ context.Context, delegateID id.DelegateID) (*models.Delegate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.delegates[delegateID]
	if !ok {
		return nil, fmt.Errorf("delegate not found: %w", sentinel.ErrNotFound)
	}
	return d.Clone(), nil
}

// FindByEmail returns the delegate's most recent registration. The same
// email may register across event years; the latest year wins.
func (s *Store) FindByEmail(_ context.Context, email string) (*models.Delegate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = models.NormalizeEmail(email)
	var best *models.Delegate
	for _, d := range s.delegates {
		if d.Email != email {
			continue
		}
		if best == nil || d.EventYear > best.EventYear {
			best = d
		}
	}
	if best == nil {
		return nil, fmt.Errorf("delegate not found: %w", sentinel.ErrNotFound)
	}
	return best.Clone(), nil
}

func (s *Store) FindByEmailAndYear(_ context.Context, email string, eventYear int) (*models.Delegate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = models.NormalizeEmail(email)
	for _, d := range s.delegates {
		if d.Email == email && d.EventYear == eventYear {
			return d.Clone(), nil
		}
	}
	return nil, fmt.Errorf("delegate not found: %w", sentinel.ErrNotFound)
}

// Update persists the aggregate with optimistic concurrency: the incoming
// Version must match the stored one. On success the stored version is
// bumped and reflected back on d.
func (s *Store) Update(_ context.Context, d *models.Delegate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.delegates[d.ID]
	if !ok {
		return fmt.Errorf("delegate not found: %w", sentinel.ErrNotFound)
	}
	if stored.Version != d.Version {
		return fmt.Errorf("delegate version %d does not match stored %d: %w", d.Version, stored.Version, sentinel.ErrVersionConflict)
	}

	email := models.NormalizeEmail(d.Email)
	for otherID, other := range s.delegates {
		if otherID != d.ID && other.Email == email && other.EventYear == d.EventYear {
			return fmt.Errorf("email already registered for event year %d: %w", d.EventYear, sentinel.ErrAlreadyUsed)
		}
	}

	updated := d.Clone()
	updated.Version++
	s.delegates[d.ID] = updated
	d.Version = updated.Version
	return nil
}

// Execute atomically validates and mutates a delegate under the store lock.
// The validate func sees current state; if it returns nil, mutate is applied
// and the changed aggregate is returned. Concurrent Executes serialize, so
// two racing approvals cannot both pass validation.
func (s *Store) Execute(_ context.Context, delegateID id.DelegateID, validate func(*models.Delegate) error, mutate func(*models.Delegate)) (*models.Delegate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.delegates[delegateID]
	if !ok {
		return nil, fmt.Errorf("delegate not found: %w", sentinel.ErrNotFound)
	}
	if err := validate(d); err != nil {
		return nil, err
	}
	mutate(d)
	d.Version++
	return d.Clone(), nil
}

func (s *Store) Delete(_ context.Context, delegateID id.DelegateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.delegates[delegateID]; !ok {
		return fmt.Errorf("delegate not found: %w", sentinel.ErrNotFound)
	}
	delete(s.delegates, delegateID)
	return nil
}

// List returns one page of delegates matching the filter plus the total
// match count. Ordering is newest first with ID as tiebreak so pages are
// stable across calls.
func (s *Store) List(_ context.Context, filter *models.Filter) ([]*models.Delegate, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Delegate
	for _, d := range s.delegates {
		if filter.Matches(d) {
			matched = append(matched, d)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}

	page := make([]*models.Delegate, 0, end-start)
	for _, d := range matched[start:end] {
		page = append(page, d.Clone())
	}
	return page, total, nil
}

// Statistics aggregates counts across delegates, optionally scoped to one
// event. A nil event id means all events.
func (s *Store) Statistics(_ context.Context, eventID id.EventID) (*models.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.NewStatistics()
	for _, d := range s.delegates {
		if !eventID.IsNil() && d.EventID != eventID {
			continue
		}
		stats.Observe(d)
	}
	return stats, nil
}
