package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"summit/internal/event/models"
	id "summit/pkg/domain"
	"summit/pkg/platform/sentinel"
)

type EventStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
	now   time.Time
}

func (s *EventStoreSuite) SetupTest() {
	s.store = NewStore()
	s.ctx = context.Background()
	s.now = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
}

func TestEventStoreSuite(t *testing.T) {
	suite.Run(t, new(EventStoreSuite))
}

func (s *EventStoreSuite) newEvent(year int) *models.Event {
	starts := time.Date(year, 9, 10, 9, 0, 0, 0, time.UTC)
	e, err := models.NewEvent(id.NewEventID(), year, "Summit", starts, starts.AddDate(0, 0, 3), s.now)
	s.Require().NoError(err)
	return e
}

// TestCreationAndLookups verifies the store correctly creates and retrieves
// catalog entries.
func (s *EventStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds event by ID", func() {
		e := s.newEvent(2025)
		s.Require().NoError(s.store.Create(s.ctx, e))

		found, err := s.store.FindByID(s.ctx, e.ID)
		s.Require().NoError(err)
		s.Equal(e.Year, found.Year)
		s.True(found.Active)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.NewEventID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("finds event by year", func() {
		e := s.newEvent(2027)
		s.Require().NoError(s.store.Create(s.ctx, e))

		found, err := s.store.FindByYear(s.ctx, 2027)
		s.Require().NoError(err)
		s.Equal(e.ID, found.ID)
	})

	s.Run("returns ErrNotFound for unknown year", func() {
		_, err := s.store.FindByYear(s.ctx, 2099)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestYearUniqueness verifies one edition per year.
func (s *EventStoreSuite) TestYearUniqueness() {
	s.Run("rejects duplicate year", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newEvent(2025)))

		err := s.store.Create(s.ctx, s.newEvent(2025))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("allows distinct years", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newEvent(2024)))
		s.Require().NoError(s.store.Create(s.ctx, s.newEvent(2026)))
	})
}

// TestList verifies ordering.
func (s *EventStoreSuite) TestList() {
	s.Run("empty catalog lists nothing", func() {
		events, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Empty(events)
	})

	s.Run("lists newest year first", func() {
		for _, year := range []int{2024, 2026, 2025} {
			s.Require().NoError(s.store.Create(s.ctx, s.newEvent(year)))
		}

		events, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(events, 3)
		s.Equal([]int{2026, 2025, 2024}, []int{events[0].Year, events[1].Year, events[2].Year})
	})
}

// TestExecute verifies the atomic validate-then-mutate path used by
// deactivation.
func (s *EventStoreSuite) TestExecute() {
	s.Run("applies mutation when validation passes", func() {
		e := s.newEvent(2025)
		s.Require().NoError(s.store.Create(s.ctx, e))

		updated, err := s.store.Execute(s.ctx, e.ID,
			func(e *models.Event) error { return e.CanDeactivate() },
			func(e *models.Event) { e.ApplyDeactivation(s.now) },
		)
		s.Require().NoError(err)
		s.False(updated.Active)

		found, err := s.store.FindByID(s.ctx, e.ID)
		s.Require().NoError(err)
		s.False(found.Active)
	})

	s.Run("leaves state untouched when validation fails", func() {
		e := s.newEvent(2026)
		s.Require().NoError(s.store.Create(s.ctx, e))

		_, err := s.store.Execute(s.ctx, e.ID,
			func(*models.Event) error { return sentinel.ErrVersionConflict },
			func(e *models.Event) { e.ApplyDeactivation(s.now) },
		)
		s.Require().Error(err)

		found, err := s.store.FindByID(s.ctx, e.ID)
		s.Require().NoError(err)
		s.True(found.Active)
	})

	s.Run("returns ErrNotFound for unknown event", func() {
		_, err := s.store.Execute(s.ctx, id.NewEventID(),
			func(*models.Event) error { return nil },
			func(*models.Event) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned copy is detached from the stored one", func() {
		e := s.newEvent(2028)
		s.Require().NoError(s.store.Create(s.ctx, e))

		updated, err := s.store.Execute(s.ctx, e.ID,
			func(*models.Event) error { return nil },
			func(*models.Event) {},
		)
		s.Require().NoError(err)

		updated.Name = "mutated outside the store"
		found, err := s.store.FindByID(s.ctx, e.ID)
		s.Require().NoError(err)
		s.Equal("Summit", found.Name)
	})
}

// TestConcurrentDeactivation verifies that racing deactivations resolve to
// exactly one winner under the store lock.
func (s *EventStoreSuite) TestConcurrentDeactivation() {
	e := s.newEvent(2025)
	s.Require().NoError(s.store.Create(s.ctx, e))

	const goroutines = 8
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(s.ctx, e.ID,
				func(e *models.Event) error { return e.CanDeactivate() },
				func(e *models.Event) { e.ApplyDeactivation(s.now) },
			)
			if err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
}
