package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "summit/pkg/domain"
	dErrors "summit/pkg/domain-errors"
)

var (
	testNow    = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	testStarts = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	testEnds   = time.Date(2025, 6, 3, 18, 0, 0, 0, time.UTC)
)

func TestNewEvent(t *testing.T) {
	t.Run("valid event starts active", func(t *testing.T) {
		e, err := NewEvent(id.NewEventID(), 2025, "  Annual Summit  ", testStarts, testEnds, testNow)
		require.NoError(t, err)
		assert.Equal(t, "Annual Summit", e.Name)
		assert.Equal(t, 2025, e.Year)
		assert.True(t, e.Active)
		assert.Equal(t, testNow, e.CreatedAt)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := NewEvent(id.NewEventID(), 2025, "   ", testStarts, testEnds, testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("year out of range rejected", func(t *testing.T) {
		_, err := NewEvent(id.NewEventID(), 1999, "Summit", testStarts, testEnds, testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("start must precede end", func(t *testing.T) {
		_, err := NewEvent(id.NewEventID(), 2025, "Summit", testEnds, testStarts, testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = NewEvent(id.NewEventID(), 2025, "Summit", testStarts, testStarts, testNow)
		require.Error(t, err)
	})

	t.Run("zero schedule rejected", func(t *testing.T) {
		_, err := NewEvent(id.NewEventID(), 2025, "Summit", time.Time{}, testEnds, testNow)
		require.Error(t, err)
	})
}

func TestEventDeactivation(t *testing.T) {
	e, err := NewEvent(id.NewEventID(), 2025, "Summit", testStarts, testEnds, testNow)
	require.NoError(t, err)

	require.NoError(t, e.CanDeactivate())
	later := testNow.Add(time.Hour)
	e.ApplyDeactivation(later)
	assert.False(t, e.Active)
	assert.Equal(t, later, e.UpdatedAt)

	err = e.CanDeactivate()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestEventClone(t *testing.T) {
	e, err := NewEvent(id.NewEventID(), 2025, "Summit", testStarts, testEnds, testNow)
	require.NoError(t, err)

	clone := e.Clone()
	clone.Name = "Changed"
	clone.Active = false

	assert.Equal(t, "Summit", e.Name)
	assert.True(t, e.Active)
}
