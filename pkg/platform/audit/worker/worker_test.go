package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	id "summit/pkg/domain"
	audit "summit/pkg/platform/audit"
	"summit/pkg/platform/audit/store/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSink records publishes and fails the first failUntil calls.
type fakeSink struct {
	mu        sync.Mutex
	calls     int
	failUntil int
	keys      []string
}

func (s *fakeSink) Publish(_ context.Context, key string, _ []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failUntil {
		return errors.New("broker unavailable")
	}
	s.keys = append(s.keys, key)
	return nil
}

func (s *fakeSink) published() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func appendEvents(t *testing.T, store *memory.InMemoryStore, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, n)
	for range n {
		event := audit.Event{
			ID:         uuid.New(),
			Kind:       audit.KindDelegateRegistered,
			DelegateID: id.DelegateID(uuid.New()),
		}
		require.NoError(t, store.Append(context.Background(), event))
		ids = append(ids, event.ID)
	}
	return ids
}

func TestWorker_PublishesAndMarks(t *testing.T) {
	store := memory.NewInMemoryStore()
	appendEvents(t, store, 3)

	sink := &fakeSink{}
	w := NewWorker(store, sink, testLogger())

	w.RelayOnce(context.Background())

	assert.Equal(t, 3, sink.published())

	remaining, err := store.FetchUnpublished(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, remaining, "published rows should not be fetched again")
}

func TestWorker_NoRows_NoPublish(t *testing.T) {
	store := memory.NewInMemoryStore()
	sink := &fakeSink{}
	w := NewWorker(store, sink, testLogger())

	w.RelayOnce(context.Background())

	assert.Zero(t, sink.published())
}

func TestWorker_StopsBatchOnFailure(t *testing.T) {
	store := memory.NewInMemoryStore()
	ids := appendEvents(t, store, 3)

	// First publish fails, everything after succeeds.
	sink := &fakeSink{failUntil: 1}
	w := NewWorker(store, sink, testLogger())

	w.RelayOnce(context.Background())

	// The failing row stopped the batch; nothing was published this cycle.
	assert.Zero(t, sink.published())

	remaining, err := store.FetchUnpublished(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, remaining, 3)
	assert.Equal(t, 1, remaining[0].Attempts, "failed row records an attempt")
	assert.Equal(t, 0, remaining[1].Attempts, "rows after the failure keep their attempt budget")

	// Next cycle drains the backlog.
	w.RelayOnce(context.Background())
	assert.Equal(t, 3, sink.published())

	remaining, err = store.FetchUnpublished(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.False(t, store.Dead(ids[0]))
}

func TestWorker_DeadLettersAfterMaxAttempts(t *testing.T) {
	store := memory.NewInMemoryStore()
	ids := appendEvents(t, store, 1)

	sink := &fakeSink{failUntil: 100}
	w := NewWorker(store, sink, testLogger(), WithMaxAttempts(2))

	w.RelayOnce(context.Background())
	require.False(t, store.Dead(ids[0]), "one failure should not dead-letter")

	w.RelayOnce(context.Background())
	assert.True(t, store.Dead(ids[0]), "row should be dead after max attempts")

	remaining, err := store.FetchUnpublished(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, remaining, "dead rows are excluded from relay")
}

func TestWorker_BreakerProbesThenRecovers(t *testing.T) {
	store := memory.NewInMemoryStore()
	ids := appendEvents(t, store, 10)

	// Five failing cycles open the breaker and dead-letter the first row.
	sink := &fakeSink{failUntil: 5}
	w := NewWorker(store, sink, testLogger())

	ctx := context.Background()
	for range 5 {
		w.RelayOnce(ctx)
	}
	assert.Zero(t, sink.published())
	assert.True(t, store.Dead(ids[0]))

	// Open breaker probes one row per cycle until two successes close it.
	w.RelayOnce(ctx)
	assert.Equal(t, 1, sink.published())

	w.RelayOnce(ctx)
	assert.Equal(t, 2, sink.published())

	// Closed again: the next cycle drains the rest of the backlog.
	w.RelayOnce(ctx)
	assert.Equal(t, 9, sink.published())

	remaining, err := store.FetchUnpublished(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
