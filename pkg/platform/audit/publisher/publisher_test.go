package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	id "rmfaudit/pkg/domain"
	audit "rmfaudit/pkg/platform/audit"
	"rmfaudit/pkg/platform/audit/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	userID := id.UserID("auditor-1")
	err := pub.Emit(context.Background(), audit.Event{
		UserID: userID,
		Action: string(audit.EventSessionStarted),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventSessionStarted), events[0].Action)
	assert.Equal(t, audit.CategoryOperations, events[0].Category, "category derived from action")
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	userID := id.UserID("auditor-1")
	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			UserID: userID,
			Action: string(audit.EventEvidenceScored),
		})
		require.NoError(t, err)
	}

	require.NoError(t, pub.Close())

	events, err := store.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	require.NoError(t, pub.Close())
	require.NoError(t, pub.Close(), "close is idempotent")

	err := pub.Emit(context.Background(), audit.Event{UserID: "u", Action: "x"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPublisher_BufferFull_NoPanic(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{UserID: "u", Action: "x"})
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
}

func TestPublisher_Timestamps(t *testing.T) {
	t.Run("sets timestamp when missing", func(t *testing.T) {
		pub := NewPublisher(memory.NewInMemoryStore())
		before := time.Now()
		require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: "u", Action: "x"}))
		after := time.Now()

		events, err := pub.List(context.Background(), "u")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.False(t, events[0].Timestamp.Before(before))
		assert.False(t, events[0].Timestamp.After(after))
	})

	t.Run("preserves existing timestamp", func(t *testing.T) {
		pub := NewPublisher(memory.NewInMemoryStore())
		custom := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: "u", Action: "x", Timestamp: custom}))

		events, err := pub.List(context.Background(), "u")
		require.NoError(t, err)
		assert.Equal(t, custom, events[0].Timestamp)
	})
}

type writeOnlyStore struct{ err error }

func (s writeOnlyStore) Append(context.Context, audit.Event) error { return s.err }

func TestPublisher_WriteOnlyStore(t *testing.T) {
	boom := errors.New("broker down")
	pub := NewPublisher(writeOnlyStore{err: boom})

	err := pub.Emit(context.Background(), audit.Event{UserID: "u", Action: "x"})
	assert.ErrorIs(t, err, boom)

	_, err = pub.List(context.Background(), "u")
	assert.ErrorIs(t, err, ErrNotReadable)
}
