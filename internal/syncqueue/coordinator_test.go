package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verbmaster/internal/progress"
)

type mockStore struct {
	mu      sync.Mutex
	apply   func(ctx context.Context, rec progress.AttemptRecord) error
	applied []progress.AttemptRecord
}

func (m *mockStore) Apply(ctx context.Context, rec progress.AttemptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.apply != nil {
		if err := m.apply(ctx, rec); err != nil {
			return err
		}
	}
	m.applied = append(m.applied, rec)
	return nil
}

func (m *mockStore) appliedVerbs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	verbs := make([]string, 0, len(m.applied))
	for _, r := range m.applied {
		verbs = append(verbs, r.Verb)
	}
	return verbs
}

func newTestCoordinator(t *testing.T, store Store) *Coordinator {
	t.Helper()
	coord, err := New(store, Options{
		Path:            filepath.Join(t.TempDir(), "queue.json"),
		DeliveryTimeout: time.Second,
		Backoff:         time.Millisecond,
	})
	require.NoError(t, err)
	return coord
}

func mustAttempt(t *testing.T, verb string, correct bool) progress.AttemptRecord {
	t.Helper()
	rec, err := progress.NewAttempt(verb, correct, time.Now())
	require.NoError(t, err)
	return rec
}

func TestFlushDeliversAllPending(t *testing.T) {
	store := &mockStore{}
	coord := newTestCoordinator(t, store)

	require.NoError(t, coord.Enqueue(mustAttempt(t, "go", true)))
	require.NoError(t, coord.Enqueue(mustAttempt(t, "see", false)))

	require.NoError(t, coord.Flush(context.Background()))

	assert.Equal(t, 0, coord.Pending())
	assert.Equal(t, StateIdle, coord.State())
	assert.Equal(t, []string{"go", "see"}, store.appliedVerbs())
}

func TestFailedEntryStaysQueuedOthersDeliver(t *testing.T) {
	// Remote rejects the second entry only; entries are independent units,
	// so 1 and 3 land and only 2 remains queued.
	store := &mockStore{
		apply: func(ctx context.Context, rec progress.AttemptRecord) error {
			if rec.Verb == "see" {
				return errors.New("boom")
			}
			return nil
		},
	}
	coord := newTestCoordinator(t, store)

	require.NoError(t, coord.Enqueue(mustAttempt(t, "go", true)))
	require.NoError(t, coord.Enqueue(mustAttempt(t, "see", true)))
	require.NoError(t, coord.Enqueue(mustAttempt(t, "take", false)))

	err := coord.Flush(context.Background())
	assert.ErrorIs(t, err, ErrPartialFlush)

	assert.Equal(t, 1, coord.Pending())
	assert.Equal(t, StatePartialFailure, coord.State())
	assert.Equal(t, []string{"go", "take"}, store.appliedVerbs())

	// Once the remote recovers, the retry drains the leftover.
	store.mu.Lock()
	store.apply = nil
	store.mu.Unlock()
	time.Sleep(2 * time.Millisecond) // let the backoff window pass

	require.NoError(t, coord.Flush(context.Background()))
	assert.Equal(t, 0, coord.Pending())
	assert.Equal(t, []string{"go", "take", "see"}, store.appliedVerbs())
}

func TestEnqueueNeverFailsOnStoreErrors(t *testing.T) {
	store := &mockStore{
		apply: func(ctx context.Context, rec progress.AttemptRecord) error {
			return errors.New("network down")
		},
	}
	coord := newTestCoordinator(t, store)

	for i := 0; i < 5; i++ {
		require.NoError(t, coord.Enqueue(mustAttempt(t, "go", true)))
	}
	assert.Equal(t, 5, coord.Pending())
}

func TestQueueSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")
	store := &mockStore{
		apply: func(ctx context.Context, rec progress.AttemptRecord) error {
			return errors.New("offline")
		},
	}

	coord, err := New(store, Options{Path: path})
	require.NoError(t, err)
	require.NoError(t, coord.Enqueue(mustAttempt(t, "go", true)))
	require.NoError(t, coord.Enqueue(mustAttempt(t, "see", false)))
	require.NoError(t, coord.Close())

	reopened, err := New(store, Options{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Pending())

	// Back online: everything buffered before the restart is delivered.
	store.mu.Lock()
	store.apply = nil
	store.mu.Unlock()
	require.NoError(t, reopened.Flush(context.Background()))
	assert.Equal(t, []string{"go", "see"}, store.appliedVerbs())
}

func TestPermanentlyRejectedEntriesAreDropped(t *testing.T) {
	store := &mockStore{
		apply: func(ctx context.Context, rec progress.AttemptRecord) error {
			if rec.Verb == "see" {
				return fmt.Errorf("%w: status 400", ErrPermanent)
			}
			return nil
		},
	}
	coord := newTestCoordinator(t, store)

	require.NoError(t, coord.Enqueue(mustAttempt(t, "go", true)))
	require.NoError(t, coord.Enqueue(mustAttempt(t, "see", true)))

	require.NoError(t, coord.Flush(context.Background()))
	assert.Equal(t, 0, coord.Pending())
	assert.Equal(t, []string{"go"}, store.appliedVerbs())
}

func TestEnqueueDuringFlushIsNotLost(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	store := &blockingStore{started: started, release: release}
	coord := newTestCoordinator(t, store)

	require.NoError(t, coord.Enqueue(mustAttempt(t, "go", true)))

	done := make(chan error, 1)
	go func() { done <- coord.Flush(context.Background()) }()

	<-started // flush has snapshotted and is mid-delivery
	require.NoError(t, coord.Enqueue(mustAttempt(t, "see", true)))
	close(release)

	require.NoError(t, <-done)

	// The record enqueued mid-flush is still there for the next flush.
	assert.Equal(t, 1, coord.Pending())
	require.NoError(t, coord.Flush(context.Background()))
	assert.Equal(t, 0, coord.Pending())
}

type blockingStore struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) Apply(ctx context.Context, rec progress.AttemptRecord) error {
	b.once.Do(func() {
		close(b.started)
		<-b.release
	})
	return nil
}

func TestQueueFileRetainsInFlightEntries(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	store := &blockingStore{started: started, release: release}
	path := filepath.Join(t.TempDir(), "queue.json")
	coord, err := New(store, Options{Path: path, DeliveryTimeout: time.Second, Backoff: time.Millisecond})
	require.NoError(t, err)

	require.NoError(t, coord.Enqueue(mustAttempt(t, "go", true)))

	done := make(chan error, 1)
	go func() { done <- coord.Flush(context.Background()) }()
	<-started

	// A crash mid-flush must find the snapshotted entry on disk; it is
	// removed only once the remote confirms application.
	onDisk, err := loadQueue(path)
	require.NoError(t, err)
	require.Len(t, onDisk, 1)
	assert.Equal(t, StatusPending, onDisk[0].Status)
	assert.Equal(t, 1, coord.Pending())

	// An enqueue racing the flush must not clobber the in-flight entry in
	// the durable file either.
	require.NoError(t, coord.Enqueue(mustAttempt(t, "see", true)))
	onDisk, err = loadQueue(path)
	require.NoError(t, err)
	assert.Len(t, onDisk, 2)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, coord.Pending())
}

func TestAuthFailureKeepsEntriesQueued(t *testing.T) {
	// An expired session is not an entry-level rejection: nothing may be
	// dropped until the caller re-authenticates.
	store := &mockStore{
		apply: func(ctx context.Context, rec progress.AttemptRecord) error {
			return fmt.Errorf("%w: status 401", ErrAuthRequired)
		},
	}
	coord := newTestCoordinator(t, store)

	require.NoError(t, coord.Enqueue(mustAttempt(t, "go", true)))
	require.NoError(t, coord.Enqueue(mustAttempt(t, "see", false)))

	assert.ErrorIs(t, coord.Flush(context.Background()), ErrPartialFlush)
	assert.Equal(t, 2, coord.Pending())
	assert.Equal(t, StatePartialFailure, coord.State())
	assert.Empty(t, store.appliedVerbs())

	// With a fresh token everything buffered is still there to deliver.
	store.mu.Lock()
	store.apply = nil
	store.mu.Unlock()
	time.Sleep(2 * time.Millisecond)

	require.NoError(t, coord.Flush(context.Background()))
	assert.Equal(t, 0, coord.Pending())
	assert.Equal(t, []string{"go", "see"}, store.appliedVerbs())
}

func TestFlushOnEmptyQueueIsNoop(t *testing.T) {
	store := &mockStore{}
	coord := newTestCoordinator(t, store)

	require.NoError(t, coord.Flush(context.Background()))
	assert.Equal(t, StateIdle, coord.State())
	assert.Empty(t, store.appliedVerbs())
}

func TestBackoffSuppressesImmediateRetry(t *testing.T) {
	store := &mockStore{
		apply: func(ctx context.Context, rec progress.AttemptRecord) error {
			return errors.New("down")
		},
	}
	coord, err := New(store, Options{
		Path:            filepath.Join(t.TempDir(), "queue.json"),
		DeliveryTimeout: time.Second,
		Backoff:         time.Hour,
	})
	require.NoError(t, err)

	require.NoError(t, coord.Enqueue(mustAttempt(t, "go", true)))
	assert.ErrorIs(t, coord.Flush(context.Background()), ErrPartialFlush)

	attemptsBefore := len(store.appliedVerbs())
	// Inside the backoff window the flush is a silent no-op.
	require.NoError(t, coord.Flush(context.Background()))
	assert.Equal(t, attemptsBefore, len(store.appliedVerbs()))
	assert.Equal(t, 1, coord.Pending())
}
