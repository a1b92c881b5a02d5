package syncqueue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"verbmaster/internal/progress"
)

// ErrPermanent marks a delivery failure that a retry cannot fix (the remote
// rejected the entry as invalid). Such entries are dropped, not requeued.
var ErrPermanent = errors.New("permanent delivery failure")

// ErrAuthRequired marks a delivery rejected for a missing or expired
// session. The entry itself is fine; it stays queued until the caller
// re-authenticates.
var ErrAuthRequired = errors.New("authentication required")

// Store is the remote progress store as seen by the coordinator. Apply must
// be idempotent with respect to the attempt's ID.
type Store interface {
	Apply(ctx context.Context, rec progress.AttemptRecord) error
}

// State of the coordinator's flush machine.
type State int32

const (
	StateIdle State = iota
	StateFlushing
	StatePartialFailure
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFlushing:
		return "flushing"
	case StatePartialFailure:
		return "partial-failure"
	default:
		return "unknown"
	}
}

type Options struct {
	// Path of the durable queue file.
	Path string
	// SendOnEnqueue triggers a one-shot delivery attempt for each newly
	// enqueued record.
	SendOnEnqueue bool
	// DeliveryTimeout bounds each per-entry delivery attempt.
	DeliveryTimeout time.Duration
	// Backoff is how long the coordinator stays quiet after a flush with
	// failures before it will flush again.
	Backoff time.Duration
}

// Coordinator reconciles locally buffered attempts with the remote store.
// Delivery is at-least-once; the store deduplicates by attempt ID. The
// coordinator is an explicit object with a New/Close lifecycle owned by the
// caller; there is no package-level instance.
type Coordinator struct {
	store Store
	opts  Options

	mu       sync.Mutex
	queue    []Entry
	inflight []Entry
	state    State
	retryAt  time.Time
}

func New(store Store, opts Options) (*Coordinator, error) {
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = 10 * time.Second
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 30 * time.Second
	}

	queue, err := loadQueue(opts.Path)
	if err != nil {
		return nil, err
	}
	return &Coordinator{store: store, opts: opts, queue: queue}, nil
}

// Enqueue buffers one attempt. It never fails because of network state; the
// only error source is the local durable write, and even then the record
// stays queued in memory.
func (c *Coordinator) Enqueue(rec progress.AttemptRecord) error {
	c.mu.Lock()
	c.queue = append(c.queue, Entry{Attempt: rec, Status: StatusPending})
	err := c.persistLocked()
	c.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("Failed to persist sync queue, record kept in memory")
	}
	if c.opts.SendOnEnqueue {
		// One-shot, best effort. Failure just leaves the record queued.
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.DeliveryTimeout)
		defer cancel()
		if ferr := c.Flush(ctx); ferr != nil {
			log.Debug().Err(ferr).Msg("Immediate delivery failed, record remains queued")
		}
	}
	return err
}

// Flush snapshots the queue, clears it, and delivers each snapshotted entry
// independently. Entries that fail delivery are put back on the live queue
// (ahead of records enqueued during the flush, preserving generation
// order); entries that succeed are gone for good. Returns ErrPartialFlush
// when at least one entry had to be requeued.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateFlushing {
		c.mu.Unlock()
		return nil
	}
	if c.state == StatePartialFailure && time.Now().Before(c.retryAt) {
		c.mu.Unlock()
		return nil
	}
	if len(c.queue) == 0 {
		c.state = StateIdle
		c.mu.Unlock()
		return nil
	}

	snapshot := c.queue
	c.queue = nil
	c.state = StateFlushing
	for i := range snapshot {
		snapshot[i].Status = StatusInFlight
	}
	// The snapshot stays on disk (via c.inflight) until the requeue step:
	// a crash mid-flush must not lose entries the remote never confirmed.
	c.inflight = snapshot
	c.persistLocked()
	c.mu.Unlock()

	var failed []Entry
	var dropped int
	for _, entry := range snapshot {
		if err := c.deliver(ctx, entry.Attempt); err != nil {
			if errors.Is(err, ErrPermanent) {
				dropped++
				log.Warn().Err(err).Str("verb", entry.Attempt.Verb).Str("attemptID", entry.Attempt.ID).
					Msg("Dropping permanently rejected attempt")
				continue
			}
			entry.Status = StatusFailedRetry
			entry.Retries++
			entry.LastError = err.Error()
			failed = append(failed, entry)
		}
	}

	c.mu.Lock()
	c.inflight = nil
	c.queue = append(failed, c.queue...)
	if len(failed) > 0 {
		c.state = StatePartialFailure
		c.retryAt = time.Now().Add(c.opts.Backoff)
	} else {
		c.state = StateIdle
	}
	c.persistLocked()
	pending := len(c.queue)
	c.mu.Unlock()

	log.Info().Int("delivered", len(snapshot)-len(failed)-dropped).Int("requeued", len(failed)).
		Int("dropped", dropped).Int("pending", pending).Msg("Flush complete")

	if len(failed) > 0 {
		return ErrPartialFlush
	}
	return nil
}

// ErrPartialFlush reports that a flush left entries in the queue.
var ErrPartialFlush = errors.New("some entries could not be delivered")

func (c *Coordinator) deliver(ctx context.Context, rec progress.AttemptRecord) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.DeliveryTimeout)
	defer cancel()
	return c.store.Apply(ctx, rec)
}

// Run flushes on a fixed interval until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Flush(ctx); err != nil {
				log.Debug().Err(err).Msg("Periodic flush incomplete")
			}
		}
	}
}

// Pending returns the number of undelivered entries, including any that a
// flush currently has in flight.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight) + len(c.queue)
}

// State returns the coordinator's current flush state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close persists the queue a final time.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persistLocked()
}

// persistLocked writes in-flight entries ahead of the live queue so nothing
// mid-delivery is dropped from the durable file by a concurrent enqueue.
func (c *Coordinator) persistLocked() error {
	all := make([]Entry, 0, len(c.inflight)+len(c.queue))
	all = append(all, c.inflight...)
	all = append(all, c.queue...)
	return saveQueue(c.opts.Path, all)
}
