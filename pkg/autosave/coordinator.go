// Package autosave debounces editor changes into serialized, race-safe
// persistence calls. The coordinator owns the "last successfully saved"
// snapshot and guarantees that at most one save is in flight, that a failed
// save never advances that baseline, and that changes arriving mid-save are
// saved by a follow-up cycle rather than dropped.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/bep/debounce"
)

// Status is the externally observable coordinator state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSaving  Status = "saving"
)

// DefaultDebounce is the quiet period applied when the caller passes a
// non-positive interval.
const DefaultDebounce = 2 * time.Second

// DefaultForceWait bounds how long ForceSave waits for an in-flight save.
const DefaultForceWait = 10 * time.Second

// ErrSaveInFlight is returned by ForceSave when an in-flight save does not
// settle within the configured wait bound.
var ErrSaveInFlight = errors.New("save still in flight")

// SnapshotFunc returns the serialized form of the data to persist.
type SnapshotFunc func() ([]byte, error)

// SaveFunc performs the actual persistence call. It is the only asynchronous
// boundary of the editor core.
type SaveFunc func(ctx context.Context, snapshot []byte) error

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger for deferred (debounced-path) save failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithForceWait overrides how long ForceSave waits for an in-flight save.
func WithForceWait(d time.Duration) Option {
	return func(c *Coordinator) {
		c.forceWait = d
	}
}

// Coordinator observes a mutable snapshot source and persists it. All methods
// are safe for concurrent use; the save callback itself is never invoked
// concurrently.
type Coordinator struct {
	snapshot  SnapshotFunc
	save      SaveFunc
	interval  time.Duration
	forceWait time.Duration
	logger    *slog.Logger
	schedule  func(func())

	mu        sync.Mutex
	baseline  string
	pending   bool
	saving    bool
	saveDone  chan struct{}
	closed    bool
	lastSaved time.Time
	lastErr   error
}

// New creates a Coordinator. The baseline starts empty, so a non-empty
// snapshot counts as unsaved until the first successful save; call Reset
// after loading already-persisted data.
func New(snapshot SnapshotFunc, save SaveFunc, interval time.Duration, opts ...Option) *Coordinator {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	c := &Coordinator{
		snapshot:  snapshot,
		save:      save,
		interval:  interval,
		forceWait: DefaultForceWait,
		logger:    logging.NewNop(),
		schedule:  debounce.New(interval),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset adopts the current snapshot as the saved baseline without persisting.
// Used right after loading a workflow from its store, when data and store
// already agree.
func (c *Coordinator) Reset() error {
	snap, err := c.snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot for baseline: %w", err)
	}
	c.mu.Lock()
	c.baseline = string(snap)
	c.pending = false
	c.lastErr = nil
	c.mu.Unlock()
	return nil
}

// Observe must be called after every state change. It is a no-op when the
// serialized data already equals the saved baseline, which keeps timer churn
// away when state oscillates back to a saved value.
func (c *Coordinator) Observe() {
	snap, err := c.snapshot()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		return
	}
	if string(snap) == c.baseline {
		c.mu.Unlock()
		return
	}
	c.pending = true
	c.mu.Unlock()

	c.schedule(c.flush)
}

// flush is the debounce timer target. Failures are recorded, not rethrown:
// the baseline stays behind, so the next change or a ForceSave retries.
func (c *Coordinator) flush() {
	snap, err := c.snapshot()
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.pending = false
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.pending = false
	if c.closed || string(snap) == c.baseline {
		c.mu.Unlock()
		return
	}
	if c.saving {
		// The in-flight completion re-checks dirtiness and reschedules, so
		// this change is not lost.
		c.mu.Unlock()
		return
	}
	done := c.begin()
	c.mu.Unlock()

	saveErr := c.save(context.Background(), snap)
	c.settle(snap, saveErr, done)

	if saveErr != nil {
		c.logger.Warn("autosave failed", "err", saveErr)
		return
	}

	// A change may have arrived while the save was in flight. It was captured
	// by Observe but its timer may already have fired; re-check and reschedule
	// so it is never dropped.
	c.rescheduleIfDirty()
}

// begin marks a save as in flight. Caller must hold c.mu.
func (c *Coordinator) begin() chan struct{} {
	done := make(chan struct{})
	c.saving = true
	c.saveDone = done
	return done
}

// settle records a save outcome. The baseline only moves forward on success,
// and only to the exact snapshot that was handed to the save call.
func (c *Coordinator) settle(snap []byte, err error, done chan struct{}) {
	c.mu.Lock()
	c.saving = false
	if err != nil {
		c.lastErr = err
	} else {
		c.baseline = string(snap)
		c.lastSaved = time.Now()
		c.lastErr = nil
	}
	c.mu.Unlock()
	close(done)
}

// ForceSave persists the current data immediately, bypassing the debounce
// window. If a save is in flight it waits (bounded by the force wait) for it
// to settle; when the concurrent save already persisted identical content,
// ForceSave is a no-op. Unlike the debounced path, failures are returned to
// the caller.
func (c *Coordinator) ForceSave(ctx context.Context) error {
	deadline := time.Now().Add(c.forceWait)

	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil
		}
		if c.saving {
			done := c.saveDone
			c.mu.Unlock()

			remaining := time.Until(deadline)
			if remaining <= 0 {
				return ErrSaveInFlight
			}
			timer := time.NewTimer(remaining)
			select {
			case <-done:
				timer.Stop()
				continue
			case <-timer.C:
				return ErrSaveInFlight
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
		c.mu.Unlock()

		snap, err := c.snapshot()
		if err != nil {
			return fmt.Errorf("failed to snapshot for save: %w", err)
		}

		c.mu.Lock()
		if string(snap) == c.baseline {
			c.pending = false
			c.mu.Unlock()
			return nil
		}
		if c.saving {
			// A debounced save slipped in between snapshot and lock; wait for
			// it and re-evaluate.
			c.mu.Unlock()
			continue
		}
		c.pending = false
		done := c.begin()
		c.mu.Unlock()

		saveErr := c.save(ctx, snap)
		c.settle(snap, saveErr, done)
		if saveErr != nil {
			return fmt.Errorf("failed to save: %w", saveErr)
		}
		// A change whose debounce fired during this save found the saving
		// flag set and backed off; pick it up here so it is not stranded.
		c.rescheduleIfDirty()
		return nil
	}
}

// rescheduleIfDirty arms the debounce timer when unsaved data remains after a
// save settles.
func (c *Coordinator) rescheduleIfDirty() {
	cur, err := c.snapshot()
	if err != nil {
		return
	}
	c.mu.Lock()
	dirty := !c.closed && string(cur) != c.baseline
	if dirty {
		c.pending = true
	}
	c.mu.Unlock()
	if dirty {
		c.schedule(c.flush)
	}
}

// HasUnsavedChanges reports whether the current serialization differs from
// the last successfully saved snapshot. A snapshot error counts as unsaved:
// that is what ForceSave would trip over too.
func (c *Coordinator) HasUnsavedChanges() bool {
	snap, err := c.snapshot()
	if err != nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(snap) != c.baseline
}

// Saving reports whether a save is currently in flight.
func (c *Coordinator) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

// LastSaved returns the wall time of the last successful save, zero if none.
func (c *Coordinator) LastSaved() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSaved
}

// Err returns the most recent save or snapshot error. It is cleared by the
// next successful save.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Status returns the coarse state: saving, pending (debounce armed), or idle.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.saving:
		return StatusSaving
	case c.pending:
		return StatusPending
	default:
		return StatusIdle
	}
}

// Close tears the coordinator down. A pending debounce fire becomes a no-op;
// an in-flight save completes but will not reschedule anything.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.pending = false
	c.mu.Unlock()
}
