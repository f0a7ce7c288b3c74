package autosave_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/lattice/pkg/autosave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doc is a mutable data source standing in for the editor's workflow.
type doc struct {
	mu sync.Mutex
	v  string
}

func (d *doc) set(s string) {
	d.mu.Lock()
	d.v = s
	d.mu.Unlock()
}

func (d *doc) snapshot() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return []byte(d.v), nil
}

// recorder is a SaveFunc that tracks calls and can be slowed down or made to
// fail.
type recorder struct {
	mu       sync.Mutex
	saved    []string
	attempts int
	delay    time.Duration
	err      error
}

func (r *recorder) save(ctx context.Context, snap []byte) error {
	r.mu.Lock()
	r.attempts++
	delay, err := r.delay, r.err
	r.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.saved = append(r.saved, string(snap))
	r.mu.Unlock()
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return ""
	}
	return r.saved[len(r.saved)-1]
}

func (r *recorder) fail(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

func TestDebounceCoalescesBurst(t *testing.T) {
	d := &doc{v: "v0"}
	rec := &recorder{}
	c := autosave.New(d.snapshot, rec.save, 80*time.Millisecond)
	defer c.Close()
	require.NoError(t, c.Reset())

	d.set("v1")
	c.Observe()
	time.Sleep(40 * time.Millisecond)
	d.set("v2")
	c.Observe() // resets the timer

	// The first timer would have fired by now if the second change had not
	// reset it.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, rec.count(), "save must wait for a full quiet period")

	require.Eventually(t, func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "v2", rec.last(), "the snapshot to save is always the latest")
	assert.False(t, c.HasUnsavedChanges())
	assert.Equal(t, autosave.StatusIdle, c.Status())
	assert.False(t, c.LastSaved().IsZero())
}

func TestObserveCleanIsNoOp(t *testing.T) {
	d := &doc{v: "stable"}
	rec := &recorder{}
	c := autosave.New(d.snapshot, rec.save, 30*time.Millisecond)
	defer c.Close()
	require.NoError(t, c.Reset())

	// State oscillated and came back to the saved value.
	c.Observe()
	c.Observe()

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
	assert.Equal(t, autosave.StatusIdle, c.Status())
}

func TestForceSaveIdempotent(t *testing.T) {
	d := &doc{v: "v0"}
	rec := &recorder{}
	c := autosave.New(d.snapshot, rec.save, time.Hour) // debounce never fires
	defer c.Close()

	d.set("v1")
	c.Observe()

	require.NoError(t, c.ForceSave(context.Background()))
	require.NoError(t, c.ForceSave(context.Background()))

	assert.Equal(t, 1, rec.count(), "second ForceSave with no intervening change must be a no-op")
	assert.Equal(t, "v1", rec.last())
}

func TestForceSaveWaitsForInFlight(t *testing.T) {
	d := &doc{v: "v0"}
	rec := &recorder{delay: 120 * time.Millisecond}
	c := autosave.New(d.snapshot, rec.save, 20*time.Millisecond)
	defer c.Close()
	require.NoError(t, c.Reset())

	d.set("v1")
	c.Observe()

	// Let the debounced save start.
	require.Eventually(t, func() bool { return c.Saving() }, time.Second, 5*time.Millisecond)

	// No new data since the in-flight save took its snapshot: ForceSave must
	// wait it out and then do nothing.
	require.NoError(t, c.ForceSave(context.Background()))
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, "v1", rec.last())
}

func TestChangeDuringSaveIsNotLost(t *testing.T) {
	d := &doc{v: "v0"}
	rec := &recorder{delay: 100 * time.Millisecond}
	c := autosave.New(d.snapshot, rec.save, 20*time.Millisecond)
	defer c.Close()
	require.NoError(t, c.Reset())

	d.set("v1")
	c.Observe()
	require.Eventually(t, func() bool { return c.Saving() }, time.Second, 5*time.Millisecond)

	// Mutate while the first save is in flight.
	d.set("v2")
	c.Observe()

	require.Eventually(t, func() bool { return rec.last() == "v2" }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, rec.count())
	assert.False(t, c.HasUnsavedChanges(), "final baseline must match the latest data, not an intermediate")
}

func TestDebouncedFailureIsRecordedAndRetriable(t *testing.T) {
	d := &doc{v: "v0"}
	rec := &recorder{}
	boom := errors.New("kv store unavailable")
	rec.fail(boom)

	c := autosave.New(d.snapshot, rec.save, 20*time.Millisecond)
	defer c.Close()
	require.NoError(t, c.Reset())

	d.set("v1")
	c.Observe()

	require.Eventually(t, func() bool { return c.Err() != nil }, 2*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, c.Err(), boom)
	assert.True(t, c.HasUnsavedChanges(), "failed save must not advance the baseline")
	assert.Equal(t, 0, rec.count())

	// No automatic timer retry: the attempt count stays put until new input.
	attemptsAfterFailure := func() int { rec.mu.Lock(); defer rec.mu.Unlock(); return rec.attempts }()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, attemptsAfterFailure, func() int { rec.mu.Lock(); defer rec.mu.Unlock(); return rec.attempts }())

	// Manual retry succeeds and clears the error.
	rec.fail(nil)
	require.NoError(t, c.ForceSave(context.Background()))
	assert.Equal(t, "v1", rec.last())
	assert.NoError(t, c.Err())
	assert.False(t, c.HasUnsavedChanges())
}

func TestForceSaveRethrows(t *testing.T) {
	d := &doc{v: "v1"}
	rec := &recorder{}
	boom := errors.New("quota exceeded")
	rec.fail(boom)

	c := autosave.New(d.snapshot, rec.save, time.Hour)
	defer c.Close()

	err := c.ForceSave(context.Background())
	assert.ErrorIs(t, err, boom, "forced saves surface the failure to the caller")
	assert.True(t, c.HasUnsavedChanges())
}

func TestForceSaveBoundedWait(t *testing.T) {
	d := &doc{v: "v0"}
	rec := &recorder{delay: 500 * time.Millisecond}
	c := autosave.New(d.snapshot, rec.save, 10*time.Millisecond,
		autosave.WithForceWait(50*time.Millisecond))
	defer c.Close()
	require.NoError(t, c.Reset())

	d.set("v1")
	c.Observe()
	require.Eventually(t, func() bool { return c.Saving() }, time.Second, 5*time.Millisecond)

	d.set("v2")
	err := c.ForceSave(context.Background())
	assert.ErrorIs(t, err, autosave.ErrSaveInFlight, "a save slower than the wait bound is reported, not doubled")
}

func TestCloseCancelsPendingSave(t *testing.T) {
	d := &doc{v: "v0"}
	rec := &recorder{}
	c := autosave.New(d.snapshot, rec.save, 30*time.Millisecond)
	require.NoError(t, c.Reset())

	d.set("v1")
	c.Observe()
	c.Close()

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 0, rec.count(), "no save may fire after teardown")
}

func TestStatusTransitions(t *testing.T) {
	d := &doc{v: "v0"}
	rec := &recorder{delay: 60 * time.Millisecond}
	c := autosave.New(d.snapshot, rec.save, 30*time.Millisecond)
	defer c.Close()
	require.NoError(t, c.Reset())

	assert.Equal(t, autosave.StatusIdle, c.Status())

	d.set("v1")
	c.Observe()
	assert.Equal(t, autosave.StatusPending, c.Status())

	require.Eventually(t, func() bool { return c.Status() == autosave.StatusSaving }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return c.Status() == autosave.StatusIdle }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, rec.count())
}
