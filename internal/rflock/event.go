package rflock

import (
	"context"
	"sync"
)

// ManualResetEvent mirrors a Win32 manual-reset event object (CreateEvent
// with bManualReset=TRUE, signaled via SetEvent, cleared via ResetEvent):
// once Signal is called the event stays set until Reset runs, and any
// number of concurrent Wait calls unblock immediately while it is set.
// Used to implement release_event's desktop-change and mouse-shape kinds,
// which the original signals through exactly this kind of Win32 event
// handle (RFGLDOPPCapture's m_hDesktopEvent).
type ManualResetEvent struct {
	mu sync.Mutex
	ch chan struct{}
}

// NewManualResetEvent returns an event in the unset state.
func NewManualResetEvent() *ManualResetEvent {
	return &ManualResetEvent{ch: make(chan struct{})}
}

// Signal sets the event. Redundant calls while already set are a no-op.
func (e *ManualResetEvent) Signal() {
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.ch:
	default:
		close(e.ch)
	}
}

// Reset clears the event.
func (e *ManualResetEvent) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.ch:
		e.ch = make(chan struct{})
	default:
	}
}

// C returns the event's current underlying channel, closed when the event
// is signaled, for direct use in a select statement. Reset swaps in a new
// channel, so a select spanning a Reset should refetch C().
func (e *ManualResetEvent) C() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ch
}

// Wait blocks until the event is signaled or ctx is done, returning ctx's
// error in the latter case.
func (e *ManualResetEvent) Wait(ctx context.Context) error {
	e.mu.Lock()
	ch := e.ch
	e.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
