package rflock

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

func TestSpinAcquireSucceedsEventually(t *testing.T) {
	var attempts int
	err := SpinAcquire(5, time.Millisecond, func() bool {
		attempts++
		return attempts == 3
	})
	if err != nil {
		t.Fatalf("SpinAcquire: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestSpinAcquireReturnsQueueFull(t *testing.T) {
	err := SpinAcquire(3, time.Millisecond, func() bool { return false })
	if !errors.Is(err, rfstatus.QueueFull) {
		t.Fatalf("err = %v, want QueueFull", err)
	}
}

func TestGateReleasesExactlyOnce(t *testing.T) {
	g := NewGate()
	var count atomic.Int32
	g.Arm(func() { count.Add(1) })

	if !g.Armed() {
		t.Fatal("expected gate to be armed")
	}

	g.Release()
	g.Release()
	g.Release()

	if got := count.Load(); got != 1 {
		t.Fatalf("release ran %d times, want 1", got)
	}
	if g.Armed() {
		t.Fatal("expected gate to be disarmed after release")
	}
}

func TestGateReleaseNoopWhenUnarmed(t *testing.T) {
	g := NewGate()
	g.Release() // must not panic
}

func TestRingAcquireReleaseRoundRobin(t *testing.T) {
	r := NewRing(3)

	a, ok := r.Acquire()
	if !ok || a != 0 {
		t.Fatalf("first acquire = (%d, %v), want (0, true)", a, ok)
	}
	b, ok := r.Acquire()
	if !ok || b != 1 {
		t.Fatalf("second acquire = (%d, %v), want (1, true)", b, ok)
	}
	c, ok := r.Acquire()
	if !ok || c != 2 {
		t.Fatalf("third acquire = (%d, %v), want (2, true)", c, ok)
	}

	if _, ok := r.Acquire(); ok {
		t.Fatal("expected ring to be exhausted")
	}

	r.Release(a)
	d, ok := r.Acquire()
	if !ok || d != 0 {
		t.Fatalf("acquire after release = (%d, %v), want (0, true)", d, ok)
	}
}

func TestRingSetGet(t *testing.T) {
	r := NewRing(2)
	slot, _ := r.Acquire()
	r.Set(slot, "payload")

	v, inUse := r.Get(slot)
	if !inUse || v != "payload" {
		t.Fatalf("Get = (%v, %v), want (\"payload\", true)", v, inUse)
	}

	r.Release(slot)
	v, inUse = r.Get(slot)
	if inUse || v != nil {
		t.Fatalf("Get after release = (%v, %v), want (nil, false)", v, inUse)
	}
}

func TestManualResetEventWaitUnblocksOnSignal(t *testing.T) {
	e := NewManualResetEvent()
	done := make(chan error, 1)
	go func() {
		done <- e.Wait(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Signal")
	case <-time.After(20 * time.Millisecond):
	}

	e.Signal()
	if err := <-done; err != nil {
		t.Fatalf("Wait after Signal: %v", err)
	}
}

func TestManualResetEventStaysSetUntilReset(t *testing.T) {
	e := NewManualResetEvent()
	e.Signal()

	if err := e.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	if err := e.Wait(context.Background()); err != nil {
		t.Fatalf("second Wait: %v", err)
	}

	e.Reset()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := e.Wait(ctx); err == nil {
		t.Fatal("expected Wait to time out after Reset")
	}
}
