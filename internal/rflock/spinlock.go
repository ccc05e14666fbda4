// Package rflock provides the small concurrency primitives shared by the
// result buffer ring, the difference encoder's tile buffers, and the
// session state machine: a bounded spin-wait acquire for buffers that are
// briefly held by a GPU readback, a gate that guarantees a release signal
// fires exactly once regardless of how many goroutines observe it, and a
// manual-reset event mirroring the Win32 event objects release_event
// signals to unblock a thread waiting inside a session call.
package rflock

import (
	"time"

	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

// SpinAcquire attempts to acquire via try up to maxSpins times, sleeping
// interval between attempts, mirroring lock_mapped_buffer's 100-spin,
// 1ms-per-spin busy wait before giving up with QueueFull. try should be a
// non-blocking CompareAndSwap-style check that returns true on success.
func SpinAcquire(maxSpins int, interval time.Duration, try func() bool) error {
	for i := 0; i < maxSpins; i++ {
		if try() {
			return nil
		}
		if i < maxSpins-1 {
			time.Sleep(interval)
		}
	}
	return rfstatus.QueueFull
}

// DefaultSpinCount and DefaultSpinInterval match the original
// lock_mapped_buffer tuning: 100 attempts at 1ms apart, for a worst-case
// 100ms stall before a caller sees QueueFull.
const (
	DefaultSpinCount    = 100
	DefaultSpinInterval = time.Millisecond
)
