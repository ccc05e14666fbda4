package rflock

import "sync/atomic"

// Gate wraps a GPU-side completion signal (a D3D11 query, a fence, a DOPP
// event handle) so that releasing it is idempotent: only the first Release
// call after an Arm actually runs the release function, matching the
// teacher's *Once-guarded cleanup fields in session.go (cleanupOnce,
// stopOnce) generalized to a reusable, re-armable type instead of a single
// lifetime use.
type Gate struct {
	armed   atomic.Bool
	release func()
}

// NewGate returns a Gate not yet armed; Release is a no-op until Arm runs.
func NewGate() *Gate {
	return &Gate{}
}

// Arm associates release with the next Release call and marks the gate
// armed. Arming an already-armed gate replaces the pending release func
// without running the previous one — callers that need the old one run
// must Release before re-arming.
func (g *Gate) Arm(release func()) {
	g.release = release
	g.armed.Store(true)
}

// Release runs the armed release function exactly once. Calling Release on
// a disarmed or already-released gate is a safe no-op.
func (g *Gate) Release() {
	if !g.armed.CompareAndSwap(true, false) {
		return
	}
	if g.release != nil {
		g.release()
	}
}

// Armed reports whether a release is currently pending.
func (g *Gate) Armed() bool {
	return g.armed.Load()
}
