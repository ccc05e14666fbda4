// Package rfsession implements the session state machine described in
// spec.md §4.7-§4.8: a Session owns one rfcontext.Context, one
// rfencoder.Encoder, and the render-target/result bookkeeping needed to
// drive encode_frame/get_encoded_frame/resize/set_parameter across state
// transitions, grounded in the teacher's Session type (session.go,
// session_capture.go) in the remote-desktop package this module started
// from.
package rfsession

// State is one node of the session lifecycle.
type State int

const (
	// StateCreated is the state right after construction: a context exists
	// but no encoder has been created yet.
	StateCreated State = iota
	// StateReady means an encoder exists and the session can accept
	// encode_frame calls.
	StateReady
	// StateEncoding is entered for the duration of a single encode_frame
	// call, guarding against concurrent encode/resize races.
	StateEncoding
	// StateResizing is entered while resize() is rebuilding render targets
	// and the encoder's internal buffers; encode_frame calls are rejected
	// with QueueFull-style backpressure until the transition completes.
	StateResizing
	// StateClosed is terminal; all further calls fail with InvalidSession.
	StateClosed
	// StateFailed is terminal and distinct from StateClosed: entered only
	// when a resize fails partway through. The render-target and frame
	// calls then return Fail; Session.Resize lists the calls that are not
	// gated on this state. Unlike StateClosed, the
	// underlying context/encoder are not released — the caller must still
	// call Close.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateReady:
		return "ready"
	case StateEncoding:
		return "encoding"
	case StateResizing:
		return "resizing"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PreprocessMode selects how the session waits for new frames to process,
// matching spec §4.8's two DOPP session modes.
type PreprocessMode int

const (
	// ModeUpdateOnChange processes a frame only when the desktop signals a
	// change event, the Go equivalent of the teacher's DXGI tight-loop
	// dispatch in captureLoopDXGI.
	ModeUpdateOnChange PreprocessMode = iota
	// ModeBlockUntilChange blocks the caller until a change is observed or a
	// timeout elapses, the equivalent of the teacher's ticker-paced
	// captureLoopTicker fallback.
	ModeBlockUntilChange
)

// frameDebt bounds how many additional forced preprocess passes a session
// runs after a resize, mirroring the teacher's postSwitchRepaints counter
// that keeps nudging the pipeline for a few frames after a monitor switch
// so the decoder has enough samples to stabilize at the new resolution.
const frameDebt = 3
