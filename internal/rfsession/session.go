package rfsession

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/rfcore/rapidfire-go/internal/rfcontext"
	"github.com/rfcore/rapidfire-go/internal/rfencoder"
	"github.com/rfcore/rapidfire-go/internal/rflock"
	"github.com/rfcore/rapidfire-go/internal/rflog"
	"github.com/rfcore/rapidfire-go/internal/rfmouse"
	"github.com/rfcore/rapidfire-go/internal/rfparam"
	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

var log = rflog.L("rfsession")

// globalLock serializes session creation (New; Close does not take it),
// mirroring spec's "Global singletons" design note: global-session-lock >
// session-lock > map-internal-lock ordering. It is a plain package-level
// mutex, the same shape as the teacher's hardwareFactoriesMu in encoder.go.
var globalLock sync.Mutex

// Config configures a new Session.
type Config struct {
	Width, Height int
	Format        rfcontext.Format
	Backend       string // "identity", "difference", or "amf"
	Codec         rfencoder.Codec
	Preset        rfparam.Preset
	Mode          PreprocessMode
	// MouseData mirrors RF_MOUSE_DATA: when set, New instantiates a
	// mouse-shape grabber alongside the session (spec §4.7 "Creation").
	MouseData bool
}

// Session owns one compute context and one encoder instance and serializes
// access to both behind a single state machine, grounded in the teacher's
// Session struct: sync.RWMutex-guarded fields, atomic flags for
// cross-goroutine signals, and a done channel for shutdown.
type Session struct {
	id string

	mu    sync.RWMutex
	state State

	ctx     *rfcontext.Context
	encoder rfencoder.Encoder
	cfg     Config

	// forceKeyframePending mirrors the teacher's clickFlush atomic flag:
	// set by an external caller (e.g. after a resize), consumed by the
	// next encode_frame call.
	forceKeyframePending atomic.Bool

	// resizeDebt counts remaining forced preprocess passes after a resize,
	// the session-level equivalent of the teacher's postSwitchRepaints.
	resizeDebt atomic.Int32

	// changeDebt counts remaining preprocess passes a desktop session
	// should treat as dirty without waiting on another change notification,
	// implementing spec §4.8 "Frame debt": the same postSwitchRepaints
	// shape as resizeDebt, armed by a real change notification instead of
	// a resize.
	changeDebt atomic.Int32

	mouseGrabber   *rfmouse.Grabber
	desktopRelease *rflock.ManualResetEvent

	// fifo holds the result-ring indices that EncodeFrame has handed to
	// the encoder but GetEncodedFrame has not yet drained, the session's
	// in-flight FIFO (spec §3 "In-flight FIFO", §8 invariant 1). Its
	// length is bounded by rfcontext.NumResultBuffers: EncodeFrame refuses
	// QueueFull once it is full, and GetEncodedFrame pops the oldest
	// entry and releases its ring slot once the encoder yields output.
	fifoMu sync.Mutex
	fifo   []int

	closeOnce sync.Once
	done      chan struct{}
}

// New constructs a Session in StateCreated with a software compute
// context. Windows callers needing the hardware D3D11 path should build
// the rfcontext.Context via rfcontext.NewWindowsContext and attach it with
// WithContext before calling CreateEncoder.
func New(cfg Config) *Session {
	globalLock.Lock()
	defer globalLock.Unlock()

	s := &Session{
		id:             uuid.NewString(),
		state:          StateCreated,
		ctx:            rfcontext.NewSoftwareContext(),
		cfg:            cfg,
		desktopRelease: rflock.NewManualResetEvent(),
		done:           make(chan struct{}),
	}
	if cfg.MouseData {
		s.mouseGrabber = rfmouse.New()
	}
	log.Info("session created", "session", s.id, "width", cfg.Width, "height", cfg.Height, "mouseData", cfg.MouseData)
	return s
}

// WithContext replaces the session's compute context before an encoder is
// created, letting Windows callers plug in a D3D11-backed rfcontext.Context
// built via rfcontext.NewWindowsContext.
func (s *Session) WithContext(ctx *rfcontext.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCreated {
		return rfstatus.InvalidSession
	}
	s.ctx.Close()
	s.ctx = ctx
	return nil
}

// ID returns the session's diagnostic identifier.
func (s *Session) ID() string { return s.id }

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ConfigureEncoder overrides the backend/codec/preset a subsequent
// CreateEncoder call uses. Valid only while the session is still Created,
// letting callers that build a Session before knowing the final encoder
// choice (e.g. the rfapi façade) set it in a second step.
func (s *Session) ConfigureEncoder(backend string, codec rfencoder.Codec, preset rfparam.Preset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCreated {
		return rfstatus.InvalidSession
	}
	s.cfg.Backend = backend
	s.cfg.Codec = codec
	s.cfg.Preset = preset
	return nil
}

// CreateEncoder builds the configured encoder backend and transitions the
// session from Created to Ready.
func (s *Session) CreateEncoder() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCreated {
		return rfstatus.InvalidSession
	}

	backend := s.cfg.Backend
	if backend == "" {
		backend = "identity"
	}
	enc, err := rfencoder.New(backend, rfencoder.Config{
		Codec:  s.cfg.Codec,
		Preset: s.cfg.Preset,
		Width:  s.cfg.Width,
		Height: s.cfg.Height,
	})
	if err != nil {
		return err
	}
	s.encoder = enc
	s.state = StateReady
	log.Info("encoder created", "session", s.id, "backend", backend)
	return nil
}

// RegisterRenderTarget registers a render target with the session's
// context and returns its slot index.
func (s *Session) RegisterRenderTarget(width, height int, format rfcontext.Format) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return 0, rfstatus.InvalidSession
	}
	if s.state == StateFailed {
		return 0, rfstatus.Fail
	}
	return s.ctx.RegisterImage(width, height, format)
}

// RemoveRenderTarget releases a previously registered render target slot.
func (s *Session) RemoveRenderTarget(idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return rfstatus.InvalidSession
	}
	if s.state == StateFailed {
		return rfstatus.Fail
	}
	return s.ctx.UnregisterImage(idx)
}

// EncodeFrame converts the render target at idx and submits the result to
// the encoder. It transitions through StateEncoding for the duration of
// the call so a concurrent Resize cannot observe a half-updated encoder.
//
// The result-ring slot ProcessBuffer acquires stays acquired — pushed onto
// the session's in-flight FIFO — for as long as the encoded payload it
// produced hasn't been drained by GetEncodedFrame. Once NUM_RESULTS slots
// are in flight, a further EncodeFrame fails QueueFull rather than
// silently dropping the fourth frame (spec §8 invariant 1, scenario 4).
func (s *Session) EncodeFrame(idx int, pixels []byte, layout rfcontext.OutputLayout) error {
	s.mu.Lock()
	if s.state != StateReady {
		cur := s.state
		s.mu.Unlock()
		switch cur {
		case StateClosed:
			return rfstatus.InvalidSession
		case StateFailed:
			return rfstatus.Fail
		default:
			return rfstatus.QueueFull
		}
	}
	s.state = StateEncoding
	ctx, enc := s.ctx, s.encoder
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.state == StateEncoding {
			s.state = StateReady
		}
		s.mu.Unlock()
	}()

	s.fifoMu.Lock()
	if len(s.fifo) >= rfcontext.NumResultBuffers {
		s.fifoMu.Unlock()
		return rfstatus.QueueFull
	}
	s.fifoMu.Unlock()

	resultIdx, err := ctx.ProcessBuffer(idx, pixels, layout)
	if err != nil {
		return err
	}
	result, err := ctx.PeekResult(resultIdx)
	if err != nil {
		ctx.ReleaseResult(resultIdx)
		return err
	}

	if s.forceKeyframePending.CompareAndSwap(true, false) {
		_ = enc.SetParameter(rfparam.AVCForceIFrame, rfparam.BoolValue(true))
	}

	if err := enc.Encode(result.Data); err != nil {
		ctx.ReleaseResult(resultIdx)
		return err
	}

	s.fifoMu.Lock()
	s.fifo = append(s.fifo, resultIdx)
	s.fifoMu.Unlock()
	return nil
}

// GetEncodedFrame returns the next available encoded payload, draining the
// oldest entry of the in-flight FIFO and releasing its result-ring slot so
// a subsequent EncodeFrame can reuse it.
func (s *Session) GetEncodedFrame() ([]byte, error) {
	s.mu.RLock()
	ctx, enc := s.ctx, s.encoder
	state := s.state
	s.mu.RUnlock()
	if state == StateFailed {
		return nil, rfstatus.Fail
	}
	if state == StateClosed || enc == nil {
		return nil, rfstatus.InvalidSession
	}

	payload, err := enc.GetEncodedFrame()
	if err != nil {
		return nil, err
	}

	s.fifoMu.Lock()
	if len(s.fifo) > 0 {
		resultIdx := s.fifo[0]
		s.fifo = s.fifo[1:]
		s.fifoMu.Unlock()
		if _, err := ctx.GetResult(resultIdx); err != nil {
			log.Warn("in-flight FIFO drain failed", "session", s.id, "error", err)
		}
	} else {
		s.fifoMu.Unlock()
	}

	return payload, nil
}

// GetSourceFrame peeks at the in-flight FIFO head and returns its
// host-visible converted pixel data without draining it, implementing
// get_source_frame (spec §4.7/§6): "waits on its DMA-done event" has
// already happened by the time a result lands in the FIFO, since
// EncodeFrame only pushes an index there once ProcessBuffer/PeekResult
// have completed. Calling this before GetEncodedFrame guarantees the two
// calls observe the same frame (spec §8), because neither call mutates
// the FIFO head — only GetEncodedFrame's drain does.
func (s *Session) GetSourceFrame() ([]byte, error) {
	s.mu.RLock()
	ctx := s.ctx
	state := s.state
	s.mu.RUnlock()
	if state == StateFailed {
		return nil, rfstatus.Fail
	}
	if state == StateClosed {
		return nil, rfstatus.InvalidSession
	}

	s.fifoMu.Lock()
	if len(s.fifo) == 0 {
		s.fifoMu.Unlock()
		return nil, rfstatus.NoEncodedFrame
	}
	resultIdx := s.fifo[0]
	s.fifoMu.Unlock()

	result, err := ctx.PeekResult(resultIdx)
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

// RenderTargetState reports the tri-state of a registered render target
// slot, implementing get_render_target_state (spec §6).
func (s *Session) RenderTargetState(idx int) (rfcontext.RTState, error) {
	s.mu.RLock()
	ctx := s.ctx
	state := s.state
	s.mu.RUnlock()
	if state == StateClosed {
		return rfcontext.RTInvalid, rfstatus.InvalidSession
	}
	return ctx.RenderTargetState(idx)
}

// SetParameter forwards to the active encoder's parameter map.
func (s *Session) SetParameter(name string, value rfparam.Value) error {
	s.mu.RLock()
	enc := s.encoder
	s.mu.RUnlock()
	if enc == nil {
		return rfstatus.InvalidSession
	}
	return enc.SetParameter(name, value)
}

// GetParameter forwards to the active encoder's parameter map.
func (s *Session) GetParameter(name string) (rfparam.Value, error) {
	s.mu.RLock()
	enc := s.encoder
	s.mu.RUnlock()
	if enc == nil {
		return rfparam.Value{}, rfstatus.InvalidSession
	}
	return enc.GetParameter(name)
}

// GetEncodeParameter is get_encode_parameter (spec §4.7): reads name
// through the active encoder's codec-scoped get_parameter(name, codec),
// passing the session's own configured codec, then translates the
// returned access state into the {OK, ParamAccessDenied,
// InvalidEncoderParameter} trio the C API exposes.
func (s *Session) GetEncodeParameter(name string) (rfparam.Value, error) {
	s.mu.RLock()
	enc, codec := s.encoder, s.cfg.Codec
	s.mu.RUnlock()
	if enc == nil {
		return rfparam.Value{}, rfstatus.InvalidSession
	}
	value, state := enc.GetParameterState(name, codec)
	switch state {
	case rfparam.StateReady:
		return value, nil
	case rfparam.StateBlocked:
		return value, rfstatus.ParamAccessDenied
	default:
		return value, rfstatus.InvalidEncoderParameter
	}
}

// Resize transitions through StateResizing while the session drops all
// render targets and rebuilds the encoder's dimension-dependent internal
// state (spec §4.7 "resize(w, h)"), then arms a forced-keyframe request and
// a frameDebt worth of forced preprocess passes so a consumer's decoder
// gets enough samples at the new resolution to stabilize, the same shape
// as the teacher's post-monitor-switch postSwitchRepaints counter.
//
// On success the caller must re-register its render targets before the
// next EncodeFrame. On failure the session transitions to StateFailed:
// RegisterRenderTarget, RemoveRenderTarget, EncodeFrame, GetEncodedFrame
// and GetSourceFrame then return Fail, a further Resize returns
// InvalidSession, and the parameter, mouse-data, ReleaseEvent and
// RenderTargetState calls are not gated on StateFailed.
func (s *Session) Resize(width, height int) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return rfstatus.InvalidSession
	}
	enc := s.encoder
	if !enc.IsResizeSupported() {
		s.mu.Unlock()
		return rfstatus.Fail
	}
	s.state = StateResizing
	ctx := s.ctx
	s.mu.Unlock()

	ctx.ResetRenderTargets()

	if err := enc.Resize(width, height); err != nil {
		s.mu.Lock()
		s.state = StateFailed
		s.mu.Unlock()
		log.Warn("session resize failed", "session", s.id, "error", err)
		return rfstatus.Fail
	}

	s.mu.Lock()
	s.cfg.Width, s.cfg.Height = width, height
	s.state = StateReady
	s.mu.Unlock()

	s.forceKeyframePending.Store(true)
	s.resizeDebt.Store(frameDebt)
	log.Info("session resized", "session", s.id, "width", width, "height", height)
	return nil
}

// ConsumeResizeDebt reports and decrements one unit of post-resize forced
// preprocessing debt, returning true if the caller should force an extra
// pass this iteration.
func (s *Session) ConsumeResizeDebt() bool {
	for {
		cur := s.resizeDebt.Load()
		if cur <= 0 {
			return false
		}
		if s.resizeDebt.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

// ArmChangeDebt resets the post-change-notification dirty window to
// frameDebt passes, called whenever a desktop change notification actually
// fires (spec §4.8 "Frame debt": "after any change notification, the next
// frame_continue_count = 3 frames are considered dirty").
func (s *Session) ArmChangeDebt() {
	s.changeDebt.Store(frameDebt)
}

// ConsumeChangeDebt reports and decrements one unit of post-change dirty
// window remaining, returning true if the caller should treat this pass as
// dirty without waiting for another notification.
func (s *Session) ConsumeChangeDebt() bool {
	for {
		cur := s.changeDebt.Load()
		if cur <= 0 {
			return false
		}
		if s.changeDebt.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

// Mode returns the session's configured preprocess dispatch mode.
func (s *Session) Mode() PreprocessMode { return s.cfg.Mode }

// Close releases the session's context and encoder exactly once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		close(s.done)
		if s.encoder != nil {
			err = s.encoder.Close()
		}
		if s.mouseGrabber != nil {
			s.mouseGrabber.Close()
		}
		s.ctx.Close()
		s.state = StateClosed
		log.Info("session closed", "session", s.id)
	})
	return err
}
