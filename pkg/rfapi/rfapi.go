// Package rfapi exposes the capture/encode pipeline as a flat, C-API-shaped
// surface: opaque integer handles plus functions named after the
// specification's C entry points (CreateSession, RegisterRenderTarget,
// EncodeFrame, ...), so a cgo-facing wrapper or a scripting-language binding
// can sit on top of it without depending on any internal package directly.
package rfapi

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rfcore/rapidfire-go/internal/rfcontext"
	"github.com/rfcore/rapidfire-go/internal/rfencoder"
	"github.com/rfcore/rapidfire-go/internal/rfmouse"
	"github.com/rfcore/rapidfire-go/internal/rfparam"
	"github.com/rfcore/rapidfire-go/internal/rfsession"
	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

// SessionHandle is an opaque reference to a live session, the Go analog of
// RapidFire's RFSession* pointer handed back across the C ABI.
type SessionHandle int64

// Property is one named encoder/session setting, replacing the
// zero-terminated RFProperties array the original C API takes.
type Property struct {
	Name  string
	Value rfparam.Value
}

// VideoCodec selects the compression standard for CreateEncoder, mirroring
// RFVideoCodec.
type VideoCodec string

const (
	VideoCodecAVC  VideoCodec = "avc"
	VideoCodecHEVC VideoCodec = "hevc"
)

// EncodePreset mirrors RFEncodePreset.
type EncodePreset string

const (
	EncodePresetFast     EncodePreset = "fast"
	EncodePresetBalanced EncodePreset = "balanced"
	EncodePresetQuality  EncodePreset = "quality"
)

// OutputLayout selects the converted pixel layout a render target is
// processed into, mirroring rfcontext.OutputLayout.
type OutputLayout = rfcontext.OutputLayout

const (
	OutputNV12 = rfcontext.OutputNV12
	OutputI420 = rfcontext.OutputI420
	OutputRGBA = rfcontext.OutputRGBA
)

var (
	registryMu sync.Mutex
	registry   = map[SessionHandle]*rfsession.Session{}
	nextHandle atomic.Int64
)

// CreateSession allocates a new session with a software compute context
// and backend "identity" until CreateEncoder selects a different one. The
// returned handle is used by every other function in this package.
func CreateSession(width, height int) (SessionHandle, error) {
	return CreateSessionWithMouseData(width, height, false)
}

// CreateSessionWithMouseData is CreateSession plus RF_MOUSE_DATA: when
// mouseData is true the session instantiates a mouse-shape grabber, so
// GetMouseData/GetMouseData2 succeed instead of failing.
func CreateSessionWithMouseData(width, height int, mouseData bool) (SessionHandle, error) {
	s := rfsession.New(rfsession.Config{Width: width, Height: height, Backend: "identity", MouseData: mouseData})

	h := SessionHandle(nextHandle.Add(1))
	registryMu.Lock()
	registry[h] = s
	registryMu.Unlock()
	return h, nil
}

// DeleteSession closes and forgets the session, the equivalent of the
// original's destroyRFSession.
func DeleteSession(h SessionHandle) error {
	s, err := lookup(h)
	if err != nil {
		return err
	}
	registryMu.Lock()
	delete(registry, h)
	registryMu.Unlock()
	return s.Close()
}

// CreateEncoder selects the session's backend/codec/preset and builds its
// encoder, transitioning the session to Ready.
func CreateEncoder(h SessionHandle, backend string, codec VideoCodec, preset EncodePreset) error {
	s, err := lookup(h)
	if err != nil {
		return err
	}
	if err := s.ConfigureEncoder(backend, codecFrom(codec), presetFrom(preset)); err != nil {
		return err
	}
	return s.CreateEncoder()
}

// RegisterRenderTarget registers a render target of the given dimensions
// and format, returning its slot index.
func RegisterRenderTarget(h SessionHandle, width, height int, format rfcontext.Format) (int, error) {
	s, err := lookup(h)
	if err != nil {
		return 0, err
	}
	return s.RegisterRenderTarget(width, height, format)
}

// RemoveRenderTarget releases a previously registered render target slot.
func RemoveRenderTarget(h SessionHandle, slot int) error {
	s, err := lookup(h)
	if err != nil {
		return err
	}
	return s.RemoveRenderTarget(slot)
}

// EncodeFrame converts the render target at slot using pixels and submits
// the result to the encoder.
func EncodeFrame(h SessionHandle, slot int, pixels []byte, layout OutputLayout) error {
	s, err := lookup(h)
	if err != nil {
		return err
	}
	return s.EncodeFrame(slot, pixels, layout)
}

// GetEncodedFrame returns the oldest pending encoded payload.
func GetEncodedFrame(h SessionHandle) ([]byte, error) {
	s, err := lookup(h)
	if err != nil {
		return nil, err
	}
	return s.GetEncodedFrame()
}

// GetSourceFrame returns the converted pixel data for the in-flight FIFO
// head without draining it. Calling this before GetEncodedFrame
// guarantees both calls observe the same frame.
func GetSourceFrame(h SessionHandle) ([]byte, error) {
	s, err := lookup(h)
	if err != nil {
		return nil, err
	}
	return s.GetSourceFrame()
}

// RenderTargetState is the tri-state of a registered render target slot,
// mirroring rfcontext.RTState.
type RenderTargetState = rfcontext.RTState

const (
	RenderTargetInvalid = rfcontext.RTInvalid
	RenderTargetFree    = rfcontext.RTFree
	RenderTargetBlocked = rfcontext.RTBlocked
)

// GetRenderTargetState reports slot idx's current tri-state.
func GetRenderTargetState(h SessionHandle, idx int) (RenderTargetState, error) {
	s, err := lookup(h)
	if err != nil {
		return rfcontext.RTInvalid, err
	}
	return s.RenderTargetState(idx)
}

// Resize updates the session's working dimensions and arms the post-resize
// keyframe/frame-debt sequence.
func Resize(h SessionHandle, width, height int) error {
	s, err := lookup(h)
	if err != nil {
		return err
	}
	return s.Resize(width, height)
}

// SetParameter sets a named session/encoder-agnostic parameter, and
// SetEncodeParameter is its dynamic-encoder-parameter alias — the original
// API exposes both names for the same tri-state parameter map, so both are
// kept here for callers porting code written against either entry point.
func SetParameter(h SessionHandle, prop Property) error {
	s, err := lookup(h)
	if err != nil {
		return err
	}
	return s.SetParameter(prop.Name, prop.Value)
}

func SetEncodeParameter(h SessionHandle, prop Property) error {
	return SetParameter(h, prop)
}

// GetParameter and GetEncodeParameter read back a named parameter's
// current value.
func GetParameter(h SessionHandle, name string) (rfparam.Value, error) {
	s, err := lookup(h)
	if err != nil {
		return rfparam.Value{}, err
	}
	return s.GetParameter(name)
}

func GetEncodeParameter(h SessionHandle, name string) (rfparam.Value, error) {
	s, err := lookup(h)
	if err != nil {
		return rfparam.Value{}, err
	}
	return s.GetEncodeParameter(name)
}

// MouseData and MouseData2 are the v1/v2 cursor-shape payloads GetMouseData
// and GetMouseData2 return, mirroring RFMouseData/RFMouseData2.
type (
	MouseData  = rfmouse.MouseData
	MouseData2 = rfmouse.MouseData2
)

// ReleaseEventKind names one of a session's manual-reset events, mirroring
// RFNotification's RFDesktopNotification/RFMouseShapeNotification pair.
type ReleaseEventKind = rfsession.ReleaseEventKind

const (
	EventDesktopChange = rfsession.EventDesktopChange
	EventMouseShape    = rfsession.EventMouseShape
)

// GetMouseData returns the v1 cursor-shape payload for a session created
// with its mouse-data property set, optionally blocking until the shape
// changes or ReleaseEvent(EventMouseShape) fires.
func GetMouseData(ctx context.Context, h SessionHandle, waitForShapeChange bool) (MouseData, error) {
	s, err := lookup(h)
	if err != nil {
		return MouseData{}, err
	}
	return s.GetMouseData(ctx, waitForShapeChange)
}

// GetMouseData2 is GetMouseData's v2 counterpart.
func GetMouseData2(ctx context.Context, h SessionHandle, waitForShapeChange bool) (MouseData2, error) {
	s, err := lookup(h)
	if err != nil {
		return MouseData2{}, err
	}
	return s.GetMouseData2(ctx, waitForShapeChange)
}

// ReleaseEvent unblocks a thread currently waiting inside a session call
// for the named event kind, mirroring releaseSessionEvents.
func ReleaseEvent(h SessionHandle, kind ReleaseEventKind) error {
	s, err := lookup(h)
	if err != nil {
		return err
	}
	return s.ReleaseEvent(kind)
}

func lookup(h SessionHandle) (*rfsession.Session, error) {
	registryMu.Lock()
	s, ok := registry[h]
	registryMu.Unlock()
	if !ok {
		return nil, rfstatus.InvalidSession
	}
	return s, nil
}

func codecFrom(c VideoCodec) rfencoder.Codec {
	if c == VideoCodecHEVC {
		return rfencoder.CodecHEVC
	}
	return rfencoder.CodecAVC
}

func presetFrom(p EncodePreset) rfparam.Preset {
	switch p {
	case EncodePresetFast:
		return rfparam.PresetFast
	case EncodePresetQuality:
		return rfparam.PresetQuality
	default:
		return rfparam.PresetBalanced
	}
}
