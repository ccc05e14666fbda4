package rfencoder

import (
	"fmt"
	"sync"
	"time"

	"github.com/rfcore/rapidfire-go/internal/rfparam"
	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

func init() {
	Register("amf", newAMFEncoder)
}

// maxSubmitRetries bounds how many times SubmitInput retries on a full
// queue before giving up, matching RFEncoderAMF's uiFailedSubmitCount < 10
// loop condition.
const maxSubmitRetries = 10

// submitRetryDelay is the pause between retries while the queue drains,
// mirroring RFEncoderAMF's Sleep(1) between SubmitInput attempts.
const submitRetryDelay = time.Millisecond

// preSubmitOverride is one pending per-frame parameter the encoder applies
// immediately before the next SubmitInput call, then discards, matching
// RFEncoderAMF's m_pPreSubmitSettings queue.
type preSubmitOverride struct {
	name  string
	value rfparam.Value
}

// amfEncoder models the control flow of RFEncoderAMF without a real AMF
// SDK binding: SubmitInput/QueryOutput retry-on-full semantics and the
// pre-submission parameter queue are exact; the bitstream itself is a
// length-prefixed placeholder payload standing in for the real H.264/H.265
// NAL output, the same "placeholder until a real binding is integrated"
// posture the teacher's software encoder takes for its own codec gap.
type amfEncoder struct {
	mu     sync.Mutex
	cfg    Config
	params *rfparam.Map

	preSubmit []preSubmitOverride
	pending   [][]byte
	frameNum  uint64
}

func newAMFEncoder(cfg Config) (Encoder, error) {
	var params *rfparam.Map
	switch cfg.Codec {
	case CodecHEVC:
		params = rfparam.NewHEVCDefaults()
	default:
		params = rfparam.NewAVCDefaults()
	}
	params.ApplyPreset(cfg.Preset)
	_ = params.Set(rfparam.Width, rfparam.UintValue(uint(cfg.Width)))
	_ = params.Set(rfparam.Height, rfparam.UintValue(uint(cfg.Height)))

	return &amfEncoder{cfg: cfg, params: params}, nil
}

// IsResizeSupported is always true: RFEncoderAMF::ReInit tears down and
// rebuilds the vendor component's internal surfaces for a new resolution
// rather than refusing the call.
func (e *amfEncoder) IsResizeSupported() bool { return true }

// Resize updates the encoder's recorded dimensions and the WIDTH/HEIGHT
// parameters, the Go stand-in for RFEncoderAMF's ReInit(width, height)
// call into the vendor component.
func (e *amfEncoder) Resize(width, height int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.Width, e.cfg.Height = width, height
	_ = e.params.Set(rfparam.Width, rfparam.UintValue(uint(width)))
	_ = e.params.Set(rfparam.Height, rfparam.UintValue(uint(height)))
	return nil
}

func (e *amfEncoder) Name() string { return "amf" }

// Encode submits frame to the simulated encode queue, retrying up to
// maxSubmitRetries times with submitRetryDelay between attempts if the
// queue is momentarily full — the same shape as SubmitInput's AMF_REPEAT
// retry loop, bridged to Go's explicit-error idiom instead of an enum
// return code.
func (e *amfEncoder) Encode(frame []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	const maxQueueDepth = 8

	var lastErr error
	for attempt := 0; attempt < maxSubmitRetries; attempt++ {
		if len(e.pending) < maxQueueDepth {
			e.applyPreSubmitLocked()
			e.pending = append(e.pending, e.encodeLocked(frame))
			e.frameNum++
			return nil
		}
		lastErr = rfstatus.QueueFull
		if attempt < maxSubmitRetries-1 {
			time.Sleep(submitRetryDelay)
		}
	}
	return lastErr
}

// GetEncodedFrame returns the oldest pending encoded frame, or
// NoEncodedFrame if the queue is currently empty.
func (e *amfEncoder) GetEncodedFrame() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.pending) == 0 {
		return nil, rfstatus.NoEncodedFrame
	}
	out := e.pending[0]
	e.pending = e.pending[1:]
	return out, nil
}

func (e *amfEncoder) SetParameter(name string, value rfparam.Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if isPreSubmissionParameter(name) {
		e.preSubmit = append(e.preSubmit, preSubmitOverride{name: name, value: value})
		return nil
	}
	return e.params.Set(name, value)
}

func (e *amfEncoder) GetParameter(name string) (rfparam.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.Get(name)
}

// PreferredFormat is NV12: RFEncoderAMF encodes the vendor-allocated NV12
// surface the context keeps in step with the result buffers.
func (e *amfEncoder) PreferredFormat() Format { return FormatNV12 }

// PreferredCodec reports the codec subcomponent this backend was
// constructed for (spec §4.6 "Construction selects the codec subcomponent
// by preferred_codec").
func (e *amfEncoder) PreferredCodec() Codec { return e.cfg.Codec }

// IsFormatSupported accepts the post-CSC NV12 surface and the raw BGRA
// input surface (encode(src, use_input_image=true) bypasses CSC
// entirely), but not a plain RGBA/ARGB reorder, which no vendor surface
// this backend allocates is shaped for.
func (e *amfEncoder) IsFormatSupported(format Format) bool {
	switch format {
	case FormatNV12, FormatBGRA8:
		return true
	default:
		return false
	}
}

// GetParameterState is get_parameter(name, codec) (spec §4.6 "Parameter
// access"): rejects cross-codec queries, including codec == None, as
// Invalid; pre-submit parameters always report Ready with a zero value
// since they are write-only one-shot overrides with no component-side
// storage to read back; everything else resolves to the parameter map's
// own access state.
func (e *amfEncoder) GetParameterState(name string, codec Codec) (rfparam.Value, rfparam.State) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if codec == CodecNone || codec != e.cfg.Codec {
		return rfparam.Value{}, rfparam.StateInvalid
	}
	if isPreSubmissionParameter(name) {
		if !e.params.Has(name) {
			return rfparam.Value{}, rfparam.StateInvalid
		}
		return rfparam.Value{}, rfparam.StateReady
	}
	return e.params.GetValidated(name)
}

func (e *amfEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = nil
	e.preSubmit = nil
	return nil
}

// applyPreSubmitLocked flushes the pre-submission override queue into the
// frame about to be submitted, then clears it — matching
// RFEncoderAMF::SubmitInput's "apply then m_pPreSubmitSettings.clear()".
// Called with e.mu held.
func (e *amfEncoder) applyPreSubmitLocked() {
	for _, ov := range e.preSubmit {
		_ = e.params.Set(ov.name, ov.value)
	}
	e.preSubmit = e.preSubmit[:0]
}

// encodeLocked builds the placeholder bitstream payload for frame: a text
// header carrying the frame index, codec and input length, followed by the
// frame bytes. The header does not record which pre-submit overrides were
// applied.
func (e *amfEncoder) encodeLocked(frame []byte) []byte {
	header := fmt.Sprintf("AMF|frame=%d|codec=%s|bytes=%d\n", e.frameNum, e.cfg.Codec, len(frame))
	out := make([]byte, 0, len(header)+len(frame))
	out = append(out, header...)
	out = append(out, frame...)
	return out
}

// isPreSubmissionParameter reports whether name must be staged and
// applied immediately before the next SubmitInput instead of taking
// effect right away, matching RFEncoderAMF's isAVCPreSubmissionParameter /
// isHEVCPreSubmissionParameter checks.
func isPreSubmissionParameter(name string) bool {
	switch name {
	case rfparam.AVCForceIntraRefresh, rfparam.AVCForceIFrame, rfparam.AVCForcePFrame,
		rfparam.AVCInsertSPS, rfparam.AVCInsertPPS, rfparam.AVCInsertAUD,
		rfparam.HEVCForceIntraRefresh, rfparam.HEVCForceIFrame, rfparam.HEVCForcePFrame,
		rfparam.HEVCInsertSPS, rfparam.HEVCInsertPPS, rfparam.HEVCInsertAUD:
		return true
	default:
		return false
	}
}
