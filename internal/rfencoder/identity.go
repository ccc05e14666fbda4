package rfencoder

import (
	"sync"

	"github.com/rfcore/rapidfire-go/internal/rfparam"
	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

func init() {
	Register("identity", newIdentityEncoder)
}

// identityEncoder passes frames through unmodified. It exists for
// pipeline testing and for sessions that only need the capture/CSC stages
// exercised without a real bitstream, mirroring the teacher's
// placeholder/software encoder slot in the backend registry.
type identityEncoder struct {
	mu     sync.Mutex
	params *rfparam.Map
	queue  [][]byte
	codec  Codec
}

func newIdentityEncoder(cfg Config) (Encoder, error) {
	e := &identityEncoder{params: rfparam.NewMap(), codec: cfg.Codec}
	e.params.Define(rfparam.Width, rfparam.TypeUint, rfparam.UintValue(0), rfparam.UintValue(0), rfparam.UintValue(0))
	e.params.Define(rfparam.Height, rfparam.TypeUint, rfparam.UintValue(0), rfparam.UintValue(0), rfparam.UintValue(0))
	_ = e.params.Set(rfparam.Width, rfparam.UintValue(uint(cfg.Width)))
	_ = e.params.Set(rfparam.Height, rfparam.UintValue(uint(cfg.Height)))
	return e, nil
}

// IsResizeSupported is always true: the identity backend never owns
// dimension-fixed vendor state, so Resize only has its WIDTH/HEIGHT
// parameters to refresh.
func (e *identityEncoder) IsResizeSupported() bool { return true }

// Resize refreshes the WIDTH/HEIGHT parameters. The identity backend has
// no other dimension-dependent state to rebuild.
func (e *identityEncoder) Resize(width, height int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_ = e.params.Set(rfparam.Width, rfparam.UintValue(uint(width)))
	_ = e.params.Set(rfparam.Height, rfparam.UintValue(uint(height)))
	return nil
}

func (e *identityEncoder) Encode(frame []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make([]byte, len(frame))
	copy(cp, frame)
	e.queue = append(e.queue, cp)
	return nil
}

func (e *identityEncoder) GetEncodedFrame() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return nil, rfstatus.NoEncodedFrame
	}
	frame := e.queue[0]
	e.queue = e.queue[1:]
	return frame, nil
}

func (e *identityEncoder) SetParameter(name string, value rfparam.Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.params.Has(name) {
		e.params.Define(name, value.Type(), value, value, value)
	}
	return e.params.Set(name, value)
}

func (e *identityEncoder) GetParameter(name string) (rfparam.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.Get(name)
}

func (e *identityEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = nil
	return nil
}

func (e *identityEncoder) Name() string { return "identity" }

// PreferredFormat is RGBA8 (spec §4.4 "preferred_format = RGBA8").
func (e *identityEncoder) PreferredFormat() Format { return FormatRGBA8 }

// PreferredCodec reports whatever codec the session configured this
// backend with; Identity itself never compresses a bitstream.
func (e *identityEncoder) PreferredCodec() Codec { return e.codec }

// IsFormatSupported accepts the four formats spec §4.4 lists: "accepts
// RGBA8/ARGB8/BGRA8/NV12".
func (e *identityEncoder) IsFormatSupported(format Format) bool {
	switch format {
	case FormatRGBA8, FormatARGB8, FormatBGRA8, FormatNV12:
		return true
	default:
		return false
	}
}

// GetParameterState is get_parameter(name, codec) (spec §4.3/§4.6):
// rejects any query whose codec doesn't match the backend's own, then
// reports name's access state from the parameter map.
func (e *identityEncoder) GetParameterState(name string, codec Codec) (rfparam.Value, rfparam.State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if codec == CodecNone || codec != e.codec {
		return rfparam.Value{}, rfparam.StateInvalid
	}
	return e.params.GetValidated(name)
}
