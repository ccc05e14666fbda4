// Package rfencoder implements the Encoder contract described in spec.md
// §4.3-§4.6: a small registry of pluggable backends (Identity, Difference,
// AMF H.264/H.265) behind one Encoder interface, generalized from the
// teacher's encoderBackend/registerHardwareFactory pattern.
package rfencoder

import (
	"fmt"
	"sync"

	"github.com/rfcore/rapidfire-go/internal/rflog"
	"github.com/rfcore/rapidfire-go/internal/rfparam"
	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

var log = rflog.L("rfencoder")

// Codec selects the video compression standard an AMF-backed encoder
// targets. Identity and Difference backends still carry whatever codec
// their Config was built with, purely so get_parameter(name, codec) has
// something to compare the caller's codec against (spec §4.6 "Parameter
// access").
type Codec string

const (
	// CodecNone is the zero value: no codec configured. Spec §4.6 "rejects
	// cross-codec queries (codec == None → Invalid)" means a caller
	// passing CodecNone always sees StateInvalid, regardless of backend.
	CodecNone Codec = ""
	CodecAVC  Codec = "avc"
	CodecHEVC Codec = "hevc"
)

// Format identifies the pixel layout an encoder's Encode input is shaped
// as, the domain of spec §4.3's preferred_format()/is_format_supported(fmt).
// It is a superset of rfcontext.Format: AMF also consumes the post-CSC
// NV12 layout, which rfcontext.Format has no member for since that
// package's Format only describes render-target source formats.
type Format int

const (
	FormatRGBA8 Format = iota
	FormatARGB8
	FormatBGRA8
	FormatNV12
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatARGB8:
		return "ARGB8"
	case FormatBGRA8:
		return "BGRA8"
	case FormatNV12:
		return "NV12"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Config configures a new Encoder instance.
type Config struct {
	Codec         Codec
	Preset        rfparam.Preset
	Width, Height int
}

// Encoder is the contract every backend implements: submit raw converted
// frames, retrieve bitstream output, and read/write the named parameter
// map governing codec behavior.
type Encoder interface {
	Encode(frame []byte) error
	GetEncodedFrame() ([]byte, error)
	SetParameter(name string, value rfparam.Value) error
	GetParameter(name string) (rfparam.Value, error)
	Close() error
	Name() string

	// IsResizeSupported reports whether Resize may be called on this
	// backend (spec §4.7 "resize(w, h): Reject if
	// !encoder.is_resize_supported()").
	IsResizeSupported() bool
	// Resize tears down and rebuilds whatever dimension-dependent internal
	// state the backend owns (vendor surfaces, diff targets, ...) for the
	// new output dimensions, and refreshes the WIDTH/HEIGHT parameters.
	Resize(width, height int) error

	// PreferredFormat reports the pixel layout this backend's Encode input
	// is optimized for (spec §4.3 preferred_format()).
	PreferredFormat() Format
	// PreferredCodec reports the compression standard this backend was
	// configured for (spec §4.3 preferred_codec()), and doubles as the
	// "self" codec GetParameterState compares a caller's codec against.
	PreferredCodec() Codec
	// IsFormatSupported reports whether this backend's Encode can accept
	// frames in the given pixel layout (spec §4.3 is_format_supported(fmt)).
	IsFormatSupported(format Format) bool
	// GetParameterState is get_parameter(name, codec) from spec §4.3/§4.6:
	// codec must equal PreferredCodec() (CodecNone never matches, per
	// "codec == None → Invalid") or the parameter reports StateInvalid
	// regardless of name. Otherwise resolves to the backend's own access
	// state for name — Blocked if read-only/private-at-init, Ready if
	// writable, Invalid if name is undefined.
	GetParameterState(name string, codec Codec) (rfparam.Value, rfparam.State)
}

// backendFactory builds an Encoder for a Config; one is registered per
// backend name.
type backendFactory func(cfg Config) (Encoder, error)

var (
	registryMu sync.Mutex
	registry   = map[string]backendFactory{}
)

// Register adds a named backend factory. Called from each backend's
// init(), mirroring the teacher's registerHardwareFactory.
func Register(name string, factory backendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates an encoder from the named backend ("identity", "difference",
// "amf"), applying cfg. Returns InvalidEncoder if name is unregistered.
func New(name string, cfg Config) (Encoder, error) {
	registryMu.Lock()
	factory, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		return nil, rfstatus.InvalidEncoder
	}
	enc, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("rfencoder: backend %q: %w", name, err)
	}
	log.Info("encoder created", "backend", name, "codec", cfg.Codec, "width", cfg.Width, "height", cfg.Height)
	return enc, nil
}

// Names returns the currently registered backend names, for diagnostics.
func Names() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
