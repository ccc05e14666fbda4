package rfencoder

import (
	"github.com/rfcore/rapidfire-go/internal/rfdiff"
	"github.com/rfcore/rapidfire-go/internal/rfparam"
)

func init() {
	Register("difference", newDifferenceEncoder)
}

// differenceEncoder adapts rfdiff.Differencer to the Encoder interface so
// sessions can select it through the same backend registry as "amf" and
// "identity", matching the teacher's encoderBackend registration pattern
// applied here to RFEncoderDM's block-diff mode rather than a real codec.
type differenceEncoder struct {
	*rfdiff.Differencer
	codec Codec
}

func newDifferenceEncoder(cfg Config) (Encoder, error) {
	d := rfdiff.New(rfdiff.Config{
		Width:         cfg.Width,
		Height:        cfg.Height,
		BlockWidth:    rfdiff.DefaultBlockWidth,
		BlockHeight:   rfdiff.DefaultBlockHeight,
		BytesPerPixel: 4,
	})
	return &differenceEncoder{Differencer: d, codec: cfg.Codec}, nil
}

// PreferredFormat is RGBA8: the tiler scans raw four-byte-per-pixel
// buffers, not a post-CSC YUV layout.
func (e *differenceEncoder) PreferredFormat() Format { return FormatRGBA8 }

// PreferredCodec reports whatever codec the session configured this
// backend with; the difference encoder never compresses a bitstream.
func (e *differenceEncoder) PreferredCodec() Codec { return e.codec }

// IsFormatSupported accepts the three four-byte-per-pixel source formats
// the tiler's bytesPerPixel=4 scan assumes; NV12 is half that density and
// would desync the tile grid.
func (e *differenceEncoder) IsFormatSupported(format Format) bool {
	switch format {
	case FormatRGBA8, FormatARGB8, FormatBGRA8:
		return true
	default:
		return false
	}
}

// GetParameterState is get_parameter(name, codec): rejects any query whose
// codec doesn't match the backend's own, then reports name's access state.
func (e *differenceEncoder) GetParameterState(name string, codec Codec) (rfparam.Value, rfparam.State) {
	if codec == CodecNone || codec != e.codec {
		return rfparam.Value{}, rfparam.StateInvalid
	}
	return e.Differencer.GetValidated(name)
}

var _ Encoder = (*differenceEncoder)(nil)
