package rfencoder

import (
	"testing"

	"github.com/rfcore/rapidfire-go/internal/rfparam"
)

func TestIdentityEncoderContract(t *testing.T) {
	enc, err := New("identity", Config{Codec: CodecAVC, Width: 16, Height: 16})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer enc.Close()

	if enc.PreferredFormat() != FormatRGBA8 {
		t.Fatalf("PreferredFormat = %v, want RGBA8", enc.PreferredFormat())
	}
	if enc.PreferredCodec() != CodecAVC {
		t.Fatalf("PreferredCodec = %v, want avc", enc.PreferredCodec())
	}
	for _, f := range []Format{FormatRGBA8, FormatARGB8, FormatBGRA8, FormatNV12} {
		if !enc.IsFormatSupported(f) {
			t.Fatalf("IsFormatSupported(%v) = false, want true", f)
		}
	}

	val, state := enc.GetParameterState(rfparam.Width, CodecAVC)
	if state != rfparam.StateReady {
		t.Fatalf("GetParameterState(Width, avc) state = %v, want Ready", state)
	}
	if val.Uint() != 16 {
		t.Fatalf("Width value = %d, want 16", val.Uint())
	}

	if _, state := enc.GetParameterState(rfparam.Width, CodecNone); state != rfparam.StateInvalid {
		t.Fatalf("GetParameterState with CodecNone = %v, want Invalid", state)
	}
	if _, state := enc.GetParameterState(rfparam.Width, CodecHEVC); state != rfparam.StateInvalid {
		t.Fatalf("GetParameterState with mismatched codec = %v, want Invalid", state)
	}
}

func TestDifferenceEncoderContract(t *testing.T) {
	enc, err := New("difference", Config{Codec: CodecHEVC, Width: 32, Height: 16})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer enc.Close()

	if enc.PreferredFormat() != FormatRGBA8 {
		t.Fatalf("PreferredFormat = %v, want RGBA8", enc.PreferredFormat())
	}
	if enc.PreferredCodec() != CodecHEVC {
		t.Fatalf("PreferredCodec = %v, want hevc", enc.PreferredCodec())
	}
	if enc.IsFormatSupported(FormatNV12) {
		t.Fatalf("IsFormatSupported(NV12) = true, want false")
	}
	if !enc.IsFormatSupported(FormatBGRA8) {
		t.Fatalf("IsFormatSupported(BGRA8) = false, want true")
	}

	if _, state := enc.GetParameterState(rfparam.Width, CodecAVC); state != rfparam.StateInvalid {
		t.Fatalf("GetParameterState with mismatched codec = %v, want Invalid", state)
	}
	val, state := enc.GetParameterState(rfparam.Width, CodecHEVC)
	if state != rfparam.StateReady || val.Uint() != 32 {
		t.Fatalf("GetParameterState(Width, hevc) = (%v, %v), want (32, Ready)", val.Uint(), state)
	}
}

func TestAMFEncoderContract(t *testing.T) {
	enc, err := New("amf", Config{Codec: CodecAVC, Width: 16, Height: 16})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer enc.Close()

	if enc.PreferredFormat() != FormatNV12 {
		t.Fatalf("PreferredFormat = %v, want NV12", enc.PreferredFormat())
	}
	if enc.PreferredCodec() != CodecAVC {
		t.Fatalf("PreferredCodec = %v, want avc", enc.PreferredCodec())
	}
	if enc.IsFormatSupported(FormatRGBA8) {
		t.Fatalf("IsFormatSupported(RGBA8) = true, want false")
	}
	if !enc.IsFormatSupported(FormatNV12) {
		t.Fatalf("IsFormatSupported(NV12) = false, want true")
	}

	// Pre-submission parameters always read back Ready/zero once the codec
	// matches and the name is recognized, even though they have no stored
	// value of their own.
	val, state := enc.GetParameterState(rfparam.AVCForceIFrame, CodecAVC)
	if state != rfparam.StateReady {
		t.Fatalf("GetParameterState(AVCForceIFrame) state = %v, want Ready", state)
	}
	if val.Uint() != 0 && val.Int() != 0 {
		t.Fatalf("GetParameterState(AVCForceIFrame) value = %+v, want zero", val)
	}

	if _, state := enc.GetParameterState(rfparam.AVCForceIFrame, CodecHEVC); state != rfparam.StateInvalid {
		t.Fatalf("GetParameterState with mismatched codec = %v, want Invalid", state)
	}
	if _, state := enc.GetParameterState(rfparam.AVCForceIFrame, CodecNone); state != rfparam.StateInvalid {
		t.Fatalf("GetParameterState with CodecNone = %v, want Invalid", state)
	}

	// An ordinary, non-pre-submission parameter still resolves through the
	// underlying map's own access state.
	if _, state := enc.GetParameterState(rfparam.Width, CodecAVC); state != rfparam.StateReady {
		t.Fatalf("GetParameterState(Width) state = %v, want Ready", state)
	}
}
