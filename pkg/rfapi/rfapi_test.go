package rfapi

import (
	"context"
	"errors"
	"testing"

	"github.com/rfcore/rapidfire-go/internal/rfcontext"
	"github.com/rfcore/rapidfire-go/internal/rfparam"
	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

func solidRGBA(width, height int) []byte {
	buf := make([]byte, width*height*4)
	for i := range buf {
		buf[i] = 32
	}
	return buf
}

func TestSessionLifecycleThroughAPI(t *testing.T) {
	h, err := CreateSession(16, 16)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	defer DeleteSession(h)

	if err := CreateEncoder(h, "identity", VideoCodecAVC, EncodePresetBalanced); err != nil {
		t.Fatalf("CreateEncoder: %v", err)
	}

	slot, err := RegisterRenderTarget(h, 16, 16, rfcontext.FormatRGBA)
	if err != nil {
		t.Fatalf("RegisterRenderTarget: %v", err)
	}

	if err := EncodeFrame(h, slot, solidRGBA(16, 16), OutputNV12); err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	frame, err := GetEncodedFrame(h)
	if err != nil {
		t.Fatalf("GetEncodedFrame: %v", err)
	}
	if len(frame) == 0 {
		t.Fatalf("encoded frame is empty")
	}

	if err := RemoveRenderTarget(h, slot); err != nil {
		t.Fatalf("RemoveRenderTarget: %v", err)
	}
}

func TestUnknownHandleReturnsInvalidSession(t *testing.T) {
	if _, err := RegisterRenderTarget(SessionHandle(99999), 4, 4, rfcontext.FormatRGBA); !errors.Is(err, rfstatus.InvalidSession) {
		t.Fatalf("err = %v, want InvalidSession", err)
	}
}

func TestSetAndGetParameterThroughAPI(t *testing.T) {
	h, err := CreateSession(16, 16)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	defer DeleteSession(h)

	if err := CreateEncoder(h, "amf", VideoCodecAVC, EncodePresetFast); err != nil {
		t.Fatalf("CreateEncoder: %v", err)
	}

	param := rfparam.AVCBitrate
	if err := SetParameter(h, Property{Name: param, Value: rfparam.UintValue(5_000_000)}); err != nil {
		t.Fatalf("SetParameter: %v", err)
	}
	val, err := GetParameter(h, param)
	if err != nil {
		t.Fatalf("GetParameter: %v", err)
	}
	if val.Uint() != 5_000_000 {
		t.Fatalf("parameter value = %d, want 5000000", val.Uint())
	}
}

func TestGetMouseDataRequiresMouseDataProperty(t *testing.T) {
	h, err := CreateSession(16, 16)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	defer DeleteSession(h)

	if _, err := GetMouseData(context.Background(), h, false); !errors.Is(err, rfstatus.Fail) {
		t.Fatalf("err = %v, want Fail", err)
	}
}

func TestGetMouseData2ThroughAPI(t *testing.T) {
	h, err := CreateSessionWithMouseData(16, 16, true)
	if err != nil {
		t.Fatalf("CreateSessionWithMouseData: %v", err)
	}
	defer DeleteSession(h)

	md, err := GetMouseData2(context.Background(), h, false)
	if err != nil {
		t.Fatalf("GetMouseData2: %v", err)
	}
	if !md.Visible {
		t.Fatal("expected default software cursor to report visible")
	}

	if err := ReleaseEvent(h, EventDesktopChange); err != nil {
		t.Fatalf("ReleaseEvent: %v", err)
	}
}

// TestResizeRoundTripThroughAPI mirrors spec §8 scenario 6: starting from
// one resolution, resize to another, re-register the render target, and
// confirm the encoder reports the new dimensions via GetEncodeParameter.
func TestResizeRoundTripThroughAPI(t *testing.T) {
	h, err := CreateSession(1920, 1080)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	defer DeleteSession(h)

	if err := CreateEncoder(h, "amf", VideoCodecAVC, EncodePresetBalanced); err != nil {
		t.Fatalf("CreateEncoder: %v", err)
	}

	slot, err := RegisterRenderTarget(h, 1920, 1080, rfcontext.FormatRGBA)
	if err != nil {
		t.Fatalf("RegisterRenderTarget: %v", err)
	}
	if err := EncodeFrame(h, slot, solidRGBA(1920, 1080), OutputNV12); err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if _, err := GetEncodedFrame(h); err != nil {
		t.Fatalf("GetEncodedFrame: %v", err)
	}

	if err := Resize(h, 1280, 720); err != nil {
		t.Fatalf("Resize: %v", err)
	}

	// The session dropped every render-target slot on resize; the caller
	// must re-register the same logical RT before encoding again.
	slot, err = RegisterRenderTarget(h, 1280, 720, rfcontext.FormatRGBA)
	if err != nil {
		t.Fatalf("RegisterRenderTarget after resize: %v", err)
	}
	if err := EncodeFrame(h, slot, solidRGBA(1280, 720), OutputNV12); err != nil {
		t.Fatalf("EncodeFrame after resize: %v", err)
	}
	if _, err := GetEncodedFrame(h); err != nil {
		t.Fatalf("GetEncodedFrame after resize: %v", err)
	}

	width, err := GetEncodeParameter(h, rfparam.Width)
	if err != nil {
		t.Fatalf("GetEncodeParameter(Width): %v", err)
	}
	if width.Uint() != 1280 {
		t.Fatalf("width = %d, want 1280", width.Uint())
	}
	height, err := GetEncodeParameter(h, rfparam.Height)
	if err != nil {
		t.Fatalf("GetEncodeParameter(Height): %v", err)
	}
	if height.Uint() != 720 {
		t.Fatalf("height = %d, want 720", height.Uint())
	}
}

// TestResizeDropsRenderTargets confirms a render target registered before
// Resize is no longer usable afterward (spec §4.7: "recreate result
// buffers ... must re-register RTs").
func TestResizeDropsRenderTargets(t *testing.T) {
	h, err := CreateSession(16, 16)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	defer DeleteSession(h)

	if err := CreateEncoder(h, "identity", VideoCodecAVC, EncodePresetBalanced); err != nil {
		t.Fatalf("CreateEncoder: %v", err)
	}
	slot, err := RegisterRenderTarget(h, 16, 16, rfcontext.FormatRGBA)
	if err != nil {
		t.Fatalf("RegisterRenderTarget: %v", err)
	}

	if err := Resize(h, 32, 32); err != nil {
		t.Fatalf("Resize: %v", err)
	}

	if err := EncodeFrame(h, slot, solidRGBA(32, 32), OutputNV12); !errors.Is(err, rfstatus.InvalidIndex) {
		t.Fatalf("EncodeFrame with stale slot after resize = %v, want InvalidIndex", err)
	}
}

// TestIdentityEchoScenarioProducesRGBA mirrors spec §8 scenario 1: an
// Identity-backed session processing a render target with OutputRGBA must
// hand back exactly W*H*4 bytes in RGBA byte order, matching Identity's
// preferred_format (spec §4.4).
func TestIdentityEchoScenarioProducesRGBA(t *testing.T) {
	h, err := CreateSession(4, 4)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	defer DeleteSession(h)

	if err := CreateEncoder(h, "identity", VideoCodecAVC, EncodePresetBalanced); err != nil {
		t.Fatalf("CreateEncoder: %v", err)
	}

	slot, err := RegisterRenderTarget(h, 4, 4, rfcontext.FormatBGRA)
	if err != nil {
		t.Fatalf("RegisterRenderTarget: %v", err)
	}

	pixels := make([]byte, 4*4*4)
	for i := 0; i < 4*4; i++ {
		pixels[i*4+0] = 10 // B
		pixels[i*4+1] = 20 // G
		pixels[i*4+2] = 30 // R
		pixels[i*4+3] = 40 // A
	}
	if err := EncodeFrame(h, slot, pixels, OutputRGBA); err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	frame, err := GetEncodedFrame(h)
	if err != nil {
		t.Fatalf("GetEncodedFrame: %v", err)
	}
	if len(frame) != 4*4*4 {
		t.Fatalf("frame length = %d, want %d", len(frame), 4*4*4)
	}
	if frame[0] != 30 || frame[1] != 20 || frame[2] != 10 || frame[3] != 40 {
		t.Fatalf("first pixel = %v, want RGBA order [30 20 10 40]", frame[:4])
	}
}

func TestGetSourceFrameThroughAPI(t *testing.T) {
	h, err := CreateSession(16, 16)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	defer DeleteSession(h)

	if err := CreateEncoder(h, "identity", VideoCodecAVC, EncodePresetBalanced); err != nil {
		t.Fatalf("CreateEncoder: %v", err)
	}
	slot, err := RegisterRenderTarget(h, 16, 16, rfcontext.FormatRGBA)
	if err != nil {
		t.Fatalf("RegisterRenderTarget: %v", err)
	}

	if _, err := GetSourceFrame(h); !errors.Is(err, rfstatus.NoEncodedFrame) {
		t.Fatalf("GetSourceFrame before EncodeFrame: err = %v, want NoEncodedFrame", err)
	}

	if err := EncodeFrame(h, slot, solidRGBA(16, 16), OutputNV12); err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	source, err := GetSourceFrame(h)
	if err != nil {
		t.Fatalf("GetSourceFrame: %v", err)
	}
	encoded, err := GetEncodedFrame(h)
	if err != nil {
		t.Fatalf("GetEncodedFrame: %v", err)
	}
	if len(source) != len(encoded) {
		t.Fatalf("source len %d != encoded len %d, GetSourceFrame did not observe the same frame", len(source), len(encoded))
	}
}

func TestGetRenderTargetStateThroughAPI(t *testing.T) {
	h, err := CreateSession(16, 16)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	defer DeleteSession(h)

	if state, err := GetRenderTargetState(h, 0); err != nil || state != RenderTargetInvalid {
		t.Fatalf("initial state = (%v, %v), want (Invalid, nil)", state, err)
	}

	slot, err := RegisterRenderTarget(h, 16, 16, rfcontext.FormatRGBA)
	if err != nil {
		t.Fatalf("RegisterRenderTarget: %v", err)
	}
	if state, err := GetRenderTargetState(h, slot); err != nil || state != RenderTargetFree {
		t.Fatalf("state after register = (%v, %v), want (Free, nil)", state, err)
	}

	if err := RemoveRenderTarget(h, slot); err != nil {
		t.Fatalf("RemoveRenderTarget: %v", err)
	}
	if state, err := GetRenderTargetState(h, slot); err != nil || state != RenderTargetInvalid {
		t.Fatalf("state after unregister = (%v, %v), want (Invalid, nil)", state, err)
	}
}

func TestDeleteSessionThenOperateFails(t *testing.T) {
	h, err := CreateSession(8, 8)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := DeleteSession(h); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := CreateEncoder(h, "identity", VideoCodecAVC, EncodePresetBalanced); !errors.Is(err, rfstatus.InvalidSession) {
		t.Fatalf("err = %v, want InvalidSession", err)
	}
}
