package rfcontext

import (
	"errors"
	"testing"

	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

func solidRGBA(width, height int) []byte {
	buf := make([]byte, width*height*4)
	for i := 0; i < width*height; i++ {
		buf[i*4+0] = 128
		buf[i*4+1] = 128
		buf[i*4+2] = 128
		buf[i*4+3] = 255
	}
	return buf
}

func TestRegisterProcessGetResultRoundTrip(t *testing.T) {
	ctx := NewSoftwareContext()
	defer ctx.Close()

	slot, err := ctx.RegisterImage(16, 16, FormatRGBA)
	if err != nil {
		t.Fatalf("RegisterImage: %v", err)
	}

	pixels := solidRGBA(16, 16)
	resultIdx, err := ctx.ProcessBuffer(slot, pixels, OutputNV12)
	if err != nil {
		t.Fatalf("ProcessBuffer: %v", err)
	}

	result, err := ctx.GetResult(resultIdx)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	wantLen := 16*16 + 16*16/2
	if len(result.Data) != wantLen {
		t.Fatalf("result length = %d, want %d", len(result.Data), wantLen)
	}

	if _, err := ctx.GetResult(resultIdx); !errors.Is(err, rfstatus.NoEncodedFrame) {
		t.Fatalf("second GetResult err = %v, want NoEncodedFrame", err)
	}
}

func TestRegisterImageExhaustsSlots(t *testing.T) {
	ctx := NewSoftwareContext()
	defer ctx.Close()

	for i := 0; i < MaxRenderTargets; i++ {
		if _, err := ctx.RegisterImage(4, 4, FormatRGBA); err != nil {
			t.Fatalf("RegisterImage %d: %v", i, err)
		}
	}

	if _, err := ctx.RegisterImage(4, 4, FormatRGBA); !errors.Is(err, rfstatus.RenderTargetFail) {
		t.Fatalf("err = %v, want RenderTargetFail", err)
	}
}

func TestUnregisterImageFreesSlot(t *testing.T) {
	ctx := NewSoftwareContext()
	defer ctx.Close()

	slot, _ := ctx.RegisterImage(4, 4, FormatRGBA)
	if err := ctx.UnregisterImage(slot); err != nil {
		t.Fatalf("UnregisterImage: %v", err)
	}

	if _, err := ctx.RegisterImage(4, 4, FormatRGBA); err != nil {
		t.Fatalf("re-RegisterImage after unregister: %v", err)
	}
}

func TestProcessBufferInvalidSlot(t *testing.T) {
	ctx := NewSoftwareContext()
	defer ctx.Close()

	if _, err := ctx.ProcessBuffer(0, nil, OutputNV12); !errors.Is(err, rfstatus.InvalidIndex) {
		t.Fatalf("err = %v, want InvalidIndex", err)
	}
}

func TestRegisterImageRejectsMismatchedDimensions(t *testing.T) {
	ctx := NewSoftwareContext()
	defer ctx.Close()

	if _, err := ctx.RegisterImage(16, 16, FormatRGBA); err != nil {
		t.Fatalf("RegisterImage: %v", err)
	}
	if _, err := ctx.RegisterImage(32, 16, FormatRGBA); !errors.Is(err, rfstatus.InvalidDimension) {
		t.Fatalf("err = %v, want InvalidDimension", err)
	}

	// Unregistering every slot does not lift the dimension lock; only
	// ResetRenderTargets (the resize path) does.
	ctx.ResetRenderTargets()
	if _, err := ctx.RegisterImage(32, 16, FormatRGBA); err != nil {
		t.Fatalf("RegisterImage after ResetRenderTargets: %v", err)
	}
}

func TestResetRenderTargetsFreesAllSlots(t *testing.T) {
	ctx := NewSoftwareContext()
	defer ctx.Close()

	var slots []int
	for i := 0; i < MaxRenderTargets; i++ {
		slot, err := ctx.RegisterImage(4, 4, FormatRGBA)
		if err != nil {
			t.Fatalf("RegisterImage %d: %v", i, err)
		}
		slots = append(slots, slot)
	}

	ctx.ResetRenderTargets()

	for _, slot := range slots {
		if _, err := ctx.ProcessBuffer(slot, nil, OutputNV12); !errors.Is(err, rfstatus.InvalidIndex) {
			t.Fatalf("ProcessBuffer on slot %d after reset = %v, want InvalidIndex", slot, err)
		}
	}

	// Every slot should be free again, as if the context were freshly built.
	for i := 0; i < MaxRenderTargets; i++ {
		if _, err := ctx.RegisterImage(8, 8, FormatRGBA); err != nil {
			t.Fatalf("re-RegisterImage %d after reset: %v", i, err)
		}
	}
}

func TestProcessBufferOutputRGBAReordersChannels(t *testing.T) {
	ctx := NewSoftwareContext()
	defer ctx.Close()

	slot, err := ctx.RegisterImage(2, 2, FormatBGRA)
	if err != nil {
		t.Fatalf("RegisterImage: %v", err)
	}

	pixels := make([]byte, 2*2*4)
	for i := 0; i < 4; i++ {
		pixels[i*4+0] = 10 // B
		pixels[i*4+1] = 20 // G
		pixels[i*4+2] = 30 // R
		pixels[i*4+3] = 40 // A
	}

	resultIdx, err := ctx.ProcessBuffer(slot, pixels, OutputRGBA)
	if err != nil {
		t.Fatalf("ProcessBuffer: %v", err)
	}

	result, err := ctx.GetResult(resultIdx)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	wantLen := 2 * 2 * 4
	if len(result.Data) != wantLen {
		t.Fatalf("result length = %d, want %d", len(result.Data), wantLen)
	}
	want := []byte{30, 20, 10, 40}
	if !bytesEqual(result.Data[:4], want) {
		t.Fatalf("first pixel = %v, want %v", result.Data[:4], want)
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestResultRingQueueFull(t *testing.T) {
	ctx := NewSoftwareContext()
	defer ctx.Close()

	slot, _ := ctx.RegisterImage(4, 4, FormatRGBA)
	pixels := solidRGBA(4, 4)

	for i := 0; i < NumResultBuffers; i++ {
		if _, err := ctx.ProcessBuffer(slot, pixels, OutputNV12); err != nil {
			t.Fatalf("ProcessBuffer %d: %v", i, err)
		}
	}

	if _, err := ctx.ProcessBuffer(slot, pixels, OutputNV12); !errors.Is(err, rfstatus.QueueFull) {
		t.Fatalf("err = %v, want QueueFull", err)
	}
}
