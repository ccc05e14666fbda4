package rfcontext

import (
	"github.com/rfcore/rapidfire-go/internal/rflock"
	"github.com/rfcore/rapidfire-go/internal/rflog"
	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

var log = rflog.L("rfcontext")

// Result is a converted frame produced by ProcessBuffer and retrieved via
// GetResult. Layout is whichever OutputLayout (NV12, I420 or RGBA)
// ProcessBuffer was asked for.
type Result struct {
	Layout OutputLayout
	Data   []byte
}

// Context is the Compute Context: it owns a fixed-size render-target slot
// table (MaxRenderTargets entries) and a result buffer ring
// (NumResultBuffers entries), and drives either the Windows D3D11 device
// or the portable software device to perform CSC conversion between them.
type Context struct {
	dev device

	rtSlots [MaxRenderTargets]rtSlot
	results *rflock.Ring

	// dimW/dimH/dimSet implement spec §4.1's dimension policy: once an
	// input image is registered, every subsequent RegisterImage call must
	// agree on (w, h) or fail
	// InvalidDimension. ResetRenderTargets clears dimSet so a session
	// resize can establish a new dimension.
	dimW, dimH int
	dimSet     bool
}

// RTState is the render-target slot tri-state from spec §3 "Render Target
// Slot": a slot is Invalid until registered, Free once registered and
// available, and Blocked exactly between a successful acquire (the start
// of ProcessBuffer) and its matching release (ProcessBuffer's return),
// matching invariant 3's "Invalid → Free → Blocked → Free → … → Invalid"
// transition order.
type RTState int

const (
	RTInvalid RTState = iota
	RTFree
	RTBlocked
)

func (s RTState) String() string {
	switch s {
	case RTFree:
		return "Free"
	case RTBlocked:
		return "Blocked"
	default:
		return "Invalid"
	}
}

type rtSlot struct {
	state     RTState
	deviceIdx int
	width     int
	height    int
	format    Format
}

// NewSoftwareContext returns a Context backed by the CPU CSC kernels. Used
// on non-Windows platforms and in tests.
func NewSoftwareContext() *Context {
	return &Context{
		dev:     newSoftwareDevice(),
		results: rflock.NewRing(NumResultBuffers),
	}
}

// RegisterImage binds an external image of the given dimensions and
// format to a free render-target slot and returns its index, or
// RenderTargetFail if every slot is already bound.
func (c *Context) RegisterImage(width, height int, format Format) (int, error) {
	if c.dimSet && (width != c.dimW || height != c.dimH) {
		return 0, rfstatus.InvalidDimension
	}

	slot := -1
	for i := range c.rtSlots {
		if c.rtSlots[i].state == RTInvalid {
			slot = i
			break
		}
	}
	if slot == -1 {
		return 0, rfstatus.RenderTargetFail
	}

	deviceIdx, err := c.dev.registerImage(width, height, format)
	if err != nil {
		log.Warn("registerImage failed", "error", err)
		return 0, rfstatus.RenderTargetFail
	}

	c.rtSlots[slot] = rtSlot{state: RTFree, deviceIdx: deviceIdx, width: width, height: height, format: format}
	c.dimW, c.dimH, c.dimSet = width, height, true
	return slot, nil
}

// UnregisterImage releases the render-target slot and its backing device
// resources. Only a Free slot may be unregistered — a Blocked slot is
// mid-acquire in a concurrent ProcessBuffer call.
func (c *Context) UnregisterImage(slot int) error {
	if slot < 0 || slot >= len(c.rtSlots) || c.rtSlots[slot].state != RTFree {
		return rfstatus.InvalidIndex
	}
	if err := c.dev.unregisterImage(c.rtSlots[slot].deviceIdx); err != nil {
		return rfstatus.InvalidRenderTarget
	}
	c.rtSlots[slot] = rtSlot{}
	return nil
}

// RenderTargetState reports slot's current tri-state, implementing spec
// §6's get_render_target_state. An out-of-range index is InvalidIndex; an
// in-range slot that has never been registered (or was unregistered)
// reports RTInvalid.
func (c *Context) RenderTargetState(slot int) (RTState, error) {
	if slot < 0 || slot >= len(c.rtSlots) {
		return RTInvalid, rfstatus.InvalidIndex
	}
	return c.rtSlots[slot].state, nil
}

// ProcessBuffer converts the pixels bound to slot into layout, stores the
// result in the next free result-ring entry, and returns that entry's
// index. Returns QueueFull if the result ring has no free slot, matching
// the ring's fixed NUM_RESULTS depth.
//
// slot is acquired (Free → Blocked) for the duration of the call and
// always released (Blocked → Free) before returning, on every path
// including error returns, matching spec §4.1's "An acquire on a slot is
// always followed by exactly one release on the same queue, even on
// error paths."
func (c *Context) ProcessBuffer(slot int, pixels []byte, layout OutputLayout) (int, error) {
	if slot < 0 || slot >= len(c.rtSlots) || c.rtSlots[slot].state != RTFree {
		return 0, rfstatus.InvalidIndex
	}
	rt := c.rtSlots[slot]
	c.rtSlots[slot].state = RTBlocked
	defer func() {
		if c.rtSlots[slot].state == RTBlocked {
			c.rtSlots[slot].state = RTFree
		}
	}()

	dstSize := outputSize(rt.width, rt.height, layout)
	dst := make([]byte, dstSize)

	n, err := c.dev.processBuffer(rt.deviceIdx, pixels, layout, dst)
	if err != nil {
		log.Warn("processBuffer failed", "error", err)
		return 0, rfstatus.OpenClFail
	}

	resultIdx, ok := c.results.Acquire()
	if !ok {
		return 0, rfstatus.QueueFull
	}
	c.results.Set(resultIdx, Result{Layout: layout, Data: dst[:n]})
	return resultIdx, nil
}

// GetResult returns the converted frame stored at resultIdx by
// ProcessBuffer and releases the slot for reuse. Returns NoEncodedFrame if
// the slot is not currently holding a result. This is the draining half of
// the in-flight FIFO contract (spec §3 "In-flight FIFO"): a caller that
// has already consumed resultIdx's data calls this to free the slot for a
// future ProcessBuffer.
func (c *Context) GetResult(resultIdx int) (Result, error) {
	v, inUse := c.results.Get(resultIdx)
	if !inUse {
		return Result{}, rfstatus.NoEncodedFrame
	}
	result := v.(Result)
	c.results.Release(resultIdx)
	return result, nil
}

// PeekResult returns the converted frame stored at resultIdx without
// releasing the slot, so the caller (the session's encode_frame path) can
// hand the data to the encoder while the slot stays acquired — counted
// in-flight — until GetResult later drains it. Returns NoEncodedFrame if
// the slot is not currently holding a result.
func (c *Context) PeekResult(resultIdx int) (Result, error) {
	v, inUse := c.results.Get(resultIdx)
	if !inUse {
		return Result{}, rfstatus.NoEncodedFrame
	}
	return v.(Result), nil
}

// ReleaseResult frees resultIdx for reuse without reading it, used to
// unwind a slot ProcessBuffer acquired when the subsequent encode step
// fails before the result ever reaches the in-flight FIFO.
func (c *Context) ReleaseResult(resultIdx int) {
	c.results.Release(resultIdx)
}

// ResetRenderTargets unregisters every currently-bound render-target slot,
// the context's half of a session resize (spec §4.7 "resize(w, h): ...
// recreate result buffers at the new aligned size"): callers must
// re-register their render targets at the new dimensions afterward since
// RegisterImage's dimension check (spec §4.1) would otherwise reject them
// against the stale size.
func (c *Context) ResetRenderTargets() {
	for i := range c.rtSlots {
		if c.rtSlots[i].state != RTInvalid {
			_ = c.dev.unregisterImage(c.rtSlots[i].deviceIdx)
			c.rtSlots[i] = rtSlot{}
		}
	}
	c.dimSet = false
}

// Close releases every device-side resource owned by the context.
func (c *Context) Close() {
	c.dev.close()
}

func outputSize(width, height int, layout OutputLayout) int {
	switch layout {
	case OutputI420:
		return width*height + 2*((width/2)*(height/2))
	case OutputRGBA:
		return width * height * 4
	default:
		return width*height + width*height/2
	}
}
