// Package rfmouse implements the mouse-shape grabber named in spec.md
// §4/§6: a small device that queries the platform cursor shape and can
// block a caller until the shape changes, modeled on RFMouseGrab and the
// RFDOPPSession getMouseData/getMouseData2/releaseEvent trio.
package rfmouse

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rfcore/rapidfire-go/internal/rflock"
	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

// ShapeFlags reports which bitmap kind MouseData2's Shape buffer holds.
type ShapeFlags uint32

const (
	FlagMonochrome  ShapeFlags = 1
	FlagColor       ShapeFlags = 2
	FlagMaskedColor ShapeFlags = 4
)

// BitmapBuffer is a platform cursor bitmap: width/height/pitch/depth plus
// the raw pixel bytes, mirroring RFBitmapBuffer.
type BitmapBuffer struct {
	Width        uint32
	Height       uint32
	Pitch        uint32
	BitsPerPixel uint32
	Pixels       []byte
}

// MouseData is the v1 cursor-shape payload (RFMouseData): visibility,
// hotspot, and separate AND-mask / color bitmaps. For a monochrome
// cursor Mask holds the combined AND/XOR bitmask and Color is zero-valued.
type MouseData struct {
	Visible  bool
	HotspotX uint32
	HotspotY uint32
	Mask     BitmapBuffer
	Color    BitmapBuffer
}

// MouseData2 is the v2 cursor-shape payload (RFMouseData2): visibility,
// hotspot, a flags word describing the shape kind, and a single shape
// buffer laid out compatibly with the platform set-pointer-shape ABI
// (DXGKARG_SETPOINTERSHAPE on Windows).
type MouseData2 struct {
	Visible  bool
	HotspotX uint32
	HotspotY uint32
	Flags    ShapeFlags
	Shape    BitmapBuffer
}

// toV1 derives the v1 payload from a v2 shape. Monochrome shapes carry
// their combined AND/XOR bitmask straight into Mask; anything else,
// including MaskedColor (a flag combination the source notes is not
// emitted by all drivers), is treated as a color bitmap with alpha.
func toV1(v2 MouseData2) MouseData {
	md := MouseData{Visible: v2.Visible, HotspotX: v2.HotspotX, HotspotY: v2.HotspotY}
	if v2.Flags&FlagMonochrome != 0 {
		md.Mask = v2.Shape
		return md
	}
	md.Color = v2.Shape
	return md
}

// device is the platform cursor query the Grabber drives: the real
// Windows implementation behind GetCursorInfo/GetIconInfo, or the
// portable software stand-in used off Windows and in tests.
type device interface {
	shape() (MouseData2, error)
	close()
}

// pollInterval bounds how often a blocking GetMouseData2 call re-queries
// the device while waiting for a shape change or a release_event signal.
const pollInterval = 50 * time.Millisecond

// Grabber is the mouse-shape grabber a Session instantiates when its
// mouse-data property is set (spec §4.7 "Creation"). Only one shape query
// runs at a time; a concurrent release_event(mouse-shape) unblocks
// whichever call is currently waiting for a change.
type Grabber struct {
	mu       sync.Mutex
	dev      device
	lastSig  uint64
	haveLast bool
	release  *rflock.ManualResetEvent
}

// New returns a Grabber backed by the portable software device, used by
// default and in tests. NewWindowsGrabber (windows-only) backs it with
// real GetCursorInfo/GetIconInfo queries instead.
func New() *Grabber {
	return &Grabber{dev: newSoftwareDevice(), release: rflock.NewManualResetEvent()}
}

// GetMouseData returns the v1 cursor-shape payload, optionally blocking
// until the shape changes. Mirrors rfGetMouseData.
func (g *Grabber) GetMouseData(ctx context.Context, waitForShapeChange bool) (MouseData, error) {
	v2, err := g.GetMouseData2(ctx, waitForShapeChange)
	if err != nil {
		return MouseData{}, err
	}
	return toV1(v2), nil
}

// GetMouseData2 returns the v2 cursor-shape payload, optionally blocking
// until the shape changes or release_event(mouse-shape) fires. Mirrors
// rfGetMouseData2; a release with no intervening shape change reports
// rfstatus.MouseGrabNoChange, matching RFMouseGrab::getShapeData2
// returning false.
func (g *Grabber) GetMouseData2(ctx context.Context, waitForShapeChange bool) (MouseData2, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !waitForShapeChange {
		data, err := g.dev.shape()
		if err != nil {
			return MouseData2{}, err
		}
		g.lastSig, g.haveLast = signature(data), true
		return data, nil
	}

	g.release.Reset()
	for {
		data, err := g.dev.shape()
		if err != nil {
			return MouseData2{}, err
		}

		sig := signature(data)
		if !g.haveLast || sig != g.lastSig {
			g.lastSig, g.haveLast = sig, true
			return data, nil
		}

		waitCtx, cancel := context.WithTimeout(ctx, pollInterval)
		err = g.release.Wait(waitCtx)
		cancel()

		if err == nil {
			return MouseData2{}, rfstatus.MouseGrabNoChange
		}
		if ctx.Err() != nil {
			return MouseData2{}, ctx.Err()
		}
		// waitCtx's own deadline elapsed; re-query and keep waiting.
	}
}

// Release unblocks a call currently waiting inside GetMouseData/
// GetMouseData2, mirroring RFMouseGrab::releaseEvent. A call not
// currently waiting observes this as a no-op, since Reset runs again at
// the top of the next blocking call.
func (g *Grabber) Release() {
	g.release.Signal()
}

// Close releases the underlying device.
func (g *Grabber) Close() error {
	g.dev.close()
	return nil
}

// signature hashes the fields that define cursor identity so GetMouseData2
// can detect a shape change without the platform handing back a stable
// shape id of its own.
func signature(v2 MouseData2) uint64 {
	h := fnv.New64a()
	var hdr [20]byte
	putUint32(hdr[0:4], uint32(v2.Flags))
	putUint32(hdr[4:8], v2.HotspotX)
	putUint32(hdr[8:12], v2.HotspotY)
	putUint32(hdr[12:16], v2.Shape.Width)
	putUint32(hdr[16:20], v2.Shape.Height)
	h.Write(hdr[:])
	h.Write(v2.Shape.Pixels)
	if v2.Visible {
		h.Write([]byte{1})
	}
	return h.Sum64()
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
