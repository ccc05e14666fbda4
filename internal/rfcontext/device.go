// Package rfcontext implements the Compute Context described in spec.md
// §4.1/§4.2: a GPU-backed handle that owns the color-space-conversion
// kernels, a fixed-size render-target slot table, and the result buffer
// ring that feeds converted frames to an encoder.
package rfcontext

import "github.com/rfcore/rapidfire-go/internal/rfcsc"

// MaxRenderTargets bounds how many render targets a single Context can
// have registered at once, matching RapidFire's MAX_RT.
const MaxRenderTargets = 3

// NumResultBuffers is the depth of the result buffer ring each Context
// maintains for converted/readback frames, matching RapidFire's NUM_RESULTS.
const NumResultBuffers = 3

// Format identifies the pixel layout of an image registered with the
// context, mirroring RFFormat. Values line up with rfcsc.FormatTag so a
// Format can be passed straight through to the CSC kernels.
type Format = rfcsc.FormatTag

const (
	FormatRGBA = rfcsc.FormatRGBA
	FormatARGB = rfcsc.FormatARGB
	FormatBGRA = rfcsc.FormatBGRA
)

// ImageHandle identifies a render target registered with a Context via
// RegisterImage. It is opaque outside this package.
type ImageHandle int

// OutputLayout selects the pixel layout processBuffer produces.
type OutputLayout int

const (
	OutputNV12 OutputLayout = iota
	OutputI420
	// OutputRGBA requests a straight channel-reorder into canonical RGBA
	// byte order instead of a color-space conversion, spec §4.2's
	// copy_rgba_reorder kernel. Used by encoder backends whose
	// preferred_format is RGBA8 (spec §4.4) so the pipeline never forces a
	// YUV round trip just to hand them their own input format back.
	OutputRGBA
)

// device is the hardware abstraction a Context drives: either the
// Windows D3D11 video-processor backed implementation or the portable
// software fallback used off Windows and in tests. Both perform the same
// logical BGRA/ARGB/RGBA → NV12/I420 conversion.
type device interface {
	// registerImage binds a width x height slot in the given source
	// format to a new device-side slot and returns its index.
	registerImage(width, height int, format Format) (int, error)
	// unregisterImage releases the device-side resources for slot.
	unregisterImage(slot int) error
	// processBuffer converts pixels (width*height*4 bytes in the slot's
	// registered format) into layout and writes the result into dst,
	// returning the number of bytes written.
	processBuffer(slot int, pixels []byte, layout OutputLayout, dst []byte) (int, error)
	// close releases every device-side resource owned by the device.
	close()
}
