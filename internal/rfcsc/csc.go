// Package rfcsc implements the color-space-conversion kernels the capture
// pipeline runs between the captured RGBA-family surface and the NV12/I420
// layouts video encoders expect. The functions here are pure over []byte so
// the same logic can run on the CPU (software device, tests) or describe
// what the GPU kernel the Windows device dispatches is doing.
package rfcsc

import "fmt"

// FormatTag identifies the channel order of a source image, a stable
// external contract per spec (0=RGBA, 1=ARGB, 2=BGRA).
type FormatTag int

const (
	FormatRGBA FormatTag = 0
	FormatARGB FormatTag = 1
	FormatBGRA FormatTag = 2
)

func (f FormatTag) String() string {
	switch f {
	case FormatRGBA:
		return "RGBA"
	case FormatARGB:
		return "ARGB"
	case FormatBGRA:
		return "BGRA"
	default:
		return fmt.Sprintf("FormatTag(%d)", int(f))
	}
}

// channelOrder returns the byte offsets of the R, G, B, A channels within
// a four-byte pixel for the given source format.
func channelOrder(f FormatTag) (r, g, b, a int, err error) {
	switch f {
	case FormatRGBA:
		return 0, 1, 2, 3, nil
	case FormatARGB:
		return 1, 2, 3, 0, nil
	case FormatBGRA:
		return 2, 1, 0, 3, nil
	default:
		return 0, 0, 0, 0, fmt.Errorf("rfcsc: unsupported format tag %d", int(f))
	}
}

// rgbToYUV converts one 8-bit RGB triple to BT.601 limited-range Y, U, V,
// the same coefficients a D3D11 video processor's default conversion
// matrix applies for SDR content.
func rgbToYUV(r, g, b byte) (y, u, v byte) {
	ri, gi, bi := int(r), int(g), int(b)

	yy := (66*ri + 129*gi + 25*bi + 128) >> 8
	uu := (-38*ri - 74*gi + 112*bi + 128) >> 8
	vv := (112*ri - 94*gi - 18*bi + 128) >> 8

	return clamp8(yy + 16), clamp8(uu + 128), clamp8(vv + 128)
}

func clamp8(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// ReorderRGBA rewrites src (width*height*4 bytes in srcFormat order) into
// dst in RGBA channel order, a straight memory shuffle used when an
// encoder backend needs canonical-order input without a color-space
// change.
func ReorderRGBA(width, height int, src []byte, srcFormat FormatTag, dst []byte) error {
	n := width * height
	if len(src) < n*4 || len(dst) < n*4 {
		return fmt.Errorf("rfcsc: buffer too small for %dx%d image", width, height)
	}
	rOff, gOff, bOff, aOff, err := channelOrder(srcFormat)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		px := src[i*4 : i*4+4]
		o := dst[i*4 : i*4+4]
		o[0] = px[rOff]
		o[1] = px[gOff]
		o[2] = px[bOff]
		o[3] = px[aOff]
	}
	return nil
}

// RGBAToNV12Interleaved converts a width*height*4 source image into an
// NV12 buffer (Y plane followed by an interleaved UV plane), the layout
// the D3D11 video processor's BGRA→NV12 blit produces directly on the
// GPU and that ConvertAndReadback copies out row by row.
func RGBAToNV12Interleaved(width, height int, src []byte, srcFormat FormatTag, dst []byte) error {
	n := width * height
	need := n + n/2
	if len(src) < n*4 {
		return fmt.Errorf("rfcsc: source buffer too small for %dx%d image", width, height)
	}
	if len(dst) < need {
		return fmt.Errorf("rfcsc: dst buffer too small, need %d bytes", need)
	}
	rOff, gOff, bOff, _, err := channelOrder(srcFormat)
	if err != nil {
		return err
	}

	yPlane := dst[:n]
	uvPlane := dst[n : n+n/2]

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			idx := row*width + col
			px := src[idx*4 : idx*4+4]
			y, u, v := rgbToYUV(px[rOff], px[gOff], px[bOff])
			yPlane[idx] = y

			// Subsample chroma at the top-left pixel of each 2x2 block.
			if row%2 == 0 && col%2 == 0 {
				uvIdx := (row/2)*width + col
				uvPlane[uvIdx] = u
				uvPlane[uvIdx+1] = v
			}
		}
	}
	return nil
}

// RGBAToNV12Planes is identical to RGBAToNV12Interleaved except it writes
// the Y plane and UV plane into two separate destination slices, for
// encoder backends (e.g. AMF surfaces) that take NV12 as two planes
// instead of one contiguous buffer.
func RGBAToNV12Planes(width, height int, src []byte, srcFormat FormatTag, yPlane, uvPlane []byte) error {
	n := width * height
	if len(src) < n*4 {
		return fmt.Errorf("rfcsc: source buffer too small for %dx%d image", width, height)
	}
	if len(yPlane) < n || len(uvPlane) < n/2 {
		return fmt.Errorf("rfcsc: plane buffers too small for %dx%d image", width, height)
	}
	rOff, gOff, bOff, _, err := channelOrder(srcFormat)
	if err != nil {
		return err
	}

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			idx := row*width + col
			px := src[idx*4 : idx*4+4]
			y, u, v := rgbToYUV(px[rOff], px[gOff], px[bOff])
			yPlane[idx] = y

			if row%2 == 0 && col%2 == 0 {
				uvIdx := (row/2)*width + col
				uvPlane[uvIdx] = u
				uvPlane[uvIdx+1] = v
			}
		}
	}
	return nil
}

// RGBAToI420 converts a width*height*4 source image into planar I420
// (Y plane, then U plane, then V plane, chroma planes quarter resolution),
// the layout some software encoder paths expect instead of NV12.
func RGBAToI420(width, height int, src []byte, srcFormat FormatTag, dst []byte) error {
	n := width * height
	chromaLen := (width / 2) * (height / 2)
	need := n + 2*chromaLen
	if len(src) < n*4 {
		return fmt.Errorf("rfcsc: source buffer too small for %dx%d image", width, height)
	}
	if len(dst) < need {
		return fmt.Errorf("rfcsc: dst buffer too small, need %d bytes", need)
	}
	rOff, gOff, bOff, _, err := channelOrder(srcFormat)
	if err != nil {
		return err
	}

	yPlane := dst[:n]
	uPlane := dst[n : n+chromaLen]
	vPlane := dst[n+chromaLen : n+2*chromaLen]

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			idx := row*width + col
			px := src[idx*4 : idx*4+4]
			y, u, v := rgbToYUV(px[rOff], px[gOff], px[bOff])
			yPlane[idx] = y

			if row%2 == 0 && col%2 == 0 {
				cIdx := (row/2)*(width/2) + col/2
				uPlane[cIdx] = u
				vPlane[cIdx] = v
			}
		}
	}
	return nil
}
