//go:build windows

package rfcontext

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/rfcore/rapidfire-go/internal/rfcsc"
	"github.com/rfcore/rapidfire-go/internal/rflog"
)

// windowsDevice drives a D3D11 Video Processor to perform BGRA/ARGB/RGBA
// to NV12 conversion entirely on the GPU, modeled on gpuConverter: each
// registered image owns an upload texture plus the video-processor input
// view bound to it, and processBuffer uploads new pixel data via
// UpdateSubresource, blits to a shared NV12 output texture, copies to a
// CPU-readable staging texture, and maps it back out.
type windowsDevice struct {
	device       uintptr
	context      uintptr
	videoDevice  uintptr
	videoContext uintptr
	enumerator   uintptr
	processor    uintptr

	width, height int

	nv12Texture uintptr
	nv12Staging uintptr
	outputView  uintptr

	mu    sync.Mutex
	slots []*windowsSlot
}

type windowsSlot struct {
	texture   uintptr
	inputView uintptr
	format    Format
	width     int
	height    int
	inUse     bool
}

func newWindowsDevice(d3dDevice, d3dContext uintptr, width, height int) (*windowsDevice, error) {
	dev := &windowsDevice{device: d3dDevice, context: d3dContext, width: width, height: height}

	var videoDevice uintptr
	if _, err := comCall(d3dDevice, vtblQueryInterface,
		uintptr(unsafe.Pointer(&iidID3D11VideoDevice)),
		uintptr(unsafe.Pointer(&videoDevice)),
	); err != nil {
		return nil, fmt.Errorf("rfcontext: QueryInterface ID3D11VideoDevice: %w", err)
	}
	dev.videoDevice = videoDevice

	var videoContext uintptr
	if _, err := comCall(d3dContext, vtblQueryInterface,
		uintptr(unsafe.Pointer(&iidID3D11VideoContext)),
		uintptr(unsafe.Pointer(&videoContext)),
	); err != nil {
		dev.close()
		return nil, fmt.Errorf("rfcontext: QueryInterface ID3D11VideoContext: %w", err)
	}
	dev.videoContext = videoContext

	desc := d3d11VideoProcessorContentDesc{
		InputFrameRateN: 60, InputFrameRateD: 1,
		InputWidth: uint32(width), InputHeight: uint32(height),
		OutputFrameRateN: 60, OutputFrameRateD: 1,
		OutputWidth: uint32(width), OutputHeight: uint32(height),
	}
	var enumerator uintptr
	if _, err := comCall(videoDevice, vtblVidDevCreateVideoProcessorEnumerator,
		uintptr(unsafe.Pointer(&desc)), uintptr(unsafe.Pointer(&enumerator)),
	); err != nil {
		dev.close()
		return nil, fmt.Errorf("rfcontext: CreateVideoProcessorEnumerator: %w", err)
	}
	dev.enumerator = enumerator

	var processor uintptr
	if _, err := comCall(videoDevice, vtblVidDevCreateVideoProcessor,
		enumerator, 0, uintptr(unsafe.Pointer(&processor)),
	); err != nil {
		dev.close()
		return nil, fmt.Errorf("rfcontext: CreateVideoProcessor: %w", err)
	}
	dev.processor = processor

	nv12Desc := d3d11Texture2DDesc{
		Width: uint32(width), Height: uint32(height),
		MipLevels: 1, ArraySize: 1, Format: dxgiFormatNV12, SampleCount: 1,
		Usage: d3d11UsageDefault, BindFlags: d3d11BindRenderTarget,
	}
	var nv12Texture uintptr
	if _, err := comCall(d3dDevice, d3d11DeviceCreateTexture2D,
		uintptr(unsafe.Pointer(&nv12Desc)), 0, uintptr(unsafe.Pointer(&nv12Texture)),
	); err != nil {
		dev.close()
		return nil, fmt.Errorf("rfcontext: CreateTexture2D NV12: %w", err)
	}
	dev.nv12Texture = nv12Texture

	stagingDesc := d3d11Texture2DDesc{
		Width: uint32(width), Height: uint32(height),
		MipLevels: 1, ArraySize: 1, Format: dxgiFormatNV12, SampleCount: 1,
		Usage: d3d11UsageStaging, CPUAccessFlags: d3d11CPUAccessRead,
	}
	var nv12Staging uintptr
	if _, err := comCall(d3dDevice, d3d11DeviceCreateTexture2D,
		uintptr(unsafe.Pointer(&stagingDesc)), 0, uintptr(unsafe.Pointer(&nv12Staging)),
	); err != nil {
		dev.close()
		return nil, fmt.Errorf("rfcontext: CreateTexture2D NV12 staging: %w", err)
	}
	dev.nv12Staging = nv12Staging

	outputViewDesc := [4]uint32{1, 0, 0, 0}
	var outputView uintptr
	if _, err := comCall(videoDevice, vtblVidDevCreateVideoProcessorOutputView,
		nv12Texture, enumerator, uintptr(unsafe.Pointer(&outputViewDesc)), uintptr(unsafe.Pointer(&outputView)),
	); err != nil {
		dev.close()
		return nil, fmt.Errorf("rfcontext: CreateVideoProcessorOutputView: %w", err)
	}
	dev.outputView = outputView

	rflog.L("rfcontext").Info("windows compute context initialized", "width", width, "height", height)
	return dev, nil
}

func (d *windowsDevice) registerImage(width, height int, format Format) (int, error) {
	bgraDesc := d3d11Texture2DDesc{
		Width: uint32(width), Height: uint32(height),
		MipLevels: 1, ArraySize: 1, Format: dxgiFormatB8G8R8A8, SampleCount: 1,
		Usage: d3d11UsageDefault, BindFlags: d3d11BindRenderTarget,
	}
	var texture uintptr
	if _, err := comCall(d.device, d3d11DeviceCreateTexture2D,
		uintptr(unsafe.Pointer(&bgraDesc)), 0, uintptr(unsafe.Pointer(&texture)),
	); err != nil {
		return 0, fmt.Errorf("rfcontext: CreateTexture2D input: %w", err)
	}

	inputViewDesc := [5]uint32{0, 1, 0, 0, 0}
	var inputView uintptr
	if _, err := comCall(d.videoDevice, vtblVidDevCreateVideoProcessorInputView,
		texture, d.enumerator, uintptr(unsafe.Pointer(&inputViewDesc)), uintptr(unsafe.Pointer(&inputView)),
	); err != nil {
		comRelease(texture)
		return 0, fmt.Errorf("rfcontext: CreateVideoProcessorInputView: %w", err)
	}

	slot := &windowsSlot{texture: texture, inputView: inputView, format: format, width: width, height: height, inUse: true}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range d.slots {
		if s == nil {
			d.slots[i] = slot
			return i, nil
		}
	}
	d.slots = append(d.slots, slot)
	return len(d.slots) - 1, nil
}

func (d *windowsDevice) unregisterImage(slot int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if slot < 0 || slot >= len(d.slots) || d.slots[slot] == nil {
		return fmt.Errorf("rfcontext: unregisterImage: invalid slot %d", slot)
	}
	s := d.slots[slot]
	comRelease(s.inputView)
	comRelease(s.texture)
	d.slots[slot] = nil
	return nil
}

func (d *windowsDevice) processBuffer(slot int, pixels []byte, layout OutputLayout, dst []byte) (int, error) {
	d.mu.Lock()
	s := d.slotAt(slot)
	d.mu.Unlock()
	if s == nil {
		return 0, fmt.Errorf("rfcontext: processBuffer: invalid slot %d", slot)
	}

	// A plain reorder needs no video-processor blit: copy_rgba_reorder
	// (spec §4.2) runs on the CPU-side pixels directly rather than round
	// tripping them through the NV12 output texture.
	if layout == OutputRGBA {
		need := s.width * s.height * 4
		if err := rfcsc.ReorderRGBA(s.width, s.height, pixels, s.format, dst); err != nil {
			return 0, err
		}
		return need, nil
	}

	rowPitch := uint32(s.width * 4)
	if len(pixels) > 0 {
		comCall(d.context, d3d11CtxUpdateSubresource,
			s.texture, 0, 0, uintptr(unsafe.Pointer(&pixels[0])), uintptr(rowPitch), 0)
	}

	stream := d3d11VideoProcessorStream{Enable: 1, PInputSurface: s.inputView}
	if _, err := comCall(d.videoContext, vtblVidCtxVideoProcessorBlt,
		d.processor, d.outputView, 0, 1, uintptr(unsafe.Pointer(&stream)),
	); err != nil {
		return 0, fmt.Errorf("rfcontext: VideoProcessorBlt: %w", err)
	}

	if _, err := comCall(d.context, d3d11CtxCopyResource, d.nv12Staging, d.nv12Texture); err != nil {
		return 0, fmt.Errorf("rfcontext: CopyResource: %w", err)
	}

	var mapped d3d11MappedSubresource
	if _, err := comCall(d.context, d3d11CtxMap, d.nv12Staging, 0, 1, 0, uintptr(unsafe.Pointer(&mapped))); err != nil {
		return 0, fmt.Errorf("rfcontext: Map NV12 staging: %w", err)
	}

	n := copyNV12(mapped, d.width, d.height, dst, layout)

	comCall(d.context, d3d11CtxUnmap, d.nv12Staging, 0)
	return n, nil
}

// copyNV12 reads the mapped NV12 staging texture out into dst, converting
// to I420 if the caller asked for planar output (deinterleaving the UV
// plane), row by row to respect the texture's row pitch.
func copyNV12(mapped d3d11MappedSubresource, width, height int, dst []byte, layout OutputLayout) int {
	rowPitch := int(mapped.RowPitch)
	ySize := width * height

	yPlane := make([]byte, ySize)
	for y := 0; y < height; y++ {
		row := unsafe.Slice((*byte)(unsafe.Pointer(mapped.PData+uintptr(y*rowPitch))), width)
		copy(yPlane[y*width:], row)
	}

	uvHeight := height / 2
	uvPlane := make([]byte, width*uvHeight)
	uvBase := mapped.PData + uintptr(height*rowPitch)
	for y := 0; y < uvHeight; y++ {
		row := unsafe.Slice((*byte)(unsafe.Pointer(uvBase+uintptr(y*rowPitch))), width)
		copy(uvPlane[y*width:], row)
	}

	switch layout {
	case OutputNV12:
		n := copy(dst, yPlane)
		n += copy(dst[n:], uvPlane)
		return n
	case OutputI420:
		n := copy(dst, yPlane)
		chromaW, chromaH := width/2, uvHeight
		u := make([]byte, chromaW*chromaH)
		v := make([]byte, chromaW*chromaH)
		for row := 0; row < chromaH; row++ {
			for col := 0; col < chromaW; col++ {
				u[row*chromaW+col] = uvPlane[row*width+col*2]
				v[row*chromaW+col] = uvPlane[row*width+col*2+1]
			}
		}
		n += copy(dst[n:], u)
		n += copy(dst[n:], v)
		return n
	default:
		return 0
	}
}

func (d *windowsDevice) slotAt(slot int) *windowsSlot {
	if slot < 0 || slot >= len(d.slots) {
		return nil
	}
	return d.slots[slot]
}

func (d *windowsDevice) close() {
	d.mu.Lock()
	for _, s := range d.slots {
		if s != nil {
			comRelease(s.inputView)
			comRelease(s.texture)
		}
	}
	d.slots = nil
	d.mu.Unlock()

	comRelease(d.outputView)
	comRelease(d.nv12Staging)
	comRelease(d.nv12Texture)
	comRelease(d.processor)
	comRelease(d.enumerator)
	comRelease(d.videoContext)
	comRelease(d.videoDevice)
}
