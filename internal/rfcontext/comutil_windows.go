//go:build windows

package rfcontext

import (
	"fmt"
	"syscall"
	"unsafe"
)

// COM vtable calling infrastructure, following the same pure-Go syscall
// pattern used throughout this codebase for D3D11/DXGI interop: no cgo,
// direct vtable dispatch via syscall.SyscallN.

type comGUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

func comVtblFn(obj uintptr, idx int) uintptr {
	vtablePtr := *(*uintptr)(unsafe.Pointer(obj))
	return *(*uintptr)(unsafe.Pointer(vtablePtr + uintptr(idx)*unsafe.Sizeof(uintptr(0))))
}

func comCall(obj uintptr, vtableIdx int, args ...uintptr) (uintptr, error) {
	fnPtr := comVtblFn(obj, vtableIdx)

	var ret uintptr
	switch len(args) {
	case 0:
		ret, _, _ = syscall.SyscallN(fnPtr, obj)
	case 1:
		ret, _, _ = syscall.SyscallN(fnPtr, obj, args[0])
	case 2:
		ret, _, _ = syscall.SyscallN(fnPtr, obj, args[0], args[1])
	case 3:
		ret, _, _ = syscall.SyscallN(fnPtr, obj, args[0], args[1], args[2])
	default:
		allArgs := make([]uintptr, 0, 1+len(args))
		allArgs = append(allArgs, obj)
		allArgs = append(allArgs, args...)
		ret, _, _ = syscall.SyscallN(fnPtr, allArgs...)
	}

	if int32(ret) < 0 {
		return ret, fmt.Errorf("rfcontext: COM vtable[%d] HRESULT 0x%08X", vtableIdx, uint32(ret))
	}
	return ret, nil
}

func comRelease(obj uintptr) {
	if obj != 0 {
		syscall.SyscallN(comVtblFn(obj, 2), obj)
	}
}

const (
	vtblQueryInterface = 0

	d3d11DeviceCreateTexture2D = 5
	d3d11CtxMap                = 14
	d3d11CtxUnmap              = 15
	d3d11CtxUpdateSubresource  = 48
	d3d11CtxCopyResource       = 47

	vtblVidDevCreateVideoProcessor           = 4
	vtblVidDevCreateVideoProcessorEnumerator = 10
	vtblVidDevCreateVideoProcessorInputView  = 8
	vtblVidDevCreateVideoProcessorOutputView = 9
	vtblVidCtxVideoProcessorBlt              = 53

	dxgiFormatB8G8R8A8 = 87
	dxgiFormatNV12     = 103

	d3d11UsageDefault  = 0
	d3d11UsageStaging  = 3
	d3d11BindRenderTarget = 0x20
	d3d11CPUAccessRead = 0x20000
)

var (
	iidID3D11VideoDevice  = comGUID{0x10ec4d5b, 0x975a, 0x4689, [8]byte{0xb9, 0xe4, 0xd0, 0xaa, 0xc3, 0x0f, 0xe3, 0x33}}
	iidID3D11VideoContext = comGUID{0x61f21c45, 0x3c0e, 0x4a74, [8]byte{0x9c, 0xea, 0x67, 0x10, 0x0d, 0x9a, 0xd5, 0xe4}}
)

// d3d11Texture2DDesc matches D3D11_TEXTURE2D_DESC.
type d3d11Texture2DDesc struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         uint32
	SampleCount    uint32
	SampleQuality  uint32
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

// d3d11MappedSubresource matches D3D11_MAPPED_SUBRESOURCE.
type d3d11MappedSubresource struct {
	PData      uintptr
	RowPitch   uint32
	DepthPitch uint32
}

// d3d11VideoProcessorContentDesc matches D3D11_VIDEO_PROCESSOR_CONTENT_DESC.
type d3d11VideoProcessorContentDesc struct {
	InputFrameFormat uint32
	InputFrameRateN  uint32
	InputFrameRateD  uint32
	InputWidth       uint32
	InputHeight      uint32
	OutputFrameRateN uint32
	OutputFrameRateD uint32
	OutputWidth      uint32
	OutputHeight     uint32
	Usage            uint32
}

// d3d11VideoProcessorStream matches D3D11_VIDEO_PROCESSOR_STREAM.
type d3d11VideoProcessorStream struct {
	Enable                int32
	OutputIndex           uint32
	InputFrameOrField     uint32
	PastFrames            uint32
	FutureFrames           uint32
	PPastSurfaces         uintptr
	PInputSurface         uintptr
	PPFutureSurfaces      uintptr
	PPPastSurfacesRight   uintptr
	PInputSurfaceRight    uintptr
	PPFutureSurfacesRight uintptr
}
