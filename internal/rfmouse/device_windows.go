//go:build windows

package rfmouse

import (
	"syscall"
	"unsafe"
)

var (
	user32            = syscall.NewLazyDLL("user32.dll")
	procGetCursorInfo = user32.NewProc("GetCursorInfo")
	procGetIconInfo   = user32.NewProc("GetIconInfo")
	procDeleteObject  = syscall.NewLazyDLL("gdi32.dll").NewProc("DeleteObject")
	procGetObjectW    = syscall.NewLazyDLL("gdi32.dll").NewProc("GetObjectW")
	procGetDIBits     = syscall.NewLazyDLL("gdi32.dll").NewProc("GetDIBits")
	procGetDC         = user32.NewProc("GetDC")
	procReleaseDC     = user32.NewProc("ReleaseDC")
)

const cursorShowing = 0x00000001

type cursorInfoW struct {
	CbSize      uint32
	Flags       uint32
	HCursor     uintptr
	PtScreenPos struct{ X, Y int32 }
}

type iconInfoW struct {
	FIcon    int32
	XHotspot uint32
	YHotspot uint32
	HbmMask  uintptr
	HbmColor uintptr
}

type bitmap struct {
	Type       int32
	Width      int32
	Height     int32
	WidthBytes int32
	Planes     uint16
	BitsPixel  uint16
	Bits       uintptr
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

const dibRGBColors = 0

// windowsDevice queries the system cursor via GetCursorInfo/GetIconInfo,
// modeled on the teacher's cursor_windows.go CursorPosition/CompositeCursor
// pair, extended to read the mask/color bitmap pixels back with GetDIBits
// the way RFMouseGrab reads them off the cursor's HBITMAPs.
type windowsDevice struct{}

func newWindowsDevice() *windowsDevice {
	return &windowsDevice{}
}

func (d *windowsDevice) shape() (MouseData2, error) {
	var ci cursorInfoW
	ci.CbSize = uint32(unsafe.Sizeof(ci))
	ret, _, _ := procGetCursorInfo.Call(uintptr(unsafe.Pointer(&ci)))
	if ret == 0 {
		return MouseData2{}, nil
	}

	visible := ci.Flags&cursorShowing != 0
	if ci.HCursor == 0 {
		return MouseData2{Visible: visible}, nil
	}

	var ii iconInfoW
	ret, _, _ = procGetIconInfo.Call(ci.HCursor, uintptr(unsafe.Pointer(&ii)))
	if ret == 0 {
		return MouseData2{Visible: visible}, nil
	}
	defer func() {
		if ii.HbmMask != 0 {
			procDeleteObject.Call(ii.HbmMask)
		}
		if ii.HbmColor != 0 {
			procDeleteObject.Call(ii.HbmColor)
		}
	}()

	flags := FlagColor
	hbmp := ii.HbmColor
	if ii.HbmColor == 0 {
		flags = FlagMonochrome
		hbmp = ii.HbmMask
	}

	shape, err := readBitmap(hbmp)
	if err != nil {
		return MouseData2{}, err
	}

	return MouseData2{
		Visible:  visible,
		HotspotX: ii.XHotspot,
		HotspotY: ii.YHotspot,
		Flags:    flags,
		Shape:    shape,
	}, nil
}

// readBitmap copies an HBITMAP's pixels out via GetObject (for dimensions)
// and GetDIBits (for pixel data), mirroring how RFMouseGrab reads the
// cursor's mask/color bitmaps off their HBITMAP handles.
func readBitmap(hbmp uintptr) (BitmapBuffer, error) {
	var bm bitmap
	procGetObjectW.Call(hbmp, unsafe.Sizeof(bm), uintptr(unsafe.Pointer(&bm)))

	hdc, _, _ := procGetDC.Call(0)
	defer procReleaseDC.Call(0, hdc)

	bi := bitmapInfoHeader{
		Size:     uint32(unsafe.Sizeof(bitmapInfoHeader{})),
		Width:    bm.Width,
		Height:   -bm.Height, // top-down DIB
		Planes:   1,
		BitCount: 32,
	}
	pitch := uint32(bm.Width) * 4
	pixels := make([]byte, pitch*uint32(bm.Height))

	procGetDIBits.Call(hdc, hbmp, 0, uintptr(bm.Height),
		uintptr(unsafe.Pointer(&pixels[0])), uintptr(unsafe.Pointer(&bi)), dibRGBColors)

	return BitmapBuffer{
		Width:        uint32(bm.Width),
		Height:       uint32(bm.Height),
		Pitch:        pitch,
		BitsPerPixel: 32,
		Pixels:       pixels,
	}, nil
}

func (d *windowsDevice) close() {}
