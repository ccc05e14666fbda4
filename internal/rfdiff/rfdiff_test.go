package rfdiff

import (
	"errors"
	"testing"

	"github.com/rfcore/rapidfire-go/internal/rfparam"
	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

func solidFrame(width, height int, v byte) []byte {
	buf := make([]byte, width*height*4)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

func TestTilerFirstScanReportsAllChanged(t *testing.T) {
	tiler := NewTiler(32, 32, 16, 16)
	tm, err := tiler.Scan(solidFrame(32, 32, 10), 4)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if tm.TilesX != 2 || tm.TilesY != 2 {
		t.Fatalf("tile grid = %dx%d, want 2x2", tm.TilesX, tm.TilesY)
	}
	for i, c := range tm.Changed {
		if c != 1 {
			t.Fatalf("tile %d not marked changed on first scan", i)
		}
	}
}

func TestTilerSecondScanReportsOnlyChangedTile(t *testing.T) {
	tiler := NewTiler(32, 32, 16, 16)
	frame := solidFrame(32, 32, 10)
	if _, err := tiler.Scan(frame, 4); err != nil {
		t.Fatalf("first Scan: %v", err)
	}

	modified := make([]byte, len(frame))
	copy(modified, frame)
	// Mutate the top-left 16x16 tile only.
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			idx := (y*32 + x) * 4
			modified[idx] = 200
		}
	}

	tm, err := tiler.Scan(modified, 4)
	if err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	if tm.Changed[0] != 1 {
		t.Fatalf("top-left tile should be changed")
	}
	for i := 1; i < len(tm.Changed); i++ {
		if tm.Changed[i] != 0 {
			t.Fatalf("tile %d unexpectedly changed", i)
		}
	}
}

func TestTilerResetForcesFullChange(t *testing.T) {
	tiler := NewTiler(16, 16, 16, 16)
	frame := solidFrame(16, 16, 5)
	if _, err := tiler.Scan(frame, 4); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	tiler.Reset()
	tm, err := tiler.Scan(frame, 4)
	if err != nil {
		t.Fatalf("Scan after reset: %v", err)
	}
	if tm.Changed[0] != 1 {
		t.Fatalf("tile should report changed immediately after Reset")
	}
}

func TestDifferencerEncodeGetRoundTrip(t *testing.T) {
	d := New(Config{Width: 32, Height: 16, BlockWidth: 16, BlockHeight: 16})
	defer d.Close()

	if err := d.Encode(solidFrame(32, 16, 1)); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	payload, err := d.GetEncodedFrame()
	if err != nil {
		t.Fatalf("GetEncodedFrame: %v", err)
	}
	tilesX, tilesY := d.Dimensions()
	if tilesX != 2 || tilesY != 1 {
		t.Fatalf("tile grid = %dx%d, want 2x1", tilesX, tilesY)
	}
	if len(payload) != tilesX*tilesY {
		t.Fatalf("payload length = %d, want %d (bare bitmap)", len(payload), tilesX*tilesY)
	}

	if _, err := d.GetEncodedFrame(); !errors.Is(err, rfstatus.NoEncodedFrame) {
		t.Fatalf("err = %v, want NoEncodedFrame", err)
	}
}

func TestDifferencerQueueFullWithoutLock(t *testing.T) {
	d := New(Config{Width: 16, Height: 16, BlockWidth: 16, BlockHeight: 16})
	defer d.Close()

	for i := 0; i < BufferCount; i++ {
		if err := d.Encode(solidFrame(16, 16, byte(i))); err != nil {
			t.Fatalf("Encode %d: %v", i, err)
		}
	}
	if err := d.Encode(solidFrame(16, 16, 9)); !errors.Is(err, rfstatus.QueueFull) {
		t.Fatalf("err = %v, want QueueFull", err)
	}
}

func TestDifferencerBlockParametersAreBlocked(t *testing.T) {
	d := New(Config{Width: 16, Height: 16, BlockWidth: 16, BlockHeight: 16})
	defer d.Close()

	if err := d.SetParameter(ParamBlockS, rfparam.UintValue(32)); !errors.Is(err, rfstatus.ParamAccessDenied) {
		t.Fatalf("err = %v, want ParamAccessDenied", err)
	}

	val, err := d.GetParameter(ParamBlockS)
	if err != nil {
		t.Fatalf("GetParameter: %v", err)
	}
	if val.Uint() != 16 {
		t.Fatalf("BLOCK_S = %d, want 16", val.Uint())
	}
}

func TestDifferencerResizeRebuildsTileGrid(t *testing.T) {
	d := New(Config{Width: 32, Height: 16, BlockWidth: 16, BlockHeight: 16})
	defer d.Close()

	if err := d.Encode(solidFrame(32, 16, 1)); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if !d.IsResizeSupported() {
		t.Fatalf("difference encoder should always support resize")
	}
	if err := d.Resize(16, 16); err != nil {
		t.Fatalf("Resize: %v", err)
	}

	tilesX, tilesY := d.Dimensions()
	if tilesX != 1 || tilesY != 1 {
		t.Fatalf("tile grid after resize = %dx%d, want 1x1", tilesX, tilesY)
	}
	if _, err := d.GetEncodedFrame(); !errors.Is(err, rfstatus.NoEncodedFrame) {
		t.Fatalf("err = %v, want NoEncodedFrame (resize discards queued diff targets)", err)
	}

	width, err := d.GetParameter(rfparam.Width)
	if err != nil {
		t.Fatalf("GetParameter(Width): %v", err)
	}
	if width.Uint() != 16 {
		t.Fatalf("Width = %d, want 16", width.Uint())
	}

	// First scan at the new dimensions reports every tile changed, same as
	// a brand-new Differencer (spec §4.5's "tears down ... and rebuilds").
	if err := d.Encode(solidFrame(16, 16, 1)); err != nil {
		t.Fatalf("Encode after resize: %v", err)
	}
	payload, err := d.GetEncodedFrame()
	if err != nil {
		t.Fatalf("GetEncodedFrame after resize: %v", err)
	}
	for i, c := range payload {
		if c != 1 {
			t.Fatalf("tile %d not marked changed on first scan after resize", i)
		}
	}
}

func TestDifferencerLockBufferIsSettable(t *testing.T) {
	d := New(Config{Width: 16, Height: 16, BlockWidth: 16, BlockHeight: 16})
	defer d.Close()

	if err := d.SetParameter(ParamLockBuffer, rfparam.BoolValue(true)); err != nil {
		t.Fatalf("SetParameter LOCK_BUFFER: %v", err)
	}
	val, err := d.GetParameter(ParamLockBuffer)
	if err != nil {
		t.Fatalf("GetParameter: %v", err)
	}
	if !val.Bool() {
		t.Fatalf("LOCK_BUFFER not updated")
	}
}
