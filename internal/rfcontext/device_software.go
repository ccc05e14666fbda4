package rfcontext

import (
	"fmt"
	"sync"

	"github.com/rfcore/rapidfire-go/internal/rfcsc"
)

// softwareDevice runs the same CSC math the Windows device dispatches to
// the D3D11 Video Processor, but entirely on the CPU. It backs every
// non-Windows build and lets the package be exercised fully by tests
// without cgo or a GPU.
type softwareDevice struct {
	mu    sync.Mutex
	slots []*softwareSlot
}

type softwareSlot struct {
	width, height int
	format        Format
	inUse         bool
}

func newSoftwareDevice() *softwareDevice {
	return &softwareDevice{}
}

func (d *softwareDevice) registerImage(width, height int, format Format) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("rfcontext: invalid dimensions %dx%d", width, height)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for i, s := range d.slots {
		if s == nil || !s.inUse {
			slot := &softwareSlot{width: width, height: height, format: format, inUse: true}
			d.slots = growSlots(d.slots, i, slot)
			return i, nil
		}
	}
	d.slots = append(d.slots, &softwareSlot{width: width, height: height, format: format, inUse: true})
	return len(d.slots) - 1, nil
}

func growSlots(slots []*softwareSlot, i int, slot *softwareSlot) []*softwareSlot {
	slots[i] = slot
	return slots
}

func (d *softwareDevice) unregisterImage(slot int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if slot < 0 || slot >= len(d.slots) || d.slots[slot] == nil {
		return fmt.Errorf("rfcontext: unregisterImage: invalid slot %d", slot)
	}
	d.slots[slot] = nil
	return nil
}

func (d *softwareDevice) processBuffer(slot int, pixels []byte, layout OutputLayout, dst []byte) (int, error) {
	d.mu.Lock()
	s := d.slotAt(slot)
	d.mu.Unlock()

	if s == nil {
		return 0, fmt.Errorf("rfcontext: processBuffer: invalid slot %d", slot)
	}

	switch layout {
	case OutputNV12:
		need := s.width*s.height + s.width*s.height/2
		if err := rfcsc.RGBAToNV12Interleaved(s.width, s.height, pixels, s.format, dst); err != nil {
			return 0, err
		}
		return need, nil
	case OutputI420:
		need := s.width*s.height + 2*((s.width/2)*(s.height/2))
		if err := rfcsc.RGBAToI420(s.width, s.height, pixels, s.format, dst); err != nil {
			return 0, err
		}
		return need, nil
	case OutputRGBA:
		need := s.width * s.height * 4
		if err := rfcsc.ReorderRGBA(s.width, s.height, pixels, s.format, dst); err != nil {
			return 0, err
		}
		return need, nil
	default:
		return 0, fmt.Errorf("rfcontext: unsupported output layout %d", layout)
	}
}

func (d *softwareDevice) slotAt(slot int) *softwareSlot {
	if slot < 0 || slot >= len(d.slots) {
		return nil
	}
	return d.slots[slot]
}

func (d *softwareDevice) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slots = nil
}
