package rfdiff

import (
	"sync"

	"github.com/rfcore/rapidfire-go/internal/rflock"
	"github.com/rfcore/rapidfire-go/internal/rfparam"
	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

// BufferCount is how many diff results the encoder can hold pending at
// once. RFEncoderDM's "ATTENTION" comment notes the difference encoder
// needs two ResultBuffers to compare against (current and previous), so it
// can only queue NUM_RESULTS-1 outputs rather than the full result ring.
const BufferCount = 2

// Config configures a Differencer.
type Config struct {
	Width, Height int
	BlockWidth    int
	BlockHeight   int
	BytesPerPixel int
	LockBuffer    bool
}

// Differencer implements rfencoder.Encoder by reporting, per frame, which
// fixed-size tiles changed since the previous frame instead of producing a
// compressed bitstream, generalizing RFEncoderDM's block-diff approach.
type Differencer struct {
	mu     sync.Mutex
	tiler  *Tiler
	params *rfparam.Map
	bpp    int

	pending [][]byte
}

// New returns a Differencer for cfg. BlockWidth/BlockHeight default to
// DefaultBlockWidth/DefaultBlockHeight (16x16) when zero.
func New(cfg Config) *Differencer {
	bpp := cfg.BytesPerPixel
	if bpp <= 0 {
		bpp = 4
	}
	d := &Differencer{
		tiler:  NewTiler(cfg.Width, cfg.Height, cfg.BlockWidth, cfg.BlockHeight),
		params: newParams(cfg.BlockWidth, cfg.BlockHeight, cfg.LockBuffer),
		bpp:    bpp,
	}
	_ = d.params.Set(rfparam.Width, rfparam.UintValue(uint(cfg.Width)))
	_ = d.params.Set(rfparam.Height, rfparam.UintValue(uint(cfg.Height)))
	return d
}

func (d *Differencer) Name() string { return "difference" }

// Encode scans frame for changed tiles and enqueues the bare changed-tile
// bitmap (one byte per tile, row-major — tilesX/tilesY travel out-of-band
// via Dimensions). If the pending queue is already at BufferCount and
// LOCK_BUFFER is set, Encode busy-waits via rflock.SpinAcquire for a
// consumer to drain a slot, matching lock_mapped_buffer; otherwise it
// fails fast with QueueFull, matching the non-locking path.
func (d *Differencer) Encode(frame []byte) error {
	lockVal, _ := d.params.Get(ParamLockBuffer)
	lockBuffer := lockVal.Bool()

	if lockBuffer {
		err := rflock.SpinAcquire(rflock.DefaultSpinCount, rflock.DefaultSpinInterval, func() bool {
			d.mu.Lock()
			defer d.mu.Unlock()
			return len(d.pending) < BufferCount
		})
		if err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pending) >= BufferCount {
		return rfstatus.QueueFull
	}

	tm, err := d.tiler.Scan(frame, d.bpp)
	if err != nil {
		return err
	}
	d.pending = append(d.pending, tm.Changed)
	return nil
}

// Dimensions returns the tilesX, tilesY a GetEncodedFrame payload is shaped
// as: a payload is always exactly tilesX*tilesY bytes, row-major.
func (d *Differencer) Dimensions() (int, int) {
	return d.tiler.TilesX(), d.tiler.TilesY()
}

// GetEncodedFrame returns the oldest pending changed-tile bitmap, or
// NoEncodedFrame if none is queued.
func (d *Differencer) GetEncodedFrame() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) == 0 {
		return nil, rfstatus.NoEncodedFrame
	}
	out := d.pending[0]
	d.pending = d.pending[1:]
	return out, nil
}

func (d *Differencer) SetParameter(name string, value rfparam.Value) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.params.Set(name, value)
}

func (d *Differencer) GetParameter(name string) (rfparam.Value, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.params.Get(name)
}

// GetValidated returns name's current value together with its access
// state, the building block rfencoder's codec-scoped get_parameter(name,
// codec) delegates into once it has resolved that the query's codec
// applies to this backend.
func (d *Differencer) GetValidated(name string) (rfparam.Value, rfparam.State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.params.GetValidated(name)
}

// Reset forgets the previous frame's tile checksums, forcing the next
// Encode call to report every tile changed.
func (d *Differencer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tiler.Reset()
}

// IsResizeSupported is always true: the difference encoder owns no
// vendor-fixed state, only the tile grid, which Resize rebuilds.
func (d *Differencer) IsResizeSupported() bool { return true }

// Resize tears down the tile grid and rebuilds it for the new frame
// dimensions, discarding any diff targets still queued for the old
// dimensions (spec §4.5 "Resize"), and refreshes the WIDTH/HEIGHT
// parameters.
func (d *Differencer) Resize(width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tiler.Resize(width, height)
	d.pending = nil
	_ = d.params.Set(rfparam.Width, rfparam.UintValue(uint(width)))
	_ = d.params.Set(rfparam.Height, rfparam.UintValue(uint(height)))
	return nil
}

func (d *Differencer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = nil
	return nil
}
