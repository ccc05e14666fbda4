package rfsession

import (
	"time"

	"github.com/rfcore/rapidfire-go/internal/rfcontext"
)

// ChangeSource is implemented by a desktop capture backend (DXGI desktop
// duplication, a polling GDI fallback, ...) and supplies the frames a
// DOPP-style session preprocesses, generalizing the teacher's
// ScreenCapturer/TightLoopHint pair.
type ChangeSource interface {
	// WaitForChange blocks until a new frame is available or timeout
	// elapses, returning ok=false on timeout with no new data. Mirrors
	// DXGI's AcquireNextFrame blocking semantics.
	WaitForChange(timeout time.Duration) (pixels []byte, ok bool, err error)
	// Bounds reports the source's current width/height, so the
	// preprocess loop can detect an external resize.
	Bounds() (width, height int)
}

type loopMode int

const (
	loopModeEvent loopMode = iota
	loopModeBlocking
	loopModeStopped
)

// PreprocessLoop drives EncodeFrame calls from src until the session is
// closed, dispatching between the two modes named in spec §4.8 the way
// the teacher's captureLoop dispatches between captureLoopDXGI and
// captureLoopTicker: each mode function returns the next mode instead of
// calling the other recursively, so repeated mode switches never grow the
// call stack.
func (s *Session) PreprocessLoop(slot int, src ChangeSource, timeout time.Duration) {
	mode := loopModeEvent
	if s.cfg.Mode == ModeBlockUntilChange {
		mode = loopModeBlocking
	}

	for mode != loopModeStopped {
		switch mode {
		case loopModeEvent:
			mode = s.preprocessEvent(slot, src, timeout)
		case loopModeBlocking:
			mode = s.preprocessBlocking(slot, src, timeout)
		}
	}
}

// preprocessEvent processes frames as soon as WaitForChange reports one,
// the equivalent of the teacher's DXGI tight loop.
func (s *Session) preprocessEvent(slot int, src ChangeSource, timeout time.Duration) loopMode {
	var lastPixels []byte

	for {
		select {
		case <-s.done:
			return loopModeStopped
		case <-s.desktopRelease.C():
			// release_event(desktop-change): nothing to interrupt mid-wait
			// generically across ChangeSource implementations, so just
			// consume the signal and re-check promptly next iteration.
			s.desktopRelease.Reset()
		default:
		}

		if lastPixels != nil && s.ConsumeChangeDebt() {
			// Still inside the post-notification dirty window (spec §4.8
			// "Frame debt"): treat this pass as dirty without waiting on
			// another notification.
			if err := s.EncodeFrame(slot, lastPixels, rfcontext.OutputNV12); err != nil && !isFlowControl(err) {
				log.Warn("preprocess encode failed", "session", s.id, "error", err)
			}
			continue
		}

		pixels, ok, err := src.WaitForChange(timeout)
		if err != nil {
			log.Warn("preprocess event wait failed", "session", s.id, "error", err)
			return loopModeStopped
		}
		if !ok {
			if !s.ConsumeResizeDebt() || lastPixels == nil {
				continue
			}
			// Post-resize debt: force an extra encode pass off the last
			// captured frame even though nothing changed this iteration.
			pixels = lastPixels
		} else {
			lastPixels = pixels
			s.ArmChangeDebt()
		}
		if err := s.EncodeFrame(slot, pixels, rfcontext.OutputNV12); err != nil && !isFlowControl(err) {
			log.Warn("preprocess encode failed", "session", s.id, "error", err)
		}
	}
}

// preprocessBlocking waits for a change with a bounded timeout on each
// iteration and forces a preprocess pass whenever resize debt remains,
// matching the teacher's ticker-paced fallback which keeps the pipeline
// running at a fixed cadence instead of spinning on DXGI's native wait.
func (s *Session) preprocessBlocking(slot int, src ChangeSource, timeout time.Duration) loopMode {
	ticker := time.NewTicker(timeout)
	defer ticker.Stop()

	var lastPixels []byte

	for {
		select {
		case <-s.done:
			return loopModeStopped
		case <-s.desktopRelease.C():
			s.desktopRelease.Reset()
			continue
		case <-ticker.C:
			if lastPixels != nil && s.ConsumeChangeDebt() {
				if err := s.EncodeFrame(slot, lastPixels, rfcontext.OutputNV12); err != nil && !isFlowControl(err) {
					log.Warn("preprocess encode failed", "session", s.id, "error", err)
				}
				continue
			}

			pixels, ok, err := src.WaitForChange(0)
			if err != nil {
				log.Warn("preprocess blocking wait failed", "session", s.id, "error", err)
				return loopModeStopped
			}
			if ok {
				lastPixels = pixels
				s.ArmChangeDebt()
			} else if !s.ConsumeResizeDebt() {
				continue
			} else {
				pixels = lastPixels
			}
			if err := s.EncodeFrame(slot, pixels, rfcontext.OutputNV12); err != nil && !isFlowControl(err) {
				log.Warn("preprocess encode failed", "session", s.id, "error", err)
			}
		}
	}
}

func isFlowControl(err error) bool {
	type flowControl interface{ IsFlowControl() bool }
	if fc, ok := err.(flowControl); ok {
		return fc.IsFlowControl()
	}
	return false
}
