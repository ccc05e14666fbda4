//go:build windows

package rfmouse

import "github.com/rfcore/rapidfire-go/internal/rflock"

// NewWindowsGrabber returns a Grabber backed by real GetCursorInfo/
// GetIconInfo queries, the counterpart to rfcontext.NewWindowsContext.
func NewWindowsGrabber() *Grabber {
	return &Grabber{dev: newWindowsDevice(), release: rflock.NewManualResetEvent()}
}
