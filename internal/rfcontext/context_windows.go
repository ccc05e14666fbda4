//go:build windows

package rfcontext

import "github.com/rfcore/rapidfire-go/internal/rflock"

// NewWindowsContext returns a Context backed by the D3D11 Video Processor,
// opened on an existing D3D11 device/context pair per spec §4.1's "opens
// on an existing graphics device" contract.
func NewWindowsContext(d3dDevice, d3dContext uintptr, width, height int) (*Context, error) {
	dev, err := newWindowsDevice(d3dDevice, d3dContext, width, height)
	if err != nil {
		return nil, err
	}
	return &Context{dev: dev, results: rflock.NewRing(NumResultBuffers)}, nil
}
