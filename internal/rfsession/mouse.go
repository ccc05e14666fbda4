package rfsession

import (
	"context"

	"github.com/rfcore/rapidfire-go/internal/rfmouse"
	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

// ReleaseEventKind names one of a session's manual-reset events, the two
// release_event can signal to unblock a thread waiting inside a session
// call (spec §4.7 "Cancellation").
type ReleaseEventKind int

const (
	EventDesktopChange ReleaseEventKind = iota
	EventMouseShape
)

// WithMouseGrabber replaces the session's mouse-shape grabber before any
// call to GetMouseData/GetMouseData2, letting Windows callers plug in
// rfmouse.NewWindowsGrabber instead of the portable software default New
// installs when Config.MouseData is set.
func (s *Session) WithMouseGrabber(g *rfmouse.Grabber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCreated {
		return rfstatus.InvalidSession
	}
	if s.mouseGrabber != nil {
		s.mouseGrabber.Close()
	}
	s.mouseGrabber = g
	return nil
}

// GetMouseData returns the v1 cursor-shape payload. Fails with Fail if
// the session was not created with its mouse-data property set (and with
// InvalidSession once the session is closed), mirroring RFSession::getMouseData's unconditional
// RF_STATUS_FAIL for sessions without a grabber.
func (s *Session) GetMouseData(ctx context.Context, waitForShapeChange bool) (rfmouse.MouseData, error) {
	g, err := s.grabber()
	if err != nil {
		return rfmouse.MouseData{}, err
	}
	return g.GetMouseData(ctx, waitForShapeChange)
}

// GetMouseData2 returns the v2 cursor-shape payload.
func (s *Session) GetMouseData2(ctx context.Context, waitForShapeChange bool) (rfmouse.MouseData2, error) {
	g, err := s.grabber()
	if err != nil {
		return rfmouse.MouseData2{}, err
	}
	return g.GetMouseData2(ctx, waitForShapeChange)
}

func (s *Session) grabber() (*rfmouse.Grabber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == StateClosed {
		return nil, rfstatus.InvalidSession
	}
	if s.mouseGrabber == nil {
		return nil, rfstatus.Fail
	}
	return s.mouseGrabber, nil
}

// ReleaseEvent signals one of the session's named manual-reset events to
// unblock a thread currently waiting inside GetMouseData/GetMouseData2 or
// a preprocess pass waiting on desktop-change.
func (s *Session) ReleaseEvent(kind ReleaseEventKind) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == StateClosed {
		return rfstatus.InvalidSession
	}

	switch kind {
	case EventDesktopChange:
		s.desktopRelease.Signal()
		return nil
	case EventMouseShape:
		if s.mouseGrabber == nil {
			return rfstatus.Fail
		}
		s.mouseGrabber.Release()
		return nil
	default:
		return rfstatus.Fail
	}
}
