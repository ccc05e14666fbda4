package rfsession

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rfcore/rapidfire-go/internal/rfcontext"
)

// countingSource feeds a fixed number of frames then blocks forever,
// letting the test stop the loop by closing the session.
type countingSource struct {
	width, height int
	frame         []byte
	remaining     atomic.Int32
}

func (c *countingSource) WaitForChange(timeout time.Duration) ([]byte, bool, error) {
	if c.remaining.Add(-1) < 0 {
		time.Sleep(timeout)
		return nil, false, nil
	}
	return c.frame, true, nil
}

func (c *countingSource) Bounds() (int, int) { return c.width, c.height }

func TestPreprocessLoopEventModeEncodesFrames(t *testing.T) {
	s := newTestSession(t, "identity")

	slot, err := s.RegisterRenderTarget(8, 8, rfcontext.FormatRGBA)
	if err != nil {
		t.Fatalf("RegisterRenderTarget: %v", err)
	}

	src := &countingSource{width: 8, height: 8, frame: solidRGBA(8, 8)}
	src.remaining.Store(3)

	done := make(chan struct{})
	go func() {
		s.PreprocessLoop(slot, src, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(time.Second)
	for {
		if _, err := s.GetEncodedFrame(); err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for an encoded frame")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	s.Close()
	<-done
}
