package rfsession

import (
	"errors"
	"testing"
	"time"

	"github.com/rfcore/rapidfire-go/internal/rfcontext"
	"github.com/rfcore/rapidfire-go/internal/rfstatus"
)

func intPtr(v int) *int { return &v }

func testResolver() StaticDisplayResolver {
	return StaticDisplayResolver{
		VendorDesktopIDs:   map[int]int{7: 0},
		PlatformDisplayIDs: map[int]int{1: 1},
		InternalDisplayIDs: map[int]int{0: 0},
	}
}

func TestResolveDesktopIndexRequiresExactlyOneIdentifier(t *testing.T) {
	resolver := testResolver()

	if _, err := ResolveDesktopIndex(DesktopIdentifier{}, resolver); !errors.Is(err, rfstatus.InvalidDesktopId) {
		t.Fatalf("no identifiers: err = %v, want InvalidDesktopId", err)
	}

	multi := DesktopIdentifier{VendorDesktopID: intPtr(7), InternalDisplayID: intPtr(0)}
	if _, err := ResolveDesktopIndex(multi, resolver); !errors.Is(err, rfstatus.InvalidDesktopId) {
		t.Fatalf("multiple identifiers: err = %v, want InvalidDesktopId", err)
	}
}

func TestResolveDesktopIndexRejectsUnknownID(t *testing.T) {
	resolver := testResolver()
	id := DesktopIdentifier{VendorDesktopID: intPtr(999)}
	if _, err := ResolveDesktopIndex(id, resolver); !errors.Is(err, rfstatus.InvalidDesktopId) {
		t.Fatalf("unknown vendor id: err = %v, want InvalidDesktopId", err)
	}
}

func TestResolveDesktopIndexResolvesEachIdentifierKind(t *testing.T) {
	resolver := testResolver()

	cases := []struct {
		name string
		id   DesktopIdentifier
		want int
	}{
		{"vendor", DesktopIdentifier{VendorDesktopID: intPtr(7)}, 0},
		{"platform", DesktopIdentifier{PlatformDisplayID: intPtr(1)}, 1},
		{"internal", DesktopIdentifier{InternalDisplayID: intPtr(0)}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveDesktopIndex(tc.id, resolver)
			if err != nil {
				t.Fatalf("ResolveDesktopIndex: %v", err)
			}
			if got != tc.want {
				t.Fatalf("index = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestNewDesktopSessionRejectsAmbiguousIdentifier(t *testing.T) {
	resolver := testResolver()
	if _, err := NewDesktopSession(Config{Width: 16, Height: 16}, DesktopIdentifier{}, resolver); !errors.Is(err, rfstatus.InvalidDesktopId) {
		t.Fatalf("err = %v, want InvalidDesktopId", err)
	}
}

func TestDesktopSessionRefusesApplicationRenderTargets(t *testing.T) {
	resolver := testResolver()
	d, err := NewDesktopSession(Config{Width: 16, Height: 16, Backend: "identity"}, DesktopIdentifier{InternalDisplayID: intPtr(0)}, resolver)
	if err != nil {
		t.Fatalf("NewDesktopSession: %v", err)
	}
	defer d.Close()

	if d.DisplayIndex() != 0 {
		t.Fatalf("DisplayIndex = %d, want 0", d.DisplayIndex())
	}
	if _, err := d.RegisterRenderTarget(16, 16, rfcontext.FormatRGBA); !errors.Is(err, rfstatus.Fail) {
		t.Fatalf("RegisterRenderTarget err = %v, want Fail", err)
	}
}

func TestTextureRefreshScheduleExpiresAfterMaxAttempts(t *testing.T) {
	var sched TextureRefreshSchedule
	now := time.Now()
	sched.deadline = now.Add(textureRefreshWindow)

	for i := 0; i < maxTextureRefreshAttempts; i++ {
		if !sched.Due(now) {
			t.Fatalf("Due false at attempt %d, want true", i)
		}
	}
	if sched.Due(now) {
		t.Fatalf("Due true after maxTextureRefreshAttempts exhausted")
	}
}

func TestTextureRefreshScheduleExpiresAfterWindow(t *testing.T) {
	var sched TextureRefreshSchedule
	sched.Start()

	if !sched.Due(time.Now()) {
		t.Fatalf("Due false immediately after Start")
	}
	if sched.Due(sched.deadline.Add(time.Millisecond)) {
		t.Fatalf("Due true past the refresh window")
	}
}
