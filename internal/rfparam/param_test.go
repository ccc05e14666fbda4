package rfparam

import "testing"

func TestDefineAndApplyPreset(t *testing.T) {
	m := NewMap()
	m.Define("Target Bitrate", TypeUint, UintValue(1), UintValue(2), UintValue(3))

	if got, err := m.Get("Target Bitrate"); err != nil || got.Uint() != 2 {
		t.Fatalf("initial value = %v, %v, want 2, nil", got.Uint(), err)
	}

	m.ApplyPreset(PresetFast)
	if got, _ := m.Get("Target Bitrate"); got.Uint() != 1 {
		t.Fatalf("after PresetFast = %v, want 1", got.Uint())
	}

	m.ApplyPreset(PresetQuality)
	if got, _ := m.Get("Target Bitrate"); got.Uint() != 3 {
		t.Fatalf("after PresetQuality = %v, want 3", got.Uint())
	}
}

func TestNamesPreserveInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Define("b", TypeInt, IntValue(0), IntValue(0), IntValue(0))
	m.Define("a", TypeInt, IntValue(0), IntValue(0), IntValue(0))
	m.Define("c", TypeInt, IntValue(0), IntValue(0), IntValue(0))

	want := []string{"b", "a", "c"}
	got := m.Names()
	if len(got) != len(want) {
		t.Fatalf("len(Names()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSetRespectsBlockedState(t *testing.T) {
	m := NewMap()
	m.Define("Frame Rate", TypeUint, UintValue(30), UintValue(30), UintValue(30))

	if err := m.SetState("Frame Rate", StateBlocked); err != nil {
		t.Fatalf("SetState: %v", err)
	}

	if err := m.Set("Frame Rate", UintValue(60)); err == nil {
		t.Fatal("expected Set on a Blocked parameter to fail")
	}

	if got, _ := m.Get("Frame Rate"); got.Uint() != 30 {
		t.Fatalf("value changed despite Blocked state: got %v", got.Uint())
	}
}

func TestSetUnknownParameterFails(t *testing.T) {
	m := NewMap()
	if err := m.Set("does not exist", IntValue(1)); err == nil {
		t.Fatal("expected Set on undefined parameter to fail")
	}
	if _, err := m.Get("does not exist"); err == nil {
		t.Fatal("expected Get on undefined parameter to fail")
	}
}

func TestGetValidatedReportsState(t *testing.T) {
	m := NewMap()
	m.Define("Usage", TypeInt, IntValue(-1), IntValue(-1), IntValue(-1))

	if _, state := m.GetValidated("nonexistent"); state != StateInvalid {
		t.Fatalf("state for unknown name = %v, want StateInvalid", state)
	}

	v, state := m.GetValidated("Usage")
	if state != StateReady || v.Int() != -1 {
		t.Fatalf("got (%v, %v), want (-1, StateReady)", v.Int(), state)
	}
}

func TestAVCDefaultsCoverKeyParameters(t *testing.T) {
	m := NewAVCDefaults()

	if m.Count() == 0 {
		t.Fatal("expected non-empty AVC parameter map")
	}
	if !m.Has(AVCBitrate) || !m.Has(AVCQualityPreset) || !m.Has(AVCIDRPeriod) {
		t.Fatal("expected core AVC parameters to be defined")
	}
	if m.TypeOf(AVCDeblockingFilter) != TypeBool {
		t.Fatalf("De-Blocking Filter type = %v, want TypeBool", m.TypeOf(AVCDeblockingFilter))
	}
}

func TestHEVCDefaultsCoverKeyParameters(t *testing.T) {
	m := NewHEVCDefaults()

	if !m.Has(HEVCTargetBitrate) || !m.Has(HEVCTier) || !m.Has(HEVCMaxAUSize) {
		t.Fatal("expected core HEVC parameters to be defined")
	}
}
