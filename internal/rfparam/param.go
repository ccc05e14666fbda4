// Package rfparam implements the encoder parameter map described in
// spec.md §5: a typed, insertion-ordered table of named settings with
// per-preset defaults and a tri-state access model that governs whether a
// parameter can currently be read or written.
package rfparam

import "github.com/rfcore/rapidfire-go/internal/rfstatus"

// Type identifies the Go type backing a parameter's value, mirroring the
// RF_PARAMETER_BOOL / RF_PARAMETER_INT / RF_PARAMETER_UINT union in
// RFEncoderSettings.h.
type Type int

const (
	TypeUnknown Type = iota
	TypeBool
	TypeInt
	TypeUint
)

// State is the tri-state access model gating get/set calls against a
// parameter: a parameter not used by the active codec/encoder is Invalid,
// one currently settable is Ready, and one whose value is fixed for the
// lifetime of the session (e.g. because the encoder has already been
// created) is Blocked.
type State int

const (
	StateInvalid State = iota
	StateReady
	StateBlocked
)

// Preset selects one of the three canned value profiles baked into each
// parameter's definition.
type Preset int

const (
	PresetFast Preset = iota
	PresetBalanced
	PresetQuality
	numPresets
)

// Value is the tagged union of the three representable parameter types.
type Value struct {
	typ   Type
	bVal  bool
	iVal  int
	uVal  uint
}

func BoolValue(v bool) Value { return Value{typ: TypeBool, bVal: v} }
func IntValue(v int) Value   { return Value{typ: TypeInt, iVal: v} }
func UintValue(v uint) Value { return Value{typ: TypeUint, uVal: v} }

func (v Value) Type() Type { return v.typ }

func (v Value) Bool() bool {
	switch v.typ {
	case TypeBool:
		return v.bVal
	case TypeInt:
		return v.iVal != 0
	case TypeUint:
		return v.uVal != 0
	}
	return false
}

func (v Value) Int() int {
	switch v.typ {
	case TypeBool:
		if v.bVal {
			return 1
		}
		return 0
	case TypeInt:
		return v.iVal
	case TypeUint:
		return int(v.uVal)
	}
	return 0
}

func (v Value) Uint() uint {
	switch v.typ {
	case TypeBool:
		if v.bVal {
			return 1
		}
		return 0
	case TypeInt:
		return uint(v.iVal)
	case TypeUint:
		return v.uVal
	}
	return 0
}

// entry is one row of the parameter map: its declared type, display name,
// the three preset values it takes on createSettings(codec, preset), its
// current value and the current access state.
type entry struct {
	name    string
	typ     Type
	presets [numPresets]Value
	value   Value
	state   State
}

// Map is an insertion-ordered collection of named parameters. The zero
// value is not usable; build one with NewMap.
type Map struct {
	order   []string
	entries map[string]*entry
}

// NewMap returns an empty parameter map. Callers populate it via Define,
// then ApplyPreset to seed starting values.
func NewMap() *Map {
	return &Map{entries: make(map[string]*entry)}
}

// Define registers a parameter with its type, display name and per-preset
// values, and seeds its current value from the Balanced preset. Defining
// the same name twice overwrites the previous definition in place, so that
// repeated calls from a shared builder function stay idempotent.
func (m *Map) Define(name string, typ Type, fast, balanced, quality Value) {
	if _, exists := m.entries[name]; !exists {
		m.order = append(m.order, name)
	}
	m.entries[name] = &entry{
		name: name,
		typ:  typ,
		presets: [numPresets]Value{
			PresetFast:     fast,
			PresetBalanced: balanced,
			PresetQuality:  quality,
		},
		value: balanced,
		state: StateReady,
	}
}

// ApplyPreset resets every defined parameter's current value to the value
// registered for the given preset, per RFEncoderSettings::createSettings.
func (m *Map) ApplyPreset(p Preset) {
	for _, name := range m.order {
		e := m.entries[name]
		e.value = e.presets[p]
	}
}

// Names returns parameter names in declaration order, mirroring
// m_ParameterNames in RFEncoderSettings.
func (m *Map) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Count returns the number of defined parameters.
func (m *Map) Count() int { return len(m.order) }

// NameAt returns the name registered at the given declaration index.
func (m *Map) NameAt(index int) (string, bool) {
	if index < 0 || index >= len(m.order) {
		return "", false
	}
	return m.order[index], true
}

// Has reports whether name is a defined parameter.
func (m *Map) Has(name string) bool {
	_, ok := m.entries[name]
	return ok
}

// TypeOf returns the declared type of name, or TypeUnknown if undefined.
func (m *Map) TypeOf(name string) Type {
	if e, ok := m.entries[name]; ok {
		return e.typ
	}
	return TypeUnknown
}

// SetState transitions the named parameter's access state, e.g. to Blocked
// once an encoder instance has locked in its configuration.
func (m *Map) SetState(name string, state State) error {
	e, ok := m.entries[name]
	if !ok {
		return rfstatus.InvalidEncoderParameter
	}
	e.state = state
	return nil
}

// State returns the current access state of name.
func (m *Map) State(name string) State {
	if e, ok := m.entries[name]; ok {
		return e.state
	}
	return StateInvalid
}

// Set assigns value to name if it is currently Ready, returning
// ParamAccessDenied if the parameter is Blocked or InvalidEncoderParameter
// if it is not a member of the map at all.
func (m *Map) Set(name string, value Value) error {
	e, ok := m.entries[name]
	if !ok {
		return rfstatus.InvalidEncoderParameter
	}
	if e.state == StateBlocked {
		return rfstatus.ParamAccessDenied
	}
	e.value = value
	e.state = StateReady
	return nil
}

// Get returns the current value of name regardless of access state, and
// InvalidEncoderParameter if name is undefined.
func (m *Map) Get(name string) (Value, error) {
	e, ok := m.entries[name]
	if !ok {
		return Value{}, rfstatus.InvalidEncoderParameter
	}
	return e.value, nil
}

// GetValidated returns the current value of name together with its access
// state, letting a caller distinguish "Ready but zero" from "Blocked" or
// "Invalid" without a second call, as getValidatedParameterValue does.
func (m *Map) GetValidated(name string) (Value, State) {
	e, ok := m.entries[name]
	if !ok {
		return Value{}, StateInvalid
	}
	return e.value, e.state
}
