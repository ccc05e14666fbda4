// Package rfstatus implements the fixed status-code enum described in
// spec.md §7. Unlike ad-hoc errors.New strings, Status is a closed,
// comparable type so callers can switch on exact kinds the way the C ABI's
// enum requires, while still satisfying the error interface for idiomatic
// Go error handling.
package rfstatus

import "fmt"

// Status is the fixed enum of pipeline outcomes. OK is zero, matching the
// C ABI convention that zero means success.
type Status int

const (
	OK Status = iota

	// Resource failures.
	MemoryFail
	RenderTargetFail

	// Graphics/compute failures.
	OpenGlFail
	OpenClFail
	DoppFail
	AmfFail

	// Flow-control signals — expected outcomes, never logged as errors.
	QueueFull
	NoEncodedFrame
	DoppNoUpdate
	MouseGrabNoChange

	// Parameter/validation failures.
	InvalidSession
	InvalidContext
	InvalidTexture
	InvalidDimension
	InvalidIndex
	InvalidFormat
	InvalidConfig
	InvalidEncoder
	InvalidRenderTarget
	InvalidDesktopId
	InvalidOpenGlContext
	InvalidD3DDevice
	InvalidOpenClEnv
	InvalidOpenClContext
	InvalidOpenClMemObj
	InvalidSessionProperties
	InvalidEncoderParameter
	ParamAccessDenied

	// Generic.
	Fail
)

var names = map[Status]string{
	OK:                       "OK",
	MemoryFail:               "MemoryFail",
	RenderTargetFail:         "RenderTargetFail",
	OpenGlFail:               "OpenGlFail",
	OpenClFail:               "OpenClFail",
	DoppFail:                 "DoppFail",
	AmfFail:                  "AmfFail",
	QueueFull:                "QueueFull",
	NoEncodedFrame:           "NoEncodedFrame",
	DoppNoUpdate:             "DoppNoUpdate",
	MouseGrabNoChange:        "MouseGrabNoChange",
	InvalidSession:           "InvalidSession",
	InvalidContext:           "InvalidContext",
	InvalidTexture:           "InvalidTexture",
	InvalidDimension:         "InvalidDimension",
	InvalidIndex:             "InvalidIndex",
	InvalidFormat:            "InvalidFormat",
	InvalidConfig:            "InvalidConfig",
	InvalidEncoder:           "InvalidEncoder",
	InvalidRenderTarget:      "InvalidRenderTarget",
	InvalidDesktopId:         "InvalidDesktopId",
	InvalidOpenGlContext:     "InvalidOpenGlContext",
	InvalidD3DDevice:         "InvalidD3DDevice",
	InvalidOpenClEnv:         "InvalidOpenClEnv",
	InvalidOpenClContext:     "InvalidOpenClContext",
	InvalidOpenClMemObj:      "InvalidOpenClMemObj",
	InvalidSessionProperties: "InvalidSessionProperties",
	InvalidEncoderParameter:  "InvalidEncoderParameter",
	ParamAccessDenied:        "ParamAccessDenied",
	Fail:                     "Fail",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if n, ok := names[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Error implements the error interface so a Status can be returned and
// compared against directly (errors.Is(err, rfstatus.QueueFull)).
func (s Status) Error() string {
	return s.String()
}

// IsFlowControl reports whether s is an expected, non-error outcome per the
// propagation policy in spec.md §7 — these must never be logged at Warn/Error.
func (s Status) IsFlowControl() bool {
	switch s {
	case QueueFull, NoEncodedFrame, DoppNoUpdate, MouseGrabNoChange:
		return true
	default:
		return false
	}
}

// Wrap attaches a causal error to a Status while preserving errors.Is(Status)
// semantics via %w.
func Wrap(s Status, cause error) error {
	if cause == nil {
		return s
	}
	return fmt.Errorf("%w: %w", s, cause)
}
