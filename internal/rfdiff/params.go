package rfdiff

import "github.com/rfcore/rapidfire-go/internal/rfparam"

// Parameter names exposed by the difference encoder, matching
// RFEncoderDM's RF_DIFF_ENCODER_BLOCK_S / _BLOCK_T / _LOCK_BUFFER.
const (
	ParamBlockS      = "RF_DIFF_ENCODER_BLOCK_S"
	ParamBlockT      = "RF_DIFF_ENCODER_BLOCK_T"
	ParamLockBuffer  = "RF_DIFF_ENCODER_LOCK_BUFFER"
)

// newParams builds the difference encoder's parameter map. BlockS/BlockT
// are fixed at construction time and reported Blocked for the lifetime of
// the encoder, matching RFEncoderDM::getParameter returning
// RF_PARAMETER_STATE_BLOCKED for both. LockBuffer stays Ready since it can
// be toggled at any time.
func newParams(blockW, blockH int, lockBuffer bool) *rfparam.Map {
	m := rfparam.NewMap()

	bw := rfparam.UintValue(uint(blockW))
	bh := rfparam.UintValue(uint(blockH))
	m.Define(ParamBlockS, rfparam.TypeUint, bw, bw, bw)
	m.Define(ParamBlockT, rfparam.TypeUint, bh, bh, bh)
	_ = m.SetState(ParamBlockS, rfparam.StateBlocked)
	_ = m.SetState(ParamBlockT, rfparam.StateBlocked)

	lb := rfparam.BoolValue(lockBuffer)
	m.Define(ParamLockBuffer, rfparam.TypeBool, lb, lb, lb)

	m.Define(rfparam.Width, rfparam.TypeUint, rfparam.UintValue(0), rfparam.UintValue(0), rfparam.UintValue(0))
	m.Define(rfparam.Height, rfparam.TypeUint, rfparam.UintValue(0), rfparam.UintValue(0), rfparam.UintValue(0))

	return m
}
