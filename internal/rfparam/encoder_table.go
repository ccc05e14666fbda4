package rfparam

// Width and Height are codec-agnostic parameter names exposing the
// encoder's current output dimensions, mirroring RF_ENCODER_PARAM_WIDTH /
// RF_ENCODER_PARAM_HEIGHT: both AVC and HEVC settings maps define them,
// and a Resize call refreshes their value so a subsequent
// get_encode_parameter(WIDTH) reports the post-resize dimensions (spec §8
// scenario 6).
const (
	Width  = "Width"
	Height = "Height"
)

// Parameter names for the AVC/H.264 encoder, matching the strings
// RFEncoderSettings assigns to each RF_ENCODER_* entry.
const (
	AVCProfile           = "Profile"
	AVCLevel             = "Profile Level"
	AVCUsage             = "Usage"
	AVCCommonLowLatency  = "Common Low Latency Internal"
	AVCBitrate           = "Target Bitrate"
	AVCPeakBitrate       = "Peak Bitrate"
	AVCFrameRate         = "Frame Rate"
	AVCFrameRateDen      = "Frame Rate Denominator"
	AVCRateControlMethod = "Rate Control Method"
	AVCMinQP             = "Minimum Quantizer Parameter"
	AVCMaxQP             = "Maximum Quantizer Parameter"
	AVCVBVBufferSize     = "VBV Buffer Size"
	AVCVBVBufferFullness = "Initial VBV Buffer Fullness"
	AVCEnforceHRD        = "Enforce HRD"
	AVCEnableVBAQ        = "Enable Variance Based Adaptive Quantization"
	AVCIDRPeriod         = "IDR Period"
	AVCIntraRefreshNumMB = "Number of Intra-Refresh Macro-Blocks per Slot"
	AVCDeblockingFilter  = "De-Blocking Filter"
	AVCNumSlicesPerFrame = "Num Slices per Frame"
	AVCQualityPreset     = "Quality Preset"
	AVCHalfPixel         = "Half Pixel Motion Estimation"
	AVCQuarterPixel      = "Quarter Pixel Motion Estimation"
	AVCForceIntraRefresh = "Force Intra-Refresh Frames Picture Type"
	AVCForceIFrame       = "Force I-Frames Picture Type"
	AVCForcePFrame       = "Force P-Frames Picture Type"
	AVCInsertSPS         = "Insert SPS"
	AVCInsertPPS         = "Insert PPS"
	AVCInsertAUD         = "Insert AUD"
)

// Parameter names for the HEVC/H.265 encoder.
const (
	HEVCUsage                   = "HEVC Usage"
	HEVCProfile                 = "HEVC Profile"
	HEVCLevel                   = "HEVC Profile Level"
	HEVCTier                    = "HEVC Tier"
	HEVCRateControlMethod       = "HEVC Rate Control Method"
	HEVCFrameRate               = "HEVC Framerate"
	HEVCFrameRateDen            = "HEVC Frame Rate Denominator"
	HEVCVBVBufferSize           = "HEVC VBV Buffer Size"
	HEVCVBVBufferFullness       = "HEVC Initial VBV Buffer Fullness"
	HEVCRateControlPreanalysis  = "HEVC Pre-analysis Assisted Rate Control"
	HEVCEnableVBAQ              = "HEVC Enable Variance Based Adaptive Quantization"
	HEVCTargetBitrate           = "HEVC Target Bitrate"
	HEVCPeakBitrate             = "HEVC Peak Bitrate"
	HEVCMinQPI                  = "HEVC Minimum Quantizer Parameter for I Frame"
	HEVCMaxQPI                  = "HEVC Maximum Quantizer Parameter for I Frame"
	HEVCMinQPP                  = "HEVC Minimum Quantizer Parameter for P Frame"
	HEVCMaxQPP                  = "HEVC Maximum Quantizer Parameter for P Frame"
	HEVCQPI                     = "HEVC Constant Quantizer Parameter for I Frame"
	HEVCQPP                     = "HEVC Constant Quantizer Parameter for P Frame"
	HEVCEnforceHRD              = "HEVC Enforce HRD"
	HEVCMaxAUSize               = "HEVC Maximum AU Size in Bits"
	HEVCFillerDataEnable        = "HEVC Enable Filler Data for CBR Usage"

	HEVCForceIntraRefresh = "HEVC Force Intra-Refresh Frames Picture Type"
	HEVCForceIFrame       = "HEVC Force I-Frames Picture Type"
	HEVCForcePFrame       = "HEVC Force P-Frames Picture Type"
	HEVCInsertSPS         = "HEVC Insert SPS"
	HEVCInsertPPS         = "HEVC Insert PPS"
	HEVCInsertAUD         = "HEVC Insert AUD"
)

// Values pulled from the AMF headers the original encoder targets. These
// are opaque codec constants, not tunable by this package, so they are
// named here only to seed preset defaults.
const (
	amfProfileMain                  = 77
	amfRateControlLatencyVBR        = 2
	amfRateControlPeakVBR           = 3
	amfQualityPresetSpeed           = 0
	amfQualityPresetBalanced        = 1
	amfLevel62                      = 62
	amfHEVCProfileMain              = 1
	amfHEVCTierMain                 = 0
)

// NewAVCDefaults builds the parameter map for an H.264/AVC encoder session,
// grounded in RFEncoderSettings::createParameterMap's AVC section.
func NewAVCDefaults() *Map {
	m := NewMap()

	m.Define(AVCProfile, TypeUint,
		UintValue(amfProfileMain), UintValue(amfProfileMain), UintValue(amfProfileMain))
	m.Define(AVCLevel, TypeUint,
		UintValue(amfLevel62), UintValue(amfLevel62), UintValue(amfLevel62))
	m.Define(AVCUsage, TypeInt, IntValue(-1), IntValue(-1), IntValue(-1))
	m.Define(AVCCommonLowLatency, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(AVCBitrate, TypeUint,
		UintValue(20_000_000), UintValue(20_000_000), UintValue(20_000_000))
	m.Define(AVCPeakBitrate, TypeUint,
		UintValue(30_000_000), UintValue(30_000_000), UintValue(30_000_000))
	m.Define(AVCFrameRate, TypeUint, UintValue(30), UintValue(30), UintValue(30))
	m.Define(AVCRateControlMethod, TypeUint,
		UintValue(amfRateControlLatencyVBR), UintValue(amfRateControlPeakVBR), UintValue(amfRateControlPeakVBR))
	m.Define(AVCMinQP, TypeUint, UintValue(22), UintValue(22), UintValue(18))
	m.Define(AVCMaxQP, TypeUint, UintValue(48), UintValue(48), UintValue(46))
	m.Define(AVCVBVBufferSize, TypeUint,
		UintValue(735_000), UintValue(4_000_000), UintValue(20_000_000))
	m.Define(AVCVBVBufferFullness, TypeUint, UintValue(64), UintValue(64), UintValue(64))
	m.Define(AVCEnforceHRD, TypeBool, BoolValue(true), BoolValue(false), BoolValue(false))
	m.Define(AVCEnableVBAQ, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(AVCFrameRateDen, TypeUint, UintValue(1), UintValue(1), UintValue(1))
	m.Define(AVCIDRPeriod, TypeUint, UintValue(300), UintValue(300), UintValue(30))
	m.Define(AVCIntraRefreshNumMB, TypeUint, UintValue(225), UintValue(225), UintValue(0))
	m.Define(AVCDeblockingFilter, TypeBool, BoolValue(true), BoolValue(true), BoolValue(true))
	m.Define(AVCNumSlicesPerFrame, TypeUint, UintValue(1), UintValue(1), UintValue(1))
	m.Define(AVCQualityPreset, TypeUint,
		UintValue(amfQualityPresetSpeed), UintValue(amfQualityPresetSpeed), UintValue(amfQualityPresetBalanced))
	m.Define(AVCHalfPixel, TypeUint, UintValue(1), UintValue(1), UintValue(1))
	m.Define(AVCQuarterPixel, TypeUint, UintValue(1), UintValue(1), UintValue(1))
	m.Define(AVCForceIntraRefresh, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(AVCForceIFrame, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(AVCForcePFrame, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(AVCInsertSPS, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(AVCInsertPPS, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(AVCInsertAUD, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(Width, TypeUint, UintValue(0), UintValue(0), UintValue(0))
	m.Define(Height, TypeUint, UintValue(0), UintValue(0), UintValue(0))

	return m
}

// NewHEVCDefaults builds the parameter map for an H.265/HEVC encoder
// session, grounded in RFEncoderSettings::createParameterMap's HEVC section.
func NewHEVCDefaults() *Map {
	m := NewMap()

	m.Define(HEVCUsage, TypeInt, IntValue(-1), IntValue(-1), IntValue(-1))
	m.Define(HEVCProfile, TypeUint,
		UintValue(amfHEVCProfileMain), UintValue(amfHEVCProfileMain), UintValue(amfHEVCProfileMain))
	m.Define(HEVCLevel, TypeUint, UintValue(amfLevel62), UintValue(amfLevel62), UintValue(amfLevel62))
	m.Define(HEVCTier, TypeUint,
		UintValue(amfHEVCTierMain), UintValue(amfHEVCTierMain), UintValue(amfHEVCTierMain))
	m.Define(HEVCRateControlMethod, TypeUint,
		UintValue(amfRateControlLatencyVBR), UintValue(amfRateControlPeakVBR), UintValue(amfRateControlPeakVBR))
	m.Define(HEVCFrameRate, TypeUint, UintValue(30), UintValue(30), UintValue(30))
	m.Define(HEVCFrameRateDen, TypeUint, UintValue(1), UintValue(1), UintValue(1))
	m.Define(HEVCVBVBufferSize, TypeUint,
		UintValue(735_000), UintValue(4_000_000), UintValue(20_000_000))
	m.Define(HEVCVBVBufferFullness, TypeUint, UintValue(64), UintValue(64), UintValue(64))
	m.Define(HEVCRateControlPreanalysis, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(HEVCEnableVBAQ, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(HEVCTargetBitrate, TypeUint,
		UintValue(20_000_000), UintValue(20_000_000), UintValue(20_000_000))
	m.Define(HEVCPeakBitrate, TypeUint,
		UintValue(30_000_000), UintValue(30_000_000), UintValue(30_000_000))
	m.Define(HEVCMinQPI, TypeUint, UintValue(22), UintValue(22), UintValue(18))
	m.Define(HEVCMaxQPI, TypeUint, UintValue(48), UintValue(48), UintValue(46))
	m.Define(HEVCMinQPP, TypeUint, UintValue(22), UintValue(22), UintValue(18))
	m.Define(HEVCMaxQPP, TypeUint, UintValue(48), UintValue(48), UintValue(46))
	m.Define(HEVCQPI, TypeUint, UintValue(26), UintValue(26), UintValue(22))
	m.Define(HEVCQPP, TypeUint, UintValue(26), UintValue(26), UintValue(22))
	m.Define(HEVCEnforceHRD, TypeBool, BoolValue(true), BoolValue(false), BoolValue(false))
	m.Define(HEVCMaxAUSize, TypeUint, UintValue(0), UintValue(0), UintValue(0))
	m.Define(HEVCFillerDataEnable, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(HEVCForceIntraRefresh, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(HEVCForceIFrame, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(HEVCForcePFrame, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(HEVCInsertSPS, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(HEVCInsertPPS, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(HEVCInsertAUD, TypeBool, BoolValue(false), BoolValue(false), BoolValue(false))
	m.Define(Width, TypeUint, UintValue(0), UintValue(0), UintValue(0))
	m.Define(Height, TypeUint, UintValue(0), UintValue(0), UintValue(0))

	return m
}
