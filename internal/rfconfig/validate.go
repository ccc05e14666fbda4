package rfconfig

import "fmt"

// ValidationResult separates validation problems into Fatals (refuse to
// start) and Warnings (logged, then the value is clamped to something
// safe), mirroring the teacher's tiered config validation.
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

// HasFatals reports whether any fatal validation error was recorded.
func (r ValidationResult) HasFatals() bool { return len(r.Fatals) > 0 }

var validBackends = map[string]bool{"identity": true, "difference": true, "amf": true}
var validCodecs = map[string]bool{"avc": true, "hevc": true}
var validPresets = map[string]bool{"fast": true, "balanced": true, "quality": true}
var validModes = map[string]bool{"update_on_change": true, "block_until_change": true}
var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
var validLogFormats = map[string]bool{"text": true, "json": true}

// ValidateTiered checks the config and clamps recoverable values (an
// out-of-range FPS, an unknown preset, non-positive diff block sizes,
// unknown log settings) to safe defaults, while rejecting the whole config
// on truly invalid selections like non-positive dimensions or an unknown
// backend name.
func (c *Config) ValidateTiered() ValidationResult {
	var r ValidationResult

	if c.Width <= 0 || c.Height <= 0 {
		r.Fatals = append(r.Fatals, fmt.Errorf("width/height must be positive, got %dx%d", c.Width, c.Height))
	}
	if !validBackends[c.Backend] {
		r.Fatals = append(r.Fatals, fmt.Errorf("backend %q is not one of identity, difference, amf", c.Backend))
	}
	if !validCodecs[c.Codec] {
		r.Fatals = append(r.Fatals, fmt.Errorf("codec %q is not one of avc, hevc", c.Codec))
	}
	if !validModes[c.PreprocessMode] {
		r.Fatals = append(r.Fatals, fmt.Errorf("preprocess_mode %q is not one of update_on_change, block_until_change", c.PreprocessMode))
	}

	if !validPresets[c.Preset] {
		r.Warnings = append(r.Warnings, fmt.Errorf("preset %q is unknown, clamping to balanced", c.Preset))
		c.Preset = "balanced"
	}

	if c.TargetFPS <= 0 {
		r.Warnings = append(r.Warnings, fmt.Errorf("target_fps %d is below minimum 1, clamping", c.TargetFPS))
		c.TargetFPS = 1
	} else if c.TargetFPS > 240 {
		r.Warnings = append(r.Warnings, fmt.Errorf("target_fps %d exceeds maximum 240, clamping", c.TargetFPS))
		c.TargetFPS = 240
	}

	if c.DiffBlockWidth <= 0 {
		r.Warnings = append(r.Warnings, fmt.Errorf("diff_block_width %d is below minimum 1, clamping to 16", c.DiffBlockWidth))
		c.DiffBlockWidth = 16
	}
	if c.DiffBlockHeight <= 0 {
		r.Warnings = append(r.Warnings, fmt.Errorf("diff_block_height %d is below minimum 1, clamping to 16", c.DiffBlockHeight))
		c.DiffBlockHeight = 16
	}

	if c.LogLevel != "" && !validLogLevels[c.LogLevel] {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_level %q is not valid, clamping to info", c.LogLevel))
		c.LogLevel = "info"
	}
	if c.LogFormat != "" && !validLogFormats[c.LogFormat] {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_format %q is not valid, clamping to text", c.LogFormat))
		c.LogFormat = "text"
	}

	return r
}
