// Package rfconfig loads sample-app configuration via viper, the way the
// teacher's internal/config package does: defaults seeded in code, a YAML
// file layered on top, then environment variable overrides, followed by
// tiered validation that clamps dangerous values and only refuses to start
// on genuinely fatal ones.
package rfconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/rfcore/rapidfire-go/internal/rfencoder"
	"github.com/rfcore/rapidfire-go/internal/rflog"
	"github.com/rfcore/rapidfire-go/internal/rfparam"
)

var log = rflog.L("rfconfig")

// Config holds the settings a sample CLI needs to stand up a session:
// capture dimensions, encoder backend/codec/preset, the preprocess
// dispatch mode, and ambient logging.
type Config struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`

	Backend string `mapstructure:"backend"` // identity, difference, amf
	Codec   string `mapstructure:"codec"`   // avc, hevc
	Preset  string `mapstructure:"preset"`  // fast, balanced, quality

	PreprocessMode string `mapstructure:"preprocess_mode"` // update_on_change, block_until_change
	TargetFPS      int    `mapstructure:"target_fps"`

	MouseGrabEnabled bool `mapstructure:"mouse_grab_enabled"`

	DiffBlockWidth  int `mapstructure:"diff_block_width"`
	DiffBlockHeight int `mapstructure:"diff_block_height"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Default returns a Config populated with the same starting values
// createSettings seeds a Balanced preset encoder with.
func Default() *Config {
	return &Config{
		Width:            1920,
		Height:           1080,
		Backend:          "identity",
		Codec:            "avc",
		Preset:           "balanced",
		PreprocessMode:   "update_on_change",
		TargetFPS:        30,
		MouseGrabEnabled: false,
		DiffBlockWidth:   16,
		DiffBlockHeight:  16,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads cfgFile (or the default search path/env vars if empty) into a
// Config seeded with Default values, then runs tiered validation.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("rapidfire")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(configDir())
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("RAPIDFIRE")

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("rfconfig: read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("rfconfig: unmarshal: %w", err)
	}

	result := cfg.ValidateTiered()
	for _, w := range result.Warnings {
		log.Warn("config validation", "error", w)
	}
	if result.HasFatals() {
		for _, f := range result.Fatals {
			log.Error("config validation fatal", "error", f)
		}
		return nil, fmt.Errorf("rfconfig: fatal validation error: %v", result.Fatals[0])
	}

	return cfg, nil
}

// PresetValue maps the config's textual preset name to rfparam.Preset.
func (c *Config) PresetValue() rfparam.Preset {
	switch c.Preset {
	case "fast":
		return rfparam.PresetFast
	case "quality":
		return rfparam.PresetQuality
	default:
		return rfparam.PresetBalanced
	}
}

// CodecValue maps the config's textual codec name to rfencoder.Codec.
func (c *Config) CodecValue() rfencoder.Codec {
	if c.Codec == "hevc" {
		return rfencoder.CodecHEVC
	}
	return rfencoder.CodecAVC
}

func configDir() string {
	if dir := os.Getenv("PROGRAMDATA"); dir != "" {
		return filepath.Join(dir, "RapidFire")
	}
	return "/etc/rapidfire"
}
