// Command rfcapture-diff exercises the difference encoder backend
// directly: it submits a handful of frames with a moving block of changed
// pixels and prints which tiles the encoder reports as changed per frame.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rfcore/rapidfire-go/internal/rfconfig"
	"github.com/rfcore/rapidfire-go/internal/rfdiff"
	"github.com/rfcore/rapidfire-go/internal/rflog"
)

var (
	cfgFile string
	frames  int
)

var rootCmd = &cobra.Command{
	Use:   "rfcapture-diff",
	Short: "Print per-tile change maps from the difference encoder",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "path to a rapidfire.yaml config file")
	rootCmd.Flags().IntVar(&frames, "frames", 5, "number of frames to feed the difference encoder")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := rfconfig.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rflog.Init(cfg.LogFormat, cfg.LogLevel, os.Stdout)
	log := rflog.L("rfcapture-diff")

	d := rfdiff.New(rfdiff.Config{
		Width:         cfg.Width,
		Height:        cfg.Height,
		BlockWidth:    cfg.DiffBlockWidth,
		BlockHeight:   cfg.DiffBlockHeight,
		BytesPerPixel: 4,
	})
	defer d.Close()

	frame := make([]byte, cfg.Width*cfg.Height*4)
	for i := 0; i < frames; i++ {
		mutateMovingBlock(frame, cfg.Width, cfg.Height, cfg.DiffBlockWidth, i)

		if err := d.Encode(frame); err != nil {
			return fmt.Errorf("encode frame %d: %w", i, err)
		}
		payload, err := d.GetEncodedFrame()
		if err != nil {
			return fmt.Errorf("get encoded frame %d: %w", i, err)
		}
		tilesX, tilesY := d.Dimensions()

		changed := 0
		for _, c := range payload {
			if c != 0 {
				changed++
			}
		}
		log.Info("frame processed", "frame", i, "tilesX", tilesX, "tilesY", tilesY, "changedTiles", changed)
	}
	return nil
}

// mutateMovingBlock writes a solid block of pixels at an offset that
// advances by blockSize each frame, so each Encode call reports a
// different set of changed tiles.
func mutateMovingBlock(frame []byte, width, height, blockSize, frameIdx int) {
	stride := width * 4
	ox := (frameIdx * blockSize) % width
	oy := (frameIdx * blockSize) % height
	for y := oy; y < oy+blockSize && y < height; y++ {
		for x := ox; x < ox+blockSize && x < width; x++ {
			idx := y*stride + x*4
			frame[idx] = byte(32 + frameIdx*16)
			frame[idx+1] = byte(64 + frameIdx*16)
			frame[idx+2] = byte(96 + frameIdx*16)
			frame[idx+3] = 255
		}
	}
}
