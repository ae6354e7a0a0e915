package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvilaudio/polyvoice/pkg/config"
	"github.com/anvilaudio/polyvoice/pkg/dispatch"
	"github.com/anvilaudio/polyvoice/pkg/scale"
)

const (
	defaultSampleRate   = 48000.0
	defaultBlockFrames  = 512
	defaultQueueDepth   = 256
	defaultOSCAddr      = "127.0.0.1:9000"
	defaultMaxPolyphony = 64
)

var (
	configPath string
	voices     int
	mpe        bool
	unison     bool
	sampleRate float64
)

var rootCmd = &cobra.Command{
	Use:   "polyvoice",
	Short: "Real-time polyphonic MIDI/OSC to control-signal converter",
	Long: "polyvoice turns MIDI and OSC control events into per-voice\n" +
		"pitch, gate, amplitude and modulation signal buffers, one block\n" +
		"at a time, ready to drive a downstream synthesis graph.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a polyvoice.toml config file")
	rootCmd.PersistentFlags().IntVar(&voices, "voices", 8, "polyphony (1-64), overridden by --config")
	rootCmd.PersistentFlags().BoolVar(&mpe, "mpe", false, "enable MPE per-channel routing, overridden by --config")
	rootCmd.PersistentFlags().BoolVar(&unison, "unison", false, "enable unison mode, overridden by --config")
	rootCmd.PersistentFlags().Float64Var(&sampleRate, "sample-rate", defaultSampleRate, "audio sample rate in Hz")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(listenMIDICmd)
	rootCmd.AddCommand(listenOSCCmd)
	rootCmd.AddCommand(monitorCmd)
}

// buildDispatcher assembles a Registry from flags and an optional config
// file, then a Dispatcher with defaultMaxPolyphony preallocated voices,
// of which the registry's polyphony are active each block.
func buildDispatcher() (*dispatch.Dispatcher, *config.Registry, error) {
	cfg := config.NewDefault()
	cfg.Set(config.Voices, float64(voices))
	if mpe {
		cfg.Set(config.Protocol, 1)
	}
	if unison {
		cfg.Set(config.Unison, 1)
	}

	if configPath != "" {
		if err := config.LoadFile(configPath, cfg); err != nil {
			return nil, nil, fmt.Errorf("polyvoice: %w", err)
		}
	}

	scl := scale.NewEqualTemperament()
	d := dispatch.New(defaultMaxPolyphony, defaultQueueDepth, cfg, scl)
	d.SetSampleRate(sampleRate)
	d.SetProgramChangeListener(func(channel int, program float64) {
		fmt.Printf("program change: channel=%d program=%.0f\n", channel, program)
	})
	return d, cfg, nil
}
