package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"go-eartrain/config"
	"go-eartrain/debug"
	"go-eartrain/midi"
	"go-eartrain/synth"
)

// app is the state shared by every subcommand
type app struct {
	configPath string
	logLevel   string
	audio      string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "eartrain",
		Short: "Ear training in the terminal",
		Long: `eartrain plays a short sequence or chord of notes and asks you to play
it back on the computer keyboard, a MIDI keyboard or a Launchpad.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.play(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $HOME/.config/go-eartrain/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "trace, debug, info, warn or error")
	flags.StringVar(&a.audio, "audio", "", "audio backend: oto, midi or silent")

	rootCmd.AddCommand(
		newPlayCmd(a),
		newToneCmd(a),
		newPitchesCmd(),
		newPortsCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	cobra.CheckErr(err)
}

// load reads the config and applies flag overrides
func (a *app) load() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFrom(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}
	if a.audio != "" {
		a.cfg.Audio.Backend = a.audio
	}
	return nil
}

func (a *app) save() error {
	if a.configPath != "" {
		return a.cfg.SaveTo(a.configPath)
	}
	return a.cfg.Save()
}

// consoleLog sends log output to stderr, pretty-printed on a terminal
func (a *app) consoleLog() {
	var w io.Writer = os.Stderr
	if isatty.IsTerminal(os.Stderr.Fd()) {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	debug.EnableWriter(w, a.cfg.LogLevel)
}

// newDevice builds the configured tone output
func newDevice(cfg *config.Config) (synth.Device, error) {
	switch cfg.Audio.Backend {
	case config.BackendOto, "":
		return synth.NewOtoDevice(cfg.Audio.SampleRate, cfg.Audio.Volume), nil
	case config.BackendMIDI:
		if cfg.Audio.MIDIPort == "" {
			return nil, fmt.Errorf("audio backend midi needs audio.midiPort (or EARTRAIN_MIDI_PORT)")
		}
		return midi.NewToneOutput(cfg.Audio.MIDIPort, uint8(cfg.Audio.MIDIChannel), 0), nil
	case config.BackendSilent:
		return synth.Silent{}, nil
	}
	return nil, fmt.Errorf("unknown audio backend %q", cfg.Audio.Backend)
}

// newSynth wires the device and the configured profile
func newSynth(cfg *config.Config) (*synth.Synthesizer, error) {
	device, err := newDevice(cfg)
	if err != nil {
		return nil, err
	}
	profile, err := cfg.Profile()
	if err != nil {
		return nil, err
	}
	return synth.New(device, profile), nil
}
