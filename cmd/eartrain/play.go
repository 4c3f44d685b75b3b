package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-eartrain/config"
	"go-eartrain/debug"
	"go-eartrain/engine"
	"go-eartrain/midi"
	"go-eartrain/theme"
	"go-eartrain/tui"
)

func newPlayCmd(a *app) *cobra.Command {
	var (
		notes  int
		mode   string
		noMIDI bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start a training session (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if notes > 0 {
				a.cfg.Game.NoteCount = notes
			}
			if mode != "" {
				a.cfg.Game.Mode = mode
			}
			if noMIDI {
				a.cfg.Input.Launchpad = false
				a.cfg.Input.Keyboards = nil
			}
			return a.play(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&notes, "notes", "n", 0, "notes per round (1-8)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "ordered or unordered")
	cmd.Flags().BoolVar(&noMIDI, "no-midi", false, "don't look for MIDI controllers")
	return cmd
}

func (a *app) play(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := a.cfg

	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	if err := debug.Enable(dir, cfg.LogLevel); err != nil {
		return fmt.Errorf("debug log: %w", err)
	}
	defer debug.Disable()

	settings, err := cfg.EngineSettings()
	if err != nil {
		return err
	}
	player, err := newSynth(cfg)
	if err != nil {
		return err
	}
	eng, err := engine.New(player, settings, nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		debug.Log("main", "palette %s: %v, using default", cfg.UI.Palette, err)
	}
	th := theme.New(palette)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var deviceMgr *midi.DeviceManager
	if wantMIDI(cfg) {
		deviceMgr = midi.NewDeviceManager(cfg.AutoConnectKeyboards(), cfg.Input.Launchpad)
		go deviceMgr.Run(ctx)
	}

	log := debug.With("main")
	log.Info().
		Str("audio", cfg.Audio.Backend).
		Int("notes", settings.NoteCount).
		Str("mode", settings.Mode.String()).
		Bool("midi", deviceMgr != nil).
		Msg("session starting")

	m := tui.NewModel(eng, deviceMgr, th, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// wantMIDI reports whether any controller input is configured
func wantMIDI(cfg *config.Config) bool {
	return cfg.Input.Launchpad || len(cfg.AutoConnectKeyboards()) > 0
}
