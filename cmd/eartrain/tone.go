package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"go-eartrain/pitch"
)

func newToneCmd(a *app) *cobra.Command {
	var profile string
	cmd := &cobra.Command{
		Use:   "tone <pitch>... [seconds]",
		Short: "Play pitches through the configured audio backend",
		Example: `  eartrain tone A
  eartrain tone C E G 0.8 --profile soft`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.consoleLog()
			if profile != "" {
				a.cfg.Tone.Profile = profile
			}

			ps, seconds, err := parseToneArgs(args, float64(a.cfg.Tone.NoteMs)/1000)
			if err != nil {
				return err
			}
			s, err := newSynth(a.cfg)
			if err != nil {
				return err
			}

			for _, p := range ps {
				fmt.Fprintf(cmd.OutOrStdout(), "%-2s %8.2f Hz\n", p.Name, p.FrequencyHz)
				if err := s.Play(cmd.Context(), p.FrequencyHz, seconds); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "harmonic profile (bright or soft)")
	return cmd
}

// parseToneArgs splits pitch names from an optional trailing duration
func parseToneArgs(args []string, seconds float64) ([]pitch.Pitch, float64, error) {
	if n := len(args); n > 1 {
		if v, err := strconv.ParseFloat(args[n-1], 64); err == nil {
			seconds = v
			args = args[:n-1]
		}
	}
	ps := make([]pitch.Pitch, 0, len(args))
	for _, name := range args {
		p, ok := pitch.Lookup(name)
		if !ok {
			return nil, 0, fmt.Errorf("unknown pitch %q", name)
		}
		ps = append(ps, p)
	}
	return ps, seconds, nil
}
