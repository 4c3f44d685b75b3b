package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go-eartrain/pitch"
)

func newPitchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pitches",
		Short: "List the pitch table",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printPitches(cmd.OutOrStdout())
		},
	}
}

func printPitches(w io.Writer) {
	fmt.Fprintf(w, "%-4s %9s %5s\n", "name", "hz", "midi")
	for _, p := range pitch.All() {
		fmt.Fprintf(w, "%-4s %9.2f %5d\n", p.Name, p.FrequencyHz, p.MIDINote())
	}
}
