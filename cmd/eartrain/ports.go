package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"go-eartrain/config"
	"go-eartrain/midi"
)

func newPortsCmd(a *app) *cobra.Command {
	var (
		watch bool
		add   string
	)
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List MIDI ports, or watch controllers connect",
		Long: `List the MIDI input and output ports.

If the listing times out on macOS, CoreMIDI is hung; restart it with
  sudo killall coreaudiod midiserver`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.consoleLog()
			out := cmd.OutOrStdout()

			if add != "" {
				a.cfg.AddKeyboard(config.KeyboardConfig{PortName: add, AutoConnect: true})
				if err := a.save(); err != nil {
					return err
				}
				fmt.Fprintf(out, "keyboard %q will connect automatically\n", add)
				return nil
			}

			if watch {
				dm := midi.NewDeviceManager(a.cfg.AutoConnectKeyboards(), a.cfg.Input.Launchpad)
				go dm.Run(cmd.Context())
				fmt.Fprintln(out, "watching for controllers, ctrl+c to stop")
				for {
					select {
					case <-cmd.Context().Done():
						return nil
					case ev, ok := <-dm.Events():
						if !ok {
							return nil
						}
						fmt.Fprintln(out, describeDeviceEvent(ev))
					}
				}
			}

			ports, err := midi.ListPorts(3 * time.Second)
			if err != nil {
				return err
			}
			printPorts(out, ports, a.cfg)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "print controllers as they connect and disconnect")
	cmd.Flags().StringVar(&add, "add", "", "save a keyboard port to connect automatically")
	return cmd
}

func describeDeviceEvent(ev midi.DeviceEvent) string {
	if ev.Type == midi.DeviceConnected {
		return fmt.Sprintf("+ %s %s", ev.Controller.Type(), ev.ID)
	}
	return "- " + ev.ID
}

func printPorts(w io.Writer, ports midi.Ports, cfg *config.Config) {
	fmt.Fprintln(w, "inputs:")
	for i, name := range ports.In {
		mark := ""
		if kb := cfg.FindKeyboard(name); kb != nil && kb.AutoConnect {
			mark = "  (auto)"
		}
		fmt.Fprintf(w, "  %d: %s%s\n", i, name, mark)
	}
	fmt.Fprintln(w, "outputs:")
	for i, name := range ports.Out {
		mark := ""
		if cfg.Audio.MIDIPort != "" && strings.Contains(name, cfg.Audio.MIDIPort) {
			mark = "  (tones)"
		}
		fmt.Fprintf(w, "  %d: %s%s\n", i, name, mark)
	}
}
