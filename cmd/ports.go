package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"midi-live-vis/config"
	"midi-live-vis/debug"
	"midi-live-vis/midi"
)

// swapped in tests
var inPortNames = midi.InPortNames

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List MIDI input ports",
		Long:  `Lists MIDI input ports and whether they would be connected with the current include/exclude patterns.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			defer debug.Disable()

			names, ok := inPortNames()
			if !ok {
				return errors.New("timed out listing MIDI ports")
			}
			printPorts(cmd.OutOrStdout(), names, s.cfg)
			return nil
		},
	}
}

func printPorts(w io.Writer, names []string, cfg *config.Config) {
	if len(names) == 0 {
		fmt.Fprintln(w, "no MIDI input ports")
		return
	}
	for i, name := range names {
		state := "skip"
		if midi.Match(name, cfg.Input.Include, cfg.Input.Exclude) {
			state = "listen"
		}
		fmt.Fprintf(w, "%2d: %-40s %s\n", i, name, state)
	}
}
