package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"midi-live-vis/debug"
	"midi-live-vis/midi"
)

func newReplayCmd() *cobra.Command {
	replay := &cobra.Command{
		Use:   "replay <file.mid>",
		Short: "Visualize a MIDI file as if it were played live",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			defer debug.Disable()

			speed, _ := cmd.Flags().GetFloat64("speed")
			fc, err := midi.NewFileController(args[0], speed)
			if err != nil {
				return err
			}
			if fc.Len() == 0 {
				return fmt.Errorf("%s has no notes", args[0])
			}
			return runView(cmd.Context(), s, nil, fc)
		},
	}
	replay.Flags().Float64("speed", 1, "playback speed factor")
	return replay
}
