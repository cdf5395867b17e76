package commands

import (
	"github.com/spf13/cobra"

	"github.com/sensorviz/sensorviz/internal/display"
)

var showCmd = &cobra.Command{
	Use:   "show <video>",
	Short: "Display a finished video",
	Long: `Show displays a video file: embedded as an inline HTML5 element when a
notebook kernel is detected, otherwise through the platform's default
viewer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		height, _ := cmd.Flags().GetInt("height")
		return display.Video(args[0], height)
	},
}

func init() {
	showCmd.Flags().Int("height", display.DefaultHeight, "inline display height in pixels")
	rootCmd.AddCommand(showCmd)
}
