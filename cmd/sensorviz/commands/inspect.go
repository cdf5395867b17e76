package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sensorviz/sensorviz/internal/record"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <recording>",
	Short: "Summarize an observation recording",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	reader, err := record.Open(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	sensors := reader.Sensors()
	names := make([]string, 0, len(sensors))
	for name := range sensors {
		names = append(names, name)
	}
	sort.Strings(names)

	// Count frames and take dimensions from the first one.
	frames := 0
	dims := map[string]string{}
	for {
		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if frames == 0 {
			for name, buf := range frame {
				dims[name] = fmt.Sprintf("%dx%d", buf.Width, buf.Height)
			}
		}
		frames++
	}

	fmt.Printf("%s: %d frames\n", args[0], frames)
	for _, name := range names {
		fmt.Printf("  %-16s %-10s %s\n", name, sensors[name], dims[name])
	}
	return nil
}
