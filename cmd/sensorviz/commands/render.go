package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sensorviz/sensorviz/internal/config"
	"github.com/sensorviz/sensorviz/internal/logger"
	"github.com/sensorviz/sensorviz/internal/observation"
	"github.com/sensorviz/sensorviz/internal/preview"
	"github.com/sensorviz/sensorviz/internal/record"
	"github.com/sensorviz/sensorviz/internal/video"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render an observation recording into a video",
	Long: `Render reads an observation recording, composes one frame per step
(primary sensor image plus any configured overlay insets) and streams the
result to the video encoder.

Overlay layout, label and output settings come from a YAML job file; the
most common fields can be overridden with flags.`,
	Example: `  # Render with a job file
  sensorviz render --job walk.yaml

  # Render ad hoc, no job file
  sensorviz render --recording walk.svz --primary rgb --out walk.mp4

  # Depth video with a live preview while encoding
  sensorviz render --recording walk.svz --primary depth --type depth \
      --out depth.mp4 --preview :8080`,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.String("job", "", "YAML job file")
	f.String("recording", "", "observation recording path")
	f.String("primary", "", "primary observation key")
	f.String("type", "", "primary observation type (color, depth, semantic)")
	f.String("out", "", "output video path (.mp4 appended when missing)")
	f.Int("fps", 0, "video frames per second")
	f.Float64("depth-clip", 0, "depth normalization ceiling in meters")
	f.IntSlice("dims", nil, "target video dimensions, width,height")
	f.Bool("open", false, "open the video when finished")
	f.String("preview", "", "serve a live encoding preview on this address")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	job, err := loadJob(cmd)
	if err != nil {
		return err
	}
	if err := job.Validate(); err != nil {
		return err
	}

	reader, err := record.Open(job.Recording)
	if err != nil {
		return err
	}
	defer reader.Close()

	frames, err := reader.ReadAll()
	if err != nil {
		return err
	}
	logger.WithComponent("render").Info().
		Str("recording", job.Recording).
		Int("frames", len(frames)).
		Msg("recording loaded")

	opts := video.BuildOptions{
		Primary:     job.Primary,
		PrimaryKind: job.PrimaryType,
		File:        job.Output,
		FPS:         job.FPS,
		OpenVideo:   job.Open,
		VideoDims:   job.VideoDims,
		Overlays:    job.Overlays,
		Label:       job.Label,
		DepthClip:   job.DepthClip,
		Env:         video.DetectEnvironment(),
	}

	if job.Preview != "" {
		srv := preview.NewServer(job.Preview)
		srv.Start()
		defer srv.Stop()

		opts.FrameSink = srv.PublishFrame
		opts.Progress = func(done, total int) {
			srv.PublishProgress(preview.Progress{Done: done, Total: total, File: job.Output})
		}
	}

	return video.Build(frames, opts)
}

// loadJob merges the job file (when given) with flag overrides.
func loadJob(cmd *cobra.Command) (*config.Job, error) {
	f := cmd.Flags()

	var job config.Job
	if path, _ := f.GetString("job"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		job = *loaded
	} else {
		job = config.Default()
	}

	if v, _ := f.GetString("recording"); v != "" {
		job.Recording = v
	}
	if v, _ := f.GetString("primary"); v != "" {
		job.Primary = v
	}
	if v, _ := f.GetString("type"); v != "" {
		job.PrimaryType = observation.Kind(v)
	}
	if v, _ := f.GetString("out"); v != "" {
		job.Output = v
	}
	if v, _ := f.GetInt("fps"); v > 0 {
		job.FPS = v
	}
	if v, _ := f.GetFloat64("depth-clip"); v > 0 {
		job.DepthClip = v
	}
	if v, _ := f.GetIntSlice("dims"); len(v) > 0 {
		if len(v) != 2 {
			return nil, fmt.Errorf("--dims needs exactly width,height, got %v", v)
		}
		job.VideoDims = &[2]int{v[0], v[1]}
	}
	if f.Changed("open") {
		job.Open, _ = f.GetBool("open")
	}
	if v, _ := f.GetString("preview"); v != "" {
		job.Preview = v
	}
	return &job, nil
}
