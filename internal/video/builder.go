package video

import (
	"fmt"
	"image"
	"strings"

	"github.com/sensorviz/sensorviz/internal/compose"
	"github.com/sensorviz/sensorviz/internal/display"
	"github.com/sensorviz/sensorviz/internal/logger"
	"github.com/sensorviz/sensorviz/internal/observation"
)

// DefaultFPS is the video frame rate used when none is configured.
const DefaultFPS = 60

const progressLogEvery = 100

// BuildOptions configures one video build.
type BuildOptions struct {
	// Primary names the observation used for the base frame image,
	// converted as PrimaryKind.
	Primary     string
	PrimaryKind observation.Kind

	// File is the output path. A ".mp4" suffix is appended when missing.
	File string

	FPS int

	// OpenVideo displays the finished video (inline in a notebook context,
	// otherwise via the OS default viewer).
	OpenVideo bool

	// VideoDims optionally resizes composed frames to width x height,
	// applied after all overlays.
	VideoDims *[2]int

	Overlays []compose.Overlay

	// Label optionally stamps a frame counter onto every frame.
	Label *compose.Label

	// DepthClip is the shared depth normalization ceiling. Zero means the
	// default of 10.
	DepthClip float64

	// Env drives encoder selection. The zero value selects software
	// encoding.
	Env Environment

	// Progress, when set, is called after each appended frame.
	Progress func(done, total int)

	// FrameSink, when set, receives every composed frame, e.g. for a live
	// preview. Must not retain the image past the call.
	FrameSink func(frame *image.RGBA)
}

// test seams for Build
var (
	newWriterEnv = NewWriterEnv
	displayVideo = display.Video
)

// Build composes one frame per observation frame and streams them to the
// encoder in order. The encoder is finalized on every exit path, including
// aborts from failed image conversion, so the file on disk is always a valid
// video up to the last appended frame.
func Build(frames []observation.Frame, opts BuildOptions) (err error) {
	if len(frames) == 0 {
		return fmt.Errorf("no observation frames to encode")
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}

	path := normalizeVideoPath(opts.File)
	log := logger.WithComponent("video")
	log.Info().Str("path", path).Int("frames", len(frames)).Int("fps", opts.FPS).Msg("encoding video")

	comp, err := compose.New(compose.Options{
		Primary:     opts.Primary,
		PrimaryKind: opts.PrimaryKind,
		Overlays:    opts.Overlays,
		DepthClip:   opts.DepthClip,
		VideoDims:   opts.VideoDims,
		Label:       opts.Label,
	})
	if err != nil {
		return err
	}

	writer := newWriterEnv(path, opts.FPS, opts.Env)
	defer func() {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	total := len(frames)
	for i, frame := range frames {
		if opts.Label != nil {
			opts.Label.Advance(i+1, total)
		}
		img, cerr := comp.Compose(frame)
		if cerr != nil {
			return fmt.Errorf("frame %d: %w", i, cerr)
		}
		if err := writer.Append(img); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if opts.FrameSink != nil {
			opts.FrameSink(img)
		}
		if opts.Progress != nil {
			opts.Progress(i+1, total)
		}
		if (i+1)%progressLogEvery == 0 {
			log.Info().Int("done", i+1).Int("total", total).Msg("encoding progress")
		}
	}

	if err := writer.Close(); err != nil {
		return err
	}
	// The writer may have fallen back to another container, so report the
	// file it actually produced.
	out := writer.Path()
	log.Info().Str("path", out).Msg("video written")

	if opts.OpenVideo {
		if derr := displayVideo(out, display.DefaultHeight); derr != nil {
			log.Warn().Err(derr).Msg("failed to open video for display")
		}
	}
	return nil
}

// normalizeVideoPath appends the .mp4 suffix when the path lacks it.
func normalizeVideoPath(path string) string {
	if !strings.HasSuffix(path, ".mp4") {
		return path + ".mp4"
	}
	return path
}
