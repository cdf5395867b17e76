package video

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"

	"github.com/sensorviz/sensorviz/internal/logger"
)

// ffmpegOptions configures one encoder subprocess.
type ffmpegOptions struct {
	Binary  string
	Codec   string
	FPS     int
	Bitrate string // target bitrate, empty for codec default
	MinRate string
	MaxRate string
}

// ffmpegWriter streams raw RGBA frames over stdin to an ffmpeg subprocess,
// which muxes the encoded stream into the target file. The process is
// spawned on the first Append, when the frame dimensions are known.
type ffmpegWriter struct {
	path string
	opts ffmpegOptions

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer

	width  int
	height int
	closed bool
}

func newFFmpegWriter(path string, opts ffmpegOptions) *ffmpegWriter {
	return &ffmpegWriter{path: path, opts: opts}
}

func (w *ffmpegWriter) start(width, height int) error {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", strconv.Itoa(w.opts.FPS),
		"-i", "-",
		"-c:v", w.opts.Codec,
	}
	if w.opts.Bitrate != "" {
		args = append(args, "-b:v", w.opts.Bitrate)
	}
	if w.opts.MinRate != "" {
		args = append(args, "-minrate", w.opts.MinRate)
	}
	if w.opts.MaxRate != "" {
		args = append(args, "-maxrate", w.opts.MaxRate)
	}
	args = append(args, "-pix_fmt", "yuv420p", w.path)

	log := logger.WithComponent("video")
	log.Debug().Str("binary", w.opts.Binary).Strs("args", args).Msg("starting encoder subprocess")

	cmd := exec.Command(w.opts.Binary, args...)
	cmd.Stderr = &w.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("encoder stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start encoder %s: %w", w.opts.Binary, err)
	}

	w.cmd = cmd
	w.stdin = stdin
	w.width = width
	w.height = height
	log.Info().Str("codec", w.opts.Codec).Int("pid", cmd.Process.Pid).Msg("encoder started")
	return nil
}

func (w *ffmpegWriter) Path() string {
	return w.path
}

func (w *ffmpegWriter) Append(frame *image.RGBA) error {
	if w.closed {
		return fmt.Errorf("append to closed video writer")
	}
	b := frame.Bounds()
	width, height := b.Dx(), b.Dy()

	if w.cmd == nil {
		if err := w.start(width, height); err != nil {
			return err
		}
	} else if width != w.width || height != w.height {
		return fmt.Errorf("frame size %dx%d does not match video size %dx%d",
			width, height, w.width, w.height)
	}

	// Write row by row: Pix may carry padding when the frame is a sub-image.
	rowLen := width * 4
	for y := 0; y < height; y++ {
		off := frame.PixOffset(b.Min.X, b.Min.Y+y)
		if _, err := w.stdin.Write(frame.Pix[off : off+rowLen]); err != nil {
			return fmt.Errorf("write frame to encoder: %w (stderr: %s)", err, w.stderr.String())
		}
	}
	return nil
}

func (w *ffmpegWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.cmd == nil {
		// Never started: no frames were appended, nothing to finalize.
		return nil
	}
	if err := w.stdin.Close(); err != nil {
		return fmt.Errorf("close encoder stdin: %w", err)
	}
	if err := w.cmd.Wait(); err != nil {
		return fmt.Errorf("encoder exited: %w (stderr: %s)", err, w.stderr.String())
	}
	logger.WithComponent("video").Info().Str("path", w.path).Msg("video finalized")
	return nil
}
