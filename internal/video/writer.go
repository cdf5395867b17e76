// Package video writes composed frames to a video file. Encoding is done by
// an external ffmpeg process when one is available; a pure-Go MJPEG AVI
// writer serves as the last-resort fallback. Codec selection is a static
// environment check, never a hardware capability probe.
package video

import (
	"image"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sensorviz/sensorviz/internal/logger"
)

// Writer is an appendable video encoder handle. Implementations open their
// underlying encoder lazily on the first Append, once the frame dimensions
// are known, and must tolerate Close being called before any frame was
// appended.
type Writer interface {
	// Append encodes one composed frame. All frames of a video must share
	// the dimensions of the first.
	Append(frame *image.RGBA) error

	// Close finalizes the video file. Safe to call more than once.
	Close() error

	// Path is the file the writer actually produces. It can differ from the
	// requested path when selection falls back to another container.
	Path() string
}

// Environment carries the ambient signals that drive encoder selection,
// injected explicitly so selection stays deterministic under test.
type Environment struct {
	// HostedNotebook is true when running inside a hosted notebook runtime.
	HostedNotebook bool

	// HardwareEncoderPath is the ffmpeg binary to use for hardware-accelerated
	// encoding. Empty means no hardware encoder is configured.
	HardwareEncoderPath string
}

// Environment variables read by DetectEnvironment.
const (
	envHostedNotebook  = "COLAB_RELEASE_TAG"
	envHardwareEncoder = "SENSORVIZ_HWENC"
)

// DetectEnvironment reads the process environment into an Environment.
func DetectEnvironment() Environment {
	return Environment{
		HostedNotebook:      os.Getenv(envHostedNotebook) != "",
		HardwareEncoderPath: os.Getenv(envHardwareEncoder),
	}
}

// NewWriter selects an encoder for the target file. Hardware-accelerated
// encoding with fixed bitrate bounds is used only when running in a hosted
// notebook, the file has a recognized video extension, and a hardware
// encoder binary is configured; every other combination gets the default
// software encoder. The underlying encoder process is not started until the
// first frame is appended.
func NewWriter(path string, fps int) Writer {
	return NewWriterEnv(path, fps, DetectEnvironment())
}

// NewWriterEnv is NewWriter with an explicit Environment.
func NewWriterEnv(path string, fps int, env Environment) Writer {
	log := logger.WithComponent("video")

	if env.HostedNotebook && filepath.Ext(path) == ".mp4" && env.HardwareEncoderPath != "" {
		log.Info().Str("binary", env.HardwareEncoderPath).Msg("using hardware-accelerated encoding")
		return newFFmpegWriter(path, ffmpegOptions{
			Binary:  env.HardwareEncoderPath,
			Codec:   "h264_nvenc",
			FPS:     fps,
			Bitrate: "1000k",
			MinRate: "500k",
			MaxRate: "5000k",
		})
	}

	if bin, err := exec.LookPath("ffmpeg"); err == nil {
		return newFFmpegWriter(path, ffmpegOptions{
			Binary: bin,
			Codec:  "libx264",
			FPS:    fps,
		})
	}

	// No ffmpeg anywhere: fall back to a pure-Go MJPEG AVI next to the
	// requested path.
	aviPath := path[:len(path)-len(filepath.Ext(path))] + ".avi"
	log.Warn().Str("path", aviPath).Msg("ffmpeg not found, falling back to MJPEG AVI")
	return newMJPEGWriter(aviPath, fps)
}
