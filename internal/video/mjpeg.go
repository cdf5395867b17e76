package video

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/icza/mjpeg"
)

const mjpegQuality = 90

// mjpegWriter encodes frames into a Motion JPEG AVI without any external
// binary. Used when no ffmpeg is available.
type mjpegWriter struct {
	path string
	fps  int

	avi    mjpeg.AviWriter
	width  int
	height int
	closed bool
}

func newMJPEGWriter(path string, fps int) *mjpegWriter {
	return &mjpegWriter{path: path, fps: fps}
}

func (w *mjpegWriter) Path() string {
	return w.path
}

func (w *mjpegWriter) Append(frame *image.RGBA) error {
	if w.closed {
		return fmt.Errorf("append to closed video writer")
	}
	b := frame.Bounds()
	width, height := b.Dx(), b.Dy()

	if w.avi == nil {
		avi, err := mjpeg.New(w.path, int32(width), int32(height), int32(w.fps))
		if err != nil {
			return fmt.Errorf("create MJPEG writer: %w", err)
		}
		w.avi = avi
		w.width = width
		w.height = height
	} else if width != w.width || height != w.height {
		return fmt.Errorf("frame size %dx%d does not match video size %dx%d",
			width, height, w.width, w.height)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: mjpegQuality}); err != nil {
		return fmt.Errorf("encode frame as JPEG: %w", err)
	}
	if err := w.avi.AddFrame(buf.Bytes()); err != nil {
		return fmt.Errorf("add frame: %w", err)
	}
	return nil
}

func (w *mjpegWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.avi == nil {
		return nil
	}
	if err := w.avi.Close(); err != nil {
		return fmt.Errorf("finalize MJPEG video: %w", err)
	}
	return nil
}
