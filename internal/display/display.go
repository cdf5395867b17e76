// Package display shows a finished video to the user: embedded as an inline
// HTML5 element when running under a notebook kernel, otherwise through the
// platform's default viewer.
package display

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sensorviz/sensorviz/internal/logger"
)

// DefaultHeight is the display height, in pixels, of inline notebook videos.
const DefaultHeight = 400

// Context is the result of probing the execution environment.
type Context int

const (
	// ContextUnknown means the probe could not decide. Callers treat it the
	// same as ContextDesktop.
	ContextUnknown Context = iota
	ContextDesktop
	ContextNotebook
)

func (c Context) String() string {
	switch c {
	case ContextNotebook:
		return "notebook"
	case ContextDesktop:
		return "desktop"
	default:
		return "unknown"
	}
}

// Kernel markers checked by Probe. A code-editor-embedded kernel masquerades
// as a notebook, so its marker forces the desktop verdict.
var (
	notebookMarkers = []string{"JPY_SESSION_NAME", "JUPYTER_SERVER_URL", "COLAB_RELEASE_TAG"}
	editorMarkers   = []string{"VSCODE_PID"}
)

// Probe detects whether an interactive notebook kernel is hosting the
// process. Pure environment inspection; it never fails, an undecidable
// environment comes back as ContextUnknown.
func Probe() Context {
	for _, key := range editorMarkers {
		if os.Getenv(key) != "" {
			return ContextDesktop
		}
	}
	for _, key := range notebookMarkers {
		if os.Getenv(key) != "" {
			return ContextNotebook
		}
	}
	return ContextUnknown
}

// Video displays the video at path: inline when a notebook kernel is
// detected, otherwise via the OS default handler.
func Video(path string, height int) error {
	if Probe() == ContextNotebook {
		return InlineHTML(os.Stdout, path, height)
	}
	return Open(path)
}

// InlineHTML writes an HTML5 video element with the file's content embedded
// as a base64 data URI. The notebook front end renders it directly.
func InlineHTML(w io.Writer, path string, height int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read video: %w", err)
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		ext = "mp4"
	}
	if height <= 0 {
		height = DefaultHeight
	}

	_, err = fmt.Fprintf(w,
		`<video autoplay loop controls style="height: %dpx;">`+
			`<source src="data:video/%s;base64,%s" type="video/%s" /></video>`+"\n",
		height, ext, base64.StdEncoding.EncodeToString(data), ext)
	return err
}

// Open launches the platform's default handler for the file. Whether a
// handler exists is left to the underlying command to report.
func Open(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	logger.WithComponent("display").Debug().Str("path", path).Str("opener", cmd.Path).Msg("opening video")
	return cmd.Start()
}
