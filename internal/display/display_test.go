package display

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearMarkers(t *testing.T) {
	t.Helper()
	for _, key := range append(append([]string{}, notebookMarkers...), editorMarkers...) {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestProbe(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want Context
	}{
		{"bare environment", nil, ContextUnknown},
		{"jupyter kernel", map[string]string{"JPY_SESSION_NAME": "nb.ipynb"}, ContextNotebook},
		{"hosted notebook", map[string]string{"COLAB_RELEASE_TAG": "release"}, ContextNotebook},
		{
			"editor kernel masquerading as notebook",
			map[string]string{"JPY_SESSION_NAME": "nb.ipynb", "VSCODE_PID": "1234"},
			ContextDesktop,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			clearMarkers(t)
			for k, v := range c.env {
				t.Setenv(k, v)
			}
			if got := Probe(); got != c.want {
				t.Errorf("Probe() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestInlineHTML(t *testing.T) {
	content := []byte("not really a video")
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := InlineHTML(&buf, path, 300); err != nil {
		t.Fatalf("InlineHTML: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "data:video/mp4;base64,") {
		t.Error("output missing mp4 data URI")
	}
	if !strings.Contains(out, base64.StdEncoding.EncodeToString(content)) {
		t.Error("output missing base64 payload")
	}
	if !strings.Contains(out, "height: 300px") {
		t.Error("output missing requested height")
	}
}

func TestInlineHTMLMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := InlineHTML(&buf, filepath.Join(t.TempDir(), "absent.mp4"), 0); err == nil {
		t.Fatal("expected error for missing file")
	}
}
