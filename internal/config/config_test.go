package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sensorviz/sensorviz/internal/compose"
	"github.com/sensorviz/sensorviz/internal/observation"
)

const sampleJob = `
recording: walk.svz
primary: rgb
primary_type: color
output: walk
fps: 30
depth_clip: 8
video_dims: [640, 480]
open: false
overlays:
  - type: depth
    obs: depth
    dims: [160, 120]
    pos: [10, 10]
    border: 2
    border_color: [200, 10, 10]
  - type: semantic
    obs: sem
    dims: [160, 120]
    pos: [180, 10]
    border: 2
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte(sampleJob), 0o644); err != nil {
		t.Fatal(err)
	}

	job, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := job.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if job.Primary != "rgb" || job.PrimaryType != observation.KindColor {
		t.Errorf("primary = %q/%q", job.Primary, job.PrimaryType)
	}
	if job.FPS != 30 || job.DepthClip != 8 {
		t.Errorf("fps/clip = %d/%g", job.FPS, job.DepthClip)
	}
	if job.VideoDims == nil || *job.VideoDims != [2]int{640, 480} {
		t.Errorf("video_dims = %v", job.VideoDims)
	}
	if job.Open {
		t.Error("open should be overridden to false")
	}
	if len(job.Overlays) != 2 {
		t.Fatalf("got %d overlays", len(job.Overlays))
	}
	ov := job.Overlays[0]
	if ov.Kind != observation.KindDepth || ov.Obs != "depth" {
		t.Errorf("overlay 0 = %q/%q", ov.Kind, ov.Obs)
	}
	if ov.BorderColor == nil || *ov.BorderColor != [3]uint8{200, 10, 10} {
		t.Errorf("overlay 0 border_color = %v", ov.BorderColor)
	}
	if job.Overlays[1].BorderColor != nil {
		t.Error("overlay 1 should have no explicit border color")
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	minimal := "recording: r.svz\nprimary: rgb\noutput: out\n"
	if err := os.WriteFile(path, []byte(minimal), 0o644); err != nil {
		t.Fatal(err)
	}
	job, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if job.FPS != 60 {
		t.Errorf("default fps = %d", job.FPS)
	}
	if job.DepthClip != observation.DefaultDepthClip {
		t.Errorf("default depth_clip = %g", job.DepthClip)
	}
	if !job.Open {
		t.Error("open should default to true")
	}
}

func TestValidate(t *testing.T) {
	base := func() Job {
		j := Default()
		j.Recording = "r.svz"
		j.Primary = "rgb"
		j.Output = "out"
		return j
	}
	cases := []struct {
		name   string
		mutate func(*Job)
	}{
		{"missing recording", func(j *Job) { j.Recording = "" }},
		{"missing primary", func(j *Job) { j.Primary = "" }},
		{"bad primary type", func(j *Job) { j.PrimaryType = "thermal" }},
		{"missing output", func(j *Job) { j.Output = "" }},
		{"zero fps", func(j *Job) { j.FPS = 0 }},
		{"negative clip", func(j *Job) { j.DepthClip = -1 }},
		{"bad dims", func(j *Job) { j.VideoDims = &[2]int{0, 100} }},
		{"bad overlay", func(j *Job) {
			j.Overlays = []compose.Overlay{{Kind: observation.KindColor, Obs: "rgb", Border: -1}}
		}},
	}
	for _, c := range cases {
		j := base()
		c.mutate(&j)
		if err := j.Validate(); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}

	good := base()
	if err := good.Validate(); err != nil {
		t.Errorf("valid job rejected: %v", err)
	}
}
