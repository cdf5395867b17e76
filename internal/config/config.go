// Package config models render job configuration. Jobs are written as YAML
// files and can be overridden field-by-field from CLI flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sensorviz/sensorviz/internal/compose"
	"github.com/sensorviz/sensorviz/internal/observation"
)

// Job describes one recording-to-video render.
type Job struct {
	// Recording is the observation recording to render.
	Recording string `yaml:"recording"`

	// Primary names the observation used for the base frame image.
	Primary     string           `yaml:"primary"`
	PrimaryType observation.Kind `yaml:"primary_type"`

	// Output is the video file path; ".mp4" is appended when missing.
	Output string `yaml:"output"`

	FPS       int     `yaml:"fps"`
	DepthClip float64 `yaml:"depth_clip"`

	// VideoDims optionally resizes composed frames to [width, height].
	VideoDims *[2]int `yaml:"video_dims,omitempty"`

	// Open displays the finished video.
	Open bool `yaml:"open"`

	// Preview, when set, serves a live encoding preview on this address.
	Preview string `yaml:"preview,omitempty"`

	Overlays []compose.Overlay `yaml:"overlays,omitempty"`
	Label    *compose.Label    `yaml:"label,omitempty"`
}

// Default returns a job with the standard frame rate and depth clip.
func Default() Job {
	return Job{
		PrimaryType: observation.KindColor,
		FPS:         60,
		DepthClip:   observation.DefaultDepthClip,
		Open:        true,
	}
}

// Load reads a YAML job file over the defaults.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	job := Default()
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parse job file %s: %w", path, err)
	}
	return &job, nil
}

// Validate checks the job invariants before a render starts.
func (j *Job) Validate() error {
	if j.Recording == "" {
		return fmt.Errorf("job: missing recording path")
	}
	if j.Primary == "" {
		return fmt.Errorf("job: missing primary observation key")
	}
	if !j.PrimaryType.Valid() {
		return fmt.Errorf("job: unknown primary type %q", j.PrimaryType)
	}
	if j.Output == "" {
		return fmt.Errorf("job: missing output path")
	}
	if j.FPS <= 0 {
		return fmt.Errorf("job: fps must be positive, got %d", j.FPS)
	}
	if j.DepthClip <= 0 {
		return fmt.Errorf("job: depth_clip must be positive, got %g", j.DepthClip)
	}
	if j.VideoDims != nil && (j.VideoDims[0] <= 0 || j.VideoDims[1] <= 0) {
		return fmt.Errorf("job: invalid video_dims %v", *j.VideoDims)
	}
	for i := range j.Overlays {
		if err := j.Overlays[i].Validate(); err != nil {
			return fmt.Errorf("job: %w", err)
		}
	}
	return nil
}
