// Package compose turns per-frame observations into composed video frames:
// a primary image with optional bordered overlay insets and an optional
// frame label.
package compose

import (
	"fmt"

	"github.com/sensorviz/sensorviz/internal/observation"
)

// DefaultBorderColor is the overlay border fill used when a spec does not
// name one.
var DefaultBorderColor = [3]uint8{150, 150, 150}

// Overlay describes one secondary observation rendered as a bordered inset
// on top of the primary frame image. Dims and Pos are always interpreted in
// the primary image's coordinate space, even when the composed frame is
// resized afterwards.
type Overlay struct {
	Kind        observation.Kind `yaml:"type"`
	Obs         string           `yaml:"obs"`
	Dims        [2]int           `yaml:"dims"` // width, height
	Pos         [2]int           `yaml:"pos"`  // x, y of the inset's top-left corner
	Border      int              `yaml:"border"`
	BorderColor *[3]uint8        `yaml:"border_color,omitempty"`
}

// Validate checks the overlay spec invariants: a known observation kind, a
// non-empty source key, and non-negative dims, pos and border.
func (o *Overlay) Validate() error {
	if !o.Kind.Valid() {
		return fmt.Errorf("overlay %q: unknown type %q", o.Obs, o.Kind)
	}
	if o.Obs == "" {
		return fmt.Errorf("overlay: missing observation key")
	}
	if o.Dims[0] < 0 || o.Dims[1] < 0 {
		return fmt.Errorf("overlay %q: negative dims %v", o.Obs, o.Dims)
	}
	if o.Pos[0] < 0 || o.Pos[1] < 0 {
		return fmt.Errorf("overlay %q: negative pos %v", o.Obs, o.Pos)
	}
	if o.Border < 0 {
		return fmt.Errorf("overlay %q: negative border %d", o.Obs, o.Border)
	}
	return nil
}

// borderColor returns the configured border fill, or the gray default.
func (o *Overlay) borderColor() [3]uint8 {
	if o.BorderColor != nil {
		return *o.BorderColor
	}
	return DefaultBorderColor
}
