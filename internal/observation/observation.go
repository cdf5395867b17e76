// Package observation holds raw sensor readouts and their conversion into
// displayable images.
//
// A Buffer is one named readout for a single frame: an 8-bit color image,
// a float depth map, or an integer semantic id map. Buffers arrive from an
// external sensor subsystem and are treated as read-only here.
package observation

import "fmt"

// Kind tags the sensor modality of a buffer.
type Kind string

const (
	KindColor    Kind = "color"
	KindDepth    Kind = "depth"
	KindSemantic Kind = "semantic"
)

// Valid reports whether k is one of the supported modalities.
func (k Kind) Valid() bool {
	switch k {
	case KindColor, KindDepth, KindSemantic:
		return true
	}
	return false
}

// Buffer is one raw sensor readout in row-major order. Exactly one of the
// payload slices is populated, matching the modality it was captured as:
//
//   - Color: Width*Height*Channels bytes, Channels is 3 (RGB) or 4 (RGBA)
//   - Depth: Width*Height float32 values, meters
//   - Semantic: Width*Height int32 category ids
type Buffer struct {
	Width    int
	Height   int
	Channels int // color payloads only

	Color    []uint8
	Depth    []float32
	Semantic []int32
}

// Frame is the observation dictionary for a single simulated step, keyed by
// sensor name.
type Frame map[string]*Buffer

// Check verifies that the buffer payload matches its declared dimensions for
// the given modality.
func (b *Buffer) Check(kind Kind) error {
	if b == nil {
		return fmt.Errorf("nil observation buffer")
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("invalid buffer dimensions %dx%d", b.Width, b.Height)
	}
	n := b.Width * b.Height
	switch kind {
	case KindColor:
		ch := b.Channels
		if ch != 3 && ch != 4 {
			return fmt.Errorf("color buffer must have 3 or 4 channels, got %d", ch)
		}
		if len(b.Color) != n*ch {
			return fmt.Errorf("color buffer length %d, want %d", len(b.Color), n*ch)
		}
	case KindDepth:
		if len(b.Depth) != n {
			return fmt.Errorf("depth buffer length %d, want %d", len(b.Depth), n)
		}
	case KindSemantic:
		if len(b.Semantic) != n {
			return fmt.Errorf("semantic buffer length %d, want %d", len(b.Semantic), n)
		}
	default:
		return fmt.Errorf("unknown observation kind %q", kind)
	}
	return nil
}
