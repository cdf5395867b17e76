package observation

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/sensorviz/sensorviz/internal/logger"
)

// DefaultDepthClip is the depth normalization ceiling, in meters, used when a
// caller does not supply one.
const DefaultDepthClip = 10.0

// ErrUnsupportedKind is returned by ToImage for observation kinds outside
// color, depth and semantic. Callers treat it as a hard stop for the frame
// being processed.
var ErrUnsupportedKind = errors.New("unsupported observation kind")

// ToImage converts a raw observation buffer into a displayable image.
// depthClip only applies to depth buffers; pass 0 or less through
// DepthToGray's guard to get an explicit error rather than a division by
// zero.
func ToImage(buf *Buffer, kind Kind, depthClip float64) (image.Image, error) {
	switch kind {
	case KindColor:
		return ColorToRGBA(buf)
	case KindDepth:
		return DepthToGray(buf, depthClip)
	case KindSemantic:
		return SemanticToRGBA(buf, D3Colors40)
	default:
		logger.WithComponent("observation").Error().
			Str("kind", string(kind)).
			Msg("unsupported observation kind")
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
}

// ColorToRGBA casts an 8-bit color buffer into an RGBA image. Three-channel
// buffers get an opaque alpha channel appended.
func ColorToRGBA(buf *Buffer) (*image.RGBA, error) {
	if err := buf.Check(KindColor); err != nil {
		return nil, fmt.Errorf("color observation: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	n := buf.Width * buf.Height
	switch buf.Channels {
	case 4:
		copy(img.Pix, buf.Color)
	case 3:
		for i := 0; i < n; i++ {
			img.Pix[i*4+0] = buf.Color[i*3+0]
			img.Pix[i*4+1] = buf.Color[i*3+1]
			img.Pix[i*4+2] = buf.Color[i*3+2]
			img.Pix[i*4+3] = 0xff
		}
	}
	return img, nil
}

// DepthToGray clips depth values to [0, clip], rescales the result to
// [0, 255] and rounds into an 8-bit grayscale image. Values at or beyond the
// clip ceiling saturate to 255.
func DepthToGray(buf *Buffer, clip float64) (*image.Gray, error) {
	if err := buf.Check(KindDepth); err != nil {
		return nil, fmt.Errorf("depth observation: %w", err)
	}
	if clip <= 0 {
		return nil, fmt.Errorf("depth clip must be positive, got %g", clip)
	}
	img := image.NewGray(image.Rect(0, 0, buf.Width, buf.Height))
	for i, d := range buf.Depth {
		v := float64(d)
		if v < 0 {
			v = 0
		} else if v > clip {
			v = clip
		}
		img.Pix[i] = uint8(math.Round(v / clip * 255))
	}
	return img, nil
}

// SemanticToRGBA maps semantic category ids through a 40-entry color table
// into an indexed-color image, then expands it to full RGBA. Each id selects
// palette slot id mod 40, with negative ids wrapping around.
func SemanticToRGBA(buf *Buffer, table [PaletteSize][3]uint8) (*image.RGBA, error) {
	if err := buf.Check(KindSemantic); err != nil {
		return nil, fmt.Errorf("semantic observation: %w", err)
	}
	indexed := image.NewPaletted(image.Rect(0, 0, buf.Width, buf.Height), semanticPalette(table))
	for i, id := range buf.Semantic {
		indexed.Pix[i] = PaletteIndex(id)
	}

	img := image.NewRGBA(indexed.Rect)
	for i, idx := range indexed.Pix {
		c := table[idx]
		img.Pix[i*4+0] = c[0]
		img.Pix[i*4+1] = c[1]
		img.Pix[i*4+2] = c[2]
		img.Pix[i*4+3] = 0xff
	}
	return img, nil
}
