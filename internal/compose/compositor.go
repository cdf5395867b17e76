package compose

import (
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"

	"golang.org/x/image/draw"

	"github.com/sensorviz/sensorviz/internal/observation"
)

// Options configures a Compositor.
type Options struct {
	// Primary names the observation used for the base frame image, converted
	// as PrimaryKind.
	Primary     string
	PrimaryKind observation.Kind

	// Overlays are pasted onto every frame, in order.
	Overlays []Overlay

	// DepthClip is the normalization ceiling shared by all depth conversions.
	// Zero means observation.DefaultDepthClip.
	DepthClip float64

	// VideoDims, when non-nil, resizes the fully composited frame to
	// width x height. Applied after all overlays; overlay placement stays in
	// primary-image coordinates.
	VideoDims *[2]int

	// Label, when non-nil, draws a frame counter onto each composed frame.
	Label *Label
}

// Compositor produces one composed RGBA frame per observation frame. Border
// rectangles are precomputed once per overlay spec, not per frame.
type Compositor struct {
	opts    Options
	borders []*image.RGBA
}

// New validates the overlay specs and precomputes their border rectangles,
// each sized dims + 2*border per dimension and filled with the border color.
func New(opts Options) (*Compositor, error) {
	if opts.Primary == "" {
		return nil, fmt.Errorf("compositor: missing primary observation key")
	}
	if !opts.PrimaryKind.Valid() {
		return nil, fmt.Errorf("compositor: unknown primary kind %q", opts.PrimaryKind)
	}
	if opts.DepthClip == 0 {
		opts.DepthClip = observation.DefaultDepthClip
	}
	if opts.VideoDims != nil && (opts.VideoDims[0] <= 0 || opts.VideoDims[1] <= 0) {
		return nil, fmt.Errorf("compositor: invalid video dims %v", *opts.VideoDims)
	}

	c := &Compositor{opts: opts}
	for i := range opts.Overlays {
		ov := &opts.Overlays[i]
		if err := ov.Validate(); err != nil {
			return nil, err
		}
		c.borders = append(c.borders, borderImage(ov))
	}
	return c, nil
}

// borderImage builds the background rectangle pasted beneath an overlay.
func borderImage(ov *Overlay) *image.RGBA {
	w := ov.Dims[0] + ov.Border*2
	h := ov.Dims[1] + ov.Border*2
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bc := ov.borderColor()
	fill := color.RGBA{R: bc[0], G: bc[1], B: bc[2], A: 0xff}
	stddraw.Draw(img, img.Bounds(), &image.Uniform{fill}, image.Point{}, stddraw.Src)
	return img
}

// Compose builds the composed frame for one observation frame. Any conversion
// failure, primary or overlay, aborts the frame with an error; the caller is
// expected to stop the build.
func (c *Compositor) Compose(frame observation.Frame) (*image.RGBA, error) {
	primary, err := observation.ToImage(frame[c.opts.Primary], c.opts.PrimaryKind, c.opts.DepthClip)
	if err != nil {
		return nil, fmt.Errorf("primary observation %q: %w", c.opts.Primary, err)
	}
	canvas := toRGBA(primary)

	for i := range c.opts.Overlays {
		ov := &c.opts.Overlays[i]
		img, err := observation.ToImage(frame[ov.Obs], ov.Kind, c.opts.DepthClip)
		if err != nil {
			return nil, fmt.Errorf("overlay observation %q: %w", ov.Obs, err)
		}
		inset := resize(img, ov.Dims[0], ov.Dims[1])
		paste(canvas, c.borders[i], ov.Pos[0]-ov.Border, ov.Pos[1]-ov.Border)
		paste(canvas, inset, ov.Pos[0], ov.Pos[1])
	}

	if c.opts.Label != nil {
		c.opts.Label.Render(canvas)
	}

	if c.opts.VideoDims != nil {
		canvas = scaleRGBA(canvas, c.opts.VideoDims[0], c.opts.VideoDims[1])
	}
	return canvas, nil
}

// toRGBA returns img itself when already RGBA, otherwise a converted copy.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	stddraw.Draw(out, out.Bounds(), img, img.Bounds().Min, stddraw.Src)
	return out
}

// resize scales an overlay image to its declared dims. Nearest neighbor keeps
// semantic category colors crisp.
func resize(img image.Image, w, h int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return toRGBA(img)
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}

// scaleRGBA resizes the fully composited frame to the target video dims.
func scaleRGBA(img *image.RGBA, w, h int) *image.RGBA {
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)
	return out
}

// paste copies src onto dst with its top-left corner at (x, y), clipped to
// the destination bounds.
func paste(dst *image.RGBA, src image.Image, x, y int) {
	r := src.Bounds().Sub(src.Bounds().Min).Add(image.Pt(x, y))
	stddraw.Draw(dst, r, src, src.Bounds().Min, stddraw.Src)
}
