package compose

import (
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Label draws a small frame-counter annotation onto composed frames, e.g.
// "frame 12/300". Format is a Sprintf pattern receiving the current index
// (1-based) and the total count.
type Label struct {
	Format  string    `yaml:"format"`
	Pos     [2]int    `yaml:"pos"`
	Color   *[3]uint8 `yaml:"color,omitempty"`
	Padding int       `yaml:"padding"`

	index int
	total int
}

// DefaultLabelFormat is used when a Label does not specify one.
const DefaultLabelFormat = "frame %d/%d"

// Advance sets the counter state rendered by the next Render call.
func (l *Label) Advance(index, total int) {
	l.index = index
	l.total = total
}

// Render draws the label text onto img using the built-in 7x13 face.
func (l *Label) Render(img *image.RGBA) {
	format := l.Format
	if format == "" {
		format = DefaultLabelFormat
	}
	text := fmt.Sprintf(format, l.index, l.total)

	tc := color.RGBA{255, 255, 255, 255}
	if l.Color != nil {
		tc = color.RGBA{R: l.Color[0], G: l.Color[1], B: l.Color[2], A: 0xff}
	}

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(tc),
		Face: face,
	}
	textWidth := int(d.MeasureString(text) >> 6)

	// Dark backing strip so the text stays readable on bright frames.
	x := l.Pos[0]
	y := l.Pos[1]
	pad := l.Padding
	back := image.Rect(x, y, x+textWidth+pad*2, y+face.Height+pad*2)
	stddraw.Draw(img, back, &image.Uniform{color.RGBA{0, 0, 0, 160}}, image.Point{}, stddraw.Over)

	d.Dot = fixed.P(x+pad, y+pad+face.Ascent)
	d.DrawString(text)
}
