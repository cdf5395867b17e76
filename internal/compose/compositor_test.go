package compose

import (
	"bytes"
	"testing"

	"github.com/sensorviz/sensorviz/internal/observation"
)

func colorFrame(key string, w, h int, r, g, b uint8) observation.Frame {
	pix := make([]uint8, w*h*3)
	for i := 0; i < w*h; i++ {
		pix[i*3+0] = r
		pix[i*3+1] = g
		pix[i*3+2] = b
	}
	return observation.Frame{key: {Width: w, Height: h, Channels: 3, Color: pix}}
}

func TestComposeRoundTrip(t *testing.T) {
	// Zero overlays and no target dims: the composed frame must be pixel
	// identical to the direct conversion of the primary observation.
	frame := colorFrame("rgb", 8, 6, 10, 200, 30)

	c, err := New(Options{Primary: "rgb", PrimaryKind: observation.KindColor})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	composed, err := c.Compose(frame)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	direct, err := observation.ColorToRGBA(frame["rgb"])
	if err != nil {
		t.Fatalf("ColorToRGBA: %v", err)
	}
	if !bytes.Equal(composed.Pix, direct.Pix) {
		t.Fatal("composed frame differs from direct conversion")
	}
}

func TestComposeOverlayBorderGeometry(t *testing.T) {
	// 100x100 primary, one 20x20 overlay at (10,10) with border 2: the border
	// rectangle is 24x24 pasted at (8,8), so it covers [8,32)x[8,32) except
	// where the inset covers [10,30)x[10,30).
	frame := colorFrame("rgb", 100, 100, 0, 0, 0)
	inset := colorFrame("inset", 20, 20, 250, 0, 0)
	frame["inset"] = inset["inset"]

	c, err := New(Options{
		Primary:     "rgb",
		PrimaryKind: observation.KindColor,
		Overlays: []Overlay{{
			Kind:   observation.KindColor,
			Obs:    "inset",
			Dims:   [2]int{20, 20},
			Pos:    [2]int{10, 10},
			Border: 2,
		}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	img, err := c.Compose(frame)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	at := func(x, y int) [3]uint8 {
		o := img.PixOffset(x, y)
		return [3]uint8{img.Pix[o], img.Pix[o+1], img.Pix[o+2]}
	}
	border := DefaultBorderColor
	insetColor := [3]uint8{250, 0, 0}
	background := [3]uint8{0, 0, 0}

	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			want := background
			switch {
			case x >= 10 && x < 30 && y >= 10 && y < 30:
				want = insetColor
			case x >= 8 && x < 32 && y >= 8 && y < 32:
				want = border
			}
			if got := at(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestComposeOverlayConversionFailureAborts(t *testing.T) {
	frame := colorFrame("rgb", 4, 4, 1, 2, 3)
	frame["bad"] = &observation.Buffer{Width: 2, Height: 2, Depth: []float32{1, 2, 3, 4}}

	c, err := New(Options{
		Primary:     "rgb",
		PrimaryKind: observation.KindColor,
		Overlays: []Overlay{{
			Kind: observation.Kind("semantic"),
			Obs:  "bad",
			Dims: [2]int{2, 2},
		}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Compose(frame); err == nil {
		t.Fatal("expected compose to abort on overlay conversion failure")
	}
}

func TestComposeVideoDims(t *testing.T) {
	frame := colorFrame("rgb", 100, 50, 9, 9, 9)
	dims := [2]int{40, 20}
	c, err := New(Options{
		Primary:     "rgb",
		PrimaryKind: observation.KindColor,
		VideoDims:   &dims,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	img, err := c.Compose(frame)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Fatalf("resized frame is %dx%d, want 40x20", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestLabelRender(t *testing.T) {
	frame := colorFrame("rgb", 60, 30, 0, 0, 0)
	label := &Label{Pos: [2]int{2, 2}, Padding: 2}
	label.Advance(3, 9)

	c, err := New(Options{Primary: "rgb", PrimaryKind: observation.KindColor, Label: label})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	img, err := c.Compose(frame)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	changed := false
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatal("label left the frame untouched")
	}
}

func TestOverlayValidate(t *testing.T) {
	cases := []struct {
		name    string
		overlay Overlay
		wantErr bool
	}{
		{"valid", Overlay{Kind: observation.KindColor, Obs: "rgb", Dims: [2]int{10, 10}}, false},
		{"unknown kind", Overlay{Kind: "thermal", Obs: "rgb"}, true},
		{"missing key", Overlay{Kind: observation.KindColor}, true},
		{"negative dims", Overlay{Kind: observation.KindColor, Obs: "rgb", Dims: [2]int{-1, 5}}, true},
		{"negative pos", Overlay{Kind: observation.KindColor, Obs: "rgb", Pos: [2]int{0, -2}}, true},
		{"negative border", Overlay{Kind: observation.KindColor, Obs: "rgb", Border: -1}, true},
	}
	for _, c := range cases {
		err := c.overlay.Validate()
		if (err != nil) != c.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", c.name, err, c.wantErr)
		}
	}
}

func TestBorderColorDefault(t *testing.T) {
	ov := Overlay{Kind: observation.KindColor, Obs: "x", Dims: [2]int{4, 4}, Border: 1}
	img := borderImage(&ov)
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 6 {
		t.Fatalf("border image is %dx%d, want 6x6", img.Bounds().Dx(), img.Bounds().Dy())
	}
	o := img.PixOffset(0, 0)
	if img.Pix[o] != 150 || img.Pix[o+1] != 150 || img.Pix[o+2] != 150 {
		t.Fatalf("default border color = [%d %d %d], want [150 150 150]",
			img.Pix[o], img.Pix[o+1], img.Pix[o+2])
	}
}
