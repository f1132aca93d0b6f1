package render

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/fogleman/gg"

	"paintlayer/pkg/css"
	"paintlayer/pkg/geom"
	"paintlayer/pkg/layout"
)

type rgb struct{ r, g, b uint8 }

func pixel(t *testing.T, r *Renderer, x, y int) rgb {
	t.Helper()
	cr, cg, cb, _ := r.Image().At(x, y).RGBA()
	return rgb{uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8)}
}

func buildDoc(t *testing.T, boxes ...struct {
	parent, id, style string
	x, y, w, h        float64
}) *layout.Document {
	t.Helper()
	d := layout.NewDocument(200, 200)
	for _, b := range boxes {
		parent := d.Root
		if b.parent != "" {
			var ok bool
			if parent, ok = d.Lookup(b.parent); !ok {
				t.Fatalf("unknown parent %q", b.parent)
			}
		}
		box := layout.NewBox("div", b.id)
		box.SetInlineStyle(b.style)
		box.X, box.Y, box.Width, box.Height = b.x, b.y, b.w, b.h
		if err := d.AppendChild(parent, box); err != nil {
			t.Fatal(err)
		}
	}
	return d
}

var (
	white  = rgb{255, 255, 255}
	red    = rgb{255, 0, 0}
	blue   = rgb{0, 0, 255}
	lime   = rgb{0, 255, 0}
	yellow = rgb{255, 255, 0}
)

func TestRenderPaintsInStackingOrder(t *testing.T) {
	d := buildDoc(t, []struct {
		parent, id, style string
		x, y, w, h        float64
	}{
		{"", "top", "position: relative; z-index: 2; background: blue", 20, 20, 20, 20},
		{"", "mid", "position: relative; z-index: 1; background: red", 10, 10, 20, 20},
		{"", "under", "position: relative; z-index: -1; background: lime", 60, 60, 20, 20},
	}...)

	r := NewRenderer(200, 200, Options{})
	r.Render(d)

	cases := []struct {
		x, y int
		want rgb
	}{
		{15, 15, red},
		{25, 25, blue},
		{35, 35, blue},
		{70, 70, lime},
		{150, 150, white},
	}
	for _, c := range cases {
		if got := pixel(t, r, c.x, c.y); got != c.want {
			t.Errorf("pixel (%d,%d): expected %v, got %v", c.x, c.y, c.want, got)
		}
	}
}

func TestRenderClipsOverflow(t *testing.T) {
	d := buildDoc(t, []struct {
		parent, id, style string
		x, y, w, h        float64
	}{
		{"", "clip", "overflow: hidden", 100, 100, 20, 20},
		{"clip", "inner", "position: relative; background: yellow", 10, 10, 30, 30},
	}...)

	r := NewRenderer(200, 200, Options{})
	r.Render(d)

	if got := pixel(t, r, 115, 115); got != yellow {
		t.Errorf("expected yellow inside the clip, got %v", got)
	}
	if got := pixel(t, r, 130, 130); got != white {
		t.Errorf("expected the overflow to be clipped, got %v", got)
	}
}

func TestRenderTransformedLayer(t *testing.T) {
	d := buildDoc(t, []struct {
		parent, id, style string
		x, y, w, h        float64
	}{
		{"", "big", "transform: scale(2); transform-origin: left top; background: red", 150, 10, 10, 10},
	}...)

	r := NewRenderer(200, 200, Options{})
	r.Render(d)

	if got := pixel(t, r, 165, 25); got != red {
		t.Errorf("expected the scaled box to cover (165,25), got %v", got)
	}
	if got := pixel(t, r, 175, 35); got != white {
		t.Errorf("expected nothing past the scaled box, got %v", got)
	}
}

func TestRenderColumns(t *testing.T) {
	d := buildDoc(t, []struct {
		parent, id, style string
		x, y, w, h        float64
	}{
		{"", "cols", "columns: 2", 0, 0, 200, 50},
		{"cols", "para", "background: blue", 0, 40, 100, 20},
	}...)

	r := NewRenderer(200, 200, Options{})
	r.Render(d)

	// The paragraph splits: 40..50 in the first column, 50..60 on top of the
	// second.
	if got := pixel(t, r, 50, 45); got != blue {
		t.Errorf("expected the first part in column one, got %v", got)
	}
	if got := pixel(t, r, 150, 5); got != blue {
		t.Errorf("expected the second part in column two, got %v", got)
	}
	if got := pixel(t, r, 50, 55); got != white {
		t.Errorf("expected nothing below the first column, got %v", got)
	}
}

func TestRenderSkipsHiddenAndHalvesOpacity(t *testing.T) {
	d := buildDoc(t, []struct {
		parent, id, style string
		x, y, w, h        float64
	}{
		{"", "ghost", "position: relative; visibility: hidden; background: red", 0, 0, 20, 20},
		{"", "faded", "opacity: 0.5; background: blue", 50, 50, 20, 20},
	}...)

	r := NewRenderer(200, 200, Options{})
	r.Render(d)

	if got := pixel(t, r, 10, 10); got != white {
		t.Errorf("expected the hidden box to be skipped, got %v", got)
	}
	got := pixel(t, r, 60, 60)
	if got.b != 255 || got.r < 120 || got.r > 135 {
		t.Errorf("expected a half transparent blue, got %v", got)
	}
}

func TestRenderOverlaysAndPNG(t *testing.T) {
	d := buildDoc(t, []struct {
		parent, id, style string
		x, y, w, h        float64
	}{
		{"", "gpu", "will-change: transform; background: white", 10, 10, 50, 50},
	}...)
	d.Update(nil)

	r := NewRenderer(100, 100, Options{ShowCompositing: true, ShowLabels: true})
	r.Render(d)
	if got := pixel(t, r, 10, 30); got != (rgb{255, 0, 255}) {
		t.Errorf("expected a magenta outline on the composited layer, got %v", got)
	}

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 100 {
		t.Errorf("expected a 100px wide image, got %d", img.Bounds().Dx())
	}
}

func TestApplyTransformMatchesGeom(t *testing.T) {
	rot, err := css.ParseTransform("translate(7px, -3px) rotate(30deg) scale(2, 0.5) matrix(1, 0, 0.4, 1, 0, 0)")
	if err != nil {
		t.Fatal(err)
	}
	for _, tr := range []geom.Transform{rot, geom.Scale(-1, 2, 1), geom.Affine(0, 1, -1, 0, 5, 5)} {
		dc := gg.NewContext(1, 1)
		if !applyTransform(dc, tr) {
			t.Fatalf("expected %v to apply", tr)
		}
		for _, p := range []geom.Point{{X: 0, Y: 0}, {X: 3, Y: 1}, {X: -2, Y: 5}} {
			x, y := dc.TransformPoint(p.X, p.Y)
			want := tr.MapPoint(p)
			if math.Abs(x-want.X) > 1e-9 || math.Abs(y-want.Y) > 1e-9 {
				t.Errorf("%v maps %v to (%v,%v), expected %v", tr, p, x, y, want)
			}
		}
	}

	if applyTransform(gg.NewContext(1, 1), geom.Scale(0, 1, 1)) {
		t.Error("expected a singular transform to be rejected")
	}
}

func TestRenderInFlowBackgroundsCoverNegativeLayers(t *testing.T) {
	d := buildDoc(t, []struct {
		parent, id, style string
		x, y, w, h        float64
	}{
		{"", "neg", "position: absolute; z-index: -1; background: lime", 0, 0, 40, 40},
		{"", "flow", "background: yellow", 20, 20, 40, 40},
	}...)

	r := NewRenderer(100, 100, Options{})
	r.Render(d)

	if got := pixel(t, r, 10, 10); got != lime {
		t.Errorf("expected the negative layer alone at (10,10), got %v", got)
	}
	if got := pixel(t, r, 30, 30); got != yellow {
		t.Errorf("expected the in-flow box above the negative layer, got %v", got)
	}
}
