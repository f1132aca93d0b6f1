package render

import (
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"paintlayer/pkg/css"
	"paintlayer/pkg/geom"
	"paintlayer/pkg/layout"
	"paintlayer/pkg/paint"
)

// Options select the diagnostic overlays.
type Options struct {
	// ShowLabels draws each layer's debug name at its top-left corner.
	ShowLabels bool
	// ShowCompositing outlines composited layers. It needs a tree whose
	// compositing is up to date.
	ShowCompositing bool
}

// Renderer paints a Document back to front, layer by layer.
type Renderer struct {
	context *gg.Context
	opts    Options

	doc  *layout.Document
	tree *paint.Tree
}

func NewRenderer(width, height int, opts Options) *Renderer {
	r := &Renderer{context: gg.NewContext(width, height), opts: opts}
	r.context.SetFontFace(basicfont.Face7x13)
	return r
}

// Render clears the canvas and paints doc in stacking order.
func (r *Renderer) Render(doc *layout.Document) {
	r.doc = doc
	r.tree = doc.Tree()
	r.context.SetRGB(1, 1, 1)
	r.context.Clear()

	root := r.tree.Root()
	r.paintLayer(root, root, 1)
}

// paintLayer paints id and, when it is a stacking context, its z-order
// lists. root is the nearest layer whose coordinate space the canvas matrix
// currently maps; transformed layers start a new root.
func (r *Renderer) paintLayer(root, id paint.LayerID, alpha float64) {
	t := r.tree
	if !t.HasVisibleContent(id) && !t.HasVisibleDescendant(id) {
		return
	}
	if id != root && t.Transform(id) != nil {
		r.paintTransformedLayer(root, id, alpha)
		return
	}
	box := r.doc.BoxForLayer(id)
	alpha *= box.Style.GetOpacity()

	frags := r.collect(root, id)
	for _, f := range frags {
		r.withClip(f.BackgroundRect, func() {
			if !box.Style.IsVisibilityHidden() {
				r.drawBackground(box, f.LayerBounds, alpha)
			}
		})
	}

	if t.IsStackingContext(id) {
		for _, c := range t.NegativeZOrderList(id) {
			r.paintLayer(root, c, alpha)
		}
	}

	// Backgrounds of boxes painted into this layer go above negative
	// z-index layers, then all text on top.
	for _, f := range frags {
		r.withClip(f.ForegroundRect, func() {
			r.drawBoxes(box, f.LayerBounds.Origin(), alpha, func(b *layout.Box, rect geom.Rect, alpha float64) {
				if b != box {
					r.drawBackground(b, rect, alpha)
				}
			})
			r.drawBoxes(box, f.LayerBounds.Origin(), alpha, r.drawForeground)
		})
	}

	if t.IsStackingContext(id) {
		for _, c := range t.NormalFlowList(id) {
			r.paintLayer(root, c, alpha)
		}
		for _, c := range t.PositiveZOrderList(id) {
			r.paintLayer(root, c, alpha)
		}
	}

	for _, f := range frags {
		r.drawOverlays(id, box, f.LayerBounds)
	}
}

// collect returns the fragments of id relative to root.
func (r *Renderer) collect(root, id paint.LayerID) []paint.Fragment {
	return r.tree.CollectFragments(nil, root, id, geom.InfiniteRect())
}

func (r *Renderer) paintTransformedLayer(root, id paint.LayerID, alpha float64) {
	tr := r.tree.Transform(id)
	if r.tree.Style(id).BackfaceHidden && !tr.IsBackFaceVisible() {
		return
	}
	for _, f := range r.collect(root, id) {
		r.withClip(f.BackgroundRect, func() {
			r.context.Push()
			defer r.context.Pop()
			r.context.Translate(f.LayerBounds.X, f.LayerBounds.Y)
			if !applyTransform(r.context, *tr) {
				return
			}
			r.paintLayer(id, id, alpha)
		})
	}
}

// withClip runs draw with the canvas clipped to clip.
func (r *Renderer) withClip(clip geom.Rect, draw func()) {
	if clip.IsEmpty() {
		return
	}
	r.context.Push()
	defer r.context.Pop()
	if !clip.IsInfinite() {
		r.context.DrawRectangle(clip.X, clip.Y, clip.Width, clip.Height)
		r.context.Clip()
	}
	draw()
}

// drawBoxes calls draw for every visible box painted by owner's layer,
// with origin the owner's position on the canvas.
func (r *Renderer) drawBoxes(owner *layout.Box, origin geom.Point, alpha float64, draw func(*layout.Box, geom.Rect, float64)) {
	base := owner.AbsolutePosition()
	owner.PaintedBoxes(func(b *layout.Box) {
		if b.Style.IsVisibilityHidden() {
			return
		}
		at := b.AbsolutePosition().Sub(base).Add(origin)
		draw(b, geom.RectFrom(at, geom.Size{Width: b.Width, Height: b.Height}), alpha)
	})
}

func (r *Renderer) setColor(c css.Color, alpha float64) {
	r.context.SetRGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, float64(c.A)/255.0*alpha)
}

// drawBackground draws the background and border of a box
func (r *Renderer) drawBackground(box *layout.Box, rect geom.Rect, alpha float64) {
	if bg := box.Style.GetBackgroundColor(); bg.A > 0 {
		r.setColor(bg, alpha)
		r.context.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
		r.context.Fill()
	}
	r.drawBorder(box, rect, alpha)
}

// drawBorder draws the four border sides as filled strips.
func (r *Renderer) drawBorder(box *layout.Box, rect geom.Rect, alpha float64) {
	border := box.Style.GetBorderWidth()
	if border.Top <= 0 && border.Right <= 0 && border.Bottom <= 0 && border.Left <= 0 {
		return
	}
	// border-color defaults to currentColor
	color := box.Style.GetColor("border-color", box.Style.GetColor("color", css.Color{A: 255}))
	r.setColor(color, alpha)

	sides := []geom.Rect{
		{X: rect.X, Y: rect.Y, Width: rect.Width, Height: border.Top},
		{X: rect.MaxX() - border.Right, Y: rect.Y, Width: border.Right, Height: rect.Height},
		{X: rect.X, Y: rect.MaxY() - border.Bottom, Width: rect.Width, Height: border.Bottom},
		{X: rect.X, Y: rect.Y, Width: border.Left, Height: rect.Height},
	}
	for _, s := range sides {
		if s.Width > 0 && s.Height > 0 {
			r.context.DrawRectangle(s.X, s.Y, s.Width, s.Height)
			r.context.Fill()
		}
	}
}

// drawForeground draws text and a placeholder for accelerated content.
func (r *Renderer) drawForeground(box *layout.Box, rect geom.Rect, alpha float64) {
	if box.Style.IsAcceleratedContent() {
		// Stand-in for a video or canvas surface.
		r.setColor(css.Color{R: 64, G: 64, B: 64, A: 255}, alpha)
		r.context.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
		r.context.Fill()
	}
	if box.Text == "" {
		return
	}
	r.setColor(box.Style.GetColor("color", css.Color{A: 255}), alpha)
	r.context.DrawStringWrapped(box.Text, rect.X, rect.Y, 0, 0, rect.Width, 1.2, gg.AlignLeft)
}

var compositedOutline = css.Color{R: 255, G: 0, B: 255, A: 255}

func (r *Renderer) drawOverlays(id paint.LayerID, box *layout.Box, bounds geom.Rect) {
	if r.opts.ShowCompositing && r.tree.Lifecycle() == paint.LifecycleCompositingClean && r.tree.IsComposited(id) {
		r.setColor(compositedOutline, 1)
		r.context.SetLineWidth(1)
		r.context.DrawRectangle(bounds.X+0.5, bounds.Y+0.5, bounds.Width-1, bounds.Height-1)
		r.context.Stroke()
	}
	if r.opts.ShowLabels && !r.tree.IsRootLayer(id) {
		r.context.SetRGBA(0, 0, 0, 0.8)
		r.context.DrawString(box.DebugName(), bounds.X+2, bounds.Y+11)
	}
}

// applyTransform multiplies the canvas matrix by the 2D part of t. It
// reports false for transforms that flatten to a singular matrix.
func applyTransform(dc *gg.Context, t geom.Transform) bool {
	a, b, c, d, e, f := t.Flatten()
	sx := math.Hypot(a, b)
	det := a*d - b*c
	if sx < 1e-12 || math.Abs(det) < 1e-12 {
		return false
	}
	// [a c; b d] = rotate(theta) * scale(sx, sy) * shearX(k)
	theta := math.Atan2(b, a)
	sy := det / sx
	k := (math.Cos(theta)*c + math.Sin(theta)*d) / sx
	dc.Translate(e, f)
	dc.Rotate(theta)
	dc.Scale(sx, sy)
	dc.Shear(k, 0)
	return true
}

func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

func (r *Renderer) EncodePNG(w io.Writer) error {
	return r.context.EncodePNG(w)
}

func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}
