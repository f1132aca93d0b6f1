package layout

import (
	"slices"
	"strings"

	"paintlayer/pkg/css"
	"paintlayer/pkg/geom"
	"paintlayer/pkg/paint"
)

// Box is one element of a Document. Geometry is given, not computed: X and Y
// are the offset from the box's containing block, as a scene or script set
// them.
type Box struct {
	tag     string
	id      string
	classes []string
	inline  string

	// Text marks the box as having foreground content.
	Text string

	Style    *css.Style // Computed style
	Position css.PositionType

	X      float64
	Y      float64
	Width  float64
	Height float64

	Children []*Box
	Parent   *Box

	doc       *Document
	layer     paint.LayerID
	transform *geom.Transform
}

// NewBox returns a detached box. Insert it with Document.AppendChild.
func NewBox(tag, id string, classes ...string) *Box {
	return &Box{
		tag:     strings.ToLower(tag),
		id:      id,
		classes: classes,
		Style:   css.NewStyle(),
	}
}

func (b *Box) TagName() string           { return b.tag }
func (b *Box) ID() string                { return b.id }
func (b *Box) HasClass(name string) bool { return slices.Contains(b.classes, name) }
func (b *Box) InlineStyle() string       { return b.inline }

// Classes returns the box's class names.
func (b *Box) Classes() []string { return slices.Clone(b.classes) }

// SetInlineStyle replaces the style attribute of a detached box. Attached
// boxes go through Document.SetInlineStyle.
func (b *Box) SetInlineStyle(decls string) {
	b.inline = decls
}

// Layer returns the box's layer, or the zero LayerID.
func (b *Box) Layer() paint.LayerID { return b.layer }

// HasLayer reports whether the box currently owns a layer.
func (b *Box) HasLayer() bool { return !b.layer.IsZero() }

// Transform returns the resolved transform including its origin, or nil.
func (b *Box) Transform() *geom.Transform { return b.transform }

// DebugName describes the box the way selectors would name it.
func (b *Box) DebugName() string {
	if b == nil {
		return "<nil>"
	}
	var sb strings.Builder
	sb.WriteString(b.tag)
	if b.id != "" {
		sb.WriteString("#")
		sb.WriteString(b.id)
	}
	for _, c := range b.classes {
		sb.WriteString(".")
		sb.WriteString(c)
	}
	return sb.String()
}

// LayerGeometry places the box relative to the layer of its nearest layered
// ancestor.
func (b *Box) LayerGeometry() paint.Geometry {
	origin := b.AbsolutePosition()
	var parentOrigin, flowOrigin geom.Point
	if pl := enclosingLayerBox(b.Parent); pl != nil {
		parentOrigin = pl.AbsolutePosition()
		flowOrigin = b.Parent.AbsolutePosition().Sub(parentOrigin)
	}
	return paint.Geometry{
		Location:     origin.Sub(parentOrigin),
		Size:         geom.Size{Width: b.Width, Height: b.Height},
		Transform:    b.transform,
		StaticInline: flowOrigin.X,
		StaticBlock:  flowOrigin.Y,
	}
}

// LayerStyle converts the computed style into the flags a layer reads.
func (b *Box) LayerStyle() paint.StyleFlags {
	s := b.Style
	z, hasZ := s.GetZIndex()
	return paint.StyleFlags{
		Position:  positionScheme(b.Position),
		HasZIndex: hasZ && b.Position != css.PositionStatic,
		ZIndex:    z,

		StackingContext: CreatesStackingContext(b),

		Transparent:    s.GetOpacity() < 1,
		HasTransform:   b.transform != nil,
		Preserves3D:    s.PreservesThreeD(),
		BackfaceHidden: s.IsBackfaceHidden(),
		HasFilter:      s.HasFilter(),
		HasClipPath:    s.HasClipPath(),
		BlendMode:      blendMode(s.GetMixBlendMode()),
		Isolated:       s.IsIsolated(),

		OverflowClip: s.ClipsOverflow(),
		Scrollable:   s.IsScrollContainer(),
		Hidden:       s.IsVisibilityHidden(),

		Multicol:   s.GetColumnCount() > 0,
		Fragmented: b.Parent != nil && b.Parent.Style != nil && b.Parent.Style.GetColumnCount() > 0,

		WillChangeTransform: s.WillChange("transform"),
		WillChangeOpacity:   s.WillChange("opacity"),
		AcceleratedContent:  s.IsAcceleratedContent(),
		ActiveAnimation:     s.HasActiveAnimation(),
	}
}

func positionScheme(p css.PositionType) paint.PositionScheme {
	switch p {
	case css.PositionRelative:
		return paint.PositionRelative
	case css.PositionAbsolute:
		return paint.PositionAbsolute
	case css.PositionFixed:
		return paint.PositionFixed
	case css.PositionSticky:
		return paint.PositionSticky
	}
	return paint.PositionStatic
}

func blendMode(mode string) paint.BlendMode {
	switch mode {
	case "multiply":
		return paint.BlendMultiply
	case "screen":
		return paint.BlendScreen
	case "overlay":
		return paint.BlendOverlay
	case "darken":
		return paint.BlendDarken
	case "lighten":
		return paint.BlendLighten
	case "difference":
		return paint.BlendDifference
	case "normal", "":
		return paint.BlendNormal
	}
	// Unknown modes still need a transparency group.
	return paint.BlendMultiply
}

// PaintsBackground reports a visible background or border.
func (b *Box) PaintsBackground() bool {
	if b.Style.GetBackgroundColor().A > 0 {
		return true
	}
	e := b.Style.GetBorderWidth()
	return e.Top > 0 || e.Right > 0 || e.Bottom > 0 || e.Left > 0
}

// PaintsForeground reports text or replaced content.
func (b *Box) PaintsForeground() bool {
	return b.Text != "" || b.Style.IsAcceleratedContent()
}

func (b *Box) paintsSomething() bool {
	return !b.Style.IsVisibilityHidden() && (b.PaintsBackground() || b.PaintsForeground())
}

// PaintedBoxes calls fn, in paint order, for b and every descendant painted
// by b's layer: descendants with their own layer and their subtrees are
// skipped.
func (b *Box) PaintedBoxes(fn func(*Box)) {
	fn(b)
	for _, c := range b.Children {
		if !c.HasLayer() {
			c.PaintedBoxes(fn)
		}
	}
}

// HasVisibleContent reports whether anything painted by the box's layer is
// visible.
func (b *Box) HasVisibleContent() bool {
	visible := false
	b.PaintedBoxes(func(x *Box) {
		visible = visible || x.paintsSomething()
	})
	return visible
}

// HitTestContent reports whether content painted by b's layer covers local.
func (b *Box) HitTestContent(local geom.Point, phase paint.HitTestPhase) bool {
	return b.HitBox(local, phase) != nil
}

// HitBox returns the topmost box painted by b's layer whose content covers
// local, a point in b's coordinate space. The background phase covers only
// b's own background; descendants paint theirs above negative z-index
// layers, with the foreground.
func (b *Box) HitBox(local geom.Point, phase paint.HitTestPhase) *Box {
	origin := b.AbsolutePosition()
	var hit *Box
	b.PaintedBoxes(func(x *Box) {
		if x.Style.IsVisibilityHidden() {
			return
		}
		var paints bool
		switch {
		case phase == paint.HitTestBackground:
			paints = x == b && x.PaintsBackground()
		case x == b:
			paints = x.PaintsForeground()
		default:
			paints = x.PaintsBackground() || x.PaintsForeground()
		}
		if !paints {
			return
		}
		r := geom.RectFrom(x.AbsolutePosition().Sub(origin), geom.Size{Width: x.Width, Height: x.Height})
		if r.Contains(local) {
			// Later in paint order wins.
			hit = x
		}
	})
	return hit
}

// Pagination returns the column provider of a multi-column box, or nil.
func (b *Box) Pagination() paint.PaginationProvider {
	n := b.Style.GetColumnCount()
	if n == 0 {
		return nil
	}
	return NewMultiColumn(b.Width, b.Height, b.Style.GetColumnGap(), n)
}

// Walk visits b and its descendants in document order until fn returns
// false.
func (b *Box) Walk(fn func(*Box) bool) bool {
	if !fn(b) {
		return false
	}
	for _, c := range b.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
