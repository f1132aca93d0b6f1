package paint

import "paintlayer/pkg/geom"

// PositionScheme mirrors the CSS position property.
type PositionScheme uint8

const (
	PositionStatic PositionScheme = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
	PositionSticky
)

func (p PositionScheme) String() string {
	switch p {
	case PositionRelative:
		return "relative"
	case PositionAbsolute:
		return "absolute"
	case PositionFixed:
		return "fixed"
	case PositionSticky:
		return "sticky"
	}
	return "static"
}

// BlendMode mirrors mix-blend-mode. Only normal vs. non-normal matters to
// the layer tree.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendDifference
)

// StyleFlags are the already-resolved style bits a layer consumes. The zero
// value is an opaque, visible, statically positioned box with z-index auto.
type StyleFlags struct {
	Position PositionScheme

	// HasZIndex is false for z-index: auto.
	HasZIndex bool
	ZIndex    int

	// StackingContext is decided by style resolution, not by the layer tree.
	StackingContext bool

	Transparent    bool // opacity < 1
	HasTransform   bool
	Preserves3D    bool
	BackfaceHidden bool
	HasFilter      bool
	HasClipPath    bool
	BlendMode      BlendMode
	Isolated       bool

	OverflowClip bool
	Scrollable   bool
	Hidden       bool // visibility: hidden

	// Multicol marks a multi-column container. Fragmented marks a box laid
	// out in the flow thread of one; its layer paints once per column.
	Multicol   bool
	Fragmented bool

	WillChangeTransform bool
	WillChangeOpacity   bool
	AcceleratedContent  bool // video, canvas, plugin
	ActiveAnimation     bool
}

// IsPositioned reports whether the box is not statically positioned.
func (s StyleFlags) IsPositioned() bool {
	return s.Position != PositionStatic
}

// IsOutOfFlow reports absolute or fixed positioning.
func (s StyleFlags) IsOutOfFlow() bool {
	return s.Position == PositionAbsolute || s.Position == PositionFixed
}

// IsTransparent covers opacity and blending, both of which need a
// transparency group.
func (s StyleFlags) IsTransparent() bool {
	return s.Transparent || s.BlendMode != BlendNormal
}

// HasClipRelatedProperty reports whether the box clips its descendants.
func (s StyleFlags) HasClipRelatedProperty() bool {
	return s.OverflowClip || s.HasClipPath
}

// effectiveZIndex treats auto as 0.
func (s StyleFlags) effectiveZIndex() int {
	if !s.HasZIndex {
		return 0
	}
	return s.ZIndex
}

// isStacked reports whether the layer takes part in z-ordering of its
// stacking context rather than painting as plain normal flow.
func (s StyleFlags) isStacked() bool {
	return s.StackingContext || s.IsPositioned()
}

// Geometry is the box geometry a layer reads from its layout object.
type Geometry struct {
	// Location is relative to the parent layer's origin.
	Location geom.Point
	Size     geom.Size
	// Transform includes the transform origin. Nil means no transform.
	Transform *geom.Transform

	StaticInline float64
	StaticBlock  float64
}

// HitTestPhase selects which part of a layer's own content is tested.
type HitTestPhase uint8

const (
	// HitTestForeground covers content painted above negative z-index
	// children (text, replaced content).
	HitTestForeground HitTestPhase = iota
	// HitTestBackground covers backgrounds and borders, which negative
	// z-index children paint on top of.
	HitTestBackground
)

func (p HitTestPhase) String() string {
	if p == HitTestForeground {
		return "foreground"
	}
	return "background"
}

// LayoutObject is the box a layer is created for. The box owns the layer;
// the layer keeps only this non-owning back-reference.
type LayoutObject interface {
	LayerGeometry() Geometry
	LayerStyle() StyleFlags
	// HitTestContent reports whether the object's own content covers local,
	// given in the layer's coordinate space.
	HitTestContent(local geom.Point, phase HitTestPhase) bool
	DebugName() string
}

// Paginated is implemented by layout objects that fragment their content
// into columns or pages.
type Paginated interface {
	Pagination() PaginationProvider
}

// ColumnFragment is one column or page of a fragmentation context.
type ColumnFragment struct {
	// FlowThreadPortion is the slice of the flow thread shown by the column.
	FlowThreadPortion geom.Rect
	// Translation maps flow thread coordinates to visual coordinates,
	// relative to the pagination layer.
	Translation geom.Point
}

// PaginationProvider supplies column or page geometry.
type PaginationProvider interface {
	// FragmentsForRect returns, in flow order, the fragments whose portion
	// intersects flowRect.
	FragmentsForRect(flowRect geom.Rect) []ColumnFragment
}
