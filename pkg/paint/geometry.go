package paint

import "paintlayer/pkg/geom"

// geometryOf returns the layer's geometry, pulling it from the layout object
// when a geometry change left it dirty.
func (t *Tree) geometryOf(l *layer) Geometry {
	if l.geometry.dirty() {
		t.stats.Recomputes++
		l.geometry.set(l.object.LayerGeometry())
	}
	return l.geometry.get("geometry", l.id)
}

// Location returns the layer's position relative to its parent layer.
func (t *Tree) Location(id LayerID) geom.Point {
	return t.geometryOf(t.get(id)).Location
}

// Size returns the layer's size.
func (t *Tree) Size(id LayerID) geom.Size {
	return t.geometryOf(t.get(id)).Size
}

// Transform returns the layer's transform, or nil when it has none.
func (t *Tree) Transform(id LayerID) *geom.Transform {
	return t.transformOf(t.get(id))
}

// StaticPosition returns the static inline and block position hints.
func (t *Tree) StaticPosition(id LayerID) (inline, block float64) {
	g := t.geometryOf(t.get(id))
	return g.StaticInline, g.StaticBlock
}

func (t *Tree) transformOf(l *layer) *geom.Transform {
	if !l.style.HasTransform {
		return nil
	}
	return t.geometryOf(l).Transform
}

func (t *Tree) hasTransform(l *layer) bool {
	return t.transformOf(l) != nil
}

func (t *Tree) has3DTransform(l *layer) bool {
	tr := t.transformOf(l)
	return tr != nil && tr.Is3D()
}

// boxRect is the layer's border box in its own coordinate space.
func (t *Tree) boxRect(l *layer) geom.Rect {
	return geom.RectFrom(geom.Point{}, t.geometryOf(l).Size)
}

// offsetFromAncestor sums locations from id up to, but excluding, ancestor.
// Transforms on the way are ignored: callers rebase at transformed layers.
func (t *Tree) offsetFromAncestor(id, ancestor LayerID) geom.Point {
	var off geom.Point
	for cur := id; cur != ancestor; {
		l := t.get(cur)
		if l.parent.IsZero() {
			panic(usageError("layer %v is not a descendant of %v", id, ancestor))
		}
		off = off.Add(t.geometryOf(l).Location)
		cur = l.parent
	}
	return off
}

// isPositionedContainer reports whether l is the containing block of its
// absolutely positioned descendants.
func (t *Tree) isPositionedContainer(l *layer) bool {
	return l.isRoot || l.style.IsPositioned() || t.hasTransform(l)
}

// containingLayer returns the layer establishing id's containing block,
// clamped to within: fixed layers escape to the top, absolute layers to the
// nearest positioned container, everything else uses the parent.
func (t *Tree) containingLayer(id, within LayerID) LayerID {
	l := t.get(id)
	if id == within || l.parent.IsZero() {
		return LayerID{}
	}
	switch l.style.Position {
	case PositionFixed:
		cur := l.parent
		for cur != within {
			p := t.get(cur)
			if p.parent.IsZero() || t.hasTransform(p) {
				return cur
			}
			cur = p.parent
		}
		return within
	case PositionAbsolute:
		cur := l.parent
		for cur != within {
			p := t.get(cur)
			if p.parent.IsZero() || t.isPositionedContainer(p) {
				return cur
			}
			cur = p.parent
		}
		return within
	}
	return l.parent
}

// shouldBeSelfPainting decides whether the layer paints itself. Layers that
// exist only for overflow clipping are painted by their box in normal flow.
// Column content must paint itself: only its own layer knows the column
// translation.
func (t *Tree) shouldBeSelfPainting(l *layer) bool {
	return l.isRoot || l.style.StackingContext || l.style.IsPositioned() ||
		l.style.HasTransform || l.style.Scrollable || l.style.AcceleratedContent ||
		l.style.Multicol || l.style.Fragmented
}
