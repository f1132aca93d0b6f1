package layout

import (
	"paintlayer/pkg/css"
	"paintlayer/pkg/geom"
)

// FindContainingBlock finds the box that X and Y are relative to.
// For absolute positioned elements: nearest positioned or transformed ancestor
// For relative/static: parent box
// For fixed: nearest transformed ancestor, else the root (the viewport)
func (b *Box) FindContainingBlock() *Box {
	switch b.Position {
	case css.PositionAbsolute:
		return b.findAncestor(func(a *Box) bool { return a.IsPositioned() || a.transform != nil })

	case css.PositionFixed:
		return b.findAncestor(func(a *Box) bool { return a.transform != nil })

	default:
		return b.Parent
	}
}

// findAncestor returns the nearest ancestor matching pred. The root, as the
// initial containing block, always matches.
func (b *Box) findAncestor(pred func(*Box) bool) *Box {
	for current := b.Parent; current != nil; current = current.Parent {
		if current.Parent == nil || pred(current) {
			return current
		}
	}
	return nil
}

// IsPositioned returns true if the box has position != static
func (b *Box) IsPositioned() bool {
	return b.Position != css.PositionStatic
}

// AbsolutePosition returns the untransformed border box origin in document
// coordinates.
func (b *Box) AbsolutePosition() geom.Point {
	p := geom.Pt(b.X, b.Y)
	if b.Parent == nil {
		return p
	}
	if cb := b.FindContainingBlock(); cb != nil {
		p = p.Add(cb.AbsolutePosition())
	}
	return p
}
