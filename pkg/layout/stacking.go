package layout

import (
	"paintlayer/pkg/css"
)

// CreatesStackingContext returns true if the box creates a new stacking
// context.
func CreatesStackingContext(box *Box) bool {
	if box == nil || box.Style == nil {
		return false
	}
	if box.Parent == nil {
		return true
	}
	s := box.Style

	switch box.Position {
	case css.PositionFixed, css.PositionSticky:
		return true
	case css.PositionAbsolute, css.PositionRelative:
		// Positioned elements with z-index != auto create a stacking context
		if _, ok := s.GetZIndex(); ok {
			return true
		}
	}

	// Elements with opacity < 1 create a stacking context
	if s.GetOpacity() < 1 {
		return true
	}

	if box.transform != nil || s.PreservesThreeD() {
		return true
	}
	if s.HasFilter() || s.HasClipPath() || s.IsIsolated() || s.GetMixBlendMode() != "normal" {
		return true
	}
	for _, p := range s.GetWillChange() {
		switch p {
		case "transform", "opacity", "filter", "isolation":
			return true
		}
	}
	return false
}

// RequiresLayer reports whether the box gets its own paint layer: anything
// that creates a stacking context, is positioned, clips overflow, fragments
// into columns or is composited directly.
func RequiresLayer(box *Box) bool {
	if box == nil || box.Style == nil {
		return false
	}
	if box.Parent == nil || IsPositioned(box) || CreatesStackingContext(box) {
		return true
	}
	// Children of a column container fragment through their own layers.
	if box.Parent.Style.GetColumnCount() > 0 {
		return true
	}
	s := box.Style
	return s.ClipsOverflow() ||
		s.GetColumnCount() > 0 ||
		s.IsAcceleratedContent() ||
		s.HasActiveAnimation() ||
		s.IsBackfaceHidden()
}

// IsPositioned returns true if the box has position other than static.
func IsPositioned(box *Box) bool {
	if box == nil {
		return false
	}
	return box.Position != css.PositionStatic
}

// enclosingLayerBox returns box itself or its nearest ancestor that owns a
// layer.
func enclosingLayerBox(box *Box) *Box {
	for cur := box; cur != nil; cur = cur.Parent {
		if cur.HasLayer() {
			return cur
		}
	}
	return nil
}

// topLayerBoxes returns, in document order, the nearest layered descendants
// of box, not descending into them.
func topLayerBoxes(box *Box) []*Box {
	var out []*Box
	var walk func(*Box)
	walk = func(b *Box) {
		for _, c := range b.Children {
			if c.HasLayer() {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(box)
	return out
}

// firstLayerBox returns box if it has a layer, else the first layered box
// in its subtree that is not nested in another layered box.
func firstLayerBox(box *Box) *Box {
	if box.HasLayer() {
		return box
	}
	for _, c := range box.Children {
		if found := firstLayerBox(c); found != nil {
			return found
		}
	}
	return nil
}

// layerAfter returns the first layered box after box's subtree, in document
// order, whose layer is a child of container's layer. It is the insertion
// point that keeps a layer's children in document order.
func layerAfter(box, container *Box) *Box {
	for cur := box; cur != nil && cur != container; cur = cur.Parent {
		if cur.Parent == nil {
			return nil
		}
		siblings := cur.Parent.Children
		i := indexOf(siblings, cur)
		for _, s := range siblings[i+1:] {
			if found := firstLayerBox(s); found != nil {
				return found
			}
		}
	}
	return nil
}

func indexOf(boxes []*Box, b *Box) int {
	for i, x := range boxes {
		if x == b {
			return i
		}
	}
	return -1
}
