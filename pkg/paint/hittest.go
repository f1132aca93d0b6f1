package paint

import (
	"go.uber.org/zap"

	"paintlayer/pkg/geom"
)

// HitTestResult describes the topmost content under a point.
type HitTestResult struct {
	Layer  LayerID
	Object LayoutObject
	// Local is the point in the hit layer's coordinate space.
	Local geom.Point
	Phase HitTestPhase
}

// hitCandidate carries the depth used to order hits inside a 3D rendering
// context, in the coordinate space of the layer being tested.
type hitCandidate struct {
	result HitTestResult
	z      float64
}

// HitTest returns the frontmost layer content at p, given in root layer
// coordinates.
func (t *Tree) HitTest(p geom.Point) (HitTestResult, bool) {
	return t.HitTestLayer(t.root, p)
}

// HitTestLayer hit tests the subtree of root, with p in root's coordinate
// space. The walk mirrors paint order: positive z-order layers first, then
// normal flow, the layer's own foreground, negative z-order layers and
// finally the layer's own background.
func (t *Tree) HitTestLayer(root LayerID, p geom.Point) (HitTestResult, bool) {
	c, ok := t.hitTestLayer(root, root, p)
	return c.result, ok
}

func (t *Tree) hitTestLayer(root, id LayerID, p geom.Point) (hitCandidate, bool) {
	l := t.get(id)
	if !l.selfPainting {
		// Its box is hit tested as part of an ancestor's content.
		return hitCandidate{}, false
	}
	if !t.HasVisibleContent(id) && !t.HasVisibleDescendant(id) {
		return hitCandidate{}, false
	}
	if id != root && t.hasTransform(l) {
		return t.hitTestTransformedLayer(root, l, p)
	}

	var buf [1]Fragment
	frags := t.CollectFragments(buf[:0], root, id, geom.InfiniteRect())

	var best hitCandidate
	found := false
	// depthSort makes the frontmost z win instead of the first hit in paint
	// order. On ties the earlier candidate in hit-test order stays.
	depthSort := l.isStackingContext() && l.style.Preserves3D && t.Has3DTransformedDescendant(id)
	offer := func(c hitCandidate) (done bool) {
		if !depthSort {
			best, found = c, true
			return true
		}
		if !found || c.z > best.z {
			best, found = c, true
		}
		return false
	}
	testList := func(list []LayerID) bool {
		for i := len(list) - 1; i >= 0; i-- {
			if c, ok := t.hitTestLayer(root, list[i], p); ok && offer(c) {
				return true
			}
		}
		return false
	}

	descend := l.isStackingContext() && t.HasSelfPaintingLayerDescendant(id)
	var z *zOrderLists
	if descend {
		z = t.zOrderLists(l)
		if testList(z.positive) || testList(z.normalFlow) {
			return best, found
		}
	}
	if c, ok := t.hitTestContent(l, frags, p, HitTestForeground); ok && offer(c) {
		return best, found
	}
	if descend && testList(z.negative) {
		return best, found
	}
	if c, ok := t.hitTestContent(l, frags, p, HitTestBackground); ok && offer(c) {
		return best, found
	}
	return best, found
}

func (t *Tree) hitTestContent(l *layer, frags []Fragment, p geom.Point, phase HitTestPhase) (hitCandidate, bool) {
	if !t.HasVisibleContent(l.id) {
		return hitCandidate{}, false
	}
	for _, f := range frags {
		clip := f.BackgroundRect
		if phase == HitTestForeground {
			clip = f.ForegroundRect
		}
		if !clip.Contains(p) {
			continue
		}
		local := p.Sub(f.LayerBounds.Origin())
		if l.object.HitTestContent(local, phase) {
			return hitCandidate{result: HitTestResult{Layer: l.id, Object: l.object, Local: local, Phase: phase}}, true
		}
	}
	return hitCandidate{}, false
}

// hitTestTransformedLayer maps p into l's local space and tests l as a new
// root. The returned depth is mapped back into the parent's space; a layer
// that flattens reports its plane at z=0 in its own space.
func (t *Tree) hitTestTransformedLayer(root LayerID, l *layer, p geom.Point) (hitCandidate, bool) {
	tr := t.transformOf(l)
	if !tr.IsInvertible() {
		logger().Warn("skipping non-invertible transform in hit test", zap.Stringer("layer", l.id))
		return hitCandidate{}, false
	}
	var buf [1]Fragment
	for _, f := range t.CollectFragments(buf[:0], root, l.id, geom.InfiniteRect()) {
		if !f.BackgroundRect.Contains(p) {
			continue
		}
		m := geom.Translate(f.LayerBounds.X, f.LayerBounds.Y, 0).Multiply(*tr)
		if l.style.BackfaceHidden && m.IsBackFaceVisible() {
			continue
		}
		local, ok := m.ProjectPoint(p)
		if !ok {
			continue
		}
		c, ok := t.hitTestLayer(l.id, l.id, local)
		if !ok {
			continue
		}
		z := 0.0
		if l.style.Preserves3D {
			z = c.z
		}
		_, _, c.z = m.MapPoint3(local.X, local.Y, z)
		return c, true
	}
	return hitCandidate{}, false
}
