package paint

// aggregateState holds the derived booleans folded up from descendants.
// Each is a dirty bit plus a value, recomputed on first read.
//
// For the visible and self-painting aggregates, a dirty layer always has
// dirty ancestors: recomputation folds every child, so cleaning a layer
// cleans every dirty layer below it on the way. That is what lets the
// ancestor-chain marking stop at the first already-dirty layer.
type aggregateState struct {
	visibleContent         cached[bool]
	visibleDescendant      cached[bool]
	selfPaintingDescendant cached[bool]
	has3DDescendant        cached[bool]
}

// ContentVisibility may be implemented by layout objects whose visible
// content depends on more than the visibility property.
type ContentVisibility interface {
	HasVisibleContent() bool
}

// HasVisibleContent reports whether the layer's own box paints anything
// visible.
func (t *Tree) HasVisibleContent(id LayerID) bool {
	l := t.get(id)
	if l.flags.visibleContent.dirty() {
		t.stats.Recomputes++
		visible := !l.object.LayerStyle().Hidden
		if cv, ok := l.object.(ContentVisibility); ok {
			visible = cv.HasVisibleContent()
		}
		l.flags.visibleContent.set(visible)
	}
	return l.flags.visibleContent.get("visible content status", id)
}

// HasVisibleDescendant reports whether any descendant layer has visible
// content.
func (t *Tree) HasVisibleDescendant(id LayerID) bool {
	l := t.get(id)
	if l.flags.visibleDescendant.dirty() {
		t.stats.Recomputes++
		visible := false
		for c := l.first; !c.IsZero(); c = t.get(c).next {
			// No early exit: every dirty child must be cleaned.
			if t.HasVisibleContent(c) {
				visible = true
			}
			if t.HasVisibleDescendant(c) {
				visible = true
			}
		}
		l.flags.visibleDescendant.set(visible)
	}
	return l.flags.visibleDescendant.get("visible descendant status", id)
}

// HasSelfPaintingLayerDescendant reports whether any descendant layer is
// self-painting.
func (t *Tree) HasSelfPaintingLayerDescendant(id LayerID) bool {
	l := t.get(id)
	if l.flags.selfPaintingDescendant.dirty() {
		t.stats.Recomputes++
		has := false
		for c := l.first; !c.IsZero(); c = t.get(c).next {
			cl := t.get(c)
			if t.HasSelfPaintingLayerDescendant(c) || cl.selfPainting {
				has = true
			}
		}
		l.flags.selfPaintingDescendant.set(has)
	}
	return l.flags.selfPaintingDescendant.get("self-painting descendant status", id)
}

// Has3DTransformedDescendant reports whether a layer in this stacking
// context's z-order lists has a 3D transform, looking through descendants
// that preserve 3D. It is always false for layers that are not stacking
// contexts.
func (t *Tree) Has3DTransformedDescendant(id LayerID) bool {
	l := t.get(id)
	if l.flags.has3DDescendant.dirty() {
		t.stats.Recomputes++
		has := false
		if l.isStackingContext() {
			z := t.zOrderLists(l)
			for _, list := range [...][]LayerID{z.negative, z.normalFlow, z.positive} {
				for _, c := range list {
					cl := t.get(c)
					if t.has3DTransform(cl) {
						has = true
					}
					if cl.style.Preserves3D && t.Has3DTransformedDescendant(c) {
						has = true
					}
				}
			}
		}
		l.flags.has3DDescendant.set(has)
	}
	return l.flags.has3DDescendant.get("3D transformed descendant status", id)
}

// DirtyVisibleContentStatus is called when the visibility of the layer's own
// content may have changed.
func (t *Tree) DirtyVisibleContentStatus(id LayerID) {
	l := t.get(id)
	t.invalidateLifecycle()
	if l.flags.visibleContent.markDirty() {
		t.stats.DirtyMarks++
	}
	t.dirtyAncestorChainVisibleDescendantStatus(l.parent)
}

func (t *Tree) dirtyAncestorChainVisibleDescendantStatus(from LayerID) {
	for cur := from; !cur.IsZero(); {
		l := t.get(cur)
		if !l.flags.visibleDescendant.markDirty() {
			break
		}
		t.stats.DirtyMarks++
		cur = l.parent
	}
}

func (t *Tree) dirtyAncestorChainHasSelfPaintingLayerDescendantStatus(from LayerID) {
	for cur := from; !cur.IsZero(); {
		l := t.get(cur)
		if !l.flags.selfPaintingDescendant.markDirty() {
			break
		}
		t.stats.DirtyMarks++
		cur = l.parent
	}
}

// dirty3DTransformedDescendantStatus marks every ancestor of id. The 3D
// fold only looks through preserve-3d layers, so a clean ancestor may sit
// above a dirty one and the walk cannot stop early.
func (t *Tree) dirty3DTransformedDescendantStatus(id LayerID) {
	for cur := t.get(id).parent; !cur.IsZero(); {
		l := t.get(cur)
		if l.flags.has3DDescendant.markDirty() {
			t.stats.DirtyMarks++
		}
		cur = l.parent
	}
}

// updateSelfPaintingLayer re-evaluates the self-painting bit after a style
// change.
func (t *Tree) updateSelfPaintingLayer(l *layer) {
	sp := t.shouldBeSelfPainting(l)
	if sp == l.selfPainting {
		return
	}
	l.selfPainting = sp
	t.dirtyAncestorChainHasSelfPaintingLayerDescendantStatus(l.parent)
}
