package paint

import "go.uber.org/zap"

// StyleChanged re-reads id's style from its layout object and invalidates
// whatever depends on the properties that changed.
func (t *Tree) StyleChanged(id LayerID) {
	l := t.get(id)
	old := l.style
	s := l.object.LayerStyle()
	if s == old {
		return
	}
	l.style = s
	t.invalidateLifecycle()
	t.clipGeneration++
	logger().Debug("style changed", zap.Stringer("layer", id), zap.String("object", l.object.DebugName()))

	wasContext := l.isRoot || old.StackingContext
	if wasContext != l.isStackingContext() {
		// The layer's own lists are rebuilt when it becomes a context again.
		if l.stacking.lists.markDirty() {
			t.stats.DirtyMarks++
		}
		if l.flags.has3DDescendant.markDirty() {
			t.stats.DirtyMarks++
		}
	}
	if wasContext != l.isStackingContext() || old.isStacked() != s.isStacked() ||
		old.effectiveZIndex() != s.effectiveZIndex() {
		t.dirtyZOrderListsFor(id)
	}
	if old.HasTransform != s.HasTransform || old.Preserves3D != s.Preserves3D ||
		wasContext != l.isStackingContext() {
		l.geometry.markDirty()
		t.dirty3DTransformedDescendantStatus(id)
	}
	if old.Hidden != s.Hidden {
		t.DirtyVisibleContentStatus(id)
	}
	t.updateSelfPaintingLayer(l)

	// Everything below reads ancestor inputs of the subtree: opacity,
	// transform and filter ancestors, clipping, scrolling and positioning.
	if old.IsTransparent() != s.IsTransparent() || old.HasTransform != s.HasTransform ||
		old.HasFilter != s.HasFilter || old.HasClipRelatedProperty() != s.HasClipRelatedProperty() ||
		old.OverflowClip != s.OverflowClip || old.Scrollable != s.Scrollable ||
		old.Position != s.Position || old.Multicol != s.Multicol ||
		wasContext != l.isStackingContext() {
		t.invalidateAncestorDependentInputs(id)
	}
	if old.HasClipPath != s.HasClipPath || old.BlendMode != s.BlendMode ||
		wasContext != l.isStackingContext() {
		t.markDescendantDependentDirty(id)
	}
	t.SetNeedsRepaint(id)
}

// GeometryChanged tells the tree that id's location, size or transform
// changed. The new geometry is read lazily.
func (t *Tree) GeometryChanged(id LayerID) {
	l := t.get(id)
	t.invalidateLifecycle()
	t.clipGeneration++
	if l.geometry.markDirty() {
		t.stats.DirtyMarks++
	}
	if l.style.HasTransform {
		t.dirty3DTransformedDescendantStatus(id)
	}
	t.invalidateAncestorDependentInputs(id)
	t.SetNeedsRepaint(id)
}
