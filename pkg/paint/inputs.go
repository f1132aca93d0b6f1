package paint

import (
	"image"

	"paintlayer/pkg/geom"
)

// AncestorDependentInputs are the compositing inputs that depend only on a
// layer and its ancestors.
type AncestorDependentInputs struct {
	// AbsoluteTransform maps the layer's local space to root space.
	AbsoluteTransform geom.Transform
	// AbsoluteClip is the clip applied to the layer by its containing
	// chain, in root space.
	AbsoluteClip geom.Rect
	// ClippedAbsoluteBoundingBox is the layer's box in root space after
	// AbsoluteClip.
	ClippedAbsoluteBoundingBox image.Rectangle

	OpacityAncestor           LayerID
	TransformAncestor         LayerID
	FilterAncestor            LayerID
	ClippingContainer         LayerID
	AncestorScrollingLayer    LayerID
	NearestFixedPositionLayer LayerID
	// ScrollParent is set for stacked layers whose scroller is not an
	// ancestor of their stacking context.
	ScrollParent LayerID
	// ClipParent is set for out-of-flow layers that escape a clip present
	// on their parent chain.
	ClipParent              LayerID
	HasAncestorWithClipPath bool
	// PaginationLayer is the nearest ancestor that fragments its content
	// into columns.
	PaginationLayer LayerID
}

// DescendantDependentInputs are folded up from a layer's descendants.
type DescendantDependentInputs struct {
	HasDescendantWithClipPath             bool
	HasNonIsolatedDescendantWithBlendMode bool
}

type inputsState struct {
	ancestor   cached[AncestorDependentInputs]
	descendant cached[DescendantDependentInputs]
	// childNeedsUpdate is set when some descendant's descendant-dependent
	// inputs are dirty.
	childNeedsUpdate bool
	// pending is set while the layer is queued on Tree.pendingInputs.
	pending bool
}

// SetNeedsCompositingInputsUpdate invalidates both input groups of id. The
// ancestor-dependent group is pushed to the whole subtree, stopping at
// subtrees that are already dirty; the descendant-dependent group is marked
// on id and summarised up the ancestor chain.
func (t *Tree) SetNeedsCompositingInputsUpdate(id LayerID) {
	t.invalidateAncestorDependentInputs(id)
	t.markDescendantDependentDirty(id)
}

// NeedsCompositingInputsUpdate reports whether either input group of id is
// stale.
func (t *Tree) NeedsCompositingInputsUpdate(id LayerID) bool {
	l := t.get(id)
	return l.inputs.ancestor.dirty() || l.inputs.descendant.dirty()
}

// ChildNeedsCompositingInputsUpdate reports whether a descendant of id has
// stale descendant-dependent inputs.
func (t *Tree) ChildNeedsCompositingInputsUpdate(id LayerID) bool {
	return t.get(id).inputs.childNeedsUpdate
}

func (t *Tree) invalidateAncestorDependentInputs(id LayerID) {
	t.invalidateLifecycle()
	t.markAncestorDependentSubtree(id)
	l := t.get(id)
	if !l.inputs.pending {
		l.inputs.pending = true
		t.pendingInputs = append(t.pendingInputs, id)
	}
}

// markAncestorDependentSubtree dirties id and its descendants. A dirty layer
// always has a dirty subtree, so an already dirty layer ends the walk.
func (t *Tree) markAncestorDependentSubtree(id LayerID) {
	l := t.get(id)
	if !l.inputs.ancestor.markDirty() {
		return
	}
	t.stats.DirtyMarks++
	for c := l.first; !c.IsZero(); c = t.get(c).next {
		t.markAncestorDependentSubtree(c)
	}
}

func (t *Tree) markDescendantDependentDirty(id LayerID) {
	t.invalidateLifecycle()
	l := t.get(id)
	if l.inputs.descendant.markDirty() {
		t.stats.DirtyMarks++
	}
	for p := l.parent; !p.IsZero(); {
		pl := t.get(p)
		if pl.inputs.childNeedsUpdate {
			break
		}
		pl.inputs.childNeedsUpdate = true
		t.stats.DirtyMarks++
		p = pl.parent
	}
}

// AncestorDependentInputs returns id's ancestor-dependent inputs,
// recomputing the stale part of its ancestor chain first. id must be
// attached to the root.
func (t *Tree) AncestorDependentInputs(id LayerID) AncestorDependentInputs {
	l := t.get(id)
	if l.inputs.ancestor.dirty() {
		t.updateAncestorDependentInputs(l)
	}
	return l.inputs.ancestor.get("ancestor-dependent inputs", id)
}

// ancestorInputs is AncestorDependentInputs for internal callers holding a
// layer pointer. The result is only read, never retained.
func (t *Tree) ancestorInputs(l *layer) *AncestorDependentInputs {
	if l.inputs.ancestor.dirty() {
		t.updateAncestorDependentInputs(l)
	}
	return &l.inputs.ancestor.value
}

func (t *Tree) updateAncestorDependentInputs(l *layer) {
	if !l.isRoot && l.parent.IsZero() {
		panic(usageError("compositing inputs of detached layer %v", l.id))
	}
	t.stats.Recomputes++

	local := geom.Translate(t.geometryOf(l).Location.X, t.geometryOf(l).Location.Y, 0)
	if tr := t.transformOf(l); tr != nil {
		local = local.Multiply(*tr)
	}

	var in AncestorDependentInputs
	if l.isRoot {
		in.AbsoluteTransform = local
		in.AbsoluteClip = geom.InfiniteRect()
		in.ClippedAbsoluteBoundingBox = local.MapRect(t.boxRect(l)).Enclosing()
		if l.style.Position == PositionFixed {
			in.NearestFixedPositionLayer = l.id
		}
		l.inputs.ancestor.set(in)
		return
	}

	parent := t.get(l.parent)
	pin := t.ancestorInputs(parent)
	ps := parent.style

	in.OpacityAncestor = pin.OpacityAncestor
	if ps.IsTransparent() {
		in.OpacityAncestor = parent.id
	}
	in.TransformAncestor = pin.TransformAncestor
	if t.hasTransform(parent) {
		in.TransformAncestor = parent.id
	}
	in.FilterAncestor = pin.FilterAncestor
	if ps.HasFilter {
		in.FilterAncestor = parent.id
	}
	in.NearestFixedPositionLayer = pin.NearestFixedPositionLayer
	if l.style.Position == PositionFixed {
		in.NearestFixedPositionLayer = l.id
	}
	in.HasAncestorWithClipPath = pin.HasAncestorWithClipPath || ps.HasClipPath
	in.PaginationLayer = pin.PaginationLayer
	if p, ok := parent.object.(Paginated); ok && p.Pagination() != nil {
		in.PaginationLayer = parent.id
	}

	// Clipping and scrolling follow the containing block chain, which skips
	// ancestors an out-of-flow layer escapes.
	cb := t.get(t.containingLayer(l.id, t.root))
	cbin := pin
	if cb != parent {
		cbin = t.ancestorInputs(cb)
	}
	in.ClippingContainer = cbin.ClippingContainer
	if cb.style.HasClipRelatedProperty() {
		in.ClippingContainer = cb.id
	}
	in.AncestorScrollingLayer = cbin.AncestorScrollingLayer
	if cb.style.Scrollable {
		in.AncestorScrollingLayer = cb.id
	}
	in.AbsoluteClip = cbin.AbsoluteClip
	if cb.style.OverflowClip {
		in.AbsoluteClip = in.AbsoluteClip.Intersect(cbin.AbsoluteTransform.MapRect(t.boxRect(cb)))
	}

	if scroller := in.AncestorScrollingLayer; l.isStacked() && !scroller.IsZero() {
		sc := t.enclosingStackingContext(l.id)
		if sc != scroller && !t.isAncestorOf(scroller, sc) {
			in.ScrollParent = scroller
		}
	}
	if l.style.IsOutOfFlow() {
		if clipper := t.parentChainClipper(l); !clipper.IsZero() && clipper != in.ClippingContainer {
			in.ClipParent = in.ClippingContainer
			if in.ClipParent.IsZero() {
				in.ClipParent = t.root
			}
		}
	}

	in.AbsoluteTransform = pin.AbsoluteTransform.Multiply(local)
	in.ClippedAbsoluteBoundingBox = in.AbsoluteTransform.MapRect(t.boxRect(l)).Intersect(in.AbsoluteClip).Enclosing()
	l.inputs.ancestor.set(in)
}

// parentChainClipper returns the nearest ancestor with a clip, ignoring
// containing blocks.
func (t *Tree) parentChainClipper(l *layer) LayerID {
	for p := l.parent; !p.IsZero(); {
		pl := t.get(p)
		if pl.style.HasClipRelatedProperty() {
			return p
		}
		p = pl.parent
	}
	return LayerID{}
}

// DescendantDependentInputs returns id's descendant-dependent inputs,
// folding in the stale part of its subtree first.
func (t *Tree) DescendantDependentInputs(id LayerID) DescendantDependentInputs {
	l := t.get(id)
	if l.inputs.descendant.dirty() || l.inputs.childNeedsUpdate {
		t.updateDescendantDependentInputs(l)
	}
	return l.inputs.descendant.get("descendant-dependent inputs", id)
}

func (t *Tree) updateDescendantDependentInputs(l *layer) {
	t.stats.Recomputes++
	var d DescendantDependentInputs
	for c := l.first; !c.IsZero(); c = t.get(c).next {
		cl := t.get(c)
		cd := t.DescendantDependentInputs(c)
		if cl.style.HasClipPath || cd.HasDescendantWithClipPath {
			d.HasDescendantWithClipPath = true
		}
		// A stacking context isolates the blending of its own descendants.
		if cl.style.BlendMode != BlendNormal ||
			(!cl.isStackingContext() && cd.HasNonIsolatedDescendantWithBlendMode) {
			d.HasNonIsolatedDescendantWithBlendMode = true
		}
	}
	l.inputs.descendant.set(d)
	l.inputs.childNeedsUpdate = false
}

// UpdateCompositingInputs brings every compositing input of the attached
// tree up to date. Work is proportional to the subtrees invalidated since
// the previous call.
func (t *Tree) UpdateCompositingInputs() {
	pending := t.pendingInputs
	t.pendingInputs = t.pendingInputs[:0]
	for _, id := range pending {
		if !t.Contains(id) {
			continue
		}
		t.get(id).inputs.pending = false
		if t.attachedToRoot(id) {
			t.updateAncestorSubtree(id)
		}
	}
	t.DescendantDependentInputs(t.root)
	if t.lifecycle == LifecycleDirty {
		t.lifecycle = LifecycleInputsClean
	}
}

// updateAncestorSubtree cleans every dirty layer under id. Layers already
// pulled clean are still descended into: their children may be stale.
func (t *Tree) updateAncestorSubtree(id LayerID) {
	l := t.get(id)
	if l.inputs.ancestor.dirty() {
		t.updateAncestorDependentInputs(l)
	}
	for c := l.first; !c.IsZero(); c = t.get(c).next {
		t.updateAncestorSubtree(c)
	}
}
