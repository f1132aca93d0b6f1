package paint

import (
	"cmp"
	"slices"

	"go.uber.org/zap"
)

// zOrderLists partitions a stacking context's stacked descendants. Layers
// inside nested stacking contexts belong to those contexts instead.
type zOrderLists struct {
	negative   []LayerID // z < 0, ascending, stable in document order
	normalFlow []LayerID // z auto or 0, document order
	positive   []LayerID // z > 0, ascending, stable in document order
}

type stackingState struct {
	lists cached[zOrderLists]
}

// EnclosingStackingContext returns the nearest strict ancestor that is a
// stacking context, or zero for the root.
func (t *Tree) EnclosingStackingContext(id LayerID) LayerID {
	return t.enclosingStackingContext(id)
}

func (t *Tree) enclosingStackingContext(id LayerID) LayerID {
	for p := t.get(id).parent; !p.IsZero(); {
		pl := t.get(p)
		if pl.isStackingContext() {
			return p
		}
		p = pl.parent
	}
	return LayerID{}
}

// NegativeZOrderList returns the stacked layers of the stacking context id
// with a negative z-index, in paint order.
func (t *Tree) NegativeZOrderList(id LayerID) []LayerID {
	return slices.Clone(t.zOrderLists(t.get(id)).negative)
}

// NormalFlowList returns the layers of the stacking context id painted
// between its negative and positive lists, in document order.
func (t *Tree) NormalFlowList(id LayerID) []LayerID {
	return slices.Clone(t.zOrderLists(t.get(id)).normalFlow)
}

// PositiveZOrderList returns the stacked layers of the stacking context id
// with a positive z-index, in paint order.
func (t *Tree) PositiveZOrderList(id LayerID) []LayerID {
	return slices.Clone(t.zOrderLists(t.get(id)).positive)
}

// zOrderLists returns the current lists of l, rebuilding them if dirty. The
// slices are owned by the tree and are only valid until the next mutation.
func (t *Tree) zOrderLists(l *layer) *zOrderLists {
	if !l.isStackingContext() {
		panic(usageError("z-order lists requested for %v, which is not a stacking context", l.id))
	}
	if l.stacking.lists.dirty() {
		t.rebuildZOrderLists(l)
	}
	return &l.stacking.lists.value
}

func (t *Tree) rebuildZOrderLists(l *layer) {
	t.stats.StackingRebuilds++
	// Reuse the previous backing arrays.
	z := l.stacking.lists.value
	z.negative = z.negative[:0]
	z.normalFlow = z.normalFlow[:0]
	z.positive = z.positive[:0]
	for c := l.first; !c.IsZero(); c = t.get(c).next {
		t.collectLayers(c, &z)
	}
	byZ := func(a, b LayerID) int {
		return cmp.Compare(t.get(a).style.effectiveZIndex(), t.get(b).style.effectiveZIndex())
	}
	slices.SortStableFunc(z.negative, byZ)
	slices.SortStableFunc(z.positive, byZ)
	l.stacking.lists.set(z)
	logger().Debug("rebuilt z-order lists",
		zap.Stringer("layer", l.id),
		zap.Int("negative", len(z.negative)),
		zap.Int("normal", len(z.normalFlow)),
		zap.Int("positive", len(z.positive)))
}

// collectLayers files id into z and recurses into it unless it is a
// stacking context of its own.
func (t *Tree) collectLayers(id LayerID, z *zOrderLists) {
	l := t.get(id)
	zi := l.style.effectiveZIndex()
	switch {
	case l.isStacked() && zi < 0:
		z.negative = append(z.negative, id)
	case l.isStacked() && zi > 0:
		z.positive = append(z.positive, id)
	default:
		z.normalFlow = append(z.normalFlow, id)
	}
	if l.isStackingContext() {
		return
	}
	for c := l.first; !c.IsZero(); c = t.get(c).next {
		t.collectLayers(c, z)
	}
}

// dirtyZOrderListsFor dirties the lists of the stacking context that id
// belongs to.
func (t *Tree) dirtyZOrderListsFor(id LayerID) {
	sc := t.enclosingStackingContext(id)
	if sc.IsZero() {
		return
	}
	scl := t.get(sc)
	if scl.stacking.lists.markDirty() {
		t.stats.DirtyMarks++
	}
	// The 3D status folds over the lists.
	if scl.flags.has3DDescendant.markDirty() {
		t.stats.DirtyMarks++
	}
}

// CompositingContainer returns the layer id paints into when it is not
// composited: its parent for layers in normal flow, otherwise the enclosing
// stacking context.
func (t *Tree) CompositingContainer(id LayerID) LayerID {
	l := t.get(id)
	if !l.isStacked() {
		return l.parent
	}
	return t.enclosingStackingContext(id)
}
