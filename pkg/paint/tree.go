package paint

import (
	"fmt"

	"go.uber.org/zap"
)

// LayerID is a stable handle to a layer in a Tree's arena. The zero value
// means "no layer". Handles of destroyed layers are detected on use.
type LayerID struct {
	index uint32
	gen   uint32
}

// IsZero reports whether id is the "no layer" handle.
func (id LayerID) IsZero() bool {
	return id.gen == 0
}

func (id LayerID) String() string {
	if id.IsZero() {
		return "none"
	}
	return fmt.Sprintf("L%d", id.index)
}

// layer is the per-node record. Each component keeps its own slice of
// state in an embedded struct and exposes its own recompute entry point on
// Tree.
type layer struct {
	id     LayerID
	object LayoutObject

	parent LayerID
	prev   LayerID
	next   LayerID
	first  LayerID
	last   LayerID

	isRoot       bool
	selfPainting bool
	needsRepaint bool

	// style is the snapshot taken at creation or the last StyleChanged.
	style    StyleFlags
	geometry cached[Geometry]

	flags       aggregateState
	inputs      inputsState
	stacking    stackingState
	clip        clipCache
	compositing compositingState
}

type slot struct {
	gen   uint32
	layer *layer
}

// Lifecycle tracks how far the tree has been brought up to date since the
// last mutation.
type Lifecycle uint8

const (
	// LifecycleDirty means mutations are pending.
	LifecycleDirty Lifecycle = iota
	// LifecycleInputsClean means every compositing input is up to date.
	LifecycleInputsClean
	// LifecycleCompositingClean means compositing reasons are up to date.
	LifecycleCompositingClean
)

// Tree owns every layer of one document. It is not safe for concurrent use:
// the dirty-bit protocol assumes a single thread performs all mutations and
// queries.
type Tree struct {
	slots []slot
	free  []uint32
	root  LayerID

	stats     Stats
	lifecycle Lifecycle

	// clipGeneration invalidates every clip cache at once. It changes on any
	// structural, geometry or clip-affecting style change.
	clipGeneration uint64

	// pendingInputs holds the roots of subtrees whose ancestor-dependent
	// inputs were invalidated since the last UpdateCompositingInputs.
	pendingInputs []LayerID

	backend CompositingBackend
}

// NewTree creates a tree whose root layer belongs to rootObject.
func NewTree(rootObject LayoutObject) *Tree {
	t := &Tree{}
	t.root = t.alloc(rootObject)
	root := t.get(t.root)
	root.isRoot = true
	root.selfPainting = true
	return t
}

// Root returns the root layer.
func (t *Tree) Root() LayerID {
	return t.root
}

// Stats returns the work counters accumulated since the last ResetStats.
func (t *Tree) Stats() Stats {
	return t.stats
}

// ResetStats zeroes the work counters.
func (t *Tree) ResetStats() {
	t.stats = Stats{}
}

// Lifecycle returns the current lifecycle phase.
func (t *Tree) Lifecycle() Lifecycle {
	return t.lifecycle
}

// Len returns the number of live layers.
func (t *Tree) Len() int {
	return len(t.slots) - len(t.free)
}

// Contains reports whether id refers to a live layer of t.
func (t *Tree) Contains(id LayerID) bool {
	if id.IsZero() || int(id.index) >= len(t.slots) {
		return false
	}
	s := t.slots[id.index]
	return s.layer != nil && s.gen == id.gen
}

func (t *Tree) alloc(obj LayoutObject) LayerID {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot{gen: 1})
	}
	id := LayerID{index: idx, gen: t.slots[idx].gen}
	style := obj.LayerStyle()
	l := &layer{id: id, object: obj, style: style, needsRepaint: true}
	t.slots[idx].layer = l
	l.selfPainting = t.shouldBeSelfPainting(l)
	return id
}

func (t *Tree) get(id LayerID) *layer {
	if !t.Contains(id) {
		panic(usageError("stale or unknown layer handle %v", id))
	}
	return t.slots[id.index].layer
}

func (t *Tree) invalidateLifecycle() {
	t.lifecycle = LifecycleDirty
}

// CreateLayer creates a detached layer for obj. Insert it with AddChild.
func (t *Tree) CreateLayer(obj LayoutObject) LayerID {
	t.invalidateLifecycle()
	return t.alloc(obj)
}

// Object returns the layout object a layer belongs to.
func (t *Tree) Object(id LayerID) LayoutObject {
	return t.get(id).object
}

func (t *Tree) Parent(id LayerID) LayerID          { return t.get(id).parent }
func (t *Tree) FirstChild(id LayerID) LayerID      { return t.get(id).first }
func (t *Tree) LastChild(id LayerID) LayerID       { return t.get(id).last }
func (t *Tree) NextSibling(id LayerID) LayerID     { return t.get(id).next }
func (t *Tree) PreviousSibling(id LayerID) LayerID { return t.get(id).prev }

// Children returns a's children in order. It allocates; internal walks use
// the sibling links directly.
func (t *Tree) Children(id LayerID) []LayerID {
	var out []LayerID
	for c := t.get(id).first; !c.IsZero(); c = t.get(c).next {
		out = append(out, c)
	}
	return out
}

// IsRootLayer reports whether id is the tree root.
func (t *Tree) IsRootLayer(id LayerID) bool {
	return t.get(id).isRoot
}

// IsSelfPaintingLayer reports whether the layer paints its own content
// rather than relying on its box being painted in normal flow.
func (t *Tree) IsSelfPaintingLayer(id LayerID) bool {
	return t.get(id).selfPainting
}

// IsStackingContext reports whether id scopes the z-ordering of its
// descendants.
func (t *Tree) IsStackingContext(id LayerID) bool {
	return t.get(id).isStackingContext()
}

// Style returns the style snapshot the layer currently works from.
func (t *Tree) Style(id LayerID) StyleFlags {
	return t.get(id).style
}

func (l *layer) isStackingContext() bool {
	return l.isRoot || l.style.StackingContext
}

func (l *layer) isStacked() bool {
	return l.isRoot || l.style.isStacked()
}

// isAncestorOf reports whether a is a strict ancestor of d.
func (t *Tree) isAncestorOf(a, d LayerID) bool {
	for p := t.get(d).parent; !p.IsZero(); p = t.get(p).parent {
		if p == a {
			return true
		}
	}
	return false
}

// attachedToRoot reports whether id's ancestor chain ends at the root.
func (t *Tree) attachedToRoot(id LayerID) bool {
	return id == t.root || t.isAncestorOf(t.root, id)
}

// AddChild inserts child under parent before the sibling before, or at the
// end when before is zero. child must be detached.
func (t *Tree) AddChild(parent, child, before LayerID) {
	p := t.get(parent)
	c := t.get(child)
	assertf(!c.isRoot, "cannot insert the root layer")
	assertf(c.parent.IsZero(), "layer %v already has parent %v", child, c.parent)
	assertf(parent != child && !t.isAncestorOf(child, parent), "inserting %v under %v would create a cycle", child, parent)

	if before.IsZero() {
		c.prev = p.last
		if p.last.IsZero() {
			p.first = child
		} else {
			t.get(p.last).next = child
		}
		p.last = child
	} else {
		b := t.get(before)
		assertf(b.parent == parent, "layer %v is not a child of %v", before, parent)
		c.next = before
		c.prev = b.prev
		if b.prev.IsZero() {
			p.first = child
		} else {
			t.get(b.prev).next = child
		}
		b.prev = child
	}
	c.parent = parent

	t.childSetChanged(parent, child)
	t.SetNeedsCompositingInputsUpdate(child)
	t.SetNeedsRepaint(child)
}

// RemoveChild unlinks child from parent and returns it. The detached
// subtree belongs to the caller, who re-inserts it or calls Destroy.
func (t *Tree) RemoveChild(parent, child LayerID) LayerID {
	p := t.get(parent)
	c := t.get(child)
	assertf(c.parent == parent, "layer %v is not a child of %v", child, parent)

	// Marks that walk from child must happen while it is still linked.
	t.SetNeedsRepaint(parent)
	t.childSetChanged(parent, child)

	if c.prev.IsZero() {
		p.first = c.next
	} else {
		t.get(c.prev).next = c.next
	}
	if c.next.IsZero() {
		p.last = c.prev
	} else {
		t.get(c.next).prev = c.prev
	}
	c.parent, c.prev, c.next = LayerID{}, LayerID{}, LayerID{}

	t.markDescendantDependentDirty(parent)
	t.markAncestorDependentSubtree(child)
	return child
}

// childSetChanged runs the invalidations shared by insertion and removal.
// child must still be linked under parent.
func (t *Tree) childSetChanged(parent, child LayerID) {
	t.invalidateLifecycle()
	t.clipGeneration++
	t.dirtyZOrderListsFor(child)
	t.dirty3DTransformedDescendantStatus(child)
	t.dirtyAncestorChainVisibleDescendantStatus(parent)
	t.dirtyAncestorChainHasSelfPaintingLayerDescendantStatus(parent)
}

// RemoveOnlyThisLayer removes id and moves its children, in order, into
// id's place under its parent.
func (t *Tree) RemoveOnlyThisLayer(id LayerID) {
	l := t.get(id)
	assertf(!l.isRoot, "cannot remove the root layer")
	parent := l.parent
	assertf(!parent.IsZero(), "layer %v is detached", id)

	before := l.next
	for c := l.first; !c.IsZero(); {
		next := t.get(c).next
		t.RemoveChild(id, c)
		t.AddChild(parent, c, before)
		c = next
	}
	t.RemoveChild(parent, id)
	t.Destroy(id)
}

// Destroy frees a detached layer and its whole subtree. Composited layers
// are reported to the backend as removed.
func (t *Tree) Destroy(id LayerID) {
	l := t.get(id)
	assertf(!l.isRoot, "cannot destroy the root layer")
	assertf(l.parent.IsZero(), "layer %v must be removed before it is destroyed", id)
	t.invalidateLifecycle()
	t.destroyRecursive(id)
}

func (t *Tree) destroyRecursive(id LayerID) {
	l := t.get(id)
	for c := l.first; !c.IsZero(); {
		next := t.get(c).next
		t.destroyRecursive(c)
		c = next
	}
	if l.compositing.emitted && t.backend != nil {
		t.backend.RemoveLayer(id)
	}
	logger().Debug("destroy layer", zap.Stringer("layer", id), zap.String("object", l.object.DebugName()))

	// Clear every link so a stray handle copy cannot reach live layers.
	*l = layer{}
	s := &t.slots[id.index]
	s.layer = nil
	s.gen++
	t.free = append(t.free, id.index)
}
