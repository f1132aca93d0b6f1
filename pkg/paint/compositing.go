package paint

import (
	"image"
	"strings"

	"go.uber.org/zap"
)

// CompositingReasons is a bit set explaining why a layer gets its own
// backing.
type CompositingReasons uint32

const (
	ReasonRoot CompositingReasons = 1 << iota
	Reason3DTransform
	ReasonWillChangeTransform
	ReasonWillChangeOpacity
	ReasonBackfaceVisibilityHidden
	ReasonAcceleratedContent
	ReasonActiveAnimation
	ReasonOverflowScrolling
	ReasonFixedPosition
	ReasonScrollParent
	ReasonOutOfFlowClipping
	ReasonOverlap
	ReasonOpacityWithCompositedDescendants
	ReasonFilterWithCompositedDescendants
	ReasonClipsCompositingDescendants
	ReasonClipPathWithCompositedDescendants
	ReasonBlendingWithCompositedDescendants
	ReasonIsolateCompositedDescendants
	ReasonPreserve3DWith3DDescendants
)

var reasonNames = [...]struct {
	bit  CompositingReasons
	name string
}{
	{ReasonRoot, "root"},
	{Reason3DTransform, "3d-transform"},
	{ReasonWillChangeTransform, "will-change-transform"},
	{ReasonWillChangeOpacity, "will-change-opacity"},
	{ReasonBackfaceVisibilityHidden, "backface-visibility-hidden"},
	{ReasonAcceleratedContent, "accelerated-content"},
	{ReasonActiveAnimation, "active-animation"},
	{ReasonOverflowScrolling, "overflow-scrolling"},
	{ReasonFixedPosition, "fixed-position"},
	{ReasonScrollParent, "scroll-parent"},
	{ReasonOutOfFlowClipping, "out-of-flow-clipping"},
	{ReasonOverlap, "overlap"},
	{ReasonOpacityWithCompositedDescendants, "opacity-with-composited-descendants"},
	{ReasonFilterWithCompositedDescendants, "filter-with-composited-descendants"},
	{ReasonClipsCompositingDescendants, "clips-compositing-descendants"},
	{ReasonClipPathWithCompositedDescendants, "clip-path-with-composited-descendants"},
	{ReasonBlendingWithCompositedDescendants, "blending-with-composited-descendants"},
	{ReasonIsolateCompositedDescendants, "isolate-composited-descendants"},
	{ReasonPreserve3DWith3DDescendants, "preserve-3d-with-3d-descendants"},
}

// Names returns the names of the set reasons in declaration order.
func (r CompositingReasons) Names() []string {
	var out []string
	for _, rn := range reasonNames {
		if r&rn.bit != 0 {
			out = append(out, rn.name)
		}
	}
	return out
}

func (r CompositingReasons) String() string {
	if r == 0 {
		return "none"
	}
	return strings.Join(r.Names(), "|")
}

// LayerState is what the compositing backend learns about a layer.
type LayerState struct {
	Layer                   LayerID
	Name                    string
	Reasons                 CompositingReasons
	SelfPainting            bool
	HasVisibleContent       bool
	HasVisibleDescendant    bool
	HasCompositedDescendant bool
	Bounds                  image.Rectangle
	// ClipParent and ScrollParent name the layers whose clip or scroll the
	// backend must apply out of tree order.
	ClipParent   LayerID
	ScrollParent LayerID
}

// Composited reports whether the layer gets its own backing.
func (s LayerState) Composited() bool {
	return s.Reasons != 0
}

// CompositingBackend receives layer states from UpdateCompositing. It must
// not mutate the tree from its callbacks.
type CompositingBackend interface {
	UpdateLayer(LayerState)
	RemoveLayer(LayerID)
}

type compositingState struct {
	reasons                 CompositingReasons
	hasCompositedDescendant bool
	// emitted is set once the backend has seen the layer.
	emitted bool
	last    LayerState
}

// UpdateCompositing brings compositing inputs up to date, assigns
// compositing reasons in paint order and sends every changed LayerState to
// backend, which may be nil.
func (t *Tree) UpdateCompositing(backend CompositingBackend) {
	t.UpdateCompositingInputs()
	t.backend = backend
	u := compositingUpdate{backend: backend}
	t.computeCompositing(&u, t.root)
	t.lifecycle = LifecycleCompositingClean
	logger().Debug("updated compositing",
		zap.Int("composited", u.composited),
		zap.Int("emitted", u.emitted))
}

type compositingUpdate struct {
	backend CompositingBackend
	// overlap holds the bounds of composited layers already visited, in
	// paint order.
	overlap    []image.Rectangle
	composited int
	emitted    int
}

// computeCompositing visits id and its stacking children in paint order and
// reports whether id or anything painted under it is composited.
func (t *Tree) computeCompositing(u *compositingUpdate, id LayerID) bool {
	l := t.get(id)
	in := t.ancestorInputs(l)
	reasons := t.directCompositingReasons(l, in)

	bounds := in.ClippedAbsoluteBoundingBox
	if reasons == 0 && l.selfPainting && !bounds.Empty() {
		for _, r := range u.overlap {
			if r.Overlaps(bounds) {
				reasons |= ReasonOverlap
				break
			}
		}
	}

	descendants := false
	if l.isStackingContext() {
		z := t.zOrderLists(l)
		for _, list := range [...][]LayerID{z.negative, z.normalFlow, z.positive} {
			for _, c := range list {
				if t.computeCompositing(u, c) {
					descendants = true
				}
			}
		}
	}
	if descendants && l.selfPainting {
		reasons |= t.descendantCompositingReasons(l)
	}

	l.compositing.reasons = reasons
	l.compositing.hasCompositedDescendant = descendants
	if reasons != 0 {
		u.composited++
		if !l.isRoot && !bounds.Empty() {
			u.overlap = append(u.overlap, bounds)
		}
	}
	t.emitLayerState(u, l, in)
	return reasons != 0 || descendants
}

func (t *Tree) directCompositingReasons(l *layer, in *AncestorDependentInputs) CompositingReasons {
	if l.isRoot {
		return ReasonRoot
	}
	if !l.selfPainting {
		return 0
	}
	s := l.style
	var r CompositingReasons
	if t.has3DTransform(l) {
		r |= Reason3DTransform
	}
	if s.WillChangeTransform {
		r |= ReasonWillChangeTransform
	}
	if s.WillChangeOpacity {
		r |= ReasonWillChangeOpacity
	}
	if s.BackfaceHidden && t.hasTransform(l) {
		r |= ReasonBackfaceVisibilityHidden
	}
	if s.AcceleratedContent {
		r |= ReasonAcceleratedContent
	}
	if s.ActiveAnimation {
		r |= ReasonActiveAnimation
	}
	if s.Scrollable {
		r |= ReasonOverflowScrolling
	}
	if s.Position == PositionFixed && !in.AncestorScrollingLayer.IsZero() {
		r |= ReasonFixedPosition
	}
	if !in.ScrollParent.IsZero() {
		r |= ReasonScrollParent
	}
	if !in.ClipParent.IsZero() {
		r |= ReasonOutOfFlowClipping
	}
	return r
}

// descendantCompositingReasons are the effects that must move into a
// backing once something painted under the layer is composited.
func (t *Tree) descendantCompositingReasons(l *layer) CompositingReasons {
	s := l.style
	var r CompositingReasons
	if s.Transparent {
		r |= ReasonOpacityWithCompositedDescendants
	}
	if s.HasFilter {
		r |= ReasonFilterWithCompositedDescendants
	}
	if s.OverflowClip {
		r |= ReasonClipsCompositingDescendants
	}
	if s.HasClipPath {
		r |= ReasonClipPathWithCompositedDescendants
	}
	if s.BlendMode != BlendNormal {
		r |= ReasonBlendingWithCompositedDescendants
	}
	if l.isStackingContext() && t.DescendantDependentInputs(l.id).HasNonIsolatedDescendantWithBlendMode {
		r |= ReasonIsolateCompositedDescendants
	}
	if s.Preserves3D && t.Has3DTransformedDescendant(l.id) {
		r |= ReasonPreserve3DWith3DDescendants
	}
	return r
}

func (t *Tree) emitLayerState(u *compositingUpdate, l *layer, in *AncestorDependentInputs) {
	if u.backend == nil {
		return
	}
	st := LayerState{
		Layer:                   l.id,
		Name:                    l.object.DebugName(),
		Reasons:                 l.compositing.reasons,
		SelfPainting:            l.selfPainting,
		HasVisibleContent:       t.HasVisibleContent(l.id),
		HasVisibleDescendant:    t.HasVisibleDescendant(l.id),
		HasCompositedDescendant: l.compositing.hasCompositedDescendant,
		Bounds:                  in.ClippedAbsoluteBoundingBox,
		ClipParent:              in.ClipParent,
		ScrollParent:            in.ScrollParent,
	}
	if l.compositing.emitted && st == l.compositing.last {
		return
	}
	l.compositing.emitted = true
	l.compositing.last = st
	u.emitted++
	u.backend.UpdateLayer(st)
}

func (t *Tree) assertCompositingClean(id LayerID) {
	if t.lifecycle != LifecycleCompositingClean {
		panic(usageError("compositing state of %v queried before UpdateCompositing", id))
	}
}

// CompositingReasons returns why id is composited. It may only be called
// after UpdateCompositing and before the next mutation.
func (t *Tree) CompositingReasons(id LayerID) CompositingReasons {
	t.assertCompositingClean(id)
	return t.get(id).compositing.reasons
}

// IsComposited reports whether id has its own backing. Same lifecycle rule as
// CompositingReasons.
func (t *Tree) IsComposited(id LayerID) bool {
	return t.CompositingReasons(id) != 0
}

// HasCompositedDescendant reports whether a layer painted under id is
// composited. Same lifecycle rule as CompositingReasons.
func (t *Tree) HasCompositedDescendant(id LayerID) bool {
	t.assertCompositingClean(id)
	return t.get(id).compositing.hasCompositedDescendant
}
