package paint

import "paintlayer/pkg/geom"

// Fragment is one piece of a layer as painted or hit tested relative to a
// root layer. An unpaginated layer has exactly one.
type Fragment struct {
	// PaginationOffset is the column translation applied to the fragment.
	PaginationOffset geom.Point
	// LayerBounds is the layer's box.
	LayerBounds geom.Rect
	// BackgroundRect is the clip applied to the layer by its ancestors.
	BackgroundRect geom.Rect
	// ForegroundRect additionally applies the layer's own overflow clip and
	// is used for its content and descendants.
	ForegroundRect geom.Rect
}

// clipCache memoizes clip rects relative to one root. It is valid while
// generation matches Tree.clipGeneration.
type clipCache struct {
	valid      bool
	root       LayerID
	generation uint64
	offset     geom.Point
	background geom.Rect
	foreground geom.Rect
}

// ClipRects returns the background and foreground clip rects of id relative
// to root, which must be id or one of its ancestors.
func (t *Tree) ClipRects(root, id LayerID) (background, foreground geom.Rect) {
	_, background, foreground = t.clipRects(t.get(id), root)
	return background, foreground
}

func (t *Tree) clipRects(l *layer, root LayerID) (geom.Point, geom.Rect, geom.Rect) {
	c := &l.clip
	if c.valid && c.root == root && c.generation == t.clipGeneration {
		return c.offset, c.background, c.foreground
	}
	off, bg, fg := t.computeClipRects(l, root, true)
	*c = clipCache{
		valid:      true,
		root:       root,
		generation: t.clipGeneration,
		offset:     off,
		background: bg,
		foreground: fg,
	}
	return off, bg, fg
}

// computeClipRects walks the containing-layer chain from l up to root,
// intersecting overflow clips. Layers an out-of-flow layer escapes do not
// clip it.
func (t *Tree) computeClipRects(l *layer, root LayerID, includeRootClip bool) (geom.Point, geom.Rect, geom.Rect) {
	off := t.offsetFromAncestor(l.id, root)
	bg := geom.InfiniteRect()
	for cur := l.id; cur != root; {
		cb := t.containingLayer(cur, root)
		if cb.IsZero() {
			break
		}
		cbl := t.get(cb)
		if cbl.style.OverflowClip && (cb != root || includeRootClip) {
			box := geom.RectFrom(t.offsetFromAncestor(cb, root), t.geometryOf(cbl).Size)
			bg = bg.Intersect(box)
		}
		cur = cb
	}
	fg := bg
	if l.style.OverflowClip {
		fg = fg.Intersect(geom.RectFrom(off, t.geometryOf(l).Size))
	}
	return off, bg, fg
}

// CollectFragments appends the fragments of id relative to root to dst and
// returns the extended slice. Fragments whose background rect misses dirty
// are dropped; pass geom.InfiniteRect() to keep all of them. The common
// unpaginated case performs no allocation when dst has room for one
// fragment.
func (t *Tree) CollectFragments(dst []Fragment, root, id LayerID, dirty geom.Rect) []Fragment {
	l := t.get(id)
	if pag := t.ancestorInputs(l).PaginationLayer; !pag.IsZero() && (pag == root || t.isAncestorOf(root, pag)) {
		return t.collectPaginatedFragments(dst, root, l, t.get(pag), dirty)
	}
	off, bg, fg := t.clipRects(l, root)
	f := Fragment{
		LayerBounds:    geom.RectFrom(off, t.geometryOf(l).Size),
		BackgroundRect: bg,
		ForegroundRect: fg,
	}
	if !f.BackgroundRect.Intersects(dirty) {
		return dst
	}
	return append(dst, f)
}

func (t *Tree) collectPaginatedFragments(dst []Fragment, root LayerID, l, pag *layer, dirty geom.Rect) []Fragment {
	provider := pag.object.(Paginated).Pagination()

	// Clips above the pagination layer apply in visual coordinates; clips
	// between it and l apply in flow thread coordinates.
	pagOffset, pagClip, _ := t.clipRects(pag, root)
	if pag.style.OverflowClip {
		pagClip = pagClip.Intersect(geom.RectFrom(pagOffset, t.geometryOf(pag).Size))
	}
	flowOffset, flowBg, flowFg := t.computeClipRects(l, pag.id, false)
	flowBounds := geom.RectFrom(flowOffset, t.geometryOf(l).Size)

	for _, col := range provider.FragmentsForRect(flowBounds) {
		d := col.Translation.Add(pagOffset)
		colClip := col.FlowThreadPortion.Translate(d).Intersect(pagClip)
		f := Fragment{
			PaginationOffset: col.Translation,
			LayerBounds:      flowBounds.Translate(d),
			BackgroundRect:   flowBg.Translate(d).Intersect(colClip),
			ForegroundRect:   flowFg.Translate(d).Intersect(colClip),
		}
		if !f.BackgroundRect.Intersects(dirty) {
			continue
		}
		dst = append(dst, f)
	}
	return dst
}
