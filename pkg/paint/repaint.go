package paint

// SetNeedsRepaint marks id for repaint and propagates the mark up through
// compositing containers until it reaches a layer with its own backing.
func (t *Tree) SetNeedsRepaint(id LayerID) {
	l := t.get(id)
	l.needsRepaint = true
	for cur := l; cur.compositing.reasons == 0; {
		next := t.CompositingContainer(cur.id)
		if next.IsZero() {
			return
		}
		cur = t.get(next)
		if cur.needsRepaint {
			return
		}
		cur.needsRepaint = true
	}
}

// NeedsRepaint reports whether id was marked since the last
// ClearNeedsRepaintRecursively covering it.
func (t *Tree) NeedsRepaint(id LayerID) bool {
	return t.get(id).needsRepaint
}

// ClearNeedsRepaintRecursively clears the repaint mark on id and its
// subtree, typically after painting it.
func (t *Tree) ClearNeedsRepaintRecursively(id LayerID) {
	l := t.get(id)
	l.needsRepaint = false
	for c := l.first; !c.IsZero(); c = t.get(c).next {
		t.ClearNeedsRepaintRecursively(c)
	}
}
