package paint

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented description of the tree to w, one layer per line.
// Compositing reasons are included when they are up to date.
func (t *Tree) Dump(w io.Writer) error {
	return t.dumpLayer(w, t.root, 0)
}

func (t *Tree) dumpLayer(w io.Writer, id LayerID, depth int) error {
	l := t.get(id)
	g := t.geometryOf(l)

	var tags []string
	if l.isStackingContext() {
		tags = append(tags, "stacking-context")
	}
	if l.selfPainting {
		tags = append(tags, "self-painting")
	}
	if l.style.HasZIndex {
		tags = append(tags, fmt.Sprintf("z=%d", l.style.ZIndex))
	}
	if l.style.IsPositioned() {
		tags = append(tags, l.style.Position.String())
	}
	if l.style.HasTransform {
		tags = append(tags, "transform")
	}
	if l.needsRepaint {
		tags = append(tags, "needs-repaint")
	}
	if t.lifecycle == LifecycleCompositingClean && l.compositing.reasons != 0 {
		tags = append(tags, "composited("+l.compositing.reasons.String()+")")
	}

	_, err := fmt.Fprintf(w, "%s%v %s (%g,%g %gx%g) [%s]\n",
		strings.Repeat("  ", depth), id, l.object.DebugName(),
		g.Location.X, g.Location.Y, g.Size.Width, g.Size.Height,
		strings.Join(tags, " "))
	if err != nil {
		return err
	}
	for c := l.first; !c.IsZero(); c = t.get(c).next {
		if err := t.dumpLayer(w, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}
