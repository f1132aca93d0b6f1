package layout

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"paintlayer/pkg/css"
	"paintlayer/pkg/geom"
	"paintlayer/pkg/paint"
)

var (
	// ErrNotInDocument is returned for boxes that belong to no document or
	// to another one.
	ErrNotInDocument = errors.New("box is not in this document")
	// ErrAlreadyAttached is returned when inserting a box that has a parent.
	ErrAlreadyAttached = errors.New("box is already attached")
	// ErrNotAChild is returned when a reference box is not a child of the
	// given parent.
	ErrNotAChild = errors.New("reference box is not a child of parent")
	// ErrRootBox is returned when removing the root.
	ErrRootBox = errors.New("the root box cannot be removed")
)

// Document owns a box tree and keeps its layer tree in step with every
// mutation. Like paint.Tree it is not safe for concurrent use.
type Document struct {
	Root *Box

	Width  float64
	Height float64

	tree        *paint.Tree
	stylesheets []*css.Stylesheet
	log         *zap.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger for document events. The default is silent.
func WithLogger(l *zap.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.log = l
		}
	}
}

// WithStylesheets sets the author stylesheets, lowest precedence first.
func WithStylesheets(sheets ...*css.Stylesheet) Option {
	return func(d *Document) {
		d.stylesheets = sheets
	}
}

// NewDocument creates a document whose root box covers a width x height
// viewport.
func NewDocument(width, height float64, opts ...Option) *Document {
	d := &Document{Width: width, Height: height, log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	root := NewBox("html", "")
	root.Width, root.Height = width, height
	root.doc = d
	d.Root = root
	d.restyleBox(root)
	d.tree = paint.NewTree(root)
	root.layer = d.tree.Root()
	return d
}

// Tree returns the document's layer tree.
func (d *Document) Tree() *paint.Tree {
	return d.tree
}

func (d *Document) owns(b *Box) error {
	if b == nil || b.doc != d {
		return ErrNotInDocument
	}
	return nil
}

// AppendChild inserts the detached subtree child as the last child of
// parent.
func (d *Document) AppendChild(parent, child *Box) error {
	return d.InsertBefore(parent, child, nil)
}

// InsertBefore inserts the detached subtree child under parent before the
// child before, or last when before is nil.
func (d *Document) InsertBefore(parent, child, before *Box) error {
	if err := d.owns(parent); err != nil {
		return fmt.Errorf("insert into %s: %w", parent.DebugName(), err)
	}
	if child.Parent != nil || child.doc != nil {
		return fmt.Errorf("insert %s: %w", child.DebugName(), ErrAlreadyAttached)
	}
	at := len(parent.Children)
	if before != nil {
		if at = indexOf(parent.Children, before); at < 0 {
			return fmt.Errorf("insert %s before %s: %w", child.DebugName(), before.DebugName(), ErrNotAChild)
		}
	}
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[at+1:], parent.Children[at:])
	parent.Children[at] = child
	child.Parent = parent

	child.Walk(func(b *Box) bool {
		b.doc = d
		d.restyleBox(b)
		if RequiresLayer(b) {
			d.attachLayer(b)
		}
		return true
	})
	d.contentChanged(parent)
	d.log.Debug("inserted box",
		zap.String("box", child.DebugName()),
		zap.String("parent", parent.DebugName()),
		zap.Int("layers", d.tree.Len()))
	return nil
}

// Remove detaches b and its subtree from the document, destroying their
// layers. The boxes may be inserted again.
func (d *Document) Remove(b *Box) error {
	if err := d.owns(b); err != nil {
		return fmt.Errorf("remove %s: %w", b.DebugName(), err)
	}
	if b.Parent == nil {
		return ErrRootBox
	}
	layered := []*Box{b}
	if !b.HasLayer() {
		layered = topLayerBoxes(b)
	}
	for _, lb := range layered {
		id := lb.layer
		d.tree.Destroy(d.tree.RemoveChild(d.tree.Parent(id), id))
	}

	parent := b.Parent
	i := indexOf(parent.Children, b)
	parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
	b.Parent = nil
	b.Walk(func(x *Box) bool {
		x.doc = nil
		x.layer = paint.LayerID{}
		return true
	})
	d.contentChanged(parent)
	d.log.Debug("removed box", zap.String("box", b.DebugName()), zap.Int("layers", d.tree.Len()))
	return nil
}

// SetInlineStyle replaces b's style attribute and restyles its subtree.
func (d *Document) SetInlineStyle(b *Box, decls string) error {
	if err := d.owns(b); err != nil {
		return fmt.Errorf("style %s: %w", b.DebugName(), err)
	}
	b.inline = decls
	d.restyleSubtree(b)
	return nil
}

// SetProperty sets one inline declaration on b.
func (d *Document) SetProperty(b *Box, property, value string) error {
	if err := d.owns(b); err != nil {
		return fmt.Errorf("style %s: %w", b.DebugName(), err)
	}
	s := css.ParseInlineStyle(b.inline)
	s.Set(property, value)
	return d.SetInlineStyle(b, s.String())
}

// SetStylesheets replaces the author stylesheets and restyles everything.
func (d *Document) SetStylesheets(sheets ...*css.Stylesheet) {
	d.stylesheets = sheets
	d.restyleSubtree(d.Root)
}

// SetText replaces b's text content.
func (d *Document) SetText(b *Box, text string) error {
	if err := d.owns(b); err != nil {
		return fmt.Errorf("set text on %s: %w", b.DebugName(), err)
	}
	b.Text = text
	d.contentChanged(b)
	return nil
}

// MoveTo sets b's offset from its containing block.
func (d *Document) MoveTo(b *Box, x, y float64) error {
	if err := d.owns(b); err != nil {
		return fmt.Errorf("move %s: %w", b.DebugName(), err)
	}
	b.X, b.Y = x, y
	d.geometryChanged(b)
	return nil
}

// Resize sets b's border box size.
func (d *Document) Resize(b *Box, width, height float64) error {
	if err := d.owns(b); err != nil {
		return fmt.Errorf("resize %s: %w", b.DebugName(), err)
	}
	b.Width, b.Height = width, height
	// The transform origin depends on the size.
	d.resolveTransform(b)
	d.geometryChanged(b)
	return nil
}

// Lookup returns the first box in document order with the given id.
func (d *Document) Lookup(id string) (*Box, bool) {
	var found *Box
	d.Root.Walk(func(b *Box) bool {
		if b.id == id {
			found = b
			return false
		}
		return true
	})
	return found, found != nil
}

// BoxForLayer returns the box that owns id.
func (d *Document) BoxForLayer(id paint.LayerID) *Box {
	return d.tree.Object(id).(*Box)
}

// HitTest returns the topmost box at (x, y) in document coordinates,
// together with the raw layer hit.
func (d *Document) HitTest(x, y float64) (*Box, paint.HitTestResult, bool) {
	r, ok := d.tree.HitTest(geom.Pt(x, y))
	if !ok {
		return nil, r, false
	}
	owner := r.Object.(*Box)
	hit := owner.HitBox(r.Local, r.Phase)
	if hit == nil {
		hit = owner
	}
	return hit, r, true
}

// Update brings compositing up to date and reports changed layers to
// backend, which may be nil.
func (d *Document) Update(backend paint.CompositingBackend) {
	d.tree.UpdateCompositing(backend)
}

// restyleBox recomputes b's style from the stylesheets and its inline
// declarations. Visibility inherits from the parent.
func (d *Document) restyleBox(b *Box) {
	style := css.ComputeStyle(b, d.stylesheets)
	if _, ok := style.Get("visibility"); !ok && b.Parent != nil {
		if v, ok := b.Parent.Style.Get("visibility"); ok {
			style.Set("visibility", v)
		}
	}
	b.Style = style
	b.Position = style.GetPosition()
	d.resolveTransform(b)
}

func (d *Document) resolveTransform(b *Box) {
	t, err := b.Style.GetTransform(b.Width, b.Height)
	if err != nil {
		d.log.Warn("ignoring transform", zap.String("box", b.DebugName()), zap.Error(err))
		b.Style.Set("transform", "none")
	}
	b.transform = t
}

// restyleSubtree restyles every box under b and reconciles layers: boxes
// that stop needing a layer lose it, boxes that start needing one get it.
func (d *Document) restyleSubtree(b *Box) {
	b.Walk(func(x *Box) bool {
		oldPosition, oldTransform := x.Position, x.transform
		d.restyleBox(x)
		needs := RequiresLayer(x)
		switch {
		case x.HasLayer() && !needs:
			d.detachLayer(x)
		case !x.HasLayer() && needs:
			d.attachLayer(x)
		case x.HasLayer():
			d.tree.StyleChanged(x.layer)
			d.contentChanged(x)
		default:
			d.contentChanged(x)
		}
		if oldPosition != x.Position || !sameTransform(oldTransform, x.transform) {
			d.geometryChanged(x)
		}
		return true
	})
}

func sameTransform(a, b *geom.Transform) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// attachLayer gives b a layer under its enclosing layer and moves the
// layers of b's descendants under it.
func (d *Document) attachLayer(b *Box) {
	container := enclosingLayerBox(b.Parent)
	id := d.tree.CreateLayer(b)
	var before paint.LayerID
	if next := layerAfter(b, container); next != nil {
		before = next.layer
	}
	adopt := topLayerBoxes(b)
	d.tree.AddChild(container.layer, id, before)
	b.layer = id
	for _, c := range adopt {
		d.tree.AddChild(id, d.tree.RemoveChild(container.layer, c.layer), paint.LayerID{})
		// Locations are relative to the parent layer.
		d.tree.GeometryChanged(c.layer)
	}
	// The container no longer paints b's subtree.
	d.tree.DirtyVisibleContentStatus(container.layer)
	d.log.Debug("attached layer",
		zap.String("box", b.DebugName()),
		zap.Stringer("layer", id),
		zap.Int("adopted", len(adopt)))
}

// detachLayer destroys b's layer; its child layers move to b's former
// parent layer.
func (d *Document) detachLayer(b *Box) {
	id := b.layer
	parent := d.tree.Parent(id)
	children := d.tree.Children(id)
	d.tree.RemoveOnlyThisLayer(id)
	b.layer = paint.LayerID{}
	for _, c := range children {
		d.tree.GeometryChanged(c)
	}
	d.tree.DirtyVisibleContentStatus(parent)
	d.tree.SetNeedsRepaint(parent)
	d.log.Debug("detached layer", zap.String("box", b.DebugName()), zap.Stringer("layer", id))
}

// contentChanged handles a change to content painted by b's enclosing
// layer.
func (d *Document) contentChanged(b *Box) {
	owner := enclosingLayerBox(b)
	d.tree.DirtyVisibleContentStatus(owner.layer)
	d.tree.SetNeedsRepaint(owner.layer)
}

// geometryChanged invalidates every layer whose placement can depend on b.
func (d *Document) geometryChanged(b *Box) {
	if !b.HasLayer() {
		d.contentChanged(b)
	}
	b.Walk(func(x *Box) bool {
		if x.HasLayer() {
			d.tree.GeometryChanged(x.layer)
		}
		return true
	})
}
