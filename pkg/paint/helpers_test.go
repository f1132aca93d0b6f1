package paint

import (
	"errors"
	"testing"

	"paintlayer/pkg/geom"
)

// fakeBox is a LayoutObject whose geometry and style the tests edit
// directly.
type fakeBox struct {
	name  string
	geo   Geometry
	style StyleFlags
	// noContent makes the box transparent to hit testing.
	noContent bool
	// backgroundOnly makes only the background phase hit.
	backgroundOnly bool
	columns        PaginationProvider
}

func (b *fakeBox) LayerGeometry() Geometry { return b.geo }
func (b *fakeBox) LayerStyle() StyleFlags  { return b.style }
func (b *fakeBox) DebugName() string       { return b.name }

func (b *fakeBox) Pagination() PaginationProvider { return b.columns }

func (b *fakeBox) HitTestContent(local geom.Point, phase HitTestPhase) bool {
	if b.noContent || (b.backgroundOnly && phase == HitTestForeground) {
		return false
	}
	return geom.RectFrom(geom.Point{}, b.geo.Size).Contains(local)
}

func box(name string, x, y, w, h float64, style StyleFlags) *fakeBox {
	return &fakeBox{
		name:  name,
		geo:   Geometry{Location: geom.Pt(x, y), Size: geom.Size{Width: w, Height: h}},
		style: style,
	}
}

// testTree wraps a Tree with name lookup.
type testTree struct {
	*Tree
	boxes map[string]*fakeBox
	ids   map[string]LayerID
}

func newTestTree(w, h float64) *testTree {
	root := box("root", 0, 0, w, h, StyleFlags{})
	tt := &testTree{
		Tree:  NewTree(root),
		boxes: map[string]*fakeBox{"root": root},
		ids:   map[string]LayerID{},
	}
	tt.ids["root"] = tt.Root()
	return tt
}

func (tt *testTree) add(parent string, b *fakeBox) LayerID {
	id := tt.CreateLayer(b)
	tt.AddChild(tt.ids[parent], id, LayerID{})
	tt.boxes[b.name] = b
	tt.ids[b.name] = id
	return id
}

func (tt *testTree) names(ids []LayerID) []string {
	out := []string{}
	for _, id := range ids {
		out = append(out, tt.Object(id).DebugName())
	}
	return out
}

// chain adds depth nested layers under parent and returns the deepest.
// Every level also gets width-1 leaf siblings so the tree is wide.
func (tt *testTree) chain(parent string, depth, width int, style StyleFlags) string {
	cur := parent
	for d := 0; d < depth; d++ {
		next := ""
		for w := 0; w < width; w++ {
			name := cur + "." + string(rune('a'+w))
			tt.add(cur, box(name, 0, 0, 10, 10, style))
			if w == 0 {
				next = name
			}
		}
		cur = next
	}
	return cur
}

func positioned(z int) StyleFlags {
	return StyleFlags{Position: PositionRelative, HasZIndex: true, ZIndex: z, StackingContext: true}
}

func expectUsageError(t *testing.T, what string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("%s: expected a usage panic, got none", what)
			return
		}
		err, ok := r.(error)
		var ue *UsageError
		if !ok || !errors.As(err, &ue) {
			t.Errorf("%s: expected *UsageError, got %T: %v", what, r, r)
		}
	}()
	fn()
}

// columns lays a flow thread out in count columns of width x height.
type columns struct {
	width, height, gap float64
	count              int
}

func (c columns) FragmentsForRect(r geom.Rect) []ColumnFragment {
	var out []ColumnFragment
	for i := 0; i < c.count; i++ {
		portion := geom.Rect{X: 0, Y: float64(i) * c.height, Width: c.width, Height: c.height}
		if !portion.Intersects(r) {
			continue
		}
		out = append(out, ColumnFragment{
			FlowThreadPortion: portion,
			Translation:       geom.Pt(float64(i)*(c.width+c.gap), -float64(i)*c.height),
		})
	}
	return out
}

// recordingBackend remembers what UpdateCompositing told it.
type recordingBackend struct {
	updates []LayerState
	removed []LayerID
}

func (b *recordingBackend) UpdateLayer(s LayerState) { b.updates = append(b.updates, s) }
func (b *recordingBackend) RemoveLayer(id LayerID)   { b.removed = append(b.removed, id) }
