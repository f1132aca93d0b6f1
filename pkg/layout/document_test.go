package layout

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"paintlayer/pkg/css"
	"paintlayer/pkg/geom"
	"paintlayer/pkg/paint"
)

func newDoc(t *testing.T, sheets ...string) *Document {
	t.Helper()
	var parsed []*css.Stylesheet
	for _, s := range sheets {
		sheet, err := css.ParseStylesheet(s)
		if err != nil {
			t.Fatalf("parse stylesheet: %v", err)
		}
		parsed = append(parsed, sheet)
	}
	return NewDocument(200, 200, WithLogger(zaptest.NewLogger(t)), WithStylesheets(parsed...))
}

// add inserts a new box with the given inline style and geometry.
func add(t *testing.T, d *Document, parent *Box, id, style string, x, y, w, h float64) *Box {
	t.Helper()
	b := NewBox("div", id)
	b.SetInlineStyle(style)
	b.X, b.Y, b.Width, b.Height = x, y, w, h
	if err := d.AppendChild(parent, b); err != nil {
		t.Fatalf("append %s: %v", id, err)
	}
	return b
}

func layerNames(d *Document, ids []paint.LayerID) []string {
	var out []string
	for _, id := range ids {
		out = append(out, d.BoxForLayer(id).ID())
	}
	return out
}

func TestInsertCreatesLayersInDocumentOrder(t *testing.T) {
	d := newDoc(t)
	add(t, d, d.Root, "a", "position: relative", 0, 0, 10, 10)
	b := add(t, d, d.Root, "b", "", 0, 0, 10, 10)
	add(t, d, b, "c", "position: relative", 0, 0, 10, 10)

	dbox := NewBox("div", "d")
	dbox.SetInlineStyle("position: relative")
	if err := d.InsertBefore(d.Root, dbox, b); err != nil {
		t.Fatal(err)
	}

	if b.HasLayer() {
		t.Error("expected a static box to have no layer")
	}
	got := layerNames(d, d.Tree().Children(d.Tree().Root()))
	if diff := cmp.Diff([]string{"a", "d", "c"}, got); diff != "" {
		t.Errorf("root layer children mismatch (-want +got):\n%s", diff)
	}
}

func TestStyleChangeMovesLayers(t *testing.T) {
	d := newDoc(t)
	div := add(t, d, d.Root, "div", "", 10, 10, 100, 100)
	abs := add(t, d, div, "abs", "position: absolute", 1, 1, 10, 10)
	tree := d.Tree()

	if tree.Parent(abs.Layer()) != tree.Root() {
		t.Fatal("expected the absolute box under the root layer")
	}

	if err := d.SetProperty(div, "position", "relative"); err != nil {
		t.Fatal(err)
	}
	if !div.HasLayer() || tree.Parent(abs.Layer()) != div.Layer() {
		t.Fatal("expected the new layer to adopt the absolute box")
	}
	if got := tree.Location(abs.Layer()); got != geom.Pt(1, 1) {
		t.Errorf("expected location (1,1) in the relative box, got %v", got)
	}

	if err := d.SetProperty(div, "position", "static"); err != nil {
		t.Fatal(err)
	}
	if div.HasLayer() || tree.Parent(abs.Layer()) != tree.Root() {
		t.Error("expected the absolute box back under the root layer")
	}
	if tree.Len() != 2 {
		t.Errorf("expected 2 layers, got %d", tree.Len())
	}
}

func TestLayerLocationFollowsContainingBlocks(t *testing.T) {
	d := newDoc(t)
	div := add(t, d, d.Root, "div", "position: relative", 10, 10, 100, 100)
	span := add(t, d, div, "span", "", 5, 5, 50, 50)
	abs := add(t, d, span, "abs", "position: absolute", 1, 1, 10, 10)
	rel := add(t, d, span, "rel", "position: relative", 2, 2, 10, 10)
	tree := d.Tree()

	cases := map[string]struct {
		box  *Box
		want geom.Point
	}{
		"div": {div, geom.Pt(10, 10)},
		"abs": {abs, geom.Pt(1, 1)},
		"rel": {rel, geom.Pt(7, 7)},
	}
	for name, c := range cases {
		if got := tree.Location(c.box.Layer()); got != c.want {
			t.Errorf("%s: expected %v, got %v", name, c.want, got)
		}
	}

	if err := d.MoveTo(span, 20, 5); err != nil {
		t.Fatal(err)
	}
	if got := tree.Location(rel.Layer()); got != geom.Pt(22, 7) {
		t.Errorf("expected moved location (22,7), got %v", got)
	}
	if got := tree.Location(abs.Layer()); got != geom.Pt(1, 1) {
		t.Errorf("expected the absolute box to stay put, got %v", got)
	}
}

func TestRemoveDestroysSubtreeLayers(t *testing.T) {
	d := newDoc(t)
	b := add(t, d, d.Root, "b", "", 0, 0, 10, 10)
	c := add(t, d, b, "c", "position: relative", 0, 0, 10, 10)
	add(t, d, c, "e", "opacity: 0.5", 0, 0, 10, 10)
	if d.Tree().Len() != 3 {
		t.Fatalf("expected 3 layers, got %d", d.Tree().Len())
	}

	if err := d.Remove(b); err != nil {
		t.Fatal(err)
	}
	if d.Tree().Len() != 1 {
		t.Errorf("expected only the root layer, got %d", d.Tree().Len())
	}
	if c.HasLayer() || b.Parent != nil || len(d.Root.Children) != 0 {
		t.Error("expected the subtree to be fully detached")
	}

	if err := d.AppendChild(d.Root, b); err != nil {
		t.Fatal(err)
	}
	if !c.HasLayer() || d.Tree().Len() != 3 {
		t.Error("expected layers to come back on re-insertion")
	}
}

func TestDocumentErrors(t *testing.T) {
	d := newDoc(t)
	a := add(t, d, d.Root, "a", "", 0, 0, 10, 10)
	stranger := NewBox("div", "stranger")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"reinsert", d.AppendChild(d.Root, a), ErrAlreadyAttached},
		{"remove root", d.Remove(d.Root), ErrRootBox},
		{"remove detached", d.Remove(stranger), ErrNotInDocument},
		{"bad reference", d.InsertBefore(d.Root, NewBox("p", ""), stranger), ErrNotAChild},
		{"detached parent", d.AppendChild(stranger, NewBox("p", "")), ErrNotInDocument},
		{"move detached", d.MoveTo(stranger, 1, 1), ErrNotInDocument},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.err)
		}
	}
}

func TestHitTestReturnsDeepestBox(t *testing.T) {
	d := newDoc(t, `html { background: white } .card { background: red } span { background: blue }`)
	card := NewBox("div", "card", "card")
	card.SetInlineStyle("position: relative")
	card.X, card.Y, card.Width, card.Height = 10, 10, 50, 50
	if err := d.AppendChild(d.Root, card); err != nil {
		t.Fatal(err)
	}
	span := NewBox("span", "label")
	span.X, span.Y, span.Width, span.Height = 5, 5, 10, 10
	if err := d.AppendChild(card, span); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		x, y float64
		want *Box
	}{
		{17, 17, span},
		{40, 40, card},
		{100, 100, d.Root},
	}
	for _, c := range cases {
		got, _, ok := d.HitTest(c.x, c.y)
		if !ok || got != c.want {
			t.Errorf("hit at (%v,%v): expected %s, got %s", c.x, c.y, c.want.DebugName(), got.DebugName())
		}
	}

	if err := d.SetProperty(card, "visibility", "hidden"); err != nil {
		t.Fatal(err)
	}
	if got, _, _ := d.HitTest(17, 17); got != d.Root {
		t.Errorf("expected hidden boxes to be skipped, got %s", got.DebugName())
	}
}

func TestHitTestColumns(t *testing.T) {
	d := newDoc(t)
	cols := add(t, d, d.Root, "cols", "columns: 2; column-gap: 0", 0, 0, 200, 50)
	p := add(t, d, cols, "p", "background: red", 0, 60, 100, 20)

	if !p.HasLayer() {
		t.Fatal("expected column content to get a layer")
	}
	got, r, ok := d.HitTest(110, 15)
	if !ok || got != p {
		t.Fatalf("expected p in the second column, got %s", got.DebugName())
	}
	if r.Local != geom.Pt(10, 5) {
		t.Errorf("expected local point (10,5), got %v", r.Local)
	}
	if _, _, ok := d.HitTest(10, 15); ok {
		t.Error("expected the first column to be empty")
	}
}

func TestColumnContentPaintsItself(t *testing.T) {
	d := newDoc(t)
	cols := add(t, d, d.Root, "cols", "columns: 2; column-gap: 20px", 0, 0, 220, 50)
	para := add(t, d, cols, "para", "background: red", 0, 30, 100, 40)

	tree := d.Tree()
	if !tree.IsSelfPaintingLayer(para.Layer()) || !tree.IsSelfPaintingLayer(cols.Layer()) {
		t.Fatal("expected column layers to be self-painting")
	}
	for _, pt := range []geom.Point{{X: 50, Y: 40}, {X: 160, Y: 10}} {
		if got, _, ok := d.HitTest(pt.X, pt.Y); !ok || got != para {
			t.Errorf("expected para at %v, got %s", pt, got.DebugName())
		}
	}

	// A column count change keeps the flow thread layers self-painting.
	if err := d.SetProperty(cols, "column-count", "3"); err != nil {
		t.Fatal(err)
	}
	if !tree.IsSelfPaintingLayer(para.Layer()) {
		t.Error("expected para to stay self-painting")
	}
	if err := d.SetProperty(cols, "column-count", "auto"); err != nil {
		t.Fatal(err)
	}
	if para.HasLayer() || cols.HasLayer() {
		t.Error("expected layers to go away with the columns")
	}
	if got, _, ok := d.HitTest(50, 40); !ok || got != para {
		t.Errorf("expected para in flow at (50,40), got %s", got.DebugName())
	}
}

func TestZOrderFromStyles(t *testing.T) {
	d := newDoc(t)
	for _, c := range []struct{ id, style string }{
		{"neg", "position: relative; z-index: -1"},
		{"five", "position: absolute; z-index: 5"},
		{"auto", "position: relative"},
		{"three", "position: fixed; z-index: 3"},
		{"flat", "overflow: hidden"},
	} {
		add(t, d, d.Root, c.id, c.style, 0, 0, 10, 10)
	}
	tree := d.Tree()
	root := tree.Root()

	if diff := cmp.Diff([]string{"neg"}, layerNames(d, tree.NegativeZOrderList(root))); diff != "" {
		t.Errorf("negative list mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"auto", "flat"}, layerNames(d, tree.NormalFlowList(root))); diff != "" {
		t.Errorf("normal flow list mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"three", "five"}, layerNames(d, tree.PositiveZOrderList(root))); diff != "" {
		t.Errorf("positive list mismatch (-want +got):\n%s", diff)
	}
}

func TestCompositingThroughDocument(t *testing.T) {
	d := newDoc(t)
	a := add(t, d, d.Root, "a", "will-change: transform", 0, 0, 10, 10)
	d.Update(nil)
	if !d.Tree().IsComposited(a.Layer()) {
		t.Errorf("expected will-change to composite, reasons %v", d.Tree().CompositingReasons(a.Layer()))
	}

	if err := d.SetProperty(a, "will-change", "auto"); err != nil {
		t.Fatal(err)
	}
	if a.HasLayer() {
		t.Error("expected the layer to go away with its reason")
	}
	d.Update(nil)
}

func TestInvalidTransformIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	d := NewDocument(100, 100, WithLogger(zap.New(core)))
	b := NewBox("div", "spin")
	b.SetInlineStyle("transform: spin(3deg)")
	if err := d.AppendChild(d.Root, b); err != nil {
		t.Fatal(err)
	}

	if b.Transform() != nil || b.HasLayer() {
		t.Error("expected the bad transform to be dropped")
	}
	if n := logs.FilterMessage("ignoring transform").Len(); n != 1 {
		t.Errorf("expected one warning, got %d", n)
	}
}

func TestTransformFollowsResize(t *testing.T) {
	d := newDoc(t)
	b := add(t, d, d.Root, "r", "transform: rotate(180deg)", 0, 0, 20, 20)
	if got := b.Transform().MapPoint(geom.Pt(0, 0)); !near(got, geom.Pt(20, 20)) {
		t.Fatalf("expected rotation about (10,10), got %v", got)
	}
	if err := d.Resize(b, 40, 40); err != nil {
		t.Fatal(err)
	}
	if got := d.Tree().Transform(b.Layer()).MapPoint(geom.Pt(0, 0)); !near(got, geom.Pt(40, 40)) {
		t.Errorf("expected rotation about (20,20), got %v", got)
	}
}

func near(a, b geom.Point) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx+dy*dy < 1e-12
}

func TestStylesheetsRestyleEverything(t *testing.T) {
	d := newDoc(t)
	b := NewBox("div", "", "raised")
	if err := d.AppendChild(d.Root, b); err != nil {
		t.Fatal(err)
	}
	if b.HasLayer() {
		t.Fatal("expected no layer before the stylesheet applies")
	}
	sheet, err := css.ParseStylesheet(`.raised { position: relative; z-index: 2 }`)
	if err != nil {
		t.Fatal(err)
	}
	d.SetStylesheets(sheet)
	if !b.HasLayer() || !d.Tree().IsStackingContext(b.Layer()) {
		t.Error("expected the stylesheet to create a stacking context layer")
	}
}

func TestSetTextUpdatesVisibleContent(t *testing.T) {
	d := newDoc(t)
	b := add(t, d, d.Root, "label", "position: relative", 0, 0, 50, 20)
	if d.Tree().HasVisibleContent(b.Layer()) {
		t.Fatal("expected an empty box to paint nothing")
	}
	if err := d.SetText(b, "hello"); err != nil {
		t.Fatal(err)
	}
	if !d.Tree().HasVisibleContent(b.Layer()) {
		t.Error("expected text to make the layer visible")
	}
	if !d.Tree().NeedsRepaint(b.Layer()) {
		t.Error("expected the layer to need a repaint")
	}
	if err := d.SetText(NewBox("p", ""), "x"); !errors.Is(err, ErrNotInDocument) {
		t.Errorf("expected ErrNotInDocument, got %v", err)
	}
}

func TestInFlowBoxesHitAboveNegativeLayers(t *testing.T) {
	d := newDoc(t)
	neg := add(t, d, d.Root, "neg", "position: absolute; z-index: -1; background: lime", 0, 0, 40, 40)
	flow := add(t, d, d.Root, "flow", "background: yellow", 20, 20, 40, 40)

	if got, _, _ := d.HitTest(10, 10); got != neg {
		t.Errorf("expected neg at (10,10), got %s", got.DebugName())
	}
	got, r, _ := d.HitTest(30, 30)
	if got != flow || r.Phase != paint.HitTestForeground {
		t.Errorf("expected flow in the foreground phase, got %s (%v)", got.DebugName(), r.Phase)
	}
}
