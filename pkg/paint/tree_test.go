package paint

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddChildOrder(t *testing.T) {
	tt := newTestTree(100, 100)
	a := tt.add("root", box("a", 0, 0, 10, 10, StyleFlags{}))
	b := tt.add("root", box("b", 0, 0, 10, 10, StyleFlags{}))

	c := tt.CreateLayer(box("c", 0, 0, 10, 10, StyleFlags{}))
	tt.AddChild(tt.Root(), c, b)

	if diff := cmp.Diff([]string{"a", "c", "b"}, tt.names(tt.Children(tt.Root()))); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	if tt.PreviousSibling(c) != a || tt.NextSibling(c) != b {
		t.Errorf("Expected c between a and b, got prev=%v next=%v", tt.PreviousSibling(c), tt.NextSibling(c))
	}

	tt.RemoveChild(tt.Root(), c)
	if tt.Parent(c) != (LayerID{}) {
		t.Errorf("Expected removed layer to be detached, parent=%v", tt.Parent(c))
	}
	if diff := cmp.Diff([]string{"a", "b"}, tt.names(tt.Children(tt.Root()))); diff != "" {
		t.Errorf("children after removal mismatch (-want +got):\n%s", diff)
	}
	if tt.FirstChild(tt.Root()) != a || tt.LastChild(tt.Root()) != b {
		t.Error("first/last links not updated after removal")
	}
}

func TestAddChildUsageErrors(t *testing.T) {
	tt := newTestTree(100, 100)
	a := tt.add("root", box("a", 0, 0, 10, 10, StyleFlags{}))
	b := tt.add("a", box("b", 0, 0, 10, 10, StyleFlags{}))

	expectUsageError(t, "already parented", func() { tt.AddChild(tt.Root(), b, LayerID{}) })

	tt.RemoveChild(tt.Root(), a)
	expectUsageError(t, "cycle", func() { tt.AddChild(b, a, LayerID{}) })
	expectUsageError(t, "root insertion", func() { tt.AddChild(a, tt.Root(), LayerID{}) })
	expectUsageError(t, "destroy attached", func() { tt.Destroy(b) })
}

func TestDestroyInvalidatesHandles(t *testing.T) {
	tt := newTestTree(100, 100)
	a := tt.add("root", box("a", 0, 0, 10, 10, StyleFlags{}))
	b := tt.add("a", box("b", 0, 0, 10, 10, StyleFlags{}))

	tt.RemoveChild(tt.Root(), a)
	tt.Destroy(a)

	if tt.Contains(a) || tt.Contains(b) {
		t.Fatal("Expected destroyed subtree handles to be invalid")
	}
	if tt.Len() != 1 {
		t.Errorf("Expected only the root to remain, got %d layers", tt.Len())
	}

	// Slots are reused but the old handle stays invalid.
	c := tt.add("root", box("c", 0, 0, 10, 10, StyleFlags{}))
	if c == a || c == b {
		t.Errorf("Expected a fresh handle, got %v", c)
	}
	expectUsageError(t, "stale handle", func() { tt.Parent(a) })
}

func TestRemoveOnlyThisLayer(t *testing.T) {
	tt := newTestTree(100, 100)
	tt.add("root", box("first", 0, 0, 10, 10, StyleFlags{}))
	mid := tt.add("root", box("mid", 5, 5, 10, 10, StyleFlags{}))
	tt.add("mid", box("x", 0, 0, 10, 10, StyleFlags{}))
	tt.add("mid", box("y", 0, 0, 10, 10, StyleFlags{}))
	tt.add("root", box("last", 0, 0, 10, 10, StyleFlags{}))

	tt.RemoveOnlyThisLayer(mid)

	if tt.Contains(mid) {
		t.Error("Expected removed layer to be destroyed")
	}
	if diff := cmp.Diff([]string{"first", "x", "y", "last"}, tt.names(tt.Children(tt.Root()))); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestDestroyNotifiesBackend(t *testing.T) {
	tt := newTestTree(100, 100)
	a := tt.add("root", box("a", 0, 0, 10, 10, StyleFlags{WillChangeTransform: true, StackingContext: true}))
	b := tt.add("a", box("b", 0, 0, 10, 10, StyleFlags{}))

	backend := &recordingBackend{}
	tt.UpdateCompositing(backend)

	tt.RemoveChild(tt.Root(), a)
	tt.Destroy(a)

	if diff := cmp.Diff([]LayerID{b, a}, backend.removed, cmp.AllowUnexported(LayerID{})); diff != "" {
		t.Errorf("removed layers mismatch (-want +got):\n%s", diff)
	}
}

func TestDump(t *testing.T) {
	tt := newTestTree(100, 100)
	tt.add("root", box("child", 10, 20, 30, 40, positioned(2)))
	tt.UpdateCompositing(nil)

	var buf bytes.Buffer
	if err := tt.Dump(&buf); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "root") || !strings.Contains(lines[0], "composited(root)") {
		t.Errorf("Unexpected root line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  ") || !strings.Contains(lines[1], "child (10,20 30x40)") || !strings.Contains(lines[1], "z=2") {
		t.Errorf("Unexpected child line: %q", lines[1])
	}
}
