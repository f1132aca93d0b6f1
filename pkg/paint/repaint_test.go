package paint

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNeedsRepaintStopsAtCompositedLayer(t *testing.T) {
	tt := newTestTree(200, 200)
	tt.add("root", box("accel", 0, 0, 100, 100, StyleFlags{StackingContext: true, WillChangeTransform: true}))
	tt.add("accel", box("leaf", 0, 0, 10, 10, StyleFlags{Position: PositionRelative}))
	// Clear of accel, so nothing overlaps a composited layer.
	tt.add("root", box("plain", 150, 150, 10, 10, StyleFlags{Position: PositionRelative}))
	tt.UpdateCompositing(nil)
	tt.ClearNeedsRepaintRecursively(tt.Root())
	if tt.IsComposited(tt.ids["plain"]) {
		t.Fatalf("Expected plain to paint into the root, got reasons %v", tt.CompositingReasons(tt.ids["plain"]))
	}

	tt.SetNeedsRepaint(tt.ids["leaf"])
	if !tt.NeedsRepaint(tt.ids["leaf"]) || !tt.NeedsRepaint(tt.ids["accel"]) {
		t.Error("Expected the leaf and its backing to need repaint")
	}
	if tt.NeedsRepaint(tt.Root()) {
		t.Error("Expected the mark to stop at the composited layer")
	}

	tt.SetNeedsRepaint(tt.ids["plain"])
	if !tt.NeedsRepaint(tt.Root()) {
		t.Error("Expected a non-composited layer to mark the root")
	}

	tt.ClearNeedsRepaintRecursively(tt.Root())
	for name, id := range tt.ids {
		if tt.NeedsRepaint(id) {
			t.Errorf("Expected %s to be clean", name)
		}
	}
}

func TestSetLoggerReceivesDebugOutput(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	tt := newTestTree(200, 200)
	tt.add("root", box("a", 0, 0, 10, 10, positioned(1)))
	tt.PositiveZOrderList(tt.Root())

	entries := logs.FilterMessage("rebuilt z-order lists").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one rebuild entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["positive"]; got != int64(1) {
		t.Errorf("Expected positive=1, got %v", got)
	}
}
