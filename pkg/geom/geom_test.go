package geom

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRectIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 50, Y: 25, Width: 100, Height: 50}

	got := a.Intersect(b)
	want := Rect{X: 50, Y: 25, Width: 50, Height: 50}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	if !a.Intersect(Rect{X: 200, Y: 200, Width: 5, Height: 5}).IsEmpty() {
		t.Error("Disjoint rects should have an empty intersection")
	}

	if a.Intersect(InfiniteRect()) != a {
		t.Error("Intersecting with the infinite rect should be a no-op")
	}
}

func TestRectContainsEdges(t *testing.T) {
	left := Rect{X: 0, Y: 0, Width: 100, Height: 10}
	right := Rect{X: 100, Y: 0, Width: 100, Height: 10}
	p := Pt(100, 5)
	if left.Contains(p) == right.Contains(p) {
		t.Errorf("Exactly one of two adjacent rects should contain %v", p)
	}
}

func TestRectEnclosing(t *testing.T) {
	r := Rect{X: 0.5, Y: 1.25, Width: 10, Height: 10}
	got := r.Enclosing()
	if got.Min.X != 0 || got.Min.Y != 1 || got.Max.X != 11 || got.Max.Y != 12 {
		t.Errorf("Unexpected enclosing rect %v", got)
	}
}

func TestTransformAffineAnd3D(t *testing.T) {
	if !Translate(10, 20, 0).IsAffine() {
		t.Error("2D translation should be affine")
	}
	if !Translate(0, 0, 5).Is3D() {
		t.Error("translateZ should be 3D")
	}
	if !RotateX(0.3).Is3D() {
		t.Error("rotateX should be 3D")
	}
	if !RotateZ(0.3).IsAffine() {
		t.Error("rotateZ should be affine")
	}
}

func TestTransformProjectPointRoundTrip(t *testing.T) {
	tr := Translate(30, 40, 0).Multiply(RotateZ(math.Pi / 2)).Multiply(Scale(2, 2, 1))
	local := Pt(5, 7)
	screen := tr.MapPoint(local)

	back, ok := tr.ProjectPoint(screen)
	if !ok {
		t.Fatal("Expected projection to succeed")
	}
	if !near(back.X, local.X) || !near(back.Y, local.Y) {
		t.Errorf("Expected %v, got %v", local, back)
	}
}

func TestTransformProjectEdgeOnPlane(t *testing.T) {
	if _, ok := RotateY(math.Pi / 2).ProjectPoint(Pt(1, 1)); ok {
		t.Error("An edge-on plane should not be projectable")
	}
}

func TestTransformBackFace(t *testing.T) {
	if Identity().IsBackFaceVisible() {
		t.Error("Identity should show the front face")
	}
	if !RotateY(math.Pi).IsBackFaceVisible() {
		t.Error("rotateY(180deg) should show the back face")
	}
}

func TestTransformMapRect(t *testing.T) {
	r := RotateZ(math.Pi / 2).MapRect(Rect{X: 0, Y: 0, Width: 10, Height: 20})
	if !near(r.X, -20) || !near(r.Y, 0) || !near(r.Width, 20) || !near(r.Height, 10) {
		t.Errorf("Unexpected mapped rect %+v", r)
	}
}

func TestTransformFlatten(t *testing.T) {
	a, b, c, d, e, f := Affine(1, 2, 3, 4, 5, 6).Flatten()
	if a != 1 || b != 2 || c != 3 || d != 4 || e != 5 || f != 6 {
		t.Errorf("Flatten mismatch: %v %v %v %v %v %v", a, b, c, d, e, f)
	}
}
