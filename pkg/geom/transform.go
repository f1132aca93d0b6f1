package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a 4x4 homogeneous transformation applied to column vectors.
// The zero value is not a valid transform; use Identity.
type Transform struct {
	m mgl64.Mat4
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{m: mgl64.Ident4()}
}

// Translate returns a translation by (x, y, z).
func Translate(x, y, z float64) Transform {
	return Transform{m: mgl64.Translate3D(x, y, z)}
}

// Scale returns a scale by (x, y, z).
func Scale(x, y, z float64) Transform {
	return Transform{m: mgl64.Scale3D(x, y, z)}
}

// RotateZ returns a rotation in the xy plane (angle in radians).
func RotateZ(angle float64) Transform {
	return Transform{m: mgl64.HomogRotate3DZ(angle)}
}

// RotateX returns a rotation about the x axis (angle in radians).
func RotateX(angle float64) Transform {
	return Transform{m: mgl64.HomogRotate3DX(angle)}
}

// RotateY returns a rotation about the y axis (angle in radians).
func RotateY(angle float64) Transform {
	return Transform{m: mgl64.HomogRotate3DY(angle)}
}

// Perspective returns the CSS perspective(d) matrix.
func Perspective(d float64) Transform {
	m := mgl64.Ident4()
	if d != 0 {
		m[2*4+3] = -1 / d
	}
	return Transform{m: m}
}

// Affine returns the 2D matrix(a, b, c, d, e, f) as a 4x4 transform.
func Affine(a, b, c, d, e, f float64) Transform {
	m := mgl64.Ident4()
	m[0], m[1] = a, b
	m[4], m[5] = c, d
	m[12], m[13] = e, f
	return Transform{m: m}
}

// Multiply returns t*o: o is applied first, then t.
func (t Transform) Multiply(o Transform) Transform {
	return Transform{m: t.m.Mul4(o.m)}
}

// At returns the element at (row, col).
func (t Transform) At(row, col int) float64 {
	return t.m.At(row, col)
}

// IsIdentity reports whether t is (approximately) the identity.
func (t Transform) IsIdentity() bool {
	return t.m.ApproxEqual(mgl64.Ident4())
}

// IsAffine reports whether t is a flat 2D transform: no z contribution, no
// perspective and no z translation.
func (t Transform) IsAffine() bool {
	m := t.m
	return m.At(2, 0) == 0 && m.At(3, 0) == 0 &&
		m.At(2, 1) == 0 && m.At(3, 1) == 0 &&
		m.At(0, 2) == 0 && m.At(1, 2) == 0 &&
		m.At(2, 2) == 1 && m.At(3, 2) == 0 &&
		m.At(2, 3) == 0 && m.At(3, 3) == 1
}

// Is3D is the negation of IsAffine.
func (t Transform) Is3D() bool {
	return !t.IsAffine()
}

// IsInvertible reports whether t has a non-zero determinant.
func (t Transform) IsInvertible() bool {
	return math.Abs(t.m.Det()) > 1e-12
}

// Inverse returns the inverse of t and whether it exists.
func (t Transform) Inverse() (Transform, bool) {
	if !t.IsInvertible() {
		return Identity(), false
	}
	return Transform{m: t.m.Inv()}, true
}

// MapPoint3 maps (x, y, z) and returns the transformed point after the
// homogeneous divide.
func (t Transform) MapPoint3(x, y, z float64) (float64, float64, float64) {
	v := t.m.Mul4x1(mgl64.Vec4{x, y, z, 1})
	w := v.W()
	if w == 0 || w == 1 {
		return v.X(), v.Y(), v.Z()
	}
	return v.X() / w, v.Y() / w, v.Z() / w
}

// MapPoint maps a point on the z=0 plane and drops the resulting z.
func (t Transform) MapPoint(p Point) Point {
	x, y, _ := t.MapPoint3(p.X, p.Y, 0)
	return Point{X: x, Y: y}
}

// MapRect returns the bounding box of r's four mapped corners.
func (t Transform) MapRect(r Rect) Rect {
	if r.IsInfinite() {
		return r
	}
	corners := [4]Point{
		{r.X, r.Y}, {r.MaxX(), r.Y}, {r.X, r.MaxY()}, {r.MaxX(), r.MaxY()},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		m := t.MapPoint(c)
		minX, maxX = math.Min(minX, m.X), math.Max(maxX, m.X)
		minY, maxY = math.Min(minY, m.Y), math.Max(maxY, m.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ProjectPoint casts a ray parallel to the z axis through p (in the
// destination space of t) and returns where it meets t's source z=0 plane.
// It reports false when the plane is edge-on or the hit lies behind the
// viewer.
func (t Transform) ProjectPoint(p Point) (Point, bool) {
	inv, ok := t.Inverse()
	if !ok {
		return Point{}, false
	}
	m := inv.m
	if math.Abs(m.At(2, 2)) < 1e-9 {
		return Point{}, false
	}
	z := -(m.At(2, 0)*p.X + m.At(2, 1)*p.Y + m.At(2, 3)) / m.At(2, 2)
	v := m.Mul4x1(mgl64.Vec4{p.X, p.Y, z, 1})
	w := v.W()
	if w <= 0 {
		return Point{}, false
	}
	return Point{X: v.X() / w, Y: v.Y() / w}, true
}

// IsBackFaceVisible reports whether the back of the z=0 plane faces the
// viewer after t is applied.
func (t Transform) IsBackFaceVisible() bool {
	inv, ok := t.Inverse()
	if !ok {
		return false
	}
	return inv.m.At(2, 2) < 0
}

// Flatten returns the 2D affine part (a, b, c, d, e, f) as used by
// matrix(a, b, c, d, e, f).
func (t Transform) Flatten() (a, b, c, d, e, f float64) {
	m := t.m
	return m.At(0, 0), m.At(1, 0), m.At(0, 1), m.At(1, 1), m.At(0, 3), m.At(1, 3)
}
