// Package geom holds the small geometry vocabulary shared by the layer tree,
// the layout boxes and the painter.
package geom

import (
	"image"
	"math"
)

// Point is a 2D coordinate.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size represents dimensions (width and height)
type Size struct {
	Width  float64
	Height float64
}

// Rect represents a rectangular region
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// infinite is large enough to contain any document coordinate while keeping
// MaxX/MaxY finite.
const infinite = 1 << 40

// InfiniteRect returns the rect used for "no clip".
func InfiniteRect() Rect {
	return Rect{X: -infinite / 2, Y: -infinite / 2, Width: infinite, Height: infinite}
}

// RectFrom builds a rect from an origin and a size.
func RectFrom(origin Point, size Size) Rect {
	return Rect{X: origin.X, Y: origin.Y, Width: size.Width, Height: size.Height}
}

func (r Rect) MaxX() float64 { return r.X + r.Width }
func (r Rect) MaxY() float64 { return r.Y + r.Height }

func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// IsEmpty reports whether the rect covers no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// IsInfinite reports whether r is the "no clip" rect.
func (r Rect) IsInfinite() bool {
	return r == InfiniteRect()
}

// Contains reports whether p is inside r. The right and bottom edges are
// exclusive so adjacent rects never both contain a point.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.MaxX() && p.Y >= r.Y && p.Y < r.MaxY()
}

// Intersects reports whether the two rects overlap with non-zero area.
func (r Rect) Intersects(o Rect) bool {
	return !r.Intersect(o).IsEmpty()
}

// Intersect returns the overlap of r and o, or the zero Rect if they do not
// overlap.
func (r Rect) Intersect(o Rect) Rect {
	if r.IsInfinite() {
		return o
	}
	if o.IsInfinite() {
		return r
	}
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.MaxX(), o.MaxX())
	y1 := math.Min(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Union returns the smallest rect containing both rects. Empty rects are
// ignored.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.MaxX(), o.MaxX())
	y1 := math.Max(r.MaxY(), o.MaxY())
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Translate returns r moved by the offset d.
func (r Rect) Translate(d Point) Rect {
	if r.IsInfinite() {
		return r
	}
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, Width: r.Width, Height: r.Height}
}

// Enclosing returns the smallest integer rectangle covering r.
func (r Rect) Enclosing() image.Rectangle {
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.MaxX())), int(math.Ceil(r.MaxY())),
	)
}
