// Package geom provides the 2D polygon pipeline used for sprite render and
// collision geometry and for terrain interior fill: winding correction,
// validation, boolean reduction of additive/subtractive shapes,
// triangulation and triangle clean-up.
package geom

import (
	"math"

	"github.com/golang/geo/r2"
)

// Tolerances used by area and colinearity comparisons.
const (
	KindaSmallNumber = 1e-4
	SmallNumber      = 1e-8
)

// Polygon is an implicitly closed ring of points.
type Polygon []r2.Point

// ShapePolygon is a polygon tagged with its contribution to a shape.
// Negative polygons remove area from the additive ones they overlap.
type ShapePolygon struct {
	Vertices Polygon
	Negative bool
}

// ShapeCollection is the input of Triangulate.
type ShapeCollection struct {
	Polygons []ShapePolygon

	// AvoidVertexMerging keeps colinear vertices and skips redundant
	// triangle removal.
	AvoidVertexMerging bool
}

// TriangleList is a flat list of points, three per triangle.
type TriangleList []r2.Point

// Count returns the number of triangles.
func (t TriangleList) Count() int {
	return len(t) / 3
}

// Triangle returns the i-th triangle.
func (t TriangleList) Triangle(i int) (a, b, c r2.Point) {
	return t[i*3], t[i*3+1], t[i*3+2]
}

// Area returns the summed signed area of all triangles.
func (t TriangleList) Area() float64 {
	var sum float64
	for i := 0; i+2 < len(t); i += 3 {
		sum += triangleArea(t[i], t[i+1], t[i+2])
	}
	return sum
}

// SignedArea returns the shoelace area of a closed ring. Positive means CCW.
func SignedArea(points []r2.Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += points[i].Cross(points[(i+1)%n])
	}
	return sum * 0.5
}

// Bounds returns the axis-aligned rectangle enclosing points.
func Bounds(points []r2.Point) r2.Rect {
	if len(points) == 0 {
		return r2.EmptyRect()
	}
	return r2.RectFromPoints(points...)
}

// ContainsPoint reports whether p lies inside the ring (even-odd rule).
// Points exactly on the boundary may go either way.
func ContainsPoint(points []r2.Point, p r2.Point) bool {
	inside := false
	n := len(points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := points[i], points[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Reverse returns a reversed copy of points.
func Reverse(points []r2.Point) Polygon {
	out := make(Polygon, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}

// triangleArea returns the signed area of abc.
func triangleArea(a, b, c r2.Point) float64 {
	return 0.5 * b.Sub(a).Cross(c.Sub(a))
}

// orient returns twice the signed area of abc.
func orient(a, b, c r2.Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

func nearlyEqual(a, b r2.Point, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance && math.Abs(a.Y-b.Y) <= tolerance
}
