package geom

import (
	"math"

	"github.com/golang/geo/r2"
)

// ArePolygonsValid reports whether every polygon can safely enter the
// boolean and triangulation stages. A polygon is rejected when it has
// fewer than 3 vertices, repeats a vertex on consecutive positions
// (closing edge included), has no area, or crosses itself. A single bad
// polygon invalidates the whole set.
func ArePolygonsValid(polygons []Polygon) bool {
	for _, poly := range polygons {
		if !isPolygonValid(poly) {
			return false
		}
	}
	return true
}

func isPolygonValid(poly Polygon) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		if nearlyEqual(poly[i], poly[(i+1)%n], SmallNumber) {
			return false
		}
	}
	if math.Abs(SignedArea(poly)) <= KindaSmallNumber*KindaSmallNumber {
		return false
	}
	return !selfIntersects(poly)
}

// selfIntersects reports whether two non-adjacent edges properly cross.
// Touching at a vertex is allowed.
func selfIntersects(poly Polygon) bool {
	n := len(poly)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a0, a1 := poly[i], poly[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if segmentsCross(a0, a1, poly[j], poly[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

// segmentsCross reports a proper crossing of segments ab and cd, i.e. an
// intersection strictly inside both.
func segmentsCross(a, b, c, d r2.Point) bool {
	eps := SmallNumber * math.Max(1, math.Max(b.Sub(a).Norm(), d.Sub(c).Norm()))
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)
	return ((d1 > eps && d2 < -eps) || (d1 < -eps && d2 > eps)) &&
		((d3 > eps && d4 < -eps) || (d3 < -eps && d4 > eps))
}
