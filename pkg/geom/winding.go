package geom

import "github.com/golang/geo/r2"

// IsPolygonWindingCCW reports whether the ring winds counter-clockwise.
// Rings with fewer than 3 points are treated as CCW.
func IsPolygonWindingCCW(points []r2.Point) bool {
	if len(points) < 3 {
		return true
	}
	return SignedArea(points) > 0
}

// CorrectPolygonWinding returns a copy of points wound CW when negative is
// set and CCW otherwise. Fewer than 3 points yields an empty polygon.
func CorrectPolygonWinding(points []r2.Point, negative bool) Polygon {
	if len(points) < 3 {
		return Polygon{}
	}
	if IsPolygonWindingCCW(points) == negative {
		return Reverse(points)
	}
	out := make(Polygon, len(points))
	copy(out, points)
	return out
}
