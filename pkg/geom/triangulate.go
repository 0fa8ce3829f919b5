package geom

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/rclancey/earcut"
)

// colinearTolerance bounds the sine of the turn angle under which three
// vertices count as lying on a straight line.
const colinearTolerance = 1e-7

// TriangulatePoly ear-clips a simple CCW polygon into triangles.
//
// With keepColinear unset, vertices lying on a straight run between their
// neighbours are dropped first, which lowers the triangle count without
// changing the covered area. Fewer than 3 vertices or a non-positive area
// yield an empty list.
func TriangulatePoly(polygon []r2.Point, keepColinear bool) TriangleList {
	if len(polygon) < 3 || SignedArea(polygon) <= SmallNumber {
		return nil
	}

	verts := dropConsecutiveDuplicates(Polygon(polygon))
	out := make(TriangleList, 0, max(len(verts)-2, 1)*3)
	cursor := 0
	for len(verts) >= 3 {
		if !keepColinear {
			verts = removeColinearVertices(verts)
			if len(verts) < 3 {
				break
			}
		}
		if len(verts) == 3 {
			if isConvexCorner(verts[0], verts[1], verts[2]) {
				out = append(out, verts[0], verts[1], verts[2])
			}
			break
		}

		ear := findEar(verts, cursor)
		if ear < 0 {
			if math.Abs(SignedArea(verts)) <= SmallNumber {
				break
			}
			rest := earcutRing(verts, nil)
			if rest == nil {
				return nil
			}
			out = append(out, rest...)
			break
		}

		n := len(verts)
		out = append(out, verts[(ear+n-1)%n], verts[ear], verts[(ear+1)%n])
		verts = append(verts[:ear], verts[ear+1:]...)
		cursor = ear
	}
	return out
}

// isConvexCorner reports a strict left turn at b.
func isConvexCorner(a, b, c r2.Point) bool {
	ab := b.Sub(a).Norm()
	bc := c.Sub(b).Norm()
	return orient(a, b, c) > colinearTolerance*ab*bc
}

func isColinearCorner(a, b, c r2.Point) bool {
	ab := b.Sub(a).Norm()
	bc := c.Sub(b).Norm()
	return math.Abs(orient(a, b, c)) <= colinearTolerance*ab*bc
}

// removeColinearVertices drops vertices whose neighbours form a straight
// line through them, repeating until none are left.
func removeColinearVertices(verts Polygon) Polygon {
	for changed := true; changed && len(verts) >= 3; {
		changed = false
		for i := 0; i < len(verts) && len(verts) >= 3; {
			n := len(verts)
			if isColinearCorner(verts[(i+n-1)%n], verts[i], verts[(i+1)%n]) {
				verts = append(verts[:i], verts[i+1:]...)
				changed = true
				continue
			}
			i++
		}
	}
	return verts
}

// findEar returns the index of a clippable vertex, scanning from start, or
// -1 when there is none.
func findEar(verts Polygon, start int) int {
	n := len(verts)
	for k := 0; k < n; k++ {
		i := (start + k) % n
		prev, next := (i+n-1)%n, (i+1)%n
		a, b, c := verts[prev], verts[i], verts[next]
		if !isConvexCorner(a, b, c) {
			continue
		}
		if earIsEmpty(verts, prev, i, next) {
			return i
		}
	}
	return -1
}

// earIsEmpty reports whether no other reflex or flat vertex touches the
// triangle at prev, i, next. Vertices coinciding with a corner are
// ignored so rings touching themselves at a vertex can be clipped.
func earIsEmpty(verts Polygon, prev, i, next int) bool {
	n := len(verts)
	a, b, c := verts[prev], verts[i], verts[next]
	for j := 0; j < n; j++ {
		if j == prev || j == i || j == next {
			continue
		}
		p := verts[j]
		if p == a || p == b || p == c {
			continue
		}
		if isConvexCorner(verts[(j+n-1)%n], p, verts[(j+1)%n]) {
			continue
		}
		if pointInTriangle(p, a, b, c) {
			return false
		}
	}
	return true
}

// pointInTriangle is an inclusive test for a CCW triangle.
func pointInTriangle(p, a, b, c r2.Point) bool {
	eps := SmallNumber * math.Max(1, math.Max(b.Sub(a).Norm(), c.Sub(a).Norm()))
	return orient(a, b, p) >= -eps && orient(b, c, p) >= -eps && orient(c, a, p) >= -eps
}

// TriangulateRegion triangulates a region produced by ReducePolygons.
// Regions without holes go through the ear clipper; holes are handed to
// earcut together with the outer ring. keepColinear has the same meaning
// as for TriangulatePoly, except that earcut itself skips exactly
// colinear vertices of rings with holes.
func TriangulateRegion(region Region, keepColinear bool) TriangleList {
	if len(region.Holes) == 0 {
		return TriangulatePoly(region.Outer, keepColinear)
	}
	if len(region.Outer) < 3 || region.Area() <= SmallNumber {
		return nil
	}

	prepare := func(ring Polygon) Polygon {
		ring = dropConsecutiveDuplicates(ring)
		if !keepColinear {
			ring = removeColinearVertices(ring)
		}
		return ring
	}
	verts := prepare(region.Outer)
	if len(verts) < 3 {
		return nil
	}
	var holeIndices []int
	for _, hole := range region.Holes {
		ring := prepare(hole)
		if len(ring) < 3 {
			continue
		}
		holeIndices = append(holeIndices, len(verts))
		verts = append(verts, ring...)
	}
	return earcutRing(verts, holeIndices)
}

// earcutRing triangulates verts with earcut. holeIndices mark where each
// hole starts; without them verts is a single ring, which is how the ear
// clipper hands over whatever it could not finish.
func earcutRing(verts Polygon, holeIndices []int) TriangleList {
	coords := make([]float64, 0, len(verts)*2)
	for _, p := range verts {
		coords = append(coords, p.X, p.Y)
	}
	indices, err := earcut.Earcut(coords, holeIndices, 2)
	if err != nil || len(indices)%3 != 0 {
		return nil
	}

	out := make(TriangleList, 0, len(indices))
	for i := 0; i < len(indices); i += 3 {
		a, b, c := verts[indices[i]], verts[indices[i+1]], verts[indices[i+2]]
		switch o := orient(a, b, c); {
		case o == 0:
			continue
		case o < 0:
			b, c = c, b
		}
		out = append(out, a, b, c)
	}
	return out
}
