package geom

import (
	"math"

	clipper "github.com/ctessum/go.clipper"
	"github.com/golang/geo/r2"
)

// clipScale maps plane units onto the integer grid the clipper works on.
// Sprite-space coordinates are pixel counts divided by a pixels-per-unit
// factor, so a decimal scale keeps them exact.
const clipScale = 1e6

// Region is a CCW outer ring with the CW holes cut out of it.
type Region struct {
	Outer Polygon
	Holes []Polygon
}

// Area returns the covered area: the outer ring minus its holes.
func (r Region) Area() float64 {
	sum := SignedArea(r.Outer)
	for _, hole := range r.Holes {
		sum -= math.Abs(SignedArea(hole))
	}
	return sum
}

// ReducePolygons merges overlapping additive polygons and cuts the
// subtractive ones out of them. negative[i] tags polygons[i] as
// subtractive; missing flags count as additive.
//
// The result covers exactly union(additive) - union(subtractive). Each
// region is an outer ring plus the holes left inside it; islands inside a
// hole come back as regions of their own. Every input is filled with the
// nonzero rule after its winding is normalised, so the winding of the
// inputs does not have to agree with their tags.
func ReducePolygons(polygons []Polygon, negative []bool) []Region {
	var additive, subtractive []Polygon
	for i, poly := range polygons {
		if len(poly) < 3 {
			continue
		}
		if i < len(negative) && negative[i] {
			subtractive = append(subtractive, poly)
		} else {
			additive = append(additive, poly)
		}
	}
	if len(additive) == 0 {
		return nil
	}

	// Nothing to merge: keep the rings exactly as authored.
	if len(subtractive) == 0 && boundsDisjoint(additive) {
		out := make([]Region, 0, len(additive))
		for _, poly := range additive {
			out = append(out, Region{Outer: CorrectPolygonWinding(poly, false)})
		}
		return out
	}

	c := clipper.NewClipper(clipper.IoPreserveCollinear)
	c.AddPaths(toPaths(additive), clipper.PtSubject, true)
	op := clipper.CtUnion
	if len(subtractive) > 0 {
		c.AddPaths(toPaths(subtractive), clipper.PtClip, true)
		op = clipper.CtDifference
	}
	tree, ok := c.Execute2(op, clipper.PftNonZero, clipper.PftNonZero)
	if !ok || tree == nil {
		return nil
	}
	return collectRegions(tree.Childs(), nil)
}

// collectRegions walks the outer nodes of a clip tree. The children of an
// outer node are its holes and their children are outer nodes again.
func collectRegions(nodes []*clipper.PolyNode, out []Region) []Region {
	for _, node := range nodes {
		outer := fromPath(node.Contour())
		if len(outer) >= 3 {
			region := Region{Outer: CorrectPolygonWinding(outer, false)}
			for _, hole := range node.Childs() {
				if ring := fromPath(hole.Contour()); len(ring) >= 3 {
					region.Holes = append(region.Holes, CorrectPolygonWinding(ring, true))
				}
			}
			out = append(out, region)
		}
		for _, hole := range node.Childs() {
			out = collectRegions(hole.Childs(), out)
		}
	}
	return out
}

func boundsDisjoint(polygons []Polygon) bool {
	rects := make([]r2.Rect, len(polygons))
	for i, poly := range polygons {
		rects[i] = Bounds(poly)
	}
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			if rects[i].Intersects(rects[j]) {
				return false
			}
		}
	}
	return true
}

// toPaths converts rings to clipper paths, each wound CCW so that the
// nonzero rule unions overlapping members of the same set.
func toPaths(polygons []Polygon) clipper.Paths {
	paths := make(clipper.Paths, 0, len(polygons))
	for _, poly := range polygons {
		ring := CorrectPolygonWinding(poly, false)
		path := make(clipper.Path, len(ring))
		for i, p := range ring {
			path[i] = &clipper.IntPoint{X: clipper.Round(p.X * clipScale), Y: clipper.Round(p.Y * clipScale)}
		}
		paths = append(paths, path)
	}
	return paths
}

func fromPath(path clipper.Path) Polygon {
	ring := make(Polygon, len(path))
	for i, p := range path {
		ring[i] = r2.Point{X: float64(p.X) / clipScale, Y: float64(p.Y) / clipScale}
	}
	return dropConsecutiveDuplicates(ring)
}

func dropConsecutiveDuplicates(ring Polygon) Polygon {
	out := make(Polygon, 0, len(ring))
	for _, p := range ring {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

func distSq(a, b r2.Point) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}
