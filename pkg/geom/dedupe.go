package geom

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
)

// RemoveRedundantTriangles drops triangles with (near) zero area and exact
// repeats of a triangle already kept. Surviving triangles keep their order
// and winding.
func RemoveRedundantTriangles(triangles TriangleList) TriangleList {
	out := make(TriangleList, 0, len(triangles))
	seen := make(map[[3]r2.Point]bool)
	for i := 0; i+2 < len(triangles); i += 3 {
		a, b, c := triangles[i], triangles[i+1], triangles[i+2]
		if math.Abs(triangleArea(a, b, c)) <= KindaSmallNumber*KindaSmallNumber {
			continue
		}
		key := triangleKey(a, b, c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a, b, c)
	}
	return out
}

// triangleKey orders the corners so the same triangle maps to one key
// regardless of its starting vertex or winding.
func triangleKey(a, b, c r2.Point) [3]r2.Point {
	key := [3]r2.Point{a, b, c}
	sort.Slice(key[:], func(i, j int) bool {
		if key[i].X != key[j].X {
			return key[i].X < key[j].X
		}
		return key[i].Y < key[j].Y
	})
	return key
}
