package geom

import (
	"math"

	"github.com/golang/geo/r2"
)

// RemoveCollinearPoints drops points that sit on the straight line between
// their neighbours. The first point is always kept.
func RemoveCollinearPoints(points []r2.Point) Polygon {
	out := make(Polygon, len(points))
	copy(out, points)
	if len(out) < 3 {
		return out
	}
	for i := 1; i < len(out); {
		a, b, c := out[i-1], out[i], out[(i+1)%len(out)]
		if math.Abs(orient(a, b, c)) < KindaSmallNumber {
			out = append(out[:i], out[i+1:]...)
			continue
		}
		i++
	}
	return out
}

// SimplifyPoints runs Douglas-Peucker over the chain from the first to the
// last point, dropping points closer than epsilon to the simplified line.
func SimplifyPoints(points []r2.Point, epsilon float64) Polygon {
	if len(points) < 3 {
		out := make(Polygon, len(points))
		copy(out, points)
		return out
	}
	s := simplifier{
		points:  points,
		omit:    make([]bool, len(points)),
		epsSqr:  epsilon * epsilon,
		removed: 0,
	}
	s.run(0, len(points)-1)

	out := make(Polygon, 0, len(points)-s.removed)
	for i, p := range points {
		if !s.omit[i] {
			out = append(out, p)
		}
	}
	return out
}

type simplifier struct {
	points  []r2.Point
	omit    []bool
	epsSqr  float64
	removed int
}

func (s *simplifier) run(first, last int) {
	if last-first < 2 {
		return
	}
	v1, v2 := s.points[first], s.points[last]
	line := v2.Sub(v1)
	lineSqr := line.Dot(line)

	farthest := -1
	farthestSqr := -1.0
	for i := first + 1; i < last; i++ {
		p := s.points[i]
		closest := v1
		if lineSqr > 0 {
			t := math.Max(0, math.Min(1, p.Sub(v1).Dot(line)/lineSqr))
			closest = v1.Add(line.Mul(t))
		}
		if d := distSq(closest, p); d > farthestSqr {
			farthestSqr = d
			farthest = i
		}
	}

	if farthestSqr > s.epsSqr {
		s.run(first, farthest)
		s.run(farthest, last)
		return
	}
	for i := first + 1; i < last; i++ {
		s.omit[i] = true
		s.removed++
	}
}
