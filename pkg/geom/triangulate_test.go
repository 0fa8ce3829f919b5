package geom

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
)

// checkTriangles fails when any triangle is degenerate or wound CW.
func checkTriangles(t *testing.T, tris TriangleList) {
	t.Helper()
	if len(tris)%3 != 0 {
		t.Fatalf("triangle list length %d is not a multiple of 3", len(tris))
	}
	for i := 0; i < tris.Count(); i++ {
		a, b, c := tris.Triangle(i)
		if area := triangleArea(a, b, c); area <= 0 {
			t.Errorf("triangle %d (%v %v %v) has area %v, want > 0", i, a, b, c, area)
		}
	}
}

func TestTriangulatePoly_Square(t *testing.T) {
	square := Polygon{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}}

	tris := TriangulatePoly(square, false)
	if tris.Count() != 2 {
		t.Fatalf("expected 2 triangles, got %d", tris.Count())
	}
	if !approx(tris.Area(), 16) {
		t.Errorf("Area() = %v, want 16", tris.Area())
	}
	checkTriangles(t, tris)
}

func TestTriangulatePoly_ConvexCount(t *testing.T) {
	for n := 3; n <= 16; n++ {
		poly := regular(n, 10)
		tris := TriangulatePoly(poly, false)
		if tris.Count() != n-2 {
			t.Errorf("n=%d: expected %d triangles, got %d", n, n-2, tris.Count())
		}
		if !approx(tris.Area(), SignedArea(poly)) {
			t.Errorf("n=%d: Area() = %v, want %v", n, tris.Area(), SignedArea(poly))
		}
		checkTriangles(t, tris)
	}
}

func TestTriangulatePoly_AreaPreserved(t *testing.T) {
	star := make(Polygon, 10)
	for i := range star {
		radius := 10.0
		if i%2 == 1 {
			radius = 4
		}
		angle := math.Pi * float64(i) / 5
		star[i] = r2.Point{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
	}

	tests := map[string]Polygon{
		"l shape": {
			{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 1},
			{X: 1, Y: 1}, {X: 1, Y: 4}, {X: 0, Y: 4},
		},
		"comb": {
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}, {X: 8, Y: 5}, {X: 8, Y: 2},
			{X: 6, Y: 2}, {X: 6, Y: 5}, {X: 4, Y: 5}, {X: 4, Y: 2}, {X: 2, Y: 2},
			{X: 2, Y: 5}, {X: 0, Y: 5},
		},
		"star": star,
		"u turn": {
			{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 6}, {X: 4, Y: 6},
			{X: 4, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 6}, {X: 0, Y: 6},
		},
	}

	for name, poly := range tests {
		t.Run(name, func(t *testing.T) {
			for _, keep := range []bool{false, true} {
				tris := TriangulatePoly(poly, keep)
				if !approx(tris.Area(), SignedArea(poly)) {
					t.Errorf("keep=%v: Area() = %v, want %v", keep, tris.Area(), SignedArea(poly))
				}
				if tris.Count() != len(poly)-2 {
					t.Errorf("keep=%v: expected %d triangles, got %d", keep, len(poly)-2, tris.Count())
				}
				checkTriangles(t, tris)
			}
		})
	}
}

func TestTriangulatePoly_Colinear(t *testing.T) {
	// Square with a vertex in the middle of every side.
	poly := Polygon{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 2},
		{X: 4, Y: 4}, {X: 2, Y: 4}, {X: 0, Y: 4}, {X: 0, Y: 2},
	}

	merged := TriangulatePoly(poly, false)
	if merged.Count() != 2 {
		t.Errorf("keepColinear=false: expected 2 triangles, got %d", merged.Count())
	}
	if !approx(merged.Area(), 16) {
		t.Errorf("keepColinear=false: Area() = %v, want 16", merged.Area())
	}

	kept := TriangulatePoly(poly, true)
	if kept.Count() != 6 {
		t.Errorf("keepColinear=true: expected 6 triangles, got %d", kept.Count())
	}
	if !approx(kept.Area(), 16) {
		t.Errorf("keepColinear=true: Area() = %v, want 16", kept.Area())
	}
	checkTriangles(t, kept)

	used := make(map[r2.Point]bool)
	for _, p := range kept {
		used[p] = true
	}
	for _, p := range poly {
		if !used[p] {
			t.Errorf("expected vertex %v to be kept", p)
		}
	}
}

func TestTriangulatePoly_Degenerate(t *testing.T) {
	tests := map[string]Polygon{
		"empty":      nil,
		"two points": {{X: 0, Y: 0}, {X: 1, Y: 0}},
		"colinear":   {{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
		"cw square":  Reverse(rect(0, 0, 4, 4)),
	}
	for name, poly := range tests {
		t.Run(name, func(t *testing.T) {
			if tris := TriangulatePoly(poly, false); len(tris) != 0 {
				t.Errorf("expected no triangles, got %d", tris.Count())
			}
		})
	}
}

func TestTriangulatePoly_Idempotent(t *testing.T) {
	poly := Polygon{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}, {X: 8, Y: 5}, {X: 8, Y: 2},
		{X: 2, Y: 2}, {X: 2, Y: 5}, {X: 0, Y: 5},
	}
	tris := TriangulatePoly(poly, false)
	for i := 0; i < tris.Count(); i++ {
		a, b, c := tris.Triangle(i)
		again := TriangulatePoly(Polygon{a, b, c}, false)
		if again.Count() != 1 {
			t.Fatalf("triangle %d: expected 1 triangle, got %d", i, again.Count())
		}
		if triangleKey(again[0], again[1], again[2]) != triangleKey(a, b, c) {
			t.Errorf("triangle %d: got %v, want %v", i, again, []r2.Point{a, b, c})
		}
	}
}

func TestTriangulatePoly_DoesNotModifyInput(t *testing.T) {
	poly := Polygon{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}}
	before := append(Polygon(nil), poly...)
	TriangulatePoly(poly, false)
	for i := range poly {
		if poly[i] != before[i] {
			t.Fatalf("input changed at %d: %v, want %v", i, poly[i], before[i])
		}
	}
}

func TestRemoveRedundantTriangles(t *testing.T) {
	a := r2.Point{X: 0, Y: 0}
	b := r2.Point{X: 4, Y: 0}
	c := r2.Point{X: 0, Y: 4}
	d := r2.Point{X: 4, Y: 4}
	flat := r2.Point{X: 8, Y: 0}

	in := TriangleList{
		a, b, c,
		b, d, c,
		a, b, flat, // zero area
		c, a, b, // repeat of the first triangle
	}
	out := RemoveRedundantTriangles(in)
	if out.Count() != 2 {
		t.Fatalf("expected 2 triangles, got %d", out.Count())
	}
	if out.Count() > in.Count() {
		t.Error("triangle count increased")
	}
	want := TriangleList{a, b, c, b, d, c}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
	if !approx(out.Area(), 16) {
		t.Errorf("Area() = %v, want 16", out.Area())
	}
}

func TestRemoveRedundantTriangles_KeepsCleanInput(t *testing.T) {
	tris := TriangulatePoly(regular(8, 3), false)
	out := RemoveRedundantTriangles(tris)
	if out.Count() != tris.Count() {
		t.Errorf("expected %d triangles, got %d", tris.Count(), out.Count())
	}
	if !approx(out.Area(), tris.Area()) {
		t.Errorf("Area() = %v, want %v", out.Area(), tris.Area())
	}
}

func TestTriangulateRegion(t *testing.T) {
	// The hole's left side carries a colinear midpoint.
	hole := Polygon{{X: 3, Y: 3}, {X: 3, Y: 5}, {X: 3, Y: 7}, {X: 7, Y: 7}, {X: 7, Y: 3}}
	region := Region{
		Outer: Polygon{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
		Holes: []Polygon{hole},
	}

	tests := []struct {
		name         string
		keepColinear bool
		wantCount    int
	}{
		{"colinear dropped", false, 8},
		{"colinear kept", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris := TriangulateRegion(region, tt.keepColinear)
			checkTriangles(t, tris)
			if tt.wantCount > 0 && tris.Count() != tt.wantCount {
				t.Errorf("expected %d triangles, got %d", tt.wantCount, tris.Count())
			}
			if !approx(tris.Area(), 84) {
				t.Errorf("Area() = %v, want 84", tris.Area())
			}
			for i := 0; i < tris.Count(); i++ {
				a, b, c := tris.Triangle(i)
				centroid := a.Add(b).Add(c).Mul(1.0 / 3)
				if ContainsPoint(hole, centroid) {
					t.Errorf("triangle %d lies inside the hole", i)
				}
			}
		})
	}
}

func TestTriangulateRegion_Degenerate(t *testing.T) {
	tests := []struct {
		name   string
		region Region
	}{
		{"empty", Region{}},
		{"hole covers outer", Region{Outer: rect(0, 0, 2, 2), Holes: []Polygon{Reverse(rect(0, 0, 2, 2))}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tris := TriangulateRegion(tt.region, false); len(tris) != 0 {
				t.Errorf("expected no triangles, got %d", tris.Count())
			}
		})
	}
}
