package sprite

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"

	"github.com/Faultbox/paper2d/pkg/collision"
	"github.com/Faultbox/paper2d/pkg/geom"
	"github.com/Faultbox/paper2d/pkg/plane"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// createTestImage returns a w x h transparent image with the given
// inclusive pixel rectangle filled at alpha.
func createTestImage(w, h int, fills ...fill) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for _, f := range fills {
		for y := f.y0; y <= f.y1; y++ {
			for x := f.x0; x <= f.x1; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: f.alpha})
			}
		}
	}
	return img
}

type fill struct {
	x0, y0, x1, y1 int
	alpha          uint8
}

func createTestSprite(w, h float64) *Sprite {
	s := New("test")
	s.SourceDimension = r2.Point{X: w, Y: h}
	s.TextureSize = r2.Point{X: w, Y: h}
	s.PixelsPerUnit = 1
	return s
}

func TestParseModes(t *testing.T) {
	pivotTests := []struct {
		in   string
		want PivotMode
	}{
		{"", CenterCenter},
		{"top_left", TopLeft},
		{"bottom_right", BottomRight},
		{"custom", Custom},
	}
	for _, tt := range pivotTests {
		got, err := ParsePivotMode(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParsePivotMode(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParsePivotMode("middle"); !errors.Is(err, ErrUnknownPivotMode) {
		t.Errorf("expected ErrUnknownPivotMode, got %v", err)
	}

	modeTests := []struct {
		in   string
		want PolygonMode
	}{
		{"", TightBoundingBox},
		{"source_bounding_box", SourceBoundingBox},
		{"shrink_wrapped", ShrinkWrapped},
		{"fully_custom", FullyCustom},
		{"diced", Diced},
	}
	for _, tt := range modeTests {
		got, err := ParsePolygonMode(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParsePolygonMode(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
		if tt.in != "" && got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
	if _, err := ParsePolygonMode("convex"); !errors.Is(err, ErrUnknownPolygonMode) {
		t.Errorf("expected ErrUnknownPolygonMode, got %v", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New("grass")
	if s.PixelsPerUnit != 2.56 {
		t.Errorf("expected PixelsPerUnit 2.56, got %v", s.PixelsPerUnit)
	}
	if s.CollisionKind != collision.ThreeD {
		t.Errorf("expected 3D collision, got %v", s.CollisionKind)
	}
	if s.CollisionThickness != 10 {
		t.Errorf("expected thickness 10, got %v", s.CollisionThickness)
	}
	if s.Pivot != CenterCenter || !s.SnapPivotToPixelGrid {
		t.Errorf("expected snapped center pivot, got %v snap=%v", s.Pivot, s.SnapPivotToPixelGrid)
	}
	if s.AlternateMaterialSplitIndex != -1 {
		t.Errorf("expected split index -1, got %d", s.AlternateMaterialSplitIndex)
	}
	if !s.RenderBounds().IsEmpty() {
		t.Error("expected empty render bounds before baking")
	}
}

func TestRawPivotPosition(t *testing.T) {
	tests := []struct {
		pivot   PivotMode
		rotated bool
		want    r2.Point
	}{
		{TopLeft, false, r2.Point{X: 10, Y: 20}},
		{TopCenter, false, r2.Point{X: 42, Y: 20}},
		{CenterCenter, false, r2.Point{X: 42, Y: 36}},
		{CenterRight, false, r2.Point{X: 74, Y: 36}},
		{BottomLeft, false, r2.Point{X: 10, Y: 52}},
		{BottomRight, false, r2.Point{X: 74, Y: 52}},
		{TopLeft, true, r2.Point{X: 74, Y: 20}},
		{CenterLeft, true, r2.Point{X: 42, Y: 20}},
		{BottomLeft, true, r2.Point{X: 10, Y: 20}},
		{BottomRight, true, r2.Point{X: 10, Y: 52}},
		{Custom, false, r2.Point{X: 1, Y: 2}},
	}
	for _, tt := range tests {
		s := New("pivot")
		s.SourceUV = r2.Point{X: 10, Y: 20}
		s.SourceDimension = r2.Point{X: 64, Y: 32}
		s.Pivot = tt.pivot
		s.Rotated = tt.rotated
		s.CustomPivot = r2.Point{X: 1, Y: 2}
		if got := s.RawPivotPosition(); got != tt.want {
			t.Errorf("RawPivotPosition(%v, rotated=%v) = %v, want %v", tt.pivot, tt.rotated, got, tt.want)
		}
	}
}

func TestPivotPosition_Snap(t *testing.T) {
	s := New("snap")
	s.SourceDimension = r2.Point{X: 3, Y: 3}
	if got := s.PivotPosition(); got != (r2.Point{X: 2, Y: 2}) {
		t.Errorf("snapped PivotPosition() = %v, want (2, 2)", got)
	}
	s.SnapPivotToPixelGrid = false
	if got := s.PivotPosition(); got != (r2.Point{X: 1.5, Y: 1.5}) {
		t.Errorf("PivotPosition() = %v, want (1.5, 1.5)", got)
	}
}

func TestPivotSpaceRoundTrip(t *testing.T) {
	for _, rotated := range []bool{false, true} {
		s := New("roundtrip")
		s.SourceUV = r2.Point{X: 10, Y: 20}
		s.SourceDimension = r2.Point{X: 64, Y: 32}
		s.Rotated = rotated

		in := r2.Point{X: 10, Y: 20}
		pivot := s.TextureToPivot(in)
		if !rotated && pivot != (r2.Point{X: -32, Y: 16}) {
			t.Errorf("TextureToPivot(%v) = %v, want (-32, 16)", in, pivot)
		}
		if rotated && pivot != (r2.Point{X: -16, Y: -32}) {
			t.Errorf("rotated TextureToPivot(%v) = %v, want (-16, -32)", in, pivot)
		}
		if back := s.PivotToTexture(pivot); back != in {
			t.Errorf("PivotToTexture(%v) = %v, want %v (rotated=%v)", pivot, back, in, rotated)
		}
	}
}

func TestRebuildRenderData_SourceBoundingBox(t *testing.T) {
	s := createTestSprite(64, 32)
	s.RenderGeometry.Mode = SourceBoundingBox
	s.RebuildRenderData()

	if len(s.BakedRenderData) != 6 {
		t.Fatalf("expected 6 baked vertices, got %d", len(s.BakedRenderData))
	}
	for i, v := range s.BakedRenderData {
		if !approx(v.U, (v.X+32)/64) || !approx(v.V, (16-v.Y)/32) {
			t.Errorf("vertex %d: uv (%v, %v) does not match position (%v, %v)", i, v.U, v.V, v.X, v.Y)
		}
	}
	want := r2.RectFromPoints(r2.Point{X: -32, Y: -16}, r2.Point{X: 32, Y: 16})
	if !s.RenderBounds().ApproxEqual(want) {
		t.Errorf("RenderBounds() = %v, want %v", s.RenderBounds(), want)
	}
	if s.AlternateMaterialSplitIndex != -1 {
		t.Errorf("expected no alternate split, got %d", s.AlternateMaterialSplitIndex)
	}
}

func TestRebuildRenderData_UnitsPerPixel(t *testing.T) {
	s := createTestSprite(64, 32)
	s.PixelsPerUnit = 2
	s.RenderGeometry.Mode = SourceBoundingBox
	s.RebuildRenderData()

	want := r2.RectFromPoints(r2.Point{X: -16, Y: -8}, r2.Point{X: 16, Y: 8})
	if !s.RenderBounds().ApproxEqual(want) {
		t.Errorf("RenderBounds() = %v, want %v", s.RenderBounds(), want)
	}
}

func TestFindTextureBoundingBox(t *testing.T) {
	s := createTestSprite(8, 8)
	s.Texture = createTestImage(8, 8, fill{2, 3, 5, 4, 255})

	pos, size := s.FindTextureBoundingBox(0)
	if pos != (image.Point{X: 2, Y: 3}) || size != (image.Point{X: 4, Y: 2}) {
		t.Errorf("FindTextureBoundingBox() = %v %v, want (2,3) (4,2)", pos, size)
	}

	s.Texture = nil
	pos, size = s.FindTextureBoundingBox(0)
	if pos != (image.Point{}) || size != (image.Point{X: 8, Y: 8}) {
		t.Errorf("FindTextureBoundingBox() without texture = %v %v, want source rect", pos, size)
	}
}

func TestRebuildRenderData_TightBoundingBox(t *testing.T) {
	s := createTestSprite(8, 8)
	s.Texture = createTestImage(8, 8, fill{2, 3, 5, 4, 255})
	s.Pivot = TopLeft
	s.RebuildRenderData()

	// Pixels 2..5 x 3..4 relative to a top left pivot, Y up.
	want := r2.RectFromPoints(r2.Point{X: 2, Y: -5}, r2.Point{X: 6, Y: -3})
	if !s.RenderBounds().ApproxEqual(want) {
		t.Errorf("RenderBounds() = %v, want %v", s.RenderBounds(), want)
	}
}

func TestRebuildRenderData_ShrinkWrapped(t *testing.T) {
	s := createTestSprite(8, 8)
	s.Texture = createTestImage(8, 8, fill{2, 2, 5, 5, 255})
	s.RenderGeometry.Mode = ShrinkWrapped
	s.RenderGeometry.SimplifyEpsilon = 0.5
	s.RebuildRenderData()

	if len(s.RenderGeometry.Polygons) != 1 {
		t.Fatalf("expected 1 traced polygon, got %d", len(s.RenderGeometry.Polygons))
	}
	poly := s.RenderGeometry.Polygons[0]
	if len(poly.Vertices) != 4 || poly.Negative {
		t.Errorf("expected a positive quad, got %+v", poly)
	}
	if area := math.Abs(s.RenderTriangles().Area()); !approx(area, 9) {
		t.Errorf("baked area = %v, want 9", area)
	}
}

func TestRebuildRenderData_Diced(t *testing.T) {
	s := createTestSprite(8, 8)
	s.Texture = createTestImage(8, 8,
		fill{0, 0, 3, 3, 255},
		fill{5, 5, 6, 6, 128},
	)
	s.RenderGeometry.Mode = Diced
	s.RenderGeometry.PixelsPerSubdivisionX = 4
	s.RenderGeometry.PixelsPerSubdivisionY = 4
	s.RebuildRenderData()

	if s.AlternateMaterialSplitIndex != 6 {
		t.Fatalf("expected split index 6, got %d", s.AlternateMaterialSplitIndex)
	}
	if len(s.BakedRenderData) != 12 {
		t.Fatalf("expected 12 baked vertices, got %d", len(s.BakedRenderData))
	}
	if len(s.RenderGeometry.Polygons) != 2 {
		t.Errorf("expected translucent and opaque tiles, got %d polygons", len(s.RenderGeometry.Polygons))
	}
	// The first triangles cover the translucent tile at pixels 5..6.
	translucent := s.RenderTriangles()[:6]
	if area := math.Abs(translucent.Area()); !approx(area, 4) {
		t.Errorf("translucent area = %v, want 4", area)
	}
}

func TestFindContours(t *testing.T) {
	tests := []struct {
		name  string
		fills []fill
		want  [][]image.Point
	}{
		{
			name:  "empty",
			fills: nil,
			want:  nil,
		},
		{
			name:  "square block",
			fills: []fill{{2, 2, 5, 5, 255}},
			want:  [][]image.Point{{{X: 2, Y: 2}, {X: 5, Y: 2}, {X: 5, Y: 5}, {X: 2, Y: 5}}},
		},
		{
			name:  "single pixel",
			fills: []fill{{3, 3, 3, 3, 255}},
			want:  [][]image.Point{{{X: 3, Y: 3}}},
		},
		{
			name:  "two blocks",
			fills: []fill{{0, 0, 1, 1, 255}, {5, 5, 6, 6, 255}},
			want: [][]image.Point{
				{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
				{{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 6, Y: 6}, {X: 5, Y: 6}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bm := NewAlphaBitmap(createTestImage(8, 8, tt.fills...), 0)
			got := FindContours(bm, image.Point{}, image.Point{X: 8, Y: 8})
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d contours, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range tt.want {
				if len(got[i]) != len(tt.want[i]) {
					t.Fatalf("contour %d = %v, want %v", i, got[i], tt.want[i])
				}
				for j := range tt.want[i] {
					if got[i][j] != tt.want[i][j] {
						t.Errorf("contour %d point %d = %v, want %v", i, j, got[i][j], tt.want[i][j])
					}
				}
			}
		})
	}
}

func TestAlphaBitmap(t *testing.T) {
	bm := NewAlphaBitmap(createTestImage(4, 4, fill{1, 1, 2, 2, 255}, fill{3, 3, 3, 3, 10}), 20)

	if bm.At(3, 3) != 0 {
		t.Error("expected pixel below threshold to be empty")
	}
	if bm.At(1, 1) != 255 || bm.At(-1, 0) != 0 || bm.At(9, 9) != 0 {
		t.Error("unexpected pixel values")
	}
	if !bm.IsRowEmpty(0, 3, 0) || bm.IsRowEmpty(0, 3, 1) {
		t.Error("IsRowEmpty mismatch")
	}
	if !bm.IsColumnEmpty(3, 0, 3) || bm.IsColumnEmpty(2, 0, 3) {
		t.Error("IsColumnEmpty mismatch")
	}
	if !bm.IsRegionEqual(1, 1, 2, 2, 255) || bm.IsRegionEqual(0, 0, 2, 2, 255) {
		t.Error("IsRegionEqual mismatch")
	}
	if got := bm.TightBounds(); got != image.Rect(1, 1, 3, 3) {
		t.Errorf("TightBounds() = %v, want (1,1)-(3,3)", got)
	}
	if got := NewAlphaBitmap(createTestImage(4, 4), 0).TightBounds(); !got.Empty() {
		t.Errorf("expected empty bounds for a clear image, got %v", got)
	}
	if NewAlphaBitmap(nil, 0).IsValid() {
		t.Error("expected nil image bitmap to be invalid")
	}
}

func TestRebuildCollisionData(t *testing.T) {
	axes := plane.DefaultAxes()

	t.Run("none", func(t *testing.T) {
		s := createTestSprite(64, 32)
		s.CollisionKind = collision.None
		s.RebuildCollisionData(axes)
		if s.Body != nil {
			t.Errorf("expected nil body, got %+v", s.Body)
		}
	})

	t.Run("2d source box", func(t *testing.T) {
		s := createTestSprite(64, 32)
		s.CollisionKind = collision.TwoD
		s.CollisionGeometry.Mode = SourceBoundingBox
		s.RebuildCollisionData(axes)
		if s.Body == nil || len(s.Body.Boxes2D) != 1 {
			t.Fatalf("expected one 2D box, got %+v", s.Body)
		}
		box := s.Body.Boxes2D[0]
		if box.Center != (r2.Point{}) || box.Size != (r2.Point{X: 64, Y: 32}) {
			t.Errorf("box = %+v, want center (0,0) size (64,32)", box)
		}
	})

	t.Run("3d box with bottom pivot", func(t *testing.T) {
		s := createTestSprite(64, 32)
		s.Pivot = BottomCenter
		s.CollisionGeometry.Mode = SourceBoundingBox
		s.RebuildCollisionData(axes)
		if s.Body == nil || len(s.Body.Boxes3D) != 1 {
			t.Fatalf("expected one 3D box, got %+v", s.Body)
		}
		box := s.Body.Boxes3D[0]
		if !box.Center.ApproxEqual(mgl64.Vec3{0, 0, 16}) {
			t.Errorf("Center = %v, want [0 0 16]", box.Center)
		}
		if !box.Extents.ApproxEqual(mgl64.Vec3{64, 32, 10}) {
			t.Errorf("Extents = %v, want [64 32 10]", box.Extents)
		}
	})

	t.Run("diced falls back to source box", func(t *testing.T) {
		s := createTestSprite(16, 16)
		s.CollisionKind = collision.TwoD
		s.CollisionGeometry.Mode = Diced
		s.RebuildCollisionData(axes)
		if s.Body.Len() != 1 || len(s.Body.Boxes2D) != 1 {
			t.Fatalf("expected one box, got %+v", s.Body)
		}
	})

	t.Run("custom triangle prism", func(t *testing.T) {
		s := createTestSprite(8, 8)
		s.CollisionGeometry.Mode = FullyCustom
		s.CollisionGeometry.Polygons = []geom.ShapePolygon{{Vertices: geom.Polygon{{X: 0, Y: 0}, {X: 8, Y: 0}, {X: 0, Y: 8}}}}
		s.RebuildCollisionData(axes)
		if len(s.Body.Convex3D) != 1 {
			t.Fatalf("expected 1 prism, got %d", len(s.Body.Convex3D))
		}
		if n := len(s.Body.Convex3D[0].Vertices); n != 6 {
			t.Errorf("expected 6 prism vertices, got %d", n)
		}
	})

	t.Run("shrink wrapped 2d", func(t *testing.T) {
		s := createTestSprite(8, 8)
		s.Texture = createTestImage(8, 8, fill{2, 2, 5, 5, 255})
		s.CollisionKind = collision.TwoD
		s.CollisionGeometry.Mode = ShrinkWrapped
		s.CollisionGeometry.SimplifyEpsilon = 0.5
		s.RebuildCollisionData(axes)
		if len(s.Body.Convex2D) != 2 {
			t.Fatalf("expected 2 convex elements, got %d", len(s.Body.Convex2D))
		}
		// Pixels 2..5 around a center pivot at (4, 4).
		want := r2.RectFromPoints(r2.Point{X: -2, Y: -1}, r2.Point{X: 1, Y: 2})
		if !s.CollisionBounds().ApproxEqual(want) {
			t.Errorf("CollisionBounds() = %v, want %v", s.CollisionBounds(), want)
		}
	})
}
