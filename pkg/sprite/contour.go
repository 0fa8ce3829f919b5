package sprite

import (
	"image"

	"github.com/golang/geo/r2"

	"github.com/Faultbox/paper2d/pkg/geom"
)

// Moore neighbourhood, clockwise from the top left pixel:
//
//	0 1 2
//	7   3
//	6 5 4
var (
	neighborX = [8]int{-1, 0, 1, 1, 1, 0, -1, -1}
	neighborY = [8]int{-1, -1, -1, 0, 1, 1, 1, 0}
	// Phase to resume scanning from after stepping in a given direction.
	stateMutation = [8]int{5, 6, 7, 0, 1, 2, 3, 4}
)

// boundaryImage tags traced pixels. It is one pixel larger than the scan
// area on every side.
type boundaryImage struct {
	x0, y0        int
	width, height int
	pix           []int8
}

func newBoundaryImage(pos, size image.Point) *boundaryImage {
	w, h := size.X+2, size.Y+2
	return &boundaryImage{x0: pos.X - 1, y0: pos.Y - 1, width: w, height: h, pix: make([]int8, w*h)}
}

func (b *boundaryImage) index(x, y int) int {
	lx, ly := x-b.x0, y-b.y0
	if lx < 0 || ly < 0 || lx >= b.width || ly >= b.height {
		return -1
	}
	return lx + ly*b.width
}

func (b *boundaryImage) get(x, y int) int8 {
	if i := b.index(x, y); i >= 0 {
		return b.pix[i]
	}
	return 0
}

func (b *boundaryImage) set(x, y int, v int8) {
	if i := b.index(x, y); i >= 0 {
		b.pix[i] = v
	}
}

// FindContours traces the outlines of filled regions inside the scan
// rectangle at pos with size. Each contour lists pixel coordinates with
// collinear runs removed. Single pixel islands give one-point contours.
func FindContours(bm *AlphaBitmap, pos, size image.Point) [][]image.Point {
	if size.X <= 0 || size.Y <= 0 || !bm.IsValid() {
		return nil
	}
	left, top := pos.X, pos.Y
	right, bottom := pos.X+size.X-1, pos.Y+size.Y-1

	filled := func(x, y int) bool {
		return x >= left && x <= right && y >= top && y <= bottom && bm.At(x, y) != 0
	}

	boundary := newBoundaryImage(pos, size)
	maxSteps := 8 * (size.X + 2) * (size.Y + 2)

	var contours [][]image.Point
	inside := false
	for y := top - 1; y < bottom+2; y++ {
		for x := left - 1; x < right+2; x++ {
			tagged := boundary.get(x, y) > 0
			isFilled := filled(x, y)

			if inside {
				if !isFilled {
					inside = false
				}
				continue
			}
			if tagged {
				inside = true
				continue
			}
			if !isFilled {
				continue
			}

			boundary.set(x, y, 1)
			contour := []image.Point{{X: x, Y: y}}

			phase := 0
			px, py := x, y
			misses := 0
			for step := 0; step < maxSteps; step++ {
				cx, cy := px+neighborX[phase], py+neighborY[phase]
				if !filled(cx, cy) {
					phase = (phase + 1) % 8
					misses++
					if misses > 8 {
						// Isolated pixel.
						break
					}
					continue
				}
				if cx == x && cy == y {
					inside = true
					break
				}
				boundary.set(cx, cy, int8(phase+1))
				contour = append(contour, image.Point{X: cx, Y: cy})
				px, py = cx, cy
				phase = stateMutation[phase]
				misses = 0
			}

			contours = append(contours, removeCollinear(contour))
		}
	}
	return contours
}

func removeCollinear(points []image.Point) []image.Point {
	if len(points) < 3 {
		return points
	}
	reduced := geom.RemoveCollinearPoints(toPolygon(points))
	out := make([]image.Point, len(reduced))
	for i, p := range reduced {
		out[i] = image.Point{X: int(p.X), Y: int(p.Y)}
	}
	return out
}

func toPolygon(points []image.Point) geom.Polygon {
	poly := make(geom.Polygon, len(points))
	for i, p := range points {
		poly[i] = r2.Point{X: float64(p.X), Y: float64(p.Y)}
	}
	return poly
}

// FindTextureBoundingBox shrinks the source rectangle to the pixels above
// alphaThreshold. Without a texture it returns the source rectangle.
func (s *Sprite) FindTextureBoundingBox(alphaThreshold float64) (pos, size image.Point) {
	left := int(s.SourceUV.X)
	right := int(s.SourceUV.X + s.SourceDimension.X - 1)
	top := int(s.SourceUV.Y)
	bottom := int(s.SourceUV.Y + s.SourceDimension.Y - 1)

	bm := NewAlphaBitmap(s.Texture, ThresholdFromFraction(alphaThreshold))
	if bm.IsValid() {
		left = clampInt(left, 0, bm.Width-1)
		right = clampInt(right, 0, bm.Width-1)
		top = clampInt(top, 0, bm.Height-1)
		bottom = clampInt(bottom, 0, bm.Height-1)
		return bm.TightenBounds(image.Point{X: left, Y: top}, image.Point{X: right - left + 1, Y: bottom - top + 1})
	}
	return image.Point{X: left, Y: top}, image.Point{X: right - left + 1, Y: bottom - top + 1}
}

// BuildGeometryFromContours replaces g.Polygons with the simplified
// outlines of the sprite texture. Outlines are tagged negative when they
// wind clockwise in texture space.
func (s *Sprite) BuildGeometryFromContours(g *GeometrySettings) {
	pos, size := s.FindTextureBoundingBox(g.AlphaThreshold)
	bm := NewAlphaBitmap(s.Texture, ThresholdFromFraction(g.AlphaThreshold))

	g.Polygons = nil
	for _, contour := range FindContours(bm, pos, size) {
		simplified := geom.SimplifyPoints(toPolygon(contour), g.SimplifyEpsilon)
		if len(simplified) == 0 {
			continue
		}
		g.Polygons = append(g.Polygons, geom.ShapePolygon{
			Vertices: simplified,
			Negative: !geom.IsPolygonWindingCCW(simplified),
		})
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
