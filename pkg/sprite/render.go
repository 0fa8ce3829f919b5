package sprite

import (
	"fmt"
	"image"

	"github.com/golang/geo/r2"

	"github.com/Faultbox/paper2d/pkg/geom"
)

// createBoundingBoxPolygon replaces g.Polygons with the source rectangle or
// its tight version.
func (s *Sprite) createBoundingBoxPolygon(g *GeometrySettings, tight bool) {
	pos, size := s.SourceUV, s.SourceDimension
	if tight {
		p, sz := s.FindTextureBoundingBox(g.AlphaThreshold)
		pos = r2.Point{X: float64(p.X), Y: float64(p.Y)}
		size = r2.Point{X: float64(sz.X), Y: float64(sz.Y)}
	}
	g.Polygons = nil
	g.addRectangle(pos, size)
}

// dice replaces the render polygons with one tightened rectangle per
// non-empty tile. Fully opaque tiles go to the returned alternate
// settings instead.
func (s *Sprite) dice(g *GeometrySettings) *GeometrySettings {
	bm := NewAlphaBitmap(s.Texture, ThresholdFromFraction(g.AlphaThreshold))
	alternate := &GeometrySettings{AvoidVertexMerging: g.AvoidVertexMerging}
	g.Polygons = nil

	stepX, stepY := g.subdivision()
	x0, y0 := int(s.SourceUV.X), int(s.SourceUV.Y)
	x1 := int(s.SourceUV.X + s.SourceDimension.X)
	y1 := int(s.SourceUV.Y + s.SourceDimension.Y)

	for y := y0; y < y1; y += stepY {
		tileH := min(stepY, y1-y)
		for x := x0; x < x1; x += stepX {
			tileW := min(stepX, x1-x)
			if bm.IsRegionEmpty(x, y, x+tileW-1, y+tileH-1) {
				continue
			}
			origin, dim := bm.TightenBounds(image.Point{X: x, Y: y}, image.Point{X: tileW, Y: tileH})
			pos := r2.Point{X: float64(origin.X), Y: float64(origin.Y)}
			size := r2.Point{X: float64(dim.X), Y: float64(dim.Y)}
			if bm.IsRegionEqual(origin.X, origin.Y, origin.X+dim.X-1, origin.Y+dim.Y-1, 255) {
				alternate.addRectangle(pos, size)
			} else {
				g.addRectangle(pos, size)
			}
		}
	}
	return alternate
}

// RebuildRenderData regenerates the render polygons for the current mode,
// triangulates them and bakes BakedRenderData.
func (s *Sprite) RebuildRenderData() {
	g := &s.RenderGeometry
	switch g.Mode {
	case Diced, SourceBoundingBox:
		s.createBoundingBoxPolygon(g, false)
	case TightBoundingBox:
		s.createBoundingBoxPolygon(g, true)
	case ShrinkWrapped:
		s.BuildGeometryFromContours(g)
	case FullyCustom:
		// Polygons are authored directly.
	default:
		panic(fmt.Sprintf("sprite: unknown polygon mode %d", int(g.Mode)))
	}

	var alternate *GeometrySettings
	if g.Mode == Diced && s.Texture != nil {
		alternate = s.dice(g)
	}

	points := geom.Triangulate(g.collection())

	s.AlternateMaterialSplitIndex = -1
	if alternate != nil && len(alternate.Polygons) > 0 {
		s.AlternateMaterialSplitIndex = len(points)
		points = append(points, geom.Triangulate(alternate.collection())...)
		g.Polygons = append(g.Polygons, alternate.Polygons...)
	}

	texSize := s.textureSize()
	upp := s.UnitsPerPixel()
	s.BakedRenderData = make([]RenderVertex, len(points))
	for i, p := range points {
		pivot := s.TextureToPivot(p)
		s.BakedRenderData[i] = RenderVertex{
			X: pivot.X * upp,
			Y: pivot.Y * upp,
			U: p.X / texSize.X,
			V: p.Y / texSize.Y,
		}
	}
}

// RenderTriangles returns the baked positions as a triangle list, for
// callers that only need geometry.
func (s *Sprite) RenderTriangles() geom.TriangleList {
	tris := make(geom.TriangleList, len(s.BakedRenderData))
	for i, v := range s.BakedRenderData {
		tris[i] = r2.Point{X: v.X, Y: v.Y}
	}
	return tris
}
