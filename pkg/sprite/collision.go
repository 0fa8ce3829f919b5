package sprite

import (
	"fmt"

	"github.com/golang/geo/r2"

	"github.com/Faultbox/paper2d/pkg/collision"
	"github.com/Faultbox/paper2d/pkg/geom"
	"github.com/Faultbox/paper2d/pkg/plane"
)

// RebuildCollisionData regenerates Body from CollisionGeometry. Body is
// nil when CollisionKind is None.
func (s *Sprite) RebuildCollisionData(axes plane.Axes) {
	g := &s.CollisionGeometry
	switch s.CollisionKind {
	case collision.None:
		s.Body = nil
		g.Polygons = nil
		return
	case collision.TwoD, collision.ThreeD:
		s.Body = collision.NewBody(s.CollisionKind)
	default:
		panic(fmt.Sprintf("sprite: unknown collision kind %d", int(s.CollisionKind)))
	}

	switch g.Mode {
	case Diced, SourceBoundingBox:
		s.buildBoxCollision(axes, false)
	case TightBoundingBox:
		s.buildBoxCollision(axes, true)
	case ShrinkWrapped:
		s.BuildGeometryFromContours(g)
		s.buildCustomCollision(axes)
	case FullyCustom:
		s.buildCustomCollision(axes)
	default:
		panic(fmt.Sprintf("sprite: unknown polygon mode %d", int(g.Mode)))
	}
}

func (s *Sprite) buildBoxCollision(axes plane.Axes, tight bool) {
	g := &s.CollisionGeometry
	s.createBoundingBoxPolygon(g, tight)

	box := g.Polygons[0].Vertices
	pos, size := box[0], box[2].Sub(box[0])
	upp := s.UnitsPerPixel()

	center := s.TextureToPivot(pos.Add(size.Mul(0.5))).Mul(upp)
	s.Body.AddBox(center, size.Mul(upp), s.CollisionThickness, axes)
}

func (s *Sprite) buildCustomCollision(axes plane.Axes) {
	points := geom.Triangulate(s.CollisionGeometry.collection())

	upp := s.UnitsPerPixel()
	tris := make(geom.TriangleList, len(points))
	for i, p := range points {
		tris[i] = s.TextureToPivot(p).Mul(upp)
	}
	s.Body.AddTriangles(tris, s.CollisionThickness, axes)
}

// CollisionBounds returns the plane extent of the collision body.
func (s *Sprite) CollisionBounds() r2.Rect {
	return s.Body.Bounds()
}
