// Package plane describes the 2D working plane of sprites and terrain
// inside 3D world space.
package plane

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
)

// Axes spans the working plane. X and Y map the 2D coordinates, Z is the
// depth axis perpendicular to both.
type Axes struct {
	X mgl64.Vec3
	Y mgl64.Vec3
	Z mgl64.Vec3
}

// DefaultAxes returns the sprite axes: X right, Y up along world Z, depth
// along world Y.
func DefaultAxes() Axes {
	return Axes{
		X: mgl64.Vec3{1, 0, 0},
		Y: mgl64.Vec3{0, 0, 1},
		Z: mgl64.Vec3{0, 1, 0},
	}
}

// ToWorld lifts a plane point into 3D.
func (a Axes) ToWorld(p r2.Point) mgl64.Vec3 {
	return a.X.Mul(p.X).Add(a.Y.Mul(p.Y))
}

// ToPlane projects a 3D point onto the plane.
func (a Axes) ToPlane(v mgl64.Vec3) r2.Point {
	return r2.Point{X: v.Dot(a.X), Y: v.Dot(a.Y)}
}

// Depth returns the component of v along the depth axis.
func (a Axes) Depth(v mgl64.Vec3) float64 {
	return v.Dot(a.Z)
}
