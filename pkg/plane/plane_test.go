package plane

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
)

func TestDefaultAxes(t *testing.T) {
	axes := DefaultAxes()
	if axes.X.Dot(axes.Y) != 0 || axes.Y.Dot(axes.Z) != 0 || axes.X.Dot(axes.Z) != 0 {
		t.Error("expected axes to be orthogonal")
	}
	// The spline frame derives up as tangent x depth.
	if got := axes.X.Cross(axes.Z); !got.ApproxEqual(axes.Y) {
		t.Errorf("X x Z = %v, want %v", got, axes.Y)
	}
}

func TestRoundTrip(t *testing.T) {
	axes := DefaultAxes()
	p := r2.Point{X: 3, Y: -2}
	world := axes.ToWorld(p)
	if !world.ApproxEqual(mgl64.Vec3{3, 0, -2}) {
		t.Errorf("ToWorld() = %v, want [3 0 -2]", world)
	}
	if got := axes.ToPlane(world); got != p {
		t.Errorf("ToPlane() = %v, want %v", got, p)
	}
	if d := axes.Depth(mgl64.Vec3{1, 7, 1}); d != 7 {
		t.Errorf("Depth() = %v, want 7", d)
	}
}
