package spline

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/paper2d/pkg/plane"
)

// Frame is an orthonormal basis riding on the spline. Tangent points along
// travel, Up is the in-plane normal and Normal is the depth axis.
type Frame struct {
	Origin  mgl64.Vec3
	Tangent mgl64.Vec3
	Up      mgl64.Vec3
	Normal  mgl64.Vec3
}

// Matrix returns the frame as a local-to-world transform.
func (f Frame) Matrix() mgl64.Mat4 {
	return mgl64.Mat4FromCols(f.Tangent.Vec4(0), f.Up.Vec4(0), f.Normal.Vec4(0), f.Origin.Vec4(1))
}

// TransformPoint maps a local (x along tangent, y along up) point to world.
func (f Frame) TransformPoint(x, y float64) mgl64.Vec3 {
	return f.Origin.Add(f.Tangent.Mul(x)).Add(f.Up.Mul(y))
}

// FrameAtDistance returns the frame at an arc-length distance. The tangent
// is flattened into the plane spanned by axes; if nothing is left it falls
// back to axes.X.
func (s *Spline) FrameAtDistance(distance float64, axes plane.Axes) Frame {
	tangent := s.TangentAtDistance(distance)
	tangent = tangent.Sub(axes.Z.Mul(tangent.Dot(axes.Z)))
	if tangent.Len() < 1e-8 {
		tangent = axes.X
	} else {
		tangent = tangent.Normalize()
	}
	return Frame{
		Origin:  s.PositionAtDistance(distance),
		Tangent: tangent,
		Up:      tangent.Cross(axes.Z),
		Normal:  axes.Z,
	}
}

// Sample is a point on the spline with its slope.
type Sample struct {
	Distance float64
	Position mgl64.Vec3
	Tangent  mgl64.Vec3
	// Slope is the in-plane direction of travel in degrees, in [0, 360).
	Slope float64
}

// Sample evaluates the spline at an arc-length distance.
func (s *Spline) Sample(distance float64, axes plane.Axes) Sample {
	tangent := s.TangentAtDistance(distance)
	return Sample{
		Distance: distance,
		Position: s.PositionAtDistance(distance),
		Tangent:  tangent,
		Slope:    SlopeDegrees(tangent, axes),
	}
}

// SlopeDegrees measures the angle of a direction within the plane, counter
// clockwise from axes.X, normalised into [0, 360).
func SlopeDegrees(direction mgl64.Vec3, axes plane.Axes) float64 {
	deg := mgl64.RadToDeg(math.Atan2(direction.Dot(axes.Y), direction.Dot(axes.X)))
	deg = math.Mod(deg+360, 360)
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// SampleRange samples every interval along [0, Length()). A closed spline
// is sampled once around.
func (s *Spline) SampleRange(interval float64, axes plane.Axes) []Sample {
	if interval <= 0 || s.length <= 0 {
		return nil
	}
	samples := make([]Sample, 0, int(s.length/interval)+1)
	for d := 0.0; d < s.length; d += interval {
		samples = append(samples, s.Sample(d, axes))
	}
	return samples
}
