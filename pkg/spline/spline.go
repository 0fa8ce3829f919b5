// Package spline implements the 3D Hermite spline that terrain follows,
// with an arc-length table so positions can be looked up by distance.
package spline

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Spline errors.
var (
	ErrTooFewPoints = errors.New("spline needs at least two control points")
	ErrUnknownMode  = errors.New("unknown spline mode")
)

// DefaultStepsPerSegment is the arc-length table resolution.
const DefaultStepsPerSegment = 10

// Mode selects how control points are interpolated.
type Mode int

const (
	// Curve interpolates with automatic Catmull-Rom tangents.
	Curve Mode = iota
	// Linear connects control points with straight lines.
	Linear
)

func (m Mode) String() string {
	switch m {
	case Curve:
		return "curve"
	case Linear:
		return "linear"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name. An empty name means Curve.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "curve":
		return Curve, nil
	case "linear":
		return Linear, nil
	default:
		return Curve, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Option configures a Spline.
type Option func(*Spline)

// WithMode sets the interpolation mode.
func WithMode(mode Mode) Option {
	return func(s *Spline) { s.mode = mode }
}

// WithStepsPerSegment sets the arc-length table resolution.
func WithStepsPerSegment(steps int) Option {
	return func(s *Spline) {
		if steps > 0 {
			s.steps = steps
		}
	}
}

// Spline is an immutable curve through control points.
type Spline struct {
	points   []mgl64.Vec3
	tangents []mgl64.Vec3
	closed   bool
	mode     Mode
	steps    int

	table  []reparamEntry
	length float64
}

type reparamEntry struct {
	distance float64
	param    float64
}

// New builds a spline through points. A closed spline also joins the
// last point back to the first.
func New(points []mgl64.Vec3, closed bool, opts ...Option) (*Spline, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}
	s := &Spline{
		points: append([]mgl64.Vec3(nil), points...),
		closed: closed,
		mode:   Curve,
		steps:  DefaultStepsPerSegment,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.computeTangents()
	s.buildTable()
	return s, nil
}

// Points returns a copy of the control points.
func (s *Spline) Points() []mgl64.Vec3 {
	return append([]mgl64.Vec3(nil), s.points...)
}

// Closed reports whether the spline loops.
func (s *Spline) Closed() bool { return s.closed }

// Mode returns the interpolation mode.
func (s *Spline) Mode() Mode { return s.mode }

// NumSegments returns the number of curve pieces between control points.
func (s *Spline) NumSegments() int {
	if s.closed {
		return len(s.points)
	}
	return len(s.points) - 1
}

// Length returns the total arc length.
func (s *Spline) Length() float64 { return s.length }

func (s *Spline) point(i int) mgl64.Vec3 {
	n := len(s.points)
	return s.points[((i%n)+n)%n]
}

func (s *Spline) computeTangents() {
	n := len(s.points)
	s.tangents = make([]mgl64.Vec3, n)
	for i := range s.points {
		switch {
		case s.closed:
			s.tangents[i] = s.point(i + 1).Sub(s.point(i - 1)).Mul(0.5)
		case i == 0:
			s.tangents[i] = s.points[1].Sub(s.points[0])
		case i == n-1:
			s.tangents[i] = s.points[n-1].Sub(s.points[n-2])
		default:
			s.tangents[i] = s.points[i+1].Sub(s.points[i-1]).Mul(0.5)
		}
	}
}

// locate splits a curve parameter into a segment index and local time.
func (s *Spline) locate(param float64) (int, float64) {
	segments := s.NumSegments()
	if param <= 0 {
		return 0, 0
	}
	if param >= float64(segments) {
		return segments - 1, 1
	}
	seg := int(math.Floor(param))
	return seg, param - float64(seg)
}

// Eval returns the position at a curve parameter in [0, NumSegments()].
func (s *Spline) Eval(param float64) mgl64.Vec3 {
	seg, t := s.locate(param)
	p0, p1 := s.point(seg), s.point(seg+1)
	if s.mode == Linear {
		return p0.Add(p1.Sub(p0).Mul(t))
	}
	m0, m1 := s.tangents[seg], s.tangents[(seg+1)%len(s.points)]

	t2, t3 := t*t, t*t*t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return p0.Mul(h00).Add(m0.Mul(h10)).Add(p1.Mul(h01)).Add(m1.Mul(h11))
}

// Derivative returns the derivative with respect to the curve parameter.
func (s *Spline) Derivative(param float64) mgl64.Vec3 {
	seg, t := s.locate(param)
	p0, p1 := s.point(seg), s.point(seg+1)
	if s.mode == Linear {
		return p1.Sub(p0)
	}
	m0, m1 := s.tangents[seg], s.tangents[(seg+1)%len(s.points)]

	t2 := t * t
	d00 := 6*t2 - 6*t
	d10 := 3*t2 - 4*t + 1
	d01 := -6*t2 + 6*t
	d11 := 3*t2 - 2*t
	return p0.Mul(d00).Add(m0.Mul(d10)).Add(p1.Mul(d01)).Add(m1.Mul(d11))
}

// Five point Gauss-Legendre quadrature on [-1, 1].
var (
	gaussNodes   = [5]float64{0, -0.5384693101056831, 0.5384693101056831, -0.9061798459386640, 0.9061798459386640}
	gaussWeights = [5]float64{0.5688888888888889, 0.4786286704993665, 0.4786286704993665, 0.2369268850561891, 0.2369268850561891}
)

// arcLength integrates the speed of segment seg between local times t0
// and t1.
func (s *Spline) arcLength(seg int, t0, t1 float64) float64 {
	half := (t1 - t0) * 0.5
	mid := (t1 + t0) * 0.5
	var sum float64
	for i, x := range gaussNodes {
		sum += gaussWeights[i] * s.Derivative(float64(seg)+mid+half*x).Len()
	}
	return sum * half
}

func (s *Spline) buildTable() {
	segments := s.NumSegments()
	s.table = make([]reparamEntry, 0, segments*s.steps+1)
	s.table = append(s.table, reparamEntry{})

	var distance float64
	for seg := 0; seg < segments; seg++ {
		prev := 0.0
		for step := 1; step <= s.steps; step++ {
			t := float64(step) / float64(s.steps)
			// Stay inside the segment so Derivative does not pick the next one.
			distance += s.arcLength(seg, prev, math.Min(t, 1-1e-12))
			prev = t
			s.table = append(s.table, reparamEntry{distance: distance, param: float64(seg) + t})
		}
	}
	s.length = distance
}

// ParamAtDistance converts an arc-length distance into a curve parameter.
func (s *Spline) ParamAtDistance(distance float64) float64 {
	if distance <= 0 || s.length <= 0 {
		return 0
	}
	if distance >= s.length {
		return float64(s.NumSegments())
	}
	i := sort.Search(len(s.table), func(i int) bool { return s.table[i].distance >= distance })
	if i == 0 {
		return 0
	}
	lo, hi := s.table[i-1], s.table[i]
	span := hi.distance - lo.distance
	if span <= 0 {
		return hi.param
	}
	alpha := (distance - lo.distance) / span
	return lo.param + (hi.param-lo.param)*alpha
}

// PositionAtDistance returns the position at an arc-length distance.
func (s *Spline) PositionAtDistance(distance float64) mgl64.Vec3 {
	return s.Eval(s.ParamAtDistance(distance))
}

// TangentAtDistance returns the unit direction of travel at an arc-length
// distance, or the zero vector when the curve does not move there.
func (s *Spline) TangentAtDistance(distance float64) mgl64.Vec3 {
	param := s.ParamAtDistance(distance)
	d := s.Derivative(param)
	if d.Len() < 1e-8 {
		seg, _ := s.locate(param)
		d = s.point(seg + 1).Sub(s.point(seg))
	}
	if d.Len() < 1e-8 {
		return mgl64.Vec3{}
	}
	return d.Normalize()
}
