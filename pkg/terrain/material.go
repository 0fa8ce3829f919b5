// Package terrain builds 2D terrain along a spline: the spline is split
// into segments by slope, each segment is filled with sprite stamps, and
// the stamps are instanced into batched geometry and collision.
package terrain

import (
	"github.com/Faultbox/paper2d/pkg/collision"
	"github.com/Faultbox/paper2d/pkg/plane"
	"github.com/Faultbox/paper2d/pkg/sprite"
)

// Rule maps a slope range to the sprites used on it. The range is
// [MinAngle, MaxAngle) in degrees.
type Rule struct {
	Description string
	MinAngle    float64
	MaxAngle    float64

	StartCap *sprite.Sprite
	EndCap   *sprite.Sprite
	Bodies   []*sprite.Sprite

	EnableCollision bool
	// CollisionOffset moves the collision boxes along the local up axis.
	CollisionOffset float64
	DrawOrder       int
}

// Matches reports whether angle falls inside the rule range.
func (r *Rule) Matches(angle float64) bool {
	return angle >= r.MinAngle && angle < r.MaxAngle
}

// Material is an ordered rule list plus an optional interior fill.
type Material struct {
	Name         string
	Rules        []Rule
	InteriorFill *sprite.Sprite
}

// Defaults for Settings.
const (
	DefaultSamplingInterval    = 10.0
	DefaultCollisionThickness  = 10.0
	DefaultFillSimplifyEpsilon = 1.0
)

// Settings carries everything the pipeline needs besides the spline and
// the material.
type Settings struct {
	// SamplingInterval is the arc-length step used to measure slope and
	// to sample interior fill outlines.
	SamplingInterval float64
	// SegmentOverlap extends every segment on both ends.
	SegmentOverlap float64

	Axes  plane.Axes
	Color [4]float32

	CollisionKind      collision.Kind
	CollisionThickness float64

	// BendToSpline deforms every vertex along the curve instead of moving
	// the stamp rigidly.
	BendToSpline bool

	FillSimplifyEpsilon float64
}

// DefaultSettings returns the standard pipeline settings.
func DefaultSettings() Settings {
	return Settings{
		SamplingInterval:    DefaultSamplingInterval,
		Axes:                plane.DefaultAxes(),
		Color:               [4]float32{1, 1, 1, 1},
		CollisionKind:       collision.ThreeD,
		CollisionThickness:  DefaultCollisionThickness,
		FillSimplifyEpsilon: DefaultFillSimplifyEpsilon,
	}
}

func (s Settings) samplingInterval() float64 {
	if s.SamplingInterval <= 0 {
		return DefaultSamplingInterval
	}
	return s.SamplingInterval
}
