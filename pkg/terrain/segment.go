package terrain

import (
	"github.com/Faultbox/paper2d/pkg/spline"
	"github.com/Faultbox/paper2d/pkg/sprite"
)

// Stamp is one sprite instance placed along a segment.
type Stamp struct {
	Sprite *sprite.Sprite
	// Time is the arc-length position of the stamp center.
	Time       float64
	Scale      float64
	CanStretch bool
	// NominalWidth is the unscaled render width of the sprite.
	NominalWidth float64
}

// Segment is an arc-length range governed by one rule.
type Segment struct {
	Start  float64
	End    float64
	Rule   *Rule
	Stamps []Stamp
}

// Length returns End - Start.
func (s *Segment) Length() float64 {
	return s.End - s.Start
}

// desiredRule returns the last rule matching angle, or the first rule when
// none match.
func desiredRule(rules []Rule, angle float64) *Rule {
	if len(rules) == 0 {
		return nil
	}
	rule := &rules[0]
	for i := range rules {
		if rules[i].Matches(angle) {
			rule = &rules[i]
		}
	}
	return rule
}

// SegmentSpline splits spl into segments by slope. It samples every
// SamplingInterval; when the matching rule changes the open segment is
// closed at that distance and a new one begins. Segments shorter than
// twice the overlap are dropped, then every segment is widened by the
// overlap on both ends.
//
// A nil or zero length spline, a nil material or a material without rules
// gives no segments.
func SegmentSpline(spl *spline.Spline, material *Material, settings Settings) []Segment {
	if spl == nil || material == nil || len(material.Rules) == 0 {
		return nil
	}
	length := spl.Length()
	if length <= 0 {
		return nil
	}

	overlap := settings.SegmentOverlap
	interval := settings.samplingInterval()

	segments := []Segment{{Start: 0, End: length}}
	active := &segments[0]

	for t := 0.0; t < length; t += interval {
		slope := spline.SlopeDegrees(spl.TangentAtDistance(t), settings.Axes)
		rule := desiredRule(material.Rules, slope)
		if active.Rule == rule {
			continue
		}
		if active.Rule == nil {
			active.Rule = rule
			continue
		}

		active.End = t
		if active.End < active.Start+2*overlap {
			segments = segments[:len(segments)-1]
		}
		segments = append(segments, Segment{Start: t, End: length, Rule: rule})
		active = &segments[len(segments)-1]
	}

	for i := range segments {
		segments[i].Start -= overlap
		segments[i].End += overlap
	}
	return segments
}
