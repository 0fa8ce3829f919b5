package terrain

import (
	"github.com/Faultbox/paper2d/pkg/sprite"
)

// spriteWidth returns the baked render width of s, or 0.
func spriteWidth(s *sprite.Sprite) float64 {
	if s == nil {
		return 0
	}
	b := s.RenderBounds()
	if b.IsEmpty() {
		return 0
	}
	return max(b.Size().X, 0)
}

// StampSegment fills segment.Stamps with a start cap, randomly chosen body
// tiles and an end cap. Body tiles are stretched so they exactly span the
// space between the caps.
//
// The segment must have a rule.
func StampSegment(segment *Segment, rng *RandomStream) {
	rule := segment.Rule
	if rule == nil {
		panic("terrain: stamping a segment without a rule")
	}
	segment.Stamps = segment.Stamps[:0]

	startWidth := spriteWidth(rule.StartCap)
	endWidth := spriteWidth(rule.EndCap)

	hasBody := false
	for _, body := range rule.Bodies {
		if spriteWidth(body) > 0 {
			hasBody = true
			break
		}
	}

	bodyStart := segment.Start + startWidth
	bodyEnd := segment.End - endWidth
	bodyDistance := bodyEnd - bodyStart
	useBody := bodyDistance > 0 && hasBody

	if startWidth > 0 {
		segment.Stamps = append(segment.Stamps, Stamp{
			Sprite:       rule.StartCap,
			Time:         segment.Start + startWidth*0.5,
			Scale:        1,
			NominalWidth: startWidth,
		})
	}

	if useBody {
		first := len(segment.Stamps)
		position := bodyStart
		remaining := bodyDistance
		var used float64
		for remaining > 0 {
			// Draw over every body so the stream stays in step with the
			// engine's; empty entries are drawn again.
			body := rule.Bodies[rng.RandRange(0, len(rule.Bodies)-1)]
			width := spriteWidth(body)
			if width <= 0 {
				continue
			}
			// Let the last tile overshoot by at most half its width.
			if len(segment.Stamps) > first && width*0.5 > remaining {
				break
			}
			segment.Stamps = append(segment.Stamps, Stamp{
				Sprite:       body,
				Time:         position + width*0.5,
				Scale:        1,
				CanStretch:   true,
				NominalWidth: width,
			})
			remaining -= width
			position += width
			used += width
		}

		// A stretched tile's center moves by half of its own growth plus
		// half of its predecessor's.
		scale := bodyDistance / used
		var correction, prevWidth float64
		for i := first; i < len(segment.Stamps); i++ {
			stamp := &segment.Stamps[i]
			correction += (scale - 1) * (prevWidth + stamp.NominalWidth) * 0.5
			stamp.Time += correction
			stamp.Scale = scale
			prevWidth = stamp.NominalWidth
		}
	}
	// TODO: stretch the end caps over the gap when there is no room for
	// body tiles.

	if endWidth > 0 {
		segment.Stamps = append(segment.Stamps, Stamp{
			Sprite:       rule.EndCap,
			Time:         segment.End - endWidth*0.5,
			Scale:        1,
			NominalWidth: endWidth,
		})
	}
}

// StampSegments stamps every segment with one stream.
func StampSegments(segments []Segment, rng *RandomStream) {
	for i := range segments {
		StampSegment(&segments[i], rng)
	}
}
