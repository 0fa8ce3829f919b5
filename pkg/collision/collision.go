// Package collision holds the simple collision shapes produced by sprites
// and terrain. A Body is either 2D or 3D; every operation switches on the
// Kind so adding a domain is a compile-visible change.
package collision

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"

	"github.com/Faultbox/paper2d/pkg/geom"
	"github.com/Faultbox/paper2d/pkg/plane"
)

// ErrUnknownKind is returned by ParseKind.
var ErrUnknownKind = errors.New("unknown collision kind")

// Kind selects the collision domain.
type Kind int

const (
	None Kind = iota
	TwoD
	ThreeD
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case TwoD:
		return "2d"
	case ThreeD:
		return "3d"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a kind name. An empty name means ThreeD.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "none":
		return None, nil
	case "2d":
		return TwoD, nil
	case "", "3d":
		return ThreeD, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Box2D is an axis-aligned box in the plane. Size holds the full extents.
type Box2D struct {
	Center r2.Point
	Size   r2.Point
}

// Convex2D is a convex polygon in the plane.
type Convex2D struct {
	Vertices []r2.Point
}

// Box3D is a box in world space. Extents holds the full size along the
// plane X axis, the plane Y axis and the depth axis.
type Box3D struct {
	Center  mgl64.Vec3
	Extents mgl64.Vec3
}

// Convex3D is a convex hull given by its vertices.
type Convex3D struct {
	Vertices []mgl64.Vec3
}

// Body is a set of collision elements of one Kind. The zero value of a
// given Kind is ready to use.
type Body struct {
	Kind     Kind
	Boxes2D  []Box2D
	Convex2D []Convex2D
	Boxes3D  []Box3D
	Convex3D []Convex3D

	bounds    r2.Rect
	hasBounds bool
}

// NewBody returns an empty body of kind.
func NewBody(kind Kind) *Body {
	return &Body{Kind: kind}
}

func unknownKind(k Kind) string {
	return fmt.Sprintf("collision: unknown kind %d", int(k))
}

// Extend grows the recorded bounds to include r. Add methods call it;
// decoders restoring elements directly call it once.
func (b *Body) Extend(r r2.Rect) {
	if !b.hasBounds {
		b.bounds = r
		b.hasBounds = true
		return
	}
	b.bounds = b.bounds.Union(r)
}

// AddBox adds an axis-aligned box centred at center. Thickness is the
// depth of 3D boxes.
func (b *Body) AddBox(center, size r2.Point, thickness float64, axes plane.Axes) {
	size = r2.Point{X: math.Abs(size.X), Y: math.Abs(size.Y)}
	switch b.Kind {
	case None:
		return
	case TwoD:
		b.Boxes2D = append(b.Boxes2D, Box2D{Center: center, Size: size})
	case ThreeD:
		b.Boxes3D = append(b.Boxes3D, Box3D{
			Center:  axes.ToWorld(center),
			Extents: mgl64.Vec3{size.X, size.Y, thickness},
		})
	default:
		panic(unknownKind(b.Kind))
	}
	b.Extend(r2.RectFromCenterSize(center, size))
}

// AddRect adds a box covering r.
func (b *Body) AddRect(r r2.Rect, thickness float64, axes plane.Axes) {
	if r.IsEmpty() {
		return
	}
	b.AddBox(r.Center(), r.Size(), thickness, axes)
}

// AddTriangles adds one convex element per triangle. In 3D each triangle
// becomes a prism spanning thickness around the plane.
func (b *Body) AddTriangles(tris geom.TriangleList, thickness float64, axes plane.Axes) {
	half := axes.Z.Mul(thickness * 0.5)
	for i := 0; i < tris.Count(); i++ {
		p0, p1, p2 := tris.Triangle(i)
		switch b.Kind {
		case None:
			return
		case TwoD:
			b.Convex2D = append(b.Convex2D, Convex2D{Vertices: []r2.Point{p0, p1, p2}})
		case ThreeD:
			verts := make([]mgl64.Vec3, 0, 6)
			for _, p := range [3]r2.Point{p0, p1, p2} {
				w := axes.ToWorld(p)
				verts = append(verts, w.Add(half), w.Sub(half))
			}
			b.Convex3D = append(b.Convex3D, Convex3D{Vertices: verts})
		default:
			panic(unknownKind(b.Kind))
		}
		b.Extend(r2.RectFromPoints(p0, p1, p2))
	}
}

// Len returns the number of elements in the body.
func (b *Body) Len() int {
	if b == nil {
		return 0
	}
	switch b.Kind {
	case None:
		return 0
	case TwoD:
		return len(b.Boxes2D) + len(b.Convex2D)
	case ThreeD:
		return len(b.Boxes3D) + len(b.Convex3D)
	default:
		panic(unknownKind(b.Kind))
	}
}

// Bounds returns the extent of every element in plane coordinates, or an
// empty rect.
func (b *Body) Bounds() r2.Rect {
	if b == nil || !b.hasBounds {
		return r2.EmptyRect()
	}
	return b.bounds
}
