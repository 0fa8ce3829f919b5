// Package sprite turns a rectangle of a texture into baked render
// triangles and collision shapes.
//
// Sprite geometry is authored in texture space: pixels, origin at the top
// left, Y down. Baking converts it into pivot space, scaled to world units
// and with Y up.
package sprite

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/golang/geo/r2"

	"github.com/Faultbox/paper2d/pkg/collision"
	"github.com/Faultbox/paper2d/pkg/geom"
	"github.com/Faultbox/paper2d/pkg/plane"
)

// Defaults for new sprites.
const (
	DefaultPixelsPerUnit         = 2.56
	DefaultCollisionThickness    = 10.0
	DefaultSimplifyEpsilon       = 2.0
	DefaultPixelsPerSubdivision  = 32
	MinPixelsPerSubdivision      = 4
	DefaultMaterialName          = "masked"
	DefaultAlternateMaterialName = "opaque"
)

var (
	ErrUnknownPolygonMode = errors.New("unknown polygon mode")
	ErrUnknownPivotMode   = errors.New("unknown pivot mode")
)

// PolygonMode selects how sprite geometry is generated.
type PolygonMode int

const (
	// SourceBoundingBox uses the whole source rectangle.
	SourceBoundingBox PolygonMode = iota
	// TightBoundingBox shrinks the source rectangle to the visible pixels.
	TightBoundingBox
	// ShrinkWrapped traces the outline of the visible pixels.
	ShrinkWrapped
	// FullyCustom uses the polygons as given.
	FullyCustom
	// Diced splits the sprite into tiles and separates the opaque ones.
	Diced
)

var polygonModeNames = [...]string{
	SourceBoundingBox: "source_bounding_box",
	TightBoundingBox:  "tight_bounding_box",
	ShrinkWrapped:     "shrink_wrapped",
	FullyCustom:       "fully_custom",
	Diced:             "diced",
}

func (m PolygonMode) String() string {
	if m >= 0 && int(m) < len(polygonModeNames) {
		return polygonModeNames[m]
	}
	return fmt.Sprintf("PolygonMode(%d)", int(m))
}

// ParsePolygonMode converts a mode name. An empty name means
// TightBoundingBox.
func ParsePolygonMode(name string) (PolygonMode, error) {
	if name == "" {
		return TightBoundingBox, nil
	}
	for i, n := range polygonModeNames {
		if n == name {
			return PolygonMode(i), nil
		}
	}
	return TightBoundingBox, fmt.Errorf("%w: %q", ErrUnknownPolygonMode, name)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *PolygonMode) UnmarshalText(text []byte) error {
	parsed, err := ParsePolygonMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// PivotMode anchors the sprite origin inside the source rectangle.
type PivotMode int

const (
	TopLeft PivotMode = iota
	TopCenter
	TopRight
	CenterLeft
	CenterCenter
	CenterRight
	BottomLeft
	BottomCenter
	BottomRight
	Custom
)

var pivotModeNames = [...]string{
	TopLeft:      "top_left",
	TopCenter:    "top_center",
	TopRight:     "top_right",
	CenterLeft:   "center_left",
	CenterCenter: "center_center",
	CenterRight:  "center_right",
	BottomLeft:   "bottom_left",
	BottomCenter: "bottom_center",
	BottomRight:  "bottom_right",
	Custom:       "custom",
}

func (m PivotMode) String() string {
	if m >= 0 && int(m) < len(pivotModeNames) {
		return pivotModeNames[m]
	}
	return fmt.Sprintf("PivotMode(%d)", int(m))
}

// ParsePivotMode converts a pivot name. An empty name means CenterCenter.
func ParsePivotMode(name string) (PivotMode, error) {
	if name == "" {
		return CenterCenter, nil
	}
	for i, n := range pivotModeNames {
		if n == name {
			return PivotMode(i), nil
		}
	}
	return CenterCenter, fmt.Errorf("%w: %q", ErrUnknownPivotMode, name)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *PivotMode) UnmarshalText(text []byte) error {
	parsed, err := ParsePivotMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// GeometrySettings describes one geometry channel, render or collision.
// Polygons are in texture space; rebuilds overwrite them for every mode
// except FullyCustom.
type GeometrySettings struct {
	Mode     PolygonMode
	Polygons []geom.ShapePolygon

	// AlphaThreshold in [0, 1]; pixels at or below it are empty.
	AlphaThreshold  float64
	SimplifyEpsilon float64

	PixelsPerSubdivisionX int
	PixelsPerSubdivisionY int

	AvoidVertexMerging bool
}

// DefaultGeometrySettings returns tight bounding box settings.
func DefaultGeometrySettings() GeometrySettings {
	return GeometrySettings{
		Mode:                  TightBoundingBox,
		SimplifyEpsilon:       DefaultSimplifyEpsilon,
		PixelsPerSubdivisionX: DefaultPixelsPerSubdivision,
		PixelsPerSubdivisionY: DefaultPixelsPerSubdivision,
	}
}

func (g *GeometrySettings) collection() geom.ShapeCollection {
	return geom.ShapeCollection{Polygons: g.Polygons, AvoidVertexMerging: g.AvoidVertexMerging}
}

func (g *GeometrySettings) addRectangle(pos, size r2.Point) {
	g.Polygons = append(g.Polygons, geom.ShapePolygon{Vertices: geom.Polygon{
		pos,
		{X: pos.X + size.X, Y: pos.Y},
		{X: pos.X + size.X, Y: pos.Y + size.Y},
		{X: pos.X, Y: pos.Y + size.Y},
	}})
}

func (g *GeometrySettings) subdivision() (int, int) {
	return max(g.PixelsPerSubdivisionX, MinPixelsPerSubdivision), max(g.PixelsPerSubdivisionY, MinPixelsPerSubdivision)
}

// RenderVertex is a baked vertex: position in pivot space world units and
// a normalised texture coordinate.
type RenderVertex struct {
	X, Y float64
	U, V float64
}

// Sprite is a region of a texture with its generated geometry.
type Sprite struct {
	Name string

	// Texture may be nil. TextureSize is then used to normalise UVs.
	Texture     image.Image
	TextureSize r2.Point

	SourceUV        r2.Point
	SourceDimension r2.Point

	Pivot                PivotMode
	CustomPivot          r2.Point
	SnapPivotToPixelGrid bool
	Rotated              bool

	PixelsPerUnit float64

	DefaultMaterial   string
	AlternateMaterial string

	RenderGeometry    GeometrySettings
	CollisionGeometry GeometrySettings

	CollisionKind      collision.Kind
	CollisionThickness float64

	BakedRenderData []RenderVertex
	// AlternateMaterialSplitIndex is the first baked vertex drawn with the
	// alternate material, or -1.
	AlternateMaterialSplitIndex int
	Body                        *collision.Body
}

// New returns a sprite with default settings.
func New(name string) *Sprite {
	return &Sprite{
		Name:                        name,
		Pivot:                       CenterCenter,
		SnapPivotToPixelGrid:        true,
		PixelsPerUnit:               DefaultPixelsPerUnit,
		DefaultMaterial:             DefaultMaterialName,
		AlternateMaterial:           DefaultAlternateMaterialName,
		RenderGeometry:              DefaultGeometrySettings(),
		CollisionGeometry:           DefaultGeometrySettings(),
		CollisionKind:               collision.ThreeD,
		CollisionThickness:          DefaultCollisionThickness,
		AlternateMaterialSplitIndex: -1,
	}
}

// UnitsPerPixel converts texture pixels to world units.
func (s *Sprite) UnitsPerPixel() float64 {
	if s.PixelsPerUnit <= 0 {
		return 1 / DefaultPixelsPerUnit
	}
	return 1 / s.PixelsPerUnit
}

// RawPivotPosition returns the unsnapped pivot in texture space.
func (s *Sprite) RawPivotPosition() r2.Point {
	uv, dim := s.SourceUV, s.SourceDimension
	at := func(fx, fy float64) r2.Point {
		return r2.Point{X: uv.X + dim.X*fx, Y: uv.Y + dim.Y*fy}
	}

	if s.Rotated {
		// The region is stored rotated a quarter turn clockwise.
		switch s.Pivot {
		case TopLeft:
			return at(1, 0)
		case TopCenter:
			return at(1, 0.5)
		case TopRight:
			return at(1, 1)
		case CenterLeft:
			return at(0.5, 0)
		case CenterCenter:
			return at(0.5, 0.5)
		case CenterRight:
			return at(0.5, 1)
		case BottomLeft:
			return at(0, 0)
		case BottomCenter:
			return at(0, 0.5)
		case BottomRight:
			return at(0, 1)
		default:
			return s.CustomPivot
		}
	}

	switch s.Pivot {
	case TopLeft:
		return at(0, 0)
	case TopCenter:
		return at(0.5, 0)
	case TopRight:
		return at(1, 0)
	case CenterLeft:
		return at(0, 0.5)
	case CenterCenter:
		return at(0.5, 0.5)
	case CenterRight:
		return at(1, 0.5)
	case BottomLeft:
		return at(0, 1)
	case BottomCenter:
		return at(0.5, 1)
	case BottomRight:
		return at(1, 1)
	default:
		return s.CustomPivot
	}
}

// PivotPosition returns the pivot in texture space, snapped to whole
// pixels when SnapPivotToPixelGrid is set.
func (s *Sprite) PivotPosition() r2.Point {
	p := s.RawPivotPosition()
	if s.SnapPivotToPixelGrid {
		p = r2.Point{X: math.Round(p.X), Y: math.Round(p.Y)}
	}
	return p
}

// TextureToPivot converts a texture space point into pivot space pixels.
func (s *Sprite) TextureToPivot(p r2.Point) r2.Point {
	pivot := s.PivotPosition()
	x := p.X - pivot.X
	y := -p.Y + pivot.Y
	if s.Rotated {
		return r2.Point{X: -y, Y: x}
	}
	return r2.Point{X: x, Y: y}
}

// PivotToTexture is the inverse of TextureToPivot.
func (s *Sprite) PivotToTexture(p r2.Point) r2.Point {
	pivot := s.PivotPosition()
	if s.Rotated {
		p = r2.Point{X: p.Y, Y: -p.X}
	}
	return r2.Point{X: p.X + pivot.X, Y: -p.Y + pivot.Y}
}

// textureSize returns the size used to normalise UVs.
func (s *Sprite) textureSize() r2.Point {
	if s.Texture != nil {
		b := s.Texture.Bounds()
		if b.Dx() > 0 && b.Dy() > 0 {
			return r2.Point{X: float64(b.Dx()), Y: float64(b.Dy())}
		}
	}
	if s.TextureSize.X > 0 && s.TextureSize.Y > 0 {
		return s.TextureSize
	}
	return r2.Point{X: 1, Y: 1}
}

// RenderBounds returns the extent of the baked render data in pivot space
// world units, or an empty rect before RebuildRenderData.
func (s *Sprite) RenderBounds() r2.Rect {
	if len(s.BakedRenderData) == 0 {
		return r2.EmptyRect()
	}
	r := r2.EmptyRect()
	for _, v := range s.BakedRenderData {
		r = r.AddPoint(r2.Point{X: v.X, Y: v.Y})
	}
	return r
}

// Rebuild regenerates both render and collision data.
func (s *Sprite) Rebuild(axes plane.Axes) {
	s.RebuildRenderData()
	s.RebuildCollisionData(axes)
}
