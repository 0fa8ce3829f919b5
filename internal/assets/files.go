package assets

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"

	"github.com/Faultbox/paper2d/pkg/collision"
	"github.com/Faultbox/paper2d/pkg/geom"
	"github.com/Faultbox/paper2d/pkg/spline"
	"github.com/Faultbox/paper2d/pkg/sprite"
)

// SpriteFile is the YAML form of a sprite. Pointer fields keep the
// sprite defaults when absent.
type SpriteFile struct {
	Name              string            `yaml:"name"`
	Texture           string            `yaml:"texture,omitempty"`
	TextureSize       []float64         `yaml:"texture_size,omitempty,flow"`
	SourceUV          []float64         `yaml:"source_uv,omitempty,flow"`
	SourceDimension   []float64         `yaml:"source_dimension,omitempty,flow"`
	Pivot             *sprite.PivotMode `yaml:"pivot,omitempty"`
	CustomPivot       []float64         `yaml:"custom_pivot,omitempty,flow"`
	SnapPivot         *bool             `yaml:"snap_pivot,omitempty"`
	Rotated           bool              `yaml:"rotated,omitempty"`
	ColorKey          bool              `yaml:"color_key,omitempty"`
	PixelsPerUnit     float64           `yaml:"pixels_per_unit,omitempty"`
	DefaultMaterial   string            `yaml:"default_material,omitempty"`
	AlternateMaterial string            `yaml:"alternate_material,omitempty"`
	Render            GeometryFile      `yaml:"render,omitempty"`
	Collision         CollisionFile     `yaml:"collision,omitempty"`
}

// GeometryFile is the YAML form of sprite.GeometrySettings.
type GeometryFile struct {
	Mode                 *sprite.PolygonMode `yaml:"mode,omitempty"`
	AlphaThreshold       *float64            `yaml:"alpha_threshold,omitempty"`
	SimplifyEpsilon      *float64            `yaml:"simplify_epsilon,omitempty"`
	PixelsPerSubdivision int                 `yaml:"pixels_per_subdivision,omitempty"`
	AvoidVertexMerging   bool                `yaml:"avoid_vertex_merging,omitempty"`
	Polygons             []PolygonFile       `yaml:"polygons,omitempty"`
}

// CollisionFile adds the collision domain to GeometryFile.
type CollisionFile struct {
	GeometryFile `yaml:",inline"`
	Kind         *collision.Kind `yaml:"kind,omitempty"`
	Thickness    float64         `yaml:"thickness,omitempty"`
}

// PolygonFile is one custom polygon in texture pixels.
type PolygonFile struct {
	Negative bool        `yaml:"negative,omitempty"`
	Vertices [][]float64 `yaml:"vertices,flow"`
}

// MaterialFile is the YAML form of a terrain material. Sprites are
// referenced by name.
type MaterialFile struct {
	Name         string     `yaml:"name"`
	InteriorFill string     `yaml:"interior_fill,omitempty"`
	Rules        []RuleFile `yaml:"rules"`
}

// RuleFile is the YAML form of a terrain rule.
type RuleFile struct {
	Description     string   `yaml:"description,omitempty"`
	MinAngle        float64  `yaml:"min_angle"`
	MaxAngle        float64  `yaml:"max_angle"`
	StartCap        string   `yaml:"start_cap,omitempty"`
	EndCap          string   `yaml:"end_cap,omitempty"`
	Bodies          []string `yaml:"bodies,omitempty,flow"`
	Collision       bool     `yaml:"collision,omitempty"`
	CollisionOffset float64  `yaml:"collision_offset,omitempty"`
	DrawOrder       int      `yaml:"draw_order,omitempty"`
}

// SceneFile is the YAML form of a terrain scene.
type SceneFile struct {
	Name     string      `yaml:"name"`
	Material string      `yaml:"material"`
	Seed     *int32      `yaml:"seed,omitempty"`
	Closed   bool        `yaml:"closed,omitempty"`
	Mode     spline.Mode `yaml:"mode,omitempty"`
	Points   [][]float64 `yaml:"points,flow"`
}

func vec2(v []float64, field string) (r2.Point, error) {
	if len(v) != 2 {
		return r2.Point{}, fmt.Errorf("%w: %s needs 2 values, got %d", ErrInvalidAsset, field, len(v))
	}
	return r2.Point{X: v[0], Y: v[1]}, nil
}

func vec3(v []float64, field string) (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("%w: %s needs 3 values, got %d", ErrInvalidAsset, field, len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}

// apply copies the set fields onto g.
func (f *GeometryFile) apply(g *sprite.GeometrySettings) error {
	if f.Mode != nil {
		g.Mode = *f.Mode
	}
	if f.AlphaThreshold != nil {
		g.AlphaThreshold = *f.AlphaThreshold
	}
	if f.SimplifyEpsilon != nil {
		g.SimplifyEpsilon = *f.SimplifyEpsilon
	}
	if f.PixelsPerSubdivision > 0 {
		g.PixelsPerSubdivisionX = f.PixelsPerSubdivision
		g.PixelsPerSubdivisionY = f.PixelsPerSubdivision
	}
	g.AvoidVertexMerging = f.AvoidVertexMerging

	if len(f.Polygons) > 0 {
		g.Polygons = make([]geom.ShapePolygon, 0, len(f.Polygons))
	}
	for i, p := range f.Polygons {
		poly := geom.ShapePolygon{Negative: p.Negative}
		for j, v := range p.Vertices {
			pt, err := vec2(v, fmt.Sprintf("polygons[%d].vertices[%d]", i, j))
			if err != nil {
				return err
			}
			poly.Vertices = append(poly.Vertices, pt)
		}
		g.Polygons = append(g.Polygons, poly)
	}
	return nil
}

// apply copies the file onto s, which already carries the defaults. The
// texture is resolved by the caller.
func (f *SpriteFile) apply(s *sprite.Sprite) error {
	var err error
	if f.TextureSize != nil {
		if s.TextureSize, err = vec2(f.TextureSize, "texture_size"); err != nil {
			return err
		}
	}
	if f.SourceUV != nil {
		if s.SourceUV, err = vec2(f.SourceUV, "source_uv"); err != nil {
			return err
		}
	}
	if f.SourceDimension != nil {
		if s.SourceDimension, err = vec2(f.SourceDimension, "source_dimension"); err != nil {
			return err
		}
	}
	if f.Pivot != nil {
		s.Pivot = *f.Pivot
	}
	if f.CustomPivot != nil {
		if s.CustomPivot, err = vec2(f.CustomPivot, "custom_pivot"); err != nil {
			return err
		}
	}
	if f.SnapPivot != nil {
		s.SnapPivotToPixelGrid = *f.SnapPivot
	}
	s.Rotated = f.Rotated
	if f.PixelsPerUnit > 0 {
		s.PixelsPerUnit = f.PixelsPerUnit
	}
	if f.DefaultMaterial != "" {
		s.DefaultMaterial = f.DefaultMaterial
	}
	if f.AlternateMaterial != "" {
		s.AlternateMaterial = f.AlternateMaterial
	}

	if err := f.Render.apply(&s.RenderGeometry); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := f.Collision.apply(&s.CollisionGeometry); err != nil {
		return fmt.Errorf("collision: %w", err)
	}
	if f.Collision.Kind != nil {
		s.CollisionKind = *f.Collision.Kind
	}
	if f.Collision.Thickness > 0 {
		s.CollisionThickness = f.Collision.Thickness
	}
	return nil
}

// points converts the scene control points.
func (f *SceneFile) points() ([]mgl64.Vec3, error) {
	out := make([]mgl64.Vec3, 0, len(f.Points))
	for i, p := range f.Points {
		v, err := vec3(p, fmt.Sprintf("points[%d]", i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
