package terrain

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"

	"github.com/Faultbox/paper2d/pkg/collision"
	"github.com/Faultbox/paper2d/pkg/geom"
	"github.com/Faultbox/paper2d/pkg/spline"
	"github.com/Faultbox/paper2d/pkg/sprite"
)

// DrawCallRecord is a run of triangles drawn with one texture. Vertices
// are already in plane coordinates, so Destination stays at the origin for
// terrain records.
type DrawCallRecord struct {
	Destination mgl64.Vec3
	Sprite      *sprite.Sprite
	Texture     image.Image
	Color       [4]float32
	Vertices    []sprite.RenderVertex
}

// Batch groups the records sharing a material.
type Batch struct {
	Material  string
	DrawOrder int
	Records   []DrawCallRecord
}

// VertexCount returns the number of vertices across all records.
func (b *Batch) VertexCount() int {
	var n int
	for _, r := range b.Records {
		n += len(r.Vertices)
	}
	return n
}

// Geometry is the output of Build.
type Geometry struct {
	Segments  []Segment
	Batches   []Batch
	Collision *collision.Body
	Bounds    r2.Rect
}

// VertexCount returns the number of vertices across all batches.
func (g *Geometry) VertexCount() int {
	var n int
	for i := range g.Batches {
		n += g.Batches[i].VertexCount()
	}
	return n
}

// StampCount returns the number of stamps across all segments.
func (g *Geometry) StampCount() int {
	var n int
	for _, s := range g.Segments {
		n += len(s.Stamps)
	}
	return n
}

// Build runs the whole pipeline: segment, stamp with a stream seeded by
// seed, instance every stamp and fill the interior of closed splines.
// Degenerate input gives empty geometry.
func Build(spl *spline.Spline, material *Material, seed int32, settings Settings) *Geometry {
	b := &builder{
		spl:      spl,
		settings: settings,
		geometry: &Geometry{Bounds: r2.EmptyRect()},
		batches:  make(map[string]int),
		records:  make(map[recordKey]int),
	}
	if spl == nil || material == nil {
		return b.geometry
	}

	b.fillInterior(material.InteriorFill)

	segments := SegmentSpline(spl, material, settings)
	StampSegments(segments, NewRandomStream(seed))
	b.geometry.Segments = segments

	for _, segment := range segments {
		for _, stamp := range segment.Stamps {
			b.instance(segment.Rule, stamp)
		}
	}
	return b.geometry
}

type recordKey struct {
	batch  int
	sprite *sprite.Sprite
}

type builder struct {
	spl      *spline.Spline
	settings Settings
	geometry *Geometry

	batches map[string]int
	records map[recordKey]int
}

// appendVertices adds verts to the record of s inside the batch for
// material, creating both on first use.
func (b *builder) appendVertices(material string, drawOrder int, s *sprite.Sprite, verts []sprite.RenderVertex) {
	if len(verts) == 0 {
		return
	}
	g := b.geometry

	bi, ok := b.batches[material]
	if !ok {
		bi = len(g.Batches)
		g.Batches = append(g.Batches, Batch{Material: material, DrawOrder: drawOrder})
		b.batches[material] = bi
	}
	batch := &g.Batches[bi]

	key := recordKey{batch: bi, sprite: s}
	ri, ok := b.records[key]
	if !ok {
		ri = len(batch.Records)
		batch.Records = append(batch.Records, DrawCallRecord{
			Sprite:  s,
			Texture: s.Texture,
			Color:   b.settings.Color,
		})
		b.records[key] = ri
	}
	record := &batch.Records[ri]
	record.Vertices = append(record.Vertices, verts...)

	for _, v := range verts {
		g.Bounds = g.Bounds.AddPoint(r2.Point{X: v.X, Y: v.Y})
	}
}

func (b *builder) frameAt(distance float64) spline.Frame {
	if length := b.spl.Length(); b.spl.Closed() && length > 0 {
		distance = math.Mod(distance, length)
		if distance < 0 {
			distance += length
		}
	}
	return b.spl.FrameAtDistance(distance, b.settings.Axes)
}

// transform moves baked sprite vertices to the stamp position.
func (b *builder) transform(stamp Stamp, baked []sprite.RenderVertex) []sprite.RenderVertex {
	axes := b.settings.Axes
	frame := b.frameAt(stamp.Time)
	out := make([]sprite.RenderVertex, len(baked))
	for i, v := range baked {
		x := v.X
		if stamp.CanStretch {
			x *= stamp.Scale
		}
		var world mgl64.Vec3
		if b.settings.BendToSpline {
			world = b.frameAt(stamp.Time+x).TransformPoint(0, v.Y)
		} else {
			world = frame.TransformPoint(x, v.Y)
		}
		p := axes.ToPlane(world)
		out[i] = sprite.RenderVertex{X: p.X, Y: p.Y, U: v.U, V: v.V}
	}
	return out
}

func (b *builder) instance(rule *Rule, stamp Stamp) {
	s := stamp.Sprite
	baked := s.BakedRenderData
	split := s.AlternateMaterialSplitIndex
	if split >= 0 && split <= len(baked) {
		b.appendVertices(s.DefaultMaterial, rule.DrawOrder, s, b.transform(stamp, baked[:split]))
		b.appendVertices(s.AlternateMaterial, rule.DrawOrder, s, b.transform(stamp, baked[split:]))
	} else {
		b.appendVertices(s.DefaultMaterial, rule.DrawOrder, s, b.transform(stamp, baked))
	}

	if rule.EnableCollision {
		b.addCollision(rule, stamp)
	}
}

// addCollision adds the plane aligned box around the stamp quad.
func (b *builder) addCollision(rule *Rule, stamp Stamp) {
	kind := b.settings.CollisionKind
	if kind == collision.None {
		return
	}
	bounds := stamp.Sprite.RenderBounds()
	if bounds.IsEmpty() {
		return
	}
	scale := 1.0
	if stamp.CanStretch {
		scale = stamp.Scale
	}

	axes := b.settings.Axes
	frame := b.frameAt(stamp.Time)
	rect := r2.EmptyRect()
	for _, corner := range [4]r2.Point{
		{X: bounds.X.Lo, Y: bounds.Y.Lo},
		{X: bounds.X.Hi, Y: bounds.Y.Lo},
		{X: bounds.X.Hi, Y: bounds.Y.Hi},
		{X: bounds.X.Lo, Y: bounds.Y.Hi},
	} {
		world := frame.TransformPoint(corner.X*scale, corner.Y+rule.CollisionOffset)
		rect = rect.AddPoint(axes.ToPlane(world))
	}

	if b.geometry.Collision == nil {
		b.geometry.Collision = collision.NewBody(kind)
	}
	b.geometry.Collision.AddRect(rect, b.settings.CollisionThickness, axes)
}

// fillInterior triangulates the area enclosed by a closed spline and
// tiles the fill sprite texture across it.
func (b *builder) fillInterior(fill *sprite.Sprite) {
	if fill == nil || !b.spl.Closed() || b.spl.Length() <= 0 {
		return
	}
	axes := b.settings.Axes
	interval := b.settings.samplingInterval()

	var outline geom.Polygon
	for d := 0.0; d < b.spl.Length(); d += interval {
		outline = append(outline, axes.ToPlane(b.spl.PositionAtDistance(d)))
	}
	outline = geom.SimplifyPoints(outline, b.settings.FillSimplifyEpsilon)
	outline = geom.RemoveCollinearPoints(outline)
	outline = geom.CorrectPolygonWinding(outline, false)

	tris := geom.TriangulatePoly(outline, false)
	if len(tris) == 0 {
		return
	}

	tile := r2.Point{X: 1, Y: 1}
	if bounds := fill.RenderBounds(); !bounds.IsEmpty() {
		size := bounds.Size()
		if size.X > 0 && size.Y > 0 {
			tile = size
		}
	}
	verts := make([]sprite.RenderVertex, len(tris))
	for i, p := range tris {
		verts[i] = sprite.RenderVertex{X: p.X, Y: p.Y, U: p.X / tile.X, V: -p.Y / tile.Y}
	}
	b.appendVertices(fill.DefaultMaterial, 0, fill, verts)
}
