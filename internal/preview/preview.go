// Package preview rasterises baked terrain geometry to PNG so a bake can
// be checked without an engine. Triangles are filled with a flat color per
// batch; textures are not sampled.
package preview

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/golang/geo/r2"

	"github.com/Faultbox/paper2d/pkg/collision"
	"github.com/Faultbox/paper2d/pkg/plane"
	"github.com/Faultbox/paper2d/pkg/spline"
	"github.com/Faultbox/paper2d/pkg/sprite"
	"github.com/Faultbox/paper2d/pkg/terrain"
)

// Options controls a render.
type Options struct {
	Width, Height int
	Padding       float64
	// Wireframe strokes every triangle edge on top of the fill.
	Wireframe bool
	Axes      plane.Axes
	// Spline, when set, marks segment boundaries along the curve.
	Spline     *spline.Spline
	Background gg.RGBA
}

// DefaultOptions returns a 1024x768 render on a light background.
func DefaultOptions() Options {
	return Options{
		Width:      1024,
		Height:     768,
		Padding:    16,
		Axes:       plane.DefaultAxes(),
		Background: gg.RGB(0.93, 0.93, 0.9),
	}
}

// Batch fill colors, cycled by batch index.
var palette = []gg.RGBA{
	gg.RGB(0.36, 0.62, 0.27),
	gg.RGB(0.55, 0.4, 0.25),
	gg.RGB(0.3, 0.45, 0.7),
	gg.RGB(0.75, 0.6, 0.2),
	gg.RGB(0.6, 0.3, 0.55),
}

var (
	wireColor      = gg.RGBA2(0, 0, 0, 0.5)
	collisionColor = gg.RGB(0.85, 0.1, 0.1)
	segmentColor   = gg.RGB(0.1, 0.1, 0.8)
)

// view maps plane coordinates to pixels, Y up.
type view struct {
	scale  float64
	origin r2.Point
	height float64
}

func newView(bounds r2.Rect, opts Options) view {
	w := float64(opts.Width) - 2*opts.Padding
	h := float64(opts.Height) - 2*opts.Padding
	size := bounds.Size()

	scale := 1.0
	switch {
	case size.X > 0 && size.Y > 0:
		scale = math.Min(w/size.X, h/size.Y)
	case size.X > 0:
		scale = w / size.X
	case size.Y > 0:
		scale = h / size.Y
	}

	center := bounds.Center()
	return view{
		scale: scale,
		origin: r2.Point{
			X: float64(opts.Width)/2 - center.X*scale,
			Y: float64(opts.Height)/2 - center.Y*scale,
		},
		height: float64(opts.Height),
	}
}

func (v view) at(p r2.Point) (float64, float64) {
	return v.origin.X + p.X*v.scale, v.height - (v.origin.Y + p.Y*v.scale)
}

// Bounds returns the plane extent drawn for g: the render bounds grown
// by the collision bounds.
func Bounds(g *terrain.Geometry) r2.Rect {
	bounds := g.Bounds
	if cb := g.Collision.Bounds(); !cb.IsEmpty() {
		if bounds.IsEmpty() {
			return cb
		}
		bounds = bounds.Union(cb)
	}
	return bounds
}

// Render draws g and returns the image.
func Render(g *terrain.Geometry, opts Options) (image.Image, error) {
	dc, err := draw(g, opts)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	if err := dc.FlushGPU(); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// SavePNG draws g and writes it to path.
func SavePNG(path string, g *terrain.Geometry, opts Options) error {
	dc, err := draw(g, opts)
	if err != nil {
		return err
	}
	defer dc.Close()
	return dc.SavePNG(path)
}

func draw(g *terrain.Geometry, opts Options) (*gg.Context, error) {
	dc := gg.NewContext(opts.Width, opts.Height)
	dc.ClearWithColor(opts.Background)
	if g == nil {
		return dc, nil
	}
	bounds := Bounds(g)
	if bounds.IsEmpty() {
		return dc, nil
	}
	v := newView(bounds, opts)

	for i, batch := range g.Batches {
		base := palette[i%len(palette)]
		for _, rec := range batch.Records {
			dc.SetRGBA(base.R*float64(rec.Color[0]), base.G*float64(rec.Color[1]),
				base.B*float64(rec.Color[2]), base.A*float64(rec.Color[3]))
			// One fill per triangle so opposite windings never cancel.
			for t := 0; t+2 < len(rec.Vertices); t += 3 {
				triangle(dc, v, rec.Vertices[t:t+3])
				if err := dc.Fill(); err != nil {
					dc.Close()
					return nil, err
				}
			}
		}
	}

	if opts.Wireframe {
		dc.SetColor(wireColor.Color())
		dc.SetLineWidth(1)
		for _, batch := range g.Batches {
			for _, rec := range batch.Records {
				for t := 0; t+2 < len(rec.Vertices); t += 3 {
					triangle(dc, v, rec.Vertices[t:t+3])
				}
			}
		}
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, err
		}
	}

	if err := drawCollision(dc, v, g.Collision, opts.Axes); err != nil {
		dc.Close()
		return nil, err
	}
	if err := drawSegments(dc, v, g.Segments, opts); err != nil {
		dc.Close()
		return nil, err
	}
	return dc, nil
}

func triangle(dc *gg.Context, v view, verts []sprite.RenderVertex) {
	for j, vert := range verts {
		x, y := v.at(r2.Point{X: vert.X, Y: vert.Y})
		if j == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
}

func polyline(dc *gg.Context, v view, points []r2.Point) {
	for i, p := range points {
		x, y := v.at(p)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
}

func drawCollision(dc *gg.Context, v view, body *collision.Body, axes plane.Axes) error {
	if body.Len() == 0 {
		return nil
	}
	dc.SetColor(collisionColor.Color())
	dc.SetLineWidth(1.5)

	rect := func(center, size r2.Point) {
		corners := r2.RectFromCenterSize(center, size).Vertices()
		polyline(dc, v, corners[:])
	}
	for _, b := range body.Boxes2D {
		rect(b.Center, b.Size)
	}
	for _, c := range body.Convex2D {
		polyline(dc, v, c.Vertices)
	}
	for _, b := range body.Boxes3D {
		rect(axes.ToPlane(b.Center), r2.Point{X: b.Extents[0], Y: b.Extents[1]})
	}
	for _, c := range body.Convex3D {
		points := make([]r2.Point, 0, len(c.Vertices))
		for _, p := range c.Vertices {
			points = append(points, axes.ToPlane(p))
		}
		polyline(dc, v, points)
	}
	return dc.Stroke()
}

func drawSegments(dc *gg.Context, v view, segments []terrain.Segment, opts Options) error {
	if opts.Spline == nil || len(segments) == 0 {
		return nil
	}
	dc.SetColor(segmentColor.Color())
	length := opts.Spline.Length()
	for _, s := range segments {
		for _, d := range [2]float64{s.Start, s.End} {
			d = math.Max(0, math.Min(d, length))
			x, y := v.at(opts.Axes.ToPlane(opts.Spline.PositionAtDistance(d)))
			dc.DrawCircle(x, y, 3)
		}
	}
	return dc.Fill()
}
