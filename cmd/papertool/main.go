// papertool is a CLI utility for inspecting Paper2D sprites, shapes and
// terrain scenes.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/golang/geo/r2"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/paper2d/internal/assets"
	"github.com/Faultbox/paper2d/internal/config"
	"github.com/Faultbox/paper2d/internal/export"
	"github.com/Faultbox/paper2d/internal/preview"
	"github.com/Faultbox/paper2d/internal/texture"
	"github.com/Faultbox/paper2d/pkg/geom"
	"github.com/Faultbox/paper2d/pkg/sprite"
	"github.com/Faultbox/paper2d/pkg/terrain"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "triangulate", "tri":
		cmdTriangulate(args)
	case "contours":
		cmdContours(args)
	case "segments", "seg":
		cmdSegments(args)
	case "stamps":
		cmdStamps(args)
	case "preview":
		cmdPreview(args)
	case "export":
		cmdExport(args)
	case "inspect":
		cmdInspect(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`papertool - Paper2D geometry utility

Usage:
  papertool <command> [options]

Commands:
  triangulate <shape.yaml>               Triangulate a polygon collection
  contours <image>                       Trace the alpha outlines of an image
  segments <scene>                       Split a scene spline into rule segments
  stamps <scene>                         Lay out sprite stamps along a scene
  preview <scene> <out.png>              Render a baked scene to PNG
  export <scene> <out.p2g>               Bake a scene and write it as .p2g
  inspect <file.p2g>                     Summarise an exported file

Scene commands accept -assets <dir>, -config <file> and -seed <n>.

Examples:
  papertool triangulate hole.yaml -v
  papertool contours -threshold 0.25 grass.png
  papertool stamps -assets ./assets hill
  papertool export -assets ./assets hill out/hill.p2g`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// shapeFile is the input of triangulate.
type shapeFile struct {
	AvoidVertexMerging bool                 `yaml:"avoid_vertex_merging"`
	Polygons           []assets.PolygonFile `yaml:"polygons"`
}

func cmdTriangulate(args []string) {
	fs := flag.NewFlagSet("triangulate", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Print every triangle")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: papertool triangulate [-v] <shape.yaml>")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fail("Error: %v", err)
	}
	var shape shapeFile
	if err := yaml.Unmarshal(data, &shape); err != nil {
		fail("Error parsing %s: %v", fs.Arg(0), err)
	}

	collection := geom.ShapeCollection{AvoidVertexMerging: shape.AvoidVertexMerging}
	for i, p := range shape.Polygons {
		poly := geom.ShapePolygon{Negative: p.Negative}
		for j, v := range p.Vertices {
			if len(v) != 2 {
				fail("polygons[%d].vertices[%d]: need 2 values, got %d", i, j, len(v))
			}
			poly.Vertices = append(poly.Vertices, r2.Point{X: v[0], Y: v[1]})
		}
		collection.Polygons = append(collection.Polygons, poly)
	}

	tris := geom.Triangulate(collection)
	fmt.Printf("Polygons:  %d\n", len(collection.Polygons))
	fmt.Printf("Triangles: %d\n", tris.Count())
	fmt.Printf("Area:      %.3f\n", tris.Area())
	if *verbose {
		for i := 0; i < tris.Count(); i++ {
			a, b, c := tris.Triangle(i)
			fmt.Printf("  %4d  (%g, %g) (%g, %g) (%g, %g)\n", i, a.X, a.Y, b.X, b.Y, c.X, c.Y)
		}
	}
}

func cmdContours(args []string) {
	fs := flag.NewFlagSet("contours", flag.ExitOnError)
	threshold := fs.Float64("threshold", 0, "Alpha threshold fraction (0-1)")
	colorKey := fs.Bool("colorkey", false, "Treat magenta as transparent")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: papertool contours [-threshold f] [-colorkey] <image>")
	}

	img, err := texture.Load(fs.Arg(0))
	if err != nil {
		fail("Error: %v", err)
	}
	if *colorKey {
		img = texture.ToRGBA(img, true)
	}

	bm := sprite.NewAlphaBitmap(img, sprite.ThresholdFromFraction(*threshold))
	tight := bm.TightBounds()
	contours := sprite.FindContours(bm, image.Point{}, image.Point{X: bm.Width, Y: bm.Height})

	fmt.Printf("Image:    %s (%dx%d)\n", fs.Arg(0), bm.Width, bm.Height)
	fmt.Printf("Opaque:   %v\n", tight)
	fmt.Printf("Contours: %d\n", len(contours))
	for i, c := range contours {
		points := make([]string, len(c))
		for j, p := range c {
			points[j] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
		}
		fmt.Printf("  %3d  %d points: %s\n", i, len(c), strings.Join(points, " "))
	}
}

// sceneFlags are shared by the scene commands.
type sceneFlags struct {
	assets *string
	config *string
	seed   *int
}

func newSceneFlags(fs *flag.FlagSet) sceneFlags {
	return sceneFlags{
		assets: fs.String("assets", "", "Asset root directory (defaults to the config value)"),
		config: fs.String("config", "", "Path to config file"),
		seed:   fs.Int("seed", 0, "Random seed (0 keeps the scene seed)"),
	}
}

// load resolves the config and the named scene.
func (f sceneFlags) load(name string) (*config.Config, *assets.Scene) {
	cfg, err := config.LoadFile(*f.config)
	if err != nil {
		fail("Config error: %v", err)
	}
	if *f.assets != "" {
		cfg.Assets.Root = *f.assets
	}

	settings := cfg.TerrainSettings()
	mgr := assets.NewManager(cfg.Assets.Root,
		assets.WithSpriteDefaults(cfg.ApplySpriteDefaults),
		assets.WithAxes(settings.Axes),
		assets.WithDefaultSeed(cfg.Terrain.Seed),
	)
	sc, err := mgr.Scene(name)
	if err != nil {
		fail("Error: %v", err)
	}
	if *f.seed != 0 {
		sc.Seed = int32(*f.seed)
	}
	return cfg, sc
}

func cmdSegments(args []string) {
	fs := flag.NewFlagSet("segments", flag.ExitOnError)
	sf := newSceneFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: papertool segments [-assets dir] <scene>")
	}

	cfg, sc := sf.load(fs.Arg(0))
	segments := terrain.SegmentSpline(sc.Spline, sc.Material, cfg.TerrainSettings())

	fmt.Printf("Scene:    %s (material %s)\n", sc.Name, sc.Material.Name)
	fmt.Printf("Length:   %.3f\n", sc.Spline.Length())
	fmt.Printf("Segments: %d\n", len(segments))
	for i, s := range segments {
		fmt.Printf("  %3d  [%9.3f, %9.3f)  %-16s\n", i, s.Start, s.End, s.Rule.Description)
	}
}

func cmdStamps(args []string) {
	fs := flag.NewFlagSet("stamps", flag.ExitOnError)
	sf := newSceneFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: papertool stamps [-assets dir] [-seed n] <scene>")
	}

	cfg, sc := sf.load(fs.Arg(0))
	segments := terrain.SegmentSpline(sc.Spline, sc.Material, cfg.TerrainSettings())
	terrain.StampSegments(segments, terrain.NewRandomStream(sc.Seed))

	fmt.Printf("Scene: %s (seed %d)\n", sc.Name, sc.Seed)
	for i, s := range segments {
		fmt.Printf("Segment %d [%.3f, %.3f) %s: %d stamps\n", i, s.Start, s.End, s.Rule.Description, len(s.Stamps))
		for _, st := range s.Stamps {
			stretch := ""
			if st.CanStretch {
				stretch = "stretch"
			}
			fmt.Printf("  %9.3f  x%.4f  %-16s %s\n", st.Time, st.Scale, st.Sprite.Name, stretch)
		}
	}
}

func cmdPreview(args []string) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	sf := newSceneFlags(fs)
	wireframe := fs.Bool("wireframe", false, "Stroke triangle edges")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fail("Usage: papertool preview [-assets dir] [-wireframe] <scene> <out.png>")
	}

	cfg, sc := sf.load(fs.Arg(0))
	settings := cfg.TerrainSettings()
	geo := terrain.Build(sc.Spline, sc.Material, sc.Seed, settings)

	opts := preview.DefaultOptions()
	opts.Width, opts.Height = cfg.Preview.Width, cfg.Preview.Height
	opts.Padding = cfg.Preview.Padding
	opts.Wireframe = *wireframe || cfg.Preview.Wireframe
	opts.Axes = settings.Axes
	opts.Spline = sc.Spline
	if err := preview.SavePNG(fs.Arg(1), geo, opts); err != nil {
		fail("Error: %v", err)
	}
	fmt.Printf("Wrote %s (%d vertices)\n", fs.Arg(1), geo.VertexCount())
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	sf := newSceneFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 2 {
		fail("Usage: papertool export [-assets dir] [-seed n] <scene> <out.p2g>")
	}

	cfg, sc := sf.load(fs.Arg(0))
	geo := terrain.Build(sc.Spline, sc.Material, sc.Seed, cfg.TerrainSettings())
	if err := export.WriteFile(fs.Arg(1), export.FromGeometry(sc.Name, geo)); err != nil {
		fail("Error: %v", err)
	}
	fmt.Printf("Wrote %s (%d stamps, %d vertices, %d collision shapes)\n",
		fs.Arg(1), geo.StampCount(), geo.VertexCount(), geo.Collision.Len())
}

func cmdInspect(args []string) {
	if len(args) < 1 {
		fail("Usage: papertool inspect <file.p2g>")
	}

	f, err := export.ReadFile(args[0])
	if err != nil {
		fail("Error: %v", err)
	}

	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Name:      %s (version %d)\n", f.Name, f.Version)
	fmt.Printf("Bounds:    %v\n", f.Bounds)
	fmt.Printf("Segments:  %d\n", len(f.Segments))
	for _, s := range f.Segments {
		fmt.Printf("  [%9.3f, %9.3f)  %-16s %d stamps\n", s.Start, s.End, s.Rule, s.Stamps)
	}
	fmt.Printf("Batches:   %d (%d vertices)\n", len(f.Batches), f.VertexCount())
	for _, b := range f.Batches {
		fmt.Printf("  %-16s order %3d  %d records\n", b.Material, b.DrawOrder, len(b.Records))
		for _, r := range b.Records {
			fmt.Printf("    %-16s %d vertices\n", r.Sprite, len(r.Vertices))
		}
	}
	if f.Collision != nil {
		fmt.Printf("Collision: %s, %d shapes, bounds %v\n", f.Collision.Kind, f.Collision.Len(), f.Collision.Bounds())
	} else {
		fmt.Println("Collision: none")
	}
}
