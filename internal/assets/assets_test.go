package assets

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/paper2d/pkg/collision"
	"github.com/Faultbox/paper2d/pkg/spline"
	"github.com/Faultbox/paper2d/pkg/sprite"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// writePNG writes a w x h image with an opaque block in [x0,x1) x [y0,y1).
func writePNG(t *testing.T, root, rel string, w, h, x0, y0, x1, y1 int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 90, G: 160, B: 60, A: 255})
		}
	}
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// createTestTree lays out a small grassland asset tree.
func createTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writePNG(t, root, "textures/grass.png", 16, 8, 2, 0, 14, 8)
	writeFile(t, root, "sprites/grass.yaml", `
name: grass
texture: textures/grass.png
pixels_per_unit: 1
render: { mode: tight_bounding_box }
collision: { mode: source_bounding_box, kind: 2d }
`)
	writeFile(t, root, "sprites/cap.yaml", `
name: cap
texture_size: [4, 8]
source_dimension: [4, 8]
pivot: bottom_left
pixels_per_unit: 2
render: { mode: source_bounding_box }
collision: { kind: none }
`)
	writeFile(t, root, "sprites/dirt.yaml", `
name: dirt
texture_size: [32, 32]
source_dimension: [32, 32]
default_material: fill
render: { mode: source_bounding_box }
`)
	writeFile(t, root, "sprites/custom.yaml", `
name: custom
texture_size: [10, 10]
source_dimension: [10, 10]
pixels_per_unit: 1
render:
  mode: fully_custom
  polygons:
    - vertices: [[0, 0], [10, 0], [10, 10], [0, 10]]
    - negative: true
      vertices: [[2, 2], [8, 2], [8, 8], [2, 8]]
`)
	writeFile(t, root, "materials/grassland.yaml", `
name: grassland
interior_fill: dirt
rules:
  - { description: top, min_angle: 0, max_angle: 360, bodies: [grass, grass], start_cap: cap, collision: true, draw_order: 1 }
`)
	writeFile(t, root, "materials/broken.yaml", `
name: broken
rules:
  - { min_angle: 0, max_angle: 90, bodies: [missing] }
`)
	writeFile(t, root, "scenes/hill.yaml", `
name: hill
material: grassland
seed: 42
mode: linear
points: [[0, 0, 0], [100, 0, 0]]
`)
	writeFile(t, root, "scenes/loop.yaml", `
name: loop
material: grassland
closed: true
points: [[0, 0, 0], [50, 0, 0], [50, 0, 50], [0, 0, 50]]
`)
	writeFile(t, root, "scenes/notes.txt", "not a scene")
	return root
}

func TestManager_Sprite(t *testing.T) {
	m := NewManager(createTestTree(t))

	s, err := m.Sprite("grass")
	if err != nil {
		t.Fatalf("Sprite() error = %v", err)
	}
	if s.Texture == nil {
		t.Fatal("expected a decoded texture")
	}
	if s.SourceDimension.X != 16 || s.SourceDimension.Y != 8 {
		t.Errorf("SourceDimension = %v, want the texture size", s.SourceDimension)
	}
	if s.RenderGeometry.Mode != sprite.TightBoundingBox {
		t.Errorf("render mode = %v, want tight", s.RenderGeometry.Mode)
	}
	if b := s.RenderBounds(); b.Size().X != 12 || b.Size().Y != 8 {
		t.Errorf("render size = %v, want 12x8 after tightening", b.Size())
	}
	if s.CollisionKind != collision.TwoD || s.Body == nil || s.Body.Len() != 1 {
		t.Errorf("expected one 2d collision box, got %v", s.Body)
	}
}

func TestManager_SpriteFields(t *testing.T) {
	m := NewManager(createTestTree(t))

	s, err := m.Sprite("cap")
	if err != nil {
		t.Fatalf("Sprite() error = %v", err)
	}
	if s.Pivot != sprite.BottomLeft || s.PixelsPerUnit != 2 {
		t.Errorf("pivot = %v ppu = %v", s.Pivot, s.PixelsPerUnit)
	}
	if s.Body != nil {
		t.Error("expected no collision body for kind none")
	}
	// Bottom left pivot, half a unit per pixel.
	b := s.RenderBounds()
	if b.X.Lo != 0 || b.Y.Lo != 0 || b.X.Hi != 2 || b.Y.Hi != 4 {
		t.Errorf("render bounds = %v, want [0,2]x[0,4]", b)
	}

	custom, err := m.Sprite("custom")
	if err != nil {
		t.Fatalf("Sprite(custom) error = %v", err)
	}
	if got := math.Abs(custom.RenderTriangles().Area()); got < 63.99 || got > 64.01 {
		t.Errorf("custom area = %v, want 64", got)
	}
}

func TestManager_SpriteDefaults(t *testing.T) {
	var called []string
	m := NewManager(createTestTree(t), WithSpriteDefaults(func(s *sprite.Sprite) {
		called = append(called, s.Name)
		s.DefaultMaterial = "from-config"
	}))

	s, err := m.Sprite("cap")
	if err != nil {
		t.Fatal(err)
	}
	if len(called) != 1 || s.DefaultMaterial != "from-config" {
		t.Errorf("defaults not applied: %v %q", called, s.DefaultMaterial)
	}
	d, err := m.Sprite("dirt")
	if err != nil {
		t.Fatal(err)
	}
	if d.DefaultMaterial != "fill" {
		t.Errorf("file should override defaults, got %q", d.DefaultMaterial)
	}
}

func TestManager_Errors(t *testing.T) {
	root := createTestTree(t)
	writeFile(t, root, "sprites/bad.yaml", "name: [unclosed")
	writeFile(t, root, "sprites/nosize.yaml", "name: nosize\n")
	writeFile(t, root, "sprites/badvec.yaml", "name: badvec\nsource_dimension: [1, 2, 3]\n")
	writeFile(t, root, "sprites/badmode.yaml", "name: badmode\nsource_dimension: [4, 4]\nrender: { mode: round }\n")
	writeFile(t, root, "scenes/short.yaml", "name: short\nmaterial: grassland\npoints: [[0, 0, 0]]\n")
	m := NewManager(root)

	tests := []struct {
		name string
		load func() error
		want error
	}{
		{"missing sprite", func() error { _, err := m.Sprite("nope"); return err }, ErrNotFound},
		{"path in name", func() error { _, err := m.Sprite("../grass"); return err }, ErrInvalidAsset},
		{"bad yaml", func() error { _, err := m.Sprite("bad"); return err }, ErrInvalidAsset},
		{"no size", func() error { _, err := m.Sprite("nosize"); return err }, ErrInvalidAsset},
		{"bad vector", func() error { _, err := m.Sprite("badvec"); return err }, ErrInvalidAsset},
		{"bad mode", func() error { _, err := m.Sprite("badmode"); return err }, ErrInvalidAsset},
		{"missing body", func() error { _, err := m.Material("broken"); return err }, ErrNotFound},
		{"short scene", func() error { _, err := m.Scene("short"); return err }, ErrInvalidAsset},
		{"missing texture", func() error {
			writeFile(t, root, "sprites/lost.yaml", "name: lost\ntexture: textures/lost.png\n")
			_, err := m.Sprite("lost")
			return err
		}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.load(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestManager_Material(t *testing.T) {
	m := NewManager(createTestTree(t))

	mat, err := m.Material("grassland")
	if err != nil {
		t.Fatalf("Material() error = %v", err)
	}
	if mat.InteriorFill == nil || mat.InteriorFill.Name != "dirt" {
		t.Errorf("expected dirt interior fill, got %v", mat.InteriorFill)
	}
	if len(mat.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(mat.Rules))
	}
	rule := mat.Rules[0]
	if rule.Description != "top" || !rule.EnableCollision || rule.DrawOrder != 1 {
		t.Errorf("unexpected rule %+v", rule)
	}
	if rule.StartCap == nil || rule.EndCap != nil {
		t.Errorf("expected a start cap only")
	}
	if len(rule.Bodies) != 2 || rule.Bodies[0] != rule.Bodies[1] {
		t.Error("expected the shared body sprite to be loaded once")
	}
}

func TestManager_Scene(t *testing.T) {
	m := NewManager(createTestTree(t), WithDefaultSeed(7))

	tests := []struct {
		name   string
		seed   int32
		closed bool
		mode   spline.Mode
		length float64
	}{
		{"hill", 42, false, spline.Linear, 100},
		{"loop", 7, true, spline.Curve, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := m.Scene(tt.name)
			if err != nil {
				t.Fatalf("Scene() error = %v", err)
			}
			if sc.Seed != tt.seed {
				t.Errorf("Seed = %d, want %d", sc.Seed, tt.seed)
			}
			if sc.Spline.Closed() != tt.closed || sc.Spline.Mode() != tt.mode {
				t.Errorf("spline closed=%v mode=%v", sc.Spline.Closed(), sc.Spline.Mode())
			}
			if tt.length > 0 && sc.Spline.Length() != tt.length {
				t.Errorf("Length() = %v, want %v", sc.Spline.Length(), tt.length)
			}
			if sc.Material == nil || sc.Material.Name != "grassland" {
				t.Errorf("unexpected material %v", sc.Material)
			}
		})
	}
}

func TestManager_SceneNames(t *testing.T) {
	m := NewManager(createTestTree(t))
	names, err := m.SceneNames()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "hill" || names[1] != "loop" {
		t.Errorf("SceneNames() = %v, want [hill loop]", names)
	}

	empty := NewManager(t.TempDir())
	if names, err := empty.SceneNames(); err != nil || len(names) != 0 {
		t.Errorf("empty tree SceneNames() = %v, %v", names, err)
	}
}

func TestManager_Cache(t *testing.T) {
	root := createTestTree(t)

	m := NewManager(root)
	a, _ := m.Sprite("grass")
	b, _ := m.Sprite("grass")
	if a != b {
		t.Error("expected the cached sprite")
	}
	stats := m.Stats()
	if stats.SpriteHits != 1 || stats.SpriteMisses != 1 {
		t.Errorf("sprite stats = %d/%d, want 1/1", stats.SpriteHits, stats.SpriteMisses)
	}
	if stats.TextureMisses != 1 {
		t.Errorf("texture misses = %d, want 1", stats.TextureMisses)
	}

	m.Clear()
	if c, _ := m.Sprite("grass"); c == a {
		t.Error("expected a reload after Clear")
	}

	uncached := NewManager(root, WithCache(false))
	x, _ := uncached.Sprite("grass")
	y, _ := uncached.Sprite("grass")
	if x == y {
		t.Error("expected fresh sprites with caching off")
	}
}

func TestCache(t *testing.T) {
	c := NewCache[int]()
	if _, ok := c.Get("a"); ok {
		t.Error("expected a miss")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d, %d, want 1, 1", hits, misses)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	c.Clear()
	if hits, misses := c.Stats(); hits != 0 || misses != 0 || c.Len() != 0 {
		t.Error("expected Clear to reset everything")
	}
}
