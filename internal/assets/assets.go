// Package assets loads sprites, terrain materials and scenes from a YAML
// asset tree and caches them by name.
//
// The tree looks like:
//
//	root/sprites/<name>.yaml
//	root/materials/<name>.yaml
//	root/scenes/<name>.yaml
//	root/<texture paths referenced by sprites>
package assets

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/paper2d/internal/texture"
	"github.com/Faultbox/paper2d/pkg/plane"
	"github.com/Faultbox/paper2d/pkg/spline"
	"github.com/Faultbox/paper2d/pkg/sprite"
	"github.com/Faultbox/paper2d/pkg/terrain"
)

// Asset errors.
var (
	ErrNotFound     = errors.New("asset not found")
	ErrInvalidAsset = errors.New("invalid asset")
)

// Asset directories under the root.
const (
	SpriteDir   = "sprites"
	MaterialDir = "materials"
	SceneDir    = "scenes"
)

// Scene is a spline paired with the material that dresses it.
type Scene struct {
	Name     string
	Material *terrain.Material
	Spline   *spline.Spline
	// Seed is the scene seed, or the manager default when the file has
	// none.
	Seed int32
}

// Option configures a Manager.
type Option func(*Manager)

// WithSpriteDefaults runs fn on every new sprite before its file is
// applied.
func WithSpriteDefaults(fn func(*sprite.Sprite)) Option {
	return func(m *Manager) { m.spriteDefaults = fn }
}

// WithAxes sets the plane used to build sprite collision.
func WithAxes(axes plane.Axes) Option {
	return func(m *Manager) { m.axes = axes }
}

// WithCache enables or disables caching. Disabled managers reload on
// every request.
func WithCache(enabled bool) Option {
	return func(m *Manager) { m.cacheEnabled = enabled }
}

// WithDefaultSeed sets the seed of scenes that do not name one.
func WithDefaultSeed(seed int32) Option {
	return func(m *Manager) { m.defaultSeed = seed }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// Manager resolves assets by name.
type Manager struct {
	root           string
	axes           plane.Axes
	spriteDefaults func(*sprite.Sprite)
	defaultSeed    int32
	cacheEnabled   bool
	log            *zap.Logger

	// mu serialises loads so a shared sprite is decoded once.
	mu        sync.Mutex
	textures  *Cache[image.Image]
	sprites   *Cache[*sprite.Sprite]
	materials *Cache[*terrain.Material]
	scenes    *Cache[*Scene]
}

// NewManager creates a manager for the asset tree at root.
func NewManager(root string, opts ...Option) *Manager {
	m := &Manager{
		root:         root,
		axes:         plane.DefaultAxes(),
		cacheEnabled: true,
		log:          zap.NewNop(),
		textures:     NewCache[image.Image](),
		sprites:      NewCache[*sprite.Sprite](),
		materials:    NewCache[*terrain.Material](),
		scenes:       NewCache[*Scene](),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Root returns the asset root directory.
func (m *Manager) Root() string { return m.root }

// readYAML decodes root/dir/name.yaml into v.
func (m *Manager) readYAML(dir, name string, v any) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: bad %s name %q", ErrInvalidAsset, dir, name)
	}
	path := filepath.Join(m.root, dir, name+".yaml")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidAsset, path, err)
	}
	return nil
}

func lookup[V any](m *Manager, c *Cache[V], key string) (V, bool) {
	if !m.cacheEnabled {
		var zero V
		return zero, false
	}
	return c.Get(key)
}

func store[V any](m *Manager, c *Cache[V], key string, v V) {
	if m.cacheEnabled {
		c.Set(key, v)
	}
}

// Texture decodes the image at a path relative to the root.
func (m *Manager) Texture(rel string) (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.texture(rel)
}

func (m *Manager) texture(rel string) (image.Image, error) {
	if img, ok := lookup(m, m.textures, rel); ok {
		return img, nil
	}
	img, err := texture.Load(filepath.Join(m.root, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: texture %s", ErrNotFound, rel)
	}
	if err != nil {
		return nil, err
	}
	store(m, m.textures, rel, img)
	m.log.Debug("texture loaded", zap.String("path", rel), zap.Stringer("bounds", img.Bounds()))
	return img, nil
}

// Sprite loads and rebuilds the named sprite.
func (m *Manager) Sprite(name string) (*sprite.Sprite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sprite(name)
}

func (m *Manager) sprite(name string) (*sprite.Sprite, error) {
	if s, ok := lookup(m, m.sprites, name); ok {
		return s, nil
	}

	var f SpriteFile
	if err := m.readYAML(SpriteDir, name, &f); err != nil {
		return nil, err
	}

	s := sprite.New(name)
	if m.spriteDefaults != nil {
		m.spriteDefaults(s)
	}
	if err := f.apply(s); err != nil {
		return nil, fmt.Errorf("sprite %s: %w", name, err)
	}

	if f.Texture != "" {
		img, err := m.texture(f.Texture)
		if err != nil {
			return nil, fmt.Errorf("sprite %s: %w", name, err)
		}
		if f.ColorKey {
			img = texture.ToRGBA(img, true)
		}
		s.Texture = img
		b := img.Bounds()
		s.TextureSize.X, s.TextureSize.Y = float64(b.Dx()), float64(b.Dy())
		if f.SourceDimension == nil {
			s.SourceDimension = s.TextureSize
		}
	}
	if s.SourceDimension.X <= 0 || s.SourceDimension.Y <= 0 {
		return nil, fmt.Errorf("%w: sprite %s has no source dimension", ErrInvalidAsset, name)
	}

	s.Rebuild(m.axes)
	store(m, m.sprites, name, s)
	m.log.Debug("sprite loaded",
		zap.String("name", name),
		zap.Stringer("mode", s.RenderGeometry.Mode),
		zap.Int("vertices", len(s.BakedRenderData)),
		zap.Int("collision_shapes", s.Body.Len()))
	return s, nil
}

// optionalSprite resolves a sprite reference that may be empty.
func (m *Manager) optionalSprite(name string) (*sprite.Sprite, error) {
	if name == "" {
		return nil, nil
	}
	return m.sprite(name)
}

// Material loads the named material and every sprite it references.
func (m *Manager) Material(name string) (*terrain.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.material(name)
}

func (m *Manager) material(name string) (*terrain.Material, error) {
	if mat, ok := lookup(m, m.materials, name); ok {
		return mat, nil
	}

	var f MaterialFile
	if err := m.readYAML(MaterialDir, name, &f); err != nil {
		return nil, err
	}

	mat := &terrain.Material{Name: name, Rules: make([]terrain.Rule, len(f.Rules))}
	var err error
	if mat.InteriorFill, err = m.optionalSprite(f.InteriorFill); err != nil {
		return nil, fmt.Errorf("material %s: interior fill: %w", name, err)
	}
	for i, rf := range f.Rules {
		rule := terrain.Rule{
			Description:     rf.Description,
			MinAngle:        rf.MinAngle,
			MaxAngle:        rf.MaxAngle,
			EnableCollision: rf.Collision,
			CollisionOffset: rf.CollisionOffset,
			DrawOrder:       rf.DrawOrder,
		}
		if rule.StartCap, err = m.optionalSprite(rf.StartCap); err != nil {
			return nil, fmt.Errorf("material %s: rule %d: %w", name, i, err)
		}
		if rule.EndCap, err = m.optionalSprite(rf.EndCap); err != nil {
			return nil, fmt.Errorf("material %s: rule %d: %w", name, i, err)
		}
		for _, body := range rf.Bodies {
			s, err := m.sprite(body)
			if err != nil {
				return nil, fmt.Errorf("material %s: rule %d: %w", name, i, err)
			}
			rule.Bodies = append(rule.Bodies, s)
		}
		mat.Rules[i] = rule
	}

	store(m, m.materials, name, mat)
	m.log.Debug("material loaded", zap.String("name", name), zap.Int("rules", len(mat.Rules)))
	return mat, nil
}

// Scene loads the named scene, its spline and its material.
func (m *Manager) Scene(name string) (*Scene, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sc, ok := lookup(m, m.scenes, name); ok {
		return sc, nil
	}

	var f SceneFile
	if err := m.readYAML(SceneDir, name, &f); err != nil {
		return nil, err
	}
	points, err := f.points()
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}
	spl, err := spline.New(points, f.Closed, spline.WithMode(f.Mode))
	if err != nil {
		return nil, fmt.Errorf("%w: scene %s: %v", ErrInvalidAsset, name, err)
	}
	mat, err := m.material(f.Material)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}

	sc := &Scene{Name: name, Material: mat, Spline: spl, Seed: m.defaultSeed}
	if f.Seed != nil {
		sc.Seed = *f.Seed
	}
	store(m, m.scenes, name, sc)
	m.log.Info("scene loaded",
		zap.String("name", name),
		zap.String("material", mat.Name),
		zap.Float64("length", spl.Length()),
		zap.Bool("closed", spl.Closed()))
	return sc, nil
}

// SceneNames lists the scenes under the root, sorted.
func (m *Manager) SceneNames() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(m.root, SceneDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// CacheStats holds hit and miss counts per asset kind.
type CacheStats struct {
	TextureHits, TextureMisses   int
	SpriteHits, SpriteMisses     int
	MaterialHits, MaterialMisses int
	SceneHits, SceneMisses       int
}

// Stats returns cache statistics.
func (m *Manager) Stats() CacheStats {
	var s CacheStats
	s.TextureHits, s.TextureMisses = m.textures.Stats()
	s.SpriteHits, s.SpriteMisses = m.sprites.Stats()
	s.MaterialHits, s.MaterialMisses = m.materials.Stats()
	s.SceneHits, s.SceneMisses = m.scenes.Stats()
	return s
}

// Clear drops every cached asset.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textures.Clear()
	m.sprites.Clear()
	m.materials.Clear()
	m.scenes.Clear()
}
