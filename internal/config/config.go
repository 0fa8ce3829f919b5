// Package config handles baker and tool configuration loading.
package config

import (
	"github.com/Faultbox/paper2d/pkg/collision"
	"github.com/Faultbox/paper2d/pkg/sprite"
	"github.com/Faultbox/paper2d/pkg/terrain"
)

// Config holds all settings.
type Config struct {
	Terrain TerrainConfig `yaml:"terrain"`
	Sprite  SpriteConfig  `yaml:"sprite"`
	Preview PreviewConfig `yaml:"preview"`
	Assets  AssetsConfig  `yaml:"assets"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// TerrainConfig holds the terrain pipeline settings.
type TerrainConfig struct {
	SamplingInterval    float64        `yaml:"sampling_interval"`
	SegmentOverlap      float64        `yaml:"segment_overlap"`
	Seed                int32          `yaml:"seed"`
	CollisionKind       collision.Kind `yaml:"collision_kind"`
	CollisionThickness  float64        `yaml:"collision_thickness"`
	BendToSpline        bool           `yaml:"bend_to_spline"`
	FillSimplifyEpsilon float64        `yaml:"fill_simplify_epsilon"`
	Color               [4]float32     `yaml:"color,flow"`
}

// SpriteConfig holds defaults for sprites that do not set their own.
type SpriteConfig struct {
	PixelsPerUnit        float64 `yaml:"pixels_per_unit"`
	AlphaThreshold       float64 `yaml:"alpha_threshold"`
	SimplifyEpsilon      float64 `yaml:"simplify_epsilon"`
	PixelsPerSubdivision int     `yaml:"pixels_per_subdivision"`
}

// PreviewConfig holds PNG preview settings.
type PreviewConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Padding   float64 `yaml:"padding"`
	Wireframe bool    `yaml:"wireframe"`
}

// AssetsConfig locates the YAML asset tree.
type AssetsConfig struct {
	Root  string `yaml:"root"`
	Cache bool   `yaml:"cache"`
}

// OutputConfig holds where baked files go.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	ts := terrain.DefaultSettings()
	return &Config{
		Terrain: TerrainConfig{
			SamplingInterval:    ts.SamplingInterval,
			SegmentOverlap:      ts.SegmentOverlap,
			CollisionKind:       ts.CollisionKind,
			CollisionThickness:  ts.CollisionThickness,
			FillSimplifyEpsilon: ts.FillSimplifyEpsilon,
			Color:               ts.Color,
		},
		Sprite: SpriteConfig{
			PixelsPerUnit:        sprite.DefaultPixelsPerUnit,
			SimplifyEpsilon:      sprite.DefaultSimplifyEpsilon,
			PixelsPerSubdivision: sprite.DefaultPixelsPerSubdivision,
		},
		Preview: PreviewConfig{
			Width:   1024,
			Height:  768,
			Padding: 16,
		},
		Assets: AssetsConfig{
			Root:  "assets",
			Cache: true,
		},
		Output: OutputConfig{
			Dir: "out",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// TerrainSettings converts the terrain section into pipeline settings.
func (c *Config) TerrainSettings() terrain.Settings {
	s := terrain.DefaultSettings()
	s.SamplingInterval = c.Terrain.SamplingInterval
	s.SegmentOverlap = c.Terrain.SegmentOverlap
	s.CollisionKind = c.Terrain.CollisionKind
	s.CollisionThickness = c.Terrain.CollisionThickness
	s.BendToSpline = c.Terrain.BendToSpline
	s.FillSimplifyEpsilon = c.Terrain.FillSimplifyEpsilon
	s.Color = c.Terrain.Color
	return s
}

// ApplySpriteDefaults copies the sprite section onto a fresh sprite.
func (c *Config) ApplySpriteDefaults(s *sprite.Sprite) {
	if c.Sprite.PixelsPerUnit > 0 {
		s.PixelsPerUnit = c.Sprite.PixelsPerUnit
	}
	for _, g := range []*sprite.GeometrySettings{&s.RenderGeometry, &s.CollisionGeometry} {
		g.AlphaThreshold = c.Sprite.AlphaThreshold
		g.SimplifyEpsilon = c.Sprite.SimplifyEpsilon
		if n := c.Sprite.PixelsPerSubdivision; n > 0 {
			g.PixelsPerSubdivisionX = n
			g.PixelsPerSubdivisionY = n
		}
	}
}
