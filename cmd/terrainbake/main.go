// Package main is the entry point for the terrain baker. It loads every
// scene under the asset root, builds its terrain and writes .p2g files and,
// when enabled, PNG previews to the output directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"

	"github.com/Faultbox/paper2d/internal/assets"
	"github.com/Faultbox/paper2d/internal/bake"
	"github.com/Faultbox/paper2d/internal/config"
	"github.com/Faultbox/paper2d/internal/export"
	"github.com/Faultbox/paper2d/internal/logger"
	"github.com/Faultbox/paper2d/internal/preview"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Paper2D terrain bake ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("bake failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("bake finished")
}

func run(ctx context.Context, cfg *config.Config) error {
	settings := cfg.TerrainSettings()
	mgr := assets.NewManager(cfg.Assets.Root,
		assets.WithSpriteDefaults(cfg.ApplySpriteDefaults),
		assets.WithAxes(settings.Axes),
		assets.WithCache(cfg.Assets.Cache),
		assets.WithDefaultSeed(cfg.Terrain.Seed),
		assets.WithLogger(logger.Named("assets")),
	)

	// Scene names may be given as arguments; otherwise bake everything.
	names := config.Args()
	if len(names) == 0 {
		var err error
		if names, err = mgr.SceneNames(); err != nil {
			return fmt.Errorf("listing scenes: %w", err)
		}
	}
	if len(names) == 0 {
		logger.Warn("no scenes found", zap.String("root", mgr.Root()))
		return nil
	}

	scenes := make([]*assets.Scene, 0, len(names))
	for _, name := range names {
		sc, err := mgr.Scene(name)
		if err != nil {
			return err
		}
		scenes = append(scenes, sc)
	}

	builder := bake.NewBuilder(settings, logger.Named("bake"))
	results, err := builder.BuildAll(ctx, scenes, runtime.NumCPU())
	if err != nil {
		return err
	}

	for _, r := range results {
		path := filepath.Join(cfg.Output.Dir, r.Scene.Name+export.Extension)
		if err := export.WriteFile(path, export.FromGeometry(r.Scene.Name, r.Geometry)); err != nil {
			return fmt.Errorf("exporting %s: %w", r.Scene.Name, err)
		}
		logger.Info("scene exported",
			zap.String("scene", r.Scene.Name),
			zap.String("path", path),
			zap.Int("stamps", r.Geometry.StampCount()),
			zap.Int("vertices", r.Geometry.VertexCount()))

		if !cfg.Preview.Enabled {
			continue
		}
		opts := preview.DefaultOptions()
		opts.Width, opts.Height = cfg.Preview.Width, cfg.Preview.Height
		opts.Padding = cfg.Preview.Padding
		opts.Wireframe = cfg.Preview.Wireframe
		opts.Axes = settings.Axes
		opts.Spline = r.Scene.Spline
		png := filepath.Join(cfg.Output.Dir, r.Scene.Name+".png")
		if err := preview.SavePNG(png, r.Geometry, opts); err != nil {
			return fmt.Errorf("preview %s: %w", r.Scene.Name, err)
		}
		logger.Debug("preview written", zap.String("path", png))
	}

	stats := mgr.Stats()
	hits, misses := builder.Stats()
	logger.Info("asset cache",
		zap.Int("sprite_hits", stats.SpriteHits),
		zap.Int("sprite_misses", stats.SpriteMisses),
		zap.Int("texture_misses", stats.TextureMisses),
		zap.Int("build_hits", hits),
		zap.Int("build_misses", misses))
	return nil
}
