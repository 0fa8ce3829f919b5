package config

import (
	"flag"

	"github.com/Faultbox/paper2d/pkg/collision"
)

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagAssets    = flag.String("assets", "", "Asset root directory")
	flagOutput    = flag.String("out", "", "Output directory")
	flagSeed      = flag.Int("seed", 0, "Terrain random seed (0 keeps the configured seed)")
	flagOverlap   = flag.Float64("overlap", -1, "Segment overlap (negative keeps the configured value)")
	flagInterval  = flag.Float64("interval", 0, "Slope sampling interval")
	flagCollision = flag.String("collision", "", "Collision kind: none, 2d or 3d")
	flagBend      = flag.Bool("bend", false, "Bend stamps along the spline")
	flagPreview   = flag.Bool("preview", false, "Write PNG previews")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAssets != "" {
		cfg.Assets.Root = *flagAssets
	}
	if *flagOutput != "" {
		cfg.Output.Dir = *flagOutput
	}
	if *flagSeed != 0 {
		cfg.Terrain.Seed = int32(*flagSeed)
	}
	if *flagOverlap >= 0 {
		cfg.Terrain.SegmentOverlap = *flagOverlap
	}
	if *flagInterval > 0 {
		cfg.Terrain.SamplingInterval = *flagInterval
	}
	if *flagCollision != "" {
		kind, err := collision.ParseKind(*flagCollision)
		if err != nil {
			return err
		}
		cfg.Terrain.CollisionKind = kind
	}
	if *flagBend {
		cfg.Terrain.BendToSpline = true
	}
	if *flagPreview {
		cfg.Preview.Enabled = true
	}
	return nil
}
