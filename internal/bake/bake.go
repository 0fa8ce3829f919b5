// Package bake memoises terrain builds. Build is deterministic, so one
// result per scene, material, seed and settings is shared by every
// caller.
package bake

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/paper2d/internal/assets"
	"github.com/Faultbox/paper2d/pkg/spline"
	"github.com/Faultbox/paper2d/pkg/terrain"
)

// ErrNoScene is returned for a nil scene.
var ErrNoScene = errors.New("no scene")

type key struct {
	spline   *spline.Spline
	material *terrain.Material
	seed     int32
	settings terrain.Settings
}

type entry struct {
	once     sync.Once
	geometry *terrain.Geometry
}

// Builder caches terrain.Build results.
type Builder struct {
	settings terrain.Settings
	log      *zap.Logger

	mu      sync.Mutex
	entries map[key]*entry
	hits    int
	misses  int
}

// NewBuilder returns a builder that bakes with settings.
func NewBuilder(settings terrain.Settings, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		settings: settings,
		log:      log,
		entries:  make(map[key]*entry),
	}
}

// Settings returns the pipeline settings.
func (b *Builder) Settings() terrain.Settings { return b.settings }

// Build returns the geometry of sc, building it on first request.
// Concurrent callers asking for the same key wait for one build.
func (b *Builder) Build(sc *assets.Scene) (*terrain.Geometry, error) {
	if sc == nil {
		return nil, ErrNoScene
	}
	k := key{spline: sc.Spline, material: sc.Material, seed: sc.Seed, settings: b.settings}

	b.mu.Lock()
	e, ok := b.entries[k]
	if ok {
		b.hits++
	} else {
		b.misses++
		e = &entry{}
		b.entries[k] = e
	}
	b.mu.Unlock()

	e.once.Do(func() {
		start := time.Now()
		e.geometry = terrain.Build(sc.Spline, sc.Material, sc.Seed, b.settings)
		b.log.Info("terrain built",
			zap.String("scene", sc.Name),
			zap.Int32("seed", sc.Seed),
			zap.Int("segments", len(e.geometry.Segments)),
			zap.Int("stamps", e.geometry.StampCount()),
			zap.Int("vertices", e.geometry.VertexCount()),
			zap.Int("batches", len(e.geometry.Batches)),
			zap.Int("collision_shapes", e.geometry.Collision.Len()),
			zap.Duration("took", time.Since(start)))
	})
	return e.geometry, nil
}

// Result pairs a scene with its geometry.
type Result struct {
	Scene    *assets.Scene
	Geometry *terrain.Geometry
}

// BuildAll builds scenes on up to workers goroutines and returns results
// in input order. It stops handing out work when ctx is done.
func (b *Builder) BuildAll(ctx context.Context, scenes []*assets.Scene, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(scenes))
	errs := make([]error, len(scenes))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				g, err := b.Build(scenes[i])
				results[i] = Result{Scene: scenes[i], Geometry: g}
				errs[i] = err
			}
		}()
	}

feed:
	for i := range scenes {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, errors.Join(errs...)
}

// Stats returns cache hits and misses.
func (b *Builder) Stats() (hits, misses int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits, b.misses
}

// Reset drops every cached build.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make(map[key]*entry)
	b.hits, b.misses = 0, 0
}
