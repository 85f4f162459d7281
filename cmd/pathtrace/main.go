// Command pathtrace renders an OBJ scene with the offline CPU path
// tracer, following the teacher's main.go flag/profiling conventions
// (cpuprofile/memprofile via runtime/pprof) but driving a single
// batch render instead of the teacher's interactive demo selector.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mirstar13/pathtracer/internal/assets"
	"github.com/mirstar13/pathtracer/internal/mathutil"
	"github.com/mirstar13/pathtracer/internal/render"
	"github.com/mirstar13/pathtracer/internal/scene"
)

// RenderConfig bundles every flag the driver accepts, matching the
// teacher's EngineConfig shape but scoped to a single batch render.
type RenderConfig struct {
	AssetDir string
	Width    int
	Height   int
	SPP      int
	Bounces  int
	Workers  int
	TileSize int
	MeshPath string
	Out      string

	PreviewWidth int
	PreviewOut   string

	CPUProfile string
	MemProfile string
}

func parseFlags() RenderConfig {
	var cfg RenderConfig
	flag.StringVar(&cfg.AssetDir, "asset-dir", ".", "directory OBJ/texture assets are resolved against")
	flag.IntVar(&cfg.Width, "width", 400, "output image width in pixels")
	flag.IntVar(&cfg.Height, "height", 300, "output image height in pixels")
	flag.IntVar(&cfg.SPP, "spp", render.SamplesPerPixel, "samples per pixel")
	flag.IntVar(&cfg.Bounces, "bounces", render.MaxBounces, "maximum path bounces")
	flag.IntVar(&cfg.Workers, "workers", render.MaxThreads, "number of render worker goroutines")
	flag.IntVar(&cfg.TileSize, "tile", render.TileWidth, "square tile size in pixels")
	flag.StringVar(&cfg.MeshPath, "mesh", "scene.obj", "OBJ mesh path, relative to asset-dir")
	flag.StringVar(&cfg.Out, "out", "out.png", "output PNG path")
	flag.IntVar(&cfg.PreviewWidth, "preview-width", 0, "if set, also write a downsampled preview PNG this many pixels wide")
	flag.StringVar(&cfg.PreviewOut, "preview-out", "preview.png", "preview PNG path, used when -preview-width is set")
	flag.StringVar(&cfg.CPUProfile, "cpuprofile", "", "write cpu profile to file")
	flag.StringVar(&cfg.MemProfile, "memprofile", "", "write memory profile to file")
	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()

	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
		fmt.Printf("CPU profiling enabled, writing to %s\n", cfg.CPUProfile)
	}

	if cfg.MemProfile != "" {
		defer func() {
			f, err := os.Create(cfg.MemProfile)
			if err != nil {
				fmt.Printf("could not create memory profile: %v\n", err)
				return
			}
			defer f.Close()
			if err := pprof.WriteHeapProfile(f); err != nil {
				fmt.Printf("could not write memory profile: %v\n", err)
			}
		}()
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "pathtrace: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg RenderConfig) error {
	render.MaxBounces = cfg.Bounces
	render.SamplesPerPixel = cfg.SPP
	render.TileWidth = cfg.TileSize
	render.TileHeight = cfg.TileSize
	render.MaxThreads = cfg.Workers

	mgr, err := assets.NewManager(cfg.AssetDir)
	if err != nil {
		return fmt.Errorf("initializing asset manager: %w", err)
	}

	mesh, err := mgr.LoadMesh(cfg.MeshPath)
	if err != nil {
		return fmt.Errorf("loading scene mesh: %w", err)
	}

	sc := scene.NewScene()
	if err := sc.AddObject(mesh, 1, mgl64.Ident4()); err != nil {
		return fmt.Errorf("adding mesh to scene: %w", err)
	}
	sc.BuildBroadphase()

	if err := sc.Materials.RegisterMaterial(1, scene.Material{
		Albedo:            mgl64.Vec3{0.8, 0.8, 0.8},
		AlbedoTextureID:   scene.SentinelID,
		EmissionTextureID: scene.SentinelID,
	}); err != nil {
		return fmt.Errorf("registering default material: %w", err)
	}
	if err := sc.Materials.RegisterMaterial(render.BackgroundMaterialID, scene.Material{
		Emission:          mgl64.Vec3{0.4, 0.5, 0.7},
		AlbedoTextureID:   scene.SentinelID,
		EmissionTextureID: scene.SentinelID,
	}); err != nil {
		return fmt.Errorf("registering background material: %w", err)
	}

	cam := render.NewCamera(mgl64.Vec3{0, 0, 5}, mgl64.QuatIdent(), 1.0, cfg.Width, cfg.Height)
	ctx := &render.RenderContext{
		Scene:  sc,
		Camera: cam,
		Output: render.NewFrameBuffer(cfg.Width, cfg.Height),
	}

	tiles := render.ComputeTiles(cfg.Width, cfg.Height, cfg.TileSize, cfg.TileSize, cfg.Width*cfg.Height)
	queue := render.NewWorkQueue(len(tiles))
	queue.Reset(tiles)

	var metrics render.RenderMetrics
	start := time.Now()

	// Each tile gets its own RNG seeded from an atomically-claimed
	// worker id, since process is invoked concurrently from every
	// worker goroutine and a shared counter would otherwise race.
	var nextWorkerID uint32
	render.RunWorkers(queue, cfg.Workers, func(tile render.Tile) {
		id := atomic.AddUint32(&nextWorkerID, 1) - 1
		rng := mathutil.NewRNG(id)
		var local render.PerThreadMetrics
		render.PathTraceTile(ctx, tile, rng, &local)
		metrics.Merge(&local)
	})
	elapsed := time.Since(start)

	if err := assets.WritePNG(cfg.Out, ctx.Output); err != nil {
		return fmt.Errorf("writing output image: %w", err)
	}

	if cfg.PreviewWidth > 0 {
		if err := assets.WritePreviewPNG(cfg.PreviewOut, ctx.Output, cfg.PreviewWidth); err != nil {
			return fmt.Errorf("writing preview image: %w", err)
		}
	}

	snap := metrics.Snapshot()
	fmt.Println(snap.String())
	fmt.Println(snap.DetailedString())
	fmt.Printf("rendered %dx%d @ %d spp in %s -> %s\n", cfg.Width, cfg.Height, cfg.SPP, elapsed, cfg.Out)

	return nil
}
