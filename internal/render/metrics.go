package render

import (
	"fmt"
	"sync/atomic"
)

// PerThreadMetrics is a worker-local, non-atomic counter set (§3's
// PerThreadMetrics / §4.8's "workers own a PerThreadMetrics local").
// It accumulates for the duration of one tile and is merged into the
// shared RenderMetrics when the tile completes.
type PerThreadMetrics struct {
	Rays             uint64
	Bounces          uint64
	BroadphaseTests  uint64
	MidphaseTests    uint64
	TriangleTests    uint64
	TraversalAborts  uint64
	BackgroundHits    uint64
}

// Reset zeroes the counters for reuse on the next tile.
func (m *PerThreadMetrics) Reset() {
	*m = PerThreadMetrics{}
}

// RenderMetrics is the process-wide counter set every worker merges
// into via atomic add on tile completion (§4.8, §5's "every counter
// updated via atomic add"). Merges are commutative, so completion
// order never affects the final totals, matching the teacher's
// PerformanceStats shape but with atomics standing in for the
// teacher's per-frame reset-and-copy.
type RenderMetrics struct {
	Rays             uint64
	Bounces          uint64
	BroadphaseTests  uint64
	MidphaseTests    uint64
	TriangleTests    uint64
	TraversalAborts  uint64
	BackgroundHits    uint64
	TilesCompleted   uint64
}

// Merge atomically folds a completed tile's local counters into the
// global totals.
func (g *RenderMetrics) Merge(local *PerThreadMetrics) {
	atomic.AddUint64(&g.Rays, local.Rays)
	atomic.AddUint64(&g.Bounces, local.Bounces)
	atomic.AddUint64(&g.BroadphaseTests, local.BroadphaseTests)
	atomic.AddUint64(&g.MidphaseTests, local.MidphaseTests)
	atomic.AddUint64(&g.TriangleTests, local.TriangleTests)
	atomic.AddUint64(&g.TraversalAborts, local.TraversalAborts)
	atomic.AddUint64(&g.BackgroundHits, local.BackgroundHits)
	atomic.AddUint64(&g.TilesCompleted, 1)
}

// Snapshot reads all counters with individual atomic loads. The
// result is not a consistent point-in-time snapshot across fields
// while a render is in flight, matching §5's "ordering is irrelevant"
// guarantee for these sums.
func (g *RenderMetrics) Snapshot() RenderMetrics {
	return RenderMetrics{
		Rays:            atomic.LoadUint64(&g.Rays),
		Bounces:         atomic.LoadUint64(&g.Bounces),
		BroadphaseTests: atomic.LoadUint64(&g.BroadphaseTests),
		MidphaseTests:   atomic.LoadUint64(&g.MidphaseTests),
		TriangleTests:   atomic.LoadUint64(&g.TriangleTests),
		TraversalAborts: atomic.LoadUint64(&g.TraversalAborts),
		BackgroundHits:  atomic.LoadUint64(&g.BackgroundHits),
		TilesCompleted:  atomic.LoadUint64(&g.TilesCompleted),
	}
}

// String mirrors the teacher's PerformanceStats.String() one-liner.
func (g RenderMetrics) String() string {
	return fmt.Sprintf(
		"tiles: %d | rays: %d | bounces: %d | bvh tests: %d/%d | tris: %d | aborts: %d",
		g.TilesCompleted, g.Rays, g.Bounces, g.BroadphaseTests, g.MidphaseTests, g.TriangleTests, g.TraversalAborts,
	)
}

// DetailedString mirrors the teacher's PerformanceStats.DetailedString().
func (g RenderMetrics) DetailedString() string {
	return fmt.Sprintf(`
=== Render Metrics ===
Tiles completed:     %d
Primary+bounce rays: %d
Bounces:             %d

BVH:
  Broadphase tests:  %d
  Midphase tests:    %d
  Triangle tests:    %d
  Traversal aborts:  %d

Background hits:     %d
`,
		g.TilesCompleted, g.Rays, g.Bounces,
		g.BroadphaseTests, g.MidphaseTests, g.TriangleTests, g.TraversalAborts,
		g.BackgroundHits,
	)
}
