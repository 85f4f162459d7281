package bvh

import (
	"github.com/mirstar13/pathtracer/internal/geom"
	"github.com/mirstar13/pathtracer/internal/memory"
)

// Build constructs a BVH over leafBounds by the agglomerative
// nearest-centroid merge sweep of §4.2, grounded directly on
// bvh_CreateTree in original_source/src/bvh.cpp:122-188: while more
// than one node remains in the working set, walk it once and, for
// each node still there, find its own closest remaining partner by
// centroid distance and merge the two into a new parent node, which
// overwrites the working set in place (compacting it roughly by half
// per round) while the just-merged partner is removed from the tail
// via swap-and-shrink. This is a per-round sweep, not a single
// closest-pair-at-a-time merge: one pass over a working set of size k
// can fold it down to roughly k/2, not k-1.
//
// All nodes are allocated from a MemoryPool exclusively owned by the
// returned Tree (§3: "each BvhTree exclusively owns its MemoryPool").
// A binary agglomerative merge of n leaves produces at most n-1
// internal nodes, so the pool is sized to exactly 2*n-1 slots; Acquire
// exhausting that budget would mean this invariant was violated.
//
// leafBounds[i] is the AABB of input leaf i; leafIndex i is what gets
// stored on the resulting leaf node. An empty input yields an empty
// tree.
func Build(leafBounds []geom.AABB) *Tree {
	n := len(leafBounds)
	if n == 0 {
		return &Tree{Root: -1}
	}

	pool := memory.NewPool[Node](2*n - 1)

	// unmerged holds the working set of node handles still awaiting a
	// merge partner; unmergedCount is its live length (both the array
	// and the count shrink together as partners are removed).
	unmerged := make([]int32, n)
	for i, b := range leafBounds {
		h, node := pool.Acquire()
		*node = Node{Bounds: b, Left: -1, Right: -1, LeafIndex: int32(i)}
		unmerged[i] = h
	}
	unmergedCount := n

	for unmergedCount > 1 {
		newUnmergedCount := 0

		for index := 0; index < unmergedCount; index++ {
			nodeHandle := unmerged[index]

			// Slots before index were already merged (or carried over)
			// this round, so only later slots are candidate partners.
			bestJ := -1
			bestDist := 0.0
			for j := index + 1; j < unmergedCount; j++ {
				d := centroidDistSq(pool.Get(nodeHandle).Bounds, pool.Get(unmerged[j]).Bounds)
				if bestJ < 0 || d < bestDist {
					bestDist = d
					bestJ = j
				}
			}
			if bestJ < 0 {
				unmerged[newUnmergedCount] = nodeHandle
				newUnmergedCount++
				continue
			}

			partnerHandle := unmerged[bestJ]
			newHandle, newNode := pool.Acquire()
			*newNode = Node{
				Bounds:    pool.Get(nodeHandle).Bounds.Union(pool.Get(partnerHandle).Bounds),
				Left:      nodeHandle,
				Right:     partnerHandle,
				LeafIndex: SentinelLeaf,
			}

			unmerged[newUnmergedCount] = newHandle
			newUnmergedCount++

			last := unmergedCount - 1
			unmerged[bestJ] = unmerged[last]
			unmergedCount--
		}

		unmergedCount = newUnmergedCount
	}

	return &Tree{pool: pool, Root: unmerged[0]}
}

func centroidDistSq(a, b geom.AABB) float64 {
	ca := a.Centroid()
	cb := b.Centroid()
	d := ca.Sub(cb)
	return d.Dot(d)
}
