// Package bvh implements the two-level bounding volume hierarchy: the
// agglomerative builder of §4.2 and the ping-pong-stack traverser of
// §4.3, shared by both the per-mesh midphase and the scene broadphase.
package bvh

import (
	"github.com/mirstar13/pathtracer/internal/geom"
	"github.com/mirstar13/pathtracer/internal/memory"
)

// SentinelLeaf marks an internal node; only leaves carry a valid
// LeafIndex.
const SentinelLeaf = -1

// Node is a flat-array BVH node. Children are handles into the owning
// Tree's MemoryPool rather than pointers, per the pool-ownership model
// in the data model: the whole pool is discarded at once when a tree
// is rebuilt, so there is nothing for a GC-visible pointer graph to buy
// us, and plain int32 handles keep the representation race-detector-
// and cache-friendly.
type Node struct {
	Bounds    geom.AABB
	Left      int32 // child handle, or -1
	Right     int32 // child handle, or -1
	LeafIndex int32 // valid iff Left == -1 && Right == -1
}

// IsLeaf reports whether n has no children.
func (n Node) IsLeaf() bool {
	return n.Left < 0 && n.Right < 0
}

// Tree is an immutable-after-build BVH: a node pool, exclusively owned
// by this tree per §3's ownership rule, plus a root handle. An empty
// tree (no input leaves) has Root == -1 and a nil pool.
type Tree struct {
	pool *memory.Pool[Node]
	Root int32
}

// Empty reports whether the tree has no nodes at all.
func (t *Tree) Empty() bool {
	return t.Root < 0
}

// Node resolves handle i through the tree's owning pool.
func (t *Tree) Node(i int32) Node {
	return *t.pool.Get(i)
}
