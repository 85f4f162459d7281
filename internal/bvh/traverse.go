package bvh

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mirstar13/pathtracer/internal/geom"
)

// StackDepth bounds the ping-pong traversal stacks of §4.3.
const StackDepth = 256

// LeafHit is one entry of a traversal result: the original leaf index
// and the ray's entry distance into that leaf's bounds.
type LeafHit struct {
	LeafIndex int32
	T         float64
}

// Traverse walks tree with the two ping-pong stacks described in
// §4.3, writing hit leaves into out (capacity bounds the result). It
// never recurses and never allocates: both stacks are fixed arrays.
//
// Returns (count, errorOccurred, aabbTestCount). errorOccurred is set
// if either the leaf-result buffer or a traversal stack overflows; the
// caller should treat the ray as unresolved rather than using a
// partial result. Leaf order reflects push order, not ray distance.
func Traverse(tree *Tree, origin, dir mgl64.Vec3, out []LeafHit) (count int, errorOccurred bool, aabbTestCount uint64) {
	if tree.Empty() {
		return 0, false, 0
	}
	if _, hit := geom.SlabTest(tree.Node(tree.Root).Bounds, origin, dir); !hit {
		return 0, false, 0
	}

	invDir := geom.InvDir(dir)

	var readStack, writeStack [StackDepth]int32
	readStack[0] = tree.Root
	readLen, writeLen := 1, 0

	for readLen > 0 {
		for i := 0; i < readLen; i++ {
			node := tree.Node(readStack[i])

			if node.IsLeaf() {
				if count >= len(out) {
					return count, true, aabbTestCount
				}
				t, _ := geom.SlabTest(node.Bounds, origin, dir)
				out[count] = LeafHit{LeafIndex: node.LeafIndex, T: t}
				count++
				continue
			}

			aabbTestCount++
			var boxes [2]geom.AABB
			var children [2]int32
			n := 0
			if node.Left >= 0 {
				boxes[n] = tree.Node(node.Left).Bounds
				children[n] = node.Left
				n++
			}
			if node.Right >= 0 {
				boxes[n] = tree.Node(node.Right).Bounds
				children[n] = node.Right
				n++
			}

			mask := geom.SlabTest4(geom.NewSlab4(boxes[:n]), origin, invDir)
			for k := 0; k < n; k++ {
				if mask&(1<<uint(k)) == 0 {
					continue
				}
				if writeLen >= StackDepth {
					return count, true, aabbTestCount
				}
				writeStack[writeLen] = children[k]
				writeLen++
			}
		}

		readStack, writeStack = writeStack, readStack
		readLen, writeLen = writeLen, 0
	}

	return count, false, aabbTestCount
}
