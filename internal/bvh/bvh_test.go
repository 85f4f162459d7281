package bvh

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mirstar13/pathtracer/internal/geom"
)

func TestEmptyTreeTraversal(t *testing.T) {
	tree := Build(nil)
	var out [16]LeafHit
	count, errOccurred, _ := Traverse(tree, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -1}, out[:])
	if count != 0 || errOccurred {
		t.Fatalf("expected count=0, errorOccurred=false, got count=%d err=%v", count, errOccurred)
	}
}

func TestSingleLeafBVH(t *testing.T) {
	leaves := []geom.AABB{
		{Min: mgl64.Vec3{-0.5, -0.5, -0.5}, Max: mgl64.Vec3{0.5, 0.5, 0.5}},
	}
	tree := Build(leaves)
	if tree.Empty() {
		t.Fatal("expected non-empty tree")
	}
	root := tree.Node(tree.Root)
	if root.Bounds.Min != leaves[0].Min || root.Bounds.Max != leaves[0].Max {
		t.Fatalf("root bounds should equal the sole leaf's bounds, got %+v", root.Bounds)
	}

	var out [16]LeafHit
	count, errOccurred, _ := Traverse(tree, mgl64.Vec3{0, 0, 10}, mgl64.Vec3{0, 0, -1}, out[:])
	if errOccurred || count != 1 {
		t.Fatalf("expected count=1, errorOccurred=false, got count=%d err=%v", count, errOccurred)
	}
	if out[0].LeafIndex != 0 {
		t.Fatalf("expected leafIndex=0, got %d", out[0].LeafIndex)
	}
}

func TestBuildEveryLeafReachableExactlyOnce(t *testing.T) {
	leaves := make([]geom.AABB, 0, 17)
	for i := 0; i < 17; i++ {
		c := float64(i) * 3
		leaves = append(leaves, geom.AABB{
			Min: mgl64.Vec3{c, c, c},
			Max: mgl64.Vec3{c + 1, c + 1, c + 1},
		})
	}
	tree := Build(leaves)

	seen := make(map[int32]int)
	var walk func(idx int32)
	walk = func(idx int32) {
		n := tree.Node(idx)
		if n.IsLeaf() {
			seen[n.LeafIndex]++
			return
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(tree.Root)

	if len(seen) != len(leaves) {
		t.Fatalf("expected %d distinct leaves reachable, got %d", len(leaves), len(seen))
	}
	for i := range leaves {
		if seen[int32(i)] != 1 {
			t.Fatalf("leaf %d reachable %d times, want exactly 1", i, seen[int32(i)])
		}
	}
}

func TestBuildInternalAABBContainsChildren(t *testing.T) {
	leaves := make([]geom.AABB, 0, 12)
	for i := 0; i < 12; i++ {
		c := float64(i) * 2.5
		leaves = append(leaves, geom.AABB{
			Min: mgl64.Vec3{c, -c, c * 0.5},
			Max: mgl64.Vec3{c + 1, -c + 1, c*0.5 + 1},
		})
	}
	tree := Build(leaves)

	var walk func(idx int32)
	walk = func(idx int32) {
		n := tree.Node(idx)
		if n.IsLeaf() {
			return
		}
		for _, child := range []int32{n.Left, n.Right} {
			cb := tree.Node(child).Bounds
			if !n.Bounds.Contains(cb) {
				t.Fatalf("internal node bounds %+v does not contain child bounds %+v", n.Bounds, cb)
			}
			walk(child)
		}
	}
	walk(tree.Root)
}

func TestTraverseDoesNotDoubleCountLeaves(t *testing.T) {
	leaves := []geom.AABB{
		{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}},
		{Min: mgl64.Vec3{-1, -1, 3}, Max: mgl64.Vec3{1, 1, 5}},
		{Min: mgl64.Vec3{-1, -1, 7}, Max: mgl64.Vec3{1, 1, 9}},
	}
	tree := Build(leaves)
	var out [16]LeafHit
	count, errOccurred, _ := Traverse(tree, mgl64.Vec3{0, 0, 20}, mgl64.Vec3{0, 0, -1}, out[:])
	if errOccurred {
		t.Fatal("unexpected traversal error")
	}
	seen := make(map[int32]bool)
	for i := 0; i < count; i++ {
		if seen[out[i].LeafIndex] {
			t.Fatalf("leaf %d reported twice", out[i].LeafIndex)
		}
		seen[out[i].LeafIndex] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected all 3 boxes along the ray to be reported, got %d", len(seen))
	}
}

func TestTraverseBufferOverflowSetsErrorFlag(t *testing.T) {
	leaves := []geom.AABB{
		{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}},
		{Min: mgl64.Vec3{-1, -1, 3}, Max: mgl64.Vec3{1, 1, 5}},
	}
	tree := Build(leaves)
	out := make([]LeafHit, 1)
	_, errOccurred, _ := Traverse(tree, mgl64.Vec3{0, 0, 20}, mgl64.Vec3{0, 0, -1}, out)
	if !errOccurred {
		t.Fatal("expected errorOccurred when leaf buffer is too small")
	}
}

func TestTraverseMissReturnsZeroCount(t *testing.T) {
	leaves := []geom.AABB{
		{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}},
	}
	tree := Build(leaves)
	var out [4]LeafHit
	count, errOccurred, _ := Traverse(tree, mgl64.Vec3{10, 10, 10}, mgl64.Vec3{0, 0, -1}, out[:])
	if errOccurred || count != 0 {
		t.Fatalf("expected a clean miss, got count=%d err=%v", count, errOccurred)
	}
}

func TestTraverseAabbTestCountIsPositiveForMultiNodeTree(t *testing.T) {
	leaves := []geom.AABB{
		{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}},
		{Min: mgl64.Vec3{-1, -1, 3}, Max: mgl64.Vec3{1, 1, 5}},
	}
	tree := Build(leaves)
	var out [4]LeafHit
	_, _, aabbTests := Traverse(tree, mgl64.Vec3{0, 0, 20}, mgl64.Vec3{0, 0, -1}, out[:])
	if aabbTests == 0 {
		t.Fatal("expected at least one AABB expansion test for a tree with an internal node")
	}
}

func TestSlabTestEntryDistanceMatchesTraversal(t *testing.T) {
	leaves := []geom.AABB{
		{Min: mgl64.Vec3{-0.5, -0.5, -0.5}, Max: mgl64.Vec3{0.5, 0.5, 0.5}},
	}
	tree := Build(leaves)
	var out [4]LeafHit
	_, _, _ = Traverse(tree, mgl64.Vec3{0, 0, 10}, mgl64.Vec3{0, 0, -1}, out[:])
	if math.Abs(out[0].T-9.5) > 1e-9 {
		t.Fatalf("expected entry distance 9.5, got %v", out[0].T)
	}
}
