package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mirstar13/pathtracer/internal/bvh"
	"github.com/mirstar13/pathtracer/internal/geom"
)

// MaxObjects bounds a single Scene per §3's SCENE_MAX_OBJECTS.
const MaxObjects = 4096

// sceneBroadphaseLeafBudget bounds the per-ray leaf buffer for
// broadphase traversal.
const sceneBroadphaseLeafBudget = 256

// Scene holds the index-parallel object arrays of §3 plus the
// broadphase BVH built over their world-space AABBs.
type Scene struct {
	aabb          []geom.AABB
	meshes        []*Mesh
	materialIDs   []int32
	modelMatrix   []mgl64.Mat4
	invModel      []mgl64.Mat4
	localAABBCache []geom.AABB

	Broadphase *bvh.Tree
	Materials  *MaterialSystem
}

// NewScene returns an empty scene with a fresh material registry.
func NewScene() *Scene {
	return &Scene{Materials: NewMaterialSystem()}
}

// AddObject computes the mesh's local AABB (over its vertex
// positions), transforms it to world space by model, and appends a
// new object per §4.5. model must be invertible (non-degenerate
// scale); AddObject returns an error otherwise.
func (s *Scene) AddObject(mesh *Mesh, materialID int32, model mgl64.Mat4) error {
	if len(s.meshes) >= MaxObjects {
		return fmt.Errorf("scene: object count would exceed MaxObjects (%d)", MaxObjects)
	}

	if math.Abs(model.Det()) < geom.Epsilon {
		return fmt.Errorf("scene: model matrix is not invertible (degenerate scale)")
	}
	inv := model.Inv()

	localBounds := localMeshAABB(mesh)
	worldBounds := localBounds.TransformTRS(model)

	s.aabb = append(s.aabb, worldBounds)
	s.meshes = append(s.meshes, mesh)
	s.materialIDs = append(s.materialIDs, materialID)
	s.modelMatrix = append(s.modelMatrix, model)
	s.invModel = append(s.invModel, inv)
	s.localAABBCache = append(s.localAABBCache, localBounds)
	return nil
}

func localMeshAABB(mesh *Mesh) geom.AABB {
	b := geom.Empty()
	for _, v := range mesh.Vertices {
		b = b.ExpandPoint(v.Position)
	}
	return b
}

// BuildBroadphase builds the scene BVH over the current object set's
// world-space AABBs. Call once after all AddObject calls.
func (s *Scene) BuildBroadphase() {
	s.Broadphase = bvh.Build(s.aabb)
}

// SceneHit is the world-space result of IntersectScene.
type SceneHit struct {
	T          float64
	Normal     mgl64.Vec3
	UV         mgl64.Vec2
	MaterialID int32
}

// SceneMetrics accumulates traversal/intersection work for a single
// IntersectScene call.
type SceneMetrics struct {
	BroadphaseAabbTests uint64
	MeshMetrics         IntersectMeshMetrics
	Incomplete          bool
}

// IntersectScene implements ray_intersect_scene of §4.5: broadphase
// traversal to find candidate objects, then a local-space mesh test
// per candidate, keeping the closest world-space hit.
func (s *Scene) IntersectScene(origin, dir mgl64.Vec3, metrics *SceneMetrics) (SceneHit, bool) {
	if s.Broadphase == nil || s.Broadphase.Empty() {
		return SceneHit{}, false
	}

	var leafBuf [sceneBroadphaseLeafBudget]bvh.LeafHit
	count, errOccurred, aabbTests := bvh.Traverse(s.Broadphase, origin, dir, leafBuf[:])
	metrics.BroadphaseAabbTests += aabbTests
	if errOccurred {
		metrics.Incomplete = true
		return SceneHit{}, false
	}

	best := SceneHit{}
	bestT := math.Inf(1)
	found := false

	for i := 0; i < count; i++ {
		obj := int(leafBuf[i].LeafIndex)
		inv := s.invModel[obj]

		localOrigin := inv.Mul4x1(mgl64.Vec4{origin.X(), origin.Y(), origin.Z(), 1}).Vec3()
		localDirRaw := inv.Mul4x1(mgl64.Vec4{dir.X(), dir.Y(), dir.Z(), 0}).Vec3()
		if localDirRaw.Len() < geom.Epsilon {
			continue
		}
		localDir := localDirRaw.Normalize()

		hit, ok := s.meshes[obj].IntersectMesh(localOrigin, localDir, &metrics.MeshMetrics)
		if !ok {
			continue
		}

		model := s.modelMatrix[obj]
		localHitPoint := localOrigin.Add(localDir.Mul(hit.T))
		worldHitPoint := model.Mul4x1(mgl64.Vec4{localHitPoint.X(), localHitPoint.Y(), localHitPoint.Z(), 1}).Vec3()

		worldT := worldHitPoint.Sub(origin).Dot(dir)
		if worldT >= bestT {
			continue
		}

		worldNormal := model.Mul4x1(mgl64.Vec4{hit.Normal.X(), hit.Normal.Y(), hit.Normal.Z(), 0}).Vec3()
		if worldNormal.Len() > geom.Epsilon {
			worldNormal = worldNormal.Normalize()
		}

		best = SceneHit{T: worldT, Normal: worldNormal, UV: hit.UV, MaterialID: s.materialIDs[obj]}
		bestT = worldT
		found = true
	}

	return best, found
}

// ObjectCount reports the number of objects added so far.
func (s *Scene) ObjectCount() int {
	return len(s.meshes)
}
