package render

// Tunable constants of §6, exposed as package-level vars rather than
// environment toggles: the driver (cmd/pathtrace) may override them
// from flags before a render starts. BVHStackSize, MidphaseLeafBudget
// and BroadphaseLeafBudget only record the values of the compile-time
// constants bvh.StackDepth and the scene package's leaf-buffer sizes;
// no code reads them, so changing them has no effect.
var (
	TileWidth  = 32
	TileHeight = 32

	MaxBounces      = 8
	SamplesPerPixel = 64
	MaxThreads      = 8

	RadianceClamp = 16.0

	BVHStackSize          = 256
	MidphaseLeafBudget    = 128
	BroadphaseLeafBudget  = 256
)

// BackgroundMaterialID marks a path vertex produced by a scene miss.
const BackgroundMaterialID int32 = -1
