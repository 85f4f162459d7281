package memory

import (
	"fmt"
	"sync"
	"unsafe"
)

// freeEnd marks the tail of a pool's free list.
const freeEnd = -1

// Pool is a fixed-capacity, fixed-block-size allocator of T values.
// Blocks are addressed by int32 handle rather than pointer: the free
// list is threaded through a side slice of int32 links rather than
// embedded in the freed blocks themselves, which would require an
// unsafe type-punned overlay. This trades one extra int32 and bool per
// slot for a pool that is safe under the race detector and need not
// assume anything about a block's layout. The backing T slice is
// allocated once at capacity and never grown, so handles and the
// pointers Acquire/Get hand out stay valid for the pool's lifetime.
//
// A Pool owns its own MemoryArena reservation sized to exactly
// capacity*sizeof(T), mirroring bvh_CreateTree's
// AllocateArray(arena, bvh_Node, nodeCapacity) followed by
// CreateMemoryPool(...) in the original implementation: the arena
// accounts for the pool's byte budget even though Go's type system
// means the pool's actual storage is a typed slice, not a []byte
// reinterpreted via the arena.
type Pool[T any] struct {
	mu    sync.Mutex
	arena *Arena

	blocks    []T
	next      []int32
	inUse     []bool
	freeHead  int32
	watermark int32
	capacity  int32
	live      int
}

// NewPool creates a pool with room for exactly capacity values of T,
// reserving capacity*sizeof(T) bytes from a freshly created arena for
// bookkeeping.
func NewPool[T any](capacity int) *Pool[T] {
	var zero T
	slotSize := int(unsafe.Sizeof(zero))

	arena := NewArena(slotSize * capacity)
	arena.AllocBytes(slotSize * capacity)

	return &Pool[T]{
		arena:    arena,
		blocks:   make([]T, capacity),
		next:     make([]int32, capacity),
		inUse:    make([]bool, capacity),
		freeHead: freeEnd,
		capacity: int32(capacity),
	}
}

// Acquire returns a handle to a zeroed slot and a pointer to it. The
// pointer remains valid until the handle is Released; it must not be
// used afterward. Acquire panics if the pool's capacity is exhausted,
// which is an invariant violation for every caller in this module
// (each sizes its pool exactly to its maximum possible node count).
func (p *Pool[T]) Acquire() (int32, *T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.freeHead != freeEnd {
		h := p.freeHead
		p.freeHead = p.next[h]
		p.inUse[h] = true
		p.live++
		var zero T
		p.blocks[h] = zero
		return h, &p.blocks[h]
	}

	if p.watermark >= p.capacity {
		panic(fmt.Sprintf("memory: pool exhausted at capacity %d", p.capacity))
	}
	h := p.watermark
	p.watermark++
	p.inUse[h] = true
	p.live++
	var zero T
	p.blocks[h] = zero
	return h, &p.blocks[h]
}

// Release returns a slot to the free list for reuse. Releasing an
// out-of-range handle, or a handle that is not currently acquired
// (including one already released), is a programmer error and panics
// rather than silently corrupting the free list.
func (p *Pool[T]) Release(handle int32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if handle < 0 || handle >= p.capacity {
		panic(fmt.Sprintf("memory: release of out-of-range handle %d", handle))
	}
	if !p.inUse[handle] {
		panic(fmt.Sprintf("memory: double release of handle %d", handle))
	}
	p.inUse[handle] = false
	p.next[handle] = p.freeHead
	p.freeHead = handle
	p.live--
}

// Get returns a pointer to the slot at handle, valid only while the
// handle remains acquired.
func (p *Pool[T]) Get(handle int32) *T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &p.blocks[handle]
}

// Live reports the number of slots currently acquired and not yet
// released.
func (p *Pool[T]) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// ReleaseAll frees every acquired slot at once, the "freed en masse
// with the pool" discard used between BVH rebuilds.
func (p *Pool[T]) ReleaseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.inUse {
		p.inUse[i] = false
	}
	p.freeHead = freeEnd
	p.watermark = 0
	p.live = 0
}
