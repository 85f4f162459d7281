package memory

import "testing"

func TestArenaAllocBumpsOffset(t *testing.T) {
	a := NewArena(64)
	b1 := a.AllocBytes(16)
	b2 := a.AllocBytes(16)
	if len(b1) != 16 || len(b2) != 16 {
		t.Fatal("expected 16-byte allocations")
	}
	if a.Used() != 32 {
		t.Fatalf("expected 32 bytes used, got %d", a.Used())
	}
}

func TestArenaAllocOverflowPanics(t *testing.T) {
	a := NewArena(8)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on arena overflow")
		}
	}()
	a.AllocBytes(9)
}

func TestArenaResetReclaimsSpace(t *testing.T) {
	a := NewArena(16)
	a.AllocBytes(16)
	a.Reset()
	if a.Used() != 0 {
		t.Fatalf("expected 0 used after reset, got %d", a.Used())
	}
	a.AllocBytes(16)
}

func TestSubArenaIsDisjoint(t *testing.T) {
	a := NewArena(32)
	sub, err := a.SubArena(16)
	if err != nil {
		t.Fatal(err)
	}
	if a.Used() != 16 {
		t.Fatalf("parent should have advanced by 16, got %d", a.Used())
	}
	block := sub.AllocBytes(16)
	if len(block) != 16 {
		t.Fatal("sub-arena allocation failed")
	}
}

type poolSlot struct {
	A, B int64
}

func TestPoolAcquireReleaseReuse(t *testing.T) {
	p := NewPool[poolSlot](4)
	h1, _ := p.Acquire()
	h2, _ := p.Acquire()
	if h1 == h2 {
		t.Fatal("distinct acquires must yield distinct handles")
	}
	if p.Live() != 2 {
		t.Fatalf("expected 2 live slots, got %d", p.Live())
	}
	p.Release(h1)
	if p.Live() != 1 {
		t.Fatalf("expected 1 live slot after release, got %d", p.Live())
	}
	h3, _ := p.Acquire()
	if h3 != h1 {
		t.Fatalf("expected released handle %d to be recycled, got %d", h1, h3)
	}
}

func TestPoolAcquireZeroesSlot(t *testing.T) {
	p := NewPool[poolSlot](2)
	h, slot := p.Acquire()
	slot.A, slot.B = 0xFF, 0xFF
	p.Release(h)
	_, reused := p.Acquire()
	if reused.A != 0 || reused.B != 0 {
		t.Fatalf("slot not zeroed on reuse: %+v", reused)
	}
}

func TestPoolReleaseAllClearsLiveCount(t *testing.T) {
	p := NewPool[poolSlot](4)
	for i := 0; i < 4; i++ {
		p.Acquire()
	}
	if p.Live() != 4 {
		t.Fatalf("expected 4 live, got %d", p.Live())
	}
	p.ReleaseAll()
	if p.Live() != 0 {
		t.Fatalf("expected 0 live after ReleaseAll, got %d", p.Live())
	}
	for i := 0; i < 4; i++ {
		p.Acquire()
	}
	if p.Live() != 4 {
		t.Fatalf("expected pool to be fully reusable after ReleaseAll, got %d", p.Live())
	}
}

func TestPoolOutOfRangeReleasePanics(t *testing.T) {
	p := NewPool[poolSlot](1)
	h, _ := p.Acquire()
	_ = h
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-range handle")
		}
	}()
	p.Release(int32(99))
}

func TestPoolDoubleReleasePanics(t *testing.T) {
	p := NewPool[poolSlot](1)
	h, _ := p.Acquire()
	p.Release(h)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when releasing an already-released handle")
		}
	}()
	p.Release(h)
}

func TestPoolAcquireExhaustionPanics(t *testing.T) {
	p := NewPool[poolSlot](1)
	p.Acquire()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when acquiring past capacity")
		}
	}()
	p.Acquire()
}
