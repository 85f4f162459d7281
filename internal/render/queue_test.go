package render

import (
	"sync"
	"testing"
)

func TestComputeTilesExactCounts(t *testing.T) {
	tiles := ComputeTiles(10, 10, 2, 2, 64)
	if len(tiles) != 25 {
		t.Fatalf("expected 25 tiles, got %d", len(tiles))
	}
	if tiles[0] != (Tile{0, 0, 2, 2}) {
		t.Fatalf("expected first tile (0,0,2,2), got %+v", tiles[0])
	}
	last := tiles[len(tiles)-1]
	if last != (Tile{8, 8, 10, 10}) {
		t.Fatalf("expected last tile (8,8,10,10), got %+v", last)
	}
}

func TestComputeTilesUnevenDims(t *testing.T) {
	tiles := ComputeTiles(9, 9, 2, 2, 64)
	if len(tiles) != 25 {
		t.Fatalf("expected 25 tiles, got %d", len(tiles))
	}
	if tiles[24] != (Tile{8, 8, 9, 9}) {
		t.Fatalf("expected tile[24]=(8,8,9,9), got %+v", tiles[24])
	}
}

func TestComputeTilesCapTruncates(t *testing.T) {
	tiles := ComputeTiles(10, 10, 2, 2, 10)
	if len(tiles) != 10 {
		t.Fatalf("expected exactly 10 tiles with cap=10, got %d", len(tiles))
	}
}

func TestWorkQueueEveryTaskPoppedExactlyOnce(t *testing.T) {
	tiles := []Tile{{0, 0, 1, 1}, {1, 0, 2, 1}, {2, 0, 3, 1}, {3, 0, 4, 1}}
	q := NewWorkQueue(len(tiles))
	q.Reset(tiles)

	var mu sync.Mutex
	seen := make(map[Tile]int)

	RunWorkers(q, 2, func(tl Tile) {
		mu.Lock()
		seen[tl]++
		mu.Unlock()
	})

	if len(seen) != len(tiles) {
		t.Fatalf("expected %d distinct tiles popped, got %d", len(tiles), len(seen))
	}
	for _, tl := range tiles {
		if seen[tl] != 1 {
			t.Fatalf("tile %+v popped %d times, want exactly 1", tl, seen[tl])
		}
	}
}

func TestWorkQueueReusableAcrossPasses(t *testing.T) {
	q := NewWorkQueue(4)
	for pass := 0; pass < 3; pass++ {
		tiles := []Tile{{0, 0, 1, 1}, {1, 0, 2, 1}}
		q.Reset(tiles)
		count := 0
		RunWorkers(q, 2, func(Tile) { count++ })
		if count != 2 {
			t.Fatalf("pass %d: expected 2 tiles processed, got %d", pass, count)
		}
	}
}
