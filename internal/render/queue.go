package render

import (
	"sync"
	"sync/atomic"
	"time"
)

// WorkQueue is the fixed-capacity atomic-head/tail ring of §4.8. The
// producer resets head to 0 and writes tasks[0:n) before publishing
// tail=n; workers claim a slot by fetch-adding head, so no task is
// ever handed to two workers, matching the teacher's
// generateTiles+channel worker pool in renderer_parallel.go but
// replacing the channel with an explicit atomic cursor pair per the
// spec's head/tail contention model (§5: "WorkQueue head: contended
// atomic ... Tail: modified only by producer").
type WorkQueue struct {
	tasks []Tile
	head  uint64
	tail  uint64
}

// NewWorkQueue allocates a queue with room for capacity tiles.
func NewWorkQueue(capacity int) *WorkQueue {
	return &WorkQueue{tasks: make([]Tile, capacity)}
}

// Reset loads tasks[0:len(tasks)) and publishes the queue for a new
// render pass, reallocating the task array if tasks exceeds its
// current capacity. Must complete before any worker starts polling.
func (q *WorkQueue) Reset(tasks []Tile) {
	if len(tasks) > len(q.tasks) {
		q.tasks = make([]Tile, len(tasks))
	}
	copy(q.tasks, tasks)
	atomic.StoreUint64(&q.head, 0)
	atomic.StoreUint64(&q.tail, uint64(len(tasks)))
}

// TryPop claims the next tile, if any remain. It is safe to call
// concurrently from any number of workers; each tile is returned to
// exactly one caller. Implements the spec's "if head==tail, sleep;
// else fetch-and-add head to claim index i" as a CAS loop so a
// drained queue never advances head past tail.
func (q *WorkQueue) TryPop() (Tile, bool) {
	for {
		head := atomic.LoadUint64(&q.head)
		tail := atomic.LoadUint64(&q.tail)
		if head >= tail {
			return Tile{}, false
		}
		if atomic.CompareAndSwapUint64(&q.head, head, head+1) {
			return q.tasks[head], true
		}
	}
}

// pollInterval is the worker's poll-sleep when the queue looks
// drained but the producer has not yet published tail, per §5's
// "short sleep, order of 1ms". Reset always publishes tail before
// workers are started, so in a single render pass a worker reaches
// this sleep only after the queue has drained, where it sleeps
// maxDrainRetries times before exiting; the poll loop also keeps the
// queue correct if a caller ever starts workers before Reset finishes.
const pollInterval = time.Millisecond

// RunWorkers spawns numWorkers workers that pop tiles from q until it
// is drained, invoking process for each. It blocks until every tile
// has been processed, mirroring the teacher's startWorkers/wg.Wait
// shape in renderer_parallel.go.
func RunWorkers(q *WorkQueue, numWorkers int, process func(Tile)) {
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			misses := 0
			for {
				tile, ok := q.TryPop()
				if !ok {
					misses++
					if misses > maxDrainRetries {
						return
					}
					time.Sleep(pollInterval)
					continue
				}
				misses = 0
				process(tile)
			}
		}()
	}
	wg.Wait()
}

// maxDrainRetries bounds the poll loop: since Reset publishes tail
// before any worker starts, a real render pass never needs more than
// one failed TryPop before exiting; a small retry budget only guards
// against the caller-ordering edge case described on pollInterval.
const maxDrainRetries = 3
