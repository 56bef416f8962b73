package botgo

import "sync"

// DefaultTaskLimit bounds concurrently running handler invocations.
const DefaultTaskLimit = 1500

// taskPool runs handler invocations on goroutines, at most limit at a
// time. Spawn never blocks the caller; a task scheduled past the limit
// waits for capacity inside its own goroutine.
type taskPool struct {
	sem chan struct{}
	wg  sync.WaitGroup

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]struct{}
}

func newTaskPool(limit int) *taskPool {
	if limit < 1 {
		limit = DefaultTaskLimit
	}
	return &taskPool{
		sem:     make(chan struct{}, limit),
		pending: make(map[uint64]struct{}),
	}
}

// Spawn registers a task handle and runs fn on a goroutine once the pool
// has capacity.
func (p *taskPool) Spawn(fn func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.pending[id] = struct{}{}
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.sem <- struct{}{}
		defer func() {
			<-p.sem
			p.mu.Lock()
			delete(p.pending, id)
			p.mu.Unlock()
		}()
		fn()
	}()
}

// PendingCount reports how many task handles have not completed.
func (p *taskPool) PendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Drain waits for every pending task to complete. No task is cancelled.
func (p *taskPool) Drain() {
	p.wg.Wait()
}
