package botgo

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSpawnNeverBlocksCaller(t *testing.T) {
	p := newTaskPool(1)
	release := make(chan struct{})

	var running sync.WaitGroup
	running.Add(1)
	p.Spawn(func() {
		running.Done()
		<-release
	})
	running.Wait()

	// The pool is saturated, but scheduling more tasks must return
	// immediately.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			p.Spawn(func() {})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Spawn blocked on a saturated pool")
	}

	if got := p.PendingCount(); got != 11 {
		t.Errorf("pending = %d, want 11", got)
	}
	close(release)
	p.Drain()
}

func TestPoolLimitsConcurrency(t *testing.T) {
	p := newTaskPool(2)
	var current, peak int32

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		p.Spawn(func() {
			defer wg.Done()
			n := atomic.AddInt32(&current, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
		})
	}
	wg.Wait()

	if got := atomic.LoadInt32(&peak); got > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", got)
	}
}

func TestDrainWaitsForEveryTask(t *testing.T) {
	p := newTaskPool(4)
	var completed int32
	for i := 0; i < 10; i++ {
		p.Spawn(func() {
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&completed, 1)
		})
	}
	p.Drain()

	if got := atomic.LoadInt32(&completed); got != 10 {
		t.Errorf("completed = %d, want 10", got)
	}
	if got := p.PendingCount(); got != 0 {
		t.Errorf("pending after drain = %d", got)
	}
}

func TestZeroLimitUsesDefault(t *testing.T) {
	p := newTaskPool(0)
	if cap(p.sem) != DefaultTaskLimit {
		t.Errorf("cap = %d, want %d", cap(p.sem), DefaultTaskLimit)
	}
}
