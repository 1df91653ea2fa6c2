// Package workers runs batches of functions on a fixed set of goroutines.
package workers

import (
	"runtime"
	"sync"
)

// Pool is a fixed set of goroutines pulling work from a shared channel.
//
// Pool is safe for concurrent use.
type Pool struct {
	workers int
	work    chan func()
	wg      sync.WaitGroup

	// mu guards closed against sends racing with Close.
	mu     sync.RWMutex
	closed bool
}

// New starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		workers: workers,
		work:    make(chan func(), workers*2),
	}
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for fn := range p.work {
		fn()
	}
}

// RunAll runs every function in fns on the pool and waits for all of them.
// It reports false, running nothing, if the pool is closed.
func (p *Pool) RunAll(fns []func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	var done sync.WaitGroup
	done.Add(len(fns))
	for _, fn := range fns {
		p.work <- func() {
			defer done.Done()
			if fn != nil {
				fn()
			}
		}
	}
	done.Wait()
	return true
}

// Close stops the workers after queued work finishes.
// Close is safe to call multiple times.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.work)
	p.mu.Unlock()

	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}
