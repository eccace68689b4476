package services

import (
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
	"github.com/omnibar-labs/omnibar-cli/internal/logger"
)

// Ensure pools implement the interface.
var (
	_ driven.WorkerPool = (*BoundedPool)(nil)
	_ driven.WorkerPool = (*SemaphorePool)(nil)
)

// BoundedPool runs jobs on a bounded set of worker goroutines.
// The first core workers stay resident; workers beyond that exit after
// keepAlive of idleness. TrySubmit never blocks and never queues: a
// saturated pool drops the job, which suits the coalescer's
// only-most-recent-matters callers.
type BoundedPool struct {
	jobs      chan func()
	quit      chan struct{}
	core      int
	max       int
	keepAlive time.Duration

	mu      sync.Mutex
	workers int
	closed  bool
}

// NewBoundedPool creates a pool with the given core and maximum worker
// counts. Invalid sizes are corrected rather than rejected.
func NewBoundedPool(core, max int, keepAlive time.Duration) *BoundedPool {
	if max < 1 {
		max = 1
	}
	if core < 0 {
		core = 0
	}
	if core > max {
		core = max
	}
	if keepAlive <= 0 {
		keepAlive = 10 * time.Second
	}
	return &BoundedPool{
		jobs:      make(chan func()),
		quit:      make(chan struct{}),
		core:      core,
		max:       max,
		keepAlive: keepAlive,
	}
}

// TrySubmit schedules a job, preferring an idle worker and spawning a
// new one up to the maximum. Returns false when the pool is saturated
// or closed.
func (p *BoundedPool) TrySubmit(job func()) bool {
	// Hand off to an idle worker when one is already waiting.
	select {
	case p.jobs <- job:
		return true
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	if p.workers >= p.max {
		p.mu.Unlock()
		// A worker may have gone idle since the fast path; one more
		// non-blocking attempt before giving up.
		select {
		case p.jobs <- job:
			return true
		default:
			logger.Debug("pool: saturated at %d workers, dropping job", p.max)
			return false
		}
	}
	p.workers++
	resident := p.workers <= p.core
	p.mu.Unlock()

	go p.work(job, resident)
	return true
}

// Close stops accepting jobs and signals workers to exit once idle.
// Running jobs finish normally.
func (p *BoundedPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	close(p.quit)
}

func (p *BoundedPool) work(job func(), resident bool) {
	for {
		job()

		if resident {
			select {
			case next := <-p.jobs:
				job = next
				continue
			case <-p.quit:
				p.exit()
				return
			}
		}

		idle := time.NewTimer(p.keepAlive)
		select {
		case next := <-p.jobs:
			idle.Stop()
			job = next
		case <-p.quit:
			idle.Stop()
			p.exit()
			return
		case <-idle.C:
			p.exit()
			return
		}
	}
}

func (p *BoundedPool) exit() {
	p.mu.Lock()
	p.workers--
	p.mu.Unlock()
}

// SemaphorePool is a minimal pool that spawns one goroutine per job
// under a weighted semaphore. Used by one-shot callers that do not
// need worker reuse.
type SemaphorePool struct {
	sem *semaphore.Weighted
}

// NewSemaphorePool creates a pool admitting up to max concurrent jobs.
func NewSemaphorePool(max int) *SemaphorePool {
	if max < 1 {
		max = 1
	}
	return &SemaphorePool{sem: semaphore.NewWeighted(int64(max))}
}

// TrySubmit runs the job on a fresh goroutine, or returns false when
// the concurrency cap is reached.
func (p *SemaphorePool) TrySubmit(job func()) bool {
	if !p.sem.TryAcquire(1) {
		return false
	}
	go func() {
		defer p.sem.Release(1)
		job()
	}()
	return true
}
