package services

import (
	"sync"

	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
	"github.com/omnibar-labs/omnibar-cli/internal/logger"
)

// SubmitOutcome is the result of a coalescer submission.
type SubmitOutcome int

const (
	// SubmitAccepted means the job was handed to the pool and will run.
	SubmitAccepted SubmitOutcome = iota

	// SubmitCoalesced means the job was either parked as the tag's
	// pending successor (possibly replacing an older one) or dropped
	// because the pool is saturated. Either way the caller must not
	// expect this exact submission to run.
	SubmitCoalesced
)

// tagState tracks admission for one tag.
// At most one pending job exists per tag; a newer submission replaces it.
type tagState struct {
	running int
	pending func()
}

// Coalescer bounds concurrent jobs per tag on top of a shared worker
// pool. A submission while the tag is at its limit does not queue: it
// replaces the tag's pending job, which is dropped and never runs.
// When a running job completes, the pending job (if any) starts
// immediately.
//
// Intended for callers with only-most-recent-matters semantics, such
// as re-querying a source on every keystroke. It must not carry work
// whose side effect has to happen eventually.
type Coalescer struct {
	pool  driven.WorkerPool
	limit int

	mu   sync.Mutex
	tags map[string]*tagState
}

// NewCoalescer creates a coalescer admitting up to limit concurrent
// jobs per tag.
func NewCoalescer(pool driven.WorkerPool, limit int) *Coalescer {
	if limit < 1 {
		limit = 1
	}
	return &Coalescer{
		pool:  pool,
		limit: limit,
		tags:  make(map[string]*tagState),
	}
}

// Submit admits a job for the tag. Safe for concurrent use.
func (c *Coalescer) Submit(tag string, job func()) SubmitOutcome {
	c.mu.Lock()
	t := c.tag(tag)
	if t.running > c.limit {
		// Coordination bug; correct rather than fail an interactive
		// session.
		logger.Warn("coalescer: tag %q running=%d exceeds limit=%d, clamping", tag, t.running, c.limit)
		t.running = c.limit
	}
	if t.running == c.limit {
		t.pending = job
		c.mu.Unlock()
		logger.Debug("coalescer: tag %q at limit, superseding pending job", tag)
		return SubmitCoalesced
	}
	t.running++
	c.mu.Unlock()

	if !c.pool.TrySubmit(c.wrap(tag, job)) {
		c.mu.Lock()
		t.running--
		c.mu.Unlock()
		logger.Debug("coalescer: pool rejected job for tag %q, dropping", tag)
		return SubmitCoalesced
	}
	return SubmitAccepted
}

// Running returns the number of running jobs for a tag. For tests and
// diagnostics.
func (c *Coalescer) Running(tag string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tags[tag]; ok {
		return t.running
	}
	return 0
}

// tag returns the tag's state, creating it lazily. The table never
// shrinks; tag cardinality is bounded by the number of distinct
// sources. Caller holds c.mu.
func (c *Coalescer) tag(tag string) *tagState {
	t, ok := c.tags[tag]
	if !ok {
		t = &tagState{}
		c.tags[tag] = t
	}
	return t
}

func (c *Coalescer) wrap(tag string, job func()) func() {
	return func() {
		defer c.done(tag)
		job()
	}
}

// done releases the tag's slot and promotes the pending job, if any.
func (c *Coalescer) done(tag string) {
	c.mu.Lock()
	t := c.tag(tag)
	t.running--
	if t.running < 0 {
		logger.Warn("coalescer: tag %q completed with no running job", tag)
		t.running = 0
	}
	var next func()
	if t.pending != nil && t.running < c.limit {
		next = t.pending
		t.pending = nil
		t.running++
	}
	c.mu.Unlock()

	if next == nil {
		return
	}
	if !c.pool.TrySubmit(c.wrap(tag, next)) {
		c.mu.Lock()
		t.running--
		c.mu.Unlock()
		logger.Debug("coalescer: pool rejected promoted job for tag %q, dropping", tag)
	}
}
