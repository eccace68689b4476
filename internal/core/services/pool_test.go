package services

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedPoolRunsAndReusesWorkers(t *testing.T) {
	pool := NewBoundedPool(1, 1, time.Second)
	defer pool.Close()

	first := make(chan struct{})
	require.True(t, pool.TrySubmit(func() { close(first) }))
	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("first job did not run")
	}

	// The single worker is idle again; resubmission must eventually be
	// picked up by it.
	second := make(chan struct{})
	require.Eventually(t, func() bool {
		return pool.TrySubmit(func() { close(second) })
	}, time.Second, time.Millisecond)
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("second job did not run")
	}
}

func TestBoundedPoolSaturationDropsJob(t *testing.T) {
	pool := NewBoundedPool(0, 1, time.Second)
	defer pool.Close()

	release := make(chan struct{})
	require.True(t, pool.TrySubmit(func() { <-release }))

	// Single worker is busy and the cap is reached.
	assert.False(t, pool.TrySubmit(func() {}))
	close(release)
}

func TestBoundedPoolClosedRejects(t *testing.T) {
	pool := NewBoundedPool(0, 2, time.Second)
	pool.Close()

	assert.False(t, pool.TrySubmit(func() {}))
}

func TestBoundedPoolNeverExceedsMax(t *testing.T) {
	pool := NewBoundedPool(1, 3, 50*time.Millisecond)
	defer pool.Close()

	var current, peak, executed atomic.Int32
	for range 200 {
		pool.TrySubmit(func() {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			current.Add(-1)
			executed.Add(1)
		})
	}

	require.Eventually(t, func() bool {
		return current.Load() == 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Positive(t, executed.Load())
}

func TestSemaphorePoolCapsConcurrency(t *testing.T) {
	pool := NewSemaphorePool(1)

	release := make(chan struct{})
	done := make(chan struct{})
	require.True(t, pool.TrySubmit(func() { <-release; close(done) }))
	assert.False(t, pool.TrySubmit(func() {}))

	close(release)
	<-done
	require.Eventually(t, func() bool {
		ok := pool.TrySubmit(func() {})
		return ok
	}, time.Second, time.Millisecond)
}
