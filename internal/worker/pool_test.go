package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chroniclebot/chronicle/internal/testing/leaktest"
)

type countingJob struct {
	count *atomic.Int64
	done  *sync.WaitGroup
	err   error
}

func (j *countingJob) Process(_ context.Context) error {
	j.count.Add(1)
	j.done.Done()
	return j.err
}

func TestPool_ProcessesJobs(t *testing.T) {
	pool := NewPool(2, 8)
	pool.Start()
	defer pool.Stop()

	var count atomic.Int64
	var done sync.WaitGroup

	for i := 0; i < 5; i++ {
		done.Add(1)
		pool.Enqueue(&countingJob{count: &count, done: &done})
	}

	waitDone(t, &done)
	assert.Equal(t, int64(5), count.Load())
}

func TestPool_JobErrorDoesNotKillWorker(t *testing.T) {
	pool := NewPool(1, 4)
	pool.Start()
	defer pool.Stop()

	var count atomic.Int64
	var done sync.WaitGroup

	done.Add(2)
	pool.Enqueue(&countingJob{count: &count, done: &done, err: errors.New("boom")})
	pool.Enqueue(&countingJob{count: &count, done: &done})

	waitDone(t, &done)
	assert.Equal(t, int64(2), count.Load(), "worker survives a failing job")
}

func TestPool_TryEnqueue_FullQueue(t *testing.T) {
	// No workers started, so the queue only drains via capacity
	pool := NewPool(1, 1)

	var count atomic.Int64
	var done sync.WaitGroup
	done.Add(1)

	assert.True(t, pool.TryEnqueue(&countingJob{count: &count, done: &done}))
	assert.False(t, pool.TryEnqueue(&countingJob{count: &count, done: &done}))
	assert.Equal(t, 1, pool.QueueDepth())
}

func TestPool_StopReleasesWorkers(t *testing.T) {
	checker := leaktest.NewGoroutineChecker(t)

	pool := NewPool(4, 8)
	pool.Start()

	var count atomic.Int64
	var done sync.WaitGroup
	done.Add(1)
	pool.Enqueue(&countingJob{count: &count, done: &done})
	waitDone(t, &done)

	pool.Stop()
	checker.Check(0)
}

func waitDone(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for jobs")
	}
}
