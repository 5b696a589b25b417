package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.RecordEventObserved()
	c.RecordEventObserved()
	c.RecordReactionMatched()
	c.RecordSyncSuccess(2 * time.Second)
	c.RecordSyncSuccess(4 * time.Second)
	c.RecordSyncFailure()
	c.RecordSyncSkipped()
	c.RecordReconciliationPass()

	snap := c.Snapshot()
	assert.Equal(t, uint64(2), snap.EventsObserved)
	assert.Equal(t, uint64(1), snap.ReactionsMatched)
	assert.Equal(t, uint64(2), snap.SyncSuccesses)
	assert.Equal(t, uint64(1), snap.SyncFailures)
	assert.Equal(t, uint64(1), snap.SyncSkipped)
	assert.Equal(t, uint64(1), snap.ReconciliationPasses)
	assert.Equal(t, 3*time.Second, snap.AvgSyncDuration)
	require.NotNil(t, snap.LastSyncAt)
}

func TestCollector_EmptySnapshot(t *testing.T) {
	snap := NewCollector().Snapshot()
	assert.Zero(t, snap.SyncSuccesses)
	assert.Zero(t, snap.AvgSyncDuration)
	assert.Nil(t, snap.LastSyncAt)
	assert.False(t, snap.StartedAt.IsZero())
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordEventObserved()
				c.RecordSyncSuccess(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, uint64(1000), snap.EventsObserved)
	assert.Equal(t, uint64(1000), snap.SyncSuccesses)
}
