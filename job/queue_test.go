package job

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentQueueViewFiltersAndOrders(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	put := func(id string, status Status, queueNumber int) {
		require.NoError(t, store.Put(ctx, mkJob(id, status, queueNumber, now)))
	}
	put("w3", StatusNewQueue, 3)
	put("w1", StatusReceivedAtDrop, 1)
	put("w2", StatusNewQueue, 2)
	put("r1", StatusRepairing, 4)
	put("c1", StatusCompleted, 5)

	view, err := svc.CurrentQueueView(ctx)
	require.NoError(t, err)
	require.Len(t, view.QueueList, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{
		view.QueueList[0].QueueNumber,
		view.QueueList[1].QueueNumber,
		view.QueueList[2].QueueNumber,
	})
	for _, entry := range view.QueueList {
		assert.Contains(t, queueStatuses, entry.Status)
	}
	assert.Equal(t, 5, view.CurrentQueue)
	assert.Equal(t, 5, view.TotalToday)
	assert.Equal(t, averageWaitMinutes, view.AverageWaitTime)
	assert.Equal(t, "09:30", view.QueueList[0].EstimatedTime)
	assert.Equal(t, "10:00", view.QueueList[1].EstimatedTime)
	assert.Equal(t, "10:30", view.QueueList[2].EstimatedTime)
}

func TestCurrentQueueViewCapsAtTen(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	for i := 1; i <= 15; i++ {
		require.NoError(t, store.Put(ctx, mkJob(string(rune('a'+i)), StatusNewQueue, i, now)))
	}

	view, err := svc.CurrentQueueView(ctx)
	require.NoError(t, err)
	assert.Len(t, view.QueueList, queueBoardSize)
	assert.Equal(t, 1, view.QueueList[0].QueueNumber)
	assert.Equal(t, 10, view.QueueList[9].QueueNumber)
}

func TestCurrentQueueViewEmptyStore(t *testing.T) {
	svc, _ := newTestService(t)

	view, err := svc.CurrentQueueView(context.Background())
	require.NoError(t, err)
	assert.Empty(t, view.QueueList)
	assert.Zero(t, view.CurrentQueue)
	assert.Zero(t, view.TotalToday)
}

func TestQueueSlotIsConfigurable(t *testing.T) {
	store, err := NewMemoryStore("")
	require.NoError(t, err)
	svc := NewService(store, 10*time.Minute)
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, mkJob("a", StatusNewQueue, 1, now)))

	view, err := svc.CurrentQueueView(ctx)
	require.NoError(t, err)
	require.Len(t, view.QueueList, 1)
	assert.Equal(t, "09:10", view.QueueList[0].EstimatedTime)
}
