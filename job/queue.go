package job

import (
	"context"
	"time"
)

// queueStatuses are the statuses visible on the public queue board.
var queueStatuses = []Status{StatusNewQueue, StatusReceivedAtDrop}

const queueBoardSize = 10

// averageWaitMinutes is a display placeholder, not derived from data.
const averageWaitMinutes = 30

// QueueEntry is one public row of the walk-in queue board.
type QueueEntry struct {
	QueueNumber   int    `json:"queueNumber"`
	JobID         string `json:"jobId"`
	CustomerName  string `json:"customerName"`
	Status        Status `json:"status"`
	EstimatedTime string `json:"estimatedTime"`
}

// QueueView is the derived public view of the active queue.
type QueueView struct {
	CurrentQueue    int          `json:"currentQueue"`
	TotalToday      int          `json:"totalToday"`
	AverageWaitTime int          `json:"averageWaitTime"`
	LastUpdated     time.Time    `json:"lastUpdated"`
	QueueList       []QueueEntry `json:"queueList"`
}

// nextQueueNumber implements the daily counter as a pure function of the
// store: jobs created since local midnight, plus one. Two concurrent
// creations can read the same count; queueNumber is an approximate ordering
// hint, never a key.
func (s *Service) nextQueueNumber(ctx context.Context, now time.Time) (int, error) {
	n, err := s.store.Count(ctx, Query{CreatedAfter: startOfDay(now)})
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

// CurrentQueueView projects the first ten waiting jobs in queue order, with
// an estimated ready time of one slot per position from now.
func (s *Service) CurrentQueueView(ctx context.Context) (*QueueView, error) {
	all, err := s.store.Query(ctx, Query{})
	if err != nil {
		return nil, err
	}
	now := s.now()
	stats := ComputeStats(all, now)

	waiting, err := s.store.Query(ctx, Query{
		Statuses: queueStatuses,
		OrderBy:  OrderQueueAsc,
		Limit:    queueBoardSize,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]QueueEntry, 0, len(waiting))
	for i, j := range waiting {
		eta := now.Add(time.Duration(i+1) * s.slot)
		entries = append(entries, QueueEntry{
			QueueNumber:   j.QueueNumber,
			JobID:         j.JobID,
			CustomerName:  j.CustomerName,
			Status:        j.Status,
			EstimatedTime: eta.Format("15:04"),
		})
	}

	return &QueueView{
		CurrentQueue:    stats.CurrentQueue,
		TotalToday:      stats.TodayJobs,
		AverageWaitTime: averageWaitMinutes,
		LastUpdated:     now,
		QueueList:       entries,
	}, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
