package job

import (
	"context"
	"math"
	"time"
)

// Stats is the aggregate job summary. Every field is recomputed from the
// full job set on each call; there is no cached aggregate state.
type Stats struct {
	Total             int            `json:"total"`
	Completed         int            `json:"completed"`
	InProgress        int            `json:"inProgress"`
	Pending           int            `json:"pending"`
	AvgCompletionTime int            `json:"avgCompletionTime"`
	CompletionRate    int            `json:"completionRate"`
	StatusBreakdown   map[Status]int `json:"statusBreakdown"`
	CurrentQueue      int            `json:"currentQueue"`
	TodayJobs         int            `json:"todayJobs"`
}

// ComputeStats derives the summary from the complete job set. Pending is
// NEW_QUEUE, completed is COMPLETED, everything else counts as in progress,
// so total always equals completed + pending + inProgress.
func ComputeStats(jobs []*Job, now time.Time) Stats {
	breakdown := make(map[Status]int, len(AllStatuses))
	for _, st := range AllStatuses {
		breakdown[st] = 0
	}

	stats := Stats{Total: len(jobs), StatusBreakdown: breakdown}
	dayStart := startOfDay(now)
	var completionSum time.Duration
	completionCount := 0

	for _, j := range jobs {
		switch j.Status {
		case StatusCompleted:
			stats.Completed++
		case StatusNewQueue:
			stats.Pending++
		default:
			stats.InProgress++
		}
		breakdown[j.Status]++
		if j.CompletedAt != nil && !j.CreatedAt.IsZero() {
			completionSum += j.CompletedAt.Sub(j.CreatedAt)
			completionCount++
		}
		if j.QueueNumber > stats.CurrentQueue {
			stats.CurrentQueue = j.QueueNumber
		}
		if !j.CreatedAt.Before(dayStart) {
			stats.TodayJobs++
		}
	}

	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}
	if completionCount > 0 {
		days := completionSum.Hours() / 24 / float64(completionCount)
		stats.AvgCompletionTime = int(math.Round(days))
	}
	return stats
}

// Stats loads the full job set and aggregates it.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	all, err := s.store.Query(ctx, Query{})
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(all, s.now())
	return &stats, nil
}

// DailyStat is one day's creation/completion bucket for the admin chart.
type DailyStat struct {
	Date      string  `json:"date"`
	Created   int     `json:"created"`
	Completed int     `json:"completed"`
	Revenue   float64 `json:"revenue"`
}

// ComputeDaily buckets jobs by local day over the trailing window, oldest
// day first. Revenue sums the actual cost of jobs completed that day.
func ComputeDaily(jobs []*Job, now time.Time, days int) []DailyStat {
	out := make([]DailyStat, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := startOfDay(now).AddDate(0, 0, -i)
		next := day.AddDate(0, 0, 1)
		stat := DailyStat{Date: day.Format("2006-01-02")}
		for _, j := range jobs {
			if !j.CreatedAt.Before(day) && j.CreatedAt.Before(next) {
				stat.Created++
			}
			if j.CompletedAt != nil && !j.CompletedAt.Before(day) && j.CompletedAt.Before(next) {
				stat.Completed++
				stat.Revenue += j.ActualCost
			}
		}
		out = append(out, stat)
	}
	return out
}

// Daily loads the full job set and buckets it over the trailing window.
func (s *Service) Daily(ctx context.Context, days int) ([]DailyStat, error) {
	all, err := s.store.Query(ctx, Query{})
	if err != nil {
		return nil, err
	}
	return ComputeDaily(all, s.now(), days), nil
}

// Trends approximates period-over-period growth for the admin dashboard.
// The previous period is simulated from current totals; real trend tracking
// would need historical snapshots.
type Trends struct {
	JobsGrowth       int `json:"jobsGrowth"`
	RevenueGrowth    int `json:"revenueGrowth"`
	CompletionGrowth int `json:"completionGrowth"`
	EfficiencyGrowth int `json:"efficiencyGrowth"`
}

// revenuePerJob is the flat per-completion revenue assumption the dashboard
// trend uses.
const revenuePerJob = 2500

func ComputeTrends(stats Stats) Trends {
	return Trends{
		JobsGrowth:       growthPercent(stats.Total),
		RevenueGrowth:    growthPercent(stats.Completed * revenuePerJob),
		CompletionGrowth: growthPercent(stats.Completed),
		EfficiencyGrowth: efficiencyScore(stats),
	}
}

func growthPercent(current int) int {
	base := current - 2
	if base < 0 {
		base = 0
	}
	if base == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(current-base) / float64(base) * 100))
}

func efficiencyScore(stats Stats) int {
	if stats.Total == 0 {
		return 0
	}
	return int(math.Round(float64(stats.Completed) / float64(stats.Total) * 10))
}
