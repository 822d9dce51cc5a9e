package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkJob(id string, status Status, queueNumber int, createdAt time.Time) *Job {
	return &Job{
		JobID:       id,
		Status:      status,
		QueueNumber: queueNumber,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
		IsActive:    true,
	}
}

func TestComputeStatsEmptySet(t *testing.T) {
	stats := ComputeStats(nil, time.Now())

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.CompletionRate)
	assert.Equal(t, 0, stats.AvgCompletionTime)
	assert.Equal(t, 0, stats.CurrentQueue)
	assert.Equal(t, 0, stats.TodayJobs)
	require.Len(t, stats.StatusBreakdown, len(AllStatuses))
	for st, n := range stats.StatusBreakdown {
		assert.Zero(t, n, "status %s", st)
	}
}

func TestComputeStatsPartition(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)
	jobs := []*Job{
		mkJob("a", StatusNewQueue, 1, now),
		mkJob("b", StatusNewQueue, 2, now),
		mkJob("c", StatusRepairing, 3, now.Add(-48*time.Hour)),
		mkJob("d", StatusQualityCheck, 4, now),
		mkJob("e", StatusCompleted, 5, now.Add(-72*time.Hour)),
	}
	stats := ComputeStats(jobs, now)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 2, stats.InProgress)
	assert.Equal(t, stats.Total, stats.Completed+stats.Pending+stats.InProgress)
	assert.Equal(t, 20, stats.CompletionRate)
	assert.Equal(t, 5, stats.CurrentQueue)
	assert.Equal(t, 3, stats.TodayJobs)
	assert.Equal(t, 2, stats.StatusBreakdown[StatusNewQueue])
	assert.Equal(t, 1, stats.StatusBreakdown[StatusRepairing])
	assert.Equal(t, 0, stats.StatusBreakdown[StatusWaitingParts])
}

func TestComputeStatsAvgCompletionDays(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)

	twoDays := now.Add(-2 * 24 * time.Hour)
	fourDays := now.Add(-4 * 24 * time.Hour)
	a := mkJob("a", StatusCompleted, 1, twoDays)
	a.CompletedAt = &now
	b := mkJob("b", StatusCompleted, 2, fourDays)
	b.CompletedAt = &now

	stats := ComputeStats([]*Job{a, b}, now)
	assert.Equal(t, 3, stats.AvgCompletionTime, "mean of 2 and 4 days")
	assert.Equal(t, 100, stats.CompletionRate)
}

func TestComputeDailyBuckets(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)
	yesterday := now.AddDate(0, 0, -1)

	done := mkJob("a", StatusCompleted, 1, yesterday.Add(-time.Hour))
	completedAt := yesterday
	done.CompletedAt = &completedAt
	done.ActualCost = 1200

	jobs := []*Job{
		done,
		mkJob("b", StatusNewQueue, 2, now),
		mkJob("c", StatusNewQueue, 3, now.AddDate(0, 0, -10)), // outside the window
	}

	daily := ComputeDaily(jobs, now, 7)
	require.Len(t, daily, 7)
	assert.Equal(t, now.AddDate(0, 0, -6).Format("2006-01-02"), daily[0].Date)

	last := daily[6]
	assert.Equal(t, now.Format("2006-01-02"), last.Date)
	assert.Equal(t, 1, last.Created)
	assert.Equal(t, 0, last.Completed)

	prev := daily[5]
	assert.Equal(t, 1, prev.Created)
	assert.Equal(t, 1, prev.Completed)
	assert.Equal(t, 1200.0, prev.Revenue)
}

func TestComputeTrends(t *testing.T) {
	trends := ComputeTrends(Stats{})
	assert.Zero(t, trends.JobsGrowth)
	assert.Zero(t, trends.EfficiencyGrowth)

	trends = ComputeTrends(Stats{Total: 10, Completed: 6})
	assert.Equal(t, 25, trends.JobsGrowth)
	assert.Equal(t, 6, trends.EfficiencyGrowth)
	assert.Equal(t, 50, trends.CompletionGrowth)
}
