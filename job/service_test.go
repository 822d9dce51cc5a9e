package job

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jobIDPattern = regexp.MustCompile(`^[0-9]{10}$`)

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	store, err := NewMemoryStore("")
	require.NoError(t, err)
	return NewService(store, 30*time.Minute), store
}

func validCreateInput() CreateInput {
	return CreateInput{
		CustomerName:       "Somchai",
		CustomerPhone:      "0812345678",
		DeviceModel:        "iPhone 14",
		ProblemDescription: "Screen cracked",
		DropAppID:          "drop_app_001",
	}
}

func TestCreateAssignsQueueNumberOneOnEmptyStore(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	result, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)
	assert.True(t, jobIDPattern.MatchString(result.JobID), "job id %q", result.JobID)
	assert.Equal(t, 1, result.QueueNumber)
	assert.Equal(t, "Somchai", result.CustomerName)

	j, err := store.Get(ctx, result.JobID)
	require.NoError(t, err)
	assert.Equal(t, StatusNewQueue, j.Status)
	assert.Len(t, j.History, 1)
	assert.Nil(t, j.CompletedAt)
	assert.Equal(t, "system", j.History[0].UpdatedBy)
	assert.Equal(t, StatusNewQueue, j.History[0].Status)
	assert.Equal(t, "ONLINE", j.Source)
	assert.Equal(t, "OTHER", j.ProblemCategory)
	assert.Equal(t, PriorityNormal, j.Priority)
	assert.True(t, j.IsActive)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 5)

	in := validCreateInput()
	in.CustomerPhone = "12345"
	_, err = svc.Create(ctx, in)
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "customerPhone", verr.Fields[0].Field)
}

func TestQueueNumberCountsOnlyToday(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	yesterday := time.Now().Add(-24 * time.Hour)
	svc.now = func() time.Time { return yesterday }
	_, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	svc.now = time.Now
	result, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)
	assert.Equal(t, 1, result.QueueNumber, "yesterday's job must not count toward today's queue")
}

func TestUpdateStatusToCompleted(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, created.JobID, UpdateStatusInput{Status: StatusRepairing}, Actor{ID: "asp001", Name: "ASP Technician"})
	require.NoError(t, err)

	result, err := svc.UpdateStatus(ctx, created.JobID, UpdateStatusInput{Status: StatusCompleted}, Actor{ID: "asp001", Name: "ASP Technician"})
	require.NoError(t, err)
	assert.Equal(t, StatusRepairing, result.OldStatus)
	assert.Equal(t, StatusCompleted, result.NewStatus)

	j, err := store.Get(ctx, created.JobID)
	require.NoError(t, err)
	require.NotNil(t, j.CompletedAt)
	require.Len(t, j.History, 3)
	last := j.History[2]
	assert.Equal(t, StatusCompleted, last.Status)
	assert.Equal(t, "asp001", last.UpdatedBy)
	assert.Equal(t, "status changed from REPAIRING to COMPLETED", last.Note)
	assert.Equal(t, "API", last.Location)
}

func TestCompletedAtSurvivesReentry(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	first := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return first }
	_, err = svc.UpdateStatus(ctx, created.JobID, UpdateStatusInput{Status: StatusCompleted}, Actor{})
	require.NoError(t, err)

	svc.now = func() time.Time { return first.Add(time.Hour) }
	_, err = svc.UpdateStatus(ctx, created.JobID, UpdateStatusInput{Status: StatusCompleted}, Actor{})
	require.NoError(t, err)

	j, err := store.Get(ctx, created.JobID)
	require.NoError(t, err)
	require.NotNil(t, j.CompletedAt)
	assert.True(t, j.CompletedAt.Equal(first), "completedAt must keep the first completion time")
	assert.Len(t, j.History, 3, "every update call appends a history entry")
}

func TestUpdateStatusAlwaysAppendsHistory(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	// Same status twice in a row still records two entries.
	for i := 0; i < 2; i++ {
		_, err = svc.UpdateStatus(ctx, created.JobID, UpdateStatusInput{Status: StatusEvaluating}, Actor{})
		require.NoError(t, err)
	}

	j, err := store.Get(ctx, created.JobID)
	require.NoError(t, err)
	assert.Len(t, j.History, 3)
}

func TestUpdateStatusOptionalFields(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	estimated := 1500.0
	_, err = svc.UpdateStatus(ctx, created.JobID, UpdateStatusInput{
		Status:             StatusEvaluating,
		Note:               "needs a new panel",
		EstimatedCost:      &estimated,
		AspID:              "asp_007",
		AssignedTechnician: "tech_12",
	}, Actor{ID: "admin001", Name: "Admin"})
	require.NoError(t, err)

	j, err := store.Get(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, j.EstimatedCost)
	assert.Equal(t, "asp_007", j.AspID)
	assert.Equal(t, "tech_12", j.AssignedTechnician)
	assert.Equal(t, "needs a new panel", j.History[len(j.History)-1].Note)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateStatus(context.Background(), "nonexistent", UpdateStatusInput{Status: StatusRepairing}, Actor{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersByStatusNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 31, 9, 0, 0, 0, time.Local)
	var completed []string
	for i := 0; i < 5; i++ {
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		created, err := svc.Create(ctx, validCreateInput())
		require.NoError(t, err)
		if i < 3 {
			completed = append(completed, created.JobID)
		}
	}
	for _, id := range completed {
		_, err := svc.UpdateStatus(ctx, id, UpdateStatusInput{Status: StatusCompleted}, Actor{})
		require.NoError(t, err)
	}

	result, err := svc.List(ctx, ListInput{Status: "COMPLETED"})
	require.NoError(t, err)
	require.Len(t, result.Jobs, 3)
	assert.Equal(t, 3, result.Total)
	for i := 1; i < len(result.Jobs); i++ {
		assert.False(t, result.Jobs[i].CreatedAt.After(result.Jobs[i-1].CreatedAt), "expected newest first")
	}
}

func TestListSearchAndPagination(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	names := []string{"Somchai", "Suda", "Anan"}
	for i, name := range names {
		in := validCreateInput()
		in.CustomerName = name
		base := time.Date(2026, 8, 31, 9, 0, 0, 0, time.Local)
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	result, err := svc.List(ctx, ListInput{Search: "somchai"})
	require.NoError(t, err)
	require.Len(t, result.Jobs, 1)
	assert.Equal(t, "Somchai", result.Jobs[0].CustomerName)

	result, err = svc.List(ctx, ListInput{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Jobs, 1)
	assert.Equal(t, 3, result.Total)

	// Out-of-range pages are empty results, not errors.
	result, err = svc.List(ctx, ListInput{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, result.Jobs)
}
