// job/service.go
package job

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// Actor identifies who performed a mutation.
type Actor struct {
	ID   string
	Name string
}

var systemActor = Actor{ID: "system", Name: "System"}

// Thai mobile numbers: leading zero, then a 6/8/9 prefix, ten digits total.
var thaiMobile = regexp.MustCompile(`^0[689][0-9]{8}$`)

// Service is the job lifecycle engine. All state lives in the injected
// store; concurrent requests are not coordinated here, so conflicting
// updates resolve last-write-wins.
type Service struct {
	store Store
	slot  time.Duration
	now   func() time.Time
}

// NewService wires the lifecycle engine to a store. slot is the estimated
// wait added per position on the public queue board; zero or negative
// selects the 30-minute default.
func NewService(store Store, slot time.Duration) *Service {
	if slot <= 0 {
		slot = 30 * time.Minute
	}
	return &Service{store: store, slot: slot, now: time.Now}
}

type CreateInput struct {
	CustomerName       string
	CustomerPhone      string
	CustomerEmail      string
	DeviceModel        string
	DeviceSerial       string
	ProblemDescription string
	ProblemCategory    string
	Priority           Priority
	DropAppID          string
	Notes              string
	Source             string
}

type CreateResult struct {
	JobID        string `json:"jobId"`
	QueueNumber  int    `json:"queueNumber"`
	CustomerName string `json:"customerName"`
}

// Create registers a new repair job in state NEW_QUEUE with a single
// system-seeded history entry. Queue-number assignment is not transactional
// with respect to concurrent creations.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	var fields []FieldError
	if strings.TrimSpace(in.CustomerName) == "" {
		fields = append(fields, FieldError{Field: "customerName", Message: "customer name is required"})
	}
	if !thaiMobile.MatchString(in.CustomerPhone) {
		fields = append(fields, FieldError{Field: "customerPhone", Message: "valid Thai mobile number required"})
	}
	if strings.TrimSpace(in.DeviceModel) == "" {
		fields = append(fields, FieldError{Field: "deviceModel", Message: "device model is required"})
	}
	if strings.TrimSpace(in.ProblemDescription) == "" {
		fields = append(fields, FieldError{Field: "problemDescription", Message: "problem description is required"})
	}
	if strings.TrimSpace(in.DropAppID) == "" {
		fields = append(fields, FieldError{Field: "dropAppId", Message: "Drop-APP ID is required"})
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	now := s.now()
	queueNumber, err := s.nextQueueNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	category := in.ProblemCategory
	if category == "" {
		category = "OTHER"
	}
	priority := in.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	source := in.Source
	if source == "" {
		source = "ONLINE"
	}

	j := &Job{
		JobID:              newJobID(now),
		CustomerName:       in.CustomerName,
		CustomerPhone:      in.CustomerPhone,
		CustomerEmail:      in.CustomerEmail,
		DeviceModel:        in.DeviceModel,
		DeviceSerial:       in.DeviceSerial,
		ProblemDescription: in.ProblemDescription,
		ProblemCategory:    category,
		Status:             StatusNewQueue,
		Priority:           priority,
		QueueNumber:        queueNumber,
		DropAppID:          in.DropAppID,
		Notes:              in.Notes,
		Source:             source,
		CreatedAt:          now,
		UpdatedAt:          now,
		History: []HistoryEntry{{
			Status:        StatusNewQueue,
			UpdatedBy:     systemActor.ID,
			UpdatedByName: systemActor.Name,
			Timestamp:     now,
			Note:          "job created",
			Location:      source,
		}},
		IsActive: true,
	}
	if err := s.store.Put(ctx, j); err != nil {
		return nil, err
	}
	return &CreateResult{JobID: j.JobID, QueueNumber: j.QueueNumber, CustomerName: j.CustomerName}, nil
}

type UpdateStatusInput struct {
	Status             Status
	Note               string
	EstimatedCost      *float64
	ActualCost         *float64
	AspID              string
	AssignedTechnician string
	Location           string
}

type UpdateStatusResult struct {
	JobID     string    `json:"jobId"`
	OldStatus Status    `json:"oldStatus"`
	NewStatus Status    `json:"newStatus"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateStatus applies a status change to an existing job. Every call
// appends exactly one history entry, whether or not the status actually
// differs from the current one. Entering COMPLETED stamps completedAt once;
// re-entering it leaves the original stamp intact.
func (s *Service) UpdateStatus(ctx context.Context, jobID string, in UpdateStatusInput, actor Actor) (*UpdateStatusResult, error) {
	if in.Status == "" {
		return nil, &ValidationError{Fields: []FieldError{{Field: "status", Message: "status is required"}}}
	}

	current, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	oldStatus := current.Status

	if actor.ID == "" {
		actor = systemActor
	}
	note := in.Note
	if note == "" {
		note = fmt.Sprintf("status changed from %s to %s", oldStatus, in.Status)
	}
	location := in.Location
	if location == "" {
		location = "API"
	}

	entry := HistoryEntry{
		Status:        in.Status,
		UpdatedBy:     actor.ID,
		UpdatedByName: actor.Name,
		Timestamp:     now,
		Note:          note,
		Location:      location,
	}

	upd := Update{
		Status:        &in.Status,
		EstimatedCost: in.EstimatedCost,
		ActualCost:    in.ActualCost,
		UpdatedAt:     now,
		History:       append(append([]HistoryEntry(nil), current.History...), entry),
	}
	if in.AspID != "" {
		upd.AspID = &in.AspID
	}
	if in.AssignedTechnician != "" {
		upd.AssignedTechnician = &in.AssignedTechnician
	}
	if in.Status == StatusCompleted && current.CompletedAt == nil {
		completed := now
		upd.CompletedAt = &completed
	}

	if err := s.store.Update(ctx, jobID, upd); err != nil {
		return nil, err
	}
	return &UpdateStatusResult{JobID: jobID, OldStatus: oldStatus, NewStatus: in.Status, UpdatedAt: now}, nil
}

// Get is a pure lookup with no side effects.
func (s *Service) Get(ctx context.Context, jobID string) (*Job, error) {
	return s.store.Get(ctx, jobID)
}

type ListInput struct {
	Status   string
	BranchID string
	AspID    string
	Search   string
	Page     int
	Limit    int
}

type ListResult struct {
	Jobs  []*Job
	Page  int
	Limit int
	Total int
}

// List returns jobs newest-first. Status/branch/asp filters run in the
// store; free-text search is a secondary in-memory refinement, then the
// page window is applied. An empty page is a result, not an error.
func (s *Service) List(ctx context.Context, in ListInput) (*ListResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = 20
	}

	q := Query{DropAppID: in.BranchID, AspID: in.AspID, OrderBy: OrderCreatedDesc}
	if in.Status != "" && in.Status != "all" {
		q.Status = Status(in.Status)
	}
	jobs, err := s.store.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	if in.Search != "" {
		jobs = searchJobs(jobs, in.Search)
	}

	total := len(jobs)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return &ListResult{Jobs: jobs[start:end], Page: page, Limit: limit, Total: total}, nil
}

// searchJobs matches a case-insensitive substring over job id, customer
// name, phone and device model.
func searchJobs(jobs []*Job, term string) []*Job {
	lower := strings.ToLower(term)
	out := make([]*Job, 0, len(jobs))
	for _, j := range jobs {
		if strings.Contains(strings.ToLower(j.JobID), lower) ||
			strings.Contains(strings.ToLower(j.CustomerName), lower) ||
			strings.Contains(j.CustomerPhone, term) ||
			strings.Contains(strings.ToLower(j.DeviceModel), lower) {
			out = append(out, j)
		}
	}
	return out
}

// newJobID returns a YYMMDD-prefixed id with a four-digit random suffix.
// Collisions are possible and unhandled; the id scheme is kept as-is.
func newJobID(now time.Time) string {
	return fmt.Sprintf("%s%04d", now.Format("060102"), rand.Intn(10000))
}
