package job

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// OrderBy selects the result ordering of a store query.
type OrderBy int

const (
	// OrderCreatedDesc returns the newest-created jobs first.
	OrderCreatedDesc OrderBy = iota
	// OrderQueueAsc returns jobs in ascending queue-number order.
	OrderQueueAsc
)

// Query selects jobs at the store level. Zero values mean "no filter".
// Statuses takes precedence over Status when both are set.
type Query struct {
	Status       Status
	Statuses     []Status
	DropAppID    string
	AspID        string
	CreatedAfter time.Time
	OrderBy      OrderBy
	Limit        int
}

// Update is a partial write against one job. Nil fields are left untouched;
// a non-nil History replaces the whole array.
type Update struct {
	Status             *Status
	EstimatedCost      *float64
	ActualCost         *float64
	AspID              *string
	AssignedTechnician *string
	UpdatedAt          time.Time
	CompletedAt        *time.Time
	History            []HistoryEntry
}

// Store is the document-store contract the lifecycle engine runs against.
// Durability and isolation are entirely the store's concern; the engine does
// not retry, version-check, or span multiple calls in a transaction.
type Store interface {
	Put(ctx context.Context, j *Job) error
	Get(ctx context.Context, jobID string) (*Job, error)
	Query(ctx context.Context, q Query) ([]*Job, error)
	Update(ctx context.Context, jobID string, upd Update) error
	Count(ctx context.Context, q Query) (int, error)
}

// MemoryStore keeps jobs in memory with an optional JSON snapshot file,
// loaded at startup and rewritten after every mutation. It backs the local
// demo variant; production deployments use the Mongo store.
type MemoryStore struct {
	mu   sync.Mutex
	path string
	jobs map[string]*Job
}

// NewMemoryStore loads the snapshot at path when it exists. An empty path
// disables persistence entirely.
func NewMemoryStore(path string) (*MemoryStore, error) {
	s := &MemoryStore{path: path, jobs: make(map[string]*Job)}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil // empty DB
		}
		return nil, fmt.Errorf("load jobs snapshot: %w", err)
	}
	var jobs []*Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("parse jobs snapshot: %w", err)
	}
	for _, j := range jobs {
		s.jobs[j.JobID] = j
	}
	return s, nil
}

func (s *MemoryStore) Put(_ context.Context, j *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.JobID] = cloneJob(j)
	return s.save()
}

func (s *MemoryStore) Get(_ context.Context, jobID string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneJob(j), nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if matches(j, q) {
			out = append(out, cloneJob(j))
		}
	}
	switch q.OrderBy {
	case OrderQueueAsc:
		sort.Slice(out, func(i, k int) bool { return out[i].QueueNumber < out[k].QueueNumber })
	default:
		sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, jobID string, upd Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	applyUpdate(j, upd)
	return s.save()
}

func (s *MemoryStore) Count(_ context.Context, q Query) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, j := range s.jobs {
		if matches(j, q) {
			n++
		}
	}
	return n, nil
}

// save rewrites the snapshot file. Callers hold s.mu.
func (s *MemoryStore) save() error {
	if s.path == "" {
		return nil
	}
	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].CreatedAt.Before(jobs[k].CreatedAt) })

	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o644)
}

func matches(j *Job, q Query) bool {
	if len(q.Statuses) > 0 {
		found := false
		for _, st := range q.Statuses {
			if j.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	} else if q.Status != "" && j.Status != q.Status {
		return false
	}
	if q.DropAppID != "" && j.DropAppID != q.DropAppID {
		return false
	}
	if q.AspID != "" && j.AspID != q.AspID {
		return false
	}
	if !q.CreatedAfter.IsZero() && j.CreatedAt.Before(q.CreatedAfter) {
		return false
	}
	return true
}

// applyUpdate merges a partial update into a job record in place.
func applyUpdate(j *Job, upd Update) {
	if upd.Status != nil {
		j.Status = *upd.Status
	}
	if upd.EstimatedCost != nil {
		j.EstimatedCost = *upd.EstimatedCost
	}
	if upd.ActualCost != nil {
		j.ActualCost = *upd.ActualCost
	}
	if upd.AspID != nil {
		j.AspID = *upd.AspID
	}
	if upd.AssignedTechnician != nil {
		j.AssignedTechnician = *upd.AssignedTechnician
	}
	if !upd.UpdatedAt.IsZero() {
		j.UpdatedAt = upd.UpdatedAt
	}
	if upd.CompletedAt != nil {
		t := *upd.CompletedAt
		j.CompletedAt = &t
	}
	if upd.History != nil {
		j.History = append([]HistoryEntry(nil), upd.History...)
	}
}

func cloneJob(j *Job) *Job {
	c := *j
	c.History = append([]HistoryEntry(nil), j.History...)
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
