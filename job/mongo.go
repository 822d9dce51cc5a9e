package job

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps one document per job in a "jobs" collection, keyed by
// jobId. Driver failures are wrapped and propagated unchanged; there is no
// retry or fallback at this layer.
type MongoStore struct {
	jobs *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{jobs: db.Collection("jobs")}
}

func (s *MongoStore) Put(ctx context.Context, j *Job) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.jobs.ReplaceOne(ctx, bson.M{"jobId": j.JobID}, j, opts); err != nil {
		return fmt.Errorf("put job %s: %w", j.JobID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, jobID string) (*Job, error) {
	var j Job
	err := s.jobs.FindOne(ctx, bson.M{"jobId": jobID}).Decode(&j)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return &j, nil
}

func (s *MongoStore) Query(ctx context.Context, q Query) ([]*Job, error) {
	opts := options.Find()
	switch q.OrderBy {
	case OrderQueueAsc:
		opts.SetSort(bson.D{{Key: "queueNumber", Value: 1}})
	default:
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := s.jobs.Find(ctx, mongoFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer cur.Close(ctx)

	var out []*Job
	for cur.Next(ctx) {
		var j Job
		if err := cur.Decode(&j); err != nil {
			return nil, fmt.Errorf("decode job: %w", err)
		}
		out = append(out, &j)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Update(ctx context.Context, jobID string, upd Update) error {
	set := bson.M{}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.EstimatedCost != nil {
		set["estimatedCost"] = *upd.EstimatedCost
	}
	if upd.ActualCost != nil {
		set["actualCost"] = *upd.ActualCost
	}
	if upd.AspID != nil {
		set["aspId"] = *upd.AspID
	}
	if upd.AssignedTechnician != nil {
		set["assignedTechnician"] = *upd.AssignedTechnician
	}
	if !upd.UpdatedAt.IsZero() {
		set["updatedAt"] = upd.UpdatedAt
	}
	if upd.CompletedAt != nil {
		set["completedAt"] = *upd.CompletedAt
	}
	if upd.History != nil {
		set["history"] = upd.History
	}

	res, err := s.jobs.UpdateOne(ctx, bson.M{"jobId": jobID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update job %s: %w", jobID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Count(ctx context.Context, q Query) (int, error) {
	n, err := s.jobs.CountDocuments(ctx, mongoFilter(q))
	if err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return int(n), nil
}

func mongoFilter(q Query) bson.M {
	f := bson.M{}
	if len(q.Statuses) > 0 {
		f["status"] = bson.M{"$in": q.Statuses}
	} else if q.Status != "" {
		f["status"] = q.Status
	}
	if q.DropAppID != "" {
		f["dropAppId"] = q.DropAppID
	}
	if q.AspID != "" {
		f["aspId"] = q.AspID
	}
	if !q.CreatedAfter.IsZero() {
		f["createdAt"] = bson.M{"$gte": q.CreatedAfter}
	}
	return f
}
