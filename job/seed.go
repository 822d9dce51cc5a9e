package job

import (
	"context"
	"time"
)

// SeedDemo loads one walk-in job into the store, mirroring the dataset the
// local demo server boots with. Intended for the in-memory store only.
func SeedDemo(ctx context.Context, store Store, now time.Time) error {
	created := now.Add(-30 * time.Minute)
	j := &Job{
		JobID:              newJobID(now),
		CustomerName:       "สมชาย ใจดี",
		CustomerPhone:      "0812345678",
		DeviceModel:        "iPhone 14 Pro",
		ProblemDescription: "หน้าจอแตก",
		ProblemCategory:    "OTHER",
		Status:             StatusReceivedAtDrop,
		Priority:           PriorityNormal,
		QueueNumber:        1,
		DropAppID:          "drop_app_001",
		Source:             "ONLINE",
		CreatedAt:          created,
		UpdatedAt:          now,
		History: []HistoryEntry{
			{
				Status:        StatusNewQueue,
				UpdatedBy:     "system",
				UpdatedByName: "System",
				Timestamp:     created,
				Note:          "job created",
				Location:      "ONLINE",
			},
			{
				Status:        StatusReceivedAtDrop,
				UpdatedBy:     "drop001",
				UpdatedByName: "Drop-APP Staff",
				Timestamp:     now,
				Note:          "device received from customer",
				Location:      "DROP_APP",
			},
		},
		IsActive: true,
	}
	return store.Put(ctx, j)
}
