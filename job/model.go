package job

import "time"

// Status is the workflow state of a repair job. Updates may set any value;
// there is no transition table guarding the order of states.
type Status string

const (
	StatusNewQueue          Status = "NEW_QUEUE"
	StatusReceivedAtDrop    Status = "RECEIVED_AT_DROP"
	StatusTransferringToASP Status = "TRANSFERRING_TO_ASP"
	StatusReceivedAtASP     Status = "RECEIVED_AT_ASP"
	StatusEvaluating        Status = "EVALUATING"
	StatusWaitingParts      Status = "WAITING_PARTS"
	StatusRepairing         Status = "REPAIRING"
	StatusQualityCheck      Status = "QUALITY_CHECK"
	StatusReadyForReturn    Status = "READY_FOR_RETURN"
	StatusReturnedToDrop    Status = "RETURNED_TO_DROP"
	StatusReadyForPickup    Status = "READY_FOR_PICKUP"
	StatusCompleted         Status = "COMPLETED"
)

// AllStatuses lists every known status in workflow order. Stats breakdowns
// report a zero count for each of these even when no job carries it.
var AllStatuses = []Status{
	StatusNewQueue,
	StatusReceivedAtDrop,
	StatusTransferringToASP,
	StatusReceivedAtASP,
	StatusEvaluating,
	StatusWaitingParts,
	StatusRepairing,
	StatusQualityCheck,
	StatusReadyForReturn,
	StatusReturnedToDrop,
	StatusReadyForPickup,
	StatusCompleted,
}

// Priority of a repair job. Only NORMAL is assigned by default.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Job is one repair ticket tracked through its lifecycle.
type Job struct {
	JobID              string         `bson:"jobId" json:"jobId"`
	CustomerName       string         `bson:"customerName" json:"customerName"`
	CustomerPhone      string         `bson:"customerPhone" json:"customerPhone"`
	CustomerEmail      string         `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	DeviceModel        string         `bson:"deviceModel" json:"deviceModel"`
	DeviceSerial       string         `bson:"deviceSerial,omitempty" json:"deviceSerial,omitempty"`
	ProblemDescription string         `bson:"problemDescription" json:"problemDescription"`
	ProblemCategory    string         `bson:"problemCategory" json:"problemCategory"`
	Status             Status         `bson:"status" json:"status"`
	Priority           Priority       `bson:"priority" json:"priority"`
	QueueNumber        int            `bson:"queueNumber" json:"queueNumber"`
	EstimatedCost      float64        `bson:"estimatedCost" json:"estimatedCost"`
	ActualCost         float64        `bson:"actualCost" json:"actualCost"`
	DropAppID          string         `bson:"dropAppId" json:"dropAppId"`
	AspID              string         `bson:"aspId,omitempty" json:"aspId,omitempty"`
	AssignedTechnician string         `bson:"assignedTechnician,omitempty" json:"assignedTechnician,omitempty"`
	Notes              string         `bson:"notes,omitempty" json:"notes,omitempty"`
	Source             string         `bson:"source" json:"source"`
	CreatedAt          time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time      `bson:"updatedAt" json:"updatedAt"`
	CompletedAt        *time.Time     `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	History            []HistoryEntry `bson:"history" json:"history"`
	IsActive           bool           `bson:"isActive" json:"isActive"`
}

// HistoryEntry is one immutable record of a status change. History is
// append-only: entries are never reordered or truncated.
type HistoryEntry struct {
	Status        Status    `bson:"status" json:"status"`
	UpdatedBy     string    `bson:"updatedBy" json:"updatedBy"`
	UpdatedByName string    `bson:"updatedByName" json:"updatedByName"`
	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
	Note          string    `bson:"note" json:"note"`
	Location      string    `bson:"location" json:"location"`
}
