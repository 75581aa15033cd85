package models

import "time"

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
	JobStatusCancelled  = "cancelled"
)

// BatchRequest is the API payload for a batch generation.
type BatchRequest struct {
	Requests []GenerationRequest `json:"requests" binding:"required,min=1"`
}

// BatchItem pairs one request with its positional index and a stable task id.
// The id survives reordering of the input slice; callers should key their own
// bookkeeping by it rather than by index alone.
type BatchItem struct {
	TaskID  string            `json:"task_id"`
	Index   int               `json:"index"`
	Request GenerationRequest `json:"request"`
	Result  GenerationResult  `json:"result"`
}

// BatchJob is the persisted record of one batch generation run.
type BatchJob struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	Items     []BatchItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Error     string      `json:"error,omitempty"`
}

// BatchResponse is returned when a batch is accepted for processing.
type BatchResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Count  int    `json:"count"`
}
