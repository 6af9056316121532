package publish

import "time"

// Status tracks a publish job through the external worker's lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether the job will receive no further updates.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job represents one unit of asynchronous variant-generation work. Jobs are
// created by a database-side trigger when a source MediaFile row is inserted
// and are consumed and mutated by the external publish worker; this service
// only ever reads them.
type Job struct {
	ID           int64      `json:"id"`
	FileID       string     `json:"file_id"`
	AssetGroupID string     `json:"asset_group_id"`
	Status       Status     `json:"status"`
	Priority     int        `json:"priority"`
	RetryCount   int        `json:"retry_count"`
	MaxRetries   int        `json:"max_retries"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Exhausted reports whether the job has used up its retry budget. A job that
// reaches MaxRetries stays failed permanently.
func (j *Job) Exhausted() bool {
	return j.RetryCount >= j.MaxRetries
}

// Stats aggregates job counts by status for the monitoring surface.
type Stats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}
