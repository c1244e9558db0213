package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a job ID is unknown.
var ErrNotFound = errors.New("job not found")

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the upload was received but not converted yet.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the statement is being converted.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates an output file was written.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the conversion stopped with an error.
	JobStatusFailed JobStatus = "failed"
)

// ConvertJob records one statement conversion requested over HTTP.
type ConvertJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Input is the uploaded file name as sent by the client.
	Input string `json:"input"`

	// Bank is the detected or requested bank id.
	Bank string `json:"bank,omitempty"`

	Status JobStatus `json:"status"`

	// OutputPath is where the CSV was written. Not exposed to clients.
	OutputPath string `json:"-"`

	Transactions  int      `json:"transactions"`
	Skipped       int      `json:"skipped"`
	Corrections   int      `json:"corrections"`
	Mismatches    int      `json:"mismatches"`
	UnparsedDates int      `json:"unparsed_dates"`
	Warnings      []string `json:"warnings,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`
}

// NewConvertJob returns a pending job with a fresh ID.
func NewConvertJob(input string) *ConvertJob {
	return &ConvertJob{
		JobID:     uuid.NewString(),
		Input:     input,
		Status:    JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Finish marks the job completed, or failed when err is not nil.
func (j *ConvertJob) Finish(err error) {
	now := time.Now().UTC()
	j.CompletedAt = &now
	if err != nil {
		j.Status = JobStatusFailed
		j.Error = err.Error()
		return
	}
	j.Status = JobStatusCompleted
}

// Store defines the interface for storing and retrieving jobs.
type Store interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ConvertJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ConvertJob, error)

	// ListJobs retrieves jobs with optional filtering, oldest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ConvertJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Bank   string
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
