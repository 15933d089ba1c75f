package rms

import (
	"time"

	"github.com/Abraxas-365/rms/pkg/kernel"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

type ProcessingStep string

const (
	StepFetching   ProcessingStep = "fetching"
	StepExtracting ProcessingStep = "extracting"
	StepEncoding   ProcessingStep = "encoding"
	StepValidating ProcessingStep = "validating"
)

// ParseJob is the persistent record of one async parse submission.
// The submitted text lives in blob storage at TextPath; only job state
// rides the database and the queue.
type ParseJob struct {
	ID kernel.JobID `db:"id" json:"id"`

	Status   JobStatus `db:"status" json:"status"`
	TextPath string    `db:"text_path" json:"text_path"`
	Source   string    `db:"source" json:"source,omitempty"`

	AttemptCount int `db:"attempt_count" json:"attempt_count"`
	MaxAttempts  int `db:"max_attempts" json:"max_attempts"`

	ErrorMessage string         `db:"error_message" json:"error_message,omitempty"`
	ErrorDetails map[string]any `db:"error_details" json:"error_details,omitempty"`

	CurrentStep        *ProcessingStep `db:"current_step" json:"current_step,omitempty"`
	ProgressPercentage int             `db:"progress_percentage" json:"progress_percentage"`

	// Result holds the flat schema once the job completes
	Result FlatSchema `db:"result" json:"result,omitempty"`

	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	StartedAt   *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	FailedAt    *time.Time `db:"failed_at" json:"failed_at,omitempty"`
	NextRetryAt *time.Time `db:"next_retry_at" json:"next_retry_at,omitempty"`
}

// CanRetry reports whether the job has retry budget left
func (j *ParseJob) CanRetry() bool {
	return j.AttemptCount < j.MaxAttempts
}

// JobStatusResponse - Response for job status queries
type JobStatusResponse struct {
	JobID       kernel.JobID    `json:"job_id"`
	Status      JobStatus       `json:"status"`
	Message     string          `json:"message"`
	Progress    int             `json:"progress"`
	CurrentStep *ProcessingStep `json:"current_step,omitempty"`
	Result      FlatSchema      `json:"result,omitempty"`
	Error       *JobError       `json:"error,omitempty"`

	AttemptCount int        `json:"attempt_count,omitempty"`
	NextRetryAt  *time.Time `json:"next_retry_at,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
}

// JobError - Error details for failed jobs
type JobError struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// JobStatsResponse - Aggregate job counts
type JobStatsResponse struct {
	TotalJobs        int        `json:"total_jobs"`
	PendingJobs      int        `json:"pending_jobs"`
	ProcessingJobs   int        `json:"processing_jobs"`
	CompletedJobs    int        `json:"completed_jobs"`
	FailedJobs       int        `json:"failed_jobs"`
	AverageProgress  float64    `json:"average_progress"`
	OldestPendingJob *time.Time `json:"oldest_pending_job,omitempty"`
	LastCompletedJob *time.Time `json:"last_completed_job,omitempty"`
}
