package rms

import (
	"context"
	"time"

	"github.com/Abraxas-365/rms/pkg/kernel"
)

// TextGenerator is the inference service port. Implementations must
// honor ctx cancellation and deadlines.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ResponseCache stores raw model responses keyed by prompt hash.
// A miss returns ok=false with a nil error.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type JobRepository interface {
	Create(ctx context.Context, job *ParseJob) error
	Update(ctx context.Context, job *ParseJob) error
	GetByID(ctx context.Context, jobID kernel.JobID) (*ParseJob, error)

	// GetFailedJobsForRetry returns failed jobs whose next_retry_at has passed
	GetFailedJobsForRetry(ctx context.Context, limit int) ([]*ParseJob, error)

	// Status helpers
	MarkAsProcessing(ctx context.Context, jobID kernel.JobID) error
	MarkAsCompleted(ctx context.Context, jobID kernel.JobID, result FlatSchema) error
	MarkAsFailed(ctx context.Context, jobID kernel.JobID, errorMsg string, errorDetails map[string]any) error
	UpdateProgress(ctx context.Context, jobID kernel.JobID, step ProcessingStep, percentage int) error

	Stats(ctx context.Context) (*JobStatsResponse, error)
}

// JobQueue defines the interface for job queue operations
type JobQueue interface {
	// Enqueue adds a job to the queue
	Enqueue(ctx context.Context, jobID kernel.JobID, payload any) error

	// Dequeue gets a job from the queue (blocking with timeout)
	Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error)

	// EnqueueDelayed schedules a job for later processing (for retries)
	EnqueueDelayed(ctx context.Context, jobID kernel.JobID, payload any, delay time.Duration) error

	// MoveDelayedToReady moves delayed jobs that are ready to the main queue
	MoveDelayedToReady(ctx context.Context) (int, error)

	// GetQueueSize returns the number of jobs in the queue
	GetQueueSize(ctx context.Context) (int64, error)

	// GetDelayedQueueSize returns the number of delayed jobs
	GetDelayedQueueSize(ctx context.Context) (int64, error)

	// Clear removes all jobs from the queue (use with caution)
	Clear(ctx context.Context) error
}
