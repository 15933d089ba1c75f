package rmssrv

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/rms/pkg/errx"
	"github.com/Abraxas-365/rms/pkg/kernel"
	"github.com/Abraxas-365/rms/pkg/logx"
	"github.com/Abraxas-365/rms/resolver/rms"
	"github.com/google/uuid"
)

// JobMaxAttempts bounds the outer job-level retry loop. This is
// distinct from Config.MaxAttempts, which governs the inner per-run
// extraction attempts.
const JobMaxAttempts = 3

// ParseResumeAsync - Queue a stored submission for background parsing.
// The raw text has already been written to storage at textPath; only
// job state rides the database and queue.
func (s *Service) ParseResumeAsync(ctx context.Context, textPath, source string) (*rms.JobStatusResponse, error) {
	logx.Infof("Queueing resume for async parsing: Path=%s", textPath)

	jobID := kernel.NewJobID(uuid.NewString())
	job := &rms.ParseJob{
		ID:                 jobID,
		Status:             rms.JobStatusPending,
		TextPath:           textPath,
		Source:             source,
		AttemptCount:       0,
		MaxAttempts:        JobMaxAttempts,
		ProgressPercentage: 0,
		CreatedAt:          time.Now(),
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, rms.ErrJobCreationFailed().
			WithDetail("text_path", textPath).
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	payload := rms.QueueJobPayload{
		JobID:      jobID,
		TextPath:   textPath,
		EnqueuedAt: time.Now(),
	}
	if err := s.queue.Enqueue(ctx, jobID, payload); err != nil {
		// Mark job as failed if we can't queue it
		_ = s.jobRepo.MarkAsFailed(ctx, jobID, "failed to enqueue", map[string]any{
			"error": err.Error(),
		})

		return nil, rms.ErrQueueEnqueueFailed().
			WithDetail("job_id", jobID).
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	logx.Infof("Job queued successfully: JobID=%s", jobID)

	return &rms.JobStatusResponse{
		JobID:     jobID,
		Status:    rms.JobStatusPending,
		Message:   "Resume queued for parsing",
		Progress:  0,
		CreatedAt: job.CreatedAt,
	}, nil
}

// ProcessParseJob - Worker function to process one queued job
func (s *Service) ProcessParseJob(ctx context.Context, job *rms.ParseJob) error {
	logx.Infof("Processing job: JobID=%s, Attempt=%d/%d", job.ID, job.AttemptCount+1, job.MaxAttempts)

	if err := s.jobRepo.MarkAsProcessing(ctx, job.ID); err != nil {
		return rms.ErrJobUpdateFailed().
			WithDetail("job_id", job.ID).
			WithDetail("status", "processing").
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	_ = s.jobRepo.UpdateProgress(ctx, job.ID, rms.StepFetching, 10)

	text, err := s.fileReader.ReadFile(ctx, job.TextPath)
	if err != nil {
		return s.handleJobError(ctx, job, "submission_read_failed", err)
	}

	_ = s.jobRepo.UpdateProgress(ctx, job.ID, rms.StepExtracting, 30)

	result := s.ParseResume(ctx, rms.ParseRequest{Text: string(text), Source: job.Source})
	if !result.Success {
		return s.handleJobError(ctx, job, "parse_failed",
			fmt.Errorf("%s", strings.Join(result.Errors, "; ")))
	}

	_ = s.jobRepo.UpdateProgress(ctx, job.ID, rms.StepEncoding, 70)
	_ = s.jobRepo.UpdateProgress(ctx, job.ID, rms.StepValidating, 90)

	if err := s.jobRepo.MarkAsCompleted(ctx, job.ID, result.Data); err != nil {
		logx.Errorf("Failed to mark job as completed: %v", err)
		// The schema was produced; losing the status update must not fail the job
	}

	logx.Infof("Job completed successfully: JobID=%s, Attempts=%d", job.ID, result.Attempts)
	return nil
}

// handleJobError handles job processing errors with retry logic
func (s *Service) handleJobError(ctx context.Context, job *rms.ParseJob, errorType string, err error) error {
	job.AttemptCount++

	errorDetails := map[string]any{
		"error":        err.Error(),
		"error_type":   errorType,
		"attempt":      job.AttemptCount,
		"max_attempts": job.MaxAttempts,
		"text_path":    job.TextPath,
	}

	if job.CanRetry() {
		// Exponential backoff: 2^attempt minutes
		retryDelay := time.Duration(1<<uint(job.AttemptCount)) * time.Minute
		nextRetry := time.Now().Add(retryDelay)
		job.NextRetryAt = &nextRetry

		logx.Warnf("Job failed, will retry: JobID=%s, Attempt=%d/%d, NextRetry=%v, Error=%s",
			job.ID, job.AttemptCount, job.MaxAttempts, nextRetry, errorType)

		payload := rms.QueueJobPayload{JobID: job.ID, TextPath: job.TextPath, EnqueuedAt: time.Now()}
		if queueErr := s.queue.EnqueueDelayed(ctx, job.ID, payload, retryDelay); queueErr != nil {
			logx.Errorf("Failed to enqueue for retry: %v", queueErr)

			_ = s.jobRepo.MarkAsFailed(ctx, job.ID,
				fmt.Sprintf("%s (retry enqueue failed)", errorType),
				errorDetails)

			return rms.ErrJobRetryFailed().
				WithDetail("job_id", job.ID).
				WithDetail("error_type", errorType).
				WithDetails(errorDetails)
		}

		job.ErrorMessage = fmt.Sprintf("%s (will retry)", errorType)
		job.ErrorDetails = errorDetails
		job.Status = rms.JobStatusPending // Reset to pending for retry

		if updateErr := s.jobRepo.Update(ctx, job); updateErr != nil {
			logx.Errorf("Failed to update job for retry: %v", updateErr)
		}

		return rms.ErrJobFailed().
			WithDetail("job_id", job.ID).
			WithDetail("error_type", errorType).
			WithDetail("will_retry", true).
			WithDetail("next_retry_at", nextRetry).
			WithDetails(errorDetails)
	}

	logx.Errorf("Job permanently failed: JobID=%s, Error=%s, Attempts=%d/%d",
		job.ID, errorType, job.AttemptCount, job.MaxAttempts)

	_ = s.jobRepo.MarkAsFailed(ctx, job.ID, errorType, errorDetails)

	return rms.ErrJobMaxRetriesReached().
		WithDetail("job_id", job.ID).
		WithDetail("error_type", errorType).
		WithDetail("final_attempt", job.AttemptCount).
		WithDetails(errorDetails)
}

// GetJobStatus retrieves the current status of a job
func (s *Service) GetJobStatus(ctx context.Context, jobID kernel.JobID) (*rms.JobStatusResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, rms.ErrJobNotFound().
			WithDetail("job_id", jobID)
	}

	response := &rms.JobStatusResponse{
		JobID:     job.ID,
		Status:    job.Status,
		Progress:  job.ProgressPercentage,
		CreatedAt: job.CreatedAt,
	}

	switch job.Status {
	case rms.JobStatusPending:
		if job.AttemptCount > 0 {
			response.Message = fmt.Sprintf("Job pending retry (attempt %d/%d)", job.AttemptCount, job.MaxAttempts)
		} else {
			response.Message = "Job queued and waiting to be processed"
		}
		if job.NextRetryAt != nil {
			response.NextRetryAt = job.NextRetryAt
		}

	case rms.JobStatusProcessing:
		response.Message = fmt.Sprintf("Parsing resume: %v", job.CurrentStep)
		response.CurrentStep = job.CurrentStep
		response.StartedAt = job.StartedAt

	case rms.JobStatusCompleted:
		response.Message = "Resume parsed successfully"
		response.Result = job.Result
		response.CompletedAt = job.CompletedAt

	case rms.JobStatusFailed:
		response.Message = job.ErrorMessage
		response.Error = &rms.JobError{
			Message: job.ErrorMessage,
			Details: job.ErrorDetails,
		}
		response.FailedAt = job.FailedAt
		response.AttemptCount = job.AttemptCount
	}

	return response, nil
}

// RetryFailedJob manually requeues a failed job
func (s *Service) RetryFailedJob(ctx context.Context, jobID kernel.JobID) (*rms.JobStatusResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, rms.ErrJobNotFound().
			WithDetail("job_id", jobID)
	}

	if job.Status != rms.JobStatusFailed {
		return nil, rms.ErrInvalidJobStatus().
			WithDetail("job_id", jobID).
			WithDetail("current_status", job.Status).
			WithDetail("required_status", rms.JobStatusFailed)
	}

	// Reset job for retry; manual retries get a fresh attempt budget
	job.Status = rms.JobStatusPending
	job.AttemptCount = 0
	job.ErrorMessage = ""
	job.ErrorDetails = nil
	job.FailedAt = nil
	job.NextRetryAt = nil
	job.ProgressPercentage = 0
	job.CurrentStep = nil

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, rms.ErrJobUpdateFailed().
			WithDetail("job_id", jobID).
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	payload := rms.QueueJobPayload{JobID: job.ID, TextPath: job.TextPath, EnqueuedAt: time.Now()}
	if err := s.queue.Enqueue(ctx, jobID, payload); err != nil {
		_ = s.jobRepo.MarkAsFailed(ctx, jobID, "failed to re-enqueue", map[string]any{
			"error": err.Error(),
		})

		return nil, rms.ErrQueueEnqueueFailed().
			WithDetail("job_id", jobID).
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	logx.Infof("Job manually retried: JobID=%s", jobID)

	return &rms.JobStatusResponse{
		JobID:     jobID,
		Status:    rms.JobStatusPending,
		Message:   "Job requeued for parsing",
		Progress:  0,
		CreatedAt: job.CreatedAt,
	}, nil
}

// GetJobStats returns aggregate job counts
func (s *Service) GetJobStats(ctx context.Context) (*rms.JobStatsResponse, error) {
	stats, err := s.jobRepo.Stats(ctx)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load job stats")
	}
	return stats, nil
}
