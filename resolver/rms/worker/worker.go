package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Abraxas-365/rms/pkg/logx"
	"github.com/Abraxas-365/rms/resolver/rms"
	"github.com/Abraxas-365/rms/resolver/rms/rmssrv"
)

type ParseWorker struct {
	service *rmssrv.Service
	queue   rms.JobQueue
	jobRepo rms.JobRepository
	workers int
}

func NewParseWorker(service *rmssrv.Service, queue rms.JobQueue, jobRepo rms.JobRepository, workers int) *ParseWorker {
	return &ParseWorker{
		service: service,
		queue:   queue,
		jobRepo: jobRepo,
		workers: workers,
	}
}

func (w *ParseWorker) Start(ctx context.Context) {
	logx.Infof("Starting %d parse workers", w.workers)

	// Requeue retryable failures left behind by a lost delayed queue
	if n, err := w.RecoverFailedJobs(ctx, recoverBatchSize); err != nil {
		logx.Errorf("Failed job recovery sweep error: %v", err)
	} else if n > 0 {
		logx.Infof("Requeued %d failed jobs on startup", n)
	}

	// Start delayed job mover
	go w.moveDelayedJobs(ctx)

	// Start worker pool
	for i := 0; i < w.workers; i++ {
		go w.processJobs(ctx, i)
	}
}

const recoverBatchSize = 100

// RecoverFailedJobs sweeps the database for failed jobs whose retry
// time has passed but that never made it back onto the queue, typically
// after the delayed queue was lost. Each is reset to pending and
// requeued. Returns how many jobs were requeued.
func (w *ParseWorker) RecoverFailedJobs(ctx context.Context, limit int) (int, error) {
	jobs, err := w.jobRepo.GetFailedJobsForRetry(ctx, limit)
	if err != nil {
		return 0, err
	}

	requeued := 0
	for _, job := range jobs {
		job.Status = rms.JobStatusPending
		job.NextRetryAt = nil
		if err := w.jobRepo.Update(ctx, job); err != nil {
			logx.Errorf("Failed to reset job %s for recovery: %v", job.ID, err)
			continue
		}

		payload := rms.QueueJobPayload{JobID: job.ID, TextPath: job.TextPath, EnqueuedAt: time.Now()}
		if err := w.queue.Enqueue(ctx, job.ID, payload); err != nil {
			logx.Errorf("Failed to requeue job %s: %v", job.ID, err)
			continue
		}
		requeued++
	}

	return requeued, nil
}

func (w *ParseWorker) processJobs(ctx context.Context, workerID int) {
	logx.Infof("Worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			logx.Infof("Worker %d stopping", workerID)
			return
		default:
			// Dequeue with 5 second timeout; nil data means nothing queued
			data, err := w.queue.Dequeue(ctx, 5*time.Second)
			if err != nil {
				logx.Errorf("Worker %d dequeue error: %v", workerID, err)
				continue
			}
			if len(data) == 0 {
				continue
			}

			var payload rms.QueueJobPayload
			if err := json.Unmarshal(data, &payload); err != nil {
				logx.Errorf("Worker %d unmarshal error: %v (data: %s)", workerID, err, string(data))
				continue
			}

			// The payload only carries the job ID; the database row is
			// the source of truth for status and attempt count
			job, err := w.jobRepo.GetByID(ctx, payload.JobID)
			if err != nil {
				logx.Errorf("Worker %d failed to load job %s: %v", workerID, payload.JobID, err)
				continue
			}

			logx.Infof("Worker %d processing job: %s", workerID, job.ID)
			if err := w.service.ProcessParseJob(ctx, job); err != nil {
				logx.Errorf("Worker %d job failed: %v", workerID, err)
			}
		}
	}
}

func (w *ParseWorker) moveDelayedJobs(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := w.queue.MoveDelayedToReady(ctx)
			if err != nil {
				logx.Errorf("Failed to move delayed jobs: %v", err)
			} else if count > 0 {
				logx.Infof("Moved %d delayed jobs to ready queue", count)
			}
		}
	}
}
