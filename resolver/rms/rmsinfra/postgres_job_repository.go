package rmsinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abraxas-365/rms/pkg/kernel"
	"github.com/Abraxas-365/rms/pkg/logx"
	"github.com/Abraxas-365/rms/resolver/rms"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PostgresJobRepository struct {
	db *sqlx.DB
}

func NewPostgresJobRepository(db *sqlx.DB) rms.JobRepository {
	return &PostgresJobRepository{db: db}
}

// dbJob is the database model. Error details and the parsed schema are
// stored as JSON text columns.
type dbJob struct {
	ID     string `db:"id"`
	Status string `db:"status"`

	TextPath string `db:"text_path"`
	Source   string `db:"source"`

	AttemptCount int `db:"attempt_count"`
	MaxAttempts  int `db:"max_attempts"`

	ErrorMessage string         `db:"error_message"`
	ErrorDetails sql.NullString `db:"error_details"`

	CurrentStep        *string `db:"current_step"`
	ProgressPercentage int     `db:"progress_percentage"`

	Result sql.NullString `db:"result"`

	CreatedAt   time.Time  `db:"created_at"`
	StartedAt   *time.Time `db:"started_at"`
	CompletedAt *time.Time `db:"completed_at"`
	FailedAt    *time.Time `db:"failed_at"`
	NextRetryAt *time.Time `db:"next_retry_at"`
}

const jobColumns = `
	id, status, text_path, source,
	attempt_count, max_attempts, error_message, error_details,
	current_step, progress_percentage, result,
	created_at, started_at, completed_at, failed_at, next_retry_at
`

// Create inserts a new job record
func (r *PostgresJobRepository) Create(ctx context.Context, job *rms.ParseJob) error {
	query := `
		INSERT INTO parse_jobs (` + jobColumns + `)
		VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11,
			$12, $13, $14, $15, $16
		)
	`

	row, err := r.toDBJob(job)
	if err != nil {
		return fmt.Errorf("convert to db job: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		row.ID, row.Status, row.TextPath, row.Source,
		row.AttemptCount, row.MaxAttempts, row.ErrorMessage, row.ErrorDetails,
		row.CurrentStep, row.ProgressPercentage, row.Result,
		row.CreatedAt, row.StartedAt, row.CompletedAt, row.FailedAt, row.NextRetryAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("job already exists: %w", err)
		}
		return fmt.Errorf("create job: %w", err)
	}

	logx.Infof("Created job: %s", job.ID)
	return nil
}

// Update updates an existing job
func (r *PostgresJobRepository) Update(ctx context.Context, job *rms.ParseJob) error {
	query := `
		UPDATE parse_jobs SET
			status = $2,
			attempt_count = $3,
			error_message = $4,
			error_details = $5,
			current_step = $6,
			progress_percentage = $7,
			result = $8,
			started_at = $9,
			completed_at = $10,
			failed_at = $11,
			next_retry_at = $12
		WHERE id = $1
	`

	row, err := r.toDBJob(job)
	if err != nil {
		return fmt.Errorf("convert to db job: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query,
		row.ID,
		row.Status,
		row.AttemptCount,
		row.ErrorMessage,
		row.ErrorDetails,
		row.CurrentStep,
		row.ProgressPercentage,
		row.Result,
		row.StartedAt,
		row.CompletedAt,
		row.FailedAt,
		row.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}

	return requireRowsAffected(result, job.ID)
}

// GetByID retrieves a job by ID
func (r *PostgresJobRepository) GetByID(ctx context.Context, jobID kernel.JobID) (*rms.ParseJob, error) {
	query := `SELECT ` + jobColumns + ` FROM parse_jobs WHERE id = $1`

	var row dbJob
	if err := r.db.GetContext(ctx, &row, query, jobID.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("job not found: %s", jobID)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}

	return r.toDomainJob(&row)
}

// GetFailedJobsForRetry retrieves failed jobs whose retry time has come
func (r *PostgresJobRepository) GetFailedJobsForRetry(ctx context.Context, limit int) ([]*rms.ParseJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM parse_jobs
		WHERE status = $1
			AND next_retry_at IS NOT NULL
			AND next_retry_at <= $2
			AND attempt_count < max_attempts
		ORDER BY next_retry_at ASC
		LIMIT $3
	`

	var rows []dbJob
	err := r.db.SelectContext(ctx, &rows, query, string(rms.JobStatusFailed), time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("get failed jobs: %w", err)
	}

	jobs := make([]*rms.ParseJob, 0, len(rows))
	for i := range rows {
		job, err := r.toDomainJob(&rows[i])
		if err != nil {
			logx.Errorf("Failed to convert job %s: %v", rows[i].ID, err)
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// MarkAsProcessing transitions a pending job to processing
func (r *PostgresJobRepository) MarkAsProcessing(ctx context.Context, jobID kernel.JobID) error {
	query := `
		UPDATE parse_jobs
		SET status = $2, started_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query,
		jobID.String(),
		string(rms.JobStatusProcessing),
		time.Now(),
		string(rms.JobStatusPending),
	)
	if err != nil {
		return fmt.Errorf("mark as processing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("job not found or not in pending status: %s", jobID)
	}

	logx.Infof("Marked job as processing: %s", jobID)
	return nil
}

// MarkAsCompleted stores the parsed schema and completes the job
func (r *PostgresJobRepository) MarkAsCompleted(ctx context.Context, jobID kernel.JobID, schema rms.FlatSchema) error {
	resultJSON, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal result schema: %w", err)
	}

	query := `
		UPDATE parse_jobs
		SET
			status = $2,
			result = $3,
			completed_at = $4,
			progress_percentage = 100,
			error_message = '',
			error_details = NULL,
			next_retry_at = NULL
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		jobID.String(),
		string(rms.JobStatusCompleted),
		string(resultJSON),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("mark as completed: %w", err)
	}

	if err := requireRowsAffected(result, jobID); err != nil {
		return err
	}

	logx.Infof("Marked job as completed: %s", jobID)
	return nil
}

// MarkAsFailed records a terminal failure
func (r *PostgresJobRepository) MarkAsFailed(
	ctx context.Context,
	jobID kernel.JobID,
	errorMsg string,
	errorDetails map[string]any,
) error {
	query := `
		UPDATE parse_jobs
		SET
			status = $2,
			failed_at = $3,
			error_message = $4,
			error_details = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		jobID.String(),
		string(rms.JobStatusFailed),
		time.Now(),
		errorMsg,
		marshalNullJSON(errorDetails),
	)
	if err != nil {
		return fmt.Errorf("mark as failed: %w", err)
	}

	if err := requireRowsAffected(result, jobID); err != nil {
		return err
	}

	logx.Warnf("Marked job as failed: %s, Error: %s", jobID, errorMsg)
	return nil
}

// UpdateProgress updates the current step and percentage of a job
func (r *PostgresJobRepository) UpdateProgress(
	ctx context.Context,
	jobID kernel.JobID,
	step rms.ProcessingStep,
	percentage int,
) error {
	query := `
		UPDATE parse_jobs
		SET current_step = $2, progress_percentage = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, jobID.String(), string(step), percentage)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}

	return requireRowsAffected(result, jobID)
}

// Stats aggregates job counts and progress across all statuses
func (r *PostgresJobRepository) Stats(ctx context.Context) (*rms.JobStatsResponse, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'processing') AS processing,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed,
			COALESCE(AVG(progress_percentage), 0) AS average_progress,
			MIN(created_at) FILTER (WHERE status = 'pending') AS oldest_pending,
			MAX(completed_at) FILTER (WHERE status = 'completed') AS last_completed
		FROM parse_jobs
	`

	var row struct {
		Total           int        `db:"total"`
		Pending         int        `db:"pending"`
		Processing      int        `db:"processing"`
		Completed       int        `db:"completed"`
		Failed          int        `db:"failed"`
		AverageProgress float64    `db:"average_progress"`
		OldestPending   *time.Time `db:"oldest_pending"`
		LastCompleted   *time.Time `db:"last_completed"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return nil, fmt.Errorf("get job stats: %w", err)
	}

	return &rms.JobStatsResponse{
		TotalJobs:        row.Total,
		PendingJobs:      row.Pending,
		ProcessingJobs:   row.Processing,
		CompletedJobs:    row.Completed,
		FailedJobs:       row.Failed,
		AverageProgress:  row.AverageProgress,
		OldestPendingJob: row.OldestPending,
		LastCompletedJob: row.LastCompleted,
	}, nil
}

// ============================================================================
// Helper Methods
// ============================================================================

func requireRowsAffected(result sql.Result, jobID kernel.JobID) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("job not found: %s", jobID)
	}
	return nil
}

func marshalNullJSON(m map[string]any) sql.NullString {
	if len(m) == 0 {
		return sql.NullString{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		logx.Warnf("Failed to marshal JSON details: %v", err)
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

// toDBJob converts domain model to database model
func (r *PostgresJobRepository) toDBJob(job *rms.ParseJob) (*dbJob, error) {
	var result sql.NullString
	if job.Result != nil {
		data, err := json.Marshal(job.Result)
		if err != nil {
			return nil, fmt.Errorf("marshal result schema: %w", err)
		}
		result = sql.NullString{String: string(data), Valid: true}
	}

	var currentStep *string
	if job.CurrentStep != nil {
		stepStr := string(*job.CurrentStep)
		currentStep = &stepStr
	}

	return &dbJob{
		ID:                 job.ID.String(),
		Status:             string(job.Status),
		TextPath:           job.TextPath,
		Source:             job.Source,
		AttemptCount:       job.AttemptCount,
		MaxAttempts:        job.MaxAttempts,
		ErrorMessage:       job.ErrorMessage,
		ErrorDetails:       marshalNullJSON(job.ErrorDetails),
		CurrentStep:        currentStep,
		ProgressPercentage: job.ProgressPercentage,
		Result:             result,
		CreatedAt:          job.CreatedAt,
		StartedAt:          job.StartedAt,
		CompletedAt:        job.CompletedAt,
		FailedAt:           job.FailedAt,
		NextRetryAt:        job.NextRetryAt,
	}, nil
}

// toDomainJob converts database model to domain model
func (r *PostgresJobRepository) toDomainJob(row *dbJob) (*rms.ParseJob, error) {
	var errorDetails map[string]any
	if row.ErrorDetails.Valid && row.ErrorDetails.String != "" {
		if err := json.Unmarshal([]byte(row.ErrorDetails.String), &errorDetails); err != nil {
			logx.Warnf("Failed to unmarshal error details for job %s: %v", row.ID, err)
			errorDetails = nil
		}
	}

	var result rms.FlatSchema
	if row.Result.Valid && row.Result.String != "" {
		if err := json.Unmarshal([]byte(row.Result.String), &result); err != nil {
			return nil, fmt.Errorf("unmarshal result schema for job %s: %w", row.ID, err)
		}
	}

	var currentStep *rms.ProcessingStep
	if row.CurrentStep != nil {
		step := rms.ProcessingStep(*row.CurrentStep)
		currentStep = &step
	}

	return &rms.ParseJob{
		ID:                 kernel.JobID(row.ID),
		Status:             rms.JobStatus(row.Status),
		TextPath:           row.TextPath,
		Source:             row.Source,
		AttemptCount:       row.AttemptCount,
		MaxAttempts:        row.MaxAttempts,
		ErrorMessage:       row.ErrorMessage,
		ErrorDetails:       errorDetails,
		CurrentStep:        currentStep,
		ProgressPercentage: row.ProgressPercentage,
		Result:             result,
		CreatedAt:          row.CreatedAt,
		StartedAt:          row.StartedAt,
		CompletedAt:        row.CompletedAt,
		FailedAt:           row.FailedAt,
		NextRetryAt:        row.NextRetryAt,
	}, nil
}
