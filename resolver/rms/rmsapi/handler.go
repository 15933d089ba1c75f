package rmsapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/rms/pkg/fsx"
	"github.com/Abraxas-365/rms/pkg/kernel"
	"github.com/Abraxas-365/rms/resolver/rms"
	"github.com/Abraxas-365/rms/resolver/rms/rmssrv"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Submissions above this size are rejected before touching the model
const maxSubmissionBytes = 1 << 20

type ResolverHandlers struct {
	service    *rmssrv.Service
	fileSystem fsx.FileSystem // stores async submission text
}

func NewResolverHandlers(service *rmssrv.Service, fileSystem fsx.FileSystem) *ResolverHandlers {
	return &ResolverHandlers{
		service:    service,
		fileSystem: fileSystem,
	}
}

func (h *ResolverHandlers) RegisterRoutes(app *fiber.App) {
	resolver := app.Group("/api/v1/resolver")

	// Parsing
	resolver.Post("/parse", h.ParseResume)            // Parse inline (SYNC)
	resolver.Post("/parse/async", h.ParseResumeAsync) // Queue for background parsing

	// Job Management
	resolver.Get("/jobs/stats", h.GetJobStats)       // Get job statistics
	resolver.Get("/jobs/:job_id", h.GetJobStatus)    // Get job status
	resolver.Post("/jobs/:job_id/retry", h.RetryJob) // Retry failed job

	// Schema Validation
	resolver.Post("/validate", h.ValidateSchema) // Strict validation
	resolver.Post("/fix", h.ValidateAndFix)      // Lenient validation with repairs
}

// ============================================================================
// Parsing Handlers
// ============================================================================

// ParseResume parses resume text synchronously
// POST /api/v1/resolver/parse
func (h *ResolverHandlers) ParseResume(c *fiber.Ctx) error {
	var req rms.ParseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if len(req.Text) > maxSubmissionBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "submission too large",
			"max_size": maxSubmissionBytes,
			"size":     len(req.Text),
		})
	}

	result := h.service.ParseResume(c.Context(), req)
	if !result.Success {
		// The pipeline reports failure as data; surface it with 422 so
		// callers can distinguish a bad submission from a server fault
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	}

	return c.JSON(result)
}

// ParseResumeAsync stores the submission text and queues it for
// background parsing
// POST /api/v1/resolver/parse/async
func (h *ResolverHandlers) ParseResumeAsync(c *fiber.Ctx) error {
	var req rms.ParseAsyncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text is required",
		})
	}
	if len(req.Text) > maxSubmissionBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "submission too large",
			"max_size": maxSubmissionBytes,
			"size":     len(req.Text),
		})
	}

	// Format: submissions/{year}/{month}/{uuid}.txt
	now := time.Now()
	textPath := h.fileSystem.Join(
		"submissions",
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		uuid.NewString()+".txt",
	)

	if err := h.fileSystem.WriteFile(c.Context(), textPath, []byte(req.Text)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "failed to store submission",
			"details": err.Error(),
		})
	}

	jobResponse, err := h.service.ParseResumeAsync(c.Context(), textPath, req.Source)
	if err != nil {
		// If queueing fails, clean up the stored submission
		_ = h.fileSystem.DeleteFile(c.Context(), textPath)
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message":    "Submission accepted, parsing started",
		"job":        jobResponse,
		"status_url": fmt.Sprintf("/api/v1/resolver/jobs/%s", jobResponse.JobID),
	})
}

// ============================================================================
// Job Management Handlers
// ============================================================================

// GetJobStatus retrieves the status of a parse job
// GET /api/v1/resolver/jobs/:job_id
func (h *ResolverHandlers) GetJobStatus(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("job_id"))
	if jobID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job ID",
		})
	}

	jobStatus, err := h.service.GetJobStatus(c.Context(), jobID)
	if err != nil {
		return err
	}

	return c.JSON(jobStatus)
}

// GetJobStats retrieves aggregate job statistics
// GET /api/v1/resolver/jobs/stats
func (h *ResolverHandlers) GetJobStats(c *fiber.Ctx) error {
	stats, err := h.service.GetJobStats(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(stats)
}

// RetryJob requeues a failed job with a fresh attempt budget
// POST /api/v1/resolver/jobs/:job_id/retry
func (h *ResolverHandlers) RetryJob(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("job_id"))
	if jobID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job ID",
		})
	}

	jobStatus, err := h.service.RetryFailedJob(c.Context(), jobID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "job retried successfully",
		"job":     jobStatus,
	})
}

// ============================================================================
// Schema Validation Handlers
// ============================================================================

// ValidateSchema strictly validates a flat schema
// POST /api/v1/resolver/validate
func (h *ResolverHandlers) ValidateSchema(c *fiber.Ctx) error {
	var req rms.ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	return c.JSON(h.service.ValidateSchema(req.Schema))
}

// ValidateAndFix leniently validates and returns a repaired schema
// POST /api/v1/resolver/fix
func (h *ResolverHandlers) ValidateAndFix(c *fiber.Ctx) error {
	var req rms.ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	return c.JSON(h.service.ValidateAndFix(req.Schema))
}
