package rms

import (
	"net/http"

	"github.com/Abraxas-365/rms/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("RMS")

// Error codes - Parse Pipeline
var (
	CodeEmptyInput         = ErrRegistry.Register("EMPTY_INPUT", errx.TypeValidation, http.StatusBadRequest, "Resume text is empty")
	CodeExtractionFailed   = ErrRegistry.Register("EXTRACTION_FAILED", errx.TypeExternal, http.StatusBadGateway, "Inference service call failed")
	CodeExtractionTimeout  = ErrRegistry.Register("EXTRACTION_TIMEOUT", errx.TypeExternal, http.StatusGatewayTimeout, "Inference service call timed out")
	CodeModelNotFound      = ErrRegistry.Register("MODEL_NOT_FOUND", errx.TypeExternal, http.StatusBadGateway, "Configured model is not available")
	CodeMalformedResponse  = ErrRegistry.Register("MALFORMED_RESPONSE", errx.TypeExternal, http.StatusBadGateway, "Model response could not be decoded")
	CodeAttemptsExhausted  = ErrRegistry.Register("ATTEMPTS_EXHAUSTED", errx.TypeExternal, http.StatusBadGateway, "All extraction attempts failed")
	CodeInvalidSchema      = ErrRegistry.Register("INVALID_SCHEMA", errx.TypeValidation, http.StatusBadRequest, "Flat schema failed validation")
	CodeEncodingViolation  = ErrRegistry.Register("ENCODING_VIOLATION", errx.TypeInternal, http.StatusInternalServerError, "Encoded schema violated a structural invariant")
	CodeSubmissionNotFound = ErrRegistry.Register("SUBMISSION_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Submitted resume text not found in storage")
)

// Error codes - Job/Queue Operations
var (
	CodeJobNotFound          = ErrRegistry.Register("JOB_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Parse job not found")
	CodeJobAlreadyProcessing = ErrRegistry.Register("JOB_ALREADY_PROCESSING", errx.TypeConflict, http.StatusConflict, "Job is already being processed")
	CodeJobAlreadyCompleted  = ErrRegistry.Register("JOB_ALREADY_COMPLETED", errx.TypeBusiness, http.StatusUnprocessableEntity, "Job has already been completed")
	CodeJobMaxRetriesReached = ErrRegistry.Register("JOB_MAX_RETRIES", errx.TypeInternal, http.StatusInternalServerError, "Job exceeded maximum retry attempts")
	CodeJobCreationFailed    = ErrRegistry.Register("JOB_CREATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to create job record")
	CodeJobUpdateFailed      = ErrRegistry.Register("JOB_UPDATE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to update job status")
	CodeJobRetryFailed       = ErrRegistry.Register("JOB_RETRY_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to schedule job retry")
	CodeInvalidJobStatus     = ErrRegistry.Register("INVALID_JOB_STATUS", errx.TypeValidation, http.StatusBadRequest, "Invalid job status")
	CodeJobFailed            = ErrRegistry.Register("JOB_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Job processing failed")
	CodeQueueEnqueueFailed   = ErrRegistry.Register("QUEUE_ENQUEUE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to enqueue job")
	CodeQueueDequeueFailed   = ErrRegistry.Register("QUEUE_DEQUEUE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to dequeue job")
	CodeQueueConnectionError = ErrRegistry.Register("QUEUE_CONNECTION_ERROR", errx.TypeInternal, http.StatusServiceUnavailable, "Queue service unavailable")
)

// Helper functions - Parse Pipeline
func ErrEmptyInput() *errx.Error {
	return ErrRegistry.New(CodeEmptyInput)
}

func ErrExtractionFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeExtractionFailed, cause)
}

func ErrExtractionTimeout(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeExtractionTimeout, cause)
}

func ErrModelNotFound(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeModelNotFound, cause)
}

func ErrMalformedResponse(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeMalformedResponse, cause)
}

func ErrAttemptsExhausted(attempts int, lastErr error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeAttemptsExhausted, lastErr).
		WithDetail("attempts", attempts)
}

func ErrInvalidSchema() *errx.Error {
	return ErrRegistry.New(CodeInvalidSchema)
}

func ErrEncodingViolation(detail string) *errx.Error {
	return ErrRegistry.New(CodeEncodingViolation).WithDetail("violation", detail)
}

func ErrSubmissionNotFound() *errx.Error {
	return ErrRegistry.New(CodeSubmissionNotFound)
}

// Helper functions - Job/Queue Operations
func ErrJobNotFound() *errx.Error {
	return ErrRegistry.New(CodeJobNotFound)
}

func ErrJobAlreadyProcessing() *errx.Error {
	return ErrRegistry.New(CodeJobAlreadyProcessing)
}

func ErrJobAlreadyCompleted() *errx.Error {
	return ErrRegistry.New(CodeJobAlreadyCompleted)
}

func ErrJobMaxRetriesReached() *errx.Error {
	return ErrRegistry.New(CodeJobMaxRetriesReached)
}

func ErrJobCreationFailed() *errx.Error {
	return ErrRegistry.New(CodeJobCreationFailed)
}

func ErrJobUpdateFailed() *errx.Error {
	return ErrRegistry.New(CodeJobUpdateFailed)
}

func ErrJobRetryFailed() *errx.Error {
	return ErrRegistry.New(CodeJobRetryFailed)
}

func ErrInvalidJobStatus() *errx.Error {
	return ErrRegistry.New(CodeInvalidJobStatus)
}

func ErrJobFailed() *errx.Error {
	return ErrRegistry.New(CodeJobFailed)
}

func ErrQueueEnqueueFailed() *errx.Error {
	return ErrRegistry.New(CodeQueueEnqueueFailed)
}

func ErrQueueDequeueFailed() *errx.Error {
	return ErrRegistry.New(CodeQueueDequeueFailed)
}

func ErrQueueConnectionError() *errx.Error {
	return ErrRegistry.New(CodeQueueConnectionError)
}
