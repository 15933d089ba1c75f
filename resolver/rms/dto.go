package rms

import (
	"time"

	"github.com/Abraxas-365/rms/pkg/kernel"
)

// ParseRequest - Synchronous parse input
type ParseRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// ParseResult - The outcome of a parse: either data or errors, never a
// panic or a thrown fault. Warnings may accompany success.
type ParseResult struct {
	Success    bool       `json:"success"`
	Data       FlatSchema `json:"data,omitempty"`
	Errors     []string   `json:"errors,omitempty"`
	Warnings   []string   `json:"warnings,omitempty"`
	Attempts   int        `json:"attempts"`
	DurationMS int64      `json:"duration_ms"`
}

// ValidateRequest - Validation input: a previously produced flat schema
type ValidateRequest struct {
	Schema FlatSchema `json:"schema"`
}

// ValidationResult - Strict validation outcome
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// FixResult - Lenient validation outcome with the repaired schema
type FixResult struct {
	IsValid     bool       `json:"is_valid"`
	Suggestions []string   `json:"suggestions,omitempty"`
	FixedData   FlatSchema `json:"fixed_data,omitempty"`
}

// ParseAsyncRequest - Async parse submission
type ParseAsyncRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// ParseAsyncResponse - 202 body for an accepted submission
type ParseAsyncResponse struct {
	JobID     kernel.JobID `json:"job_id"`
	Status    JobStatus    `json:"status"`
	StatusURL string       `json:"status_url"`
	Message   string       `json:"message"`
}

// QueueJobPayload - What rides the queue; the text itself stays in storage
type QueueJobPayload struct {
	JobID      kernel.JobID `json:"job_id"`
	TextPath   string       `json:"text_path"`
	EnqueuedAt time.Time    `json:"enqueued_at"`
}
