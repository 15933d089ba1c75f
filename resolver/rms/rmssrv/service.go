package rmssrv

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/rms/internal/ai/textgen"
	"github.com/Abraxas-365/rms/internal/jsonrepair"
	"github.com/Abraxas-365/rms/internal/textproc"
	"github.com/Abraxas-365/rms/pkg/errx"
	"github.com/Abraxas-365/rms/pkg/fsx"
	"github.com/Abraxas-365/rms/pkg/logx"
	"github.com/Abraxas-365/rms/resolver/rms"
)

// Config is the immutable pipeline configuration. One Service carries
// one Config; there is no process-wide parser state.
type Config struct {
	// MaxAttempts bounds the sequential extraction retry loop
	MaxAttempts int
	// AttemptPause is the fixed pause between attempts, no jitter
	AttemptPause time.Duration
	// RequestTimeout bounds one inference call
	RequestTimeout time.Duration
	// CacheTTL is how long raw model responses stay cached
	CacheTTL time.Duration
}

// DefaultConfig returns the standard pipeline configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		AttemptPause:   time.Second,
		RequestTimeout: 180 * time.Second,
		CacheTTL:       24 * time.Hour,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.AttemptPause <= 0 {
		c.AttemptPause = d.AttemptPause
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	return c
}

type Service struct {
	gen        rms.TextGenerator
	cache      rms.ResponseCache // optional, nil disables caching
	jobRepo    rms.JobRepository
	queue      rms.JobQueue
	fileReader fsx.FileReader
	pre        *textproc.Preprocessor
	cfg        Config
}

// NewService creates a new resolver service. cache, jobRepo, queue and
// fileReader may be nil for synchronous-only use.
func NewService(
	gen rms.TextGenerator,
	cache rms.ResponseCache,
	jobRepo rms.JobRepository,
	queue rms.JobQueue,
	fileReader fsx.FileReader,
	cfg Config,
) *Service {
	return &Service{
		gen:        gen,
		cache:      cache,
		jobRepo:    jobRepo,
		queue:      queue,
		fileReader: fileReader,
		pre:        textproc.New(textproc.DefaultConfig()),
		cfg:        cfg.withDefaults(),
	}
}

// ============================================================================
// Parse Resume (synchronous pipeline)
// ============================================================================

// ParseResume runs the full pipeline: preprocess, extract with retries,
// decode, reclassify, normalize dates, encode, validate. It always
// returns a result, never panics or leaks a raw fault: failures carry
// a message and the attempt count.
func (s *Service) ParseResume(ctx context.Context, req rms.ParseRequest) *rms.ParseResult {
	start := time.Now()

	if strings.TrimSpace(req.Text) == "" {
		return &rms.ParseResult{
			Success:    false,
			Errors:     []string{rms.ErrEmptyInput().Message},
			Attempts:   0,
			DurationMS: time.Since(start).Milliseconds(),
		}
	}

	// Preprocessing is deterministic; one pass serves every attempt
	preprocessed := s.pre.Process(req.Text)
	system, user := BuildPrompt(preprocessed)

	state := NewAttemptState(s.cfg.MaxAttempts)
	var schema rms.FlatSchema
	var warnings []string

	for state.Phase == PhaseAttempting {
		// The cache is only trusted on the first attempt: a retry after
		// a decode failure must reach the model for fresh output.
		useCache := state.Attempt == 1

		var err error
		schema, warnings, err = s.runAttempt(ctx, system, user, req.Text, useCache)
		next := state.Step(err, isRetryable(err))

		if err != nil {
			logx.Warnf("Parse attempt %d/%d failed: %v", state.Attempt, state.MaxAttempts, err)
		}
		if next.Phase == PhaseAttempting {
			select {
			case <-time.After(s.cfg.AttemptPause):
			case <-ctx.Done():
				next = next.Step(ctx.Err(), false)
			}
		}
		state = next
	}

	if state.Phase == PhaseExhausted {
		failure := rms.ErrAttemptsExhausted(state.Attempt, state.LastErr)
		return &rms.ParseResult{
			Success:    false,
			Errors:     []string{failure.Error(), state.LastErr.Error()},
			Attempts:   state.Attempt,
			Warnings:   warnings,
			DurationMS: time.Since(start).Milliseconds(),
		}
	}

	return &rms.ParseResult{
		Success:    true,
		Data:       schema,
		Warnings:   warnings,
		Attempts:   state.Attempt,
		DurationMS: time.Since(start).Milliseconds(),
	}
}

// runAttempt executes one full attempt: generate, decode, classify,
// normalize, encode, validate. Every stage recomputes from scratch.
func (s *Service) runAttempt(ctx context.Context, system, user, originalText string, useCache bool) (rms.FlatSchema, []string, error) {
	raw, err := s.generate(ctx, system, user, useCache)
	if err != nil {
		return nil, nil, err
	}

	extracted, err := jsonrepair.Extract(raw)
	if err != nil {
		return nil, nil, rms.ErrMalformedResponse(err)
	}

	var structured rms.StructuredResume
	if err := json.Unmarshal([]byte(extracted), &structured); err != nil {
		return nil, nil, rms.ErrMalformedResponse(err)
	}

	// Syntactically valid JSON carrying no resume content at all is a
	// failed extraction; retrying beats encoding an empty schema
	if structured.IsEmpty() {
		return nil, nil, rms.ErrMalformedResponse(errors.New("extraction produced no resume content"))
	}

	corrected := Reclassify(&structured, originalText)
	normalized := NormalizeDates(corrected)
	schema := rms.Encode(normalized)

	if err := checkEncodingInvariants(schema, normalized); err != nil {
		// A broken invariant here is a codec bug, not a model problem
		return nil, nil, err
	}

	var warnings []string
	for _, v := range normalized.Involvement {
		if v.ReclassifiedFrom != "" {
			warnings = append(warnings, fmt.Sprintf(
				"entry %q / %q was reclassified to involvement from %s",
				v.Role, v.Organization, v.ReclassifiedFrom))
		}
	}
	verdict := rms.Validate(schema)
	warnings = append(warnings, verdict.Warnings...)
	for _, e := range verdict.Errors {
		// Our own encoder writes the markers and counts, so validator
		// errors downgrade to warnings rather than forcing a retry
		warnings = append(warnings, "validation: "+e)
	}

	return schema, warnings, nil
}

// generate resolves the raw model response, via the cache when allowed
func (s *Service) generate(ctx context.Context, system, user string, useCache bool) (string, error) {
	key := promptHash(system, user)

	if useCache && s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, key); err != nil {
			logx.Warnf("Response cache read failed: %v", err)
		} else if ok {
			logx.Debugf("Response cache hit for prompt %s", key[:12])
			return cached, nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	raw, err := s.gen.Generate(callCtx, system, user)
	if err != nil {
		return "", mapTransportError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, raw, s.cfg.CacheTTL); err != nil {
			logx.Warnf("Response cache write failed: %v", err)
		}
	}
	return raw, nil
}

func promptHash(system, user string) string {
	sum := sha256.Sum256([]byte(system + "\x00" + user))
	return hex.EncodeToString(sum[:])
}

func mapTransportError(err error) error {
	switch {
	case errors.Is(err, textgen.ErrTimeout):
		return rms.ErrExtractionTimeout(err)
	case errors.Is(err, textgen.ErrModelNotFound):
		return rms.ErrModelNotFound(err)
	default:
		return rms.ErrExtractionFailed(err)
	}
}

// isRetryable implements the error taxonomy: transport and decode
// failures retry; model-not-found, encoding invariant violations and
// cancellation do not.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, textgen.ErrModelNotFound) {
		return false
	}
	var appErr *errx.Error
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case rms.CodeModelNotFound.Code,
			rms.CodeEncodingViolation.Code,
			rms.CodeEmptyInput.Code:
			return false
		}
	}
	return true
}

// checkEncodingInvariants asserts the count invariant on freshly
// encoded output. Failure indicates a decode-contract bug and is fatal.
func checkEncodingInvariants(schema rms.FlatSchema, structured *rms.StructuredResume) error {
	if schema.GetString(rms.ProducerKey) != rms.ProducerValue {
		return rms.ErrEncodingViolation("missing compliance marker after encode")
	}
	expected := map[rms.Section]int{
		rms.SectionExperience:    len(structured.Experiences),
		rms.SectionEducation:     len(structured.Education),
		rms.SectionSkill:         len(structured.Skills),
		rms.SectionProject:       len(structured.Projects),
		rms.SectionInvolvement:   len(structured.Involvement),
		rms.SectionCertification: len(structured.Certifications),
		rms.SectionCoursework:    len(structured.Coursework),
		rms.SectionPublication:   len(structured.Publications),
		rms.SectionAward:         len(structured.Awards),
		rms.SectionReference:     len(structured.References),
	}
	for sec, want := range expected {
		if got := schema.GetInt(sec.CountKey()); got != want {
			return rms.ErrEncodingViolation(
				fmt.Sprintf("section %q count %d does not match %d encoded entries", sec, got, want))
		}
	}
	return nil
}

// ============================================================================
// Validation Operations
// ============================================================================

// ValidateSchema strictly validates a flat schema
func (s *Service) ValidateSchema(schema rms.FlatSchema) rms.ValidationResult {
	return rms.Validate(schema)
}

// ValidateAndFix leniently validates, returning repairs and suggestions
func (s *Service) ValidateAndFix(schema rms.FlatSchema) rms.FixResult {
	return rms.ValidateAndFix(schema)
}
