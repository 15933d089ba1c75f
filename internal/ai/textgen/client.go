// Package textgen wraps an OpenAI-compatible chat-completion endpoint
// behind a single text-in/text-out operation.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"
)

// Transport failure taxonomy. Callers classify with errors.Is.
var (
	ErrTimeout       = errors.New("inference request timed out")
	ErrConnection    = errors.New("inference service unreachable")
	ErrModelNotFound = errors.New("requested model not found")
	ErrProtocol      = errors.New("inference service protocol error")
)

// Config for the extraction client
type Config struct {
	APIKey  string
	BaseURL string // empty uses the default OpenAI endpoint
	Model   string
	// MaxTokens caps the completion length; 0 uses the service default
	MaxTokens int64
}

// Client sends extraction prompts to the inference service
type Client struct {
	client *openai.Client
	cfg    Config
}

// NewClient creates an extraction client against the configured endpoint
func NewClient(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &Client{client: &client, cfg: cfg}
}

// Generate sends the prompt pair and returns the raw response text.
// Failures are wrapped into the package taxonomy; the caller decides
// retryability from the wrapped sentinel.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model: c.cfg.Model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		},
		Temperature: openai.Float(0.1), // Low temperature for consistency
	}
	if c.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(c.cfg.MaxTokens)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices in completion", ErrProtocol)
	}
	return completion.Choices[0].Message.Content, nil
}

// classify maps a transport error onto the package taxonomy
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrModelNotFound, err)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "eof"):
		return fmt.Errorf("%w: %v", ErrConnection, err)
	case strings.Contains(msg, "model") && strings.Contains(msg, "not found"):
		return fmt.Errorf("%w: %v", ErrModelNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrProtocol, err)
}

// IsRetryable reports whether a Generate failure is worth another attempt.
// Model-not-found is permanent; everything else transport-shaped retries.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return !errors.Is(err, ErrModelNotFound)
}
