// Package provider adapts chat-completion backends to generate.Provider.
//
// OpenAI talks to the OpenAI API, or any OpenAI-compatible endpoint through
// WithBaseURL, using github.com/sashabaranov/go-openai. It owns transport
// concerns the generation core leaves out: per-request timeouts, retries of
// transient failures and classification of provider errors into apierr
// sentinels.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-flashgen/internal/apierr"
	"github.com/alnah/go-flashgen/internal/cost"
	"github.com/alnah/go-flashgen/internal/generate"
)

// Default configuration values.
const (
	// Retry configuration
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second

	// HTTP timeout per request.
	defaultHTTPTimeout = 2 * time.Minute
)

// Compile-time interface compliance check.
var _ generate.Provider = (*OpenAI)(nil)

// OpenAI calls the chat completion API of OpenAI or a compatible service.
// A client is built per call from the credential passed in, so an OpenAI
// value holds no key and is safe for concurrent use.
type OpenAI struct {
	model       string
	baseURL     string
	httpClient  openai.HTTPDoer
	httpTimeout time.Duration
	maxRetries  int
	baseDelay   time.Duration
	maxDelay    time.Duration
	logger      *slog.Logger
}

// Option configures an OpenAI provider.
type Option func(*OpenAI)

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(p *OpenAI) {
		if model != "" {
			p.model = model
		}
	}
}

// WithBaseURL points the provider at an OpenAI-compatible endpoint.
// The URL must include the API version path, e.g. "https://host/v1".
func WithBaseURL(url string) Option {
	return func(p *OpenAI) {
		if url != "" {
			p.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c openai.HTTPDoer) Option {
	return func(p *OpenAI) {
		p.httpClient = c
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) Option {
	return func(p *OpenAI) {
		if n >= 0 {
			p.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) Option {
	return func(p *OpenAI) {
		if base > 0 {
			p.baseDelay = base
		}
		if max > 0 {
			p.maxDelay = max
		}
	}
}

// WithLogger sets a logger for retry diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *OpenAI) {
		p.logger = l
	}
}

// NewOpenAI creates a provider. Use options to customize model, endpoint
// and retry behavior.
func NewOpenAI(opts ...Option) *OpenAI {
	p := &OpenAI{
		model:       cost.DefaultModel,
		httpTimeout: defaultHTTPTimeout,
		maxRetries:  defaultMaxRetries,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: p.httpTimeout}
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// Model returns the configured chat model.
func (p *OpenAI) Model() string {
	return p.model
}

// client builds a go-openai client for one call.
func (p *OpenAI) client(key string) *openai.Client {
	cfg := openai.DefaultConfig(key)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	cfg.HTTPClient = p.httpClient
	return openai.NewClientWithConfig(cfg)
}

// Complete sends req as a JSON-mode chat completion.
// Transient failures (rate limits, timeouts, connection and 5xx errors) are
// retried with exponential backoff; every returned error wraps an apierr
// transport sentinel.
func (p *OpenAI) Complete(ctx context.Context, cred generate.Credential, req generate.Request) (generate.Reply, error) {
	client := p.client(cred.Reveal())
	chatReq := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature:         req.Temperature,
		MaxCompletionTokens: req.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	return apierr.RetryWithBackoff(ctx, p.retryConfig(), func() (generate.Reply, error) {
		resp, err := client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return generate.Reply{}, classifyError(err)
		}
		if len(resp.Choices) == 0 {
			return generate.Reply{}, fmt.Errorf("no choices in response: %w", apierr.ErrProvider)
		}
		return generate.Reply{
			Content:          resp.Choices[0].Message.Content,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		}, nil
	}, isRetryableError)
}

// Probe lists models, which validates the key without consuming tokens.
// It is not retried: a probe reports the first failure.
func (p *OpenAI) Probe(ctx context.Context, cred generate.Credential) error {
	if _, err := p.client(cred.Reveal()).ListModels(ctx); err != nil {
		return classifyError(err)
	}
	return nil
}

func (p *OpenAI) retryConfig() apierr.RetryConfig {
	return apierr.RetryConfig{
		MaxRetries: p.maxRetries,
		BaseDelay:  p.baseDelay,
		MaxDelay:   p.maxDelay,
		OnRetry: func(retry int, delay time.Duration, err error) {
			p.logger.Debug("retrying model call",
				"retry", retry,
				"delay", delay,
				"error", err)
		},
	}
}

// classifyError maps go-openai errors to apierr sentinel errors.
// Uses errors.As for typed errors before falling back to message checks.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message, apiErrorCode(apiErr))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return classifyStatus(reqErr.HTTPStatusCode, reqErr.Error(), "")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%v: %w", err, apierr.ErrTimeout)
		}
		return fmt.Errorf("%v: %w", err, apierr.ErrConnection)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%v: %w", err, apierr.ErrConnection)
	}

	if isContextLength(err.Error()) {
		return fmt.Errorf("API rejected: %w", apierr.ErrTextTooLarge)
	}
	return fmt.Errorf("%v: %w", err, apierr.ErrProvider)
}

// classifyStatus maps an HTTP status and provider message to a sentinel.
func classifyStatus(status int, msg, code string) error {
	switch status {
	case http.StatusTooManyRequests:
		// Distinguish a temporary rate limit from an exhausted quota (billing issue).
		if code == "insufficient_quota" ||
			strings.Contains(msg, "quota") ||
			strings.Contains(msg, "billing") {
			return fmt.Errorf("%s: %w", msg, apierr.ErrQuotaExceeded)
		}
		return fmt.Errorf("%s: %w", msg, apierr.ErrRateLimit)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%s: %w", msg, apierr.ErrQuotaExceeded)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", msg, apierr.ErrAuthFailed)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("%s: %w", msg, apierr.ErrTimeout)
	case http.StatusBadRequest:
		if code == "context_length_exceeded" || isContextLength(msg) {
			return fmt.Errorf("API rejected: %w", apierr.ErrTextTooLarge)
		}
		return fmt.Errorf("%s: %w", msg, apierr.ErrBadRequest)
	case http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w", msg, apierr.ErrBadRequest)
	}
	if status >= http.StatusInternalServerError {
		return &serverError{status: status, err: fmt.Errorf("%s: %w", msg, apierr.ErrProvider)}
	}
	return fmt.Errorf("%s: %w", msg, apierr.ErrProvider)
}

// serverError marks a 5xx provider failure as retryable.
type serverError struct {
	status int
	err    error
}

func (e *serverError) Error() string { return fmt.Sprintf("server error %d: %v", e.status, e.err) }
func (e *serverError) Unwrap() error { return e.err }

func apiErrorCode(e *openai.APIError) string {
	if s, ok := e.Code.(string); ok {
		return s
	}
	return ""
}

func isContextLength(msg string) bool {
	return strings.Contains(msg, "context_length") ||
		strings.Contains(msg, "maximum context length")
}

// isRetryableError determines if an error is transient and should be retried.
func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, apierr.ErrRateLimit) ||
		errors.Is(err, apierr.ErrTimeout) ||
		errors.Is(err, apierr.ErrConnection) {
		return true
	}
	var srvErr *serverError
	return errors.As(err, &srvErr)
}
