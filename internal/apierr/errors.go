// Package apierr provides the error taxonomy shared by the flashcard pipeline
// and the transport sentinels used by model-provider adapters.
//
// Every error that reaches a caller belongs to one category:
//   - ErrConfiguration: missing or rejected credential, missing tokenizer data
//   - ErrGeneration: model call failed, reply unparseable, zero cards produced
//   - ErrValidation: empty input text or other boundary input problems
//
// Adapters classify provider failures into the transport sentinels with
// fmt.Errorf("%s: %w", msg, sentinel). Callers check with errors.Is and use
// Describe to obtain a message suitable for display.
package apierr

import (
	"errors"
	"fmt"
)

// Error categories.
var (
	// ErrConfiguration indicates the caller must fix setup before retrying.
	ErrConfiguration = errors.New("configuration error")

	// ErrGeneration indicates the model could not produce usable cards.
	ErrGeneration = errors.New("generation error")

	// ErrValidation indicates the input itself is unusable.
	ErrValidation = errors.New("validation error")
)

// Sentinel errors for model-provider interaction failures.
var (
	// ErrRateLimit indicates the API rate limit was exceeded (temporary, retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the API quota was exceeded (billing issue, not retryable).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a request timed out.
	ErrTimeout = errors.New("request timeout")

	// ErrConnection indicates the provider could not be reached.
	ErrConnection = errors.New("connection failed")

	// ErrAuthFailed indicates API authentication failed (invalid key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")

	// ErrProvider indicates a provider-side failure with no more specific class.
	ErrProvider = errors.New("provider error")
)

// Sentinel errors for input problems.
var (
	// ErrEmptyText indicates the source text is empty after trimming.
	ErrEmptyText = errors.New("source text is empty")

	// ErrTextTooLarge indicates the provider rejected the input as too long.
	ErrTextTooLarge = errors.New("source text exceeds the model context")

	// ErrMissingCredential indicates no API key was supplied.
	ErrMissingCredential = errors.New("API key is not configured")
)

// Configuration wraps cause under ErrConfiguration.
func Configuration(cause error) error {
	return wrap(ErrConfiguration, cause)
}

// Generation wraps cause under ErrGeneration.
func Generation(cause error) error {
	return wrap(ErrGeneration, cause)
}

// Validation wraps cause under ErrValidation.
func Validation(cause error) error {
	return wrap(ErrValidation, cause)
}

func wrap(category, cause error) error {
	if cause == nil {
		return nil
	}
	if errors.Is(cause, category) {
		return cause
	}
	return fmt.Errorf("%w: %w", category, cause)
}

// Describe returns a user-presentable explanation of err.
// Each failure class maps to its own message so that "fix your credential",
// "try again later" and "document empty/too large" stay distinguishable.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return "OpenAI API key is not configured. Set OPENAI_API_KEY and retry."
	case errors.Is(err, ErrAuthFailed):
		return "Invalid API key. Check the key and retry."
	case errors.Is(err, ErrQuotaExceeded):
		return "API quota exceeded. Check the billing settings of your account."
	case errors.Is(err, ErrRateLimit):
		return "Rate limit exceeded. Please try again later."
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrConnection):
		return "Could not connect to the OpenAI API. Check your network and try again later."
	case errors.Is(err, ErrEmptyText):
		return "Please provide text to generate flashcards from."
	case errors.Is(err, ErrTextTooLarge):
		return "The document is too large for the selected model."
	case errors.Is(err, ErrBadRequest):
		return "The request was rejected by the API: " + err.Error()
	case errors.Is(err, ErrProvider):
		return "The API returned an error: " + err.Error()
	default:
		return err.Error()
	}
}
