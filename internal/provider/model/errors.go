package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for common provider failures.
var (
	ErrTimeout        = errors.New("request timeout")
	ErrAuthentication = errors.New("authentication failed")
	ErrNetwork        = errors.New("network error")
	ErrEmptyResponse  = errors.New("provider returned an empty response")

	// ErrNoProviders is the configuration error raised when neither client
	// is initialized. It is fatal for the invocation and never retried.
	ErrNoProviders = errors.New("no AI provider is configured (set GEMINI_API_KEY and/or OPENAI_API_KEY)")
)

// ErrorCode represents a provider error code.
type ErrorCode string

const (
	ErrorCodeTimeout   ErrorCode = "timeout"
	ErrorCodeAuth      ErrorCode = "authentication_failed"
	ErrorCodeNetwork   ErrorCode = "network_error"
	ErrorCodeEmpty     ErrorCode = "empty_response"
	ErrorCodeRateLimit ErrorCode = "rate_limit"
	ErrorCodeInvalid   ErrorCode = "invalid_request"
)

// ProviderError wraps provider failures with additional context.
type ProviderError struct {
	Code       ErrorCode
	Provider   ProviderID
	Message    string
	Underlying error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %s (%v)", e.Provider, e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error { return e.Underlying }

// ClassifyFailure maps an attempt error onto the dispatch failure taxonomy.
func ClassifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, ErrTimeout):
		return FailureTimeout
	case errors.Is(err, ErrAuthentication):
		return FailureAuth
	case errors.Is(err, ErrEmptyResponse):
		return FailureEmptyResponse
	default:
		return FailureTransport
	}
}
