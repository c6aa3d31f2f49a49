// Package model defines the provider abstraction shared by the dispatcher.
package model

import (
	"context"
	"time"
)

// ProviderID names one of the configured completion services.
type ProviderID string

const (
	ProviderGemini ProviderID = "gemini"
	ProviderOpenAI ProviderID = "openai"
)

// Generator is the minimal surface the dispatcher needs from a provider:
// prompt in, markdown text out. Implementations must be safe for use from
// a single dispatch at a time; they are not shared across invocations.
type Generator interface {
	ID() ProviderID
	Generate(ctx context.Context, prompt string) (string, error)
}

// FailureKind classifies a failed dispatch attempt.
type FailureKind string

const (
	FailureTimeout       FailureKind = "timeout"
	FailureTransport     FailureKind = "transport_error"
	FailureAuth          FailureKind = "auth_error"
	FailureEmptyResponse FailureKind = "empty_response"
)

// Answer is the final successful outcome of a dispatch.
type Answer struct {
	Text     string
	Provider ProviderID
	Elapsed  time.Duration

	// FallbackReason is empty when the primary answered, otherwise a short
	// human-readable explanation of why the fallback was consulted
	// ("timeout", "error: ...", "primary not configured").
	FallbackReason string
}

// FallbackUsed reports whether the answer came from the fallback provider.
func (a Answer) FallbackUsed() bool {
	return a.FallbackReason != ""
}

// Attempt records one dispatch attempt for logging and the invocation log.
type Attempt struct {
	Provider ProviderID
	Kind     FailureKind // zero value means the attempt succeeded
	Err      error
	Elapsed  time.Duration
}
