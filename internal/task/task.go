// Package task defines the request variants accepted by the CLI.
package task

import (
	"errors"
	"strings"
)

// Kind identifies which assistant workflow a request targets.
type Kind string

const (
	// KindAsk answers a free-form question.
	KindAsk Kind = "ask"
	// KindDebug diagnoses a pasted error or issue.
	KindDebug Kind = "debug"
	// KindExplain explains a command, optionally diagnosing its error output.
	KindExplain Kind = "explain"
	// KindExecute runs a command and analyzes the result.
	KindExecute Kind = "execute"
)

// ErrEmptyPayload is returned when a request is constructed without input.
// It is a usage error: the caller must not attempt a dispatch.
var ErrEmptyPayload = errors.New("empty payload")

// Request is a tagged union over the four task variants. Exactly one Kind
// is active; Payload carries the question, issue text, or command.
// ErrorText is only meaningful for KindExplain and may be empty.
type Request struct {
	Kind      Kind
	Payload   string
	ErrorText string
}

// NewAsk builds an Ask request from a question.
func NewAsk(question string) (Request, error) {
	return newRequest(KindAsk, question, "")
}

// NewDebug builds a Debug request from pasted error output.
func NewDebug(issue string) (Request, error) {
	return newRequest(KindDebug, issue, "")
}

// NewExplain builds an Explain request. errorText may be empty, which
// selects the tutorial framing instead of the failure-diagnosis framing.
func NewExplain(command, errorText string) (Request, error) {
	return newRequest(KindExplain, command, errorText)
}

// NewExecute builds an Execute request from a shell command line.
func NewExecute(command string) (Request, error) {
	return newRequest(KindExecute, command, "")
}

func newRequest(kind Kind, payload, errorText string) (Request, error) {
	if strings.TrimSpace(payload) == "" {
		return Request{}, ErrEmptyPayload
	}
	return Request{
		Kind:      kind,
		Payload:   payload,
		ErrorText: strings.TrimSpace(errorText),
	}, nil
}
