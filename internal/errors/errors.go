// Package errors provides sentinel errors and error types for chess-trainer.
// It defines common error conditions and structured error types that preserve
// context while allowing error inspection with errors.Is() and errors.As().
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure conditions.
// Use these with errors.Is() to check for specific error types.
var (
	// ErrInvalidConfig indicates invalid configuration values.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidRequest indicates a client request that cannot be served.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAgentUnavailable indicates the agent service could not be reached.
	ErrAgentUnavailable = errors.New("agent unavailable")

	// ErrAgentStatus indicates the agent service answered with a failure status.
	ErrAgentStatus = errors.New("agent returned failure status")

	// ErrMalformedResponse indicates an agent reply that is not a JSON object.
	ErrMalformedResponse = errors.New("malformed agent response")

	// ErrSessionNotFound indicates an unknown or expired session ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrChatInProgress indicates a chat turn was started while another is pending.
	ErrChatInProgress = errors.New("chat already in progress")

	// ErrNoPuzzle indicates a puzzle action without an active puzzle.
	ErrNoPuzzle = errors.New("no active puzzle")

	// ErrUnknownOpening indicates an opening that is not in the catalog.
	ErrUnknownOpening = errors.New("unknown opening")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// AgentError wraps errors with agent call context: which agent was asked,
// the last HTTP status seen and how many attempts were made. It implements
// the error interface and supports unwrapping via errors.Is() and errors.As().
type AgentError struct {
	Err        error  // The underlying error
	AgentID    string // Agent identifier the request was addressed to
	StatusCode int    // Last HTTP status (0 if no response was received)
	Attempts   int    // Number of attempts made
}

// Error returns a formatted error message including all available context.
func (e *AgentError) Error() string {
	var parts []string

	if e.AgentID != "" {
		parts = append(parts, fmt.Sprintf("agent %q", e.AgentID))
	} else {
		parts = append(parts, "agent")
	}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status %d", e.StatusCode))
	}

	if e.Attempts > 1 {
		parts = append(parts, fmt.Sprintf("after %d attempts", e.Attempts))
	}

	context := strings.Join(parts, ", ")

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", context, e.Err)
	}
	return context
}

// Unwrap returns the underlying error, enabling errors.Is() and errors.As()
// to work through the AgentError wrapper.
func (e *AgentError) Unwrap() error {
	return e.Err
}

// FieldError reports a request or configuration field that failed validation.
type FieldError struct {
	Err    error  // The underlying sentinel (ErrInvalidRequest, ErrInvalidConfig)
	Field  string // Field name, e.g. "agent.endpoint"
	Reason string // Human-readable reason
}

// Error returns "<sentinel>: <field>: <reason>".
func (e *FieldError) Error() string {
	msg := e.Field
	if e.Reason != "" {
		if msg != "" {
			msg += ": "
		}
		msg += e.Reason
	}
	if e.Err != nil {
		if msg == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%v: %s", e.Err, msg)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Invalid returns a FieldError for a bad request field.
func Invalid(field, reason string) error {
	return &FieldError{Err: ErrInvalidRequest, Field: field, Reason: reason}
}

// Wrap adds context to an error while preserving the underlying error
// for inspection with errors.Is() and errors.As().
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf adds formatted context to an error while preserving the underlying
// error for inspection with errors.Is() and errors.As().
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}
