package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusSessionExpired is the non-standard status the browser widget treats as
// "session expired, refresh the page".
const StatusSessionExpired = 419

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrSessionExpired   = errors.New("session expired")
	ErrRateLimited      = errors.New("too many requests")
	ErrConversationBusy = errors.New("a reply for this conversation is still pending")
	ErrNotConfigured    = errors.New("service is not configured")

	// ErrEmptyModelReply marks a successful model call that produced no text.
	ErrEmptyModelReply = errors.New("empty response from language model")
)

// ValidationError indicates invalid input.
// Fields carries per-field messages (nested for list entries) for the widget.
type ValidationError struct {
	Message string
	Fields  map[string]interface{}
}

func (e *ValidationError) Error() string   { return e.Message }
func (e *ValidationError) StatusCode() int { return http.StatusUnprocessableEntity }

// Is allows errors.Is() to match against ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TurnLimitError is returned when a conversation has grown past the allowed
// number of history turns. The model is never contacted in that case.
type TurnLimitError struct {
	Turns int
	Limit int
}

func (e *TurnLimitError) Error() string {
	return "Conversation history is too long. Please start a new conversation."
}

func (e *TurnLimitError) StatusCode() int { return http.StatusUnprocessableEntity }

func (e *TurnLimitError) Is(target error) bool {
	return target == ErrValidation
}

// ModelError wraps a failed language-model exchange for one chat turn.
type ModelError struct {
	Provider string
	Err      error
}

func (e *ModelError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("feedback chat failed: %v", e.Err)
	}
	return fmt.Sprintf("feedback chat failed (%s): %v", e.Provider, e.Err)
}

func (e *ModelError) Unwrap() error   { return e.Err }
func (e *ModelError) StatusCode() int { return http.StatusBadGateway }

// TrackerError wraps a failed issue-tracker call.
type TrackerError struct {
	Op     string
	Status int
	Err    error
}

func (e *TrackerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TrackerError) Unwrap() error   { return e.Err }
func (e *TrackerError) StatusCode() int { return http.StatusBadGateway }
