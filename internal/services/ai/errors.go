// Package ai routes typed AI operations through model and credential
// fallback, and decodes the backend's JSON into domain models.
package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FailureKind classifies a failed attempt.
type FailureKind int

const (
	// FailureNone means no failure.
	FailureNone FailureKind = iota
	// FailureTerminal fails this model only; the next model is tried on the
	// same credential.
	FailureTerminal
	// FailureRetryable abandons the credential's remaining models and
	// rotates to the next credential.
	FailureRetryable
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureTerminal:
		return "terminal"
	case FailureRetryable:
		return "retryable"
	default:
		return "unknown"
	}
}

// retryablePatterns is matched case-insensitively against untyped error
// messages. Generic entries such as "limit", "not found" and "internal" can
// misclassify application errors as retryable; the list is kept as is
// because callers depend on it.
var retryablePatterns = []string{
	"429",
	"rate",
	"quota",
	"resource_exhausted",
	"resource has been exhausted",
	"limit",
	"overloaded",
	"unavailable",
	"503",
	"500",
	"internal",
	"capacity",
	"too many requests",
	"try again",
	"not found",
	"404",
	"deprecated",
	"permission",
	"billing",
}

// matchesRetryable reports whether msg contains any retryable pattern.
func matchesRetryable(msg string) bool {
	msg = strings.ToLower(msg)
	for _, p := range retryablePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// classified is implemented by errors that know their own category.
type classified interface {
	FailureKind() FailureKind
}

// Classify returns the failure category of err. Typed errors decide for
// themselves; anything else falls back to message matching.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var c classified
	if errors.As(err, &c) {
		return c.FailureKind()
	}
	if matchesRetryable(err.Error()) {
		return FailureRetryable
	}
	return FailureTerminal
}

// IsRetryable reports whether err should rotate credentials.
func IsRetryable(err error) bool {
	return Classify(err) == FailureRetryable
}

// retryableStatus lists HTTP statuses that mean exhaustion or unavailability
// of a credential or model rather than a bad request.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusServiceUnavailable:  true,
	http.StatusBadGateway:          true,
	http.StatusGatewayTimeout:      true,
	http.StatusNotFound:            true,
	http.StatusForbidden:           true,
	http.StatusPaymentRequired:     true,
}

// APIError is a non-2xx response from an AI backend.
type APIError struct {
	Provider   string
	Status     string // upstream status text, e.g. RESOURCE_EXHAUSTED
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Status != "" {
		msg = e.Status + ": " + msg
	}
	return fmt.Sprintf("%s request failed (status %d): %s", e.Provider, e.StatusCode, msg)
}

// FailureKind implements classified.
func (e *APIError) FailureKind() FailureKind {
	if retryableStatus[e.StatusCode] || matchesRetryable(e.Status+" "+e.Message) {
		return FailureRetryable
	}
	return FailureTerminal
}

// ParseError means the backend's text was not the expected JSON.
type ParseError struct {
	Err error
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FailureKind implements classified. A parse failure never rotates
// credentials, whatever the underlying message says.
func (e *ParseError) FailureKind() FailureKind { return FailureTerminal }

// ValidationError means the JSON parsed but did not have the required shape.
type ValidationError struct {
	Err    error
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid model response: %v", e.Err)
	}
	return "invalid model response: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// FailureKind implements classified.
func (e *ValidationError) FailureKind() FailureKind { return FailureTerminal }

// ExhaustedError is returned when every model and credential combination
// failed. It wraps the last observed failure.
type ExhaustedError struct {
	Last     error
	Label    string
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Label, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// FailureKind implements classified. Exhaustion is final for the caller.
func (e *ExhaustedError) FailureKind() FailureKind { return FailureTerminal }
