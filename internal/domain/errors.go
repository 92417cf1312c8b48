package domain

import (
	"errors"
	"fmt"
)

// Common error types
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found with ID: %s", e.Entity, e.ID)
}

// ValidationError represents an error that occurs due to invalid input or parameters
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

func NewValidationError(message string) error {
	return ValidationError{
		Message: message,
	}
}

// ErrUnauthorized is returned when a bearer token or Firebase ID token cannot be verified.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}

// ErrForbidden is returned when a verified identity is not allowed to perform the action.
type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	return e.Message
}

// ErrQuotaExceeded is returned when the plan ceiling for the current period is reached.
type ErrQuotaExceeded struct {
	Resource UsageKind
	Limit    int
	Used     int
}

func (e *ErrQuotaExceeded) Error() string {
	return fmt.Sprintf("monthly %s limit reached (%d/%d)", e.Resource, e.Used, e.Limit)
}

// ErrUpstream wraps failures of third-party services (LLM, TTS, Supabase).
type ErrUpstream struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *ErrUpstream) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
}

func (e *ErrUpstream) Unwrap() error {
	return e.Err
}

// ErrUpstreamUnavailable is returned while a circuit breaker is open.
var ErrUpstreamUnavailable = errors.New("upstream temporarily unavailable")

// ErrNoQwenKey is returned when generation is requested without QWEN_API_KEY.
var ErrNoQwenKey = errors.New("QWEN_API_KEY is not configured")
