package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors recovered at the orchestration boundary and turned into
// user-facing messages. None of them is fatal to the process.
var (
	ErrInvalidDirection = errors.New("invalid transaction direction")
	ErrInvalidCode      = errors.New("invalid or expired verification code")
	ErrInvalidPin       = errors.New("incorrect PIN")
	ErrPinLocked        = errors.New("PIN verification temporarily locked")
	ErrCodeLocked       = errors.New("code verification temporarily locked")
)

// ValidationError carries per-field messages so callers can surface them
// next to the offending input instead of as a single banner.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records a message for a field, keeping the first message if one exists
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any field message was recorded
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// DeliveryError indicates the outbound code delivery failed. The stored code
// remains valid, so the caller may resend rather than re-verify.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver code to %s: %v", e.Recipient, e.Err)
}

func (e DeliveryError) Unwrap() error {
	return e.Err
}

// StoreError wraps a persistence failure. Callers surface it as a generic
// submit error and assume no partial state was committed.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("store operation %q failed: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error {
	return e.Err
}
