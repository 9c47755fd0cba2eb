// Package util provides logging, error types and address helpers shared by
// the collection pipeline.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	// ErrInvalidConfig marks a deployment defect. Fatal, never retried.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNoCredentials means no credential rule matched a hostname.
	ErrNoCredentials = errors.New("no matching credentials")
	// ErrNoResult is the explicit "no result" outcome of a collection,
	// distinct from an empty but valid table.
	ErrNoResult = errors.New("no result")
	// ErrUnsupportedTransport is returned for credential transports
	// without a registered dialer.
	ErrUnsupportedTransport = errors.New("unsupported transport")
	// ErrNoPlatform means the device type has no CLI platform registered.
	ErrNoPlatform = errors.New("no CLI platform for device type")
)

// ConfigError describes a configuration defect with context
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// NewConfigError creates a new configuration error
func NewConfigError(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

// SessionError is the single error reported for a failed CLI session.
// Step names the stage that failed (connect, paging, elevate, command,
// restore, close).
type SessionError struct {
	Host string
	Step string
	Err  error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %s: %v", e.Host, e.Step, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError creates a session error
func NewSessionError(host, step string, err error) *SessionError {
	return &SessionError{Host: host, Step: step, Err: err}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid configuration: " + e.Errors[0]
	}
	return fmt.Sprintf("invalid configuration:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// AddAll appends messages unconditionally
func (v *ValidationBuilder) AddAll(messages []string) *ValidationBuilder {
	v.errors = append(v.errors, messages...)
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
