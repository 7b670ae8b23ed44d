// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package vitality

import (
	"bytes"
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Error Types
// -----------------------------------------------------------------------------

// ErrorType categorizes engine failures for programmatic handling.
type ErrorType int

const (
	// ErrorNetwork indicates the backend was unreachable (request never
	// produced an HTTP response).
	ErrorNetwork ErrorType = iota

	// ErrorServer indicates the backend answered with a non-2xx status.
	// The Detail field carries the server's "detail" string.
	ErrorServer

	// ErrorValidation indicates a client-side rejection. Validation
	// failures are raised before any optimistic mutation is applied, so
	// they never require a rollback.
	ErrorValidation

	// ErrorNotFound indicates the referenced entity is not in the local
	// collection.
	ErrorNotFound
)

// String returns the error type as a string for logging.
func (t ErrorType) String() string {
	switch t {
	case ErrorNetwork:
		return "NETWORK_FAILURE"
	case ErrorServer:
		return "SERVER_ERROR"
	case ErrorValidation:
		return "VALIDATION_ERROR"
	case ErrorNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// EngineError provides structured error information for engine operations.
// Mutation failures of type ErrorNetwork or ErrorServer always arrive
// after the controller has already rolled the speculative state back.
type EngineError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType

	// Message is a human-readable error description, rendered in the
	// persistent error banner.
	Message string

	// Detail provides technical information for debugging (wire status,
	// server detail string).
	Detail string

	// Remediation suggests how to fix the issue.
	Remediation string

	// cause is the wrapped underlying error, if any.
	cause error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *EngineError) Unwrap() error {
	return e.cause
}

// FullError returns a detailed error message including remediation.
func (e *EngineError) FullError() string {
	var buf bytes.Buffer
	buf.WriteString(e.Message)
	if e.Detail != "" {
		buf.WriteString("\n\nDetails: ")
		buf.WriteString(e.Detail)
	}
	if e.Remediation != "" {
		buf.WriteString("\n\nTo fix:\n")
		buf.WriteString(e.Remediation)
	}
	return buf.String()
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(cause error) *EngineError {
	return &EngineError{
		Type:        ErrorNetwork,
		Message:     "backend unreachable",
		Detail:      cause.Error(),
		Remediation: "Check that the stasis backend is running and backend.base_url in ~/.stasis/stasis.yaml is correct.",
		cause:       cause,
	}
}

// NewServerError wraps a non-2xx backend response.
func NewServerError(statusCode int, detail string) *EngineError {
	msg := detail
	if msg == "" {
		msg = fmt.Sprintf("backend returned status %d", statusCode)
	}
	return &EngineError{
		Type:    ErrorServer,
		Message: msg,
		Detail:  fmt.Sprintf("status=%d detail=%q", statusCode, detail),
	}
}

// NewValidationError reports a client-side rejection.
func NewValidationError(message string) *EngineError {
	return &EngineError{
		Type:    ErrorValidation,
		Message: message,
	}
}

// NewNotFoundError reports a missing local entity.
func NewNotFoundError(kind, id string) *EngineError {
	return &EngineError{
		Type:    ErrorNotFound,
		Message: fmt.Sprintf("%s %s not found", kind, id),
	}
}

// IsType reports whether err is an EngineError of the given type.
func IsType(err error, t ErrorType) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Type == t
	}
	return false
}
