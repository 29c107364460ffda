// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package errors provides typed errors for the career mentor dispatcher.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies mentor errors for callers, logs and metrics.
type ErrorCode string

const (
	// CodeExternalService indicates the text generation backend failed
	// (network, quota, malformed response).
	CodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// CodeInvalidArgument indicates the caller supplied an unusable value,
	// such as an unknown role name.
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// CodeTimeout indicates a caller-level deadline was exceeded.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeNotFound indicates a session or resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeInternal indicates an internal error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

// MentorError is a typed error carrying a code and structured context.
// It can be unwrapped with errors.As and errors.Is.
type MentorError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Recoverable bool
	StatusCode  int
}

// Error implements the error interface.
func (e *MentorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the cause.
func (e *MentorError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging and API bodies.
func (e *MentorError) MarshalJSON() ([]byte, error) {
	out := struct {
		Code        string                 `json:"code"`
		Message     string                 `json:"message"`
		Err         string                 `json:"error,omitempty"`
		Context     map[string]interface{} `json:"context,omitempty"`
		Recoverable bool                   `json:"recoverable"`
	}{
		Code:        string(e.Code),
		Message:     e.Message,
		Context:     e.Context,
		Recoverable: e.Recoverable,
	}
	if e.Err != nil {
		out.Err = e.Err.Error()
	}
	return json.Marshal(out)
}

// New creates a new MentorError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *MentorError {
	return &MentorError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		StatusCode: codeToStatusCode(code),
	}
}

// WithContext adds a key-value pair to the error context.
func (e *MentorError) WithContext(key string, value interface{}) *MentorError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether a caller may retry the operation.
func (e *MentorError) WithRecoverable(recoverable bool) *MentorError {
	e.Recoverable = recoverable
	return e
}

// ExternalService wraps a text generation failure.
func ExternalService(cause error, component string) *MentorError {
	return New(CodeExternalService, "text generation failed", cause).
		WithContext("component", component).
		WithRecoverable(true)
}

// InvalidArgument reports a bad caller-supplied value.
func InvalidArgument(msg string) *MentorError {
	return New(CodeInvalidArgument, msg, nil)
}

// NotFound reports a missing resource.
func NotFound(resource, id string) *MentorError {
	return New(CodeNotFound, resource+" not found", nil).
		WithContext("resource", resource).
		WithContext("id", id)
}

// As returns the first MentorError in err's chain.
func As(err error) (*MentorError, bool) {
	var me *MentorError
	if stderrors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// IsCode reports whether err's chain contains a MentorError with the given code.
func IsCode(err error, code ErrorCode) bool {
	me, ok := As(err)
	return ok && me.Code == code
}

// CodeOf returns the code of the first MentorError in err's chain, or
// CodeInternal for foreign errors. A nil error yields an empty code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if me, ok := As(err); ok {
		return me.Code
	}
	return CodeInternal
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *MentorError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}

func codeToStatusCode(code ErrorCode) int {
	switch code {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeExternalService:
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
