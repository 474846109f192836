// Package errors provides standardized error handling for the chat service and its BPMN workers.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidQuestion ErrorCode = "INVALID_QUESTION"

	ErrCodeDataAPIRequestFailed ErrorCode = "DATA_API_REQUEST_FAILED"
	ErrCodeDataAPITimeout       ErrorCode = "DATA_API_TIMEOUT"
	ErrCodeDataAPIAuthFailed    ErrorCode = "DATA_API_AUTH_FAILED"

	ErrCodeGenAIRequestFailed ErrorCode = "GENAI_REQUEST_FAILED"
	ErrCodeGenAITimeout       ErrorCode = "GENAI_TIMEOUT"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeLexiconInvalid   ErrorCode = "LEXICON_INVALID"
	ErrCodeActivityNotFound ErrorCode = "ACTIVITY_NOT_FOUND"

	ErrCodeTranscriptWriteFailed ErrorCode = "TRANSCRIPT_WRITE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewInvalidQuestionError rejects an empty or malformed question at the boundary.
func NewInvalidQuestionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQuestion,
		Message:   "Question is required",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDataAPIRequestFailedError wraps a transport failure or non-2xx answer from the Data API.
func NewDataAPIRequestFailedError(endpoint string, err error) *StandardError {
	return newError(ErrCodeDataAPIRequestFailed, "Data API request failed", err, true).
		WithMetadata("endpoint", endpoint)
}

func NewDataAPITimeoutError(endpoint string, err error) *StandardError {
	return newError(ErrCodeDataAPITimeout, "Data API request timed out", err, true).
		WithMetadata("endpoint", endpoint)
}

func NewDataAPIAuthFailedError(err error) *StandardError {
	return newError(ErrCodeDataAPIAuthFailed, "Data API authentication failed", err, false)
}

func NewGenAIRequestFailedError(provider string, err error) *StandardError {
	return newError(ErrCodeGenAIRequestFailed, "Generative model request failed", err, true).
		WithMetadata("provider", provider)
}

func NewGenAITimeoutError(provider string, err error) *StandardError {
	return newError(ErrCodeGenAITimeout, "Generative model request timed out", err, true).
		WithMetadata("provider", provider)
}

// NewCacheUnavailableError is returned when the activity cache was never filled.
func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Activity data is unavailable", err, true)
}

func NewLexiconInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLexiconInvalid,
		Message:   "Intent lexicon is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewActivityNotFoundError(term string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityNotFound,
		Message:   "Activity not found",
		Details:   fmt.Sprintf("search: %s", term),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewTranscriptWriteFailedError(err error) *StandardError {
	return newError(ErrCodeTranscriptWriteFailed, "Transcript write failed", err, true)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDataAPIRequestFailed,
		ErrCodeGenAIRequestFailed,
		ErrCodeTranscriptWriteFailed,
		ErrCodeCacheUnavailable:
		return 3

	case ErrCodeDataAPITimeout:
		return 2

	case ErrCodeGenAITimeout:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "DATA_API"):
		return "DATA_API"
	case strings.HasPrefix(codeStr, "GENAI"):
		return "AI"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "TRANSCRIPT"):
		return "DATABASE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "NOT_FOUND"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code == ErrCodeDataAPITimeout || stdErr.Code == ErrCodeGenAITimeout
	}
	return false
}

// CodeOf extracts the code of a wrapped StandardError, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}
