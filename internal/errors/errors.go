// Package errors provides enhanced error types with helpful context and suggestions
package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Pipeline errors
	ErrCodeTranslation    ErrorCode = "TRANSLATION_FAILED"
	ErrCodeUnsafeQuery    ErrorCode = "UNSAFE_QUERY"
	ErrCodeQueryExecution ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSummarization  ErrorCode = "SUMMARIZATION_FAILED"

	// Database errors
	ErrCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseQuery      ErrorCode = "DATABASE_QUERY_FAILED"

	// Authentication errors
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserExists         ErrorCode = "USER_ALREADY_EXISTS"
	ErrCodeTokenCreation      ErrorCode = "TOKEN_CREATION_FAILED"
	ErrCodeSessionCreation    ErrorCode = "SESSION_CREATION_FAILED"
	ErrCodeNotAuthenticated   ErrorCode = "NOT_AUTHENTICATED"

	// Input validation errors
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED_FIELD"
	ErrCodeInvalidCategory ErrorCode = "INVALID_CATEGORY"
)

// EnhancedError represents an error with additional context and helpful information
type EnhancedError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *EnhancedError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))
	if e.Details != "" {
		sb.WriteString(fmt.Sprintf(": %s", e.Details))
	}
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(" (cause: %v)", e.Cause))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error chain unwrapping
func (e *EnhancedError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly error message with suggestions
func (e *EnhancedError) UserMessage() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString(fmt.Sprintf("\n\nDetails: %s", e.Details))
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n\nSuggestion: %s", e.Suggestion))
	}

	return sb.String()
}

// New creates a new EnhancedError
func New(code ErrorCode, message string) *EnhancedError {
	return &EnhancedError{
		Code:     code,
		Message:  message,
		Metadata: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with enhanced context
func Wrap(err error, code ErrorCode, message string) *EnhancedError {
	return &EnhancedError{
		Code:     code,
		Message:  message,
		Cause:    err,
		Metadata: make(map[string]interface{}),
	}
}

// WithDetails adds detailed information about the error
func (e *EnhancedError) WithDetails(details string) *EnhancedError {
	e.Details = details
	return e
}

// WithSuggestion adds a suggestion on how to fix the error
func (e *EnhancedError) WithSuggestion(suggestion string) *EnhancedError {
	e.Suggestion = suggestion
	return e
}

// WithMetadata adds additional metadata to the error
func (e *EnhancedError) WithMetadata(key string, value interface{}) *EnhancedError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// IsCode reports whether err is an EnhancedError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	if enhanced, ok := err.(*EnhancedError); ok {
		return enhanced.Code == code
	}
	return false
}

// Common error constructors with pre-configured messages

// NewUnsafeQueryError creates the fixed rejection for statements the safety gate refuses
func NewUnsafeQueryError(statement string) *EnhancedError {
	return New(ErrCodeUnsafeQuery, "Unsafe query detected! Only SELECT statements are allowed.").
		WithSuggestion("Ask a question about your transactions or budgets, for example: 'How much did I spend on groceries last month?'").
		WithMetadata("statement", statement)
}

// NewQueryExecutionError creates an error for statements the database rejected
func NewQueryExecutionError(err error) *EnhancedError {
	return Wrap(err, ErrCodeQueryExecution, "Could not process query. Please try rephrasing.").
		WithDetails(err.Error())
}

// NewTranslationError creates an error for failed model completions during translation
func NewTranslationError(err error) *EnhancedError {
	return Wrap(err, ErrCodeTranslation, "Failed to translate your question").
		WithDetails("The AI service was unable to produce a query for your question").
		WithSuggestion("Please try again in a moment").
		WithMetadata("retryable", true)
}

// NewSummarizationError creates an error for failed model completions during summarization
func NewSummarizationError(err error) *EnhancedError {
	return Wrap(err, ErrCodeSummarization, "Failed to summarize the query results").
		WithSuggestion("Please try again in a moment").
		WithMetadata("retryable", true)
}

// NewDatabaseQueryError creates an error for database query failures
func NewDatabaseQueryError(err error, operation string) *EnhancedError {
	return Wrap(err, ErrCodeDatabaseQuery, "Database operation failed").
		WithDetails(fmt.Sprintf("Error while %s", operation)).
		WithSuggestion("Please try again. If the problem persists, contact support.")
}

// NewInvalidCredentialsError creates an error for failed login attempts
func NewInvalidCredentialsError() *EnhancedError {
	return New(ErrCodeInvalidCredentials, "Invalid username or password").
		WithSuggestion("Check your credentials and try again")
}

// NewInvalidInputError creates an error for malformed request input
func NewInvalidInputError(field, reason string) *EnhancedError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid input for %s", field)).
		WithDetails(reason)
}
