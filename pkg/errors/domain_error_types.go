package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DomainErrorType represents the category of domain error
type DomainErrorType string

const (
	// DomainValidationError indicates input validation failure
	DomainValidationError DomainErrorType = "VALIDATION_ERROR"

	// DomainBusinessRuleError indicates a business rule violation
	DomainBusinessRuleError DomainErrorType = "BUSINESS_RULE_ERROR"

	// DomainNotFoundError indicates a resource was not found
	DomainNotFoundError DomainErrorType = "NOT_FOUND"

	// DomainConflictError indicates a conflict with existing state
	DomainConflictError DomainErrorType = "CONFLICT"

	// DomainIsolationError indicates a cross-profile reference
	DomainIsolationError DomainErrorType = "ISOLATION_ERROR"

	// DomainDependencyError indicates an external collaborator failure
	DomainDependencyError DomainErrorType = "DEPENDENCY_ERROR"

	// DomainInfrastructureError indicates an infrastructure-level failure
	DomainInfrastructureError DomainErrorType = "INFRASTRUCTURE_ERROR"

	// DomainTimeoutError indicates operation timeout
	DomainTimeoutError DomainErrorType = "TIMEOUT_ERROR"
)

// DomainError represents a domain-specific error with rich context
type DomainError struct {
	Type       DomainErrorType        `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

// NewDomainError creates a new domain error
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	return &DomainError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		Retryable:  false,
		StatusCode: domainErrorTypeToStatusCode(errorType),
	}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// clone copies the error so the shared sentinel instances stay pristine
func (e *DomainError) clone() *DomainError {
	details := make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		details[k] = v
	}
	return &DomainError{
		Type:       e.Type,
		Code:       e.Code,
		Message:    e.Message,
		Details:    details,
		Cause:      e.Cause,
		Retryable:  e.Retryable,
		StatusCode: e.StatusCode,
	}
}

// WithCause returns a copy of the error with a cause attached
func (e *DomainError) WithCause(cause error) *DomainError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetail returns a copy of the error with a detail added
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	c := e.clone()
	c.Details[key] = value
	return c
}

// WithRetryable returns a copy of the error with retryability set
func (e *DomainError) WithRetryable(retryable bool) *DomainError {
	c := e.clone()
	c.Retryable = retryable
	return c
}

// Is checks if the error is of a specific type
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// domainErrorTypeToStatusCode maps error types to HTTP status codes
func domainErrorTypeToStatusCode(errorType DomainErrorType) int {
	switch errorType {
	case DomainValidationError:
		return 400
	case DomainBusinessRuleError:
		return 422
	case DomainNotFoundError:
		return 404
	case DomainConflictError:
		return 409
	case DomainIsolationError:
		return 422
	case DomainDependencyError:
		return 502
	case DomainTimeoutError:
		return 504
	case DomainInfrastructureError:
		return 500
	default:
		return 500
	}
}

// Pre-defined domain errors. Callers clone these via errors.Is checks rather
// than mutating the shared instances.

var (
	// Profile errors
	ErrUnknownProfile = NewDomainError(
		DomainNotFoundError,
		"UNKNOWN_PROFILE",
		"The requested voice profile does not exist",
	)

	ErrProfileNameRequired = NewDomainError(
		DomainValidationError,
		"PROFILE_NAME_REQUIRED",
		"Profile name is required",
	)

	// Node errors
	ErrNodeNotFound = NewDomainError(
		DomainNotFoundError,
		"NODE_NOT_FOUND",
		"The requested idea node does not exist",
	)

	ErrForeignNode = NewDomainError(
		DomainIsolationError,
		"FOREIGN_NODE",
		"Node belongs to a different voice profile",
	)

	ErrMissingVector = NewDomainError(
		DomainBusinessRuleError,
		"MISSING_VECTOR",
		"Node has no embedding and no text to derive one from",
	)

	ErrIdeaTextRequired = NewDomainError(
		DomainValidationError,
		"IDEA_TEXT_REQUIRED",
		"Idea text is required",
	)

	// Autolink errors
	ErrUnknownPreset = NewDomainError(
		DomainValidationError,
		"UNKNOWN_PRESET",
		"Unknown autolink preset",
	)

	ErrSelfReferentialEdge = NewDomainError(
		DomainBusinessRuleError,
		"SELF_REFERENTIAL_EDGE",
		"Cannot link a node to itself",
	)

	ErrDuplicateEdge = NewDomainError(
		DomainConflictError,
		"DUPLICATE_EDGE",
		"An edge between these nodes already exists",
	)

	// Collaborator errors
	ErrEmbeddingUnavailable = NewDomainError(
		DomainDependencyError,
		"EMBEDDING_UNAVAILABLE",
		"Embedding collaborator is unavailable",
	).WithRetryable(true)

	ErrGenerationUnavailable = NewDomainError(
		DomainDependencyError,
		"GENERATION_UNAVAILABLE",
		"Generation collaborator is unavailable",
	).WithRetryable(true)

	// Persistence errors
	ErrPersistenceFailure = NewDomainError(
		DomainInfrastructureError,
		"PERSISTENCE_FAILURE",
		"Storage operation failed, no partial state was written",
	).WithRetryable(true)

	ErrConcurrentModification = NewDomainError(
		DomainConflictError,
		"CONCURRENT_MODIFICATION",
		"The resource was modified by another process",
	).WithRetryable(true)

	ErrProfileLocked = NewDomainError(
		DomainConflictError,
		"PROFILE_LOCKED",
		"Another operation is running for this profile",
	).WithRetryable(true)

	ErrEventPublishFailed = NewDomainError(
		DomainInfrastructureError,
		"EVENT_PUBLISH_FAILED",
		"Failed to publish domain event",
	).WithRetryable(true)
)

// IsDomainCode reports whether err is (or wraps) a domain error with the
// given code
func IsDomainCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// AsDomainError extracts a DomainError from an error chain
func AsDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// ValidationErrors aggregates multiple validation errors
type ValidationErrors struct {
	Errors []*DomainError `json:"errors"`
}

// NewValidationErrors creates a new validation errors collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]*DomainError, 0),
	}
}

// Add adds a validation error
func (v *ValidationErrors) Add(field string, message string) {
	err := NewDomainError(DomainValidationError, "FIELD_VALIDATION_ERROR", message).
		WithDetail("field", field)
	v.Errors = append(v.Errors, err)
}

// AddError adds a pre-existing domain error
func (v *ValidationErrors) AddError(err *DomainError) {
	v.Errors = append(v.Errors, err)
}

// HasErrors returns true if there are validation errors
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}

	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return fmt.Sprintf("Validation failed: %s", strings.Join(messages, "; "))
}

// ToMap converts validation errors to a map for JSON serialization
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string)

	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = "general"
		}
		result[field] = append(result[field], err.Message)
	}

	return result
}

// DomainErrorResponse represents the API error response format for domain errors
type DomainErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      DomainErrorType        `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// NewDomainErrorResponse creates an error response from a domain error
func NewDomainErrorResponse(err *DomainError, requestID string) *DomainErrorResponse {
	return &DomainErrorResponse{
		Error:     true,
		Type:      err.Type,
		Code:      err.Code,
		Message:   err.Message,
		Details:   err.Details,
		Retryable: err.Retryable,
		RequestID: requestID,
		Timestamp: fmt.Sprintf("%d", timeNow().Unix()),
	}
}

// Helper function for testing (can be mocked)
var timeNow = func() time.Time {
	return time.Now()
}
