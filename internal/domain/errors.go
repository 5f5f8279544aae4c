package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrMedicineNotFound is the sentinel returned when a name resolves to no
// catalog record. It is an expected outcome, not a failure: callers branch on
// it with errors.Is and surface "not found" to the user.
var ErrMedicineNotFound = errors.New("medicine not found in reference index")

// APIError represents a standardized error response from the HTTP layer.
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput   = "INVALID_INPUT"
	ErrCatalogBuild   = "CATALOG_BUILD_FAILURE"
	ErrExternalAPI    = "EXTERNAL_API_ERROR"
	ErrNotFound       = "NOT_FOUND"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// CatalogError signals that the reference index could not be built from the
// supplied catalog data. It is the only fatal error class in the core: no
// extraction or interaction logic may run against an invalid index.
type CatalogError struct {
	Reason string
	Err    error
}

func (e *CatalogError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog build failure: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("catalog build failure: %s", e.Reason)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
