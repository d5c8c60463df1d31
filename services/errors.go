package services

import "net/http"

// Machine-readable error codes surfaced in the API error envelope.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeServerError     = "SERVER_ERROR"
)

// ServiceError represents a typed error with an HTTP status code, a
// machine-readable code and an optional details map.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewValidationError builds a 400 VALIDATION_ERROR.
func NewValidationError(message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Code: CodeValidationError, Message: message, Details: details}
}

// NewForbidden builds a 403 FORBIDDEN.
func NewForbidden(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusForbidden, Code: CodeForbidden, Message: message}
}

// NewNotFound builds a 404 NOT_FOUND.
func NewNotFound(message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Code: CodeNotFound, Message: message, Details: details}
}

// NewConflict builds a 409 CONFLICT.
func NewConflict(message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{StatusCode: http.StatusConflict, Code: CodeConflict, Message: message, Details: details}
}

// NewDependencyError builds a 500 SERVER_ERROR for a failing collaborator
// (typically the database). The underlying error is logged by the caller,
// never exposed to the client.
func NewDependencyError(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Code: CodeServerError, Message: message}
}
