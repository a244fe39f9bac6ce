// Package services provides the business logic layer between the HTTP
// handlers and the analytics packages. Every operation works on one
// immutable Dataset snapshot taken from the session.
package services

import (
	"errors"

	"github.com/simlens/simlens/internal/dataset"
	"github.com/simlens/simlens/internal/source"
)

// Error codes
const (
	CodeDataNotFound       = "DATA_NOT_FOUND"
	CodeNoNumericData      = "NO_NUMERIC_DATA"
	CodeInvalidParameter   = "INVALID_PARAMETER"
	CodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	CodeMalformedCSV       = "MALFORMED_CSV"
	CodeInternal           = "INTERNAL_ERROR"
	noDataAvailableMessage = "no data available"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// invalidParameter reports a bad request parameter by name
func invalidParameter(name, message string) *ServiceError {
	return NewServiceErrorWithDetails(CodeInvalidParameter, message, map[string]interface{}{
		"parameter": name,
	})
}

// translate maps source and parser errors onto service error codes
func translate(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	switch {
	case errors.Is(err, source.ErrNotFound):
		return NewServiceErrorWithDetails(CodeDataNotFound, noDataAvailableMessage, map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, dataset.ErrMalformedRow), errors.Is(err, dataset.ErrMalformedInput):
		return NewServiceErrorWithDetails(CodeMalformedCSV, "simulation output could not be parsed", map[string]interface{}{
			"error": err.Error(),
		})
	default:
		return NewServiceErrorWithDetails(CodeInternal, err.Error(), nil)
	}
}
