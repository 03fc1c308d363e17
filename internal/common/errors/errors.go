// Package errors provides standardized error handling for the catalog engine and its HTTP surface.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeSearchIndexUnavailable ErrorCode = "SEARCH_INDEX_UNAVAILABLE"
	ErrCodeSearchQueryFailed      ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexingFailed         ErrorCode = "INDEXING_FAILED"

	ErrCodeStoreQueryFailed ErrorCode = "STORE_QUERY_FAILED"
	ErrCodeStoreTimeout     ErrorCode = "STORE_TIMEOUT"

	ErrCodeAttributeLookupFailed ErrorCode = "ATTRIBUTE_LOOKUP_FAILED"

	ErrCodeDefaultListingFailed ErrorCode = "DEFAULT_LISTING_FAILED"
	ErrCodeInvalidSearchRequest ErrorCode = "INVALID_SEARCH_REQUEST"
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
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// NewSearchIndexUnavailableError creates a retryable error for a failed call into the search index.
func NewSearchIndexUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchIndexUnavailable,
		Message:   "Search index unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSearchQueryFailedError creates an error for a search request the index rejected.
func NewSearchQueryFailedError(index string, status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Search index query error",
		Details:   fmt.Sprintf("index: %s, status: %s", index, status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexingFailedError creates a retryable bulk indexing error.
func NewIndexingFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexingFailed,
		Message:   "Facet document indexing failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreQueryFailedError creates a retryable structured store error.
func NewStoreQueryFailedError(entity string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreQueryFailed,
		Message:   "Structured store query error",
		Details:   fmt.Sprintf("entity: %s, error: %s", entity, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStoreTimeoutError creates a retryable structured store timeout error.
func NewStoreTimeoutError(entity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreTimeout,
		Message:   "Structured store query timeout",
		Details:   fmt.Sprintf("entity: %s", entity),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAttributeLookupFailedError creates a retryable attribute-value lookup error.
func NewAttributeLookupFailedError(value string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAttributeLookupFailed,
		Message:   "Attribute value lookup failed",
		Details:   fmt.Sprintf("value: %s, error: %s", value, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewDefaultListingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDefaultListingFailed,
		Message:   "Default catalog listing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInvalidSearchRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSearchRequest,
		Message:   "Invalid search request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSearchIndexUnavailable,
		ErrCodeStoreQueryFailed,
		ErrCodeAttributeLookupFailed,
		ErrCodeIndexingFailed:
		return 3

	case ErrCodeStoreTimeout,
		ErrCodeDefaultListingFailed:
		return 2

	default:
		return 0
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeSearchIndexUnavailable, ErrCodeSearchQueryFailed, ErrCodeIndexingFailed:
		return "SEARCH"
	case ErrCodeStoreQueryFailed, ErrCodeStoreTimeout, ErrCodeDefaultListingFailed:
		return "DATABASE"
	case ErrCodeAttributeLookupFailed:
		return "EXTERNAL"
	case ErrCodeInvalidSearchRequest:
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// CodeOf returns the code of the first StandardError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code, true
	}
	return "", false
}

// HTTPStatus maps an error code to the status the HTTP layer responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidSearchRequest:
		return http.StatusBadRequest
	case ErrCodeStoreTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeDefaultListingFailed, ErrCodeStoreQueryFailed, ErrCodeSearchIndexUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}
