// errors.go: structured error handling for growtable operations
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes.
// No Handle operation returns a Go error: outcomes are encoded in a
// ReturnCode or a boolean. New returns one only for a degenerate Hasher,
// and a closed Handle panics with one. No code path in the package
// produces the allocation-failure error.
package growtable

import (
	goerrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for growtable operations.
const (
	// Configuration errors (1xxx)
	ErrCodeInvalidConfig   errors.ErrorCode = "GROWTABLE_INVALID_CONFIG"
	ErrCodeInvalidCapacity errors.ErrorCode = "GROWTABLE_INVALID_CAPACITY"
	ErrCodeInvalidHasher   errors.ErrorCode = "GROWTABLE_INVALID_HASHER"

	// Operation errors (2xxx)
	ErrCodeAllocationFailed errors.ErrorCode = "GROWTABLE_ALLOCATION_FAILED"
	ErrCodeHandleClosed     errors.ErrorCode = "GROWTABLE_HANDLE_CLOSED"
	ErrCodeReservedKey      errors.ErrorCode = "GROWTABLE_RESERVED_KEY"

	// Internal errors (5xxx)
	ErrCodeInternalError errors.ErrorCode = "GROWTABLE_INTERNAL_ERROR"
)

const (
	msgInvalidCapacity  = "invalid initial capacity: must be greater than 0"
	msgInvalidHasher    = "invalid hasher: produced degenerate output during sanity probe"
	msgAllocationFailed = "failed to allocate successor base table during growth"
	msgHandleClosed     = "operation attempted on a closed or moved handle"
	msgReservedKey      = "key collides with a reserved sentinel value"
	msgInternalError    = "internal growtable error"
)

// NewErrInvalidCapacity creates an error for an invalid initial capacity.
func NewErrInvalidCapacity(capacity int) error {
	return errors.NewWithContext(ErrCodeInvalidCapacity, msgInvalidCapacity, map[string]interface{}{
		"provided_capacity": capacity,
		"minimum_required":  1,
	})
}

// NewErrInvalidHasher creates an error for a hasher that fails the sanity probe.
func NewErrInvalidHasher() error {
	return errors.NewWithContext(ErrCodeInvalidHasher, msgInvalidHasher, nil)
}

// NewErrAllocationFailed creates an error for a failed successor table allocation.
func NewErrAllocationFailed(requestedCapacity uint64, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeAllocationFailed, msgAllocationFailed).
			WithContext("requested_capacity", requestedCapacity).
			WithSeverity("critical")
	}
	return errors.NewWithContext(ErrCodeAllocationFailed, msgAllocationFailed, map[string]interface{}{
		"requested_capacity": requestedCapacity,
	}).WithSeverity("critical")
}

// NewErrHandleClosed creates an error for an operation on a closed handle.
func NewErrHandleClosed(handleID uint64) error {
	return errors.NewWithField(ErrCodeHandleClosed, msgHandleClosed, "handle_id", handleID)
}

// NewErrReservedKey creates an error for a reserved sentinel key.
func NewErrReservedKey(key uint64) error {
	return errors.NewWithField(ErrCodeReservedKey, msgReservedKey, "key", key)
}

// NewErrInternal creates a generic internal error.
func NewErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternalError, msgInternalError).
			WithContext("operation", operation).
			WithSeverity("warning")
	}
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "operation", operation).
		WithSeverity("warning")
}

// IsHandleClosed reports whether err is a closed-handle error.
func IsHandleClosed(err error) bool {
	return errors.HasCode(err, ErrCodeHandleClosed)
}

// IsAllocationFailed reports whether err is an allocation-failure error.
func IsAllocationFailed(err error) bool {
	return errors.HasCode(err, ErrCodeAllocationFailed)
}

// IsRetryable reports whether err can be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from err, if any.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}
