// Package errors provides error types and handling for fieldsync operations.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error represents a sync operation error with context about the
// operation that failed. It wraps the underlying storage or filesystem
// error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "refresh", "download", "plan")
	Op string

	// Bucket is the cloud bucket name (if applicable)
	Bucket string

	// Key is the object key or file path (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("fieldsync.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("fieldsync.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("fieldsync.%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("fieldsync.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Err:    err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for common sync operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrNoSourceData indicates that the job's source side has nothing to
	// offer. Its text is surfaced verbatim as the operation result error.
	ErrNoSourceData = errors.New("No source data found")

	// ErrUnknownOperation indicates an unrecognized transfer operation type
	ErrUnknownOperation = errors.New("fieldsync: unknown operation type")

	// ErrSizeMismatch indicates that a transferred file failed size verification
	ErrSizeMismatch = errors.New("fieldsync: size verification mismatch")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("fieldsync: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("fieldsync: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("fieldsync: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("fieldsync: invalid input")

	// ErrInvalidCoordinate indicates a malformed or incomplete coordinate
	ErrInvalidCoordinate = errors.New("fieldsync: invalid coordinate")
)

// ClassifyS3 maps an object store failure onto the package's sentinel
// errors so callers can test it with errors.Is. The SDK surfaces the
// service's error code in the error text, so classification matches on
// that code. Unrecognized failures pass through unchanged.
func ClassifyS3(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound"):
		return fmt.Errorf("%w: %v", ErrObjectNotFound, err)
	case strings.Contains(msg, "NoSuchBucket"):
		return fmt.Errorf("%w: %v", ErrBucketNotFound, err)
	case strings.Contains(msg, "AccessDenied"):
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	return err
}

// IsObjectNotFound checks if an error indicates that an object was not found.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsAccessDenied checks if an error indicates denied access to a resource.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsSizeMismatch checks if an error indicates a failed size verification.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsSizeMismatch(err error) bool {
	return errors.Is(err, ErrSizeMismatch)
}

// IsInvalidInput checks if an error indicates invalid input.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
