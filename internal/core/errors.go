package core

import (
	"errors"
	"fmt"
)

// The error taxonomy of the tool surface. Every public operation maps its
// failure onto exactly one of these kinds before it crosses the boundary,
// and the messages are written for direct display: no file paths, no driver
// internals. The underlying cause stays wrapped for the log.

// StorageError reports an I/O, schema, or constraint failure in the ledger
// store.
type StorageError struct {
	Op  string // short human description of the failed operation
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure: %s", e.Op)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err as a StorageError for the given operation.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// InvalidArgumentError reports a malformed tool argument: a bad period
// combination, a non-positive limit, a missing required field.
type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string { return e.Msg }

func NewInvalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{Msg: fmt.Sprintf(format, args...)}
}

func IsInvalidArgument(err error) bool {
	var ie *InvalidArgumentError
	return errors.As(err, &ie)
}

// NotFoundError reports a missing schema object. A ledger without its
// expenses table is a storage integrity problem, not an empty result.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NewNotFound(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
