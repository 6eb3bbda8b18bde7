// Package errors carries stack traces on errors that cross goroutine or
// package boundaries, and recovers panics into errors.
package errors

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// New creates an error with a stack trace attached.
func New(msg string) error {
	return goerrors.Wrap(errors.New(msg), 1)
}

// WithStackTrace wraps err with the caller's stack trace. An error that already
// carries a stack is returned unchanged. Nil stays nil.
func WithStackTrace(err error) error {
	if err == nil {
		return nil
	}

	return goerrors.Wrap(err, 1)
}

// WithStackTraceAndPrefix is WithStackTrace with a formatted message prepended.
func WithStackTraceAndPrefix(err error, message string, args ...any) error {
	if err == nil {
		return nil
	}

	return goerrors.WrapPrefix(err, fmt.Sprintf(message, args...), 1)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap strips the stack-trace wrapper, if any.
func Unwrap(err error) error {
	if err == nil {
		return nil
	}

	var goErr *goerrors.Error
	if errors.As(err, &goErr) {
		return goErr.Err
	}

	return err
}

// PrintErrorWithStackTrace renders err, including its stack when it has one.
func PrintErrorWithStackTrace(err error) string {
	if err == nil {
		return ""
	}

	var goErr *goerrors.Error
	if errors.As(err, &goErr) {
		return goErr.ErrorStack()
	}

	return err.Error()
}

// Recover converts a panic into an error and hands it to onPanic. It must be
// called directly from a defer statement.
func Recover(onPanic func(cause error)) {
	if rec := recover(); rec != nil {
		err, isError := rec.(error)
		if !isError {
			err = fmt.Errorf("%v", rec)
		}
		onPanic(goerrors.Wrap(err, 2))
	}
}
