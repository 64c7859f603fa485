// Package cli maps errors to process exit codes.
//
// Codes follow the command conventions: 0 success, 1 normal-but-incomplete
// (and generic failures), 2 fatal validation or action-needed.
package cli

import (
	"errors"
	"fmt"
)

// Conventional exit codes.
const (
	CodeOK           = 0
	CodeIncomplete   = 1
	CodeActionNeeded = 2
)

// ExitError carries an explicit exit code through cobra's error return.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Exitf builds an ExitError with a formatted message.
func Exitf(code int, format string, args ...any) *ExitError {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches an exit code to an existing error. A nil error stays nil.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// Code extracts the exit code from an error chain. Nil is 0; errors without
// an ExitError default to 1.
func Code(err error) int {
	if err == nil {
		return CodeOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return CodeIncomplete
}
