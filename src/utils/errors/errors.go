// Pairbot error tools
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
)

// Sentinels for precondition failures. Wrap them with Wrapf so callers can
// still match with errors.Is.
var (
	ErrValidation = stderrors.New("validation error")
	ErrMisaligned = fmt.Errorf("%w: series are not aligned", ErrValidation)
	ErrDegenerate = stderrors.New("degenerate input")
)

// WrapE wraps the original error with a static error message.
// Both errors stay matchable with errors.Is.
func WrapE(staticErr, originalErr error) error {
	_, file, line, _ := runtime.Caller(1)
	return fmt.Errorf("%s:%d: %w: %w", file, line, staticErr, originalErr)
}

func Wrap(err error, msg string) error {
	_, file, line, _ := runtime.Caller(1)
	return fmt.Errorf("%s:%d: %w: %s", file, line, err, msg)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	_, file, line, _ := runtime.Caller(1)
	return fmt.Errorf("%s:%d: %w: %s", file, line, err, fmt.Sprintf(format, args...))
}

// New creates a new error annotated with the caller's file and line.
func New(text string) error {
	_, file, line, _ := runtime.Caller(1)
	return fmt.Errorf("%s:%d: %s", file, line, text)
}

func Newf(format string, args ...any) error {
	_, file, line, _ := runtime.Caller(1)
	return fmt.Errorf("%s:%d: %s", file, line, fmt.Sprintf(format, args...))
}

// Validationf builds a validation error for a violated precondition.
func Validationf(format string, args ...any) error {
	_, file, line, _ := runtime.Caller(1)
	return fmt.Errorf("%s:%d: %w: %s", file, line, ErrValidation, fmt.Sprintf(format, args...))
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}
