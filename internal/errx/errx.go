// Package errx provides small helpers for attaching causes and context to
// sentinel errors while keeping errors.Is working on both ends.
package errx

import "fmt"

// Wrap attaches a cause to a sentinel error.
// errors.Is matches both the sentinel and the cause.
func Wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// With appends formatted context to a sentinel error.
// The format string may itself use %w to chain a cause.
func With(sentinel error, format string, args ...any) error {
	fmtArgs := make([]any, 0, len(args)+1)
	fmtArgs = append(fmtArgs, sentinel)
	fmtArgs = append(fmtArgs, args...)
	return fmt.Errorf("%w"+format, fmtArgs...)
}
