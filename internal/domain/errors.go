package domain

import "fmt"

// Error taxonomy for the data pipeline. NetworkError is the terminal form of
// a transient failure after the retry budget is spent; DecodeError means the
// upstream response contract changed; InvalidInputError is a caller bug.
// All three are matched with errors.As, never by string.

type NetworkError struct {
	Attempts int
	Cause    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

type DecodeError struct {
	Field string
	Raw   string
	Cause error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decode error at %s (raw %q): %v", e.Field, e.Raw, e.Cause)
	}
	return fmt.Sprintf("decode error: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}
