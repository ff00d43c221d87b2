package manifest

import "strings"

// Result carries the outcome of resolving a single item.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok wraps a successful value.
func Ok[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// Fail wraps an error.
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// OK reports whether the result holds a value.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// FirstNonEmpty returns the first candidate that is not blank after trimming,
// trimmed. It returns "" when every candidate is blank.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			return trimmed
		}
	}

	return ""
}
