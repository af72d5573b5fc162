// Package try provides Try, a small value container that holds the outcome of
// an operation: a value, an error, or nothing at all.
//
// Try is the unit of exchange between the producer and the consumer side of a
// future. Unlike a plain (value, error) pair it has an explicit empty state,
// which lets "no outcome yet" be represented in-band, and it keeps partial
// failures addressable when outcomes are collected in bulk (see the join
// combinators in the root package).
package try

import "errors"

// ErrEmpty is returned by Get when the Try holds neither a value nor an error.
var ErrEmpty = errors.New("empty try")

type state uint8

const (
	empty state = iota
	success
	failure
)

// Try holds either a value of type T, an error, or nothing.
//
// The zero value is the empty state. Try is a plain value: copies are
// independent and safe to pass across goroutine boundaries once published.
type Try[T any] struct {
	value T
	err   error
	state state
}

// Success returns a Try holding value.
func Success[T any](value T) Try[T] {
	return Try[T]{
		value: value,
		state: success,
	}
}

// Fail returns a Try holding err. It panics if err is nil: a failure must
// carry its cause.
func Fail[T any](err error) Try[T] {
	if err == nil {
		panic("error is nil")
	}
	return Try[T]{
		err:   err,
		state: failure,
	}
}

// IsEmpty reports whether the Try holds neither a value nor an error.
func (t Try[T]) IsEmpty() bool {
	return t.state == empty
}

// IsSuccess reports whether the Try holds a value.
func (t Try[T]) IsSuccess() bool {
	return t.state == success
}

// IsFailure reports whether the Try holds an error.
func (t Try[T]) IsFailure() bool {
	return t.state == failure
}

// Value returns the held value, or the zero value of T unless IsSuccess.
func (t Try[T]) Value() T {
	return t.value
}

// Err returns the held error, or nil unless IsFailure.
func (t Try[T]) Err() error {
	return t.err
}

// Get collapses the Try into Go's native pair form: (value, nil) on success,
// (zero, err) on failure, and (zero, ErrEmpty) when nothing is held.
func (t Try[T]) Get() (T, error) {
	switch t.state {
	case success:
		return t.value, nil
	case failure:
		var zero T
		return zero, t.err
	default:
		var zero T
		return zero, ErrEmpty
	}
}
