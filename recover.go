package future

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
)

// PanicError is the failure outcome synthesized when a function run by this
// package panics. It satisfies errors.Is(err, ErrPanic) and exposes the
// panicking goroutine's call stack in the github.com/pkg/errors format, so
// %+v prints the frames.
type PanicError struct {
	Value   any
	callers []uintptr
}

func newPanicError(skip int, value any) *PanicError {
	var callers [32]uintptr
	n := runtime.Callers(skip+1, callers[:])
	return &PanicError{
		Value:   value,
		callers: callers[:n],
	}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%v: %v", ErrPanic, e.Value)
}

func (e *PanicError) Unwrap() error {
	return ErrPanic
}

func (e *PanicError) StackTrace() errors.StackTrace {
	if e == nil {
		return nil
	}
	frames := make([]errors.Frame, len(e.callers))
	for i, pc := range e.callers {
		frames[i] = errors.Frame(pc)
	}
	return frames
}
