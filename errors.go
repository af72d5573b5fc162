package future

import "errors"

// Contract violations. These are programming errors, not runtime conditions,
// so the offending call panics with the sentinel as the panic value.
var (
	// ErrResultSet reports a second attempt to satisfy the same promise.
	ErrResultSet = errors.New("promise already satisfied")

	// ErrCallbackSet reports a second attempt to claim the single
	// continuation slot of a future.
	ErrCallbackSet = errors.New("continuation already set")

	// ErrFutureRetrieved reports a second call to Promise.Future.
	ErrFutureRetrieved = errors.New("future already retrieved")

	// ErrEmptyTry reports an attempt to satisfy a promise with an empty Try.
	ErrEmptyTry = errors.New("try holds nothing")
)

// Expected runtime conditions, delivered as ordinary error values.
var (
	// ErrNotReady is returned by Future.Result before the promise is
	// satisfied.
	ErrNotReady = errors.New("future not ready")

	// ErrBrokenPromise is the outcome delivered to the consumer when the
	// producer releases its handle without ever satisfying the promise.
	ErrBrokenPromise = errors.New("broken promise")

	// ErrPanic marks outcomes synthesized from a recovered panic. Match it
	// with errors.Is; the concrete value is a *PanicError.
	ErrPanic = errors.New("async panic")

	// ErrTimeout is delivered by Timeout and Until when the input future
	// does not complete in time.
	ErrTimeout = errors.New("future timeout")
)
