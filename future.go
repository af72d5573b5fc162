// Package future provides a promise/future pair built on an explicit shared
// state: a result slot, a single continuation, a delivery gate and a
// scheduler hook, shared by exactly one producer handle and one consumer
// handle. Inspired by https://github.com/jizhuozhi/go-future and by the
// shared-state design of Folly futures.
package future

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/saltfishpr/go-future/try"
)

// Promise is the producer ("push") end of the channel: it stores a value or
// an error in the shared state exactly once, which synchronizes-with (as
// defined in Go's memory model) the delivery observed by the consumer
// through the Future.
//
// A Promise is satisfied at most once; a second Set panics with
// ErrResultSet. When the producer is done with its handle it calls Release,
// and a Release before any Set turns into an ErrBrokenPromise outcome for
// the consumer.
//
// A Promise must not be copied after first use.
type Promise[T any] struct {
	core      *core[T]
	retrieved atomic.Bool
	released  atomic.Bool
}

// NewPromise creates a Promise with a fresh shared state.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{
		core: newCore[T](),
	}
}

// Future retrieves the consumer handle of the shared state. There is only
// one: a second call panics with ErrFutureRetrieved.
func (p *Promise[T]) Future() *Future[T] {
	if !p.retrieved.CompareAndSwap(false, true) {
		panic(ErrFutureRetrieved)
	}
	return &Future[T]{core: p.core}
}

// SetValue satisfies the promise with a value.
func (p *Promise[T]) SetValue(val T) {
	p.core.setResult(try.Success(val))
}

// SetError satisfies the promise with an error.
func (p *Promise[T]) SetError(err error) {
	p.core.setResult(try.Fail[T](err))
}

// SetTry satisfies the promise with a complete outcome. An empty Try panics
// with ErrEmptyTry.
func (p *Promise[T]) SetTry(t try.Try[T]) {
	p.core.setResult(t)
}

// Release drops the producer handle. If the promise was never satisfied the
// consumer is delivered ErrBrokenPromise. Release is idempotent and safe
// under defer; after it the handle must not be used to satisfy the promise.
func (p *Promise[T]) Release() {
	if !p.released.CompareAndSwap(false, true) {
		return
	}
	p.core.detachPromise()
}

// Future is the consumer ("pull") end of the channel. The outcome can be
// read three ways, all observing the same shared state:
//
//  1. Poll with Ready and Result. Result never blocks and never consumes the
//     outcome: before the promise is satisfied it returns ErrNotReady, after
//     that the same outcome on every call.
//
//  2. Register with Subscribe. The continuation is the future's single
//     callback slot: it runs exactly once, as soon as an outcome is in and
//     the future is active, on the scheduler installed with Via (or inline
//     on whichever goroutine completed the last condition when none is
//     installed).
//
//  3. Block with Get, which is Subscribe plus a context-aware wait. Get and
//     Subscribe compete for the same slot, so mixing them on one future
//     panics with ErrCallbackSet.
//
// A Future must not be copied after first use.
type Future[T any] struct {
	core     *core[T]
	released atomic.Bool

	once sync.Once
	done chan struct{} // closed once val holds the delivered outcome
	val  try.Try[T]
}

// Result returns the outcome if the promise has been satisfied and
// ErrNotReady otherwise. It never blocks.
func (f *Future[T]) Result() (T, error) {
	t, err := f.core.getTry()
	if err != nil {
		var zero T
		return zero, err
	}
	return t.Get()
}

// Ready reports whether the promise has been satisfied.
func (f *Future[T]) Ready() bool {
	return f.core.ready()
}

// Subscribe installs the continuation. It panics with ErrCallbackSet if the
// slot is already claimed, including by a previous Get or Release. The
// continuation may run before Subscribe returns if the outcome is already
// in.
func (f *Future[T]) Subscribe(cb func(try.Try[T])) {
	f.core.setCallback(cb)
}

// Get blocks until the outcome is delivered or ctx is done, whichever comes
// first. On delivery it releases the consumer handle and returns the
// outcome; later Get calls keep returning it. On ctx expiry it returns
// ctx.Err() and the registration stays in place: an in-flight wait cannot be
// withdrawn, so a later Get may still pick the outcome up.
//
// Get needs the continuation slot. When Subscribe or Release claimed it
// first, Get panics with ErrCallbackSet, on the first call and on every
// retry.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	f.once.Do(func() {
		done := make(chan struct{})
		f.core.setCallback(func(t try.Try[T]) {
			f.val = t
			close(done)
		})
		f.done = done
	})
	if f.done == nil {
		// The first Get never won the slot; a retry fares no better.
		panic(ErrCallbackSet)
	}
	select {
	case <-f.done:
		f.Release()
		return f.val.Get()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Via routes the continuation through e instead of running it inline.
// Install the scheduler before the outcome can fire: a hook set after the
// continuation ran is ignored. A nil e clears the hook.
func (f *Future[T]) Via(e Executor) *Future[T] {
	f.core.setExecutor(e)
	return f
}

// Deactivate closes the delivery gate: a continuation that becomes runnable
// stays parked until Activate reopens the gate. Deactivate only delays
// delivery, it never discards it.
func (f *Future[T]) Deactivate() {
	f.core.deactivate()
}

// Activate reopens the delivery gate, firing the parked continuation if the
// other conditions already hold. Futures start active.
func (f *Future[T]) Activate() {
	f.core.activate()
}

// IsActive reports whether the delivery gate is open.
func (f *Future[T]) IsActive() bool {
	return f.core.isActive()
}

// Release drops the consumer handle. If no continuation was ever installed
// a no-op one takes the slot, and the gate is forced open, so the producer's
// commit lands somewhere. Release is idempotent and safe under defer. A
// released future accepts no continuation, but Ready and Result keep
// answering: a delivered outcome stays readable.
func (f *Future[T]) Release() {
	if !f.released.CompareAndSwap(false, true) {
		return
	}
	f.core.detachFuture()
}
