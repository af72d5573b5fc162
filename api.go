package future

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/saltfishpr/go-future/try"
)

func Async[T any](f func() (T, error)) *Future[T] {
	return Submit(executor, f)
}

func CtxAsync[T any](ctx context.Context, f func(ctx context.Context) (T, error)) *Future[T] {
	return CtxSubmit(ctx, executor, f)
}

func Submit[T any](e Executor, f func() (T, error)) *Future[T] {
	p := NewPromise[T]()
	fut := p.Future()
	e.Submit(func() {
		defer p.Release()
		var t try.Try[T]
		defer func() {
			if r := recover(); r != nil {
				t = try.Fail[T](newPanicError(2, r))
			}
			p.SetTry(t)
		}()
		val, err := f()
		if err != nil {
			t = try.Fail[T](err)
		} else {
			t = try.Success(val)
		}
	})
	return fut
}

func CtxSubmit[T any](ctx context.Context, e Executor, f func(ctx context.Context) (T, error)) *Future[T] {
	p := NewPromise[T]()
	fut := p.Future()
	e.Submit(func() {
		defer p.Release()
		var t try.Try[T]
		defer func() {
			if r := recover(); r != nil {
				t = try.Fail[T](newPanicError(2, r))
			}
			p.SetTry(t)
		}()
		val, err := f(ctx)
		if err != nil {
			t = try.Fail[T](err)
		} else {
			t = try.Success(val)
		}
	})
	return fut
}

func Done[T any](val T) *Future[T] {
	return DoneTry(try.Success(val))
}

func DoneErr[T any](err error) *Future[T] {
	return DoneTry(try.Fail[T](err))
}

func DoneTry[T any](t try.Try[T]) *Future[T] {
	p := NewPromise[T]()
	fut := p.Future()
	p.SetTry(t)
	p.Release()
	return fut
}

// Then chains cb onto f, producing a future for cb's result. cb receives the
// complete outcome of f, success or failure; a panic in cb becomes a
// *PanicError outcome. Then consumes f: the caller keeps only the returned
// future.
func Then[T, R any](f *Future[T], cb func(try.Try[T]) (R, error)) *Future[R] {
	p := NewPromise[R]()
	fut := p.Future()
	f.Subscribe(func(t try.Try[T]) {
		defer p.Release()
		var rt try.Try[R]
		defer func() {
			if r := recover(); r != nil {
				rt = try.Fail[R](newPanicError(2, r))
			}
			p.SetTry(rt)
		}()
		val, err := cb(t)
		if err != nil {
			rt = try.Fail[R](err)
		} else {
			rt = try.Success(val)
		}
	})
	f.Release()
	return fut
}

// Timeout bounds delivery of f's outcome: if it is not in within d, the
// returned future is delivered ErrTimeout instead. The producer behind f is
// not cancelled; only delivery is cut short. Timeout consumes f.
func Timeout[T any](f *Future[T], d time.Duration) *Future[T] {
	p := NewPromise[T]()
	fut := p.Future()
	var won atomic.Bool
	timer := time.AfterFunc(d, func() {
		if won.CompareAndSwap(false, true) {
			p.SetError(ErrTimeout)
			p.Release()
		}
	})
	f.Subscribe(func(t try.Try[T]) {
		if won.CompareAndSwap(false, true) {
			timer.Stop()
			p.SetTry(t)
			p.Release()
		}
	})
	f.Release()
	return fut
}

// Until is Timeout with an absolute deadline.
func Until[T any](f *Future[T], deadline time.Time) *Future[T] {
	return Timeout(f, time.Until(deadline))
}

// WithContext bounds delivery of f's outcome by ctx: once ctx is done, the
// returned future is delivered ctx.Err() instead. The producer behind f is
// not cancelled. WithContext consumes f.
func WithContext[T any](ctx context.Context, f *Future[T]) *Future[T] {
	p := NewPromise[T]()
	fut := p.Future()
	var won atomic.Bool
	stop := context.AfterFunc(ctx, func() {
		if won.CompareAndSwap(false, true) {
			p.SetError(ctx.Err())
			p.Release()
		}
	})
	f.Subscribe(func(t try.Try[T]) {
		if won.CompareAndSwap(false, true) {
			stop()
			p.SetTry(t)
			p.Release()
		}
	})
	f.Release()
	return fut
}
