package future

import (
	"sync/atomic"

	"github.com/saltfishpr/go-future/try"
)

// The join combinators consume their inputs: each input future is subscribed
// and then released, so the caller keeps only the returned future. Outcome
// slots are try.Try values, which keeps partial failure addressable: one
// failed input does not erase what the others produced.

// Tuple2 carries the outcomes of two joined futures, one slot per input.
type Tuple2[A, B any] struct {
	First  try.Try[A]
	Second try.Try[B]
}

// Tuple3 carries the outcomes of three joined futures.
type Tuple3[A, B, C any] struct {
	First  try.Try[A]
	Second try.Try[B]
	Third  try.Try[C]
}

// Tuple4 carries the outcomes of four joined futures.
type Tuple4[A, B, C, D any] struct {
	First  try.Try[A]
	Second try.Try[B]
	Third  try.Try[C]
	Fourth try.Try[D]
}

type all2Context[A, B any] struct {
	result Tuple2[A, B]
	left   atomic.Int32
	p      *Promise[Tuple2[A, B]]
}

// done marks one slot filled. The filler of the last slot observes zero and
// commits the tuple; the atomic counter orders every slot write before the
// commit.
func (c *all2Context[A, B]) done() {
	if c.left.Add(-1) == 0 {
		c.p.SetValue(c.result)
		c.p.Release()
	}
}

// All2 joins two futures of different types into one future of both
// outcomes, delivered when the last input completes.
func All2[A, B any](fa *Future[A], fb *Future[B]) *Future[Tuple2[A, B]] {
	c := &all2Context[A, B]{p: NewPromise[Tuple2[A, B]]()}
	c.left.Store(2)
	fut := c.p.Future()
	fa.Subscribe(func(t try.Try[A]) {
		c.result.First = t
		c.done()
	})
	fa.Release()
	fb.Subscribe(func(t try.Try[B]) {
		c.result.Second = t
		c.done()
	})
	fb.Release()
	return fut
}

type all3Context[A, B, C any] struct {
	result Tuple3[A, B, C]
	left   atomic.Int32
	p      *Promise[Tuple3[A, B, C]]
}

func (c *all3Context[A, B, C]) done() {
	if c.left.Add(-1) == 0 {
		c.p.SetValue(c.result)
		c.p.Release()
	}
}

// All3 joins three futures of different types. See All2.
func All3[A, B, C any](fa *Future[A], fb *Future[B], fc *Future[C]) *Future[Tuple3[A, B, C]] {
	c := &all3Context[A, B, C]{p: NewPromise[Tuple3[A, B, C]]()}
	c.left.Store(3)
	fut := c.p.Future()
	fa.Subscribe(func(t try.Try[A]) {
		c.result.First = t
		c.done()
	})
	fa.Release()
	fb.Subscribe(func(t try.Try[B]) {
		c.result.Second = t
		c.done()
	})
	fb.Release()
	fc.Subscribe(func(t try.Try[C]) {
		c.result.Third = t
		c.done()
	})
	fc.Release()
	return fut
}

type all4Context[A, B, C, D any] struct {
	result Tuple4[A, B, C, D]
	left   atomic.Int32
	p      *Promise[Tuple4[A, B, C, D]]
}

func (c *all4Context[A, B, C, D]) done() {
	if c.left.Add(-1) == 0 {
		c.p.SetValue(c.result)
		c.p.Release()
	}
}

// All4 joins four futures of different types. See All2.
func All4[A, B, C, D any](fa *Future[A], fb *Future[B], fc *Future[C], fd *Future[D]) *Future[Tuple4[A, B, C, D]] {
	c := &all4Context[A, B, C, D]{p: NewPromise[Tuple4[A, B, C, D]]()}
	c.left.Store(4)
	fut := c.p.Future()
	fa.Subscribe(func(t try.Try[A]) {
		c.result.First = t
		c.done()
	})
	fa.Release()
	fb.Subscribe(func(t try.Try[B]) {
		c.result.Second = t
		c.done()
	})
	fb.Release()
	fc.Subscribe(func(t try.Try[C]) {
		c.result.Third = t
		c.done()
	})
	fc.Release()
	fd.Subscribe(func(t try.Try[D]) {
		c.result.Fourth = t
		c.done()
	})
	fd.Release()
	return fut
}

// AllOf joins any number of same-typed futures into one future of all
// outcomes, positionally, delivered when the last input completes. Failed
// inputs occupy their slot as failures; they do not preempt the rest. With
// no inputs the returned future is already delivered with nil.
func AllOf[T any](fs ...*Future[T]) *Future[[]try.Try[T]] {
	p := NewPromise[[]try.Try[T]]()
	fut := p.Future()
	if len(fs) == 0 {
		p.SetValue(nil)
		p.Release()
		return fut
	}
	results := make([]try.Try[T], len(fs))
	var left atomic.Int32
	left.Store(int32(len(fs)))
	for i, f := range fs {
		i := i
		f.Subscribe(func(t try.Try[T]) {
			results[i] = t
			if left.Add(-1) == 0 {
				p.SetValue(results)
				p.Release()
			}
		})
		f.Release()
	}
	return fut
}

// Selected is the outcome of AnyOf: the first input to complete, with its
// position among the inputs.
type Selected[T any] struct {
	Index int
	Try   try.Try[T]
}

// AnyOf races any number of same-typed futures: the returned future is
// delivered the first outcome to arrive, success or failure. The losers
// still run; their outcomes are discarded on arrival. With no inputs nobody
// can ever win, so the returned future observes ErrBrokenPromise.
func AnyOf[T any](fs ...*Future[T]) *Future[Selected[T]] {
	p := NewPromise[Selected[T]]()
	fut := p.Future()
	if len(fs) == 0 {
		p.Release()
		return fut
	}
	var won atomic.Bool
	var left atomic.Int32
	left.Store(int32(len(fs)))
	for i, f := range fs {
		i := i
		f.Subscribe(func(t try.Try[T]) {
			if won.CompareAndSwap(false, true) {
				p.SetValue(Selected[T]{Index: i, Try: t})
			}
			if left.Add(-1) == 0 {
				p.Release()
			}
		})
		f.Release()
	}
	return fut
}

// AllOfFunc is the terminal join: cb is invoked exactly once with all
// outcomes, positionally, inline on whichever input completes last. There is
// no future to keep; use it to sink results whose delivery nobody awaits.
// With no inputs cb(nil) runs before AllOfFunc returns.
func AllOfFunc[T any](cb func([]try.Try[T]), fs ...*Future[T]) {
	if cb == nil {
		panic("callback is nil")
	}
	if len(fs) == 0 {
		cb(nil)
		return
	}
	results := make([]try.Try[T], len(fs))
	var left atomic.Int32
	left.Store(int32(len(fs)))
	for i, f := range fs {
		i := i
		f.Subscribe(func(t try.Try[T]) {
			results[i] = t
			if left.Add(-1) == 0 {
				cb(results)
			}
		})
		f.Release()
	}
}
