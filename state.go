package future

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/saltfishpr/go-future/try"
)

// core is the shared state behind one Promise/Future pair. It holds the
// result slot, the single continuation slot, the delivery gate and the
// scheduler hook, and tracks how many of the two handles are still attached.
//
// The continuation fires at most once, on whichever call completes the last
// of the four conditions: result committed, continuation installed, gate
// open, not fired before. Firing never happens under mu: the firing call
// copies what it needs, releases the lock, and only then hands the
// continuation to the scheduler (or runs it inline). The continuation is
// therefore free to touch this core, or any other, without deadlocking.
type core[T any] struct {
	mu       sync.Mutex
	result   try.Try[T] // empty until the producer commits
	callback func(try.Try[T])
	fired    bool
	active   bool  // starts open; consumer may gate delivery
	detached uint8 // 0..2; at 2 the core drops its continuation
	executor Executor
}

func newCore[T any]() *core[T] {
	return &core[T]{active: true}
}

// fireLocked checks the fire conditions and, when they all hold, marks the
// core fired and returns the delivery for the caller to run after releasing
// mu. The result stays in the slot so getTry keeps answering after delivery.
// Callers must hold mu and must invoke a non-nil return once unlocked.
func (c *core[T]) fireLocked() func() {
	if c.fired || c.result.IsEmpty() || c.callback == nil || !c.active {
		return nil
	}
	c.fired = true
	cb, res, exec := c.callback, c.result, c.executor
	if exec != nil {
		return func() {
			exec.Submit(func() {
				cb(res)
			})
		}
	}
	return func() {
		cb(res)
	}
}

// getTry returns the committed result, or ErrNotReady before the commit.
// It never consumes the slot: repeated calls return the same outcome.
func (c *core[T]) getTry() (try.Try[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result.IsEmpty() {
		return try.Try[T]{}, ErrNotReady
	}
	return c.result, nil
}

func (c *core[T]) ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.result.IsEmpty()
}

// setResult commits the outcome of the producer side.
func (c *core[T]) setResult(t try.Try[T]) {
	if t.IsEmpty() {
		panic(ErrEmptyTry)
	}
	c.mu.Lock()
	if !c.result.IsEmpty() {
		c.mu.Unlock()
		panic(ErrResultSet)
	}
	c.result = t
	fire := c.fireLocked()
	c.mu.Unlock()
	if fire != nil {
		fire()
	}
}

// setCallback installs the continuation. The continuation may run before
// setCallback returns when the result is already in and the gate is open.
func (c *core[T]) setCallback(cb func(try.Try[T])) {
	if cb == nil {
		panic("continuation is nil")
	}
	c.mu.Lock()
	if c.callback != nil {
		c.mu.Unlock()
		panic(ErrCallbackSet)
	}
	c.callback = cb
	fire := c.fireLocked()
	c.mu.Unlock()
	if fire != nil {
		fire()
	}
}

func (c *core[T]) setExecutor(e Executor) {
	c.mu.Lock()
	c.executor = e
	c.mu.Unlock()
}

func (c *core[T]) activate() {
	c.mu.Lock()
	c.active = true
	fire := c.fireLocked()
	c.mu.Unlock()
	if fire != nil {
		fire()
	}
}

func (c *core[T]) deactivate() {
	c.mu.Lock()
	c.active = false
	c.mu.Unlock()
}

func (c *core[T]) isActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// detachFuture drops the consumer side. A consumer that walks away without
// installing a continuation gets a no-op one, and the gate is forced open,
// so a later commit fires into nothing instead of parking forever.
func (c *core[T]) detachFuture() {
	c.mu.Lock()
	if c.callback == nil {
		c.callback = func(try.Try[T]) {}
	}
	c.active = true
	fire := c.fireLocked()
	c.mu.Unlock()
	if fire != nil {
		fire()
	}
	c.detachOne()
}

// detachPromise drops the producer side. Dropping it before a commit breaks
// the contract with the consumer, which hears about it through the ordinary
// delivery path as an ErrBrokenPromise outcome.
func (c *core[T]) detachPromise() {
	c.mu.Lock()
	if c.result.IsEmpty() {
		c.result = try.Fail[T](errors.WithStack(ErrBrokenPromise))
	}
	fire := c.fireLocked()
	c.mu.Unlock()
	if fire != nil {
		fire()
	}
	c.detachOne()
}

// detachOne records that one side is gone. Once both sides are gone no new
// commit or continuation can reach the core, so it drops the continuation
// and the scheduler hook rather than let a forgotten closure pin what it
// captured. The result stays: delivery is one-shot, reading is not, and
// getTry keeps answering through released handles. By then the continuation
// must have fired: the consumer detach guarantees callback and open gate,
// the producer detach guarantees a result.
func (c *core[T]) detachOne() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached++
	switch {
	case c.detached > 2:
		panic("core detached more than twice")
	case c.detached == 2:
		if !c.fired {
			panic("core dropped before delivery")
		}
		c.callback = nil
		c.executor = nil
	}
}
