package future

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/saltfishpr/go-future/executors"
	"github.com/saltfishpr/go-future/try"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPromise_Future_RetrievedTwice(t *testing.T) {
	p := NewPromise[int]()
	_ = p.Future()

	assert.PanicsWithValue(t, ErrFutureRetrieved, func() {
		p.Future()
	})
}

func TestPromise_SetValue(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	p.SetValue(42)

	val, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, 42, val)
}

func TestPromise_SetError(t *testing.T) {
	cause := errors.New("boom")
	p := NewPromise[int]()
	f := p.Future()
	p.SetError(cause)

	_, err := f.Result()
	assert.ErrorIs(t, err, cause)
}

func TestPromise_SetTry(t *testing.T) {
	p := NewPromise[string]()
	f := p.Future()
	p.SetTry(try.Success("hello"))

	val, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, "hello", val)
}

func TestPromise_SetTry_Empty(t *testing.T) {
	p := NewPromise[string]()

	assert.PanicsWithValue(t, ErrEmptyTry, func() {
		p.SetTry(try.Try[string]{})
	})
}

func TestPromise_Set_AlreadySatisfied(t *testing.T) {
	p := NewPromise[int]()
	p.SetValue(1)

	assert.PanicsWithValue(t, ErrResultSet, func() {
		p.SetValue(2)
	})
}

func TestPromise_Release_BrokenPromise(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	p.Release()

	_, err := f.Result()
	assert.ErrorIs(t, err, ErrBrokenPromise)
}

func TestPromise_Release_Idempotent(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	p.Release()
	p.Release()

	_, err := f.Result()
	assert.ErrorIs(t, err, ErrBrokenPromise)
}

func TestPromise_Release_AfterSet(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	p.SetValue(42)
	p.Release()

	val, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, 42, val)
}

func TestPromise_Set_AfterRelease(t *testing.T) {
	p := NewPromise[int]()
	p.Release()

	// Release already satisfied the promise with ErrBrokenPromise.
	assert.PanicsWithValue(t, ErrResultSet, func() {
		p.SetValue(1)
	})
}

func TestFuture_Result_NotReady(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()

	_, err := f.Result()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.False(t, f.Ready())
}

func TestFuture_Result_Idempotent(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	p.SetValue(7)

	for i := 0; i < 3; i++ {
		val, err := f.Result()
		require.NoError(t, err)
		assert.Equal(t, 7, val)
	}
	assert.True(t, f.Ready())
}

func TestFuture_Subscribe_AfterCommit(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	p.SetValue(7)

	fired := false
	f.Subscribe(func(tr try.Try[int]) {
		fired = true
		assert.Equal(t, 7, tr.Value())
	})
	assert.True(t, fired)
}

func TestFuture_Subscribe_BeforeCommit(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()

	fired := false
	f.Subscribe(func(tr try.Try[int]) {
		fired = true
	})
	assert.False(t, fired)

	p.SetValue(7)
	assert.True(t, fired)
}

func TestFuture_Subscribe_Twice(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	f.Subscribe(func(try.Try[int]) {})

	assert.PanicsWithValue(t, ErrCallbackSet, func() {
		f.Subscribe(func(try.Try[int]) {})
	})
}

func TestFuture_Get(t *testing.T) {
	p := NewPromise[string]()
	f := p.Future()

	go func() {
		time.Sleep(10 * time.Millisecond)
		p.SetValue("done")
		p.Release()
	}()

	val, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", val)
}

func TestFuture_Get_ContextCanceled(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Get(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The registration stayed in place: a later Get picks up the outcome.
	p.SetValue(7)
	val, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, val)
}

func TestFuture_Get_Repeated(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	p.SetValue(7)

	for i := 0; i < 3; i++ {
		val, err := f.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 7, val)
	}
}

func TestFuture_Get_Concurrent(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			val, err := f.Get(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 7, val)
		}()
	}
	p.SetValue(7)
	wg.Wait()
}

func TestFuture_GetAndSubscribe_ShareOneSlot(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	p.SetValue(1)

	_, err := f.Get(context.Background())
	require.NoError(t, err)

	assert.PanicsWithValue(t, ErrCallbackSet, func() {
		f.Subscribe(func(try.Try[int]) {})
	})
}

func TestFuture_Get_AfterSubscribe(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	f.Subscribe(func(try.Try[int]) {})
	p.SetValue(7)
	p.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// The slot went to Subscribe: every Get panics, the first call and each
	// retry alike, instead of waiting out its context.
	for i := 0; i < 2; i++ {
		assert.PanicsWithValue(t, ErrCallbackSet, func() {
			_, _ = f.Get(ctx)
		})
	}

	// Misusing Get does not impair reads.
	val, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, 7, val)
}

func TestFuture_Via_ManualExecutor(t *testing.T) {
	m := executors.NewManualExecutor()
	p := NewPromise[int]()
	f := p.Future().Via(m)

	var got atomic.Int32
	f.Subscribe(func(tr try.Try[int]) {
		got.Store(int32(tr.Value()))
	})
	p.SetValue(7)

	// Delivery waits in the executor queue until Run.
	assert.EqualValues(t, 0, got.Load())
	require.Equal(t, 1, m.Pending())
	assert.Equal(t, 1, m.Run())
	assert.EqualValues(t, 7, got.Load())
}

func TestFuture_Deactivate_ParksDelivery(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	f.Deactivate()
	require.False(t, f.IsActive())

	fired := false
	f.Subscribe(func(try.Try[int]) { fired = true })
	p.SetValue(1)
	assert.False(t, fired)

	f.Activate()
	assert.True(t, f.IsActive())
	assert.True(t, fired)
}

// A future deactivated and never reactivated is a valid terminal state: the
// committed outcome stays parked, nothing fires, nothing is lost.
func TestFuture_DeactivatedForever(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	f.Deactivate()

	fired := false
	f.Subscribe(func(try.Try[int]) { fired = true })
	p.SetValue(7)
	p.Release()

	assert.False(t, fired)
	assert.False(t, f.core.fired)

	// The result is still there, recoverable by reactivating.
	val, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, 7, val)
}

func TestFuture_Release_WithoutSubscribe(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	f.Deactivate()
	f.Release()

	// Releasing installed a no-op continuation and reopened the gate, so the
	// commit lands somewhere and both sides can let go.
	p.SetValue(7)
	assert.True(t, f.core.fired)
	p.Release()
	assert.EqualValues(t, 2, f.core.detached)
}

func TestFuture_Release_Idempotent(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	f.Release()
	f.Release()

	p.SetValue(1)
	p.Release()
	assert.EqualValues(t, 2, f.core.detached)
}

// Get delivering releases the consumer side; with the producer side released
// too the core keeps only the outcome, and reads keep answering.
func TestFuture_Result_AfterBothSidesReleased(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	p.SetValue(7)
	p.Release()

	val, err := f.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, val)
	require.EqualValues(t, 2, f.core.detached)

	val, err = f.Result()
	require.NoError(t, err)
	assert.Equal(t, 7, val)
	assert.True(t, f.Ready())
}

func TestFuture_Get_AfterRelease(t *testing.T) {
	p := NewPromise[int]()
	f := p.Future()
	f.Release()

	// The released handle gave its continuation slot away.
	assert.PanicsWithValue(t, ErrCallbackSet, func() {
		_, _ = f.Get(context.Background())
	})
}

// The lock is released before delivery, so a continuation may call back
// into its own core, or chain onto another future, without deadlocking.
// This must hold on the inline path and under an executor that runs the
// task inside Submit.
func TestFuture_Continuation_ReentersCore(t *testing.T) {
	for _, inline := range []bool{false, true} {
		p := NewPromise[int]()
		f := p.Future()
		if inline {
			f.Via(executors.InlineExecutor{})
		}

		next := NewPromise[string]()
		nextF := next.Future()

		f.Subscribe(func(tr try.Try[int]) {
			// Reenter the firing core, then chain onto another one.
			val, err := f.Result()
			require.NoError(t, err)
			next.SetValue(fmt.Sprintf("got %d", val))
			next.Release()
		})
		p.SetValue(7)

		val, err := nextF.Result()
		require.NoError(t, err)
		assert.Equal(t, "got 7", val)
	}
}

func TestFuture_ConcurrentSetAndSubscribe(t *testing.T) {
	for i := 0; i < 200; i++ {
		p := NewPromise[int]()
		f := p.Future()
		var calls atomic.Int32
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.SetValue(i)
		}()
		go func() {
			defer wg.Done()
			f.Subscribe(func(try.Try[int]) {
				calls.Add(1)
			})
		}()
		wg.Wait()
		assert.EqualValues(t, 1, calls.Load())
	}
}
