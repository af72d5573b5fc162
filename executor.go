package future

import "github.com/saltfishpr/go-future/executors"

// Executor abstracts where continuations and async tasks run.
//
// By default the package uses plain goroutines (executors.GoExecutor{}):
// lightweight execution with no pooling and no concurrency limit. Override
// the default with SetExecutor, or route a single future's continuation
// through Future.Via. A common pattern is wrapping a goroutine pool with
// ExecutorFunc:
//
//	pool := executors.NewPoolExecutor(100)
//	future.SetExecutor(future.ExecutorFunc(pool.Submit))
//
// Most programs never need to change the executor. Replacing it is useful to
// cap concurrency, reuse goroutines, or make scheduling deterministic in
// tests (see executors.ManualExecutor).
//
// Warning:
//   - A pooled executor can queue tasks behind blocking work and degrade
//     latency. Override only with an understood workload.
//   - Passing nil to SetExecutor panics.
type Executor interface {
	Submit(func())
}

type ExecutorFunc func(func())

func (e ExecutorFunc) Submit(f func()) {
	e(f)
}

var executor Executor = executors.GoExecutor{}

func SetExecutor(e Executor) {
	if e == nil {
		panic("executor is nil")
	}
	executor = e
}
