// Package executors provides ready-made implementations of the root
// package's Executor interface.
package executors

import "sync"

// GoExecutor runs every task on its own goroutine. It is the package
// default.
type GoExecutor struct{}

func (GoExecutor) Submit(f func()) {
	go f()
}

// PoolExecutor runs tasks on goroutines admitted through a semaphore, so at
// most maxWorkers tasks run at once. Submit blocks while the pool is full.
type PoolExecutor struct {
	sem chan struct{}
}

func NewPoolExecutor(maxWorkers int) *PoolExecutor {
	return &PoolExecutor{
		sem: make(chan struct{}, maxWorkers),
	}
}

func (p *PoolExecutor) Submit(f func()) {
	p.sem <- struct{}{}
	go func() {
		defer func() { <-p.sem }()
		f()
	}()
}

// InlineExecutor runs the task on the caller's goroutine, inside Submit.
// Continuations routed through it run on whichever goroutine fired them,
// which the delivery path permits: no lock is held across the hand-off.
type InlineExecutor struct{}

func (InlineExecutor) Submit(f func()) {
	f()
}

// ManualExecutor queues tasks and runs nothing until told to. It makes
// scheduling deterministic in tests: submit, then Run on the goroutine of
// your choice.
type ManualExecutor struct {
	mu    sync.Mutex
	tasks []func()
}

func NewManualExecutor() *ManualExecutor {
	return &ManualExecutor{}
}

func (m *ManualExecutor) Submit(f func()) {
	m.mu.Lock()
	m.tasks = append(m.tasks, f)
	m.mu.Unlock()
}

// Run drains the queue on the calling goroutine, including tasks the tasks
// themselves submit, and reports how many ran.
func (m *ManualExecutor) Run() int {
	n := 0
	for {
		m.mu.Lock()
		if len(m.tasks) == 0 {
			m.mu.Unlock()
			return n
		}
		f := m.tasks[0]
		m.tasks = m.tasks[1:]
		m.mu.Unlock()
		f()
		n++
	}
}

// Pending reports how many tasks are queued and not yet run.
func (m *ManualExecutor) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
