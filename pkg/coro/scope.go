// Copyright 2026 Benoit Pereira da Silva
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package coro

import (
	"sync"
	"sync/atomic"
)

// Scope is a structured-concurrency bracket: it tracks every in-flight
// coroutine launched against it, lets the launcher await their completion,
// and can request cooperative cancellation of all of them.
//
// A Scope never auto-cancels its siblings when one continuation fails; that
// is a documented choice applications can opt into from an OnFinish
// listener (see spec.md §4.H "Failure semantics").
type Scope struct {
	ctx *Context

	running   atomic.Int64
	cancelled atomic.Bool

	latchMu sync.Mutex
	latch   chan struct{} // closed when running == 0; rearmed on 0->1

	attrs *Attributes
}

func newScope(ctx *Context) *Scope {
	s := &Scope{ctx: ctx, attrs: NewAttributes()}
	// Start in the "empty" (already-released) state.
	latch := make(chan struct{})
	close(latch)
	s.latch = latch
	return s
}

// Launch creates a scope bound to ctx (a fresh Context is created if ctx is
// nil), registers it, synchronously invokes builder so the caller can launch
// coroutines via scope.Async / scope.Blocking, then blocks until every
// coroutine launched during or after builder has finished, and finally
// unregisters the scope from its context.
func Launch(ctx *Context, builder func(*Scope)) *Scope {
	if ctx == nil {
		ctx = NewContext()
	}
	s := newScope(ctx)
	ctx.registerScope(s)
	if builder != nil {
		builder(s)
	}
	s.Await()
	ctx.unregisterScope(s)
	return s
}

// Attributes returns the scope's attribute store.
func (s *Scope) Attributes() *Attributes { return s.attrs }

// Context returns the owning context.
func (s *Scope) Context() *Context { return s.ctx }

func (s *Scope) isCancelled() bool { return s.cancelled.Load() }

// Cancel marks the scope cancelled. Every continuation under the scope will
// observe cancellation at its next step boundary and short-circuit to a
// Cancelled finish; steps already executing inside user code are not
// interrupted (cooperative cancellation only).
func (s *Scope) Cancel() {
	s.cancelled.Store(true)
}

// GetCoroutineCount returns the number of coroutines currently in flight
// under this scope. After Launch returns, this is always 0 (P4).
func (s *Scope) GetCoroutineCount() int64 {
	return s.running.Load()
}

// coroutineStarted increments the running counter; if this transitions the
// scope from empty to non-empty, the completion latch is rearmed under the
// scope-local lock. The atomic counter and the lock-guarded rearm are kept
// as two separate steps deliberately (see DESIGN NOTES): there is no global
// lock, only this scope's own.
func (s *Scope) coroutineStarted() {
	if s.running.Add(1) == 1 {
		s.latchMu.Lock()
		select {
		case <-s.latch:
			// Previously released (or fresh); arm a new one.
			s.latch = make(chan struct{})
		default:
			// Another goroutine already rearmed it.
		}
		s.latchMu.Unlock()
	}
}

// coroutineFinished decrements the running counter; if this transitions the
// scope from non-empty to empty, the completion latch is released.
func (s *Scope) coroutineFinished() {
	if s.running.Add(-1) == 0 {
		s.latchMu.Lock()
		latch := s.latch
		select {
		case <-latch:
			// Already released.
		default:
			close(latch)
		}
		s.latchMu.Unlock()
	}
}

// Await blocks until running == 0, i.e. every coroutine registered to this
// scope has terminated (finished, failed, or cancelled).
func (s *Scope) Await() {
	for {
		s.latchMu.Lock()
		latch := s.latch
		s.latchMu.Unlock()
		<-latch
		if s.running.Load() == 0 {
			return
		}
		// A new coroutine started between the latch release and this
		// check; loop and wait on the (now rearmed) latch.
	}
}

// Async launches coroutine with input on a worker goroutine (via the
// context's Executor) and returns its Continuation immediately. Async is a
// free function, not a method, because Go methods cannot introduce the
// extra type parameters (I, O) a single non-generic Scope needs to launch
// coroutines of differing input/output types.
func Async[I, O any](s *Scope, co *Coroutine[I, O], input I) *Continuation[O] {
	return launch(s, co, input, false)
}

// Blocking launches coroutine with input and runs it on the calling
// goroutine: the whole blocking-mode chain executes before Blocking
// returns. It still returns a Continuation, already done, so callers can
// use the same accessor surface as Async.
func Blocking[I, O any](s *Scope, co *Coroutine[I, O], input I) *Continuation[O] {
	return launch(s, co, input, true)
}

func launch[I, O any](s *Scope, co *Coroutine[I, O], input I, blocking bool) *Continuation[O] {
	exec := s.ctx.Executor()
	cont := newContinuation[O](s, s.ctx, exec, co.name)
	cont.attrs = co.attributes.clone()

	s.coroutineStarted()
	cont.OnFinish(func(*Continuation[O]) {
		s.coroutineFinished()
	})

	run := func() {
		logLifecycle("coroutine started", co.name, "blocking", blocking)
		if cont.isCancelled() {
			cont.cancelFromStep()
			return
		}
		if blocking {
			out, err := co.chain.runBlockingAny(input, cont)
			if err != nil {
				cont.failStep(err)
				return
			}
			cont.finishAny(out)
			return
		}
		co.chain.runAsyncAny(completedAnyStage(input, nil), nil, cont)
	}

	if blocking {
		run()
	} else {
		exec.Submit(run)
	}
	return cont
}
