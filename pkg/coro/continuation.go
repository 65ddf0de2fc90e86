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

// State is the lifecycle state of a Continuation.
type State int32

const (
	Running State = iota
	Finished
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Finished:
		return "FINISHED"
	case Failed:
		return "FAILED"
	case Cancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// continuationHandle is the type-erased capability set that step
// implementations and the Suspension/AsyncStage machinery use to reach the
// continuation driving their run. It exists so Step[I,O] and anyStep never
// need to be generic over the coroutine's final output type O: whichever
// step ends the run delivers its value through finishAny, whose internal
// type assertion is the one controlled use of dynamic typing DESIGN NOTES
// calls for ("dispatch at runtime on the tag").
type continuationHandle interface {
	executor() Executor
	isCancelled() bool
	failStep(cause error)
	finishAny(value any)
	attributes() *Attributes
	scopeHandle() *Scope
	contextHandle() *Context
	label() string
}

// Continuation carries the per-run state of exactly one coroutine
// invocation: its result or error, cancellation, the owning scope/context,
// and a typed attribute bag steps can use to share data across the run.
type Continuation[O any] struct {
	scope    *Scope
	ctx      *Context
	exec     Executor
	coroName string

	state State32
	result *O
	err    error

	done      chan struct{}
	doneOnce  sync.Once
	listeners []func(*Continuation[O])
	listenMu  sync.Mutex

	attrs *Attributes
}

// State32 is a small atomic.Int32-backed State, read and updated without a
// lock.
type State32 struct {
	v atomic.Int32
}

func (s *State32) load() State       { return State(s.v.Load()) }
func (s *State32) store(v State)     { s.v.Store(int32(v)) }
func (s *State32) cas(old, new State) bool {
	return s.v.CompareAndSwap(int32(old), int32(new))
}

func newContinuation[O any](scope *Scope, ctx *Context, exec Executor, coroName string) *Continuation[O] {
	c := &Continuation[O]{
		scope:    scope,
		ctx:      ctx,
		exec:     exec,
		coroName: coroName,
		done:     make(chan struct{}),
		attrs:    NewAttributes(),
	}
	c.state.store(Running)
	return c
}

// --- continuationHandle ---

func (c *Continuation[O]) executor() Executor   { return c.exec }
func (c *Continuation[O]) isCancelled() bool     { return c.scope.isCancelled() || c.state.load() == Cancelled }
func (c *Continuation[O]) attributes() *Attributes { return c.attrs }
func (c *Continuation[O]) scopeHandle() *Scope     { return c.scope }
func (c *Continuation[O]) contextHandle() *Context { return c.ctx }
func (c *Continuation[O]) label() string           { return c.coroName }

// cancelFromStep finalizes the continuation as Cancelled when a step
// boundary observes cancellation. Unlike Cancel (the public API), this is
// only invoked by checkCancelled right before a step would otherwise run,
// and by launch when the coroutine is already cancelled before its first
// step; it is a no-op if the continuation already finalized.
func (c *Continuation[O]) cancelFromStep() {
	if !c.state.cas(Running, Cancelled) {
		return
	}
	c.finalize()
}

func (c *Continuation[O]) failStep(cause error) {
	if !c.state.cas(Running, Failed) {
		return
	}
	c.err = errStepFailed(cause)
	logStepFailure(c.coroName, cause)
	c.finalize()
}

func (c *Continuation[O]) finishAny(value any) {
	if !c.state.cas(Running, Finished) {
		return
	}
	if v, ok := value.(O); ok {
		c.result = &v
	}
	c.finalize()
}

func (c *Continuation[O]) finalize() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
	logLifecycle("continuation finalized", c.coroName, "state", c.state.load().String())
	c.listenMu.Lock()
	listeners := c.listeners
	c.listenMu.Unlock()
	if len(listeners) == 0 {
		return
	}
	c.exec.Submit(func() {
		for _, l := range listeners {
			l(c)
		}
	})
}

// --- public surface (spec.md §4.I) ---

// IsDone reports whether the continuation has finalized (finished, failed,
// or been cancelled).
func (c *Continuation[O]) IsDone() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// IsCancelled reports whether the continuation's terminal state is
// Cancelled.
func (c *Continuation[O]) IsCancelled() bool {
	return c.state.load() == Cancelled
}

// GetResult blocks until the continuation is done and returns the result,
// or the stored error (wrapped per the ErrorKind taxonomy).
func (c *Continuation[O]) GetResult() (O, error) {
	<-c.done
	var zero O
	switch c.state.load() {
	case Finished:
		if c.result != nil {
			return *c.result, nil
		}
		return zero, nil
	case Failed:
		return zero, c.err
	case Cancelled:
		return zero, errCancelled()
	default:
		return zero, errInternal(nil)
	}
}

// GetError returns the stored error, if any, without blocking.
func (c *Continuation[O]) GetError() error {
	return c.err
}

// GetContext returns the owning context.
func (c *Continuation[O]) GetContext() *Context { return c.ctx }

// GetScope returns the owning scope.
func (c *Continuation[O]) GetScope() *Scope { return c.scope }

// Get retrieves an attribute attached to this run.
func (c *Continuation[O]) Get(key *attrKey[any]) (any, bool) {
	return Get(c.attrs, key)
}

// Cancel requests cooperative cancellation. It has effect only if the
// continuation has not already finalized (P7: first finalize call wins).
func (c *Continuation[O]) Cancel() {
	if !c.state.cas(Running, Cancelled) {
		return
	}
	c.finalize()
}

// OnFinish registers a callback invoked on the continuation's executor
// after finalization. If the continuation is already done, the callback is
// scheduled immediately.
func (c *Continuation[O]) OnFinish(cb func(*Continuation[O])) {
	if cb == nil {
		return
	}
	select {
	case <-c.done:
		c.exec.Submit(func() { cb(c) })
		return
	default:
	}
	c.listenMu.Lock()
	defer c.listenMu.Unlock()
	select {
	case <-c.done:
		c.exec.Submit(func() { cb(c) })
	default:
		c.listeners = append(c.listeners, cb)
	}
}
