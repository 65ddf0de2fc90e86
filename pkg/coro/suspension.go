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

import "sync/atomic"

type suspensionResult[T any] struct {
	value T
	err   error
}

// Suspension represents a step parked mid-execution, waiting for an external
// party (the other end of a Channel, typically) to resume it with a value or
// fail it. It differs from AsyncStage in who drives resolution: an
// AsyncStage resolves from work this package itself schedules, a Suspension
// resolves from an arbitrary external call to Resume, possibly made from a
// different coroutine entirely.
type Suspension[T any] struct {
	input   *T
	handle  continuationHandle
	resumed atomic.Bool
	ch      chan suspensionResult[T]
}

// newSuspension parks a step. input carries a value the step already has in
// hand before parking (e.g. the payload a Send step is offering); it is nil
// for steps that have nothing to offer yet (e.g. Receive).
func newSuspension[T any](input *T, _ any, h continuationHandle) *Suspension[T] {
	return &Suspension[T]{
		input:  input,
		handle: h,
		ch:     make(chan suspensionResult[T], 1),
	}
}

// Input returns the value the step had already computed before suspending,
// if any.
func (s *Suspension[T]) Input() (T, bool) {
	if s.input == nil {
		var zero T
		return zero, false
	}
	return *s.input, true
}

// Handle exposes the continuation handle of the coroutine that parked.
// Channel does not consult it when matching a parked party with a partner.
func (s *Suspension[T]) Handle() continuationHandle { return s.handle }

// Resume completes the suspension exactly once; later calls are no-ops and
// report false.
func (s *Suspension[T]) Resume(value T, err error) bool {
	if !s.resumed.CompareAndSwap(false, true) {
		return false
	}
	s.ch <- suspensionResult[T]{value: value, err: err}
	return true
}

// await blocks the calling goroutine until Resume is called. Used by
// RunBlocking-mode channel steps, which run on a dedicated goroutine already
// (the one the caller used to invoke Scope.Blocking, or the pool goroutine
// running an Async coroutine's blocking sub-step) and so may park safely.
func (s *Suspension[T]) await() (T, error) {
	r := <-s.ch
	return r.value, r.err
}

// onResume schedules fn on the suspension's continuation executor once
// Resume is called, without blocking the calling goroutine. It spawns one
// goroutine to bridge the channel receive onto the executor; that goroutine
// exits as soon as Resume is called, so the number outstanding is bounded by
// the number of coroutines currently parked on a channel operation.
func (s *Suspension[T]) onResume(fn func(T, error)) {
	go func() {
		r := <-s.ch
		s.handle.executor().Submit(func() {
			fn(r.value, r.err)
		})
	}()
}
