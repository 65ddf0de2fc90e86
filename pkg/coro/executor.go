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
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"
)

// Executor runs scheduled work units on worker goroutines and supplies the
// clock the runtime uses for timing. It is an injectable collaborator: every
// public API that needs to schedule work takes an Executor explicitly
// rather than reaching for a hidden global.
type Executor interface {
	// Submit runs fn on a worker goroutine. Submit returns once fn has been
	// handed off for execution; it does not wait for fn to complete.
	Submit(fn func())
	// Clock returns the clock used for time-based composition (timeouts are
	// not primitive; they are expressed as a companion coroutine built on
	// top of Clock).
	Clock() Clock
}

// Clock abstracts time so tests can drive timeout-composition scenarios
// deterministically instead of sleeping.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the minimal handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// systemClock is the default Clock, backed by the standard library.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is the process-wide real-time Clock.
var SystemClock Clock = systemClock{}

// PoolExecutor is the default Executor: a goroutine pool bounded by a
// weighted semaphore (golang.org/x/sync/semaphore), sized to the available
// parallelism unless overridden. Submit never blocks the caller: it acquires
// a slot opportunistically and falls back to an extra goroutine under
// saturation (see Submit), because a step's own execute function routinely
// submits further work from inside an already-submitted goroutine.
type PoolExecutor struct {
	sem   *semaphore.Weighted
	clock Clock
	// closed is flipped by Close; Submit on a closed pool still runs fn, on
	// a fresh goroutine outside the semaphore, so in-flight callers never
	// deadlock, matching "cancellation of an already-scheduled work unit is
	// best-effort".
	closed chan struct{}
}

// PoolOption configures a PoolExecutor.
type PoolOption func(*PoolExecutor)

// WithParallelism overrides the worker concurrency bound (default:
// runtime.GOMAXPROCS(0)).
func WithParallelism(n int) PoolOption {
	return func(p *PoolExecutor) {
		if n > 0 {
			p.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithClock overrides the Clock (default: SystemClock).
func WithClock(c Clock) PoolOption {
	return func(p *PoolExecutor) {
		if c != nil {
			p.clock = c
		}
	}
}

// NewPoolExecutor constructs the default Executor.
func NewPoolExecutor(opts ...PoolOption) *PoolExecutor {
	p := &PoolExecutor{
		sem:    semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
		clock:  SystemClock,
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit implements Executor. It uses a non-blocking semaphore acquire: a
// step's own execute function routinely submits further work before
// returning (a chain step handing off to the next one, a finish step
// resolving its continuation), so a blocking acquire here would risk a
// worker deadlocking against its own in-flight slot once the pool is
// saturated. Under saturation Submit simply runs fn on an extra goroutine
// instead of queuing; the semaphore bounds only the goroutines that hold a
// slot, and the number of such extra goroutines is not limited.
func (p *PoolExecutor) Submit(fn func()) {
	if fn == nil {
		return
	}
	select {
	case <-p.closed:
		// Best-effort: still run the work rather than silently dropping it,
		// since in-flight continuations may depend on it to finalize.
		go fn()
		return
	default:
	}

	if !p.sem.TryAcquire(1) {
		go fn()
		return
	}
	go func() {
		defer p.sem.Release(1)
		fn()
	}()
}

// Clock implements Executor.
func (p *PoolExecutor) Clock() Clock { return p.clock }

// Close stops the pool from bounding further work (best-effort; already
// acquired slots drain naturally). It never blocks.
func (p *PoolExecutor) Close() {
	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
}
