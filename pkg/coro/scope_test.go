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
	"testing"
)

func TestLaunch_WaitsForEveryCoroutine(t *testing.T) {
	const n = 1000
	var ran atomic.Int64

	co := First(Apply(func(i int) int {
		ran.Add(1)
		return i
	}))

	s := Launch(nil, func(scope *Scope) {
		for i := 0; i < n; i++ {
			Async(scope, co, i)
		}
	})

	if ran.Load() != n {
		t.Fatalf("got %d coroutines run, want %d", ran.Load(), n)
	}
	if got := s.GetCoroutineCount(); got != 0 {
		t.Fatalf("GetCoroutineCount after Launch returns: got %d, want 0", got)
	}
}

func TestLaunch_CreatesFreshContextWhenNil(t *testing.T) {
	var ctxA, ctxB *Context
	Launch(nil, func(scope *Scope) { ctxA = scope.Context() })
	Launch(nil, func(scope *Scope) { ctxB = scope.Context() })
	if ctxA == nil || ctxB == nil {
		t.Fatalf("expected a non-nil context to be created for each Launch")
	}
	if ctxA == ctxB {
		t.Fatalf("expected distinct contexts across separate Launch calls")
	}
}

func TestLaunch_SharesOneContextAcrossCoroutines(t *testing.T) {
	ctx := NewContext()
	var seen [2]*Context
	var mu sync.Mutex

	co := First(ApplyWithContext(func(i int, info RunInfo) (int, error) {
		mu.Lock()
		seen[i] = info.Context()
		mu.Unlock()
		return i, nil
	}))

	Launch(ctx, func(scope *Scope) {
		Blocking(scope, co, 0)
		Blocking(scope, co, 1)
	})

	if seen[0] != ctx || seen[1] != ctx {
		t.Fatalf("expected both coroutines to observe the same injected context")
	}
}

func TestScope_Cancel_StopsDownstreamSteps(t *testing.T) {
	id := NewChannelId[int]("gate")
	var laterRan atomic.Bool

	co := Then(First(Receive(id)), Apply(func(n int) int {
		laterRan.Store(true)
		return n
	}))

	ctx := NewContext()
	Launch(ctx, func(scope *Scope) {
		cont := Async(scope, co, struct{}{})

		scope.Cancel()
		// The sender runs in a scope of its own: a coroutine launched under
		// the cancelled scope would itself be cancelled before its first step.
		Launch(ctx, func(sender *Scope) {
			if _, err := Async(sender, First(Send(id)), 7).GetResult(); err != nil {
				t.Fatalf("send: unexpected error: %v", err)
			}
		})

		_, err := cont.GetResult()
		if err == nil {
			t.Fatalf("expected cancellation error")
		}
		if !cont.IsCancelled() {
			t.Fatalf("expected continuation to report Cancelled")
		}
	})

	if laterRan.Load() {
		t.Fatalf("step chained after the cancellation point must not run")
	}
}

func TestScope_Cancel_DoesNotAffectAlreadyFinishedContinuation(t *testing.T) {
	co := First(Apply(func(n int) int { return n + 1 }))

	Launch(nil, func(scope *Scope) {
		cont := Blocking(scope, co, 1)
		scope.Cancel()

		got, err := cont.GetResult()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 2 {
			t.Fatalf("got %d, want 2", got)
		}
		if cont.IsCancelled() {
			t.Fatalf("a continuation that finished before Cancel must stay Finished")
		}
	})
}
