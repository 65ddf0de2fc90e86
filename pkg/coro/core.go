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

// anyStep is the type-erased capability set every concrete step kind
// satisfies, used internally by the chain engine to dispatch across steps
// of differing I/O types without reflection. Every public, generic
// Step[I, O] implementation in this package also implements anyStep; the
// typed generic methods are thin boundary adapters around the anyAware
// logic (DESIGN NOTES: "a capability set... dispatch at runtime on the
// tag").
type anyStep interface {
	// runBlockingAny executes this step and, if it is (or contains) a
	// chain, every following step, synchronously on the calling goroutine.
	runBlockingAny(input any, h continuationHandle) (any, error)
	// runAsyncAny composes this step onto a resolved prior stage. next is
	// the step (if any) that follows this one in the enclosing chain; a nil
	// next means nothing follows, so this step finalizes the continuation
	// with its own output.
	runAsyncAny(prev *AsyncStage[any], next anyStep, h continuationHandle)
	// stepLabel returns a diagnostic label, or "" if none was set.
	stepLabel() string
}

// completedAnyStage adapts a plain value into an already-resolved
// *AsyncStage[any], the entry point used when a scope first launches a
// coroutine in async mode.
func completedAnyStage(v any, err error) *AsyncStage[any] {
	return completedStage[any](v, err)
}

// checkCancelled short-circuits a step boundary to FinishStep's cancellation
// behavior: result discarded, continuation moved to Cancelled. It is called
// before every RunAsync/RunBlocking entry, per spec.md §4.C.
func checkCancelled(h continuationHandle) bool {
	if !h.isCancelled() {
		return false
	}
	if cont, ok := h.(interface{ cancelFromStep() }); ok {
		cont.cancelFromStep()
	}
	return true
}

// defaultRunAsync implements the base dispatch described in spec.md §4.C:
// schedule execute(prev.result) on the continuation's executor; on success
// forward the output into next.runAsyncAny; on failure mark the
// continuation FAILED with StepFailed. codeStep is the step kind that uses
// it; the channel steps, the conditional and forEach steps, chainedStep and
// finishStep implement runAsyncAny themselves (the channel steps because
// they must suspend before invoking next).
func defaultRunAsync(
	exec func(input any, h continuationHandle) (any, error),
	prev *AsyncStage[any],
	next anyStep,
	h continuationHandle,
) {
	h.executor().Submit(func() {
		in, prevErr := prev.await()
		if prevErr != nil {
			// Upstream already finalized the continuation (failed or was
			// cancelled); nothing further to do.
			return
		}
		if checkCancelled(h) {
			return
		}
		out, err := exec(in, h)
		if err != nil {
			h.failStep(err)
			return
		}
		if next == nil {
			h.finishAny(out)
			return
		}
		next.runAsyncAny(completedAnyStage(out, nil), nil, h)
	})
}
