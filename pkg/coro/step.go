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

// Step is an immutable description of a computation mapping I to O. Steps
// are values: they may be shared across coroutines and reused freely. Every
// concrete step kind in this package also satisfies anyStep, the type-erased
// dispatch surface the chain engine uses internally.
type Step[I, O any] interface {
	anyStep
	// RunBlocking executes the step synchronously on the calling goroutine.
	// It returns an error when the step's own work fails (an error or a
	// recovered panic from its execute function, a closed channel) or when
	// the continuation is already cancelled.
	RunBlocking(input I, c continuationHandle) (O, error)
	// Suspend snapshots input (if known) and c for later resumption. The
	// channel steps also start their channel operation here; their
	// Suspension resolves when that operation completes.
	Suspend(input *I, c continuationHandle) *Suspension[I]
}

// codeStep wraps a plain function (or a (input, handle) -> (output, error)
// function) as a Step. It is the implementation behind Apply, Supply,
// Consume, and Run.
type codeStep[I, O any] struct {
	lbl     string
	execute func(in I, h continuationHandle) (O, error)
}

func (s *codeStep[I, O]) stepLabel() string { return s.lbl }

func (s *codeStep[I, O]) RunBlocking(input I, h continuationHandle) (O, error) {
	if checkCancelled(h) {
		var zero O
		return zero, errCancelled()
	}
	return safeExecute(s.execute, input, h)
}

func (s *codeStep[I, O]) Suspend(input *I, h continuationHandle) *Suspension[I] {
	return newSuspension[I](input, nil, h)
}

func (s *codeStep[I, O]) runBlockingAny(input any, h continuationHandle) (any, error) {
	in, _ := input.(I)
	return s.RunBlocking(in, h)
}

func (s *codeStep[I, O]) runAsyncAny(prev *AsyncStage[any], next anyStep, h continuationHandle) {
	defaultRunAsync(func(in any, h continuationHandle) (any, error) {
		typed, _ := in.(I)
		return safeExecute(s.execute, typed, h)
	}, prev, next, h)
}

// Apply wraps a pure function as a Step[I, O].
func Apply[I, O any](fn func(I) O) Step[I, O] {
	return &codeStep[I, O]{
		execute: func(in I, _ continuationHandle) (O, error) {
			return fn(in), nil
		},
	}
}

// RunInfo is the read-only view of the driving Continuation that a step's
// execute function receives when built with ApplyWithContext: enough to
// check cancellation and to read/write the per-run attribute bag, without
// exposing finish/fail/cancel (those remain the runtime's to call).
type RunInfo interface {
	IsCancelled() bool
	Attributes() *Attributes
	Scope() *Scope
	Context() *Context
}

type runInfoView struct{ h continuationHandle }

func (v runInfoView) IsCancelled() bool      { return v.h.isCancelled() }
func (v runInfoView) Attributes() *Attributes { return v.h.attributes() }
func (v runInfoView) Scope() *Scope            { return v.h.scopeHandle() }
func (v runInfoView) Context() *Context        { return v.h.contextHandle() }

// ApplyWithContext wraps a function that also needs read-only access to the
// run's Continuation (e.g. to read/write attributes, or check cancellation
// mid-execute for a long-running computation).
func ApplyWithContext[I, O any](fn func(I, RunInfo) (O, error)) Step[I, O] {
	return &codeStep[I, O]{
		execute: func(in I, h continuationHandle) (O, error) {
			return fn(in, runInfoView{h})
		},
	}
}

// Supply wraps a zero-argument producer as a Step[struct{}, O].
func Supply[O any](fn func() O) Step[struct{}, O] {
	return &codeStep[struct{}, O]{
		execute: func(struct{}, continuationHandle) (O, error) {
			return fn(), nil
		},
	}
}

// Consume wraps a side-effecting function as a Step[I, struct{}].
func Consume[I any](fn func(I)) Step[I, struct{}] {
	return &codeStep[I, struct{}]{
		execute: func(in I, _ continuationHandle) (struct{}, error) {
			fn(in)
			return struct{}{}, nil
		},
	}
}

// Run wraps a no-argument, no-result action as a Step[struct{}, struct{}].
func Run(fn func()) Step[struct{}, struct{}] {
	return &codeStep[struct{}, struct{}]{
		execute: func(struct{}, continuationHandle) (struct{}, error) {
			fn()
			return struct{}{}, nil
		},
	}
}

// Labeled returns a copy of a code step built by Apply, Supply, Consume, or
// Run with a diagnostic label attached; the original step is not modified.
// It returns step unchanged if step is not a code step (e.g. it was
// produced by a combinator).
func Labeled[I, O any](label string, step Step[I, O]) Step[I, O] {
	if cs, ok := step.(*codeStep[I, O]); ok {
		labeled := *cs
		labeled.lbl = label
		return &labeled
	}
	return step
}

