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

import "github.com/pkg/errors"

// errShortCircuit is an internal sentinel: conditionalStep returns it from
// its blocking paths to stop the caller (chainedStep, or a ForEach loop)
// from running anything further, after it has already finished the
// continuation directly with a nil
// result. It never reaches application code: by the time any caller
// observes it, finishAny has already won the state CAS, so a subsequent
// failStep call (if any) is a no-op.
var errShortCircuit = errors.New("coro: predicate false, no else branch")

type conditionalStep[I, O any] struct {
	lbl       string
	predicate func(I, RunInfo) bool
	thenStep  Step[I, O]
	elseStep  Step[I, O]
}

// DoIf runs thenStep when predicate(input) is true. When it is false and no
// OrElse branch has been attached, the coroutine finishes cleanly with no
// result (the documented ⟂ semantics): nothing downstream in the chain
// runs. The returned *conditionalStep satisfies Step[I, O] directly and
// also exposes OrElse, so doIf/orElse can be composed the way spec.md §4.D
// lists them: DoIf(pred, then).OrElse(els) is equivalent to
// DoIfElse(pred, then, els).
func DoIf[I, O any](predicate func(I, RunInfo) bool, thenStep Step[I, O]) *conditionalStep[I, O] {
	return &conditionalStep[I, O]{predicate: predicate, thenStep: thenStep}
}

// DoIfElse runs thenStep when predicate(input) is true, elseStep otherwise.
// Exactly one of the two ever executes.
func DoIfElse[I, O any](predicate func(I, RunInfo) bool, thenStep, elseStep Step[I, O]) Step[I, O] {
	return &conditionalStep[I, O]{predicate: predicate, thenStep: thenStep, elseStep: elseStep}
}

// OrElse attaches the false-branch step to a *conditionalStep built by
// DoIf, turning it into the equivalent of DoIfElse. It mutates and returns
// the receiver, so DoIf(pred, then).OrElse(els) reads as one expression.
func (s *conditionalStep[I, O]) OrElse(elseStep Step[I, O]) Step[I, O] {
	s.elseStep = elseStep
	return s
}

func (s *conditionalStep[I, O]) stepLabel() string { return s.lbl }

// branch evaluates the predicate and returns the step to run, or ok=false
// if neither branch applies.
func (s *conditionalStep[I, O]) branch(input I, h continuationHandle) (Step[I, O], bool) {
	if s.predicate(input, runInfoView{h}) {
		return s.thenStep, true
	}
	if s.elseStep != nil {
		return s.elseStep, true
	}
	return nil, false
}

func (s *conditionalStep[I, O]) RunBlocking(input I, h continuationHandle) (O, error) {
	if checkCancelled(h) {
		var zero O
		return zero, errCancelled()
	}
	step, ok := s.branch(input, h)
	if !ok {
		var zero O
		h.finishAny(nil)
		return zero, errShortCircuit
	}
	return step.RunBlocking(input, h)
}

func (s *conditionalStep[I, O]) Suspend(input *I, h continuationHandle) *Suspension[I] {
	return newSuspension[I](input, nil, h)
}

func (s *conditionalStep[I, O]) runBlockingAny(input any, h continuationHandle) (any, error) {
	if checkCancelled(h) {
		return nil, errCancelled()
	}
	typed, _ := input.(I)
	step, ok := s.branch(typed, h)
	if !ok {
		h.finishAny(nil)
		return nil, errShortCircuit
	}
	return step.runBlockingAny(typed, h)
}

func (s *conditionalStep[I, O]) runAsyncAny(prev *AsyncStage[any], next anyStep, h continuationHandle) {
	h.executor().Submit(func() {
		in, err := prev.await()
		if err != nil {
			return
		}
		if checkCancelled(h) {
			return
		}
		typed, _ := in.(I)
		step, ok := s.branch(typed, h)
		if !ok {
			h.finishAny(nil)
			return
		}
		step.runAsyncAny(completedAnyStage(typed, nil), next, h)
	})
}
