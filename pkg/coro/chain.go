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

// chainedStep sequences head then tail. It is the internal representation
// behind every multi-step chain: construction is right-associative (the
// head is reached first; appending a step builds a new chainedStep wrapper
// for every level down to the finish step, reusing every head step value
// unchanged, so the chain being extended is left intact).
type chainedStep struct {
	head anyStep
	tail anyStep
}

func (c *chainedStep) stepLabel() string { return c.head.stepLabel() }

func (c *chainedStep) runBlockingAny(input any, h continuationHandle) (any, error) {
	if checkCancelled(h) {
		return nil, errCancelled()
	}
	out, err := c.head.runBlockingAny(input, h)
	if err != nil {
		return nil, err
	}
	return c.tail.runBlockingAny(out, h)
}

func (c *chainedStep) runAsyncAny(prev *AsyncStage[any], next anyStep, h continuationHandle) {
	c.head.runAsyncAny(prev, appendNext(c.tail, next), h)
}

// insertBeforeFinish implements tailSplicer by recursing into the tail and
// returning a new wrapper around the same head; the receiver itself is not
// modified.
func (c *chainedStep) insertBeforeFinish(inserted, newFinish anyStep) anyStep {
	return &chainedStep{head: c.head, tail: insertBeforeFinishAny(c.tail, inserted, newFinish)}
}

// tailSplicer is implemented only by chainedStep; any other anyStep reached
// while walking toward the tail is treated as the terminal (finish) node,
// which is where insertion actually happens.
type tailSplicer interface {
	insertBeforeFinish(inserted, newFinish anyStep) anyStep
}

func insertBeforeFinishAny(step anyStep, inserted, newFinish anyStep) anyStep {
	if v, ok := step.(tailSplicer); ok {
		return v.insertBeforeFinish(inserted, newFinish)
	}
	return appendNext(inserted, newFinish)
}

// appendNext sequences step then next, or returns step unchanged if next is
// nil (meaning: step is already the last one before the enclosing chain's
// own continuation).
func appendNext(step anyStep, next anyStep) anyStep {
	if next == nil {
		return step
	}
	return &chainedStep{head: step, tail: next}
}

// finishStep is the terminal identity step: its sole effect is to install
// the incoming value as the continuation's result.
type finishStep[T any] struct{}

func (finishStep[T]) stepLabel() string { return "finish" }

func (finishStep[T]) runBlockingAny(input any, _ continuationHandle) (any, error) {
	return input, nil
}

func (finishStep[T]) runAsyncAny(prev *AsyncStage[any], _ anyStep, h continuationHandle) {
	h.executor().Submit(func() {
		v, err := prev.await()
		if err != nil {
			// Upstream already finalized the continuation.
			return
		}
		if checkCancelled(h) {
			return
		}
		h.finishAny(v)
	})
}

// Coroutine is a named immutable step chain plus a typed attribute bag. It
// is built by First and extended by Then/ThenLabeled; every extension
// produces a new Coroutine that copies the attribute bag (copy-on-build)
// while sharing every already-built step value (copy-on-build, not
// deep-copy — see DESIGN NOTES).
type Coroutine[I, O any] struct {
	name       string
	chain      anyStep
	attributes *Attributes
	buildErr   error
}

// First starts a Coroutine from its first step.
func First[I, O any](step Step[I, O]) *Coroutine[I, O] {
	co := &Coroutine[I, O]{attributes: NewAttributes()}
	if step == nil {
		co.buildErr = BuilderErrorf("coro: First called with a nil step")
		co.chain = finishStep[O]{}
		return co
	}
	co.chain = appendNext(step, finishStep[O]{})
	return co
}

// Then inserts step immediately before the finish step, producing a new
// Coroutine whose final output type is O2.
func Then[I, O, O2 any](co *Coroutine[I, O], step Step[O, O2]) *Coroutine[I, O2] {
	return thenLabeled(co, "", step)
}

// ThenLabeled is Then with a diagnostic label attached to step (no-op if
// step was not built via Apply/Supply/Consume/Run).
func ThenLabeled[I, O, O2 any](co *Coroutine[I, O], label string, step Step[O, O2]) *Coroutine[I, O2] {
	return thenLabeled(co, label, step)
}

func thenLabeled[I, O, O2 any](co *Coroutine[I, O], label string, step Step[O, O2]) *Coroutine[I, O2] {
	out := &Coroutine[I, O2]{name: co.name}
	if co.buildErr != nil {
		out.buildErr = co.buildErr
		out.attributes = co.attributes.clone()
		out.chain = finishStep[O2]{}
		return out
	}
	if step == nil {
		out.buildErr = BuilderErrorf("coro: Then called with a nil step")
		out.attributes = co.attributes.clone()
		out.chain = finishStep[O2]{}
		return out
	}
	if label != "" {
		step = Labeled(label, step)
	}
	out.attributes = co.attributes.clone()
	out.chain = insertBeforeFinishAny(co.chain, step, finishStep[O2]{})
	return out
}

// Named sets the coroutine's diagnostic name (used in slog lifecycle
// events) and returns the receiver for chaining.
func (co *Coroutine[I, O]) Named(name string) *Coroutine[I, O] {
	co.name = name
	return co
}

// Name returns the coroutine's diagnostic name.
func (co *Coroutine[I, O]) Name() string { return co.name }

// Err returns the first BuilderError encountered while composing this
// coroutine, reported eagerly rather than deferred to run time.
func (co *Coroutine[I, O]) Err() error { return co.buildErr }

// Attributes returns the coroutine's attribute bag.
func (co *Coroutine[I, O]) Attributes() *Attributes { return co.attributes }
