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

import "sync"

// Collector gathers the per-element outputs of a ForEachCollect step into an
// ordered, concurrency-safe slice.
type Collector[R any] struct {
	mu    sync.Mutex
	items []R
}

// NewCollector returns an empty Collector.
func NewCollector[R any]() *Collector[R] { return &Collector[R]{} }

func (c *Collector[R]) add(v R) {
	c.mu.Lock()
	c.items = append(c.items, v)
	c.mu.Unlock()
}

// Items returns a snapshot of everything collected so far.
func (c *Collector[R]) Items() []R {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]R, len(c.items))
	copy(out, c.items)
	return out
}

// continuationFunc adapts a plain callback into an anyStep, used as the
// "next" target when forEach needs to continue its own sequential loop
// instead of handing off to whatever follows it in the enclosing chain.
type continuationFunc struct {
	fn func(v any, err error)
}

func (continuationFunc) stepLabel() string { return "" }

func (c continuationFunc) runBlockingAny(input any, _ continuationHandle) (any, error) {
	c.fn(input, nil)
	return input, nil
}

func (c continuationFunc) runAsyncAny(prev *AsyncStage[any], _ anyStep, _ continuationHandle) {
	v, err := prev.await()
	c.fn(v, err)
}

type forEachStep[T, R any] struct {
	lbl         string
	elementStep Step[T, R]
	collector   *Collector[R]
	collect     bool
}

// ForEach applies step to every element of the input slice, in order,
// never in parallel for a single invocation. The per-element output is
// discarded; the next step in the chain sees unit (struct{}).
func ForEach[T, R any](step Step[T, R]) Step[[]T, struct{}] {
	return &forEachUnitStep[T, R]{inner: &forEachStep[T, R]{elementStep: step}}
}

// ForEachCollect is ForEach with per-element outputs gathered into a slice
// that is forwarded to the next step in the chain. Passing a *Collector
// also gives the caller a live, independently readable handle on the same
// values.
func ForEachCollect[T, R any](step Step[T, R], collector ...*Collector[R]) Step[[]T, []R] {
	var c *Collector[R]
	if len(collector) > 0 {
		c = collector[0]
	} else {
		c = NewCollector[R]()
	}
	return &forEachCollectStep[T, R]{inner: &forEachStep[T, R]{elementStep: step, collector: c, collect: true}}
}

// runBlockingSeq runs every element sequentially, returning the slice of
// per-element results (useful to the collecting variant; ignored by the
// unit variant) or the first error encountered.
func (f *forEachStep[T, R]) runBlockingSeq(items []T, h continuationHandle) ([]R, error) {
	out := make([]R, 0, len(items))
	for _, item := range items {
		if checkCancelled(h) {
			return nil, errCancelled()
		}
		v, err := f.elementStep.RunBlocking(item, h)
		if err != nil {
			return nil, err
		}
		if f.collector != nil {
			f.collector.add(v)
		}
		out = append(out, v)
	}
	return out, nil
}

// runAsyncSeq drives the async loop one element at a time: each element is
// its own suspension boundary (the element step's runAsyncAny schedules and
// returns immediately), so other coroutines can interleave between
// elements, with ordering preserved by the recursive continuation.
func (f *forEachStep[T, R]) runAsyncSeq(items []T, idx int, collected []R, h continuationHandle, done func([]R, error)) {
	if checkCancelled(h) {
		return
	}
	if idx >= len(items) {
		done(collected, nil)
		return
	}
	f.elementStep.runAsyncAny(completedAnyStage(any(items[idx]), nil), continuationFunc{
		fn: func(v any, err error) {
			if err != nil {
				h.failStep(err)
				return
			}
			typed, _ := v.(R)
			if f.collector != nil {
				f.collector.add(typed)
			}
			f.runAsyncSeq(items, idx+1, append(collected, typed), h, done)
		},
	}, h)
}

type forEachUnitStep[T, R any] struct {
	lbl   string
	inner *forEachStep[T, R]
}

func (s *forEachUnitStep[T, R]) stepLabel() string { return s.lbl }

func (s *forEachUnitStep[T, R]) RunBlocking(input []T, h continuationHandle) (struct{}, error) {
	if checkCancelled(h) {
		return struct{}{}, errCancelled()
	}
	_, err := s.inner.runBlockingSeq(input, h)
	return struct{}{}, err
}

func (s *forEachUnitStep[T, R]) Suspend(input *[]T, h continuationHandle) *Suspension[[]T] {
	return newSuspension[[]T](input, nil, h)
}

func (s *forEachUnitStep[T, R]) runBlockingAny(input any, h continuationHandle) (any, error) {
	items, _ := input.([]T)
	_, err := s.RunBlocking(items, h)
	if err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

func (s *forEachUnitStep[T, R]) runAsyncAny(prev *AsyncStage[any], next anyStep, h continuationHandle) {
	h.executor().Submit(func() {
		in, err := prev.await()
		if err != nil {
			return
		}
		if checkCancelled(h) {
			return
		}
		items, _ := in.([]T)
		s.inner.runAsyncSeq(items, 0, nil, h, func(_ []R, err error) {
			if err != nil {
				h.failStep(err)
				return
			}
			if next == nil {
				h.finishAny(struct{}{})
				return
			}
			next.runAsyncAny(completedAnyStage(struct{}{}, nil), nil, h)
		})
	})
}

type forEachCollectStep[T, R any] struct {
	lbl   string
	inner *forEachStep[T, R]
}

func (s *forEachCollectStep[T, R]) stepLabel() string { return s.lbl }

func (s *forEachCollectStep[T, R]) RunBlocking(input []T, h continuationHandle) ([]R, error) {
	if checkCancelled(h) {
		return nil, errCancelled()
	}
	return s.inner.runBlockingSeq(input, h)
}

func (s *forEachCollectStep[T, R]) Suspend(input *[]T, h continuationHandle) *Suspension[[]T] {
	return newSuspension[[]T](input, nil, h)
}

func (s *forEachCollectStep[T, R]) runBlockingAny(input any, h continuationHandle) (any, error) {
	items, _ := input.([]T)
	out, err := s.RunBlocking(items, h)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *forEachCollectStep[T, R]) runAsyncAny(prev *AsyncStage[any], next anyStep, h continuationHandle) {
	h.executor().Submit(func() {
		in, err := prev.await()
		if err != nil {
			return
		}
		if checkCancelled(h) {
			return
		}
		items, _ := in.([]T)
		s.inner.runAsyncSeq(items, 0, nil, h, func(out []R, err error) {
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
	})
}
