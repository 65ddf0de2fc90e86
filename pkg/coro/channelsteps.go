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

// sendStep and receiveStep implement runAsyncAny themselves instead of
// going through defaultRunAsync: they must park on a Channel's wait queue
// before they can hand control to whatever follows them, rather than
// resolving synchronously the moment their own function returns
// (spec.md §4.C).
//
// sendStep routes its actual parking through Suspend rather than calling
// the channel directly: for sendStep, Suspend(input, c) and the
// channel/async-wait logic are the same operation (its input type and the
// value carried by its Suspension coincide), so RunBlocking and
// runAsyncAny both call Suspend and differ only in how they wait on the
// result (await vs onResume). receiveStep cannot do the same for its own
// wait: Suspend's signature is fixed to the step's input type (struct{} for
// Receive, since it takes no meaningful input), so a Suspension[struct{}]
// has nowhere to carry the T value a receive actually produces; Suspend
// still wraps the channel's own T-typed suspension for callers who only
// need to know a value arrived, but receiveStep's own RunBlocking/
// runAsyncAny call the channel directly to keep the received value intact.

type sendStep[T any] struct {
	lbl string
	id  *ChannelId[T]
}

// Send builds a step that hands input to the channel identified by id,
// parking the coroutine until a receiver (or buffer slot) accepts it.
func Send[T any](id *ChannelId[T]) Step[T, struct{}] {
	return &sendStep[T]{id: id}
}

func (s *sendStep[T]) stepLabel() string { return s.lbl }

func (s *sendStep[T]) channel(h continuationHandle) *Channel[T] {
	return GetChannel(h.contextHandle(), s.id)
}

func (s *sendStep[T]) RunBlocking(input T, h continuationHandle) (struct{}, error) {
	if checkCancelled(h) {
		return struct{}{}, errCancelled()
	}
	_, err := s.Suspend(&input, h).await()
	return struct{}{}, err
}

func (s *sendStep[T]) Suspend(input *T, h continuationHandle) *Suspension[T] {
	var v T
	if input != nil {
		v = *input
	}
	return s.channel(h).sendSuspending(v, h)
}

func (s *sendStep[T]) runBlockingAny(input any, h continuationHandle) (any, error) {
	in, _ := input.(T)
	return s.RunBlocking(in, h)
}

func (s *sendStep[T]) runAsyncAny(prev *AsyncStage[any], next anyStep, h continuationHandle) {
	h.executor().Submit(func() {
		in, err := prev.await()
		if err != nil {
			return
		}
		if checkCancelled(h) {
			return
		}
		typed, _ := in.(T)
		susp := s.Suspend(&typed, h)
		susp.onResume(func(_ T, err error) {
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

type receiveStep[T any] struct {
	lbl string
	id  *ChannelId[T]
}

// Receive builds a step that takes the next value from the channel
// identified by id, parking the coroutine until a sender (or buffered value)
// is available.
func Receive[T any](id *ChannelId[T]) Step[struct{}, T] {
	return &receiveStep[T]{id: id}
}

func (s *receiveStep[T]) stepLabel() string { return s.lbl }

func (s *receiveStep[T]) channel(h continuationHandle) *Channel[T] {
	return GetChannel(h.contextHandle(), s.id)
}

func (s *receiveStep[T]) RunBlocking(_ struct{}, h continuationHandle) (T, error) {
	if checkCancelled(h) {
		var zero T
		return zero, errCancelled()
	}
	return s.channel(h).receiveBlocking(h)
}

func (s *receiveStep[T]) Suspend(_ *struct{}, h continuationHandle) *Suspension[struct{}] {
	inner := s.channel(h).receiveSuspending(h)
	out := newSuspension[struct{}](nil, nil, h)
	inner.onResume(func(_ T, err error) {
		out.Resume(struct{}{}, err)
	})
	return out
}

func (s *receiveStep[T]) runBlockingAny(_ any, h continuationHandle) (any, error) {
	return s.RunBlocking(struct{}{}, h)
}

func (s *receiveStep[T]) runAsyncAny(prev *AsyncStage[any], next anyStep, h continuationHandle) {
	h.executor().Submit(func() {
		_, err := prev.await()
		if err != nil {
			return
		}
		if checkCancelled(h) {
			return
		}
		susp := s.channel(h).receiveSuspending(h)
		susp.onResume(func(v T, err error) {
			if err != nil {
				h.failStep(err)
				return
			}
			if next == nil {
				h.finishAny(v)
				return
			}
			next.runAsyncAny(completedAnyStage(v, nil), nil, h)
		})
	})
}
