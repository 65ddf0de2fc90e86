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
	"container/list"
	"log/slog"
	"sync"
)

// Channel is a bounded FIFO mailbox shared between coroutines, looked up by
// ChannelId from a Context. Values are delivered in send order. A send that
// finds the buffer full parks until a receiver frees a slot; a receive that
// finds the buffer empty parks until a sender offers a value. Parking uses a
// Suspension rather than blocking a goroutine outright, so the same Channel
// serves both RunBlocking and RunAsync callers: the only difference is how
// the caller waits on the returned Suspension (see sendBlocking/
// sendSuspending and receiveBlocking/receiveSuspending).
type Channel[T any] struct {
	id       *ChannelId[T]
	capacity int

	mu        sync.Mutex
	buf       []T
	closed    bool
	senders   *list.List // of *pendingSend[T]
	receivers *list.List // of *Suspension[T]
}

type pendingSend[T any] struct {
	value T
	susp  *Suspension[T]
}

func newChannel[T any](id *ChannelId[T], capacity int) *Channel[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Channel[T]{
		id:        id,
		capacity:  capacity,
		senders:   list.New(),
		receivers: list.New(),
	}
}

// Capacity returns the channel's configured buffer size.
func (ch *Channel[T]) Capacity() int { return ch.capacity }

// Close marks the channel closed: already-buffered values are still
// delivered to receivers that ask for them, but every parked sender and
// receiver, and every future call, fails with an ErrChannelClosed-kind
// error. Close is idempotent.
func (ch *Channel[T]) Close() {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return
	}
	ch.closed = true
	var wokenRecv []*Suspension[T]
	for e := ch.receivers.Front(); e != nil; e = e.Next() {
		wokenRecv = append(wokenRecv, e.Value.(*Suspension[T]))
	}
	ch.receivers.Init()
	var wokenSend []*pendingSend[T]
	for e := ch.senders.Front(); e != nil; e = e.Next() {
		wokenSend = append(wokenSend, e.Value.(*pendingSend[T]))
	}
	ch.senders.Init()
	ch.mu.Unlock()

	slog.Debug("coro: channel closed", "channel", ch.id.String())
	var zero T
	for _, s := range wokenRecv {
		s.Resume(zero, errChannelClosed(ch.id.String()))
	}
	for _, p := range wokenSend {
		p.susp.Resume(p.value, errChannelClosed(ch.id.String()))
	}
}

// admit attempts to hand value straight to a parked receiver, or buffer it
// if there is room. Caller must hold ch.mu. Returns true if value was
// accepted (delivered or buffered).
func (ch *Channel[T]) admit(value T) bool {
	for {
		e := ch.receivers.Front()
		if e == nil {
			break
		}
		ch.receivers.Remove(e)
		s := e.Value.(*Suspension[T])
		if s.Resume(value, nil) {
			return true
		}
		// That receiver's suspension was already resolved by another
		// Resume call; try the next one.
	}
	if len(ch.buf) < ch.capacity {
		ch.buf = append(ch.buf, value)
		return true
	}
	return false
}

// release pulls the oldest parked sender's value into the buffer, if any
// room just opened up and a sender is waiting. Caller must hold ch.mu.
func (ch *Channel[T]) release() {
	if len(ch.buf) >= ch.capacity {
		return
	}
	for {
		e := ch.senders.Front()
		if e == nil {
			return
		}
		ch.senders.Remove(e)
		p := e.Value.(*pendingSend[T])
		var zero T
		if p.susp.Resume(zero, nil) {
			ch.buf = append(ch.buf, p.value)
			return
		}
		// That sender was already resolved by another Resume call; try
		// the next one.
	}
}

// sendBlocking delivers value, parking the calling goroutine if necessary.
func (ch *Channel[T]) sendBlocking(value T, h continuationHandle) error {
	s := ch.sendSuspending(value, h)
	_, err := s.await()
	return err
}

// sendSuspending mirrors sendBlocking but completes asynchronously: the
// returned Suspension resolves once value has been accepted, or fails if the
// channel is, or becomes, closed first.
func (ch *Channel[T]) sendSuspending(value T, h continuationHandle) *Suspension[T] {
	s := newSuspension[T](&value, nil, h)
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		s.Resume(value, errChannelClosed(ch.id.String()))
		return s
	}
	if !ch.admit(value) {
		ch.senders.PushBack(&pendingSend[T]{value: value, susp: s})
		ch.mu.Unlock()
		return s
	}
	ch.mu.Unlock()
	slog.Debug("coro: channel send", "channel", ch.id.String())
	s.Resume(value, nil)
	return s
}

// receiveBlocking returns the next value, parking the calling goroutine if
// the buffer is currently empty.
func (ch *Channel[T]) receiveBlocking(h continuationHandle) (T, error) {
	s := ch.receiveSuspending(h)
	return s.await()
}

// receiveSuspending mirrors receiveBlocking but completes asynchronously.
func (ch *Channel[T]) receiveSuspending(h continuationHandle) *Suspension[T] {
	s := newSuspension[T](nil, nil, h)
	ch.mu.Lock()
	if len(ch.buf) > 0 {
		v := ch.buf[0]
		ch.buf = ch.buf[1:]
		ch.release()
		ch.mu.Unlock()
		slog.Debug("coro: channel receive", "channel", ch.id.String())
		s.Resume(v, nil)
		return s
	}
	if ch.closed {
		ch.mu.Unlock()
		var zero T
		s.Resume(zero, errChannelClosed(ch.id.String()))
		return s
	}
	ch.receivers.PushBack(s)
	ch.mu.Unlock()
	return s
}
