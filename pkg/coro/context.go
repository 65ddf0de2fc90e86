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

// Context owns an Executor and the channel registry for a collection of
// scopes, and aggregates the scopes currently running under it. A Context's
// lifecycle is application-controlled: it is expected to outlive every scope
// launched against it. Coroutines themselves keep no reference to a context
// or a scope; only Continuation does, once a coroutine starts running.
type Context struct {
	executor Executor
	channels sync.Map // map[any]any, keyed by the *ChannelId[T] pointer boxed as any

	scopesMu sync.Mutex
	scopes   map[*Scope]struct{}

	attrs *Attributes
}

// ContextOption configures a Context at construction time.
type ContextOption func(*Context)

// WithExecutor overrides the context's Executor (default: a fresh
// PoolExecutor).
func WithExecutor(exec Executor) ContextOption {
	return func(c *Context) {
		if exec != nil {
			c.executor = exec
		}
	}
}

// NewContext constructs a Context. Without WithExecutor, a dedicated
// PoolExecutor is created for it.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		scopes: make(map[*Scope]struct{}),
		attrs:  NewAttributes(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.executor == nil {
		c.executor = NewPoolExecutor()
	}
	return c
}

// Executor returns the context's Executor.
func (c *Context) Executor() Executor { return c.executor }

// Attributes returns the context's attribute store.
func (c *Context) Attributes() *Attributes { return c.attrs }

// GetChannel returns the Channel registered under id, creating it lazily on
// first reference. capacityHint, if given, sets the capacity of a
// newly-created channel (must be >= 1); otherwise the default capacity is 1.
// Concurrent callers racing to create the same id all observe the same
// Channel instance (double-checked registration via sync.Map.LoadOrStore).
func GetChannel[T any](c *Context, id *ChannelId[T], capacityHint ...int) *Channel[T] {
	capacity := 1
	if len(capacityHint) > 0 && capacityHint[0] >= 1 {
		capacity = capacityHint[0]
	}
	fresh := newChannel[T](id, capacity)
	actual, _ := c.channels.LoadOrStore(id, fresh)
	return actual.(*Channel[T])
}

// registerScope adds scope to the context's active set.
func (c *Context) registerScope(s *Scope) {
	c.scopesMu.Lock()
	defer c.scopesMu.Unlock()
	c.scopes[s] = struct{}{}
}

// unregisterScope removes scope from the context's active set.
func (c *Context) unregisterScope(s *Scope) {
	c.scopesMu.Lock()
	defer c.scopesMu.Unlock()
	delete(c.scopes, s)
}

// snapshotScopes returns the currently registered scopes.
func (c *Context) snapshotScopes() []*Scope {
	c.scopesMu.Lock()
	defer c.scopesMu.Unlock()
	out := make([]*Scope, 0, len(c.scopes))
	for s := range c.scopes {
		out = append(out, s)
	}
	return out
}

// AwaitAll blocks until every scope currently registered with the context
// has finished. Scopes registered after AwaitAll starts are not waited on.
// This is intended for shutdown / demo code, not for structured-concurrency
// composition (use Scope.Await for that).
func (c *Context) AwaitAll() {
	for _, s := range c.snapshotScopes() {
		s.Await()
	}
}
