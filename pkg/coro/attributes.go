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

// attrKey is the identity-equality key behind every typed attribute. Two
// keys minted by separate calls to Key[T] are always distinct, even if they
// share a name: the name exists only for diagnostics, the pointer is the
// true identity. This mirrors the single hidden panicStoreKey{} idiom the
// teacher uses for a context value, generalized to an arbitrary typed map.
type attrKey[T any] struct {
	name string
}

// Key mints a fresh, typed attribute key. Store the returned key (typically
// in a package-level var) and share it between writers and readers; a key
// created on the fly never matches any previously stored value.
func Key[T any](name string) *attrKey[T] {
	return &attrKey[T]{name: name}
}

func (k *attrKey[T]) String() string {
	if k == nil {
		return "<nil-key>"
	}
	return k.name
}

// Attributes is a typed, identity-keyed, concurrent key/value store attached
// to coroutines, contexts, scopes, and continuations so steps can share
// per-execution data without resorting to static state.
type Attributes struct {
	values sync.Map // map[any]any, keyed by *attrKey[T]
}

// NewAttributes returns an empty attribute store.
func NewAttributes() *Attributes {
	return &Attributes{}
}

// Set stores value under key, replacing any previous value.
func Set[T any](a *Attributes, key *attrKey[T], value T) {
	if a == nil || key == nil {
		return
	}
	a.values.Store(key, value)
}

// Get retrieves the value stored under key. ok is false when nothing has
// been set for this key.
func Get[T any](a *Attributes, key *attrKey[T]) (value T, ok bool) {
	if a == nil || key == nil {
		var zero T
		return zero, false
	}
	raw, found := a.values.Load(key)
	if !found {
		var zero T
		return zero, false
	}
	v, matches := raw.(T)
	return v, matches
}

// GetOr retrieves the value stored under key, or def when absent.
func GetOr[T any](a *Attributes, key *attrKey[T], def T) T {
	if v, ok := Get(a, key); ok {
		return v
	}
	return def
}

// clone returns a shallow copy of the store: the copy shares no mutable
// state with the receiver beyond the values themselves (copy-on-build for
// Coroutine.Then/First, per DESIGN NOTES).
func (a *Attributes) clone() *Attributes {
	out := NewAttributes()
	if a == nil {
		return out
	}
	a.values.Range(func(k, v any) bool {
		out.values.Store(k, v)
		return true
	})
	return out
}
