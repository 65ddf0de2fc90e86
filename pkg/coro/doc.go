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

// Package coro implements a cooperative coroutine runtime: named, immutable
// step chains (Coroutine[I, O]) built from small composable Step[I, O]
// values, launched under a structured-concurrency Scope that tracks every
// in-flight run and lets a caller await or cancel them together.
//
// A Step is a value, not a goroutine: Apply, Supply, Consume, and Run wrap
// plain functions; DoIf/DoIfElse add predicate branching; ForEach/
// ForEachCollect add sequential iteration; Send/Receive exchange values
// through a bounded Channel. Coroutines are composed with First and Then,
// and launched with Scope's Async (on the context's Executor) or Blocking
// (on the calling goroutine) — both return a Continuation[O] that reports
// the eventual result, error, or cancellation.
//
// Cancellation is cooperative: Scope.Cancel and Continuation.Cancel flip a
// flag observed only at step boundaries, never while a step's own code is
// running. A Context owns the Executor and the Channel registry shared by
// every Scope launched against it.
package coro
