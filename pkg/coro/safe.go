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
	"runtime/debug"

	"github.com/pkg/errors"
)

// safeExecute calls fn defensively: a panic inside user-supplied step code
// is recovered and turned into a StepFailed error carrying the panic value
// and a captured stack, rather than crashing the worker goroutine and, with
// it, every other coroutine sharing the same Executor.
func safeExecute[I, O any](fn func(I, continuationHandle) (O, error), in I, h continuationHandle) (out O, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero O
			out = zero
			err = errors.Errorf("step panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(in, h)
}
