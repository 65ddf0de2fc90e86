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

import "log/slog"

// logLifecycle centralizes the structured lifecycle logging emitted while a
// coroutine runs (started, finalized): one call site so field names stay
// consistent across scope.go and continuation.go. channel.go logs its own
// send/receive/close debug lines with slog directly.
func logLifecycle(event, coroutine string, args ...any) {
	slog.Debug("coro: "+event, append([]any{"coroutine", coroutine}, args...)...)
}

// logStepFailure reports a step failure at Warn level; called once per
// continuation, at the point the FAILED state is won.
func logStepFailure(coroutine string, cause error) {
	slog.Warn("coro: step failed", "coroutine", coroutine, "err", cause)
}
