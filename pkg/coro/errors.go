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
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the failures the runtime can surface on a
// Continuation. See RuntimeError.
type ErrorKind int

const (
	// StepFailed means user code inside a step's execute function returned
	// an error or panicked.
	StepFailed ErrorKind = iota
	// ChannelClosed means a send or receive targeted a channel whose
	// producers have closed it.
	ChannelClosed
	// Cancelled means the continuation or its scope was cancelled before
	// the step completed.
	Cancelled
	// BuilderError means an invalid composition was attempted (nil step,
	// appending past a terminal step, resetting an already-terminated
	// chain). Always reported eagerly, never carried on a Continuation.
	BuilderError
	// Internal means the executor rejected work or is shutting down.
	Internal
)

func (k ErrorKind) String() string {
	switch k {
	case StepFailed:
		return "StepFailed"
	case ChannelClosed:
		return "ChannelClosed"
	case Cancelled:
		return "Cancelled"
	case BuilderError:
		return "BuilderError"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// RuntimeError wraps a cause with the ErrorKind that classifies it. Use
// errors.As to recover the kind, or Cause (github.com/pkg/errors) to reach
// the underlying cause chain.
type RuntimeError struct {
	Kind  ErrorKind
	cause error
}

func (e *RuntimeError) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.cause.Error())
}

// Unwrap exposes the cause chain to errors.Is/errors.As.
func (e *RuntimeError) Unwrap() error { return e.cause }

// Cause implements github.com/pkg/errors' Causer, so errors.Cause(err)
// reaches the innermost cause even through a RuntimeError wrapper.
func (e *RuntimeError) Cause() error { return e.cause }

// newRuntimeError wraps cause (which may be nil) with kind, attaching a
// stack trace via pkg/errors when cause does not already carry one.
func newRuntimeError(kind ErrorKind, cause error) *RuntimeError {
	if cause == nil {
		cause = errors.New(kind.String())
	} else {
		cause = errors.WithStack(cause)
	}
	return &RuntimeError{Kind: kind, cause: cause}
}

// errStepFailed wraps a step execution failure as StepFailed, preserving the
// cause chain (e.g. a ChannelClosed error raised by a channel step surfaces
// as StepFailed wrapping ChannelClosed, per spec).
func errStepFailed(cause error) *RuntimeError {
	return newRuntimeError(StepFailed, errors.WithMessage(cause, "step execution failed"))
}

func errChannelClosed(channelID string) *RuntimeError {
	return newRuntimeError(ChannelClosed, errors.Errorf("channel %q is closed", channelID))
}

func errCancelled() *RuntimeError {
	return newRuntimeError(Cancelled, errors.New("continuation was cancelled"))
}

func errInternal(cause error) *RuntimeError {
	return newRuntimeError(Internal, cause)
}

// BuilderErrorf constructs an eagerly reported composition error.
func BuilderErrorf(format string, args ...any) error {
	return &RuntimeError{Kind: BuilderError, cause: errors.Errorf(format, args...)}
}
