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
	"context"
	"testing"
	"time"
)

func TestApply_BlockingRunsPureFunction(t *testing.T) {
	_, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	step := Apply(func(s string) int { return len(s) })
	co := First(step)

	s := Launch(nil, func(scope *Scope) {
		cont := Blocking(scope, co, "hello")
		n, err := cont.GetResult()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 5 {
			t.Fatalf("got %d, want 5", n)
		}
	})
	_ = s
}

func TestSupplyConsumeRun(t *testing.T) {
	s := Launch(nil, func(scope *Scope) {
		supplyCo := First(Supply(func() string { return "x" }))
		cont := Blocking(scope, supplyCo, struct{}{})
		v, err := cont.GetResult()
		if err != nil || v != "x" {
			t.Fatalf("Supply: got (%q, %v)", v, err)
		}

		var consumed string
		consumeCo := First(Consume(func(s string) { consumed = s }))
		c2 := Blocking(scope, consumeCo, "y")
		if _, err := c2.GetResult(); err != nil {
			t.Fatalf("Consume: unexpected error: %v", err)
		}
		if consumed != "y" {
			t.Fatalf("Consume: got %q, want %q", consumed, "y")
		}

		var ran bool
		runCo := First(Run(func() { ran = true }))
		c3 := Blocking(scope, runCo, struct{}{})
		if _, err := c3.GetResult(); err != nil {
			t.Fatalf("Run: unexpected error: %v", err)
		}
		if !ran {
			t.Fatalf("Run: action never executed")
		}
	})
	_ = s
}

func TestApplyWithContext_SeesRunInfo(t *testing.T) {
	var sawAttr string
	key := Key[string]("tag")

	step := ApplyWithContext(func(in string, info RunInfo) (string, error) {
		Set(info.Attributes(), key, "seen")
		v, _ := Get(info.Attributes(), key)
		sawAttr = v
		return in, nil
	})
	co := First(step)

	Launch(nil, func(scope *Scope) {
		cont := Blocking(scope, co, "hi")
		if _, err := cont.GetResult(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if sawAttr != "seen" {
		t.Fatalf("got %q, want %q", sawAttr, "seen")
	}
}

func TestApply_PanicRecoveredAsStepFailed_Blocking(t *testing.T) {
	step := Apply(func(string) string { panic("boom") })
	co := First(step)

	Launch(nil, func(scope *Scope) {
		cont := Blocking(scope, co, "x")
		_, err := cont.GetResult()
		if err == nil {
			t.Fatalf("expected an error, got nil")
		}
		if !hasRuntimeErrorKind(err, StepFailed) {
			t.Fatalf("got %v, want a StepFailed error", err)
		}
	})
}

func TestApply_PanicRecoveredAsStepFailed_Async(t *testing.T) {
	step := Apply(func(string) string { panic("boom") })
	co := First(step)

	Launch(nil, func(scope *Scope) {
		cont := Async(scope, co, "x")
		_, err := cont.GetResult()
		if err == nil {
			t.Fatalf("expected an error, got nil")
		}
		if !hasRuntimeErrorKind(err, StepFailed) {
			t.Fatalf("got %v, want a StepFailed error", err)
		}
		if !cont.IsDone() {
			t.Fatalf("continuation must still finalize after a recovered panic")
		}
	})
}

func TestCodeStep_Suspend_CapturesInputAndHandle(t *testing.T) {
	var h continuationHandle
	capture := ApplyWithContext(func(in string, info RunInfo) (string, error) {
		h = info.(runInfoView).h
		return in, nil
	})
	co := First(capture)

	Launch(nil, func(scope *Scope) {
		if _, err := Blocking(scope, co, "hi").GetResult(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	step := Apply(func(s string) string { return s })
	cs, ok := step.(*codeStep[string, string])
	if !ok {
		t.Fatalf("expected *codeStep, got %T", step)
	}
	input := "hello"
	susp := cs.Suspend(&input, h)
	v, ok := susp.Input()
	if !ok || v != "hello" {
		t.Fatalf("Input(): got (%q, %v), want (%q, true)", v, ok, "hello")
	}
	if susp.Handle() != h {
		t.Fatalf("Handle() did not return the continuation handle passed to Suspend")
	}
}

func TestCodeStep_Suspend_NilInputReportsAbsent(t *testing.T) {
	var h continuationHandle
	capture := ApplyWithContext(func(in string, info RunInfo) (string, error) {
		h = info.(runInfoView).h
		return in, nil
	})
	co := First(capture)

	Launch(nil, func(scope *Scope) {
		if _, err := Blocking(scope, co, "hi").GetResult(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	step := Apply(func(s string) string { return s })
	cs, ok := step.(*codeStep[string, string])
	if !ok {
		t.Fatalf("expected *codeStep, got %T", step)
	}
	susp := cs.Suspend(nil, h)
	if _, ok := susp.Input(); ok {
		t.Fatalf("Input(): expected no captured input when Suspend was called with nil")
	}
}

func TestLabeled_AttachesLabelToCodeStep(t *testing.T) {
	step := Labeled("greet", Apply(func(s string) string { return s }))
	cs, ok := step.(*codeStep[string, string])
	if !ok {
		t.Fatalf("expected *codeStep, got %T", step)
	}
	if cs.stepLabel() != "greet" {
		t.Fatalf("got label %q, want %q", cs.stepLabel(), "greet")
	}
}
