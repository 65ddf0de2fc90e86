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

import "testing"

func TestAttributes_SetGetRoundTrips(t *testing.T) {
	a := NewAttributes()
	key := Key[string]("name")

	if _, ok := Get(a, key); ok {
		t.Fatalf("expected no value before Set")
	}

	Set(a, key, "alice")
	got, ok := Get(a, key)
	if !ok {
		t.Fatalf("expected value after Set")
	}
	if got != "alice" {
		t.Fatalf("got %q, want %q", got, "alice")
	}
}

func TestAttributes_GetOrReturnsDefault(t *testing.T) {
	a := NewAttributes()
	key := Key[int]("count")

	if got := GetOr(a, key, 42); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}

	Set(a, key, 7)
	if got := GetOr(a, key, 42); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
}

func TestAttributes_KeysAreIdentityNotName(t *testing.T) {
	a := NewAttributes()
	k1 := Key[string]("dup")
	k2 := Key[string]("dup")

	Set(a, k1, "first")
	if _, ok := Get(a, k2); ok {
		t.Fatalf("expected k2 to be unrelated to k1 despite sharing a name")
	}
}

func TestAttributes_CloneIsIndependent(t *testing.T) {
	a := NewAttributes()
	key := Key[int]("n")
	Set(a, key, 1)

	clone := a.clone()
	Set(clone, key, 2)

	got, _ := Get(a, key)
	if got != 1 {
		t.Fatalf("mutating clone affected original: got %d, want 1", got)
	}
	gotClone, _ := Get(clone, key)
	if gotClone != 2 {
		t.Fatalf("clone got %d, want 2", gotClone)
	}
}
