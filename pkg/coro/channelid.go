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

import "github.com/google/uuid"

// ChannelId identifies a Channel[T] within a Context. Two ChannelId values
// are the same channel only if they are the same pointer: identity, not
// name, is what Context.channels keys on (mirrors attrKey's identity-keyed
// typed store in attributes.go). name is carried only for diagnostics.
type ChannelId[T any] struct {
	name string
	uid  uuid.UUID
}

// NewChannelId allocates a fresh channel identity. name is a diagnostic
// label (used in slog fields); it does not affect equality.
func NewChannelId[T any](name string) *ChannelId[T] {
	return &ChannelId[T]{name: name, uid: uuid.New()}
}

// String returns the diagnostic name, or the identity's UUID if none was
// given.
func (id *ChannelId[T]) String() string {
	if id.name != "" {
		return id.name
	}
	return id.uid.String()
}
