// MIT License
//
// Copyright (c) 2023-2026 Theater Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package persistence defines the durable state contract of the runtime and
// ships three implementations: a bbolt disk store (the bundled default), a
// bounded in-memory store, and a Redis store.
package persistence

import (
	"context"

	"github.com/squaregear/theater/address"
)

// Persister is the durable key-value backend actor state is mirrored to.
//
// Get, Put and Delete may be called from many instance loops concurrently;
// implementations must be safe for concurrent use. The runtime never
// retries: a failed Put means the update is simply not durable, and on the
// next materialisation the actor sees the last successfully persisted state.
type Persister interface {
	// Connect prepares the backend for use
	Connect(ctx context.Context) error
	// Disconnect releases the backend resources
	Disconnect(ctx context.Context) error
	// Get returns the persisted state of the given actor. The second return
	// value reports whether any state was found.
	Get(ctx context.Context, addr address.Address) (any, bool, error)
	// Put stores the state of the given actor
	Put(ctx context.Context, addr address.Address, state any) error
	// Delete removes the state of the given actor. Deleting an absent entry
	// is not an error.
	Delete(ctx context.Context, addr address.Address) error
}

// RemovedListener is notified when a capacity-bounded store drops an entry.
// The runtime core does not consume these notifications; they exist so
// application-level tiered-storage policies can react.
type RemovedListener func(provider string, addr address.Address, state any)
