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

package persistence

import (
	"container/list"
	"context"
	"sync"

	"github.com/zeebo/xxh3"
	"go.uber.org/atomic"

	"github.com/squaregear/theater/address"
)

const memoryStoreShards = 16

// MemoryStore is a sharded in-memory Persister. It is the store of choice
// for tests and for ephemeral deployments that accept losing state on
// restart. An optional capacity turns it into an LRU cache that reports
// dropped entries to a RemovedListener, enabling tiered-storage policies.
type MemoryStore struct {
	shards   [memoryStoreShards]*memoryShard
	size     *atomic.Int64
	capacity int
	listener RemovedListener
}

type memoryShard struct {
	mu      sync.Mutex
	entries map[address.Address]*list.Element
	order   *list.List // front is most recently used
}

type memoryEntry struct {
	addr  address.Address
	state any
}

var _ Persister = (*MemoryStore)(nil)

// MemoryStoreOption configures a MemoryStore
type MemoryStoreOption func(*MemoryStore)

// WithCapacity bounds the total number of entries. When the bound is
// exceeded the least recently used entry of the receiving shard is dropped.
// Zero means unbounded.
func WithCapacity(capacity int) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.capacity = capacity
	}
}

// WithRemovedListener installs the listener notified of dropped entries
func WithRemovedListener(listener RemovedListener) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.listener = listener
	}
}

// NewMemoryStore creates an in-memory Persister
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	store := &MemoryStore{size: atomic.NewInt64(0)}
	for i := range store.shards {
		store.shards[i] = &memoryShard{
			entries: make(map[address.Address]*list.Element),
			order:   list.New(),
		}
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Connect implementation. The store has nothing to open.
func (s *MemoryStore) Connect(context.Context) error {
	return nil
}

// Disconnect implementation
func (s *MemoryStore) Disconnect(context.Context) error {
	return nil
}

// Get returns the persisted state of the given actor
func (s *MemoryStore) Get(_ context.Context, addr address.Address) (any, bool, error) {
	shard := s.shardFor(addr)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	element, ok := shard.entries[addr]
	if !ok {
		return nil, false, nil
	}
	shard.order.MoveToFront(element)
	return element.Value.(*memoryEntry).state, true, nil
}

// Put stores the state of the given actor
func (s *MemoryStore) Put(_ context.Context, addr address.Address, state any) error {
	shard := s.shardFor(addr)

	shard.mu.Lock()
	if element, ok := shard.entries[addr]; ok {
		element.Value.(*memoryEntry).state = state
		shard.order.MoveToFront(element)
		shard.mu.Unlock()
		return nil
	}

	shard.entries[addr] = shard.order.PushFront(&memoryEntry{addr: addr, state: state})
	total := s.size.Add(1)

	var dropped *memoryEntry
	if s.capacity > 0 && total > int64(s.capacity) {
		if oldest := shard.order.Back(); oldest != nil {
			dropped = oldest.Value.(*memoryEntry)
			shard.order.Remove(oldest)
			delete(shard.entries, dropped.addr)
			s.size.Dec()
		}
	}
	shard.mu.Unlock()

	if dropped != nil && s.listener != nil {
		s.listener("memstore", dropped.addr, dropped.state)
	}
	return nil
}

// Delete removes the state of the given actor
func (s *MemoryStore) Delete(_ context.Context, addr address.Address) error {
	shard := s.shardFor(addr)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if element, ok := shard.entries[addr]; ok {
		shard.order.Remove(element)
		delete(shard.entries, addr)
		s.size.Dec()
	}
	return nil
}

// Len returns the number of stored entries
func (s *MemoryStore) Len() int {
	return int(s.size.Load())
}

func (s *MemoryStore) shardFor(addr address.Address) *memoryShard {
	return s.shards[xxh3.HashString(addr.String())%memoryStoreShards]
}
