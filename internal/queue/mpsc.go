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

// Package queue provides the lock-free queues used by the runtime mailboxes.
package queue

import (
	"sync/atomic"
)

// node is a single link of the MPSC queue
type node[T any] struct {
	next atomic.Pointer[node[T]]
	data T
}

// MPSC is an unbounded Multi-Producer-Single-Consumer queue.
//
// Many goroutines may call Push concurrently; exactly one goroutine must
// call Pop. FIFO ordering is preserved across all producers.
// reference: https://concurrencyfreaks.blogspot.com/2014/04/multi-producer-single-consumer-queue.html
type MPSC[T any] struct {
	head   atomic.Pointer[node[T]] // consumer side
	tail   atomic.Pointer[node[T]] // producer side
	length atomic.Int64
}

// NewMPSC creates an empty MPSC queue. The queue starts with a stub node so
// producers can append by swapping the tail and linking through the
// previous node.
func NewMPSC[T any]() *MPSC[T] {
	stub := new(node[T])
	q := &MPSC[T]{}
	q.head.Store(stub)
	q.tail.Store(stub)
	return q
}

// Push appends the given value. It never blocks and is safe for concurrent
// producers.
func (q *MPSC[T]) Push(value T) {
	n := &node[T]{data: value}
	prev := q.tail.Swap(n)
	prev.next.Store(n)
	q.length.Add(1)
}

// Pop removes and returns the value at the head of the queue. It returns
// false when the queue is empty. Single consumer only.
func (q *MPSC[T]) Pop() (T, bool) {
	var zero T
	head := q.head.Load()
	next := head.next.Load()
	if next == nil {
		return zero, false
	}
	value := next.data
	next.data = zero
	q.head.Store(next)
	q.length.Add(-1)
	return value, true
}

// Len returns a snapshot of the number of queued values.
func (q *MPSC[T]) Len() int64 {
	return q.length.Load()
}

// IsEmpty reports whether the queue has no values. Best-effort under
// concurrency.
func (q *MPSC[T]) IsEmpty() bool {
	return q.Len() == 0
}
