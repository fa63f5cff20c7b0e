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

package theater

import (
	gods "github.com/Workiva/go-datastructures/queue"

	"github.com/squaregear/theater/errors"
	"github.com/squaregear/theater/internal/queue"
)

// Mailbox is an actor instance's message queue.
//
// Implementations must be safe for multiple concurrent producers; the
// instance loop is the single consumer. Enqueue and Dequeue are both
// non-blocking: a bounded mailbox rejects the enqueue when full, and
// Dequeue reports false when empty.
type Mailbox interface {
	// Enqueue pushes a message into the mailbox
	Enqueue(message any) error
	// Dequeue fetches the next message, reporting false when empty
	Dequeue() (any, bool)
	// Len returns a snapshot of the number of queued messages
	Len() int64
	// IsEmpty reports whether the mailbox currently has no messages
	IsEmpty() bool
}

// MailboxFactory creates the mailbox of a new instance
type MailboxFactory func() Mailbox

// defaultMailbox is the unbounded lock-free MPSC mailbox
type defaultMailbox struct {
	underlying *queue.MPSC[any]
}

// enforce compilation error
var _ Mailbox = (*defaultMailbox)(nil)

// NewDefaultMailbox creates the default unbounded mailbox
func NewDefaultMailbox() Mailbox {
	return &defaultMailbox{underlying: queue.NewMPSC[any]()}
}

// Enqueue implementation. Never fails.
func (m *defaultMailbox) Enqueue(message any) error {
	m.underlying.Push(message)
	return nil
}

// Dequeue implementation
func (m *defaultMailbox) Dequeue() (any, bool) {
	return m.underlying.Pop()
}

// Len implementation
func (m *defaultMailbox) Len() int64 {
	return m.underlying.Len()
}

// IsEmpty implementation
func (m *defaultMailbox) IsEmpty() bool {
	return m.underlying.IsEmpty()
}

// BoundedMailbox is a fixed-capacity MPSC mailbox backed by a ring buffer.
// A full mailbox rejects the enqueue with ErrMailboxFull and the message is
// dropped, consistent with fire-and-forget delivery.
type BoundedMailbox struct {
	underlying *gods.RingBuffer
}

// enforce compilation error
var _ Mailbox = (*BoundedMailbox)(nil)

// NewBoundedMailbox creates a bounded mailbox with the given capacity. The
// ring buffer rounds the capacity up to the next power of two.
func NewBoundedMailbox(capacity int) *BoundedMailbox {
	return &BoundedMailbox{underlying: gods.NewRingBuffer(uint64(capacity))}
}

// Enqueue inserts a message, rejecting it when the mailbox is full
func (m *BoundedMailbox) Enqueue(message any) error {
	ok, err := m.underlying.Offer(message)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrMailboxFull
	}
	return nil
}

// Dequeue fetches the next message, reporting false when empty
func (m *BoundedMailbox) Dequeue() (any, bool) {
	if m.underlying.Len() == 0 {
		return nil, false
	}
	item, err := m.underlying.Get()
	if err != nil {
		return nil, false
	}
	return item, true
}

// Len returns a snapshot of the number of queued messages
func (m *BoundedMailbox) Len() int64 {
	return int64(m.underlying.Len())
}

// IsEmpty reports whether the mailbox currently has no messages
func (m *BoundedMailbox) IsEmpty() bool {
	return m.underlying.Len() == 0
}
