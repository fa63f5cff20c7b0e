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

// Package errors defines the sentinel errors shared by the runtime components.
package errors

import "errors"

var (
	// ErrNoNodes is returned when a message is routed while the cluster view
	// is empty. On a server node the view always contains at least the local
	// node, so this can only surface transiently during startup.
	ErrNoNodes = errors.New("no nodes in the cluster view")

	// ErrDead indicates that the addressed instance has terminated.
	ErrDead = errors.New("actor instance is not alive")

	// ErrKindNotRegistered is returned when a message addresses an actor kind
	// that has not been registered with the system.
	ErrKindNotRegistered = errors.New("actor kind is not registered")

	// ErrSystemNotStarted is returned when the system is used before Start
	// or after Stop.
	ErrSystemNotStarted = errors.New("actor system has not started")

	// ErrClientOnly reports that a node runs in client-only mode. No
	// operation of this module returns it.
	ErrClientOnly = errors.New("node is running in client-only mode")

	// ErrMailboxFull is returned by bounded mailboxes when an enqueue would
	// exceed their capacity. The message is dropped, consistent with
	// fire-and-forget delivery.
	ErrMailboxFull = errors.New("mailbox is full")

	// ErrPersisterNotConnected is returned when a store operation runs before
	// Connect or after Disconnect.
	ErrPersisterNotConnected = errors.New("persister is not connected")

	// ErrAlreadyInitialized is returned when a discovery provider is
	// initialized more than once.
	ErrAlreadyInitialized = errors.New("discovery provider already initialized")

	// ErrAlreadyRegistered is returned when a discovery provider is
	// registered more than once.
	ErrAlreadyRegistered = errors.New("discovery provider already registered")

	// ErrNotInitialized is returned when a discovery provider is used before
	// Initialize.
	ErrNotInitialized = errors.New("discovery provider not initialized")
)
