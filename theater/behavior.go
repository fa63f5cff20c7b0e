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
	"context"
	"time"
)

// Behavior is the capability of an actor kind: a stable name used as the
// wire-level type token plus the three callbacks driving every instance of
// the kind.
//
// All callbacks of a given instance are invoked from that instance's own
// goroutine only, so they never race with themselves.
type Behavior interface {
	// Kind returns the stable name of the actor kind
	Kind() string
	// Init produces the first state of an instance that has never been
	// persisted. It receives the message that caused the materialisation.
	Init(ctx context.Context, id string, message any) Verdict
	// Process handles a message against the current state
	Process(ctx context.Context, state any, id string, message any) Verdict
	// TimeToLive returns the idle timeout of the instance, recomputed after
	// every message. A non-positive duration selects the system default.
	TimeToLive(state any, id string) time.Duration
}

// InitFunc handles the never-persisted materialisation path
type InitFunc func(ctx context.Context, id string, message any) Verdict

// ProcessFunc handles a message against the current state
type ProcessFunc func(ctx context.Context, state any, id string, message any) Verdict

// TimeToLiveFunc computes the idle timeout
type TimeToLiveFunc func(state any, id string) time.Duration

// FuncBehavior builds a Behavior out of plain functions, applying the
// documented defaults for whatever is omitted: Init falls back to Process
// over a nil state, Process falls back to NoUpdate, TimeToLive falls back
// to the system default.
type FuncBehavior struct {
	kind       string
	init       InitFunc
	process    ProcessFunc
	timeToLive TimeToLiveFunc
}

// enforce compilation error
var _ Behavior = (*FuncBehavior)(nil)

// FuncBehaviorOption configures a FuncBehavior
type FuncBehaviorOption func(*FuncBehavior)

// WithInit sets the init callback
func WithInit(init InitFunc) FuncBehaviorOption {
	return func(b *FuncBehavior) {
		b.init = init
	}
}

// WithProcess sets the process callback
func WithProcess(process ProcessFunc) FuncBehaviorOption {
	return func(b *FuncBehavior) {
		b.process = process
	}
}

// WithTimeToLive sets the idle timeout callback
func WithTimeToLive(ttl TimeToLiveFunc) FuncBehaviorOption {
	return func(b *FuncBehavior) {
		b.timeToLive = ttl
	}
}

// NewFuncBehavior creates a Behavior named kind from the given callbacks
func NewFuncBehavior(kind string, opts ...FuncBehaviorOption) *FuncBehavior {
	behavior := &FuncBehavior{kind: kind}
	for _, opt := range opts {
		opt(behavior)
	}
	return behavior
}

// Kind returns the stable name of the actor kind
func (b *FuncBehavior) Kind() string {
	return b.kind
}

// Init implementation
func (b *FuncBehavior) Init(ctx context.Context, id string, message any) Verdict {
	if b.init != nil {
		return b.init(ctx, id, message)
	}
	return b.Process(ctx, nil, id, message)
}

// Process implementation
func (b *FuncBehavior) Process(ctx context.Context, state any, id string, message any) Verdict {
	if b.process != nil {
		return b.process(ctx, state, id, message)
	}
	return NoUpdate()
}

// TimeToLive implementation
func (b *FuncBehavior) TimeToLive(state any, id string) time.Duration {
	if b.timeToLive != nil {
		return b.timeToLive(state, id)
	}
	return 0
}
