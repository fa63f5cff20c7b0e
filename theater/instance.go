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
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/squaregear/theater/address"
	"github.com/squaregear/theater/errors"
	"github.com/squaregear/theater/log"
	"github.com/squaregear/theater/persistence"
)

// instance is a resident virtual actor. Its goroutine is the sole mutator of
// the actor state: it materialises the state from the persister, consumes
// the mailbox, invokes the behavior callbacks and applies their verdicts.
type instance struct {
	addr     address.Address
	behavior Behavior
	mailbox  Mailbox

	// signal wakes the loop after an enqueue; capacity one is enough since
	// the loop drains the whole mailbox on every wakeup
	signal chan struct{}

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}

	persister  persistence.Persister
	stopper    *stopper
	onExit     func(*instance)
	logger     log.Logger
	defaultTTL time.Duration

	alive *atomic.Bool
}

func newInstance(
	addr address.Address,
	behavior Behavior,
	mailbox Mailbox,
	persister persistence.Persister,
	stopper *stopper,
	onExit func(*instance),
	logger log.Logger,
	defaultTTL time.Duration,
) *instance {
	return &instance{
		addr:       addr,
		behavior:   behavior,
		mailbox:    mailbox,
		signal:     make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
		persister:  persister,
		stopper:    stopper,
		onExit:     onExit,
		logger:     logger,
		defaultTTL: defaultTTL,
		alive:      atomic.NewBool(true),
	}
}

// isAlive reports whether the loop is still consuming the mailbox
func (i *instance) isAlive() bool {
	return i.alive.Load()
}

// deliver enqueues a message for the loop. It fails with ErrDead when the
// loop has terminated; the caller drops the message.
func (i *instance) deliver(message any) error {
	if !i.alive.Load() {
		return errors.ErrDead
	}
	if err := i.mailbox.Enqueue(message); err != nil {
		return err
	}
	select {
	case i.signal <- struct{}{}:
	default:
	}
	return nil
}

// shutdown asks the loop to stop. The request is honoured after the
// currently-processing message completes; it never preempts a callback.
func (i *instance) shutdown() {
	i.stopOnce.Do(func() {
		close(i.stopCh)
	})
}

// run is the instance loop. It owns the state for the instance lifetime.
func (i *instance) run(firstMessage any) {
	defer func() {
		i.alive.Store(false)
		i.stopper.markDone(i)
		close(i.done)
		i.onExit(i)
	}()

	ctx := context.Background()
	i.stopper.touch(i)

	state, found, err := i.persister.Get(ctx, i.addr)
	if err != nil {
		// the message is dropped; the next delivery for this address will
		// attempt a fresh materialisation
		i.logger.Errorf("failed to materialise actor=(%s): %v", i.addr, err)
		return
	}

	var verdict Verdict
	if found {
		verdict = i.invokeProcess(ctx, state, firstMessage)
	} else {
		verdict = i.invokeInit(ctx, firstMessage)
		// a brand-new instance that declined to produce state has nothing
		// worth keeping resident
		if verdict.isNoUpdate() {
			verdict = StopTransient()
		}
	}

	var running bool
	state, running = i.apply(ctx, state, verdict)
	if !running {
		return
	}

	for {
		// drain whatever is queued before arming the idle timer
		for {
			select {
			case <-i.stopCh:
				return
			default:
			}

			message, ok := i.mailbox.Dequeue()
			if !ok {
				break
			}

			i.stopper.touch(i)
			verdict := i.invokeProcess(ctx, state, message)
			state, running = i.apply(ctx, state, verdict)
			if !running {
				return
			}
		}

		ttl := i.behavior.TimeToLive(state, i.addr.ID())
		if ttl <= 0 {
			ttl = i.defaultTTL
		}
		timer := time.NewTimer(ttl)

		select {
		case <-i.signal:
			timer.Stop()
		case <-i.stopCh:
			timer.Stop()
			return
		case <-timer.C:
			// idle timeout: vacate memory, durable state stays recoverable
			return
		}
	}
}

// invokeInit runs the init callback, turning a panic into a silent stop that
// leaves the persisted state untouched
func (i *instance) invokeInit(ctx context.Context, message any) (verdict Verdict) {
	defer i.recoverCallback(&verdict)
	return i.behavior.Init(ctx, i.addr.ID(), message)
}

// invokeProcess runs the process callback with the same crash containment
func (i *instance) invokeProcess(ctx context.Context, state any, message any) (verdict Verdict) {
	defer i.recoverCallback(&verdict)
	return i.behavior.Process(ctx, state, i.addr.ID(), message)
}

func (i *instance) recoverCallback(verdict *Verdict) {
	if r := recover(); r != nil {
		i.logger.Errorf("actor=(%s) callback crashed: %v", i.addr, r)
		*verdict = StopTransient()
	}
}

// apply executes a verdict: it picks the next in-memory state, mirrors it to
// the persister when asked, and reports whether the loop keeps running.
// Persister failures are logged, never retried.
func (i *instance) apply(ctx context.Context, prior any, verdict Verdict) (any, bool) {
	switch verdict.action {
	case actionStop:
		switch verdict.persistence {
		case persistPut:
			if err := i.persister.Put(ctx, i.addr, verdict.state); err != nil {
				i.logger.Errorf("failed to persist actor=(%s) on stop: %v", i.addr, err)
			}
		case persistDelete:
			if err := i.persister.Delete(ctx, i.addr); err != nil {
				i.logger.Errorf("failed to delete actor=(%s) state: %v", i.addr, err)
			}
		}
		return nil, false
	default:
		state := prior
		if verdict.hasState {
			state = verdict.state
		}
		if verdict.persistence == persistPut {
			if err := i.persister.Put(ctx, i.addr, state); err != nil {
				i.logger.Errorf("failed to persist actor=(%s): %v", i.addr, err)
			}
		}
		return state, true
	}
}
