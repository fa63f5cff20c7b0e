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
	"time"

	"go.uber.org/atomic"

	"github.com/squaregear/theater/internal/queue"
	"github.com/squaregear/theater/log"
	"github.com/squaregear/theater/memory"
)

// MemorySampler reports the fraction of system memory currently free.
// The default sampler reads the operating system figures; tests inject a
// deterministic one.
type MemorySampler func() (float64, error)

// DefaultMemorySampler reads the system free-memory ratio
func DefaultMemorySampler() (float64, error) {
	return memory.FreeRatio()
}

const (
	// defaultMemoryThreshold is the free-memory ratio below which the
	// stopper starts evicting
	defaultMemoryThreshold = 0.20
	// defaultSweepInterval paces the periodic pressure check so an idle
	// node still notices pressure
	defaultSweepInterval = time.Second
)

type stopperCommandType int

const (
	stopperTouch stopperCommandType = iota
	stopperMarkDone
	stopperInspect
)

type lruSnapshot struct {
	forward  []*instance // oldest to newest
	backward []*instance // newest to oldest
}

type stopperCommand struct {
	ctype stopperCommandType
	inst  *instance
	reply chan lruSnapshot
}

// lruNode is a link of the residency list. The list is owned exclusively by
// the stopper goroutine; touch decomposes into splice-then-insert within
// that goroutine so no intermediate state is ever observable.
type lruNode struct {
	inst *instance
	prev *lruNode
	next *lruNode
}

// stopper is the per-node eviction coordinator. It keeps every live local
// instance on a doubly-linked list ordered by last activity and, whenever
// free memory falls under the threshold, asks the longest-idle instance to
// stop. Stopping an instance triggers markDone, which re-runs the check, so
// sustained pressure drains instances one at a time.
type stopper struct {
	logger    log.Logger
	sampler   MemorySampler
	threshold float64

	commands *queue.MPSC[stopperCommand]
	wake     chan struct{}

	nodes  map[*instance]*lruNode
	oldest *lruNode
	newest *lruNode

	sweepInterval time.Duration
	stopCh        chan struct{}
	done          chan struct{}
	started       *atomic.Bool
}

func newStopper(logger log.Logger, sampler MemorySampler, threshold float64, sweepInterval time.Duration) *stopper {
	if sampler == nil {
		sampler = DefaultMemorySampler
	}
	if threshold <= 0 {
		threshold = defaultMemoryThreshold
	}
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}
	return &stopper{
		logger:        logger,
		sampler:       sampler,
		threshold:     threshold,
		commands:      queue.NewMPSC[stopperCommand](),
		wake:          make(chan struct{}, 1),
		nodes:         make(map[*instance]*lruNode),
		sweepInterval: sweepInterval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		started:       atomic.NewBool(false),
	}
}

// Start launches the coordinator goroutine
func (s *stopper) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run()
}

// Stop terminates the coordinator goroutine
func (s *stopper) Stop() {
	if !s.started.CompareAndSwap(true, false) {
		return
	}
	close(s.stopCh)
	<-s.done
}

// touch records activity for the instance, inserting it as the newest entry
func (s *stopper) touch(inst *instance) {
	s.submit(stopperCommand{ctype: stopperTouch, inst: inst})
}

// markDone removes the instance from the residency list
func (s *stopper) markDone(inst *instance) {
	s.submit(stopperCommand{ctype: stopperMarkDone, inst: inst})
}

// snapshot returns the residency list walked in both directions. Intended
// for tests and instrumentation.
func (s *stopper) snapshot() lruSnapshot {
	if !s.started.Load() {
		return lruSnapshot{}
	}
	reply := make(chan lruSnapshot, 1)
	s.submit(stopperCommand{ctype: stopperInspect, reply: reply})
	return <-reply
}

func (s *stopper) submit(cmd stopperCommand) {
	s.commands.Push(cmd)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// run owns the residency list and the pressure checks. The periodic sweep
// rides the same select as the command mailbox, so an idle node still
// notices pressure without a second coordinating goroutine.
func (s *stopper) run() {
	defer close(s.done)

	sweep := time.NewTicker(s.sweepInterval)
	defer sweep.Stop()

	for {
		s.drain()
		select {
		case <-s.wake:
		case <-sweep.C:
			s.clean()
		case <-s.stopCh:
			return
		}
	}
}

func (s *stopper) drain() {
	for {
		cmd, ok := s.commands.Pop()
		if !ok {
			return
		}
		switch cmd.ctype {
		case stopperTouch:
			s.handleTouch(cmd.inst)
			s.clean()
		case stopperMarkDone:
			s.handleMarkDone(cmd.inst)
			s.clean()
		case stopperInspect:
			cmd.reply <- s.handleInspect()
		}
	}
}

// handleTouch moves the instance to the newest end, inserting it if absent
func (s *stopper) handleTouch(inst *instance) {
	if node, ok := s.nodes[inst]; ok {
		s.unlink(node)
		s.append(node)
		return
	}
	node := &lruNode{inst: inst}
	s.nodes[inst] = node
	s.append(node)
}

// handleMarkDone splices the instance out; absent entries are a no-op
func (s *stopper) handleMarkDone(inst *instance) {
	node, ok := s.nodes[inst]
	if !ok {
		return
	}
	s.unlink(node)
	delete(s.nodes, inst)
}

func (s *stopper) handleInspect() lruSnapshot {
	snapshot := lruSnapshot{}
	for node := s.oldest; node != nil; node = node.next {
		snapshot.forward = append(snapshot.forward, node.inst)
	}
	for node := s.newest; node != nil; node = node.prev {
		snapshot.backward = append(snapshot.backward, node.inst)
	}
	return snapshot
}

// clean samples memory pressure and asks the oldest instance to stop when
// the free ratio is under the threshold. At most one eviction per trigger:
// the stopped instance will markDone, which runs clean again, so pressure
// that persists keeps draining.
func (s *stopper) clean() {
	ratio, err := s.sampler()
	if err != nil {
		s.logger.Errorf("failed to sample system memory: %v", err)
		return
	}
	if ratio >= s.threshold || s.oldest == nil {
		return
	}

	victim := s.oldest.inst
	s.logger.Infof("memory pressure (free=%.2f): stopping actor=(%s)", ratio, victim.addr)
	victim.shutdown()
}

func (s *stopper) append(node *lruNode) {
	node.prev = s.newest
	node.next = nil
	if s.newest != nil {
		s.newest.next = node
	}
	s.newest = node
	if s.oldest == nil {
		s.oldest = node
	}
}

func (s *stopper) unlink(node *lruNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		s.oldest = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		s.newest = node.prev
	}
	node.prev = nil
	node.next = nil
}
