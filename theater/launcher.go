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
	"sort"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/squaregear/theater/address"
	"github.com/squaregear/theater/cluster"
	"github.com/squaregear/theater/hash"
	"github.com/squaregear/theater/internal/queue"
	"github.com/squaregear/theater/log"
	"github.com/squaregear/theater/persistence"
)

// instanceStopGrace bounds how long Stop waits for resident instances to
// finish their in-flight callbacks.
const instanceStopGrace = 5 * time.Second

type launcherCommandType int

const (
	launcherLaunch launcherCommandType = iota
	launcherReap
	launcherEvictForPeer
)

type launcherCommand struct {
	ctype    launcherCommandType
	behavior Behavior
	addr     address.Address
	message  any
	inst     *instance
	peer     cluster.Member
}

// launcher is the per-node gatekeeper for local instances. It owns the
// registry mapping addresses to resident instances and its reverse; both
// maps are readable concurrently but mutated only by the launcher goroutine,
// which serialises launch, reap and eviction through its command mailbox.
type launcher struct {
	logger log.Logger
	hasher hash.Hasher
	// self resolves the local member lazily: the cluster node finishes
	// starting after the launcher does
	self func() cluster.Member

	persister      persistence.Persister
	stopper        *stopper
	mailboxFactory MailboxFactory
	defaultTTL     time.Duration

	registry *registry

	commands *queue.MPSC[launcherCommand]
	wake     chan struct{}
	stopCh   chan struct{}
	done     chan struct{}
	started  *atomic.Bool
}

func newLauncher(
	logger log.Logger,
	hasher hash.Hasher,
	self func() cluster.Member,
	persister persistence.Persister,
	stopper *stopper,
	mailboxFactory MailboxFactory,
	defaultTTL time.Duration,
) *launcher {
	return &launcher{
		logger:         logger,
		hasher:         hasher,
		self:           self,
		persister:      persister,
		stopper:        stopper,
		mailboxFactory: mailboxFactory,
		defaultTTL:     defaultTTL,
		registry:       newRegistry(),
		commands:       queue.NewMPSC[launcherCommand](),
		wake:           make(chan struct{}, 1),
		stopCh:         make(chan struct{}),
		done:           make(chan struct{}),
		started:        atomic.NewBool(false),
	}
}

// Start launches the launcher goroutine
func (l *launcher) Start() {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	go l.run()
}

// Stop terminates the launcher goroutine, then politely stops every
// resident instance and waits for their in-flight callbacks to finish.
func (l *launcher) Stop() {
	if !l.started.CompareAndSwap(true, false) {
		return
	}
	close(l.stopCh)
	<-l.done

	residents := l.registry.instances()
	for _, inst := range residents {
		inst.shutdown()
	}
	deadline := time.After(instanceStopGrace)
	for _, inst := range residents {
		select {
		case <-inst.done:
		case <-deadline:
			l.logger.Warnf("timed out waiting for resident instances to stop")
			return
		}
	}
}

// Deliver routes a message to the resident instance of (behavior, id), or
// schedules a launch when none is running.
//
// The fast path reads the registry without going through the launcher
// mailbox. A handle observed alive can still terminate before the enqueue
// lands; such messages are dropped rather than relaunched here, because the
// launch path below is the only place allowed to start instances.
func (l *launcher) Deliver(behavior Behavior, id string, message any) {
	addr := address.New(behavior.Kind(), id)

	if inst, ok := l.registry.lookup(addr); ok && inst.isAlive() {
		if err := inst.deliver(message); err != nil {
			l.logger.Warnf("dropping message for actor=(%s): %v", addr, err)
		}
		return
	}

	l.submit(launcherCommand{
		ctype:    launcherLaunch,
		behavior: behavior,
		addr:     addr,
		message:  message,
	})
}

// EvictForPeer schedules the relocation sweep run after the given peer
// joined the cluster.
func (l *launcher) EvictForPeer(peer cluster.Member) {
	l.submit(launcherCommand{ctype: launcherEvictForPeer, peer: peer})
}

// Resident reports whether the address is resident on this node
func (l *launcher) Resident(addr address.Address) bool {
	inst, ok := l.registry.lookup(addr)
	return ok && inst.isAlive()
}

// Residents returns the addresses resident on this node
func (l *launcher) Residents() []address.Address {
	return l.registry.addresses()
}

func (l *launcher) submit(cmd launcherCommand) {
	l.commands.Push(cmd)
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *launcher) run() {
	defer close(l.done)
	for {
		l.drainCommands()
		select {
		case <-l.wake:
		case <-l.stopCh:
			return
		}
	}
}

func (l *launcher) drainCommands() {
	for {
		cmd, ok := l.commands.Pop()
		if !ok {
			return
		}
		switch cmd.ctype {
		case launcherLaunch:
			l.handleLaunch(cmd)
		case launcherReap:
			l.handleReap(cmd.inst)
		case launcherEvictForPeer:
			l.handleEvictForPeer(cmd.peer)
		}
	}
}

// handleLaunch starts an instance for the address unless another message
// launched it in the interim. Launch must be idempotent: the fast path may
// have enqueued several launch requests for the same address.
func (l *launcher) handleLaunch(cmd launcherCommand) {
	if inst, ok := l.registry.lookup(cmd.addr); ok && inst.isAlive() {
		if err := inst.deliver(cmd.message); err != nil {
			l.logger.Warnf("dropping message for actor=(%s): %v", cmd.addr, err)
		}
		return
	}

	inst := newInstance(
		cmd.addr,
		cmd.behavior,
		l.mailboxFactory(),
		l.persister,
		l.stopper,
		l.exited,
		l.logger,
		l.defaultTTL,
	)
	l.registry.bind(cmd.addr, inst)
	go inst.run(cmd.message)
}

// exited is the termination notification of a linked instance
func (l *launcher) exited(inst *instance) {
	l.submit(launcherCommand{ctype: launcherReap, inst: inst})
}

// handleReap drops the registry entries of a terminated instance. A lost
// race with a relaunch leaves the forward entry pointing at the
// replacement; only the reverse entry is removed then.
func (l *launcher) handleReap(inst *instance) {
	l.registry.unbind(inst)
}

// handleEvictForPeer stops every local instance whose placement over the
// two-node set {peer, self} selects the peer. Running the placement on the
// pair instead of the full view is deliberate: the local node must vacate
// exactly the keys the new peer outranks it on, regardless of other nodes.
func (l *launcher) handleEvictForPeer(peer cluster.Member) {
	self := l.self()
	pair := []cluster.Member{peer, self}
	sort.Slice(pair, func(i, j int) bool { return pair[i].Name < pair[j].Name })

	bindings := l.registry.bindings()
	evicted := atomic.NewInt64(0)

	var eg errgroup.Group
	eg.SetLimit(4)
	for addr, inst := range bindings {
		addr, inst := addr, inst
		eg.Go(func() error {
			home, ok := cluster.Home(l.hasher, pair, addr)
			if ok && home.Name == peer.Name {
				inst.shutdown()
				evicted.Inc()
			}
			return nil
		})
	}
	_ = eg.Wait()

	l.logger.Infof("rebalance sweep for peer=(%s): stopped %d of %d local actors",
		peer.Name, evicted.Load(), len(bindings))
}
