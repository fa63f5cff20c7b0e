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

// Package theater implements a virtual-actor runtime distributed over a
// cluster of peer nodes.
//
// Actors are addressed by (kind, id). At most one instance of an address is
// resident across the cluster at any moment, on the node the placement
// function deterministically selects. Instances materialise on demand from
// persisted state, are evicted under memory pressure, and vacate memory
// after an idle timeout while their durable state remains recoverable.
package theater

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/squaregear/theater/address"
	"github.com/squaregear/theater/cluster"
	"github.com/squaregear/theater/discovery"
	"github.com/squaregear/theater/errors"
	"github.com/squaregear/theater/hash"
	"github.com/squaregear/theater/internal/queue"
	"github.com/squaregear/theater/log"
	"github.com/squaregear/theater/persistence"
)

// DefaultTimeToLive is the fallback idle timeout of an instance whose
// behavior does not compute its own.
const DefaultTimeToLive = 10 * time.Minute

// System is a runtime node. A server node hosts actors behind a launcher, a
// stopper and a persister; a client-only node routes sends but never hosts.
type System struct {
	name   string
	logger log.Logger
	hasher hash.Hasher

	clientOnly     bool
	defaultTTL     time.Duration
	mailboxFactory MailboxFactory

	bindHost string
	bindPort int
	nodeName string
	provider discovery.Provider

	compression cluster.Compression
	codec       cluster.Codec

	persister persistence.Persister

	sampler       MemorySampler
	memThreshold  float64
	sweepInterval time.Duration

	kinds    *kinds
	node     *cluster.Node
	launcher *launcher
	stopper  *stopper

	inbound     *queue.MPSC[[]byte]
	inboundWake chan struct{}

	stopCh  chan struct{}
	loops   sync.WaitGroup
	started *atomic.Bool
}

// NewSystem creates a runtime node. It does not touch the network or the
// persister until Start.
func NewSystem(name string, opts ...Option) (*System, error) {
	if name == "" {
		return nil, fmt.Errorf("theater: system name is required")
	}

	system := &System{
		name:           name,
		logger:         log.DefaultLogger,
		hasher:         hash.DefaultHasher(),
		defaultTTL:     DefaultTimeToLive,
		mailboxFactory: NewDefaultMailbox,
		memThreshold:   defaultMemoryThreshold,
		sweepInterval:  defaultSweepInterval,
		kinds:          newKinds(),
		inbound:        queue.NewMPSC[[]byte](),
		inboundWake:    make(chan struct{}, 1),
		stopCh:         make(chan struct{}),
		started:        atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt.Apply(system)
	}

	if system.bindPort <= 0 {
		return nil, fmt.Errorf("theater: bind port is required")
	}
	return system, nil
}

// Register records an actor kind. Every node of the cluster, including
// client-only routers, must register the same kinds.
func (s *System) Register(behavior Behavior) error {
	if behavior == nil || behavior.Kind() == "" {
		return fmt.Errorf("theater: behavior kind name is required")
	}
	s.kinds.register(behavior)
	return nil
}

// Start brings the node up: it connects the persister, starts the stopper
// and the launcher (unless client-only), then joins the cluster.
func (s *System) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	codec, err := cluster.NewCodec(s.compression)
	if err != nil {
		s.started.Store(false)
		return err
	}
	s.codec = codec

	mode := cluster.ModeServer
	if s.clientOnly {
		mode = cluster.ModeClient
	}

	if !s.clientOnly {
		if s.persister == nil {
			store, err := persistence.NewBoltStore("")
			if err != nil {
				s.started.Store(false)
				return err
			}
			s.persister = store
		}
		if err := s.persister.Connect(ctx); err != nil {
			s.started.Store(false)
			return err
		}

		s.stopper = newStopper(s.logger, s.sampler, s.memThreshold, s.sweepInterval)
		s.stopper.Start()

		s.launcher = newLauncher(
			s.logger,
			s.hasher,
			func() cluster.Member { return s.node.Whoami() },
			s.persister,
			s.stopper,
			s.mailboxFactory,
			s.defaultTTL,
		)
		s.launcher.Start()
	}

	node, err := cluster.NewNode(&cluster.Config{
		Name:     s.nodeName,
		BindHost: s.bindHost,
		BindPort: s.bindPort,
		Mode:     mode,
		Provider: s.provider,
		Logger:   s.logger,
	})
	if err != nil {
		s.started.Store(false)
		return err
	}
	if !s.clientOnly {
		node.OnDeliver(s.enqueueWire)
	}
	if err := node.Start(ctx); err != nil {
		s.started.Store(false)
		return err
	}
	s.node = node

	s.loops.Add(1)
	go s.eventLoop()
	if !s.clientOnly {
		s.loops.Add(1)
		go s.inboundLoop()
	}

	s.logger.Infof("system=(%s) started", s.name)
	return nil
}

// Stop leaves the cluster, stops every resident instance and disconnects
// the persister.
func (s *System) Stop(ctx context.Context) error {
	if !s.started.CompareAndSwap(true, false) {
		return nil
	}

	close(s.stopCh)
	s.loops.Wait()

	var combined error
	if s.node != nil {
		combined = multierr.Append(combined, s.node.Stop(ctx))
	}
	if s.launcher != nil {
		s.launcher.Stop()
	}
	if s.stopper != nil {
		s.stopper.Stop()
	}
	if s.persister != nil {
		combined = multierr.Append(combined, s.persister.Disconnect(ctx))
	}

	s.logger.Infof("system=(%s) stopped", s.name)
	return combined
}

// Send submits a message to the actor addressed by (kind, id), wherever in
// the cluster it lives. Delivery is fire-and-forget: a nil return only
// acknowledges that the submission was accepted, not that the actor ever
// processes the message.
func (s *System) Send(_ context.Context, kind, id string, message any) error {
	if !s.started.Load() {
		return errors.ErrSystemNotStarted
	}

	view := s.node.View()
	if len(view) == 0 {
		return errors.ErrNoNodes
	}

	addr := address.New(kind, id)
	home, ok := cluster.Home(s.hasher, view, addr)
	if !ok {
		return errors.ErrNoNodes
	}

	if !s.clientOnly && home.Name == s.node.Whoami().Name {
		behavior, ok := s.kinds.get(kind)
		if !ok {
			return errors.ErrKindNotRegistered
		}
		s.launcher.Deliver(behavior, id, message)
		return nil
	}

	data, err := s.codec.Encode(&cluster.Envelope{Kind: kind, ID: id, Message: message})
	if err != nil {
		return err
	}
	if err := s.node.Send(home, data); err != nil {
		// fire-and-forget: delivery failures are not surfaced to the caller
		s.logger.Errorf("failed to ship actor=(%s) message to node=(%s): %v", addr, home.Name, err)
	}
	return nil
}

// Resident reports whether the addressed actor is currently resident on
// this node. Instrumentation for tests and operators.
func (s *System) Resident(kind, id string) bool {
	if s.launcher == nil {
		return false
	}
	return s.launcher.Resident(address.New(kind, id))
}

// Residents returns the addresses currently resident on this node
func (s *System) Residents() []address.Address {
	if s.launcher == nil {
		return nil
	}
	return s.launcher.Residents()
}

// enqueueWire buffers an inbound wire payload. Called from the transport's
// receive path, so it must not block.
func (s *System) enqueueWire(data []byte) {
	s.inbound.Push(data)
	select {
	case s.inboundWake <- struct{}{}:
	default:
	}
}

// inboundLoop decodes shipped envelopes and hands them to the launcher
func (s *System) inboundLoop() {
	defer s.loops.Done()
	for {
		for {
			data, ok := s.inbound.Pop()
			if !ok {
				break
			}
			envelope, err := s.codec.Decode(data)
			if err != nil {
				s.logger.Errorf("dropping undecodable envelope: %v", err)
				continue
			}
			behavior, ok := s.kinds.get(envelope.Kind)
			if !ok {
				s.logger.Warnf("dropping message for unregistered kind=(%s)", envelope.Kind)
				continue
			}
			s.launcher.Deliver(behavior, envelope.ID, envelope.Message)
		}

		select {
		case <-s.inboundWake:
		case <-s.stopCh:
			return
		}
	}
}

// eventLoop reacts to membership changes. When a server peer comes up, this
// node sweeps its residents and stops the ones whose placement moved to the
// new peer; the peer will materialise them on demand from the persister.
// The existing node pushes; the new peer never pulls.
func (s *System) eventLoop() {
	defer s.loops.Done()
	for {
		select {
		case event := <-s.node.Events():
			switch event.Type {
			case cluster.MemberJoined:
				s.logger.Infof("node=(%s) joined the cluster", event.Member.Name)
				if !s.clientOnly && event.Member.Mode == cluster.ModeServer {
					s.launcher.EvictForPeer(event.Member)
				}
			case cluster.MemberLeft:
				// the view is recomputed on every send; nothing to do beyond
				// logging. Keys owned by the gone node fall back to the
				// survivors on their next message.
				s.logger.Infof("node=(%s) left the cluster", event.Member.Name)
			}
		case <-s.stopCh:
			return
		}
	}
}
