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

// Package cluster maintains the membership view of runtime nodes and moves
// actor envelopes between them.
//
// Membership rides on hashicorp/memberlist: every node gossips a small
// metadata blob stating whether it hosts actors (server) or only routes
// (client). Envelope delivery uses memberlist's reliable pairwise TCP
// channel, so no second transport is needed.
package cluster

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/google/uuid"
	"github.com/hashicorp/memberlist"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/squaregear/theater/internal/netutil"
	"github.com/squaregear/theater/log"
)

const (
	// eventsBacklog bounds the membership events channel. Events beyond the
	// backlog are dropped with a warning rather than blocking memberlist.
	eventsBacklog = 256

	leaveTimeout     = 5 * time.Second
	joinMaxAttempts  = 5
	joinInitialDelay = 100 * time.Millisecond
	joinMaxDelay     = time.Second
)

// Node is a memberlist-backed cluster participant
type Node struct {
	config *Config
	logger log.Logger

	name          string
	advertiseHost string

	mu           sync.Mutex
	memberlist   *memberlist.Memberlist
	memberConfig *memberlist.Config
	metaBytes    []byte

	events  chan Event
	deliver func(data []byte)
	started *atomic.Bool
}

var (
	// enforce compilation error
	_ memberlist.Delegate      = (*Node)(nil)
	_ memberlist.EventDelegate = (*Node)(nil)
)

// NewNode creates a cluster node from the given configuration. The node does
// not join the cluster until Start is called.
func NewNode(config *Config) (*Node, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	name := config.Name
	if name == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("cluster: node name is not set: %w", err)
		}
		name = fmt.Sprintf("%s-%s", hostname, uuid.NewString())
	}

	metaBytes, err := encodeMeta(&meta{Mode: config.Mode})
	if err != nil {
		return nil, err
	}

	node := &Node{
		config:    config,
		logger:    config.Logger,
		name:      name,
		metaBytes: metaBytes,
		events:    make(chan Event, eventsBacklog),
		started:   atomic.NewBool(false),
	}

	conf := memberlist.DefaultLANConfig()
	conf.Name = name
	conf.BindAddr = config.BindHost
	conf.BindPort = config.BindPort
	conf.AdvertisePort = config.BindPort
	conf.LogOutput = io.Discard
	conf.Delegate = node
	conf.Events = node
	node.memberConfig = conf

	return node, nil
}

// OnDeliver installs the handler invoked for every envelope shipped to this
// node. It must be set before Start and must not block.
func (n *Node) OnDeliver(handler func(data []byte)) {
	n.deliver = handler
}

// Start binds the node and joins the cluster through the discovery provider.
func (n *Node) Start(ctx context.Context) error {
	advertiseHost, err := netutil.AdvertiseHost(n.config.BindHost)
	if err != nil {
		return err
	}
	n.advertiseHost = advertiseHost
	n.memberConfig.AdvertiseAddr = advertiseHost

	list, err := memberlist.Create(n.memberConfig)
	if err != nil {
		return fmt.Errorf("cluster: failed to create memberlist: %w", err)
	}

	n.mu.Lock()
	n.memberlist = list
	n.mu.Unlock()

	if err := n.join(ctx); err != nil {
		return err
	}

	n.started.Store(true)
	n.logger.Infof("cluster node=(%s) started on (%s) in %s mode", n.name, n.Whoami().Address(), n.config.Mode)
	return nil
}

// Stop leaves the cluster and releases the node resources.
func (n *Node) Stop(context.Context) error {
	if !n.started.CompareAndSwap(true, false) {
		return nil
	}

	var combined error
	if provider := n.config.Provider; provider != nil {
		if err := provider.Deregister(); err != nil {
			combined = multierr.Append(combined, err)
		}
		if err := provider.Close(); err != nil {
			combined = multierr.Append(combined, err)
		}
	}

	n.mu.Lock()
	list := n.memberlist
	n.mu.Unlock()

	if list != nil {
		if err := list.Leave(leaveTimeout); err != nil {
			combined = multierr.Append(combined, err)
		}
		if err := list.Shutdown(); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	return combined
}

// Whoami returns the local member
func (n *Node) Whoami() Member {
	return Member{
		Name: n.name,
		Host: n.advertiseHost,
		Port: n.config.BindPort,
		Mode: n.config.Mode,
	}
}

// Members returns every reachable member of the cluster, sorted by name.
func (n *Node) Members() []Member {
	n.mu.Lock()
	list := n.memberlist
	n.mu.Unlock()
	if list == nil {
		return nil
	}

	nodes := list.Members()
	members := make([]Member, 0, len(nodes))
	for _, node := range nodes {
		member, ok := toMember(node)
		if !ok {
			continue
		}
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members
}

// View returns the members hosting actors, sorted by name. The sorted order
// is what makes placement tie-breaking agree across nodes.
func (n *Node) View() []Member {
	members := n.Members()
	view := members[:0]
	for _, member := range members {
		if member.Mode == ModeServer {
			view = append(view, member)
		}
	}
	return view
}

// Send ships raw bytes to the named member over the reliable TCP channel.
func (n *Node) Send(to Member, data []byte) error {
	n.mu.Lock()
	list := n.memberlist
	n.mu.Unlock()
	if list == nil {
		return fmt.Errorf("cluster: node is not started")
	}

	for _, node := range list.Members() {
		if node.Name == to.Name {
			return list.SendReliable(node, data)
		}
	}
	return fmt.Errorf("cluster: member %q is not reachable", to.Name)
}

// Events returns the channel of membership changes
func (n *Node) Events() <-chan Event {
	return n.events
}

// join seeds the membership from the discovery provider
func (n *Node) join(context.Context) error {
	provider := n.config.Provider
	if provider == nil {
		return nil
	}

	if err := provider.Initialize(); err != nil {
		return err
	}
	if err := provider.Register(); err != nil {
		return err
	}

	me := n.Whoami().Address()
	retrier := retry.NewRetrier(joinMaxAttempts, joinInitialDelay, joinMaxDelay)
	return retrier.Run(func() error {
		peers, err := provider.DiscoverPeers()
		if err != nil {
			return err
		}

		joinable := make([]string, 0, len(peers))
		for _, peer := range peers {
			if peer == me {
				continue
			}
			joinable = append(joinable, peer)
		}
		if len(joinable) == 0 {
			// first node of the cluster
			return nil
		}

		n.mu.Lock()
		list := n.memberlist
		n.mu.Unlock()
		if _, err := list.Join(joinable); err != nil {
			return err
		}
		return nil
	})
}

// NodeMeta is used to retrieve meta-data about the current node
// when broadcasting an alive message. Its length is limited to
// the given byte size.
func (n *Node) NodeMeta(limit int) []byte {
	if len(n.metaBytes) > limit {
		n.logger.Errorf("cluster: node metadata exceeds the %d bytes limit", limit)
		return nil
	}
	return n.metaBytes
}

// NotifyMsg is called when a user-data message is received. The byte slice
// may be reused after the call returns, so it is copied before handing off.
// This method must not block.
func (n *Node) NotifyMsg(data []byte) {
	if n.deliver == nil || len(data) == 0 {
		return
	}
	owned := make([]byte, len(data))
	copy(owned, data)
	n.deliver(owned)
}

// GetBroadcasts is called when user data messages can be broadcast.
// Delivery here is pairwise only, so there is nothing to gossip.
func (n *Node) GetBroadcasts(int, int) [][]byte {
	return nil
}

// LocalState is used for a TCP Push/Pull. Membership metadata is all the
// state shared between nodes.
func (n *Node) LocalState(bool) []byte {
	return nil
}

// MergeRemoteState is invoked after a TCP Push/Pull.
func (n *Node) MergeRemoteState([]byte, bool) {
}

// NotifyJoin is invoked when a node is detected to have joined.
func (n *Node) NotifyJoin(node *memberlist.Node) {
	if node.Name == n.name {
		return
	}
	member, ok := toMember(node)
	if !ok {
		n.logger.Warnf("cluster: ignoring join of %q with unreadable metadata", node.Name)
		return
	}
	n.publish(Event{Type: MemberJoined, Member: member})
}

// NotifyLeave is invoked when a node is detected to have left or failed.
func (n *Node) NotifyLeave(node *memberlist.Node) {
	if node.Name == n.name {
		return
	}
	member, ok := toMember(node)
	if !ok {
		return
	}
	n.publish(Event{Type: MemberLeft, Member: member})
}

// NotifyUpdate is invoked when a node's metadata changes.
func (n *Node) NotifyUpdate(*memberlist.Node) {
}

func (n *Node) publish(event Event) {
	select {
	case n.events <- event:
	default:
		n.logger.Warnf("cluster: dropping %s event for %q, backlog full", event.Type, event.Member.Name)
	}
}

// toMember decodes a memberlist node into a Member
func toMember(node *memberlist.Node) (Member, bool) {
	decoded, err := decodeMeta(node.Meta)
	if err != nil {
		return Member{}, false
	}
	host, _, err := net.SplitHostPort(node.FullAddress().Addr)
	if err != nil {
		host = node.Addr.String()
	}
	return Member{
		Name: node.Name,
		Host: host,
		Port: int(node.Port),
		Mode: decoded.Mode,
	}, true
}

func encodeMeta(m *meta) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeMeta(data []byte) (*meta, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cluster: empty node metadata")
	}
	decoded := new(meta)
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}
