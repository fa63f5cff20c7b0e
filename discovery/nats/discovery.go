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

// Package nats provides a discovery provider backed by a NATS bus.
// Nodes announce themselves on a shared subject and answer identification
// requests from peers looking for join addresses.
package nats

import (
	"bytes"
	"encoding/gob"
	"net"
	"strconv"
	"sync"
	"time"

	goset "github.com/deckarep/golang-set/v2"
	"github.com/flowchartsman/retry"
	"github.com/nats-io/nats.go"
	"go.uber.org/atomic"

	"github.com/squaregear/theater/discovery"
	"github.com/squaregear/theater/errors"
	"github.com/squaregear/theater/log"
)

type messageType int

const (
	messageTypeRegister messageType = iota
	messageTypeDeregister
	messageTypeRequest
	messageTypeResponse
)

// busMessage is exchanged between nodes on the discovery subject
type busMessage struct {
	Type messageType
	Name string
	Host string
	Port int
}

// Discovery represents the NATS discovery provider
type Discovery struct {
	config *Config
	mu     sync.Mutex

	initialized *atomic.Bool
	registered  *atomic.Bool

	conn          *nats.Conn
	subscriptions []*nats.Subscription

	logger log.Logger
}

// enforce compilation error
var _ discovery.Provider = (*Discovery)(nil)

// NewDiscovery returns an instance of the NATS discovery provider
func NewDiscovery(config *Config, opts ...Option) *Discovery {
	d := &Discovery{
		initialized: atomic.NewBool(false),
		registered:  atomic.NewBool(false),
		config:      config,
		logger:      log.DefaultLogger,
	}

	for _, opt := range opts {
		opt.Apply(d)
	}

	return d
}

// ID returns the discovery provider id
func (d *Discovery) ID() string {
	return "nats"
}

// Initialize validates the configuration and connects to the NATS server.
func (d *Discovery) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized.Load() {
		return errors.ErrAlreadyInitialized
	}

	if err := d.config.Validate(); err != nil {
		return err
	}

	opts := nats.GetDefaultOptions()
	opts.Url = d.config.Server
	opts.Name = d.config.Name
	opts.ReconnectWait = 2 * time.Second
	opts.MaxReconnect = -1

	// connect with an exponential backoff to ride over a NATS server that
	// is still coming up
	var conn *nats.Conn
	retrier := retry.NewRetrier(5, 100*time.Millisecond, opts.ReconnectWait)
	err := retrier.Run(func() error {
		var err error
		conn, err = opts.Connect()
		return err
	})
	if err != nil {
		return err
	}

	d.conn = conn
	d.initialized.Store(true)
	return nil
}

// Register subscribes this node on the discovery subject so it can answer
// identification requests from peers.
func (d *Discovery) Register() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized.Load() {
		return errors.ErrNotInitialized
	}
	if d.registered.Load() {
		return errors.ErrAlreadyRegistered
	}

	handler := func(msg *nats.Msg) {
		incoming, err := decodeBusMessage(msg.Data)
		if err != nil {
			d.logger.Errorf("failed to decode discovery message: %v", err)
			return
		}

		switch incoming.Type {
		case messageTypeRegister:
			d.logger.Infof("received a registration request from peer[name=%s, host=%s, port=%d]",
				incoming.Name, incoming.Host, incoming.Port)
		case messageTypeDeregister:
			d.logger.Infof("received a de-registration request from peer[name=%s, host=%s, port=%d]",
				incoming.Name, incoming.Host, incoming.Port)
		case messageTypeRequest:
			reply := &busMessage{
				Type: messageTypeResponse,
				Name: d.config.Name,
				Host: d.config.Host,
				Port: d.config.Port,
			}
			data, err := encodeBusMessage(reply)
			if err != nil {
				d.logger.Errorf("failed to encode discovery reply: %v", err)
				return
			}
			if err := d.conn.Publish(msg.Reply, data); err != nil {
				d.logger.Errorf("failed to reply to identification request from peer[name=%s]: %v",
					incoming.Name, err)
			}
		}
	}

	subscription, err := d.conn.Subscribe(d.config.Subject, handler)
	if err != nil {
		return err
	}
	d.subscriptions = append(d.subscriptions, subscription)

	// make sure the server has the subscription before peers look us up
	if err := d.conn.Flush(); err != nil {
		return err
	}

	// announce ourselves
	announce := &busMessage{
		Type: messageTypeRegister,
		Name: d.config.Name,
		Host: d.config.Host,
		Port: d.config.Port,
	}
	data, err := encodeBusMessage(announce)
	if err != nil {
		return err
	}
	if err := d.conn.Publish(d.config.Subject, data); err != nil {
		return err
	}

	d.registered.Store(true)
	return nil
}

// Deregister announces this node's departure and drops its subscriptions.
func (d *Discovery) Deregister() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.registered.Load() {
		return errors.ErrNotInitialized
	}
	d.registered.Store(false)

	goodbye := &busMessage{
		Type: messageTypeDeregister,
		Name: d.config.Name,
		Host: d.config.Host,
		Port: d.config.Port,
	}
	data, err := encodeBusMessage(goodbye)
	if err != nil {
		return err
	}
	if err := d.conn.Publish(d.config.Subject, data); err != nil {
		return err
	}

	for _, subscription := range d.subscriptions {
		if subscription == nil {
			continue
		}
		if err := subscription.Unsubscribe(); err != nil {
			return err
		}
	}
	d.subscriptions = nil
	return nil
}

// DiscoverPeers sends an identification request and collects the responses
// that arrive within the configured timeout.
func (d *Discovery) DiscoverPeers() ([]string, error) {
	if !d.initialized.Load() {
		return nil, errors.ErrNotInitialized
	}

	inbox := nats.NewInbox()
	sub, err := d.conn.SubscribeSync(inbox)
	if err != nil {
		return nil, err
	}
	defer func() { _ = sub.Unsubscribe() }()

	request := &busMessage{
		Type: messageTypeRequest,
		Name: d.config.Name,
		Host: d.config.Host,
		Port: d.config.Port,
	}
	data, err := encodeBusMessage(request)
	if err != nil {
		return nil, err
	}
	if err := d.conn.PublishRequest(d.config.Subject, inbox, data); err != nil {
		return nil, err
	}

	me := net.JoinHostPort(d.config.Host, strconv.Itoa(d.config.Port))
	addresses := goset.NewSet[string]()
	deadline := time.Now().Add(d.config.Timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		msg, err := sub.NextMsg(remaining)
		if err != nil {
			// timeout ends the collection round
			break
		}
		response, err := decodeBusMessage(msg.Data)
		if err != nil {
			d.logger.Errorf("failed to decode discovery response: %v", err)
			continue
		}
		if response.Type != messageTypeResponse {
			continue
		}
		addr := net.JoinHostPort(response.Host, strconv.Itoa(response.Port))
		if addr == me {
			continue
		}
		addresses.Add(addr)
	}
	return addresses.ToSlice(), nil
}

// Close closes the provider
func (d *Discovery) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.initialized.Store(false)
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
	return nil
}

func encodeBusMessage(msg *busMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeBusMessage(data []byte) (*busMessage, error) {
	msg := new(busMessage)
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(msg); err != nil {
		return nil, err
	}
	return msg, nil
}
