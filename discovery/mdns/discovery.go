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

// Package mdns provides a zeroconf discovery provider for LAN deployments.
package mdns

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	goset "github.com/deckarep/golang-set/v2"
	"github.com/grandcat/zeroconf"
	"go.uber.org/atomic"

	"github.com/squaregear/theater/discovery"
	"github.com/squaregear/theater/errors"
)

// Discovery defines the mDNS discovery provider
type Discovery struct {
	config *Config
	mu     sync.Mutex

	initialized *atomic.Bool

	// resolver is used to browse for service entries
	resolver *zeroconf.Resolver
	server   *zeroconf.Server
}

// enforce compilation error
var _ discovery.Provider = (*Discovery)(nil)

// NewDiscovery returns an instance of the mDNS discovery provider
func NewDiscovery(config *Config) *Discovery {
	return &Discovery{
		initialized: atomic.NewBool(false),
		config:      config,
	}
}

// ID returns the discovery provider id
func (d *Discovery) ID() string {
	return "mdns"
}

// Initialize the discovery provider
func (d *Discovery) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized.Load() {
		return errors.ErrAlreadyInitialized
	}
	return d.config.Validate()
}

// Register advertises this node on the LAN and prepares the resolver.
func (d *Discovery) Register() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized.Load() {
		return errors.ErrAlreadyRegistered
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("mdns: failed to create resolver: %w", err)
	}
	d.resolver = resolver

	server, err := zeroconf.Register(
		d.config.ServiceName,
		d.config.Service,
		d.config.Domain,
		d.config.Port,
		[]string{"txtv=0"},
		nil)
	if err != nil {
		return fmt.Errorf("mdns: failed to register service: %w", err)
	}
	d.server = server

	d.initialized.Store(true)
	return nil
}

// Deregister removes this node from the LAN directory.
func (d *Discovery) Deregister() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized.Load() {
		return errors.ErrNotInitialized
	}
	d.initialized.Store(false)

	if d.server != nil {
		d.server.Shutdown()
	}
	return nil
}

// DiscoverPeers browses the LAN and returns the discovered node addresses.
func (d *Discovery) DiscoverPeers() ([]string, error) {
	if !d.initialized.Load() {
		return nil, errors.ErrNotInitialized
	}

	entries := make(chan *zeroconf.ServiceEntry, 100)

	ctx, cancel := context.WithTimeout(context.Background(), d.config.BrowseTimeout)
	defer cancel()

	if err := d.resolver.Browse(ctx, d.config.Service, d.config.Domain, entries); err != nil {
		return nil, err
	}
	<-ctx.Done()

	addresses := goset.NewSet[string]()
	for entry := range entries {
		if !d.validateEntry(entry) {
			continue
		}
		if d.config.IPv6 {
			for _, addr := range entry.AddrIPv6 {
				addresses.Add(net.JoinHostPort(addr.String(), strconv.Itoa(entry.Port)))
			}
		}
		for _, addr := range entry.AddrIPv4 {
			addresses.Add(net.JoinHostPort(addr.String(), strconv.Itoa(entry.Port)))
		}
	}
	return addresses.ToSlice(), nil
}

// Close closes the provider
func (d *Discovery) Close() error {
	return nil
}

// validateEntry validates a discovered entry against the configuration
func (d *Discovery) validateEntry(entry *zeroconf.ServiceEntry) bool {
	return entry.Port == d.config.Port &&
		entry.Service == d.config.Service &&
		entry.Domain == d.config.Domain
}
