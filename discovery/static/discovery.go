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

// Package static provides a discovery provider with a fixed list of peers.
// It suits environments where the node addresses are known ahead of time,
// such as docker-compose setups. The list cannot change at runtime.
package static

import (
	"net"
	"sync"

	"go.uber.org/atomic"

	"github.com/squaregear/theater/discovery"
	"github.com/squaregear/theater/errors"
)

// Discovery represents the static discovery provider
type Discovery struct {
	mu sync.Mutex

	initialized *atomic.Bool
	addresses   []string
}

// enforce compilation error
var _ discovery.Provider = (*Discovery)(nil)

// NewDiscovery creates an instance of the static discovery provider with the
// given peer addresses in host:port form.
func NewDiscovery(addresses ...string) *Discovery {
	return &Discovery{
		initialized: atomic.NewBool(false),
		addresses:   addresses,
	}
}

// ID returns the discovery provider id
func (d *Discovery) ID() string {
	return "static"
}

// Initialize initializes the provider
func (d *Discovery) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized.Load() {
		return errors.ErrAlreadyInitialized
	}

	for _, addr := range d.addresses {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return err
		}
	}

	d.initialized.Store(true)
	return nil
}

// Register registers this node to a service discovery directory.
// The static provider has no directory, so this is a no-op.
func (d *Discovery) Register() error {
	if !d.initialized.Load() {
		return errors.ErrNotInitialized
	}
	return nil
}

// Deregister removes this node from a service discovery directory.
func (d *Discovery) Deregister() error {
	if !d.initialized.Load() {
		return errors.ErrNotInitialized
	}
	return nil
}

// DiscoverPeers returns the configured list of node addresses.
func (d *Discovery) DiscoverPeers() ([]string, error) {
	if !d.initialized.Load() {
		return nil, errors.ErrNotInitialized
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.addresses))
	copy(out, d.addresses)
	return out, nil
}

// Close closes the provider
func (d *Discovery) Close() error {
	d.initialized.Store(false)
	return nil
}
