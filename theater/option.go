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

	"github.com/squaregear/theater/cluster"
	"github.com/squaregear/theater/discovery"
	"github.com/squaregear/theater/hash"
	"github.com/squaregear/theater/log"
	"github.com/squaregear/theater/persistence"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(s *System)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(s *System)

// Apply applies the option to the system
func (f OptionFunc) Apply(s *System) {
	f(s)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(s *System) {
		s.logger = logger
	})
}

// WithClientOnly makes the node route sends without ever hosting actors.
// A client-only node starts no launcher, stopper or persister, and its own
// identity is excluded from placement.
func WithClientOnly() Option {
	return OptionFunc(func(s *System) {
		s.clientOnly = true
	})
}

// WithDefaultTimeToLive sets the fallback idle timeout used when a behavior
// does not compute its own
func WithDefaultTimeToLive(ttl time.Duration) Option {
	return OptionFunc(func(s *System) {
		s.defaultTTL = ttl
	})
}

// WithPersister sets the durable state backend. The bundled bbolt store is
// used when unset.
func WithPersister(persister persistence.Persister) Option {
	return OptionFunc(func(s *System) {
		s.persister = persister
	})
}

// WithDiscovery sets the peer-seeding discovery provider
func WithDiscovery(provider discovery.Provider) Option {
	return OptionFunc(func(s *System) {
		s.provider = provider
	})
}

// WithHost sets the address the cluster node binds to
func WithHost(host string) Option {
	return OptionFunc(func(s *System) {
		s.bindHost = host
	})
}

// WithPort sets the port the cluster node binds to
func WithPort(port int) Option {
	return OptionFunc(func(s *System) {
		s.bindPort = port
	})
}

// WithNodeName pins the node identity instead of generating one
func WithNodeName(name string) Option {
	return OptionFunc(func(s *System) {
		s.nodeName = name
	})
}

// WithHasher sets a custom placement hasher
func WithHasher(hasher hash.Hasher) Option {
	return OptionFunc(func(s *System) {
		s.hasher = hasher
	})
}

// WithCompression sets the wire envelope compression
func WithCompression(compression cluster.Compression) Option {
	return OptionFunc(func(s *System) {
		s.compression = compression
	})
}

// WithMemoryThreshold sets the free-memory ratio under which the stopper
// evicts the longest-idle instance
func WithMemoryThreshold(threshold float64) Option {
	return OptionFunc(func(s *System) {
		s.memThreshold = threshold
	})
}

// WithMemorySampler overrides how free memory is measured. Tests use this
// to inject pressure deterministically.
func WithMemorySampler(sampler MemorySampler) Option {
	return OptionFunc(func(s *System) {
		s.sampler = sampler
	})
}

// WithMemorySweepInterval paces the periodic pressure check
func WithMemorySweepInterval(interval time.Duration) Option {
	return OptionFunc(func(s *System) {
		s.sweepInterval = interval
	})
}

// WithMailboxFactory sets the mailbox implementation of new instances
func WithMailboxFactory(factory MailboxFactory) Option {
	return OptionFunc(func(s *System) {
		s.mailboxFactory = factory
	})
}
