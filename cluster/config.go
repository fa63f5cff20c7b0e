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

package cluster

import (
	"fmt"

	"github.com/squaregear/theater/discovery"
	"github.com/squaregear/theater/log"
)

// Config holds the cluster node configuration
type Config struct {
	// Name is the node's unique identity. Generated when left empty.
	Name string
	// BindHost is the address memberlist binds to. Defaults to 0.0.0.0.
	BindHost string
	// BindPort is the port memberlist binds to
	BindPort int
	// Mode states whether this node hosts actors
	Mode Mode
	// Provider seeds the initial join addresses. Optional; a node without a
	// provider starts a cluster of one.
	Provider discovery.Provider
	// Logger is the node logger
	Logger log.Logger
}

// Validate checks whether the configuration is usable
func (c *Config) Validate() error {
	if c.BindPort <= 0 {
		return fmt.Errorf("cluster: bind port is required")
	}
	if c.Mode != ModeServer && c.Mode != ModeClient {
		return fmt.Errorf("cluster: invalid mode %q", c.Mode)
	}
	if c.BindHost == "" {
		c.BindHost = "0.0.0.0"
	}
	if c.Logger == nil {
		c.Logger = log.DefaultLogger
	}
	return nil
}
