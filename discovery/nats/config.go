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

package nats

import (
	"fmt"
	"time"
)

// Config defines the NATS provider configuration
type Config struct {
	// Server specifies the NATS server url, e.g. "nats://127.0.0.1:4222"
	Server string
	// Subject specifies the subject nodes announce themselves on
	Subject string
	// Name specifies this node's name on the bus
	Name string
	// Host specifies this node's cluster host
	Host string
	// Port specifies this node's cluster port
	Port int
	// Timeout bounds a DiscoverPeers round. Defaults to one second.
	Timeout time.Duration
}

// Validate checks whether the configuration is complete
func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("nats: server url is required")
	}
	if c.Subject == "" {
		return fmt.Errorf("nats: subject is required")
	}
	if c.Name == "" {
		return fmt.Errorf("nats: node name is required")
	}
	if c.Host == "" {
		return fmt.Errorf("nats: host is required")
	}
	if c.Port <= 0 {
		return fmt.Errorf("nats: port is required")
	}
	if c.Timeout <= 0 {
		c.Timeout = time.Second
	}
	return nil
}
