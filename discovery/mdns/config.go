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

package mdns

import (
	"fmt"
	"time"
)

// Config defines the mDNS provider configuration
type Config struct {
	// ServiceName specifies the instance name advertised on the LAN
	ServiceName string
	// Service specifies the service type, e.g. "_theater._tcp"
	Service string
	// Domain specifies the mDNS domain, usually "local."
	Domain string
	// Port specifies the node's cluster port
	Port int
	// IPv6 states whether IPv6 addresses are returned as well
	IPv6 bool
	// BrowseTimeout bounds a DiscoverPeers browse. Defaults to 5 seconds.
	BrowseTimeout time.Duration
}

// Validate checks whether the configuration is complete
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("mdns: service name is required")
	}
	if c.Service == "" {
		return fmt.Errorf("mdns: service type is required")
	}
	if c.Domain == "" {
		return fmt.Errorf("mdns: domain is required")
	}
	if c.Port <= 0 {
		return fmt.Errorf("mdns: port is required")
	}
	if c.BrowseTimeout <= 0 {
		c.BrowseTimeout = 5 * time.Second
	}
	return nil
}
