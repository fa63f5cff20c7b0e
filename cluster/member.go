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
	"net"
	"strconv"
)

// Mode states whether a node hosts actors or only routes to them
type Mode string

const (
	// ModeServer marks a node that runs a launcher and hosts actors
	ModeServer Mode = "server"
	// ModeClient marks a node that routes sends but never hosts actors
	ModeClient Mode = "client"
)

// Member describes a node participating in the cluster
type Member struct {
	// Name is the node's unique identity
	Name string
	// Host is the node's advertised address
	Host string
	// Port is the node's cluster port
	Port int
	// Mode states whether the member hosts actors
	Mode Mode
}

// Address returns the member address in host:port form
func (m Member) Address() string {
	return net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
}

// meta is the node metadata gossiped to peers alongside membership
type meta struct {
	Mode Mode
}
