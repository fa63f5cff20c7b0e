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

// Package address defines the identity of a virtual actor.
//
// An actor is addressed by the pair (kind, id). The kind names a registered
// behavior; the id is an opaque application-chosen value. The runtime never
// inspects either beyond equality and the stable serialisation produced by
// String.
package address

import (
	"fmt"
)

// Address uniquely identifies a virtual actor across the cluster.
// Address is a comparable value type and can be used as a map key.
type Address struct {
	kind string
	id   string
}

// New creates an Address from an actor kind name and an instance id.
func New(kind, id string) Address {
	return Address{kind: kind, id: id}
}

// Kind returns the actor kind name
func (a Address) Kind() string {
	return a.kind
}

// ID returns the actor instance id
func (a Address) ID() string {
	return a.id
}

// Equals reports whether both addresses identify the same actor
func (a Address) Equals(other Address) bool {
	return a == other
}

// String returns the stable serialisation of the address. It is used as the
// persistence key and as the placement hash input, so its format must not
// change across releases.
func (a Address) String() string {
	return fmt.Sprintf("%s/%s", a.kind, a.id)
}
