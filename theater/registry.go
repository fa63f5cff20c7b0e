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
	"sync"

	"github.com/squaregear/theater/address"
)

// registry holds the launcher's two mappings: forward address-to-instance
// and its reverse. The maps stay mutually consistent because every mutation
// goes through bind or unbind, and those run only on the launcher goroutine.
// Reads are concurrent; that is the Deliver fast path.
type registry struct {
	mu      sync.RWMutex
	forward map[address.Address]*instance
	reverse map[*instance]address.Address
}

func newRegistry() *registry {
	return &registry{
		forward: make(map[address.Address]*instance),
		reverse: make(map[*instance]address.Address),
	}
}

// lookup returns the instance bound to the address
func (r *registry) lookup(addr address.Address) (*instance, bool) {
	r.mu.RLock()
	inst, ok := r.forward[addr]
	r.mu.RUnlock()
	return inst, ok
}

// bind seeds both entries for a freshly launched instance. Binding over a
// dead predecessor replaces the forward entry; the predecessor's reap will
// find the mismatch and leave the replacement alone.
func (r *registry) bind(addr address.Address, inst *instance) {
	r.mu.Lock()
	r.forward[addr] = inst
	r.reverse[inst] = addr
	r.mu.Unlock()
}

// unbind drops the entries of a terminated instance, tolerating an absent
// reverse entry and a forward entry already replaced by a relaunch.
func (r *registry) unbind(inst *instance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	addr, ok := r.reverse[inst]
	if !ok {
		return
	}
	if current, ok := r.forward[addr]; ok && current == inst {
		delete(r.forward, addr)
	}
	delete(r.reverse, inst)
}

// addresses returns the currently bound addresses
func (r *registry) addresses() []address.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]address.Address, 0, len(r.forward))
	for addr := range r.forward {
		out = append(out, addr)
	}
	return out
}

// instances returns the currently bound instances
func (r *registry) instances() []*instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*instance, 0, len(r.reverse))
	for inst := range r.reverse {
		out = append(out, inst)
	}
	return out
}

// bindings returns a snapshot of the forward map
func (r *registry) bindings() map[address.Address]*instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[address.Address]*instance, len(r.forward))
	for addr, inst := range r.forward {
		out[addr] = inst
	}
	return out
}

// size returns the number of bound addresses
func (r *registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forward)
}

// inverse reports whether the two maps are exact inverses of each other
func (r *registry) inverse() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.forward) != len(r.reverse) {
		return false
	}
	for addr, inst := range r.forward {
		if bound, ok := r.reverse[inst]; !ok || bound != addr {
			return false
		}
	}
	return true
}
