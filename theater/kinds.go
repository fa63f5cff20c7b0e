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
)

// kinds maps actor kind names to their behaviors. It is the dispatch table
// for incoming cross-node deliveries, which carry only the kind name.
type kinds struct {
	mu        sync.RWMutex
	behaviors map[string]Behavior
}

func newKinds() *kinds {
	return &kinds{behaviors: make(map[string]Behavior)}
}

// register records a behavior under its kind name, replacing any previous
// registration of the same name
func (k *kinds) register(behavior Behavior) {
	k.mu.Lock()
	k.behaviors[behavior.Kind()] = behavior
	k.mu.Unlock()
}

// get returns the behavior registered under the given kind name
func (k *kinds) get(kind string) (Behavior, bool) {
	k.mu.RLock()
	behavior, ok := k.behaviors[kind]
	k.mu.RUnlock()
	return behavior, ok
}
