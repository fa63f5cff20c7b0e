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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squaregear/theater/address"
)

func TestRegistryBindUnbind(t *testing.T) {
	reg := newRegistry()
	addr := address.New("Counter", "a")
	inst := &instance{addr: addr}

	_, ok := reg.lookup(addr)
	assert.False(t, ok)

	reg.bind(addr, inst)
	got, ok := reg.lookup(addr)
	require.True(t, ok)
	assert.Same(t, inst, got)
	assert.True(t, reg.inverse())
	assert.Equal(t, 1, reg.size())

	reg.unbind(inst)
	_, ok = reg.lookup(addr)
	assert.False(t, ok)
	assert.True(t, reg.inverse())
	assert.Equal(t, 0, reg.size())

	// unbinding an unknown instance is tolerated
	reg.unbind(&instance{addr: addr})
	assert.True(t, reg.inverse())
}

// a reap arriving after a relaunch must not remove the replacement
func TestRegistryReapLostRace(t *testing.T) {
	reg := newRegistry()
	addr := address.New("Counter", "a")
	old := &instance{addr: addr}
	replacement := &instance{addr: addr}

	reg.bind(addr, old)
	reg.bind(addr, replacement)

	reg.unbind(old)

	got, ok := reg.lookup(addr)
	require.True(t, ok)
	assert.Same(t, replacement, got)
	assert.True(t, reg.inverse())
}

// forward and reverse stay exact inverses through arbitrary interleavings
func TestRegistryInverseInvariant(t *testing.T) {
	reg := newRegistry()

	instances := make([]*instance, 0, 50)
	for i := 0; i < 50; i++ {
		addr := address.New("Counter", fmt.Sprintf("k-%d", i))
		inst := &instance{addr: addr}
		instances = append(instances, inst)
		reg.bind(addr, inst)
	}
	assert.True(t, reg.inverse())
	assert.Len(t, reg.addresses(), 50)
	assert.Len(t, reg.instances(), 50)

	for i, inst := range instances {
		if i%3 == 0 {
			reg.unbind(inst)
		}
	}
	assert.True(t, reg.inverse())
}
