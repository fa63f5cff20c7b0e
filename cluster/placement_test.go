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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squaregear/theater/address"
	"github.com/squaregear/theater/hash"
)

func members(names ...string) []Member {
	out := make([]Member, 0, len(names))
	for _, name := range names {
		out = append(out, Member{Name: name, Host: "127.0.0.1", Port: 3322, Mode: ModeServer})
	}
	return out
}

func TestHomeIsDeterministic(t *testing.T) {
	hasher := hash.DefaultHasher()
	view := members("node-a", "node-b", "node-c")
	addr := address.New("Counter", "some-id")

	first, ok := Home(hasher, view, addr)
	require.True(t, ok)
	for i := 0; i < 50; i++ {
		again, ok := Home(hasher, view, addr)
		require.True(t, ok)
		assert.Equal(t, first.Name, again.Name)
	}
}

func TestHomeEmptyView(t *testing.T) {
	_, ok := Home(hash.DefaultHasher(), nil, address.New("Counter", "x"))
	assert.False(t, ok)
}

func TestHomeSpreadsKeys(t *testing.T) {
	hasher := hash.DefaultHasher()
	view := members("node-a", "node-b", "node-c")

	counts := map[string]int{}
	const keys = 3000
	for i := 0; i < keys; i++ {
		home, ok := Home(hasher, view, address.New("Counter", fmt.Sprintf("key-%d", i)))
		require.True(t, ok)
		counts[home.Name]++
	}

	// each node should own roughly a third of the keys
	for name, count := range counts {
		assert.InDelta(t, keys/3, count, float64(keys)/10, "node %s owns %d keys", name, count)
	}
}

// a single joining node should take over roughly 1/(n+1) of the keys, and
// every relocated key must move to the new node only
func TestHomeStabilityOnJoin(t *testing.T) {
	hasher := hash.DefaultHasher()
	before := members("node-a", "node-b", "node-c")
	after := members("node-a", "node-b", "node-c", "node-d")

	const keys = 3000
	moved := 0
	for i := 0; i < keys; i++ {
		addr := address.New("Counter", fmt.Sprintf("key-%d", i))
		oldHome, ok := Home(hasher, before, addr)
		require.True(t, ok)
		newHome, ok := Home(hasher, after, addr)
		require.True(t, ok)

		if oldHome.Name != newHome.Name {
			moved++
			assert.Equal(t, "node-d", newHome.Name)
		}
	}
	assert.InDelta(t, keys/4, moved, float64(keys)/10)
}

// the pairwise check the launcher runs after a join must pick the same node
// whichever order the two candidates are given in
func TestHomePairwiseSubset(t *testing.T) {
	hasher := hash.DefaultHasher()
	self := Member{Name: "node-a", Mode: ModeServer}
	peer := Member{Name: "node-d", Mode: ModeServer}

	for i := 0; i < 500; i++ {
		addr := address.New("Counter", fmt.Sprintf("key-%d", i))
		pairwise, ok := Home(hasher, []Member{peer, self}, addr)
		require.True(t, ok)

		full, ok := Home(hasher, []Member{self, peer}, addr)
		require.True(t, ok)
		assert.Equal(t, full.Name, pairwise.Name)
	}
}
