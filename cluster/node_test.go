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
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"

	"github.com/squaregear/theater/discovery/static"
	"github.com/squaregear/theater/log"
)

func newTestNode(t *testing.T, name string, port int, mode Mode, peers ...string) *Node {
	t.Helper()
	node, err := NewNode(&Config{
		Name:     name,
		BindHost: "127.0.0.1",
		BindPort: port,
		Mode:     mode,
		Provider: static.NewDiscovery(peers...),
		Logger:   log.DiscardLogger,
	})
	require.NoError(t, err)
	return node
}

func TestTwoNodeCluster(t *testing.T) {
	ctx := context.Background()
	ports := dynaport.Get(2)

	node1 := newTestNode(t, "node-1", ports[0], ModeServer)
	received := make(chan []byte, 1)
	node1.OnDeliver(func(data []byte) { received <- data })
	require.NoError(t, node1.Start(ctx))
	defer func() { _ = node1.Stop(ctx) }()

	addr1 := fmt.Sprintf("127.0.0.1:%d", ports[0])
	node2 := newTestNode(t, "node-2", ports[1], ModeServer, addr1)
	require.NoError(t, node2.Start(ctx))
	defer func() { _ = node2.Stop(ctx) }()

	// both nodes converge on a two-member view
	require.Eventually(t, func() bool {
		return len(node1.View()) == 2 && len(node2.View()) == 2
	}, 5*time.Second, 50*time.Millisecond)

	// node1 observes node2 joining
	select {
	case event := <-node1.Events():
		assert.Equal(t, MemberJoined, event.Type)
		assert.Equal(t, "node-2", event.Member.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the join event")
	}

	// reliable pairwise delivery
	target := Member{}
	for _, member := range node2.Members() {
		if member.Name == "node-1" {
			target = member
		}
	}
	require.NotEmpty(t, target.Name)
	require.NoError(t, node2.Send(target, []byte("hello")))

	select {
	case data := <-received:
		assert.Equal(t, []byte("hello"), data)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the delivery")
	}
}

func TestClientNodeExcludedFromView(t *testing.T) {
	ctx := context.Background()
	ports := dynaport.Get(2)

	server := newTestNode(t, "server-1", ports[0], ModeServer)
	require.NoError(t, server.Start(ctx))
	defer func() { _ = server.Stop(ctx) }()

	client := newTestNode(t, "client-1", ports[1], ModeClient, fmt.Sprintf("127.0.0.1:%d", ports[0]))
	require.NoError(t, client.Start(ctx))
	defer func() { _ = client.Stop(ctx) }()

	require.Eventually(t, func() bool {
		return len(client.Members()) == 2
	}, 5*time.Second, 50*time.Millisecond)

	view := client.View()
	require.Len(t, view, 1)
	assert.Equal(t, "server-1", view[0].Name)
}

func TestNodeConfigValidation(t *testing.T) {
	_, err := NewNode(&Config{BindPort: 0, Mode: ModeServer})
	assert.Error(t, err)

	_, err = NewNode(&Config{BindPort: 3322, Mode: Mode("bogus")})
	assert.Error(t, err)
}
