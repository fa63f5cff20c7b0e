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
	"net"
	"strconv"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"

	"github.com/squaregear/theater/errors"
	"github.com/squaregear/theater/log"
)

func startNatsServer(t *testing.T) *natsserver.Server {
	t.Helper()
	serv, err := natsserver.NewServer(&natsserver.Options{
		Host: "127.0.0.1",
		Port: -1,
	})
	require.NoError(t, err)

	ready := make(chan bool)
	go func() {
		ready <- true
		serv.Start()
	}()
	<-ready

	if !serv.ReadyForConnections(2 * time.Second) {
		t.Fatalf("nats server failed to start")
	}
	return serv
}

func newPeer(t *testing.T, serverAddr, name string, port int) *Discovery {
	t.Helper()
	config := &Config{
		Server:  fmt.Sprintf("nats://%s", serverAddr),
		Subject: "theater-discovery",
		Name:    name,
		Host:    "127.0.0.1",
		Port:    port,
		Timeout: time.Second,
	}
	return NewDiscovery(config, WithLogger(log.DiscardLogger))
}

func TestNatsDiscovery(t *testing.T) {
	serv := startNatsServer(t)
	defer serv.Shutdown()

	ports := dynaport.Get(2)

	peer1 := newPeer(t, serv.Addr().String(), "node-1", ports[0])
	peer2 := newPeer(t, serv.Addr().String(), "node-2", ports[1])
	assert.Equal(t, "nats", peer1.ID())

	require.NoError(t, peer1.Initialize())
	require.NoError(t, peer2.Initialize())
	require.NoError(t, peer1.Register())
	require.NoError(t, peer2.Register())

	peers, err := peer1.DiscoverPeers()
	require.NoError(t, err)
	expected := net.JoinHostPort("127.0.0.1", strconv.Itoa(ports[1]))
	assert.Contains(t, peers, expected)
	assert.NotContains(t, peers, net.JoinHostPort("127.0.0.1", strconv.Itoa(ports[0])))

	require.NoError(t, peer1.Deregister())
	require.NoError(t, peer2.Deregister())
	require.NoError(t, peer1.Close())
	require.NoError(t, peer2.Close())
}

func TestNatsDiscoveryGuards(t *testing.T) {
	provider := NewDiscovery(&Config{})

	_, err := provider.DiscoverPeers()
	assert.ErrorIs(t, err, errors.ErrNotInitialized)
	assert.ErrorIs(t, provider.Register(), errors.ErrNotInitialized)
	assert.Error(t, provider.Initialize())
}
