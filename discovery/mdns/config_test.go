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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	config := &Config{
		ServiceName: "node-1",
		Service:     "_theater._tcp",
		Domain:      "local.",
		Port:        3322,
	}
	require.NoError(t, config.Validate())
	assert.Equal(t, 5*time.Second, config.BrowseTimeout)

	invalid := &Config{Service: "_theater._tcp", Domain: "local.", Port: 3322}
	assert.Error(t, invalid.Validate())

	noPort := &Config{ServiceName: "node-1", Service: "_theater._tcp", Domain: "local."}
	assert.Error(t, noPort.Validate())
}

func TestProviderLifecycleGuards(t *testing.T) {
	provider := NewDiscovery(&Config{
		ServiceName: "node-1",
		Service:     "_theater._tcp",
		Domain:      "local.",
		Port:        3322,
	})
	assert.Equal(t, "mdns", provider.ID())

	_, err := provider.DiscoverPeers()
	assert.Error(t, err)
	assert.Error(t, provider.Deregister())
}
