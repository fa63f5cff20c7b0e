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

package persistence

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squaregear/theater/address"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Connect(ctx))

	addr := address.New("Counter", "a")

	_, found, err := store.Get(ctx, addr)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, addr, 5))
	state, found, err := store.Get(ctx, addr)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 5, state)
	assert.Equal(t, 1, store.Len())

	// overwrite keeps a single entry
	require.NoError(t, store.Put(ctx, addr, 6))
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, addr))
	_, found, err = store.Get(ctx, addr)
	require.NoError(t, err)
	assert.False(t, found)

	// delete is idempotent
	require.NoError(t, store.Delete(ctx, addr))
	require.NoError(t, store.Disconnect(ctx))
}

func TestMemoryStoreCapacityEviction(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var removed []address.Address
	store := NewMemoryStore(
		WithCapacity(8),
		WithRemovedListener(func(provider string, addr address.Address, state any) {
			assert.Equal(t, "memstore", provider)
			mu.Lock()
			removed = append(removed, addr)
			mu.Unlock()
		}))

	for i := 0; i < 50; i++ {
		require.NoError(t, store.Put(ctx, address.New("Counter", fmt.Sprintf("k-%d", i)), i))
	}

	assert.LessOrEqual(t, store.Len(), 8)
	mu.Lock()
	assert.NotEmpty(t, removed)
	mu.Unlock()
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				addr := address.New("Counter", fmt.Sprintf("w%d-%d", w, i))
				assert.NoError(t, store.Put(ctx, addr, i))
				_, _, err := store.Get(ctx, addr)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, 8*200, store.Len())
}
