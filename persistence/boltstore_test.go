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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squaregear/theater/address"
	"github.com/squaregear/theater/errors"
)

type boltTestState struct {
	Count int
}

func TestBoltStoreRoundTrip(t *testing.T) {
	RegisterState(boltTestState{})

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "states.db")

	store, err := NewBoltStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	require.NoError(t, store.Connect(ctx))

	addr := address.New("Counter", "b")

	_, found, err := store.Get(ctx, addr)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, addr, boltTestState{Count: 5}))
	state, found, err := store.Get(ctx, addr)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, boltTestState{Count: 5}, state)

	require.NoError(t, store.Delete(ctx, addr))
	_, found, err = store.Get(ctx, addr)
	require.NoError(t, err)
	assert.False(t, found)

	// delete is idempotent with respect to absence
	require.NoError(t, store.Delete(ctx, addr))
	require.NoError(t, store.Disconnect(ctx))
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	RegisterState(boltTestState{})

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "states.db")

	store, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Connect(ctx))
	addr := address.New("Counter", "persisted")
	require.NoError(t, store.Put(ctx, addr, boltTestState{Count: 9}))
	require.NoError(t, store.Disconnect(ctx))

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, reopened.Connect(ctx))
	defer func() { _ = reopened.Disconnect(ctx) }()

	state, found, err := reopened.Get(ctx, addr)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, boltTestState{Count: 9}, state)
}

func TestBoltStoreNotConnected(t *testing.T) {
	ctx := context.Background()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "states.db"))
	require.NoError(t, err)

	_, _, err = store.Get(ctx, address.New("Counter", "x"))
	assert.ErrorIs(t, err, errors.ErrPersisterNotConnected)
	assert.ErrorIs(t, store.Put(ctx, address.New("Counter", "x"), 1), errors.ErrPersisterNotConnected)
	assert.ErrorIs(t, store.Delete(ctx, address.New("Counter", "x")), errors.ErrPersisterNotConnected)
}

func TestRedisStoreNotConnected(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(&RedisConfig{Address: "127.0.0.1:6379"})

	_, _, err := store.Get(ctx, address.New("Counter", "x"))
	assert.ErrorIs(t, err, errors.ErrPersisterNotConnected)
	assert.ErrorIs(t, store.Put(ctx, address.New("Counter", "x"), 1), errors.ErrPersisterNotConnected)
	assert.ErrorIs(t, store.Delete(ctx, address.New("Counter", "x")), errors.ErrPersisterNotConnected)
	assert.NoError(t, store.Disconnect(ctx))
}
