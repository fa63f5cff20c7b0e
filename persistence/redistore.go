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
	"errors"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/redis/go-redis/v9"

	"github.com/squaregear/theater/address"
	theatererrors "github.com/squaregear/theater/errors"
)

// RedisConfig holds the Redis store configuration
type RedisConfig struct {
	// Address is the Redis server address in host:port form
	Address string
	// Password is the optional server password
	Password string
	// DB selects the Redis logical database
	DB int
	// Namespace prefixes every key. Defaults to "theater".
	Namespace string
}

// RedisStore is a Persister backed by a Redis server, for deployments that
// want actor state to survive the loss of any single node.
type RedisStore struct {
	config *RedisConfig
	client *redis.Client
}

var _ Persister = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed Persister
func NewRedisStore(config *RedisConfig) *RedisStore {
	if config.Namespace == "" {
		config.Namespace = "theater"
	}
	return &RedisStore{config: config}
}

// Connect establishes and verifies the server connection
func (s *RedisStore) Connect(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     s.config.Address,
		Password: s.config.Password,
		DB:       s.config.DB,
	})

	// ride over a Redis server that is still coming up
	retrier := retry.NewRetrier(5, 100*time.Millisecond, time.Second)
	if err := retrier.RunContext(ctx, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}); err != nil {
		_ = client.Close()
		return fmt.Errorf("persistence: connecting to redis: %w", err)
	}

	s.client = client
	return nil
}

// Disconnect closes the server connection
func (s *RedisStore) Disconnect(context.Context) error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// Get returns the persisted state of the given actor
func (s *RedisStore) Get(ctx context.Context, addr address.Address) (any, bool, error) {
	if s.client == nil {
		return nil, false, theatererrors.ErrPersisterNotConnected
	}

	data, err := s.client.Get(ctx, s.key(addr)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	state, err := decodeState(data)
	if err != nil {
		return nil, false, err
	}
	return state, true, nil
}

// Put stores the state of the given actor
func (s *RedisStore) Put(ctx context.Context, addr address.Address, state any) error {
	if s.client == nil {
		return theatererrors.ErrPersisterNotConnected
	}

	data, err := encodeState(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(addr), data, 0).Err()
}

// Delete removes the state of the given actor. Absent entries are ignored.
func (s *RedisStore) Delete(ctx context.Context, addr address.Address) error {
	if s.client == nil {
		return theatererrors.ErrPersisterNotConnected
	}
	return s.client.Del(ctx, s.key(addr)).Err()
}

func (s *RedisStore) key(addr address.Address) string {
	return fmt.Sprintf("%s:state:%s", s.config.Namespace, addr.String())
}
