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
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"

	"github.com/squaregear/theater/address"
	"github.com/squaregear/theater/errors"
)

const (
	boltFileMode   os.FileMode = 0o600
	boltBucketName             = "actor_states"
	boltFolder                 = ".theater"
	boltFilePrefix             = "states"
)

var boltOpenTimeout = 5 * time.Second

// BoltStore is the disk-resident Persister bundled with the runtime. It is
// the default when no persister is configured, and is documented as toy
// quality: a single bbolt file per node, single-writer, no replication.
//
// bbolt provides single-writer/multi-reader transactions, which matches the
// concurrency contract of the Persister interface without extra locking.
type BoltStore struct {
	path   string
	bucket []byte
	db     *bbolt.DB
}

var _ Persister = (*BoltStore)(nil)

// NewBoltStore creates a bbolt-backed Persister writing to the given file
// path. When the path is empty a unique file rooted under the user's home
// directory ("~/.theater/states-*.db") is reserved, allowing multiple nodes
// on one machine to coexist without clashing on file locks.
func NewBoltStore(path string) (*BoltStore, error) {
	if path == "" {
		generated, err := defaultBoltPath()
		if err != nil {
			return nil, err
		}
		path = generated
	}
	return &BoltStore{path: path, bucket: []byte(boltBucketName)}, nil
}

// Path returns the backing file path
func (s *BoltStore) Path() string {
	return s.path
}

// Connect opens the database file and prepares the bucket
func (s *BoltStore) Connect(context.Context) error {
	db, err := bbolt.Open(s.path, boltFileMode, &bbolt.Options{
		Timeout:    boltOpenTimeout,
		NoGrowSync: true,
	})
	if err != nil {
		return fmt.Errorf("persistence: opening boltdb: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return fmt.Errorf("persistence: initializing boltdb bucket: %w", err)
	}

	s.db = db
	return nil
}

// Disconnect closes the database
func (s *BoltStore) Disconnect(context.Context) error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Get returns the persisted state of the given actor
func (s *BoltStore) Get(_ context.Context, addr address.Address) (any, bool, error) {
	if s.db == nil {
		return nil, false, errors.ErrPersisterNotConnected
	}

	var data []byte
	if err := s.db.View(func(tx *bbolt.Tx) error {
		if value := tx.Bucket(s.bucket).Get([]byte(addr.String())); value != nil {
			data = make([]byte, len(value))
			copy(data, value)
		}
		return nil
	}); err != nil {
		return nil, false, err
	}

	if data == nil {
		return nil, false, nil
	}
	state, err := decodeState(data)
	if err != nil {
		return nil, false, err
	}
	return state, true, nil
}

// Put stores the state of the given actor
func (s *BoltStore) Put(_ context.Context, addr address.Address, state any) error {
	if s.db == nil {
		return errors.ErrPersisterNotConnected
	}

	data, err := encodeState(state)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(addr.String()), data)
	})
}

// Delete removes the state of the given actor. Absent entries are ignored.
func (s *BoltStore) Delete(_ context.Context, addr address.Address) error {
	if s.db == nil {
		return errors.ErrPersisterNotConnected
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(addr.String()))
	})
}

// defaultBoltPath reserves a unique database file under the home directory
func defaultBoltPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, boltFolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%s.db", boltFilePrefix, uuid.NewString())
	return filepath.Join(dir, name), nil
}
