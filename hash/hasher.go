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

package hash

import (
	"crypto/sha256"
)

// Hasher defines the digest generator used to weigh candidate nodes during
// placement. Digests of equal length are compared lexicographically, so an
// implementation must always return digests of Size() bytes.
type Hasher interface {
	// Digest returns the hash of the provided byte slice.
	Digest(key []byte) []byte
	// Size returns the digest length in bytes.
	Size() int
}

type sha256Hasher struct{}

var _ Hasher = sha256Hasher{}

// Digest implementation
func (x sha256Hasher) Digest(key []byte) []byte {
	digest := sha256.Sum256(key)
	return digest[:]
}

// Size implementation
func (x sha256Hasher) Size() int {
	return sha256.Size
}

// DefaultHasher returns the default hasher
func DefaultHasher() Hasher {
	return sha256Hasher{}
}
