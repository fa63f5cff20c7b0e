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
	"bytes"

	"github.com/squaregear/theater/address"
	"github.com/squaregear/theater/hash"
)

// Home selects the node hosting the given actor out of the candidate
// members using rendezvous (highest-random-weight) hashing: each candidate
// is weighed by the digest of (member identity, actor address) and the
// highest digest wins, compared lexicographically. Ties keep the earlier
// candidate, so callers must present candidates in a stable order for the
// choice to agree across nodes.
//
// Rendezvous hashing gives every node of the cluster the same answer with
// no coordination, and moves only ~1/(n+1) of the keys when a node joins.
func Home(hasher hash.Hasher, members []Member, addr address.Address) (Member, bool) {
	if len(members) == 0 {
		return Member{}, false
	}

	key := addr.String()
	winner := members[0]
	best := weigh(hasher, members[0], key)
	for _, member := range members[1:] {
		if digest := weigh(hasher, member, key); bytes.Compare(digest, best) > 0 {
			winner = member
			best = digest
		}
	}
	return winner, true
}

func weigh(hasher hash.Hasher, member Member, key string) []byte {
	input := make([]byte, 0, len(member.Name)+len(key)+1)
	input = append(input, member.Name...)
	input = append(input, '|')
	input = append(input, key...)
	return hasher.Digest(input)
}
