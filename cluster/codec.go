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
	"encoding/gob"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// Envelope carries a message addressed to an actor across the wire.
// The Message payload is an opaque user value; concrete message types must
// be registered with RegisterMessage on every node before use.
type Envelope struct {
	Kind    string
	ID      string
	Message any
}

// RegisterMessage records a concrete message type with the wire codec.
// Every node of the cluster must register the same set of types.
func RegisterMessage(value any) {
	gob.Register(value)
}

// Compression selects the envelope payload compression
type Compression byte

const (
	// NoCompression sends payloads uncompressed
	NoCompression Compression = iota
	// ZstdCompression compresses payloads with Zstandard
	ZstdCompression
	// BrotliCompression compresses payloads with Brotli
	BrotliCompression
)

// Codec encodes envelopes to wire bytes and back
type Codec interface {
	Encode(envelope *Envelope) ([]byte, error)
	Decode(data []byte) (*Envelope, error)
}

// gobCodec is the default codec. Payloads are gob streams, optionally
// compressed. The first byte of the wire form tags the compression so the
// receiver does not depend on matching configuration.
type gobCodec struct {
	compression Compression
	encoder     *zstd.Encoder
	decoder     *zstd.Decoder
}

var _ Codec = (*gobCodec)(nil)

// NewCodec creates the default envelope codec with the given compression
func NewCodec(compression Compression) (Codec, error) {
	codec := &gobCodec{compression: compression}
	if compression == ZstdCompression {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		codec.encoder = encoder
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	codec.decoder = decoder
	return codec, nil
}

// Encode marshals an envelope into its wire form
func (c *gobCodec) Encode(envelope *Envelope) ([]byte, error) {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(envelope); err != nil {
		return nil, err
	}

	switch c.compression {
	case ZstdCompression:
		out := make([]byte, 1, payload.Len()/2+1)
		out[0] = byte(ZstdCompression)
		return c.encoder.EncodeAll(payload.Bytes(), out), nil
	case BrotliCompression:
		var out bytes.Buffer
		out.WriteByte(byte(BrotliCompression))
		writer := brotli.NewWriter(&out)
		if _, err := writer.Write(payload.Bytes()); err != nil {
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	default:
		out := make([]byte, 0, payload.Len()+1)
		out = append(out, byte(NoCompression))
		return append(out, payload.Bytes()...), nil
	}
}

// Decode unmarshals an envelope from its wire form
func (c *gobCodec) Decode(data []byte) (*Envelope, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("cluster: truncated envelope")
	}

	var payload []byte
	switch Compression(data[0]) {
	case ZstdCompression:
		decompressed, err := c.decoder.DecodeAll(data[1:], nil)
		if err != nil {
			return nil, err
		}
		payload = decompressed
	case BrotliCompression:
		decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data[1:])))
		if err != nil {
			return nil, err
		}
		payload = decompressed
	case NoCompression:
		payload = data[1:]
	default:
		return nil, fmt.Errorf("cluster: unknown compression tag %d", data[0])
	}

	envelope := new(Envelope)
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(envelope); err != nil {
		return nil, err
	}
	return envelope, nil
}
