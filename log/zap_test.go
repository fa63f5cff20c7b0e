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

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapInfo(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(InfoLevel, buffer)
	logger.Info("test info")

	expected := "test info"
	actual, err := extractMessage(buffer.Bytes())
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
	assert.Equal(t, InfoLevel, logger.LogLevel())
	assert.Len(t, logger.LogOutput(), 1)
}

func TestZapInfof(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(InfoLevel, buffer)
	logger.Infof("hello %s", "world")

	actual, err := extractMessage(buffer.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "hello world", actual)
}

func TestZapDebug(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(DebugLevel, buffer)
	logger.Debug("test debug")

	actual, err := extractMessage(buffer.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "test debug", actual)
	assert.Equal(t, DebugLevel, logger.LogLevel())
}

func TestZapLevelFiltering(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(ErrorLevel, buffer)
	logger.Info("not written")
	assert.Zero(t, buffer.Len())

	logger.Error("written")
	actual, err := extractMessage(buffer.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "written", actual)
}

func TestZapPanic(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(PanicLevel, buffer)
	assert.Panics(t, func() {
		logger.Panic("boom")
	})
}

func TestDiscardLogger(t *testing.T) {
	DiscardLogger.Info("dropped")
	DiscardLogger.Debugf("dropped %d", 1)
	assert.Equal(t, InvalidLevel, DiscardLogger.LogLevel())
	assert.Panics(t, func() {
		DiscardLogger.Panic("boom")
	})
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "INFO", InfoLevel.String())
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Equal(t, "INVALID", InvalidLevel.String())
}

// extractMessage decodes a single JSON log line and returns its msg field
func extractMessage(line []byte) (string, error) {
	var entry map[string]any
	if err := json.Unmarshal(line, &entry); err != nil {
		return "", err
	}
	if msg, ok := entry["msg"].(string); ok {
		return msg, nil
	}
	return "", nil
}
