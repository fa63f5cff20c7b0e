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

package theater

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFuncBehaviorDefaults(t *testing.T) {
	ctx := context.Background()
	behavior := NewFuncBehavior("Bare")
	assert.Equal(t, "Bare", behavior.Kind())

	// process defaults to NoUpdate
	verdict := behavior.Process(ctx, nil, "id", "msg")
	assert.True(t, verdict.isNoUpdate())

	// init defaults to process over a nil state
	verdict = behavior.Init(ctx, "id", "msg")
	assert.True(t, verdict.isNoUpdate())

	// ttl defaults to the system fallback
	assert.Equal(t, time.Duration(0), behavior.TimeToLive(nil, "id"))
}

func TestFuncBehaviorInitFallsBackToProcess(t *testing.T) {
	ctx := context.Background()
	behavior := NewFuncBehavior("Echo",
		WithProcess(func(_ context.Context, state any, _ string, message any) Verdict {
			assert.Nil(t, state)
			return Ok(message)
		}))

	verdict := behavior.Init(ctx, "id", "hello")
	assert.Equal(t, actionContinue, verdict.action)
	assert.Equal(t, persistPut, verdict.persistence)
	assert.Equal(t, "hello", verdict.state)
}

func TestVerdictShapes(t *testing.T) {
	assert.True(t, NoUpdate().isNoUpdate())
	assert.False(t, Ok(1).isNoUpdate())
	assert.False(t, OkTransient(1).isNoUpdate())
	assert.False(t, StopTransient().isNoUpdate())

	assert.Equal(t, actionStop, Stop().action)
	assert.Equal(t, persistDelete, Stop().persistence)
	assert.Equal(t, persistDelete, StopDelete().persistence)
	assert.Equal(t, persistPut, StopPersist(1).persistence)
	assert.Equal(t, persistNothing, StopTransient().persistence)
}
