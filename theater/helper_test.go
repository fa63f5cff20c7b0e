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

	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"
	"go.uber.org/atomic"

	"github.com/squaregear/theater/log"
	"github.com/squaregear/theater/persistence"
)

// counterGet asks a counter for its value; the reply carries (id, value).
// Only usable for actors resident in the same process.
type counterGet struct {
	Reply chan counterReading
}

type counterReading struct {
	ID    string
	Value int
}

// newCounterBehavior builds the counter fixture: init processes the first
// message over a zero count, inc persists count+1, get notifies the
// observer, done stops and deletes, boom crashes the callback, and
// transient updates memory without persisting.
func newCounterBehavior(ttl time.Duration) *FuncBehavior {
	process := func(ctx context.Context, state any, id string, message any) Verdict {
		count := 0
		if state != nil {
			count = state.(int)
		}
		switch m := message.(type) {
		case counterGet:
			m.Reply <- counterReading{ID: id, Value: count}
			return Ok(count)
		case string:
			switch m {
			case "inc":
				return Ok(count + 1)
			case "transient":
				return OkTransient(9)
			case "done":
				return Stop()
			case "boom":
				panic("counter exploded")
			}
		}
		return NoUpdate()
	}

	opts := []FuncBehaviorOption{
		WithInit(func(ctx context.Context, id string, message any) Verdict {
			return process(ctx, 0, id, message)
		}),
		WithProcess(process),
	}
	if ttl > 0 {
		opts = append(opts, WithTimeToLive(func(any, string) time.Duration { return ttl }))
	}
	return NewFuncBehavior("Counter", opts...)
}

// pressureSampler is a memory sampler tests can squeeze at will
type pressureSampler struct {
	ratio *atomic.Float64
}

func newPressureSampler(initial float64) *pressureSampler {
	return &pressureSampler{ratio: atomic.NewFloat64(initial)}
}

func (p *pressureSampler) sample() (float64, error) {
	return p.ratio.Load(), nil
}

func (p *pressureSampler) squeeze() {
	p.ratio.Store(0.05)
}

func (p *pressureSampler) release() {
	p.ratio.Store(0.90)
}

// newTestSystem builds a single-node server system backed by the given
// shared store, on a dynamic port
func newTestSystem(t *testing.T, name string, store persistence.Persister, opts ...Option) *System {
	t.Helper()
	ports := dynaport.Get(1)
	base := []Option{
		WithLogger(log.DiscardLogger),
		WithHost("127.0.0.1"),
		WithPort(ports[0]),
		WithNodeName(name),
		WithPersister(store),
		WithMemorySampler(newPressureSampler(0.90).sample),
		WithMemorySweepInterval(20 * time.Millisecond),
	}
	system, err := NewSystem(name, append(base, opts...)...)
	require.NoError(t, err)
	return system
}

func pause(duration time.Duration) {
	timer := time.NewTimer(duration)
	<-timer.C
}
