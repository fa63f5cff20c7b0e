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

// verdictAction states whether the instance loop continues after a callback
type verdictAction int

const (
	actionContinue verdictAction = iota
	actionStop
)

// verdictPersistence states what the loop does against the persister
type verdictPersistence int

const (
	persistNothing verdictPersistence = iota
	persistPut
	persistDelete
)

// Verdict is the value an actor callback returns to tell the loop how to
// update in-memory state, whether to mirror it to the persister, and whether
// to keep running.
type Verdict struct {
	action      verdictAction
	persistence verdictPersistence
	state       any
	hasState    bool
}

// Ok continues with the new state and mirrors it to the persister.
func Ok(state any) Verdict {
	return Verdict{action: actionContinue, persistence: persistPut, state: state, hasState: true}
}

// OkTransient continues with the new state without touching the persister.
// The update is lost if the instance is evicted or times out.
func OkTransient(state any) Verdict {
	return Verdict{action: actionContinue, persistence: persistNothing, state: state, hasState: true}
}

// NoUpdate continues with the state unchanged.
func NoUpdate() Verdict {
	return Verdict{action: actionContinue, persistence: persistNothing}
}

// Stop terminates the instance and deletes its persisted state.
func Stop() Verdict {
	return Verdict{action: actionStop, persistence: persistDelete}
}

// StopPersist terminates the instance after mirroring the given state, so
// the next materialisation resumes from it.
func StopPersist(state any) Verdict {
	return Verdict{action: actionStop, persistence: persistPut, state: state, hasState: true}
}

// StopTransient terminates the instance leaving the persisted state as it is.
func StopTransient() Verdict {
	return Verdict{action: actionStop, persistence: persistNothing}
}

// StopDelete terminates the instance and deletes its persisted state.
func StopDelete() Verdict {
	return Verdict{action: actionStop, persistence: persistDelete}
}

// isNoUpdate reports whether the verdict is exactly NoUpdate. The init path
// uses it: a brand-new instance that declines to produce state is stopped
// instead of being kept resident.
func (v Verdict) isNoUpdate() bool {
	return v.action == actionContinue && v.persistence == persistNothing && !v.hasState
}
