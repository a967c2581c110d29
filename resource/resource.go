// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"runtime"
	"sync/atomic"
)

// Access describes how GPU work touches a resource.
type Access int32

const (
	// AccessNone marks a resource that is referenced but never read or
	// written by the GPU (bound but unused). Acquire and Release with
	// AccessNone are no-ops.
	AccessNone Access = iota

	// AccessRead marks a read-only use.
	AccessRead

	// AccessWrite marks a writing use.
	AccessWrite
)

// String returns the access mode name.
func (a Access) String() string {
	switch a {
	case AccessNone:
		return "none"
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return "unknown"
	}
}

// DefaultIdleSpins is the retry budget of TryWaitIdle. The value is an
// instruction-level spin count sized for waits that resolve within a
// few microseconds; longer waits need a real completion signal.
const DefaultIdleSpins = 50000

// UseTracker counts outstanding GPU uses of a resource.
//
// The zero value is an idle tracker ready for use. Trackers must not be
// copied after first use. All methods are safe for concurrent use.
//
// Release without a matching Acquire wraps the unsigned counter and is
// a caller bug; the tracker does not check for it.
type UseTracker struct {
	reads  atomic.Uint32
	writes atomic.Uint32
}

// Acquire registers one use of the resource with the given access.
// Called once per recorded use when a command referencing the resource
// is recorded.
func (t *UseTracker) Acquire(access Access) {
	switch access {
	case AccessRead:
		t.reads.Add(1)
	case AccessWrite:
		t.writes.Add(1)
	}
}

// Release drops one use registered by Acquire with the same access.
// Called when the GPU work referencing the resource is known to have
// completed.
func (t *UseTracker) Release(access Access) {
	switch access {
	case AccessRead:
		t.reads.Add(^uint32(0))
	case AccessWrite:
		t.writes.Add(^uint32(0))
	}
}

// InUse reports whether the resource is still referenced by in-flight
// work. AccessWrite asks for outstanding writers only; any other access
// asks whether the contents are unstable for readers, which includes
// outstanding writers.
func (t *UseTracker) InUse(access Access) bool {
	if access == AccessWrite {
		return t.writes.Load() != 0
	}
	return t.reads.Load() != 0 || t.writes.Load() != 0
}

// TryWaitIdle polls InUse up to DefaultIdleSpins times and reports
// whether the resource went idle. It returns regardless of the outcome
// and must not be the sole synchronization for correctness-critical
// waits: it is an advisory check for waits expected to be short.
func (t *UseTracker) TryWaitIdle(access Access) bool {
	return t.TryWaitIdleN(access, DefaultIdleSpins)
}

// TryWaitIdleN is TryWaitIdle with an explicit retry budget.
func (t *UseTracker) TryWaitIdleN(access Access, spins int) bool {
	for i := 0; i < spins; i++ {
		if !t.InUse(access) {
			return true
		}
		if i&0xff == 0xff {
			runtime.Gosched()
		}
	}
	return !t.InUse(access)
}
