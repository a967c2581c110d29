// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"sync"
	"testing"
)

func TestUseTrackerZeroValueIdle(t *testing.T) {
	var tr UseTracker
	for _, access := range []Access{AccessNone, AccessRead, AccessWrite} {
		if tr.InUse(access) {
			t.Errorf("InUse(%v) = true on zero-value tracker, want false", access)
		}
	}
}

func TestUseTrackerReadWrite(t *testing.T) {
	var tr UseTracker

	tr.Acquire(AccessWrite)
	tr.Acquire(AccessRead)

	if !tr.InUse(AccessRead) {
		t.Error("InUse(Read) = false after Acquire(Write)+Acquire(Read), want true")
	}
	if !tr.InUse(AccessWrite) {
		t.Error("InUse(Write) = false after Acquire(Write), want true")
	}

	tr.Release(AccessWrite)
	tr.Release(AccessRead)

	if tr.InUse(AccessRead) {
		t.Error("InUse(Read) = true after matching releases, want false")
	}
	if tr.InUse(AccessWrite) {
		t.Error("InUse(Write) = true after matching releases, want false")
	}
}

func TestUseTrackerWriterImpliesReadUse(t *testing.T) {
	var tr UseTracker

	tr.Acquire(AccessWrite)
	if !tr.InUse(AccessRead) {
		t.Error("InUse(Read) = false with outstanding writer, want true")
	}
	if tr.reads.Load() != 0 {
		t.Errorf("read counter = %d after Acquire(Write), want 0", tr.reads.Load())
	}
	tr.Release(AccessWrite)
}

func TestUseTrackerReaderIsNotWriteUse(t *testing.T) {
	var tr UseTracker

	tr.Acquire(AccessRead)
	if tr.InUse(AccessWrite) {
		t.Error("InUse(Write) = true with only a reader, want false")
	}
	tr.Release(AccessRead)
}

func TestUseTrackerNoneIsNoOp(t *testing.T) {
	var tr UseTracker

	tr.Acquire(AccessNone)
	tr.Release(AccessNone)

	if tr.reads.Load() != 0 || tr.writes.Load() != 0 {
		t.Errorf("counters = (%d, %d) after None acquire/release, want (0, 0)",
			tr.reads.Load(), tr.writes.Load())
	}
	if tr.InUse(AccessRead) || tr.InUse(AccessWrite) {
		t.Error("InUse() = true after None acquire/release, want false")
	}
}

func TestUseTrackerConcurrent(t *testing.T) {
	var tr UseTracker
	const workers = 8
	const rounds = 1000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				tr.Acquire(AccessRead)
				tr.Acquire(AccessWrite)
				tr.Release(AccessWrite)
				tr.Release(AccessRead)
			}
		}()
	}
	wg.Wait()

	if tr.InUse(AccessRead) || tr.InUse(AccessWrite) {
		t.Error("tracker still in use after balanced concurrent acquire/release")
	}
}

func TestTryWaitIdle(t *testing.T) {
	var tr UseTracker

	if !tr.TryWaitIdle(AccessRead) {
		t.Error("TryWaitIdle(Read) = false on idle tracker, want true")
	}

	tr.Acquire(AccessWrite)
	if tr.TryWaitIdleN(AccessWrite, 100) {
		t.Error("TryWaitIdleN(Write) = true with outstanding writer, want false")
	}
	tr.Release(AccessWrite)

	if !tr.TryWaitIdle(AccessWrite) {
		t.Error("TryWaitIdle(Write) = false after release, want true")
	}
}

func TestTryWaitIdleObservesRelease(t *testing.T) {
	var tr UseTracker
	tr.Acquire(AccessWrite)

	done := make(chan bool)
	go func() {
		done <- tr.TryWaitIdleN(AccessRead, DefaultIdleSpins*100)
	}()
	tr.Release(AccessWrite)

	if idle := <-done; !idle {
		t.Error("TryWaitIdleN did not observe the release within its budget")
	}
}

func TestAccessString(t *testing.T) {
	tests := []struct {
		access Access
		want   string
	}{
		{AccessNone, "none"},
		{AccessRead, "read"},
		{AccessWrite, "write"},
		{Access(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.access.String(); got != tt.want {
			t.Errorf("Access(%d).String() = %q, want %q", tt.access, got, tt.want)
		}
	}
}
