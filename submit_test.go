package gcn

import (
	"testing"
	"unsafe"

	"github.com/gogpu/gcn/backend"
)

// testCommandBuffer returns a one-element dcb slice pointing at real
// memory, the way the console hands buffers to the driver.
func testCommandBuffer() ([]unsafe.Pointer, []uint32) {
	buf := make([]byte, 64)
	return []unsafe.Pointer{unsafe.Pointer(&buf[0])}, []uint32{uint32(len(buf))}
}

func TestSubmitAndFlipOrdering(t *testing.T) {
	d := newTestDriver(t)
	target := &testTarget{}
	if err := d.AttachOutput(target); err != nil {
		t.Fatalf("AttachOutput: %v", err)
	}

	dcbs, sizes := testCommandBuffer()
	for i := 0; i < 3; i++ {
		if status := d.SubmitAndFlip(1, dcbs, sizes, nil, nil, 0, uint32(i), 0, int64(i)); status != StatusOK {
			t.Fatalf("SubmitAndFlip #%d = %v", i, status)
		}
		if status := d.SubmitDone(); status != StatusOK {
			t.Fatalf("SubmitDone #%d = %v", i, status)
		}
	}

	want := []string{
		"record", "submit", "present",
		"record", "submit", "present",
		"record", "submit", "present",
	}
	got := d.Device().(*backend.NullDevice).Events()
	if len(got) != len(want) {
		t.Fatalf("event log length = %d, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if target.pumped != 3 {
		t.Errorf("event pump ran %d times, want 3", target.pumped)
	}
	if len(target.flips) != 3 {
		t.Fatalf("flip notifications = %d, want 3", len(target.flips))
	}
	for i, arg := range target.flips {
		if arg != int64(i) {
			t.Errorf("flip #%d arg = %d, want %d", i, arg, i)
		}
	}
}

func TestSubmitAndFlipPanicsOnCount(t *testing.T) {
	d := newTestDriver(t)
	dcbs, sizes := testCommandBuffer()

	for _, count := range []uint32{0, 2, 16} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("SubmitAndFlip(count=%d) did not panic", count)
				}
			}()
			d.SubmitAndFlip(count, dcbs, sizes, nil, nil, 0, 0, 0, 0)
		}()
	}
}

func TestSubmitWithoutOutput(t *testing.T) {
	d := newTestDriver(t)
	dcbs, sizes := testCommandBuffer()

	if status := d.SubmitAndFlip(1, dcbs, sizes, nil, nil, 0, 0, 0, 0); status != StatusErrQueueUnavailable {
		t.Errorf("SubmitAndFlip without output = %v, want StatusErrQueueUnavailable", status)
	}
	if status := d.SubmitCommandBuffers(1, dcbs, sizes, nil, nil); status != StatusErrQueueUnavailable {
		t.Errorf("SubmitCommandBuffers without output = %v, want StatusErrQueueUnavailable", status)
	}
}

func TestSubmitCommandBuffers(t *testing.T) {
	d := newTestDriver(t)
	if err := d.AttachOutput(&testTarget{}); err != nil {
		t.Fatalf("AttachOutput: %v", err)
	}

	dcbs, sizes := testCommandBuffer()
	if status := d.SubmitCommandBuffers(1, dcbs, sizes, nil, nil); status != StatusOK {
		t.Fatalf("SubmitCommandBuffers = %v", status)
	}

	got := d.Device().(*backend.NullDevice).Events()
	want := []string{"record", "submit", "present"}
	if len(got) != len(want) {
		t.Fatalf("event log = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSubmitDoneWithoutPump(t *testing.T) {
	d := newTestDriver(t)
	if status := d.SubmitDone(); status != StatusOK {
		t.Errorf("SubmitDone = %v, want StatusOK", status)
	}
}

func TestSubmitPresenterRotation(t *testing.T) {
	d := newTestDriver(t)
	target := &testTarget{}
	if err := d.AttachOutput(target); err != nil {
		t.Fatalf("AttachOutput: %v", err)
	}

	dcbs, sizes := testCommandBuffer()
	const frames = 7
	for i := 0; i < frames; i++ {
		if status := d.SubmitAndFlip(1, dcbs, sizes, nil, nil, 0, 0, 0, 0); status != StatusOK {
			t.Fatalf("SubmitAndFlip #%d = %v", i, status)
		}
	}

	d.mu.Lock()
	presenter := d.presenter.(*backend.NullPresenter)
	d.mu.Unlock()
	if got := presenter.Presented(); got != frames {
		t.Errorf("Presented() = %d, want %d", got, frames)
	}
}
