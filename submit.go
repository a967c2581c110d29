package gcn

import (
	"unsafe"

	"github.com/gogpu/gcn/backend"
)

// FlipNotifier receives the flip parameters of a presented submission.
// videoout implements it to maintain flip status counters; a
// PresentTarget that also implements FlipNotifier is notified after
// every successful present.
type FlipNotifier interface {
	NotifyFlip(bufferIndex uint32, flipMode uint32, flipArg int64)
}

// SubmitCommandBuffers submits draw and constant command buffers to the
// graphics queue without requesting a flip. It is the non-presenting
// variant of SubmitAndFlip and shares its contract.
func (d *Driver) SubmitCommandBuffers(count uint32, dcbs []unsafe.Pointer, dcbSizes []uint32, ccbs []unsafe.Pointer, ccbSizes []uint32) Status {
	return d.SubmitAndFlip(count, dcbs, dcbSizes, ccbs, ccbSizes, 0, 0, 0, 0)
}

// SubmitAndFlip submits draw and constant command buffers to the
// graphics queue and schedules a flip of the given display buffer once
// the work completes.
//
// The pipeline order is fixed: record, acquire, submit, present. The
// backend waits on the acquire semaphore before executing the work and
// signals the present semaphore when it finishes, so presentation never
// observes a half-rendered image.
//
// Exactly one command buffer per submission is supported; any other
// count panics, since it indicates a broken caller rather than a
// recoverable runtime condition. The constant buffers ride along with
// the draw buffers and need no separate recording.
func (d *Driver) SubmitAndFlip(count uint32, dcbs []unsafe.Pointer, dcbSizes []uint32, ccbs []unsafe.Pointer, ccbSizes []uint32, videoOutHandle int32, bufferIndex uint32, flipMode uint32, flipArg int64) Status {
	if count != 1 {
		panic("gcn: only one command buffer per submission is supported")
	}

	d.mu.Lock()
	queue := d.graphics
	presenter := d.presenter
	d.mu.Unlock()

	if queue == nil {
		Logger().Error("gcn: submit without a graphics queue")
		return StatusErrQueueUnavailable
	}
	if presenter == nil {
		Logger().Error("gcn: submit without an attached output")
		return StatusErrQueueUnavailable
	}

	cmd := Command{Buffer: dcbs[0], Size: dcbSizes[0]}
	list, err := queue.record(cmd)
	if err != nil {
		Logger().Error("gcn: record failed", "error", err)
		return StatusErrUnknown
	}

	imageIndex, sync, err := presenter.AcquireNextImage()
	if err != nil {
		Logger().Error("gcn: acquire next image failed", "error", err)
		list.Free()
		return StatusErrUnknown
	}

	sub := backend.Submission{
		CmdList: list,
		Wait:    sync.Acquire,
		Wake:    sync.Present,
	}
	if err := queue.queue.Submit(sub); err != nil {
		Logger().Error("gcn: submit failed", "error", err)
		list.Free()
		return StatusErrUnknown
	}

	if err := queue.queue.Present(presenter, imageIndex, sync); err != nil {
		Logger().Error("gcn: present failed", "error", err)
		return StatusErrUnknown
	}

	d.notifyFlip(bufferIndex, flipMode, flipArg)

	Logger().Debug("gcn: submitted and flipped",
		"dcbSizeInBytes", dcbSizes[0],
		"videoOutHandle", videoOutHandle,
		"bufferIndex", bufferIndex,
		"flipMode", flipMode,
		"flipArg", flipArg)
	return StatusOK
}

// SubmitDone marks the end of the frame's submissions. The driver uses
// the gap to run the windowing event pump so the output window stays
// responsive without a dedicated UI thread.
func (d *Driver) SubmitDone() Status {
	d.mu.Lock()
	pump := d.pump
	d.mu.Unlock()
	if pump != nil {
		pump()
	}
	return StatusOK
}

func (d *Driver) notifyFlip(bufferIndex uint32, flipMode uint32, flipArg int64) {
	d.mu.Lock()
	n := d.flip
	d.mu.Unlock()
	if n != nil {
		n.NotifyFlip(bufferIndex, flipMode, flipArg)
	}
}
