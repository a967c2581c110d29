// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/gcn/backend"
	"github.com/gogpu/gcn/resource"
)

// vulkanQueue wraps one vk.Queue handle.
type vulkanQueue struct {
	dev    *vulkanDevice
	handle vk.Queue
	family uint32
}

var _ backend.Queue = (*vulkanQueue)(nil)

func (q *vulkanQueue) Family() uint32 { return q.family }

// Submit closes the command list's recording, submits it with the
// requested semaphores and keeps it alive until its fence signals.
// Completed earlier submissions are reaped on the way in, so steady
// state holds only the frames actually in flight.
func (q *vulkanQueue) Submit(sub backend.Submission) error {
	q.dev.reapCompleted()

	list, ok := sub.CmdList.(*vulkanCommandList)
	if !ok {
		return fmt.Errorf("vulkan: foreign command list %T", sub.CmdList)
	}
	if res := vk.EndCommandBuffer(list.buf); res != vk.Success {
		return fmt.Errorf("vulkan: end command buffer: %v", vk.Error(res))
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{list.buf},
	}
	if sem, ok := sub.Wait.(vk.Semaphore); ok && sem != vk.Semaphore(vk.NullHandle) {
		submitInfo.WaitSemaphoreCount = 1
		submitInfo.PWaitSemaphores = []vk.Semaphore{sem}
		submitInfo.PWaitDstStageMask = []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		}
	}
	if sem, ok := sub.Wake.(vk.Semaphore); ok && sem != vk.Semaphore(vk.NullHandle) {
		submitInfo.SignalSemaphoreCount = 1
		submitInfo.PSignalSemaphores = []vk.Semaphore{sem}
	}

	list.tracker.Acquire(resource.AccessWrite)
	if res := vk.QueueSubmit(q.handle, 1, []vk.SubmitInfo{submitInfo}, list.fence); res != vk.Success {
		list.tracker.Release(resource.AccessWrite)
		return fmt.Errorf("vulkan: queue submit: %v", vk.Error(res))
	}
	q.dev.addPending(list)
	return nil
}

// Present queues the image for presentation on this queue.
func (q *vulkanQueue) Present(p backend.Presenter, imageIndex uint32, sync backend.SyncPair) error {
	vp, ok := p.(*vulkanPresenter)
	if !ok {
		return fmt.Errorf("vulkan: foreign presenter %T", p)
	}
	return vp.present(q.handle, imageIndex, sync)
}
