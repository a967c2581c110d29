// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vulkan

import (
	"fmt"
	"sync"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/gcn/backend"
	"github.com/gogpu/gcn/resource"
)

// vulkanDevice owns the logical device, the command pool and the list
// of submissions still in flight.
type vulkanDevice struct {
	adapter *vulkanAdapter
	handle  vk.Device
	pool    vk.CommandPool
	queues  backend.DeviceQueues

	mu      sync.Mutex
	pending []*vulkanCommandList
}

var _ backend.Device = (*vulkanDevice)(nil)

func newVulkanDevice(adapter *vulkanAdapter, handle vk.Device, indices backend.QueueFamilyIndices) (*vulkanDevice, error) {
	d := &vulkanDevice{adapter: adapter, handle: handle}

	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: indices.Graphics,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(handle, &poolInfo, nil, &pool); res != vk.Success {
		vk.DestroyDevice(handle, nil)
		return nil, fmt.Errorf("vulkan: create command pool: %v", vk.Error(res))
	}
	d.pool = pool

	graphics := d.deviceQueue(indices.Graphics)
	d.queues = backend.DeviceQueues{Graphics: graphics, Compute: graphics, Transfer: graphics}
	if indices.Compute != indices.Graphics {
		d.queues.Compute = d.deviceQueue(indices.Compute)
	}
	if indices.Transfer != indices.Graphics && indices.Transfer != indices.Compute {
		d.queues.Transfer = d.deviceQueue(indices.Transfer)
	}
	return d, nil
}

func (d *vulkanDevice) deviceQueue(family uint32) *vulkanQueue {
	var queue vk.Queue
	vk.GetDeviceQueue(d.handle, family, 0, &queue)
	return &vulkanQueue{dev: d, handle: queue, family: family}
}

func (d *vulkanDevice) Adapter() backend.Adapter     { return d.adapter }
func (d *vulkanDevice) Queues() backend.DeviceQueues { return d.queues }

// NewCommandList allocates a primary command buffer in the recording
// state with a signaled-on-completion fence attached.
func (d *vulkanDevice) NewCommandList() (backend.CommandList, error) {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	bufs := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(d.handle, &allocInfo, bufs); res != vk.Success {
		return nil, fmt.Errorf("vulkan: allocate command buffer: %v", vk.Error(res))
	}

	fenceInfo := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	var fence vk.Fence
	if res := vk.CreateFence(d.handle, &fenceInfo, nil, &fence); res != vk.Success {
		vk.FreeCommandBuffers(d.handle, d.pool, 1, bufs)
		return nil, fmt.Errorf("vulkan: create fence: %v", vk.Error(res))
	}

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(bufs[0], &beginInfo); res != vk.Success {
		vk.DestroyFence(d.handle, fence, nil)
		vk.FreeCommandBuffers(d.handle, d.pool, 1, bufs)
		return nil, fmt.Errorf("vulkan: begin command buffer: %v", vk.Error(res))
	}

	return &vulkanCommandList{dev: d, buf: bufs[0], fence: fence}, nil
}

func (d *vulkanDevice) CreatePresenter(desc *backend.PresenterDesc) (backend.Presenter, error) {
	return newVulkanPresenter(d, desc)
}

// reapCompleted releases every in-flight command list whose fence has
// signaled. Runs under d.mu on the submission path, so a long frame
// never blocks it.
func (d *vulkanDevice) reapCompleted() {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.pending[:0]
	for _, list := range d.pending {
		if vk.GetFenceStatus(d.handle, list.fence) == vk.Success {
			list.tracker.Release(resource.AccessWrite)
			list.destroy()
			continue
		}
		kept = append(kept, list)
	}
	d.pending = kept
}

func (d *vulkanDevice) addPending(list *vulkanCommandList) {
	d.mu.Lock()
	d.pending = append(d.pending, list)
	d.mu.Unlock()
}

// WaitIdle drains the device and releases all in-flight lists.
func (d *vulkanDevice) WaitIdle() {
	vk.DeviceWaitIdle(d.handle)
	d.mu.Lock()
	for _, list := range d.pending {
		list.tracker.Release(resource.AccessWrite)
		list.destroy()
	}
	d.pending = nil
	d.mu.Unlock()
}

func (d *vulkanDevice) Close() {
	d.WaitIdle()
	vk.DestroyCommandPool(d.handle, d.pool, nil)
	vk.DestroyDevice(d.handle, nil)
}

// vulkanCommandList is one primary command buffer plus its completion
// fence and use tracker.
type vulkanCommandList struct {
	dev     *vulkanDevice
	buf     vk.CommandBuffer
	fence   vk.Fence
	freed   bool
	tracker resource.UseTracker
}

var _ backend.CommandList = (*vulkanCommandList)(nil)

func (l *vulkanCommandList) Tracker() *resource.UseTracker { return &l.tracker }

// Free releases a list that was never submitted.
func (l *vulkanCommandList) Free() {
	l.destroy()
}

func (l *vulkanCommandList) destroy() {
	if l.freed {
		return
	}
	l.freed = true
	vk.DestroyFence(l.dev.handle, l.fence, nil)
	vk.FreeCommandBuffers(l.dev.handle, l.dev.pool, 1, []vk.CommandBuffer{l.buf})
}
