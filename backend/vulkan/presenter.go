// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vulkan

import (
	"fmt"
	"sync"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/gcn/backend"
)

// vulkanPresenter owns a surface, its swapchain and the per-frame
// synchronization pairs.
type vulkanPresenter struct {
	dev     *vulkanDevice
	surface vk.Surface
	desc    backend.PresenterDesc

	swapchain vk.Swapchain
	images    []vk.Image

	// One semaphore pair per frame slot, rotated on acquire.
	acquireSems []vk.Semaphore
	presentSems []vk.Semaphore

	mu    sync.Mutex
	frame int
}

var _ backend.Presenter = (*vulkanPresenter)(nil)

func newVulkanPresenter(dev *vulkanDevice, desc *backend.PresenterDesc) (*vulkanPresenter, error) {
	if desc.Surface == nil {
		return nil, backend.ErrNoSurface
	}
	surfacePtr, err := desc.Surface.Surface(dev.adapter.parent.instance)
	if err != nil {
		return nil, fmt.Errorf("vulkan: create surface: %w", err)
	}

	p := &vulkanPresenter{dev: dev, surface: vk.SurfaceFromPointer(surfacePtr), desc: *desc}
	if err := p.createSwapchain(desc); err != nil {
		p.Close()
		return nil, err
	}
	if err := p.createSemaphores(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *vulkanPresenter) createSwapchain(desc *backend.PresenterDesc) error {
	physical := p.dev.adapter.physical

	var caps vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physical, p.surface, &caps); res != vk.Success {
		return fmt.Errorf("vulkan: surface capabilities: %v", vk.Error(res))
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	format, err := p.chooseFormat(physical)
	if err != nil {
		return err
	}

	extent := vk.Extent2D{Width: desc.Width, Height: desc.Height}
	if caps.CurrentExtent.Width != ^uint32(0) {
		extent = caps.CurrentExtent
	} else {
		extent.Width = clamp(extent.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width)
		extent.Height = clamp(extent.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height)
	}

	imageCount := desc.ImageCount
	if imageCount == 0 {
		imageCount = 3
	}
	if imageCount < caps.MinImageCount {
		imageCount = caps.MinImageCount
	}
	if caps.MaxImageCount != 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          p.surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage: vk.ImageUsageFlags(
			vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		// FIFO is always available and matches the fixed-rate display
		// the driver emulates.
		PresentMode:  vk.PresentModeFifo,
		Clipped:      vk.True,
		OldSwapchain: vk.Swapchain(vk.NullHandle),
	}
	var swapchain vk.Swapchain
	if res := vk.CreateSwapchain(p.dev.handle, &createInfo, nil, &swapchain); res != vk.Success {
		return fmt.Errorf("vulkan: create swapchain: %v", vk.Error(res))
	}
	p.swapchain = swapchain

	var count uint32
	vk.GetSwapchainImages(p.dev.handle, p.swapchain, &count, nil)
	p.images = make([]vk.Image, count)
	vk.GetSwapchainImages(p.dev.handle, p.swapchain, &count, p.images)
	return nil
}

// chooseFormat prefers BGRA8 with sRGB nonlinear color space and falls
// back to whatever the surface offers first.
func (p *vulkanPresenter) chooseFormat(physical vk.PhysicalDevice) (vk.SurfaceFormat, error) {
	var count uint32
	vk.GetPhysicalDeviceSurfaceFormats(physical, p.surface, &count, nil)
	if count == 0 {
		return vk.SurfaceFormat{}, fmt.Errorf("vulkan: surface reports no formats")
	}
	formats := make([]vk.SurfaceFormat, count)
	vk.GetPhysicalDeviceSurfaceFormats(physical, p.surface, &count, formats)
	for i := range formats {
		formats[i].Deref()
		if formats[i].Format == vk.FormatB8g8r8a8Unorm &&
			formats[i].ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return formats[i], nil
		}
	}
	return formats[0], nil
}

func (p *vulkanPresenter) createSemaphores() error {
	n := len(p.images)
	p.acquireSems = make([]vk.Semaphore, n)
	p.presentSems = make([]vk.Semaphore, n)
	semInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	for i := 0; i < n; i++ {
		if res := vk.CreateSemaphore(p.dev.handle, &semInfo, nil, &p.acquireSems[i]); res != vk.Success {
			return fmt.Errorf("vulkan: create semaphore: %v", vk.Error(res))
		}
		if res := vk.CreateSemaphore(p.dev.handle, &semInfo, nil, &p.presentSems[i]); res != vk.Success {
			return fmt.Errorf("vulkan: create semaphore: %v", vk.Error(res))
		}
	}
	return nil
}

// AcquireNextImage rotates the semaphore pair and acquires the next
// swapchain image. The returned pair must be threaded through the
// submission that renders the frame. An out-of-date swapchain (window
// resized or surface lost validity) is recreated and the acquire
// retried once.
func (p *vulkanPresenter) AcquireNextImage() (uint32, backend.SyncPair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for attempt := 0; ; attempt++ {
		slot := p.frame
		p.frame = (p.frame + 1) % len(p.acquireSems)

		pair := backend.SyncPair{
			Acquire: p.acquireSems[slot],
			Present: p.presentSems[slot],
		}

		var index uint32
		res := vk.AcquireNextImage(p.dev.handle, p.swapchain, vk.MaxUint64,
			p.acquireSems[slot], vk.Fence(vk.NullHandle), &index)
		if res == vk.ErrorOutOfDate && attempt == 0 {
			if err := p.recreateLocked(); err != nil {
				return 0, backend.SyncPair{}, err
			}
			continue
		}
		if res != vk.Success && res != vk.Suboptimal {
			return 0, backend.SyncPair{}, fmt.Errorf("vulkan: acquire next image: %v", vk.Error(res))
		}
		return index, pair, nil
	}
}

// recreateLocked rebuilds the swapchain and its semaphores against the
// surface's current capabilities. Caller holds p.mu.
func (p *vulkanPresenter) recreateLocked() error {
	vk.DeviceWaitIdle(p.dev.handle)
	p.destroySwapchainLocked()
	p.frame = 0
	if err := p.createSwapchain(&p.desc); err != nil {
		return err
	}
	return p.createSemaphores()
}

func (p *vulkanPresenter) destroySwapchainLocked() {
	for _, sem := range p.acquireSems {
		vk.DestroySemaphore(p.dev.handle, sem, nil)
	}
	for _, sem := range p.presentSems {
		vk.DestroySemaphore(p.dev.handle, sem, nil)
	}
	p.acquireSems = nil
	p.presentSems = nil
	if p.swapchain != vk.Swapchain(vk.NullHandle) {
		vk.DestroySwapchain(p.dev.handle, p.swapchain, nil)
		p.swapchain = vk.Swapchain(vk.NullHandle)
	}
}

// Present presents on the device's graphics queue. The submission
// pipeline normally presents through Queue.Present instead; this
// method serves callers holding only the presenter.
func (p *vulkanPresenter) Present(imageIndex uint32, sync backend.SyncPair) error {
	queue := p.dev.queues.Graphics.(*vulkanQueue)
	return p.present(queue.handle, imageIndex, sync)
}

func (p *vulkanPresenter) present(queue vk.Queue, imageIndex uint32, sync backend.SyncPair) error {
	presentInfo := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{p.swapchain},
		PImageIndices:  []uint32{imageIndex},
	}
	if sem, ok := sync.Present.(vk.Semaphore); ok && sem != vk.Semaphore(vk.NullHandle) {
		presentInfo.WaitSemaphoreCount = 1
		presentInfo.PWaitSemaphores = []vk.Semaphore{sem}
	}
	res := vk.QueuePresent(queue, &presentInfo)
	if res == vk.ErrorOutOfDate {
		// Frame is dropped; the next acquire runs against the rebuilt
		// swapchain.
		p.mu.Lock()
		err := p.recreateLocked()
		p.mu.Unlock()
		return err
	}
	if res != vk.Success && res != vk.Suboptimal {
		return fmt.Errorf("vulkan: queue present: %v", vk.Error(res))
	}
	return nil
}

func (p *vulkanPresenter) ImageCount() uint32 {
	return uint32(len(p.images))
}

func (p *vulkanPresenter) Close() {
	vk.DeviceWaitIdle(p.dev.handle)
	p.mu.Lock()
	p.destroySwapchainLocked()
	p.mu.Unlock()
	if p.surface != vk.Surface(vk.NullHandle) {
		vk.DestroySurface(p.dev.adapter.parent.instance, p.surface, nil)
		p.surface = vk.Surface(vk.NullHandle)
	}
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
