// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gcn/backend"
	"github.com/gogpu/gcn/resource"
)

// submitTimeout bounds the fenced wait after each submission. A frame
// that takes longer than this has hung the device.
const submitTimeout = 5 * time.Second

// wgpuDevice wraps a hal.Device.
type wgpuDevice struct {
	adapter *wgpuAdapter
	device  hal.Device
	queues  backend.DeviceQueues
}

var _ backend.Device = (*wgpuDevice)(nil)

func (d *wgpuDevice) Adapter() backend.Adapter     { return d.adapter }
func (d *wgpuDevice) Queues() backend.DeviceQueues { return d.queues }

// NewCommandList opens a hal command encoder in the recording state.
func (d *wgpuDevice) NewCommandList() (backend.CommandList, error) {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "gcn-submit",
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("gcn-submit"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	return &wgpuCommandList{dev: d, encoder: encoder}, nil
}

func (d *wgpuDevice) CreatePresenter(desc *backend.PresenterDesc) (backend.Presenter, error) {
	count := desc.ImageCount
	if count == 0 {
		count = 3
	}
	return &wgpuPresenter{imageCount: count}, nil
}

// WaitIdle is a no-op: Submit waits on the completion fence before
// returning, so nothing is in flight between submissions.
func (d *wgpuDevice) WaitIdle() {}

func (d *wgpuDevice) Close() {
	d.device.Destroy()
}

// wgpuCommandList wraps a hal command encoder plus its use tracker.
type wgpuCommandList struct {
	dev     *wgpuDevice
	encoder hal.CommandEncoder
	tracker resource.UseTracker
}

var _ backend.CommandList = (*wgpuCommandList)(nil)

func (l *wgpuCommandList) Tracker() *resource.UseTracker { return &l.tracker }

// Free discards a list that was never submitted.
func (l *wgpuCommandList) Free() {
	if l.encoder != nil {
		l.encoder.DiscardEncoding()
		l.encoder = nil
	}
}

// wgpuQueue submits synchronously: end encoding, submit with a fence
// and wait for completion, so the command list is idle on return.
type wgpuQueue struct {
	dev   *wgpuDevice
	queue hal.Queue
}

var _ backend.Queue = (*wgpuQueue)(nil)

// Family returns 0: the hal queue model has one universal family.
func (q *wgpuQueue) Family() uint32 { return 0 }

func (q *wgpuQueue) Submit(sub backend.Submission) error {
	list, ok := sub.CmdList.(*wgpuCommandList)
	if !ok {
		return fmt.Errorf("wgpu: foreign command list %T", sub.CmdList)
	}

	cmdBuf, err := list.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	list.encoder = nil
	defer q.dev.device.FreeCommandBuffer(cmdBuf)

	fence, err := q.dev.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer q.dev.device.DestroyFence(fence)

	list.tracker.Acquire(resource.AccessWrite)
	defer list.tracker.Release(resource.AccessWrite)

	if err := q.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	fenceOK, err := q.dev.device.Wait(fence, 1, submitTimeout)
	if err != nil {
		return fmt.Errorf("wgpu: wait for submission: %w", err)
	}
	if !fenceOK {
		return fmt.Errorf("wgpu: submission timed out after %v", submitTimeout)
	}
	return nil
}

func (q *wgpuQueue) Present(p backend.Presenter, imageIndex uint32, sync backend.SyncPair) error {
	return p.Present(imageIndex, sync)
}

// wgpuPresenter is headless: it rotates over a virtual image set so
// the submission pipeline keeps its acquire/present shape without a
// windowing surface.
type wgpuPresenter struct {
	imageCount uint32

	mu    sync.Mutex
	frame uint32
}

var _ backend.Presenter = (*wgpuPresenter)(nil)

func (p *wgpuPresenter) AcquireNextImage() (uint32, backend.SyncPair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	index := p.frame
	p.frame = (p.frame + 1) % p.imageCount
	return index, backend.SyncPair{}, nil
}

func (p *wgpuPresenter) Present(uint32, backend.SyncPair) error { return nil }

func (p *wgpuPresenter) ImageCount() uint32 { return p.imageCount }

func (p *wgpuPresenter) Close() {}
