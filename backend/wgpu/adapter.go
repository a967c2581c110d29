// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gcn/backend"
)

// wgpuAdapter wraps one hal.ExposedAdapter. The hal layer does not
// surface extension names or heap topology, so the adapter advertises
// an empty extension set and a synthesized single device-local heap;
// queue topology is one universal family, which is what the hal queue
// model provides.
type wgpuAdapter struct {
	backend.HeapAccounting

	exposed hal.ExposedAdapter
	props   backend.DeviceProperties
	heaps   []backend.HeapInfo
}

var _ backend.Adapter = (*wgpuAdapter)(nil)

func newWGPUAdapter(exposed hal.ExposedAdapter) *wgpuAdapter {
	return &wgpuAdapter{
		exposed: exposed,
		props: backend.DeviceProperties{
			Name: exposed.Info.Name,
			Type: deviceType(exposed.Info.DeviceType),
		},
		heaps: []backend.HeapInfo{
			{Flags: backend.HeapDeviceLocal, Budget: 1 << 32},
		},
	}
}

func deviceType(t gputypes.DeviceType) backend.DeviceType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return backend.DeviceTypeDiscreteGPU
	case gputypes.DeviceTypeIntegratedGPU:
		return backend.DeviceTypeIntegratedGPU
	default:
		return backend.DeviceTypeOther
	}
}

func (a *wgpuAdapter) Properties() backend.DeviceProperties { return a.props }

func (a *wgpuAdapter) Extensions() backend.NameSet { return backend.NameSet{} }

func (a *wgpuAdapter) QueueFamilies() []backend.QueueFamily {
	return []backend.QueueFamily{
		{Flags: backend.QueueGraphics | backend.QueueCompute | backend.QueueTransfer, Count: 1},
	}
}

func (a *wgpuAdapter) MemoryInfo() backend.MemoryInfo {
	heaps := make([]backend.HeapInfo, len(a.heaps))
	copy(heaps, a.heaps)
	for i := range heaps {
		heaps[i].Allocated = a.HeapAllocated(uint32(i))
	}
	return backend.MemoryInfo{Heaps: heaps}
}

func (a *wgpuAdapter) IsUnifiedMemory() bool {
	return backend.UnifiedMemory(a.heaps)
}

// CreateDevice opens the hal device with default features and limits.
func (a *wgpuAdapter) CreateDevice() (backend.Device, error) {
	openDev, err := a.exposed.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}
	dev := &wgpuDevice{adapter: a, device: openDev.Device}
	queue := &wgpuQueue{dev: dev, queue: openDev.Queue}
	dev.queues = backend.DeviceQueues{Graphics: queue, Compute: queue, Transfer: queue}
	return dev, nil
}
