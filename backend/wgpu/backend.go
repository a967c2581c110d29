// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"sort"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Link the hal Vulkan implementation so GetBackend finds it.
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/gcn/backend"
)

func init() {
	backend.Register(backend.BackendWGPU, func() backend.Backend {
		return &wgpuBackend{}
	})
}

// wgpuBackend owns a hal instance and the adapters it exposes.
type wgpuBackend struct {
	initialized bool
	instance    hal.Instance
	adapters    []*wgpuAdapter
}

var _ backend.Backend = (*wgpuBackend)(nil)

func (b *wgpuBackend) Name() string { return backend.BackendWGPU }

func (b *wgpuBackend) Init() error {
	if b.initialized {
		return nil
	}
	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("%w: no hal vulkan backend", backend.ErrBackendNotAvailable)
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("%w: create hal instance: %v", backend.ErrBackendNotAvailable, err)
	}

	exposed := instance.EnumerateAdapters(nil)
	if len(exposed) == 0 {
		instance.Destroy()
		return fmt.Errorf("%w: no hal adapters", backend.ErrNoAdapter)
	}

	b.instance = instance
	b.adapters = make([]*wgpuAdapter, len(exposed))
	for i := range exposed {
		b.adapters[i] = newWGPUAdapter(exposed[i])
	}
	sort.SliceStable(b.adapters, func(i, j int) bool {
		return b.adapters[i].props.Type.Rank() > b.adapters[j].props.Type.Rank()
	})

	b.initialized = true
	return nil
}

func (b *wgpuBackend) EnumerateAdapters() []backend.Adapter {
	if !b.initialized {
		return nil
	}
	out := make([]backend.Adapter, len(b.adapters))
	for i, a := range b.adapters {
		out[i] = a
	}
	return out
}

func (b *wgpuBackend) Close() {
	if !b.initialized {
		return
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
	b.adapters = nil
	b.initialized = false
}
