// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/gcn/backend"
)

// Device-level extensions. Swapchain carries the whole present path so
// it is hard-required. Memory budget is passive: the adapter reads
// budgets when the driver reports them but never changes behavior.
func deviceExtensions() []*backend.Ext {
	return []*backend.Ext{
		backend.NewExt("VK_KHR_swapchain", backend.ExtModeRequired),
		backend.NewExt("VK_KHR_image_format_list", backend.ExtModeOptional),
		backend.NewExt("VK_KHR_maintenance1", backend.ExtModeOptional),
		backend.NewExt("VK_EXT_memory_budget", backend.ExtModePassive),
	}
}

// vulkanAdapter wraps one physical device. Properties, extensions,
// queue families and heap topology are snapshotted at enumeration time;
// heap allocation counters live in the embedded accounting.
type vulkanAdapter struct {
	backend.HeapAccounting

	parent   *vulkanBackend
	physical vk.PhysicalDevice

	props      backend.DeviceProperties
	extensions backend.NameSet
	families   []backend.QueueFamily
	heaps      []backend.HeapInfo
}

var _ backend.Adapter = (*vulkanAdapter)(nil)

func newVulkanAdapter(parent *vulkanBackend, physical vk.PhysicalDevice) *vulkanAdapter {
	a := &vulkanAdapter{parent: parent, physical: physical}
	a.queryProperties()
	a.queryExtensions()
	a.queryQueueFamilies()
	a.queryMemory()
	return a
}

func (a *vulkanAdapter) queryProperties() {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(a.physical, &props)
	props.Deref()

	a.props = backend.DeviceProperties{
		Name:          vk.ToString(props.DeviceName[:]),
		VendorID:      props.VendorID,
		DeviceID:      props.DeviceID,
		Type:          deviceType(props.DeviceType),
		APIVersion:    props.ApiVersion,
		DriverVersion: props.DriverVersion,
	}
}

func deviceType(t vk.PhysicalDeviceType) backend.DeviceType {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return backend.DeviceTypeIntegratedGPU
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return backend.DeviceTypeDiscreteGPU
	case vk.PhysicalDeviceTypeVirtualGpu:
		return backend.DeviceTypeVirtualGPU
	case vk.PhysicalDeviceTypeCpu:
		return backend.DeviceTypeCPU
	default:
		return backend.DeviceTypeOther
	}
}

func (a *vulkanAdapter) queryExtensions() {
	a.extensions = backend.NameSet{}
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(a.physical, "", &count, nil); res != vk.Success {
		return
	}
	props := make([]vk.ExtensionProperties, count)
	if count > 0 {
		if res := vk.EnumerateDeviceExtensionProperties(a.physical, "", &count, props); res != vk.Success {
			return
		}
	}
	for i := range props {
		props[i].Deref()
		a.extensions.AddRevision(vk.ToString(props[i].ExtensionName[:]), props[i].SpecVersion)
	}
}

func (a *vulkanAdapter) queryQueueFamilies() {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(a.physical, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(a.physical, &count, props)

	a.families = make([]backend.QueueFamily, count)
	for i := range props {
		props[i].Deref()
		var flags backend.QueueFlags
		if props[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			flags |= backend.QueueGraphics
		}
		if props[i].QueueFlags&vk.QueueFlags(vk.QueueComputeBit) != 0 {
			flags |= backend.QueueCompute
		}
		if props[i].QueueFlags&vk.QueueFlags(vk.QueueTransferBit) != 0 {
			flags |= backend.QueueTransfer
		}
		a.families[i] = backend.QueueFamily{Flags: flags, Count: props[i].QueueCount}
	}
}

func (a *vulkanAdapter) queryMemory() {
	var mem vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(a.physical, &mem)
	mem.Deref()

	count := mem.MemoryHeapCount
	if count > backend.MaxMemoryHeaps {
		count = backend.MaxMemoryHeaps
	}
	a.heaps = make([]backend.HeapInfo, count)
	for i := uint32(0); i < count; i++ {
		mem.MemoryHeaps[i].Deref()
		var flags backend.HeapFlags
		if mem.MemoryHeaps[i].Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0 {
			flags |= backend.HeapDeviceLocal
		}
		a.heaps[i] = backend.HeapInfo{
			Flags:  flags,
			Budget: uint64(mem.MemoryHeaps[i].Size),
		}
	}
}

func (a *vulkanAdapter) Properties() backend.DeviceProperties { return a.props }
func (a *vulkanAdapter) Extensions() backend.NameSet          { return a.extensions }
func (a *vulkanAdapter) QueueFamilies() []backend.QueueFamily { return a.families }

func (a *vulkanAdapter) MemoryInfo() backend.MemoryInfo {
	heaps := make([]backend.HeapInfo, len(a.heaps))
	copy(heaps, a.heaps)
	for i := range heaps {
		heaps[i].Allocated = a.HeapAllocated(uint32(i))
	}
	return backend.MemoryInfo{Heaps: heaps}
}

func (a *vulkanAdapter) IsUnifiedMemory() bool {
	return backend.UnifiedMemory(a.heaps)
}

// CreateDevice negotiates device extensions, picks one queue per role
// and creates the logical device.
func (a *vulkanAdapter) CreateDevice() (backend.Device, error) {
	enabled, err := backend.Negotiate(a.extensions, deviceExtensions())
	if err != nil {
		return nil, err
	}

	indices := backend.SelectQueueFamilies(a.families)
	if indices.Graphics == backend.FamilyIgnored {
		return nil, backend.ErrNoAdapter
	}

	unique := []uint32{indices.Graphics}
	for _, f := range []uint32{indices.Compute, indices.Transfer} {
		seen := false
		for _, u := range unique {
			if u == f {
				seen = true
				break
			}
		}
		if !seen {
			unique = append(unique, f)
		}
	}

	queueInfos := make([]vk.DeviceQueueCreateInfo, len(unique))
	for i, family := range unique {
		queueInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	extNames := safeStrings(enabled.Names())
	createInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extNames)),
		PpEnabledExtensionNames: extNames,
	}
	var handle vk.Device
	if res := vk.CreateDevice(a.physical, &createInfo, nil, &handle); res != vk.Success {
		return nil, fmt.Errorf("vulkan: create device: %v", vk.Error(res))
	}

	return newVulkanDevice(a, handle, indices)
}
